package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Dispatcher carries messages from background goroutines (the tree engine's
// redraw hook, the orchestrator's prompt requests) into the running program.
// Messages sent before Bind are queued and flushed on Bind.
type Dispatcher struct {
	mu    sync.Mutex
	send  func(tea.Msg)
	queue []tea.Msg
}

// NewDispatcher creates an unbound dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Bind attaches the program's Send function and flushes anything queued.
func (d *Dispatcher) Bind(send func(tea.Msg)) {
	d.mu.Lock()
	d.send = send
	queued := d.queue
	d.queue = nil
	d.mu.Unlock()
	for _, msg := range queued {
		send(msg)
	}
}

// Send delivers a message to the program, queueing it if not yet bound.
func (d *Dispatcher) Send(msg tea.Msg) {
	d.mu.Lock()
	send := d.send
	if send == nil {
		d.queue = append(d.queue, msg)
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()
	send(msg)
}
