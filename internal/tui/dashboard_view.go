package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ifaraag/2019-VSCode4Teaching/internal/dashboard"
	"github.com/ifaraag/2019-VSCode4Teaching/pkg/client"
	"github.com/ifaraag/2019-VSCode4Teaching/pkg/domain"
)

// dashRowsMsg carries a finished dashboard reload.
type dashRowsMsg struct {
	rows []dashboard.Row
	err  error
}

// dashTickMsg fires when the auto-reload interval elapses.
type dashTickMsg struct{}

// dashModel renders the per-exercise progress table. It speaks the same
// message vocabulary as the HTML dashboard: key presses become
// dashboard.Message values and flow through handleMessage.
type dashModel struct {
	client   *client.Client
	exercise domain.Exercise

	rows      []dashboard.Row
	reloadIdx int
	loading   bool
	errMsg    string
	closed    bool

	width, height int
}

func newDashModel(c *client.Client, exercise domain.Exercise, rows []dashboard.Row) dashModel {
	return dashModel{client: c, exercise: exercise, rows: rows}
}

func (m dashModel) reload() tea.Cmd {
	c, id := m.client, m.exercise.ID
	return func() tea.Msg {
		euis, err := c.GetExerciseUserInfo(context.Background(), id)
		if err != nil {
			return dashRowsMsg{err: err}
		}
		return dashRowsMsg{rows: dashboard.Rows(euis)}
	}
}

// tick schedules the next auto-reload, or nothing when the interval is Never.
func (m dashModel) tick() tea.Cmd {
	secs := dashboard.ReloadOptions[m.reloadIdx].Seconds
	if secs == 0 {
		return nil
	}
	return tea.Tick(time.Duration(secs)*time.Second, func(time.Time) tea.Msg {
		return dashTickMsg{}
	})
}

func (m dashModel) Update(msg tea.Msg) (dashModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashRowsMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.rows = msg.rows
		return m, nil

	case dashTickMsg:
		if m.closed {
			return m, nil
		}
		var cmd tea.Cmd
		m, cmd = m.handleMessage(dashboard.Message{Type: dashboard.MessageReload, Reload: true})
		return m, tea.Batch(cmd, m.tick())

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			m.closed = true
			return m, nil
		case "r":
			return m.handleMessage(dashboard.Message{Type: dashboard.MessageReload, Reload: true})
		case "t":
			next := (m.reloadIdx + 1) % len(dashboard.ReloadOptions)
			return m.handleMessage(dashboard.Message{
				Type:       dashboard.MessageChangeReloadTime,
				ReloadTime: dashboard.ReloadOptions[next].Seconds,
			})
		}
	}
	return m, nil
}

func (m dashModel) handleMessage(msg dashboard.Message) (dashModel, tea.Cmd) {
	switch msg.Type {
	case dashboard.MessageReload:
		m.loading = true
		return m, m.reload()
	case dashboard.MessageChangeReloadTime:
		for i, opt := range dashboard.ReloadOptions {
			if opt.Seconds == msg.ReloadTime {
				m.reloadIdx = i
				break
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m dashModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("V4T Dashboard: "+m.exercise.Name) + "\n\n")

	nameW, userW := 20, 12
	for _, row := range m.rows {
		if len(row.FullName) > nameW {
			nameW = len(row.FullName)
		}
		if len(row.Username) > userW {
			userW = len(row.Username)
		}
	}

	b.WriteString("  " + metaStyle.Render(fmt.Sprintf("%-*s  %-*s  %s", nameW, "Full name", userW, "Username", "Exercise status")) + "\n")
	if len(m.rows) == 0 {
		b.WriteString("  " + dimStyle.Render("no students yet") + "\n")
	}
	for _, row := range m.rows {
		status := onProgressStyle.Render(row.Status)
		if row.Style == dashboard.StyleFinished {
			status = finishedStyle.Render(row.Status)
		}
		b.WriteString("  " + fmt.Sprintf("%-*s  %-*s  ", nameW, row.FullName, userW, row.Username) + status + "\n")
	}

	b.WriteString("\n  " + dimStyle.Render("reload: "+dashboard.ReloadOptions[m.reloadIdx].Label))
	if m.loading {
		b.WriteString("  " + dimStyle.Render("reloading..."))
	}
	if m.errMsg != "" {
		b.WriteString("\n  " + errorStyle.Render(m.errMsg))
	}
	return b.String()
}
