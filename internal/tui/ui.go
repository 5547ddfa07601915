package tui

import (
	"github.com/ifaraag/2019-VSCode4Teaching/internal/actions"
)

// uiKind discriminates pending collaborator requests.
type uiKind int

const (
	uiInput uiKind = iota
	uiOpen
	uiConfirm
)

// uiRequest is one blocking prompt from the orchestrator. The orchestrator
// goroutine waits on resp; the UI loop answers when the user submits or
// cancels the modal.
type uiRequest struct {
	kind      uiKind
	input     actions.InputBoxOptions
	open      actions.OpenDialogOptions
	warnText  string
	warnItems []string
	resp      chan uiResponse
}

type uiResponse struct {
	value string
	paths []string
	ok    bool
}

// uiRequestMsg asks the app model to open the matching modal.
type uiRequestMsg struct {
	req *uiRequest
}

// BridgeUI implements the orchestrator's prompt/picker/warning collaborators
// on top of the program's message loop. Each call blocks its goroutine until
// the user answers; the UI thread never blocks.
type BridgeUI struct {
	d *Dispatcher
}

// NewBridgeUI creates the collaborator bridge over a dispatcher.
func NewBridgeUI(d *Dispatcher) *BridgeUI {
	return &BridgeUI{d: d}
}

func (u *BridgeUI) ShowInputBox(opts actions.InputBoxOptions) (string, bool) {
	req := &uiRequest{kind: uiInput, input: opts, resp: make(chan uiResponse, 1)}
	u.d.Send(uiRequestMsg{req: req})
	r := <-req.resp
	return r.value, r.ok
}

func (u *BridgeUI) ShowOpenDialog(opts actions.OpenDialogOptions) ([]string, bool) {
	req := &uiRequest{kind: uiOpen, open: opts, resp: make(chan uiResponse, 1)}
	u.d.Send(uiRequestMsg{req: req})
	r := <-req.resp
	return r.paths, r.ok
}

func (u *BridgeUI) ShowWarningMessage(text string, modal bool, items ...string) (string, bool) {
	_ = modal // every warning here is modal; the flag exists for contract parity
	req := &uiRequest{kind: uiConfirm, warnText: text, warnItems: items, resp: make(chan uiResponse, 1)}
	u.d.Send(uiRequestMsg{req: req})
	r := <-req.resp
	return r.value, r.ok
}
