package tui

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ifaraag/2019-VSCode4Teaching/internal/actions"
	"github.com/ifaraag/2019-VSCode4Teaching/internal/tree"
	"github.com/ifaraag/2019-VSCode4Teaching/pkg/client"
)

func newTestApp(t *testing.T) App {
	t.Helper()
	session := client.NewSession(filepath.Join(t.TempDir(), "session"))
	c := client.New(session)
	cache := client.NewCurrentUser(c)
	provider := tree.NewProvider(cache, session)
	d := NewDispatcher()
	mgr := actions.NewManager(c, cache, provider, NewBridgeUI(d), "http://localhost:8080")
	a := NewApp(c, cache, provider, mgr, "test")
	a.width = 80
	a.height = 30
	return a
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAppLoggedOutTree(t *testing.T) {
	a := newTestApp(t)
	if len(a.rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(a.rows))
	}
	if a.rows[0].node.Label != "Login" || a.rows[1].node.Label != "Sign up" {
		t.Errorf("rows = [%s, %s], want [Login, Sign up]", a.rows[0].node.Label, a.rows[1].node.Label)
	}
}

func TestAppTreeNavigation(t *testing.T) {
	a := newTestApp(t)

	model, _ := a.Update(keyMsg("j"))
	a = model.(App)
	if a.cursor != 1 {
		t.Errorf("cursor after j = %d, want 1", a.cursor)
	}

	// Bottom of the list; j stays put.
	model, _ = a.Update(keyMsg("j"))
	a = model.(App)
	if a.cursor != 1 {
		t.Errorf("cursor after second j = %d, want 1", a.cursor)
	}

	model, _ = a.Update(keyMsg("k"))
	a = model.(App)
	if a.cursor != 0 {
		t.Errorf("cursor after k = %d, want 0", a.cursor)
	}
}

func TestAppQuit(t *testing.T) {
	a := newTestApp(t)
	_, cmd := a.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("expected quit command on 'q', got nil")
	}
}

func TestAppActivateLoginStartsOp(t *testing.T) {
	a := newTestApp(t)
	model, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = model.(App)
	if !a.busy {
		t.Error("busy = false after activating Login, want true")
	}
	if cmd == nil {
		t.Fatal("expected an operation command, got nil")
	}
}

func TestAppBusyRejectsSecondOp(t *testing.T) {
	a := newTestApp(t)
	a.busy = true
	model, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = model.(App)
	if cmd != nil {
		t.Error("second operation started while busy")
	}
	if a.statusMsg == "" {
		t.Error("no status message explaining the rejection")
	}
}

func TestInputModalSubmit(t *testing.T) {
	a := newTestApp(t)
	req := &uiRequest{kind: uiInput, input: actions.InputBoxOptions{Prompt: "Course name"}, resp: make(chan uiResponse, 1)}

	model, _ := a.Update(uiRequestMsg{req: req})
	a = model.(App)
	if a.modal != modalInput {
		t.Fatalf("modal = %d, want modalInput", a.modal)
	}

	model, _ = a.Update(keyMsg("Algebra"))
	a = model.(App)
	model, _ = a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = model.(App)

	select {
	case r := <-req.resp:
		if !r.ok || r.value != "Algebra" {
			t.Errorf("response = %+v, want ok with Algebra", r)
		}
	default:
		t.Fatal("no response delivered on submit")
	}
	if a.modal != modalNone {
		t.Errorf("modal = %d after submit, want modalNone", a.modal)
	}
}

func TestInputModalValidationBlocksSubmit(t *testing.T) {
	a := newTestApp(t)
	req := &uiRequest{
		kind:  uiInput,
		input: actions.InputBoxOptions{Prompt: "Course name", ValidateInput: actions.ValidateName},
		resp:  make(chan uiResponse, 1),
	}

	model, _ := a.Update(uiRequestMsg{req: req})
	a = model.(App)
	model, _ = a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = model.(App)

	select {
	case <-req.resp:
		t.Fatal("blank input submitted despite validator")
	default:
	}
	if a.inputErr == "" {
		t.Error("no validation message shown")
	}
	if a.modal != modalInput {
		t.Error("modal closed on invalid input")
	}
}

func TestInputModalEscCancels(t *testing.T) {
	a := newTestApp(t)
	req := &uiRequest{kind: uiInput, input: actions.InputBoxOptions{Prompt: "Course name"}, resp: make(chan uiResponse, 1)}

	model, _ := a.Update(uiRequestMsg{req: req})
	a = model.(App)
	model, _ = a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	a = model.(App)

	select {
	case r := <-req.resp:
		if r.ok {
			t.Error("cancelled prompt reported ok = true")
		}
	default:
		t.Fatal("no response delivered on cancel")
	}
	if a.modal != modalNone {
		t.Error("modal still open after esc")
	}
}

func TestConfirmModalDefaultsToCancel(t *testing.T) {
	a := newTestApp(t)
	req := &uiRequest{kind: uiConfirm, warnText: "Are you sure you want to delete Algebra?", warnItems: []string{"Accept"}, resp: make(chan uiResponse, 1)}

	model, _ := a.Update(uiRequestMsg{req: req})
	a = model.(App)
	if a.confirmAccept {
		t.Error("confirm opened with Accept focused; cancel must be the default")
	}

	model, _ = a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = model.(App)
	r := <-req.resp
	if r.ok {
		t.Error("plain enter confirmed the destructive action")
	}
}

func TestConfirmModalAccept(t *testing.T) {
	a := newTestApp(t)
	req := &uiRequest{kind: uiConfirm, warnText: "Are you sure you want to delete Algebra?", warnItems: []string{"Accept"}, resp: make(chan uiResponse, 1)}

	model, _ := a.Update(uiRequestMsg{req: req})
	a = model.(App)
	model, _ = a.Update(tea.KeyMsg{Type: tea.KeyTab})
	a = model.(App)
	model, _ = a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = model.(App)

	r := <-req.resp
	if !r.ok || r.value != "Accept" {
		t.Errorf("response = %+v, want ok with Accept", r)
	}
}

func TestPickerModalEscCancels(t *testing.T) {
	a := newTestApp(t)
	req := &uiRequest{kind: uiOpen, open: actions.OpenDialogOptions{CanSelectFiles: true, CanSelectFolders: true}, resp: make(chan uiResponse, 1)}

	model, _ := a.Update(uiRequestMsg{req: req})
	a = model.(App)
	if a.modal != modalPicker {
		t.Fatalf("modal = %d, want modalPicker", a.modal)
	}
	model, _ = a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	a = model.(App)

	r := <-req.resp
	if r.ok {
		t.Error("cancelled picker reported ok = true")
	}
}

func TestOpDoneClearsBusyAndShowsError(t *testing.T) {
	a := newTestApp(t)
	a.busy = true
	model, _ := a.Update(opDoneMsg{err: actions.ErrUploadSkipped})
	a = model.(App)
	if a.busy {
		t.Error("busy = true after opDoneMsg")
	}
	if a.statusMsg != actions.ErrUploadSkipped.Error() {
		t.Errorf("statusMsg = %q, want the operation error", a.statusMsg)
	}
}
