package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type modalState int

const (
	modalNone modalState = iota
	modalInput
	modalConfirm
	modalPicker
)

// openModal switches the app into the modal matching a collaborator request.
func (a *App) openModal(req *uiRequest) (tea.Cmd, bool) {
	a.req = req
	a.inputErr = ""
	switch req.kind {
	case uiInput:
		ti := textinput.New()
		ti.Prompt = "> "
		ti.CharLimit = 256
		ti.SetValue(req.input.Value)
		ti.CursorEnd()
		if req.input.Password {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		ti.Focus()
		a.input = ti
		a.modal = modalInput
		return textinput.Blink, true

	case uiConfirm:
		a.modal = modalConfirm
		a.confirmAccept = false // cancel is the default; destructive needs intent
		return nil, true

	case uiOpen:
		fp := filepicker.New()
		if wd, err := os.Getwd(); err == nil {
			fp.CurrentDirectory = wd
		}
		fp.FileAllowed = req.open.CanSelectFiles
		fp.DirAllowed = req.open.CanSelectFolders
		a.picker = fp
		a.picked = nil
		a.modal = modalPicker
		return a.picker.Init(), true
	}
	return nil, false
}

func (a *App) closeModal(resp uiResponse) {
	if a.req != nil {
		a.req.resp <- resp
	}
	a.req = nil
	a.modal = modalNone
	a.inputErr = ""
}

func (a *App) updateInputModal(msg tea.Msg) (tea.Cmd, bool) {
	if key, isKey := msg.(tea.KeyMsg); isKey {
		switch key.String() {
		case "enter":
			value := a.input.Value()
			if validate := a.req.input.ValidateInput; validate != nil {
				if errMsg := validate(value); errMsg != "" {
					a.inputErr = errMsg
					return nil, true
				}
			}
			a.closeModal(uiResponse{value: value, ok: true})
			return nil, true
		case "esc":
			a.closeModal(uiResponse{ok: false})
			return nil, true
		}
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return cmd, true
}

func (a *App) updateConfirmModal(msg tea.Msg) (tea.Cmd, bool) {
	key, isKey := msg.(tea.KeyMsg)
	if !isKey {
		return nil, true
	}
	switch key.String() {
	case "tab", "left", "right", "h", "l":
		a.confirmAccept = !a.confirmAccept
	case "enter":
		if a.confirmAccept {
			a.closeModal(uiResponse{value: a.confirmLabel(), ok: true})
		} else {
			a.closeModal(uiResponse{ok: false})
		}
	case "esc", "n":
		a.closeModal(uiResponse{ok: false})
	}
	return nil, true
}

func (a *App) updatePickerModal(msg tea.Msg) (tea.Cmd, bool) {
	if key, isKey := msg.(tea.KeyMsg); isKey {
		switch key.String() {
		case "esc":
			a.closeModal(uiResponse{ok: false})
			return nil, true
		case "u":
			// Done: hand the selection over for bundling.
			if len(a.picked) > 0 {
				a.closeModal(uiResponse{paths: a.picked, ok: true})
				return nil, true
			}
		}
	}
	var cmd tea.Cmd
	a.picker, cmd = a.picker.Update(msg)
	if didSelect, path := a.picker.DidSelectFile(msg); didSelect {
		for _, p := range a.picked {
			if p == path {
				return cmd, true
			}
		}
		a.picked = append(a.picked, path)
	}
	return cmd, true
}

// confirmLabel is the affirmative action of the pending warning, "Accept"
// when the caller named none.
func (a *App) confirmLabel() string {
	if a.req != nil && len(a.req.warnItems) > 0 {
		return a.req.warnItems[0]
	}
	return "Accept"
}

func (a *App) modalView() string {
	switch a.modal {
	case modalInput:
		lines := []string{
			modalTitleStyle.Render(a.req.input.Prompt),
			"",
			a.input.View(),
		}
		if a.inputErr != "" {
			lines = append(lines, "", errorStyle.Render(a.inputErr))
		}
		lines = append(lines, "", metaStyle.Render("enter confirm · esc cancel"))
		return modalBoxStyle.Render(strings.Join(lines, "\n"))

	case modalConfirm:
		accept := buttonStyle.Render(a.confirmLabel())
		cancel := buttonActiveStyle.Render("Cancel")
		if a.confirmAccept {
			accept = buttonActiveStyle.Render(a.confirmLabel())
			cancel = buttonStyle.Render("Cancel")
		}
		controls := lipgloss.JoinHorizontal(lipgloss.Top, cancel, " ", accept)
		return modalBoxStyle.Render(strings.Join([]string{
			modalTitleStyle.Render(a.req.warnText),
			"",
			controls,
			"",
			metaStyle.Render("tab focus · enter select · esc cancel"),
		}, "\n"))

	case modalPicker:
		title := "Select files and folders for the template"
		count := metaStyle.Render(fmt.Sprintf("%d selected", len(a.picked)))
		return modalBoxStyle.Render(strings.Join([]string{
			modalTitleStyle.Render(title) + "  " + count,
			"",
			a.picker.View(),
			metaStyle.Render("enter add · u upload · esc cancel"),
		}, "\n"))
	}
	return ""
}
