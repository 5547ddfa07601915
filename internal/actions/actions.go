// Package actions sequences the create/edit/delete flows: validated prompts,
// the remote call, cache invalidation and the tree redraw, strictly in that
// order. A cancelled prompt aborts the whole flow before any network call.
package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/ifaraag/2019-VSCode4Teaching/internal/archive"
	"github.com/ifaraag/2019-VSCode4Teaching/internal/tree"
	"github.com/ifaraag/2019-VSCode4Teaching/pkg/client"
	"github.com/ifaraag/2019-VSCode4Teaching/pkg/domain"
)

// ErrUploadSkipped marks an exercise whose record was created but whose
// template upload was cancelled at the file picker. The record stays on the
// server; the tree still refreshes so the orphan is visible.
var ErrUploadSkipped = errors.New("exercise created, template upload skipped")

// InputBoxOptions mirrors the host prompt contract.
type InputBoxOptions struct {
	Prompt        string
	Value         string
	Password      bool
	ValidateInput func(string) string
}

// OpenDialogOptions mirrors the host file-picker contract.
type OpenDialogOptions struct {
	CanSelectFiles   bool
	CanSelectFolders bool
	CanSelectMany    bool
}

// UI is the narrow host surface the orchestrator drives. The second return
// is false when the user cancelled.
type UI interface {
	ShowInputBox(opts InputBoxOptions) (string, bool)
	ShowOpenDialog(opts OpenDialogOptions) ([]string, bool)
	ShowWarningMessage(text string, modal bool, items ...string) (string, bool)
}

// Manager runs the CRUD flows against the client and tree engine.
type Manager struct {
	client        *client.Client
	session       *client.Session
	cache         *client.CurrentUser
	tree          *tree.Provider
	ui            UI
	zip           func(paths []string) ([]byte, error)
	defaultServer string
}

// NewManager wires an orchestrator. defaultServer pre-fills the login prompt.
func NewManager(c *client.Client, cache *client.CurrentUser, provider *tree.Provider, ui UI, defaultServer string) *Manager {
	return &Manager{
		client:        c,
		session:       c.Session(),
		cache:         cache,
		tree:          provider,
		ui:            ui,
		zip:           archive.ZipPaths,
		defaultServer: defaultServer,
	}
}

// refreshAndRedraw re-fetches the authoritative user state after a successful
// mutation and signals the tree. The redraw happens even when the refresh
// itself fails — the mutation is already on the server.
func (m *Manager) refreshAndRedraw(ctx context.Context) error {
	m.cache.Invalidate()
	_, err := m.cache.UpdateUserInfo(ctx)
	m.tree.Redraw()
	return err
}

// Login prompts for server, username and password, bootstraps the CSRF
// token, authenticates and persists the session.
func (m *Manager) Login(ctx context.Context) error {
	server := m.session.BaseURL()
	if server == "" {
		server = m.defaultServer
	}
	server, ok := m.ui.ShowInputBox(InputBoxOptions{Prompt: "Server", Value: server, ValidateInput: ValidateURL})
	if !ok {
		return nil
	}
	username, ok := m.ui.ShowInputBox(InputBoxOptions{Prompt: "Username", ValidateInput: ValidateUsername})
	if !ok {
		return nil
	}
	password, ok := m.ui.ShowInputBox(InputBoxOptions{Prompt: "Password", Password: true, ValidateInput: ValidatePassword})
	if !ok {
		return nil
	}

	m.session.SetBaseURL(server)
	// Bootstrap errors are deliberately swallowed: the cookie may ride along
	// on any status, and a genuinely missing token surfaces on the login call.
	m.client.FetchCsrfToken(ctx) //nolint:errcheck
	token, err := m.client.Login(ctx, username, password, server)
	if err != nil {
		return err
	}
	m.session.SetBearerToken(token)
	m.session.TrySaveToDisk()
	m.tree.ResetRestore()
	return m.refreshAndRedraw(ctx)
}

// Logout clears the session, removes the persisted record and redraws.
// Client-side only; no request is issued.
func (m *Manager) Logout() {
	m.session.RemoveFromDisk()
	m.session.Clear()
	m.cache.Invalidate()
	m.tree.ResetRestore()
	m.tree.Redraw()
}

// Signup registers a new account; teacher selects the elevated endpoint.
func (m *Manager) Signup(ctx context.Context, teacher bool) error {
	username, ok := m.ui.ShowInputBox(InputBoxOptions{Prompt: "Username", ValidateInput: ValidateUsername})
	if !ok {
		return nil
	}
	password, ok := m.ui.ShowInputBox(InputBoxOptions{Prompt: "Password", Password: true, ValidateInput: ValidatePassword})
	if !ok {
		return nil
	}
	email, ok := m.ui.ShowInputBox(InputBoxOptions{Prompt: "Email", ValidateInput: ValidateEmail})
	if !ok {
		return nil
	}
	name, ok := m.ui.ShowInputBox(InputBoxOptions{Prompt: "Name", ValidateInput: ValidateName})
	if !ok {
		return nil
	}
	lastName, ok := m.ui.ShowInputBox(InputBoxOptions{Prompt: "Last name", ValidateInput: ValidateName})
	if !ok {
		return nil
	}

	req := client.SignupRequest{Username: username, Password: password, Email: email, Name: name, LastName: lastName}
	var err error
	if teacher {
		_, err = m.client.SignupTeacher(ctx, req)
	} else {
		_, err = m.client.Signup(ctx, req)
	}
	return err
}

// AddCourse prompts for a name and creates the course.
func (m *Manager) AddCourse(ctx context.Context) error {
	name, ok := m.ui.ShowInputBox(InputBoxOptions{Prompt: "Course name", ValidateInput: ValidateName})
	if !ok {
		return nil
	}
	if _, err := m.client.AddCourse(ctx, client.CourseRequest{Name: name}); err != nil {
		return err
	}
	return m.refreshAndRedraw(ctx)
}

// EditCourse prompts for a new name, pre-filled with the current one.
func (m *Manager) EditCourse(ctx context.Context, course *domain.Course) error {
	name, ok := m.ui.ShowInputBox(InputBoxOptions{Prompt: "Course name", Value: course.Name, ValidateInput: ValidateName})
	if !ok {
		return nil
	}
	if _, err := m.client.EditCourse(ctx, course.ID, client.CourseRequest{Name: name}); err != nil {
		return err
	}
	return m.refreshAndRedraw(ctx)
}

// DeleteCourse asks for modal confirmation before deleting; the affirmative
// action is never the default.
func (m *Manager) DeleteCourse(ctx context.Context, course *domain.Course) error {
	choice, ok := m.ui.ShowWarningMessage(fmt.Sprintf("Are you sure you want to delete %s?", course.Name), true, "Accept")
	if !ok || choice != "Accept" {
		return nil
	}
	if err := m.client.DeleteCourse(ctx, course.ID); err != nil {
		return err
	}
	return m.refreshAndRedraw(ctx)
}

// AddExercise creates the exercise record, then collects a file selection,
// bundles it and uploads the template. Cancelling the picker keeps the record
// (known asymmetry) and still refreshes so it shows up.
func (m *Manager) AddExercise(ctx context.Context, course *domain.Course) error {
	name, ok := m.ui.ShowInputBox(InputBoxOptions{Prompt: "Exercise name", ValidateInput: ValidateName})
	if !ok {
		return nil
	}
	exercise, err := m.client.AddExercise(ctx, course.ID, client.ExerciseRequest{Name: name})
	if err != nil {
		return err
	}

	paths, ok := m.ui.ShowOpenDialog(OpenDialogOptions{CanSelectFiles: true, CanSelectFolders: true, CanSelectMany: true})
	if !ok {
		if err := m.refreshAndRedraw(ctx); err != nil {
			return err
		}
		return ErrUploadSkipped
	}
	bundle, err := m.zip(paths)
	if err != nil {
		return err
	}
	if err := m.client.UploadExerciseTemplate(ctx, exercise.ID, bundle); err != nil {
		return err
	}
	return m.refreshAndRedraw(ctx)
}

// EditExercise prompts for a new name, pre-filled with the current one.
func (m *Manager) EditExercise(ctx context.Context, exercise *domain.Exercise) error {
	name, ok := m.ui.ShowInputBox(InputBoxOptions{Prompt: "Exercise name", Value: exercise.Name, ValidateInput: ValidateName})
	if !ok {
		return nil
	}
	if _, err := m.client.EditExercise(ctx, exercise.ID, client.ExerciseRequest{Name: name}); err != nil {
		return err
	}
	return m.refreshAndRedraw(ctx)
}

// DeleteExercise asks for modal confirmation before deleting.
func (m *Manager) DeleteExercise(ctx context.Context, exercise *domain.Exercise) error {
	choice, ok := m.ui.ShowWarningMessage(fmt.Sprintf("Are you sure you want to delete %s?", exercise.Name), true, "Accept")
	if !ok || choice != "Accept" {
		return nil
	}
	if err := m.client.DeleteExercise(ctx, exercise.ID); err != nil {
		return err
	}
	return m.refreshAndRedraw(ctx)
}

// GetCourseWithCode joins a course by sharing code.
func (m *Manager) GetCourseWithCode(ctx context.Context) error {
	code, ok := m.ui.ShowInputBox(InputBoxOptions{Prompt: "Sharing code", ValidateInput: ValidateSharingCode})
	if !ok {
		return nil
	}
	if _, err := m.client.GetCourseWithCode(ctx, code); err != nil {
		return err
	}
	return m.refreshAndRedraw(ctx)
}
