// Package tui hosts the terminal views: the course tree, the collaborator
// modals driven by the orchestrator, and the progress dashboard.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ifaraag/2019-VSCode4Teaching/internal/actions"
	"github.com/ifaraag/2019-VSCode4Teaching/internal/dashboard"
	"github.com/ifaraag/2019-VSCode4Teaching/internal/tree"
	"github.com/ifaraag/2019-VSCode4Teaching/pkg/client"
	"github.com/ifaraag/2019-VSCode4Teaching/pkg/domain"
)

// TreeChangedMsg is the engine's "data changed" signal; the tree is
// re-queried from the root.
type TreeChangedMsg struct{}

// opDoneMsg reports a finished orchestrator operation.
type opDoneMsg struct{ err error }

// codeCopiedMsg reports the sharing-code clipboard copy.
type codeCopiedMsg struct{ err error }

// filesSavedMsg reports a downloaded exercise bundle.
type filesSavedMsg struct {
	path string
	err  error
}

// dashLoadedMsg carries the first dashboard load for an exercise.
type dashLoadedMsg struct {
	exercise domain.Exercise
	rows     []dashboard.Row
	err      error
}

type viewState int

const (
	viewTree viewState = iota
	viewDashboard
)

// treeRow is one rendered line: a node plus its indentation depth.
type treeRow struct {
	node  tree.Node
	depth int
}

// App is the root bubbletea model.
type App struct {
	client   *client.Client
	cache    *client.CurrentUser
	provider *tree.Provider
	mgr      *actions.Manager
	version  string

	width, height int
	view          viewState
	rows          []treeRow
	cursor        int
	expanded      map[int64]bool
	statusMsg     string
	busy          bool
	spin          spinner.Model

	modal         modalState
	req           *uiRequest
	input         textinput.Model
	inputErr      string
	confirmAccept bool
	picker        filepicker.Model
	picked        []string

	dash dashModel
}

// NewApp builds the root model over an already-wired client stack.
func NewApp(c *client.Client, cache *client.CurrentUser, provider *tree.Provider, mgr *actions.Manager, version string) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle
	a := App{
		client:   c,
		cache:    cache,
		provider: provider,
		mgr:      mgr,
		version:  version,
		expanded: make(map[int64]bool),
		spin:     sp,
	}
	a.rebuildRows()
	return a
}

func (a App) Init() tea.Cmd {
	return a.spin.Tick
}

// rebuildRows flattens the engine's current answer into display rows.
// Nodes are transient; nothing here survives the next rebuild.
func (a *App) rebuildRows() {
	roots := a.provider.Children(nil)
	rows := make([]treeRow, 0, len(roots))
	for i := range roots {
		n := roots[i]
		rows = append(rows, treeRow{node: n})
		if n.Collapsible && n.Course != nil && a.expanded[n.Course.ID] {
			for _, child := range a.provider.Children(&n) {
				rows = append(rows, treeRow{node: child, depth: 1})
			}
		}
	}
	a.rows = rows
	if a.cursor >= len(rows) {
		a.cursor = max(0, len(rows)-1)
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.dash.width = msg.Width
		a.dash.height = msg.Height
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case TreeChangedMsg:
		a.rebuildRows()
		if errMsg := a.provider.LastError(); errMsg != "" {
			a.statusMsg = errMsg
		}
		return a, nil

	case uiRequestMsg:
		cmd, _ := a.openModal(msg.req)
		return a, cmd

	case opDoneMsg:
		a.busy = false
		if msg.err != nil {
			a.statusMsg = msg.err.Error()
		}
		return a, nil

	case codeCopiedMsg:
		if msg.err != nil {
			a.statusMsg = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			a.statusMsg = "sharing code copied"
		}
		return a, nil

	case filesSavedMsg:
		if msg.err != nil {
			a.statusMsg = fmt.Sprintf("download failed: %v", msg.err)
		} else {
			a.statusMsg = "exercise files saved to " + msg.path
		}
		return a, nil

	case dashLoadedMsg:
		if msg.err != nil {
			a.statusMsg = msg.err.Error()
			return a, nil
		}
		a.dash = newDashModel(a.client, msg.exercise, msg.rows)
		a.dash.width = a.width
		a.dash.height = a.height
		a.view = viewDashboard
		return a, nil
	}

	switch a.modal {
	case modalInput:
		cmd, _ := a.updateInputModal(msg)
		return a, cmd
	case modalConfirm:
		cmd, _ := a.updateConfirmModal(msg)
		return a, cmd
	case modalPicker:
		cmd, _ := a.updatePickerModal(msg)
		return a, cmd
	}

	if a.view == viewDashboard {
		var cmd tea.Cmd
		a.dash, cmd = a.dash.Update(msg)
		if a.dash.closed {
			a.view = viewTree
		}
		return a, cmd
	}

	if key, isKey := msg.(tea.KeyMsg); isKey {
		return a.handleTreeKey(key)
	}
	return a, nil
}

func (a App) handleTreeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "j", "down":
		if a.cursor < len(a.rows)-1 {
			a.cursor++
		}

	case "k", "up":
		if a.cursor > 0 {
			a.cursor--
		}

	case "r":
		a.statusMsg = ""
		a.provider.ForceRefresh()

	case "enter", " ":
		return a.activateCurrent()

	case "a":
		if a.isTeacher() {
			return a.runOp(func(ctx context.Context) error { return a.mgr.AddCourse(ctx) })
		}

	case "n":
		if node := a.current(); node != nil && node.Kind == tree.KindCourseTeacher {
			course := node.Course
			return a.runOp(func(ctx context.Context) error { return a.mgr.AddExercise(ctx, course) })
		}

	case "e":
		if node := a.current(); node != nil {
			switch node.Kind {
			case tree.KindCourseTeacher:
				course := node.Course
				return a.runOp(func(ctx context.Context) error { return a.mgr.EditCourse(ctx, course) })
			case tree.KindExerciseTeacher:
				exercise := node.Exercise
				return a.runOp(func(ctx context.Context) error { return a.mgr.EditExercise(ctx, exercise) })
			}
		}

	case "d":
		if node := a.current(); node != nil {
			switch node.Kind {
			case tree.KindCourseTeacher:
				course := node.Course
				return a.runOp(func(ctx context.Context) error { return a.mgr.DeleteCourse(ctx, course) })
			case tree.KindExerciseTeacher:
				exercise := node.Exercise
				return a.runOp(func(ctx context.Context) error { return a.mgr.DeleteExercise(ctx, exercise) })
			}
		}

	case "c":
		if node := a.current(); node != nil && node.Kind == tree.KindCourseTeacher {
			c, id := a.client, node.Course.ID
			return a, func() tea.Msg {
				code, err := c.GetSharingCode(context.Background(), id)
				if err != nil {
					return codeCopiedMsg{err: err}
				}
				return codeCopiedMsg{err: clipboard.WriteAll(code)}
			}
		}

	case "b":
		if node := a.current(); node != nil && node.Kind == tree.KindExerciseTeacher {
			c, exercise := a.client, *node.Exercise
			return a, func() tea.Msg {
				euis, err := c.GetExerciseUserInfo(context.Background(), exercise.ID)
				if err != nil {
					return dashLoadedMsg{err: err}
				}
				return dashLoadedMsg{exercise: exercise, rows: dashboard.Rows(euis)}
			}
		}
	}
	return a, nil
}

func (a App) activateCurrent() (tea.Model, tea.Cmd) {
	node := a.current()
	if node == nil {
		return a, nil
	}
	if node.Collapsible && node.Course != nil {
		a.expanded[node.Course.ID] = !a.expanded[node.Course.ID]
		a.rebuildRows()
		return a, nil
	}

	switch node.Kind {
	case tree.KindLogin:
		return a.runOp(func(ctx context.Context) error { return a.mgr.Login(ctx) })
	case tree.KindSignup:
		return a.runOp(func(ctx context.Context) error { return a.mgr.Signup(ctx, false) })
	case tree.KindSignupTeacher:
		return a.runOp(func(ctx context.Context) error { return a.mgr.Signup(ctx, true) })
	case tree.KindGetWithCode:
		return a.runOp(func(ctx context.Context) error { return a.mgr.GetCourseWithCode(ctx) })
	case tree.KindAddCourses:
		return a.runOp(func(ctx context.Context) error { return a.mgr.AddCourse(ctx) })
	case tree.KindLogout:
		return a.runOp(func(context.Context) error { a.mgr.Logout(); return nil })
	case tree.KindExerciseStudent, tree.KindExerciseTeacher:
		c, exercise := a.client, *node.Exercise
		return a, func() tea.Msg {
			data, err := c.GetExerciseFiles(context.Background(), exercise.ID)
			if err != nil {
				return filesSavedMsg{err: err}
			}
			path := fmt.Sprintf("exercise-%d.zip", exercise.ID)
			if err := os.WriteFile(path, data, 0644); err != nil {
				return filesSavedMsg{err: err}
			}
			return filesSavedMsg{path: path}
		}
	}
	return a, nil
}

// runOp starts an orchestrator operation on its own goroutine. Prompts block
// that goroutine through the bridge; the UI loop stays live.
func (a App) runOp(op func(context.Context) error) (tea.Model, tea.Cmd) {
	if a.busy {
		a.statusMsg = "another operation is in progress"
		return a, nil
	}
	a.busy = true
	a.statusMsg = ""
	return a, func() tea.Msg {
		return opDoneMsg{err: op(context.Background())}
	}
}

func (a App) current() *tree.Node {
	if a.cursor < 0 || a.cursor >= len(a.rows) {
		return nil
	}
	return &a.rows[a.cursor].node
}

func (a App) isTeacher() bool {
	u := a.cache.UserInfo()
	return u != nil && u.IsTeacher()
}

func (a App) View() string {
	header := titleStyle.Render("4Teaching") + metaStyle.Render("  "+a.version)
	if u := a.cache.UserInfo(); u != nil {
		role := "student"
		if u.IsTeacher() {
			role = "teacher"
		}
		header += "  " + dimStyle.Render(u.Username) + metaStyle.Render(" ("+role+")")
	}
	if a.provider.Refreshing() {
		header += "  " + a.spin.View() + dimStyle.Render("syncing")
	}

	var body string
	switch {
	case a.modal != modalNone:
		body = a.modalView()
	case a.view == viewDashboard:
		body = a.dash.View()
	default:
		body = a.treeView()
	}

	status := " "
	if a.statusMsg != "" {
		status = " " + errorStyle.Render(a.statusMsg)
	}

	help := a.helpLine()
	return header + "\n\n" + body + "\n" + status + "\n" + help
}

func (a App) treeView() string {
	if len(a.rows) == 0 {
		if a.provider.Refreshing() {
			return dimStyle.Render("  loading courses...")
		}
		return dimStyle.Render("  nothing to show")
	}

	var b strings.Builder
	for i, row := range a.rows {
		cursor := "  "
		if i == a.cursor {
			cursor = accentStyle.Render("> ")
		}
		indent := strings.Repeat("  ", row.depth)

		label := row.node.Label
		style := normalStyle
		switch row.node.Kind {
		case tree.KindCourseTeacher, tree.KindCourseStudent:
			marker := "▸ "
			if row.node.Course != nil && a.expanded[row.node.Course.ID] {
				marker = "▾ "
			}
			label = marker + label
		case tree.KindExerciseTeacher, tree.KindExerciseStudent:
			label = "· " + label
			style = dimStyle
		default:
			style = actionStyle
		}
		if i == a.cursor {
			style = selectedStyle
		}
		b.WriteString(cursor + indent + style.Render(label) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (a App) helpLine() string {
	if a.modal != modalNone {
		return ""
	}
	if a.view == viewDashboard {
		return " " + helpEntry("r", "reload") + "  " + helpEntry("t", "interval") + "  " + helpEntry("esc", "back")
	}
	entries := []string{helpEntry("j/k", "nav"), helpEntry("enter", "open")}
	if a.isTeacher() {
		entries = append(entries,
			helpEntry("a", "add course"),
			helpEntry("n", "new exercise"),
			helpEntry("e", "edit"),
			helpEntry("d", "delete"),
			helpEntry("c", "code"),
			helpEntry("b", "dashboard"))
	}
	entries = append(entries, helpEntry("r", "refresh"), helpEntry("q", "quit"))
	return " " + strings.Join(entries, "  ")
}
