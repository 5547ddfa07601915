// Package tree derives the navigable course/exercise tree from the
// current-user cache. Nodes are recomputed on every query and never cached
// across mutations; the server is the authority on what exists.
package tree

import (
	"context"
	"sync"

	"github.com/ifaraag/2019-VSCode4Teaching/pkg/client"
	"github.com/ifaraag/2019-VSCode4Teaching/pkg/domain"
)

// Kind tags what a node is, and therefore which commands apply to it.
type Kind int

const (
	KindLogin Kind = iota
	KindSignup
	KindGetWithCode
	KindAddCourses
	KindSignupTeacher
	KindLogout
	KindCourseTeacher
	KindCourseStudent
	KindExerciseTeacher
	KindExerciseStudent
)

// Node is one display item. Course and Exercise are non-owning references to
// the originating model for later command dispatch; a node does not outlive
// the query that produced it.
type Node struct {
	Label       string
	Kind        Kind
	Collapsible bool
	Course      *domain.Course
	Exercise    *domain.Exercise
}

// Fixed action items. The root template is fully determined by
// (isLoggedIn, roles); nothing else may influence it.
var (
	LoginItem         = Node{Label: "Login", Kind: KindLogin}
	SignupItem        = Node{Label: "Sign up", Kind: KindSignup}
	GetWithCodeItem   = Node{Label: "Get course with code", Kind: KindGetWithCode}
	AddCoursesItem    = Node{Label: "Add course", Kind: KindAddCourses}
	SignupTeacherItem = Node{Label: "Sign up a teacher", Kind: KindSignupTeacher}
	LogoutItem        = Node{Label: "Logout", Kind: KindLogout}
)

// Provider computes tree children and owns the redraw signal back to the
// host view.
type Provider struct {
	cache   *client.CurrentUser
	session *client.Session

	mu           sync.Mutex
	redraw       func()
	refreshing   bool
	restoreTried bool
	lastErr      string
}

// NewProvider wires the engine to its cache and session store.
func NewProvider(cache *client.CurrentUser, session *client.Session) *Provider {
	return &Provider{cache: cache, session: session}
}

// SetRedraw registers the host's "data changed" signal. Called once at wiring
// time, before any query.
func (p *Provider) SetRedraw(fn func()) {
	p.mu.Lock()
	p.redraw = fn
	p.mu.Unlock()
}

// Redraw asks the host to re-query the tree from the root.
func (p *Provider) Redraw() {
	p.mu.Lock()
	fn := p.redraw
	p.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Refreshing reports whether a user refresh is currently outstanding.
func (p *Provider) Refreshing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshing
}

// LastError returns the message of the most recent failed refresh, cleared on
// the next successful one.
func (p *Provider) LastError() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Children returns the ordered children of node; nil means the root. The
// result reflects whatever state is available now — when a restored session
// is still being verified, the list is empty and a redraw follows.
func (p *Provider) Children(node *Node) []Node {
	if node == nil {
		return p.rootChildren()
	}
	switch node.Kind {
	case KindCourseTeacher:
		return exerciseNodes(node.Course, KindExerciseTeacher)
	case KindCourseStudent:
		return exerciseNodes(node.Course, KindExerciseStudent)
	}
	return nil
}

func (p *Provider) rootChildren() []Node {
	if !p.cache.IsLoggedIn() {
		if p.tryRestore() {
			p.refreshAsync()
			return []Node{}
		}
		return []Node{LoginItem, SignupItem}
	}

	// A restored token past its exp claim is dead weight; drop it instead of
	// issuing a doomed request.
	if p.session.TokenExpired() {
		p.session.Clear()
		p.session.RemoveFromDisk()
		p.cache.Invalidate()
		return []Node{LoginItem, SignupItem}
	}

	user := p.cache.UserInfo()
	if user == nil {
		p.refreshAsync()
		return []Node{}
	}

	if user.IsTeacher() {
		nodes := []Node{AddCoursesItem}
		nodes = append(nodes, courseNodes(user.Courses, KindCourseTeacher)...)
		return append(nodes, SignupTeacherItem, LogoutItem)
	}
	nodes := []Node{GetWithCodeItem}
	nodes = append(nodes, courseNodes(user.Courses, KindCourseStudent)...)
	return append(nodes, LogoutItem)
}

// tryRestore attempts the disk restore exactly once per logged-out stretch,
// so a failing refresh cannot ping-pong between restore and redraw.
func (p *Provider) tryRestore() bool {
	p.mu.Lock()
	if p.restoreTried {
		p.mu.Unlock()
		return false
	}
	p.restoreTried = true
	p.mu.Unlock()
	return p.cache.InitializeSessionFromFile()
}

// ResetRestore re-arms the disk restore, used after an explicit login or
// logout changes the session.
func (p *Provider) ResetRestore() {
	p.mu.Lock()
	p.restoreTried = false
	p.mu.Unlock()
}

// refreshAsync verifies the session by fetching the user, then signals a
// redraw. Failure transitions back to logged out; a 401 also removes the
// stale session file.
func (p *Provider) refreshAsync() {
	p.mu.Lock()
	if p.refreshing {
		p.mu.Unlock()
		return
	}
	p.refreshing = true
	p.mu.Unlock()

	go func() {
		_, err := p.cache.UpdateUserInfo(context.Background())
		p.mu.Lock()
		p.refreshing = false
		if err != nil {
			p.lastErr = err.Error()
		} else {
			p.lastErr = ""
		}
		p.mu.Unlock()
		if err != nil {
			if client.IsStatus(err, 401) {
				p.session.RemoveFromDisk()
			}
			p.session.Clear()
			p.cache.Invalidate()
		}
		p.Redraw()
	}()
}

// ForceRefresh drops the cached user and re-fetches, redrawing when done.
func (p *Provider) ForceRefresh() {
	p.cache.Invalidate()
	p.refreshAsync()
}

func courseNodes(courses []domain.Course, kind Kind) []Node {
	nodes := make([]Node, 0, len(courses))
	for i := range courses {
		c := &courses[i]
		nodes = append(nodes, Node{Label: c.Name, Kind: kind, Collapsible: true, Course: c})
	}
	return nodes
}

func exerciseNodes(course *domain.Course, kind Kind) []Node {
	if course == nil {
		return nil
	}
	nodes := make([]Node, 0, len(course.Exercises))
	for i := range course.Exercises {
		e := &course.Exercises[i]
		nodes = append(nodes, Node{Label: e.Name, Kind: kind, Course: course, Exercise: e})
	}
	return nodes
}
