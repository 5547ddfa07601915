package client

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ifaraag/2019-VSCode4Teaching/pkg/domain"
)

// CurrentUser caches the last successfully fetched authenticated user.
// Concurrent refreshes collapse into a single outstanding request; every
// caller observes the same resolved value or the same failure.
type CurrentUser struct {
	c      *Client
	flight singleflight.Group

	mu   sync.Mutex
	user *domain.User
}

// NewCurrentUser creates an empty cache over the given client.
func NewCurrentUser(c *Client) *CurrentUser {
	return &CurrentUser{c: c}
}

// IsLoggedIn reports whether a bearer token is present.
func (cu *CurrentUser) IsLoggedIn() bool {
	return cu.c.Session().BearerToken() != ""
}

// UserInfo returns the last fetched user without touching the network.
// Nil means no successful fetch has happened since the last invalidation.
func (cu *CurrentUser) UserInfo() *domain.User {
	cu.mu.Lock()
	defer cu.mu.Unlock()
	return cu.user
}

// Invalidate drops the held value so the next query forces a refresh.
func (cu *CurrentUser) Invalidate() {
	cu.mu.Lock()
	cu.user = nil
	cu.mu.Unlock()
}

// UpdateUserInfo fetches the current user and stores it. A call issued while
// another refresh is outstanding does not hit the network; both callers get
// the shared result.
func (cu *CurrentUser) UpdateUserInfo(ctx context.Context) (*domain.User, error) {
	v, err, _ := cu.flight.Do("currentuser", func() (any, error) {
		u, err := cu.c.GetCurrentUser(ctx)
		if err != nil {
			return nil, err
		}
		cu.mu.Lock()
		cu.user = u
		cu.mu.Unlock()
		return u, nil
	})
	if err != nil {
		return nil, fmt.Errorf("currentuser.UpdateUserInfo: %w", err)
	}
	return v.(*domain.User), nil
}

// InitializeSessionFromFile restores session credentials from disk. It does
// not fetch the user; the first tree query triggers that, keeping restoration
// synchronous and side-effect-light.
func (cu *CurrentUser) InitializeSessionFromFile() bool {
	return cu.c.Session().TryLoadFromDisk()
}
