package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// sessionFile is the on-disk shape of a persisted session.
type sessionFile struct {
	BaseURL  string `json:"base_url"`
	JWTToken string `json:"jwt_token"`
}

// Session holds the credentials every request is built from: server base URL,
// bearer token and the double-submit CSRF token. It owns the optional on-disk
// session record and nothing else — no network, no UI.
type Session struct {
	mu        sync.Mutex
	path      string
	baseURL   string
	bearer    string
	csrf      string
	persisted bool
}

// NewSession creates an empty session. path overrides the session file
// location; empty means ~/.v4t/session.
func NewSession(path string) *Session {
	return &Session{path: path}
}

func (s *Session) filePath() (string, error) {
	if s.path != "" {
		return s.path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".v4t", "session"), nil
}

func (s *Session) SetBaseURL(u string) {
	s.mu.Lock()
	s.baseURL = u
	s.mu.Unlock()
}

func (s *Session) BaseURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseURL
}

func (s *Session) SetBearerToken(tok string) {
	s.mu.Lock()
	s.bearer = tok
	s.mu.Unlock()
}

func (s *Session) BearerToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bearer
}

func (s *Session) SetCSRFToken(tok string) {
	s.mu.Lock()
	s.csrf = tok
	s.mu.Unlock()
}

func (s *Session) CSRFToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.csrf
}

// Persisted reports whether the current credentials are backed by a file.
func (s *Session) Persisted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persisted
}

// Clear drops all in-memory credentials. The session file, if any, is left
// alone; use RemoveFromDisk for that.
func (s *Session) Clear() {
	s.mu.Lock()
	s.baseURL = ""
	s.bearer = ""
	s.csrf = ""
	s.persisted = false
	s.mu.Unlock()
}

// TrySaveToDisk writes the base URL and bearer token to the session file.
// Returns false on any failure; an unsaved session is still usable.
func (s *Session) TrySaveToDisk() bool {
	path, err := s.filePath()
	if err != nil {
		return false
	}
	s.mu.Lock()
	rec := sessionFile{BaseURL: s.baseURL, JWTToken: s.bearer}
	s.mu.Unlock()
	data, err := json.Marshal(rec)
	if err != nil {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return false
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return false
	}
	s.mu.Lock()
	s.persisted = true
	s.mu.Unlock()
	return true
}

// TryLoadFromDisk restores a previously saved session. A missing, unreadable
// or corrupt file returns false — unauthenticated use is a valid state.
func (s *Session) TryLoadFromDisk() bool {
	path, err := s.filePath()
	if err != nil {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var rec sessionFile
	if err := json.Unmarshal(data, &rec); err != nil {
		return false
	}
	if rec.JWTToken == "" {
		return false
	}
	s.mu.Lock()
	s.baseURL = rec.BaseURL
	s.bearer = rec.JWTToken
	s.persisted = true
	s.mu.Unlock()
	return true
}

// RemoveFromDisk deletes the session file. Missing file counts as success.
func (s *Session) RemoveFromDisk() bool {
	path, err := s.filePath()
	if err != nil {
		return false
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return false
	}
	s.mu.Lock()
	s.persisted = false
	s.mu.Unlock()
	return true
}

// TokenExpired peeks at the bearer token's exp claim without verifying the
// signature (the server holds the key). Tokens that don't parse as JWTs or
// carry no expiry report false, so opaque tokens keep working.
func (s *Session) TokenExpired() bool {
	tok := s.BearerToken()
	if tok == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
