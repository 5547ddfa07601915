package client

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSessionSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	s := NewSession(path)
	s.SetBaseURL("http://server:8080")
	s.SetBearerToken("jwt-abc")
	s.SetCSRFToken("csrf-should-not-persist")

	if !s.TrySaveToDisk() {
		t.Fatal("TrySaveToDisk() = false, want true")
	}

	restored := NewSession(path)
	if !restored.TryLoadFromDisk() {
		t.Fatal("TryLoadFromDisk() = false, want true")
	}
	if got := restored.BaseURL(); got != "http://server:8080" {
		t.Errorf("BaseURL = %q, want %q", got, "http://server:8080")
	}
	if got := restored.BearerToken(); got != "jwt-abc" {
		t.Errorf("BearerToken = %q, want %q", got, "jwt-abc")
	}
	// CSRF tokens are per-run; they must not survive a restart.
	if got := restored.CSRFToken(); got != "" {
		t.Errorf("CSRFToken = %q, want empty", got)
	}
	if !restored.Persisted() {
		t.Error("Persisted() = false after load, want true")
	}
}

func TestSessionLoad_MissingFile(t *testing.T) {
	s := NewSession(filepath.Join(t.TempDir(), "nope"))
	if s.TryLoadFromDisk() {
		t.Error("TryLoadFromDisk() = true for missing file, want false")
	}
}

func TestSessionLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	s := NewSession(path)
	if s.TryLoadFromDisk() {
		t.Error("TryLoadFromDisk() = true for corrupt file, want false")
	}
	if s.BearerToken() != "" {
		t.Errorf("BearerToken = %q after failed load, want empty", s.BearerToken())
	}
}

func TestSessionLoad_EmptyToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	data, _ := json.Marshal(sessionFile{BaseURL: "http://x", JWTToken: ""}) //nolint:errcheck
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}
	s := NewSession(path)
	if s.TryLoadFromDisk() {
		t.Error("TryLoadFromDisk() = true for empty token, want false")
	}
}

func TestSessionRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	s := NewSession(path)
	s.SetBaseURL("http://server")
	s.SetBearerToken("tok")
	if !s.TrySaveToDisk() {
		t.Fatal("TrySaveToDisk() = false")
	}
	if !s.RemoveFromDisk() {
		t.Fatal("RemoveFromDisk() = false, want true")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("session file still exists after RemoveFromDisk: %v", err)
	}
	// Removing again is still a success.
	if !s.RemoveFromDisk() {
		t.Error("RemoveFromDisk() = false for missing file, want true")
	}
}

func TestSessionClear(t *testing.T) {
	s := NewSession(filepath.Join(t.TempDir(), "session"))
	s.SetBaseURL("http://server")
	s.SetBearerToken("tok")
	s.SetCSRFToken("csrf")
	s.Clear()
	if s.BaseURL() != "" || s.BearerToken() != "" || s.CSRFToken() != "" {
		t.Error("Clear() left credentials behind")
	}
}

// fakeJWT builds an unsigned token carrying the given exp claim.
func fakeJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	enc := func(v any) string {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}
		return base64.RawURLEncoding.EncodeToString(data)
	}
	header := enc(map[string]string{"alg": "HS256", "typ": "JWT"})
	claims := enc(map[string]int64{"exp": exp.Unix()})
	return fmt.Sprintf("%s.%s.%s", header, claims, base64.RawURLEncoding.EncodeToString([]byte("sig")))
}

func TestTokenExpired(t *testing.T) {
	s := NewSession(filepath.Join(t.TempDir(), "session"))

	s.SetBearerToken(fakeJWT(t, time.Now().Add(-time.Hour)))
	if !s.TokenExpired() {
		t.Error("TokenExpired() = false for past exp, want true")
	}

	s.SetBearerToken(fakeJWT(t, time.Now().Add(time.Hour)))
	if s.TokenExpired() {
		t.Error("TokenExpired() = true for future exp, want false")
	}
}

func TestTokenExpired_OpaqueToken(t *testing.T) {
	s := NewSession(filepath.Join(t.TempDir(), "session"))
	s.SetBearerToken("not-a-jwt")
	if s.TokenExpired() {
		t.Error("TokenExpired() = true for opaque token, want false")
	}
	s.SetBearerToken("")
	if s.TokenExpired() {
		t.Error("TokenExpired() = true for empty token, want false")
	}
}
