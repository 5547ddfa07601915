package main

import (
	"testing"
)

func TestDefaultServer(t *testing.T) {
	t.Setenv("V4T_SERVER_URL", "")
	if got := defaultServer(); got != defaultServerURL {
		t.Errorf("defaultServer() = %q, want %q", got, defaultServerURL)
	}

	t.Setenv("V4T_SERVER_URL", "https://v4t.example.com")
	if got := defaultServer(); got != "https://v4t.example.com" {
		t.Errorf("defaultServer() = %q, want env override", got)
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{"logout": false, "version": false}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestLogoutCommand_NoSession(t *testing.T) {
	t.Setenv("V4T_SESSION_FILE", t.TempDir()+"/session")
	root := newRootCmd()
	root.SetArgs([]string{"logout"})
	if err := root.Execute(); err != nil {
		t.Fatalf("logout error: %v", err)
	}
}
