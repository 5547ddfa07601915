package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ifaraag/2019-VSCode4Teaching/internal/actions"
	"github.com/ifaraag/2019-VSCode4Teaching/internal/tree"
	"github.com/ifaraag/2019-VSCode4Teaching/internal/tui"
	"github.com/ifaraag/2019-VSCode4Teaching/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

const defaultServerURL = "http://localhost:8080"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "v4t",
		Short:         "Terminal client for the 4Teaching platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "logout",
			Short: "Remove the saved session",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runLogout()
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the client version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Println("v4t " + version)
			},
		},
	)
	return root
}

// defaultServer returns the server URL to pre-fill in the login prompt:
// env var > default.
func defaultServer() string {
	if url := os.Getenv("V4T_SERVER_URL"); url != "" {
		return url
	}
	return defaultServerURL
}

func runTUI() error {
	godotenv.Load() //nolint:errcheck // a missing .env is fine

	session := client.NewSession(os.Getenv("V4T_SESSION_FILE"))
	c := client.New(session)
	cache := client.NewCurrentUser(c)
	cache.InitializeSessionFromFile()

	provider := tree.NewProvider(cache, session)
	d := tui.NewDispatcher()
	provider.SetRedraw(func() {
		d.Send(tui.TreeChangedMsg{})
	})

	ui := tui.NewBridgeUI(d)
	mgr := actions.NewManager(c, cache, provider, ui, defaultServer())

	app := tui.NewApp(c, cache, provider, mgr, version)
	p := tea.NewProgram(app, tea.WithAltScreen())
	d.Bind(p.Send)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func runLogout() error {
	godotenv.Load() //nolint:errcheck

	session := client.NewSession(os.Getenv("V4T_SESSION_FILE"))
	if !session.TryLoadFromDisk() {
		fmt.Println("Already logged out.")
		return nil
	}
	if !session.RemoveFromDisk() {
		return fmt.Errorf("could not remove session file")
	}
	fmt.Println("Logged out.")
	return nil
}
