package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	baseURL := flag.String("base-url", "", "backend base URL (overrides config and POSTDECK_API_URL)")
	theme := flag.String("theme", "", "markdown theme: auto, dark or light")
	orgID := flag.String("org", "", "publish as this organization instead of the member profile")
	loginURL := flag.String("login-url", "", "login callback URL to capture a session token from before starting")
	flag.Parse()

	config, configPath := loadPortalConfig()
	dirty := false
	if value := strings.TrimSpace(*baseURL); value != "" {
		config.BaseURL = value
		dirty = true
	}
	if value := strings.TrimSpace(*theme); value != "" {
		config.Theme = value
		dirty = true
	}
	if value := strings.TrimSpace(*orgID); value != "" {
		config.OrgID = value
		dirty = true
	}
	if dirty {
		if err := savePortalConfig(config, configPath); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not save config: %v\n", err)
		}
	}

	store, err := openSessionStore(filepath.Join(resolveConfigDir(), "session.db"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not open session store: %v\n", err)
		os.Exit(1)
	}

	if raw := strings.TrimSpace(*loginURL); raw != "" {
		if _, err := syncLoginToken(store, raw); err != nil {
			fmt.Fprintf(os.Stderr, "could not capture login token: %v\n", err)
			_ = store.Close()
			os.Exit(1)
		}
	}

	m := initialModel(modelOptions{
		config:     config,
		configPath: configPath,
		store:      store,
	})

	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "postdeck failed: %v\n", err)
		_ = store.Close()
		os.Exit(1)
	}
	_ = store.Close()
}
