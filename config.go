package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultBaseURL = "http://localhost:8080"

type portalConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
	Theme   string `yaml:"theme,omitempty"`
	OrgID   string `yaml:"org_id,omitempty"`
}

// loadPortalConfig merges, in order of increasing precedence: portal.yaml in
// the config dir, a .env file in the working directory, and live env vars.
func loadPortalConfig() (*portalConfig, string) {
	configDir := resolveConfigDir()
	path := filepath.Join(configDir, "portal.yaml")
	cfg := &portalConfig{}
	if err := os.MkdirAll(configDir, 0o755); err == nil {
		if data, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}

	_ = godotenv.Load()
	if value := strings.TrimSpace(os.Getenv("POSTDECK_API_URL")); value != "" {
		cfg.BaseURL = value
	}
	if value := strings.TrimSpace(os.Getenv("POSTDECK_THEME")); value != "" {
		cfg.Theme = value
	}
	if value := strings.TrimSpace(os.Getenv("POSTDECK_ORG_ID")); value != "" {
		cfg.OrgID = value
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return cfg, path
}

func savePortalConfig(cfg *portalConfig, path string) error {
	if cfg == nil {
		cfg = &portalConfig{}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func resolveConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "postdeck")
}
