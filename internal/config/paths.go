package config

import (
	"os"
	"path/filepath"
)

func ConfigRoot() string {
	// Windows
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, "picdl")
	}

	// Linux/macOS XDG
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "picdl")
	}

	// Linux/macOS default
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "picdl")
}

func ConfigPath() string {
	return filepath.Join(ConfigRoot(), "config.yaml")
}

func EnsureRoot() error {
	return os.MkdirAll(ConfigRoot(), 0755)
}
