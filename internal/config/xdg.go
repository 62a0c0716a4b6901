package config

import (
	"os"
	"path/filepath"
)

const appName = "coco"

// XDGDirs holds the XDG Base Directory paths for coco.
type XDGDirs struct {
	ConfigHome string
	DataHome   string
	StateHome  string
}

// GetXDGDirs returns the XDG Base Directory paths for coco:
// - $XDG_CONFIG_HOME/coco (default: ~/.config/coco)
// - $XDG_DATA_HOME/coco (default: ~/.local/share/coco)
// - $XDG_STATE_HOME/coco (default: ~/.local/state/coco)
func GetXDGDirs() (*XDGDirs, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	return &XDGDirs{
		ConfigHome: xdgDir("XDG_CONFIG_HOME", homeDir, ".config"),
		DataHome:   xdgDir("XDG_DATA_HOME", homeDir, ".local", "share"),
		StateHome:  xdgDir("XDG_STATE_HOME", homeDir, ".local", "state"),
	}, nil
}

func xdgDir(env, homeDir string, fallback ...string) string {
	base := os.Getenv(env)
	if base == "" {
		base = filepath.Join(append([]string{homeDir}, fallback...)...)
	}
	return filepath.Join(base, appName)
}

// DefaultPath returns the configuration file used when --config is not given.
func DefaultPath() (string, error) {
	dirs, err := GetXDGDirs()
	if err != nil {
		return "", err
	}
	return filepath.Join(dirs.ConfigHome, "config.yaml"), nil
}
