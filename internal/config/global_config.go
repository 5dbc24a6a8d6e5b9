package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFileName is the file the loader looks for in the working directory
// and in the user config directory.
const ConfigFileName = ".debugkit.yaml"

// UserConfigDir returns ~/.config/debugkit. Settings there apply to every
// project without a config of its own.
func UserConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "debugkit"), nil
}

// UserConfigPath returns the user-level config file path.
func UserConfigPath() (string, error) {
	dir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// EnsureUserConfigFile creates the user-level config with defaults unless
// it already exists, and returns its path.
func EnsureUserConfigFile() (string, error) {
	path, err := UserConfigPath()
	if err != nil {
		return "", err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		return path, nil
	} else if !os.IsNotExist(statErr) {
		return "", fmt.Errorf("checking user config: %w", statErr)
	}
	if err := WriteDefault(path, false); err != nil {
		return "", err
	}
	return path, nil
}
