// Package dirs resolves the per-user directories neurax reads from and
// writes to. It follows the XDG base directory layout with home-relative
// fallbacks.
package dirs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// AppName namespaces every directory neurax owns.
const AppName = "neurax"

// RuntimeRoot returns the user-scoped runtime directory used as the base for
// control sockets and session records.
//
// $XDG_RUNTIME_DIR is preferred. When it is unset the data home is returned
// instead and fallback is true; callers should warn but carry on.
func RuntimeRoot() (root string, fallback bool, err error) {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir, false, nil
	}
	data, err := DataHome()
	if err != nil {
		return "", true, err
	}
	return data, true, nil
}

// DataHome returns $XDG_DATA_HOME, defaulting to ~/.local/share.
func DataHome() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share"), nil
}

// ConfigHome returns $XDG_CONFIG_HOME, defaulting to ~/.config.
func ConfigHome() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir, nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config"), nil
}

// ConfigDir returns the neurax configuration directory.
func ConfigDir() (string, error) {
	base, err := ConfigHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}

// NamedConfigDir returns the directory holding named session documents.
func NamedConfigDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "configs"), nil
}
