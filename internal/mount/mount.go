package mount

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// Mapping binds one remote directory to a local mount point named under a
// mount root.
type Mapping struct {
	Name       string // Local name, the mount point's final path element
	RemotePath string // Path on the remote host
	LocalPath  string // Absolute local mount point (MountRoot/Name)
}

// NewMapping builds a Mapping for name under mountRoot.
//
// The name must be a single path element: it cannot be empty, ".", ".." or
// contain a separator, so the mount point never escapes the mount root.
func NewMapping(name, remotePath, mountRoot string) (Mapping, error) {
	if err := validName(name); err != nil {
		return Mapping{}, err
	}
	if strings.TrimSpace(remotePath) == "" {
		return Mapping{}, fmt.Errorf("dir %q: remote_path cannot be empty", name)
	}
	root, err := ExpandPath(mountRoot)
	if err != nil {
		return Mapping{}, fmt.Errorf("invalid mount root: %w", err)
	}
	return Mapping{
		Name:       name,
		RemotePath: remotePath,
		LocalPath:  filepath.Join(root, name),
	}, nil
}

// Source returns the sshfs source argument for host.
func (m Mapping) Source(host string) string {
	return host + ":" + m.RemotePath
}

func validName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("dir name cannot be empty")
	case name == "." || name == "..":
		return fmt.Errorf("dir name %q is not allowed", name)
	case strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator):
		return fmt.Errorf("dir name %q must not contain a path separator", name)
	}
	return nil
}

// ExpandPath expands ~ to the home directory and returns a clean absolute path.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand path: %w", err)
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("failed to convert to absolute path: %w", err)
	}

	return filepath.Clean(abs), nil
}
