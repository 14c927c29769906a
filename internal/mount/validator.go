package mount

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// ProtectedPaths are never used as mount points, nor anything beneath them.
// Mounting over them would hide the keys ssh itself needs.
var ProtectedPaths = []string{
	"~/.ssh",
	"~/.gnupg",
	"~/.config/neurax",
}

// Validator rejects mount points that land on protected paths.
type Validator struct {
	protected []string // Expanded absolute paths
}

// NewValidator creates a Validator for the given protected paths.
// Each path is expanded, made absolute and resolved through symlinks.
func NewValidator(protected []string) (*Validator, error) {
	expanded := make([]string, 0, len(protected))

	for _, path := range protected {
		if path == "" {
			continue
		}

		expandedPath, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("failed to expand protected path '%s': %w", path, err)
		}

		absPath, err := filepath.Abs(expandedPath)
		if err != nil {
			return nil, fmt.Errorf("failed to convert protected path '%s' to absolute: %w", path, err)
		}

		// e.g. /etc -> /private/etc on macOS
		realPath, err := filepath.EvalSymlinks(absPath)
		if err != nil {
			realPath = filepath.Clean(absPath)
		}

		expanded = append(expanded, realPath)
	}

	return &Validator{protected: expanded}, nil
}

// Validate returns an error if the mapping's mount point is, is under, or
// contains a protected path.
func (v *Validator) Validate(m Mapping) error {
	if m.LocalPath == "" {
		return fmt.Errorf("dir %q: mount point cannot be empty", m.Name)
	}

	localPath := filepath.Clean(m.LocalPath)
	realPath, err := resolveExisting(localPath)
	if err != nil {
		realPath = localPath
	}

	for _, protected := range v.protected {
		if isUnderOrEqual(realPath, protected) || isUnderOrEqual(protected, realPath) {
			if realPath != localPath {
				return fmt.Errorf("dir %q: mount point %s resolves to protected path %s", m.Name, m.LocalPath, protected)
			}
			return fmt.Errorf("dir %q: mount point %s overlaps protected path %s", m.Name, m.LocalPath, protected)
		}
	}

	return nil
}

// resolveExisting resolves symlinks in the longest existing prefix of path.
// Mount points are usually created on bind, so the leaf may not exist yet.
func resolveExisting(path string) (string, error) {
	var missing []string
	current := path
	for {
		real, err := filepath.EvalSymlinks(current)
		if err == nil {
			parts := append([]string{real}, missing...)
			return filepath.Join(parts...), nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", err
		}
		missing = append([]string{filepath.Base(current)}, missing...)
		current = parent
	}
}

// isUnderOrEqual returns true if testPath is under or equal to basePath.
//   - "/home/user/.ssh" is under "/home/user/.ssh" (equal)
//   - "/home/user/.ssh/sock" is under "/home/user/.ssh"
//   - "/home/user/.sshrc" is NOT under "/home/user/.ssh"
func isUnderOrEqual(testPath, basePath string) bool {
	if testPath == basePath {
		return true
	}

	baseWithSep := basePath
	if !strings.HasSuffix(baseWithSep, string(filepath.Separator)) {
		baseWithSep += string(filepath.Separator)
	}

	return strings.HasPrefix(testPath, baseWithSep)
}
