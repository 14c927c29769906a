// Package config resolves the configuration neurax runs with: per-host
// session documents (TOML, one per host) and application-wide settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/neurax-dev/neurax/internal/dirs"
	"github.com/neurax-dev/neurax/internal/mount"
)

var (
	// ErrNoConfig is returned when no session document could be located.
	ErrNoConfig = errors.New("no session config")
	// ErrInvalid is returned when a session document is malformed.
	ErrInvalid = errors.New("invalid session config")
)

// Session is a resolved session document. It is immutable once loaded.
type Session struct {
	Path      string          // File the session was read from
	Host      string          // ssh destination and control socket key
	SSHOpts   []string        // Extra ssh arguments, passed verbatim
	MountRoot string          // Absolute directory holding the mount points
	Dirs      []mount.Mapping // Sorted by Name
}

type document struct {
	Host      string               `toml:"host"`
	SSHOpts   []string             `toml:"ssh_opts"`
	MountRoot string               `toml:"mount_root"`
	Dirs      map[string]dirConfig `toml:"dirs"`
}

type dirConfig struct {
	RemotePath string `toml:"remote_path"`
}

// Resolve returns the session document path selected by an explicit path or
// a config name. An explicit path wins.
func Resolve(path, name string) (string, error) {
	if path != "" {
		abs, err := mount.ExpandPath(path)
		if err != nil {
			return "", fmt.Errorf("invalid config path: %w", err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrNoConfig, abs, err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("%w: %s is a directory", ErrNoConfig, abs)
		}
		return abs, nil
	}

	if name != "" {
		named, err := NamedPath(name)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(named); err != nil {
			return "", fmt.Errorf("%w: no config for %s in %s", ErrNoConfig, name, filepath.Dir(named))
		}
		return named, nil
	}

	return "", fmt.Errorf("%w: either --config or --name must be specified", ErrNoConfig)
}

// NamedPath returns where the session document called name lives.
func NamedPath(name string) (string, error) {
	if strings.TrimSpace(name) == "" || strings.ContainsRune(name, '/') || name == "." || name == ".." {
		return "", fmt.Errorf("%w: invalid config name %q", ErrNoConfig, name)
	}
	dir, err := dirs.NamedConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name+".toml"), nil
}

// Load resolves and reads a session document.
func Load(path, name string) (*Session, error) {
	resolved, err := Resolve(path, name)
	if err != nil {
		return nil, err
	}
	return LoadFile(resolved)
}

// LoadFile reads and validates the session document at path.
func LoadFile(path string) (*Session, error) {
	var doc document
	meta, err := toml.DecodeFile(path, &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalid, path, err)
	}

	if !meta.IsDefined("host") || strings.TrimSpace(doc.Host) == "" {
		return nil, fmt.Errorf("%w: %s: missing required key \"host\"", ErrInvalid, path)
	}

	host := strings.TrimSpace(doc.Host)
	if err := checkHost(host); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}

	s := &Session{
		Path:    path,
		Host:    host,
		SSHOpts: doc.SSHOpts,
	}
	if s.SSHOpts == nil {
		s.SSHOpts = []string{}
	}

	if doc.MountRoot != "" {
		root, err := mount.ExpandPath(doc.MountRoot)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: mount_root: %v", ErrInvalid, path, err)
		}
		s.MountRoot = root
	}

	if len(doc.Dirs) == 0 {
		return s, nil
	}
	if s.MountRoot == "" {
		return nil, fmt.Errorf("%w: %s: mount_root is required when dirs are configured", ErrInvalid, path)
	}

	names := make([]string, 0, len(doc.Dirs))
	for name := range doc.Dirs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !meta.IsDefined("dirs", name, "remote_path") {
			return nil, fmt.Errorf("%w: %s: dirs.%s: missing remote_path", ErrInvalid, path, name)
		}
		m, err := mount.NewMapping(name, doc.Dirs[name].RemotePath, s.MountRoot)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
		}
		s.Dirs = append(s.Dirs, m)
	}

	return s, nil
}

// Validate checks every mount point against v.
func (s *Session) Validate(v *mount.Validator) error {
	for _, m := range s.Dirs {
		if err := v.Validate(m); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	return nil
}

// checkHost rejects hosts that cannot name a single control socket file or
// that ssh would read as an option.
func checkHost(host string) error {
	switch {
	case host == "." || host == "..":
		return fmt.Errorf("host %q is not allowed", host)
	case strings.ContainsAny(host, `/\`):
		return fmt.Errorf("host %q must not contain a path separator", host)
	case strings.HasPrefix(host, "-"):
		return fmt.Errorf("host %q must not start with '-'", host)
	}
	return nil
}
