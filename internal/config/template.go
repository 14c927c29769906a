package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const templateHeader = `# neurax session for %s
#
# ssh_opts are passed to ssh verbatim when the master connection starts.
# Each [dirs.<name>] table mounts remote_path at mount_root/<name>.

`

// WriteTemplate writes a starter session document for host to path.
// An existing file is only replaced when force is set.
func WriteTemplate(path, host, mountRoot string, force bool) error {
	if host == "" {
		return fmt.Errorf("host is required")
	}
	if mountRoot == "" {
		mountRoot = filepath.Join("~", "remote", host)
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s (use --force to overwrite)", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, templateHeader, host); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	doc := document{
		Host:      host,
		SSHOpts:   []string{},
		MountRoot: mountRoot,
		Dirs: map[string]dirConfig{
			"home": {RemotePath: "."},
		},
	}
	if err := toml.NewEncoder(f).Encode(doc); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return f.Close()
}
