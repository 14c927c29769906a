package config

import (
	"errors"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/neurax-dev/neurax/internal/dirs"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. NEURAX_SSH_BINARY.
const EnvPrefix = "NEURAX"

// Settings holds application-wide settings shared by every session.
type Settings struct {
	SSHBinary     string `mapstructure:"ssh_binary"`
	SSHFSBinary   string `mapstructure:"sshfs_binary"`
	UnmountBinary string `mapstructure:"unmount_binary"`
	RuntimeDir    string `mapstructure:"runtime_dir"`
	LogLevel      string `mapstructure:"log_level"`
}

// LoadSettings reads $XDG_CONFIG_HOME/neurax/config.toml if present,
// applies NEURAX_* environment overrides and fills in defaults.
func LoadSettings() (*Settings, error) {
	configDir, err := dirs.ConfigDir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	setDefaults(v)

	// A missing settings file is fine; a broken one is not.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, err
	}
	s.LogLevel = strings.ToLower(strings.TrimSpace(s.LogLevel))
	if s.RuntimeDir != "" {
		s.RuntimeDir = filepath.Clean(s.RuntimeDir)
	}

	return &s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ssh_binary", "ssh")
	v.SetDefault("sshfs_binary", "sshfs")
	v.SetDefault("runtime_dir", "")
	v.SetDefault("log_level", "info")

	// macOS and the BSDs ship no fusermount; macFUSE mounts come off with umount.
	switch runtime.GOOS {
	case "linux":
		v.SetDefault("unmount_binary", "fusermount")
	default:
		v.SetDefault("unmount_binary", "umount")
	}
}
