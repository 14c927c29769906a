package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/neurax-dev/neurax/internal/mount"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSettingsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	s, err := LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, "ssh", s.SSHBinary)
	assert.Equal(t, "sshfs", s.SSHFSBinary)
	assert.Equal(t, "", s.RuntimeDir)
	assert.Equal(t, "info", s.LogLevel)

	switch runtime.GOOS {
	case "linux":
		assert.Equal(t, "fusermount", s.UnmountBinary)
	default:
		assert.Equal(t, "umount", s.UnmountBinary)
	}
}

func TestLoadSettingsFileAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	writeFile(t, filepath.Join(home, "neurax", "config.toml"), `
ssh_binary = "/opt/openssh/bin/ssh"
runtime_dir = "/var/run/neurax/"
log_level = "DEBUG"
`)
	t.Setenv("NEURAX_SSHFS_BINARY", "/opt/sshfs")

	s, err := LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, "/opt/openssh/bin/ssh", s.SSHBinary)
	assert.Equal(t, "/opt/sshfs", s.SSHFSBinary)
	assert.Equal(t, "/var/run/neurax", s.RuntimeDir)
	assert.Equal(t, "debug", s.LogLevel)
}

func TestLoadSettingsBrokenFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	writeFile(t, filepath.Join(home, "neurax", "config.toml"), "ssh_binary = [")

	_, err := LoadSettings()
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "db1.toml"), `
host = "db1"
ssh_opts = ["-p", "2222"]
mount_root = "/mnt"

[dirs.src]
remote_path = "/srv/src"

[dirs.Home]
remote_path = "/home/u"
`)

	s, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, path, s.Path)
	assert.Equal(t, "db1", s.Host)
	assert.Equal(t, []string{"-p", "2222"}, s.SSHOpts)
	assert.Equal(t, "/mnt", s.MountRoot)
	assert.Equal(t, []mount.Mapping{
		{Name: "Home", RemotePath: "/home/u", LocalPath: "/mnt/Home"},
		{Name: "src", RemotePath: "/srv/src", LocalPath: "/mnt/src"},
	}, s.Dirs)
}

func TestLoadFileMinimal(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "a.toml"), `host = "db1"`)

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "db1", s.Host)
	assert.Empty(t, s.SSHOpts)
	assert.NotNil(t, s.SSHOpts)
	assert.Empty(t, s.Dirs)
	assert.Empty(t, s.MountRoot)
}

func TestLoadFileExpandsMountRoot(t *testing.T) {
	home, err := homedir.Dir()
	require.NoError(t, err)

	path := writeFile(t, filepath.Join(t.TempDir(), "a.toml"), `
host = "db1"
mount_root = "~/remote/db1"
`)
	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "remote", "db1"), s.MountRoot)
}

func TestLoadFileInvalid(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		errMatch string
	}{
		{
			name:     "missing host",
			content:  `mount_root = "/mnt"`,
			errMatch: `missing required key "host"`,
		},
		{
			name:     "blank host",
			content:  `host = "  "`,
			errMatch: `missing required key "host"`,
		},
		{
			name:     "host escaping the socket dir",
			content:  `host = "../../../important.txt"`,
			errMatch: "path separator",
		},
		{
			name:     "host with backslash",
			content:  `host = 'db1\x'`,
			errMatch: "path separator",
		},
		{
			name:     "dot dot host",
			content:  `host = ".."`,
			errMatch: "not allowed",
		},
		{
			name:     "host read as ssh option",
			content:  `host = "-oProxyCommand=sh"`,
			errMatch: "must not start with '-'",
		},
		{
			name:     "dirs without mount root",
			content:  "host = \"db1\"\n[dirs.home]\nremote_path = \"/home/u\"\n",
			errMatch: "mount_root is required",
		},
		{
			name:     "dir without remote path",
			content:  "host = \"db1\"\nmount_root = \"/mnt\"\n[dirs.home]\n",
			errMatch: "dirs.home: missing remote_path",
		},
		{
			name:     "escaping dir name",
			content:  "host = \"db1\"\nmount_root = \"/mnt\"\n[dirs.\"..\"]\nremote_path = \"/x\"\n",
			errMatch: "not allowed",
		},
		{
			name:     "malformed toml",
			content:  `host = `,
			errMatch: "parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, filepath.Join(t.TempDir(), "bad.toml"), tt.content)

			_, err := LoadFile(path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
			assert.Contains(t, err.Error(), tt.errMatch)
		})
	}
}

func TestResolve(t *testing.T) {
	cfgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	named := writeFile(t, filepath.Join(cfgHome, "neurax", "configs", "db1.toml"), `host = "db1"`)
	explicit := writeFile(t, filepath.Join(t.TempDir(), "other.toml"), `host = "other"`)

	t.Run("explicit path wins", func(t *testing.T) {
		got, err := Resolve(explicit, "db1")
		require.NoError(t, err)
		assert.Equal(t, explicit, got)
	})

	t.Run("by name", func(t *testing.T) {
		got, err := Resolve("", "db1")
		require.NoError(t, err)
		assert.Equal(t, named, got)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := Resolve("", "nope")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoConfig))
		assert.Contains(t, err.Error(), "no config for nope")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Resolve(filepath.Join(t.TempDir(), "absent.toml"), "")
		assert.True(t, errors.Is(err, ErrNoConfig))
	})

	t.Run("directory", func(t *testing.T) {
		_, err := Resolve(t.TempDir(), "")
		assert.True(t, errors.Is(err, ErrNoConfig))
	})

	t.Run("neither", func(t *testing.T) {
		_, err := Resolve("", "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoConfig))
		assert.Contains(t, err.Error(), "either --config or --name")
	})

	t.Run("name with separator", func(t *testing.T) {
		_, err := Resolve("", "../db1")
		assert.True(t, errors.Is(err, ErrNoConfig))
	})
}

func TestLoadByName(t *testing.T) {
	cfgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	writeFile(t, filepath.Join(cfgHome, "neurax", "configs", "db1.toml"), `host = "db1.example.com"`)

	s, err := Load("", "db1")
	require.NoError(t, err)
	assert.Equal(t, "db1.example.com", s.Host)
}

func TestSessionValidate(t *testing.T) {
	base := t.TempDir()
	v, err := mount.NewValidator([]string{filepath.Join(base, "keys")})
	require.NoError(t, err)

	ok := &Session{Host: "db1", Dirs: []mount.Mapping{{Name: "home", LocalPath: filepath.Join(base, "mnt", "home")}}}
	assert.NoError(t, ok.Validate(v))

	bad := &Session{Host: "db1", Dirs: []mount.Mapping{{Name: "keys", LocalPath: filepath.Join(base, "keys")}}}
	err = bad.Validate(v)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestWriteTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "db1.toml")

	require.NoError(t, WriteTemplate(path, "db1", "/mnt/db1", false))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "db1", s.Host)
	assert.Equal(t, "/mnt/db1", s.MountRoot)
	require.Len(t, s.Dirs, 1)
	assert.Equal(t, "home", s.Dirs[0].Name)
	assert.Equal(t, "/mnt/db1/home", s.Dirs[0].LocalPath)

	err = WriteTemplate(path, "db1", "", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, WriteTemplate(path, "db2", "/mnt/db2", true))
	s, err = LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "db2", s.Host)
}

func TestWriteTemplateDefaultMountRoot(t *testing.T) {
	home, err := homedir.Dir()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "db1.toml")

	require.NoError(t, WriteTemplate(path, "db1", "", false))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "remote", "db1"), s.MountRoot)
}
