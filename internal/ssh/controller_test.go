package ssh

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/neurax-dev/neurax/internal/runner"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T) (*Controller, *runner.Fake, string) {
	t.Helper()
	root := t.TempDir()
	fake := runner.NewFake()
	return NewController("", root, fake, zerolog.Nop()), fake, root
}

func touchSocket(t *testing.T, c *Controller, host string) {
	t.Helper()
	socket := c.SocketPath(host)
	require.NoError(t, os.MkdirAll(filepath.Dir(socket), 0o700))
	require.NoError(t, os.WriteFile(socket, nil, 0o600))
}

// listenSocket puts a real unix socket at host's control socket path. The
// runtime root lives in a short temp dir since socket paths are length limited.
func listenSocket(t *testing.T, host string) (*Controller, *runner.Fake) {
	t.Helper()
	root, err := os.MkdirTemp("", "nx")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(root) })

	fake := runner.NewFake()
	c := NewController("", root, fake, zerolog.Nop())
	socket := c.SocketPath(host)
	require.NoError(t, os.MkdirAll(filepath.Dir(socket), 0o700))
	l, err := net.Listen("unix", socket)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return c, fake
}

func TestSocketPath(t *testing.T) {
	tests := []struct {
		name string
		host string
		root string
		want string
	}{
		{
			name: "runtime dir",
			host: "db1",
			root: "/run/user/1000",
			want: "/run/user/1000/neurax/sockets/db1",
		},
		{
			name: "fallback data home",
			host: "gpu.example.com",
			root: "/home/u/.local/share",
			want: "/home/u/.local/share/neurax/sockets/gpu.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SocketPath(tt.host, tt.root)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, SocketPath(tt.host, tt.root), "must be deterministic")
		})
	}
}

func TestIsAlive_NoSocketSkipsSubprocess(t *testing.T) {
	c, fake, _ := newTestController(t)

	assert.False(t, c.IsAlive(context.Background(), "db1"))
	assert.Empty(t, fake.Calls())
}

func TestIsAlive_CheckResult(t *testing.T) {
	tests := []struct {
		name string
		exit int
		want bool
	}{
		{name: "master running", exit: 0, want: true},
		{name: "stale socket", exit: 255, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fake, _ := newTestController(t)
			touchSocket(t, c, "db1")
			fake.Handle("ssh", runner.Exit(tt.exit))

			assert.Equal(t, tt.want, c.IsAlive(context.Background(), "db1"))

			calls := fake.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, []string{"-S", c.SocketPath("db1"), "-O", "check", "db1"}, calls[0].Args)
			assert.False(t, calls[0].Interactive)
		})
	}
}

func TestConnect_CreatesSocketDirAndPassesOptions(t *testing.T) {
	c, fake, root := newTestController(t)

	err := c.Connect(context.Background(), "db1", []string{"-p", "2222", "-o", "ForwardAgent=yes"})
	require.NoError(t, err)

	info, err := os.Stat(SocketDir(root))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "ssh", calls[0].Name)
	assert.Equal(t, []string{
		"-f", "-N", "-M", "-S", c.SocketPath("db1"),
		"-p", "2222", "-o", "ForwardAgent=yes",
		"db1",
	}, calls[0].Args)
	assert.True(t, calls[0].Interactive)
}

func TestConnect_FailureWrapsErrConnect(t *testing.T) {
	c, fake, _ := newTestController(t)
	fake.Handle("ssh", runner.Exit(255))

	err := c.Connect(context.Background(), "db1", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConnect))
	assert.Contains(t, err.Error(), "status 255")
}

func TestAttachAndDisconnectArgs(t *testing.T) {
	c := NewController("/usr/local/bin/ssh", t.TempDir(), runner.NewFake(), zerolog.Nop())
	fake := c.run.(*runner.Fake)
	fake.Handle("/usr/local/bin/ssh", runner.Exit(1))

	attach := c.Attach(context.Background(), "db1")
	assert.Equal(t, 1, attach.ExitCode)

	disconnect := c.Disconnect(context.Background(), "db1")
	assert.False(t, disconnect.OK())

	calls := fake.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"-S", c.SocketPath("db1"), "db1"}, calls[0].Args)
	assert.True(t, calls[0].Interactive)
	assert.Equal(t, []string{"-S", c.SocketPath("db1"), "-O", "exit", "db1"}, calls[1].Args)
	assert.Equal(t, "/usr/local/bin/ssh", c.Binary())
}

func TestClearStale(t *testing.T) {
	tests := []struct {
		name        string
		exit        int
		cancel      bool
		wantRemoved bool
	}{
		{name: "no master listening", exit: ExitControlFailed, wantRemoved: true},
		{name: "master running", exit: 0},
		{name: "ssh missing", exit: runner.ExitNotFound},
		{name: "other failure", exit: 1},
		{name: "interrupted", exit: ExitControlFailed, cancel: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fake := listenSocket(t, "db1")
			fake.Handle("ssh", runner.Exit(tt.exit))
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.cancel {
				cancel()
			}

			assert.Equal(t, tt.wantRemoved, c.ClearStale(ctx, "db1"))

			_, err := os.Lstat(c.SocketPath("db1"))
			assert.Equal(t, tt.wantRemoved, os.IsNotExist(err))
			require.Len(t, fake.Calls(), 1)
			assert.Equal(t, []string{"-S", c.SocketPath("db1"), "-O", "check", "db1"}, fake.Calls()[0].Args)
		})
	}
}

func TestClearStale_LeavesNonSocketAlone(t *testing.T) {
	c, fake, _ := newTestController(t)
	fake.Handle("ssh", runner.Exit(ExitControlFailed))
	touchSocket(t, c, "db1")

	assert.False(t, c.ClearStale(context.Background(), "db1"))
	assert.FileExists(t, c.SocketPath("db1"))
	assert.Empty(t, fake.Calls())
}

func TestClearStale_NothingThere(t *testing.T) {
	c, fake, _ := newTestController(t)

	assert.False(t, c.ClearStale(context.Background(), "db1"))
	assert.Empty(t, fake.Calls())
}
