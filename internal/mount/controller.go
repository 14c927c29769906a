// Package mount binds remote directories onto local mount points with sshfs,
// routing sshfs through an existing ssh master so every mount shares one
// multiplexed connection.
package mount

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/neurax-dev/neurax/internal/runner"
	"github.com/rs/zerolog"
)

// DefaultSSHFSBinary is the sshfs executable used when none is configured.
const DefaultSSHFSBinary = "sshfs"

// ErrMount is returned when sshfs fails to mount a directory.
var ErrMount = errors.New("mount failed")

// DefaultUnmountBinary returns the platform's FUSE unmount tool.
func DefaultUnmountBinary() string {
	if runtime.GOOS == "linux" {
		return "fusermount"
	}
	return "umount"
}

// Tools names the executables a Controller invokes.
type Tools struct {
	SSH     string
	SSHFS   string
	Unmount string
}

func (t Tools) withDefaults() Tools {
	if t.SSH == "" {
		t.SSH = "ssh"
	}
	if t.SSHFS == "" {
		t.SSHFS = DefaultSSHFSBinary
	}
	if t.Unmount == "" {
		t.Unmount = DefaultUnmountBinary()
	}
	return t
}

// Controller binds and unbinds mounts over a host's control socket.
type Controller struct {
	tools  Tools
	socket func(host string) string
	run    runner.Runner
	log    zerolog.Logger
}

// NewController creates a Controller. socket maps a host to the control
// socket of its master connection.
func NewController(tools Tools, socket func(host string) string, r runner.Runner, log zerolog.Logger) *Controller {
	return &Controller{
		tools:  tools.withDefaults(),
		socket: socket,
		run:    r,
		log:    log,
	}
}

// Bind creates localMountPoint and mounts host:remotePath on it.
func (c *Controller) Bind(ctx context.Context, host, remotePath, localMountPoint string) error {
	if err := os.MkdirAll(localMountPoint, 0755); err != nil {
		return fmt.Errorf("failed to create mount point %s: %w", localMountPoint, err)
	}

	args := []string{
		"-o", "ssh_command=" + sshCommand(c.tools.SSH, c.socket(host)),
		host + ":" + remotePath,
		localMountPoint,
	}

	c.log.Debug().Str("host", host).Str("remote", remotePath).Str("local", localMountPoint).Msg("mounting")
	res := c.run.Run(ctx, c.tools.SSHFS, args...)
	if !res.OK() {
		return fmt.Errorf("%w: %s:%s on %s: %s", ErrMount, host, remotePath, localMountPoint, res.Message())
	}
	return nil
}

// Unbind unmounts localMountPoint. It is best-effort: the result is
// returned for inspection and never escalated, and nothing is retried or
// forced.
func (c *Controller) Unbind(ctx context.Context, localMountPoint string) runner.Result {
	return c.run.Run(ctx, c.tools.Unmount, unmountArgs(c.tools.Unmount, localMountPoint)...)
}

// sshCommand builds the ssh_command option value. sshfs splits the command
// on spaces after FUSE has split the option list on commas, and both honour
// backslash escapes, so each word is escaped for sshfs and then for FUSE.
func sshCommand(binary, socket string) string {
	words := []string{binary, "-S", socket}
	for i, w := range words {
		w = strings.NewReplacer(`\`, `\\`, " ", `\ `).Replace(w)
		words[i] = strings.NewReplacer(`\`, `\\`, ",", `\,`).Replace(w)
	}
	return strings.Join(words, " ")
}

func unmountArgs(binary, localMountPoint string) []string {
	switch filepath.Base(binary) {
	case "fusermount", "fusermount3":
		return []string{"-u", localMountPoint}
	default:
		return []string{localMountPoint}
	}
}
