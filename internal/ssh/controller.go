// Package ssh controls multiplexed OpenSSH master connections, one per host,
// each bound to a control socket under the runtime root.
//
// A host moves from absent to established through Connect and back through
// Disconnect. IsAlive probes the state without changing it. Connect is not
// idempotent: a second master on the same socket is rejected by ssh, so
// callers check IsAlive first.
package ssh

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/neurax-dev/neurax/internal/runner"
	"github.com/rs/zerolog"
)

// DefaultBinary is the ssh executable used when none is configured.
const DefaultBinary = "ssh"

// ExitControlFailed is the status ssh exits with when no master answers on
// a control socket.
const ExitControlFailed = 255

// ErrConnect is returned when a master connection could not be established.
var ErrConnect = errors.New("ssh connection failed")

// Controller manages master connections through control sockets.
type Controller struct {
	binary      string
	runtimeRoot string
	run         runner.Runner
	log         zerolog.Logger
}

// NewController creates a Controller. An empty binary selects DefaultBinary.
func NewController(binary, runtimeRoot string, r runner.Runner, log zerolog.Logger) *Controller {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Controller{
		binary:      binary,
		runtimeRoot: runtimeRoot,
		run:         r,
		log:         log,
	}
}

// Binary returns the ssh executable in use.
func (c *Controller) Binary() string {
	return c.binary
}

// SocketPath returns the control socket for host.
func (c *Controller) SocketPath(host string) string {
	return SocketPath(host, c.runtimeRoot)
}

// IsAlive reports whether a master connection for host answers on its
// control socket. A missing socket is answered without spawning ssh; any
// failure of the check is reported as not alive.
func (c *Controller) IsAlive(ctx context.Context, host string) bool {
	socket := c.SocketPath(host)
	if _, err := os.Stat(socket); err != nil {
		c.log.Debug().Str("host", host).Str("socket", socket).Msg("no control socket")
		return false
	}
	return c.check(ctx, host).OK()
}

// ClearStale removes the control socket for host when ssh reports that no
// master is listening on it. Anything that is not a socket is left alone,
// and so is a socket whose check could not run or was interrupted.
func (c *Controller) ClearStale(ctx context.Context, host string) bool {
	socket := c.SocketPath(host)
	info, err := os.Lstat(socket)
	if err != nil {
		return false
	}
	if info.Mode()&os.ModeSocket == 0 {
		c.log.Warn().Str("host", host).Str("path", socket).Msg("control socket path is not a socket, leaving it")
		return false
	}

	res := c.check(ctx, host)
	if res.ExitCode != ExitControlFailed || ctx.Err() != nil {
		return false
	}
	if err := os.Remove(socket); err != nil {
		c.log.Warn().Err(err).Str("socket", socket).Msg("failed to remove stale control socket")
		return false
	}
	c.log.Debug().Str("host", host).Str("socket", socket).Msg("removed stale control socket")
	return true
}

// Connect starts a background master connection for host, passing opts to
// ssh verbatim. It blocks until ssh has authenticated and forked, or failed.
func (c *Controller) Connect(ctx context.Context, host string, opts []string) error {
	socket := c.SocketPath(host)
	if err := os.MkdirAll(filepath.Dir(socket), 0700); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	args := []string{"-f", "-N", "-M", "-S", socket}
	args = append(args, opts...)
	args = append(args, host)

	c.log.Debug().Str("host", host).Strs("args", args).Msg("starting master connection")
	res := c.run.RunInteractive(ctx, c.binary, args...)
	if !res.OK() {
		return fmt.Errorf("%w: %s exited with status %d for %s", ErrConnect, c.binary, res.ExitCode, host)
	}
	return nil
}

// Attach opens an interactive shell multiplexed over the existing master
// and blocks until the user leaves it. The exit status is informational.
func (c *Controller) Attach(ctx context.Context, host string) runner.Result {
	return c.run.RunInteractive(ctx, c.binary, "-S", c.SocketPath(host), host)
}

// Disconnect asks the master for host to exit. It is best-effort; the
// result is returned for inspection and never escalated.
func (c *Controller) Disconnect(ctx context.Context, host string) runner.Result {
	return c.control(ctx, host, "exit")
}

func (c *Controller) check(ctx context.Context, host string) runner.Result {
	res := c.control(ctx, host, "check")
	if !res.OK() {
		c.log.Debug().Str("host", host).Int("exit", res.ExitCode).Str("stderr", res.Message()).Msg("control check failed")
	}
	return res
}

func (c *Controller) control(ctx context.Context, host, command string) runner.Result {
	return c.run.Run(ctx, c.binary, "-S", c.SocketPath(host), "-O", command, host)
}
