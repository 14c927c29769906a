// Package session brings a host's ssh master and its mounts up and down as
// one unit.
//
// Bring-up connects only when no live master exists, binds every configured
// directory only on that fresh-connect path, and always ends in an
// interactive shell. Tear-down unbinds every directory and then closes the
// master; each step is best-effort and never stops the next.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/neurax-dev/neurax/internal/config"
	"github.com/neurax-dev/neurax/internal/mount"
	"github.com/neurax-dev/neurax/internal/runner"
	"github.com/rs/zerolog"
)

// Connection manages a host's master connection.
type Connection interface {
	SocketPath(host string) string
	IsAlive(ctx context.Context, host string) bool
	ClearStale(ctx context.Context, host string) bool
	Connect(ctx context.Context, host string, opts []string) error
	Attach(ctx context.Context, host string) runner.Result
	Disconnect(ctx context.Context, host string) runner.Result
}

// Mounter binds and unbinds directories over a master connection.
type Mounter interface {
	Bind(ctx context.Context, host, remotePath, localMountPoint string) error
	Unbind(ctx context.Context, localMountPoint string) runner.Result
}

// UnbindResult is the outcome of unbinding one mapping.
type UnbindResult struct {
	Mapping mount.Mapping
	Result  runner.Result
}

// Report collects the best-effort results of a tear-down.
type Report struct {
	Unbinds    []UnbindResult
	Disconnect runner.Result
}

// OK reports whether every step of the tear-down succeeded.
func (r Report) OK() bool {
	for _, u := range r.Unbinds {
		if !u.Result.OK() {
			return false
		}
	}
	return r.Disconnect.OK()
}

// Orchestrator runs bring-up and tear-down for a session.
type Orchestrator struct {
	conn   Connection
	mounts Mounter
	store  *Store
	log    zerolog.Logger
	now    func() time.Time
}

// NewOrchestrator creates an Orchestrator. store may be nil, in which case
// no session records are kept.
func NewOrchestrator(conn Connection, mounts Mounter, store *Store, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		conn:   conn,
		mounts: mounts,
		store:  store,
		log:    log,
		now:    time.Now,
	}
}

// BringUp connects to cfg.Host and binds its directories unless a live
// master already exists, then attaches an interactive shell.
//
// A connect or bind failure aborts before the shell is attached. Binding
// stops at the first failure; mounts already bound stay in place and are
// cleared by TearDown.
func (o *Orchestrator) BringUp(ctx context.Context, cfg *config.Session) error {
	log := o.log.With().Str("host", cfg.Host).Logger()

	if o.conn.IsAlive(ctx, cfg.Host) {
		log.Info().Msg("resuming existing connection")
	} else {
		// ssh refuses to become master on an existing socket path.
		o.conn.ClearStale(ctx, cfg.Host)

		log.Info().Msg("connecting")
		if err := o.conn.Connect(ctx, cfg.Host, cfg.SSHOpts); err != nil {
			return err
		}

		for _, m := range cfg.Dirs {
			log.Info().Str("remote", m.RemotePath).Str("local", m.LocalPath).Msg("mounting")
			if err := o.mounts.Bind(ctx, cfg.Host, m.RemotePath, m.LocalPath); err != nil {
				return err
			}
		}

		o.record(cfg)
	}

	res := o.conn.Attach(ctx, cfg.Host)
	log.Debug().Int("exit", res.ExitCode).Msg("shell closed")
	return nil
}

// TearDown unbinds every configured directory and closes the master for
// cfg.Host. Nothing here fails the call; the report carries each result.
func (o *Orchestrator) TearDown(ctx context.Context, cfg *config.Session) Report {
	log := o.log.With().Str("host", cfg.Host).Logger()
	var report Report

	for _, m := range cfg.Dirs {
		res := o.mounts.Unbind(ctx, m.LocalPath)
		if !res.OK() {
			log.Warn().Str("local", m.LocalPath).Int("exit", res.ExitCode).Str("stderr", res.Message()).Msg("unmount failed")
		}
		report.Unbinds = append(report.Unbinds, UnbindResult{Mapping: m, Result: res})
	}

	report.Disconnect = o.conn.Disconnect(ctx, cfg.Host)
	if !report.Disconnect.OK() {
		log.Warn().Int("exit", report.Disconnect.ExitCode).Str("stderr", report.Disconnect.Message()).Msg("disconnect failed")
	}

	if o.store != nil {
		if err := o.store.Delete(cfg.Host); err != nil {
			log.Warn().Err(err).Msg("failed to remove session record")
		}
	}

	return report
}

// Prune clears records whose master connection is gone. The recorded
// mounts are unbound first so no dead sshfs endpoint is left behind.
func (o *Orchestrator) Prune(ctx context.Context) ([]*Record, error) {
	if o.store == nil {
		return nil, nil
	}
	records, err := o.store.List()
	if err != nil {
		return nil, err
	}

	var pruned []*Record
	for _, rec := range records {
		if o.conn.IsAlive(ctx, rec.Host) {
			continue
		}
		log := o.log.With().Str("host", rec.Host).Logger()
		for _, m := range rec.Mappings() {
			if res := o.mounts.Unbind(ctx, m.LocalPath); !res.OK() {
				log.Debug().Str("local", m.LocalPath).Str("stderr", res.Message()).Msg("unmount failed")
			}
		}
		o.conn.ClearStale(ctx, rec.Host)
		if err := o.store.Delete(rec.Host); err != nil {
			log.Warn().Err(err).Msg("failed to remove session record")
			continue
		}
		pruned = append(pruned, rec)
	}
	return pruned, nil
}

func (o *Orchestrator) record(cfg *config.Session) {
	if o.store == nil {
		return
	}
	rec := &Record{
		ID:         uuid.NewString(),
		Host:       cfg.Host,
		ConfigPath: cfg.Path,
		Socket:     o.conn.SocketPath(cfg.Host),
		SSHOpts:    cfg.SSHOpts,
		Mounts:     make([]MountRecord, 0, len(cfg.Dirs)),
		StartedAt:  o.now().UTC(),
	}
	for _, m := range cfg.Dirs {
		rec.Mounts = append(rec.Mounts, MountRecord{Name: m.Name, RemotePath: m.RemotePath, LocalPath: m.LocalPath})
	}
	if err := o.store.Save(rec); err != nil {
		o.log.Warn().Err(err).Str("host", cfg.Host).Msg("failed to save session record")
	}
}
