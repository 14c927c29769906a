package cmd

import (
	"fmt"

	"github.com/neurax-dev/neurax/internal/config"
	"github.com/neurax-dev/neurax/internal/dirs"
	"github.com/neurax-dev/neurax/internal/logging"
	"github.com/neurax-dev/neurax/internal/mount"
	"github.com/neurax-dev/neurax/internal/runner"
	"github.com/neurax-dev/neurax/internal/session"
	"github.com/neurax-dev/neurax/internal/ssh"
	"github.com/rs/zerolog"
)

// env is everything a command needs, wired once per invocation.
type env struct {
	settings    *config.Settings
	log         zerolog.Logger
	runtimeRoot string
	conn        *ssh.Controller
	mounts      *mount.Controller
	store       *session.Store
	orch        *session.Orchestrator
}

func newEnv() (*env, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	log := logging.Init(settings.LogLevel, debug)

	runtimeRoot := settings.RuntimeDir
	if runtimeRoot == "" {
		root, fallback, err := dirs.RuntimeRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve runtime directory: %w", err)
		}
		if fallback {
			log.Warn().Str("dir", root).Msg("XDG_RUNTIME_DIR undefined, falling back to your data directory")
		}
		runtimeRoot = root
	}
	log.Debug().Str("runtime_root", runtimeRoot).Msg("runtime directory resolved")

	var run runner.ExecRunner
	conn := ssh.NewController(settings.SSHBinary, runtimeRoot, run, log)
	mounts := mount.NewController(mount.Tools{
		SSH:     conn.Binary(),
		SSHFS:   settings.SSHFSBinary,
		Unmount: settings.UnmountBinary,
	}, conn.SocketPath, run, log)

	store, err := session.NewStore(runtimeRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to access session store: %w", err)
	}

	return &env{
		settings:    settings,
		log:         log,
		runtimeRoot: runtimeRoot,
		conn:        conn,
		mounts:      mounts,
		store:       store,
		orch:        session.NewOrchestrator(conn, mounts, store, log),
	}, nil
}

// loadSession resolves the session selected by --config or --name and
// checks its mount points. Nothing has been spawned yet when this fails.
func (e *env) loadSession() (*config.Session, error) {
	cfg, err := config.Load(cfgFile, cfgName)
	if err != nil {
		return nil, err
	}
	e.log.Debug().Str("config", cfg.Path).Str("host", cfg.Host).Int("dirs", len(cfg.Dirs)).Msg("config loaded")

	protected := append([]string{ssh.SocketDir(e.runtimeRoot), e.store.Dir()}, mount.ProtectedPaths...)
	validator, err := mount.NewValidator(protected)
	if err != nil {
		return nil, fmt.Errorf("failed to create mount validator: %w", err)
	}
	if err := cfg.Validate(validator); err != nil {
		return nil, err
	}
	return cfg, nil
}
