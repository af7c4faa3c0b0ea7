package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/stride/internal/config"
	"github.com/roach88/stride/internal/engine"
	"github.com/roach88/stride/internal/store"
)

// session is everything one command invocation needs: the merged config,
// an open store and an engine acting for the caller.
type session struct {
	cfg    *config.Config
	store  *store.Store
	eng    *engine.Engine
	out    *OutputFormatter
	logger *slog.Logger
	caller string
}

// openSession loads config, applies flag overrides and opens the store.
// Flags win over the config file, which wins over STRIDE_* defaults.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.As != "" {
		cfg.Caller = opts.As
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg, opts.Verbose)

	if cfg.Database != store.MemoryPath {
		if err := os.MkdirAll(filepath.Dir(cfg.Database), 0o755); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to create data directory", err)
		}
	}
	logger.Debug("opening database", "path", cfg.Database)
	st, err := store.OpenPath(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	eng := engine.New(st, cfg.Oracle(),
		engine.WithLogger(logger),
		engine.WithIdentity(engine.ContextIdentity{Fallback: cfg.Caller}),
	)
	return &session{
		cfg:    cfg,
		store:  st,
		eng:    eng,
		out:    out,
		logger: logger,
		caller: cfg.Caller,
	}, nil
}

// ctx returns the command context carrying the caller.
func (s *session) ctx(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return engine.WithCaller(ctx, s.caller)
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

// newLogger builds the diagnostic logger. --verbose forces debug level.
func newLogger(w io.Writer, cfg *config.Config, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	hopts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

// withSession opens a session, runs fn and reports its error through the
// session's formatter.
func withSession(opts *RootOptions, cmd *cobra.Command, fn func(s *session) (any, error)) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	data, err := fn(s)
	if err != nil {
		return s.fail(err)
	}
	return s.out.Success(data)
}
