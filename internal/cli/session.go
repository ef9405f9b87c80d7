package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/internal/config"
	"github.com/mesh-intelligence/docket/internal/office"
	"github.com/mesh-intelligence/docket/internal/paths"
	"github.com/mesh-intelligence/docket/pkg/audit"
	"github.com/mesh-intelligence/docket/pkg/backend"
	"github.com/mesh-intelligence/docket/pkg/keys"
	"github.com/mesh-intelligence/docket/pkg/store"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// loadConfig resolves the configuration directory, reads config.yaml and
// the environment, and applies the global flags on top.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (types.Config, string, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return types.Config{}, "", sysError("resolve config dir: %w", err)
	}
	v, err := config.Load(configDir)
	if err != nil {
		return types.Config{}, "", sysError("%w", err)
	}
	cfg, err := config.Decode(v)
	if err != nil {
		return types.Config{}, "", userError("%w", err)
	}
	if flags.backend != "" {
		cfg.Backend = flags.backend
	}
	dataDir, err := paths.ResolveDataDir(flags.dataDir, cfg.DataDir)
	if err != nil {
		return types.Config{}, "", sysError("resolve data dir: %w", err)
	}
	cfg.DataDir = dataDir
	if err := cfg.Validate(); err != nil {
		return types.Config{}, "", userError("invalid configuration: %w", err)
	}
	return cfg, configDir, nil
}

// newLogger builds the stderr text logger at the configured level.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, userError("invalid log_level %q", level)
		}
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// session is an open backend with the shim and activity log over it.
type session struct {
	cfg     types.Config
	logger  *slog.Logger
	backend types.Backend
	store   *store.Store
	audit   *audit.Logger
	actor   audit.Actor
}

// openSession loads the configuration and opens its backend. The caller
// must call close.
func openSession(cmd *cobra.Command, flags *rootFlags) (*session, error) {
	cfg, _, err := loadConfig(cmd, flags)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	codec, err := keys.ForName(cfg.KeyEncoding)
	if err != nil {
		return nil, userError("%w", err)
	}
	b, err := backend.Open(cfg, backend.WithLogger(logger))
	if err != nil {
		return nil, sysError("open %s backend: %w", cfg.Backend, err)
	}

	st := store.New(b, store.WithCodec(codec), store.WithLogger(logger))
	s := &session{
		cfg:     cfg,
		logger:  logger,
		backend: b,
		store:   st,
		audit:   audit.New(st, audit.WithLogger(logger)),
	}
	if flags.actor != "" {
		s.actor = s.office().Lawyers.Actor(cmd.Context(), flags.actor)
	}
	return s, nil
}

func (s *session) office() *office.Office {
	return office.New(s.store, s.audit, office.WithLogger(s.logger))
}

// record logs e when an actor was given with --actor.
func (s *session) record(ctx context.Context, e audit.Entry) {
	if s.actor.ID == "" {
		return
	}
	e.Actor = s.actor
	s.audit.Record(ctx, e)
}

func (s *session) close() {
	if err := s.backend.Close(); err != nil {
		s.logger.Warn("close backend", "err", err)
	}
}
