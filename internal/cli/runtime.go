package cli

import (
	"io"
	"log/slog"

	"github.com/emberkeep/emberkeep/internal/compress"
	"github.com/emberkeep/emberkeep/internal/config"
	"github.com/emberkeep/emberkeep/internal/crypt"
	"github.com/emberkeep/emberkeep/internal/journal"
	"github.com/emberkeep/emberkeep/internal/save"
	"github.com/emberkeep/emberkeep/internal/store"
)

// runtime is the full save stack wired up for one command invocation.
type runtime struct {
	cfg   *config.Config
	store *store.Store
	codec *compress.Codec
	jnl   *journal.Journal
	svc   *save.Service
	log   *slog.Logger
}

// openRuntime loads config, acquires the save directory, derives the
// key, and wires the service. Diagnostic logs go to errOut.
func openRuntime(opts *RootOptions, errOut io.Writer) (*runtime, error) {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{
		Level: logLevel,
	}))

	cfgPath := opts.Config
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.SaveDir != "" {
		cfg.SaveDir = opts.SaveDir
	}

	st, err := store.Open(cfg.SaveDir, log)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open save directory", err)
	}

	secret, err := crypt.LoadSecret(cfg.SecretFile)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to resolve save secret", err)
	}
	key, err := crypt.DeriveKey(secret, st.SaltPath())
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to derive key", err)
	}
	cipher, err := crypt.NewCipher(key)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to initialize cipher", err)
	}

	codec, err := compress.New(cfg.MaxSnapshotBytes)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to initialize compression", err)
	}

	// The journal is diagnostics. If it cannot open, commands still
	// work; only stats and history lose their data source.
	var jnl *journal.Journal
	if cfg.JournalEnabled {
		jnl, err = journal.Open(st.JournalPath())
		if err != nil {
			log.Warn("journal unavailable", slog.String("error", err.Error()))
			jnl = nil
		}
	}

	svc, err := save.NewService(st, save.NewPipeline(codec, cipher, nil), cfg, jnl, log)
	if err != nil {
		if jnl != nil {
			jnl.Close()
		}
		codec.Close()
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to initialize save service", err)
	}

	return &runtime{
		cfg:   cfg,
		store: st,
		codec: codec,
		jnl:   jnl,
		svc:   svc,
		log:   log,
	}, nil
}

// Close releases the runtime in reverse acquisition order.
func (r *runtime) Close() {
	if r.jnl != nil {
		if err := r.jnl.Close(); err != nil {
			r.log.Error("error closing journal", slog.String("error", err.Error()))
		}
	}
	r.codec.Close()
	if err := r.store.Close(); err != nil {
		r.log.Error("error closing save directory", slog.String("error", err.Error()))
	}
}
