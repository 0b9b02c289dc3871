package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/wordiz/internal/app"
	"github.com/abhisek/wordiz/internal/background"
	"github.com/abhisek/wordiz/internal/config"
	"github.com/abhisek/wordiz/internal/enrich"
	"github.com/abhisek/wordiz/internal/llm"
	"github.com/abhisek/wordiz/internal/logger"
	"github.com/abhisek/wordiz/internal/store"
	"github.com/abhisek/wordiz/internal/telemetry"
	"github.com/abhisek/wordiz/internal/words"
)

// settings is loaded once per invocation by the root pre-run hook.
var settings *config.Config

// loadSettings reads config and applies persistent flag overrides.
func loadSettings(cmd *cobra.Command) error {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(file)
	if err != nil {
		return err
	}

	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if b, _ := cmd.Flags().GetString("book"); b != "" {
		cfg.Study.Book = b
	}
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		cfg.LogLevel = l
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	settings = cfg
	return nil
}

// resolveDBPath returns the configured database path, falling back to
// WORDIZ_DB and then the default XDG path.
func resolveDBPath() (string, error) {
	if settings.DBPath != "" {
		return settings.DBPath, store.EnsureDir(settings.DBPath)
	}
	return store.DefaultDBPath()
}

// deps are the services a command works with.
type deps struct {
	logger   *zap.Logger
	store    *store.Store
	runner   *background.Runner
	words    *words.Service
	recorder *telemetry.Recorder
	enricher *enrich.Service
}

// openDeps opens the store and builds the services. Logs go to stderr, or
// to a file beside the database when toFile is set so a full-screen UI is
// not overwritten.
func openDeps(ctx context.Context, toFile bool) (*deps, error) {
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}

	var outputs []string
	if toFile {
		outputs = []string{filepath.Join(filepath.Dir(dbPath), "wordiz.log")}
	}
	log, err := logger.New(settings.Env, settings.LogLevel, outputs...)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("open store: %w", err)
	}

	d := &deps{
		logger:   log,
		store:    st,
		runner:   background.New(settings.Study.MaxWorkers, log),
		recorder: telemetry.NewRecorder(st.Events(), log),
	}

	if settings.LLMEnabled() {
		d.enricher, err = newEnricher(ctx, st, log)
		if err != nil {
			log.Warn("word enrichment unavailable", zap.Error(err))
		}
	}

	opts := words.Options{
		Language: settings.Study.Language,
		Runner:   d.runner,
		Logger:   log,
	}
	if d.enricher != nil {
		opts.Enricher = d.enricher
	}
	d.words = words.NewService(st.Words(), st.Stats(), opts)

	log.Debug("services ready",
		zap.String("db", dbPath),
		zap.String("book", settings.Study.Book),
		zap.Bool("enrichment", d.enricher != nil))
	return d, nil
}

func newEnricher(ctx context.Context, st *store.Store, log *zap.Logger) (*enrich.Service, error) {
	cfg, err := settings.Provider()
	if err != nil {
		return nil, err
	}
	provider, err := llm.NewProvider(ctx, cfg, st.Events(), log)
	if err != nil {
		return nil, err
	}
	return enrich.NewService(provider, enrich.DefaultConfig()), nil
}

// Close drains background work, then releases the store and flushes logs.
func (d *deps) Close() {
	d.runner.Close()
	if err := d.store.Close(); err != nil {
		d.logger.Warn("close store", zap.Error(err))
	}
	_ = d.logger.Sync()
}

// runTUI starts the terminal app, optionally straight into a drill.
func runTUI(cmd *cobra.Command, start string) error {
	d, err := openDeps(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer d.Close()

	batch := settings.Study.BatchSize
	if cmd.Flags().Lookup("limit") != nil {
		if n, _ := cmd.Flags().GetInt("limit"); n > 0 {
			batch = n
		}
	}

	return app.Run(app.Options{
		Words:     d.words,
		Reporter:  d.recorder,
		Runner:    d.runner,
		Logger:    d.logger,
		Book:      settings.Study.Book,
		BatchSize: batch,
		Start:     start,
	})
}
