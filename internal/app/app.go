package app

import (
	"context"
	"fmt"

	"github.com/five82/skylight/internal/config"
	"github.com/five82/skylight/internal/fetch"
	"github.com/five82/skylight/internal/logging"
	"github.com/five82/skylight/internal/prefs"
	"github.com/five82/skylight/internal/state"
	"github.com/five82/skylight/internal/ui"
)

// Options configure the interactive gallery.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/skylight/prefs.toml
	Query      string // initial query; empty resumes the last one
	Verbose    bool
}

// Run boots the gallery TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := NewLogger(cfg.Log, opts.Verbose, true)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closeLog()
	ctx = logging.WithLogger(ctx, logger)

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	svc, err := NewServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	store := &state.Store{}
	ctrl, err := fetch.New(fetch.Options{
		Fetcher:  svc.Client,
		PageSize: cfg.API.PageSize,
		Debounce: cfg.Gallery.QueryDebounce,
		OnChange: store.Apply,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("init controller: %w", err)
	}
	defer ctrl.Close()

	StartProber(ctx, store, svc.Probe, ctrl, cfg.API.ProbeInterval, logger)

	query := opts.Query
	if query == "" {
		query = userPrefs.LastQuery
	}
	logger.Info("starting gallery", "query", query, "cache", cfg.Cache.Enabled())

	return ui.Run(ui.Options{
		Context:      ctx,
		Controller:   ctrl,
		Store:        store,
		Gallery:      cfg.Gallery,
		ThemeName:    userPrefs.Theme,
		PrefsPath:    opts.PrefsPath,
		InitialQuery: query,
		Logger:       logger,
	})
}
