package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/seomate/seomate/internal/auth"
	"github.com/seomate/seomate/internal/config"
	"github.com/seomate/seomate/internal/ingest"
	"github.com/seomate/seomate/internal/itemgate"
	"github.com/seomate/seomate/internal/prefs"
	"github.com/seomate/seomate/internal/session"
	"github.com/seomate/seomate/internal/ui"
)

// Options configure the seomate application.
type Options struct {
	ConfigPath   string
	PrefsPath    string        // empty uses default ~/.config/seomate/prefs.toml
	RefreshEvery time.Duration // non-zero overrides refresh_seconds; negative disables
	Token        string        // overrides the configured token
}

// Run boots the seomate TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.Token != "" {
		cfg.Token = opts.Token
	}
	switch {
	case opts.RefreshEvery > 0:
		cfg.RefreshEvery = opts.RefreshEvery
	case opts.RefreshEvery < 0:
		cfg.RefreshEvery = 0
	}

	log := openLogger(cfg, os.Stderr)
	defer log.Sync()
	log.Info("seomate starting", "api_base", cfg.APIBase, "refresh", cfg.RefreshEvery.String())

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, err := prefs.Load(prefsPath)
	if err != nil {
		log.Warn("load prefs failed", "error", err)
	}

	creds := auth.NewCredentials(cfg.Token)
	client, err := itemgate.NewClient(cfg.APIBase, creds, itemgate.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return fmt.Errorf("init itemgate client: %w", err)
	}

	sess, err := session.New(session.Options{
		Backend:     client,
		Accounts:    client,
		Files:       client,
		Credentials: creds,
		Logger:      log,
		PageSize:    userPrefs.PageSizeOr(cfg.PageSize),
		DownloadDir: cfg.DownloadDir,
	})
	if err != nil {
		return fmt.Errorf("init session: %w", err)
	}

	// Populate the store before the UI starts; failures surface in the UI.
	if sess.Authenticated() {
		if err := sess.LoadUser(ctx); err != nil {
			log.Warn("load user failed", "error", err)
		}
		if err := sess.RefreshAll(ctx); err != nil {
			log.Warn("initial refresh failed", "error", err)
		}
	}

	runner := ingest.NewRunner(client, sess.RefreshCatalog, log)

	StartPoller(ctx, sess, cfg.RefreshEvery, log)

	return ui.Run(ui.Options{
		Context:     ctx,
		Session:     sess,
		Runner:      runner,
		Prefs:       userPrefs,
		PrefsPath:   prefsPath,
		LogPath:     cfg.LogPath,
		IngestCount: cfg.IngestCount,
		Logger:      log,
	})
}
