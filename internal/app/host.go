package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/five82/togetter/internal/config"
	"github.com/five82/togetter/internal/host"
	"github.com/five82/togetter/internal/settings"
	"github.com/five82/togetter/internal/togetapi"
)

const shutdownTimeout = 5 * time.Second

// HostOptions configure the companion host binary. Empty fields keep the
// config file's values.
type HostOptions struct {
	ConfigPath string
	Listen     string
	Source     string
}

// RunHost serves lists to devices until ctx is cancelled.
func RunHost(ctx context.Context, opts HostOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	if v := strings.TrimSpace(opts.Listen); v != "" {
		cfg.Host.Listen = v
	}
	if v := strings.TrimSpace(opts.Source); v != "" {
		cfg.Host.Source = strings.ToLower(v)
	}

	variant, err := cfg.SessionVariant()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg.Level())
	saved := settings.Load(cfg.Host.SettingsPath)

	src, watch, err := newSource(cfg, saved, logger)
	if err != nil {
		return err
	}

	h := host.New(host.Options{
		Source:       src,
		Format:       variant.Format,
		Settings:     saved,
		SettingsPath: cfg.Host.SettingsPath,
		Logger:       logger,
	})
	if err := h.Refresh(ctx); err != nil {
		logger.Warn("initial refresh failed", "error", err)
	}

	srv := &http.Server{
		Addr:              cfg.Host.Listen,
		Handler:           host.NewServer(h, logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := watch(ctx, h); err != nil {
			logger.Error("source updates stopped", "error", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("host listening", "addr", cfg.Host.Listen, "source", cfg.Host.Source, "format", variant.Format.String())
		errCh <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("serve %s: %w", cfg.Host.Listen, err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown failed", "error", err)
	}
	cancel()
	wg.Wait()
	return serveErr
}

// watchFunc pushes source changes into the host until ctx ends.
type watchFunc func(ctx context.Context, h *host.Host) error

// newSource picks the list source named in cfg along with the loop that keeps
// devices current when it changes.
func newSource(cfg config.Config, saved settings.Settings, logger *slog.Logger) (host.Source, watchFunc, error) {
	switch cfg.Host.Source {
	case config.SourceFile:
		fs := host.NewFileSource(cfg.Host.ListFile, logger)
		return fs, func(ctx context.Context, h *host.Host) error {
			return fs.Watch(ctx, func() {
				if err := h.Refresh(ctx); err != nil {
					logger.Warn("refresh after file change failed", "error", err)
				}
			})
		}, nil

	case config.SourceAPI:
		if strings.TrimSpace(saved.GroupID) == "" {
			return nil, nil, fmt.Errorf("source %q needs group_id in %s", config.SourceAPI, cfg.Host.SettingsPath)
		}
		client, err := togetapi.NewClient(cfg.Host.APIURL)
		if err != nil {
			return nil, nil, fmt.Errorf("init api client: %w", err)
		}
		return host.NewAPISource(client, saved.GroupID), func(ctx context.Context, h *host.Host) error {
			return h.Poll(ctx, cfg.Host.Poll)
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown source %q", cfg.Host.Source)
}
