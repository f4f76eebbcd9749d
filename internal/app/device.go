package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/togetter/internal/resync"
	"github.com/five82/togetter/internal/session"
	"github.com/five82/togetter/internal/state"
	"github.com/five82/togetter/internal/transport"
	"github.com/five82/togetter/internal/ui"
)

// DeviceOptions configure the device binary. Empty fields keep the config
// file's values.
type DeviceOptions struct {
	ConfigPath string
	Host       string
	Variant    string
	Theme      string
}

// RunDevice starts the device UI and its host connection and blocks until the
// user quits or ctx is cancelled.
func RunDevice(ctx context.Context, opts DeviceOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	if v := strings.TrimSpace(opts.Host); v != "" {
		cfg.Device.Host = v
	}
	if v := strings.TrimSpace(opts.Variant); v != "" {
		cfg.Variant = v
	}
	if v := strings.TrimSpace(opts.Theme); v != "" {
		cfg.Device.Theme = v
	}

	variant, err := cfg.SessionVariant()
	if err != nil {
		return err
	}
	schedule, err := resync.ParseSchedule(cfg.Device.Resync)
	if err != nil {
		return err
	}

	logFile, err := openLogFile(cfg.Device.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := newLogger(logFile, cfg.Level())
	client, err := transport.NewClient(cfg.Device.Host, logger)
	if err != nil {
		return fmt.Errorf("init transport: %w", err)
	}
	logger.Info("device starting", "variant", variant.Name, "url", client.URL())
	link := state.NewStore(nil)
	client.Link = link

	sess := session.New(session.Options{
		Format:   variant.Format,
		Behavior: variant.Behavior,
		Sender:   client,
		Logger:   logger,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Callbacks post into the program; Send blocks until Run is reading.
	var program *tea.Program
	driver := resync.New(nil, schedule, func() { program.Send(ui.ResyncMsg{}) })
	model := ui.New(ui.Options{
		Session:   sess,
		Resync:    driver,
		Link:      link,
		LogPath:   cfg.Device.LogFile,
		ThemeName: cfg.Device.Theme,
	})
	program = ui.NewProgram(ctx, model)
	client.OnConnect = func() { program.Send(ui.ResyncMsg{}) }

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := client.Run(ctx, func(msg []byte) { program.Send(ui.InboundMsg(msg)) })
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("transport stopped", "error", err)
		}
	}()

	driver.Start()
	_, runErr := program.Run()
	driver.Stop()
	cancel()
	wg.Wait()

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("run ui: %w", runErr)
	}
	logger.Info("device stopped")
	return nil
}
