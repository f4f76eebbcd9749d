package app

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/five82/togetter/internal/config"
	"github.com/five82/togetter/internal/host"
	"github.com/five82/togetter/internal/settings"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenLogFile_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "togetter", "device.log")

	f, err := openLogFile(path)
	if err != nil {
		t.Fatalf("openLogFile returned error: %v", err)
	}
	logger := newLogger(f, slog.LevelInfo)
	logger.Info("hello", "row", 3)
	logger.Debug("hidden")
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "msg=hello row=3") {
		t.Fatalf("log = %q, want hello record", data)
	}
	if strings.Contains(string(data), "hidden") {
		t.Fatalf("debug record written at info level: %q", data)
	}
}

func TestNewLogger_HonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, slog.LevelDebug)
	logger.Debug("visible")
	if !strings.Contains(buf.String(), "level=DEBUG") {
		t.Fatalf("debug record missing: %q", buf.String())
	}
}

func TestNewSource(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Host.ListFile = filepath.Join(dir, "lists.toml")
	cfg.Host.SettingsPath = filepath.Join(dir, "settings.toml")

	t.Run("file", func(t *testing.T) {
		src, watch, err := newSource(cfg, settings.Settings{}, discardLogger())
		if err != nil {
			t.Fatalf("newSource returned error: %v", err)
		}
		fs, ok := src.(*host.FileSource)
		if !ok {
			t.Fatalf("source = %T, want *host.FileSource", src)
		}
		if fs.Path() != cfg.Host.ListFile {
			t.Fatalf("Path() = %q, want %q", fs.Path(), cfg.Host.ListFile)
		}
		if watch == nil {
			t.Fatal("file source returned nil watch loop")
		}
	})

	t.Run("api without group", func(t *testing.T) {
		c := cfg
		c.Host.Source = config.SourceAPI
		if _, _, err := newSource(c, settings.Settings{}, discardLogger()); err == nil {
			t.Fatal("expected error when group_id is missing")
		}
	})

	t.Run("api", func(t *testing.T) {
		c := cfg
		c.Host.Source = config.SourceAPI
		src, watch, err := newSource(c, settings.Settings{GroupID: "abc"}, discardLogger())
		if err != nil {
			t.Fatalf("newSource returned error: %v", err)
		}
		if _, ok := src.(*host.APISource); !ok {
			t.Fatalf("source = %T, want *host.APISource", src)
		}
		if watch == nil {
			t.Fatal("api source returned nil watch loop")
		}
	})

	t.Run("unknown", func(t *testing.T) {
		c := cfg
		c.Host.Source = "ftp"
		if _, _, err := newSource(c, settings.Settings{}, discardLogger()); err == nil {
			t.Fatal("expected error for unknown source")
		}
	})
}
