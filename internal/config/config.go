package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/togetter/internal/session"
	"github.com/five82/togetter/internal/settings"
	"github.com/five82/togetter/internal/wire"
)

// Config is the resolved togetter configuration shared by both binaries.
type Config struct {
	Variant  string
	Format   string
	LogLevel string
	Device   Device
	Host     Host
}

// Device holds the [device] table.
type Device struct {
	Host       string
	Resync     string
	LongPress  string
	Activation string
	Reselect   string
	LogFile    string
	Theme      string
}

// Host holds the [host] table.
type Host struct {
	Listen       string
	Source       string
	APIURL       string
	Poll         string
	ListFile     string
	SettingsPath string
}

// Source kinds accepted in [host].source.
const (
	SourceFile = "file"
	SourceAPI  = "api"
)

const (
	defaultConfigPath = "~/.config/togetter/config.toml"
	defaultVariant    = session.DefaultVariant
	defaultLogLevel   = "info"
	defaultDeviceHost = "127.0.0.1:7488"
	defaultResync     = "@every 15s"
	defaultLogFile    = "~/.local/state/togetter/device.log"
	defaultTheme      = "Nightfox"
	defaultListen     = "127.0.0.1:7488"
	defaultSource     = SourceFile
	defaultAPIURL     = "http://to-get.appspot.com"
	defaultPoll       = "@every 1m"
	defaultListFile   = "~/.config/togetter/lists.toml"
)

type rawConfig struct {
	Variant  string `toml:"variant"`
	Format   string `toml:"format"`
	LogLevel string `toml:"log_level"`
	Device   struct {
		Host       string `toml:"host"`
		Resync     string `toml:"resync"`
		LongPress  string `toml:"long_press"`
		Activation string `toml:"activation"`
		Reselect   string `toml:"reselect"`
		LogFile    string `toml:"log_file"`
		Theme      string `toml:"theme"`
	} `toml:"device"`
	Host struct {
		Listen       string `toml:"listen"`
		Source       string `toml:"source"`
		APIURL       string `toml:"api_url"`
		Poll         string `toml:"poll"`
		ListFile     string `toml:"list_file"`
		SettingsPath string `toml:"settings_path"`
	} `toml:"host"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Variant:  defaultVariant,
		LogLevel: defaultLogLevel,
		Device: Device{
			Host:    defaultDeviceHost,
			Resync:  defaultResync,
			LogFile: mustExpand(defaultLogFile),
			Theme:   defaultTheme,
		},
		Host: Host{
			Listen:       defaultListen,
			Source:       defaultSource,
			APIURL:       defaultAPIURL,
			Poll:         defaultPoll,
			ListFile:     mustExpand(defaultListFile),
			SettingsPath: mustExpand(settings.DefaultPath()),
		},
	}
}

// Load locates and parses the togetter config, falling back to defaults when
// the file is missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := Config{
		Variant:  orDefault(raw.Variant, defaultVariant),
		Format:   strings.TrimSpace(raw.Format),
		LogLevel: orDefault(raw.LogLevel, defaultLogLevel),
		Device: Device{
			Host:       orDefault(raw.Device.Host, defaultDeviceHost),
			Resync:     orDefault(raw.Device.Resync, defaultResync),
			LongPress:  strings.TrimSpace(raw.Device.LongPress),
			Activation: strings.TrimSpace(raw.Device.Activation),
			Reselect:   strings.TrimSpace(raw.Device.Reselect),
			LogFile:    mustExpand(orDefault(raw.Device.LogFile, defaultLogFile)),
			Theme:      orDefault(raw.Device.Theme, defaultTheme),
		},
		Host: Host{
			Listen:       orDefault(raw.Host.Listen, defaultListen),
			Source:       strings.ToLower(orDefault(raw.Host.Source, defaultSource)),
			APIURL:       orDefault(raw.Host.APIURL, defaultAPIURL),
			Poll:         orDefault(raw.Host.Poll, defaultPoll),
			ListFile:     mustExpand(orDefault(raw.Host.ListFile, defaultListFile)),
			SettingsPath: mustExpand(orDefault(raw.Host.SettingsPath, settings.DefaultPath())),
		},
	}
	if cfg.Host.Source != SourceFile && cfg.Host.Source != SourceAPI {
		return Config{}, fmt.Errorf("parse config: host.source %q must be %q or %q", cfg.Host.Source, SourceFile, SourceAPI)
	}
	return cfg, nil
}

// SessionVariant resolves the named variant and applies the per-field
// overrides from the file.
func (c Config) SessionVariant() (session.Variant, error) {
	v, err := session.LookupVariant(c.Variant)
	if err != nil {
		return session.Variant{}, err
	}
	if c.Format != "" {
		if v.Format, err = wire.ParseFormat(c.Format); err != nil {
			return session.Variant{}, err
		}
	}
	if c.Device.Activation != "" {
		if v.Behavior.Activation, err = session.ParseActivation(c.Device.Activation); err != nil {
			return session.Variant{}, err
		}
	}
	if c.Device.LongPress != "" {
		if v.Behavior.LongPress, err = session.ParseLongPress(c.Device.LongPress); err != nil {
			return session.Variant{}, err
		}
	}
	if c.Device.Reselect != "" {
		if v.Behavior.Reselect, err = strconv.ParseBool(c.Device.Reselect); err != nil {
			return session.Variant{}, fmt.Errorf("device.reselect %q: %w", c.Device.Reselect, err)
		}
	}
	return v, nil
}

// Level returns the configured log level, or info when it does not parse.
func (c Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
