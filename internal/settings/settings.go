// Package settings persists which group and list the companion host shows.
// Settings are stored in ~/.config/togetter/settings.toml.
package settings

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Settings select what the host packs for the device. An empty ListID means
// the group overview is shown.
type Settings struct {
	GroupID string `toml:"group_id"`
	ListID  string `toml:"list_id"`
}

const defaultSettingsPath = "~/.config/togetter/settings.toml"

// DefaultPath returns the default settings file path.
func DefaultPath() string {
	return defaultSettingsPath
}

// InList reports whether a list is open.
func (s Settings) InList() bool {
	return s.ListID != ""
}

// Load reads settings from path. A missing or unreadable file yields zero
// Settings.
func Load(path string) Settings {
	resolved, err := resolvePath(path)
	if err != nil {
		return Settings{}
	}

	file, err := os.Open(resolved)
	if err != nil {
		return Settings{}
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Settings{}
	}

	var s Settings
	if err := toml.Unmarshal(bytes, &s); err != nil {
		return Settings{}
	}
	s.GroupID = strings.TrimSpace(s.GroupID)
	s.ListID = strings.TrimSpace(s.ListID)
	return s
}

// Save writes settings to path, creating directories as needed.
func Save(path string, s Settings) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	bytes, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	tmp := resolved + ".tmp"
	if err := os.WriteFile(tmp, bytes, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, resolved); err != nil {
		return errors.Join(fmt.Errorf("replace settings: %w", err), os.Remove(tmp))
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultSettingsPath)
	}
	return expandPath(path)
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
