package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/togetter/internal/togetapi"
)

const defaultGroupLabel = "togetter"

// debounceDuration collapses the burst of events an editor save produces.
const debounceDuration = 300 * time.Millisecond

// FileSource keeps lists in a local TOML file:
//
//	label = "Home"
//
//	[[lists]]
//	id = "groceries"
//	label = "Groceries"
//
//	  [[lists.items]]
//	  item = "Milk"
//	  amount = 2
//	  collected = false
type FileSource struct {
	path string
	log  *slog.Logger

	mu sync.Mutex
}

var _ Source = (*FileSource)(nil)

type fileGroup struct {
	Label string     `toml:"label"`
	Lists []fileList `toml:"lists"`
}

type fileList struct {
	ID    string     `toml:"id"`
	Label string     `toml:"label"`
	Items []fileItem `toml:"items"`
}

type fileItem struct {
	Item      string `toml:"item"`
	Amount    int    `toml:"amount"`
	Collected bool   `toml:"collected"`
}

// NewFileSource returns a FileSource for path. The file need not exist yet.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{path: filepath.Clean(path), log: logger.With("component", "filesource")}
}

// Path returns the watched file.
func (s *FileSource) Path() string { return s.path }

func (s *FileSource) Group(context.Context) (*togetapi.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fg, err := s.load()
	if err != nil {
		return nil, err
	}
	g := &togetapi.Group{Label: fg.Label, Lists: make([]togetapi.ListRef, len(fg.Lists))}
	for i, l := range fg.Lists {
		g.Lists[i] = togetapi.ListRef{ID: l.ID, Label: l.Label}
	}
	return g, nil
}

func (s *FileSource) List(_ context.Context, listID string) (*togetapi.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fg, err := s.load()
	if err != nil {
		return nil, err
	}
	i := fg.find(listID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	fl := fg.Lists[i]
	l := &togetapi.List{Label: fl.Label, Items: make([]togetapi.Item, len(fl.Items))}
	for j, it := range fl.Items {
		l.Items[j] = togetapi.Item{Item: it.Item, Amount: it.Amount, Collected: it.Collected}
	}
	return l, nil
}

func (s *FileSource) SetCollected(_ context.Context, listID, item string, collected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fg, err := s.load()
	if err != nil {
		return err
	}
	i := fg.find(listID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrListNotFound, listID)
	}
	for j := range fg.Lists[i].Items {
		if fg.Lists[i].Items[j].Item == item {
			fg.Lists[i].Items[j].Collected = collected
			return s.save(fg)
		}
	}
	return fmt.Errorf("%w: %q in list %s", ErrItemNotFound, item, listID)
}

// Watch calls onChange after the file settles following a change, until ctx
// is cancelled. The parent directory is watched so atomic replaces are seen.
func (s *FileSource) Watch(ctx context.Context, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	s.log.Info("watching list file", "path", s.path)

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.path || event.Op == fsnotify.Chmod {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDuration, onChange)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("file watcher error", "error", err)
		}
	}
}

func (s *FileSource) load() (fileGroup, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileGroup{Label: defaultGroupLabel}, nil
		}
		return fileGroup{}, fmt.Errorf("read list file: %w", err)
	}
	var fg fileGroup
	if err := toml.Unmarshal(data, &fg); err != nil {
		return fileGroup{}, fmt.Errorf("parse list file: %w", err)
	}
	if fg.Label == "" {
		fg.Label = defaultGroupLabel
	}
	return fg, nil
}

func (s *FileSource) save(fg fileGroup) error {
	data, err := toml.Marshal(fg)
	if err != nil {
		return fmt.Errorf("marshal list file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create list dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write list file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Join(fmt.Errorf("replace list file: %w", err), os.Remove(tmp))
	}
	return nil
}

func (fg fileGroup) find(listID string) int {
	for i, l := range fg.Lists {
		if l.ID == listID {
			return i
		}
	}
	return -1
}
