package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/five82/togetter/internal/checklist"
	"github.com/five82/togetter/internal/settings"
	"github.com/five82/togetter/internal/togetapi"
	"github.com/five82/togetter/internal/wire"
)

// Peer is one connected device.
type Peer interface {
	ID() string
	Send(msg []byte) error
}

// Options configure a Host.
type Options struct {
	Source Source
	Format wire.Format
	// Settings is the initial view; SettingsPath is where changes persist.
	// An empty SettingsPath keeps settings in memory only.
	Settings     settings.Settings
	SettingsPath string
	Logger       *slog.Logger
}

// Host packs the selected group or list for devices and applies their
// selections to the source.
type Host struct {
	source       Source
	format       wire.Format
	settingsPath string
	log          *slog.Logger

	mu       sync.Mutex
	settings settings.Settings
	group    *togetapi.Group
	list     *togetapi.List
	last     []byte
	peers    map[string]Peer
}

// New returns a Host with nothing loaded. Call Refresh to load the first view.
func New(opts Options) *Host {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Host{
		source:       opts.Source,
		format:       opts.Format,
		settingsPath: opts.SettingsPath,
		log:          logger.With("component", "host"),
		settings:     opts.Settings,
		peers:        make(map[string]Peer),
	}
}

// Settings returns the current view selection.
func (h *Host) Settings() settings.Settings {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.settings
}

// Snapshot returns the last message pushed to devices, or nil.
func (h *Host) Snapshot() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return bytes.Clone(h.last)
}

// PeerCount returns the number of attached devices.
func (h *Host) PeerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

// Attach registers p and sends it the cached snapshot, if any.
func (h *Host) Attach(p Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.peers[p.ID()] = p
	h.log.Info("peer attached", "peer", p.ID(), "peers", len(h.peers))
	if h.last != nil {
		h.sendLocked(p, h.last)
	}
}

// Detach forgets the peer with id.
func (h *Host) Detach(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.peers, id)
	h.log.Info("peer detached", "peer", id, "peers", len(h.peers))
}

// Refresh reloads the current view and pushes it to every peer when it
// differs from the last push.
func (h *Host) Refresh(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.loadLocked(ctx); err != nil {
		return err
	}
	return h.publishLocked("")
}

// HandleSelection applies one select value received from peer.
func (h *Host) HandleSelection(ctx context.Context, peer string, value int) error {
	sel := wire.ParseSelection(value)
	h.mu.Lock()
	defer h.mu.Unlock()

	log := h.log.With("peer", peer, "select", value)
	switch sel.Kind {
	case wire.SelectResyncRequest:
		log.Debug("resync requested")
		return h.resyncLocked(ctx, peer)

	case wire.SelectLongPressNoRow:
		log.Info("show group")
		return h.showGroupLocked(ctx)

	case wire.SelectLongPressRow:
		if h.settings.InList() {
			log.Info("show group")
			return h.showGroupLocked(ctx)
		}
		return h.openListLocked(ctx, sel.Row)

	case wire.SelectActivate:
		if h.settings.InList() {
			return h.toggleLocked(ctx, peer, sel.Row)
		}
		return h.openListLocked(ctx, sel.Row)
	}
	return nil
}

func (h *Host) resyncLocked(ctx context.Context, peer string) error {
	if err := h.loadLocked(ctx); err != nil {
		return err
	}
	changed, err := h.packLocked()
	if err != nil {
		return err
	}
	if changed {
		h.broadcastLocked("")
		return nil
	}
	if p, ok := h.peers[peer]; ok && h.last != nil {
		h.sendLocked(p, h.last)
	}
	return nil
}

func (h *Host) showGroupLocked(ctx context.Context) error {
	h.settings.ListID = ""
	h.saveSettingsLocked()
	h.list = nil
	if err := h.loadLocked(ctx); err != nil {
		return err
	}
	return h.publishLocked("")
}

func (h *Host) openListLocked(ctx context.Context, row int) error {
	if h.group == nil {
		if err := h.loadLocked(ctx); err != nil {
			return err
		}
	}
	if h.group == nil || row < 0 || row >= len(h.group.Lists) {
		return fmt.Errorf("open list: row %d: %w", row, checklist.ErrIndexOutOfRange)
	}
	ref := h.group.Lists[row]
	h.log.Info("show list", "list", ref.ID, "label", ref.Label)
	h.settings.ListID = ref.ID
	h.saveSettingsLocked()
	if err := h.loadLocked(ctx); err != nil {
		return err
	}
	return h.publishLocked("")
}

func (h *Host) toggleLocked(ctx context.Context, peer string, row int) error {
	if h.list == nil || row < 0 || row >= len(h.list.Items) {
		return fmt.Errorf("toggle: row %d: %w", row, checklist.ErrIndexOutOfRange)
	}
	name := h.list.Items[row].Item
	collected := !h.list.Items[row].Collected
	if err := h.source.SetCollected(ctx, h.settings.ListID, name, collected); err != nil {
		return fmt.Errorf("toggle %q: %w", name, err)
	}
	h.log.Info("item toggled", "peer", peer, "item", name, "collected", collected)

	// Reload so edits made elsewhere reach every device. The write may not
	// be visible in the reloaded copy yet, and the item may have moved.
	if err := h.loadLocked(ctx); err != nil {
		h.log.Warn("reload after toggle failed", "error", err)
	}
	if i := h.list.Find(name); i >= 0 {
		h.list.Items[i].Collected = collected
	}
	// The sender already shows the toggle.
	return h.publishLocked(peer)
}

// loadLocked fetches the view the settings select. A list that no longer
// exists falls back to the group.
func (h *Host) loadLocked(ctx context.Context) error {
	if h.settings.InList() {
		l, err := h.source.List(ctx, h.settings.ListID)
		switch {
		case err == nil:
			h.list = l
			return nil
		case errors.Is(err, ErrListNotFound):
			h.log.Warn("selected list is gone, showing group", "list", h.settings.ListID)
			h.settings.ListID = ""
			h.saveSettingsLocked()
		default:
			return err
		}
	}
	g, err := h.source.Group(ctx)
	if err != nil {
		return err
	}
	h.group = g
	h.list = nil
	return nil
}

// packLocked rebuilds the message for the loaded view and reports whether it
// differs from the cached one.
func (h *Host) packLocked() (bool, error) {
	var (
		msg     []byte
		dropped int
		err     error
	)
	switch {
	case h.settings.InList() && h.list != nil:
		msg, dropped, err = packMessage(h.list.Label, listEntries(h.list), h.format)
	case h.group != nil:
		msg, dropped, err = packMessage(h.group.Label, groupEntries(h.group), h.format)
	default:
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("pack: %w", err)
	}
	if dropped > 0 {
		h.log.Warn("view does not fit one message", "dropped", dropped)
	}
	if bytes.Equal(msg, h.last) {
		return false, nil
	}
	h.last = msg
	return true, nil
}

func (h *Host) publishLocked(except string) error {
	changed, err := h.packLocked()
	if err != nil || !changed {
		return err
	}
	h.broadcastLocked(except)
	return nil
}

func (h *Host) broadcastLocked(except string) {
	for id, p := range h.peers {
		if id == except {
			continue
		}
		h.sendLocked(p, h.last)
	}
}

func (h *Host) sendLocked(p Peer, msg []byte) {
	if err := p.Send(msg); err != nil {
		h.log.Warn("send failed", "peer", p.ID(), "error", err)
	}
}

func (h *Host) saveSettingsLocked() {
	if h.settingsPath == "" {
		return
	}
	if err := settings.Save(h.settingsPath, h.settings); err != nil {
		h.log.Warn("save settings failed", "error", err)
	}
}
