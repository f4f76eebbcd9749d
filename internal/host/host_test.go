package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/five82/togetter/internal/checklist"
	"github.com/five82/togetter/internal/settings"
	"github.com/five82/togetter/internal/togetapi"
	"github.com/five82/togetter/internal/wire"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memSource struct {
	mu      sync.Mutex
	group   togetapi.Group
	lists   map[string]*togetapi.List
	updates []string
	failSet error
}

func newMemSource() *memSource {
	return &memSource{
		group: togetapi.Group{Label: "Home", Lists: []togetapi.ListRef{
			{ID: "groc", Label: "Groceries"},
			{ID: "hw", Label: "Hardware"},
		}},
		lists: map[string]*togetapi.List{
			"groc": {Label: "Groceries", Items: []togetapi.Item{
				{Item: "Milk", Amount: 2},
				{Item: "Eggs", Amount: 12, Collected: true},
			}},
			"hw": {Label: "Hardware", Items: []togetapi.Item{{Item: "Nails", Amount: 100}}},
		},
	}
}

func (s *memSource) Group(context.Context) (*togetapi.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.group
	g.Lists = append([]togetapi.ListRef(nil), s.group.Lists...)
	return &g, nil
}

func (s *memSource) List(_ context.Context, id string) (*togetapi.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lists[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrListNotFound, id)
	}
	out := *l
	out.Items = append([]togetapi.Item(nil), l.Items...)
	return &out, nil
}

func (s *memSource) SetCollected(_ context.Context, id, item string, collected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet != nil {
		return s.failSet
	}
	l := s.lists[id]
	i := l.Find(item)
	if i < 0 {
		return ErrItemNotFound
	}
	l.Items[i].Collected = collected
	s.updates = append(s.updates, fmt.Sprintf("%s/%s=%v", id, item, collected))
	return nil
}

type recPeer struct {
	id   string
	msgs [][]byte
}

func (p *recPeer) ID() string { return p.id }

func (p *recPeer) Send(msg []byte) error {
	p.msgs = append(p.msgs, msg)
	return nil
}

func (p *recPeer) lastSnapshot(t *testing.T) wire.Snapshot {
	t.Helper()
	if len(p.msgs) == 0 {
		t.Fatalf("peer %s received nothing", p.id)
	}
	snap, err := wire.DecodeSnapshot(p.msgs[len(p.msgs)-1], wire.FormatPacked)
	if err != nil {
		t.Fatalf("DecodeSnapshot returned error: %v", err)
	}
	return snap
}

func newTestHost(t *testing.T, src Source, s settings.Settings) (*Host, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.toml")
	h := New(Options{Source: src, Format: wire.FormatPacked, Settings: s, SettingsPath: path, Logger: discardLogger()})
	if err := h.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	return h, path
}

func TestHost_RefreshDedupes(t *testing.T) {
	h, _ := newTestHost(t, newMemSource(), settings.Settings{})
	p := &recPeer{id: "a"}
	h.Attach(p)
	if len(p.msgs) != 1 {
		t.Fatalf("attach delivered %d messages, want the cached one", len(p.msgs))
	}
	snap := p.lastSnapshot(t)
	if *snap.Header != "Home" || snap.List.Len() != 2 || snap.List.Name(0) != "Groceries" {
		t.Fatalf("group snapshot = %q with %d rows", *snap.Header, snap.List.Len())
	}

	if err := h.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if len(p.msgs) != 1 {
		t.Fatalf("unchanged refresh pushed again: %d messages", len(p.msgs))
	}
}

func TestHost_ActivateInGroupOpensList(t *testing.T) {
	h, path := newTestHost(t, newMemSource(), settings.Settings{GroupID: "g"})
	p := &recPeer{id: "a"}
	h.Attach(p)

	if err := h.HandleSelection(context.Background(), "a", 1); err != nil {
		t.Fatalf("HandleSelection returned error: %v", err)
	}
	snap := p.lastSnapshot(t)
	if *snap.Header != "Hardware" || snap.List.Name(0) != "Nails" {
		t.Fatalf("snapshot = %q/%q, want Hardware/Nails", *snap.Header, snap.List.Name(0))
	}
	if got := settings.Load(path); got.ListID != "hw" || got.GroupID != "g" {
		t.Fatalf("persisted settings = %+v, want list hw in group g", got)
	}
}

func TestHost_LongPressRowOpensListThenReturns(t *testing.T) {
	h, _ := newTestHost(t, newMemSource(), settings.Settings{})
	p := &recPeer{id: "a"}
	h.Attach(p)
	ctx := context.Background()

	if err := h.HandleSelection(ctx, "a", wire.LongPressValue(0)); err != nil {
		t.Fatalf("HandleSelection returned error: %v", err)
	}
	if got := h.Settings().ListID; got != "groc" {
		t.Fatalf("ListID = %q, want groc", got)
	}

	if err := h.HandleSelection(ctx, "a", wire.LongPressValue(1)); err != nil {
		t.Fatalf("HandleSelection returned error: %v", err)
	}
	if h.Settings().InList() {
		t.Fatal("long press on a row inside a list did not return to the group")
	}
	if snap := p.lastSnapshot(t); *snap.Header != "Home" {
		t.Fatalf("header = %q, want Home", *snap.Header)
	}
}

func TestHost_LongPressNoRowShowsGroup(t *testing.T) {
	h, _ := newTestHost(t, newMemSource(), settings.Settings{ListID: "groc"})
	p := &recPeer{id: "a"}
	h.Attach(p)
	if *p.lastSnapshot(t).Header != "Groceries" {
		t.Fatal("host did not start in list mode")
	}

	if err := h.HandleSelection(context.Background(), "a", wire.SelectLongPress); err != nil {
		t.Fatalf("HandleSelection returned error: %v", err)
	}
	if h.Settings().InList() {
		t.Fatal("ListID not cleared")
	}
	if *p.lastSnapshot(t).Header != "Home" {
		t.Fatal("group not pushed")
	}
}

func TestHost_ToggleSkipsOriginPeer(t *testing.T) {
	src := newMemSource()
	h, _ := newTestHost(t, src, settings.Settings{ListID: "groc"})
	origin := &recPeer{id: "origin"}
	other := &recPeer{id: "other"}
	h.Attach(origin)
	h.Attach(other)

	if err := h.HandleSelection(context.Background(), "origin", 0); err != nil {
		t.Fatalf("HandleSelection returned error: %v", err)
	}
	if len(src.updates) != 1 || src.updates[0] != "groc/Milk=true" {
		t.Fatalf("source updates = %v, want Milk collected", src.updates)
	}
	if len(origin.msgs) != 1 {
		t.Fatalf("origin got %d messages, want only the attach snapshot", len(origin.msgs))
	}
	if len(other.msgs) != 2 {
		t.Fatalf("other got %d messages, want attach + toggle", len(other.msgs))
	}
	if !other.lastSnapshot(t).List.Status(0).Collected() {
		t.Fatal("pushed snapshot does not show Milk collected")
	}
}

// laggingSource accepts writes without showing them and inserts an item
// ahead of the toggled one, like a list edited on another client.
type laggingSource struct {
	*memSource
}

func (s laggingSource) SetCollected(_ context.Context, id, item string, collected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.lists[id]
	l.Items = append([]togetapi.Item{{Item: "Bread", Amount: 1}}, l.Items...)
	s.updates = append(s.updates, fmt.Sprintf("%s/%s=%v", id, item, collected))
	return nil
}

func TestHost_ToggleReloadsAndFindsItemByName(t *testing.T) {
	src := laggingSource{newMemSource()}
	h, _ := newTestHost(t, src, settings.Settings{ListID: "groc"})
	other := &recPeer{id: "other"}
	h.Attach(other)

	if err := h.HandleSelection(context.Background(), "origin", 0); err != nil {
		t.Fatalf("HandleSelection returned error: %v", err)
	}
	snap := other.lastSnapshot(t)
	if snap.List.Len() != 3 || snap.List.Name(0) != "Bread" || snap.List.Name(1) != "Milk" {
		t.Fatalf("pushed list has %d rows starting %q, want the reloaded list", snap.List.Len(), snap.List.Name(0))
	}
	if !snap.List.Status(1).Collected() {
		t.Fatal("Milk not collected in the reloaded list")
	}
	if snap.List.Status(0).Collected() {
		t.Fatal("Bread collected, want the toggle applied by name")
	}
}

func TestHost_ToggleFailureKeepsState(t *testing.T) {
	src := newMemSource()
	src.failSet = errors.New("api down")
	h, _ := newTestHost(t, src, settings.Settings{ListID: "groc"})
	before := h.Snapshot()

	if err := h.HandleSelection(context.Background(), "a", 0); err == nil {
		t.Fatal("HandleSelection returned nil error with failing source")
	}
	if string(h.Snapshot()) != string(before) {
		t.Fatal("snapshot changed after failed toggle")
	}
}

func TestHost_ResyncAlwaysAnswersRequester(t *testing.T) {
	h, _ := newTestHost(t, newMemSource(), settings.Settings{})
	a := &recPeer{id: "a"}
	b := &recPeer{id: "b"}
	h.Attach(a)
	h.Attach(b)

	if err := h.HandleSelection(context.Background(), "a", wire.SelectResync); err != nil {
		t.Fatalf("HandleSelection returned error: %v", err)
	}
	if len(a.msgs) != 2 {
		t.Fatalf("requester got %d messages, want 2", len(a.msgs))
	}
	if len(b.msgs) != 1 {
		t.Fatalf("bystander got %d messages, want 1", len(b.msgs))
	}
}

func TestHost_ResyncBroadcastsChanges(t *testing.T) {
	src := newMemSource()
	h, _ := newTestHost(t, src, settings.Settings{})
	a := &recPeer{id: "a"}
	b := &recPeer{id: "b"}
	h.Attach(a)
	h.Attach(b)

	src.mu.Lock()
	src.group.Label = "Cabin"
	src.mu.Unlock()

	if err := h.HandleSelection(context.Background(), "a", wire.SelectResync); err != nil {
		t.Fatalf("HandleSelection returned error: %v", err)
	}
	if *b.lastSnapshot(t).Header != "Cabin" || *a.lastSnapshot(t).Header != "Cabin" {
		t.Fatal("changed view not pushed to every peer")
	}
}

func TestHost_OutOfRangeRows(t *testing.T) {
	h, _ := newTestHost(t, newMemSource(), settings.Settings{})
	err := h.HandleSelection(context.Background(), "a", 7)
	if !errors.Is(err, checklist.ErrIndexOutOfRange) {
		t.Fatalf("group row 7 error = %v, want ErrIndexOutOfRange", err)
	}

	h, _ = newTestHost(t, newMemSource(), settings.Settings{ListID: "hw"})
	err = h.HandleSelection(context.Background(), "a", 3)
	if !errors.Is(err, checklist.ErrIndexOutOfRange) {
		t.Fatalf("list row 3 error = %v, want ErrIndexOutOfRange", err)
	}
}

func TestHost_MissingListFallsBackToGroup(t *testing.T) {
	h, path := newTestHost(t, newMemSource(), settings.Settings{GroupID: "g", ListID: "deleted"})
	if h.Settings().InList() {
		t.Fatal("host kept a list that no longer exists")
	}
	if got := settings.Load(path); got.ListID != "" || got.GroupID != "g" {
		t.Fatalf("persisted settings = %+v, want group only", got)
	}
	snap, err := wire.DecodeSnapshot(h.Snapshot(), wire.FormatPacked)
	if err != nil {
		t.Fatalf("DecodeSnapshot returned error: %v", err)
	}
	if *snap.Header != "Home" {
		t.Fatalf("header = %q, want Home", *snap.Header)
	}
}
