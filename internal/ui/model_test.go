package ui

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/togetter/internal/session"
	"github.com/five82/togetter/internal/state"
	"github.com/five82/togetter/internal/wire"
)

type sentValues struct {
	values []int
}

func (s *sentValues) Send(msg []byte) error {
	v, err := wire.DecodeSelection(msg)
	if err != nil {
		return err
	}
	s.values = append(s.values, v)
	return nil
}

type countingResetter struct{ resets int }

func (c *countingResetter) Reset() { c.resets++ }

func newTestModel(t *testing.T) (Model, *sentValues, *countingResetter) {
	t.Helper()
	return newTestModelWith(t, Options{ThemeName: "Slate"})
}

func newTestModelWith(t *testing.T, opts Options) (Model, *sentValues, *countingResetter) {
	t.Helper()
	v, err := session.LookupVariant("v3")
	if err != nil {
		t.Fatalf("LookupVariant: %v", err)
	}
	out := &sentValues{}
	sess := session.New(session.Options{
		Format:   v.Format,
		Behavior: v.Behavior,
		Sender:   out,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	r := &countingResetter{}
	opts.Session = sess
	opts.Resync = r
	m := New(opts)
	return m, out, r
}

func snapshotMsg(t *testing.T, header string, entries ...wire.Entry) InboundMsg {
	t.Helper()
	items, err := wire.EncodeItems(entries, wire.FormatPacked)
	if err != nil {
		t.Fatalf("EncodeItems: %v", err)
	}
	msg, err := wire.EncodeSnapshot(&header, items)
	if err != nil {
		t.Fatalf("EncodeSnapshot: %v", err)
	}
	return InboundMsg(msg)
}

func send(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var groceries = []wire.Entry{
	{Name: "Milk", Amount: 2},
	{Name: "Eggs", Amount: 1},
	{Name: "Bread", Amount: 1, Collected: true},
}

func TestModel_ActivateAdvancesCursor(t *testing.T) {
	m, out, resets := newTestModel(t)
	m = send(m, snapshotMsg(t, "Groceries", groceries...))
	if resets.resets != 1 {
		t.Fatalf("resync resets = %d, want 1", resets.resets)
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Cursor() != 1 {
		t.Fatalf("cursor = %d after collecting row 0, want 1", m.Cursor())
	}
	m = send(m, runes("G"))
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Cursor() != 2 {
		t.Fatalf("cursor = %d after uncollecting last row, want 2", m.Cursor())
	}
	if len(out.values) != 2 || out.values[0] != 0 || out.values[1] != 2 {
		t.Fatalf("sent = %v, want [0 2]", out.values)
	}
}

func TestModel_LongPressAndResync(t *testing.T) {
	m, out, _ := newTestModel(t)
	m = send(m, snapshotMsg(t, "Groceries", groceries...))

	m = send(m, runes("j"))
	m = send(m, runes("l"))
	m = send(m, ResyncMsg{})
	m = send(m, runes("r"))

	want := []int{wire.LongPressValue(1), wire.SelectResync, wire.SelectResync}
	if len(out.values) != len(want) {
		t.Fatalf("sent = %v, want %v", out.values, want)
	}
	for i := range want {
		if out.values[i] != want[i] {
			t.Fatalf("sent = %v, want %v", out.values, want)
		}
	}
}

func TestModel_NewListRefocusesFirstRow(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = send(m, snapshotMsg(t, "Groceries", groceries...))
	m = send(m, runes("G"))
	if m.Cursor() != 2 {
		t.Fatalf("cursor = %d, want 2", m.Cursor())
	}

	m = send(m, snapshotMsg(t, "Groceries", groceries...))
	if m.Cursor() != 2 {
		t.Fatalf("steady snapshot moved cursor to %d", m.Cursor())
	}

	m = send(m, snapshotMsg(t, "Hardware", wire.Entry{Name: "Nails", Amount: 9}))
	if m.Cursor() != 0 {
		t.Fatalf("cursor = %d after list change, want 0", m.Cursor())
	}
}

func TestModel_MalformedMessageIgnored(t *testing.T) {
	m, _, resets := newTestModel(t)
	m = send(m, snapshotMsg(t, "Groceries", groceries...))
	m = send(m, InboundMsg{0xff})
	if resets.resets != 1 {
		t.Fatalf("resets = %d, malformed message must not reset the countdown", resets.resets)
	}
	if !strings.Contains(m.View(), "Milk") {
		t.Fatal("previous list not shown after malformed message")
	}
}

func TestModel_ViewRendersRows(t *testing.T) {
	m, _, _ := newTestModel(t)
	view := m.View()
	if !strings.Contains(view, "ToGetter - loading...") {
		t.Fatalf("initial view missing header:\n%s", view)
	}
	if !strings.Contains(view, "[EMPTY]") {
		t.Fatalf("initial view missing placeholder:\n%s", view)
	}

	m = send(m, tea.WindowSizeMsg{Width: 40, Height: 20})
	m = send(m, snapshotMsg(t, "Groceries", groceries...))
	view = m.View()
	for _, want := range []string{"ToGetter - Groceries", "[ ] Milk", "[x] Bread"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModel_QuitKey(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("quit key returned nil command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("quit key did not return tea.Quit")
	}
}

func TestModel_FooterShowsLinkState(t *testing.T) {
	link := state.NewStore(nil)
	m, _, _ := newTestModelWith(t, Options{Link: link})

	link.Failed(errors.New("refused"))
	if view := m.View(); !strings.Contains(view, "connecting") {
		t.Fatalf("view missing connecting status:\n%s", view)
	}

	link.Failed(errors.New("refused"))
	if view := m.View(); !strings.Contains(view, "offline (2 failed)") {
		t.Fatalf("view missing offline status:\n%s", view)
	}

	link.Connected()
	view := m.View()
	if strings.Contains(view, "offline") || strings.Contains(view, "connecting") {
		t.Fatalf("connected view still shows link status:\n%s", view)
	}
}

func TestModel_LogViewShowsTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.log")
	if err := os.WriteFile(path, []byte("level=INFO msg=first\nlevel=WARN msg=second\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	m, _, _ := newTestModelWith(t, Options{LogPath: path})
	m = send(m, snapshotMsg(t, "Groceries", groceries...))

	m = send(m, runes("v"))
	view := m.View()
	if !strings.Contains(view, "msg=second") {
		t.Fatalf("log view missing log line:\n%s", view)
	}
	if strings.Contains(view, "Milk") {
		t.Fatalf("log view still shows rows:\n%s", view)
	}

	m = send(m, runes("v"))
	if !strings.Contains(m.View(), "Milk") {
		t.Fatal("rows not restored after closing the log view")
	}
}
