package session

import (
	"errors"
	"log/slog"

	"github.com/five82/togetter/internal/checklist"
	"github.com/five82/togetter/internal/wire"
)

// Sender delivers one outbound message to the host.
type Sender interface {
	Send(msg []byte) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(msg []byte) error

// Send calls f(msg).
func (f SenderFunc) Send(msg []byte) error { return f(msg) }

// Focus is a selection hint for the presentation layer.
type Focus int

const (
	FocusKeep Focus = iota
	FocusFirst
	FocusNext
)

// Effect tells the presentation layer what to do after a transition.
type Effect struct {
	// Reload means previously read rows are stale.
	Reload bool
	Focus  Focus
}

// Options configure a Session.
type Options struct {
	Format   wire.Format
	Behavior Behavior
	Sender   Sender
	Logger   *slog.Logger
}

// Session owns the checklist state of one device and applies every
// transition to it. All methods are meant to be called from one goroutine.
type Session struct {
	format   wire.Format
	behavior Behavior
	out      Sender
	log      *slog.Logger

	header checklist.Header
	store  checklist.Store
}

// New creates a session with an empty list.
func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		format:   opts.Format,
		behavior: opts.Behavior,
		out:      opts.Sender,
		log:      logger,
	}
}

// Header returns the full list title.
func (s *Session) Header() string { return s.header.String() }

// RowCount returns the number of presentable rows.
func (s *Session) RowCount() int { return s.store.RowCount() }

// IsEmpty reports whether only the placeholder row exists.
func (s *Session) IsEmpty() bool { return s.store.IsEmpty() }

// ItemAt returns a copy of row.
func (s *Session) ItemAt(row int) (checklist.Row, error) { return s.store.ItemAt(row) }

// Receive applies one inbound message. A message that fails to decode is
// returned as an error and leaves the session unchanged.
func (s *Session) Receive(msg []byte) (Effect, error) {
	snap, err := wire.DecodeSnapshot(msg, s.format)
	if err != nil {
		s.log.Warn("inbound message dropped", "error", err, "bytes", len(msg))
		return Effect{}, err
	}

	newList := false
	if snap.Header != nil && s.header.SetSuffix(*snap.Header) {
		newList = true
	}
	if snap.List != nil {
		if snap.List.Len() != s.store.Len() {
			newList = true
		}
		s.store.ReplaceAll(snap.List)
	}

	s.log.Debug("snapshot applied", "header", s.header.Suffix(), "items", s.store.Len(), "new_list", newList)

	effect := Effect{Reload: true}
	if newList && s.behavior.Reselect {
		effect.Focus = FocusFirst
	}
	return effect, nil
}

// Activate handles a short press on row.
func (s *Session) Activate(row int) Effect {
	item, err := s.store.ItemAt(row)
	if err != nil {
		s.log.Debug("activate ignored", "row", row, "error", err)
		return Effect{}
	}
	if item.Placeholder {
		return Effect{}
	}
	if item.Status.IsZero() {
		switch s.behavior.Activation {
		case ActivateSkipZero:
			return Effect{}
		case ActivateSelectZero:
			s.emit(row)
			return Effect{}
		}
	}

	if err := s.store.ToggleCollected(row); err != nil {
		s.log.Debug("activate ignored", "row", row, "error", err)
		return Effect{}
	}
	s.emit(row)

	effect := Effect{Reload: true}
	if !item.Collected {
		effect.Focus = FocusNext
	}
	return effect
}

// LongActivate handles a long press on row. It never changes row state.
func (s *Session) LongActivate(row int) {
	value := wire.SelectLongPress
	if s.behavior.LongPress == LongPressRow {
		if item, err := s.store.ItemAt(row); err == nil && !item.Placeholder {
			value = wire.LongPressValue(row)
		}
	}
	s.emit(value)
}

// Tick asks the host for a fresh snapshot.
func (s *Session) Tick() {
	s.emit(wire.SelectResync)
}

func (s *Session) emit(value int) {
	msg, err := wire.EncodeSelection(value)
	if err != nil {
		s.log.Error("encode selection failed", "value", value, "error", err)
		return
	}
	if s.out == nil {
		s.log.Warn("selection dropped", "value", value, "error", errNoSender)
		return
	}
	if err := s.out.Send(msg); err != nil {
		s.log.Warn("selection dropped", "value", value, "error", err)
	}
}

var errNoSender = errors.New("no outbound channel")
