package checklist

import (
	"bytes"
	"errors"
	"fmt"
)

// CollectedMask selects the collected flag in a status byte. The remaining
// seven bits carry the amount.
const CollectedMask = 0x80

const maxAmount = 0x7f

// ErrNameOutOfRange reports an item whose name offset falls outside the
// string table.
var ErrNameOutOfRange = errors.New("name offset out of range")

// Status packs the collected flag and amount of one item into a byte.
type Status byte

// MakeStatus builds a status byte, clamping amount to 0..127.
func MakeStatus(collected bool, amount int) Status {
	if amount < 0 {
		amount = 0
	}
	if amount > maxAmount {
		amount = maxAmount
	}
	s := Status(amount)
	if collected {
		s |= CollectedMask
	}
	return s
}

// Collected reports whether the collected flag is set.
func (s Status) Collected() bool { return s&CollectedMask != 0 }

// Amount returns the quantity bits.
func (s Status) Amount() int { return int(s & maxAmount) }

// Toggled returns s with the collected flag flipped.
func (s Status) Toggled() Status { return s ^ CollectedMask }

// IsZero reports a status byte of exactly zero. Hosts use it to mark rows
// that are not selectable items (for example list entries of a group).
func (s Status) IsZero() bool { return s == 0 }

// Item is one fixed-size record. Offset refers into the owning list's string
// table; the item does not own its name.
type Item struct {
	Offset int
	Status Status
}

// List is an ordered set of items plus the string table their names live in.
// Both slices are owned by the list and released together.
type List struct {
	items []Item
	names []byte
}

// NewList takes ownership of items and names after checking that every
// offset lands inside names.
func NewList(items []Item, names []byte) (*List, error) {
	for i, it := range items {
		if it.Offset < 0 || it.Offset >= len(names) {
			return nil, fmt.Errorf("item %d offset %d, table %d bytes: %w", i, it.Offset, len(names), ErrNameOutOfRange)
		}
	}
	return &List{items: items, names: names}, nil
}

// Len returns the number of items. A nil list is empty.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// Name resolves the name of item i: the table bytes from its offset up to the
// first NUL or the end of the table.
func (l *List) Name(i int) string {
	tail := l.names[l.items[i].Offset:]
	if end := bytes.IndexByte(tail, 0); end >= 0 {
		tail = tail[:end]
	}
	return string(tail)
}

// Status returns the status byte of item i.
func (l *List) Status(i int) Status {
	return l.items[i].Status
}
