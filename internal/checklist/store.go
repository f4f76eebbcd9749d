package checklist

import (
	"errors"
	"fmt"
	"sync"
)

// EmptyRowName is shown in the placeholder row of an empty list.
const EmptyRowName = "[EMPTY]"

// ErrIndexOutOfRange reports a row beyond the current list bounds.
var ErrIndexOutOfRange = errors.New("row index out of range")

// Row is a read-only copy of one presentable row.
type Row struct {
	Name        string
	Collected   bool
	Amount      int
	Status      Status
	Placeholder bool
}

// Store owns the current list. The zero value holds an empty list.
type Store struct {
	mu   sync.RWMutex
	list *List
}

// ReplaceAll swaps in l as the current list. The previous list is dropped;
// rows read before the swap do not alias the new storage.
func (s *Store) ReplaceAll(l *List) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = l
}

// Len returns the number of real items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list.Len()
}

// IsEmpty reports whether the list has no items.
func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// RowCount returns the number of presentable rows. An empty list still has
// one placeholder row.
func (s *Store) RowCount() int {
	if n := s.Len(); n > 0 {
		return n
	}
	return 1
}

// ItemAt returns a copy of the row at index row.
func (s *Store) ItemAt(row int) (Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.list.Len()
	if n == 0 {
		if row != 0 {
			return Row{}, outOfRange(row, 1)
		}
		return Row{Name: EmptyRowName, Placeholder: true}, nil
	}
	if row < 0 || row >= n {
		return Row{}, outOfRange(row, n)
	}
	st := s.list.Status(row)
	return Row{
		Name:      s.list.Name(row),
		Collected: st.Collected(),
		Amount:    st.Amount(),
		Status:    st,
	}, nil
}

// ToggleCollected flips the collected flag of row in place. Toggling the
// placeholder row of an empty list does nothing.
func (s *Store) ToggleCollected(row int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.list.Len()
	if n == 0 {
		if row != 0 {
			return outOfRange(row, 1)
		}
		return nil
	}
	if row < 0 || row >= n {
		return outOfRange(row, n)
	}
	it := &s.list.items[row]
	it.Status = it.Status.Toggled()
	return nil
}

func outOfRange(row, rows int) error {
	return fmt.Errorf("row %d of %d: %w", row, rows, ErrIndexOutOfRange)
}
