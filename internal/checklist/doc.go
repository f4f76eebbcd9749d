// Package checklist holds the in-memory checklist model.
//
// # Overview
//
// A List is an ordered set of fixed-size Item records plus one contiguous
// string table. Items refer to their names by byte offset into that table;
// they never own a copy. The Store owns the current List and replaces it
// wholesale whenever the host delivers a new snapshot.
//
// # Rows
//
// The presentation layer works in rows, not items:
//
//   - RowCount is the item count, or 1 when the list is empty
//   - IsEmpty tells the caller to draw the placeholder row
//   - ItemAt(0) on an empty list returns the "[EMPTY]" placeholder
//   - any other row outside the list fails with ErrIndexOutOfRange
//
// Rows are returned by value. After ReplaceAll the caller must query again;
// nothing obtained earlier refers into the new list.
//
// # Status byte
//
//	 7   6..0
//	┌───┬────────┐
//	│ C │ amount │   C = collected
//	└───┴────────┘
//
// A status of exactly zero marks a row the host does not consider a
// collectable item.
//
// # Header
//
// Header keeps the "ToGetter - " prefix fixed and bounds the host-supplied
// suffix to MaxSuffixLen bytes. SetSuffix reports whether the suffix changed,
// which callers treat as a change of list identity.
package checklist
