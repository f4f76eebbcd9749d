package wire

import (
	"fmt"
	"strings"
)

// Format selects the binary layout of the items field. The two layouts are
// incompatible; both ends of a channel must agree on one.
type Format int

const (
	// FormatPacked is the current layout: count, {offset, status} records,
	// then the raw string table.
	FormatPacked Format = iota
	// FormatInline is the legacy layout: count, then {collected, amount,
	// name_len, name} records with names inlined.
	FormatInline
)

// String returns the configuration name of f.
func (f Format) String() string {
	switch f {
	case FormatPacked:
		return "packed"
	case FormatInline:
		return "inline"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ParseFormat maps a configuration name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "packed":
		return FormatPacked, nil
	case "inline", "legacy":
		return FormatInline, nil
	default:
		return 0, fmt.Errorf("unknown wire format %q", name)
	}
}
