package checklist

import "unicode/utf8"

const (
	// HeaderPrefix is the fixed title prefix. It is never replaced.
	HeaderPrefix = "ToGetter - "
	// MaxSuffixLen bounds the host-supplied part of the title, in bytes.
	MaxSuffixLen = 16

	initialSuffix = "loading..."
)

// Header is the list title: a fixed prefix followed by a bounded suffix
// supplied by the host.
type Header struct {
	suffix string
	set    bool
}

// Suffix returns the host-supplied part of the title.
func (h *Header) Suffix() string {
	if !h.set {
		return initialSuffix
	}
	return h.suffix
}

// String returns the full title.
func (h *Header) String() string {
	return HeaderPrefix + h.Suffix()
}

// SetSuffix replaces the suffix when the bounded value differs from the
// current one and reports whether it changed.
func (h *Header) SetSuffix(s string) bool {
	s = truncateBytes(s, MaxSuffixLen)
	changed := s != h.Suffix()
	h.suffix = s
	h.set = true
	return changed
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
