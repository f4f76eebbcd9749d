package host

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/five82/togetter/internal/togetapi"
	"github.com/five82/togetter/internal/wire"
)

// MaxValueLen is the byte limit for labels and names sent to the device.
const MaxValueLen = 16

// maxTableOffset is the largest offset a packed record can carry.
const maxTableOffset = 0xff

// Letters that do not decompose under NFD.
var foldReplacer = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae", "Æ", "AE",
	"œ", "oe", "Œ", "OE",
	"ø", "o", "Ø", "O",
	"đ", "d", "Đ", "D",
	"ł", "l", "Ł", "L",
	"þ", "th", "Þ", "Th",
)

// CleanValue strips diacritics from s, drops control characters and caps the
// result at MaxValueLen bytes without splitting a rune.
func CleanValue(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = foldReplacer.Replace(folded)
	folded = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, folded)

	if len(folded) <= MaxValueLen {
		return folded
	}
	cut := MaxValueLen
	for cut > 0 && !utf8.RuneStart(folded[cut]) {
		cut--
	}
	return folded[:cut]
}

// listEntries flattens a list for packing. Status is collected|amount with
// the amount raised to 1, so a real item never packs to the zero status that
// marks a group row.
func listEntries(l *togetapi.List) []wire.Entry {
	out := make([]wire.Entry, len(l.Items))
	for i, it := range l.Items {
		out[i] = wire.Entry{Name: CleanValue(it.Item), Collected: it.Collected, Amount: max(it.Amount, 1)}
	}
	return out
}

// groupEntries flattens a group for packing. Every status byte is zero.
func groupEntries(g *togetapi.Group) []wire.Entry {
	out := make([]wire.Entry, len(g.Lists))
	for i, l := range g.Lists {
		out[i] = wire.Entry{Name: CleanValue(l.Label)}
	}
	return out
}

// fit drops trailing entries that the items payload cannot address.
func fit(entries []wire.Entry, f wire.Format) []wire.Entry {
	if len(entries) > 0xff {
		entries = entries[:0xff]
	}
	if f != wire.FormatPacked {
		return entries
	}
	offset := 0
	for i, e := range entries {
		if offset > maxTableOffset {
			return entries[:i]
		}
		offset += len(e.Name) + 1
	}
	return entries
}

// packMessage builds the full snapshot message for a label and entries. It
// also reports how many entries were left out.
func packMessage(label string, entries []wire.Entry, f wire.Format) ([]byte, int, error) {
	kept := fit(entries, f)
	items, err := wire.EncodeItems(kept, f)
	if err != nil {
		return nil, 0, err
	}
	header := CleanValue(label)
	msg, err := wire.EncodeSnapshot(&header, items)
	if err != nil {
		return nil, 0, err
	}
	return msg, len(entries) - len(kept), nil
}
