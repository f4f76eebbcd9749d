package wire

import (
	"errors"
	"fmt"
	"strings"

	"github.com/five82/togetter/internal/checklist"
)

// ErrMalformedMessage reports an inbound field that failed bounds checks.
var ErrMalformedMessage = errors.New("malformed message")

const (
	maxCount         = 0xff
	packedRecordSize = 2
	inlineHeaderSize = 3
	// inlineNameLimit is the width of a legacy name slot.
	inlineNameLimit = 16
)

// Entry is the flat form of one list item used to build payloads.
type Entry struct {
	Name      string
	Collected bool
	Amount    int
}

// DecodeItems parses an items payload laid out in format f. The returned list
// may keep sub-slices of payload, so the caller hands ownership over.
func DecodeItems(payload []byte, f Format) (*checklist.List, error) {
	switch f {
	case FormatPacked:
		return decodePacked(payload)
	case FormatInline:
		return decodeInline(payload)
	default:
		return nil, fmt.Errorf("decode items: unknown %v", f)
	}
}

func decodePacked(payload []byte) (*checklist.List, error) {
	if len(payload) == 0 {
		return nil, malformed("items: missing count")
	}
	count := int(payload[0])
	tableStart := 1 + packedRecordSize*count
	if tableStart > len(payload) {
		return nil, malformed("items: %d records need %d bytes, have %d", count, tableStart, len(payload))
	}

	items := make([]checklist.Item, count)
	records := payload[1:tableStart]
	for i := range items {
		items[i] = checklist.Item{
			Offset: int(records[packedRecordSize*i]),
			Status: checklist.Status(records[packedRecordSize*i+1]),
		}
	}

	list, err := checklist.NewList(items, payload[tableStart:])
	if err != nil {
		return nil, malformed("items: %v", err)
	}
	return list, nil
}

func decodeInline(payload []byte) (*checklist.List, error) {
	if len(payload) == 0 {
		return nil, malformed("items: missing count")
	}
	count := int(payload[0])
	items := make([]checklist.Item, count)
	var names []byte

	pos := 1
	for i := range items {
		if pos+inlineHeaderSize > len(payload) {
			return nil, malformed("items: record %d truncated at byte %d", i, pos)
		}
		collected := payload[pos] != 0
		amount := int(payload[pos+1])
		nameLen := int(payload[pos+2])
		pos += inlineHeaderSize
		if pos+nameLen > len(payload) {
			return nil, malformed("items: record %d name needs %d bytes, have %d", i, nameLen, len(payload)-pos)
		}
		name := payload[pos : pos+nameLen]
		pos += nameLen
		if len(name) > inlineNameLimit {
			name = name[:inlineNameLimit]
		}

		items[i] = checklist.Item{
			Offset: len(names),
			Status: checklist.MakeStatus(collected, amount),
		}
		names = append(names, name...)
		names = append(names, 0)
	}

	list, err := checklist.NewList(items, names)
	if err != nil {
		return nil, malformed("items: %v", err)
	}
	return list, nil
}

// EncodeItems builds an items payload in format f.
func EncodeItems(entries []Entry, f Format) ([]byte, error) {
	if len(entries) > maxCount {
		return nil, fmt.Errorf("encode items: %d entries exceed %d", len(entries), maxCount)
	}
	switch f {
	case FormatPacked:
		return encodePacked(entries)
	case FormatInline:
		return encodeInline(entries)
	default:
		return nil, fmt.Errorf("encode items: unknown %v", f)
	}
}

func encodePacked(entries []Entry) ([]byte, error) {
	records := make([]byte, 1, 1+packedRecordSize*len(entries))
	records[0] = byte(len(entries))
	var names []byte
	for i, e := range entries {
		if strings.IndexByte(e.Name, 0) >= 0 {
			return nil, fmt.Errorf("encode items: entry %d name contains NUL", i)
		}
		if len(names) > maxCount {
			return nil, fmt.Errorf("encode items: entry %d offset %d exceeds %d", i, len(names), maxCount)
		}
		st := checklist.MakeStatus(e.Collected, e.Amount)
		records = append(records, byte(len(names)), byte(st))
		names = append(names, e.Name...)
		names = append(names, 0)
	}
	return append(records, names...), nil
}

func encodeInline(entries []Entry) ([]byte, error) {
	out := []byte{byte(len(entries))}
	for i, e := range entries {
		if len(e.Name) > maxCount {
			return nil, fmt.Errorf("encode items: entry %d name is %d bytes", i, len(e.Name))
		}
		var collected byte
		if e.Collected {
			collected = 1
		}
		amount := checklist.MakeStatus(false, e.Amount).Amount()
		out = append(out, collected, byte(amount), byte(len(e.Name)))
		out = append(out, e.Name...)
	}
	return out, nil
}

// Entries flattens a decoded list.
func Entries(l *checklist.List) []Entry {
	out := make([]Entry, l.Len())
	for i := range out {
		st := l.Status(i)
		out[i] = Entry{Name: l.Name(i), Collected: st.Collected(), Amount: st.Amount()}
	}
	return out
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrMalformedMessage}, args...)...)
}
