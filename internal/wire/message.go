package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/five82/togetter/internal/checklist"
)

// Field keys of the message envelope.
const (
	KeyHeader = 0
	KeyItems  = 1
	KeySelect = 2
)

// Out-of-band selection values. Real rows are >= 0.
const (
	SelectLongPress = -1
	SelectResync    = -2

	longPressRowBase = -3
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("wire: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
		UTF8:      cbor.UTF8RejectInvalid,
	}.DecMode()
	if err != nil {
		panic("wire: CBOR decoder initialization failed: " + err.Error())
	}
}

// Snapshot is a decoded inbound message. Nil fields were absent.
type Snapshot struct {
	Header *string
	List   *checklist.List
}

// DecodeSnapshot decodes one inbound message. It only builds values; applying
// them is the caller's job, so a failure leaves every store untouched.
func DecodeSnapshot(msg []byte, f Format) (Snapshot, error) {
	fields, err := decodeFields(msg)
	if err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	if raw, ok := fields[KeyHeader]; ok {
		var header string
		if err := decMode.Unmarshal(raw, &header); err != nil {
			return Snapshot{}, malformed("header: %v", err)
		}
		snap.Header = &header
	}
	if raw, ok := fields[KeyItems]; ok {
		var payload []byte
		if err := decMode.Unmarshal(raw, &payload); err != nil {
			return Snapshot{}, malformed("items: %v", err)
		}
		list, err := DecodeItems(payload, f)
		if err != nil {
			return Snapshot{}, err
		}
		snap.List = list
	}
	return snap, nil
}

// EncodeSnapshot builds an inbound message. Nil arguments leave the field out.
func EncodeSnapshot(header *string, items []byte) ([]byte, error) {
	fields := map[int]any{}
	if header != nil {
		fields[KeyHeader] = *header
	}
	if items != nil {
		fields[KeyItems] = items
	}
	msg, err := encMode.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return msg, nil
}

// EncodeSelection builds the single outbound message shape.
func EncodeSelection(value int) ([]byte, error) {
	msg, err := encMode.Marshal(map[int]int{KeySelect: value})
	if err != nil {
		return nil, fmt.Errorf("encode selection: %w", err)
	}
	return msg, nil
}

// DecodeSelection extracts the select value from an outbound message.
func DecodeSelection(msg []byte) (int, error) {
	fields, err := decodeFields(msg)
	if err != nil {
		return 0, err
	}
	raw, ok := fields[KeySelect]
	if !ok {
		return 0, malformed("select field missing")
	}
	var value int
	if err := decMode.Unmarshal(raw, &value); err != nil {
		return 0, malformed("select: %v", err)
	}
	return value, nil
}

func decodeFields(msg []byte) (map[int]cbor.RawMessage, error) {
	var fields map[int]cbor.RawMessage
	if err := decMode.Unmarshal(msg, &fields); err != nil {
		return nil, malformed("envelope: %v", err)
	}
	return fields, nil
}

// SelectionKind classifies an outbound select value.
type SelectionKind int

const (
	SelectActivate SelectionKind = iota
	SelectLongPressNoRow
	SelectLongPressRow
	SelectResyncRequest
)

// Selection is a classified select value.
type Selection struct {
	Kind SelectionKind
	Row  int
}

// LongPressValue encodes a long press on a specific row. The values sit below
// the reserved sentinels so they never collide with them.
func LongPressValue(row int) int {
	return longPressRowBase - row
}

// ParseSelection classifies a select value.
func ParseSelection(value int) Selection {
	switch {
	case value >= 0:
		return Selection{Kind: SelectActivate, Row: value}
	case value == SelectLongPress:
		return Selection{Kind: SelectLongPressNoRow, Row: -1}
	case value == SelectResync:
		return Selection{Kind: SelectResyncRequest, Row: -1}
	default:
		return Selection{Kind: SelectLongPressRow, Row: longPressRowBase - value}
	}
}
