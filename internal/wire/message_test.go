package wire

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	header := "Groceries"
	items, err := EncodeItems([]Entry{{Name: "Milk"}, {Name: "Eggs", Collected: true, Amount: 1}}, FormatPacked)
	if err != nil {
		t.Fatalf("EncodeItems returned error: %v", err)
	}
	msg, err := EncodeSnapshot(&header, items)
	if err != nil {
		t.Fatalf("EncodeSnapshot returned error: %v", err)
	}

	snap, err := DecodeSnapshot(msg, FormatPacked)
	if err != nil {
		t.Fatalf("DecodeSnapshot returned error: %v", err)
	}
	if snap.Header == nil || *snap.Header != header {
		t.Fatalf("Header = %v, want %q", snap.Header, header)
	}
	if snap.List.Len() != 2 || snap.List.Name(1) != "Eggs" {
		t.Fatalf("List = %#v, want Milk, Eggs", Entries(snap.List))
	}
}

func TestSnapshot_FieldsAreIndependentlyOptional(t *testing.T) {
	header := "Only header"
	msg, err := EncodeSnapshot(&header, nil)
	if err != nil {
		t.Fatalf("EncodeSnapshot returned error: %v", err)
	}
	snap, err := DecodeSnapshot(msg, FormatPacked)
	if err != nil {
		t.Fatalf("DecodeSnapshot returned error: %v", err)
	}
	if snap.Header == nil || snap.List != nil {
		t.Fatalf("snapshot = %#v, want header only", snap)
	}

	msg, err = EncodeSnapshot(nil, []byte{0})
	if err != nil {
		t.Fatalf("EncodeSnapshot returned error: %v", err)
	}
	snap, err = DecodeSnapshot(msg, FormatPacked)
	if err != nil {
		t.Fatalf("DecodeSnapshot returned error: %v", err)
	}
	if snap.Header != nil || snap.List == nil || snap.List.Len() != 0 {
		t.Fatalf("snapshot = %#v, want empty items only", snap)
	}

	msg, err = EncodeSnapshot(nil, nil)
	if err != nil {
		t.Fatalf("EncodeSnapshot returned error: %v", err)
	}
	snap, err = DecodeSnapshot(msg, FormatPacked)
	if err != nil {
		t.Fatalf("DecodeSnapshot returned error: %v", err)
	}
	if snap.Header != nil || snap.List != nil {
		t.Fatalf("snapshot = %#v, want no fields", snap)
	}
}

func TestDecodeSnapshot_Malformed(t *testing.T) {
	overrun, err := EncodeSnapshot(nil, []byte{4, 0, 1})
	if err != nil {
		t.Fatalf("EncodeSnapshot returned error: %v", err)
	}
	wrongType, err := cbor.Marshal(map[int]any{KeyHeader: 42})
	if err != nil {
		t.Fatalf("cbor.Marshal returned error: %v", err)
	}
	notMap, err := cbor.Marshal([]int{1, 2})
	if err != nil {
		t.Fatalf("cbor.Marshal returned error: %v", err)
	}

	cases := map[string][]byte{
		"empty":             nil,
		"garbage":           {0xff, 0x00},
		"not a map":         notMap,
		"header wrong type": wrongType,
		"items overrun":     overrun,
	}
	for name, msg := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeSnapshot(msg, FormatPacked); !errors.Is(err, ErrMalformedMessage) {
				t.Fatalf("DecodeSnapshot error = %v, want ErrMalformedMessage", err)
			}
		})
	}
}

func TestSelection_RoundTrip(t *testing.T) {
	for _, value := range []int{0, 7, SelectLongPress, SelectResync, LongPressValue(4)} {
		msg, err := EncodeSelection(value)
		if err != nil {
			t.Fatalf("EncodeSelection(%d) returned error: %v", value, err)
		}
		got, err := DecodeSelection(msg)
		if err != nil {
			t.Fatalf("DecodeSelection returned error: %v", err)
		}
		if got != value {
			t.Fatalf("DecodeSelection = %d, want %d", got, value)
		}
	}
}

func TestEncodeSelection_Deterministic(t *testing.T) {
	first, err := EncodeSelection(3)
	if err != nil {
		t.Fatalf("EncodeSelection returned error: %v", err)
	}
	second, err := EncodeSelection(3)
	if err != nil {
		t.Fatalf("EncodeSelection returned error: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("EncodeSelection not deterministic: %x != %x", first, second)
	}
	// {2: 3}
	if want := []byte{0xa1, 0x02, 0x03}; !bytes.Equal(first, want) {
		t.Fatalf("EncodeSelection(3) = %x, want %x", first, want)
	}
}

func TestDecodeSelection_MissingField(t *testing.T) {
	msg, err := EncodeSnapshot(nil, nil)
	if err != nil {
		t.Fatalf("EncodeSnapshot returned error: %v", err)
	}
	if _, err := DecodeSelection(msg); !errors.Is(err, ErrMalformedMessage) {
		t.Fatalf("DecodeSelection error = %v, want ErrMalformedMessage", err)
	}
}

func TestParseSelection(t *testing.T) {
	cases := []struct {
		value int
		want  Selection
	}{
		{0, Selection{Kind: SelectActivate, Row: 0}},
		{12, Selection{Kind: SelectActivate, Row: 12}},
		{-1, Selection{Kind: SelectLongPressNoRow, Row: -1}},
		{-2, Selection{Kind: SelectResyncRequest, Row: -1}},
		{-3, Selection{Kind: SelectLongPressRow, Row: 0}},
		{LongPressValue(9), Selection{Kind: SelectLongPressRow, Row: 9}},
	}
	for _, tc := range cases {
		if got := ParseSelection(tc.value); got != tc.want {
			t.Fatalf("ParseSelection(%d) = %#v, want %#v", tc.value, got, tc.want)
		}
	}
}
