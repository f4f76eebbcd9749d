package session

import (
	"fmt"
	"strings"

	"github.com/five82/togetter/internal/wire"
)

// ActivationMode decides what activating a row does.
type ActivationMode int

const (
	// ActivateToggle flips every real row, whatever its status.
	ActivateToggle ActivationMode = iota
	// ActivateSkipZero ignores rows whose status byte is exactly zero.
	ActivateSkipZero
	// ActivateSelectZero leaves zero-status rows unchanged but still sends
	// their index, so the host can open the list they name.
	ActivateSelectZero
)

// LongPressMode decides the outbound payload of a long press.
type LongPressMode int

const (
	// LongPressSentinel always sends wire.SelectLongPress.
	LongPressSentinel LongPressMode = iota
	// LongPressRow sends wire.LongPressValue(row) for real rows.
	LongPressRow
)

// Behavior collects the choices that differ between deployed variants.
type Behavior struct {
	Activation ActivationMode
	LongPress  LongPressMode
	// Reselect focuses the first row when the list identity changes.
	Reselect bool
}

// Variant is a named combination of wire format and behavior.
type Variant struct {
	Name     string
	Format   wire.Format
	Behavior Behavior
}

// DefaultVariant is used when configuration names none.
const DefaultVariant = "v3"

var variants = map[string]Variant{
	"v1": {
		Name:     "v1",
		Format:   wire.FormatInline,
		Behavior: Behavior{Activation: ActivateToggle, LongPress: LongPressSentinel},
	},
	"v2": {
		Name:     "v2",
		Format:   wire.FormatPacked,
		Behavior: Behavior{Activation: ActivateSelectZero, LongPress: LongPressSentinel, Reselect: true},
	},
	"v3": {
		Name:     "v3",
		Format:   wire.FormatPacked,
		Behavior: Behavior{Activation: ActivateSkipZero, LongPress: LongPressRow, Reselect: true},
	},
}

// LookupVariant returns the preset registered under name.
func LookupVariant(name string) (Variant, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultVariant
	}
	v, ok := variants[key]
	if !ok {
		return Variant{}, fmt.Errorf("unknown variant %q", name)
	}
	return v, nil
}

// ParseActivation maps a configuration name to an ActivationMode.
func ParseActivation(name string) (ActivationMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "toggle":
		return ActivateToggle, nil
	case "skip-zero", "skipzero":
		return ActivateSkipZero, nil
	case "select-zero", "selectzero":
		return ActivateSelectZero, nil
	default:
		return 0, fmt.Errorf("unknown activation mode %q", name)
	}
}

// ParseLongPress maps a configuration name to a LongPressMode.
func ParseLongPress(name string) (LongPressMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sentinel":
		return LongPressSentinel, nil
	case "row":
		return LongPressRow, nil
	default:
		return 0, fmt.Errorf("unknown long press mode %q", name)
	}
}
