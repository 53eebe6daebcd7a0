package board

import (
	"errors"
	"fmt"
	"sort"

	"github.com/socforge/socforge/internal/util/maps"
)

var (
	// ErrUnknownBoard indicates a lookup for a board name that is not registered.
	ErrUnknownBoard = errors.New("board: unknown board")
	// ErrUnknownIdentifier indicates a registered board without an identifier string.
	ErrUnknownIdentifier = errors.New("board: no identifier for board")
)

// baseKwargs are the SoC build options every board starts from.
// Per-board SoCKwargs are merged on top; the resolver copies the result and
// never aliases these maps.
var baseKwargs = map[string]any{
	"integrated_rom_size":  0x10000,
	"integrated_sram_size": 0x1800,
	"l2_size":              0,
}

// Definition describes one target board: its identity, the SoC target class
// handed to the builder, default build options, and the capability set.
// Definitions are value records; Lookup returns an independent copy.
type Definition struct {
	Name            string
	Vendor          string
	SoCClass        string // builder target identifier
	ProgrammerBoard string // openFPGALoader board identifier
	SoCKwargs       map[string]any
	SoCConstants    map[string]any
	Capabilities    Capabilities
}

// DefaultKwargs returns the effective option defaults for the board: the
// common base merged with the board's own overrides. The returned map is a
// fresh copy on every call.
func (d Definition) DefaultKwargs() map[string]any {
	kwargs := maps.Clone(baseKwargs)
	return maps.Merge(kwargs, d.SoCKwargs)
}

// clone returns a deep copy so registry entries can never be mutated through
// a lookup result.
func (d Definition) clone() Definition {
	out := d
	out.SoCKwargs = maps.Clone(d.SoCKwargs)
	out.SoCConstants = maps.Clone(d.SoCConstants)
	out.Capabilities = d.Capabilities.Clone()
	return out
}

// Lookup returns the definition registered under name.
func Lookup(name string) (Definition, error) {
	def, ok := registry[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownBoard, name)
	}
	return def.clone(), nil
}

// Identifier returns the human-readable identifier string exported to
// firmware as CONFIG_IDENTIFIER.
func Identifier(name string) (string, error) {
	id, ok := identifiers[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownIdentifier, name)
	}
	return id, nil
}

// Names returns all registered board names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
