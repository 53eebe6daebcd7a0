package soc

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/socforge/socforge/internal/board"
)

// ErrInvalidAddress indicates a remote IP that does not parse into exactly
// four octets.
var ErrInvalidAddress = errors.New("soc: invalid remote IP address")

// IdentifierConstant is the firmware constant carrying the board identifier.
const IdentifierConstant = "CONFIG_IDENTIFIER"

var remoteIPConstants = [4]string{"REMOTEIP1", "REMOTEIP2", "REMOTEIP3", "REMOTEIP4"}

// ConstantTable is the ordered name → value table exported to firmware.
// Values are integers or strings. Assembly is append-only; Delete exists so
// the REMOTEIP constants can be re-set idempotently.
type ConstantTable struct {
	names  []string
	values map[string]any
}

// NewConstantTable returns an empty table.
func NewConstantTable() *ConstantTable {
	return &ConstantTable{values: make(map[string]any)}
}

// Set inserts or overwrites a constant. The first insertion fixes the
// position of a name; overwriting keeps it.
func (t *ConstantTable) Set(name string, value any) {
	if _, ok := t.values[name]; !ok {
		t.names = append(t.names, name)
	}
	t.values[name] = value
}

// Delete removes a constant, preserving the order of the others. Deleting an
// absent name is a no-op.
func (t *ConstantTable) Delete(name string) {
	if _, ok := t.values[name]; !ok {
		return
	}
	delete(t.values, name)
	for i, n := range t.names {
		if n == name {
			t.names = append(t.names[:i], t.names[i+1:]...)
			break
		}
	}
}

// Get returns the value for name.
func (t *ConstantTable) Get(name string) (any, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Names returns the constant names in insertion order.
func (t *ConstantTable) Names() []string {
	return append([]string(nil), t.names...)
}

// Len returns the number of constants.
func (t *ConstantTable) Len() int {
	return len(t.names)
}

// BuildConstants assembles the firmware constant table for the board: the
// board's own constants, the identifier string, and — when the board has
// ethernet and a remote IP was supplied — the four REMOTEIP octet constants.
// The function has no side effects; persisting the table is the pipeline's
// job.
func BuildConstants(def board.Definition, opts *Options) (*ConstantTable, error) {
	table := NewConstantTable()

	// Seed verbatim from the board constants, sorted for a stable order.
	seed := make([]string, 0, len(def.SoCConstants))
	for name := range def.SoCConstants {
		seed = append(seed, name)
	}
	sort.Strings(seed)
	for _, name := range seed {
		table.Set(name, def.SoCConstants[name])
	}

	identifier, err := board.Identifier(def.Name)
	if err != nil {
		return nil, err
	}
	table.Set(IdentifierConstant, identifier)

	if def.Capabilities.Has(board.CapEthernet) && opts.RemoteIP != "" {
		octets, err := ParseDottedQuad(opts.RemoteIP)
		if err != nil {
			return nil, err
		}
		// Safe to call more than once: drop any previous REMOTEIP set first.
		for _, name := range remoteIPConstants {
			table.Delete(name)
		}
		for i, name := range remoteIPConstants {
			table.Set(name, octets[i])
		}
	}

	return table, nil
}

// ParseDottedQuad parses a dotted-quad IPv4 string into its four octets.
func ParseDottedQuad(s string) ([4]int, error) {
	var octets [4]int
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return octets, fmt.Errorf("%w: %q has %d parts, want 4", ErrInvalidAddress, s, len(parts))
	}
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return octets, fmt.Errorf("%w: %q: part %q is not numeric", ErrInvalidAddress, s, part)
		}
		if n < 0 || n > 255 {
			return octets, fmt.Errorf("%w: %q: octet %d out of range", ErrInvalidAddress, s, n)
		}
		octets[i] = n
	}
	return octets, nil
}
