package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EnumTable resolves "mapped enum" fields: the wire value is an arbitrary
// declared string (possibly not a valid identifier, e.g. containing a space)
// matched against an explicit string-to-variant table rather than against
// the variant's own name.
type EnumTable[T ~string] struct {
	byWire   map[string]T
	unknown  T
	required bool
}

// NewEnumTable builds a table from wire-string to variant. Lookups that miss
// resolve to the unknown variant unless MarkRequired was applied.
func NewEnumTable[T ~string](unknown T, mapping map[string]T) EnumTable[T] {
	byWire := make(map[string]T, len(mapping))
	for wire, variant := range mapping {
		byWire[normalizeWire(wire)] = variant
	}
	return EnumTable[T]{byWire: byWire, unknown: unknown}
}

// MarkRequired returns a copy of the table whose decode fails on an
// unmatched wire value instead of yielding the unknown variant.
func (t EnumTable[T]) MarkRequired() EnumTable[T] {
	t.required = true
	return t
}

// Resolve maps a wire string to its variant. The second return reports
// whether the value matched a declared mapping.
func (t EnumTable[T]) Resolve(wire string) (T, bool) {
	if variant, ok := t.byWire[normalizeWire(wire)]; ok {
		return variant, true
	}
	return t.unknown, false
}

// DecodeJSON decodes a JSON string through the table, honoring the
// required flag.
func (t EnumTable[T]) DecodeJSON(data []byte, out *T) error {
	var wire string
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("core: enum wire value is not a string: %w", err)
	}
	variant, ok := t.Resolve(wire)
	if !ok && t.required {
		return fmt.Errorf("core: no enum variant declares wire value %q", wire)
	}
	*out = variant
	return nil
}

func normalizeWire(wire string) string {
	return strings.TrimSpace(wire)
}
