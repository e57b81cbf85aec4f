// Package rustlib implements C5: mapping a Python module/symbol pair to
// the Rust crate item that replaces it (spec.md §4.5). It is grounded on
// the teacher's internal/builtins.BuiltinSpec/RegisterEffectBuiltin
// tiered-registration pattern, consolidating name/arity/purity/type and
// the concrete emission target into one record, plus internal/iface's
// freeze-after-init discipline ("construct once, read-only thereafter").
package rustlib

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Tier names the three priority bands a Mapping can belong to (spec.md
// §4.5, §8 "Library-mapping priority"): a user override always beats an
// extension, which always beats the core table, regardless of
// registration order across tiers.
type Tier int

const (
	TierCore Tier = iota
	TierExtension
	TierUser
)

func (t Tier) String() string {
	switch t {
	case TierUser:
		return "user"
	case TierExtension:
		return "extension"
	default:
		return "core"
	}
}

// Mapping is a complete specification for one Python symbol's Rust
// replacement: the crate path/item to emit, whether an explicit `use` is
// needed, and whether the call shape changes (e.g. free function becomes
// a method, or argument order is reversed).
type Mapping struct {
	Module     string `yaml:"module"`      // Python module, e.g. "math"
	Symbol     string `yaml:"symbol"`      // Python symbol, e.g. "sqrt"
	Crate      string `yaml:"crate"`       // owning Rust crate, "" for std
	Path       string `yaml:"path"`        // Rust item path, e.g. "f64::sqrt"
	UseStmt    string `yaml:"use"`         // `use` line to emit once per module, "" if none
	AsMethod   bool   `yaml:"as_method"`   // true: emit as receiver.path(...) instead of path(...)
	ReverseOne bool   `yaml:"reverse_one"` // true: first positional arg becomes the receiver
	Stub       bool   `yaml:"stub"`        // true: no mapping exists yet, emit a TODO stub (spec.md §4.6)
}

// key is the lookup key: module and symbol are always looked up together,
// since the same symbol name can mean different things in different
// modules (e.g. os.path.join vs str.join).
type key struct {
	module string
	symbol string
}

// tierEntries is an ordered slice of mappings for one tier: ordered so
// Lookup can apply "insertion order within a tier" once a tier's
// ordering matters for an ambiguous case (spec.md §8).
type tierEntries struct {
	order   []key
	entries map[key]Mapping
}

func newTierEntries() *tierEntries {
	return &tierEntries{entries: make(map[key]Mapping)}
}

func (t *tierEntries) register(m Mapping) {
	k := key{module: m.Module, symbol: m.Symbol}
	if _, exists := t.entries[k]; !exists {
		t.order = append(t.order, k)
	}
	t.entries[k] = m
}

// yamlFile is the on-disk shape ParseYAML reads, matching the teacher's
// eval_harness.BenchmarkSpec style of a flat YAML document unmarshaled
// straight into Go structs.
type yamlFile struct {
	Mappings []Mapping `yaml:"mappings"`
}

// ParseYAML decodes a declarative mapping file (spec.md §6: "a
// declarative registry file") into a slice of Mapping.
func ParseYAML(data []byte) ([]Mapping, error) {
	var doc yamlFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("rustlib: parse mapping file: %w", err)
	}
	return doc.Mappings, nil
}
