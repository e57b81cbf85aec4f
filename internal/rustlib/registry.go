package rustlib

import "fmt"

// Registry is the three-tier mapping table: user overrides, extensions,
// core, each independently ordered. Once frozen, no further registration
// is accepted (spec.md §5 lifecycle: "construct once, read-only
// thereafter").
type Registry struct {
	tiers  [3]*tierEntries
	frozen bool
}

// NewRegistry builds an empty Registry seeded with the core table.
func NewRegistry() *Registry {
	r := &Registry{
		tiers: [3]*tierEntries{
			TierCore:      newTierEntries(),
			TierExtension: newTierEntries(),
			TierUser:      newTierEntries(),
		},
	}
	registerCore(r)
	return r
}

// Register adds m to the given tier. Returns an error once the registry
// is frozen or if module/symbol is empty.
func (r *Registry) Register(tier Tier, m Mapping) error {
	if r.frozen {
		return fmt.Errorf("rustlib: registry is frozen, cannot register %s.%s", m.Module, m.Symbol)
	}
	if m.Module == "" || m.Symbol == "" {
		return fmt.Errorf("rustlib: mapping must name both module and symbol")
	}
	r.tiers[tier].register(m)
	return nil
}

// RegisterAll registers every entry in ms under tier, stopping at the
// first error.
func (r *Registry) RegisterAll(tier Tier, ms []Mapping) error {
	for _, m := range ms {
		if err := r.Register(tier, m); err != nil {
			return err
		}
	}
	return nil
}

// Freeze locks the registry against further registration, mirroring the
// teacher's builtins.Init()/iface freeze-after-init discipline.
func (r *Registry) Freeze() { r.frozen = true }

// IsFrozen reports whether Freeze has been called.
func (r *Registry) IsFrozen() bool { return r.frozen }

// Lookup implements spec.md §4.5/§8's priority rule: walk tiers
// user → extension → core, and within a tier return the entry if
// present — a user override always wins even if registered after an
// extension entry for the same symbol, because tier order is checked
// before insertion order.
func (r *Registry) Lookup(module, symbol string) (Mapping, bool) {
	k := key{module: module, symbol: symbol}
	for _, tier := range []Tier{TierUser, TierExtension, TierCore} {
		if m, ok := r.tiers[tier].entries[k]; ok {
			return m, true
		}
	}
	return Mapping{}, false
}

// AllInTier returns every mapping in tier, in registration order.
func (r *Registry) AllInTier(tier Tier) []Mapping {
	t := r.tiers[tier]
	out := make([]Mapping, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.entries[k])
	}
	return out
}

// registerCore seeds the core tier with the standard-library mappings a
// transpiled program most commonly needs, grounded on the shape of the
// teacher's registerArithmeticMeta/registerStringMeta/... grouping
// functions in internal/builtins/registry.go.
func registerCore(r *Registry) {
	core := []Mapping{
		{Module: "math", Symbol: "sqrt", Path: "f64::sqrt", AsMethod: true},
		{Module: "math", Symbol: "floor", Path: "f64::floor", AsMethod: true},
		{Module: "math", Symbol: "ceil", Path: "f64::ceil", AsMethod: true},
		{Module: "math", Symbol: "pow", Path: "f64::powf", AsMethod: true},
		{Module: "math", Symbol: "pi", Path: "std::f64::consts::PI"},
		{Module: "math", Symbol: "inf", Path: "f64::INFINITY"},

		{Module: "os", Symbol: "getenv", Crate: "std", Path: "std::env::var", UseStmt: "use std::env;"},
		{Module: "os.path", Symbol: "join", Crate: "std", Path: "std::path::Path::join", AsMethod: true},
		{Module: "os.path", Symbol: "exists", Crate: "std", Path: "std::path::Path::exists", AsMethod: true},

		{Module: "sys", Symbol: "exit", Path: "std::process::exit"},
		{Module: "sys", Symbol: "argv", Path: "std::env::args"},

		{Module: "json", Symbol: "dumps", Crate: "serde_json", Path: "serde_json::to_string", UseStmt: "use serde_json;"},
		{Module: "json", Symbol: "loads", Crate: "serde_json", Path: "serde_json::from_str", UseStmt: "use serde_json;"},

		{Module: "re", Symbol: "match", Crate: "regex", Path: "regex::Regex::is_match", AsMethod: true, ReverseOne: true, UseStmt: "use regex::Regex;"},
		{Module: "re", Symbol: "compile", Crate: "regex", Path: "regex::Regex::new", UseStmt: "use regex::Regex;"},

		{Module: "random", Symbol: "random", Crate: "rand", Path: "rand::random", UseStmt: "use rand;"},
		{Module: "random", Symbol: "randint", Crate: "rand", Path: "rand::Rng::gen_range", AsMethod: true, UseStmt: "use rand::Rng;"},

		{Module: "datetime", Symbol: "now", Crate: "chrono", Path: "chrono::Local::now", UseStmt: "use chrono::Local;"},

		{Module: "builtins", Symbol: "len", Path: "len", AsMethod: true},
		{Module: "builtins", Symbol: "print", Path: "println!"},
		{Module: "builtins", Symbol: "str", Path: "to_string", AsMethod: true},
		{Module: "builtins", Symbol: "int", Path: "parse", AsMethod: true},
		{Module: "builtins", Symbol: "abs", Path: "abs", AsMethod: true},
		{Module: "builtins", Symbol: "sorted", Path: "sort", AsMethod: true},
		{Module: "builtins", Symbol: "min", Path: "std::cmp::min"},
		{Module: "builtins", Symbol: "max", Path: "std::cmp::max"},
	}
	for _, m := range core {
		r.tiers[TierCore].register(m)
	}
}
