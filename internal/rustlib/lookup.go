package rustlib

import "github.com/pyrs-lang/pyrs/internal/diag"

// Resolve looks module.symbol up in r and, on a miss, returns a stub
// Mapping plus the diagnostic C6 attaches to the emitted TODO (spec.md
// §4.6: "missing mappings degrade to an explicit stub with a diagnostic,
// never a silent no-op").
func Resolve(r *Registry, module, symbol string, span *diag.Span) (Mapping, *diag.Report) {
	if m, ok := r.Lookup(module, symbol); ok {
		return m, nil
	}
	stub := Mapping{Module: module, Symbol: symbol, Stub: true}
	report := diag.New(diag.MapMissingSymbol, diag.PhaseMapping,
		module+"."+symbol+": no Rust mapping registered, emitting a stub", span).
		WithFix("add a mapping entry for "+module+"."+symbol+" to the registry", 0.5)
	return stub, report
}
