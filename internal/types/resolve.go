package types

import "github.com/pyrs-lang/pyrs/internal/hir"

// Source records where a candidate type for a binder came from, in
// spec.md §4.3's priority order (lower value wins ties against a higher
// one when both are present).
type Source int

const (
	SourceAnnotation Source = iota
	SourceConstraint
	SourceInterprocedural
	SourceHeuristic
	SourceDynamic
)

// Candidate pairs a type with the Source it was derived from.
type Candidate struct {
	Type   hir.Type
	Source Source
}

// ResolveType picks the winning type among candidates using spec.md
// §4.3's fallback ladder: explicit annotation always wins; otherwise the
// earliest Source present in priority order wins. An empty candidate
// list resolves to the dynamic sentinel.
func ResolveType(candidates []Candidate) hir.Type {
	best := (*Candidate)(nil)
	for i := range candidates {
		c := candidates[i]
		if c.Type == nil {
			continue
		}
		if best == nil || c.Source < best.Source {
			best = &candidates[i]
		}
		if c.Source == SourceAnnotation {
			break // nothing outranks an explicit annotation
		}
	}
	if best == nil {
		return &hir.TDynamic{}
	}
	return best.Type
}
