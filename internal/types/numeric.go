package types

import "github.com/pyrs-lang/pyrs/internal/hir"

// Widen implements spec.md §4.3's numeric-widening rules: integer width
// defaults to signed 64-bit except where a narrower bound is evident;
// power on integers widens; mixed int/float widens to float. Returns the
// widened type and true if a and b belong to a widenable numeric family,
// false if they're simply incompatible.
func Widen(a, b *hir.TPrimitive) (*hir.TPrimitive, bool) {
	if a.Kind == hir.PrimBool || b.Kind == hir.PrimBool {
		return nil, false
	}
	if a.Kind == hir.PrimFloat64 || b.Kind == hir.PrimFloat64 {
		return &hir.TPrimitive{Kind: hir.PrimFloat64}, true
	}
	if a.Kind == hir.PrimFloat32 || b.Kind == hir.PrimFloat32 {
		if (a.Kind == hir.PrimFloat32 || a.Kind == hir.PrimInt) && (b.Kind == hir.PrimFloat32 || b.Kind == hir.PrimInt) {
			return &hir.TPrimitive{Kind: hir.PrimFloat32}, true
		}
		return &hir.TPrimitive{Kind: hir.PrimFloat64}, true
	}
	if a.Kind == hir.PrimInt && b.Kind == hir.PrimInt {
		width := a.Width
		if b.Width > width {
			width = b.Width
		}
		unsigned := a.Unsigned && b.Unsigned
		if a.Unsigned != b.Unsigned {
			// Mixed signedness at unification time is the ambiguous case
			// spec.md §9 calls out ("noted, not guessed"); we widen to the
			// signed family and let C6 emit a sign-correction prelude
			// (spec.md §4.3: "requires an emitted sign-correction prelude").
			unsigned = false
		}
		return &hir.TPrimitive{Kind: hir.PrimInt, Width: width, Unsigned: unsigned}, true
	}
	return nil, false
}

// DefaultInt is the default integer type absent any narrower evidence
// (spec.md §4.3: "defaults to signed 64-bit").
func DefaultInt() *hir.TPrimitive {
	return &hir.TPrimitive{Kind: hir.PrimInt, Width: hir.Width64}
}

// IndexInt is the narrower-bound integer type used when a value is
// evident as a container index (spec.md §4.3: "used as an index on a
// container — then unsigned pointer-width"; modeled as usize via
// unsigned 64-bit, Rust's usize on common targets).
func IndexInt() *hir.TPrimitive {
	return &hir.TPrimitive{Kind: hir.PrimInt, Width: hir.Width64, Unsigned: true}
}

// FloorDivResultType returns the result type of Python `//` on two
// operand types, honoring spec.md §4.3: floor division on signed
// integers must match Python semantics (round toward negative infinity);
// mixed int/float widens to float.
func FloorDivResultType(a, b hir.Type) hir.Type {
	pa, aOk := a.(*hir.TPrimitive)
	pb, bOk := b.(*hir.TPrimitive)
	if !aOk || !bOk {
		return &hir.TDynamic{}
	}
	if widened, ok := Widen(pa, pb); ok {
		return widened
	}
	return &hir.TDynamic{}
}

// TrueDivResultType returns the result type of Python `/` (true
// division), which always yields a float regardless of operand types
// (spec.md §4.3), unlike `//` and the other arithmetic operators, which
// stay integral when both operands are.
func TrueDivResultType(a, b hir.Type) hir.Type {
	_, aOk := a.(*hir.TPrimitive)
	_, bOk := b.(*hir.TPrimitive)
	if !aOk || !bOk {
		return &hir.TDynamic{}
	}
	return &hir.TPrimitive{Kind: hir.PrimFloat64}
}

// PowResultType returns the result type of Python `**`, which widens per
// spec.md §4.3 ("power on integers widens").
func PowResultType(base, exp hir.Type) hir.Type {
	pb, bOk := base.(*hir.TPrimitive)
	pe, eOk := exp.(*hir.TPrimitive)
	if !bOk || !eOk {
		return &hir.TDynamic{}
	}
	if pb.Kind == hir.PrimInt && pe.Kind == hir.PrimInt {
		w := pb.Width
		if w < hir.Width64 {
			w = hir.Width64
		}
		return &hir.TPrimitive{Kind: hir.PrimInt, Width: w, Unsigned: pb.Unsigned}
	}
	if widened, ok := Widen(pb, pe); ok {
		return widened
	}
	return &hir.TDynamic{}
}

// NeedsSignCorrection reports whether a binary operation between a and b
// mixes signed and unsigned integers at a comparison or arithmetic site,
// the ambiguous case spec.md §4.3/§9 requires a sign-correction prelude
// for rather than silently guessing.
func NeedsSignCorrection(a, b hir.Type) bool {
	pa, aOk := a.(*hir.TPrimitive)
	pb, bOk := b.(*hir.TPrimitive)
	if !aOk || !bOk || pa.Kind != hir.PrimInt || pb.Kind != hir.PrimInt {
		return false
	}
	return pa.Unsigned != pb.Unsigned
}
