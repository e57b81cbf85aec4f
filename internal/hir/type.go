package hir

import (
	"fmt"
	"strings"
)

// Type is the semantic type representation shared by every phase from C2's
// initial annotation extraction through C3's unification and C6's
// emission (spec.md §3: "Type variants (semantic, not syntactic)"). One
// concrete struct per variant, the same sealed-interface discipline as
// every other HIR node, grounded on the teacher's TVar/TCon/TFunc2/TList/
// TTuple/TRecord/TApp family in internal/types/types.go — renamed and
// regrounded to this domain's semantic vocabulary, plus two leaves
// (TDynamic, TRef) the teacher's GC'd language never needed.
type Type interface {
	typeNode()
	String() string
}

// IntWidth enumerates the supported signed/unsigned integer widths
// (spec.md §3: "signed int of width 8/16/32/64, unsigned").
type IntWidth int

const (
	Width8 IntWidth = 1 << iota
	Width16
	Width32
	Width64
)

func (w IntWidth) String() string {
	switch w {
	case Width8:
		return "8"
	case Width16:
		return "16"
	case Width32:
		return "32"
	case Width64:
		return "64"
	default:
		return "?"
	}
}

// PrimKind enumerates the primitive type kinds of spec.md §3.
type PrimKind int

const (
	PrimBool PrimKind = iota
	PrimInt
	PrimFloat32
	PrimFloat64
	PrimUnit
	PrimNever
)

// TPrimitive is a primitive value type: bool, signed/unsigned int of a
// given width, float32/64, unit, or never.
type TPrimitive struct {
	Kind     PrimKind
	Width    IntWidth // meaningful only when Kind == PrimInt
	Unsigned bool     // meaningful only when Kind == PrimInt
}

func (*TPrimitive) typeNode() {}
func (t *TPrimitive) String() string {
	switch t.Kind {
	case PrimBool:
		return "bool"
	case PrimFloat32:
		return "f32"
	case PrimFloat64:
		return "f64"
	case PrimUnit:
		return "()"
	case PrimNever:
		return "!"
	case PrimInt:
		if t.Unsigned {
			return "u" + t.Width.String()
		}
		return "i" + t.Width.String()
	default:
		return "<primitive>"
	}
}

// TextMode selects among Rust's three string representations.
type TextMode int

const (
	TextOwned TextMode = iota
	TextBorrowed
	TextCow
)

// TText is a text value: owned String, a borrowed &str, or Cow<str>.
type TText struct {
	Mode TextMode
}

func (*TText) typeNode() {}
func (t *TText) String() string {
	switch t.Mode {
	case TextBorrowed:
		return "&str"
	case TextCow:
		return "Cow<str>"
	default:
		return "String"
	}
}

// SeqKind selects among Rust's sequence representations.
type SeqKind int

const (
	SeqVec SeqKind = iota
	SeqArray
	SeqTuple
)

// TSeq is a sequence type: Vec<T>, [T; N], or a heterogeneous tuple.
type TSeq struct {
	Kind  SeqKind
	Elem  Type   // meaningful for SeqVec/SeqArray
	Len   int    // meaningful for SeqArray
	Elems []Type // meaningful for SeqTuple
}

func (*TSeq) typeNode() {}
func (t *TSeq) String() string {
	switch t.Kind {
	case SeqArray:
		return fmt.Sprintf("[%s; %d]", t.Elem, t.Len)
	case SeqTuple:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return fmt.Sprintf("Vec<%s>", t.Elem)
	}
}

// TMap is a hash-map (or ordered-map) K→V type.
type TMap struct {
	Key     Type
	Value   Type
	Ordered bool
}

func (*TMap) typeNode() {}
func (t *TMap) String() string {
	if t.Ordered {
		return fmt.Sprintf("BTreeMap<%s, %s>", t.Key, t.Value)
	}
	return fmt.Sprintf("HashMap<%s, %s>", t.Key, t.Value)
}

// TSet is a hash-set type.
type TSet struct {
	Elem Type
}

func (*TSet) typeNode() {}
func (t *TSet) String() string { return fmt.Sprintf("HashSet<%s>", t.Elem) }

// TOption is Option<T>.
type TOption struct {
	Elem Type
}

func (*TOption) typeNode() {}
func (t *TOption) String() string { return fmt.Sprintf("Option<%s>", t.Elem) }

// TResult is Result<T, E> — spec.md §4.6's "result sum" for exception
// lowering; E is typically a TNominal referencing a generated error enum.
type TResult struct {
	Ok  Type
	Err Type
}

func (*TResult) typeNode() {}
func (t *TResult) String() string { return fmt.Sprintf("Result<%s, %s>", t.Ok, t.Err) }

// TNominal is a user-defined named type (a generated struct, enum, or
// trait).
type TNominal struct {
	Name string
	Args []Type // instantiated generic arguments, if any
}

func (*TNominal) typeNode() {}
func (t *TNominal) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", t.Name, strings.Join(parts, ", "))
}

// TGeneric is an unbound generic parameter occurring in a function or
// class signature (not a unification variable — those are TVar).
type TGeneric struct {
	Name string
}

func (*TGeneric) typeNode() {}
func (t *TGeneric) String() string { return t.Name }

// TFunc is a function type: positional argument types plus a return type.
type TFunc struct {
	Params []Type
	Return Type
}

func (*TFunc) typeNode() {}
func (t *TFunc) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("fn(%s) -> %s", strings.Join(parts, ", "), t.Return)
}

// TVar is an internal unification slot minted during constraint
// collection (spec.md §3: "type variable (internal unification slot)").
// After C3, spec.md §8 requires no TVar to remain unresolved.
type TVar struct {
	Name string
}

func (*TVar) typeNode() {}
func (t *TVar) String() string { return "'" + t.Name }

// TDynamic is the dynamic sentinel: an opaque late-bound value container
// used when inference cannot resolve a concrete type (spec.md §9).
type TDynamic struct{}

func (*TDynamic) typeNode() {}
func (*TDynamic) String() string { return "Dyn" }

// TRef is a borrowed reference to another type, with a symbolic lifetime
// slot (resolved to a concrete lifetime parameter by C4/emission) and a
// mutability flag.
type TRef struct {
	Of       Type
	Lifetime string // symbolic slot name, e.g. "'a"; "" until C4 assigns one
	Mut      bool
}

func (*TRef) typeNode() {}
func (t *TRef) String() string {
	lt := t.Lifetime
	if lt != "" {
		lt += " "
	}
	if t.Mut {
		return fmt.Sprintf("&%smut %s", lt, t.Of)
	}
	return fmt.Sprintf("&%s%s", lt, t.Of)
}

// SumType is a closed enum of named variants with field lists — supplements
// the distilled spec (SPEC_FULL §5) so C3(b)'s "widen to a sum type" and
// C6's exception-arm enumeration have a concrete representable type.
type SumType struct {
	Name     string
	Variants []SumVariant
}

// SumVariant is one arm of a SumType: a name plus an ordered field-type
// list (empty for a unit variant).
type SumVariant struct {
	Name   string
	Fields []Type
}

func (*SumType) typeNode() {}
func (t *SumType) String() string {
	parts := make([]string, len(t.Variants))
	for i, v := range t.Variants {
		if len(v.Fields) == 0 {
			parts[i] = v.Name
			continue
		}
		fields := make([]string, len(v.Fields))
		for j, f := range v.Fields {
			fields[j] = f.String()
		}
		parts[i] = fmt.Sprintf("%s(%s)", v.Name, strings.Join(fields, ", "))
	}
	return fmt.Sprintf("%s { %s }", t.Name, strings.Join(parts, " | "))
}

// Equal does a structural equality check between two types after
// substitution has been fully applied (used by the unifier's "already
// equal" fast path and by C4's copy-class test).
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}

// IsCopyClass reports whether t fits Rust's Copy trait class per spec.md
// §4.4 decision step 3 ("small fixed-size primitive").
func IsCopyClass(t Type) bool {
	switch tt := t.(type) {
	case *TPrimitive:
		return tt.Kind != PrimNever
	case *TRef:
		return !tt.Mut // a shared reference is Copy regardless of referent; &mut is not
	default:
		return false
	}
}
