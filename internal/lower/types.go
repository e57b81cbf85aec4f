package lower

import (
	"github.com/pyrs-lang/pyrs/internal/ast"
	"github.com/pyrs-lang/pyrs/internal/hir"
	"github.com/pyrs-lang/pyrs/internal/parser"
)

// primName maps a bare annotation name to its hir.Type, when it names one
// of Python's built-in scalar/container types; nil / ok=false otherwise,
// meaning the name refers to a user class or an unresolved symbol.
func primName(name string) (hir.Type, bool) {
	switch name {
	case "int":
		return &hir.TPrimitive{Kind: hir.PrimInt, Width: hir.Width64}, true
	case "float":
		return &hir.TPrimitive{Kind: hir.PrimFloat64}, true
	case "bool":
		return &hir.TPrimitive{Kind: hir.PrimBool}, true
	case "str":
		return &hir.TText{Mode: hir.TextOwned}, true
	case "bytes":
		return &hir.TText{Mode: hir.TextOwned}, true
	case "None":
		return &hir.TPrimitive{Kind: hir.PrimUnit}, true
	case "Any", "object":
		return &hir.TDynamic{}, true
	case "list", "List":
		return &hir.TSeq{Kind: hir.SeqVec, Elem: &hir.TDynamic{}}, true
	case "dict", "Dict":
		return &hir.TMap{Key: &hir.TDynamic{}, Value: &hir.TDynamic{}, Ordered: true}, true
	case "set", "Set":
		return &hir.TSet{Elem: &hir.TDynamic{}}, true
	}
	return nil, false
}

// lowerType resolves a syntactic annotation to a semantic hir.Type. An
// unannotated parameter (te == nil) gets a fresh unconstrained TVar for
// C3 to solve (spec.md §4.3: annotations are the highest-priority
// evidence, their absence is not an error).
func (l *Lowerer) lowerType(te ast.TypeExpr) hir.Type {
	if te == nil {
		return &hir.TVar{Name: l.freshTypeVarName()}
	}
	switch t := te.(type) {
	case *ast.NameType:
		if t.Qualifier != "" {
			return &hir.TNominal{Name: t.Qualifier + "." + t.Name}
		}
		if prim, ok := primName(t.Name); ok {
			return prim
		}
		return &hir.TNominal{Name: t.Name}

	case *ast.SubscriptType:
		base, _ := t.Base.(*ast.NameType)
		baseName := ""
		if base != nil {
			baseName = base.Name
		}
		switch baseName {
		case "list", "List":
			elem := hir.Type(&hir.TDynamic{})
			if len(t.Args) == 1 {
				elem = l.lowerType(t.Args[0])
			}
			return &hir.TSeq{Kind: hir.SeqVec, Elem: elem}
		case "dict", "Dict":
			key, val := hir.Type(&hir.TDynamic{}), hir.Type(&hir.TDynamic{})
			if len(t.Args) == 2 {
				key, val = l.lowerType(t.Args[0]), l.lowerType(t.Args[1])
			}
			return &hir.TMap{Key: key, Value: val, Ordered: true}
		case "set", "Set":
			elem := hir.Type(&hir.TDynamic{})
			if len(t.Args) == 1 {
				elem = l.lowerType(t.Args[0])
			}
			return &hir.TSet{Elem: elem}
		case "Optional":
			elem := hir.Type(&hir.TDynamic{})
			if len(t.Args) == 1 {
				elem = l.lowerType(t.Args[0])
			}
			return &hir.TOption{Elem: elem}
		default:
			args := make([]hir.Type, len(t.Args))
			for i, a := range t.Args {
				args[i] = l.lowerType(a)
			}
			return &hir.TNominal{Name: baseName, Args: args}
		}

	case *ast.UnionType:
		// A two-armed `X | None` union is Python's idiom for Optional
		// (spec.md §4.2); anything wider becomes a closed sum type.
		if len(t.Options) == 2 {
			for i, o := range t.Options {
				if n, ok := o.(*ast.NameType); ok && n.Name == "None" {
					other := t.Options[1-i]
					return &hir.TOption{Elem: l.lowerType(other)}
				}
			}
		}
		variants := make([]hir.SumVariant, len(t.Options))
		for i, o := range t.Options {
			variants[i] = hir.SumVariant{Name: variantLabel(i), Fields: []hir.Type{l.lowerType(o)}}
		}
		return &hir.SumType{Name: "Union", Variants: variants}

	case *ast.TupleTypeExpr:
		elems := make([]hir.Type, len(t.Elements))
		for i, e := range t.Elements {
			elems[i] = l.lowerType(e)
		}
		return &hir.TSeq{Kind: hir.SeqTuple, Elems: elems}

	case *ast.CallableType:
		params := make([]hir.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = l.lowerType(p)
		}
		return &hir.TFunc{Params: params, Return: l.lowerType(t.Return)}

	case *ast.ForwardRefType:
		// Re-lex/re-parse the string contents as a type expression
		// (spec.md §4.2: "lowering re-lexes the string contents").
		resolved, err := parser.ParseTypeExprString(t.Contents, t.Pos.File)
		if err != nil {
			l.unsupported(t.Pos, "unparsable forward reference \""+t.Contents+"\"")
			return &hir.TDynamic{}
		}
		return l.lowerType(resolved)

	default:
		l.unsupported(te.Position(), "type annotation form")
		return &hir.TDynamic{}
	}
}

func (l *Lowerer) freshTypeVarName() string {
	l.tvarCounter++
	return "t" + itoa(l.tvarCounter)
}

func variantLabel(i int) string {
	letters := "ABCDEFGH"
	if i < len(letters) {
		return string(letters[i])
	}
	return "X"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}
