package lower

import (
	"fmt"

	"github.com/pyrs-lang/pyrs/internal/ast"
	"github.com/pyrs-lang/pyrs/internal/hir"
)

func (l *Lowerer) lowerPattern(p ast.Pattern) hir.Pattern {
	if p == nil {
		return &hir.WildcardPattern{Node: l.synthetic()}
	}
	switch pt := p.(type) {
	case *ast.WildcardPattern:
		return &hir.WildcardPattern{Node: l.node(pt.Pos)}

	case *ast.LiteralPattern:
		return &hir.LiteralPattern{Node: l.node(pt.Pos), Value: l.lowerLiteral(pt.Value)}

	case *ast.SequencePattern:
		elems := make([]hir.Pattern, len(pt.Elements))
		for i, e := range pt.Elements {
			elems[i] = l.lowerPattern(e)
		}
		return &hir.SequencePattern{Node: l.node(pt.Pos), Elements: elems, Rest: pt.Rest}

	case *ast.MappingPattern:
		entries := make([]hir.MappingEntry, len(pt.Entries))
		for i, e := range pt.Entries {
			entries[i] = hir.MappingEntry{Key: l.lowerExpr(e.Key), Pattern: l.lowerPattern(e.Pattern)}
		}
		return &hir.MappingPattern{Node: l.node(pt.Pos), Entries: entries, Rest: pt.Rest}

	case *ast.ClassPattern:
		pos := make([]hir.Pattern, len(pt.Positional))
		for i, e := range pt.Positional {
			pos[i] = l.lowerPattern(e)
		}
		kw := make(map[string]hir.Pattern, len(pt.Keyword))
		for k, v := range pt.Keyword {
			kw[k] = l.lowerPattern(v)
		}
		return &hir.ClassPattern{Node: l.node(pt.Pos), ClassName: pt.ClassName, Positional: pos, Keyword: kw}

	case *ast.OrPattern:
		alts := make([]hir.Pattern, len(pt.Alternatives))
		for i, a := range pt.Alternatives {
			alts[i] = l.lowerPattern(a)
		}
		return &hir.OrPattern{Node: l.node(pt.Pos), Alternatives: alts}

	case *ast.BindPattern:
		var sub hir.Pattern
		if pt.Sub != nil {
			sub = l.lowerPattern(pt.Sub)
		}
		return &hir.BindPattern{Node: l.node(pt.Pos), Name: pt.Name, Sub: sub}

	default:
		l.unsupported(p.Position(), fmt.Sprintf("pattern kind %T", p))
		return &hir.WildcardPattern{Node: l.synthetic()}
	}
}
