// Package dtree compiles a match statement's arms into a decision tree
// for C6's Rust match-arm emission, adapting the teacher's
// internal/dtree.DecisionTreeCompiler pattern-matrix algorithm (column
// specialization over core.CorePattern) to hir.Pattern.
package dtree

import "github.com/pyrs-lang/pyrs/internal/hir"

// DecisionTree is a compiled pattern-matching decision: a leaf picks one
// arm, a switch tests one column of the pattern matrix, and a fail marks
// a non-exhaustive path (spec.md §4.2: "non-exhaustive match" is a
// diagnosed, not rejected, condition).
type DecisionTree interface {
	isDecisionTree()
}

// LeafNode selects arm ArmIndex, optionally guarded.
type LeafNode struct {
	ArmIndex int
	Body     []hir.Stmt
	Guard    hir.Expr
}

func (*LeafNode) isDecisionTree() {}

// FailNode marks a scrutinee value with no matching arm.
type FailNode struct{}

func (*FailNode) isDecisionTree() {}

// SwitchNode dispatches on the discriminator at Path within the
// scrutinee (Path is a sequence of field/element indices, as in the
// teacher's SwitchNode).
type SwitchNode struct {
	Path    []int
	Cases   map[string]DecisionTree
	Default DecisionTree
}

func (*SwitchNode) isDecisionTree() {}

// matchRow is one row of the pattern matrix: remaining column patterns
// plus the arm they resolve to if all columns match.
type matchRow struct {
	patterns []hir.Pattern
	armIndex int
	guard    hir.Expr
	body     []hir.Stmt
}

// Compiler compiles a Match's cases into a DecisionTree.
type Compiler struct {
	cases []hir.MatchCase
}

// NewCompiler builds a Compiler over cases. Compile expands an OrPattern
// case into one row per alternative (spec.md §12: the
// teacher has no or-pattern analog, so this flattening is this package's
// own addition), each row still pointing at the same original arm index
// so a single leaf still represents "this source arm matched."
func NewCompiler(cases []hir.MatchCase) *Compiler {
	return &Compiler{cases: cases}
}

// Compile builds the decision tree.
func (c *Compiler) Compile() DecisionTree {
	var matrix []matchRow
	for i, arm := range c.cases {
		for _, pat := range flatten(arm.Pattern) {
			matrix = append(matrix, matchRow{
				patterns: []hir.Pattern{pat},
				armIndex: i,
				guard:    arm.Guard,
				body:     arm.Body,
			})
		}
	}
	return c.compileMatrix(matrix, []int{})
}

// flatten expands an OrPattern into its alternatives; every other
// pattern kind is a single-element flatten of itself.
func flatten(p hir.Pattern) []hir.Pattern {
	if or, ok := p.(*hir.OrPattern); ok {
		var out []hir.Pattern
		for _, alt := range or.Alternatives {
			out = append(out, flatten(alt)...)
		}
		return out
	}
	return []hir.Pattern{p}
}

func (c *Compiler) compileMatrix(matrix []matchRow, path []int) DecisionTree {
	if len(matrix) == 0 {
		return &FailNode{}
	}
	if isDefaultRow(matrix[0]) {
		return &LeafNode{ArmIndex: matrix[0].armIndex, Body: matrix[0].body, Guard: matrix[0].guard}
	}

	colIndex := 0
	if colIndex >= len(matrix[0].patterns) {
		return &LeafNode{ArmIndex: matrix[0].armIndex, Body: matrix[0].body, Guard: matrix[0].guard}
	}
	return c.buildSwitch(matrix, path, colIndex)
}

// isDefaultRow reports whether every column is an irrefutable pattern
// (wildcard, or a bare bind with no sub-pattern).
func isDefaultRow(row matchRow) bool {
	for _, pat := range row.patterns {
		switch p := pat.(type) {
		case *hir.WildcardPattern:
			continue
		case *hir.BindPattern:
			if p.Sub == nil {
				continue
			}
			return false
		default:
			return false
		}
	}
	return true
}

func (c *Compiler) buildSwitch(matrix []matchRow, path []int, colIndex int) DecisionTree {
	cases := make(map[string][]matchRow)
	var caseOrder []string
	var defaultRows []matchRow

	for _, row := range matrix {
		if colIndex >= len(row.patterns) {
			defaultRows = append(defaultRows, row)
			continue
		}
		pat := row.patterns[colIndex]
		switch p := pat.(type) {
		case *hir.LiteralPattern:
			k := "lit:" + p.Value.Kind.String() + ":" + p.Value.Value
			if _, seen := cases[k]; !seen {
				caseOrder = append(caseOrder, k)
			}
			cases[k] = append(cases[k], row)
		case *hir.ClassPattern:
			k := "ctor:" + p.ClassName
			if _, seen := cases[k]; !seen {
				caseOrder = append(caseOrder, k)
			}
			cases[k] = append(cases[k], row)
		case *hir.WildcardPattern:
			defaultRows = append(defaultRows, row)
		case *hir.BindPattern:
			if p.Sub == nil {
				defaultRows = append(defaultRows, row)
			} else {
				specialized := row
				specialized.patterns = append(append([]hir.Pattern{}, row.patterns[:colIndex]...), append([]hir.Pattern{p.Sub}, row.patterns[colIndex+1:]...)...)
				defaultRows = append(defaultRows, specialized)
			}
		default:
			defaultRows = append(defaultRows, row)
		}
	}

	if len(cases) == 0 && len(defaultRows) > 0 {
		return &LeafNode{ArmIndex: defaultRows[0].armIndex, Body: defaultRows[0].body, Guard: defaultRows[0].guard}
	}

	node := &SwitchNode{Path: append(append([]int{}, path...), colIndex), Cases: make(map[string]DecisionTree)}
	for _, k := range caseOrder {
		specialized := specializeRows(cases[k], colIndex)
		node.Cases[k] = c.compileMatrix(specialized, node.Path)
	}
	if len(defaultRows) > 0 {
		specialized := specializeRows(defaultRows, colIndex)
		node.Default = c.compileMatrix(specialized, node.Path)
	} else {
		node.Default = &FailNode{}
	}
	return node
}

// specializeRows removes column colIndex from every row, expanding a
// ClassPattern's sub-patterns into its place (spec.md §4.2: pattern
// specialization for nested class patterns).
func specializeRows(rows []matchRow, colIndex int) []matchRow {
	out := make([]matchRow, 0, len(rows))
	for _, row := range rows {
		var next []hir.Pattern
		for i, pat := range row.patterns {
			if i != colIndex {
				next = append(next, pat)
				continue
			}
			if cp, ok := pat.(*hir.ClassPattern); ok {
				next = append(next, cp.Positional...)
			}
		}
		out = append(out, matchRow{patterns: next, armIndex: row.armIndex, guard: row.guard, body: row.body})
	}
	return out
}

// IsExhaustive reports whether tree contains no reachable FailNode.
func IsExhaustive(tree DecisionTree) bool {
	switch t := tree.(type) {
	case *FailNode:
		return false
	case *LeafNode:
		return true
	case *SwitchNode:
		if t.Default != nil && !IsExhaustive(t.Default) {
			return false
		}
		for _, sub := range t.Cases {
			if !IsExhaustive(sub) {
				return false
			}
		}
		return true
	}
	return true
}
