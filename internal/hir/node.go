// Package hir is the typed high-level intermediate representation sitting
// between the parsed Python syntax tree (internal/ast) and Rust emission
// (internal/codegen). It is the "ground truth between phases" (spec.md
// §2): C2 constructs it, C3 and C4 mutate it in place, C6 consumes and
// discards it.
//
// Grounded on internal/ast and the teacher's internal/core: one concrete
// Go struct per node kind, dispatched through a sealed interface method
// (exprNode/stmtNode/typeNode/patternNode), never a generic node with a
// tag string (spec.md §4.1).
package hir

import (
	"github.com/pyrs-lang/pyrs/internal/diag"
	"github.com/pyrs-lang/pyrs/internal/sid"
)

// Node is embedded in every HIR node. It mirrors the teacher's
// core.CoreNode{NodeID, CoreSpan, OrigSpan}: Span is the position used for
// diagnostics, and Synthetic marks a node introduced by desugaring (no
// direct counterpart in the original source), matching spec.md §3's
// "source span, may be synthetic for desugaring" invariant.
type Node struct {
	NodeID    sid.SID
	Span      diag.Span
	Synthetic bool
}

// ID returns the node's stable identifier.
func (n Node) ID() sid.SID { return n.NodeID }

// Position returns the node's source span.
func (n Node) Position() diag.Span { return n.Span }

// IsSynthetic reports whether this node was introduced by desugaring
// rather than appearing literally in the source.
func (n Node) IsSynthetic() bool { return n.Synthetic }

// Positioned is implemented by every HIR node.
type Positioned interface {
	ID() sid.SID
	Position() diag.Span
	IsSynthetic() bool
}
