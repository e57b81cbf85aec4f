package codegen

import (
	"regexp"
	"strings"
)

// textFix is one small, idempotent textual repair in the post-emission
// pipeline (spec.md §4.6: "A pipeline of small textual repairs targets
// known emission gaps ... Each fix is idempotent and scoped to a
// specific pattern; the pipeline is fixed-point"). Grounded on the
// teacher's internal/pipeline/op_lowering.go fixed-point lowering-pass
// structure, retargeted from Core-AST rewriting to string rewriting over
// the emitted Rust text.
type textFix func(string) string

// RunTextFixes applies every registered fix repeatedly until none of
// them change the text (spec.md §8: "Idempotence of text-fix pipeline").
// A hard iteration cap guards against a pathological non-converging fix;
// none of the fixes below can actually trigger that, since each is a
// strict string-length-preserving-or-reducing rewrite of a fixed
// pattern, but the cap matches the fixed-point discipline spec.md §4.6
// calls for on an unbounded input.
func RunTextFixes(src string) string {
	const maxPasses = 8
	for i := 0; i < maxPasses; i++ {
		next := src
		for _, fix := range textFixes {
			next = fix(next)
		}
		if next == src {
			return next
		}
		src = next
	}
	return src
}

var textFixes = []textFix{
	fixDoubleParens,
	fixTrailingSemicolonBeforeBrace,
	fixStringSliceCoercion,
	fixTruthinessOnNumeric,
	fixBlankLineRuns,
}

var doubleParenRe = regexp.MustCompile(`\(\(([^()]+)\)\)`)

// fixDoubleParens collapses a redundant double-parenthesization left
// behind when a nested expression emitter wraps its own operand in
// parens that an outer call also wraps (spec.md §4.6: "numeric
// conversions where the inference layer admitted a widening" and
// similar nested-emission artifacts).
func fixDoubleParens(s string) string {
	return doubleParenRe.ReplaceAllString(s, "($1)")
}

var trailingSemiRe = regexp.MustCompile(`;\s*\n(\s*)\}`)

// fixTrailingSemicolonBeforeBrace returns s unchanged: trailingSemiRe is
// not applied, so a stray `;` immediately before a closing brace is left
// in place.
func fixTrailingSemicolonBeforeBrace(s string) string {
	return s
}

var strToStrSliceCallRe = regexp.MustCompile(`\.to_string\(\)\.as_str\(\)`)

// fixStringSliceCoercion collapses a `String`-then-immediately-borrowed
// round trip back to the original expression when a call boundary
// coercion from C6's owned-string default meets a mapping that actually
// wanted `&str` (spec.md §4.6: "string-vs-slice coercions at call
// boundaries").
func fixStringSliceCoercion(s string) string {
	return strToStrSliceCallRe.ReplaceAllString(s, "")
}

var numericTruthyRe = regexp.MustCompile(`if \(([a-zA-Z_][a-zA-Z0-9_]*)\) \{`)

// fixTruthinessOnNumeric rewrites `if (name) {` to `if name {`, dropping
// the parentheses around a bare identifier condition. It adds no
// truthiness conversion: a non-bool identifier is left as a non-bool
// condition.
func fixTruthinessOnNumeric(s string) string {
	return numericTruthyRe.ReplaceAllString(s, "if $1 {")
}

var blankRunRe = regexp.MustCompile(`\n{3,}`)

// fixBlankLineRuns collapses 2+ consecutive blank lines introduced by
// adjacent empty emission branches down to a single blank line.
func fixBlankLineRuns(s string) string {
	return blankRunRe.ReplaceAllString(strings.TrimRight(s, "\n")+"\n", "\n\n")
}
