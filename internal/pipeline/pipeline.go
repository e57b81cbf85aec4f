// Package pipeline sequences C2 through C6 into one compilation pass,
// grounded on the teacher's internal/pipeline/pipeline.go Config/Source/
// Artifacts/Result/Run shape: a single Run entry point that threads one
// hir.Module through lowering, type inference, ownership analysis, and
// Rust emission, accumulating per-phase timings and never aborting once
// lowering has produced a module (spec.md §7's continue-on-diagnostic
// policy).
package pipeline

import (
	"fmt"
	"time"

	"github.com/pyrs-lang/pyrs/internal/ast"
	"github.com/pyrs-lang/pyrs/internal/borrow"
	"github.com/pyrs-lang/pyrs/internal/codegen"
	"github.com/pyrs-lang/pyrs/internal/diag"
	"github.com/pyrs-lang/pyrs/internal/hir"
	"github.com/pyrs-lang/pyrs/internal/lexer"
	"github.com/pyrs-lang/pyrs/internal/lower"
	"github.com/pyrs-lang/pyrs/internal/parser"
	"github.com/pyrs-lang/pyrs/internal/rustlib"
	"github.com/pyrs-lang/pyrs/internal/tracelog"
	"github.com/pyrs-lang/pyrs/internal/types"
)

// Config carries the tunables and shared, reusable state a Run needs.
// Registry is optional: when nil, Run builds and freezes a fresh
// rustlib.Registry seeded with only the core tier (spec.md §5's
// lifecycle — construct once, share read-only across file-level
// fan-out).
type Config struct {
	Registry    *rustlib.Registry
	UserMapping []rustlib.Mapping // registered into TierUser before Freeze
	Trace       *tracelog.Tracer  // optional; nil means silent timing only
}

// Source is one Python compilation unit.
type Source struct {
	Code     string
	Filename string
}

// Artifacts holds every intermediate representation produced along the
// way, mirroring the teacher's Artifacts{AST, Core, ...} shape so a
// caller inspecting a failed or partial Run can see how far it got.
type Artifacts struct {
	AST *ast.File
	HIR *hir.Module
}

// Result is what Run returns: the emitted Rust source (if emission ran
// at all), every accumulated diagnostic across all phases, per-phase
// timings, and the intermediate artifacts.
type Result struct {
	Rust         string
	Diagnostics  diag.List
	PhaseTimings map[string]time.Duration
	Artifacts    Artifacts
}

// Run executes the full C2→C3→C4→C5→C6 pipeline over src (spec.md §2's
// pipeline table). A parse failure is the only fatal error (spec.md §7):
// every later-phase diagnostic is accumulated onto Result.Diagnostics and
// the pipeline keeps going, since each phase degrades its own output
// (dynamic types, emission stubs) rather than aborting the file.
func Run(cfg Config, src Source) (Result, error) {
	result := Result{PhaseTimings: make(map[string]time.Duration)}

	reg := cfg.Registry
	if reg == nil {
		reg = rustlib.NewRegistry()
		if len(cfg.UserMapping) > 0 {
			if err := reg.RegisterAll(rustlib.TierUser, cfg.UserMapping); err != nil {
				return result, fmt.Errorf("pipeline: registering user mapping: %w", err)
			}
		}
		reg.Freeze()
	}

	trace := cfg.Trace
	if trace == nil {
		trace = tracelog.New(nil)
	}

	// Phase 1: parse (spec.md §7: fatal for the file on failure).
	trace.Start(diag.PhaseParse)
	start := time.Now()
	normalized := lexer.Normalize([]byte(src.Code))
	l := lexer.New(string(normalized), src.Filename)
	p := parser.New(l, src.Filename)
	file := p.ParseFile()
	result.PhaseTimings[diag.PhaseParse] = time.Since(start)
	if errs := p.Errors(); len(errs) > 0 {
		trace.Fail(diag.PhaseParse, errs[0])
		return result, fmt.Errorf("%s: parse error: %w", src.Filename, errs[0])
	}
	if errs := l.Errors(); len(errs) > 0 {
		trace.Fail(diag.PhaseParse, errs[0])
		return result, fmt.Errorf("%s: lex error: %s", src.Filename, errs[0])
	}
	result.Artifacts.AST = file
	trace.End(diag.PhaseParse)

	// Phase 2: lower AST -> HIR (C2).
	trace.Start(diag.PhaseLower)
	start = time.Now()
	mod, lowerDiags := lower.LowerFile(file)
	result.Diagnostics = append(result.Diagnostics, lowerDiags...)
	result.Artifacts.HIR = mod
	result.PhaseTimings[diag.PhaseLower] = time.Since(start)
	trace.Warn(diag.PhaseLower, len(lowerDiags))
	trace.End(diag.PhaseLower)
	if mod == nil {
		trace.Fail(diag.PhaseLower, fmt.Errorf("lowering produced no module"))
		return result, fmt.Errorf("%s: lowering produced no module", src.Filename)
	}

	// Phase 3: type inference (C3) — unification, then inter-procedural
	// propagation over the call graph to a fixed point (spec.md §4.3(b)).
	trace.Start(diag.PhaseType)
	start = time.Now()
	checker := types.NewChecker()
	checker.CheckModule(mod)
	checker.Finalize(mod)
	graph := types.BuildCallGraph(mod)
	types.Propagate(mod, graph)
	result.Diagnostics = append(result.Diagnostics, checker.Diagnostics()...)
	result.PhaseTimings[diag.PhaseType] = time.Since(start)
	trace.Warn(diag.PhaseType, len(checker.Diagnostics()))
	trace.End(diag.PhaseType)

	// Phase 4: ownership / borrow / lifetime inference (C4).
	trace.Start(diag.PhaseBorrow)
	start = time.Now()
	analyzer := borrow.NewAnalyzer()
	analyzer.AnalyzeModule(mod)
	result.Diagnostics = append(result.Diagnostics, analyzer.Diagnostics()...)
	result.PhaseTimings[diag.PhaseBorrow] = time.Since(start)
	trace.Warn(diag.PhaseBorrow, len(analyzer.Diagnostics()))
	trace.End(diag.PhaseBorrow)

	// Phase 5/6: C5 (library mapping) is consulted from within C6 at
	// every external call site, not run as its own pass — there is no
	// module-wide mapping step separate from emission (spec.md §4.5).
	trace.Start(diag.PhaseCodegen)
	start = time.Now()
	rustSrc, genDiags := codegen.EmitModule(mod, reg)
	result.Diagnostics = append(result.Diagnostics, genDiags...)
	result.Rust = rustSrc
	result.PhaseTimings[diag.PhaseCodegen] = time.Since(start)
	trace.Warn(diag.PhaseCodegen, len(genDiags))
	trace.End(diag.PhaseCodegen)

	return result, nil
}

// Transpile is the single pure entry point spec.md §6 requires: given
// Python source, it returns the generated Rust source, every diagnostic
// accumulated across phases, and an error only when parsing itself
// fails (spec.md §7 — every other phase degrades instead of aborting).
func Transpile(pythonSource string) (string, diag.List, error) {
	result, err := Run(Config{}, Source{Code: pythonSource, Filename: "<input>"})
	if err != nil {
		return "", result.Diagnostics, err
	}
	return result.Rust, result.Diagnostics, nil
}

// TranspileAll runs Transpile over every source independently. Each
// invocation shares no mutable state beyond the frozen registry it
// builds internally (spec.md §5: "file-level parallelism ... files are
// embarrassingly parallel, sharing only the read-only ... registry"), so
// this is a thin sequential helper; a caller wanting actual concurrency
// fans the same Transpile call out over goroutines itself.
func TranspileAll(sources []Source) []Result {
	reg := rustlib.NewRegistry()
	reg.Freeze()
	out := make([]Result, len(sources))
	for i, src := range sources {
		result, err := Run(Config{Registry: reg}, src)
		if err != nil {
			result.Diagnostics = result.Diagnostics.Add(diag.New(diag.ParFailure, diag.PhaseParse, err.Error(), nil))
		}
		out[i] = result
	}
	return out
}
