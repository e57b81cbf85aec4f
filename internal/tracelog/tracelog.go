// Package tracelog times pipeline phase boundaries and, when a writer is
// attached, renders them with color the same way the teacher's
// cmd/ailang/main.go does (green/red/yellow/cyan SprintFuncs over
// fatih/color) — ambient plumbing, not the report formatter that
// spec.md §1 keeps out of scope.
package tracelog

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// Tracer accumulates per-phase durations across one pipeline invocation,
// grounded on pipeline.Result.PhaseTimings in the teacher.
type Tracer struct {
	Timings map[string]time.Duration
	out     io.Writer
	starts  map[string]time.Time
	order   []string
}

// New creates a Tracer. out may be nil, in which case Start/End/Fail/Warn are
// silent bookkeeping only (no rendering).
func New(out io.Writer) *Tracer {
	return &Tracer{
		Timings: make(map[string]time.Duration),
		out:      out,
		starts:   make(map[string]time.Time),
	}
}

// Start marks the beginning of a named phase.
func (t *Tracer) Start(phase string) {
	t.starts[phase] = time.Now()
	if _, seen := t.Timings[phase]; !seen {
		t.order = append(t.order, phase)
	}
	if t.out != nil {
		fmt.Fprintf(t.out, "%s %s\n", cyan("▶"), bold(phase))
	}
}

// End records the elapsed time since the matching Start call.
func (t *Tracer) End(phase string) {
	start, ok := t.starts[phase]
	if !ok {
		return
	}
	elapsed := time.Since(start)
	t.Timings[phase] += elapsed
	delete(t.starts, phase)
	if t.out != nil {
		fmt.Fprintf(t.out, "  %s %s (%s)\n", green("✓"), phase, elapsed)
	}
}

// Fail renders a phase failure in red, if a writer is attached.
func (t *Tracer) Fail(phase string, err error) {
	if t.out != nil {
		fmt.Fprintf(t.out, "  %s %s: %s\n", red("✗"), phase, err)
	}
}

// Warn renders a non-fatal diagnostic count in yellow, if a writer is
// attached.
func (t *Tracer) Warn(phase string, count int) {
	if t.out != nil && count > 0 {
		fmt.Fprintf(t.out, "  %s %s: %d diagnostic(s)\n", yellow("!"), phase, count)
	}
}

// Order returns phase names in first-Start order, for deterministic
// PhaseTimings iteration in tests and summaries.
func (t *Tracer) Order() []string {
	return append([]string(nil), t.order...)
}
