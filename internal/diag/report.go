// Package diag is the structured diagnostic type shared by every phase of
// the transpilation pipeline (spec.md §6: "a list of structured records
// (kind, span, message, optional suggestion)"). It is grounded on the
// teacher's internal/errors package: a Report value survives as the
// canonical diagnostic, ReportError wraps it so errors.As recovers
// structure after normal Go error propagation, and ToJSON renders it with
// sorted keys for deterministic output (spec.md §8: determinism).
package diag

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Schema is the fixed schema tag stamped on every Report, mirroring the
// teacher's "ailang.error/v1" constant.
const Schema = "pyrs.diag/v1"

// Phase names a pipeline stage. Kept as a closed set of string constants
// rather than an enum so Report stays trivially JSON-encodable.
const (
	PhaseParse    = "parse"
	PhaseLower    = "lower"
	PhaseType     = "type"
	PhaseBorrow   = "borrow"
	PhaseMapping  = "mapping"
	PhaseCodegen  = "codegen"
	PhasePipeline = "pipeline"
)

// Span is a source location range. Line/Column are 1-based; a synthetic
// span (produced by desugaring, not present in user source) has Synthetic
// set so diagnostics can suppress or annotate it (spec.md §3 invariant:
// "every HIR node carries a source span, may be synthetic").
type Span struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndLine   int    `json:"end_line,omitempty"`
	EndColumn int    `json:"end_column,omitempty"`
	Synthetic bool   `json:"synthetic,omitempty"`
}

func (s Span) String() string {
	if s.File == "" {
		return "<synthetic>"
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// Fix is a suggested remediation attached to a Report, e.g. an explicit
// clone insertion for an ownership conflict (spec.md §7).
type Fix struct {
	Suggestion string `json:"suggestion"`
	Confidence float64 `json:"confidence"`
}

// Report is the canonical diagnostic value produced by every phase.
type Report struct {
	Schema  string         `json:"schema"`
	Code    Code           `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Span    *Span          `json:"span,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
	Fix     *Fix           `json:"fix,omitempty"`
}

// New builds a Report with the fixed schema tag already stamped.
func New(code Code, phase, message string, span *Span) *Report {
	return &Report{Schema: Schema, Code: code, Phase: phase, Message: message, Span: span}
}

// WithData attaches structured context data and returns the Report for
// chaining (e.g. diag.New(...).WithData(...)).
func (r *Report) WithData(data map[string]any) *Report {
	r.Data = data
	return r
}

// WithFix attaches a suggested fix and returns the Report for chaining.
func (r *Report) WithFix(suggestion string, confidence float64) *Report {
	r.Fix = &Fix{Suggestion: suggestion, Confidence: confidence}
	return r
}

// ReportError wraps a *Report so it survives errors.As() unwrapping after
// an ordinary Go error return.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown diagnostic"
	}
	return fmt.Sprintf("%s: %s", e.Rep.Code, e.Rep.Message)
}

// AsReport extracts a *Report from an error chain, if one is present.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// Wrap wraps a *Report as an error.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON renders the Report as deterministic (sorted-key, via
// encoding/json's default map/struct-field ordering) JSON.
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// List is an ordered collection of diagnostics. spec.md §5: "Diagnostics
// are order-preserving (by source span)."
type List []*Report

// Add appends a Report to the list, returning the extended list — kept as
// a plain helper (not a pointer-receiver mutator) so callers can write
// `diags = diags.Add(r)` uniformly whether diags starts nil or not.
func (l List) Add(r *Report) List {
	return append(l, r)
}

// HasErrors reports whether the list contains any diagnostic at all.
// spec.md §7: the driver, not the core, decides whether a non-empty
// diagnostic list means "fail the build" — this is just the predicate it
// consults.
func (l List) HasErrors() bool { return len(l) > 0 }
