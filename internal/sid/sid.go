// Package sid mints stable node identifiers for HIR trees. A SID is a
// process-local monotonic counter, not a content hash: spec.md §3 only
// requires every node to have an identity stable across C3/C4's mutation
// passes for the lifetime of one invocation, keyed by the teacher's
// internal/sid.NewSID approach but trimmed to that single guarantee
// (content-addressing across separate invocations is not required here,
// since no HIR survives across invocations).
package sid

import "fmt"

// SID is a stable identifier for one HIR node within a single transpile
// invocation.
type SID uint64

// Source mints SIDs for one pipeline run. A Source is not safe for
// concurrent use; one is created per file invocation (spec.md §5: the
// transpiler is single-threaded per input file).
type Source struct {
	next uint64
}

// NewSource creates a fresh SID source starting at 1 (0 is reserved to mean
// "no ID assigned", matching the teacher's convention of treating the zero
// value of an ID type as absent).
func NewSource() *Source {
	return &Source{next: 1}
}

// Next mints the next SID in sequence.
func (s *Source) Next() SID {
	id := s.next
	s.next++
	return SID(id)
}

// String renders a SID for diagnostics and debug dumps.
func (s SID) String() string {
	return fmt.Sprintf("n%d", uint64(s))
}

// Valid reports whether s was actually minted by a Source (as opposed to
// being a zero value left over from an unpopulated struct field).
func (s SID) Valid() bool { return s != 0 }
