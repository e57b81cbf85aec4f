package diag

// Code is a closed diagnostic code taxonomy grouped by phase, mirroring
// the teacher's internal/errors phase-prefixed families (TC###, ELB###,
// LNK###, RT###) but renamed to this domain's phases (spec.md §6:
// "Kinds are drawn from a closed set").
type Code string

const (
	// Parse failures (spec.md §7: fatal for the file).
	ParFailure Code = "PAR001"

	// Lowering / unsupported-construct diagnostics (spec.md §4.2, §7).
	LowUnsupportedConstruct Code = "LOW001"
	LowUnknownDecorator     Code = "LOW002"
	LowDynamicExec          Code = "LOW003"
	LowMetaclass            Code = "LOW004"
	LowNonExhaustiveMatch   Code = "LOW005"

	// Type conflicts (spec.md §4.3, §7).
	TypUnifyConflict   Code = "TYP001"
	TypOccursCheck     Code = "TYP002"
	TypUnboundName     Code = "TYP003"
	TypPropagationCap  Code = "TYP004"
	TypAmbiguousSign   Code = "TYP005"

	// Ownership conflicts (spec.md §4.4, §7).
	OwnUseAfterMove   Code = "OWN001"
	OwnNonClonable    Code = "OWN002"
	OwnLifetimeUnbound Code = "OWN003"

	// Missing library/module mapping (spec.md §4.5, §7).
	MapMissingSymbol Code = "MAP001"

	// Emission stubs (spec.md §4.6, §7).
	GenEmissionStub Code = "GEN001"
)

// Kind maps a Code to the closed external diagnostic kind spec.md §6
// requires ("parse-failure, unsupported-construct, type-conflict,
// ownership-conflict, missing-mapping, emission-stub").
func (c Code) Kind() string {
	switch {
	case c == ParFailure:
		return "parse-failure"
	case c[:3] == "LOW":
		return "unsupported-construct"
	case c[:3] == "TYP":
		return "type-conflict"
	case c[:3] == "OWN":
		return "ownership-conflict"
	case c[:3] == "MAP":
		return "missing-mapping"
	case c[:3] == "GEN":
		return "emission-stub"
	default:
		return "unknown"
	}
}
