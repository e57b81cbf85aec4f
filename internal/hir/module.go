package hir

// Module is the top-level lowered unit: an ordered sequence of imports,
// type aliases, constants, protocols, classes, and functions (spec.md
// §3). Files are translated atomically (spec.md §6), so one Module
// corresponds to exactly one input file.
type Module struct {
	Node
	Path      string
	Imports   []*Import
	Aliases   []*TypeAlias
	Constants []*Const
	Classes   []*Class
	Functions []*Function
}

// Import is a single `import x` / `from x import y` binding, already
// resolved to the module path it refers to; C5 consults it at codegen
// time to decide the owning external crate.
type Import struct {
	Node
	Module string
	Names  []string // empty means "import the module itself"
	Alias  string   // "" if unaliased
}

// TypeAlias is a module-level `X = SomeType` type alias.
type TypeAlias struct {
	Node
	Name string
	Type Type
}

// Const is a module-level constant binding.
type Const struct {
	Node
	Name  string
	Type  Type
	Value Expr
}

// ParamKind classifies a parameter's calling convention (spec.md §3).
type ParamKind int

const (
	ParamPositional ParamKind = iota
	ParamStarArgs
	ParamStarKwargs
)

// BorrowStrategy is C4's per-parameter decision (spec.md §4.4). Unset
// (BorrowUnresolved) until C4 runs.
type BorrowStrategy int

const (
	BorrowUnresolved BorrowStrategy = iota
	BorrowOwned
	BorrowShared
	BorrowExclusive
	BorrowCopy
)

func (b BorrowStrategy) String() string {
	switch b {
	case BorrowOwned:
		return "owned"
	case BorrowShared:
		return "shared-borrow"
	case BorrowExclusive:
		return "exclusive-borrow"
	case BorrowCopy:
		return "copy"
	default:
		return "unresolved"
	}
}

// Param is one function parameter. Type starts as whatever C2 extracted
// (an explicit annotation, or a fresh TVar) and is narrowed in place by
// C3; Borrow and Lifetime start zero and are filled by C4.
type Param struct {
	Node
	Name     string
	Type     Type
	Default  Expr // nil if no default
	Kind     ParamKind
	Borrow   BorrowStrategy
	Lifetime string // symbolic lifetime slot name, assigned by C4
}

// ReceiverKind classifies a method's implicit receiver (spec.md §3).
type ReceiverKind int

const (
	ReceiverNone ReceiverKind = iota // free function
	ReceiverShared
	ReceiverExclusive
	ReceiverOwned
	ReceiverStatic
	ReceiverClass
)

// Function is a top-level function or a class method.
type Function struct {
	Node
	Name       string
	Params     []*Param
	ReturnType Type
	Body       []Stmt
	Receiver   ReceiverKind
	Doc        string

	Pure        bool
	MayPanic    bool
	Terminates  bool
	IsAsync     bool
	IsGenerator bool

	// ErrorUnion is the closed set of raised-exception kinds this function
	// propagates, filled in by C6's exception-to-result lowering
	// (spec.md §4.6). Nil until that pass runs.
	ErrorUnion *SumType

	// OpaqueMetadata records unknown decorators verbatim for best-effort
	// reproduction in codegen comments (SPEC_FULL §6).
	OpaqueMetadata []string
}

// ClassKind classifies a class's shape (spec.md §4.2).
type ClassKind int

const (
	ClassPlain ClassKind = iota
	ClassDataclass
	ClassProtocol
	ClassEnumLike
)

// Field is one class field (spec.md §3).
type Field struct {
	Node
	Name    string
	Type    Type
	Default Expr
}

// Class is a lowered class definition.
type Class struct {
	Node
	Name    string
	Bases   []string
	Fields  []*Field
	Methods []*Function
	Kind    ClassKind

	// EnumValues holds the uniform literal values for a ClassEnumLike
	// class (spec.md §4.2: "only class-level simple assignments of a
	// uniform type").
	EnumValues []Expr
}
