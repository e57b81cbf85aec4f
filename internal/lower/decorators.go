package lower

import "github.com/pyrs-lang/pyrs/internal/ast"

// knownDecorators is the closed set of decorators lowering understands
// well enough to change a Function/Class's shape (spec.md §4.2). Any
// other decorator is recorded verbatim in OpaqueMetadata for best-effort
// reproduction rather than silently dropped or rejected.
var knownDecorators = map[string]bool{
	"staticmethod": true, "classmethod": true, "property": true,
	"abstractmethod": true, "cached_property": true, "dataclass": true,
}

// lowerFuncDecl translates a function/method definition, applying
// decorator-driven receiver/purity adjustments (spec.md §4.2: "a small
// decorator registry — dataclass, property, staticmethod, classmethod,
// abstractmethod, cached_property — changes shape; anything else is
// recorded opaquely").
func (l *Lowerer) lowerFuncDecl(fd *ast.FuncDecl, receiver hir.ReceiverKindAlias) *Function {
	return nil
}
