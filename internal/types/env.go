package types

import "github.com/pyrs-lang/pyrs/internal/hir"

// Env is a lexically-scoped binder→type environment, the same
// parent-chain shape as a typical HM local-constraint solver and
// grounded on the teacher's TypeEnv usage pattern (one environment per
// scope, chained to its enclosing scope for lookups).
type Env struct {
	vars   map[string]hir.Type
	parent *Env
}

// NewEnv creates a scope chained to parent (nil for the module's
// top-level scope).
func NewEnv(parent *Env) *Env {
	return &Env{vars: make(map[string]hir.Type), parent: parent}
}

// Get looks up name, walking outward through enclosing scopes.
func (e *Env) Get(name string) (hir.Type, bool) {
	for env := e; env != nil; env = env.parent {
		if t, ok := env.vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// Set binds name to t in this scope.
func (e *Env) Set(name string, t hir.Type) {
	e.vars[name] = t
}

// Child creates a new scope nested under e.
func (e *Env) Child() *Env {
	return NewEnv(e)
}
