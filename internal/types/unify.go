// Package types implements C3: constraint-based Hindley-Milner-style type
// inference over internal/hir, with inter-procedural propagation.
// Grounded on the teacher's internal/types/{types.go,unification.go}: a
// Substitution-returning Unifier with an occurs check, generalized from
// the teacher's TVar/TCon/TFunc2 family to hir.Type's richer domain
// vocabulary (spec.md §4.3).
package types

import (
	"fmt"

	"github.com/pyrs-lang/pyrs/internal/hir"
)

// Substitution maps type-variable names to the type they were resolved
// to, exactly as the teacher's types.Substitution does.
type Substitution map[string]hir.Type

// Unifier performs Robinson-style unification with an occurs check.
type Unifier struct{}

// NewUnifier creates a Unifier.
func NewUnifier() *Unifier { return &Unifier{} }

// Unify attempts to unify t1 and t2, returning an updated substitution.
// Grounded on Unifier.Unify in the teacher's unification.go: apply the
// current substitution to both sides first, short-circuit on structural
// equality, then dispatch on the left operand's concrete variant.
func (u *Unifier) Unify(t1, t2 hir.Type, sub Substitution) (Substitution, error) {
	t1 = ApplySubstitution(sub, t1)
	t2 = ApplySubstitution(sub, t2)

	if hir.Equal(t1, t2) {
		return sub, nil
	}
	if _, ok := t2.(*hir.TDynamic); ok {
		if _, isVar := t1.(*hir.TVar); !isVar {
			return sub, nil
		}
	}

	switch a := t1.(type) {
	case *hir.TVar:
		if u.occurs(a.Name, t2) {
			return nil, fmt.Errorf("occurs check failed: %s occurs in %s", a.Name, t2)
		}
		sub[a.Name] = t2
		return sub, nil

	case *hir.TDynamic:
		// The dynamic sentinel unifies with anything (spec.md §9: it is a
		// quality signal, not a type error).
		return sub, nil

	case *hir.TPrimitive:
		b, ok := t2.(*hir.TPrimitive)
		if !ok {
			if v, ok := t2.(*hir.TVar); ok {
				return u.Unify(v, a, sub)
			}
			if _, ok := t2.(*hir.TDynamic); ok {
				return sub, nil
			}
			return nil, fmt.Errorf("cannot unify primitive %s with %T", a, t2)
		}
		return u.unifyPrimitive(a, b, sub)

	case *hir.TSeq:
		b, ok := t2.(*hir.TSeq)
		if !ok {
			if v, ok := t2.(*hir.TVar); ok {
				return u.Unify(v, a, sub)
			}
			return nil, fmt.Errorf("cannot unify sequence %s with %T", a, t2)
		}
		if a.Kind != b.Kind {
			return nil, fmt.Errorf("sequence kind mismatch: %s vs %s", a, b)
		}
		if a.Kind == hir.SeqTuple {
			if len(a.Elems) != len(b.Elems) {
				return nil, fmt.Errorf("tuple arity mismatch: %d vs %d", len(a.Elems), len(b.Elems))
			}
			var err error
			for i := range a.Elems {
				sub, err = u.Unify(a.Elems[i], b.Elems[i], sub)
				if err != nil {
					return nil, err
				}
			}
			return sub, nil
		}
		return u.Unify(a.Elem, b.Elem, sub)

	case *hir.TMap:
		b, ok := t2.(*hir.TMap)
		if !ok {
			if v, ok := t2.(*hir.TVar); ok {
				return u.Unify(v, a, sub)
			}
			return nil, fmt.Errorf("cannot unify map %s with %T", a, t2)
		}
		var err error
		sub, err = u.Unify(a.Key, b.Key, sub)
		if err != nil {
			return nil, err
		}
		return u.Unify(a.Value, b.Value, sub)

	case *hir.TSet:
		b, ok := t2.(*hir.TSet)
		if !ok {
			if v, ok := t2.(*hir.TVar); ok {
				return u.Unify(v, a, sub)
			}
			return nil, fmt.Errorf("cannot unify set %s with %T", a, t2)
		}
		return u.Unify(a.Elem, b.Elem, sub)

	case *hir.TOption:
		b, ok := t2.(*hir.TOption)
		if !ok {
			if v, ok := t2.(*hir.TVar); ok {
				return u.Unify(v, a, sub)
			}
			return nil, fmt.Errorf("cannot unify option %s with %T", a, t2)
		}
		return u.Unify(a.Elem, b.Elem, sub)

	case *hir.TResult:
		b, ok := t2.(*hir.TResult)
		if !ok {
			if v, ok := t2.(*hir.TVar); ok {
				return u.Unify(v, a, sub)
			}
			return nil, fmt.Errorf("cannot unify result %s with %T", a, t2)
		}
		var err error
		sub, err = u.Unify(a.Ok, b.Ok, sub)
		if err != nil {
			return nil, err
		}
		return u.Unify(a.Err, b.Err, sub)

	case *hir.TNominal:
		b, ok := t2.(*hir.TNominal)
		if !ok {
			if v, ok := t2.(*hir.TVar); ok {
				return u.Unify(v, a, sub)
			}
			return nil, fmt.Errorf("cannot unify nominal %s with %T", a, t2)
		}
		if a.Name != b.Name || len(a.Args) != len(b.Args) {
			return nil, fmt.Errorf("cannot unify nominal types %s vs %s", a, b)
		}
		var err error
		for i := range a.Args {
			sub, err = u.Unify(a.Args[i], b.Args[i], sub)
			if err != nil {
				return nil, err
			}
		}
		return sub, nil

	case *hir.TFunc:
		b, ok := t2.(*hir.TFunc)
		if !ok {
			if v, ok := t2.(*hir.TVar); ok {
				return u.Unify(v, a, sub)
			}
			return nil, fmt.Errorf("cannot unify function %s with %T", a, t2)
		}
		if len(a.Params) != len(b.Params) {
			return nil, fmt.Errorf("function arity mismatch: %d vs %d", len(a.Params), len(b.Params))
		}
		var err error
		for i := range a.Params {
			sub, err = u.Unify(a.Params[i], b.Params[i], sub)
			if err != nil {
				return nil, fmt.Errorf("parameter %d: %w", i, err)
			}
		}
		return u.Unify(a.Return, b.Return, sub)

	case *hir.TRef:
		b, ok := t2.(*hir.TRef)
		if !ok {
			if v, ok := t2.(*hir.TVar); ok {
				return u.Unify(v, a, sub)
			}
			return nil, fmt.Errorf("cannot unify reference %s with %T", a, t2)
		}
		if a.Mut != b.Mut {
			return nil, fmt.Errorf("mutability mismatch: %s vs %s", a, b)
		}
		return u.Unify(a.Of, b.Of, sub)

	default:
		if v, ok := t2.(*hir.TVar); ok {
			return u.Unify(v, a, sub)
		}
		return nil, fmt.Errorf("cannot unify %T with %T", t1, t2)
	}
}

// unifyPrimitive reconciles two primitive types per spec.md §4.3's
// numeric-widening rules (delegated to numeric.go's Widen so the
// int-width/mixed-float policy lives in exactly one place).
func (u *Unifier) unifyPrimitive(a, b *hir.TPrimitive, sub Substitution) (Substitution, error) {
	if a.Kind == b.Kind && a.Width == b.Width && a.Unsigned == b.Unsigned {
		return sub, nil
	}
	if _, ok := Widen(a, b); ok {
		return sub, nil
	}
	return nil, fmt.Errorf("cannot unify primitives %s and %s", a, b)
}

// occurs is the occurs-check guard against infinite types.
func (u *Unifier) occurs(name string, t hir.Type) bool {
	switch tt := t.(type) {
	case *hir.TVar:
		return tt.Name == name
	case *hir.TSeq:
		if tt.Elem != nil && u.occurs(name, tt.Elem) {
			return true
		}
		for _, e := range tt.Elems {
			if u.occurs(name, e) {
				return true
			}
		}
		return false
	case *hir.TMap:
		return u.occurs(name, tt.Key) || u.occurs(name, tt.Value)
	case *hir.TSet:
		return u.occurs(name, tt.Elem)
	case *hir.TOption:
		return u.occurs(name, tt.Elem)
	case *hir.TResult:
		return u.occurs(name, tt.Ok) || u.occurs(name, tt.Err)
	case *hir.TNominal:
		for _, a := range tt.Args {
			if u.occurs(name, a) {
				return true
			}
		}
		return false
	case *hir.TFunc:
		for _, p := range tt.Params {
			if u.occurs(name, p) {
				return true
			}
		}
		return u.occurs(name, tt.Return)
	case *hir.TRef:
		return u.occurs(name, tt.Of)
	default:
		return false
	}
}

// ApplySubstitution recursively resolves type variables in t against sub,
// the same tree-walking shape as the teacher's ApplySubstitution.
func ApplySubstitution(sub Substitution, t hir.Type) hir.Type {
	switch tt := t.(type) {
	case *hir.TVar:
		if resolved, ok := sub[tt.Name]; ok {
			return ApplySubstitution(sub, resolved)
		}
		return tt
	case *hir.TSeq:
		cp := *tt
		if tt.Elem != nil {
			cp.Elem = ApplySubstitution(sub, tt.Elem)
		}
		if tt.Elems != nil {
			cp.Elems = make([]hir.Type, len(tt.Elems))
			for i, e := range tt.Elems {
				cp.Elems[i] = ApplySubstitution(sub, e)
			}
		}
		return &cp
	case *hir.TMap:
		return &hir.TMap{Key: ApplySubstitution(sub, tt.Key), Value: ApplySubstitution(sub, tt.Value), Ordered: tt.Ordered}
	case *hir.TSet:
		return &hir.TSet{Elem: ApplySubstitution(sub, tt.Elem)}
	case *hir.TOption:
		return &hir.TOption{Elem: ApplySubstitution(sub, tt.Elem)}
	case *hir.TResult:
		return &hir.TResult{Ok: ApplySubstitution(sub, tt.Ok), Err: ApplySubstitution(sub, tt.Err)}
	case *hir.TNominal:
		if len(tt.Args) == 0 {
			return tt
		}
		args := make([]hir.Type, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = ApplySubstitution(sub, a)
		}
		return &hir.TNominal{Name: tt.Name, Args: args}
	case *hir.TFunc:
		params := make([]hir.Type, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = ApplySubstitution(sub, p)
		}
		return &hir.TFunc{Params: params, Return: ApplySubstitution(sub, tt.Return)}
	case *hir.TRef:
		return &hir.TRef{Of: ApplySubstitution(sub, tt.Of), Lifetime: tt.Lifetime, Mut: tt.Mut}
	default:
		return t
	}
}
