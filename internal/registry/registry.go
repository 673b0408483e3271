// Package registry implements the function registry and pre-classifier
// (spec §4.G): every function declaration is classified once, at
// declaration time, so the predicate inverter (internal/invert) can
// decide in O(1) whether a call site is worth inverting instead of
// re-deriving the classification on every use.
package registry

import (
	"github.com/relground/ground/internal/ir"
)

// Class is the coarse invertibility classification spec §4.G assigns to
// every function declaration.
type Class int

const (
	NotInvertible Class = iota
	Invertible           // body is `arg elem c`
	PartiallyInvertible  // body is `arg elem c andalso filter`
	Recursive            // body is `base orelse recursive-call`
)

func (c Class) String() string {
	switch c {
	case Invertible:
		return "INVERTIBLE"
	case PartiallyInvertible:
		return "PARTIALLY_INVERTIBLE"
	case Recursive:
		return "RECURSIVE"
	default:
		return "NOT_INVERTIBLE"
	}
}

// FunctionInfo is everything the inverter needs about one declared
// function: its formal parameter pattern, its body expression (for
// inlining during rule 7's substitute-and-reinvert step), and the
// pre-computed classification.
type FunctionInfo struct {
	Name      string
	Param     ir.Pattern
	Body      ir.Expr
	Class     Class
	ParamID   *ir.IdPattern // identity-keyed lookup, spec §4.G
	BaseCase  ir.Expr       // set when Class == Recursive
	StepCase  ir.Expr       // set when Class == Recursive
}

// Registry is append-only during a single compilation (spec §5: "the
// function registry (append-only during a compilation; readers see all
// textually-earlier declared functions)").
type Registry struct {
	byIdentity map[*ir.IdPattern]*FunctionInfo
	byName     []*FunctionInfo // declaration order, for cross-scope recursive lookups
}

func New() *Registry {
	return &Registry{byIdentity: make(map[*ir.IdPattern]*FunctionInfo)}
}

// Declare classifies fn's body and appends it to the registry.
func (r *Registry) Declare(name string, param ir.Pattern, body ir.Expr) *FunctionInfo {
	info := &FunctionInfo{Name: name, Param: param, Body: body, Class: classify(param, body)}
	if id, ok := param.(*ir.IdPattern); ok {
		info.ParamID = id
		r.byIdentity[id] = info
	}
	if info.Class == Recursive {
		base, step := splitRecursive(body)
		info.BaseCase, info.StepCase = base, step
	}
	r.byName = append(r.byName, info)
	return info
}

// Lookup resolves a function reference: identity match on the formal
// parameter's id-pattern first (the fast, unambiguous path), then by
// name for cross-scope recursive references where identity isn't
// available (spec §4.G: "registry lookup by exact id-pattern identity
// first, then by name").
func (r *Registry) Lookup(name string, paramID *ir.IdPattern) (*FunctionInfo, bool) {
	if paramID != nil {
		if info, ok := r.byIdentity[paramID]; ok {
			return info, true
		}
	}
	for i := len(r.byName) - 1; i >= 0; i-- {
		if r.byName[i].Name == name {
			return r.byName[i], true
		}
	}
	return nil, false
}

// classify implements spec §4.G's pre-classification:
//   INVERTIBLE: arg elem c
//   PARTIALLY_INVERTIBLE: arg elem c andalso filter
//   RECURSIVE: base orelse recursive-call
//   NOT_INVERTIBLE: anything else
func classify(param ir.Pattern, body ir.Expr) Class {
	ap, ok := body.(ir.Apply)
	if !ok {
		return NotInvertible
	}
	b, ok := ap.Fn.(ir.BuiltinRef)
	if !ok {
		return NotInvertible
	}
	switch b.Op {
	case ir.OpElem:
		if len(ap.Args) == 2 && refsParam(ap.Args[0], param) {
			return Invertible
		}
	case ir.OpAnd:
		if len(ap.Args) == 2 {
			if inner, ok := ap.Args[0].(ir.Apply); ok {
				if ib, ok := inner.Fn.(ir.BuiltinRef); ok && ib.Op == ir.OpElem &&
					len(inner.Args) == 2 && refsParam(inner.Args[0], param) {
					return PartiallyInvertible
				}
			}
		}
	case ir.OpOr:
		if len(ap.Args) == 2 && mentionsSelfCall(ap.Args[1]) {
			return Recursive
		}
	}
	return NotInvertible
}

func splitRecursive(body ir.Expr) (base, step ir.Expr) {
	ap, ok := body.(ir.Apply)
	if !ok {
		return nil, nil
	}
	if b, ok := ap.Fn.(ir.BuiltinRef); ok && b.Op == ir.OpOr && len(ap.Args) == 2 {
		return ap.Args[0], ap.Args[1]
	}
	return nil, nil
}

func refsParam(e ir.Expr, param ir.Pattern) bool {
	id, ok := param.(*ir.IdPattern)
	if !ok {
		return false
	}
	ref, ok := e.(ir.IdRef)
	return ok && ref.Pat.Equal(id)
}

// mentionsSelfCall is a heuristic stand-in for "this is a recursive
// call": any apply of a FuncRef within e. Exact self-reference detection
// (vs. a call to some other recursive function) is left to the caller,
// which already knows which function it's classifying.
func mentionsSelfCall(e ir.Expr) bool {
	switch v := e.(type) {
	case ir.Apply:
		if _, ok := v.Fn.(ir.FuncRef); ok {
			return true
		}
		for _, a := range v.Args {
			if mentionsSelfCall(a) {
				return true
			}
		}
		return false
	case ir.From:
		for _, s := range v.Sources {
			if mentionsSelfCall(s.Expr) {
				return true
			}
		}
		for _, step := range v.Steps {
			switch st := step.(type) {
			case ir.Where:
				if mentionsSelfCall(st.Cond) {
					return true
				}
			case ir.Yield:
				if mentionsSelfCall(st.Value) {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}
