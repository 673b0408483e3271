// Package match implements the pattern matcher (spec §4.H): aligning a
// call-site argument's shape against a function's formal parameter so
// the inverter can rewrite "path(z, w)" into a goal pattern over the
// actual call-site variables z, w rather than the formal parameter's own
// names.
package match

import "github.com/relground/ground/internal/ir"

// Alignment is the result spec §4.H describes: the goal pattern to
// ground at the call site, the id-patterns it binds, and whether the
// call site passed a single scalar variable (as opposed to a tuple of
// variables or a more complex expression).
type Alignment struct {
	GoalPattern  ir.Pattern
	BoundPats    []*ir.IdPattern
	IsScalarBind bool
}

// Align matches arg (the expression passed at the call site) against
// formal (the function's declared parameter pattern).
func Align(formal ir.Pattern, arg ir.Expr) (Alignment, bool) {
	switch f := formal.(type) {
	case *ir.IdPattern:
		if ref, ok := arg.(ir.IdRef); ok {
			return Alignment{GoalPattern: ref.Pat, BoundPats: []*ir.IdPattern{ref.Pat}, IsScalarBind: true}, true
		}
		return Alignment{}, false

	case ir.TuplePattern:
		tup, ok := arg.(ir.Tuple)
		if !ok || len(tup.Elements) != len(f.Elements) {
			return Alignment{}, false
		}
		ids := make([]*ir.IdPattern, len(tup.Elements))
		for i, el := range tup.Elements {
			ref, ok := el.(ir.IdRef)
			if !ok {
				return Alignment{}, false
			}
			ids[i] = ref.Pat
		}
		goal := ir.TuplePattern{Elements: make([]ir.Pattern, len(ids))}
		for i, id := range ids {
			goal.Elements[i] = id
		}
		return Alignment{GoalPattern: goal, BoundPats: ids, IsScalarBind: false}, true

	default:
		return Alignment{}, false
	}
}
