package extent

import (
	"github.com/relground/ground/internal/generator"
	"github.com/relground/ground/internal/ir"
	"github.com/relground/ground/internal/typesystem"
)

// invertElem handles the `elem` inversion variants spec §4.E calls out:
// a scalar id, a tuple of distinct ids, a tuple repeating the same id
// (needs a fresh pair variable plus an equality filter), and a tuple of
// field accesses (left as a filter — see the "dropped" note in
// DESIGN.md). ok is false when lhs's shape doesn't match pattern at all,
// meaning this conjunct can't ground pattern and should stay a filter.
func invertElem(pattern ir.Pattern, lhs, coll ir.Expr) (Candidate, bool) {
	switch pat := pattern.(type) {
	case *ir.IdPattern:
		if ref, ok := lhs.(ir.IdRef); ok && ref.Pat.Equal(pat) {
			return Candidate{Gen: generator.Collection(pattern, coll)}, true
		}
		if tup, ok := lhs.(ir.Tuple); ok && allRefsTo(tup, pat) && len(tup.Elements) >= 2 {
			return invertRepeatedTupleElem(pat, tup, coll), true
		}
		return Candidate{}, false
	case ir.TuplePattern:
		if tup, ok := lhs.(ir.Tuple); ok && tupleMatchesDistinct(tup, pat) {
			return Candidate{Gen: generator.Collection(pattern, coll)}, true
		}
		return Candidate{}, false
	default:
		return Candidate{}, false
	}
}

func allRefsTo(tup ir.Tuple, pat *ir.IdPattern) bool {
	for _, e := range tup.Elements {
		ref, ok := e.(ir.IdRef)
		if !ok || !ref.Pat.Equal(pat) {
			return false
		}
	}
	return true
}

func tupleMatchesDistinct(tup ir.Tuple, pat ir.TuplePattern) bool {
	if len(tup.Elements) != len(pat.Elements) {
		return false
	}
	seen := map[int]bool{}
	for i, e := range tup.Elements {
		ref, ok := e.(ir.IdRef)
		if !ok {
			return false
		}
		leaf, ok := pat.Elements[i].(*ir.IdPattern)
		if !ok || !ref.Pat.Equal(leaf) {
			return false
		}
		if seen[ref.Pat.Ordinal] {
			return false // a repeat here isn't the distinct-ids shape
		}
		seen[ref.Pat.Ordinal] = true
	}
	return true
}

// invertRepeatedTupleElem grounds z from `(z, z, ...) elem c` by scanning
// a fresh tuple variable over c, requiring all its components equal, and
// yielding the first one — expressed as a nested from rather than a
// second top-level scan, so the single Candidate/Generator interface
// still grounds exactly one pattern (spec §4.E doesn't prescribe a wire
// format for this, so the nested-from encoding is this implementation's
// choice; see DESIGN.md).
func invertRepeatedTupleElem(pat *ir.IdPattern, tup ir.Tuple, coll ir.Expr) Candidate {
	n := len(tup.Elements)
	elemTypes := make([]typesystem.Type, n)
	for i := range elemTypes {
		elemTypes[i] = pat.Typ
	}
	tupleT := typesystem.TTuple{Elements: elemTypes}
	fresh := generator.FreshID("e", tupleT)
	freshRef := ir.IdRef{Pat: fresh}

	var eqAll ir.Expr
	for i := 1; i < n; i++ {
		eq := ir.Apply{
			Fn:   ir.BuiltinRef{Op: ir.OpEq},
			Args: []ir.Expr{ir.Field{Of: freshRef, Slot: 1, Typ: pat.Typ}, ir.Field{Of: freshRef, Slot: i + 1, Typ: pat.Typ}},
			Typ:  boolType(),
		}
		eqAll = andExpr(eqAll, eq)
	}

	listT := typesystem.TList{Elem: pat.Typ}
	inner := ir.From{
		Sources: []ir.Source{{Pattern: fresh, Expr: coll}},
		Steps: []ir.Step{
			ir.Where{Cond: eqAll},
			ir.Yield{Value: ir.Field{Of: freshRef, Slot: 1, Typ: pat.Typ}},
		},
		Typ: listT,
	}
	return Candidate{Gen: generator.Collection(pat, inner)}
}
