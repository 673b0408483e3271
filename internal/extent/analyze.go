// Package extent implements the extent analyzer (spec §4.E): given a
// pattern and the where-conjuncts that follow it, it finds the best
// (generator, remaining-filter) pair grounding that pattern. It is the
// leaf-level helper the predicate inverter (internal/invert) calls once
// it has isolated a single pattern's constraints from the rest of a
// query's predicate tree.
package extent

import (
	"github.com/relground/ground/internal/generator"
	"github.com/relground/ground/internal/ir"
	"github.com/relground/ground/internal/typesystem"
)

// Candidate is one (generator, remaining filter) pair the analyzer
// proposes for grounding a pattern. Remaining is nil when predicate was
// fully absorbed into Gen and needs no further check.
type Candidate struct {
	Gen       generator.Generator
	Remaining ir.Expr
}

// Analyze finds the best candidate for grounding pattern given predicate
// (spec §4.E). predicate may be nil, meaning "no constraints known" —
// the analyzer then falls back to the type's universal extent.
func Analyze(pattern ir.Pattern, predicate ir.Expr) Candidate {
	if predicate == nil {
		return Candidate{Gen: generator.Extent(pattern, generator.Universal())}
	}
	if ap, ok := predicate.(ir.Apply); ok {
		if b, ok := ap.Fn.(ir.BuiltinRef); ok {
			switch b.Op {
			case ir.OpAnd:
				return analyzeAnd(pattern, ap.Args[0], ap.Args[1])
			case ir.OpOr:
				return analyzeOr(pattern, ap.Args[0], ap.Args[1])
			case ir.OpElem:
				if c, ok := invertElem(pattern, ap.Args[0], ap.Args[1]); ok {
					return c
				}
			}
		}
	}
	return analyzeAnd(pattern, predicate, trueLit())
}

// analyzeAnd flattens l andalso r into a conjunct list, classifies each
// conjunct relative to pattern, and builds the single best generator
// from whichever class of conjunct is most informative: elem membership
// beats a point equality, which beats a bounded range, which beats a
// half-bounded range, which beats the unconstrained universal extent
// (spec §4.E "andalso: concatenate, later intersect range-sets").
func analyzeAnd(pattern ir.Pattern, l, r ir.Expr) Candidate {
	conjuncts := append(flattenAnd(l), flattenAnd(r)...)

	var elemConjuncts, pointConjuncts, rangeConjuncts, other []ir.Expr
	var rangeOps []ir.Op
	var rangeBounds []ir.Expr

	for _, c := range conjuncts {
		if ir.IsTrue(c) {
			continue
		}
		ap, ok := c.(ir.Apply)
		if !ok {
			other = append(other, c)
			continue
		}
		b, ok := ap.Fn.(ir.BuiltinRef)
		if !ok {
			other = append(other, c)
			continue
		}
		switch {
		case b.Op == ir.OpElem && len(ap.Args) == 2 && elemInvertible(pattern, ap.Args[0]):
			elemConjuncts = append(elemConjuncts, c)
		case b.Op == ir.OpEq && len(ap.Args) == 2:
			if side, other2, ok := splitOnPattern(ap.Args[0], ap.Args[1], pattern); ok && !mentionsPattern(other2, pattern) {
				_ = side
				pointConjuncts = append(pointConjuncts, other2)
			} else {
				other = append(other, c)
			}
		case b.Op.IsComparison() && len(ap.Args) == 2:
			op, bound, ok := normalizeComparison(ap.Args[0], ap.Args[1], b.Op, pattern)
			if ok {
				rangeConjuncts = append(rangeConjuncts, c)
				rangeOps = append(rangeOps, op)
				rangeBounds = append(rangeBounds, bound)
			} else {
				other = append(other, c)
			}
		default:
			other = append(other, c)
		}
	}

	rebuildOther := func(extra ...ir.Expr) ir.Expr {
		all := append(append([]ir.Expr(nil), other...), extra...)
		return andOf(all)
	}

	if len(elemConjuncts) > 0 {
		cand, _ := invertElem(pattern, elemConjuncts[0].(ir.Apply).Args[0], elemConjuncts[0].(ir.Apply).Args[1])
		gen := cand.Gen
		remaining := rebuildOther(append(elemConjuncts[1:], append(pointAsFilters(pointConjuncts, pattern), rangeConjuncts...)...)...)
		return Candidate{Gen: gen, Remaining: simplifyAgainst(gen, remaining)}
	}

	if len(pointConjuncts) > 0 {
		gen := generator.Point(pattern, pointConjuncts[0])
		remaining := rebuildOther(append(pointAsFilters(pointConjuncts[1:], pattern), rangeConjuncts...)...)
		return Candidate{Gen: gen, Remaining: simplifyAgainst(gen, remaining)}
	}

	if len(rangeConjuncts) > 0 {
		rs := generator.Universal()
		for i, op := range rangeOps {
			rs = generator.Intersect(rs, rangeSetFor(op, rangeBounds[i]))
		}
		var gen generator.Generator
		if rs.Bounded() {
			low, lowStrict := boundExprFromRangeSet(rs, true)
			high, highStrict := boundExprFromRangeSet(rs, false)
			gen = generator.Range(pattern, low, lowStrict, high, highStrict)
		} else {
			gen = generator.Extent(pattern, rs)
		}
		remaining := rebuildOther()
		for i := range rangeConjuncts {
			remaining = andExpr(remaining, simplifyAgainst(gen, rangeConjuncts[i]))
		}
		return Candidate{Gen: gen, Remaining: remaining}
	}

	gen := generator.Extent(pattern, generator.Universal())
	return Candidate{Gen: gen, Remaining: rebuildOther()}
}

// analyzeOr handles an orelse by reducing each side to its own best
// candidate, then unioning the generators and (conservatively) keeping
// the original disjunction as a remaining filter unless both sides fully
// absorbed their half (spec §4.E "orelse: AND-reduce each side then
// union extents / OR filters").
func analyzeOr(pattern ir.Pattern, l, r ir.Expr) Candidate {
	cl := Analyze(pattern, l)
	cr := Analyze(pattern, r)
	gen := generator.Union([]generator.Generator{cl.Gen, cr.Gen})
	if cl.Remaining == nil && cr.Remaining == nil {
		return Candidate{Gen: gen}
	}
	orWhole := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpOr}, Args: []ir.Expr{l, r}, Typ: boolType()}
	return Candidate{Gen: gen, Remaining: orWhole}
}

func flattenAnd(e ir.Expr) []ir.Expr {
	if ap, ok := e.(ir.Apply); ok {
		if b, ok := ap.Fn.(ir.BuiltinRef); ok && b.Op == ir.OpAnd && len(ap.Args) == 2 {
			return append(flattenAnd(ap.Args[0]), flattenAnd(ap.Args[1])...)
		}
	}
	return []ir.Expr{e}
}

func andOf(exprs []ir.Expr) ir.Expr {
	var out ir.Expr
	for _, e := range exprs {
		if e == nil || ir.IsTrue(e) {
			continue
		}
		if out == nil {
			out = e
			continue
		}
		out = andExpr(out, e)
	}
	return out
}

func andExpr(a, b ir.Expr) ir.Expr {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpAnd}, Args: []ir.Expr{a, b}, Typ: boolType()}
}

func pointAsFilters(exprs []ir.Expr, pattern ir.Pattern) []ir.Expr {
	out := make([]ir.Expr, len(exprs))
	for i, e := range exprs {
		out[i] = ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpEq}, Args: []ir.Expr{idRefOf(pattern), e}, Typ: boolType()}
	}
	return out
}

func simplifyAgainst(g generator.Generator, pred ir.Expr) ir.Expr {
	if pred == nil {
		return nil
	}
	simplified := g.Simplify(pred)
	if ir.IsTrue(simplified) {
		return nil
	}
	return simplified
}

// elemInvertible reports whether lhs has one of the shapes invertElem
// knows how to ground pattern from, without committing to building the
// generator yet (that happens once this conjunct is chosen as the
// winner, so invertElem's work isn't wasted on a losing candidate).
func elemInvertible(pattern ir.Pattern, lhs ir.Expr) bool {
	switch pat := pattern.(type) {
	case *ir.IdPattern:
		if ref, ok := lhs.(ir.IdRef); ok && ref.Pat.Equal(pat) {
			return true
		}
		if tup, ok := lhs.(ir.Tuple); ok && len(tup.Elements) >= 2 && allRefsTo(tup, pat) {
			return true
		}
		return false
	case ir.TuplePattern:
		tup, ok := lhs.(ir.Tuple)
		return ok && tupleMatchesDistinct(tup, pat)
	default:
		return false
	}
}

func refsPattern(e ir.Expr, pattern ir.Pattern) bool {
	ref, ok := e.(ir.IdRef)
	if !ok {
		return false
	}
	id, ok := pattern.(*ir.IdPattern)
	if !ok {
		return false
	}
	return ref.Pat.Equal(id)
}

func mentionsPattern(e ir.Expr, pattern ir.Pattern) bool {
	id, ok := pattern.(*ir.IdPattern)
	if !ok {
		return false
	}
	_, free := ir.FreeVars(e)[id.Ordinal]
	return free
}

// splitOnPattern reports whether one side of an equality is exactly
// pattern, returning which side and the other side's expression.
func splitOnPattern(lhs, rhs ir.Expr, pattern ir.Pattern) (side, other ir.Expr, ok bool) {
	if refsPattern(lhs, pattern) {
		return lhs, rhs, true
	}
	if refsPattern(rhs, pattern) {
		return rhs, lhs, true
	}
	return nil, nil, false
}

// normalizeComparison puts pattern on the left of an ordered comparison,
// reversing the operator via Op.Reverse if it originally appeared on the
// right (spec §4.E: "swapping operands via reverse() if needed").
func normalizeComparison(lhs, rhs ir.Expr, op ir.Op, pattern ir.Pattern) (ir.Op, ir.Expr, bool) {
	if refsPattern(lhs, pattern) && !mentionsPattern(rhs, pattern) {
		return op, rhs, true
	}
	if refsPattern(rhs, pattern) && !mentionsPattern(lhs, pattern) {
		return op.Reverse(), lhs, true
	}
	return op, nil, false
}

func rangeSetFor(op ir.Op, bound ir.Expr) generator.RangeSet {
	lit, ok := bound.(ir.Lit)
	if !ok {
		return generator.Universal()
	}
	v, ok := asInt64(lit.Value)
	if !ok {
		return generator.Universal()
	}
	switch op {
	case ir.OpGt:
		return generator.Above(v)
	case ir.OpGe:
		return generator.AtLeast(v)
	case ir.OpLt:
		return generator.Below(v)
	case ir.OpLe:
		return generator.AtMost(v)
	case ir.OpEq:
		return generator.PointRange(v)
	case ir.OpNe:
		return generator.Excluding(v)
	default:
		return generator.Universal()
	}
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

func boundExprFromRangeSet(rs generator.RangeSet, low bool) (ir.Expr, bool) {
	if low {
		return ir.Lit{Value: *rs.Low, Typ: typesystem.TPrim{Name: typesystem.Int}}, rs.LowStrict
	}
	return ir.Lit{Value: *rs.High, Typ: typesystem.TPrim{Name: typesystem.Int}}, rs.HighStrict
}

func idRefOf(pattern ir.Pattern) ir.Expr {
	if id, ok := pattern.(*ir.IdPattern); ok {
		return ir.IdRef{Pat: id}
	}
	return nil
}

func trueLit() ir.Expr { return ir.Lit{Value: true, Typ: boolType()} }

func boolType() typesystem.Type { return typesystem.TPrim{Name: typesystem.Bool} }
