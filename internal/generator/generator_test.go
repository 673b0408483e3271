package generator

import (
	"testing"

	"github.com/relground/ground/internal/ir"
	"github.com/relground/ground/internal/typesystem"
)

func intPat(name string, ordinal int) *ir.IdPattern {
	return &ir.IdPattern{Name: name, Ordinal: ordinal, Typ: typesystem.TPrim{Name: typesystem.Int}}
}

func intLit(v int64) ir.Lit {
	return ir.Lit{Value: v, Typ: typesystem.TPrim{Name: typesystem.Int}}
}

func TestPointGeneratorIsSingleAndSimplifiesEquality(t *testing.T) {
	x := intPat("x", 1)
	g := Point(x, intLit(3))
	if g.Cardinality != SINGLE {
		t.Fatalf("expected SINGLE cardinality, got %v", g.Cardinality)
	}
	pred := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpEq}, Args: []ir.Expr{ir.IdRef{Pat: x}, intLit(3)},
		Typ: typesystem.TPrim{Name: typesystem.Bool}}
	if !ir.IsTrue(g.Simplify(pred)) {
		t.Errorf("expected x = 3 to simplify to true under Point(x, 3)")
	}
}

func TestRangeGeneratorIsFiniteOverInfiniteType(t *testing.T) {
	x := intPat("x", 1)
	g := Range(x, intLit(2), true, intLit(7), true) // x > 2 andalso x < 7
	if g.Cardinality != FINITE {
		t.Fatalf("expected FINITE cardinality for a bounded integer range, got %v", g.Cardinality)
	}
	if _, ok := g.Expression.(ir.Apply); !ok {
		t.Fatalf("expected a tabulate Apply expression, got %T", g.Expression)
	}
}

func TestExtentGeneratorUnboundedIsInfinite(t *testing.T) {
	x := intPat("x", 1)
	g := Extent(x, Universal())
	if g.Cardinality != INFINITE {
		t.Fatalf("expected INFINITE cardinality for an unbounded extent over int, got %v", g.Cardinality)
	}
}

func TestExtentGeneratorBoundedIsFinite(t *testing.T) {
	x := intPat("x", 1)
	var lo, hi int64 = 2, 7
	g := Extent(x, RangeSet{Low: &lo, High: &hi})
	if g.Cardinality != FINITE {
		t.Fatalf("expected FINITE cardinality for a bounded extent, got %v", g.Cardinality)
	}
}

func TestUnionTakesMaxCardinality(t *testing.T) {
	x := intPat("x", 1)
	finite := Collection(x, intList(1, 2, 3))
	infinite := Extent(x, Universal())
	u := Union([]Generator{finite, infinite})
	if u.Cardinality != INFINITE {
		t.Errorf("expected union cardinality to be the max of its parts (INFINITE), got %v", u.Cardinality)
	}
}

func TestSubgeneratorTracksParentAsFreeVariable(t *testing.T) {
	parent := intPat("t", 1)
	x := intPat("x", 2)
	sub := Subgenerator(x, parent, 1, FINITE)
	if !sub.FreeVariables[parent.Ordinal] {
		t.Errorf("expected subgenerator to list its parent tuple variable as free")
	}
	if sub.Cardinality != FINITE {
		t.Errorf("expected subgenerator cardinality to mirror its parent")
	}
}

func TestRangeSetIntersectTightensBothEnds(t *testing.T) {
	var two, five, ten int64 = 2, 5, 10
	a := RangeSet{Low: &two, High: &ten}
	b := RangeSet{Low: &five, High: &ten}
	r := Intersect(a, b)
	if r.Low == nil || *r.Low != 5 {
		t.Errorf("expected intersected low bound 5, got %v", r.Low)
	}
}

func TestRangeSetEmptyWhenLowExceedsHigh(t *testing.T) {
	var seven, two int64 = 7, 2
	r := RangeSet{Low: &seven, High: &two}
	if !r.Empty() {
		t.Errorf("expected low > high to report Empty")
	}
}

func TestRangeSetUnionOfDisjointRangesKeepsParts(t *testing.T) {
	var one, two, nine, ten int64 = 1, 2, 9, 10
	a := RangeSet{Low: &one, High: &two}
	b := RangeSet{Low: &nine, High: &ten}
	u := UnionRangeSet(a, b)
	if len(u.Parts) != 2 {
		t.Errorf("expected disjoint ranges to stay as two parts, got %+v", u)
	}
}

func intList(elems ...int) ir.Lit {
	vals := make([]any, len(elems))
	for i, e := range elems {
		vals[i] = e
	}
	return ir.Lit{Value: vals, Typ: typesystem.TList{Elem: typesystem.TPrim{Name: typesystem.Int}}}
}
