package extent

import (
	"testing"

	"github.com/relground/ground/internal/generator"
	"github.com/relground/ground/internal/ir"
	"github.com/relground/ground/internal/typesystem"
)

func intPat(name string, ord int) *ir.IdPattern {
	return &ir.IdPattern{Name: name, Ordinal: ord, Typ: typesystem.TPrim{Name: typesystem.Int}}
}

func intLit(v int64) ir.Lit { return ir.Lit{Value: v, Typ: typesystem.TPrim{Name: typesystem.Int}} }

func intList(elems ...int64) ir.Lit {
	vals := make([]any, len(elems))
	for i, e := range elems {
		vals[i] = e
	}
	return ir.Lit{Value: vals, Typ: typesystem.TList{Elem: typesystem.TPrim{Name: typesystem.Int}}}
}

func cmp(op ir.Op, lhs, rhs ir.Expr) ir.Expr {
	return ir.Apply{Fn: ir.BuiltinRef{Op: op}, Args: []ir.Expr{lhs, rhs}, Typ: typesystem.TPrim{Name: typesystem.Bool}}
}

func and(l, r ir.Expr) ir.Expr { return cmp(ir.OpAnd, l, r) }

// spec §8 scenario 1: from x where x elem [1,2,3]
func TestSimpleMemberGrounds(t *testing.T) {
	x := intPat("x", 1)
	pred := cmp(ir.OpElem, ir.IdRef{Pat: x}, intList(1, 2, 3))
	c := Analyze(x, pred)
	if c.Gen.Cardinality != generator.FINITE {
		t.Fatalf("expected FINITE, got %v", c.Gen.Cardinality)
	}
	if c.Remaining != nil {
		t.Errorf("expected elem to fully absorb the predicate, got remaining %v", c.Remaining)
	}
}

// spec §8 scenario 2: from (x,y) where (x,y) elem [(1,2),(3,4)]
func TestTupleMemberGrounds(t *testing.T) {
	x := intPat("x", 1)
	y := intPat("y", 2)
	tuplePat := ir.TuplePattern{Elements: []ir.Pattern{x, y}}
	pairT := typesystem.TTuple{Elements: []typesystem.Type{x.Typ, y.Typ}}
	pairs := ir.Lit{Value: []any{}, Typ: typesystem.TList{Elem: pairT}}
	lhs := ir.Tuple{Elements: []ir.Expr{ir.IdRef{Pat: x}, ir.IdRef{Pat: y}}}
	pred := cmp(ir.OpElem, lhs, pairs)
	c := Analyze(tuplePat, pred)
	if c.Gen.Cardinality != generator.FINITE {
		t.Fatalf("expected FINITE, got %v", c.Gen.Cardinality)
	}
	if c.Remaining != nil {
		t.Errorf("expected tuple elem to fully absorb, got remaining %v", c.Remaining)
	}
}

// spec §8 scenario 3: from x where x > 2 andalso x < 7 -> {3,4,5,6}
func TestRangeGrounds(t *testing.T) {
	x := intPat("x", 1)
	pred := and(cmp(ir.OpGt, ir.IdRef{Pat: x}, intLit(2)), cmp(ir.OpLt, ir.IdRef{Pat: x}, intLit(7)))
	c := Analyze(x, pred)
	if c.Gen.Cardinality != generator.FINITE {
		t.Fatalf("expected FINITE for a bounded range, got %v", c.Gen.Cardinality)
	}
	if c.Remaining != nil {
		t.Errorf("expected the range conjuncts to fully absorb, got remaining %v", c.Remaining)
	}
}

// spec §8 scenario 6: from x where x > 5 -> UngroundedPattern(x)
func TestUnboundedComparisonAloneStaysInfinite(t *testing.T) {
	x := intPat("x", 1)
	pred := cmp(ir.OpGt, ir.IdRef{Pat: x}, intLit(5))
	c := Analyze(x, pred)
	if c.Gen.Cardinality != generator.INFINITE {
		t.Fatalf("expected INFINITE for a one-sided bound over int, got %v", c.Gen.Cardinality)
	}
}

// spec §8 scenario 4: from d in depts, e where e.deptno = d.dno — e must
// not be reported ungrounded. e's record type isn't one of the infinite
// primitives, so its universal extent is already FINITE; the equality
// is kept as a filter rather than absorbed (see DESIGN.md).
func TestFieldEqualityOverRecordTypeDoesNotGoInfinite(t *testing.T) {
	deptT := typesystem.TData{Name: "Emp"}
	e := &ir.IdPattern{Name: "e", Ordinal: 10, Typ: deptT}
	d := &ir.IdPattern{Name: "d", Ordinal: 11, Typ: typesystem.TPrim{Name: typesystem.Int}}
	pred := cmp(ir.OpEq,
		ir.Field{Of: ir.IdRef{Pat: e}, Slot: 1, Typ: typesystem.TPrim{Name: typesystem.Int}},
		ir.IdRef{Pat: d})
	c := Analyze(e, pred)
	if c.Gen.Cardinality != generator.FINITE {
		t.Fatalf("expected FINITE for a non-infinite record type, got %v", c.Gen.Cardinality)
	}
	if c.Remaining == nil {
		t.Errorf("expected the field equality to remain as an unabsorbed filter")
	}
}

// spec §8 boundary: a >= b yields an empty range with no error.
func TestEmptyRangeIsNotAnError(t *testing.T) {
	x := intPat("x", 1)
	pred := and(cmp(ir.OpGt, ir.IdRef{Pat: x}, intLit(10)), cmp(ir.OpLt, ir.IdRef{Pat: x}, intLit(2)))
	c := Analyze(x, pred)
	if c.Gen.Cardinality != generator.FINITE {
		t.Fatalf("expected a bounded (if empty) range to stay FINITE, got %v", c.Gen.Cardinality)
	}
}

// spec §8 boundary: (z,z) elem c needs an equal-components filter.
func TestRepeatedTupleElemUsesFreshPairVariable(t *testing.T) {
	z := intPat("z", 1)
	pairT := typesystem.TTuple{Elements: []typesystem.Type{z.Typ, z.Typ}}
	coll := ir.Lit{Value: []any{}, Typ: typesystem.TList{Elem: pairT}}
	lhs := ir.Tuple{Elements: []ir.Expr{ir.IdRef{Pat: z}, ir.IdRef{Pat: z}}}
	pred := cmp(ir.OpElem, lhs, coll)
	c := Analyze(z, pred)
	if c.Gen.Cardinality != generator.FINITE {
		t.Fatalf("expected FINITE, got %v", c.Gen.Cardinality)
	}
	from, ok := c.Gen.Expression.(ir.From)
	if !ok {
		t.Fatalf("expected a nested from expression grounding z via a fresh pair variable, got %T", c.Gen.Expression)
	}
	if len(from.Steps) != 2 {
		t.Errorf("expected a where (equality) and a yield step, got %d steps", len(from.Steps))
	}
}
