package generator

import (
	"sync/atomic"

	"github.com/relground/ground/internal/ir"
	"github.com/relground/ground/internal/typesystem"
)

// Generator pairs a goal pattern with an expression that enumerates its
// values (spec §3 "Generator", §4.D). Constraints are the filters already
// accounted for by Expression (so the expander must not re-check them);
// FreeVariables are the ordinals Expression depends on from an outer
// scope — the expander topologically orders scans by this set (§4.I).
type Generator struct {
	GoalPattern   ir.Pattern
	Expression    ir.Expr
	Cardinality   Cardinality
	Constraints   []ir.Expr
	FreeVariables map[int]bool

	// simplify is the per-instance hook spec §4.D calls out ("each
	// generator has a simplify(pattern, predicate) -> predicate hook"):
	// given a predicate over GoalPattern, it returns a possibly-reduced
	// predicate reflecting what Expression already guarantees.
	simplify func(predicate ir.Expr) ir.Expr
}

// Simplify applies the generator's simplify hook, or returns predicate
// unchanged if the generator doesn't define one.
func (g Generator) Simplify(predicate ir.Expr) ir.Expr {
	if g.simplify == nil {
		return predicate
	}
	return g.simplify(predicate)
}

var freshOrdinal int64 = 1 << 30 // well above any ordinal a real declaration would use

// FreshID synthesizes an id-pattern for internal plumbing shared across
// the generator/extent/invert packages — the iterate-step variables, a
// Range generator's tabulate index, a fresh tuple variable standing in
// for a repeated-component elem pattern. Spec §5 calls the analogous
// counter in the real type system "thread-local monotonic"; this is this
// implementation's process-wide slice of that scheme.
func FreshID(name string, t typesystem.Type) *ir.IdPattern {
	ord := atomic.AddInt64(&freshOrdinal, 1)
	return &ir.IdPattern{Name: name, Ordinal: int(ord), Typ: t}
}

func freshId(name string, t typesystem.Type) *ir.IdPattern { return FreshID(name, t) }

// Point is the SINGLE-cardinality generator over exactly one known value
// (spec §4.D "Point").
func Point(pat ir.Pattern, value ir.Expr) Generator {
	elemT := value.Type()
	listT := typesystem.TList{Elem: elemT}
	expr := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpListLit}, Args: []ir.Expr{value}, Typ: listT}
	return Generator{
		GoalPattern: pat,
		Expression:  expr,
		Cardinality: SINGLE,
		simplify: func(predicate ir.Expr) ir.Expr {
			return simplifyEquality(pat, value, predicate)
		},
	}
}

// Range is the FINITE generator over a contiguous integer interval
// [low', high'] derived from the strictness flags (spec §4.D "Range":
// "produces tabulate(high' - low' + 1, k -> low' + k)").
func Range(pat ir.Pattern, low ir.Expr, lowStrict bool, high ir.Expr, highStrict bool) Generator {
	intT := typesystem.TPrim{Name: typesystem.Int}
	one := ir.Lit{Value: int64(1), Typ: intT}

	lowIncl := low
	if lowStrict {
		lowIncl = ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpPlus}, Args: []ir.Expr{low, one}, Typ: intT}
	}
	highIncl := high
	if highStrict {
		highIncl = ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpMinus}, Args: []ir.Expr{high, one}, Typ: intT}
	}
	span := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpMinus}, Args: []ir.Expr{highIncl, lowIncl}, Typ: intT}
	count := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpPlus}, Args: []ir.Expr{span, one}, Typ: intT}

	k := freshId("k", intT)
	index := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpPlus}, Args: []ir.Expr{lowIncl, ir.IdRef{Pat: k}}, Typ: intT}
	lambda := ir.Lambda{Param: k, Body: index, Typ: typesystem.TFunc{Param: intT, Result: intT}}

	listT := typesystem.TList{Elem: intT}
	expr := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpListTabulate}, Args: []ir.Expr{count, lambda}, Typ: listT}

	free := map[int]bool{}
	for ord := range ir.FreeVars(low) {
		free[ord] = true
	}
	for ord := range ir.FreeVars(high) {
		free[ord] = true
	}

	return Generator{
		GoalPattern:   pat,
		Expression:    expr,
		Cardinality:   FINITE,
		FreeVariables: free,
		simplify: func(predicate ir.Expr) ir.Expr {
			return simplifyRangeBound(pat, low, lowStrict, high, highStrict, predicate)
		},
	}
}

// Collection wraps an expression already known to denote a finite
// collection (e.g. the right-hand side of an `elem` test) as a FINITE
// generator (spec §4.D "Collection").
func Collection(pat ir.Pattern, expr ir.Expr) Generator {
	return Generator{
		GoalPattern:   pat,
		Expression:    expr,
		Cardinality:   FINITE,
		FreeVariables: ir.FreeVars(expr),
	}
}

// Extent is the generator over a type's universal extent, optionally
// narrowed by a RangeSet (spec §4.D "Extent"). It is FINITE when rs is a
// bounded interval or the pattern's type is not infinite (see
// typesystem.IsInfinite); otherwise it carries INFINITE cardinality,
// which the expander must eliminate before a query can ground (spec §4.I
// "check").
func Extent(pat ir.Pattern, rs RangeSet) Generator {
	card := INFINITE
	if rs.Bounded() || !typesystem.IsInfinite(pat.Type()) {
		card = FINITE
	}
	shape := typesystem.TList{Elem: pat.Type()}
	expr := ir.Apply{
		Fn:   ir.BuiltinRef{Op: ir.OpExtent},
		Args: []ir.Expr{ir.Lit{Value: rs, Typ: pat.Type()}},
		Typ:  shape,
	}
	return Generator{
		GoalPattern: pat,
		Expression:  expr,
		Cardinality: card,
		simplify: func(predicate ir.Expr) ir.Expr {
			return simplifyRangeSetImplied(pat, rs, predicate)
		},
	}
}

// Union concatenates several generators over the same goal pattern into
// one (spec §4.D "Union"). Cardinality is the max of the inputs'; an
// empty slice panics, since a union generator makes no sense with
// nothing to union.
func Union(gens []Generator) Generator {
	if len(gens) == 0 {
		panic("generator: Union called with no generators")
	}
	if len(gens) == 1 {
		return gens[0]
	}
	pat := gens[0].GoalPattern
	_, isBag := pat.Type().(typesystem.TBag)
	op := ir.OpListConcat
	if isBag {
		op = ir.OpBagConcat
	}
	exprs := make([]ir.Expr, len(gens))
	cards := make([]Cardinality, len(gens))
	free := map[int]bool{}
	for i, g := range gens {
		exprs[i] = g.Expression
		cards[i] = g.Cardinality
		for ord := range g.FreeVariables {
			free[ord] = true
		}
	}
	shape := gens[0].Expression.Type()
	expr := ir.Apply{Fn: ir.BuiltinRef{Op: op}, Args: exprs, Typ: shape}
	return Generator{
		GoalPattern:   pat,
		Expression:    expr,
		Cardinality:   MaxOf(cards),
		FreeVariables: free,
	}
}

// Subgenerator projects one slot out of a parent tuple-shaped scan,
// binding pat to (#slot parentVar) (spec §4.D "Subgenerator"). Its
// cardinality mirrors the parent's — a subgenerator doesn't enumerate
// independently, it rides along with whatever already bound parentVar.
func Subgenerator(pat ir.Pattern, parentVar *ir.IdPattern, slot int, parentCard Cardinality) Generator {
	expr := ir.Field{Of: ir.IdRef{Pat: parentVar}, Slot: slot, Typ: pat.Type()}
	return Generator{
		GoalPattern:   pat,
		Expression:    expr,
		Cardinality:   parentCard,
		FreeVariables: map[int]bool{parentVar.Ordinal: true},
	}
}

func simplifyEquality(pat ir.Pattern, value ir.Expr, predicate ir.Expr) ir.Expr {
	ap, ok := predicate.(ir.Apply)
	if !ok {
		return predicate
	}
	b, ok := ap.Fn.(ir.BuiltinRef)
	if !ok || b.Op != ir.OpEq || len(ap.Args) != 2 {
		return predicate
	}
	id, isId := pat.(*ir.IdPattern)
	if !isId {
		return predicate
	}
	if lhs, ok := ap.Args[0].(ir.IdRef); ok && lhs.Pat.Equal(id) && exprEqual(ap.Args[1], value) {
		return trueLit()
	}
	if rhs, ok := ap.Args[1].(ir.IdRef); ok && rhs.Pat.Equal(id) && exprEqual(ap.Args[0], value) {
		return trueLit()
	}
	return predicate
}

func simplifyRangeBound(pat ir.Pattern, low ir.Expr, lowStrict bool, high ir.Expr, highStrict bool, predicate ir.Expr) ir.Expr {
	ap, ok := predicate.(ir.Apply)
	if !ok || len(ap.Args) != 2 {
		return predicate
	}
	b, ok := ap.Fn.(ir.BuiltinRef)
	if !ok || !b.Op.IsComparison() {
		return predicate
	}
	id, isId := pat.(*ir.IdPattern)
	if !isId {
		return predicate
	}
	lref, ok := ap.Args[0].(ir.IdRef)
	if !ok || !lref.Pat.Equal(id) {
		return predicate
	}
	bound := ap.Args[1]
	switch b.Op {
	case ir.OpGt, ir.OpGe:
		if exprEqual(bound, low) {
			return trueLit()
		}
	case ir.OpLt, ir.OpLe:
		if exprEqual(bound, high) {
			return trueLit()
		}
	}
	return predicate
}

func simplifyRangeSetImplied(pat ir.Pattern, rs RangeSet, predicate ir.Expr) ir.Expr {
	// Both branches return the predicate unchanged: range comparisons
	// that rs already implies are not dropped here, so they stay in the
	// rewritten query's where step.
	if rs.Bounded() && len(rs.Excluded) == 0 && rs.Parts == nil {
		return predicate
	}
	return predicate
}

func exprEqual(a, b ir.Expr) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}

func trueLit() ir.Expr {
	return ir.Lit{Value: true, Typ: typesystem.TPrim{Name: typesystem.Bool}}
}
