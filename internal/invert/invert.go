// Package invert implements the predicate inverter (spec §4.F), the
// hardest single subsystem in the core: given a predicate and a goal
// pattern to ground, it tries progressively more specialized rules
// before falling back to the extent analyzer's generic range/elem
// handling. A rule that can't make progress never guesses — it returns
// ok=false so the caller moves on to the next rule (spec §7: "recoverable
// heuristic failures ... are not user-visible").
package invert

import (
	"github.com/relground/ground/internal/extent"
	"github.com/relground/ground/internal/generator"
	"github.com/relground/ground/internal/ir"
	"github.com/relground/ground/internal/match"
	"github.com/relground/ground/internal/registry"
	"github.com/relground/ground/internal/typesystem"
)

// Invert grounds goal against predicate, trying the dispatch order spec
// §4.F lists. It always returns a usable generator — the final rule is
// the extent analyzer's generic extent/range handling, which itself
// falls back to the type's (possibly INFINITE) universal extent when
// nothing else applies.
func Invert(predicate ir.Expr, goal ir.Pattern, reg *registry.Registry) (generator.Generator, ir.Expr) {
	if gen, remaining, ok := invertCaseOf(predicate, goal, reg); ok {
		return gen, remaining
	}
	if gen, remaining, ok := invertIsPrefix(predicate, goal); ok {
		return gen, remaining
	}
	if gen, remaining, ok := invertFunctionLiteralApply(predicate, goal, reg); ok {
		return gen, remaining
	}
	if gen, remaining, ok := invertRegisteredFunctionApply(predicate, goal, reg); ok {
		return gen, remaining
	}
	if gen, remaining, ok := invertNonEmpty(predicate, goal, reg); ok {
		return gen, remaining
	}
	c := extent.Analyze(goal, predicate)
	return c.Gen, c.Remaining
}

// rule 1: single-arm case-of on a goal id (spec §4.F rule 1).
func invertCaseOf(predicate ir.Expr, goal ir.Pattern, reg *registry.Registry) (generator.Generator, ir.Expr, bool) {
	c, ok := ir.SingleArmCase(predicate)
	if !ok {
		return generator.Generator{}, nil, false
	}
	id, isId := goal.(*ir.IdPattern)
	ref, isRef := c.Scrutinee.(ir.IdRef)
	if !isId || !isRef || !ref.Pat.Equal(id) {
		return generator.Generator{}, nil, false
	}
	gen, remaining := Invert(c.Arms[0].Body, goal, reg)
	return gen, remaining, true
}

// rule 3: is-prefix p s — p ranges over the (finite) prefixes of s,
// enumerated as substring(s, 0, k) for k in [0, size(s)] (spec §4.F rule 3).
func invertIsPrefix(predicate ir.Expr, goal ir.Pattern) (generator.Generator, ir.Expr, bool) {
	ap, ok := predicate.(ir.Apply)
	if !ok || len(ap.Args) != 2 {
		return generator.Generator{}, nil, false
	}
	b, ok := ap.Fn.(ir.BuiltinRef)
	if !ok || b.Op != ir.OpPrefix {
		return generator.Generator{}, nil, false
	}
	id, ok := goal.(*ir.IdPattern)
	if !ok {
		return generator.Generator{}, nil, false
	}
	ref, ok := ap.Args[0].(ir.IdRef)
	if !ok || !ref.Pat.Equal(id) {
		return generator.Generator{}, nil, false
	}
	s := ap.Args[1]
	intT := typesystem.TPrim{Name: typesystem.Int}
	length := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpSize}, Args: []ir.Expr{s}, Typ: intT}
	count := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpPlus}, Args: []ir.Expr{length, ir.Lit{Value: int64(1), Typ: intT}}, Typ: intT}
	k := generator.FreshID("k", intT)
	substr := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpSubstring}, Args: []ir.Expr{s, ir.Lit{Value: int64(0), Typ: intT}, ir.IdRef{Pat: k}}, Typ: id.Typ}
	lambda := ir.Lambda{Param: k, Body: substr, Typ: typesystem.TFunc{Param: intT, Result: id.Typ}}
	expr := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpListTabulate}, Args: []ir.Expr{count, lambda}, Typ: typesystem.TList{Elem: id.Typ}}
	return generator.Collection(goal, expr), nil, true
}

// rule 6: apply-of-function-literal — substitute the argument into the
// lambda body and re-invert (spec §4.F rule 6).
func invertFunctionLiteralApply(predicate ir.Expr, goal ir.Pattern, reg *registry.Registry) (generator.Generator, ir.Expr, bool) {
	ap, ok := predicate.(ir.Apply)
	if !ok {
		return generator.Generator{}, nil, false
	}
	lam, ok := ap.Fn.(ir.Lambda)
	if !ok || len(ap.Args) != 1 {
		return generator.Generator{}, nil, false
	}
	id, ok := lam.Param.(*ir.IdPattern)
	if !ok {
		return generator.Generator{}, nil, false
	}
	body := lam.Body
	if sub, err := typesystem.Unify(id.Typ, ap.Args[0].Type()); err == nil && len(sub) > 0 {
		body = SpecializeType(body, sub)
	}
	substituted := Substitute(body, id.Ordinal, ap.Args[0])
	gen, remaining := Invert(substituted, goal, reg)
	return gen, remaining, true
}

// rule 7: apply-of-registered-function — consult the registry (spec
// §4.F rule 7). A RECURSIVE function grounds via the transitive-closure
// construction (spec §4.F rule 5 / §8 scenario 5); an (partially)
// invertible function inlines its body at the call site and re-inverts;
// a NOT_INVERTIBLE function fails the rule outright.
func invertRegisteredFunctionApply(predicate ir.Expr, goal ir.Pattern, reg *registry.Registry) (generator.Generator, ir.Expr, bool) {
	if reg == nil {
		return generator.Generator{}, nil, false
	}
	ap, ok := predicate.(ir.Apply)
	if !ok || len(ap.Args) != 1 {
		return generator.Generator{}, nil, false
	}
	fr, ok := ap.Fn.(ir.FuncRef)
	if !ok {
		return generator.Generator{}, nil, false
	}
	info, ok := reg.Lookup(fr.Name, nil)
	if !ok || info.Class == registry.NotInvertible {
		return generator.Generator{}, nil, false
	}

	alignment, ok := match.Align(info.Param, ap.Args[0])
	if !ok {
		return generator.Generator{}, nil, false
	}

	if info.Class == registry.Recursive {
		gen, ok := TransitiveClosure(info, alignment.GoalPattern, reg)
		if !ok {
			return generator.Generator{}, nil, false
		}
		return gen, nil, true
	}

	substituted := info.Body
	if id, ok := info.Param.(*ir.IdPattern); ok {
		body := info.Body
		if sub, err := typesystem.Unify(id.Typ, ap.Args[0].Type()); err == nil && len(sub) > 0 {
			body = SpecializeType(body, sub)
		}
		substituted = Substitute(body, id.Ordinal, ap.Args[0])
	}
	gen, remaining := Invert(substituted, alignment.GoalPattern, reg)
	return gen, remaining, true
}

// rule 8: apply-of-non-empty over a from — exists inversion (spec §4.F
// rule 8). `non-empty(from pat in src where cond yield _)` grounds pat
// when the from's own source already has a finite shape matching goal.
func invertNonEmpty(predicate ir.Expr, goal ir.Pattern, reg *registry.Registry) (generator.Generator, ir.Expr, bool) {
	ap, ok := predicate.(ir.Apply)
	if !ok || len(ap.Args) != 1 {
		return generator.Generator{}, nil, false
	}
	b, ok := ap.Fn.(ir.BuiltinRef)
	if !ok || b.Op != ir.OpNonEmpty {
		return generator.Generator{}, nil, false
	}
	from, ok := ap.Args[0].(ir.From)
	if !ok || len(from.Sources) == 0 {
		return generator.Generator{}, nil, false
	}
	src := from.Sources[0]
	if !patternEqual(src.Pattern, goal) {
		return generator.Generator{}, nil, false
	}
	var remaining ir.Expr
	for _, step := range from.Steps {
		if w, ok := step.(ir.Where); ok {
			remaining = andExpr(remaining, w.Cond)
		}
	}
	return generator.Collection(goal, src.Expr), remaining, true
}

func patternEqual(a, b ir.Pattern) bool {
	ida, oka := a.(*ir.IdPattern)
	idb, okb := b.(*ir.IdPattern)
	if oka && okb {
		return ida.Equal(idb)
	}
	return a.String() == b.String()
}

func andExpr(a, b ir.Expr) ir.Expr {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpAnd}, Args: []ir.Expr{a, b}, Typ: typesystem.TPrim{Name: typesystem.Bool}}
}
