// Package expand implements the query expander (spec §4.I): the
// top-level driver that takes a from with one or more unbounded scans
// and rewrites it so every used pattern ranges over a finite generator.
package expand

import (
	"github.com/relground/ground/internal/diagnostics"
	"github.com/relground/ground/internal/env"
	"github.com/relground/ground/internal/generator"
	"github.com/relground/ground/internal/invert"
	"github.com/relground/ground/internal/ir"
	"github.com/relground/ground/internal/registry"
)

// Options mirrors the subset of the core's configuration (SPEC_FULL.md
// "Domain stack" / internal/config.Options) the expander itself reads.
type Options struct {
	// MaxRefinementPasses bounds the improvement loop; 0 disables
	// inlining/improvement entirely (spec §6 "max_refinement_passes").
	MaxRefinementPasses int
}

// DefaultOptions matches spec §6's defaults.
func DefaultOptions() Options { return Options{MaxRefinementPasses: 3} }

type entry struct {
	pattern ir.Pattern
	gen     generator.Generator
	bound   bool // explicit source — never needs inversion
}

// Expand rewrites from so that every unbounded scan is replaced by a
// grounded generator scan, in dependency order, with where-predicates
// simplified or dropped via each generator's Simplify hook (spec §4.I
// "second pass"). e is the lexical environment the declaration was
// grounded in (nilable); its bindings are consulted so a generator that
// references an outer, already-bound ordinal (e.g. a closed-over session
// variable, spec §6) is recognized as ready in topoOrder instead of being
// mistaken for an unresolved dependency.
func Expand(from ir.From, reg *registry.Registry, opts Options, e *env.Env) (ir.From, error) {
	entries := make([]*entry, 0, len(from.Sources))
	for _, src := range from.Sources {
		entries = append(entries, sourceEntry(src.Pattern, src.Expr))
	}

	// A scan step appearing later in from.Steps (e.g. `from a where p, c
	// in coll where q`) introduces a pattern exactly like a source does;
	// its fused Cond, if any, folds into the overall predicate alongside
	// the where-steps (spec §4.I pass 1: "for each scan over an unbounded
	// extent").
	var scanCond ir.Expr
	for _, step := range from.Steps {
		sc, ok := step.(ir.Scan)
		if !ok {
			continue
		}
		entries = append(entries, sourceEntry(sc.Pattern, sc.Expr))
		if sc.Cond != nil {
			scanCond = andExpr(scanCond, sc.Cond)
		}
	}

	predicate := andExpr(scanCond, collectWhere(from.Steps))

	if opts.MaxRefinementPasses > 0 {
		for pass := 0; pass < opts.MaxRefinementPasses; pass++ {
			improved := false
			for _, e := range entries {
				// A tuple- or record-typed unbounded scan starts as a FINITE
				// universal extent; it is inverted too, and a generator of
				// the same cardinality that is no longer a universal extent
				// replaces it.
				universal := isUniversalExtent(e.gen.Expression)
				if e.bound || (e.gen.Cardinality != generator.INFINITE && !universal) {
					continue
				}
				if predicate == nil {
					continue
				}
				gen, remaining := invert.Invert(predicate, e.pattern, reg)
				if gen.Cardinality < e.gen.Cardinality ||
					(universal && gen.Cardinality == e.gen.Cardinality && !isUniversalExtent(gen.Expression)) {
					e.gen = gen
					predicate = remaining
					improved = true
				}
			}
			if !improved {
				break
			}
		}
	}

	for _, e := range entries {
		if e.gen.Cardinality == generator.INFINITE {
			return ir.From{}, diagnostics.New(diagnostics.UngroundedPattern, diagnostics.Pos{},
				"pattern %s has no finite generator after %d refinement pass(es)", e.pattern.String(), opts.MaxRefinementPasses)
		}
	}

	ordered := topoOrder(entries, envBoundOrdinals(e))

	b := ir.NewBuilder()
	for _, e := range ordered {
		if err := b.Scan(e.pattern, e.gen.Expression, nil); err != nil {
			return ir.From{}, err
		}
	}
	if predicate != nil {
		for _, e := range ordered {
			predicate = e.gen.Simplify(predicate)
		}
		if !ir.IsTrue(predicate) {
			b.Where(predicate)
		}
	}
	for _, step := range from.Steps {
		switch step.(type) {
		case ir.Where, ir.Scan:
			// Where was folded into predicate above; Scan was already
			// emitted (grounded or not) as one of the ordered entries.
			continue
		}
		switch s := step.(type) {
		case ir.Yield:
			b.Yield(s.Value)
		case ir.Group:
			b.Group(s.Keys, s.Aggs)
		case ir.Order:
			b.Order(s.Keys)
		}
	}
	return b.Build()
}

// sourceEntry builds the entry for a pattern bound either by a `from`
// source or by a scan step: unbounded-extent expressions start as the
// type's universal extent (INFINITE for an infinite type, FINITE
// otherwise) and go through the improvement loop, everything else is already a
// finite collection and needs no inversion.
func sourceEntry(pattern ir.Pattern, expr ir.Expr) *entry {
	if isUniversalExtent(expr) {
		return &entry{pattern: pattern, gen: generator.Extent(pattern, generator.Universal())}
	}
	return &entry{pattern: pattern, gen: generator.Collection(pattern, expr), bound: true}
}

func andExpr(a, b ir.Expr) ir.Expr {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpAnd}, Args: []ir.Expr{a, b}, Typ: a.Type()}
}

func collectWhere(steps []ir.Step) ir.Expr {
	var out ir.Expr
	for _, step := range steps {
		w, ok := step.(ir.Where)
		if !ok {
			continue
		}
		if out == nil {
			out = w.Cond
			continue
		}
		out = ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpAnd}, Args: []ir.Expr{out, w.Cond}, Typ: w.Cond.Type()}
	}
	return out
}

// isUniversalExtent reports whether expr is the type's universal extent
// (spec §3: "a pattern is unbounded in a scan when its expression is the
// type's universal extent").
func isUniversalExtent(expr ir.Expr) bool {
	ap, ok := expr.(ir.Apply)
	if !ok || len(ap.Args) != 1 {
		return false
	}
	b, ok := ap.Fn.(ir.BuiltinRef)
	if !ok || b.Op != ir.OpExtent {
		return false
	}
	lit, ok := ap.Args[0].(ir.Lit)
	if !ok {
		return false
	}
	rs, ok := lit.Value.(generator.RangeSet)
	if !ok {
		return false
	}
	return rs.Low == nil && rs.High == nil && rs.Parts == nil && len(rs.Excluded) == 0
}

// envBoundOrdinals collects the ordinals already visible in e, so
// topoOrder doesn't treat a reference to an outer-scope binding as an
// unresolved in-query dependency.
func envBoundOrdinals(e *env.Env) map[int]bool {
	bound := map[int]bool{}
	for _, b := range e.Bindings() {
		bound[b.Pat.Ordinal] = true
	}
	return bound
}

// topoOrder orders entries so a generator never scans before the
// patterns its Expression's FreeVariables depend on (spec §4.I "second
// pass ... scans replaced by topologically-ordered generator scans").
// preBound seeds ordinals already known-bound outside the query itself.
func topoOrder(entries []*entry, preBound map[int]bool) []*entry {
	ordinalOf := func(e *entry) (int, bool) {
		if id, ok := e.pattern.(*ir.IdPattern); ok {
			return id.Ordinal, true
		}
		return 0, false
	}
	boundOrdinals := map[int]bool{}
	for ord := range preBound {
		boundOrdinals[ord] = true
	}
	var out []*entry
	remaining := append([]*entry(nil), entries...)
	for len(remaining) > 0 {
		progressed := false
		var next []*entry
		for _, e := range remaining {
			ready := true
			for ord := range e.gen.FreeVariables {
				if !boundOrdinals[ord] {
					ready = false
					break
				}
			}
			if ready {
				out = append(out, e)
				if ord, ok := ordinalOf(e); ok {
					boundOrdinals[ord] = true
				}
				progressed = true
			} else {
				next = append(next, e)
			}
		}
		if !progressed {
			// A genuine cycle shouldn't occur (the invariant in spec §3
			// guarantees acyclic scope dependencies); fall back to
			// declaration order rather than looping forever.
			out = append(out, remaining...)
			break
		}
		remaining = next
	}
	return out
}
