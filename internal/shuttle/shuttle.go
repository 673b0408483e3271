// Package shuttle is the "suchthat" entry point (spec §4.J): the outer
// compiler pipeline hands it a declaration's from expression; it detects
// whether any scan needs grounding and, only then, delegates to the
// query expander.
package shuttle

import (
	"log"

	"github.com/relground/ground/internal/env"
	"github.com/relground/ground/internal/expand"
	"github.com/relground/ground/internal/ir"
	"github.com/relground/ground/internal/registry"
)

// Run grounds from if it contains any unbounded scan, and returns it
// unchanged otherwise — most from expressions in a typical program are
// already fully bound and never touch the expander at all. e is the
// caller's current lexical environment (spec §6), nilable, passed
// straight through to the expander so an outer-bound free variable isn't
// mistaken for something the query itself needs to ground.
//
// Re-entrancy: invert.Invert inlines invertible function bodies directly
// (spec §4.F rule 6/7) rather than routing back through Run, so a
// function body template is never re-submitted to the shuttle while
// already being inlined at a call site — there is no separate guard to
// maintain here because the recursion never reaches this entry point a
// second time for the same template.
func Run(from ir.From, reg *registry.Registry, opts expand.Options, e *env.Env) (ir.From, error) {
	if !needsGrounding(from) {
		return from, nil
	}
	out, err := expand.Expand(from, reg, opts, e)
	if err != nil {
		log.Printf("shuttle: grounding failed: %v", err)
	}
	return out, err
}

func needsGrounding(from ir.From) bool {
	for _, src := range from.Sources {
		if isUniversalExtent(src.Expr) {
			return true
		}
	}
	for _, step := range from.Steps {
		if sc, ok := step.(ir.Scan); ok && isUniversalExtent(sc.Expr) {
			return true
		}
	}
	return false
}

func isUniversalExtent(e ir.Expr) bool {
	ap, ok := e.(ir.Apply)
	if !ok || len(ap.Args) != 1 {
		return false
	}
	b, ok := ap.Fn.(ir.BuiltinRef)
	return ok && b.Op == ir.OpExtent
}
