package invert

import (
	"github.com/relground/ground/internal/generator"
	"github.com/relground/ground/internal/ir"
	"github.com/relground/ground/internal/registry"
	"github.com/relground/ground/internal/typesystem"
)

// TransitiveClosure builds the `iterate base step` generator for a
// RECURSIVE function (spec §4.F rule 5, §8 scenario 5):
//
//	fun edge p = p elem edges
//	fun path p = edge p orelse (exists z where edge(#1 p, z) andalso path(z, #2 p))
//	from p where path p
//
// rewrites to `iterate edges step` where
//
//	step(old, new) = from (x,z) in new, (z',y) in edges where z = z' yield (x,y)
//
// info must be classified registry.Recursive; goalPattern is the
// call-site pattern (already aligned via internal/match) being grounded.
func TransitiveClosure(info *registry.FunctionInfo, goalPattern ir.Pattern, reg *registry.Registry) (generator.Generator, bool) {
	if info.Class != registry.Recursive || info.BaseCase == nil {
		return generator.Generator{}, false
	}

	baseGen, _ := Invert(info.BaseCase, info.Param, reg)
	baseExpr := baseGen.Expression

	pairT, ok := goalPattern.Type().(typesystem.TTuple)
	if !ok || len(pairT.Elements) != 2 {
		return generator.Generator{}, false
	}
	elemT := pairT.Elements[0]

	x := generator.FreshID("x", elemT)
	z := generator.FreshID("z", elemT)
	zPrime := generator.FreshID("z", elemT)
	y := generator.FreshID("y", elemT)

	bagPairT := typesystem.TBag{Elem: pairT}
	old := generator.FreshID("old", bagPairT)
	newB := generator.FreshID("new", bagPairT)

	eq := ir.Apply{
		Fn:   ir.BuiltinRef{Op: ir.OpEq},
		Args: []ir.Expr{ir.IdRef{Pat: z}, ir.IdRef{Pat: zPrime}},
		Typ:  typesystem.TPrim{Name: typesystem.Bool},
	}
	yieldPair := ir.Tuple{Elements: []ir.Expr{ir.IdRef{Pat: x}, ir.IdRef{Pat: y}}}

	stepBody := ir.From{
		Sources: []ir.Source{
			{Pattern: ir.TuplePattern{Elements: []ir.Pattern{x, z}}, Expr: ir.IdRef{Pat: newB}},
			{Pattern: ir.TuplePattern{Elements: []ir.Pattern{zPrime, y}}, Expr: baseExpr},
		},
		Steps: []ir.Step{ir.Where{Cond: eq}, ir.Yield{Value: yieldPair}},
		Typ:   typesystem.TList{Elem: pairT},
	}

	stepFnType := typesystem.TFunc{Param: bagPairT, Result: typesystem.TFunc{Param: bagPairT, Result: bagPairT}}
	step := ir.Lambda{
		Param: old,
		Body:  ir.Lambda{Param: newB, Body: stepBody, Typ: typesystem.TFunc{Param: bagPairT, Result: bagPairT}},
		Typ:   stepFnType,
	}

	expr := ir.Apply{
		Fn:   ir.BuiltinRef{Op: ir.OpIterate},
		Args: []ir.Expr{baseExpr, step},
		Typ:  bagPairT,
	}

	return generator.Generator{
		GoalPattern: goalPattern,
		Expression:  expr,
		Cardinality: generator.FINITE,
		FreeVariables: ir.FreeVars(baseExpr),
	}, true
}
