package main

import (
	"github.com/relground/ground/internal/generator"
	"github.com/relground/ground/internal/ir"
	"github.com/relground/ground/internal/registry"
	"github.com/relground/ground/internal/typesystem"
)

// declaration is one toy query this batch run grounds. There is no
// surface parser in this module (spec §6: the only contract is the
// in-memory IR), so groundctl's demo input is built directly with
// internal/ir constructors rather than read from source files.
type declaration struct {
	Name string
	From ir.From
	Reg  *registry.Registry
}

func intT() typesystem.Type  { return typesystem.TPrim{Name: typesystem.Int} }
func boolT() typesystem.Type { return typesystem.TPrim{Name: typesystem.Bool} }

func idp(name string, ord int, t typesystem.Type) *ir.IdPattern {
	return &ir.IdPattern{Name: name, Ordinal: ord, Typ: t}
}

func universalExtent(t typesystem.Type) ir.Expr {
	return ir.Apply{
		Fn:   ir.BuiltinRef{Op: ir.OpExtent},
		Args: []ir.Expr{ir.Lit{Value: generator.Universal(), Typ: typesystem.TList{Elem: t}}},
		Typ:  typesystem.TList{Elem: t},
	}
}

func intList(elems ...int64) ir.Lit {
	vals := make([]any, len(elems))
	for i, e := range elems {
		vals[i] = e
	}
	return ir.Lit{Value: vals, Typ: typesystem.TList{Elem: intT()}}
}

// sampleDeclarations returns spec §8's simple-member and range scenarios,
// plus one ungrounded declaration, as standalone declarations a batch run
// can ground independently.
func sampleDeclarations() []declaration {
	x := idp("x", 1, intT())
	member := ir.From{
		Sources: []ir.Source{{Pattern: x, Expr: universalExtent(intT())}},
		Steps: []ir.Step{ir.Where{Cond: ir.Apply{
			Fn:   ir.BuiltinRef{Op: ir.OpElem},
			Args: []ir.Expr{ir.IdRef{Pat: x}, intList(1, 2, 3)},
			Typ:  boolT(),
		}}},
		Typ: typesystem.TList{Elem: intT()},
	}

	y := idp("y", 1, intT())
	rangePred := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpAnd}, Args: []ir.Expr{
		ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpGt}, Args: []ir.Expr{ir.IdRef{Pat: y}, ir.Lit{Value: int64(2), Typ: intT()}}, Typ: boolT()},
		ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpLt}, Args: []ir.Expr{ir.IdRef{Pat: y}, ir.Lit{Value: int64(7), Typ: intT()}}, Typ: boolT()},
	}, Typ: boolT()}
	bounded := ir.From{
		Sources: []ir.Source{{Pattern: y, Expr: universalExtent(intT())}},
		Steps:   []ir.Step{ir.Where{Cond: rangePred}},
		Typ:     typesystem.TList{Elem: intT()},
	}

	z := idp("z", 1, intT())
	ungrounded := ir.From{
		Sources: []ir.Source{{Pattern: z, Expr: universalExtent(intT())}},
		Steps: []ir.Step{ir.Where{Cond: ir.Apply{
			Fn:   ir.BuiltinRef{Op: ir.OpGt},
			Args: []ir.Expr{ir.IdRef{Pat: z}, ir.Lit{Value: int64(2), Typ: intT()}},
			Typ:  boolT(),
		}}},
		Typ: typesystem.TList{Elem: intT()},
	}

	return []declaration{
		{Name: "members", From: member, Reg: registry.New()},
		{Name: "bounded_range", From: bounded, Reg: registry.New()},
		{Name: "ungrounded", From: ungrounded, Reg: registry.New()},
	}
}
