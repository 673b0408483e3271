package invert

import (
	"testing"

	"github.com/relground/ground/internal/generator"
	"github.com/relground/ground/internal/ir"
	"github.com/relground/ground/internal/registry"
	"github.com/relground/ground/internal/typesystem"
)

func intT() typesystem.Type { return typesystem.TPrim{Name: typesystem.Int} }
func boolT() typesystem.Type { return typesystem.TPrim{Name: typesystem.Bool} }

func idp(name string, ord int, t typesystem.Type) *ir.IdPattern {
	return &ir.IdPattern{Name: name, Ordinal: ord, Typ: t}
}

func TestInvertFallsBackToExtentForPlainComparison(t *testing.T) {
	x := idp("x", 1, intT())
	pred := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpGt}, Args: []ir.Expr{ir.IdRef{Pat: x}, ir.Lit{Value: int64(5), Typ: intT()}}, Typ: boolT()}
	gen, _ := Invert(pred, x, nil)
	if gen.Cardinality != generator.INFINITE {
		t.Fatalf("expected fallback to extent analysis to report INFINITE, got %v", gen.Cardinality)
	}
}

func TestInvertRegisteredInvertibleFunction(t *testing.T) {
	p := idp("p", 1, intT())
	edges := ir.Lit{Value: []any{}, Typ: typesystem.TList{Elem: intT()}}
	body := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpElem}, Args: []ir.Expr{ir.IdRef{Pat: p}, edges}, Typ: boolT()}
	reg := registry.New()
	reg.Declare("edge", p, body)

	z := idp("z", 2, intT())
	call := ir.Apply{
		Fn:   ir.FuncRef{Name: "edge", Typ: typesystem.TFunc{Param: intT(), Result: boolT()}},
		Args: []ir.Expr{ir.IdRef{Pat: z}},
		Typ:  boolT(),
	}
	gen, remaining := Invert(call, z, reg)
	if gen.Cardinality != generator.FINITE {
		t.Fatalf("expected FINITE from an INVERTIBLE registered function, got %v", gen.Cardinality)
	}
	if remaining != nil {
		t.Errorf("expected the elem body to fully absorb, got remaining %v", remaining)
	}
}

// spec §8 scenario 5: transitive closure via a RECURSIVE function.
func TestInvertRecursiveFunctionBuildsIterate(t *testing.T) {
	pairT := typesystem.TTuple{Elements: []typesystem.Type{intT(), intT()}}
	p := idp("p", 1, pairT)
	edges := ir.Lit{Value: []any{}, Typ: typesystem.TList{Elem: pairT}}
	base := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpElem}, Args: []ir.Expr{ir.IdRef{Pat: p}, edges}, Typ: boolT()}
	recCall := ir.Apply{
		Fn:   ir.FuncRef{Name: "path", Typ: typesystem.TFunc{Param: pairT, Result: boolT()}},
		Args: []ir.Expr{ir.IdRef{Pat: p}},
		Typ:  boolT(),
	}
	body := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpOr}, Args: []ir.Expr{base, recCall}, Typ: boolT()}
	reg := registry.New()
	reg.Declare("path", p, body)

	q := idp("q", 2, pairT)
	call := ir.Apply{
		Fn:   ir.FuncRef{Name: "path", Typ: typesystem.TFunc{Param: pairT, Result: boolT()}},
		Args: []ir.Expr{ir.IdRef{Pat: q}},
		Typ:  boolT(),
	}
	info, ok := reg.Lookup("path", nil)
	if !ok || info.Class != registry.Recursive {
		t.Fatalf("expected path to classify as RECURSIVE, got %v ok=%v", info, ok)
	}
	gen, remaining := Invert(call, q, reg)
	if gen.Cardinality != generator.FINITE {
		t.Fatalf("expected the iterate combinator to ground as FINITE, got %v", gen.Cardinality)
	}
	if remaining != nil {
		t.Errorf("expected no remaining filter from the closure itself, got %v", remaining)
	}
	ap, ok := gen.Expression.(ir.Apply)
	if !ok {
		t.Fatalf("expected an Apply expression, got %T", gen.Expression)
	}
	b, ok := ap.Fn.(ir.BuiltinRef)
	if !ok || b.Op != ir.OpIterate {
		t.Fatalf("expected the iterate builtin, got %v", ap.Fn)
	}
}

func TestInvertSingleArmCaseRecurses(t *testing.T) {
	x := idp("x", 1, intT())
	scrutinee := ir.IdRef{Pat: x}
	innerBody := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpElem}, Args: []ir.Expr{scrutinee, ir.Lit{Value: []any{}, Typ: typesystem.TList{Elem: intT()}}}, Typ: boolT()}
	c := ir.Case{
		Scrutinee: scrutinee,
		Arms:      []ir.Arm{{Pattern: ir.WildcardPattern{Typ: intT()}, Body: innerBody}},
		Typ:       boolT(),
	}
	gen, _ := Invert(c, x, nil)
	if gen.Cardinality != generator.FINITE {
		t.Fatalf("expected the single-arm case to recurse into its body and ground FINITE, got %v", gen.Cardinality)
	}
}
