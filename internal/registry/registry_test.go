package registry

import (
	"testing"

	"github.com/relground/ground/internal/ir"
	"github.com/relground/ground/internal/typesystem"
)

func intParam(name string, ord int) *ir.IdPattern {
	return &ir.IdPattern{Name: name, Ordinal: ord, Typ: typesystem.TPrim{Name: typesystem.Int}}
}

func boolT() typesystem.Type { return typesystem.TPrim{Name: typesystem.Bool} }

func TestClassifyInvertible(t *testing.T) {
	p := intParam("p", 1)
	coll := ir.Lit{Value: []any{}, Typ: typesystem.TList{Elem: p.Typ}}
	body := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpElem}, Args: []ir.Expr{ir.IdRef{Pat: p}, coll}, Typ: boolT()}
	r := New()
	info := r.Declare("edge", p, body)
	if info.Class != Invertible {
		t.Fatalf("expected INVERTIBLE, got %v", info.Class)
	}
}

func TestClassifyPartiallyInvertible(t *testing.T) {
	p := intParam("p", 1)
	coll := ir.Lit{Value: []any{}, Typ: typesystem.TList{Elem: p.Typ}}
	elemCheck := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpElem}, Args: []ir.Expr{ir.IdRef{Pat: p}, coll}, Typ: boolT()}
	filter := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpGt}, Args: []ir.Expr{ir.IdRef{Pat: p}, ir.Lit{Value: int64(0), Typ: p.Typ}}, Typ: boolT()}
	body := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpAnd}, Args: []ir.Expr{elemCheck, filter}, Typ: boolT()}
	r := New()
	info := r.Declare("posEdge", p, body)
	if info.Class != PartiallyInvertible {
		t.Fatalf("expected PARTIALLY_INVERTIBLE, got %v", info.Class)
	}
}

func TestClassifyRecursive(t *testing.T) {
	p := intParam("p", 1)
	base := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpElem}, Args: []ir.Expr{ir.IdRef{Pat: p}, ir.Lit{Value: []any{}, Typ: typesystem.TList{Elem: p.Typ}}}, Typ: boolT()}
	recCall := ir.Apply{Fn: ir.FuncRef{Name: "path", Typ: typesystem.TFunc{Param: p.Typ, Result: boolT()}}, Args: []ir.Expr{ir.IdRef{Pat: p}}, Typ: boolT()}
	body := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpOr}, Args: []ir.Expr{base, recCall}, Typ: boolT()}
	r := New()
	info := r.Declare("path", p, body)
	if info.Class != Recursive {
		t.Fatalf("expected RECURSIVE, got %v", info.Class)
	}
	if info.BaseCase == nil || info.StepCase == nil {
		t.Errorf("expected base/step case to be split out")
	}
}

func TestLookupByIdentityThenName(t *testing.T) {
	p := intParam("p", 1)
	coll := ir.Lit{Value: []any{}, Typ: typesystem.TList{Elem: p.Typ}}
	body := ir.Apply{Fn: ir.BuiltinRef{Op: ir.OpElem}, Args: []ir.Expr{ir.IdRef{Pat: p}, coll}, Typ: boolT()}
	r := New()
	r.Declare("edge", p, body)

	if info, ok := r.Lookup("edge", p); !ok || info.Name != "edge" {
		t.Fatalf("expected identity lookup to find edge, got %+v ok=%v", info, ok)
	}
	if info, ok := r.Lookup("edge", nil); !ok || info.Name != "edge" {
		t.Fatalf("expected name lookup to find edge, got %+v ok=%v", info, ok)
	}
	if _, ok := r.Lookup("nope", nil); ok {
		t.Errorf("expected lookup of an undeclared name to fail")
	}
}
