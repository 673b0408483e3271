package env

import (
	"testing"

	"github.com/relground/ground/internal/ir"
	"github.com/relground/ground/internal/typesystem"
)

func idPat(name string, ordinal int) *ir.IdPattern {
	return &ir.IdPattern{Name: name, Ordinal: ordinal, Typ: typesystem.TPrim{Name: typesystem.Int}}
}

func TestGetFindsYoungestBinding(t *testing.T) {
	var e *Env
	x1 := idPat("x", 1)
	x2 := idPat("x", 2)
	e = e.Bind(Binding{Pat: x1})
	e = e.Bind(Binding{Pat: x2})

	b, ok := e.GetTop("x")
	if !ok || b.Pat.Ordinal != 2 {
		t.Fatalf("expected youngest binding (ordinal 2), got %+v ok=%v", b, ok)
	}

	b1, ok := e.Get(x1)
	if ok {
		t.Fatalf("expected Get(x1) to miss once x2 re-parents past the obscured x1, got %+v", b1)
	}
}

func TestBindingsFlattensChainYoungestFirst(t *testing.T) {
	var e *Env
	x := idPat("x", 1)
	y := idPat("y", 2)
	e = e.Bind(Binding{Pat: x})
	e = e.Bind(Binding{Pat: y})

	bs := e.Bindings()
	if len(bs) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(bs))
	}
	if bs[0].Pat.Name != "y" || bs[1].Pat.Name != "x" {
		t.Errorf("expected youngest-first order [y, x], got [%s, %s]", bs[0].Pat.Name, bs[1].Pat.Name)
	}
}

func TestBindReparentsOnImmediateObscure(t *testing.T) {
	var e *Env
	e = e.Bind(Binding{Pat: idPat("x", 1)})
	depth1 := e.Depth()
	e = e.Bind(Binding{Pat: idPat("x", 2)}) // obscures x#1 immediately below
	depth2 := e.Depth()
	if depth2 != depth1 {
		t.Errorf("expected re-parenting to keep chain depth constant, got %d -> %d", depth1, depth2)
	}
}

func TestBindDoesNotReparentPastOtherNames(t *testing.T) {
	var e *Env
	e = e.Bind(Binding{Pat: idPat("x", 1)})
	e = e.Bind(Binding{Pat: idPat("y", 2)})
	e = e.Bind(Binding{Pat: idPat("x", 3)}) // y is in between, not immediately below
	if depth := e.Depth(); depth != 3 {
		t.Errorf("expected chain depth 3 (no skip across y), got %d", depth)
	}
	if b, ok := e.GetTop("y"); !ok || b.Pat.Ordinal != 2 {
		t.Errorf("expected y to still be reachable, got %+v ok=%v", b, ok)
	}
}

func TestBulkBindBuildsMapFrameAndSkipsFullyObscured(t *testing.T) {
	var e *Env
	e = e.Bind(Binding{Pat: idPat("a", 1)})
	before := e

	bindings := []Binding{
		{Pat: idPat("a", 2)}, {Pat: idPat("b", 3)}, {Pat: idPat("c", 4)},
		{Pat: idPat("d", 5)}, {Pat: idPat("f", 6)},
	}
	e = e.BulkBind(bindings)

	if !e.isMap {
		t.Fatalf("expected BulkBind with 5 bindings to build a map frame")
	}
	if e.parent != before.parent {
		t.Errorf("expected map frame's parent to skip the fully-obscured 'a' frame")
	}

	b, ok := e.GetTop("a")
	if !ok || b.Pat.Ordinal != 2 {
		t.Errorf("expected youngest 'a' binding (ordinal 2) from map frame, got %+v ok=%v", b, ok)
	}
}

func TestBulkBindUnderFiveFallsBackToSequential(t *testing.T) {
	var e *Env
	e = e.BulkBind([]Binding{{Pat: idPat("a", 1)}, {Pat: idPat("b", 2)}})
	if e.isMap {
		t.Errorf("expected fewer than 5 bindings to fall back to sequential Bind, not a map frame")
	}
}

func TestCacheEvictsLRU(t *testing.T) {
	c := NewCache(2)
	k1 := CacheKey{TypeSystem: "ts1"}
	k2 := CacheKey{TypeSystem: "ts2"}
	k3 := CacheKey{TypeSystem: "ts3"}

	c.Put(k1, nil)
	c.Put(k2, nil)
	c.Get(k1) // k1 now most-recently-used; k2 is LRU
	c.Put(k3, nil)

	if _, ok := c.Get(k2); ok {
		t.Errorf("expected k2 to be evicted as least-recently-used")
	}
	if _, ok := c.Get(k1); !ok {
		t.Errorf("expected k1 to survive eviction")
	}
	if _, ok := c.Get(k3); !ok {
		t.Errorf("expected k3 to be present")
	}
}
