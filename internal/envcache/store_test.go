package envcache

import (
	"testing"

	"github.com/relground/ground/internal/env"
	"github.com/relground/ground/internal/ir"
	"github.com/relground/ground/internal/typesystem"
)

func TestSaveThenLoadRoundTripsBindingNames(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("unexpected error opening store: %v", err)
	}
	defer s.Close()

	intT := typesystem.TPrim{Name: typesystem.Int}
	x := &ir.IdPattern{Name: "x", Ordinal: 1, Typ: intT}
	var e *env.Env
	e = e.Bind(env.Binding{Pat: x, Typ: intT})

	key := env.CacheKey{TypeSystem: "v1", Session: "s1", ForeignValueMap: "fv1", IncludeBuiltins: true}
	if err := s.Save(key, e); err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}

	restored, ok, err := s.Load(key)
	if err != nil {
		t.Fatalf("unexpected error loading: %v", err)
	}
	if !ok {
		t.Fatalf("expected a hit after Save")
	}
	b, ok := restored.Get(x)
	if !ok {
		t.Fatalf("expected restored env to contain x's binding")
	}
	if b.Pat.Name != "x" {
		t.Errorf("expected restored binding name x, got %s", b.Pat.Name)
	}
}

func TestLoadMissReturnsFalse(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("unexpected error opening store: %v", err)
	}
	defer s.Close()

	_, ok, err := s.Load(env.CacheKey{TypeSystem: "nope"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Errorf("expected a miss for an unseen key")
	}
}
