package ir

import (
	"strings"
	"testing"

	"github.com/relground/ground/internal/typesystem"
)

func intList(elems ...int) Lit {
	vals := make([]any, len(elems))
	for i, e := range elems {
		vals[i] = e
	}
	return Lit{Value: vals, Typ: typesystem.TList{Elem: typesystem.TPrim{Name: typesystem.Int}}}
}

func TestBuilderRejectsElementTypeMismatch(t *testing.T) {
	b := NewBuilder()
	x := &IdPattern{Name: "x", Ordinal: 1, Typ: typesystem.TPrim{Name: typesystem.Bool}}
	err := b.Scan(x, intList(1, 2, 3), nil)
	if err == nil {
		t.Fatalf("expected type-mismatch error, got none")
	}
}

func TestBuilderRejectsDuplicateOrdinal(t *testing.T) {
	b := NewBuilder()
	x := &IdPattern{Name: "x", Ordinal: 1, Typ: typesystem.TPrim{Name: typesystem.Int}}
	if err := b.Scan(x, intList(1, 2, 3), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	y := &IdPattern{Name: "y", Ordinal: 1, Typ: typesystem.TPrim{Name: typesystem.Int}} // same ordinal
	if err := b.Scan(y, intList(4, 5), nil); err == nil {
		t.Fatalf("expected duplicate-ordinal error, got none")
	}
}

func TestBuilderWhereDropsLiteralTrue(t *testing.T) {
	b := NewBuilder()
	x := &IdPattern{Name: "x", Ordinal: 1, Typ: typesystem.TPrim{Name: typesystem.Int}}
	if err := b.Scan(x, intList(1, 2, 3), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b.Where(Lit{Value: true, Typ: typesystem.TPrim{Name: typesystem.Bool}})
	from, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range from.Steps {
		if _, ok := s.(Where); ok {
			t.Errorf("expected literal-true where to be dropped, got step %v", s)
		}
	}
}

func TestBuilderBuildsSimpleMember(t *testing.T) {
	// from x where x elem [1, 2, 3] — built directly as a scan, matching
	// the rewritten form spec §8 scenario 1 expects.
	b := NewBuilder()
	x := &IdPattern{Name: "x", Ordinal: 1, Typ: typesystem.TPrim{Name: typesystem.Int}}
	if err := b.Scan(x, intList(1, 2, 3), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	from, err := b.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(from.Sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(from.Sources))
	}
	printed := Print(from)
	if !strings.Contains(printed, "from x#1 in") {
		t.Errorf("unexpected print output: %q", printed)
	}
}

func TestPatternExpandLeaves(t *testing.T) {
	x := &IdPattern{Name: "x", Ordinal: 1, Typ: typesystem.TPrim{Name: typesystem.Int}}
	y := &IdPattern{Name: "y", Ordinal: 2, Typ: typesystem.TPrim{Name: typesystem.Int}}
	tup := TuplePattern{Elements: []Pattern{x, y}}
	leaves := tup.Expand()
	if len(leaves) != 2 || leaves[0] != x || leaves[1] != y {
		t.Errorf("unexpected expand result: %v", leaves)
	}
}

func TestIdPatternEqualityByNameOrdinalType(t *testing.T) {
	a := &IdPattern{Name: "x", Ordinal: 1, Typ: typesystem.TPrim{Name: typesystem.Int}}
	b := &IdPattern{Name: "x", Ordinal: 1, Typ: typesystem.TPrim{Name: typesystem.Int}}
	c := &IdPattern{Name: "x", Ordinal: 2, Typ: typesystem.TPrim{Name: typesystem.Int}}
	if !a.Equal(b) {
		t.Errorf("expected equal patterns to compare equal")
	}
	if a.Equal(c) {
		t.Errorf("expected distinct ordinals to compare unequal")
	}
}
