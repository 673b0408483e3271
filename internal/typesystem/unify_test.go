package typesystem

import "testing"

func TestUnifyPrimitives(t *testing.T) {
	s, err := Unify(TPrim{Name: Int}, TPrim{Name: Int})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != 0 {
		t.Errorf("expected empty substitution, got %v", s)
	}

	if _, err := Unify(TPrim{Name: Int}, TPrim{Name: Bool}); err == nil {
		t.Errorf("expected mismatch error, got none")
	}
}

func TestUnifyVarBindsToConcrete(t *testing.T) {
	s, err := Unify(TVar{Ordinal: 1}, TPrim{Name: Int})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := s[1]
	if !ok {
		t.Fatalf("expected binding for t1, got %v", s)
	}
	if !Equal(got, TPrim{Name: Int}) {
		t.Errorf("expected t1 -> int, got %s", got)
	}
}

func TestUnifyOccursCheck(t *testing.T) {
	v := TVar{Ordinal: 1}
	listOfV := TList{Elem: v}
	if _, err := Unify(v, listOfV); err == nil {
		t.Errorf("expected occurs-check failure, got none")
	}
}

func TestUnifyRecordsStructural(t *testing.T) {
	// Records with the same labels unify regardless of insertion order
	// (spec §4.C).
	r1 := NewRecord([]string{"x", "y"}, map[string]Type{
		"x": TPrim{Name: Int}, "y": TPrim{Name: Bool},
	}, false)
	r2 := NewRecord([]string{"y", "x"}, map[string]Type{
		"y": TVar{Ordinal: 9}, "x": TPrim{Name: Int},
	}, false)

	_, err := Unify(r1, r2)
	if err != nil {
		t.Fatalf("expected structural match, got error: %v", err)
	}
}

func TestUnifyRecordLabelMismatchFails(t *testing.T) {
	r1 := NewRecord([]string{"x"}, map[string]Type{"x": TPrim{Name: Int}}, false)
	r2 := NewRecord([]string{"y"}, map[string]Type{"y": TPrim{Name: Int}}, false)
	if _, err := Unify(r1, r2); err == nil {
		t.Errorf("expected label mismatch to fail unification")
	}
}

func TestUnifyProgressiveRecordDistinctFromClosed(t *testing.T) {
	closed := NewRecord([]string{"x"}, map[string]Type{"x": TPrim{Name: Int}}, false)
	progressive := NewRecord([]string{"x"}, map[string]Type{"x": TPrim{Name: Int}}, true)
	if _, err := Unify(closed, progressive); err == nil {
		t.Errorf("expected progressive sentinel to keep shapes distinct")
	}
}

func TestUnifyTupleVsRecordOfSameArityDistinct(t *testing.T) {
	tuple := TTuple{Elements: []Type{TPrim{Name: Int}, TPrim{Name: Int}}}
	record := NewRecord([]string{"1", "2"}, map[string]Type{
		"1": TPrim{Name: Int}, "2": TPrim{Name: Int},
	}, false)
	if _, err := Unify(tuple, record); err == nil {
		t.Errorf("expected tuple and record-of-same-shape to use distinct term constructors")
	}
}

func TestUnifyListsRecurse(t *testing.T) {
	s, err := Unify(TList{Elem: TVar{Ordinal: 2}}, TList{Elem: TPrim{Name: String}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s[2]; !Equal(got, TPrim{Name: String}) {
		t.Errorf("expected t2 -> string, got %v", got)
	}
}

func TestUnifyFunctions(t *testing.T) {
	f1 := TFunc{Param: TVar{Ordinal: 1}, Result: TPrim{Name: Bool}}
	f2 := TFunc{Param: TPrim{Name: Int}, Result: TVar{Ordinal: 2}}
	s, err := Unify(f1, f2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Equal(s[1], TPrim{Name: Int}) || !Equal(s[2], TPrim{Name: Bool}) {
		t.Errorf("unexpected substitution: %v", s)
	}
}

func TestUnifyDatatypeArityMismatch(t *testing.T) {
	a := TData{Name: "option", Args: []Type{TPrim{Name: Int}}}
	b := TData{Name: "option", Args: []Type{TPrim{Name: Int}, TPrim{Name: Bool}}}
	if _, err := Unify(a, b); err == nil {
		t.Errorf("expected arity mismatch to fail")
	}
}

func TestToFromTermRoundTrip(t *testing.T) {
	cases := []Type{
		TPrim{Name: Int},
		TVar{Ordinal: 4},
		TTuple{Elements: []Type{TPrim{Name: Int}, TPrim{Name: Bool}}},
		NewRecord([]string{"a", "b"}, map[string]Type{"a": TPrim{Name: Int}, "b": TPrim{Name: String}}, true),
		TList{Elem: TPrim{Name: Char}},
		TBag{Elem: TPrim{Name: Real}},
		TFunc{Param: TPrim{Name: Int}, Result: TPrim{Name: Bool}},
		TData{Name: "tree", Args: []Type{TPrim{Name: Int}}},
	}
	for _, c := range cases {
		got := FromTerm(ToTerm(c))
		if !Equal(got, c) {
			t.Errorf("round trip mismatch: %s -> %s", c, got)
		}
	}
}
