// Package typesystem implements the type algebra consumed by the query-
// grounding core (spec §3 "Type", §4.C). It is a trimmed descendant of
// funxy's internal/typesystem: the same Type interface / Subst / Apply /
// FreeTypeVariables shape, but without funxy's higher-kinded Kind system —
// this core's datatypes are first-order (name + argument types, never a
// type constructor of higher kind), so kind-checking machinery has no job
// here (see DESIGN.md).
package typesystem

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the interface every type variant implements.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeTypeVariables() []TVar
}

// Subst maps type-variable ordinals to types.
type Subst map[int]Type

// Compose combines two substitutions so that applying the result is
// equivalent to applying s2 then s1.
func (s1 Subst) Compose(s2 Subst) Subst {
	out := make(Subst, len(s1)+len(s2))
	for k, v := range s2 {
		out[k] = v.Apply(s1)
	}
	for k, v := range s1 {
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
	return out
}

// Primitive is one of the closed set of base types named in spec §3.
type Primitive string

const (
	Bool   Primitive = "bool"
	Int    Primitive = "int"
	Real   Primitive = "real"
	Char   Primitive = "char"
	String Primitive = "string"
	Unit   Primitive = "unit"
)

// TPrim is a primitive type.
type TPrim struct{ Name Primitive }

func (t TPrim) String() string                { return string(t.Name) }
func (t TPrim) Apply(Subst) Type              { return t }
func (t TPrim) FreeTypeVariables() []TVar      { return nil }

// TVar is a type variable, identified by an integer ordinal (spec §3:
// "type variable (integer ordinal)").
type TVar struct{ Ordinal int }

func (t TVar) String() string { return fmt.Sprintf("'t%d", t.Ordinal) }

func (t TVar) Apply(s Subst) Type {
	if repl, ok := s[t.Ordinal]; ok {
		if rv, ok := repl.(TVar); ok && rv.Ordinal == t.Ordinal {
			return t
		}
		return repl.Apply(s)
	}
	return t
}

func (t TVar) FreeTypeVariables() []TVar { return []TVar{t} }

// TTuple is an ordered tuple of types.
type TTuple struct{ Elements []Type }

func (t TTuple) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, " * ") + ")"
}

func (t TTuple) Apply(s Subst) Type {
	out := make([]Type, len(t.Elements))
	for i, e := range t.Elements {
		out[i] = e.Apply(s)
	}
	return TTuple{Elements: out}
}

func (t TTuple) FreeTypeVariables() []TVar {
	var vs []TVar
	for _, e := range t.Elements {
		vs = append(vs, e.FreeTypeVariables()...)
	}
	return uniqueTVars(vs)
}

// TRecord is an ordered label->Type mapping, optionally progressive (open
// to new fields during analysis, spec §3). Labels is the declared order;
// Fields gives O(1) lookup.
type TRecord struct {
	Labels      []string
	Fields      map[string]Type
	Progressive bool
}

func NewRecord(labels []string, fields map[string]Type, progressive bool) TRecord {
	return TRecord{Labels: append([]string(nil), labels...), Fields: fields, Progressive: progressive}
}

func (t TRecord) String() string {
	parts := make([]string, len(t.Labels))
	for i, l := range t.Labels {
		parts[i] = fmt.Sprintf("%s: %s", l, t.Fields[l].String())
	}
	suffix := ""
	if t.Progressive {
		suffix = ", ..."
	}
	return "{" + strings.Join(parts, ", ") + suffix + "}"
}

func (t TRecord) Apply(s Subst) Type {
	fields := make(map[string]Type, len(t.Fields))
	for k, v := range t.Fields {
		fields[k] = v.Apply(s)
	}
	return TRecord{Labels: t.Labels, Fields: fields, Progressive: t.Progressive}
}

func (t TRecord) FreeTypeVariables() []TVar {
	var vs []TVar
	for _, l := range t.Labels {
		vs = append(vs, t.Fields[l].FreeTypeVariables()...)
	}
	return uniqueTVars(vs)
}

// TupleAsRecord gives a tuple the record-like view spec §3 requires
// ("Records and tuples share a record-like view"): labels "1".."n".
func TupleAsRecord(t TTuple) TRecord {
	labels := make([]string, len(t.Elements))
	fields := make(map[string]Type, len(t.Elements))
	for i, e := range t.Elements {
		l := fmt.Sprintf("%d", i+1)
		labels[i] = l
		fields[l] = e
	}
	return TRecord{Labels: labels, Fields: fields}
}

// AsRecordView returns the record-like view of a tuple or record type, and
// false for anything else.
func AsRecordView(t Type) (TRecord, bool) {
	switch v := t.(type) {
	case TRecord:
		return v, true
	case TTuple:
		return TupleAsRecord(v), true
	}
	return TRecord{}, false
}

// TList is a list-of collection type.
type TList struct{ Elem Type }

func (t TList) String() string           { return "list " + t.Elem.String() }
func (t TList) Apply(s Subst) Type       { return TList{Elem: t.Elem.Apply(s)} }
func (t TList) FreeTypeVariables() []TVar { return t.Elem.FreeTypeVariables() }

// TBag is a bag-of (unordered, duplicates allowed) collection type.
type TBag struct{ Elem Type }

func (t TBag) String() string            { return "bag " + t.Elem.String() }
func (t TBag) Apply(s Subst) Type        { return TBag{Elem: t.Elem.Apply(s)} }
func (t TBag) FreeTypeVariables() []TVar  { return t.Elem.FreeTypeVariables() }

// ElementType returns the element type of a list or bag type.
func ElementType(t Type) (Type, bool) {
	switch v := t.(type) {
	case TList:
		return v.Elem, true
	case TBag:
		return v.Elem, true
	}
	return nil, false
}

// IsCollection reports whether t is a list or bag type.
func IsCollection(t Type) bool {
	_, ok := ElementType(t)
	return ok
}

// SameCollectionShape rebuilds a list/bag type with a new element type,
// preserving whether the original was a list or a bag.
func SameCollectionShape(shape Type, elem Type) Type {
	switch shape.(type) {
	case TBag:
		return TBag{Elem: elem}
	default:
		return TList{Elem: elem}
	}
}

// TFunc is a function type (Type -> Type, spec §3: single domain/range —
// multi-argument functions are curried or tupled at the IR level).
type TFunc struct {
	Param  Type
	Result Type
}

func (t TFunc) String() string { return fmt.Sprintf("(%s -> %s)", t.Param.String(), t.Result.String()) }

func (t TFunc) Apply(s Subst) Type {
	return TFunc{Param: t.Param.Apply(s), Result: t.Result.Apply(s)}
}

func (t TFunc) FreeTypeVariables() []TVar {
	return uniqueTVars(append(t.Param.FreeTypeVariables(), t.Result.FreeTypeVariables()...))
}

// TData is a user datatype identified by name plus argument types (e.g.
// `'a option`, `('k, 'v) dict`).
type TData struct {
	Name string
	Args []Type
}

func (t TData) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("(%s) %s", strings.Join(parts, ", "), t.Name)
}

func (t TData) Apply(s Subst) Type {
	args := make([]Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.Apply(s)
	}
	return TData{Name: t.Name, Args: args}
}

func (t TData) FreeTypeVariables() []TVar {
	var vs []TVar
	for _, a := range t.Args {
		vs = append(vs, a.FreeTypeVariables()...)
	}
	return uniqueTVars(vs)
}

// TForall is a universally quantified type (forall k . Type).
type TForall struct {
	Vars []TVar
	Body Type
}

func (t TForall) String() string {
	parts := make([]string, len(t.Vars))
	for i, v := range t.Vars {
		parts[i] = v.String()
	}
	return fmt.Sprintf("forall %s . %s", strings.Join(parts, " "), t.Body.String())
}

func (t TForall) Apply(s Subst) Type {
	bound := make(map[int]bool, len(t.Vars))
	for _, v := range t.Vars {
		bound[v.Ordinal] = true
	}
	filtered := make(Subst, len(s))
	for k, v := range s {
		if !bound[k] {
			filtered[k] = v
		}
	}
	return TForall{Vars: t.Vars, Body: t.Body.Apply(filtered)}
}

func (t TForall) FreeTypeVariables() []TVar {
	bound := make(map[int]bool, len(t.Vars))
	for _, v := range t.Vars {
		bound[v.Ordinal] = true
	}
	var out []TVar
	for _, v := range t.Body.FreeTypeVariables() {
		if !bound[v.Ordinal] {
			out = append(out, v)
		}
	}
	return out
}

// Equal reports structural equality by comparing String() forms, for
// every variant including TForall, whose bound type variables are
// compared by ordinal with no alpha-renaming — this
// mirrors funxy's own TUnion dedup strategy (types.go NormalizeUnion),
// which also uses the String() form as a cheap structural key.
func Equal(a, b Type) bool { return a.String() == b.String() }

func uniqueTVars(vars []TVar) []TVar {
	seen := make(map[int]bool, len(vars))
	out := make([]TVar, 0, len(vars))
	for _, v := range vars {
		if !seen[v.Ordinal] {
			seen[v.Ordinal] = true
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out
}

// IsInfinite reports whether t has unboundedly many values. Only
// primitive int/real/string/char are infinite; bool/unit are finite, and
// every collection/record/tuple/function/datatype is treated as the
// runtime's concern, not the type system's — the extent analyzer (§4.E)
// is what actually proves finiteness for those.
func IsInfinite(t Type) bool {
	p, ok := t.(TPrim)
	if !ok {
		return false
	}
	switch p.Name {
	case Int, Real, String, Char:
		return true
	default:
		return false
	}
}
