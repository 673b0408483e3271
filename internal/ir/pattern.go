// Package ir defines the algebraic IR the query-grounding core operates
// on (spec §3, §4.A): types (re-exported from internal/typesystem),
// patterns, expressions, steps, and the from-builder. It plays the role
// funxy's internal/ast plays for the surface language, but is a
// purpose-built relational-query algebra rather than a general-purpose
// program AST — it has no Visitor/Accept traversal (passes walk the IR
// with type switches), and funxy's module/trait/import surface is not
// kept, because nothing in this core's IR has an analogue for it.
package ir

import (
	"fmt"
	"sort"
	"strings"

	"github.com/relground/ground/internal/typesystem"
)

// Pattern is the common interface for all pattern variants (spec §3
// "Pattern").
type Pattern interface {
	isPattern()
	Type() typesystem.Type
	String() string
	// Expand yields the sequence of named sub-patterns a pattern binds —
	// the leaves of the pattern tree.
	Expand() []*IdPattern
}

// IdPattern is a named, unique-within-scope pattern. Two distinct
// declarations that happen to share a name differ in Ordinal — the
// invariant spec §3 calls out explicitly ("Id-patterns compare by (name,
// ordinal, type)").
type IdPattern struct {
	Name    string
	Ordinal int
	Typ     typesystem.Type
}

func (p *IdPattern) isPattern()             {}
func (p *IdPattern) Type() typesystem.Type  { return p.Typ }
func (p *IdPattern) String() string         { return fmt.Sprintf("%s#%d", p.Name, p.Ordinal) }
func (p *IdPattern) Expand() []*IdPattern   { return []*IdPattern{p} }

// Equal implements the (name, ordinal, type) comparison invariant.
func (p *IdPattern) Equal(other *IdPattern) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Name == other.Name && p.Ordinal == other.Ordinal && typesystem.Equal(p.Typ, other.Typ)
}

// WildcardPattern matches anything and binds nothing.
type WildcardPattern struct{ Typ typesystem.Type }

func (p WildcardPattern) isPattern()            {}
func (p WildcardPattern) Type() typesystem.Type { return p.Typ }
func (p WildcardPattern) String() string        { return "_" }
func (p WildcardPattern) Expand() []*IdPattern  { return nil }

// LiteralPattern matches a constant value.
type LiteralPattern struct {
	Value any
	Typ   typesystem.Type
}

func (p LiteralPattern) isPattern()            {}
func (p LiteralPattern) Type() typesystem.Type { return p.Typ }
func (p LiteralPattern) String() string        { return fmt.Sprintf("%v", p.Value) }
func (p LiteralPattern) Expand() []*IdPattern  { return nil }

// TuplePattern is an ordered sequence of sub-patterns.
type TuplePattern struct{ Elements []Pattern }

func (p TuplePattern) isPattern() {}
func (p TuplePattern) Type() typesystem.Type {
	elems := make([]typesystem.Type, len(p.Elements))
	for i, e := range p.Elements {
		elems[i] = e.Type()
	}
	return typesystem.TTuple{Elements: elems}
}
func (p TuplePattern) String() string {
	parts := make([]string, len(p.Elements))
	for i, e := range p.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (p TuplePattern) Expand() []*IdPattern {
	var out []*IdPattern
	for _, e := range p.Elements {
		out = append(out, e.Expand()...)
	}
	return out
}

// RecordPattern is an ordered label->sub-pattern mapping.
type RecordPattern struct {
	Labels []string
	Fields map[string]Pattern
}

func (p RecordPattern) isPattern() {}
func (p RecordPattern) Type() typesystem.Type {
	fields := make(map[string]typesystem.Type, len(p.Fields))
	for k, v := range p.Fields {
		fields[k] = v.Type()
	}
	return typesystem.NewRecord(p.Labels, fields, false)
}
func (p RecordPattern) String() string {
	parts := make([]string, len(p.Labels))
	for i, l := range p.Labels {
		parts[i] = fmt.Sprintf("%s = %s", l, p.Fields[l].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (p RecordPattern) Expand() []*IdPattern {
	labels := append([]string(nil), p.Labels...)
	sort.Strings(labels)
	var out []*IdPattern
	for _, l := range labels {
		out = append(out, p.Fields[l].Expand()...)
	}
	return out
}

// ConstructorPattern matches a datatype constructor applied to an
// (optional) argument pattern.
type ConstructorPattern struct {
	Name string
	Arg  Pattern // nil for nullary constructors
	Typ  typesystem.Type
}

func (p ConstructorPattern) isPattern()            {}
func (p ConstructorPattern) Type() typesystem.Type { return p.Typ }
func (p ConstructorPattern) String() string {
	if p.Arg == nil {
		return p.Name
	}
	return p.Name + " " + p.Arg.String()
}
func (p ConstructorPattern) Expand() []*IdPattern {
	if p.Arg == nil {
		return nil
	}
	return p.Arg.Expand()
}

// AsPattern binds a name to the whole matched value in addition to
// recursing into Inner.
type AsPattern struct {
	Id    *IdPattern
	Inner Pattern
}

func (p AsPattern) isPattern()            {}
func (p AsPattern) Type() typesystem.Type { return p.Id.Typ }
func (p AsPattern) String() string        { return fmt.Sprintf("%s as %s", p.Id.String(), p.Inner.String()) }
func (p AsPattern) Expand() []*IdPattern {
	return append([]*IdPattern{p.Id}, p.Inner.Expand()...)
}
