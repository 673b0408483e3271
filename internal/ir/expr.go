package ir

import (
	"fmt"
	"strings"

	"github.com/relground/ground/internal/typesystem"
)

// Expr is the common interface for all IR expression variants (spec §3
// "Expression (IR)"). Every Expr carries a Type, mirroring the source
// system where expressions are always fully type-resolved by the time
// the query-grounding core sees them.
type Expr interface {
	isExpr()
	Type() typesystem.Type
	String() string
}

// Lit is a literal value.
type Lit struct {
	Value any
	Typ   typesystem.Type
}

func (e Lit) isExpr()            {}
func (e Lit) Type() typesystem.Type { return e.Typ }
func (e Lit) String() string        { return fmt.Sprintf("%v", e.Value) }

// IsTrue reports whether e is the literal boolean true — used throughout
// the core to recognize trivially-satisfied predicates (spec §4.A
// "where(..) — no-op if the expression simplifies to literal true").
func IsTrue(e Expr) bool {
	l, ok := e.(Lit)
	return ok && l.Value == true
}

// IdRef references a previously bound id-pattern.
type IdRef struct{ Pat *IdPattern }

func (e IdRef) isExpr()            {}
func (e IdRef) Type() typesystem.Type { return e.Pat.Typ }
func (e IdRef) String() string        { return e.Pat.String() }

// Tuple constructs an ordered tuple value.
type Tuple struct{ Elements []Expr }

func (e Tuple) isExpr() {}
func (e Tuple) Type() typesystem.Type {
	elems := make([]typesystem.Type, len(e.Elements))
	for i, x := range e.Elements {
		elems[i] = x.Type()
	}
	return typesystem.TTuple{Elements: elems}
}
func (e Tuple) String() string {
	parts := make([]string, len(e.Elements))
	for i, x := range e.Elements {
		parts[i] = x.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Record constructs an ordered label->value record.
type Record struct {
	Labels []string
	Fields map[string]Expr
}

func (e Record) isExpr() {}
func (e Record) Type() typesystem.Type {
	fields := make(map[string]typesystem.Type, len(e.Fields))
	for k, v := range e.Fields {
		fields[k] = v.Type()
	}
	return typesystem.NewRecord(e.Labels, fields, false)
}
func (e Record) String() string {
	parts := make([]string, len(e.Labels))
	for i, l := range e.Labels {
		parts[i] = fmt.Sprintf("%s = %s", l, e.Fields[l].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Field selects a positional slot out of a tuple/record-shaped
// expression (spec §3: "field selector (selects by positional slot)").
type Field struct {
	Of   Expr
	Slot int
	Typ  typesystem.Type
}

func (e Field) isExpr()            {}
func (e Field) Type() typesystem.Type { return e.Typ }
func (e Field) String() string        { return fmt.Sprintf("(#%d %s)", e.Slot, e.Of.String()) }

// BuiltinRef refers to a built-in operator by identity (spec §3: "Every
// apply whose function is a literal refers either to a built-in
// operator by identity or to a function value").
type BuiltinRef struct{ Op Op }

func (e BuiltinRef) isExpr()            {}
func (e BuiltinRef) Type() typesystem.Type { return nil }
func (e BuiltinRef) String() string        { return e.Op.String() }

// FuncRef refers to a user-defined function value by name, resolved
// through the function registry (§4.G) rather than carrying a body
// inline.
type FuncRef struct {
	Name string
	Typ  typesystem.Type
}

func (e FuncRef) isExpr()            {}
func (e FuncRef) Type() typesystem.Type { return e.Typ }
func (e FuncRef) String() string        { return e.Name }

// Lambda is an anonymous function literal.
type Lambda struct {
	Param Pattern
	Body  Expr
	Typ   typesystem.Type
}

func (e Lambda) isExpr()            {}
func (e Lambda) Type() typesystem.Type { return e.Typ }
func (e Lambda) String() string        { return fmt.Sprintf("fn %s => %s", e.Param.String(), e.Body.String()) }

// Apply is function (or built-in operator) application.
type Apply struct {
	Fn   Expr
	Args []Expr
	Typ  typesystem.Type
}

func (e Apply) isExpr()            {}
func (e Apply) Type() typesystem.Type { return e.Typ }
func (e Apply) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	// Binary built-in operators print infix for readability, matching
	// funxy's prettyprinter convention for operator expressions.
	if b, ok := e.Fn.(BuiltinRef); ok && len(e.Args) == 2 {
		return fmt.Sprintf("(%s %s %s)", e.Args[0].String(), b.Op.String(), e.Args[1].String())
	}
	return fmt.Sprintf("%s(%s)", e.Fn.String(), strings.Join(args, ", "))
}

// Arm is one arm of a Case expression.
type Arm struct {
	Pattern Pattern
	Body    Expr
}

// Case dispatches on the shape of Scrutinee.
type Case struct {
	Scrutinee Expr
	Arms      []Arm
	Typ       typesystem.Type
}

func (e Case) isExpr()            {}
func (e Case) Type() typesystem.Type { return e.Typ }
func (e Case) String() string {
	arms := make([]string, len(e.Arms))
	for i, a := range e.Arms {
		arms[i] = fmt.Sprintf("%s => %s", a.Pattern.String(), a.Body.String())
	}
	return fmt.Sprintf("case %s of %s", e.Scrutinee.String(), strings.Join(arms, " | "))
}

// SingleArmCase reports whether e is a Case with exactly one arm, and
// returns it — the shape the inverter's rule 1 (§4.F) and the registry's
// formal-parameter unwrapping (§4.G) both look for.
func SingleArmCase(e Expr) (Case, bool) {
	c, ok := e.(Case)
	if !ok || len(c.Arms) != 1 {
		return Case{}, false
	}
	return c, true
}

// Let binds Value to Pattern within the scope of Body.
type Let struct {
	Pattern Pattern
	Value   Expr
	Body    Expr
}

func (e Let) isExpr()            {}
func (e Let) Type() typesystem.Type { return e.Body.Type() }
func (e Let) String() string {
	return fmt.Sprintf("let %s = %s in %s", e.Pattern.String(), e.Value.String(), e.Body.String())
}

// From is a step-sequence expression — a `from` query (spec §3 "Step").
type From struct {
	Sources []Source
	Steps   []Step
	Typ     typesystem.Type
}

// Source is one source binding of a `from` (pattern -> expression).
type Source struct {
	Pattern Pattern
	Expr    Expr
}

func (e From) isExpr()            {}
func (e From) Type() typesystem.Type { return e.Typ }
func (e From) String() string {
	var b strings.Builder
	b.WriteString("from ")
	parts := make([]string, len(e.Sources))
	for i, s := range e.Sources {
		parts[i] = fmt.Sprintf("%s in %s", s.Pattern.String(), s.Expr.String())
	}
	b.WriteString(strings.Join(parts, ", "))
	for _, s := range e.Steps {
		b.WriteString(" ")
		b.WriteString(s.String())
	}
	return b.String()
}
