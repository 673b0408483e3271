package ir

import (
	"github.com/relground/ground/internal/diagnostics"
	"github.com/relground/ground/internal/typesystem"
)

// Builder is the only sanctioned way to construct From expressions
// inside the core (spec §4.A): it incrementally adds steps while
// tracking the current step environment (the set of bindings visible
// after the latest step) and enforces the scope invariant — a scan's
// bound names must be distinct from names bound by earlier steps.
type Builder struct {
	sources []Source
	steps   []Step
	started bool // true once a non-source step has been added
	bound   []*IdPattern
	boundBy map[int]bool // ordinal -> bound
	shape   typesystem.Type
}

// NewBuilder returns an empty from-builder.
func NewBuilder() *Builder {
	return &Builder{boundBy: make(map[int]bool)}
}

func invariant(format string, args ...any) error {
	return diagnostics.New(diagnostics.InvariantViolation, diagnostics.Pos{}, format, args...)
}

// Scan adds a scan step: pattern ranges over the elements of expr,
// optionally filtered per-element by cond (nil if absent). It fails when
// the expression's element type does not match the pattern's type (spec
// §4.A).
func (b *Builder) Scan(pattern Pattern, expr Expr, cond Expr) error {
	elemType, ok := typesystem.ElementType(expr.Type())
	if !ok {
		return invariant("scan source %s is not a list or bag type", expr.Type())
	}
	if !typesystem.Equal(elemType, pattern.Type()) {
		return invariant("scan pattern type %s does not match source element type %s", pattern.Type(), elemType)
	}
	for _, id := range pattern.Expand() {
		if b.boundBy[id.Ordinal] {
			return invariant("pattern %s rebinds an ordinal already bound earlier in this from", id.String())
		}
	}
	if !b.started {
		b.sources = append(b.sources, Source{Pattern: pattern, Expr: expr})
	} else {
		b.steps = append(b.steps, Scan{Pattern: pattern, Expr: expr, Cond: cond})
	}
	for _, id := range pattern.Expand() {
		b.bound = append(b.bound, id)
		b.boundBy[id.Ordinal] = true
	}
	b.shape = expr.Type()
	return nil
}

// Where adds a filter step. A condition that simplifies to literal true
// is dropped — spec §4.A: "no-op if the expression simplifies to literal
// true".
func (b *Builder) Where(cond Expr) {
	b.started = true
	if IsTrue(cond) {
		return
	}
	b.steps = append(b.steps, Where{Cond: cond})
}

// Yield adds a re-projection step and resets the bound-variable set to
// whatever the yielded pattern, if any, introduces. Most yields are
// terminal, so callers typically don't Scan after one; when they do (a
// nested from), the new bound set is empty until the next Scan.
func (b *Builder) Yield(value Expr) {
	b.started = true
	b.steps = append(b.steps, Yield{Value: value})
	b.bound = nil
	b.boundBy = make(map[int]bool)
}

// Group adds a group step; downstream scope becomes exactly the key and
// aggregate patterns.
func (b *Builder) Group(keys []GroupKey, aggs []Aggregate) {
	b.started = true
	b.steps = append(b.steps, Group{Keys: keys, Aggs: aggs})
	b.bound = nil
	b.boundBy = make(map[int]bool)
	for _, k := range keys {
		for _, id := range k.Pattern.Expand() {
			b.bound = append(b.bound, id)
			b.boundBy[id.Ordinal] = true
		}
	}
	for _, a := range aggs {
		for _, id := range a.Pattern.Expand() {
			b.bound = append(b.bound, id)
			b.boundBy[id.Ordinal] = true
		}
	}
}

// Order adds a sort step; it does not change the bound-variable set.
func (b *Builder) Order(keys []OrderKey) {
	b.started = true
	b.steps = append(b.steps, Order{Keys: keys})
}

// Union appends a union step over more, represented here as a final
// yield of a list/bag-concat built-in application (distinct controls
// whether a dedup pass follows).
func (b *Builder) Union(distinct bool, more []Expr, elemType typesystem.Type) {
	b.started = true
	shape := typesystem.SameCollectionShape(b.shape, elemType)
	op := OpListConcat
	if _, isBag := shape.(typesystem.TBag); isBag {
		op = OpBagConcat
	}
	args := append([]Expr{}, more...)
	combined := Apply{Fn: BuiltinRef{Op: op}, Args: args, Typ: shape}
	b.steps = append(b.steps, Yield{Value: combined})
	if distinct {
		b.Distinct()
	}
}

// Distinct marks the current row set as deduplicated by adding a Group
// step keyed by every currently bound id-pattern, with no aggregates
// (the distinct-via-group-by-everything encoding).
func (b *Builder) Distinct() {
	b.started = true
	keys := make([]GroupKey, len(b.bound))
	for i, id := range b.bound {
		keys[i] = GroupKey{Pattern: id, Key: IdRef{Pat: id}}
	}
	b.Group(keys, nil)
}

// Bound returns the id-patterns currently in scope, in binding order.
func (b *Builder) Bound() []*IdPattern {
	return append([]*IdPattern(nil), b.bound...)
}

// Build returns the constructed From expression. It adds no step: spec
// §4.A "the builder may omit a trailing yield". When the last step is
// not a Yield, the From's element type is the single current binding's
// type, or a tuple of all current bindings' types.
func (b *Builder) Build() (From, error) {
	if len(b.sources) == 0 && len(b.steps) == 0 {
		return From{}, invariant("from-builder: no sources added")
	}
	elemType := b.resultType()
	return From{Sources: b.sources, Steps: b.steps, Typ: typesystem.SameCollectionShape(b.shape, elemType)}, nil
}

func (b *Builder) resultType() typesystem.Type {
	if n := len(b.steps); n > 0 {
		if y, ok := b.steps[n-1].(Yield); ok {
			return y.Value.Type()
		}
	}
	if len(b.bound) == 1 {
		return b.bound[0].Typ
	}
	elems := make([]typesystem.Type, len(b.bound))
	for i, id := range b.bound {
		elems[i] = id.Typ
	}
	return typesystem.TTuple{Elements: elems}
}

// BoundTupleExpr builds the expression a synthesized trailing yield
// would produce for the builder's current bound set: the single
// binding's IdRef if there is exactly one, otherwise a Tuple of all of
// them in binding order.
func (b *Builder) BoundTupleExpr() Expr {
	if len(b.bound) == 1 {
		return IdRef{Pat: b.bound[0]}
	}
	elems := make([]Expr, len(b.bound))
	for i, id := range b.bound {
		elems[i] = IdRef{Pat: id}
	}
	return Tuple{Elements: elems}
}
