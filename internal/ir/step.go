package ir

import (
	"fmt"
	"strings"
)

// Step is the common interface for the ordered union of `from` step
// kinds (spec §3 "Step"): scan, where, yield, group, order.
type Step interface {
	isStep()
	String() string
}

// Scan binds Pattern to successive elements of Expr. Cond is an optional
// per-element filter fused into the scan itself (as opposed to a
// trailing Where step) — nil when absent.
type Scan struct {
	Pattern Pattern
	Expr    Expr
	Cond    Expr // nilable
}

func (s Scan) isStep() {}
func (s Scan) String() string {
	if s.Cond != nil {
		return fmt.Sprintf("scan %s in %s where %s", s.Pattern.String(), s.Expr.String(), s.Cond.String())
	}
	return fmt.Sprintf("scan %s in %s", s.Pattern.String(), s.Expr.String())
}

// Where filters the current row set by Cond.
type Where struct{ Cond Expr }

func (s Where) isStep()     {}
func (s Where) String() string { return "where " + s.Cond.String() }

// Yield re-projects the current row set through Value.
type Yield struct{ Value Expr }

func (s Yield) isStep()     {}
func (s Yield) String() string { return "yield " + s.Value.String() }

// GroupKey is one key=expr pair of a Group step.
type GroupKey struct {
	Pattern Pattern
	Key     Expr
}

// Aggregate is one named aggregation of a Group step.
type Aggregate struct {
	Pattern Pattern
	Agg     Expr
}

// Group partitions the current row set by Keys and computes Aggs per
// partition.
type Group struct {
	Keys []GroupKey
	Aggs []Aggregate
}

func (s Group) isStep() {}
func (s Group) String() string {
	keys := make([]string, len(s.Keys))
	for i, k := range s.Keys {
		keys[i] = fmt.Sprintf("%s = %s", k.Pattern.String(), k.Key.String())
	}
	return "group " + strings.Join(keys, ", ")
}

// OrderKey is one sort key of an Order step.
type OrderKey struct {
	Expr       Expr
	Descending bool
}

// Order sorts the current row set by Keys, in order.
type Order struct{ Keys []OrderKey }

func (s Order) isStep() {}
func (s Order) String() string {
	keys := make([]string, len(s.Keys))
	for i, k := range s.Keys {
		dir := "asc"
		if k.Descending {
			dir = "desc"
		}
		keys[i] = fmt.Sprintf("%s %s", k.Expr.String(), dir)
	}
	return "order " + strings.Join(keys, ", ")
}
