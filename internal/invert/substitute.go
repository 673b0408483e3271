package invert

import "github.com/relground/ground/internal/ir"

// Substitute replaces every IdRef to the id-pattern with ordinal target
// with replacement throughout e. It is a plain structural substitution —
// the IR's id-patterns already carry globally-unique ordinals, so no
// capture-avoidance renaming is needed (spec §3: "id-patterns compare by
// (name, ordinal, type)").
func Substitute(e ir.Expr, target int, replacement ir.Expr) ir.Expr {
	switch v := e.(type) {
	case ir.IdRef:
		if v.Pat.Ordinal == target {
			return replacement
		}
		return v
	case ir.Lit, ir.BuiltinRef, ir.FuncRef:
		return v
	case ir.Tuple:
		out := make([]ir.Expr, len(v.Elements))
		for i, el := range v.Elements {
			out[i] = Substitute(el, target, replacement)
		}
		return ir.Tuple{Elements: out}
	case ir.Record:
		fields := make(map[string]ir.Expr, len(v.Fields))
		for k, val := range v.Fields {
			fields[k] = Substitute(val, target, replacement)
		}
		return ir.Record{Labels: v.Labels, Fields: fields}
	case ir.Field:
		return ir.Field{Of: Substitute(v.Of, target, replacement), Slot: v.Slot, Typ: v.Typ}
	case ir.Apply:
		args := make([]ir.Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = Substitute(a, target, replacement)
		}
		return ir.Apply{Fn: Substitute(v.Fn, target, replacement), Args: args, Typ: v.Typ}
	case ir.Lambda:
		if boundByOrdinal(v.Param, target) {
			return v
		}
		return ir.Lambda{Param: v.Param, Body: Substitute(v.Body, target, replacement), Typ: v.Typ}
	case ir.Case:
		arms := make([]ir.Arm, len(v.Arms))
		for i, a := range v.Arms {
			if boundByOrdinal(a.Pattern, target) {
				arms[i] = a
				continue
			}
			arms[i] = ir.Arm{Pattern: a.Pattern, Body: Substitute(a.Body, target, replacement)}
		}
		return ir.Case{Scrutinee: Substitute(v.Scrutinee, target, replacement), Arms: arms, Typ: v.Typ}
	case ir.Let:
		value := Substitute(v.Value, target, replacement)
		if boundByOrdinal(v.Pattern, target) {
			return ir.Let{Pattern: v.Pattern, Value: value, Body: v.Body}
		}
		return ir.Let{Pattern: v.Pattern, Value: value, Body: Substitute(v.Body, target, replacement)}
	case ir.From:
		sources := make([]ir.Source, len(v.Sources))
		for i, s := range v.Sources {
			sources[i] = ir.Source{Pattern: s.Pattern, Expr: Substitute(s.Expr, target, replacement)}
		}
		steps := make([]ir.Step, len(v.Steps))
		for i, step := range v.Steps {
			steps[i] = substituteStep(step, target, replacement)
		}
		return ir.From{Sources: sources, Steps: steps, Typ: v.Typ}
	default:
		return e
	}
}

func substituteStep(step ir.Step, target int, replacement ir.Expr) ir.Step {
	switch s := step.(type) {
	case ir.Scan:
		cond := s.Cond
		if cond != nil {
			cond = Substitute(cond, target, replacement)
		}
		return ir.Scan{Pattern: s.Pattern, Expr: Substitute(s.Expr, target, replacement), Cond: cond}
	case ir.Where:
		return ir.Where{Cond: Substitute(s.Cond, target, replacement)}
	case ir.Yield:
		return ir.Yield{Value: Substitute(s.Value, target, replacement)}
	case ir.Group:
		keys := make([]ir.GroupKey, len(s.Keys))
		for i, k := range s.Keys {
			keys[i] = ir.GroupKey{Pattern: k.Pattern, Key: Substitute(k.Key, target, replacement)}
		}
		aggs := make([]ir.Aggregate, len(s.Aggs))
		for i, a := range s.Aggs {
			aggs[i] = ir.Aggregate{Pattern: a.Pattern, Agg: Substitute(a.Agg, target, replacement)}
		}
		return ir.Group{Keys: keys, Aggs: aggs}
	case ir.Order:
		keys := make([]ir.OrderKey, len(s.Keys))
		for i, k := range s.Keys {
			keys[i] = ir.OrderKey{Expr: Substitute(k.Expr, target, replacement), Descending: k.Descending}
		}
		return ir.Order{Keys: keys}
	default:
		return step
	}
}

func boundByOrdinal(p ir.Pattern, target int) bool {
	for _, id := range p.Expand() {
		if id.Ordinal == target {
			return true
		}
	}
	return false
}
