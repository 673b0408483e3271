package invert

import (
	"github.com/relground/ground/internal/ir"
	"github.com/relground/ground/internal/typesystem"
)

// SpecializeType rewrites every type annotation reachable from e by
// applying s. It is the companion to Substitute: Substitute replaces
// expression *values*, this replaces the *types* those values carry —
// needed when a polymorphic registered function's body is inlined at a
// call site whose argument has a more specific type than the function's
// formal parameter (spec §4.C, consulted from rule 7's inlining step).
func SpecializeType(e ir.Expr, s typesystem.Subst) ir.Expr {
	if len(s) == 0 {
		return e
	}
	switch v := e.(type) {
	case ir.Lit:
		return ir.Lit{Value: v.Value, Typ: v.Typ.Apply(s)}
	case ir.IdRef:
		return ir.IdRef{Pat: specializePattern(v.Pat, s).(*ir.IdPattern)}
	case ir.Tuple:
		out := make([]ir.Expr, len(v.Elements))
		for i, el := range v.Elements {
			out[i] = SpecializeType(el, s)
		}
		return ir.Tuple{Elements: out}
	case ir.Record:
		fields := make(map[string]ir.Expr, len(v.Fields))
		for k, val := range v.Fields {
			fields[k] = SpecializeType(val, s)
		}
		return ir.Record{Labels: v.Labels, Fields: fields}
	case ir.Field:
		return ir.Field{Of: SpecializeType(v.Of, s), Slot: v.Slot, Typ: v.Typ.Apply(s)}
	case ir.BuiltinRef:
		return v
	case ir.FuncRef:
		return ir.FuncRef{Name: v.Name, Typ: v.Typ.Apply(s)}
	case ir.Lambda:
		return ir.Lambda{Param: specializePattern(v.Param, s), Body: SpecializeType(v.Body, s), Typ: v.Typ.Apply(s)}
	case ir.Apply:
		args := make([]ir.Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = SpecializeType(a, s)
		}
		return ir.Apply{Fn: SpecializeType(v.Fn, s), Args: args, Typ: v.Typ.Apply(s)}
	case ir.Case:
		arms := make([]ir.Arm, len(v.Arms))
		for i, a := range v.Arms {
			arms[i] = ir.Arm{Pattern: specializePattern(a.Pattern, s), Body: SpecializeType(a.Body, s)}
		}
		return ir.Case{Scrutinee: SpecializeType(v.Scrutinee, s), Arms: arms, Typ: v.Typ.Apply(s)}
	case ir.Let:
		return ir.Let{Pattern: specializePattern(v.Pattern, s), Value: SpecializeType(v.Value, s), Body: SpecializeType(v.Body, s)}
	case ir.From:
		sources := make([]ir.Source, len(v.Sources))
		for i, src := range v.Sources {
			sources[i] = ir.Source{Pattern: specializePattern(src.Pattern, s), Expr: SpecializeType(src.Expr, s)}
		}
		steps := make([]ir.Step, len(v.Steps))
		for i, step := range v.Steps {
			steps[i] = specializeStep(step, s)
		}
		return ir.From{Sources: sources, Steps: steps, Typ: v.Typ.Apply(s)}
	default:
		return e
	}
}

// SpecializePattern is the exported form of specializePattern, for
// specializing a function's formal parameter pattern alongside its body.
// Nothing in this module calls it; rule 7 specializes only the body, via
// SpecializeType.
func SpecializePattern(p ir.Pattern, s typesystem.Subst) ir.Pattern {
	if len(s) == 0 {
		return p
	}
	return specializePattern(p, s)
}

func specializePattern(p ir.Pattern, s typesystem.Subst) ir.Pattern {
	switch v := p.(type) {
	case *ir.IdPattern:
		return &ir.IdPattern{Name: v.Name, Ordinal: v.Ordinal, Typ: v.Typ.Apply(s)}
	case ir.WildcardPattern:
		return ir.WildcardPattern{Typ: v.Typ.Apply(s)}
	case ir.LiteralPattern:
		return ir.LiteralPattern{Value: v.Value, Typ: v.Typ.Apply(s)}
	case ir.TuplePattern:
		out := make([]ir.Pattern, len(v.Elements))
		for i, el := range v.Elements {
			out[i] = specializePattern(el, s)
		}
		return ir.TuplePattern{Elements: out}
	case ir.RecordPattern:
		fields := make(map[string]ir.Pattern, len(v.Fields))
		for k, val := range v.Fields {
			fields[k] = specializePattern(val, s)
		}
		return ir.RecordPattern{Labels: v.Labels, Fields: fields}
	case ir.ConstructorPattern:
		var arg ir.Pattern
		if v.Arg != nil {
			arg = specializePattern(v.Arg, s)
		}
		return ir.ConstructorPattern{Name: v.Name, Arg: arg, Typ: v.Typ.Apply(s)}
	case ir.AsPattern:
		id := specializePattern(v.Id, s).(*ir.IdPattern)
		return ir.AsPattern{Id: id, Inner: specializePattern(v.Inner, s)}
	default:
		return p
	}
}

func specializeStep(step ir.Step, s typesystem.Subst) ir.Step {
	switch st := step.(type) {
	case ir.Scan:
		cond := st.Cond
		if cond != nil {
			cond = SpecializeType(cond, s)
		}
		return ir.Scan{Pattern: specializePattern(st.Pattern, s), Expr: SpecializeType(st.Expr, s), Cond: cond}
	case ir.Where:
		return ir.Where{Cond: SpecializeType(st.Cond, s)}
	case ir.Yield:
		return ir.Yield{Value: SpecializeType(st.Value, s)}
	case ir.Group:
		keys := make([]ir.GroupKey, len(st.Keys))
		for i, k := range st.Keys {
			keys[i] = ir.GroupKey{Pattern: specializePattern(k.Pattern, s), Key: SpecializeType(k.Key, s)}
		}
		aggs := make([]ir.Aggregate, len(st.Aggs))
		for i, a := range st.Aggs {
			aggs[i] = ir.Aggregate{Pattern: specializePattern(a.Pattern, s), Agg: SpecializeType(a.Agg, s)}
		}
		return ir.Group{Keys: keys, Aggs: aggs}
	case ir.Order:
		keys := make([]ir.OrderKey, len(st.Keys))
		for i, k := range st.Keys {
			keys[i] = ir.OrderKey{Expr: SpecializeType(k.Expr, s), Descending: k.Descending}
		}
		return ir.Order{Keys: keys}
	default:
		return step
	}
}
