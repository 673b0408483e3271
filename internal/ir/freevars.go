package ir

// FreeVars returns the set of id-pattern ordinals referenced by e but not
// bound within e itself. It underlies the topological ordering the
// query expander performs (spec §4.I) and the Generator.FreeVariables
// field (spec §3 "Generator").
func FreeVars(e Expr) map[int]bool {
	out := make(map[int]bool)
	collectFreeVars(e, out)
	return out
}

func collectFreeVars(e Expr, out map[int]bool) {
	if e == nil {
		return
	}
	switch v := e.(type) {
	case Lit, BuiltinRef, FuncRef:
		return
	case IdRef:
		out[v.Pat.Ordinal] = true
	case Tuple:
		for _, el := range v.Elements {
			collectFreeVars(el, out)
		}
	case Record:
		for _, l := range v.Labels {
			collectFreeVars(v.Fields[l], out)
		}
	case Field:
		collectFreeVars(v.Of, out)
	case Lambda:
		inner := make(map[int]bool)
		collectFreeVars(v.Body, inner)
		removeBound(inner, v.Param)
		mergeInto(out, inner)
	case Apply:
		collectFreeVars(v.Fn, out)
		for _, a := range v.Args {
			collectFreeVars(a, out)
		}
	case Case:
		collectFreeVars(v.Scrutinee, out)
		for _, arm := range v.Arms {
			inner := make(map[int]bool)
			collectFreeVars(arm.Body, inner)
			removeBound(inner, arm.Pattern)
			mergeInto(out, inner)
		}
	case Let:
		collectFreeVars(v.Value, out)
		inner := make(map[int]bool)
		collectFreeVars(v.Body, inner)
		removeBound(inner, v.Pattern)
		mergeInto(out, inner)
	case From:
		inner := make(map[int]bool)
		bound := make(map[int]bool)
		for _, s := range v.Sources {
			collectFreeVars(s.Expr, out) // source expressions are evaluated in the outer scope
			for _, id := range s.Pattern.Expand() {
				bound[id.Ordinal] = true
			}
		}
		for _, step := range v.Steps {
			switch st := step.(type) {
			case Scan:
				tmp := make(map[int]bool)
				collectFreeVars(st.Expr, tmp)
				if st.Cond != nil {
					collectFreeVars(st.Cond, tmp)
				}
				for ord := range tmp {
					if !bound[ord] {
						out[ord] = true
					}
				}
				for _, id := range st.Pattern.Expand() {
					bound[id.Ordinal] = true
				}
			case Where:
				collectFreeVars(st.Cond, inner)
			case Yield:
				collectFreeVars(st.Value, inner)
			case Group:
				for _, k := range st.Keys {
					collectFreeVars(k.Key, inner)
				}
				for _, a := range st.Aggs {
					collectFreeVars(a.Agg, inner)
				}
			case Order:
				for _, k := range st.Keys {
					collectFreeVars(k.Expr, inner)
				}
			}
		}
		for ord := range inner {
			if !bound[ord] {
				out[ord] = true
			}
		}
	}
}

func removeBound(vars map[int]bool, p Pattern) {
	for _, id := range p.Expand() {
		delete(vars, id.Ordinal)
	}
}

func mergeInto(dst, src map[int]bool) {
	for k := range src {
		dst[k] = true
	}
}
