package typesystem

import (
	"fmt"
	"sort"
	"strings"
)

// Term is the term-graph representation unification actually operates
// over (spec §4.C): "type-term terms are either variables or
// apply(sequence-name, child terms)". Record terms are keyed by a
// synthesized sequence name that encodes the label list so that records
// with the same labels unify structurally regardless of insertion order.
type Term interface {
	isTerm()
	String() string
}

// TermVar is a unification variable — keyed by the same ordinal as the
// TVar it came from.
type TermVar struct{ Ordinal int }

func (TermVar) isTerm()         {}
func (v TermVar) String() string { return fmt.Sprintf("'t%d", v.Ordinal) }

// TermApp is `apply(ctor, children)`.
type TermApp struct {
	Ctor     string
	Children []Term
}

func (TermApp) isTerm() {}
func (a TermApp) String() string {
	if len(a.Children) == 0 {
		return a.Ctor
	}
	parts := make([]string, len(a.Children))
	for i, c := range a.Children {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%s(%s)", a.Ctor, strings.Join(parts, ", "))
}

// progressiveSentinel is the "z$dummy" label mentioned in spec §9's open
// questions: a unification-time hack that keeps a progressive record's
// shape open by giving it one extra label no real field ever uses. We
// keep it (rather than inventing a dedicated open-record term) because
// the spec explicitly asks an implementer to make that choice rather than
// silently porting it without comment — see DESIGN.md.
const progressiveSentinel = "$dummy"

func recordCtor(labels []string, progressive bool) string {
	ls := append([]string(nil), labels...)
	if progressive {
		ls = append(ls, progressiveSentinel)
	}
	return "record/" + strings.Join(ls, ",")
}

// ToTerm lowers a Type into its unification term.
func ToTerm(t Type) Term {
	switch v := t.(type) {
	case TVar:
		return TermVar{Ordinal: v.Ordinal}
	case TPrim:
		return TermApp{Ctor: "prim:" + string(v.Name)}
	case TTuple:
		children := make([]Term, len(v.Elements))
		for i, e := range v.Elements {
			children[i] = ToTerm(e)
		}
		return TermApp{Ctor: fmt.Sprintf("tuple/%d", len(v.Elements)), Children: children}
	case TRecord:
		labels := append([]string(nil), v.Labels...)
		sort.Strings(labels)
		children := make([]Term, len(labels))
		for i, l := range labels {
			children[i] = ToTerm(v.Fields[l])
		}
		return TermApp{Ctor: recordCtor(labels, v.Progressive), Children: children}
	case TList:
		return TermApp{Ctor: "list", Children: []Term{ToTerm(v.Elem)}}
	case TBag:
		return TermApp{Ctor: "bag", Children: []Term{ToTerm(v.Elem)}}
	case TFunc:
		return TermApp{Ctor: "func", Children: []Term{ToTerm(v.Param), ToTerm(v.Result)}}
	case TData:
		children := make([]Term, len(v.Args))
		for i, a := range v.Args {
			children[i] = ToTerm(a)
		}
		return TermApp{Ctor: "data:" + v.Name, Children: children}
	case TForall:
		ords := make([]int, len(v.Vars))
		for i, tv := range v.Vars {
			ords[i] = tv.Ordinal
		}
		sort.Ints(ords)
		names := make([]string, len(ords))
		for i, o := range ords {
			names[i] = fmt.Sprintf("%d", o)
		}
		return TermApp{Ctor: "forall:" + strings.Join(names, ","), Children: []Term{ToTerm(v.Body)}}
	default:
		return TermApp{Ctor: t.String()}
	}
}

// fromTermRecordLabels recovers a record's label list (and progressiveness)
// from a "record/l1,l2,...[,$dummy]" ctor name.
func fromTermRecordLabels(ctor string) ([]string, bool) {
	rest := strings.TrimPrefix(ctor, "record/")
	if rest == "" {
		return nil, false
	}
	labels := strings.Split(rest, ",")
	progressive := false
	if len(labels) > 0 && labels[len(labels)-1] == progressiveSentinel {
		progressive = true
		labels = labels[:len(labels)-1]
	}
	return labels, progressive
}

// FromTerm raises a unification term back to a Type.
func FromTerm(term Term) Type {
	switch v := term.(type) {
	case TermVar:
		return TVar{Ordinal: v.Ordinal}
	case TermApp:
		switch {
		case strings.HasPrefix(v.Ctor, "prim:"):
			return TPrim{Name: Primitive(strings.TrimPrefix(v.Ctor, "prim:"))}
		case strings.HasPrefix(v.Ctor, "tuple/"):
			elems := make([]Type, len(v.Children))
			for i, c := range v.Children {
				elems[i] = FromTerm(c)
			}
			return TTuple{Elements: elems}
		case strings.HasPrefix(v.Ctor, "record/"):
			labels, progressive := fromTermRecordLabels(v.Ctor)
			fields := make(map[string]Type, len(labels))
			for i, l := range labels {
				fields[l] = FromTerm(v.Children[i])
			}
			return TRecord{Labels: labels, Fields: fields, Progressive: progressive}
		case v.Ctor == "list":
			return TList{Elem: FromTerm(v.Children[0])}
		case v.Ctor == "bag":
			return TBag{Elem: FromTerm(v.Children[0])}
		case v.Ctor == "func":
			return TFunc{Param: FromTerm(v.Children[0]), Result: FromTerm(v.Children[1])}
		case strings.HasPrefix(v.Ctor, "data:"):
			args := make([]Type, len(v.Children))
			for i, c := range v.Children {
				args[i] = FromTerm(c)
			}
			return TData{Name: strings.TrimPrefix(v.Ctor, "data:"), Args: args}
		case strings.HasPrefix(v.Ctor, "forall:"):
			names := strings.Split(strings.TrimPrefix(v.Ctor, "forall:"), ",")
			vars := make([]TVar, 0, len(names))
			for _, n := range names {
				var ord int
				fmt.Sscanf(n, "%d", &ord)
				vars = append(vars, TVar{Ordinal: ord})
			}
			return TForall{Vars: vars, Body: FromTerm(v.Children[0])}
		}
	}
	return nil
}

// termSubst maps variable ordinals to terms; applyTerm substitutes.
type termSubst map[int]Term

func applyTerm(t Term, s termSubst) Term {
	switch v := t.(type) {
	case TermVar:
		if repl, ok := s[v.Ordinal]; ok {
			return applyTerm(repl, s)
		}
		return v
	case TermApp:
		if len(v.Children) == 0 {
			return v
		}
		children := make([]Term, len(v.Children))
		for i, c := range v.Children {
			children[i] = applyTerm(c, s)
		}
		return TermApp{Ctor: v.Ctor, Children: children}
	}
	return t
}

func occurs(ordinal int, t Term) bool {
	switch v := t.(type) {
	case TermVar:
		return v.Ordinal == ordinal
	case TermApp:
		for _, c := range v.Children {
			if occurs(ordinal, c) {
				return true
			}
		}
	}
	return false
}

func bindVar(ordinal int, t Term, s termSubst) (termSubst, error) {
	if tv, ok := t.(TermVar); ok && tv.Ordinal == ordinal {
		return s, nil
	}
	if occurs(ordinal, t) {
		return nil, fmt.Errorf("occurs check failed: 't%d occurs in %s", ordinal, t.String())
	}
	next := make(termSubst, len(s)+1)
	for k, v := range s {
		next[k] = v
	}
	next[ordinal] = t
	return next, nil
}

// unifyTerms implements Martelli–Montanari unification by repeated
// substitution with occurs-check (spec §4.C).
func unifyTerms(a, b Term, s termSubst) (termSubst, error) {
	a = applyTerm(a, s)
	b = applyTerm(b, s)

	if av, ok := a.(TermVar); ok {
		if bv, ok := b.(TermVar); ok && bv.Ordinal == av.Ordinal {
			return s, nil
		}
		return bindVar(av.Ordinal, b, s)
	}
	if bv, ok := b.(TermVar); ok {
		return bindVar(bv.Ordinal, a, s)
	}

	aApp, aOk := a.(TermApp)
	bApp, bOk := b.(TermApp)
	if !aOk || !bOk {
		return nil, fmt.Errorf("cannot unify %s with %s", a, b)
	}
	if aApp.Ctor != bApp.Ctor {
		return nil, fmt.Errorf("cannot unify %s with %s: constructor mismatch", a, b)
	}
	if len(aApp.Children) != len(bApp.Children) {
		return nil, fmt.Errorf("cannot unify %s with %s: arity mismatch", a, b)
	}
	cur := s
	for i := range aApp.Children {
		var err error
		cur, err = unifyTerms(aApp.Children[i], bApp.Children[i], cur)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// Unify finds a substitution making t1 and t2 equal, or returns an error.
// It is consulted from internal/invert's rule 6/7 inlining to specialize a
// function body's type annotations to a call site's argument type before
// substitution runs (spec §4.C).
func Unify(t1, t2 Type) (Subst, error) {
	raw, err := unifyTerms(ToTerm(t1), ToTerm(t2), termSubst{})
	if err != nil {
		return nil, err
	}
	out := make(Subst, len(raw))
	for ord, term := range raw {
		out[ord] = FromTerm(applyTerm(term, raw))
	}
	return out, nil
}
