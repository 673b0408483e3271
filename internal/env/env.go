// Package env implements the persistent, chainable variable->binding
// environment (spec §4.B). Lookup walks the chain from the youngest
// binding; Bind and BulkBind apply the obscuring optimizations spec §4.B
// calls out explicitly rather than leaving them as an afterthought.
package env

import (
	"github.com/relground/ground/internal/ir"
	"github.com/relground/ground/internal/typesystem"
)

// Binding is what an Env maps a variable to: its id-pattern, its value
// type, and an optional inlined value (nil when the binding has none).
type Binding struct {
	Pat   *ir.IdPattern
	Typ   typesystem.Type
	Value ir.Expr // nilable
}

// Env is an immutable, chainable environment. The zero value (a nil
// *Env) is the empty environment; every method is safe to call on it.
type Env struct {
	parent *Env

	// Single-binding frame (isMap == false).
	name    string
	ordinal int
	binding Binding

	// Map frame (isMap == true) — built by BulkBind when >=5 bindings
	// are added at once.
	isMap     bool
	entries   map[int]Binding
	nameIndex map[string][]int // name -> ordinals, in bind order
}

// Bind returns a new environment with b added as the youngest binding.
// When b would obscure a same-name binding immediately below (spec
// §4.B), the implementation re-parents past that binding instead of
// stacking on top of it, keeping the chain from growing for the common
// case of repeatedly shadowing one name (e.g. loop-carried rebinding).
func (e *Env) Bind(b Binding) *Env {
	parent := e
	if e != nil && !e.isMap && e.name == b.Pat.Name {
		parent = e.parent
	}
	return &Env{parent: parent, name: b.Pat.Name, ordinal: b.Pat.Ordinal, binding: b}
}

// BulkBind adds many bindings at once. Fewer than 5 bindings falls back
// to sequential Bind calls; 5 or more builds a single map frame whose
// parent is the nearest ancestor not completely obscured by the new
// name set (spec §4.B) — entirely-obscured ancestor frames are skipped,
// so the chain doesn't carry dead weight forward.
func (e *Env) BulkBind(bindings []Binding) *Env {
	if len(bindings) < 5 {
		cur := e
		for _, b := range bindings {
			cur = cur.Bind(b)
		}
		return cur
	}

	newNames := make(map[string]bool, len(bindings))
	for _, b := range bindings {
		newNames[b.Pat.Name] = true
	}

	parent := e
	for parent != nil {
		if parent.isMap {
			obscured := true
			for n := range parent.nameIndex {
				if !newNames[n] {
					obscured = false
					break
				}
			}
			if !obscured {
				break
			}
			parent = parent.parent
		} else {
			if !newNames[parent.name] {
				break
			}
			parent = parent.parent
		}
	}

	entries := make(map[int]Binding, len(bindings))
	nameIndex := make(map[string][]int, len(bindings))
	for _, b := range bindings {
		entries[b.Pat.Ordinal] = b
		nameIndex[b.Pat.Name] = append(nameIndex[b.Pat.Name], b.Pat.Ordinal)
	}
	return &Env{parent: parent, isMap: true, entries: entries, nameIndex: nameIndex}
}

// Get returns the binding for a specific id-pattern (matched by
// ordinal — ordinals are unique within scope), searching from the
// youngest binding down. It stops at the first match.
func (e *Env) Get(pat *ir.IdPattern) (Binding, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.isMap {
			if b, ok := cur.entries[pat.Ordinal]; ok {
				return b, true
			}
			continue
		}
		if cur.ordinal == pat.Ordinal {
			return cur.binding, true
		}
	}
	return Binding{}, false
}

// GetTop returns the youngest binding with the given name, regardless of
// ordinal (spec §4.B).
func (e *Env) GetTop(name string) (Binding, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.isMap {
			if ords, ok := cur.nameIndex[name]; ok {
				return cur.entries[ords[len(ords)-1]], true
			}
			continue
		}
		if cur.name == name {
			return cur.binding, true
		}
	}
	return Binding{}, false
}

// Depth returns the number of frames in the chain — exposed for tests
// that check the obscuring optimization actually bounds chain growth.
func (e *Env) Depth() int {
	n := 0
	for cur := e; cur != nil; cur = cur.parent {
		n++
	}
	return n
}

// Bindings flattens the chain into the set of bindings currently
// visible, youngest shadowing oldest — used by internal/envcache to
// snapshot an environment for persistence.
func (e *Env) Bindings() []Binding {
	seen := map[int]bool{}
	var out []Binding
	for cur := e; cur != nil; cur = cur.parent {
		if cur.isMap {
			for ord, b := range cur.entries {
				if !seen[ord] {
					seen[ord] = true
					out = append(out, b)
				}
			}
			continue
		}
		if !seen[cur.ordinal] {
			seen[cur.ordinal] = true
			out = append(out, cur.binding)
		}
	}
	return out
}
