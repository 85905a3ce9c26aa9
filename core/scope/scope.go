// Package scope implements §3's Scope: an ordered stack of name->Value
// mappings plus a segregated globals mapping for the `global.x` access
// path. The qualifier is an access path, not a lexical parent (§9 Design
// Notes), so it is held apart from the layer stack rather than being
// "the outermost layer".
package scope

import (
	ferrors "finsim/internal/errors"
)

// Reserved is the set of identifiers §3 invariant 2 forbids binding,
// outside of the engine-provided exceptions ("result" in exec/for bodies,
// "i" as the loop counter).
var Reserved = map[string]bool{
	"global": true,
	"result": true,
	"i":      true,
	"random": true,
	"and":    true,
	"or":     true,
	"not":    true,
}

// Scope is a stack of layers plus the global mapping accessed through
// `global.x`.
type Scope struct {
	globals map[string]float64
	layers  []map[string]float64
}

// NewGlobal creates a Scope whose only layer is the global layer; used
// for evaluating top-level expressions directly against the globals.
func NewGlobal(globals map[string]float64) *Scope {
	g := make(map[string]float64, len(globals))
	for k, v := range globals {
		g[k] = v
	}
	return &Scope{globals: g, layers: []map[string]float64{g}}
}

// Child creates a new innermost layer on top of s, inheriting lookups
// from s but writing only to the new layer. Used for a resource's local
// scope layered on the current globals (§3 Lifecycle), and for a
// for-loop iteration frame layered on preprocess variables (§4.D).
func (s *Scope) Child() *Scope {
	layers := make([]map[string]float64, len(s.layers)+1)
	copy(layers, s.layers)
	layers[len(layers)-1] = make(map[string]float64)
	return &Scope{globals: s.globals, layers: layers}
}

// Get looks up name, traversing layers inner-to-outer.
func (s *Scope) Get(name string) (float64, error) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		if v, ok := s.layers[i][name]; ok {
			return v, nil
		}
	}
	return 0, ferrors.UndefinedName(name)
}

// GetGlobal resolves a `global.x` qualified access: it consults only the
// global-scope layer, never the inner layers (§4.C Name resolution).
func (s *Scope) GetGlobal(name string) (float64, error) {
	v, ok := s.globals[name]
	if !ok {
		return 0, ferrors.UndefinedName("global." + name)
	}
	return v, nil
}

// Set stores into the innermost layer (§3 Scope: "Writes always target
// the innermost layer").
func (s *Scope) Set(name string, v float64) {
	s.layers[len(s.layers)-1][name] = v
}

// Globals returns a copy of the global layer, e.g. for a Report snapshot.
func (s *Scope) Globals() map[string]float64 {
	out := make(map[string]float64, len(s.globals))
	for k, v := range s.globals {
		out[k] = v
	}
	return out
}
