package typegen

import (
	"sort"

	"github.com/teranos/jsbind/schema"
)

// Result holds the modules produced by one generation pass, in the order
// they are written: each engine's dependency modules first, then the engine.
type Result struct {
	Modules []*Module
}

// Module is one rendered stub module.
type Module struct {
	// Path is the absolute file path the module is written to
	Path string

	// Type is the descriptor the module declares
	Type *schema.Type

	// Engine is set for engine modules (the ones exporting a singleton)
	Engine bool

	// Text is the rendered module source, "\n" line endings
	Text string

	// Imports maps imported type names to the relative import paths used
	Imports map[string]string
}

// Module finds the module declaring a type by name
func (r *Result) Module(name string) (*Module, bool) {
	if r == nil {
		return nil, false
	}
	for _, m := range r.Modules {
		if m.Type.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Paths returns every module path, sorted
func (r *Result) Paths() []string {
	if r == nil {
		return nil
	}
	paths := make([]string, 0, len(r.Modules))
	for _, m := range r.Modules {
		paths = append(paths, m.Path)
	}
	sort.Strings(paths)
	return paths
}
