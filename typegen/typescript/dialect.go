// Package typescript renders typed (.ts) stub modules.
package typescript

import (
	"github.com/teranos/jsbind/schema"
	"github.com/teranos/jsbind/typegen/util"
)

// Dialect appends ": <type>" to parameters, properties and returns
type Dialect struct{}

// New returns the typed dialect
func New() *Dialect { return &Dialect{} }

func (d *Dialect) Language() string { return "typescript" }

func (d *Dialect) FileExtension() string { return "ts" }

func (d *Dialect) Param(p schema.Param) string {
	return p.Name + ": " + util.TypeName(p.Type)
}

func (d *Dialect) Annotation(ref schema.TypeRef) string {
	return ": " + util.TypeName(ref)
}

func (d *Dialect) PromiseAnnotation(resolves schema.TypeRef) string {
	return ": " + util.PromiseTypeName(resolves)
}
