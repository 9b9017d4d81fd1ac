// Package javascript renders untyped (.js) stub modules. Parameter names
// carry their type as a prefix instead of an annotation.
package javascript

import (
	"github.com/teranos/jsbind/schema"
	"github.com/teranos/jsbind/typegen/util"
)

// Dialect prefixes parameter names with a type token
type Dialect struct{}

// New returns the untyped dialect
func New() *Dialect { return &Dialect{} }

func (d *Dialect) Language() string { return "javascript" }

func (d *Dialect) FileExtension() string { return "js" }

func (d *Dialect) Param(p schema.Param) string {
	return util.Prefix(p.Type) + p.Name
}

func (d *Dialect) Annotation(schema.TypeRef) string { return "" }

func (d *Dialect) PromiseAnnotation(schema.TypeRef) string { return "" }
