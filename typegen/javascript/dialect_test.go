package javascript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/teranos/jsbind/schema"
)

func TestDialect(t *testing.T) {
	d := New()

	assert.Equal(t, "javascript", d.Language())
	assert.Equal(t, "js", d.FileExtension())
	assert.Equal(t, "int_amount", d.Param(schema.P("amount", schema.Int)))
	assert.Equal(t, "string_name", d.Param(schema.P("name", schema.String)))
	assert.Equal(t, "Vector3_position", d.Param(schema.P("position", schema.StructRef("Vector3"))))
	assert.Empty(t, d.Annotation(schema.String))
	assert.Empty(t, d.PromiseAnnotation(schema.Int))
}
