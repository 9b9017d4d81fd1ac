package typescript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/teranos/jsbind/schema"
)

func TestDialect(t *testing.T) {
	d := New()

	assert.Equal(t, "typescript", d.Language())
	assert.Equal(t, "ts", d.FileExtension())
	assert.Equal(t, "amount: number", d.Param(schema.P("amount", schema.Int)))
	assert.Equal(t, "jsEngine: JavascriptEngine", d.Param(schema.P("jsEngine", schema.EngineBase.Ref())))
	assert.Equal(t, ": string", d.Annotation(schema.String))
	assert.Equal(t, ": Vector3", d.Annotation(schema.StructRef("Vector3")))
	assert.Equal(t, ": Promise<void>", d.PromiseAnnotation(schema.Void))
	assert.Equal(t, ": Promise<boolean>", d.PromiseAnnotation(schema.Bool))
}
