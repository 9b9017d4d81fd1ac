package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teranos/jsbind/errors"
)

func noop(self any, args Args) (any, error) { return nil, nil }

type testRoot struct {
	self  *Type
	types []*Type
}

func (r testRoot) Describe() *Type      { return r.self }
func (r testRoot) TypesToBind() []*Type { return r.types }

func TestIsAsync(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name   string
		method Method
		want   bool
	}{
		{"suffix and script value", Method{Name: "DoThingJsAsync", Returns: ScriptValue}, true},
		{"suffix any case", Method{Name: "dothingjsasync", Returns: ScriptValue}, true},
		{"no suffix", Method{Name: "DoThing", Returns: ScriptValue}, false},
		{"suffix but string return", Method{Name: "DoThingJsAsync", Returns: String}, false},
		{"suffix but void", Method{Name: "DoThingJsAsync", Returns: Void}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.IsAsync(tt.method))
		})
	}
}

func TestIsAsync_CustomSuffix(t *testing.T) {
	p := Policy{AsyncSuffix: "Later"}
	assert.True(t, p.IsAsync(Method{Name: "FetchLater", Returns: ScriptValue}))
	assert.False(t, p.IsAsync(Method{Name: "FetchJsAsync", Returns: ScriptValue}))
}

func TestBindable(t *testing.T) {
	p := DefaultPolicy()

	plain := Class("Plain")
	behaviour := Class("Panel").ExtendsName("MonoBehaviour")
	engine := Class("SampleEngine").Extends(EngineBase)
	derivedEngine := Class("Sub").Extends(engine)
	vec := Struct("Vector3")

	assert.True(t, p.Bindable(plain))
	assert.False(t, p.Bindable(behaviour), "behaviour derived types are excluded")
	assert.False(t, p.Bindable(engine), "engines are never bound")
	assert.False(t, p.Bindable(derivedEngine))
	assert.False(t, p.Bindable(EngineBase))
	assert.False(t, p.Bindable(vec), "value types are not bound as classes")
	assert.False(t, p.Bindable(nil))
}

func TestValidType(t *testing.T) {
	p := DefaultPolicy()
	vec := Struct("Vector3")
	other := Struct("Quaternion")
	scope := ScopeOf(vec)

	assert.True(t, p.ValidType(Int, scope, false))
	assert.True(t, p.ValidType(Float32, scope, false))
	assert.True(t, p.ValidType(String, scope, false))
	assert.True(t, p.ValidType(ScriptValue, scope, false))
	assert.True(t, p.ValidType(Void, scope, true))
	assert.False(t, p.ValidType(Void, scope, false), "void is only a return type")
	assert.False(t, p.ValidType(Any, scope, false))

	assert.True(t, p.ValidType(vec.Ref(), scope, false), "declared struct")
	assert.False(t, p.ValidType(other.Ref(), scope, false), "undeclared struct")

	assert.True(t, p.ValidType(ClassRef("Anything"), scope, false))
	assert.False(t, p.ValidType(ClassRef("MonoBehaviour"), scope, false))
	assert.False(t, p.ValidType(ClassRef(EngineBaseName), scope, false))
}

func TestValidType_ExcludedClassInScope(t *testing.T) {
	p := DefaultPolicy()
	panel := Class("Panel").ExtendsName("MonoBehaviour")
	engine := Class("SampleEngine").Extends(EngineBase)
	scope := NewScope(p, testRoot{self: engine})
	scope.add(panel)

	assert.False(t, p.ValidType(panel.Ref(), scope, false))
	assert.False(t, p.ValidType(engine.Ref(), scope, false))
}

func TestValidMembers(t *testing.T) {
	p := DefaultPolicy()
	scope := ScopeOf()
	get := func(any) any { return nil }
	set := func(any, any) error { return nil }

	assert.True(t, p.ValidProperty(Property{Name: "A", Type: Int, Get: get, Set: set}, scope))
	assert.False(t, p.ValidProperty(Property{Name: "A", Type: Int, Get: get}, scope), "read-only")
	assert.False(t, p.ValidProperty(Property{Name: "A", Type: Int, Set: set}, scope), "write-only")
	assert.False(t, p.ValidProperty(Property{Name: "A", Type: Void, Get: get, Set: set}, scope))

	assert.True(t, p.ValidMethod(Method{Name: "M", Returns: Void, Params: []Param{P("a", Int)}}, scope))
	assert.False(t, p.ValidMethod(Method{Name: "M", Returns: Void, Params: []Param{P("a", Any)}}, scope))
	assert.False(t, p.ValidMethod(Method{Name: "M", Returns: StructRef("Nope")}, scope))
}

func TestNewScope(t *testing.T) {
	p := DefaultPolicy()
	vec := Struct("Vector3")
	sample := Class("SampleClass")
	engine := Class("SampleEngine").Extends(EngineBase)
	scope := NewScope(p, testRoot{self: engine, types: []*Type{sample, vec, nil}})

	assert.True(t, scope.Declared("Vector3"))
	assert.True(t, scope.Declared("SampleClass"))
	assert.False(t, scope.Declared("SampleEngine"), "the engine is visible but not declared")

	got, ok := scope.Lookup("SampleEngine")
	require.True(t, ok)
	assert.Same(t, engine, got)
	_, ok = scope.Lookup(EngineBaseName)
	assert.True(t, ok)

	empty := NewScope(p, nil)
	assert.False(t, empty.Declared("Vector3"))

	var nilScope *Scope
	assert.False(t, nilScope.Declared("x"))
}

func TestTypeBuilders(t *testing.T) {
	engine := Class("SampleEngine", "Jsbind", "Samples").Extends(EngineBase)
	sub := Class("Sub").Extends(engine)

	assert.Equal(t, []string{"SampleEngine", EngineBaseName}, sub.Bases)
	assert.True(t, sub.DerivesFrom(EngineBaseName))
	assert.True(t, sub.DerivesFrom("Sub"))
	assert.False(t, sub.DerivesFrom(""))
	assert.Equal(t, "Jsbind.Samples.SampleEngine", engine.FullName())
	assert.Equal(t, "Sub", sub.FullName())

	typ := Class("Thing").
		Property("Name", String, func(any) any { return "" }, func(any, any) error { return nil }).
		Method("Say", Void, noop, P("text", String)).
		AsyncMethod("MoveJsAsync", Void, noop, P("x", Float32))

	m, ok := typ.MethodByName("MoveJsAsync")
	require.True(t, ok)
	assert.Equal(t, ScriptValue, m.Returns)
	assert.True(t, DefaultPolicy().IsAsync(m))

	_, ok = typ.PropertyByName("Name")
	assert.True(t, ok)
	_, ok = typ.MethodByName("Missing")
	assert.False(t, ok)

	assert.Equal(t, ClassRef("Thing"), typ.Ref())
	assert.Equal(t, StructRef("V"), Struct("V").Ref())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		typ  *Type
	}{
		{"nil", nil},
		{"bad name", Class("1Thing")},
		{"bad namespace", Class("Thing", "a.b")},
		{"duplicate member", Class("Thing").Method("A", Void, noop).Method("A", Void, noop)},
		{"property and method clash", Class("Thing").
			Property("A", Int, func(any) any { return 0 }, nil).
			Method("A", Void, noop)},
		{"duplicate param", Class("Thing").Method("A", Void, noop, P("x", Int), P("x", Int))},
		{"same arity constructors", Class("Thing").
			Constructor(nil, P("a", Int)).
			Constructor(nil, P("b", String))},
		{"bad param name", Class("Thing").Constructor(nil, P("my-param", Int))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.typ.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidDescriptor))
		})
	}

	ok := Class("Thing", "Ns").
		Constructor(nil).
		Constructor(nil, P("name", String)).
		Method("Do_$1", Void, noop)
	assert.NoError(t, ok.Validate())
}

func TestKind(t *testing.T) {
	assert.Equal(t, "int", KindInt.String())
	assert.Equal(t, "string", KindString.String())
	assert.Equal(t, "invalid", Kind(999).String())
	assert.True(t, KindUint16.IsNumeric())
	assert.False(t, KindString.IsNumeric())
	assert.True(t, KindFloat32.IsFloat())
	assert.True(t, KindBool.IsPrimitive())
	assert.False(t, KindStruct.IsPrimitive())
	assert.Equal(t, "Vector3", StructRef("Vector3").String())
	assert.Equal(t, "float32", Float32.String())
}

func TestArgs(t *testing.T) {
	args := Args{"hello", true, int32(7), float32(1.5), 2.75, nil}

	assert.Equal(t, 6, args.Len())
	assert.Equal(t, "hello", args.String(0))
	assert.True(t, args.Bool(1))
	assert.Equal(t, 7, args.Int(2))
	assert.Equal(t, int64(7), args.Int64(2))
	assert.Equal(t, float32(1.5), args.Float32(3))
	assert.Equal(t, 2.75, args.Float64(4))
	assert.Equal(t, int64(2), args.Int64(4), "floats truncate")
	assert.Equal(t, float64(7), args.Float64(2))
	assert.Equal(t, "", args.String(5))
	assert.Equal(t, "7", args.String(2))

	assert.Nil(t, args.Value(-1))
	assert.Nil(t, args.Value(10))
	assert.False(t, args.Bool(0))
	assert.Equal(t, 0, args.Int(0))
}
