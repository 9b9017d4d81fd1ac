package schema

import (
	"strings"

	"github.com/teranos/jsbind/errors"
)

// Shape distinguishes reference types from value types
type Shape int

const (
	ShapeClass Shape = iota
	ShapeStruct
)

// EngineBaseName is the name of the binder's own base type. Engine roots
// extend it; it is never bound into an interpreter.
const EngineBaseName = "JavascriptEngine"

// EngineBase is the descriptor of the binder's own base type.
var EngineBase = Class(EngineBaseName, "Jsbind", "Runtime")

// Getter reads a property from a host value
type Getter func(self any) any

// Setter writes a property on a host value
type Setter func(self any, value any) error

// Invoker calls a method on a host value
type Invoker func(self any, args Args) (any, error)

// Factory constructs a host value from constructor arguments
type Factory func(args Args) (any, error)

// Param is a named, typed parameter
type Param struct {
	Name string
	Type TypeRef
}

// P is shorthand for a Param literal
func P(name string, typ TypeRef) Param {
	return Param{Name: name, Type: typ}
}

// Property is a readable and/or writable member. Only properties with both
// a getter and a setter are exposed.
type Property struct {
	Name string
	Type TypeRef
	Get  Getter
	Set  Setter
}

// CanRead reports whether the property has a getter
func (p Property) CanRead() bool { return p.Get != nil }

// CanWrite reports whether the property has a setter
func (p Property) CanWrite() bool { return p.Set != nil }

// Method is a callable member
type Method struct {
	Name    string
	Params  []Param
	Returns TypeRef
	// Resolves is the type an asynchronous method settles with (Void when unset)
	Resolves TypeRef
	Invoke   Invoker
}

// Constructor is one constructor overload
type Constructor struct {
	Params []Param
	New    Factory
}

// Type is the descriptor of a bindable host type.
// Built once with the fluent helpers below and not modified afterwards.
type Type struct {
	Name      string
	Namespace []string
	Shape     Shape
	// Bases lists every supertype name, nearest first
	Bases        []string
	Constructors []Constructor
	Properties   []Property
	Methods      []Method
}

// Describer is implemented by host types that can be bound or generated.
type Describer interface {
	Describe() *Type
}

// Root is an engine: a bindable type plus the set of types its scripts see.
type Root interface {
	Describer
	TypesToBind() []*Type
}

// Class starts a class descriptor
func Class(name string, namespace ...string) *Type {
	return &Type{Name: name, Namespace: namespace, Shape: ShapeClass}
}

// Struct starts a value-type descriptor
func Struct(name string, namespace ...string) *Type {
	return &Type{Name: name, Namespace: namespace, Shape: ShapeStruct}
}

// Extends records base and all of its supertypes
func (t *Type) Extends(base *Type) *Type {
	t.Bases = append(t.Bases, base.Name)
	t.Bases = append(t.Bases, base.Bases...)
	return t
}

// ExtendsName records a supertype known only by name (e.g. a host behaviour base)
func (t *Type) ExtendsName(names ...string) *Type {
	t.Bases = append(t.Bases, names...)
	return t
}

// Constructor adds a constructor overload
func (t *Type) Constructor(fn Factory, params ...Param) *Type {
	t.Constructors = append(t.Constructors, Constructor{Params: params, New: fn})
	return t
}

// Property adds a property. A nil get or set makes it read- or write-only,
// which excludes it from binding and generation.
func (t *Type) Property(name string, typ TypeRef, get Getter, set Setter) *Type {
	t.Properties = append(t.Properties, Property{Name: name, Type: typ, Get: get, Set: set})
	return t
}

// Method adds a method
func (t *Type) Method(name string, returns TypeRef, fn Invoker, params ...Param) *Type {
	t.Methods = append(t.Methods, Method{Name: name, Params: params, Returns: returns, Resolves: Void, Invoke: fn})
	return t
}

// AsyncMethod adds a promise-returning method settling with resolves.
// The name must carry the policy's async suffix to be classified asynchronous.
func (t *Type) AsyncMethod(name string, resolves TypeRef, fn Invoker, params ...Param) *Type {
	t.Methods = append(t.Methods, Method{Name: name, Params: params, Returns: ScriptValue, Resolves: resolves, Invoke: fn})
	return t
}

// Ref returns a reference to this type
func (t *Type) Ref() TypeRef {
	if t.Shape == ShapeStruct {
		return StructRef(t.Name)
	}
	return ClassRef(t.Name)
}

// IsClass reports class shape
func (t *Type) IsClass() bool {
	return t.Shape == ShapeClass
}

// DerivesFrom reports whether t is, or has a supertype named, name
func (t *Type) DerivesFrom(name string) bool {
	if name == "" {
		return false
	}
	if t.Name == name {
		return true
	}
	for _, b := range t.Bases {
		if b == name {
			return true
		}
	}
	return false
}

// FullName joins namespace and name with dots
func (t *Type) FullName() string {
	if len(t.Namespace) == 0 {
		return t.Name
	}
	return strings.Join(t.Namespace, ".") + "." + t.Name
}

// MethodByName finds a method
func (t *Type) MethodByName(name string) (Method, bool) {
	for _, m := range t.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return Method{}, false
}

// PropertyByName finds a property
func (t *Type) PropertyByName(name string) (Property, bool) {
	for _, p := range t.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Validate checks that the descriptor can be rendered and bound: identifiers
// are well formed and member names are unique.
func (t *Type) Validate() error {
	if t == nil {
		return errors.NewInvalidDescriptorError("nil type")
	}
	if !IsIdentifier(t.Name) {
		return errors.NewInvalidDescriptorError("type name %q is not an identifier", t.Name)
	}
	for _, seg := range t.Namespace {
		if !IsIdentifier(seg) {
			return errors.NewInvalidDescriptorError("%s: namespace segment %q is not an identifier", t.Name, seg)
		}
	}

	seen := make(map[string]bool)
	for _, p := range t.Properties {
		if !IsIdentifier(p.Name) {
			return errors.NewInvalidDescriptorError("%s: property name %q is not an identifier", t.Name, p.Name)
		}
		if seen[p.Name] {
			return errors.NewInvalidDescriptorError("%s: duplicate member %q", t.Name, p.Name)
		}
		seen[p.Name] = true
	}
	for _, m := range t.Methods {
		if !IsIdentifier(m.Name) {
			return errors.NewInvalidDescriptorError("%s: method name %q is not an identifier", t.Name, m.Name)
		}
		if seen[m.Name] {
			return errors.NewInvalidDescriptorError("%s: duplicate member %q", t.Name, m.Name)
		}
		seen[m.Name] = true
		if err := validateParams(t.Name+"."+m.Name, m.Params); err != nil {
			return err
		}
	}
	for i, c := range t.Constructors {
		if err := validateParams(t.Name+".constructor", c.Params); err != nil {
			return err
		}
		for j := 0; j < i; j++ {
			if len(t.Constructors[j].Params) == len(c.Params) {
				return errors.NewInvalidDescriptorError("%s: two constructors take %d parameters", t.Name, len(c.Params))
			}
		}
	}
	return nil
}

func validateParams(owner string, params []Param) error {
	names := make(map[string]bool, len(params))
	for _, p := range params {
		if !IsIdentifier(p.Name) {
			return errors.NewInvalidDescriptorError("%s: parameter name %q is not an identifier", owner, p.Name)
		}
		if names[p.Name] {
			return errors.NewInvalidDescriptorError("%s: duplicate parameter %q", owner, p.Name)
		}
		names[p.Name] = true
	}
	return nil
}

// IsIdentifier reports whether s is a plain ASCII script identifier
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || c == '$':
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
