// Package schema describes host types that can be bound into a script
// interpreter and rendered as declaration stubs.
//
// Bindable types implement Describer and return a *Type built once at init;
// nothing in jsbind inspects Go values reflectively to discover members.
package schema

// Kind classifies the value carried by a property, parameter or return.
type Kind int

const (
	KindInvalid Kind = iota
	KindVoid
	KindBool
	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindString
	// KindClass is a reference type with its own descriptor
	KindClass
	// KindStruct is a value type; only bindable when whitelisted by an engine
	KindStruct
	// KindScriptValue is a raw interpreter value, used for promise returns
	KindScriptValue
	// KindAny is an arbitrary host value; never valid as a member type
	KindAny
)

var kindNames = map[Kind]string{
	KindInvalid:     "invalid",
	KindVoid:        "void",
	KindBool:        "bool",
	KindInt:         "int",
	KindInt8:        "int8",
	KindInt16:       "int16",
	KindInt32:       "int32",
	KindInt64:       "int64",
	KindUint:        "uint",
	KindUint8:       "uint8",
	KindUint16:      "uint16",
	KindUint32:      "uint32",
	KindUint64:      "uint64",
	KindFloat32:     "float32",
	KindFloat64:     "float64",
	KindString:      "string",
	KindClass:       "class",
	KindStruct:      "struct",
	KindScriptValue: "scriptvalue",
	KindAny:         "any",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// IsNumeric reports fixed-width and floating numeric kinds
func (k Kind) IsNumeric() bool {
	return k >= KindInt && k <= KindFloat64
}

// IsFloat reports floating point kinds
func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// IsPrimitive reports kinds that are valid without a type descriptor
func (k Kind) IsPrimitive() bool {
	return k == KindBool || k == KindString || k.IsNumeric()
}

// TypeRef references the type of a member, parameter or return value.
type TypeRef struct {
	Kind Kind
	// Name is the referenced type's name for class and struct kinds
	Name string
}

// Primitive type references
var (
	Void        = TypeRef{Kind: KindVoid}
	Bool        = TypeRef{Kind: KindBool}
	Int         = TypeRef{Kind: KindInt}
	Int32       = TypeRef{Kind: KindInt32}
	Int64       = TypeRef{Kind: KindInt64}
	Float32     = TypeRef{Kind: KindFloat32}
	Float64     = TypeRef{Kind: KindFloat64}
	String      = TypeRef{Kind: KindString}
	ScriptValue = TypeRef{Kind: KindScriptValue}
	Any         = TypeRef{Kind: KindAny}
)

// ClassRef references a class by name
func ClassRef(name string) TypeRef {
	return TypeRef{Kind: KindClass, Name: name}
}

// StructRef references a value type by name
func StructRef(name string) TypeRef {
	return TypeRef{Kind: KindStruct, Name: name}
}

// Named reports whether the reference points at a described type
func (r TypeRef) Named() bool {
	return r.Kind == KindClass || r.Kind == KindStruct
}

func (r TypeRef) String() string {
	if r.Named() {
		return r.Name
	}
	return r.Kind.String()
}
