// Package util holds the pieces shared by every stub dialect: the mapping
// from descriptor kinds to script type names and default literals, and the
// relative import path computation.
package util

import (
	"strconv"
	"strings"

	"github.com/teranos/jsbind/schema"
)

// PendingPromise is the body value of every asynchronous method stub.
// It never settles; stubs exist for type information only.
const PendingPromise = "new Promise(() => {})"

// UnknownType is used for raw script values and anything without a mapping
const UnknownType = "unknown"

// TypeName returns the typed-dialect name for ref
func TypeName(ref schema.TypeRef) string {
	switch {
	case ref.Kind == schema.KindBool:
		return "boolean"
	case ref.Kind.IsNumeric():
		return "number"
	case ref.Kind == schema.KindString:
		return "string"
	case ref.Kind == schema.KindVoid:
		return "void"
	case ref.Named() && ref.Name != "":
		return ref.Name
	}
	return UnknownType
}

// PromiseTypeName returns the typed-dialect return type of an async method
// settling with resolves. An unset resolve type settles with void.
func PromiseTypeName(resolves schema.TypeRef) string {
	if resolves.Kind == schema.KindInvalid {
		resolves = schema.Void
	}
	return "Promise<" + TypeName(resolves) + ">"
}

// Prefix returns the untyped-dialect parameter prefix for ref: the lowercased
// kind for value kinds (int_, string_, float32_) and the type name for
// class and struct kinds (Vector3_).
func Prefix(ref schema.TypeRef) string {
	if ref.Named() && ref.Name != "" {
		return ref.Name + "_"
	}
	return strings.ToLower(ref.Kind.String()) + "_"
}

// PropertyDefault returns the initializer of a property stub
func PropertyDefault(ref schema.TypeRef) string {
	if ref.Kind == schema.KindString {
		return "''"
	}
	return zeroLiteral(ref)
}

// ReturnLiteral returns the value a method stub returns, or "" for void
func ReturnLiteral(ref schema.TypeRef) string {
	switch ref.Kind {
	case schema.KindVoid:
		return ""
	case schema.KindString:
		return `""`
	}
	return zeroLiteral(ref)
}

func zeroLiteral(ref schema.TypeRef) string {
	switch {
	case ref.Kind == schema.KindBool:
		return "false"
	case ref.Kind.IsNumeric():
		return "0"
	case ref.Named() && ref.Name != "":
		return "new " + ref.Name + "()"
	}
	return "undefined"
}

// LiveLiteral renders a property value read from a live engine instance.
// Values that cannot be expressed as a literal fall back to PropertyDefault.
func LiveLiteral(ref schema.TypeRef, value any) string {
	if value == nil {
		return PropertyDefault(ref)
	}
	switch ref.Kind {
	case schema.KindString:
		if s, ok := value.(string); ok {
			return quote(s)
		}
	case schema.KindBool:
		if b, ok := value.(bool); ok {
			return strconv.FormatBool(b)
		}
	default:
		if ref.Kind.IsNumeric() {
			if lit, ok := numberLiteral(value); ok {
				return lit
			}
		}
	}
	return PropertyDefault(ref)
}

func numberLiteral(value any) (string, bool) {
	switch v := value.(type) {
	case int:
		return strconv.FormatInt(int64(v), 10), true
	case int8:
		return strconv.FormatInt(int64(v), 10), true
	case int16:
		return strconv.FormatInt(int64(v), 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint8:
		return strconv.FormatUint(uint64(v), 10), true
	case uint16:
		return strconv.FormatUint(uint64(v), 10), true
	case uint32:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}
	return "", false
}

// quote renders s as a single-quoted script string
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
