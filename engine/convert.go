package engine

import (
	"math"

	"github.com/dop251/goja"

	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/schema"
)

// convertArgs converts script arguments to the Go type of each parameter.
// Missing arguments convert from undefined; extra arguments are ignored.
func (b *Binder) convertArgs(values []goja.Value, params []schema.Param) (schema.Args, error) {
	args := make(schema.Args, len(params))
	for i, p := range params {
		v := goja.Undefined()
		if i < len(values) {
			v = values[i]
		}
		converted, err := b.toGo(v, p.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %s", p.Name)
		}
		args[i] = converted
	}
	return args, nil
}

// toGo converts a script value to the Go type matching ref's kind
func (b *Binder) toGo(v goja.Value, ref schema.TypeRef) (any, error) {
	if v == nil {
		v = goja.Undefined()
	}
	absent := goja.IsUndefined(v) || goja.IsNull(v)

	switch ref.Kind {
	case schema.KindBool:
		return v.ToBoolean(), nil
	case schema.KindString:
		if absent {
			return "", nil
		}
		return v.String(), nil
	case schema.KindInt:
		return int(integer(v)), nil
	case schema.KindInt8:
		return int8(integer(v)), nil
	case schema.KindInt16:
		return int16(integer(v)), nil
	case schema.KindInt32:
		return int32(integer(v)), nil
	case schema.KindInt64:
		return integer(v), nil
	case schema.KindUint:
		return uint(integer(v)), nil
	case schema.KindUint8:
		return uint8(integer(v)), nil
	case schema.KindUint16:
		return uint16(integer(v)), nil
	case schema.KindUint32:
		return uint32(integer(v)), nil
	case schema.KindUint64:
		return uint64(integer(v)), nil
	case schema.KindFloat32:
		return float32(number(v)), nil
	case schema.KindFloat64:
		return number(v), nil
	case schema.KindScriptValue:
		return v, nil
	case schema.KindAny:
		return b.Export(v), nil
	case schema.KindClass, schema.KindStruct:
		if b.policy.IsEngineBase(ref) {
			return b.engine, nil
		}
		if absent {
			return nil, errors.Newf("expected %s, got %s", ref.Name, v.String())
		}
		if host, ok := b.hostRef(v); ok {
			if !host.typ.DerivesFrom(ref.Name) {
				return nil, errors.Newf("expected %s, got %s", ref.Name, host.typ.Name)
			}
			return host.value, nil
		}
		if ref.Kind == schema.KindStruct {
			return v.Export(), nil
		}
		return nil, errors.Newf("expected %s, got %s", ref.Name, v.String())
	}
	return nil, errors.Newf("unsupported parameter kind %s", ref.Kind)
}

func number(v goja.Value) float64 {
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return 0
	}
	f := v.ToFloat()
	if math.IsNaN(f) {
		return 0
	}
	return f
}

func integer(v goja.Value) int64 {
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return 0
	}
	return v.ToInteger()
}

// toJS converts a host value to a script value. Host values of a bound or
// visible described type are wrapped.
func (b *Binder) toJS(value any, ref schema.TypeRef) goja.Value {
	switch ref.Kind {
	case schema.KindVoid:
		return goja.Undefined()
	case schema.KindScriptValue:
		if v, ok := value.(goja.Value); ok {
			return v
		}
	case schema.KindClass, schema.KindStruct:
		if value == nil {
			return goja.Null()
		}
		if b.policy.IsEngineBase(ref) {
			return b.vm.Get(WindowName)
		}
		if t, ok := b.scope.Lookup(ref.Name); ok {
			return b.Wrap(value, t)
		}
	}
	if value == nil {
		return goja.Undefined()
	}
	if v, ok := value.(goja.Value); ok {
		return v
	}
	return b.vm.ToValue(value)
}

// valueOf converts a host value with no declared type. Known wrappers and
// self-describing values are wrapped.
func (b *Binder) valueOf(value any) goja.Value {
	if value == nil {
		return goja.Undefined()
	}
	if isPointer(value) {
		if obj, ok := b.wrappers[value]; ok {
			return obj
		}
	}
	switch v := value.(type) {
	case goja.Value:
		return v
	case schema.Describer:
		return b.Wrap(v, v.Describe())
	}
	return b.vm.ToValue(value)
}
