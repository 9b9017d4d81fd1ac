package engine

import (
	"reflect"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/logger"
	"github.com/teranos/jsbind/schema"
)

// Binder exposes host type descriptors to one runtime. It is only used from
// the owning engine's loop goroutine.
type Binder struct {
	vm     *goja.Runtime
	engine *Engine
	gen    *generation
	policy schema.Policy
	scope  *schema.Scope
	log    *zap.SugaredLogger

	// bound holds the descriptors bound under each global name
	bound map[string]*schema.Type
	// protos holds the constructor prototype of each bound type
	protos map[string]*goja.Object
	// wrappers caches the script object of each host pointer
	wrappers map[any]*goja.Object
	hostKey  *goja.Symbol
}

func newBinder(vm *goja.Runtime, e *Engine, g *generation, p schema.Policy, log *zap.SugaredLogger) *Binder {
	return &Binder{
		vm:       vm,
		engine:   e,
		gen:      g,
		policy:   p,
		scope:    schema.NewScope(p, e.host),
		log:      log.Named("binder"),
		bound:    make(map[string]*schema.Type),
		protos:   make(map[string]*goja.Object),
		wrappers: make(map[any]*goja.Object),
		hostKey:  goja.NewSymbol("jsbind.host"),
	}
}

// Bind publishes each class-shaped, non-excluded descriptor as a global
// constructor. A name that is already bound is left as it is.
func (b *Binder) Bind(types ...*schema.Type) error {
	for _, t := range types {
		if t == nil {
			continue
		}
		if !b.policy.Bindable(t) {
			b.log.Debugw("Skipping type", logger.FieldType, t.FullName())
			continue
		}
		if prev, dup := b.bound[t.Name]; dup {
			b.log.Warnw("Type already bound, skipping",
				logger.FieldType, t.FullName(),
				"bound", prev.FullName())
			continue
		}
		if err := t.Validate(); err != nil {
			return errors.Wrapf(err, "bind %s", t.Name)
		}

		if err := b.vm.Set(t.Name, b.constructor(t)); err != nil {
			return errors.Wrapf(err, "bind %s", t.Name)
		}
		ctor := b.vm.Get(t.Name).ToObject(b.vm)
		if proto, ok := ctor.Get("prototype").(*goja.Object); ok {
			b.protos[t.Name] = proto
		}
		b.bound[t.Name] = t
		b.log.Debugw("Bound type", logger.FieldType, t.FullName())
	}
	return nil
}

// Bound reports whether name was bound by this binder
func (b *Binder) Bound(name string) bool {
	_, ok := b.bound[name]
	return ok
}

// Len returns the number of bound types
func (b *Binder) Len() int {
	return len(b.bound)
}

func (b *Binder) constructor(t *schema.Type) func(goja.ConstructorCall) *goja.Object {
	return func(call goja.ConstructorCall) *goja.Object {
		ctor, ok := pickConstructor(t, len(call.Arguments))
		if !ok {
			panic(b.vm.NewTypeError("%s: no constructor takes %d arguments", t.Name, len(call.Arguments)))
		}
		args, err := b.convertArgs(call.Arguments, ctor.Params)
		if err != nil {
			panic(b.vm.NewTypeError("%s: %s", t.Name, err.Error()))
		}
		value, err := b.call("new "+t.Name, func() (any, error) { return ctor.New(args) })
		if err != nil {
			panic(b.vm.NewGoError(errors.Wrapf(err, "new %s", t.Name)))
		}
		b.populate(call.This, t, value)
		return call.This
	}
}

func pickConstructor(t *schema.Type, arity int) (schema.Constructor, bool) {
	for _, c := range t.Constructors {
		if len(c.Params) == arity && c.New != nil {
			return c, true
		}
	}
	return schema.Constructor{}, false
}

// Wrap returns the script object for a host value. Pointer values are
// wrapped once, so the same host value always maps to the same object.
func (b *Binder) Wrap(value any, t *schema.Type) *goja.Object {
	cacheable := isPointer(value)
	if cacheable {
		if obj, ok := b.wrappers[value]; ok {
			return obj
		}
	}
	obj := b.vm.NewObject()
	if proto, ok := b.protos[t.Name]; ok {
		obj.SetPrototype(proto)
	}
	b.populate(obj, t, value)
	return obj
}

func isPointer(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Ptr
}

// hostRef is what a wrapper object holds under hostKey
type hostRef struct {
	value any
	typ   *schema.Type
}

// call runs host code, turning a Go panic into an error. Panics raised by
// the runtime itself (thrown values, interrupts) pass through.
func (b *Binder) call(what string, fn func() (any, error)) (res any, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch r.(type) {
		case *goja.Object, *goja.Exception, *goja.InterruptedError:
			panic(r)
		}
		b.log.Errorw("Host call panicked", logger.FieldMember, what, "panic", r)
		err = errors.Newf("%s: host panic: %v", what, r)
	}()
	return fn()
}

// populate defines the valid members of t on obj, backed by value
func (b *Binder) populate(obj *goja.Object, t *schema.Type, value any) {
	_ = obj.SetSymbol(b.hostKey, &hostRef{value: value, typ: t})
	if isPointer(value) {
		b.wrappers[value] = obj
	}

	for _, p := range t.Properties {
		if !b.policy.ValidProperty(p, b.scope) {
			b.log.Debugw("Skipping property", logger.FieldType, t.Name, logger.FieldMember, p.Name)
			continue
		}
		p := p
		getter := b.vm.ToValue(func(goja.FunctionCall) goja.Value {
			v, err := b.call(t.Name+"."+p.Name, func() (any, error) { return p.Get(value), nil })
			if err != nil {
				panic(b.vm.NewGoError(errors.Wrapf(err, "get %s.%s", t.Name, p.Name)))
			}
			return b.toJS(v, p.Type)
		})
		setter := b.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			v, err := b.toGo(call.Argument(0), p.Type)
			if err != nil {
				panic(b.vm.NewTypeError("%s.%s: %s", t.Name, p.Name, err.Error()))
			}
			if _, err := b.call(t.Name+"."+p.Name, func() (any, error) { return nil, p.Set(value, v) }); err != nil {
				panic(b.vm.NewGoError(errors.Wrapf(err, "set %s.%s", t.Name, p.Name)))
			}
			return goja.Undefined()
		})
		if err := obj.DefineAccessorProperty(p.Name, getter, setter, goja.FLAG_FALSE, goja.FLAG_TRUE); err != nil {
			b.log.Warnw("Failed to define property", logger.FieldType, t.Name, logger.FieldMember, p.Name, logger.FieldError, err)
		}
	}

	for _, m := range t.Methods {
		if m.Invoke == nil || !b.policy.ValidMethod(m, b.scope) {
			b.log.Debugw("Skipping method", logger.FieldType, t.Name, logger.FieldMember, m.Name)
			continue
		}
		m := m
		fn := func(call goja.FunctionCall) goja.Value {
			args, err := b.convertArgs(call.Arguments, m.Params)
			if err != nil {
				panic(b.vm.NewTypeError("%s.%s: %s", t.Name, m.Name, err.Error()))
			}
			res, err := b.call(t.Name+"."+m.Name, func() (any, error) { return m.Invoke(value, args) })
			if err != nil {
				panic(b.vm.NewGoError(errors.Wrapf(err, "%s.%s", t.Name, m.Name)))
			}
			return b.toJS(res, m.Returns)
		}
		if err := obj.Set(m.Name, fn); err != nil {
			b.log.Warnw("Failed to define method", logger.FieldType, t.Name, logger.FieldMember, m.Name, logger.FieldError, err)
		}
	}
}

// Unwrap returns the host value behind a wrapper object
func (b *Binder) Unwrap(v goja.Value) (any, bool) {
	ref, ok := b.hostRef(v)
	if !ok {
		return nil, false
	}
	return ref.value, true
}

func (b *Binder) hostRef(v goja.Value) (*hostRef, bool) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, false
	}
	hv := obj.GetSymbol(b.hostKey)
	if hv == nil || goja.IsUndefined(hv) {
		return nil, false
	}
	ref, ok := hv.Export().(*hostRef)
	return ref, ok
}

// Export converts a script value to Go, unwrapping host objects
func (b *Binder) Export(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	if host, ok := b.Unwrap(v); ok {
		return host
	}
	return v.Export()
}
