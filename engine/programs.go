package engine

import (
	"context"
	"sort"
	"strings"

	"github.com/dop251/goja"

	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/logger"
	"github.com/teranos/jsbind/mask"
)

// Program is a compiled script cached under a key
type Program struct {
	Key     string
	Program *goja.Program
	// Source is the text that was compiled, after import masking
	Source string
}

// compile masks helper imports and parses src. Parsing does not touch the
// runtime, so it runs on the caller's goroutine.
func compile(name, src string) (*Program, error) {
	masked := mask.Imports(src)
	prg, err := goja.Compile(name, masked, false)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCompile, "%s: %v", name, err)
	}
	return &Program{Key: name, Program: prg, Source: masked}, nil
}

// Compile parses source and caches it under key. On failure the existing
// entry for key is left untouched.
func (e *Engine) Compile(ctx context.Context, key, source string) error {
	p, err := compile(key, source)
	if err != nil {
		e.log.Errorw("Compile failed", logger.FieldKey, key, logger.FieldError, err)
		return err
	}
	_, err = e.do(ctx, func(g *generation) (any, error) {
		if _, exists := g.programs[key]; exists {
			e.log.Warnw("Replacing compiled program", logger.FieldKey, key)
		}
		g.programs[key] = p
		return nil, nil
	})
	return err
}

// Run executes the program cached under key
func (e *Engine) Run(ctx context.Context, key string) error {
	_, err := e.do(ctx, func(g *generation) (any, error) {
		p, ok := g.programs[key]
		if !ok {
			e.log.Errorw("Program not compiled", logger.FieldKey, key)
			return nil, errors.Wrapf(errors.ErrNotCompiled, "%s", key)
		}
		if err := e.initBindings(g); err != nil {
			return nil, err
		}
		_, err := g.vm.RunProgram(p.Program)
		return nil, scriptError(key, err)
	})
	return err
}

// Remove drops the program cached under key
func (e *Engine) Remove(ctx context.Context, key string) error {
	_, err := e.do(ctx, func(g *generation) (any, error) {
		delete(g.programs, key)
		return nil, nil
	})
	return err
}

// Keys lists the cached program keys in order
func (e *Engine) Keys(ctx context.Context) ([]string, error) {
	v, err := e.do(ctx, func(g *generation) (any, error) {
		keys := make([]string, 0, len(g.programs))
		for k := range g.programs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// RunDirectly parses and executes source without caching it
func (e *Engine) RunDirectly(ctx context.Context, source string) error {
	_, err := e.RunDirectlyAndGetValue(ctx, source)
	return err
}

// RunDirectlyAndGetValue parses and executes source without caching it and
// returns the exported completion value. Host objects are returned as the
// original Go values; a pending promise is returned as *goja.Promise (see
// Await).
func (e *Engine) RunDirectlyAndGetValue(ctx context.Context, source string) (any, error) {
	const name = "<direct>"
	p, err := compile(name, source)
	if err != nil {
		e.log.Errorw("Compile failed", logger.FieldKey, name, logger.FieldError, err)
		return nil, err
	}
	return e.do(ctx, func(g *generation) (any, error) {
		if err := e.initBindings(g); err != nil {
			return nil, err
		}
		v, err := g.vm.RunProgram(p.Program)
		if err != nil {
			return nil, scriptError(name, err)
		}
		return g.binder.Export(v), nil
	})
}

// Call invokes the script function at name, a global or a dotted path such
// as "window.setGameState", and returns its exported result.
func (e *Engine) Call(ctx context.Context, name string, args ...any) (any, error) {
	return e.do(ctx, func(g *generation) (any, error) {
		target, this, err := lookup(g.vm, name)
		if err != nil {
			return nil, err
		}
		fn, ok := goja.AssertFunction(target)
		if !ok {
			return nil, errors.Wrapf(errors.ErrInvalidRequest, "%s is not a function", name)
		}
		values := make([]goja.Value, len(args))
		for i, a := range args {
			values[i] = g.binder.valueOf(a)
		}
		v, err := fn(this, values...)
		if err != nil {
			return nil, scriptError(name, err)
		}
		return g.binder.Export(v), nil
	})
}

// Get returns the exported value at name, a global or a dotted path
func (e *Engine) Get(ctx context.Context, name string) (any, error) {
	return e.do(ctx, func(g *generation) (any, error) {
		v, _, err := lookup(g.vm, name)
		if err != nil {
			return nil, err
		}
		return g.binder.Export(v), nil
	})
}

// lookup resolves a dotted path from the global object, returning the value
// and the object holding it
func lookup(vm *goja.Runtime, name string) (goja.Value, goja.Value, error) {
	parts := strings.Split(name, ".")
	var this goja.Value = goja.Undefined()
	v := vm.Get(parts[0])
	for _, part := range parts[1:] {
		if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
			v = nil
			break
		}
		obj := v.ToObject(vm)
		this = obj
		v = obj.Get(part)
	}
	if v == nil || goja.IsUndefined(v) {
		return nil, nil, errors.NewNotFoundError("%s is not defined", name)
	}
	return v, this, nil
}

// scriptError wraps an exception thrown by script. Host errors thrown by
// bound members stay reachable through the exception's cause chain.
func scriptError(name string, err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "%s", name)
}
