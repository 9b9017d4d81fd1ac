package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/logger"
)

// PromiseHandler starts the host work behind a promise. It runs on the
// engine loop and must not block; long work belongs on its own goroutine,
// settling through the resolver when done.
type PromiseHandler func(r *Resolver, params []any)

// Resolver settles one promise. The first Resolve or Reject wins; it may be
// called from any goroutine.
type Resolver struct {
	id      string
	gen     *generation
	binder  *Binder
	resolve goja.Callable
	reject  goja.Callable
	params  []any
	settled atomic.Bool
	log     *zap.SugaredLogger
}

// ID returns the resolver's handle id
func (r *Resolver) ID() string { return r.id }

// Params returns the parameters forwarded to the handler
func (r *Resolver) Params() []any { return r.params }

// Context is cancelled when the interpreter that created the promise is
// reset or the engine is closed.
func (r *Resolver) Context() context.Context { return r.gen.ctx }

// Settled reports whether Resolve or Reject has been called
func (r *Resolver) Settled() bool { return r.settled.Load() }

// Resolve fulfils the promise with value. It returns false when the promise
// was already settled or its interpreter is gone.
func (r *Resolver) Resolve(value any) bool {
	return r.settle("resolve", r.resolve, value)
}

// Reject rejects the promise with reason. Go errors become script errors.
func (r *Resolver) Reject(reason any) bool {
	return r.settle("reject", r.reject, reason)
}

func (r *Resolver) settle(action string, fn goja.Callable, value any) bool {
	if !r.settled.CompareAndSwap(false, true) {
		r.log.Debugw("Promise already settled", "action", action)
		return false
	}
	if r.gen.ctx.Err() != nil {
		r.log.Debugw("Promise settled after interpreter shutdown", "action", action)
		return false
	}

	r.gen.loop.RunOnLoop(func(vm *goja.Runtime) {
		if r.gen.ctx.Err() != nil {
			return
		}
		var arg goja.Value
		switch v := value.(type) {
		case goja.Value:
			arg = v
		case error:
			arg = vm.NewGoError(v)
		default:
			arg = r.binder.valueOf(v)
		}
		if _, err := fn(goja.Undefined(), arg); err != nil {
			r.log.Warnw("Failed to settle promise", "action", action, logger.FieldError, err)
		}
	})
	r.log.Debugw("Promise settled", "action", action)
	return true
}

// Promise returns a native script promise driven by handler. It must be
// called on the engine loop, i.e. from a bound method. params are forwarded
// to the handler unchanged.
func (e *Engine) Promise(handler PromiseHandler, params ...any) goja.Value {
	g := e.gen.Load()
	if g == nil {
		panic(errors.ErrEngineClosed)
	}
	vm := g.vm

	action := func(call goja.FunctionCall) goja.Value {
		resolve, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(vm.NewTypeError("promise resolve is not a function"))
		}
		reject, ok := goja.AssertFunction(call.Argument(1))
		if !ok {
			panic(vm.NewTypeError("promise reject is not a function"))
		}

		id := uuid.NewString()
		r := &Resolver{
			id:      id,
			gen:     g,
			binder:  g.binder,
			resolve: resolve,
			reject:  reject,
			params:  params,
			log:     e.log.With(logger.FieldHandle, id),
		}
		r.log.Debugw("Promise created", logger.FieldCount, len(params))
		handler(r, params)
		return goja.Undefined()
	}

	args := make([]goja.Value, 0, len(params)+1)
	args = append(args, vm.ToValue(action))
	for _, p := range params {
		args = append(args, vm.ToValue(p))
	}
	p, err := g.factory(goja.Undefined(), args...)
	if err != nil {
		panic(err)
	}
	return p
}

// After settles r with value once d has elapsed, unless the interpreter is
// reset or closed first.
func After(r *Resolver, d time.Duration, value any) {
	go func() {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			r.Resolve(value)
		case <-r.Context().Done():
		}
	}()
}

// Await waits for v to settle when it is a promise and returns its exported
// result. A rejected promise returns an error. Other values are returned as
// they are.
func (e *Engine) Await(ctx context.Context, v any) (any, error) {
	p, ok := v.(*goja.Promise)
	if !ok {
		return v, nil
	}

	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		res, err := e.do(ctx, func(g *generation) (any, error) {
			switch p.State() {
			case goja.PromiseStateFulfilled:
				return settledValue{value: g.binder.Export(p.Result())}, nil
			case goja.PromiseStateRejected:
				return nil, errors.Newf("promise rejected: %s", p.Result().String())
			}
			return nil, nil
		})
		if err != nil {
			return nil, err
		}
		if s, ok := res.(settledValue); ok {
			return s.value, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

type settledValue struct {
	value any
}
