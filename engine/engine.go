// Package engine hosts a JavaScript interpreter with a set of bound host
// types.
//
// # Architecture
//
// Each Engine owns one goja runtime driven by one goja_nodejs event loop
// goroutine. Every public operation posts a job to that loop and waits for
// its result, so the runtime, the program cache and the binder are only ever
// touched from the loop goroutine. Promise settles and timers are posted to
// the same loop.
//
// An interpreter lifetime is a generation. Reset discards the current
// generation (its loop, runtime, programs and outstanding resolvers) and
// starts a fresh one with bindings initialised eagerly.
//
// Engine methods must not be called from inside script callbacks; bound
// methods get what they need through their arguments and Promise.
package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/dop251/goja_nodejs/require"
	"go.uber.org/zap"

	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/logger"
	"github.com/teranos/jsbind/schema"
)

// WindowName is the global the engine host is published under
const WindowName = "window"

// promiseFactory builds native promises around a host action. It forwards
// (resolve, reject, ...params) into the action.
const promiseFactory = `(function (action) {
	var params = Array.prototype.slice.call(arguments, 1);
	return new Promise(function (resolve, reject) {
		action.apply(null, [resolve, reject].concat(params));
	});
})`

// Engine is a script interpreter bound to one host root.
type Engine struct {
	host   schema.Root
	policy schema.Policy
	log    *zap.SugaredLogger

	// mu serialises Reset and Close and guards closed. gen is read without
	// it from loop jobs.
	mu     sync.Mutex
	gen    atomic.Pointer[generation]
	nextID int
	closed bool
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger
func WithLogger(log *zap.SugaredLogger) Option {
	return func(e *Engine) { e.log = log }
}

// WithPolicy sets the exclusion and async classification rules
func WithPolicy(p schema.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// generation is one interpreter lifetime
type generation struct {
	id     int
	loop   *eventloop.EventLoop
	vm     *goja.Runtime
	ctx    context.Context
	cancel context.CancelFunc

	binder   *Binder
	programs map[string]*Program
	factory  goja.Callable
	ready    bool
}

// New creates an engine for host and starts its interpreter. Hosts that
// embed Base are attached to the engine before bindings are initialised.
func New(host schema.Root, opts ...Option) (*Engine, error) {
	if host == nil {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "engine host is nil")
	}
	if err := host.Describe().Validate(); err != nil {
		return nil, errors.Wrap(err, "engine host")
	}

	e := &Engine{policy: schema.DefaultPolicy(), host: host}
	for _, opt := range opts {
		opt(e)
	}
	e.log = logger.ChildLogger(logger.OrComponent(e.log, "engine"), logger.FieldEngine, host.Describe().Name)

	if a, ok := host.(Attacher); ok {
		a.AttachEngine(e)
	}

	g, err := e.newGeneration()
	if err != nil {
		return nil, err
	}
	e.gen.Store(g)
	return e, nil
}

// Host returns the engine's root host value
func (e *Engine) Host() schema.Root {
	return e.host
}

// Policy returns the rules the engine binds with
func (e *Engine) Policy() schema.Policy {
	return e.policy
}

func (e *Engine) newGeneration() (*generation, error) {
	e.nextID++
	scriptLog := e.log.Named("script")

	reg := require.NewRegistry()
	reg.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(consolePrinter{log: scriptLog}))

	ctx, cancel := context.WithCancel(context.Background())
	g := &generation{
		id:       e.nextID,
		loop:     eventloop.NewEventLoop(eventloop.EnableConsole(false), eventloop.WithRegistry(reg)),
		ctx:      ctx,
		cancel:   cancel,
		programs: make(map[string]*Program),
	}
	g.loop.Start()

	done := make(chan error, 1)
	g.loop.RunOnLoop(func(vm *goja.Runtime) {
		done <- e.setup(g, vm)
	})
	if err := <-done; err != nil {
		g.shutdown()
		return nil, err
	}
	e.log.Debugw("Interpreter started", "generation", g.id)
	return g, nil
}

// setup runs on the loop before any other job of the generation
func (e *Engine) setup(g *generation, vm *goja.Runtime) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("interpreter setup: %v", r)
		}
	}()

	g.vm = vm
	console.Enable(vm)

	v, err := vm.RunString(promiseFactory)
	if err != nil {
		return errors.Wrap(err, "install promise factory")
	}
	factory, ok := goja.AssertFunction(v)
	if !ok {
		return errors.New("promise factory is not a function")
	}
	g.factory = factory

	g.binder = newBinder(vm, e, g, e.policy, e.log)
	return e.initBindings(g)
}

// initBindings publishes the host as window and binds its types, once per
// generation.
func (e *Engine) initBindings(g *generation) error {
	if g.ready {
		return nil
	}
	window := g.binder.Wrap(e.host, e.host.Describe())
	if err := g.vm.Set(WindowName, window); err != nil {
		return errors.Wrap(err, "publish window")
	}
	if err := g.binder.Bind(e.host.TypesToBind()...); err != nil {
		return err
	}
	g.ready = true
	return nil
}

// shutdown cancels the generation and stops its loop. Running script is
// interrupted first, since the loop only stops between jobs.
func (g *generation) shutdown() {
	g.cancel()
	if g.vm != nil {
		g.vm.Interrupt(errors.ErrEngineClosed)
	}
	g.loop.Stop()
}

// current returns the live generation
func (e *Engine) current() (*generation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	g := e.gen.Load()
	if e.closed || g == nil {
		return nil, errors.ErrEngineClosed
	}
	return g, nil
}

// do runs fn on the loop of the current generation and waits for it.
// Cancelling ctx interrupts running script.
func (e *Engine) do(ctx context.Context, fn func(g *generation) (any, error)) (any, error) {
	g, err := e.current()
	if err != nil {
		return nil, err
	}
	return g.do(ctx, fn)
}

type result struct {
	value any
	err   error
}

func (g *generation) do(ctx context.Context, fn func(g *generation) (any, error)) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// job guards the interrupt so that only a running fn is ever
	// interrupted, and no interrupt outlives it.
	var job struct {
		sync.Mutex
		running   bool
		cancelled bool
	}
	done := make(chan result, 1)
	g.loop.RunOnLoop(func(vm *goja.Runtime) {
		job.Lock()
		switch {
		case g.ctx.Err() != nil:
			job.Unlock()
			done <- result{err: errors.ErrEngineClosed}
			return
		case job.cancelled:
			job.Unlock()
			done <- result{err: ctx.Err()}
			return
		}
		vm.ClearInterrupt()
		job.running = true
		job.Unlock()

		var res result
		func() {
			defer func() {
				if r := recover(); r != nil {
					res.err = recovered(r)
				}
			}()
			res.value, res.err = fn(g)
		}()

		job.Lock()
		job.running = false
		if job.cancelled && g.ctx.Err() == nil {
			vm.ClearInterrupt()
		}
		job.Unlock()
		done <- res
	})

	select {
	case res := <-done:
		return res.value, res.err
	case <-ctx.Done():
		job.Lock()
		job.cancelled = true
		if job.running {
			g.vm.Interrupt(ctx.Err())
		}
		job.Unlock()
		select {
		case res := <-done:
			if res.err != nil && !errors.Is(res.err, ctx.Err()) {
				return nil, errors.WithSecondaryError(ctx.Err(), res.err)
			}
			return nil, ctx.Err()
		case <-g.ctx.Done():
			return nil, errors.ErrEngineClosed
		}
	case <-g.ctx.Done():
		return nil, errors.ErrEngineClosed
	}
}

func recovered(r any) error {
	switch v := r.(type) {
	case *goja.Object:
		if native, ok := v.Export().(error); ok {
			return native
		}
		return errors.Newf("script error: %s", v.String())
	case goja.Value:
		return errors.Newf("script error: %s", v.String())
	case error:
		return errors.WithStack(v)
	default:
		return errors.Newf("panic: %s", fmt.Sprint(v))
	}
}

// Reset discards the interpreter, its program cache and binder state, and
// starts a fresh interpreter with bindings initialised. Resolvers of the old
// interpreter see their context cancelled.
func (e *Engine) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errors.ErrEngineClosed
	}

	// The old loop is stopped before its replacement exists, so a job still
	// running on it never sees the new generation.
	discarded := 0
	if old := e.gen.Load(); old != nil {
		old.shutdown()
		discarded = len(old.programs)
	}
	e.gen.Store(nil)

	g, err := e.newGeneration()
	if err != nil {
		return err
	}
	e.gen.Store(g)
	e.log.Infow("Interpreter reset", "generation", g.id, logger.FieldCount, discarded)
	return nil
}

// Close stops the interpreter. It is safe to call more than once.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if g := e.gen.Swap(nil); g != nil {
		g.shutdown()
	}
	e.log.Debug("Engine closed")
	return nil
}
