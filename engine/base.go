package engine

import (
	"github.com/dop251/goja"

	"github.com/teranos/jsbind/schema"
)

// Attacher is implemented by engine hosts that need their Engine.
// New attaches the engine before any script runs.
type Attacher interface {
	AttachEngine(e *Engine)
}

// Base is embedded by engine hosts. It gives bound methods access to the
// engine's promise bridge.
type Base struct {
	engine *Engine
}

// AttachEngine implements Attacher
func (b *Base) AttachEngine(e *Engine) { b.engine = e }

// Engine returns the attached engine, or nil before New
func (b *Base) Engine() *Engine { return b.engine }

// Promise forwards to the attached engine
func (b *Base) Promise(handler PromiseHandler, params ...any) goja.Value {
	return b.engine.Promise(handler, params...)
}

// Bound is embedded by bound classes whose constructor takes the engine.
type Bound struct {
	engine *Engine
}

// NewBound returns a Bound for e
func NewBound(e *Engine) Bound {
	return Bound{engine: e}
}

// Engine returns the engine the value was constructed with
func (b Bound) Engine() *Engine { return b.engine }

// Promise forwards to the engine the value was constructed with
func (b Bound) Promise(handler PromiseHandler, params ...any) goja.Value {
	return b.engine.Promise(handler, params...)
}

// EngineArg returns constructor argument i when it is an engine-base
// parameter, or nil.
func EngineArg(args schema.Args, i int) *Engine {
	e, _ := args.Value(i).(*Engine)
	return e
}
