package testbed

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/teranos/jsbind/engine"
	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/schema"
)

// Speed is how far a SampleClass moves per second
const Speed = 5.0

// frame is the movement tick
const frame = 16 * time.Millisecond

// SampleClass is a bound class constructed from script with the engine
type SampleClass struct {
	engine.Bound
	Name string

	mu       sync.Mutex
	position Vector3
}

// NewSampleClass returns a SampleClass at the origin
func NewSampleClass(e *engine.Engine, name string) *SampleClass {
	return &SampleClass{Bound: engine.NewBound(e), Name: name}
}

// Say logs text prefixed with the name through the engine host
func (c *SampleClass) Say(text string) {
	line := fmt.Sprintf("%s: %s", c.Name, text)
	if e := c.Engine(); e != nil {
		if host, ok := e.Host().(*SampleEngine); ok {
			host.Log(line)
		}
	}
}

// Position returns the current position
func (c *SampleClass) Position() Vector3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// moveTo walks towards target at Speed, one frame at a time, and resolves r
// on arrival
func (c *SampleClass) moveTo(r *engine.Resolver, relative Vector3) {
	go func() {
		c.mu.Lock()
		target := c.position.Add(relative)
		c.mu.Unlock()

		step := Speed * frame.Seconds()
		ticker := time.NewTicker(frame)
		defer ticker.Stop()
		for {
			c.mu.Lock()
			dist := target.Sub(c.position)
			arrived := dist.Magnitude() <= step
			if arrived {
				c.position = target
			} else {
				c.position = c.position.Add(dist.Scale(float32(step / dist.Magnitude())))
			}
			c.mu.Unlock()
			if arrived {
				r.Resolve(nil)
				return
			}

			select {
			case <-ticker.C:
			case <-r.Context().Done():
				return
			}
		}
	}()
}

func sampleClass(self any) *SampleClass { return self.(*SampleClass) }

// SampleClassType describes SampleClass
var SampleClassType = schema.Class("SampleClass", Namespace...).
	Constructor(func(args schema.Args) (any, error) {
		return NewSampleClass(engine.EngineArg(args, 0), args.String(1)), nil
	}, schema.P("jsEngine", schema.EngineBase.Ref()), schema.P("name", schema.String)).
	Property("Name", schema.String,
		func(self any) any { return sampleClass(self).Name },
		func(self, v any) error { sampleClass(self).Name = v.(string); return nil }).
	Method("Say", schema.Void, func(self any, args schema.Args) (any, error) {
		sampleClass(self).Say(args.String(0))
		return nil, nil
	}, schema.P("text", schema.String)).
	Method("GetPosition", Vector3Type.Ref(), func(self any, _ schema.Args) (any, error) {
		p := sampleClass(self).Position()
		return &p, nil
	}).
	AsyncMethod("MoveJsAsync", schema.Void, func(self any, args schema.Args) (any, error) {
		c := sampleClass(self)
		if c.Engine() == nil {
			return nil, errors.Newf("%s was constructed without an engine", c.Name)
		}
		return c.Promise(func(r *engine.Resolver, params []any) {
			c.moveTo(r, params[0].(Vector3))
		}, Vector3{X: args.Float32(0), Y: args.Float32(1), Z: args.Float32(2)}), nil
	}, schema.P("relativeX", schema.Float32), schema.P("relativeY", schema.Float32), schema.P("relativeZ", schema.Float32))

// Vector3 is a value-type position
type Vector3 struct {
	X, Y, Z float32
}

// Add returns v + o
func (v Vector3) Add(o Vector3) Vector3 { return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o
func (v Vector3) Sub(o Vector3) Vector3 { return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v * f
func (v Vector3) Scale(f float32) Vector3 { return Vector3{v.X * f, v.Y * f, v.Z * f} }

// Magnitude returns the length of v
func (v Vector3) Magnitude() float64 {
	return math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z))
}

func vector3(self any) *Vector3 { return self.(*Vector3) }

// Vector3Type describes Vector3. It is a value type, so scripts receive
// Vector3 values from host methods but cannot construct one.
var Vector3Type = schema.Struct("Vector3", "UnityEngine").
	Property("x", schema.Float32,
		func(self any) any { return vector3(self).X },
		func(self, v any) error { vector3(self).X = v.(float32); return nil }).
	Property("y", schema.Float32,
		func(self any) any { return vector3(self).Y },
		func(self, v any) error { vector3(self).Y = v.(float32); return nil }).
	Property("z", schema.Float32,
		func(self any) any { return vector3(self).Z },
		func(self, v any) error { vector3(self).Z = v.(float32); return nil })
