// Package testbed is a sample engine with bound classes. The CLI registers
// it so `jsbind generate` and `jsbind run` work out of the box, and the
// generator and engine tests use it as a realistic fixture.
package testbed

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/jsbind/engine"
	"github.com/teranos/jsbind/logger"
	"github.com/teranos/jsbind/schema"
)

// Namespace of the sample types
var Namespace = []string{"Testbed", "Runtime", "Scripts"}

// DefaultDelay is the pause between the lines of LogThreeTimesJsAsync
const DefaultDelay = 500 * time.Millisecond

// SampleEngine is the sample engine host. Scripts see it as window.
type SampleEngine struct {
	engine.Base

	BooleanProp bool
	IntegerProp int
	StringProp  string

	// Delay is the pause between the lines of LogThreeTimesJsAsync
	Delay time.Duration

	log      *zap.SugaredLogger
	mu       sync.Mutex
	messages []string
}

// NewSampleEngine returns a host logging to log (the "testbed" component
// logger when nil)
func NewSampleEngine(log *zap.SugaredLogger) *SampleEngine {
	return &SampleEngine{
		Delay: DefaultDelay,
		log:   logger.OrComponent(log, "testbed"),
	}
}

// Describe implements schema.Describer
func (s *SampleEngine) Describe() *schema.Type { return sampleEngineType }

// TypesToBind implements schema.Root
func (s *SampleEngine) TypesToBind() []*schema.Type {
	return []*schema.Type{SampleClassType, Vector3Type}
}

// Log records and logs a message. Safe from any goroutine.
func (s *SampleEngine) Log(message string) {
	s.mu.Lock()
	s.messages = append(s.messages, message)
	s.mu.Unlock()
	s.log.Info(message)
}

// Messages returns every message logged so far
func (s *SampleEngine) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

func (s *SampleEngine) logThreeTimes(r *engine.Resolver, lines []string) {
	go func() {
		for i, line := range lines {
			if i > 0 {
				select {
				case <-time.After(s.Delay):
				case <-r.Context().Done():
					return
				}
			}
			s.Log(line)
		}
		r.Resolve(nil)
	}()
}

func sampleEngine(self any) *SampleEngine { return self.(*SampleEngine) }

var sampleEngineType = schema.Class("SampleEngine", Namespace...).Extends(schema.EngineBase).
	Property("BooleanProp", schema.Bool,
		func(self any) any { return sampleEngine(self).BooleanProp },
		func(self, v any) error { sampleEngine(self).BooleanProp = v.(bool); return nil }).
	Property("IntegerProp", schema.Int,
		func(self any) any { return sampleEngine(self).IntegerProp },
		func(self, v any) error { sampleEngine(self).IntegerProp = v.(int); return nil }).
	Property("StringProp", schema.String,
		func(self any) any { return sampleEngine(self).StringProp },
		func(self, v any) error { sampleEngine(self).StringProp = v.(string); return nil }).
	Method("SetBoolean", schema.Bool, func(self any, args schema.Args) (any, error) {
		sampleEngine(self).BooleanProp = args.Bool(0)
		return args.Bool(0), nil
	}, schema.P("value", schema.Bool)).
	Method("GetBoolean", schema.Bool, func(self any, _ schema.Args) (any, error) {
		return sampleEngine(self).BooleanProp, nil
	}).
	Method("SetInteger", schema.Int, func(self any, args schema.Args) (any, error) {
		sampleEngine(self).IntegerProp = args.Int(0)
		return args.Int(0), nil
	}, schema.P("value", schema.Int)).
	Method("GetInteger", schema.Int, func(self any, _ schema.Args) (any, error) {
		return sampleEngine(self).IntegerProp, nil
	}).
	Method("SetString", schema.String, func(self any, args schema.Args) (any, error) {
		sampleEngine(self).StringProp = args.String(0)
		return args.String(0), nil
	}, schema.P("value", schema.String)).
	Method("GetString", schema.String, func(self any, _ schema.Args) (any, error) {
		return sampleEngine(self).StringProp, nil
	}).
	Method("Log", schema.Void, func(self any, args schema.Args) (any, error) {
		sampleEngine(self).Log(args.String(0))
		return nil, nil
	}, schema.P("message", schema.String)).
	AsyncMethod("LogThreeTimesJsAsync", schema.Void, func(self any, args schema.Args) (any, error) {
		s := sampleEngine(self)
		return s.Promise(func(r *engine.Resolver, params []any) {
			lines := make([]string, len(params))
			for i, p := range params {
				lines[i], _ = p.(string)
			}
			s.logThreeTimes(r, lines)
		}, args.String(0), args.String(1), args.String(2)), nil
	}, schema.P("first", schema.String), schema.P("second", schema.String), schema.P("third", schema.String))
