package commands

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/samples/testbed"
	"github.com/teranos/jsbind/schema"
)

// EngineFactory creates a fresh engine host
type EngineFactory func(log *zap.SugaredLogger) schema.Root

// engines lists the engine hosts compiled into this binary
var engines = map[string]EngineFactory{
	"SampleEngine": func(log *zap.SugaredLogger) schema.Root { return testbed.NewSampleEngine(log) },
}

// engineNames returns the registered engine names, sorted
func engineNames() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// selectEngines creates the named engine hosts in order. No names selects
// every registered engine.
func selectEngines(names []string, log *zap.SugaredLogger) ([]schema.Root, error) {
	if len(names) == 0 {
		names = engineNames()
	}
	roots := make([]schema.Root, 0, len(names))
	for _, name := range names {
		factory, ok := engines[name]
		if !ok {
			return nil, errors.WithHintf(
				errors.NewNotFoundError("engine %q is not registered", name),
				"registered engines: %s", strings.Join(engineNames(), ", "))
		}
		roots = append(roots, factory(log))
	}
	return roots, nil
}
