// Package typegen generates declaration stub modules for bound host types.
//
// # Architecture
//
// Generation has two layers:
//  1. Dialect-agnostic rendering (render.go) walks engine descriptors and
//     applies the member validity rule shared with live binding
//  2. Dialects (typescript/, javascript/) decide how parameters, properties
//     and returns are annotated
//
// # Design Decisions
//
//   - One module per class-shaped bound type, plus one per engine that
//     exports a singleton instance of the engine's stub class
//   - Import paths are computed per importing module, so a type shared by
//     engines in different namespaces is imported correctly from each
//   - Deterministic output (sorted imports, "\n" line endings) enables CI
//     validation via `jsbind generate check`
//   - Output paths are derived from namespaces: <root>/<ns...>/.<Name>.<ext>
package typegen

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/teranos/jsbind/am"
	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/logger"
	"github.com/teranos/jsbind/schema"
	"github.com/teranos/jsbind/typegen/javascript"
	"github.com/teranos/jsbind/typegen/typescript"
)

// Dialect renders the parts of a stub that differ between typed and untyped
// output. Each target (typescript, javascript) implements this interface.
type Dialect interface {
	// Language returns the dialect name (e.g., "typescript")
	Language() string

	// FileExtension returns the module file extension (e.g., "ts")
	FileExtension() string

	// Param renders one constructor or method parameter
	Param(p schema.Param) string

	// Annotation renders the type suffix of a property or return ("" when untyped)
	Annotation(ref schema.TypeRef) string

	// PromiseAnnotation renders the return suffix of an asynchronous method
	PromiseAnnotation(resolves schema.TypeRef) string
}

// Generator renders and writes stub modules under a helpers root.
type Generator struct {
	root    string
	dialect Dialect
	policy  schema.Policy
	onError string
	log     *zap.SugaredLogger
}

// Option configures a Generator
type Option func(*Generator)

// WithPolicy sets the validity and async classification rules
func WithPolicy(p schema.Policy) Option {
	return func(g *Generator) { g.policy = p }
}

// WithOnError sets the batch failure policy (am.OnErrorFailFast or am.OnErrorSkipEngine)
func WithOnError(policy string) Option {
	return func(g *Generator) { g.onError = policy }
}

// WithLogger sets the logger
func WithLogger(log *zap.SugaredLogger) Option {
	return func(g *Generator) { g.log = log }
}

// New creates a generator writing under root
func New(root string, dialect Dialect, opts ...Option) *Generator {
	g := &Generator{
		root:    root,
		dialect: dialect,
		policy:  schema.DefaultPolicy(),
		onError: am.OnErrorFailFast,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = logger.OrComponent(g.log, "typegen")
	return g
}

// FromConfig creates a generator from project configuration
func FromConfig(cfg *am.Config, log *zap.SugaredLogger) *Generator {
	return New(cfg.Path(cfg.Generate.HelpersRoot), DialectFor(cfg.Generate.TypeScript),
		WithPolicy(PolicyFor(cfg)),
		WithOnError(cfg.Generate.OnError),
		WithLogger(log),
	)
}

// DialectFor returns the typed or untyped dialect
func DialectFor(typed bool) Dialect {
	if typed {
		return typescript.New()
	}
	return javascript.New()
}

// PolicyFor derives the schema policy from configuration
func PolicyFor(cfg *am.Config) schema.Policy {
	p := schema.DefaultPolicy()
	if cfg.Generate.AsyncSuffix != "" {
		p.AsyncSuffix = cfg.Generate.AsyncSuffix
	}
	if cfg.Generate.BehaviourBase != "" {
		p.BehaviourBase = cfg.Generate.BehaviourBase
	}
	return p
}

// Root returns the helpers root modules are written under
func (g *Generator) Root() string { return g.root }

// Dialect returns the generator's dialect
func (g *Generator) Dialect() Dialect { return g.dialect }

// Generate renders the modules of every engine without touching the filesystem.
//
// Under fail_fast the first failing engine aborts the pass and no result is
// returned. Under skip_engine the failing engine's modules are discarded,
// the remaining engines proceed, and the combined error is returned together
// with the partial result.
func (g *Generator) Generate(roots ...schema.Root) (*Result, error) {
	res := &Result{}
	processed := make(map[string]bool)
	var errs error

	for _, root := range roots {
		mods, err := g.generateEngine(root, processed)
		if err != nil {
			g.log.Errorw("Stub generation failed",
				logger.FieldEngine, engineName(root),
				logger.FieldError, err)
			if g.onError != am.OnErrorSkipEngine {
				return nil, err
			}
			errs = errors.CombineErrors(errs, err)
			continue
		}
		for _, m := range mods {
			processed[m.Type.Name] = true
		}
		res.Modules = append(res.Modules, mods...)
	}
	return res, errs
}

// Run generates and writes every engine's modules
func (g *Generator) Run(roots ...schema.Root) (*Result, error) {
	res, genErr := g.Generate(roots...)
	if res == nil {
		return nil, genErr
	}
	if err := g.Write(res); err != nil {
		return res, errors.CombineErrors(genErr, err)
	}
	return res, genErr
}

// ModulePath returns the deterministic output path of t
func (g *Generator) ModulePath(t *schema.Type) string {
	parts := make([]string, 0, len(t.Namespace)+2)
	parts = append(parts, g.root)
	parts = append(parts, t.Namespace...)
	parts = append(parts, "."+t.Name+"."+g.dialect.FileExtension())
	return filepath.Join(parts...)
}

func engineName(root schema.Root) string {
	if root == nil {
		return ""
	}
	if t := root.Describe(); t != nil {
		return t.Name
	}
	return ""
}
