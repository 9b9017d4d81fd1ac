package typegen

import (
	"strings"

	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/logger"
	"github.com/teranos/jsbind/schema"
	"github.com/teranos/jsbind/typegen/util"
)

// EngineClassPrefix prefixes the internal class name of an engine stub
const EngineClassPrefix = "__class_"

// generateEngine renders the dependency modules of one engine followed by the
// engine module. Types already rendered earlier in the pass are skipped.
func (g *Generator) generateEngine(root schema.Root, processed map[string]bool) ([]*Module, error) {
	if root == nil {
		return nil, errors.NewInvalidDescriptorError("nil engine")
	}
	engine := root.Describe()
	if err := engine.Validate(); err != nil {
		return nil, err
	}

	scope := schema.NewScope(g.policy, root)
	modules := g.moduleTypes(root)

	var out []*Module
	seen := make(map[string]bool)
	for _, t := range modules {
		if processed[t.Name] || seen[t.Name] {
			continue
		}
		seen[t.Name] = true
		if err := t.Validate(); err != nil {
			return nil, errors.Wrapf(err, "engine %s", engine.Name)
		}
		m, err := g.renderClass(t, scope, modules)
		if err != nil {
			return nil, errors.Wrapf(err, "engine %s", engine.Name)
		}
		out = append(out, m)
	}

	m, err := g.renderEngine(root, engine, scope, modules)
	if err != nil {
		return nil, err
	}
	return append(out, m), nil
}

// moduleTypes returns the class-shaped types of an engine's bound set plus
// the engine base. These are the types that get a module of their own and
// can therefore be imported.
func (g *Generator) moduleTypes(root schema.Root) []*schema.Type {
	var types []*schema.Type
	for _, t := range root.TypesToBind() {
		if t != nil && t.IsClass() {
			types = append(types, t)
		}
	}
	if g.policy.EngineBase != nil {
		types = append(types, g.policy.EngineBase)
	}
	return types
}

func (g *Generator) renderClass(t *schema.Type, scope *schema.Scope, modules []*schema.Type) (*Module, error) {
	m := &Module{Path: g.ModulePath(t), Type: t, Imports: map[string]string{}}

	if g.policy.IsEngineBase(t.Ref()) {
		m.Text = "export class " + t.Name + "{}\n"
		return m, nil
	}

	if err := g.addImports(m, referencedTypes(t, g.policy, scope), modules); err != nil {
		return nil, err
	}

	var b strings.Builder
	writeImports(&b, m.Imports)
	b.WriteString("export class " + t.Name + " {\n")
	for _, c := range t.Constructors {
		b.WriteString("constructor(" + g.params(c.Params) + ") {}\n")
	}
	for _, p := range t.Properties {
		if !g.policy.ValidProperty(p, scope) {
			continue
		}
		b.WriteString(g.property(p, util.PropertyDefault(p.Type)))
	}
	for _, meth := range t.Methods {
		if !g.policy.ValidMethod(meth, scope) {
			continue
		}
		b.WriteString(g.method(meth))
	}
	b.WriteString("}\n")

	m.Text = b.String()
	g.log.Debugw("Rendered class module", logger.FieldType, t.FullName(), logger.FieldPath, m.Path)
	return m, nil
}

// renderEngine renders the engine module. Property initializers are read
// from the live root value.
func (g *Generator) renderEngine(root schema.Root, engine *schema.Type, scope *schema.Scope, modules []*schema.Type) (*Module, error) {
	m := &Module{Path: g.ModulePath(engine), Type: engine, Engine: true, Imports: map[string]string{}}

	names := make([]string, 0, len(modules))
	for _, t := range modules {
		names = append(names, t.Name)
	}
	if err := g.addImports(m, names, modules); err != nil {
		return nil, err
	}

	var b strings.Builder
	writeImports(&b, m.Imports)
	b.WriteString("class " + EngineClassPrefix + engine.Name + " extends " + schema.EngineBaseName + " {\n")
	for _, c := range engine.Constructors {
		b.WriteString("constructor(" + g.params(c.Params) + ") {super();}\n")
	}
	for _, p := range engine.Properties {
		if !g.policy.ValidProperty(p, scope) {
			continue
		}
		b.WriteString(g.property(p, util.LiveLiteral(p.Type, p.Get(root))))
	}
	for _, meth := range engine.Methods {
		if !g.policy.ValidMethod(meth, scope) {
			continue
		}
		b.WriteString(g.method(meth))
	}
	b.WriteString("}\n\n")
	b.WriteString("export const " + engine.Name + " = new " + EngineClassPrefix + engine.Name + "();\n")

	m.Text = b.String()
	g.log.Debugw("Rendered engine module", logger.FieldEngine, engine.FullName(), logger.FieldPath, m.Path)
	return m, nil
}

func (g *Generator) params(params []schema.Param) string {
	rendered := make([]string, len(params))
	for i, p := range params {
		rendered[i] = g.dialect.Param(p)
	}
	return strings.Join(rendered, ",")
}

func (g *Generator) property(p schema.Property, initializer string) string {
	return p.Name + g.dialect.Annotation(p.Type) + " = " + initializer + ";\n"
}

func (g *Generator) method(m schema.Method) string {
	var b strings.Builder
	b.WriteString(m.Name + "(" + g.params(m.Params) + ")")

	var ret string
	if g.policy.IsAsync(m) {
		b.WriteString(g.dialect.PromiseAnnotation(m.Resolves))
		ret = "return " + util.PendingPromise + ";"
	} else {
		b.WriteString(g.dialect.Annotation(m.Returns))
		if lit := util.ReturnLiteral(m.Returns); lit != "" {
			ret = "return " + lit + ";"
		}
	}

	if ret == "" {
		b.WriteString(" {}\n")
	} else {
		b.WriteString(" { " + ret + " }\n")
	}
	return b.String()
}
