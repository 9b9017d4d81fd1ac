package typegen

import (
	"sort"
	"strings"

	"github.com/teranos/jsbind/schema"
	"github.com/teranos/jsbind/typegen/util"
)

// referencedTypes lists the named types a class module mentions: every
// constructor parameter, and the types of its valid properties and methods.
// Constructor parameters are not filtered, so an engine-base parameter is
// always imported.
func referencedTypes(t *schema.Type, p schema.Policy, scope *schema.Scope) []string {
	var names []string
	add := func(ref schema.TypeRef) {
		if ref.Named() && ref.Name != "" && ref.Name != t.Name {
			names = append(names, ref.Name)
		}
	}

	for _, c := range t.Constructors {
		for _, param := range c.Params {
			add(param.Type)
		}
	}
	for _, prop := range t.Properties {
		if p.ValidProperty(prop, scope) {
			add(prop.Type)
		}
	}
	for _, m := range t.Methods {
		if !p.ValidMethod(m, scope) {
			continue
		}
		for _, param := range m.Params {
			add(param.Type)
		}
		add(m.Returns)
		if p.IsAsync(m) {
			add(m.Resolves)
		}
	}
	return names
}

// addImports records an import for every name that has a module of its own.
// Names without a module (structs, unbound classes) are used unimported.
func (g *Generator) addImports(m *Module, names []string, modules []*schema.Type) error {
	byName := make(map[string]*schema.Type, len(modules))
	for _, t := range modules {
		byName[t.Name] = t
	}

	for _, name := range names {
		target, ok := byName[name]
		if !ok || name == m.Type.Name {
			continue
		}
		if _, done := m.Imports[name]; done {
			continue
		}
		rel, err := util.RelativeImport(m.Path, g.ModulePath(target))
		if err != nil {
			return err
		}
		m.Imports[name] = rel
	}
	return nil
}

// writeImports renders sorted import lines followed by a blank line
func writeImports(b *strings.Builder, imports map[string]string) {
	if len(imports) == 0 {
		return
	}
	names := make([]string, 0, len(imports))
	for name := range imports {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		b.WriteString(ImportLine(name, imports[name]) + "\n")
	}
	b.WriteString("\n")
}

// ImportLine renders one named import
func ImportLine(name, rel string) string {
	return "import {" + name + "} from '" + rel + "';"
}
