package schema

import "strings"

// DefaultAsyncSuffix marks promise-returning methods by name
const DefaultAsyncSuffix = "JsAsync"

// Policy holds the exclusion and classification rules shared by live binding
// and stub generation.
type Policy struct {
	// EngineBase is the binder's own base type
	EngineBase *Type
	// BehaviourBase names the host UI/behaviour base type excluded from binding
	BehaviourBase string
	// AsyncSuffix is matched case-insensitively against method names
	AsyncSuffix string
}

// DefaultPolicy returns the policy used when no configuration is given
func DefaultPolicy() Policy {
	return Policy{
		EngineBase:    EngineBase,
		BehaviourBase: "MonoBehaviour",
		AsyncSuffix:   DefaultAsyncSuffix,
	}
}

func (p Policy) engineBaseName() string {
	if p.EngineBase == nil {
		return EngineBaseName
	}
	return p.EngineBase.Name
}

// Excluded reports types that are or derive from the behaviour base or the
// engine base.
func (p Policy) Excluded(t *Type) bool {
	return t.DerivesFrom(p.BehaviourBase) || t.DerivesFrom(p.engineBaseName())
}

// Bindable reports whether t may be bound into an interpreter's global scope
func (p Policy) Bindable(t *Type) bool {
	return t != nil && t.IsClass() && !p.Excluded(t)
}

// IsEngineBase reports a reference to the binder's own base type
func (p Policy) IsEngineBase(ref TypeRef) bool {
	return ref.Kind == KindClass && ref.Name == p.engineBaseName()
}

// IsAsync classifies a method as promise-returning: its name ends with the
// async suffix (any case) and it returns a raw script value. Nothing else
// about the method is considered.
func (p Policy) IsAsync(m Method) bool {
	suffix := p.AsyncSuffix
	if suffix == "" {
		suffix = DefaultAsyncSuffix
	}
	return m.Returns.Kind == KindScriptValue &&
		strings.HasSuffix(strings.ToLower(m.Name), strings.ToLower(suffix))
}

// ValidType applies the member validity rule: primitives, void for returns,
// script values, and class types other than the excluded bases are valid;
// anything declared in the scope's bound-type set is valid regardless.
func (p Policy) ValidType(ref TypeRef, scope *Scope, isReturn bool) bool {
	if ref.Named() && scope.Declared(ref.Name) {
		return true
	}
	switch ref.Kind {
	case KindVoid:
		return isReturn
	case KindScriptValue:
		return true
	case KindClass:
		if ref.Name == "" || ref.Name == p.BehaviourBase || ref.Name == p.engineBaseName() {
			return false
		}
		if t, ok := scope.Lookup(ref.Name); ok {
			return !p.Excluded(t)
		}
		return true
	}
	return ref.Kind.IsPrimitive()
}

// ValidProperty reports a readable and writable property of a valid type
func (p Policy) ValidProperty(prop Property, scope *Scope) bool {
	return prop.CanRead() && prop.CanWrite() && p.ValidType(prop.Type, scope, false)
}

// ValidMethod reports a method whose parameters and return are all valid
func (p Policy) ValidMethod(m Method, scope *Scope) bool {
	for _, param := range m.Params {
		if !p.ValidType(param.Type, scope, false) {
			return false
		}
	}
	return p.ValidType(m.Returns, scope, true)
}

// Scope is the set of descriptors visible while binding or generating one
// engine: its declared bound types, plus the engine itself and the engine base.
type Scope struct {
	declared map[string]*Type
	known    map[string]*Type
}

// NewScope builds the scope of root. A nil root yields an empty scope.
func NewScope(p Policy, root Root) *Scope {
	s := &Scope{
		declared: make(map[string]*Type),
		known:    make(map[string]*Type),
	}
	if root == nil {
		return s
	}
	for _, t := range root.TypesToBind() {
		if t == nil {
			continue
		}
		if _, dup := s.declared[t.Name]; !dup {
			s.declared[t.Name] = t
		}
		s.add(t)
	}
	s.add(root.Describe())
	if p.EngineBase != nil {
		s.add(p.EngineBase)
	}
	return s
}

// ScopeOf builds a scope from a plain list of declared types
func ScopeOf(types ...*Type) *Scope {
	s := &Scope{
		declared: make(map[string]*Type),
		known:    make(map[string]*Type),
	}
	for _, t := range types {
		s.declared[t.Name] = t
		s.add(t)
	}
	return s
}

func (s *Scope) add(t *Type) {
	if t == nil {
		return
	}
	if _, ok := s.known[t.Name]; !ok {
		s.known[t.Name] = t
	}
}

// Declared reports whether name is in the engine's declared bound-type set
func (s *Scope) Declared(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.declared[name]
	return ok
}

// Lookup finds a visible descriptor by name
func (s *Scope) Lookup(name string) (*Type, bool) {
	if s == nil {
		return nil, false
	}
	t, ok := s.known[name]
	return t, ok
}
