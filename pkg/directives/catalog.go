// Package directives is the fixed registry of compiler directives: their
// value grammar, default value and the scopes they may appear in.
package directives

import (
	"fmt"
	"maps"
	"slices"
	"sort"
)

// Kind is the value grammar of a directive.
type Kind int

const (
	Bool Kind = iota
	Str
	Int
	Dict
	List
	// Marker directives are used bare (@cython.cfunc) and carry no value.
	Marker
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Str:
		return "str"
	case Int:
		return "int"
	case Dict:
		return "dict"
	case List:
		return "list"
	case Marker:
		return "marker"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Scope names a place where a directive may be written.
const (
	ModuleScope   = "module"
	FunctionScope = "function"
	ClassScope    = "class"
	WithScope     = "with statement"
)

// Spec describes one directive.
type Spec struct {
	Name    string
	Kind    Kind
	Default any
	// Scopes lists the legal scopes; empty means everywhere.
	Scopes []string
}

var catalog = map[string]Spec{}

func register(name string, kind Kind, def any, scopes ...string) {
	catalog[name] = Spec{Name: name, Kind: kind, Default: def, Scopes: scopes}
}

func init() {
	register("boundscheck", Bool, true)
	register("wraparound", Bool, true)
	register("nonecheck", Bool, false)
	register("embedsignature", Bool, false)
	register("cdivision", Bool, false)
	register("cdivision_warnings", Bool, false)
	register("always_allow_keywords", Bool, false)
	register("profile", Bool, false)
	register("infer_types", Bool, false)
	register("auto_cpdef", Bool, false, ModuleScope)
	register("doctesthack", Bool, false, ModuleScope)
	register("language_level", Int, 2, ModuleScope)
	register("callspec", Str, "")
	register("locals", Dict, map[string]any{}, FunctionScope)
	register("test_assert_path_exists", List, []string{}, FunctionScope)
	register("test_fail_if_path_exists", List, []string{}, FunctionScope)
	register("cfunc", Marker, nil, FunctionScope, WithScope)
	register("ccall", Marker, nil, FunctionScope, WithScope)
	register("cclass", Marker, nil, ClassScope, WithScope)
}

// Lookup returns the spec of a directive.
func Lookup(name string) (Spec, bool) {
	s, ok := catalog[name]
	return s, ok
}

// Names returns every registered directive name, sorted.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Allowed reports whether name may be used in scope.
func Allowed(name, scope string) bool {
	s, ok := catalog[name]
	if !ok || len(s.Scopes) == 0 {
		return true
	}
	return slices.Contains(s.Scopes, scope)
}

// Set maps directive names to values: bool, string, int, []string,
// map[string]any or nil for markers.
type Set map[string]any

// Defaults returns a fresh set holding the default of every valued
// directive.
func Defaults() Set {
	s := make(Set, len(catalog))
	for name, spec := range catalog {
		if spec.Kind == Marker {
			continue
		}
		s[name] = copyValue(spec.Default)
	}
	return s
}

// Default returns a copy of the default value of name.
func Default(name string) any {
	return copyValue(catalog[name].Default)
}

// Copy returns a copy of s; list and dict values are copied too.
func (s Set) Copy() Set {
	if s == nil {
		return nil
	}
	c := make(Set, len(s))
	for k, v := range s {
		c[k] = copyValue(v)
	}
	return c
}

// Update overrides s key-wise with the values of o.
func (s Set) Update(o Set) {
	for k, v := range o {
		s[k] = copyValue(v)
	}
}

// Has reports whether name is present, markers included.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Bool returns a boolean directive value, false if absent.
func (s Set) Bool(name string) bool {
	b, _ := s[name].(bool)
	return b
}

// Int returns an integer directive value, 0 if absent.
func (s Set) Int(name string) int {
	i, _ := s[name].(int)
	return i
}

// Keys returns the directive names in s, sorted.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func copyValue(v any) any {
	switch x := v.(type) {
	case []string:
		return slices.Clone(x)
	case map[string]any:
		return maps.Clone(x)
	}
	return v
}
