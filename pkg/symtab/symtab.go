// Package symtab - Lexical scopes and their entries
// Design: one Table per compilation owns every scope in an arena; tree
// nodes hold Handles the table resolves, never pointers into it
package symtab

import (
	"fmt"
	"strings"

	"github.com/GriffinCanCode/pyxc/pkg/source"
)

// ScopeID identifies a scope inside its Table. The zero value means "none".
type ScopeID int

// ScopeKind is the kind of lexical environment.
type ScopeKind int

const (
	BuiltinScope ScopeKind = iota
	ModuleScope
	ClassScope
	CClassScope
	FunctionScope
	StructScope
	ClosureScope
)

var scopeKindNames = [...]string{
	BuiltinScope:  "builtin",
	ModuleScope:   "module",
	ClassScope:    "class",
	CClassScope:   "cclass",
	FunctionScope: "function",
	StructScope:   "struct",
	ClosureScope:  "closure",
}

func (k ScopeKind) String() string {
	if int(k) < len(scopeKindNames) {
		return scopeKindNames[k]
	}
	return fmt.Sprintf("ScopeKind(%d)", int(k))
}

// EntryKind says what an entry names.
type EntryKind int

const (
	VarEntry EntryKind = iota
	ArgEntry
	FuncEntry
	ClassEntry
	StructEntry
	EnumEntry
	PropertyEntry
	ModuleEntry
	BuiltinEntry
)

var entryKindNames = [...]string{
	VarEntry:      "var",
	ArgEntry:      "arg",
	FuncEntry:     "func",
	ClassEntry:    "class",
	StructEntry:   "struct",
	EnumEntry:     "enum",
	PropertyEntry: "property",
	ModuleEntry:   "module",
	BuiltinEntry:  "builtin",
}

func (k EntryKind) String() string {
	if int(k) < len(entryKindNames) {
		return entryKindNames[k]
	}
	return fmt.Sprintf("EntryKind(%d)", int(k))
}

// Visibility values.
const (
	Private  = "private"
	Public   = "public"
	Readonly = "readonly"
	Extern   = "extern"
)

// ObjectType is the placeholder type of implicitly bound Python names.
const ObjectType = "object"

// Entry is one declared name.
type Entry struct {
	Name       string
	Type       string // placeholder, refined by type analysis later
	Kind       EntryKind
	Visibility string
	Pos        source.Pos
	Cdef       bool
	Implicit   bool // bound by assignment rather than declared
	// NeedsProperty is set for public/readonly cdef class attributes
	// that get a generated accessor.
	NeedsProperty bool
	// Members is the member scope of class, struct and closure entries.
	Members ScopeID
}

// Handle is a non-owning reference to an entry.
type Handle struct {
	Scope ScopeID
	Slot  int
}

// Valid reports whether the handle was ever bound.
func (h Handle) Valid() bool {
	return h.Scope != 0
}

// Scope is a lexical environment. Insertion order is declaration order.
type Scope struct {
	ID    ScopeID
	Kind  ScopeKind
	Name  string
	Outer ScopeID

	// IsClosureScope marks function scopes whose locals live in a
	// synthesized closure record.
	IsClosureScope bool
	// ScopeClass is the closure record entry declared for this scope.
	ScopeClass Handle

	entries []*Entry
	index   map[string]int
}

// Declare adds e to the scope. It returns the existing handle and false
// when the name is already declared here.
func (s *Scope) Declare(e Entry) (Handle, bool) {
	if slot, ok := s.index[e.Name]; ok {
		return Handle{Scope: s.ID, Slot: slot}, false
	}
	if e.Visibility == "" {
		e.Visibility = Private
	}
	entry := e
	s.entries = append(s.entries, &entry)
	slot := len(s.entries) - 1
	s.index[e.Name] = slot
	return Handle{Scope: s.ID, Slot: slot}, true
}

// LookupHere finds name in this scope only.
func (s *Scope) LookupHere(name string) (Handle, *Entry) {
	slot, ok := s.index[name]
	if !ok {
		return Handle{}, nil
	}
	return Handle{Scope: s.ID, Slot: slot}, s.entries[slot]
}

// Entries returns the entries in declaration order.
func (s *Scope) Entries() []*Entry {
	return s.entries
}

// Len returns the number of entries.
func (s *Scope) Len() int {
	return len(s.entries)
}

// IsClass reports whether s is a Python or cdef class body.
func (s *Scope) IsClass() bool {
	return s.Kind == ClassScope || s.Kind == CClassScope
}

// Table owns all scopes of one compilation.
type Table struct {
	scopes   []*Scope
	builtins ScopeID
}

// NewTable creates a table seeded with the builtin scope.
func NewTable() *Table {
	t := &Table{}
	b := t.NewScope(BuiltinScope, "__builtin__", 0)
	for _, name := range builtinNames {
		b.Declare(Entry{Name: name, Type: ObjectType, Kind: BuiltinEntry, Visibility: Extern})
	}
	t.builtins = b.ID
	return t
}

// NewScope allocates a scope nested in outer.
func (t *Table) NewScope(kind ScopeKind, name string, outer ScopeID) *Scope {
	s := &Scope{
		ID:    ScopeID(len(t.scopes) + 1),
		Kind:  kind,
		Name:  name,
		Outer: outer,
		index: make(map[string]int),
	}
	t.scopes = append(t.scopes, s)
	return s
}

// Scope resolves an id; it returns nil for the zero id.
func (t *Table) Scope(id ScopeID) *Scope {
	if id <= 0 || int(id) > len(t.scopes) {
		return nil
	}
	return t.scopes[id-1]
}

// Entry resolves a handle; it returns nil for an invalid handle.
func (t *Table) Entry(h Handle) *Entry {
	s := t.Scope(h.Scope)
	if s == nil || h.Slot < 0 || h.Slot >= len(s.entries) {
		return nil
	}
	return s.entries[h.Slot]
}

// Builtins returns the builtin scope id.
func (t *Table) Builtins() ScopeID {
	return t.builtins
}

// Lookup resolves name from scope outwards, ending with the builtins.
// Class bodies are only visible to code written directly inside them.
func (t *Table) Lookup(from ScopeID, name string) (Handle, bool) {
	skipClasses := false
	for id := from; id != 0; {
		s := t.Scope(id)
		if s == nil {
			break
		}
		if !(skipClasses && s.IsClass()) {
			if h, e := s.LookupHere(name); e != nil {
				return h, true
			}
		}
		if s.Kind == FunctionScope || s.Kind == ClosureScope {
			skipClasses = true
		}
		id = s.Outer
	}
	if from != t.builtins {
		if h, e := t.Scope(t.builtins).LookupHere(name); e != nil {
			return h, true
		}
	}
	return Handle{}, false
}

// Qualified returns the dotted path of a scope below module level.
func (t *Table) Qualified(id ScopeID) string {
	var parts []string
	for s := t.Scope(id); s != nil && s.Kind != ModuleScope && s.Kind != BuiltinScope; s = t.Scope(s.Outer) {
		parts = append(parts, s.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// Len returns the number of scopes, builtins included.
func (t *Table) Len() int {
	return len(t.scopes)
}
