package symtab

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDeclare(t *testing.T) {
	tab := NewTable()
	mod := tab.NewScope(ModuleScope, "m", tab.Builtins())

	h, ok := mod.Declare(Entry{Name: "x", Type: "int", Cdef: true})
	if !ok || !h.Valid() {
		t.Fatalf("Declare = %v, %v", h, ok)
	}
	if e := tab.Entry(h); e.Visibility != Private || e.Type != "int" {
		t.Errorf("entry = %+v", e)
	}

	again, ok := mod.Declare(Entry{Name: "x", Type: "double"})
	if ok || again != h {
		t.Errorf("redeclaration = %v, %v; want existing handle", again, ok)
	}
	if tab.Entry(h).Type != "int" {
		t.Error("redeclaration overwrote the entry")
	}

	mod.Declare(Entry{Name: "y", Visibility: Public})
	var names []string
	for _, e := range mod.Entries() {
		names = append(names, e.Name+":"+e.Visibility)
	}
	if diff := cmp.Diff([]string{"x:private", "y:public"}, names); diff != "" {
		t.Errorf("entries (-want +got):\n%s", diff)
	}
	if mod.Len() != 2 {
		t.Errorf("Len() = %d", mod.Len())
	}
}

func TestLookup(t *testing.T) {
	tab := NewTable()
	mod := tab.NewScope(ModuleScope, "m", tab.Builtins())
	mod.Declare(Entry{Name: "g"})
	cls := tab.NewScope(ClassScope, "C", mod.ID)
	cls.Declare(Entry{Name: "attr"})
	method := tab.NewScope(FunctionScope, "meth", cls.ID)
	method.Declare(Entry{Name: "self", Kind: ArgEntry})
	inner := tab.NewScope(FunctionScope, "inner", method.ID)

	tests := []struct {
		from  ScopeID
		name  string
		found bool
		scope ScopeID
	}{
		{cls.ID, "attr", true, cls.ID},
		{cls.ID, "g", true, mod.ID},
		{method.ID, "attr", false, 0},
		{inner.ID, "self", true, method.ID},
		{inner.ID, "g", true, mod.ID},
		{inner.ID, "len", true, tab.Builtins()},
		{inner.ID, "nosuch", false, 0},
	}
	for _, tt := range tests {
		h, ok := tab.Lookup(tt.from, tt.name)
		if ok != tt.found || h.Scope != tt.scope {
			t.Errorf("Lookup(%s, %q) = %v, %v; want scope %d, %v",
				tab.Scope(tt.from).Name, tt.name, h, ok, tt.scope, tt.found)
		}
	}
}

func TestBuiltins(t *testing.T) {
	tab := NewTable()
	_, e := tab.Scope(tab.Builtins()).LookupHere("range")
	if e == nil || e.Kind != BuiltinEntry || e.Visibility != Extern {
		t.Errorf("range = %+v", e)
	}
	if !IsBasicType("Py_ssize_t") || IsBasicType("Py_object") {
		t.Error("IsBasicType misclassifies names")
	}
}

func TestQualified(t *testing.T) {
	tab := NewTable()
	mod := tab.NewScope(ModuleScope, "m", tab.Builtins())
	outer := tab.NewScope(FunctionScope, "outer", mod.ID)
	inner := tab.NewScope(FunctionScope, "inner", outer.ID)
	if got := tab.Qualified(inner.ID); got != "outer.inner" {
		t.Errorf("Qualified = %q", got)
	}
	if got := tab.Qualified(mod.ID); got != "" {
		t.Errorf("Qualified(module) = %q", got)
	}
}

func TestInvalidHandles(t *testing.T) {
	tab := NewTable()
	if tab.Scope(0) != nil || tab.Scope(ScopeID(tab.Len()+1)) != nil {
		t.Error("out of range scope resolved")
	}
	if tab.Entry(Handle{}) != nil || tab.Entry(Handle{Scope: tab.Builtins(), Slot: -1}) != nil {
		t.Error("invalid handle resolved")
	}
	if (Handle{}).Valid() {
		t.Error("zero handle is valid")
	}
}

func TestKindStrings(t *testing.T) {
	if CClassScope.String() != "cclass" || ScopeKind(42).String() != "ScopeKind(42)" {
		t.Error("ScopeKind.String")
	}
	if PropertyEntry.String() != "property" || EntryKind(42).String() != "EntryKind(42)" {
		t.Error("EntryKind.String")
	}
}
