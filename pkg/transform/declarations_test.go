package transform

import (
	"strings"
	"testing"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/diag"
	"github.com/GriffinCanCode/pyxc/pkg/symtab"
	"github.com/google/go-cmp/cmp"
)

var declarationPasses = []string{"NormalizeTree", "PostParse", "InterpretCompilerDirectives", "AnalyseDeclarations"}

type entrySummary struct {
	Name string
	Type string
	Kind symtab.EntryKind
	Cdef bool
}

func summarize(s *symtab.Scope) []entrySummary {
	var out []entrySummary
	for _, e := range s.Entries() {
		out = append(out, entrySummary{e.Name, e.Type, e.Kind, e.Cdef})
	}
	return out
}

func TestAnalyseDeclarationsScopes(t *testing.T) {
	src := `cdef int n = 0

def f(int a, b):
    cdef double *p
    c = a + b
    for i in range(c):
        len(i)
    return p
`
	res := compile(t, src, declarationPasses...)
	if len(res.Diagnostics) > 0 {
		t.Fatalf("unexpected diagnostics: %v", messages(res))
	}

	module := res.Table.Scope(res.Module.Scope)
	wantModule := []entrySummary{
		{"__name__", "object", symtab.VarEntry, false},
		{"__file__", "object", symtab.VarEntry, false},
		{"__doc__", "object", symtab.VarEntry, false},
		{"n", "int", symtab.VarEntry, true},
		{"f", "object", symtab.FuncEntry, false},
	}
	if diff := cmp.Diff(wantModule, summarize(module)); diff != "" {
		t.Errorf("module scope (-want +got):\n%s", diff)
	}

	fn := find[*ast.FuncDef](res.Module)
	if e := res.Table.Entry(fn.Entry); e == nil || e.Name != "f" {
		t.Errorf("function entry = %+v", e)
	}
	local := res.Table.Scope(fn.LocalScope)
	if local.Outer != module.ID || local.Kind != symtab.FunctionScope {
		t.Errorf("local scope = %+v", local)
	}
	wantLocal := []entrySummary{
		{"a", "int", symtab.ArgEntry, true},
		{"b", "object", symtab.ArgEntry, false},
		{"p", "double*", symtab.VarEntry, true},
		{"c", "object", symtab.VarEntry, false},
		{"i", "object", symtab.VarEntry, false},
	}
	if diff := cmp.Diff(wantLocal, summarize(local)); diff != "" {
		t.Errorf("function scope (-want +got):\n%s", diff)
	}

	bound := map[string]symtab.EntryKind{}
	for _, n := range findAll[*ast.Name](fn.Body) {
		e := res.Table.Entry(n.Entry)
		if e == nil {
			t.Errorf("name %s not bound", n.Name)
			continue
		}
		bound[n.Name] = e.Kind
	}
	wantBound := map[string]symtab.EntryKind{
		"a": symtab.ArgEntry, "b": symtab.ArgEntry, "c": symtab.VarEntry,
		"i": symtab.VarEntry, "p": symtab.VarEntry,
		"range": symtab.BuiltinEntry, "len": symtab.BuiltinEntry,
	}
	if diff := cmp.Diff(wantBound, bound); diff != "" {
		t.Errorf("bound names (-want +got):\n%s", diff)
	}

	if out := printModule(res); strings.Contains(out, "cdef") {
		t.Errorf("declarations should be dropped:\n%s", out)
	}
}

func TestAnalyseDeclarationsTypes(t *testing.T) {
	src := `cdef struct S:
    int a
    char *name

cdef enum Color:
    red, green

cdef public enum Flags:
    on

x = red
`
	res := compile(t, src, declarationPasses...)
	if len(res.Diagnostics) > 0 {
		t.Fatalf("unexpected diagnostics: %v", messages(res))
	}
	module := res.Table.Scope(res.Module.Scope)

	_, s := module.LookupHere("S")
	if s == nil || s.Kind != symtab.StructEntry {
		t.Fatalf("struct entry = %+v", s)
	}
	wantFields := []entrySummary{
		{"a", "int", symtab.VarEntry, true},
		{"name", "char*", symtab.VarEntry, true},
	}
	if diff := cmp.Diff(wantFields, summarize(res.Table.Scope(s.Members))); diff != "" {
		t.Errorf("struct fields (-want +got):\n%s", diff)
	}
	if _, red := module.LookupHere("red"); red == nil || red.Type != "Color" {
		t.Errorf("enum item entry = %+v", red)
	}
	if _, on := module.LookupHere("on"); on == nil || on.Visibility != symtab.Public {
		t.Errorf("public enum item entry = %+v", on)
	}

	out := printModule(res)
	if strings.Contains(out, "struct") || strings.Contains(out, "Color") {
		t.Errorf("struct and private enum should be dropped:\n%s", out)
	}
	if !strings.Contains(out, "cdef public enum Flags:") || !strings.Contains(out, "x = red\n") {
		t.Errorf("public enum and assignment should stay:\n%s", out)
	}
}

func TestAnalyseDeclarationsErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"redeclared", "cdef int x\ncdef double x\n", "'x' redeclared"},
		{"redeclared_arg", "def f(int a):\n    cdef int a\n", "'a' redeclared"},
		{"undeclared", "def f():\n    return y\n", "undeclared name not builtin: y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := expectError(t, tt.src, tt.want, declarationPasses...)
			if res.Diagnostics[0].Level != diag.LevelError {
				t.Errorf("level = %s, want error", res.Diagnostics[0].Level)
			}
		})
	}
}

func TestAnalyseDeclarationsPythonRedefinition(t *testing.T) {
	lower(t, "def f():\n    pass\ndef f():\n    pass\nx = 1\nx = 2\n", declarationPasses...)
}

func TestAnalyseDeclarationsDeclaredAfterUse(t *testing.T) {
	res := expectError(t, "def f():\n    x = 1\n    cdef int x\n    return x\n",
		"cdef variable 'x' declared after it is used", declarationPasses...)
	if res.Diagnostics[0].Level != diag.LevelWarning {
		t.Errorf("level = %s, want warning", res.Diagnostics[0].Level)
	}
}

func TestAnalyseDeclarationsProperties(t *testing.T) {
	src := `cdef class A:
    cdef public int x
    cdef readonly object y
    cdef public object z
    cdef int hidden
`
	want := `cdef class A:
    property x:
        def __get__(self):
            return self.x
        def __set__(self, value):
            self.x = value
    property y:
        def __get__(self):
            return self.y
    property z:
        def __get__(self):
            return self.z
        def __set__(self, value):
            self.z = value
        def __del__(self):
            self.z = None
`
	if diff := cmp.Diff(want, lower(t, src, declarationPasses...)); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestAnalyseDeclarationsEmbedSignature(t *testing.T) {
	src := "# cython: embedsignature=True\ncdef class A:\n    cdef public int x\n    cdef readonly object y\n"
	res := compile(t, src, declarationPasses...)
	if len(res.Diagnostics) > 0 {
		t.Fatalf("unexpected diagnostics: %v", messages(res))
	}
	var docs []string
	for _, p := range findAll[*ast.PropertyDef](res.Module) {
		docs = append(docs, p.Doc)
	}
	if diff := cmp.Diff([]string{"x: 'int'", "y: object"}, docs); diff != "" {
		t.Errorf("property docs (-want +got):\n%s", diff)
	}
}
