package transform

import (
	"testing"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/google/go-cmp/cmp"
)

var builtinPasses = append(declarationPasses, "TransformBuiltinMethods")

func TestTransformBuiltinMethods(t *testing.T) {
	src := `import cython

def f(int x, y):
    cdef int *p
    a = cython.address(x)
    b = cython.operator.dereference(p)
    c = cython.operator.comma(x, y)
    d = cython.cast(cython.double, x)
    e = cython.sizeof(x)
    g = cython.cmod(x, 3)
    h = cython.cdiv(x, 3)
    i = cython.declare(cython.int, 5)
    j = cython.compiled
    k = cython.NULL
    l = cython.operator.postincrement(x)
    m = cython.declare(cython.int)
`
	want := `def f(int x, y):
    a = &x
    b = *p
    c = cython.operator.comma(x, y)
    d = <cython.double>x
    e = sizeof(x)
    g = x % 3
    h = x / 3
    i = 5
    j = True
    k = NULL
    l = x++
    m = None
`
	res := compile(t, src, builtinPasses...)
	if len(res.Diagnostics) > 0 {
		t.Fatalf("unexpected diagnostics: %v", messages(res))
	}
	if diff := cmp.Diff(want, printModule(res)); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}

	var cdivision []string
	for _, b := range findAll[*ast.BinOp](res.Module) {
		if b.CDivision {
			cdivision = append(cdivision, b.Op)
		}
	}
	if diff := cmp.Diff([]string{"%", "/"}, cdivision); diff != "" {
		t.Errorf("c division operators (-want +got):\n%s", diff)
	}
	if comma := find[*ast.BinOp](res.Module); comma == nil || comma.Op != "," {
		t.Errorf("comma operator = %+v", comma)
	}
}

func TestTransformBuiltinTypeof(t *testing.T) {
	out := lower(t, "cimport cython\ndef f(x):\n    return cython.typeof(x)\n", builtinPasses...)
	if want := "def f(x):\n    return typeof(x)\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestTransformBuiltinLocals(t *testing.T) {
	src := "def f(a):\n    b = 1\n    return locals()\n"
	want := "def f(a):\n    b = 1\n    return {\"a\": a, \"b\": b}\n"
	if diff := cmp.Diff(want, lower(t, src, builtinPasses...)); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}

	res := compile(t, src, builtinPasses...)
	dict := find[*ast.Dict](res.Module)
	for _, item := range dict.Items {
		if name := item.Value.(*ast.Name); !name.Entry.Valid() {
			t.Errorf("locals() value %s is not bound", name.Name)
		}
	}
}

func TestTransformBuiltinLocalsShadowed(t *testing.T) {
	src := "def f(locals):\n    return locals()\n"
	if got, want := lower(t, src, builtinPasses...), "def f(locals):\n    return locals()\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestTransformBuiltinErrors(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{"not_a_type", "cython.cast(y, x)", "Not a type"},
		{"declare_not_a_type", "cython.declare(y)", "Not a type"},
		{"arity", "cython.sizeof(x, y)", "sizeof() takes exactly one argument"},
		{"comma_arity", "cython.operator.comma(x)", "operator.comma() takes exactly two arguments"},
		{"declare_arity", "cython.declare()", "declare() takes one or two arguments"},
		{"unknown_function", "cython.frobnicate(x)", "'frobnicate' not a valid cython language construct"},
		{"unknown_attribute", "cython.frobnicate", "'frobnicate' not a valid cython attribute or is being used incorrectly"},
		{"locals_args", "locals(x)", "Builtin 'locals()' called with wrong number of args, expected 0, got 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "import cython\ndef f(x, y):\n    return " + tt.expr + "\n"
			expectError(t, src, tt.want, builtinPasses...)
		})
	}
}
