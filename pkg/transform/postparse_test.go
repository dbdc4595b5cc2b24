package transform

import (
	"testing"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/visitor"
	"github.com/google/go-cmp/cmp"
)

func TestPostParseSplitsDeclarations(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		want      string
		wantFirst bool
	}{
		{
			name:      "function_scope",
			src:       "def f():\n    cdef int x = 1, y\n",
			want:      "def f():\n    cdef int x, y\n    x = 1\n",
			wantFirst: true,
		},
		{
			name: "module_scope",
			src:  "cdef int x = 1\n",
			want: "cdef int x\nx = 1\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := compile(t, tt.src, "NormalizeTree", "PostParse")
			if len(res.Diagnostics) > 0 {
				t.Fatalf("unexpected diagnostics: %v", messages(res))
			}
			if diff := cmp.Diff(tt.want, printModule(res)); diff != "" {
				t.Errorf("output (-want +got):\n%s", diff)
			}
			if a := find[*ast.SingleAssignment](res.Module); a == nil || a.First != tt.wantFirst {
				t.Errorf("assignment = %+v, want First=%v", a, tt.wantFirst)
			}
		})
	}
}

func TestPostParseFieldDefault(t *testing.T) {
	res := expectError(t, "cdef class A:\n    cdef int x = 1\n",
		"Cannot assign default value to fields in cdef classes, structs or unions",
		"NormalizeTree", "PostParse")
	if d := find[*ast.CVarDef](res.Module); d != nil {
		t.Errorf("invalid field declaration kept: %+v", d)
	}
}

func TestPostParseBufferOptions(t *testing.T) {
	res := compile(t, "def f():\n    cdef object[int, ndim=2, mode=\"c\"] buf\n", "NormalizeTree", "PostParse")
	if len(res.Diagnostics) > 0 {
		t.Fatalf("unexpected diagnostics: %v", messages(res))
	}
	opts := find[*ast.TemplatedType](res.Module).Options
	if opts == nil {
		t.Fatal("buffer options not interpreted")
	}
	if dtype, ok := opts.Dtype.(*ast.Name); !ok || dtype.Name != "int" {
		t.Errorf("dtype = %#v, want int", opts.Dtype)
	}
	if opts.Ndim != 2 || opts.Mode != "c" || !opts.NegativeIndices || opts.Cast {
		t.Errorf("options = %+v", opts)
	}
}

func TestPostParseBufferDefaults(t *testing.T) {
	res := compile(t, "def f(object[double] a):\n    return a\n", "NormalizeTree", "PostParse")
	if len(res.Diagnostics) > 0 {
		t.Fatalf("unexpected diagnostics: %v", messages(res))
	}
	opts := find[*ast.TemplatedType](res.Module).Options
	if opts == nil || opts.Ndim != 1 || opts.Mode != "full" || !opts.NegativeIndices {
		t.Errorf("options = %+v, want ndim 1, mode full, negative indices", opts)
	}
}

func TestPostParseBufferOptionErrors(t *testing.T) {
	tests := []struct {
		name string
		typ  string
		want string
	}{
		{"too_many", `object[int, 2, "c", True]`, "Too many buffer options"},
		{"unknown", "object[int, foo=1]", `"foo" is not a buffer option`},
		{"duplicate", "object[int, 2, ndim=2]", `"ndim" buffer option already supplied`},
		{"no_dtype", "object[ndim=2]", `"dtype" missing`},
		{"negative_ndim", "object[int, ndim=-1]", "ndim must be a non-negative integer"},
		{"bad_mode", `object[int, mode="x"]`, "Only allowed buffer modes are"},
		{"bad_cast", "object[int, cast=1]", `"cast" must be a boolean`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "def f():\n    cdef " + tt.typ + " buf\n"
			res := expectError(t, src, tt.want, "NormalizeTree", "PostParse")
			if opts := find[*ast.TemplatedType](res.Module).Options; opts != nil {
				t.Errorf("options set despite error: %+v", opts)
			}
		})
	}
}

func TestPostParseClassBufferDefaults(t *testing.T) {
	src := "cdef class A:\n    cdef __cythonbufferdefaults__ = {\"ndim\": 2, \"mode\": \"strided\"}\n    cdef int y\n"
	res := compile(t, src, "NormalizeTree", "PostParse")
	if len(res.Diagnostics) > 0 {
		t.Fatalf("unexpected diagnostics: %v", messages(res))
	}
	class := find[*ast.ClassDef](res.Module)
	opts := class.BufferDefaults
	if opts == nil || opts.Ndim != 2 || opts.Mode != "strided" || opts.Dtype != nil {
		t.Fatalf("buffer defaults = %+v", opts)
	}
	if got, want := printModule(res), "cdef class A:\n    cdef int y\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestPostParseClassBufferDefaultsErrors(t *testing.T) {
	expectError(t, "cdef class A:\n    cdef __cythonbufferdefaults__ = 1\n",
		"Invalid buffer defaults specification", "NormalizeTree", "PostParse")
	expectError(t, "cdef class A:\n    cdef int *__cythonbufferdefaults__ = {}\n",
		"Special attributes must not have a type declared", "NormalizeTree", "PostParse")
	expectError(t, "cdef class A:\n    cdef __cythonbufferdefaults__ = {\"mode\": \"z\"}\n",
		"Only allowed buffer modes are", "NormalizeTree", "PostParse")
}

func TestPostParseLambdaNames(t *testing.T) {
	res := compile(t, "def f():\n    g = lambda x: x\n    return lambda: g\n", "NormalizeTree", "PostParse")
	if len(res.Diagnostics) > 0 {
		t.Fatalf("unexpected diagnostics: %v", messages(res))
	}
	var names []string
	visitor.Inspect(res.Module, func(n ast.Node) bool {
		if l, ok := n.(*ast.Lambda); ok {
			names = append(names, l.LambdaName)
		}
		return true
	})
	if diff := cmp.Diff([]string{"lambda1", "lambda2"}, names); diff != "" {
		t.Errorf("lambda names (-want +got):\n%s", diff)
	}

	expectError(t, "g = lambda: 1\n", "lambda functions are currently only supported in functions",
		"NormalizeTree", "PostParse")
}

func TestPostParseParallelAssignment(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "nested",
			src:  "a, (b, c) = 1, (2, 3)\n",
			want: "a, b, c = 1, 2, 3\n",
		},
		{
			name: "swap",
			src:  "a, b = b, a\n",
			want: "a, b = b, a\n",
		},
		{
			name: "starred",
			src:  "a, *b, c = 1, 2, 3, 4\n",
			want: "a, c, b = 1, 4, [2, 3]\n",
		},
		{
			name: "cascaded",
			src:  "a, b = c, d = 1, 2\n",
			want: "a = c = 1\nb = d = 2\n",
		},
		{
			name: "duplicate_rhs",
			src:  "(a, b), c = d = (1, f()), 2\n",
			want: "__pyx_parallel_1 = f()\nd, a, b, c = ((1, __pyx_parallel_1), 2), 1, __pyx_parallel_1, 2\n",
		},
		{
			name: "single_sequence_untouched",
			src:  "a = 1, 2\n",
			want: "a = 1, 2\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, lower(t, tt.src, "NormalizeTree", "PostParse")); diff != "" {
				t.Errorf("output (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPostParseParallelAssignmentErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"a, b = 1, 2, 3\n", "too many values to unpack (expected 2, got 3)"},
		{"a, b, c = 1, 2\n", "need more than 2 values to unpack"},
		{"a, b = 1,\n", "need more than 1 value to unpack"},
		{"*a, *b = 1, 2\n", "more than 1 starred expression in assignment"},
	}
	for _, tt := range tests {
		expectError(t, tt.src, tt.want, "NormalizeTree", "PostParse")
	}
}
