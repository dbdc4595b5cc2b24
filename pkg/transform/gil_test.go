package transform

import (
	"testing"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/printer"
)

func TestGilCheckErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
		line int
	}{
		{
			name: "nested_release",
			src:  "def f():\n    with nogil:\n        with nogil:\n            pass\n",
			want: "Trying to release the GIL while it was previously released.",
			line: 3,
		},
		{
			name: "release_in_nogil_function",
			src:  "cdef void f() nogil:\n    with nogil:\n        pass\n",
			want: "Trying to release the GIL while it was previously released.",
			line: 2,
		},
		{
			name: "acquire_while_held",
			src:  "with gil:\n    pass\n",
			want: "Trying to acquire the GIL while it is already held.",
			line: 1,
		},
		{
			name: "python_with_without_gil",
			src:  "def f(m):\n    with nogil:\n        with m:\n            pass\n",
			want: "with statement not allowed without gil",
			line: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := expectError(t, tt.src, tt.want, "NormalizeTree", "GilCheck")
			if got := res.Diagnostics[0].Pos.Line; got != tt.line {
				t.Errorf("error on line %d, want %d", got, tt.line)
			}
		})
	}
}

func TestGilCheckAccepts(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{
			name: "release_and_reacquire",
			src:  "def f():\n    with nogil:\n        with gil:\n            g()\n            with nogil:\n                pass\n",
		},
		{
			name: "acquire_in_nogil_function",
			src:  "cdef void f() nogil:\n    with gil:\n        g()\n",
		},
		{
			name: "state_ends_with_block",
			src:  "def f(m):\n    with nogil:\n        x = 1\n    with m:\n        pass\n",
		},
		{
			name: "following_def_holds_gil",
			src:  "cdef void f() nogil:\n    pass\ndef g(m):\n    with m:\n        pass\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := compile(t, tt.src, "NormalizeTree", "GilCheck")
			if len(res.Diagnostics) > 0 {
				t.Errorf("unexpected diagnostics: %v", messages(res))
			}
		})
	}
}

func TestGILStatSurvivesWithTransform(t *testing.T) {
	src := "def f(m):\n    with m:\n        with nogil:\n            x = 1\n"
	res := compile(t, src, "NormalizeTree", "GilCheck", "WithTransform")
	if len(res.Diagnostics) > 0 {
		t.Fatalf("unexpected diagnostics: %v", messages(res))
	}
	if w := find[*ast.With](res.Module); w != nil {
		t.Errorf("with statement survived at %s", w.Position())
	}
	g := find[*ast.GILStat](res.Module)
	if g == nil || g.State != "nogil" {
		t.Fatalf("GILStat = %+v, want the nogil block kept", g)
	}
	if a := find[*ast.SingleAssignment](g.Body); a == nil || printer.Expr(a.Lhs) != "x" {
		t.Errorf("nogil body lost its assignment")
	}
}
