package transform

import (
	"strings"
	"testing"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/google/go-cmp/cmp"
)

func TestWithTransform(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "target",
			src:  "with m as x:\n    body()\n",
			want: `__pyx_mgr_1 = m
__pyx_exit_2 = __pyx_mgr_1.__exit__
__pyx_value_3 = __pyx_mgr_1.__enter__()
__pyx_exc_4 = True
try:
    try:
        __pyx_excinfo_5 = None
        x = __pyx_value_3
        body()
    except with excinfo __pyx_excinfo_5:
        __pyx_exc_4 = False
        if not __pyx_exit_2(*__pyx_excinfo_5):
            raise
finally:
    if __pyx_exc_4:
        __pyx_exit_2(None, None, None)
`,
		},
		{
			name: "no_target",
			src:  "with lock:\n    body()\n",
			want: `__pyx_mgr_1 = lock
__pyx_exit_2 = __pyx_mgr_1.__exit__
__pyx_mgr_1.__enter__()
__pyx_exc_4 = True
try:
    try:
        __pyx_excinfo_5 = None
        body()
    except with excinfo __pyx_excinfo_5:
        __pyx_exc_4 = False
        if not __pyx_exit_2(*__pyx_excinfo_5):
            raise
finally:
    if __pyx_exc_4:
        __pyx_exit_2(None, None, None)
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, lower(t, tt.src, "NormalizeTree", "WithTransform")); diff != "" {
				t.Errorf("output (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWithTransformNested(t *testing.T) {
	out := lower(t, "with a, b:\n    body()\n", "NormalizeTree", "WithTransform")
	for _, want := range []string{"__pyx_mgr_1 = b\n", "__pyx_mgr_6 = a\n", "__pyx_exit_7(None, None, None)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	res := compile(t, "with a, b:\n    body()\n", "NormalizeTree", "WithTransform")
	if w := find[*ast.With](res.Module); w != nil {
		t.Errorf("with statement survived at %s", w.Position())
	}
}

func TestExceptTransform(t *testing.T) {
	src := `try:
    f()
except E as e:
    g(e)
`
	passes := []string{"NormalizeTree", "InterpretCompilerDirectives", "ExceptTransform"}

	want := `try:
    f()
except E as e:
    try:
        g(e)
    finally:
        e = None
`
	got := lower(t, "# cython: language_level=3\n"+src, passes...)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("language level 3 (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(src, lower(t, src, passes...)); diff != "" {
		t.Errorf("language level 2 should be unchanged (-want +got):\n%s", diff)
	}
}

func TestExceptTransformBareClause(t *testing.T) {
	src := "# cython: language_level=3\ntry:\n    f()\nexcept:\n    g()\n"
	want := "try:\n    f()\nexcept:\n    g()\n"
	got := lower(t, src, "NormalizeTree", "InterpretCompilerDirectives", "ExceptTransform")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestWithThenExceptClearsExcInfo(t *testing.T) {
	out := lower(t, "# cython: language_level=3\nwith m:\n    body()\n",
		"NormalizeTree", "InterpretCompilerDirectives", "WithTransform", "ExceptTransform")
	want := `    except with excinfo __pyx_excinfo_5:
        try:
            __pyx_exc_4 = False
            if not __pyx_exit_2(*__pyx_excinfo_5):
                raise
        finally:
            __pyx_excinfo_5 = None
`
	if !strings.Contains(out, want) {
		t.Errorf("output missing excinfo cleanup:\n%s", out)
	}
}
