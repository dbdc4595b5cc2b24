package transform

import (
	"testing"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/google/go-cmp/cmp"
)

var foldingPasses = []string{"NormalizeTree", "PostParse", "InterpretCompilerDirectives", "ConstantFolding"}

func TestConstantFoldingCDivision(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "python_semantics",
			src:  "def f():\n    a = -7 % 2\n    b = -7 // 2\n",
			want: "def f():\n    a = 1\n    b = -4\n",
		},
		{
			name: "module_pragma",
			src:  "# cython: cdivision=True\ndef f():\n    a = -7 % 2\n    b = -7 // 2\n",
			want: "def f():\n    a = -1\n    b = -3\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, lower(t, tt.src, foldingPasses...)); diff != "" {
				t.Errorf("output (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConstantFoldingCDivisionDecorator(t *testing.T) {
	src := `import cython

@cython.cdivision(True)
def f():
    return -7 // 2

def g():
    return -7 // 2
`
	res := compile(t, src, foldingPasses...)
	if len(res.Diagnostics) > 0 {
		t.Fatalf("unexpected diagnostics: %v", messages(res))
	}
	var got []int64
	for _, ret := range findAll[*ast.Return](res.Module) {
		lit, ok := ret.Value.(*ast.IntLit)
		if !ok {
			t.Fatalf("return value %T was not folded", ret.Value)
		}
		got = append(got, lit.Value)
	}
	if diff := cmp.Diff([]int64{-3, -4}, got); diff != "" {
		t.Errorf("folded values (-want +got):\n%s", diff)
	}
}
