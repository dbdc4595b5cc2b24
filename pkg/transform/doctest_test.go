package transform

import (
	"testing"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/directives"
	"github.com/GriffinCanCode/pyxc/pkg/printer"
	"github.com/GriffinCanCode/pyxc/pkg/symtab"
	"github.com/google/go-cmp/cmp"
)

var doctestPasses = append(declarationPasses[:len(declarationPasses):len(declarationPasses)], "DoctestHack")

// testAssignments returns the assignments to __test__ in the module body.
func testAssignments(m *ast.Module) []*ast.SingleAssignment {
	var out []*ast.SingleAssignment
	for _, s := range ast.Block(m.Body).Stats {
		if a, ok := s.(*ast.SingleAssignment); ok {
			if n, ok := a.Lhs.(*ast.Name); ok && n.Name == "__test__" {
				out = append(out, a)
			}
		}
	}
	return out
}

func TestDoctestHackCollectsDocstrings(t *testing.T) {
	src := `# cython: doctesthack=True
def f():
    "f doc"

def undocumented():
    pass

class C:
    def m(self):
        "m doc"
    class D:
        def n(self):
            "n doc"

cdef int h():
    "h doc"
    return 0

cpdef int k():
    "k doc"
    return 0

def outer():
    "outer doc"
    def inner():
        "inner doc"
`
	res := compile(t, src, doctestPasses...)
	if len(res.Diagnostics) > 0 {
		t.Fatalf("unexpected diagnostics: %v", messages(res))
	}
	stats := ast.Block(res.Module.Body).Stats
	last, ok := stats[len(stats)-1].(*ast.SingleAssignment)
	if !ok {
		t.Fatalf("last statement is %T, want the __test__ assignment", stats[len(stats)-1])
	}
	want := `__test__ = {u"f (line 2)": f.__doc__, u"C.m (line 9)": C.m.__doc__, u"k (line 19)": k.__doc__, u"outer (line 23)": outer.__doc__}` + "\n"
	if diff := cmp.Diff(want, printer.Print(last)); diff != "" {
		t.Errorf("__test__ assignment (-want +got):\n%s", diff)
	}

	module := res.Table.Scope(res.Module.Scope)
	h, e := module.LookupHere("__test__")
	if e == nil {
		t.Fatal("__test__ not declared")
	}
	if e.Visibility != symtab.Public || e.Kind != symtab.VarEntry || e.Type != symtab.ObjectType {
		t.Errorf("__test__ entry = %+v", e)
	}
	if lhs := last.Lhs.(*ast.Name); lhs.Entry != h {
		t.Errorf("__test__ target bound to %v, want %v", lhs.Entry, h)
	}

	fn := find[*ast.FuncDef](res.Module)
	ref := last.Rhs.(*ast.Dict).Items[0].Value.(*ast.Attribute).Obj.(*ast.Name)
	if !fn.Entry.Valid() || ref.Entry != fn.Entry {
		t.Errorf("reference to f bound to %v, want %v", ref.Entry, fn.Entry)
	}
}

func TestDoctestHackSkips(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{
			name: "directive_off",
			src:  "def f():\n    \"doc\"\n",
			want: 0,
		},
		{
			name: "already_bound",
			src:  "# cython: doctesthack=True\n__test__ = {}\ndef f():\n    \"doc\"\n",
			want: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := compile(t, tt.src, doctestPasses...)
			if len(res.Diagnostics) > 0 {
				t.Fatalf("unexpected diagnostics: %v", messages(res))
			}
			got := testAssignments(res.Module)
			if len(got) != tt.want {
				t.Fatalf("got %d __test__ assignments, want %d", len(got), tt.want)
			}
			if tt.want == 1 {
				if d := got[0].Rhs.(*ast.Dict); len(d.Items) != 0 {
					t.Errorf("user __test__ dict was rewritten: %s", printer.Expr(d))
				}
			}
		})
	}
}

func TestDoctestHackOverride(t *testing.T) {
	m := parse(t, "def f():\n    \"doc\"\n")
	res, err := Compile(m, Options{Directives: directives.Set{"doctesthack": true}, Passes: doctestPasses})
	if err != nil {
		t.Fatal(err)
	}
	got := testAssignments(res.Module)
	if len(got) != 1 {
		t.Fatalf("got %d __test__ assignments, want 1", len(got))
	}
	if out := printer.Print(got[0]); out != "__test__ = {u\"f (line 1)\": f.__doc__}\n" {
		t.Errorf("assignment = %q", out)
	}
}
