package fragment

import (
	"strings"
	"testing"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/diag"
	"github.com/GriffinCanCode/pyxc/pkg/visitor"
	"github.com/google/go-cmp/cmp"
)

// swap: TMP = A; A = B; B = TMP; BODY
func swapFragment() *Fragment {
	return New("swap", []string{"TMP"},
		ast.NewAssign(ast.Pos{}, Temp("TMP"), ExprHole("A")),
		ast.NewAssign(ast.Pos{}, ExprHole("A"), ExprHole("B")),
		ast.NewAssign(ast.Pos{}, ExprHole("B"), Temp("TMP")),
		StmtHole("BODY"),
	)
}

func TestHoles(t *testing.T) {
	f := swapFragment()
	stmts, exprs := f.Holes()
	if diff := cmp.Diff([]string{"BODY"}, stmts); diff != "" {
		t.Errorf("statement holes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A", "B"}, exprs); diff != "" {
		t.Errorf("expression holes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"TMP"}, f.Temps()); diff != "" {
		t.Errorf("temps (-want +got):\n%s", diff)
	}
}

func TestSubstitute(t *testing.T) {
	f := swapFragment()
	namer := &Namer{}
	at := ast.Pos{File: "s.pyx", Line: 7, Col: 5}
	a := ast.NewName(ast.Pos{File: "s.pyx", Line: 7, Col: 1}, "x")
	b := ast.NewName(ast.Pos{File: "s.pyx", Line: 7, Col: 4}, "y")
	body := ast.NewStatList(at,
		ast.NewExprStat(at, ast.NewName(at, "p")),
		ast.NewExprStat(at, ast.NewName(at, "q")),
	)

	exp := f.Substitute(at, Args{
		Exprs: map[string]ast.Expr{"A": a, "B": b},
		Stmts: map[string]ast.Stmt{"BODY": body},
		Namer: namer,
	})

	if len(exp.Stats) != 5 {
		t.Fatalf("expected BODY to be spliced into 5 statements, got %d", len(exp.Stats))
	}
	tmp := exp.Temps["TMP"]
	if tmp != "__pyx_tmp_1" {
		t.Errorf("unexpected temp name %q", tmp)
	}

	first := exp.Stats[0].(*ast.SingleAssignment)
	if first.Lhs.(*ast.Name).Name != tmp {
		t.Errorf("temp not substituted: %v", first.Lhs)
	}
	if first.Position() != at {
		t.Errorf("synthesized node at %v, want %v", first.Position(), at)
	}
	if first.Rhs != ast.Expr(a) {
		t.Error("first use of a hole should take the supplied subtree")
	}
	second := exp.Stats[1].(*ast.SingleAssignment)
	if second.Lhs == ast.Expr(a) {
		t.Error("second use of a hole must be a clone")
	}
	if second.Lhs.(*ast.Name).Name != "x" || second.Lhs.Position() != a.Position() {
		t.Errorf("clone should keep name and position, got %#v", second.Lhs)
	}
	third := exp.Stats[2].(*ast.SingleAssignment)
	if third.Rhs.(*ast.Name).Name != tmp {
		t.Errorf("temp uses must share one name, got %v", third.Rhs)
	}

	again := f.Substitute(at, Args{
		Exprs: map[string]ast.Expr{"A": a, "B": b},
		Stmts: map[string]ast.Stmt{"BODY": ast.NewStatList(at)},
		Namer: namer,
	})
	if again.Temps["TMP"] == tmp {
		t.Error("temps must be fresh per expansion")
	}
	if len(again.Stats) != 3 {
		t.Errorf("empty BODY should leave 3 statements, got %d", len(again.Stats))
	}

	for _, s := range exp.Stats {
		visitor.Inspect(s, func(n ast.Node) bool {
			switch n.(type) {
			case *ast.StmtHole, *ast.ExprHole:
				t.Errorf("hole survived substitution: %v", n.Kind())
			}
			return true
		})
	}
}

func TestSubstituteMissingHole(t *testing.T) {
	f := swapFragment()
	run := func() (err error) {
		defer diag.Recover(&err)
		f.Substitute(ast.Pos{Line: 1}, Args{Exprs: map[string]ast.Expr{"A": ast.NewName(ast.Pos{}, "a")}, Namer: &Namer{}})
		return nil
	}
	err := run()
	if err == nil || !strings.Contains(err.Error(), "no value for expression hole B") {
		t.Errorf("expected missing hole error, got %v", err)
	}
}

func TestClone(t *testing.T) {
	orig := &ast.If{
		Base: ast.At(ast.Pos{Line: 1}),
		Clauses: []*ast.IfClause{{
			Base: ast.At(ast.Pos{Line: 1}),
			Cond: ast.NewName(ast.Pos{Line: 1}, "c"),
			Body: ast.NewStatList(ast.Pos{Line: 2}, ast.NewExprStat(ast.Pos{Line: 2}, ast.NewCall(ast.Pos{Line: 2}, ast.NewName(ast.Pos{Line: 2}, "f")))),
		}},
	}
	c := Clone(orig)
	if c == orig || c.Clauses[0] == orig.Clauses[0] {
		t.Fatal("clone shares nodes with the original")
	}
	if diff := cmp.Diff(orig, c); diff != "" {
		t.Errorf("clone differs (-orig +clone):\n%s", diff)
	}
	c.Clauses[0].Cond.(*ast.Name).Name = "d"
	if orig.Clauses[0].Cond.(*ast.Name).Name != "c" {
		t.Error("mutating the clone changed the original")
	}
}
