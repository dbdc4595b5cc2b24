package transform

import (
	"testing"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/printer"
	"github.com/GriffinCanCode/pyxc/pkg/visitor"
)

func TestNormalizeWrapsBodies(t *testing.T) {
	var pos ast.Pos
	call := ast.NewExprStat(pos, ast.NewCall(pos, ast.NewName(pos, "g")))
	ifStat := &ast.If{
		Clauses: []*ast.IfClause{{Cond: ast.NewName(pos, "a"), Body: &ast.Pass{}}},
		Else:    call,
	}
	m := &ast.Module{Body: ifStat}

	NormalizeTree(NewContext("", nil), m)

	body, ok := m.Body.(*ast.StatList)
	if !ok || len(body.Stats) != 1 || body.Stats[0] != ifStat {
		t.Fatalf("module body = %#v, want a list holding the if", m.Body)
	}
	clause, ok := ifStat.Clauses[0].Body.(*ast.StatList)
	if !ok || len(clause.Stats) != 0 {
		t.Errorf("pass body = %#v, want an empty list", ifStat.Clauses[0].Body)
	}
	orElse, ok := ifStat.Else.(*ast.StatList)
	if !ok || len(orElse.Stats) != 1 || orElse.Stats[0] != call {
		t.Errorf("else body = %#v, want a list holding the call", ifStat.Else)
	}
}

func TestNormalizeDropsPass(t *testing.T) {
	m := parse(t, "def f():\n    pass\n    x = 1\n    pass\n")
	NormalizeTree(NewContext("", nil), m)
	fn := find[*ast.FuncDef](m)
	stats := fn.Body.(*ast.StatList).Stats
	if len(stats) != 1 {
		t.Fatalf("got %d statements, want 1", len(stats))
	}
	if _, ok := stats[0].(*ast.SingleAssignment); !ok {
		t.Errorf("remaining statement is %T", stats[0])
	}
	visitor.Inspect(m, func(n ast.Node) bool {
		if _, ok := n.(*ast.Pass); ok {
			t.Errorf("pass survived at %s", n.Position())
		}
		return true
	})
}

func TestNormalizeIdempotent(t *testing.T) {
	src := `class A:
    pass

def f(x):
    if x:
        pass
    elif x > 1: return 1
    else: return 2
    while x: x = x - 1
    for i in x: pass
    try: g()
    except E: pass
`
	m := parse(t, src)
	c := NewContext("", nil)
	NormalizeTree(c, m)
	once := printer.Print(m)
	count := visitor.Count(m)

	NormalizeTree(c, m)
	if twice := printer.Print(m); twice != once {
		t.Errorf("second run changed the tree:\n%s\nvs\n%s", once, twice)
	}
	if got := visitor.Count(m); got != count {
		t.Errorf("node count %d after second run, want %d", got, count)
	}
}
