package visitor

import (
	"strings"
	"testing"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/diag"
	"github.com/google/go-cmp/cmp"
)

func pos(line int) ast.Pos {
	return ast.Pos{File: "t.pyx", Line: line, Col: 1}
}

func run(f func()) (err error) {
	defer diag.Recover(&err)
	f()
	return nil
}

func TestWalkCoversEveryKind(t *testing.T) {
	for _, k := range ast.AllKinds() {
		t.Run(k.String(), func(t *testing.T) {
			n := ast.Zero(k)
			if n == nil {
				t.Fatalf("no zero node for %s", k)
			}
			if n.Kind() != k {
				t.Fatalf("zero node reports %s", n.Kind())
			}
			w := &walker{pass: "test", inspect: func(string, ast.Node) {}}
			err := run(func() { walk(w, n) })
			if err != nil {
				t.Fatalf("walk failed: %v", err)
			}
			var want []string
			for _, a := range ast.ShapeOf(k) {
				want = append(want, a.Name)
			}
			if diff := cmp.Diff(want, w.attrs); diff != "" {
				t.Errorf("walk attributes differ from shape (-shape +walk):\n%s", diff)
			}
		})
	}
}

func sampleBody() *ast.StatList {
	return ast.NewStatList(pos(1),
		ast.NewExprStat(pos(1), ast.NewName(pos(1), "a")),
		&ast.Pass{Base: ast.At(pos(2))},
		ast.NewAssign(pos(3), ast.NewName(pos(3), "b"), &ast.IntLit{Base: ast.At(pos(3)), Text: "1", Value: 1}),
	)
}

func TestFamilyFallback(t *testing.T) {
	var seen []string
	v := New[struct{}]("test")
	v.On(func(v *Visitor[struct{}], ctx struct{}, n ast.Node) Result {
		seen = append(seen, "name:"+n.(*ast.Name).Name)
		return Keep(n)
	}, ast.KindName)
	v.OnStmt(func(v *Visitor[struct{}], ctx struct{}, n ast.Node) Result {
		seen = append(seen, "stmt:"+n.Kind().String())
		return Descend(v, ctx, n)
	})
	v.OnExpr(func(v *Visitor[struct{}], ctx struct{}, n ast.Node) Result {
		seen = append(seen, "expr:"+n.Kind().String())
		return Descend(v, ctx, n)
	})

	v.Visit(struct{}{}, sampleBody())

	want := []string{
		"stmt:StatList",
		"stmt:ExprStat", "name:a",
		"stmt:Pass",
		"stmt:SingleAssignment", "name:b", "expr:IntLit",
	}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("dispatch order (-want +got):\n%s", diff)
	}
}

func TestUnhandledKindIsFatal(t *testing.T) {
	v := New[int]("Strict")
	v.On(Descend[int], ast.KindStatList)

	err := run(func() { v.Visit(0, sampleBody()) })
	if err == nil {
		t.Fatal("expected an internal error")
	}
	if !diag.IsInternal(err) {
		t.Errorf("expected internal error, got %T", err)
	}
	if !strings.Contains(err.Error(), "unhandled node kind ExprStat") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestResults(t *testing.T) {
	tests := []struct {
		name    string
		handler Handler[int]
		want    []ast.Kind
	}{
		{
			name:    "prune",
			handler: func(*Visitor[int], int, ast.Node) Result { return Prune() },
			want:    []ast.Kind{ast.KindExprStat, ast.KindSingleAssignment},
		},
		{
			name: "splice",
			handler: func(_ *Visitor[int], _ int, n ast.Node) Result {
				return Splice(ast.NewExprStat(n.Position(), ast.NewName(n.Position(), "x")), nil, ast.NewExprStat(n.Position(), ast.NewName(n.Position(), "y")))
			},
			want: []ast.Kind{ast.KindExprStat, ast.KindExprStat, ast.KindExprStat, ast.KindSingleAssignment},
		},
		{
			name:    "keep",
			handler: Identity[int],
			want:    []ast.Kind{ast.KindExprStat, ast.KindPass, ast.KindSingleAssignment},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New[int]("test").OnNode(Identity[int])
			v.On(Descend[int], ast.KindStatList)
			v.On(tt.handler, ast.KindPass)

			body := sampleBody()
			v.Visit(0, body)

			var got []ast.Kind
			for _, s := range body.Stats {
				got = append(got, s.Kind())
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("statement kinds (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSingleStatementSlot(t *testing.T) {
	mk := func() *ast.While {
		return &ast.While{
			Base: ast.At(pos(1)),
			Cond: ast.NewName(pos(1), "c"),
			Body: &ast.Pass{Base: ast.At(pos(2))},
			Else: &ast.Pass{Base: ast.At(pos(3))},
		}
	}

	t.Run("prune", func(t *testing.T) {
		v := New[int]("test").OnNode(Identity[int])
		v.On(Descend[int], ast.KindWhile)
		v.On(func(*Visitor[int], int, ast.Node) Result { return Prune() }, ast.KindPass)

		w := mk()
		v.Visit(0, w)
		body, ok := w.Body.(*ast.StatList)
		if !ok || len(body.Stats) != 0 {
			t.Errorf("pruned required body should be an empty StatList, got %#v", w.Body)
		}
		if w.Else != nil {
			t.Errorf("pruned optional else should be nil, got %#v", w.Else)
		}
	})

	t.Run("splice", func(t *testing.T) {
		v := New[int]("test").OnNode(Identity[int])
		v.On(Descend[int], ast.KindWhile)
		v.On(func(_ *Visitor[int], _ int, n ast.Node) Result {
			return Splice(&ast.Break{Base: ast.At(n.Position())}, &ast.Continue{Base: ast.At(n.Position())})
		}, ast.KindPass)

		w := mk()
		v.Visit(0, w)
		body, ok := w.Body.(*ast.StatList)
		if !ok || len(body.Stats) != 2 {
			t.Fatalf("expected a StatList of 2, got %#v", w.Body)
		}
		if body.Stats[0].Kind() != ast.KindBreak || body.Stats[1].Kind() != ast.KindContinue {
			t.Errorf("unexpected statements %v %v", body.Stats[0].Kind(), body.Stats[1].Kind())
		}
	})
}

func TestMultipleResultsInExpressionSlot(t *testing.T) {
	v := New[int]("test").OnNode(Descend[int])
	v.On(func(_ *Visitor[int], _ int, n ast.Node) Result {
		return Splice(n, ast.NewName(n.Position(), "extra"))
	}, ast.KindName)

	err := run(func() { v.Visit(0, ast.NewExprStat(pos(1), ast.NewName(pos(1), "a"))) })
	if err == nil || !strings.Contains(err.Error(), "single expr slot") {
		t.Errorf("expected fatal error for expression splice, got %v", err)
	}
}

func TestVisitChildrenSelectsAttributes(t *testing.T) {
	var names []string
	v := New[int]("test").OnNode(Descend[int])
	v.On(func(_ *Visitor[int], _ int, n ast.Node) Result {
		names = append(names, n.(*ast.Name).Name)
		return Keep(n)
	}, ast.KindName)
	v.On(func(v *Visitor[int], ctx int, n ast.Node) Result {
		v.VisitChildren(ctx, n, "rhs")
		return Keep(n)
	}, ast.KindSingleAssignment)

	v.Visit(0, ast.NewAssign(pos(1), ast.NewName(pos(1), "lhs"), ast.NewName(pos(1), "rhs")))
	if diff := cmp.Diff([]string{"rhs"}, names); diff != "" {
		t.Errorf("visited names (-want +got):\n%s", diff)
	}

	err := run(func() { v.VisitChildren(0, ast.NewName(pos(1), "x"), "body") })
	if err == nil || !strings.Contains(err.Error(), `no child attribute "body"`) {
		t.Errorf("expected unknown attribute error, got %v", err)
	}
}

func TestContextIsScopedToSubtree(t *testing.T) {
	depths := map[string]int{}
	v := New[int]("test").OnNode(Descend[int])
	v.On(func(v *Visitor[int], depth int, n ast.Node) Result {
		v.VisitChildren(depth+1, n)
		return Keep(n)
	}, ast.KindFuncDef)
	v.On(func(_ *Visitor[int], depth int, n ast.Node) Result {
		depths[n.(*ast.Name).Name] = depth
		return Keep(n)
	}, ast.KindName)

	inner := &ast.FuncDef{Base: ast.At(pos(2)), Name: "g", Body: ast.NewStatList(pos(3),
		ast.NewExprStat(pos(3), ast.NewName(pos(3), "deep")))}
	outer := &ast.FuncDef{Base: ast.At(pos(1)), Name: "f", Body: ast.NewStatList(pos(2),
		inner,
		ast.NewExprStat(pos(4), ast.NewName(pos(4), "shallow")))}
	v.Visit(0, ast.NewStatList(pos(1), outer, ast.NewExprStat(pos(5), ast.NewName(pos(5), "top"))))

	want := map[string]int{"deep": 2, "shallow": 1, "top": 0}
	if diff := cmp.Diff(want, depths); diff != "" {
		t.Errorf("depths (-want +got):\n%s", diff)
	}
}

func TestCheckShape(t *testing.T) {
	good := &ast.Module{Base: ast.At(pos(1)), Body: sampleBody()}
	if err := CheckShape(good); err != nil {
		t.Errorf("unexpected shape error: %v", err)
	}

	bad := &ast.Module{Base: ast.At(pos(1)), Body: ast.NewStatList(pos(1),
		&ast.SingleAssignment{Base: ast.At(pos(2)), Lhs: ast.NewName(pos(2), "x")})}
	err := CheckShape(bad)
	if err == nil {
		t.Fatal("expected missing rhs to be reported")
	}
	if !strings.Contains(err.Error(), "missing required rhs") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestInspectAndCount(t *testing.T) {
	body := sampleBody()
	var kinds []ast.Kind
	Inspect(body, func(n ast.Node) bool {
		kinds = append(kinds, n.Kind())
		return n.Kind() != ast.KindSingleAssignment
	})
	want := []ast.Kind{ast.KindStatList, ast.KindExprStat, ast.KindName, ast.KindPass, ast.KindSingleAssignment}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("inspect order (-want +got):\n%s", diff)
	}
	if got := Count(body); got != 7 {
		t.Errorf("expected 7 nodes, got %d", got)
	}
	if got := len(Children(body)); got != 3 {
		t.Errorf("expected 3 children, got %d", got)
	}
}
