package optimizer

import (
	"testing"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/directives"
)

func lit(v int64) *ast.IntLit {
	return &ast.IntLit{Text: "x", Value: v}
}

func foldOne(t *testing.T, e ast.Expr) (ast.Expr, int) {
	t.Helper()
	stat := ast.NewExprStat(ast.Pos{}, e)
	m := &ast.Module{Body: ast.NewStatList(ast.Pos{}, stat)}
	n := FoldConstants(m)
	return stat.Expr, n
}

func TestFoldIntegerArithmetic(t *testing.T) {
	tests := []struct {
		op   string
		l, r int64
		want int64
	}{
		{"+", 2, 3, 5},
		{"-", 2, 3, -1},
		{"*", 4, 5, 20},
		{"//", 7, 2, 3},
		{"//", -7, 2, -4},
		{"%", -7, 2, 1},
		{"%", 7, -2, -1},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			got, n := foldOne(t, &ast.BinOp{Op: tt.op, Left: lit(tt.l), Right: lit(tt.r)})
			i, ok := got.(*ast.IntLit)
			if !ok {
				t.Fatalf("got %T, want *ast.IntLit", got)
			}
			if i.Value != tt.want {
				t.Errorf("%d %s %d = %d, want %d", tt.l, tt.op, tt.r, i.Value, tt.want)
			}
			if n != 1 {
				t.Errorf("changes = %d, want 1", n)
			}
		})
	}
}

func TestFoldCDivisionTruncates(t *testing.T) {
	got, _ := foldOne(t, &ast.BinOp{Op: "%", Left: lit(-7), Right: lit(2), CDivision: true})
	if i := got.(*ast.IntLit); i.Value != -1 {
		t.Errorf("C -7 %% 2 = %d, want -1", i.Value)
	}
}

func TestFoldNested(t *testing.T) {
	// -(1 + 2) < 0
	e := &ast.BinOp{
		Op:    "<",
		Left:  &ast.UnaryOp{Op: "-", Operand: &ast.BinOp{Op: "+", Left: lit(1), Right: lit(2)}},
		Right: lit(0),
	}
	got, n := foldOne(t, e)
	b, ok := got.(*ast.BoolLit)
	if !ok || !b.Value {
		t.Fatalf("got %#v, want True", got)
	}
	if n != 3 {
		t.Errorf("changes = %d, want 3", n)
	}
}

func TestFoldNot(t *testing.T) {
	got, _ := foldOne(t, &ast.UnaryOp{Op: "not", Operand: ast.NewBool(ast.Pos{}, false)})
	if b, ok := got.(*ast.BoolLit); !ok || !b.Value {
		t.Fatalf("got %#v, want True", got)
	}
}

func TestNoFold(t *testing.T) {
	tests := map[string]ast.Expr{
		"division by zero": &ast.BinOp{Op: "//", Left: lit(1), Right: lit(0)},
		"name operand":     &ast.BinOp{Op: "+", Left: lit(1), Right: ast.NewName(ast.Pos{}, "x")},
		"true division":    &ast.BinOp{Op: "/", Left: lit(1), Right: lit(2)},
	}
	for name, e := range tests {
		t.Run(name, func(t *testing.T) {
			got, n := foldOne(t, e)
			if got != e || n != 0 {
				t.Errorf("expression was folded to %#v", got)
			}
		})
	}
}

func TestFoldUnderCDivisionDirective(t *testing.T) {
	tests := []struct {
		op   string
		want int64
	}{
		{"%", -1},
		{"//", -3},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			e := &ast.BinOp{Op: tt.op, Left: lit(-7), Right: lit(2)}
			stat := ast.NewExprStat(ast.Pos{}, e)
			m := &ast.Module{
				Body:       ast.NewStatList(ast.Pos{}, stat),
				Directives: directives.Set{"cdivision": true},
			}
			FoldConstants(m)
			if i, ok := stat.Expr.(*ast.IntLit); !ok || i.Value != tt.want {
				t.Errorf("C -7 %s 2 = %#v, want %d", tt.op, stat.Expr, tt.want)
			}
		})
	}
}

func TestFoldNestedDirectiveBlock(t *testing.T) {
	inner := ast.NewExprStat(ast.Pos{}, &ast.BinOp{Op: "//", Left: lit(-7), Right: lit(2)})
	outer := ast.NewExprStat(ast.Pos{}, &ast.BinOp{Op: "//", Left: lit(-7), Right: lit(2)})
	keep := ast.NewExprStat(ast.Pos{}, &ast.BinOp{Op: "/", Left: ast.NewName(ast.Pos{}, "x"), Right: lit(2)})
	m := &ast.Module{Body: ast.NewStatList(ast.Pos{},
		&ast.CompilerDirectives{
			Body:       ast.NewStatList(ast.Pos{}, inner, keep),
			Directives: directives.Set{"cdivision": true},
		},
		outer,
	)}
	FoldConstants(m)
	if got := inner.Expr.(*ast.IntLit).Value; got != -3 {
		t.Errorf("inside cdivision block: -7 // 2 = %d, want -3", got)
	}
	if got := outer.Expr.(*ast.IntLit).Value; got != -4 {
		t.Errorf("outside cdivision block: -7 // 2 = %d, want -4", got)
	}
	if b := keep.Expr.(*ast.BinOp); !b.CDivision {
		t.Error("division left in the block is not marked for C semantics")
	}
}
