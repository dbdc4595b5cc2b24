// Package optimizer - tree-level optimizations
// Design: small local rewrites that keep source positions, run early so
// later passes see the simplified tree
package optimizer

import (
	"math"
	"strconv"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/logger"
	"github.com/GriffinCanCode/pyxc/pkg/visitor"
)

type foldCtx struct {
	changes *int
	// cdivision selects C truncating semantics for // and %
	cdivision bool
}

var folder = visitor.New[foldCtx]("ConstantFolding").
	On(foldDirectives, ast.KindCompilerDirectives).
	OnExpr(foldExpr).
	OnNode(visitor.Descend[foldCtx])

// FoldConstants folds operators applied to literal operands and returns
// the number of folded expressions. The cdivision directive of the
// module and of nested directive blocks decides how // and % round.
func FoldConstants(m *ast.Module) int {
	logger.Debug("Running constant folding")
	changes := 0
	folder.VisitChildren(foldCtx{changes: &changes, cdivision: m.Directives.Bool("cdivision")}, m)
	return changes
}

func foldDirectives(v *visitor.Visitor[foldCtx], ctx foldCtx, n ast.Node) visitor.Result {
	ctx.cdivision = n.(*ast.CompilerDirectives).Directives.Bool("cdivision")
	v.VisitChildren(ctx, n)
	return visitor.Keep(n)
}

func foldExpr(v *visitor.Visitor[foldCtx], ctx foldCtx, n ast.Node) visitor.Result {
	v.VisitChildren(ctx, n)

	var folded ast.Expr
	switch e := n.(type) {
	case *ast.BinOp:
		if ctx.cdivision && isDivision(e.Op) {
			e.CDivision = true
		}
		folded = foldBinOp(e)
	case *ast.UnaryOp:
		folded = foldUnaryOp(e)
	}
	if folded == nil {
		return visitor.Keep(n)
	}
	*ctx.changes++
	return visitor.Replace(folded)
}

func isDivision(op string) bool {
	return op == "/" || op == "//" || op == "%"
}

func intLit(pos ast.Pos, v int64) *ast.IntLit {
	return &ast.IntLit{Base: ast.At(pos), Text: strconv.FormatInt(v, 10), Value: v}
}

func foldUnaryOp(e *ast.UnaryOp) ast.Expr {
	switch operand := e.Operand.(type) {
	case *ast.IntLit:
		if e.Op == "-" && operand.Value != math.MinInt64 {
			return intLit(e.Position(), -operand.Value)
		}
		if e.Op == "+" {
			return intLit(e.Position(), operand.Value)
		}
	case *ast.BoolLit:
		if e.Op == "not" {
			return ast.NewBool(e.Position(), !operand.Value)
		}
	}
	return nil
}

func foldBinOp(e *ast.BinOp) ast.Expr {
	if l, ok := e.Left.(*ast.BoolLit); ok {
		if r, ok := e.Right.(*ast.BoolLit); ok {
			switch e.Op {
			case "and":
				return ast.NewBool(e.Position(), l.Value && r.Value)
			case "or":
				return ast.NewBool(e.Position(), l.Value || r.Value)
			}
		}
		return nil
	}
	l, lok := e.Left.(*ast.IntLit)
	r, rok := e.Right.(*ast.IntLit)
	if !lok || !rok {
		return nil
	}
	if b, ok := evalCompare(e.Op, l.Value, r.Value); ok {
		return ast.NewBool(e.Position(), b)
	}
	if val, ok := evalConstOp(e.Op, l.Value, r.Value, e.CDivision); ok {
		return intLit(e.Position(), val)
	}
	return nil
}

func evalCompare(op string, l, r int64) (bool, bool) {
	switch op {
	case "==":
		return l == r, true
	case "!=":
		return l != r, true
	case "<":
		return l < r, true
	case "<=":
		return l <= r, true
	case ">":
		return l > r, true
	case ">=":
		return l >= r, true
	}
	return false, false
}

// evalConstOp evaluates an integer operator. It reports false when the
// result is not representable or the operation would raise at runtime.
func evalConstOp(op string, l, r int64, cdivision bool) (int64, bool) {
	switch op {
	case "+":
		s := l + r
		return s, (s > l) == (r > 0)
	case "-":
		d := l - r
		return d, (d < l) == (r > 0)
	case "*":
		if l == 0 || r == 0 {
			return 0, true
		}
		p := l * r
		return p, p/r == l && !(l == -1 && r == math.MinInt64) && !(r == -1 && l == math.MinInt64)
	case "//", "%":
		if r == 0 || (l == math.MinInt64 && r == -1) {
			return 0, false
		}
		q, m := l/r, l%r
		if !cdivision && m != 0 && (m < 0) != (r < 0) {
			q--
			m += r
		}
		if op == "//" {
			return q, true
		}
		return m, true
	}
	return 0, false
}
