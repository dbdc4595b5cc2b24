package printer

import (
	"strings"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
)

// Binding strength, loosest first.
const (
	precLowest = iota
	precLambda
	precOr
	precAnd
	precNot
	precCompare
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precArith
	precTerm
	precUnary
	precPower
	precPrimary
)

var binaryPrec = map[string]int{
	"or": precOr, "and": precAnd,
	"==": precCompare, "!=": precCompare, "<": precCompare, "<=": precCompare,
	">": precCompare, ">=": precCompare, "in": precCompare, "not in": precCompare,
	"is": precCompare, "is not": precCompare,
	"|": precBitOr, "^": precBitXor, "&": precBitAnd,
	"<<": precShift, ">>": precShift,
	"+": precArith, "-": precArith,
	"*": precTerm, "/": precTerm, "//": precTerm, "%": precTerm,
	"**": precPower,
}

func precOf(e ast.Expr) int {
	switch x := e.(type) {
	case *ast.Lambda:
		return precLambda
	case *ast.BinOp:
		if p, ok := binaryPrec[x.Op]; ok {
			return p
		}
		return precPrimary
	case *ast.UnaryOp:
		if x.Op == "not" {
			return precNot
		}
		if x.Postfix {
			return precPrimary
		}
		return precUnary
	case *ast.Typecast:
		return precUnary
	case *ast.Sequence:
		if !x.List && len(x.Args) > 0 {
			return precLowest
		}
	}
	return precPrimary
}

// expr renders e, parenthesized when it binds looser than min.
func expr(e ast.Expr, min int) string {
	s := bare(e)
	if precOf(e) < min {
		return "(" + s + ")"
	}
	return s
}

func exprs(es []ast.Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = expr(e, precLambda)
	}
	return strings.Join(parts, ", ")
}

func bare(e ast.Expr) string {
	switch x := e.(type) {
	case nil:
		return "<nil>"
	case *ast.Name:
		return x.Name
	case *ast.IntLit:
		return x.Text
	case *ast.FloatLit:
		return x.Text
	case *ast.StrLit:
		return quote(x.Value, x.Unicode)
	case *ast.BoolLit:
		if x.Value {
			return "True"
		}
		return "False"
	case *ast.NoneLit:
		return "None"
	case *ast.NullLit:
		return "NULL"
	case *ast.BinOp:
		if x.Op == "," {
			return "cython.operator.comma(" + exprs([]ast.Expr{x.Left, x.Right}) + ")"
		}
		p := precOf(x)
		left, right := p, p+1
		if x.Op == "**" {
			left, right = p+1, p
		}
		return expr(x.Left, left) + " " + x.Op + " " + expr(x.Right, right)
	case *ast.UnaryOp:
		switch {
		case x.Postfix:
			return expr(x.Operand, precPrimary) + x.Op
		case x.Op == "not":
			return "not " + expr(x.Operand, precNot)
		}
		return x.Op + expr(x.Operand, precUnary)
	case *ast.Call:
		args := make([]string, 0, len(x.Args)+len(x.Keywords)+2)
		for _, a := range x.Args {
			args = append(args, expr(a, precLambda))
		}
		for _, k := range x.Keywords {
			args = append(args, k.Name+"="+expr(k.Value, precLambda))
		}
		if x.StarArg != nil {
			args = append(args, "*"+expr(x.StarArg, precLambda))
		}
		if x.StarStarArg != nil {
			args = append(args, "**"+expr(x.StarStarArg, precLambda))
		}
		return expr(x.Func, precPrimary) + "(" + strings.Join(args, ", ") + ")"
	case *ast.Attribute:
		return expr(x.Obj, precPrimary) + "." + x.Attr
	case *ast.Index:
		index := Expr(x.Index)
		return expr(x.Obj, precPrimary) + "[" + index + "]"
	case *ast.Sequence:
		if x.List {
			return "[" + exprs(x.Args) + "]"
		}
		switch len(x.Args) {
		case 0:
			return "()"
		case 1:
			return expr(x.Args[0], precLambda) + ","
		}
		return exprs(x.Args)
	case *ast.Starred:
		return "*" + expr(x.Target, precBitOr)
	case *ast.Dict:
		items := make([]string, len(x.Items))
		for i, it := range x.Items {
			items[i] = expr(it.Key, precLambda) + ": " + expr(it.Value, precLambda)
		}
		return "{" + strings.Join(items, ", ") + "}"
	case *ast.Lambda:
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = arg(a)
		}
		if len(args) == 0 {
			return "lambda: " + expr(x.Body, precLambda)
		}
		return "lambda " + strings.Join(args, ", ") + ": " + expr(x.Body, precLambda)
	case *ast.Yield:
		if x.Value == nil {
			return "(yield)"
		}
		return "(yield " + Expr(x.Value) + ")"
	case *ast.Typecast:
		return "<" + Expr(x.Type) + ">" + expr(x.Operand, precUnary)
	case *ast.Sizeof:
		return "sizeof(" + Expr(x.Operand) + ")"
	case *ast.Typeof:
		return "typeof(" + Expr(x.Operand) + ")"
	case *ast.ExprHole:
		return "<" + x.Name + ">"
	}
	return "<" + e.Kind().String() + ">"
}
