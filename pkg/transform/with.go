package transform

import (
	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/fragment"
	"github.com/GriffinCanCode/pyxc/pkg/logger"
	"github.com/GriffinCanCode/pyxc/pkg/visitor"
)

var withTemps = []string{"MGR", "EXIT", "VALUE", "EXC", "EXCINFO"}

// withFragment builds the expansion of "with EXPR [as TARGET]: BODY":
//
//	MGR = EXPR
//	EXIT = MGR.__exit__
//	[VALUE =] MGR.__enter__()
//	EXC = True
//	try:
//	    try:
//	        EXCINFO = None
//	        [TARGET = VALUE]
//	        BODY
//	    except (EXCINFO):
//	        EXC = False
//	        if not EXIT(*EXCINFO):
//	            raise
//	finally:
//	    if EXC:
//	        EXIT(None, None, None)
func withFragment(name string, target bool) *fragment.Fragment {
	var p ast.Pos
	tmp := fragment.Temp

	enter := ast.NewCall(p, ast.NewAttribute(p, tmp("MGR"), "__enter__"))
	var enterStat ast.Stmt = ast.NewExprStat(p, enter)
	body := []ast.Stmt{ast.NewAssign(p, tmp("EXCINFO"), ast.NewNone(p))}
	if target {
		enterStat = ast.NewAssign(p, tmp("VALUE"), enter)
		body = append(body, ast.NewAssign(p, fragment.ExprHole("TARGET"), tmp("VALUE")))
	}
	body = append(body, fragment.StmtHole("BODY"))

	exit := &ast.Call{Func: tmp("EXIT"), StarArg: tmp("EXCINFO")}
	handler := &ast.ExceptClause{
		ExcInfoTarget: tmp("EXCINFO"),
		Body: ast.NewStatList(p,
			ast.NewAssign(p, tmp("EXC"), ast.NewBool(p, false)),
			&ast.If{Clauses: []*ast.IfClause{{
				Cond: &ast.UnaryOp{Op: "not", Operand: exit},
				Body: ast.NewStatList(p, &ast.Raise{}),
			}}},
		),
	}
	inner := &ast.TryExcept{Body: ast.NewStatList(p, body...), Clauses: []*ast.ExceptClause{handler}}
	finally := ast.NewStatList(p, &ast.If{Clauses: []*ast.IfClause{{
		Cond: tmp("EXC"),
		Body: ast.NewStatList(p, ast.NewExprStat(p,
			ast.NewCall(p, tmp("EXIT"), ast.NewNone(p), ast.NewNone(p), ast.NewNone(p)))),
	}}})

	return fragment.New(name, withTemps,
		ast.NewAssign(p, tmp("MGR"), fragment.ExprHole("EXPR")),
		ast.NewAssign(p, tmp("EXIT"), ast.NewAttribute(p, tmp("MGR"), "__exit__")),
		enterStat,
		ast.NewAssign(p, tmp("EXC"), ast.NewBool(p, true)),
		&ast.TryFinally{Body: ast.NewStatList(p, inner), Finally: finally},
	)
}

var (
	withoutTarget = withFragment("with", false)
	withTarget    = withFragment("with_target", true)
)

var withLowerer = visitor.New[*Context]("WithTransform").
	On(lowerWith, ast.KindWith).
	OnExpr(visitor.Identity[*Context]).
	OnNode(visitor.Descend[*Context])

// WithTransform expands every with statement into explicit calls of the
// manager's __enter__ and __exit__ methods.
func WithTransform(c *Context, m *ast.Module) *ast.Module {
	withLowerer.VisitChildren(c, m)
	return m
}

func lowerWith(v *visitor.Visitor[*Context], c *Context, n ast.Node) visitor.Result {
	with := n.(*ast.With)
	v.VisitChildren(c, n, "body")

	args := fragment.Args{
		Stmts: map[string]ast.Stmt{"BODY": with.Body},
		Exprs: map[string]ast.Expr{"EXPR": with.Manager},
		Namer: c.Namer,
	}
	frag := withoutTarget
	if with.Target != nil {
		frag = withTarget
		args.Exprs["TARGET"] = with.Target
	}
	exp := frag.Substitute(with.Position(), args)
	logger.LogExpansion("WithTransform", frag.Name(), with.Position().Line)
	return visitor.SpliceStmts(exp.Stats)
}
