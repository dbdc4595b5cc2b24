// Package visitor - Traversal engine shared by every pass
// Design: handlers per node kind with statement, expression and node
// fallbacks; descent is explicit through VisitChildren; an immutable
// context value C travels down the recursion, so leaving a subtree
// restores the caller's context
package visitor

import (
	"reflect"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/diag"
)

// Result is what a handler returns in place of the visited node: one
// node, several nodes to splice into the parent, or none to prune it.
type Result []ast.Node

// Keep returns n unchanged.
func Keep(n ast.Node) Result {
	return Result{n}
}

// Replace returns n in place of the visited node.
func Replace(n ast.Node) Result {
	return Result{n}
}

// Splice returns several nodes. In a list they are spliced in place; in
// a single statement slot they are wrapped in a StatList.
func Splice(ns ...ast.Node) Result {
	out := make(Result, 0, len(ns))
	for _, n := range ns {
		if !isNil(n) {
			out = append(out, n)
		}
	}
	return out
}

// SpliceStmts is Splice for a statement slice.
func SpliceStmts(stats []ast.Stmt) Result {
	out := make(Result, 0, len(stats))
	for _, s := range stats {
		out = append(out, s)
	}
	return out
}

// Prune removes the visited node.
func Prune() Result {
	return Result{}
}

// Handler rewrites one node.
type Handler[C any] func(v *Visitor[C], ctx C, n ast.Node) Result

// Visitor dispatches nodes to the handlers of one pass.
type Visitor[C any] struct {
	pass     string
	handlers map[ast.Kind]Handler[C]
	stmt     Handler[C]
	expr     Handler[C]
	node     Handler[C]
}

// New returns a visitor with no handlers. pass names it in internal
// errors.
func New[C any](pass string) *Visitor[C] {
	return &Visitor[C]{pass: pass, handlers: make(map[ast.Kind]Handler[C])}
}

// Pass returns the name the visitor was created with.
func (v *Visitor[C]) Pass() string {
	return v.pass
}

// On registers h for one or more kinds.
func (v *Visitor[C]) On(h Handler[C], kinds ...ast.Kind) *Visitor[C] {
	for _, k := range kinds {
		v.handlers[k] = h
	}
	return v
}

// OnStmt registers the fallback for statement kinds.
func (v *Visitor[C]) OnStmt(h Handler[C]) *Visitor[C] {
	v.stmt = h
	return v
}

// OnExpr registers the fallback for expression kinds.
func (v *Visitor[C]) OnExpr(h Handler[C]) *Visitor[C] {
	v.expr = h
	return v
}

// OnNode registers the fallback for every kind.
func (v *Visitor[C]) OnNode(h Handler[C]) *Visitor[C] {
	v.node = h
	return v
}

func (v *Visitor[C]) handler(k ast.Kind) Handler[C] {
	if h := v.handlers[k]; h != nil {
		return h
	}
	switch ast.FamilyOf(k) {
	case ast.FamilyStmt:
		if v.stmt != nil {
			return v.stmt
		}
	case ast.FamilyExpr:
		if v.expr != nil {
			return v.expr
		}
	}
	return v.node
}

// Visit runs the most specific handler for n. A nil node yields nil.
func (v *Visitor[C]) Visit(ctx C, n ast.Node) Result {
	if isNil(n) {
		return nil
	}
	h := v.handler(n.Kind())
	if h == nil {
		diag.Fatalf(v.pass, n.Position(), "unhandled node kind %s", n.Kind())
	}
	return h(v, ctx, n)
}

// VisitChildren visits the children of n in shape order, replacing each
// with the handler's result. With attrs, only the named attributes are
// visited. It returns n.
func (v *Visitor[C]) VisitChildren(ctx C, n ast.Node, attrs ...string) ast.Node {
	if isNil(n) {
		return n
	}
	w := &walker{
		pass:  v.pass,
		visit: func(c ast.Node) []ast.Node { return v.Visit(ctx, c) },
	}
	if len(attrs) > 0 {
		checkAttrs(v.pass, n, attrs)
		w.want = func(attr string) bool {
			for _, a := range attrs {
				if a == attr {
					return true
				}
			}
			return false
		}
	}
	walk(w, n)
	return n
}

// VisitStmt visits a statement in a single slot. Several results are
// wrapped in a StatList; a pruned statement becomes an empty StatList.
func (v *Visitor[C]) VisitStmt(ctx C, s ast.Stmt) ast.Stmt {
	if isNil(s) {
		return s
	}
	w := &walker{pass: v.pass, visit: func(c ast.Node) []ast.Node { return v.Visit(ctx, c) }}
	w.stmt("stmt", true, &s)
	return s
}

// VisitExpr visits an expression in a single slot. It returns nil when
// the expression was pruned.
func (v *Visitor[C]) VisitExpr(ctx C, e ast.Expr) ast.Expr {
	if isNil(e) {
		return e
	}
	w := &walker{pass: v.pass, visit: func(c ast.Node) []ast.Node { return v.Visit(ctx, c) }}
	node(w, "expr", false, &e)
	return e
}

// VisitStmts visits a statement list, splicing the results.
func (v *Visitor[C]) VisitStmts(ctx C, stats []ast.Stmt) []ast.Stmt {
	w := &walker{pass: v.pass, visit: func(c ast.Node) []ast.Node { return v.Visit(ctx, c) }}
	list(w, "stats", &stats)
	return stats
}

// Descend is a handler that visits all children and keeps the node.
func Descend[C any](v *Visitor[C], ctx C, n ast.Node) Result {
	v.VisitChildren(ctx, n)
	return Keep(n)
}

// Identity is a handler that keeps the node without descending.
func Identity[C any](v *Visitor[C], ctx C, n ast.Node) Result {
	return Keep(n)
}

func checkAttrs(pass string, n ast.Node, attrs []string) {
	shape := ast.ShapeOf(n.Kind())
	for _, a := range attrs {
		found := false
		for _, s := range shape {
			if s.Name == a {
				found = true
				break
			}
		}
		if !found {
			diag.Fatalf(pass, n.Position(), "%s has no child attribute %q", n.Kind(), a)
		}
	}
}

func isNil(n ast.Node) bool {
	if n == nil {
		return true
	}
	rv := reflect.ValueOf(n)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
