// Package fragment - Reusable tree skeletons instantiated by substitution
// Design: skeletons are plain trees with StmtHole/ExprHole placeholders and
// temp labels; Substitute clones the skeleton, fills the holes and gives
// each label one fresh name per expansion
package fragment

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/diag"
	"github.com/GriffinCanCode/pyxc/pkg/visitor"
)

// Fragment is a parsed skeleton.
type Fragment struct {
	name      string
	body      []ast.Stmt
	temps     []string
	stmtHoles []string
	exprHoles []string
}

// StmtHole returns a statement placeholder.
func StmtHole(name string) *ast.StmtHole {
	return &ast.StmtHole{Name: name}
}

// ExprHole returns an expression placeholder.
func ExprHole(name string) *ast.ExprHole {
	return &ast.ExprHole{Name: name}
}

// Temp returns a use of temp label inside a skeleton.
func Temp(label string) *ast.Name {
	return &ast.Name{Name: label}
}

// New records body as the skeleton of fragment name. temps lists the
// labels that are replaced by fresh names on every expansion.
func New(name string, temps []string, body ...ast.Stmt) *Fragment {
	f := &Fragment{name: name, body: body, temps: slices.Clone(temps)}
	for _, s := range body {
		visitor.Inspect(s, func(n ast.Node) bool {
			switch h := n.(type) {
			case *ast.StmtHole:
				if !slices.Contains(f.stmtHoles, h.Name) {
					f.stmtHoles = append(f.stmtHoles, h.Name)
				}
			case *ast.ExprHole:
				if !slices.Contains(f.exprHoles, h.Name) {
					f.exprHoles = append(f.exprHoles, h.Name)
				}
			}
			return true
		})
	}
	sort.Strings(f.stmtHoles)
	sort.Strings(f.exprHoles)
	return f
}

// Name returns the fragment name.
func (f *Fragment) Name() string {
	return f.name
}

// Holes returns the statement and expression hole names, sorted.
func (f *Fragment) Holes() (stmts, exprs []string) {
	return slices.Clone(f.stmtHoles), slices.Clone(f.exprHoles)
}

// Temps returns the temp labels.
func (f *Fragment) Temps() []string {
	return slices.Clone(f.temps)
}

// Namer hands out temp names unique within one compilation.
type Namer struct {
	next int
}

// Fresh returns a new name for label.
func (n *Namer) Fresh(label string) string {
	n.next++
	return fmt.Sprintf("__pyx_%s_%d", strings.ToLower(label), n.next)
}

// Args are the values of one expansion.
type Args struct {
	Stmts map[string]ast.Stmt
	Exprs map[string]ast.Expr
	Namer *Namer
}

// Expansion is the result of Substitute.
type Expansion struct {
	Stats []ast.Stmt
	// Temps maps each temp label to the name chosen for it.
	Temps map[string]string
}

type substCtx struct {
	pos   ast.Pos
	args  Args
	temps map[string]string
	used  map[string]bool
}

var substituter = visitor.New[*substCtx]("Substitute").
	On(substStmtHole, ast.KindStmtHole).
	On(substExprHole, ast.KindExprHole).
	On(substName, ast.KindName).
	OnNode(substNode)

// Substitute instantiates the fragment at pos. Every node taken from the
// skeleton is placed at pos; supplied subtrees keep their positions.
// A subtree used by more than one hole occurrence is cloned. A hole with
// no value is an internal error.
func (f *Fragment) Substitute(pos ast.Pos, args Args) (exp Expansion) {
	ctx := &substCtx{
		pos:   pos,
		args:  args,
		temps: make(map[string]string, len(f.temps)),
		used:  make(map[string]bool),
	}
	for _, label := range f.temps {
		if args.Namer == nil {
			diag.Fatalf("Substitute", pos, "fragment %s has temps but no namer", f.name)
		}
		ctx.temps[label] = args.Namer.Fresh(label)
	}
	for _, s := range f.body {
		for _, r := range substituter.Visit(ctx, s) {
			exp.Stats = append(exp.Stats, r.(ast.Stmt))
		}
	}
	exp.Temps = maps.Clone(ctx.temps)
	return exp
}

func (c *substCtx) take(key string, n ast.Node) ast.Node {
	if c.used[key] {
		return Clone(n)
	}
	c.used[key] = true
	return n
}

func substStmtHole(_ *visitor.Visitor[*substCtx], ctx *substCtx, n ast.Node) visitor.Result {
	h := n.(*ast.StmtHole)
	s, ok := ctx.args.Stmts[h.Name]
	if !ok || s == nil {
		diag.Fatalf("Substitute", ctx.pos, "no value for statement hole %s", h.Name)
	}
	s = ctx.take("stmt:"+h.Name, s).(ast.Stmt)
	if l, ok := s.(*ast.StatList); ok {
		return visitor.SpliceStmts(l.Stats)
	}
	return visitor.Keep(s)
}

func substExprHole(_ *visitor.Visitor[*substCtx], ctx *substCtx, n ast.Node) visitor.Result {
	h := n.(*ast.ExprHole)
	e, ok := ctx.args.Exprs[h.Name]
	if !ok || e == nil {
		diag.Fatalf("Substitute", ctx.pos, "no value for expression hole %s", h.Name)
	}
	return visitor.Keep(ctx.take("expr:"+h.Name, e))
}

func substName(v *visitor.Visitor[*substCtx], ctx *substCtx, n ast.Node) visitor.Result {
	name := n.(*ast.Name)
	if fresh, ok := ctx.temps[name.Name]; ok {
		return visitor.Keep(ast.NewName(ctx.pos, fresh))
	}
	return substNode(v, ctx, n)
}

func substNode(v *visitor.Visitor[*substCtx], ctx *substCtx, n ast.Node) visitor.Result {
	c := n.Copy()
	c.SetPosition(ctx.pos)
	v.VisitChildren(ctx, c)
	return visitor.Keep(c)
}
