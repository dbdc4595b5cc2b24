package visitor

import (
	"fmt"
	"reflect"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/diag"
)

// walker drives one pass over the children of a node. With visit set,
// every child slot is replaced by the visit result; without it the walk
// is read-only and only reports children to inspect.
type walker struct {
	pass    string
	want    func(attr string) bool
	visit   func(ast.Node) []ast.Node
	inspect func(attr string, n ast.Node)

	attrs   []string
	missing []string
}

func (w *walker) enter(attr string) bool {
	if w.want != nil && !w.want(attr) {
		return false
	}
	w.attrs = append(w.attrs, attr)
	return true
}

func (w *walker) absent(attr string, required bool) {
	if required {
		w.missing = append(w.missing, attr)
	}
}

func (w *walker) fatalf(n ast.Node, format string, args ...any) {
	diag.Fatalf(w.pass, n.Position(), format, args...)
}

func cast[T ast.Node](w *walker, attr string, parent, n ast.Node) T {
	t, ok := n.(T)
	if !ok {
		w.fatalf(parent, "%s returned for %s slot, want %s", n.Kind(), attr, reflect.TypeOf((*T)(nil)).Elem())
	}
	return t
}

// stmt handles a single statement slot.
func (w *walker) stmt(attr string, required bool, p *ast.Stmt) {
	if !w.enter(attr) {
		return
	}
	cur := *p
	if isNil(cur) {
		w.absent(attr, required)
		return
	}
	if w.visit == nil {
		w.inspect(attr, cur)
		return
	}
	res := w.visit(cur)
	switch len(res) {
	case 0:
		if required {
			*p = ast.NewStatList(cur.Position())
		} else {
			*p = nil
		}
	case 1:
		*p = cast[ast.Stmt](w, attr, cur, res[0])
	default:
		stats := make([]ast.Stmt, 0, len(res))
		for _, r := range res {
			stats = append(stats, cast[ast.Stmt](w, attr, cur, r))
		}
		*p = ast.NewStatList(cur.Position(), stats...)
	}
}

// node handles a single non-statement slot.
func node[T ast.Node](w *walker, attr string, required bool, p *T) {
	if !w.enter(attr) {
		return
	}
	cur := ast.Node(*p)
	if isNil(cur) {
		w.absent(attr, required)
		return
	}
	if w.visit == nil {
		w.inspect(attr, cur)
		return
	}
	res := w.visit(cur)
	switch len(res) {
	case 0:
		if required {
			w.fatalf(cur, "required %s of %s pruned", attr, cur.Kind())
		}
		var zero T
		*p = zero
	case 1:
		*p = cast[T](w, attr, cur, res[0])
	default:
		w.fatalf(cur, "%d nodes returned for single %s slot", len(res), attr)
	}
}

// list handles a child list; results are spliced in order.
func list[T ast.Node](w *walker, attr string, p *[]T) {
	if !w.enter(attr) {
		return
	}
	if w.visit == nil {
		for i, c := range *p {
			if isNil(c) {
				w.missing = append(w.missing, fmt.Sprintf("%s[%d]", attr, i))
				continue
			}
			w.inspect(attr, c)
		}
		return
	}
	if len(*p) == 0 {
		return
	}
	out := make([]T, 0, len(*p))
	for _, c := range *p {
		if isNil(c) {
			continue
		}
		for _, r := range w.visit(c) {
			out = append(out, cast[T](w, attr, c, r))
		}
	}
	*p = out
}

// walk enumerates the child slots of every node kind in shape order.
func walk(w *walker, n ast.Node) {
	switch x := n.(type) {
	case *ast.Module:
		w.stmt("body", true, &x.Body)

	case *ast.StatList:
		list(w, "stats", &x.Stats)
	case *ast.ExprStat:
		node(w, "expr", true, &x.Expr)
	case *ast.Pass, *ast.Break, *ast.Continue:
	case *ast.Return:
		node(w, "value", false, &x.Value)
	case *ast.Raise:
		node(w, "exc", false, &x.Exc)
	case *ast.SingleAssignment:
		node(w, "lhs", true, &x.Lhs)
		node(w, "rhs", true, &x.Rhs)
	case *ast.CascadedAssignment:
		list(w, "lhs_list", &x.LhsList)
		node(w, "rhs", true, &x.Rhs)
	case *ast.ParallelAssignment:
		list(w, "stats", &x.Stats)
	case *ast.If:
		list(w, "clauses", &x.Clauses)
		w.stmt("else", false, &x.Else)
	case *ast.While:
		node(w, "cond", true, &x.Cond)
		w.stmt("body", true, &x.Body)
		w.stmt("else", false, &x.Else)
	case *ast.ForIn:
		node(w, "target", true, &x.Target)
		node(w, "iter", true, &x.Iter)
		w.stmt("body", true, &x.Body)
		w.stmt("else", false, &x.Else)
	case *ast.With:
		node(w, "manager", true, &x.Manager)
		node(w, "target", false, &x.Target)
		w.stmt("body", true, &x.Body)
	case *ast.TryExcept:
		w.stmt("body", true, &x.Body)
		list(w, "clauses", &x.Clauses)
		w.stmt("else", false, &x.Else)
	case *ast.TryFinally:
		w.stmt("body", true, &x.Body)
		w.stmt("finally", true, &x.Finally)
	case *ast.CVarDef:
		list(w, "decorators", &x.Decorators)
		node(w, "base_type", true, &x.BaseType)
		list(w, "declarators", &x.Declarators)
	case *ast.FuncDef:
		list(w, "decorators", &x.Decorators)
		list(w, "args", &x.Args)
		node(w, "star_arg", false, &x.StarArg)
		node(w, "starstar_arg", false, &x.StarStarArg)
		node(w, "return_type", false, &x.ReturnType)
		w.stmt("body", true, &x.Body)
	case *ast.ClassDef:
		list(w, "decorators", &x.Decorators)
		list(w, "bases", &x.Bases)
		w.stmt("body", true, &x.Body)
	case *ast.StructDef:
		list(w, "attributes", &x.Attributes)
	case *ast.EnumDef:
	case *ast.PropertyDef:
		w.stmt("body", true, &x.Body)
	case *ast.CompilerDirectives:
		w.stmt("body", true, &x.Body)
	case *ast.GILStat:
		w.stmt("body", true, &x.Body)
	case *ast.Import, *ast.CImport, *ast.FromImport, *ast.FromCImport, *ast.StmtHole:

	case *ast.IfClause:
		node(w, "cond", true, &x.Cond)
		w.stmt("body", true, &x.Body)
	case *ast.ExceptClause:
		node(w, "pattern", false, &x.Pattern)
		node(w, "target", false, &x.Target)
		node(w, "excinfo_target", false, &x.ExcInfoTarget)
		w.stmt("body", true, &x.Body)
	case *ast.Decorator:
		node(w, "decorator", true, &x.Expr)
	case *ast.Arg:
		node(w, "base_type", false, &x.BaseType)
		node(w, "annotation", false, &x.Annotation)
		node(w, "default", false, &x.Default)
	case *ast.Keyword:
		node(w, "value", true, &x.Value)
	case *ast.DictItem:
		node(w, "key", true, &x.Key)
		node(w, "value", true, &x.Value)

	case *ast.Name, *ast.IntLit, *ast.FloatLit, *ast.StrLit, *ast.BoolLit,
		*ast.NoneLit, *ast.NullLit, *ast.ExprHole:
	case *ast.BinOp:
		node(w, "left", true, &x.Left)
		node(w, "right", true, &x.Right)
	case *ast.UnaryOp:
		node(w, "operand", true, &x.Operand)
	case *ast.Call:
		node(w, "func", true, &x.Func)
		list(w, "args", &x.Args)
		list(w, "keywords", &x.Keywords)
		node(w, "star_arg", false, &x.StarArg)
		node(w, "starstar_arg", false, &x.StarStarArg)
	case *ast.Attribute:
		node(w, "obj", true, &x.Obj)
	case *ast.Index:
		node(w, "obj", true, &x.Obj)
		node(w, "index", true, &x.Index)
	case *ast.Sequence:
		list(w, "args", &x.Args)
	case *ast.Starred:
		node(w, "target", true, &x.Target)
	case *ast.Dict:
		list(w, "items", &x.Items)
	case *ast.Lambda:
		list(w, "args", &x.Args)
		node(w, "body", true, &x.Body)
	case *ast.Yield:
		node(w, "value", false, &x.Value)
	case *ast.Typecast:
		node(w, "type", true, &x.Type)
		node(w, "operand", true, &x.Operand)
	case *ast.Sizeof:
		node(w, "operand", true, &x.Operand)
	case *ast.Typeof:
		node(w, "operand", true, &x.Operand)

	case *ast.NameDeclarator:
		node(w, "default", false, &x.Default)
	case *ast.PtrDeclarator:
		node(w, "inner", true, &x.Inner)
	case *ast.ArrayDeclarator:
		node(w, "inner", true, &x.Inner)
		node(w, "dimension", false, &x.Dimension)
	case *ast.SimpleBaseType:
	case *ast.TemplatedType:
		node(w, "base_type", true, &x.BaseType)
		list(w, "positional", &x.Positional)
		list(w, "keywords", &x.Keywords)

	default:
		w.fatalf(n, "unhandled node kind %s", n.Kind())
	}
}
