package transform

import (
	"sort"
	"strings"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/directives"
	"github.com/GriffinCanCode/pyxc/pkg/symtab"
	"github.com/GriffinCanCode/pyxc/pkg/visitor"
)

type declCtx struct {
	c     *Context
	scope symtab.ScopeID
	// seen holds the names used so far in the current function body.
	seen       map[string]bool
	directives directives.Set
}

var declarationAnalyser = visitor.New[declCtx]("AnalyseDeclarations").
	On(declDirectives, ast.KindCompilerDirectives).
	On(declFunc, ast.KindFuncDef).
	On(declLambda, ast.KindLambda).
	On(declClass, ast.KindClassDef).
	On(declProperty, ast.KindPropertyDef).
	On(declCVarDef, ast.KindCVarDef).
	On(declNameDeclarator, ast.KindNameDeclarator).
	On(declDrop, ast.KindStructDef).
	On(declEnum, ast.KindEnumDef).
	On(declName, ast.KindName).
	On(visitor.Identity[declCtx], ast.KindSimpleBaseType, ast.KindTemplatedType).
	OnNode(visitor.Descend[declCtx])

// AnalyseDeclarations builds the scopes of the module, binds every name
// use to its entry and drops the declaration-only statements.
func AnalyseDeclarations(c *Context, m *ast.Module) *ast.Module {
	scope := c.Table.NewScope(symtab.ModuleScope, m.Name, 0)
	m.Scope = scope.ID
	for _, name := range []string{"__name__", "__file__", "__doc__"} {
		scope.Declare(symtab.Entry{Name: name, Type: symtab.ObjectType, Kind: symtab.VarEntry, Pos: m.Position()})
	}
	declareBody(c, scope, m.Body)

	ctx := declCtx{c: c, scope: scope.ID, seen: map[string]bool{}, directives: m.Directives}
	declarationAnalyser.VisitChildren(ctx, m)
	return m
}

type collector struct {
	c     *Context
	scope *symtab.Scope
}

// declareBody declares the names bound directly in body: explicit
// declarations first, then implicit Python bindings.
func declareBody(c *Context, scope *symtab.Scope, body ast.Node) {
	d := collector{c: c, scope: scope}
	visitor.Inspect(body, d.explicit)
	visitor.Inspect(body, d.implicit)
}

func (d collector) declare(pos ast.Pos, e symtab.Entry) symtab.Handle {
	e.Pos = pos
	h, fresh := d.scope.Declare(e)
	if !fresh && !e.Implicit {
		if old := d.c.Table.Entry(h); e.Cdef || old.Cdef {
			d.c.Sink.Errorf(pos, "'%s' redeclared", e.Name)
		}
	}
	return h
}

func (d collector) explicit(n ast.Node) bool {
	switch x := n.(type) {
	case *ast.CVarDef:
		d.declareVars(x, d.scope)
		return false
	case *ast.FuncDef:
		x.Entry = d.declare(x.Position(), symtab.Entry{
			Name: x.Name, Type: symtab.ObjectType, Kind: symtab.FuncEntry,
			Cdef: x.Cdef, Visibility: x.Visibility,
		})
		return false
	case *ast.ClassDef:
		kind := symtab.ClassScope
		if x.Cdef {
			kind = symtab.CClassScope
		}
		members := d.c.Table.NewScope(kind, x.Name, d.scope.ID)
		x.Scope = members.ID
		x.Entry = d.declare(x.Position(), symtab.Entry{
			Name: x.Name, Type: x.Name, Kind: symtab.ClassEntry,
			Cdef: x.Cdef, Visibility: x.Visibility, Members: members.ID,
		})
		return false
	case *ast.StructDef:
		members := d.c.Table.NewScope(symtab.StructScope, x.Name, d.scope.ID)
		for _, attr := range x.Attributes {
			d.declareVars(attr, members)
		}
		d.declare(x.Position(), symtab.Entry{
			Name: x.Name, Type: x.Name, Kind: symtab.StructEntry,
			Cdef: true, Visibility: x.Visibility, Members: members.ID,
		})
		return false
	case *ast.EnumDef:
		itemType := "int"
		if x.Name != "" {
			itemType = x.Name
			d.declare(x.Position(), symtab.Entry{
				Name: x.Name, Type: x.Name, Kind: symtab.EnumEntry,
				Cdef: true, Visibility: x.Visibility,
			})
		}
		for _, item := range x.Items {
			d.declare(x.Position(), symtab.Entry{
				Name: item, Type: itemType, Kind: symtab.VarEntry,
				Cdef: true, Visibility: x.Visibility,
			})
		}
		return false
	case *ast.Import:
		d.declare(x.Position(), symtab.Entry{Name: importedAs(x.Module, x.AsName), Type: symtab.ObjectType, Kind: symtab.ModuleEntry})
	case *ast.CImport:
		d.declare(x.Position(), symtab.Entry{Name: importedAs(x.Module, x.AsName), Type: x.Module, Kind: symtab.ModuleEntry})
	case *ast.FromImport:
		for _, imp := range x.Names {
			d.declare(imp.Pos, symtab.Entry{Name: importedAs(imp.Name, imp.AsName), Type: symtab.ObjectType, Kind: symtab.VarEntry})
		}
	case *ast.FromCImport:
		for _, imp := range x.Names {
			d.declare(imp.Pos, symtab.Entry{Name: importedAs(imp.Name, imp.AsName), Type: imp.Name, Kind: symtab.VarEntry})
		}
	case *ast.PropertyDef, ast.Expr:
		return false
	}
	return true
}

func importedAs(module, as string) string {
	if as != "" {
		return as
	}
	first, _, _ := strings.Cut(module, ".")
	return first
}

func (d collector) declareVars(def *ast.CVarDef, scope *symtab.Scope) {
	into := collector{c: d.c, scope: scope}
	base := def.BaseType.TypeName()
	for _, decl := range def.Declarators {
		e := symtab.Entry{
			Name:       decl.DeclaredName(),
			Type:       ast.DeclaredType(base, decl),
			Kind:       symtab.VarEntry,
			Cdef:       true,
			Visibility: def.Visibility,
		}
		if scope.Kind == symtab.CClassScope && (def.Visibility == symtab.Public || def.Visibility == symtab.Readonly) {
			e.NeedsProperty = true
		}
		into.declare(decl.Position(), e)
	}
}

func (d collector) implicit(n ast.Node) bool {
	switch x := n.(type) {
	case *ast.SingleAssignment:
		d.bind(x.Lhs)
	case *ast.CascadedAssignment:
		for _, lhs := range x.LhsList {
			d.bind(lhs)
		}
	case *ast.ForIn:
		d.bind(x.Target)
	case *ast.With:
		d.bind(x.Target)
	case *ast.ExceptClause:
		d.bind(x.Target)
		d.bind(x.ExcInfoTarget)
	case *ast.FuncDef, *ast.ClassDef, *ast.PropertyDef, *ast.CVarDef, ast.Expr:
		return false
	}
	return true
}

func (d collector) bind(target ast.Expr) {
	switch x := target.(type) {
	case *ast.Name:
		if _, e := d.scope.LookupHere(x.Name); e == nil {
			d.declare(x.Position(), symtab.Entry{Name: x.Name, Type: symtab.ObjectType, Kind: symtab.VarEntry, Implicit: true})
		}
	case *ast.Sequence:
		for _, a := range x.Args {
			d.bind(a)
		}
	case *ast.Starred:
		d.bind(x.Target)
	}
}

// typeName returns the C type named by e, or false when e does not name
// a type.
func typeName(c *Context, scope symtab.ScopeID, e ast.Expr) (string, bool) {
	if attr := ast.CythonAttribute(e); attr != "" {
		return attr, symtab.IsBasicType(attr)
	}
	switch x := e.(type) {
	case *ast.Name:
		if h, ok := c.Table.Lookup(scope, x.Name); ok {
			switch entry := c.Table.Entry(h); entry.Kind {
			case symtab.ClassEntry, symtab.StructEntry, symtab.EnumEntry:
				return entry.Type, true
			}
		}
		if symtab.IsBasicType(x.Name) {
			return x.Name, true
		}
	case *ast.Call:
		if ast.CythonAttribute(x.Func) == "pointer" && len(x.Args) == 1 {
			if t, ok := typeName(c, scope, x.Args[0]); ok {
				return t + "*", true
			}
		}
	}
	return "", false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func declDirectives(v *visitor.Visitor[declCtx], ctx declCtx, n ast.Node) visitor.Result {
	ctx.directives = n.(*ast.CompilerDirectives).Directives
	v.VisitChildren(ctx, n)
	return visitor.Keep(n)
}

func declareArg(c *Context, scope *symtab.Scope, arg *ast.Arg) {
	if arg == nil {
		return
	}
	typ := symtab.ObjectType
	cdef := false
	if arg.BaseType != nil {
		if simple, ok := arg.BaseType.(*ast.SimpleBaseType); !ok || !simple.Implicit {
			typ = arg.BaseType.TypeName()
			cdef = true
		}
	}
	collector{c: c, scope: scope}.declare(arg.Position(), symtab.Entry{Name: arg.Name, Type: typ, Kind: symtab.ArgEntry, Cdef: cdef})
}

func declFunc(v *visitor.Visitor[declCtx], ctx declCtx, n ast.Node) visitor.Result {
	fn := n.(*ast.FuncDef)
	v.VisitChildren(ctx, n, "decorators", "args", "star_arg", "starstar_arg", "return_type")

	local := ctx.c.Table.NewScope(symtab.FunctionScope, fn.Name, ctx.scope)
	fn.LocalScope = local.ID
	for _, a := range fn.Args {
		declareArg(ctx.c, local, a)
	}
	declareArg(ctx.c, local, fn.StarArg)
	declareArg(ctx.c, local, fn.StarStarArg)
	for _, name := range sortedKeys(fn.DirectiveLocals) {
		typeExpr := fn.DirectiveLocals[name]
		if _, e := local.LookupHere(name); e != nil {
			continue
		}
		t, ok := typeName(ctx.c, ctx.scope, typeExpr)
		if !ok {
			ctx.c.Sink.Errorf(typeExpr.Position(), "Not a type")
			continue
		}
		local.Declare(symtab.Entry{Name: name, Type: t, Kind: symtab.VarEntry, Cdef: true, Pos: typeExpr.Position()})
	}
	declareBody(ctx.c, local, fn.Body)

	inner := ctx
	inner.scope = local.ID
	inner.seen = map[string]bool{}
	v.VisitChildren(inner, n, "body")
	return visitor.Keep(n)
}

func declLambda(v *visitor.Visitor[declCtx], ctx declCtx, n ast.Node) visitor.Result {
	l := n.(*ast.Lambda)
	v.VisitChildren(ctx, n, "args")
	local := ctx.c.Table.NewScope(symtab.FunctionScope, l.LambdaName, ctx.scope)
	l.LocalScope = local.ID
	for _, a := range l.Args {
		declareArg(ctx.c, local, a)
	}
	inner := ctx
	inner.scope = local.ID
	v.VisitChildren(inner, n, "body")
	return visitor.Keep(n)
}

func declClass(v *visitor.Visitor[declCtx], ctx declCtx, n ast.Node) visitor.Result {
	cls := n.(*ast.ClassDef)
	v.VisitChildren(ctx, n, "decorators", "bases")

	scope := ctx.c.Table.Scope(cls.Scope)
	declareBody(ctx.c, scope, cls.Body)
	inner := ctx
	inner.scope = cls.Scope
	v.VisitChildren(inner, n, "body")

	if !cls.Cdef {
		return visitor.Keep(n)
	}
	var props []ast.Stmt
	for _, e := range scope.Entries() {
		if !e.NeedsProperty {
			continue
		}
		prop := newProperty(ctx, e)
		for _, r := range v.Visit(inner, prop) {
			props = append(props, r.(ast.Stmt))
		}
	}
	if len(props) > 0 {
		body := ast.Block(cls.Body)
		body.Stats = append(body.Stats, props...)
		cls.Body = body
	}
	return visitor.Keep(n)
}

func declProperty(v *visitor.Visitor[declCtx], ctx declCtx, n ast.Node) visitor.Result {
	prop := n.(*ast.PropertyDef)
	scope := ctx.c.Table.NewScope(symtab.ClassScope, prop.Name, ctx.scope)
	declareBody(ctx.c, scope, prop.Body)
	inner := ctx
	inner.scope = scope.ID
	v.VisitChildren(inner, n)
	return visitor.Keep(n)
}

func declCVarDef(v *visitor.Visitor[declCtx], ctx declCtx, n ast.Node) visitor.Result {
	v.VisitChildren(ctx, n, "declarators")
	return visitor.Prune()
}

func declNameDeclarator(v *visitor.Visitor[declCtx], ctx declCtx, n ast.Node) visitor.Result {
	d := n.(*ast.NameDeclarator)
	if ctx.seen[d.Name] {
		h, ok := ctx.c.Table.Lookup(ctx.scope, d.Name)
		if e := ctx.c.Table.Entry(h); !ok || e.Visibility != symtab.Extern {
			ctx.c.Sink.Warnf(d.Position(), "cdef variable '%s' declared after it is used", d.Name)
		}
	}
	v.VisitChildren(ctx, n)
	return visitor.Keep(n)
}

func declDrop(_ *visitor.Visitor[declCtx], _ declCtx, _ ast.Node) visitor.Result {
	return visitor.Prune()
}

func declEnum(_ *visitor.Visitor[declCtx], _ declCtx, n ast.Node) visitor.Result {
	if n.(*ast.EnumDef).Visibility == symtab.Public {
		return visitor.Keep(n)
	}
	return visitor.Prune()
}

func declName(_ *visitor.Visitor[declCtx], ctx declCtx, n ast.Node) visitor.Result {
	name := n.(*ast.Name)
	ctx.seen[name.Name] = true
	if name.IsCythonModule || name.CythonAttribute != "" {
		return visitor.Keep(n)
	}
	if h, ok := ctx.c.Table.Lookup(ctx.scope, name.Name); ok {
		name.Entry = h
		return visitor.Keep(n)
	}
	if !symtab.IsBasicType(name.Name) {
		ctx.c.Sink.Errorf(name.Position(), "undeclared name not builtin: %s", name.Name)
	}
	return visitor.Keep(n)
}
