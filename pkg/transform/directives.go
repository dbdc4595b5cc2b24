package transform

import (
	"sort"
	"strings"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/directives"
	"github.com/GriffinCanCode/pyxc/pkg/symtab"
	"github.com/GriffinCanCode/pyxc/pkg/visitor"
)

// specialMethods are the cython module attributes that are not
// directives but are still resolved at compile time.
var specialMethods = map[string]bool{
	"declare": true, "union": true, "struct": true, "typedef": true,
	"sizeof": true, "cast": true, "pointer": true, "compiled": true,
	"NULL": true, "typeof": true, "address": true, "locals": true,
	"cmod": true, "cdiv": true,
	"operator.address":       true,
	"operator.dereference":   true,
	"operator.preincrement":  true,
	"operator.predecrement":  true,
	"operator.postincrement": true,
	"operator.postdecrement": true,
	"operator.comma":         true,
}

func isCythonName(name string) bool {
	if _, ok := directives.Lookup(name); ok {
		return true
	}
	return specialMethods[name] || symtab.IsBasicType(name)
}

type dirState struct {
	moduleNames map[string]bool
	// names maps a local alias to the cython attribute it was imported as.
	names map[string]string
}

type dirCtx struct {
	c          *Context
	st         *dirState
	directives directives.Set
}

// directive is one parsed directive use. A nil value is a marker.
type directive struct {
	name  string
	value any
}

var directiveInterpreter = visitor.New[dirCtx]("InterpretCompilerDirectives").
	On(dirImport, ast.KindImport, ast.KindCImport).
	On(dirFromImport, ast.KindFromImport, ast.KindFromCImport).
	On(dirName, ast.KindName).
	On(dirDecorated, ast.KindFuncDef, ast.KindClassDef).
	On(dirCVarDef, ast.KindCVarDef).
	On(dirWith, ast.KindWith).
	OnNode(visitor.Descend[dirCtx])

// InterpretCompilerDirectives resolves the directive set in effect for
// every subtree. The module set is stored on the module; decorator and
// with-statement directives become CompilerDirectives nodes around the
// subtree they govern.
func InterpretCompilerDirectives(c *Context, m *ast.Module) *ast.Module {
	for _, name := range m.DirectiveComments.Keys() {
		if !directives.Allowed(name, directives.ModuleScope) {
			c.Sink.Errorf(m.Position(), "The %s compiler directive is not allowed in %s scope", name, directives.ModuleScope)
			delete(m.DirectiveComments, name)
		}
	}
	set := directives.Defaults()
	set.Update(c.Overrides)
	set.Update(m.DirectiveComments)
	m.Directives = set

	st := &dirState{moduleNames: map[string]bool{}, names: map[string]string{}}
	directiveInterpreter.VisitChildren(dirCtx{c: c, st: st, directives: set}, m)

	m.CythonModuleNames = m.CythonModuleNames[:0]
	for name := range st.moduleNames {
		m.CythonModuleNames = append(m.CythonModuleNames, name)
	}
	sort.Strings(m.CythonModuleNames)
	return m
}

func (ctx dirCtx) checkScope(pos ast.Pos, name, scope string) bool {
	if directives.Allowed(name, scope) {
		return true
	}
	ctx.c.Sink.Errorf(pos, "The %s compiler directive is not allowed in %s scope", name, scope)
	return false
}

func dirImport(_ *visitor.Visitor[dirCtx], ctx dirCtx, n ast.Node) visitor.Result {
	var module, as string
	switch x := n.(type) {
	case *ast.Import:
		module, as = x.Module, x.AsName
	case *ast.CImport:
		module, as = x.Module, x.AsName
	}
	switch {
	case module == "cython":
		if as == "" {
			as = "cython"
		}
		ctx.st.moduleNames[as] = true
	case strings.HasPrefix(module, "cython."):
		if as != "" {
			ctx.st.names[as] = strings.TrimPrefix(module, "cython.")
		} else {
			ctx.st.moduleNames["cython"] = true
		}
	default:
		return visitor.Keep(n)
	}
	return visitor.Prune()
}

func dirFromImport(_ *visitor.Visitor[dirCtx], ctx dirCtx, n ast.Node) visitor.Result {
	var module string
	var names *[]ast.ImportedName
	switch x := n.(type) {
	case *ast.FromImport:
		module, names = x.Module, &x.Names
	case *ast.FromCImport:
		module, names = x.Module, &x.Names
	}
	if module != "cython" && !strings.HasPrefix(module, "cython.") {
		return visitor.Keep(n)
	}
	submodule := (module + ".")[len("cython."):]
	var kept []ast.ImportedName
	for _, imp := range *names {
		full := submodule + imp.Name
		if !isCythonName(full) {
			kept = append(kept, imp)
			continue
		}
		as := imp.AsName
		if as == "" {
			as = full
		}
		ctx.st.names[as] = full
		if imp.Kind != "" {
			ctx.c.Sink.Errorf(imp.Pos, "Compiler directive imports must be plain imports")
		}
	}
	if len(kept) == 0 {
		return visitor.Prune()
	}
	*names = kept
	return visitor.Keep(n)
}

func dirName(_ *visitor.Visitor[dirCtx], ctx dirCtx, n ast.Node) visitor.Result {
	name := n.(*ast.Name)
	if ctx.st.moduleNames[name.Name] {
		name.IsCythonModule = true
	} else {
		name.CythonAttribute = ctx.st.names[name.Name]
	}
	return visitor.Keep(n)
}

// parseDirectives interprets e as the directives of a decorator or with
// manager. It reports false when e is not a directive use at all. A
// malformed directive is reported and yields no directives.
func (ctx dirCtx) parseDirectives(v *visitor.Visitor[dirCtx], e ast.Expr) ([]directive, bool) {
	switch x := e.(type) {
	case *ast.Call:
		x.Func = v.VisitExpr(ctx, x.Func)
		name := ast.CythonAttribute(x.Func)
		spec, ok := directives.Lookup(name)
		if !ok {
			return nil, false
		}
		if spec.Kind == directives.Marker {
			ctx.c.Sink.Errorf(x.Func.Position(), "The %s directive takes no arguments", name)
			return nil, true
		}
		var out []directive
		keywords := x.Keywords
		if spec.Kind != directives.Dict && len(keywords) > 0 {
			var rest []*ast.Keyword
			for _, kw := range keywords {
				sub := name + "." + kw.Name
				if _, ok := directives.Lookup(sub); !ok {
					rest = append(rest, kw)
					continue
				}
				d, ok := ctx.parseDirective(sub, []ast.Expr{kw.Value}, nil, kw.Position())
				if ok {
					out = append(out, d)
				}
			}
			keywords = rest
			if len(out) > 0 && len(keywords) == 0 && len(x.Args) == 0 {
				return out, true
			}
		}
		if d, ok := ctx.parseDirective(name, x.Args, keywords, x.Func.Position()); ok {
			out = append(out, d)
		}
		return out, true

	case *ast.Name, *ast.Attribute:
		v.VisitChildren(ctx, e)
		if name, isName := e.(*ast.Name); isName {
			dirName(v, ctx, name)
		}
		name := ast.CythonAttribute(e)
		spec, ok := directives.Lookup(name)
		if !ok {
			return nil, false
		}
		if spec.Kind != directives.Marker {
			ctx.c.Sink.Errorf(e.Position(), "The %s directive should be used as a function call.", name)
			return nil, true
		}
		return []directive{{name: name}}, true
	}
	return nil, false
}

func (ctx dirCtx) parseDirective(name string, args []ast.Expr, keywords []*ast.Keyword, pos ast.Pos) (directive, bool) {
	spec, _ := directives.Lookup(name)
	if len(args) == 1 && len(keywords) == 0 {
		if _, isNone := args[0].(*ast.NoneLit); isNone {
			return directive{name, directives.Default(name)}, true
		}
	}
	one := len(keywords) == 0 && len(args) == 1
	switch spec.Kind {
	case directives.Bool:
		if b, ok := args0(args).(*ast.BoolLit); one && ok {
			return directive{name, b.Value}, true
		}
		ctx.c.Sink.Errorf(pos, "The %s directive takes one compile-time boolean argument", name)
	case directives.Str:
		if s, ok := args0(args).(*ast.StrLit); one && ok {
			return directive{name, s.Value}, true
		}
		ctx.c.Sink.Errorf(pos, "The %s directive takes one compile-time string argument", name)
	case directives.Int:
		if i, ok := args0(args).(*ast.IntLit); one && ok {
			return directive{name, int(i.Value)}, true
		}
		ctx.c.Sink.Errorf(pos, "The %s directive takes one compile-time integer argument", name)
	case directives.Dict:
		if len(args) != 0 {
			ctx.c.Sink.Errorf(pos, "The %s directive takes no prepositional arguments", name)
			return directive{}, false
		}
		value := make(map[string]any, len(keywords))
		for _, kw := range keywords {
			value[kw.Name] = kw.Value
		}
		return directive{name, value}, true
	case directives.List:
		if len(keywords) != 0 {
			ctx.c.Sink.Errorf(pos, "The %s directive takes no keyword arguments", name)
			return directive{}, false
		}
		value := make([]string, 0, len(args))
		for _, a := range args {
			s, ok := a.(*ast.StrLit)
			if !ok {
				ctx.c.Sink.Errorf(a.Position(), "The %s directive takes compile-time string arguments", name)
				return directive{}, false
			}
			value = append(value, s.Value)
		}
		return directive{name, value}, true
	}
	return directive{}, false
}

func args0(args []ast.Expr) ast.Expr {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}

// merge folds directives in declaration order into one set. The first
// declared value of a scalar directive wins; dict and list values
// accumulate.
func (ctx dirCtx) merge(pos ast.Pos, ds []directive, scope string) directives.Set {
	set := directives.Set{}
	for i := len(ds) - 1; i >= 0; i-- {
		d := ds[i]
		if !ctx.checkScope(pos, d.name, scope) {
			continue
		}
		old, ok := set[d.name]
		if !ok {
			set[d.name] = d.value
			continue
		}
		switch o := old.(type) {
		case map[string]any:
			for k, v := range d.value.(map[string]any) {
				o[k] = v
			}
		case []string:
			set[d.name] = append(o, d.value.([]string)...)
		default:
			set[d.name] = d.value
		}
	}
	return set
}

// scoped wraps body in a CompilerDirectives node carrying the current
// set updated with set, and visits node under it.
func (ctx dirCtx) scoped(v *visitor.Visitor[dirCtx], pos ast.Pos, node ast.Node, body ast.Stmt, set directives.Set) *ast.CompilerDirectives {
	merged := ctx.directives.Copy()
	merged.Update(set)
	inner := ctx
	inner.directives = merged
	v.VisitChildren(inner, node)
	return &ast.CompilerDirectives{Base: ast.At(pos), Body: body, Directives: merged}
}

func dirDecorated(v *visitor.Visitor[dirCtx], ctx dirCtx, n ast.Node) visitor.Result {
	var decs *[]*ast.Decorator
	scope := directives.FunctionScope
	fn, isFunc := n.(*ast.FuncDef)
	if isFunc {
		decs = &fn.Decorators
	} else {
		decs = &n.(*ast.ClassDef).Decorators
		scope = directives.ClassScope
	}

	var found []directive
	var real []*ast.Decorator
	for _, dec := range *decs {
		ds, ok := ctx.parseDirectives(v, dec.Expr)
		if !ok {
			real = append(real, dec)
			continue
		}
		found = append(found, ds...)
	}
	if isFunc && fn.Cdef && len(real) > 0 {
		ctx.c.Sink.Errorf(real[0].Position(), "Cdef functions cannot take arbitrary decorators.")
		real = nil
	}
	*decs = real

	if len(found) == 0 {
		v.VisitChildren(ctx, n)
		return visitor.Keep(n)
	}
	set := ctx.merge(n.Position(), found, scope)
	if isFunc {
		if locals, ok := set["locals"].(map[string]any); ok {
			fn.DirectiveLocals = localsOf(locals)
		}
	}
	body := ast.NewStatList(n.Position(), n.(ast.Stmt))
	return visitor.Replace(ctx.scoped(v, n.Position(), n, body, set))
}

func localsOf(m map[string]any) map[string]ast.Expr {
	out := make(map[string]ast.Expr, len(m))
	for k, v := range m {
		if e, ok := v.(ast.Expr); ok {
			out[k] = e
		}
	}
	return out
}

func dirCVarDef(v *visitor.Visitor[dirCtx], ctx dirCtx, n ast.Node) visitor.Result {
	def := n.(*ast.CVarDef)
	for _, dec := range def.Decorators {
		ds, _ := ctx.parseDirectives(v, dec.Expr)
		if len(ds) == 0 {
			ctx.c.Sink.Errorf(dec.Position(), "Cdef functions can only take cython.locals() decorator.")
			continue
		}
		for _, d := range ds {
			if locals, ok := d.value.(map[string]any); ok && d.name == "locals" {
				def.DirectiveLocals = localsOf(locals)
				continue
			}
			ctx.c.Sink.Errorf(dec.Position(), "Cdef functions can only take cython.locals() decorator.")
		}
	}
	def.Decorators = nil
	return visitor.Keep(n)
}

func dirWith(v *visitor.Visitor[dirCtx], ctx dirCtx, n ast.Node) visitor.Result {
	with := n.(*ast.With)
	ds, ok := ctx.parseDirectives(v, with.Manager)
	if !ok {
		v.VisitChildren(ctx, n)
		return visitor.Keep(n)
	}
	set := directives.Set{}
	for _, d := range ds {
		if with.Target != nil {
			ctx.c.Sink.Errorf(with.Position(), "Compiler directive with statements cannot contain 'as'")
			continue
		}
		if ctx.checkScope(with.Position(), d.name, directives.WithScope) {
			set[d.name] = d.value
		}
	}
	body := ast.Block(with.Body)
	if len(set) == 0 {
		v.VisitChildren(ctx, body)
		return visitor.Replace(body)
	}
	return visitor.Replace(ctx.scoped(v, with.Position(), body, body, set))
}
