// Package printer renders trees back to pyx-like source text.
//
// The output is meant for people and tests: synthesized constructs that
// have no source syntax (closure temps, exception info targets, directive
// scopes) get a readable pseudo-syntax.
package printer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/directives"
)

const indentUnit = "    "

type printer struct {
	b      strings.Builder
	indent int
}

// Print renders n. Statements and modules print one line per simple
// statement; expressions and other nodes print on a single line.
func Print(n ast.Node) string {
	p := &printer{}
	switch x := n.(type) {
	case *ast.Module:
		if x.Doc != "" {
			p.line(quote(x.Doc, false))
		}
		p.stmt(x.Body)
	case ast.Stmt:
		p.stmt(x)
	case ast.Expr:
		return Expr(x)
	default:
		return node(n)
	}
	return p.b.String()
}

// Expr renders an expression on one line.
func Expr(e ast.Expr) string {
	return expr(e, precLowest)
}

func (p *printer) line(format string, args ...any) {
	p.b.WriteString(strings.Repeat(indentUnit, p.indent))
	if len(args) == 0 {
		p.b.WriteString(format)
	} else {
		fmt.Fprintf(&p.b, format, args...)
	}
	p.b.WriteByte('\n')
}

func (p *printer) block(s ast.Stmt) {
	p.indent++
	if l, ok := s.(*ast.StatList); s == nil || ok && len(l.Stats) == 0 {
		p.line("pass")
	} else {
		p.stmt(s)
	}
	p.indent--
}

func (p *printer) decorators(ds []*ast.Decorator) {
	for _, d := range ds {
		p.line("@%s", Expr(d.Expr))
	}
}

func (p *printer) docstring(doc string) {
	if doc == "" {
		return
	}
	p.indent++
	p.line(quote(doc, false))
	p.indent--
}

func (p *printer) stmt(s ast.Stmt) {
	switch x := s.(type) {
	case nil:
	case *ast.StatList:
		for _, st := range x.Stats {
			p.stmt(st)
		}
	case *ast.ExprStat:
		p.line(Expr(x.Expr))
	case *ast.Pass:
		p.line("pass")
	case *ast.Break:
		p.line("break")
	case *ast.Continue:
		p.line("continue")
	case *ast.Return:
		p.line(withValue("return", x.Value))
	case *ast.Raise:
		p.line(withValue("raise", x.Exc))
	case *ast.SingleAssignment:
		p.line("%s = %s", Expr(x.Lhs), Expr(x.Rhs))
	case *ast.CascadedAssignment:
		parts := make([]string, 0, len(x.LhsList)+1)
		for _, l := range x.LhsList {
			parts = append(parts, Expr(l))
		}
		p.line(strings.Join(append(parts, Expr(x.Rhs)), " = "))
	case *ast.ParallelAssignment:
		p.parallel(x)
	case *ast.If:
		for i, c := range x.Clauses {
			kw := "if"
			if i > 0 {
				kw = "elif"
			}
			p.line("%s %s:", kw, Expr(c.Cond))
			p.block(c.Body)
		}
		p.elseBlock(x.Else)
	case *ast.While:
		p.line("while %s:", Expr(x.Cond))
		p.block(x.Body)
		p.elseBlock(x.Else)
	case *ast.ForIn:
		p.line("for %s in %s:", Expr(x.Target), Expr(x.Iter))
		p.block(x.Body)
		p.elseBlock(x.Else)
	case *ast.With:
		if x.Target != nil {
			p.line("with %s as %s:", Expr(x.Manager), Expr(x.Target))
		} else {
			p.line("with %s:", Expr(x.Manager))
		}
		p.block(x.Body)
	case *ast.TryExcept:
		p.line("try:")
		p.block(x.Body)
		for _, c := range x.Clauses {
			p.line(exceptHeader(c))
			p.block(c.Body)
		}
		p.elseBlock(x.Else)
	case *ast.TryFinally:
		p.line("try:")
		p.block(x.Body)
		p.line("finally:")
		p.block(x.Finally)
	case *ast.CVarDef:
		p.decorators(x.Decorators)
		decls := make([]string, len(x.Declarators))
		for i, d := range x.Declarators {
			decls[i] = declarator(d)
		}
		p.line("cdef %s%s", prefix(x.Visibility, baseType(x.BaseType)), strings.Join(decls, ", "))
	case *ast.FuncDef:
		p.funcDef(x)
	case *ast.ClassDef:
		p.decorators(x.Decorators)
		kw := "class"
		if x.Cdef {
			kw = "cdef " + strings.TrimSpace(prefix(x.Visibility, "class"))
		}
		if len(x.Bases) > 0 {
			p.line("%s %s(%s):", kw, x.Name, exprs(x.Bases))
		} else {
			p.line("%s %s:", kw, x.Name)
		}
		p.docstring(x.Doc)
		p.block(x.Body)
	case *ast.StructDef:
		kw := "struct"
		if x.Union {
			kw = "union"
		}
		p.line("cdef %s%s:", prefix(x.Visibility, kw), x.Name)
		p.indent++
		if len(x.Attributes) == 0 {
			p.line("pass")
		}
		for _, a := range x.Attributes {
			decls := make([]string, len(a.Declarators))
			for i, d := range a.Declarators {
				decls[i] = declarator(d)
			}
			p.line("%s %s", baseType(a.BaseType), strings.Join(decls, ", "))
		}
		p.indent--
	case *ast.EnumDef:
		p.line("cdef %s:", strings.TrimSpace(prefix(x.Visibility, "enum")+x.Name))
		p.indent++
		if len(x.Items) == 0 {
			p.line("pass")
		}
		for _, item := range x.Items {
			p.line(item)
		}
		p.indent--
	case *ast.PropertyDef:
		p.line("property %s:", x.Name)
		p.docstring(x.Doc)
		p.block(x.Body)
	case *ast.CompilerDirectives:
		p.line("with directives(%s):", changedDirectives(x.Directives))
		p.block(x.Body)
	case *ast.GILStat:
		p.line("with %s:", x.State)
		p.block(x.Body)
	case *ast.Import:
		p.line(withAlias("import "+x.Module, x.AsName))
	case *ast.CImport:
		p.line(withAlias("cimport "+x.Module, x.AsName))
	case *ast.FromImport:
		p.line("from %s import %s", x.Module, importedNames(x.Names))
	case *ast.FromCImport:
		p.line("from %s cimport %s", x.Module, importedNames(x.Names))
	case *ast.StmtHole:
		p.line("<%s>", x.Name)
	default:
		p.line("<%s>", s.Kind())
	}
}

func (p *printer) elseBlock(s ast.Stmt) {
	if s == nil {
		return
	}
	p.line("else:")
	p.block(s)
}

// parallel prints element assignments as one tuple assignment when it
// can, one per line otherwise.
func (p *printer) parallel(x *ast.ParallelAssignment) {
	var lhs, rhs []string
	for _, s := range x.Stats {
		a, ok := s.(*ast.SingleAssignment)
		if !ok {
			lhs = nil
			break
		}
		lhs = append(lhs, expr(a.Lhs, precLambda))
		rhs = append(rhs, expr(a.Rhs, precLambda))
	}
	if lhs == nil {
		for _, s := range x.Stats {
			p.stmt(s)
		}
		return
	}
	p.line("%s = %s", strings.Join(lhs, ", "), strings.Join(rhs, ", "))
}

func (p *printer) funcDef(fn *ast.FuncDef) {
	p.decorators(fn.Decorators)
	var head string
	switch {
	case fn.Cdef && fn.Overridable:
		head = "cpdef " + prefix(fn.Visibility, baseType(fn.ReturnType))
	case fn.Cdef:
		head = "cdef " + prefix(fn.Visibility, baseType(fn.ReturnType))
	default:
		head = "def "
	}
	args := make([]string, 0, len(fn.Args)+2)
	for _, a := range fn.Args {
		args = append(args, arg(a))
	}
	if fn.StarArg != nil {
		args = append(args, "*"+arg(fn.StarArg))
	}
	if fn.StarStarArg != nil {
		args = append(args, "**"+arg(fn.StarStarArg))
	}
	ret := ""
	if !fn.Cdef && fn.ReturnType != nil {
		ret = " -> " + baseType(fn.ReturnType)
	}
	if fn.Nogil {
		ret += " nogil"
	}
	p.line("%s%s(%s)%s:", head, fn.Name, strings.Join(args, ", "), ret)
	p.docstring(fn.Doc)
	p.block(fn.Body)
}

func exceptHeader(c *ast.ExceptClause) string {
	var b strings.Builder
	b.WriteString("except")
	if c.Pattern != nil {
		b.WriteString(" " + Expr(c.Pattern))
	}
	if c.Target != nil {
		b.WriteString(" as " + Expr(c.Target))
	}
	if c.ExcInfoTarget != nil {
		b.WriteString(" with excinfo " + Expr(c.ExcInfoTarget))
	}
	b.WriteByte(':')
	return b.String()
}

func withValue(kw string, e ast.Expr) string {
	if e == nil {
		return kw
	}
	return kw + " " + Expr(e)
}

func withAlias(s, alias string) string {
	if alias == "" {
		return s
	}
	return s + " as " + alias
}

func importedNames(names []ast.ImportedName) string {
	parts := make([]string, len(names))
	for i, n := range names {
		s := n.Name
		if n.Kind != "" {
			s = n.Kind + " " + s
		}
		parts[i] = withAlias(s, n.AsName)
	}
	return strings.Join(parts, ", ")
}

// prefix joins a visibility word and a type with trailing space; empty
// parts are skipped.
func prefix(visibility, typ string) string {
	var parts []string
	for _, s := range []string{visibility, typ} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " ") + " "
}

// changedDirectives lists the directives of set whose value differs from
// the default, in name order.
func changedDirectives(set directives.Set) string {
	var parts []string
	for _, name := range set.Keys() {
		v := set[name]
		spec, ok := directives.Lookup(name)
		if ok && spec.Kind != directives.Marker && fmt.Sprint(v) == fmt.Sprint(spec.Default) {
			continue
		}
		if ok && spec.Kind == directives.Marker {
			parts = append(parts, name)
			continue
		}
		parts = append(parts, name+"="+directiveValue(v))
	}
	return strings.Join(parts, ", ")
}

func directiveValue(v any) string {
	switch x := v.(type) {
	case bool:
		if x {
			return "True"
		}
		return "False"
	case string:
		return quote(x, false)
	}
	return fmt.Sprint(v)
}

func baseType(t ast.BaseType) string {
	switch x := t.(type) {
	case nil:
		return ""
	case *ast.SimpleBaseType:
		if x.Implicit {
			return ""
		}
		return x.Name
	case *ast.TemplatedType:
		args := make([]string, 0, len(x.Positional)+len(x.Keywords))
		for _, e := range x.Positional {
			args = append(args, Expr(e))
		}
		for _, k := range x.Keywords {
			args = append(args, k.Name+"="+Expr(k.Value))
		}
		return fmt.Sprintf("%s[%s]", baseType(x.BaseType), strings.Join(args, ", "))
	}
	return t.TypeName()
}

func declarator(d ast.Declarator) string {
	switch x := d.(type) {
	case *ast.NameDeclarator:
		if x.Default != nil {
			return x.Name + " = " + Expr(x.Default)
		}
		return x.Name
	case *ast.PtrDeclarator:
		return "*" + declarator(x.Inner)
	case *ast.ArrayDeclarator:
		dim := ""
		if x.Dimension != nil {
			dim = Expr(x.Dimension)
		}
		return declarator(x.Inner) + "[" + dim + "]"
	}
	return "<" + d.Kind().String() + ">"
}

func arg(a *ast.Arg) string {
	s := a.Name
	if t := baseType(a.BaseType); t != "" {
		s = t + " " + s
	}
	if a.Annotation != nil {
		s += ": " + Expr(a.Annotation)
	}
	if a.Default != nil {
		s += "=" + Expr(a.Default)
	}
	return s
}

// node renders the structural nodes that are neither statements nor
// expressions.
func node(n ast.Node) string {
	switch x := n.(type) {
	case *ast.Arg:
		return arg(x)
	case *ast.Keyword:
		return x.Name + "=" + Expr(x.Value)
	case *ast.DictItem:
		return Expr(x.Key) + ": " + Expr(x.Value)
	case *ast.Decorator:
		return "@" + Expr(x.Expr)
	case *ast.IfClause:
		return "if " + Expr(x.Cond) + ":"
	case *ast.ExceptClause:
		return exceptHeader(x)
	case ast.Declarator:
		return declarator(x)
	case ast.BaseType:
		return baseType(x)
	}
	return "<" + n.Kind().String() + ">"
}

func quote(s string, unicode bool) string {
	q := strconv.Quote(s)
	if unicode {
		return "u" + q
	}
	return q
}
