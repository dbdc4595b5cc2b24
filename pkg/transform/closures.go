package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/logger"
	"github.com/GriffinCanCode/pyxc/pkg/symtab"
	"github.com/GriffinCanCode/pyxc/pkg/visitor"
)

const (
	closureClassPrefix = "__pyx_scope_struct_"
	outerScopeField    = "__pyx_outer_scope"
)

// markCtx points at the closure flag of the innermost function.
type markCtx struct {
	c    *Context
	flag *bool
}

var closureMarker = visitor.New[markCtx]("MarkClosures").
	On(markFunc, ast.KindFuncDef).
	On(markLambda, ast.KindLambda).
	On(markClass, ast.KindClassDef).
	On(markYield, ast.KindYield).
	OnNode(visitor.Descend[markCtx])

// MarkClosures flags the functions whose locals must outlive their call:
// functions defining nested functions, lambdas or classes, and
// generators.
func MarkClosures(c *Context, m *ast.Module) *ast.Module {
	var module bool
	closureMarker.VisitChildren(markCtx{c: c, flag: &module}, m)
	return m
}

func markFunc(v *visitor.Visitor[markCtx], ctx markCtx, n ast.Node) visitor.Result {
	fn := n.(*ast.FuncDef)
	v.VisitChildren(ctx, n, "decorators", "args", "star_arg", "starstar_arg")
	var needs bool
	v.VisitChildren(markCtx{c: ctx.c, flag: &needs}, n, "body")
	fn.NeedsClosure = needs
	*ctx.flag = true
	if fn.Cdef && needs {
		ctx.c.Sink.Errorf(fn.Position(), "closures inside cdef functions not yet supported")
	}
	return visitor.Keep(n)
}

func markLambda(v *visitor.Visitor[markCtx], ctx markCtx, n ast.Node) visitor.Result {
	l := n.(*ast.Lambda)
	v.VisitChildren(ctx, n, "args")
	var needs bool
	v.VisitChildren(markCtx{c: ctx.c, flag: &needs}, n, "body")
	l.NeedsClosure = needs
	*ctx.flag = true
	return visitor.Keep(n)
}

func markClass(v *visitor.Visitor[markCtx], ctx markCtx, n ast.Node) visitor.Result {
	v.VisitChildren(ctx, n)
	*ctx.flag = true
	return visitor.Keep(n)
}

func markYield(v *visitor.Visitor[markCtx], ctx markCtx, n ast.Node) visitor.Result {
	*ctx.flag = true
	v.VisitChildren(ctx, n)
	return visitor.Keep(n)
}

type closureCtx struct {
	c      *Context
	module symtab.ScopeID
}

var closureClasses = visitor.New[closureCtx]("CreateClosureClasses").
	On(closureFunc, ast.KindFuncDef).
	On(closureLambda, ast.KindLambda).
	OnNode(visitor.Descend[closureCtx])

// CreateClosureClasses declares, in module scope, a record type holding
// the locals of every function flagged by MarkClosures.
func CreateClosureClasses(c *Context, m *ast.Module) *ast.Module {
	closureClasses.VisitChildren(closureCtx{c: c, module: m.Scope}, m)
	return m
}

func closureFunc(v *visitor.Visitor[closureCtx], ctx closureCtx, n ast.Node) visitor.Result {
	fn := n.(*ast.FuncDef)
	if fn.NeedsClosure {
		ctx.createRecord(fn.Position(), fn.LocalScope)
	}
	v.VisitChildren(ctx, n)
	return visitor.Keep(n)
}

func closureLambda(v *visitor.Visitor[closureCtx], ctx closureCtx, n ast.Node) visitor.Result {
	l := n.(*ast.Lambda)
	if l.NeedsClosure {
		ctx.createRecord(l.Position(), l.LocalScope)
	}
	v.VisitChildren(ctx, n)
	return visitor.Keep(n)
}

// createRecord declares the closure record of the function scope id.
func (ctx closureCtx) createRecord(pos ast.Pos, id symtab.ScopeID) {
	t := ctx.c.Table
	fnScope := t.Scope(id)
	module := t.Scope(ctx.module)
	if fnScope == nil || module == nil {
		return
	}

	base := closureClassPrefix + strings.ReplaceAll(t.Qualified(id), ".", "_")
	name := base
	members := t.NewScope(symtab.ClosureScope, name, ctx.module)
	entry := symtab.Entry{Name: name, Type: name, Kind: symtab.ClassEntry, Cdef: true, Pos: pos, Members: members.ID}
	h, fresh := module.Declare(entry)
	for i := 2; !fresh; i++ {
		name = fmt.Sprintf("%s_%d", base, i)
		entry.Name, entry.Type = name, name
		members.Name = name
		h, fresh = module.Declare(entry)
	}

	if outer := t.Scope(fnScope.Outer); outer != nil && outer.IsClosureScope {
		outerType := t.Entry(outer.ScopeClass).Type
		members.Declare(symtab.Entry{Name: outerScopeField, Type: outerType, Kind: symtab.VarEntry, Cdef: true, Pos: pos})
	}
	locals := make([]*symtab.Entry, len(fnScope.Entries()))
	copy(locals, fnScope.Entries())
	sort.Slice(locals, func(i, j int) bool { return locals[i].Name < locals[j].Name })
	for _, e := range locals {
		members.Declare(symtab.Entry{Name: e.Name, Type: e.Type, Kind: e.Kind, Cdef: true, Pos: e.Pos})
	}

	fnScope.IsClosureScope = true
	fnScope.ScopeClass = h
	logger.LogClosure(t.Qualified(id), name, members.Len())
}
