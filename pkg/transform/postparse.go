package transform

import (
	"fmt"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/visitor"
)

const (
	errCdefInClass          = "Cannot assign default value to fields in cdef classes, structs or unions"
	errBufDefaults          = "Invalid buffer defaults specification (see docs)"
	errInvalidSpecialAttrTy = "Special attributes must not have a type declared"
)

// Scope kinds seen by PostParse.
const (
	scopeModule   = "module"
	scopeFunction = "function"
	scopeClass    = "class"
	scopeStruct   = "struct"
)

type ppState struct {
	lambdas int
}

type ppCtx struct {
	c     *Context
	st    *ppState
	scope string
	// class is the enclosing class while scope is "class".
	class *ast.ClassDef
}

// specialAttributes interpret the default of a class attribute as
// compile-time data attached to the class. They report false after
// reporting an error.
var specialAttributes = map[string]func(ctx ppCtx, d *ast.NameDeclarator) bool{
	"__cythonbufferdefaults__": handleBufferDefaults,
}

var postParser = visitor.New[ppCtx]("PostParse").
	On(ppClass, ast.KindClassDef).
	On(ppFunc, ast.KindFuncDef).
	On(ppStruct, ast.KindStructDef).
	On(ppLambda, ast.KindLambda).
	On(ppCVarDef, ast.KindCVarDef).
	On(ppTemplatedType, ast.KindTemplatedType).
	On(ppAssignment, ast.KindSingleAssignment, ast.KindCascadedAssignment).
	OnNode(visitor.Descend[ppCtx])

// PostParse splits declarations with defaults into a declaration and an
// assignment, interprets buffer options and special class attributes,
// names lambdas and flattens parallel assignments.
func PostParse(c *Context, m *ast.Module) *ast.Module {
	ctx := ppCtx{c: c, st: &ppState{lambdas: 1}, scope: scopeModule}
	postParser.VisitChildren(ctx, m)
	return m
}

func (ctx ppCtx) enter(scope string, class *ast.ClassDef) ppCtx {
	ctx.scope = scope
	ctx.class = class
	return ctx
}

func ppClass(v *visitor.Visitor[ppCtx], ctx ppCtx, n ast.Node) visitor.Result {
	v.VisitChildren(ctx.enter(scopeClass, n.(*ast.ClassDef)), n)
	return visitor.Keep(n)
}

func ppFunc(v *visitor.Visitor[ppCtx], ctx ppCtx, n ast.Node) visitor.Result {
	v.VisitChildren(ctx.enter(scopeFunction, nil), n)
	return visitor.Keep(n)
}

func ppStruct(v *visitor.Visitor[ppCtx], ctx ppCtx, n ast.Node) visitor.Result {
	v.VisitChildren(ctx.enter(scopeStruct, nil), n)
	return visitor.Keep(n)
}

func ppLambda(v *visitor.Visitor[ppCtx], ctx ppCtx, n ast.Node) visitor.Result {
	l := n.(*ast.Lambda)
	if ctx.scope != scopeFunction {
		ctx.c.Sink.Errorf(l.Position(), "lambda functions are currently only supported in functions")
	}
	l.LambdaName = fmt.Sprintf("lambda%d", ctx.st.lambdas)
	ctx.st.lambdas++
	v.VisitChildren(ctx, n)
	return visitor.Keep(n)
}

func ppTemplatedType(v *visitor.Visitor[ppCtx], ctx ppCtx, n ast.Node) visitor.Result {
	v.VisitChildren(ctx, n)
	t := n.(*ast.TemplatedType)
	opts, err := templatedOptions(t)
	if err != nil {
		ctx.c.Sink.Errorf(err.pos, "%s", err.msg)
		return visitor.Keep(n)
	}
	t.Options = opts
	return visitor.Keep(n)
}

func ppCVarDef(v *visitor.Visitor[ppCtx], ctx ppCtx, n ast.Node) visitor.Result {
	v.VisitChildren(ctx, n)
	def := n.(*ast.CVarDef)

	stats := []ast.Node{def}
	kept := make([]ast.Declarator, 0, len(def.Declarators))
	for _, d := range def.Declarators {
		core := ast.Core(d)
		if core == nil || core.Default == nil {
			kept = append(kept, d)
			continue
		}
		if ctx.scope == scopeClass || ctx.scope == scopeStruct {
			if ctx.class != nil && ctx.class.Cdef {
				if handler, ok := specialAttributes[core.Name]; ok {
					if d != ast.Declarator(core) {
						ctx.c.Sink.Errorf(d.Position(), errInvalidSpecialAttrTy)
						return visitor.Prune()
					}
					if !handler(ctx, core) {
						return visitor.Prune()
					}
					continue
				}
			}
			ctx.c.Sink.Errorf(d.Position(), errCdefInClass)
			return visitor.Prune()
		}
		stats = append(stats, &ast.SingleAssignment{
			Base:  ast.At(def.Position()),
			Lhs:   ast.NewName(def.Position(), core.Name),
			Rhs:   core.Default,
			First: ctx.scope != scopeModule,
		})
		core.Default = nil
		kept = append(kept, d)
	}
	def.Declarators = kept
	if len(kept) == 0 {
		stats = stats[1:]
	}
	return visitor.Splice(stats...)
}

func handleBufferDefaults(ctx ppCtx, d *ast.NameDeclarator) bool {
	dict, ok := d.Default.(*ast.Dict)
	if !ok {
		ctx.c.Sink.Errorf(d.Position(), errBufDefaults)
		return false
	}
	opts, err := bufferDefaults(dict)
	if err != nil {
		ctx.c.Sink.Errorf(err.pos, "%s", err.msg)
		return false
	}
	ctx.class.BufferDefaults = opts
	return true
}

func ppAssignment(v *visitor.Visitor[ppCtx], ctx ppCtx, n ast.Node) visitor.Result {
	v.VisitChildren(ctx, n)
	switch a := n.(type) {
	case *ast.SingleAssignment:
		return flattenAssignment(ctx.c, n, []ast.Expr{a.Lhs, a.Rhs})
	case *ast.CascadedAssignment:
		exprs := append(append([]ast.Expr{}, a.LhsList...), a.Rhs)
		return flattenAssignment(ctx.c, n, exprs)
	}
	return visitor.Keep(n)
}
