package transform

import (
	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/fragment"
	"github.com/GriffinCanCode/pyxc/pkg/symtab"
)

// Accessor method kinds of a generated property.
const (
	accessGet = 1 << iota
	accessSet
	accessDel
)

// propertyFragment builds the accessors of an extension type attribute
// ATTR:
//
//	def __get__(self): return ATTR
//	def __set__(self, value): ATTR = value
//	def __del__(self): ATTR = None
func propertyFragment(name string, access int) *fragment.Fragment {
	var p ast.Pos
	method := func(name string, body ast.Stmt, args ...string) *ast.FuncDef {
		fn := &ast.FuncDef{Name: name, Body: ast.NewStatList(p, body)}
		for _, a := range args {
			fn.Args = append(fn.Args, &ast.Arg{Name: a})
		}
		return fn
	}
	var methods []ast.Stmt
	if access&accessGet != 0 {
		methods = append(methods, method("__get__", &ast.Return{Value: fragment.ExprHole("ATTR")}, "self"))
	}
	if access&accessSet != 0 {
		methods = append(methods, method("__set__",
			ast.NewAssign(p, fragment.ExprHole("ATTR"), ast.NewName(p, "value")), "self", "value"))
	}
	if access&accessDel != 0 {
		methods = append(methods, method("__del__",
			ast.NewAssign(p, fragment.ExprHole("ATTR"), ast.NewNone(p)), "self"))
	}
	return fragment.New(name, nil, methods...)
}

var (
	readonlyProperty = propertyFragment("property_ro", accessGet)
	basicProperty    = propertyFragment("property", accessGet|accessSet)
	objectProperty   = propertyFragment("property_object", accessGet|accessSet|accessDel)
)

// isObjectType reports whether typ is a Python object type.
func isObjectType(c *Context, scope symtab.ScopeID, typ string) bool {
	if typ == symtab.ObjectType {
		return true
	}
	h, ok := c.Table.Lookup(scope, typ)
	return ok && c.Table.Entry(h).Kind == symtab.ClassEntry
}

// newProperty generates the property of a public or readonly attribute
// of an extension type.
func newProperty(ctx declCtx, e *symtab.Entry) *ast.PropertyDef {
	object := isObjectType(ctx.c, ctx.scope, e.Type)
	frag := readonlyProperty
	if e.Visibility == symtab.Public {
		frag = basicProperty
		if object {
			frag = objectProperty
		}
	}
	attr := ast.NewAttribute(e.Pos, ast.NewName(e.Pos, "self"), e.Name)
	exp := frag.Substitute(e.Pos, fragment.Args{Exprs: map[string]ast.Expr{"ATTR": attr}})

	prop := &ast.PropertyDef{Base: ast.At(e.Pos), Name: e.Name, Body: ast.NewStatList(e.Pos, exp.Stats...)}
	if ctx.directives.Bool("embedsignature") {
		typ := e.Type
		if !object {
			typ = "'" + typ + "'"
		}
		prop.Doc = e.Name + ": " + typ
	}
	return prop
}
