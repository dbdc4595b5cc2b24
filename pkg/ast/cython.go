package ast

// CythonAttribute returns the dotted name e refers to inside the cython
// module ("boundscheck", "operator.address"), or "" when e does not
// refer into it.
func CythonAttribute(e Expr) string {
	switch x := e.(type) {
	case *Name:
		return x.CythonAttribute
	case *Attribute:
		if obj, ok := x.Obj.(*Name); ok && obj.IsCythonModule {
			return x.Attr
		}
		if inner := CythonAttribute(x.Obj); inner != "" {
			return inner + "." + x.Attr
		}
	}
	return ""
}

// IsCythonModule reports whether e names the cython module itself.
func IsCythonModule(e Expr) bool {
	n, ok := e.(*Name)
	return ok && n.IsCythonModule
}
