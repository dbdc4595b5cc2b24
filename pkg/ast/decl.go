package ast

// NameDeclarator is the plain name at the core of a C declarator,
// optionally with a default value ("cdef int x = 5").
type NameDeclarator struct {
	Base
	Name    string
	Default Expr
}

func (*NameDeclarator) Kind() Kind             { return KindNameDeclarator }
func (n *NameDeclarator) Copy() Node           { c := *n; return &c }
func (*NameDeclarator) declNode()              {}
func (n *NameDeclarator) DeclaredName() string { return n.Name }

// PtrDeclarator is "*Inner".
type PtrDeclarator struct {
	Base
	Inner Declarator
}

func (*PtrDeclarator) Kind() Kind             { return KindPtrDeclarator }
func (n *PtrDeclarator) Copy() Node           { c := *n; return &c }
func (*PtrDeclarator) declNode()              {}
func (n *PtrDeclarator) DeclaredName() string { return n.Inner.DeclaredName() }

// ArrayDeclarator is "Inner[Dimension]".
type ArrayDeclarator struct {
	Base
	Inner     Declarator
	Dimension Expr
}

func (*ArrayDeclarator) Kind() Kind             { return KindArrayDeclarator }
func (n *ArrayDeclarator) Copy() Node           { c := *n; return &c }
func (*ArrayDeclarator) declNode()              {}
func (n *ArrayDeclarator) DeclaredName() string { return n.Inner.DeclaredName() }

// DeclaredType renders the C type of d on top of base, e.g. "int**".
func DeclaredType(base string, d Declarator) string {
	switch x := d.(type) {
	case *PtrDeclarator:
		return DeclaredType(base+"*", x.Inner)
	case *ArrayDeclarator:
		dim := ""
		if lit, ok := x.Dimension.(*IntLit); ok {
			dim = lit.Text
		}
		return DeclaredType(base, x.Inner) + "[" + dim + "]"
	}
	return base
}

// SimpleBaseType names a type: "int", "object", "MyStruct". Implicit is
// set when the declaration omitted the type and object was assumed.
type SimpleBaseType struct {
	Base
	Name     string
	Implicit bool
}

func (*SimpleBaseType) Kind() Kind         { return KindSimpleBaseType }
func (n *SimpleBaseType) Copy() Node       { c := *n; return &c }
func (*SimpleBaseType) baseTypeNode()      {}
func (n *SimpleBaseType) TypeName() string { return n.Name }

// TemplatedType is a buffer type "BaseType[positional, key=value]".
// Options is filled in by the buffer option interpreter.
type TemplatedType struct {
	Base
	BaseType   BaseType
	Positional []Expr
	Keywords   []*Keyword
	Options    *BufferOptions
}

func (*TemplatedType) Kind() Kind         { return KindTemplatedType }
func (n *TemplatedType) Copy() Node       { c := *n; return &c }
func (*TemplatedType) baseTypeNode()      {}
func (n *TemplatedType) TypeName() string { return n.BaseType.TypeName() + "[]" }

// BufferOptions is the interpreted option block of a buffer type or of
// an extension type's __cythonbufferdefaults__.
type BufferOptions struct {
	Dtype           Expr
	Ndim            int
	Mode            string
	NegativeIndices bool
	Cast            bool
}
