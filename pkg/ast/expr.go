package ast

import "github.com/GriffinCanCode/pyxc/pkg/symtab"

// Name is an identifier use or assignment target.
type Name struct {
	Base
	Name  string
	Entry symtab.Handle

	// IsCythonModule is set when Name refers to the cython module.
	IsCythonModule bool
	// CythonAttribute is the directive or special name that Name was
	// imported as (from cython import boundscheck).
	CythonAttribute string
}

func (*Name) Kind() Kind   { return KindName }
func (n *Name) Copy() Node { c := *n; return &c }
func (*Name) exprNode()    {}

// IntLit keeps the literal text; Value is its parsed value.
type IntLit struct {
	Base
	Text  string
	Value int64
}

func (*IntLit) Kind() Kind   { return KindIntLit }
func (n *IntLit) Copy() Node { c := *n; return &c }
func (*IntLit) exprNode()    {}

type FloatLit struct {
	Base
	Text string
}

func (*FloatLit) Kind() Kind   { return KindFloatLit }
func (n *FloatLit) Copy() Node { c := *n; return &c }
func (*FloatLit) exprNode()    {}

type StrLit struct {
	Base
	Value   string
	Unicode bool
}

func (*StrLit) Kind() Kind   { return KindStrLit }
func (n *StrLit) Copy() Node { c := *n; return &c }
func (*StrLit) exprNode()    {}

type BoolLit struct {
	Base
	Value bool
}

func (*BoolLit) Kind() Kind   { return KindBoolLit }
func (n *BoolLit) Copy() Node { c := *n; return &c }
func (*BoolLit) exprNode()    {}

type NoneLit struct{ Base }

func (*NoneLit) Kind() Kind   { return KindNoneLit }
func (n *NoneLit) Copy() Node { c := *n; return &c }
func (*NoneLit) exprNode()    {}

// NullLit is the C NULL pointer.
type NullLit struct{ Base }

func (*NullLit) Kind() Kind   { return KindNullLit }
func (n *NullLit) Copy() Node { c := *n; return &c }
func (*NullLit) exprNode()    {}

// BinOp covers arithmetic, comparison and boolean operators.
type BinOp struct {
	Base
	Op    string
	Left  Expr
	Right Expr
	// CDivision requests C semantics for / and %.
	CDivision bool
}

func (*BinOp) Kind() Kind   { return KindBinOp }
func (n *BinOp) Copy() Node { c := *n; return &c }
func (*BinOp) exprNode()    {}

// UnaryOp is "not x", "-x", "&x", "*x", "++x" or, with Postfix, "x++".
type UnaryOp struct {
	Base
	Op      string
	Operand Expr
	Postfix bool
}

func (*UnaryOp) Kind() Kind   { return KindUnaryOp }
func (n *UnaryOp) Copy() Node { c := *n; return &c }
func (*UnaryOp) exprNode()    {}

type Call struct {
	Base
	Func        Expr
	Args        []Expr
	Keywords    []*Keyword
	StarArg     Expr
	StarStarArg Expr
}

func (*Call) Kind() Kind   { return KindCall }
func (n *Call) Copy() Node { c := *n; return &c }
func (*Call) exprNode()    {}

type Attribute struct {
	Base
	Obj  Expr
	Attr string
}

func (*Attribute) Kind() Kind   { return KindAttribute }
func (n *Attribute) Copy() Node { c := *n; return &c }
func (*Attribute) exprNode()    {}

type Index struct {
	Base
	Obj   Expr
	Index Expr
}

func (*Index) Kind() Kind   { return KindIndex }
func (n *Index) Copy() Node { c := *n; return &c }
func (*Index) exprNode()    {}

// Sequence is a tuple literal or, with List set, a list literal.
type Sequence struct {
	Base
	List bool
	Args []Expr
}

func (*Sequence) Kind() Kind   { return KindSequence }
func (n *Sequence) Copy() Node { c := *n; return &c }
func (*Sequence) exprNode()    {}

// HasStarred reports whether an element is a rest-capture target.
func (n *Sequence) HasStarred() bool {
	for _, a := range n.Args {
		if _, ok := a.(*Starred); ok {
			return true
		}
	}
	return false
}

// Starred is "*Target" inside a sequence assignment target.
type Starred struct {
	Base
	Target Expr
}

func (*Starred) Kind() Kind   { return KindStarred }
func (n *Starred) Copy() Node { c := *n; return &c }
func (*Starred) exprNode()    {}

type Dict struct {
	Base
	Items []*DictItem
}

func (*Dict) Kind() Kind   { return KindDict }
func (n *Dict) Copy() Node { c := *n; return &c }
func (*Dict) exprNode()    {}

// Lambda is "lambda args: Body".
type Lambda struct {
	Base
	Args []*Arg
	Body Expr

	LambdaName   string
	NeedsClosure bool
	LocalScope   symtab.ScopeID
}

func (*Lambda) Kind() Kind   { return KindLambda }
func (n *Lambda) Copy() Node { c := *n; return &c }
func (*Lambda) exprNode()    {}

// Yield is a suspension point.
type Yield struct {
	Base
	Value Expr
}

func (*Yield) Kind() Kind   { return KindYield }
func (n *Yield) Copy() Node { c := *n; return &c }
func (*Yield) exprNode()    {}

// Typecast is "<Type>Operand".
type Typecast struct {
	Base
	Type    Expr
	Operand Expr
}

func (*Typecast) Kind() Kind   { return KindTypecast }
func (n *Typecast) Copy() Node { c := *n; return &c }
func (*Typecast) exprNode()    {}

type Sizeof struct {
	Base
	Operand Expr
}

func (*Sizeof) Kind() Kind   { return KindSizeof }
func (n *Sizeof) Copy() Node { c := *n; return &c }
func (*Sizeof) exprNode()    {}

type Typeof struct {
	Base
	Operand Expr
}

func (*Typeof) Kind() Kind   { return KindTypeof }
func (n *Typeof) Copy() Node { c := *n; return &c }
func (*Typeof) exprNode()    {}

// ExprHole is a named expression placeholder inside a fragment.
type ExprHole struct {
	Base
	Name string
}

func (*ExprHole) Kind() Kind   { return KindExprHole }
func (n *ExprHole) Copy() Node { c := *n; return &c }
func (*ExprHole) exprNode()    {}

// IsLiteral reports whether e is a constant literal.
func IsLiteral(e Expr) bool {
	switch e.(type) {
	case *IntLit, *FloatLit, *StrLit, *BoolLit, *NoneLit, *NullLit:
		return true
	}
	return false
}
