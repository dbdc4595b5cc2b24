package ast

// Constructors for synthesized nodes. Every node built here is placed at
// pos so diagnostics on generated code point at the source construct.

func NewName(pos Pos, name string) *Name {
	return &Name{Base: At(pos), Name: name}
}

func NewStatList(pos Pos, stats ...Stmt) *StatList {
	if stats == nil {
		stats = []Stmt{}
	}
	return &StatList{Base: At(pos), Stats: stats}
}

func NewAssign(pos Pos, lhs, rhs Expr) *SingleAssignment {
	return &SingleAssignment{Base: At(pos), Lhs: lhs, Rhs: rhs}
}

func NewExprStat(pos Pos, e Expr) *ExprStat {
	return &ExprStat{Base: At(pos), Expr: e}
}

func NewCall(pos Pos, fn Expr, args ...Expr) *Call {
	return &Call{Base: At(pos), Func: fn, Args: args}
}

func NewAttribute(pos Pos, obj Expr, attr string) *Attribute {
	return &Attribute{Base: At(pos), Obj: obj, Attr: attr}
}

func NewNone(pos Pos) *NoneLit {
	return &NoneLit{Base: At(pos)}
}

func NewBool(pos Pos, v bool) *BoolLit {
	return &BoolLit{Base: At(pos), Value: v}
}

func NewTuple(pos Pos, elems ...Expr) *Sequence {
	return &Sequence{Base: At(pos), Args: elems}
}

// Block returns s as a statement list, wrapping it when needed.
func Block(s Stmt) *StatList {
	if l, ok := s.(*StatList); ok {
		return l
	}
	if s == nil {
		return &StatList{Stats: []Stmt{}}
	}
	return NewStatList(s.Position(), s)
}
