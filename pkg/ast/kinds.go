package ast

import "fmt"

// Kind identifies the concrete type of a node.
type Kind int

const (
	KindInvalid Kind = iota

	KindModule

	// Statements
	KindStatList
	KindExprStat
	KindPass
	KindBreak
	KindContinue
	KindReturn
	KindRaise
	KindSingleAssignment
	KindCascadedAssignment
	KindParallelAssignment
	KindIf
	KindWhile
	KindForIn
	KindWith
	KindTryExcept
	KindTryFinally
	KindCVarDef
	KindFuncDef
	KindClassDef
	KindStructDef
	KindEnumDef
	KindPropertyDef
	KindCompilerDirectives
	KindGILStat
	KindImport
	KindCImport
	KindFromImport
	KindFromCImport
	KindStmtHole

	// Clauses and other structural nodes
	KindIfClause
	KindExceptClause
	KindDecorator
	KindArg
	KindKeyword
	KindDictItem

	// Expressions
	KindName
	KindIntLit
	KindFloatLit
	KindStrLit
	KindBoolLit
	KindNoneLit
	KindNullLit
	KindBinOp
	KindUnaryOp
	KindCall
	KindAttribute
	KindIndex
	KindSequence
	KindStarred
	KindDict
	KindLambda
	KindYield
	KindTypecast
	KindSizeof
	KindTypeof
	KindExprHole

	// Declarators and base types
	KindNameDeclarator
	KindPtrDeclarator
	KindArrayDeclarator
	KindSimpleBaseType
	KindTemplatedType

	kindCount
)

var kindNames = [...]string{
	KindInvalid:            "Invalid",
	KindModule:             "Module",
	KindStatList:           "StatList",
	KindExprStat:           "ExprStat",
	KindPass:               "Pass",
	KindBreak:              "Break",
	KindContinue:           "Continue",
	KindReturn:             "Return",
	KindRaise:              "Raise",
	KindSingleAssignment:   "SingleAssignment",
	KindCascadedAssignment: "CascadedAssignment",
	KindParallelAssignment: "ParallelAssignment",
	KindIf:                 "If",
	KindWhile:              "While",
	KindForIn:              "ForIn",
	KindWith:               "With",
	KindTryExcept:          "TryExcept",
	KindTryFinally:         "TryFinally",
	KindCVarDef:            "CVarDef",
	KindFuncDef:            "FuncDef",
	KindClassDef:           "ClassDef",
	KindStructDef:          "StructDef",
	KindEnumDef:            "EnumDef",
	KindPropertyDef:        "PropertyDef",
	KindCompilerDirectives: "CompilerDirectives",
	KindGILStat:            "GILStat",
	KindImport:             "Import",
	KindCImport:            "CImport",
	KindFromImport:         "FromImport",
	KindFromCImport:        "FromCImport",
	KindStmtHole:           "StmtHole",
	KindIfClause:           "IfClause",
	KindExceptClause:       "ExceptClause",
	KindDecorator:          "Decorator",
	KindArg:                "Arg",
	KindKeyword:            "Keyword",
	KindDictItem:           "DictItem",
	KindName:               "Name",
	KindIntLit:             "IntLit",
	KindFloatLit:           "FloatLit",
	KindStrLit:             "StrLit",
	KindBoolLit:            "BoolLit",
	KindNoneLit:            "NoneLit",
	KindNullLit:            "NullLit",
	KindBinOp:              "BinOp",
	KindUnaryOp:            "UnaryOp",
	KindCall:               "Call",
	KindAttribute:          "Attribute",
	KindIndex:              "Index",
	KindSequence:           "Sequence",
	KindStarred:            "Starred",
	KindDict:               "Dict",
	KindLambda:             "Lambda",
	KindYield:              "Yield",
	KindTypecast:           "Typecast",
	KindSizeof:             "Sizeof",
	KindTypeof:             "Typeof",
	KindExprHole:           "ExprHole",
	KindNameDeclarator:     "NameDeclarator",
	KindPtrDeclarator:      "PtrDeclarator",
	KindArrayDeclarator:    "ArrayDeclarator",
	KindSimpleBaseType:     "SimpleBaseType",
	KindTemplatedType:      "TemplatedType",
}

func (k Kind) String() string {
	if k >= 0 && k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// AllKinds returns every valid kind.
func AllKinds() []Kind {
	kinds := make([]Kind, 0, kindCount-1)
	for k := KindInvalid + 1; k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// FamilyOf returns the fallback family of a kind.
func FamilyOf(k Kind) Family {
	switch {
	case k >= KindStatList && k <= KindStmtHole:
		return FamilyStmt
	case k >= KindName && k <= KindExprHole:
		return FamilyExpr
	}
	return FamilyNode
}

func one(name string) Attr  { return Attr{Name: name} }
func req(name string) Attr  { return Attr{Name: name, Required: true} }
func list(name string) Attr { return Attr{Name: name, List: true} }

var shapes = map[Kind][]Attr{
	KindModule:             {req("body")},
	KindStatList:           {list("stats")},
	KindExprStat:           {req("expr")},
	KindReturn:             {one("value")},
	KindRaise:              {one("exc")},
	KindSingleAssignment:   {req("lhs"), req("rhs")},
	KindCascadedAssignment: {list("lhs_list"), req("rhs")},
	KindParallelAssignment: {list("stats")},
	KindIf:                 {list("clauses"), one("else")},
	KindWhile:              {req("cond"), req("body"), one("else")},
	KindForIn:              {req("target"), req("iter"), req("body"), one("else")},
	KindWith:               {req("manager"), one("target"), req("body")},
	KindTryExcept:          {req("body"), list("clauses"), one("else")},
	KindTryFinally:         {req("body"), req("finally")},
	KindCVarDef:            {list("decorators"), req("base_type"), list("declarators")},
	KindFuncDef:            {list("decorators"), list("args"), one("star_arg"), one("starstar_arg"), one("return_type"), req("body")},
	KindClassDef:           {list("decorators"), list("bases"), req("body")},
	KindStructDef:          {list("attributes")},
	KindPropertyDef:        {req("body")},
	KindCompilerDirectives: {req("body")},
	KindGILStat:            {req("body")},
	KindIfClause:           {req("cond"), req("body")},
	KindExceptClause:       {one("pattern"), one("target"), one("excinfo_target"), req("body")},
	KindDecorator:          {req("decorator")},
	KindArg:                {one("base_type"), one("annotation"), one("default")},
	KindKeyword:            {req("value")},
	KindDictItem:           {req("key"), req("value")},
	KindBinOp:              {req("left"), req("right")},
	KindUnaryOp:            {req("operand")},
	KindCall:               {req("func"), list("args"), list("keywords"), one("star_arg"), one("starstar_arg")},
	KindAttribute:          {req("obj")},
	KindIndex:              {req("obj"), req("index")},
	KindSequence:           {list("args")},
	KindStarred:            {req("target")},
	KindDict:               {list("items")},
	KindLambda:             {list("args"), req("body")},
	KindYield:              {one("value")},
	KindTypecast:           {req("type"), req("operand")},
	KindSizeof:             {req("operand")},
	KindTypeof:             {req("operand")},
	KindNameDeclarator:     {one("default")},
	KindPtrDeclarator:      {req("inner")},
	KindArrayDeclarator:    {req("inner"), one("dimension")},
	KindTemplatedType:      {req("base_type"), list("positional"), list("keywords")},
}

// ShapeOf returns the declared child attributes of a kind, in traversal
// order. Leaf kinds have no attributes.
func ShapeOf(k Kind) []Attr {
	return shapes[k]
}

// Zero returns a new empty node of kind k, or nil for an invalid kind.
func Zero(k Kind) Node {
	switch k {
	case KindModule:
		return &Module{}
	case KindStatList:
		return &StatList{}
	case KindExprStat:
		return &ExprStat{}
	case KindPass:
		return &Pass{}
	case KindBreak:
		return &Break{}
	case KindContinue:
		return &Continue{}
	case KindReturn:
		return &Return{}
	case KindRaise:
		return &Raise{}
	case KindSingleAssignment:
		return &SingleAssignment{}
	case KindCascadedAssignment:
		return &CascadedAssignment{}
	case KindParallelAssignment:
		return &ParallelAssignment{}
	case KindIf:
		return &If{}
	case KindWhile:
		return &While{}
	case KindForIn:
		return &ForIn{}
	case KindWith:
		return &With{}
	case KindTryExcept:
		return &TryExcept{}
	case KindTryFinally:
		return &TryFinally{}
	case KindCVarDef:
		return &CVarDef{}
	case KindFuncDef:
		return &FuncDef{}
	case KindClassDef:
		return &ClassDef{}
	case KindStructDef:
		return &StructDef{}
	case KindEnumDef:
		return &EnumDef{}
	case KindPropertyDef:
		return &PropertyDef{}
	case KindCompilerDirectives:
		return &CompilerDirectives{}
	case KindGILStat:
		return &GILStat{}
	case KindImport:
		return &Import{}
	case KindCImport:
		return &CImport{}
	case KindFromImport:
		return &FromImport{}
	case KindFromCImport:
		return &FromCImport{}
	case KindStmtHole:
		return &StmtHole{}
	case KindIfClause:
		return &IfClause{}
	case KindExceptClause:
		return &ExceptClause{}
	case KindDecorator:
		return &Decorator{}
	case KindArg:
		return &Arg{}
	case KindKeyword:
		return &Keyword{}
	case KindDictItem:
		return &DictItem{}
	case KindName:
		return &Name{}
	case KindIntLit:
		return &IntLit{}
	case KindFloatLit:
		return &FloatLit{}
	case KindStrLit:
		return &StrLit{}
	case KindBoolLit:
		return &BoolLit{}
	case KindNoneLit:
		return &NoneLit{}
	case KindNullLit:
		return &NullLit{}
	case KindBinOp:
		return &BinOp{}
	case KindUnaryOp:
		return &UnaryOp{}
	case KindCall:
		return &Call{}
	case KindAttribute:
		return &Attribute{}
	case KindIndex:
		return &Index{}
	case KindSequence:
		return &Sequence{}
	case KindStarred:
		return &Starred{}
	case KindDict:
		return &Dict{}
	case KindLambda:
		return &Lambda{}
	case KindYield:
		return &Yield{}
	case KindTypecast:
		return &Typecast{}
	case KindSizeof:
		return &Sizeof{}
	case KindTypeof:
		return &Typeof{}
	case KindExprHole:
		return &ExprHole{}
	case KindNameDeclarator:
		return &NameDeclarator{}
	case KindPtrDeclarator:
		return &PtrDeclarator{}
	case KindArrayDeclarator:
		return &ArrayDeclarator{}
	case KindSimpleBaseType:
		return &SimpleBaseType{}
	case KindTemplatedType:
		return &TemplatedType{}
	}
	return nil
}
