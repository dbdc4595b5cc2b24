package ast

import (
	"github.com/GriffinCanCode/pyxc/pkg/directives"
	"github.com/GriffinCanCode/pyxc/pkg/symtab"
)

// Module is the root of a compilation unit.
type Module struct {
	Base
	Name string
	Body Stmt
	Doc  string

	// DirectiveComments are the "# cython:" pragmas of the file.
	DirectiveComments directives.Set
	// Directives is the resolved module-level directive set.
	Directives directives.Set
	// CythonModuleNames are the names the cython module is imported as.
	CythonModuleNames []string
	Scope             symtab.ScopeID
}

func (*Module) Kind() Kind   { return KindModule }
func (n *Module) Copy() Node { c := *n; return &c }

// StatList is an ordered block of statements.
type StatList struct {
	Base
	Stats []Stmt
}

func (*StatList) Kind() Kind   { return KindStatList }
func (n *StatList) Copy() Node { c := *n; return &c }
func (*StatList) stmtNode()    {}

// ExprStat evaluates an expression for its side effects.
type ExprStat struct {
	Base
	Expr Expr
}

func (*ExprStat) Kind() Kind   { return KindExprStat }
func (n *ExprStat) Copy() Node { c := *n; return &c }
func (*ExprStat) stmtNode()    {}

type Pass struct{ Base }

func (*Pass) Kind() Kind   { return KindPass }
func (n *Pass) Copy() Node { c := *n; return &c }
func (*Pass) stmtNode()    {}

type Break struct{ Base }

func (*Break) Kind() Kind   { return KindBreak }
func (n *Break) Copy() Node { c := *n; return &c }
func (*Break) stmtNode()    {}

type Continue struct{ Base }

func (*Continue) Kind() Kind   { return KindContinue }
func (n *Continue) Copy() Node { c := *n; return &c }
func (*Continue) stmtNode()    {}

type Return struct {
	Base
	Value Expr
}

func (*Return) Kind() Kind   { return KindReturn }
func (n *Return) Copy() Node { c := *n; return &c }
func (*Return) stmtNode()    {}

// Raise raises Exc; a nil Exc re-raises the exception being handled.
type Raise struct {
	Base
	Exc Expr
}

func (*Raise) Kind() Kind   { return KindRaise }
func (n *Raise) Copy() Node { c := *n; return &c }
func (*Raise) stmtNode()    {}

// SingleAssignment is "lhs = rhs".
type SingleAssignment struct {
	Base
	Lhs Expr
	Rhs Expr
	// First marks the first write of a freshly declared variable.
	First bool
}

func (*SingleAssignment) Kind() Kind   { return KindSingleAssignment }
func (n *SingleAssignment) Copy() Node { c := *n; return &c }
func (*SingleAssignment) stmtNode()    {}

// CascadedAssignment is "a = b = rhs".
type CascadedAssignment struct {
	Base
	LhsList []Expr
	Rhs     Expr
}

func (*CascadedAssignment) Kind() Kind   { return KindCascadedAssignment }
func (n *CascadedAssignment) Copy() Node { c := *n; return &c }
func (*CascadedAssignment) stmtNode()    {}

// ParallelAssignment holds the element assignments of a flattened
// tuple assignment. All right-hand sides are evaluated first.
type ParallelAssignment struct {
	Base
	Stats []Stmt
}

func (*ParallelAssignment) Kind() Kind   { return KindParallelAssignment }
func (n *ParallelAssignment) Copy() Node { c := *n; return &c }
func (*ParallelAssignment) stmtNode()    {}

type If struct {
	Base
	Clauses []*IfClause
	Else    Stmt
}

func (*If) Kind() Kind   { return KindIf }
func (n *If) Copy() Node { c := *n; return &c }
func (*If) stmtNode()    {}

type IfClause struct {
	Base
	Cond Expr
	Body Stmt
}

func (*IfClause) Kind() Kind   { return KindIfClause }
func (n *IfClause) Copy() Node { c := *n; return &c }

type While struct {
	Base
	Cond Expr
	Body Stmt
	Else Stmt
}

func (*While) Kind() Kind   { return KindWhile }
func (n *While) Copy() Node { c := *n; return &c }
func (*While) stmtNode()    {}

type ForIn struct {
	Base
	Target Expr
	Iter   Expr
	Body   Stmt
	Else   Stmt
}

func (*ForIn) Kind() Kind   { return KindForIn }
func (n *ForIn) Copy() Node { c := *n; return &c }
func (*ForIn) stmtNode()    {}

// With is "with Manager [as Target]: Body".
type With struct {
	Base
	Manager Expr
	Target  Expr
	Body    Stmt
}

func (*With) Kind() Kind   { return KindWith }
func (n *With) Copy() Node { c := *n; return &c }
func (*With) stmtNode()    {}

type TryExcept struct {
	Base
	Body    Stmt
	Clauses []*ExceptClause
	Else    Stmt
}

func (*TryExcept) Kind() Kind   { return KindTryExcept }
func (n *TryExcept) Copy() Node { c := *n; return &c }
func (*TryExcept) stmtNode()    {}

// ExceptClause is "except [Pattern [as Target]]: Body". A nil Pattern
// catches everything. ExcInfoTarget, when set, receives the
// (type, value, traceback) tuple of the caught exception.
type ExceptClause struct {
	Base
	Pattern       Expr
	Target        Expr
	ExcInfoTarget Expr
	Body          Stmt
}

func (*ExceptClause) Kind() Kind   { return KindExceptClause }
func (n *ExceptClause) Copy() Node { c := *n; return &c }

type TryFinally struct {
	Base
	Body    Stmt
	Finally Stmt
}

func (*TryFinally) Kind() Kind   { return KindTryFinally }
func (n *TryFinally) Copy() Node { c := *n; return &c }
func (*TryFinally) stmtNode()    {}

// CVarDef is "cdef [visibility] type declarator[, declarator...]".
type CVarDef struct {
	Base
	Decorators  []*Decorator
	BaseType    BaseType
	Declarators []Declarator
	Visibility  string
	// DirectiveLocals is filled from a cython.locals() decorator.
	DirectiveLocals map[string]Expr
}

func (*CVarDef) Kind() Kind   { return KindCVarDef }
func (n *CVarDef) Copy() Node { c := *n; return &c }
func (*CVarDef) stmtNode()    {}

// FuncDef is a def or cdef function.
type FuncDef struct {
	Base
	Name        string
	Decorators  []*Decorator
	Args        []*Arg
	StarArg     *Arg
	StarStarArg *Arg
	ReturnType  BaseType
	Body        Stmt
	Doc         string

	Cdef        bool
	Overridable bool // cpdef / ccall
	Nogil       bool
	Visibility  string

	DirectiveLocals map[string]Expr
	NeedsClosure    bool
	LocalScope      symtab.ScopeID
	// Entry is the binding of the function name in its enclosing scope.
	Entry symtab.Handle
}

func (*FuncDef) Kind() Kind   { return KindFuncDef }
func (n *FuncDef) Copy() Node { c := *n; return &c }
func (*FuncDef) stmtNode()    {}

// ClassDef is a Python class or, with Cdef set, an extension type.
type ClassDef struct {
	Base
	Name       string
	Decorators []*Decorator
	Bases      []Expr
	Body       Stmt
	Doc        string
	Cdef       bool
	Visibility string

	Scope symtab.ScopeID
	Entry symtab.Handle
	// BufferDefaults is interpreted from __cythonbufferdefaults__.
	BufferDefaults *BufferOptions
}

func (*ClassDef) Kind() Kind   { return KindClassDef }
func (n *ClassDef) Copy() Node { c := *n; return &c }
func (*ClassDef) stmtNode()    {}

// StructDef is "cdef struct Name:" or "cdef union Name:".
type StructDef struct {
	Base
	Name       string
	Union      bool
	Attributes []*CVarDef
	Visibility string
}

func (*StructDef) Kind() Kind   { return KindStructDef }
func (n *StructDef) Copy() Node { c := *n; return &c }
func (*StructDef) stmtNode()    {}

// EnumDef is "cdef enum Name:" with one item per line.
type EnumDef struct {
	Base
	Name       string
	Items      []string
	Visibility string
}

func (*EnumDef) Kind() Kind   { return KindEnumDef }
func (n *EnumDef) Copy() Node { c := *n; return &c }
func (*EnumDef) stmtNode()    {}

// PropertyDef is a generated attribute accessor of an extension type.
type PropertyDef struct {
	Base
	Name string
	Doc  string
	Body Stmt
}

func (*PropertyDef) Kind() Kind   { return KindPropertyDef }
func (n *PropertyDef) Copy() Node { c := *n; return &c }
func (*PropertyDef) stmtNode()    {}

// CompilerDirectives scopes a directive set to its body.
type CompilerDirectives struct {
	Base
	Body       Stmt
	Directives directives.Set
}

func (*CompilerDirectives) Kind() Kind   { return KindCompilerDirectives }
func (n *CompilerDirectives) Copy() Node { c := *n; return &c }
func (*CompilerDirectives) stmtNode()    {}

// GILStat is "with gil:" or "with nogil:". State is "gil" or "nogil".
type GILStat struct {
	Base
	State string
	Body  Stmt
}

func (*GILStat) Kind() Kind   { return KindGILStat }
func (n *GILStat) Copy() Node { c := *n; return &c }
func (*GILStat) stmtNode()    {}

// ImportedName is one name of a from-import.
type ImportedName struct {
	Pos    Pos
	Name   string
	AsName string
	// Kind is a cimport qualifier such as "struct" or "class".
	Kind string
}

// Import is "import Module [as AsName]".
type Import struct {
	Base
	Module string
	AsName string
}

func (*Import) Kind() Kind   { return KindImport }
func (n *Import) Copy() Node { c := *n; return &c }
func (*Import) stmtNode()    {}

// CImport is "cimport Module [as AsName]".
type CImport struct {
	Base
	Module string
	AsName string
}

func (*CImport) Kind() Kind   { return KindCImport }
func (n *CImport) Copy() Node { c := *n; return &c }
func (*CImport) stmtNode()    {}

type FromImport struct {
	Base
	Module string
	Names  []ImportedName
}

func (*FromImport) Kind() Kind   { return KindFromImport }
func (n *FromImport) Copy() Node { c := *n; return &c }
func (*FromImport) stmtNode()    {}

type FromCImport struct {
	Base
	Module string
	Names  []ImportedName
}

func (*FromCImport) Kind() Kind   { return KindFromCImport }
func (n *FromCImport) Copy() Node { c := *n; return &c }
func (*FromCImport) stmtNode()    {}

// StmtHole is a named statement placeholder inside a fragment.
type StmtHole struct {
	Base
	Name string
}

func (*StmtHole) Kind() Kind   { return KindStmtHole }
func (n *StmtHole) Copy() Node { c := *n; return &c }
func (*StmtHole) stmtNode()    {}

// Decorator is "@Expr" on a definition.
type Decorator struct {
	Base
	Expr Expr
}

func (*Decorator) Kind() Kind   { return KindDecorator }
func (n *Decorator) Copy() Node { c := *n; return &c }

// Arg is a function parameter.
type Arg struct {
	Base
	Name       string
	BaseType   BaseType
	Annotation Expr
	Default    Expr
}

func (*Arg) Kind() Kind   { return KindArg }
func (n *Arg) Copy() Node { c := *n; return &c }

// Keyword is "Name=Value" in a call or type argument list.
type Keyword struct {
	Base
	Name  string
	Value Expr
}

func (*Keyword) Kind() Kind   { return KindKeyword }
func (n *Keyword) Copy() Node { c := *n; return &c }

type DictItem struct {
	Base
	Key   Expr
	Value Expr
}

func (*DictItem) Kind() Kind   { return KindDictItem }
func (n *DictItem) Copy() Node { c := *n; return &c }
