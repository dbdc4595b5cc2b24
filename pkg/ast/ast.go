// Package ast defines the tree every pass consumes and produces.
//
// Design: a closed set of node kinds. Statements, expressions,
// declarators and base types are sealed interfaces with marker methods;
// every node reports its Kind and position and can copy itself shallowly.
package ast

import (
	"github.com/GriffinCanCode/pyxc/pkg/source"
)

// Pos is a source position.
type Pos = source.Pos

// Base carries the source position of a node.
type Base struct {
	Loc Pos
}

// At returns a Base for pos.
func At(pos Pos) Base {
	return Base{Loc: pos}
}

// Position returns the source position.
func (b *Base) Position() Pos {
	return b.Loc
}

// SetPosition moves the node to pos.
func (b *Base) SetPosition(pos Pos) {
	b.Loc = pos
}

// Node is any tree node.
type Node interface {
	Position() Pos
	SetPosition(Pos)
	Kind() Kind
	// Copy returns a shallow copy of the node.
	Copy() Node
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Declarator is a C declarator: a name, possibly wrapped in pointer or
// array layers.
type Declarator interface {
	Node
	declNode()
	// DeclaredName returns the name at the core of the declarator.
	DeclaredName() string
}

// BaseType is the type part of a C declaration.
type BaseType interface {
	Node
	baseTypeNode()
	// TypeName returns a printable name of the type.
	TypeName() string
}

// Family groups kinds for visitor fallback.
type Family int

const (
	FamilyNode Family = iota
	FamilyStmt
	FamilyExpr
)

func (f Family) String() string {
	switch f {
	case FamilyStmt:
		return "Stmt"
	case FamilyExpr:
		return "Expr"
	}
	return "Node"
}

// Attr is one declared child attribute of a node kind.
type Attr struct {
	Name     string
	List     bool
	Required bool
}

// Core returns the innermost NameDeclarator of d, or nil when the
// declarator chain ends in something that is not a plain name.
func Core(d Declarator) *NameDeclarator {
	for {
		switch x := d.(type) {
		case *NameDeclarator:
			return x
		case *PtrDeclarator:
			d = x.Inner
		default:
			return nil
		}
	}
}
