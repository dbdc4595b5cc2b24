// Package transform - Tree passes of the middle end and the pipeline that runs them
// Design: every pass maps a module to a module, sharing one Context per
// compilation (sink, symbol table, temp namer); per-subtree state travels
// down the recursion in an immutable context value owned by the pass
package transform

import (
	"github.com/GriffinCanCode/pyxc/pkg/diag"
	"github.com/GriffinCanCode/pyxc/pkg/directives"
	"github.com/GriffinCanCode/pyxc/pkg/fragment"
	"github.com/GriffinCanCode/pyxc/pkg/symtab"
)

// Context is the state of one compilation.
type Context struct {
	File  string
	Sink  *diag.Sink
	Table *symtab.Table
	Namer *fragment.Namer
	// Overrides are the directive values given to the compiler; they
	// rank above the defaults and below the file's pragma comments.
	Overrides directives.Set
}

// NewContext returns a fresh context.
func NewContext(file string, overrides directives.Set) *Context {
	return &Context{
		File:      file,
		Sink:      diag.NewSink(),
		Table:     symtab.NewTable(),
		Namer:     &fragment.Namer{},
		Overrides: overrides.Copy(),
	}
}
