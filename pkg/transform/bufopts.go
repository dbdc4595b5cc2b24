package transform

import (
	"fmt"
	"slices"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
)

// Buffer option names in positional order. Only the first three may be
// given positionally.
var bufferOptionNames = []string{"dtype", "ndim", "mode", "negative_indices", "cast"}

const positionalBufferOptions = 3

var bufferModes = []string{"c", "fortran", "full", "strided"}

// bufferError is a buffer option failure at a specific node.
type bufferError struct {
	pos ast.Pos
	msg string
}

func (e *bufferError) Error() string { return e.msg }

func bufErrorf(pos ast.Pos, format string, args ...any) *bufferError {
	return &bufferError{pos: pos, msg: fmt.Sprintf(format, args...)}
}

type bufferOption struct {
	name  string
	value ast.Expr
}

// interpretBufferOptions binds positional and keyword arguments to
// buffer option names and checks their values. needDtype makes dtype
// mandatory.
func interpretBufferOptions(pos ast.Pos, positional []ast.Expr, keywords []bufferOption, needDtype bool) (*ast.BufferOptions, *bufferError) {
	if len(positional) > positionalBufferOptions {
		return nil, bufErrorf(positional[positionalBufferOptions].Position(), "Too many buffer options")
	}

	bound := map[string]ast.Expr{}
	for i, e := range positional {
		bound[bufferOptionNames[i]] = e
	}
	for _, kw := range keywords {
		if !slices.Contains(bufferOptionNames, kw.name) {
			return nil, bufErrorf(kw.value.Position(), "%q is not a buffer option", kw.name)
		}
		if _, dup := bound[kw.name]; dup {
			return nil, bufErrorf(kw.value.Position(), "%q buffer option already supplied", kw.name)
		}
		bound[kw.name] = kw.value
	}

	opts := &ast.BufferOptions{Ndim: 1, Mode: "full", NegativeIndices: true}

	dtype, ok := bound["dtype"]
	if !ok && needDtype {
		return nil, bufErrorf(pos, "%q missing", "dtype")
	}
	opts.Dtype = dtype

	if e, ok := bound["ndim"]; ok {
		n, isInt := intValue(e)
		if !isInt || n < 0 {
			return nil, bufErrorf(e.Position(), "ndim must be a non-negative integer")
		}
		opts.Ndim = int(n)
	}

	if e, ok := bound["mode"]; ok {
		s, isStr := e.(*ast.StrLit)
		if !isStr || !slices.Contains(bufferModes, s.Value) {
			return nil, bufErrorf(e.Position(), `Only allowed buffer modes are: "c", "fortran", "full", "strided" (as a compile-time string)`)
		}
		opts.Mode = s.Value
	}

	for _, name := range []string{"negative_indices", "cast"} {
		e, ok := bound[name]
		if !ok {
			continue
		}
		b, isBool := e.(*ast.BoolLit)
		if !isBool {
			return nil, bufErrorf(e.Position(), "%q must be a boolean", name)
		}
		if name == "cast" {
			opts.Cast = b.Value
		} else {
			opts.NegativeIndices = b.Value
		}
	}
	return opts, nil
}

// intValue evaluates an integer literal, possibly negated.
func intValue(e ast.Expr) (int64, bool) {
	switch x := e.(type) {
	case *ast.IntLit:
		return x.Value, true
	case *ast.UnaryOp:
		if x.Op == "-" {
			if v, ok := intValue(x.Operand); ok {
				return -v, true
			}
		}
	}
	return 0, false
}

// templatedOptions interprets the options of a buffer type.
func templatedOptions(t *ast.TemplatedType) (*ast.BufferOptions, *bufferError) {
	kws := make([]bufferOption, 0, len(t.Keywords))
	for _, kw := range t.Keywords {
		kws = append(kws, bufferOption{name: kw.Name, value: kw.Value})
	}
	return interpretBufferOptions(t.Position(), t.Positional, kws, true)
}

// bufferDefaults interprets the dict literal of __cythonbufferdefaults__.
func bufferDefaults(d *ast.Dict) (*ast.BufferOptions, *bufferError) {
	kws := make([]bufferOption, 0, len(d.Items))
	for _, item := range d.Items {
		key, ok := item.Key.(*ast.StrLit)
		if !ok {
			return nil, bufErrorf(item.Position(), "%s", errBufDefaults)
		}
		kws = append(kws, bufferOption{name: key.Value, value: item.Value})
	}
	return interpretBufferOptions(d.Position(), nil, kws, false)
}
