package transform

import (
	"fmt"
	"slices"
	"time"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/diag"
	"github.com/GriffinCanCode/pyxc/pkg/directives"
	"github.com/GriffinCanCode/pyxc/pkg/logger"
	"github.com/GriffinCanCode/pyxc/pkg/optimizer"
	"github.com/GriffinCanCode/pyxc/pkg/symtab"
)

// Pass is one tree-to-tree step.
type Pass struct {
	Name string
	Run  func(c *Context, m *ast.Module) *ast.Module
}

func constantFolding(c *Context, m *ast.Module) *ast.Module {
	changes := optimizer.FoldConstants(m)
	logger.LogOptimization("ConstantFolding", changes)
	return m
}

var pipeline = []Pass{
	{"NormalizeTree", NormalizeTree},
	{"PostParse", PostParse},
	{"InterpretCompilerDirectives", InterpretCompilerDirectives},
	{"AdjustDefByDirectives", AdjustDefByDirectives},
	{"ConstantFolding", constantFolding},
	{"GilCheck", GilCheck},
	{"WithTransform", WithTransform},
	{"ExceptTransform", ExceptTransform},
	{"DecoratorTransform", DecoratorTransform},
	{"AnalyseDeclarations", AnalyseDeclarations},
	{"DoctestHack", DoctestHack},
	{"MarkClosures", MarkClosures},
	{"CreateClosureClasses", CreateClosureClasses},
	{"TransformBuiltinMethods", TransformBuiltinMethods},
}

// Passes returns the pipeline in execution order.
func Passes() []Pass {
	return slices.Clone(pipeline)
}

// PassNames returns the names of the pipeline passes in order.
func PassNames() []string {
	names := make([]string, len(pipeline))
	for i, p := range pipeline {
		names[i] = p.Name
	}
	return names
}

// Options configure one compilation.
type Options struct {
	File string
	// Directives override the directive defaults.
	Directives directives.Set
	// Passes restricts the run to the named passes, kept in pipeline
	// order. Empty runs them all.
	Passes []string
}

// Result is the outcome of Compile.
type Result struct {
	Module      *ast.Module
	Table       *symtab.Table
	Sink        *diag.Sink
	Diagnostics []diag.Diagnostic
}

func selectPasses(names []string) ([]Pass, error) {
	if len(names) == 0 {
		return Passes(), nil
	}
	for _, n := range names {
		if !slices.Contains(PassNames(), n) {
			return nil, fmt.Errorf("unknown pass %q", n)
		}
	}
	var out []Pass
	for _, p := range pipeline {
		if slices.Contains(names, p.Name) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Compile runs the pipeline over m. Reported errors are returned in the
// result; the error return is only set for internal failures and bad
// options.
func Compile(m *ast.Module, opts Options) (Result, error) {
	passes, err := selectPasses(opts.Passes)
	if err != nil {
		return Result{}, err
	}
	file := opts.File
	if file == "" {
		file = m.Position().File
	}
	c := NewContext(file, opts.Directives)
	res := Result{Table: c.Table, Sink: c.Sink}

	start := time.Now()
	for _, p := range passes {
		m, err = runPass(c, p, m)
		if err != nil {
			logger.LogCompilerComplete(false, time.Since(start).String())
			res.Diagnostics = c.Sink.All()
			return res, fmt.Errorf("%s: %w", p.Name, err)
		}
	}
	logger.LogCompilerComplete(!c.Sink.HasErrors(), time.Since(start).String())

	res.Module = m
	res.Diagnostics = c.Sink.All()
	return res, nil
}

// RunPass runs a single pass with the fatal-error boundary in place.
func RunPass(c *Context, p Pass, m *ast.Module) (*ast.Module, error) {
	return runPass(c, p, m)
}

func runPass(c *Context, p Pass, m *ast.Module) (out *ast.Module, err error) {
	defer diag.Recover(&err)

	logger.LogPhase(p.Name)
	c.Sink.Pass = p.Name
	errsBefore, warnsBefore := c.Sink.Count()

	out = p.Run(c, m)

	errs, warns := c.Sink.Count()
	logger.LogPassStats(p.Name, errs-errsBefore, warns-warnsBefore)
	logger.LogPhaseComplete(p.Name)
	return out, nil
}
