// Package main implements the pyxc command: it parses a .pyx module, runs
// the lowering passes over it and prints the lowered tree.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GriffinCanCode/pyxc/pkg/diag"
	"github.com/GriffinCanCode/pyxc/pkg/directives"
	"github.com/GriffinCanCode/pyxc/pkg/frontend"
	"github.com/GriffinCanCode/pyxc/pkg/logger"
	"github.com/GriffinCanCode/pyxc/pkg/printer"
	"github.com/GriffinCanCode/pyxc/pkg/transform"
)

const (
	appName = "pyxc"
	version = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "lower":
		os.Exit(cmdLower(os.Args[2:], os.Stdout, os.Stderr))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "passes":
		listPasses(os.Stdout)
	case "version":
		fmt.Printf("%s version %s\n", appName, version)
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage(os.Stderr)
		os.Exit(2)
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `pyxc - lower annotated Python modules

Usage:
    %[1]s lower [options] <module.pyx>   Run the passes and print the lowered tree
    %[1]s repl [options]                 Lower snippets interactively
    %[1]s passes                         List the passes in pipeline order
    %[1]s version                        Show the version
    %[1]s help                           Show this help message

Options:
    -X name=value[,name=value]   Override a compiler directive (repeatable)
    -passes A,B                  Run only the named passes
    -print                       Print the lowered tree (default true)
    -log-level level             debug, info, warn or error (default warn)
    -log-format format           text or json (default text)
    -log-file path               Write logs to path instead of stderr
`, appName)
}

// options are the flags shared by lower and repl.
type options struct {
	directives directiveFlag
	passes     string
	print      bool
	logLevel   string
	logFormat  string
	logFile    string
}

// directiveFlag accumulates -X overrides.
type directiveFlag struct {
	set directives.Set
}

func (d *directiveFlag) String() string {
	if d == nil || len(d.set) == 0 {
		return ""
	}
	parts := make([]string, 0, len(d.set))
	for _, name := range d.set.Keys() {
		parts = append(parts, fmt.Sprintf("%s=%v", name, d.set[name]))
	}
	return strings.Join(parts, ",")
}

func (d *directiveFlag) Set(value string) error {
	parsed, err := directives.ParseList(value)
	if err != nil {
		return err
	}
	if d.set == nil {
		d.set = directives.Set{}
	}
	d.set.Update(parsed)
	return nil
}

func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *options) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts := &options{}
	fs.Var(&opts.directives, "X", "override a compiler directive: name=value[,name=value]")
	fs.StringVar(&opts.passes, "passes", "", "comma separated passes to run (default all)")
	fs.BoolVar(&opts.print, "print", true, "print the lowered tree")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	fs.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	fs.StringVar(&opts.logFile, "log-file", "", "write logs to this file")
	return fs, opts
}

func (o *options) passList() []string {
	var out []string
	for _, p := range strings.Split(o.passes, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (o *options) initLogging(stderr io.Writer) error {
	levels := map[string]logger.LogLevel{
		"debug": logger.LevelDebug,
		"info":  logger.LevelInfo,
		"warn":  logger.LevelWarn,
		"error": logger.LevelError,
	}
	level, ok := levels[o.logLevel]
	if !ok {
		return fmt.Errorf("unknown log level %q", o.logLevel)
	}
	if o.logFormat != "text" && o.logFormat != "json" {
		return fmt.Errorf("unknown log format %q", o.logFormat)
	}
	cfg := logger.DefaultConfig()
	cfg.Level = level
	cfg.Format = o.logFormat
	cfg.Output = stderr
	cfg.LogFile = o.logFile
	return logger.Init(cfg)
}

func cmdLower(args []string, stdout, stderr io.Writer) int {
	fs, opts := newFlagSet("lower", stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "usage: %s lower [options] <module.pyx>\n", appName)
		return 2
	}
	if err := opts.initLogging(stderr); err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 2
	}
	logger.LogCompilerStart(args)

	file := fs.Arg(0)
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return 1
	}
	logger.LogFileProcessing(file)
	return lower(file, string(src), opts, stdout, stderr)
}

// lower runs the pipeline over one source text and reports the outcome.
// It returns the process exit code.
func lower(file, src string, opts *options, stdout, stderr io.Writer) int {
	m, err := frontend.Parse(file, src)
	if err != nil {
		var perrs frontend.Errors
		if !errors.As(err, &perrs) {
			fmt.Fprintf(stderr, "%s: %v\n", appName, err)
			return 1
		}
		for _, d := range perrs {
			fmt.Fprintln(stderr, diag.Render(d, src))
		}
		return 1
	}

	res, err := transform.Compile(m, transform.Options{
		File:       file,
		Directives: opts.directives.set,
		Passes:     opts.passList(),
	})
	if res.Sink != nil && len(res.Diagnostics) > 0 {
		fmt.Fprintln(stderr, diag.RenderAll(res.Sink, src))
	}
	if err != nil {
		if diag.IsInternal(err) {
			fmt.Fprintf(stderr, "%s: internal compiler error: %v\n", appName, err)
		} else {
			fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		}
		return 1
	}
	if opts.print {
		fmt.Fprint(stdout, printer.Print(res.Module))
	}
	if res.Sink.HasErrors() {
		return 1
	}
	return 0
}

func listPasses(w io.Writer) {
	for i, name := range transform.PassNames() {
		fmt.Fprintf(w, "%2d  %s\n", i+1, name)
	}
}
