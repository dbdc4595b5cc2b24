// Package diag collects the diagnostics of one compilation.
//
// Two kinds of failure exist. Reported errors and warnings go to a Sink
// and compilation continues on a best-effort tree. Internal errors are
// contract violations inside the pipeline (a missing handler, a
// malformed shape); they abort the running pass through Fatalf and are
// turned back into an error by Recover at the pass boundary.
package diag

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/pyxc/pkg/logger"
	"github.com/GriffinCanCode/pyxc/pkg/source"
)

// Level is the severity of a diagnostic.
type Level int

const (
	LevelError Level = iota
	LevelWarning
)

func (l Level) String() string {
	if l == LevelWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Level   Level
	Pos     source.Pos
	Pass    string
	Message string
}

func (d Diagnostic) Error() string {
	if d.Level == LevelWarning {
		return fmt.Sprintf("%s: warning: %s", d.Pos, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Pos, d.Message)
}

// Sink accumulates diagnostics in report order.
type Sink struct {
	items []Diagnostic
	// Pass is recorded on every diagnostic reported while it is set.
	Pass string
}

// NewSink returns an empty sink.
func NewSink() *Sink {
	return &Sink{}
}

// Errorf reports an error at pos.
func (s *Sink) Errorf(pos source.Pos, format string, args ...any) {
	s.report(LevelError, pos, fmt.Sprintf(format, args...))
}

// Warnf reports a warning at pos.
func (s *Sink) Warnf(pos source.Pos, format string, args ...any) {
	s.report(LevelWarning, pos, fmt.Sprintf(format, args...))
}

func (s *Sink) report(level Level, pos source.Pos, msg string) {
	s.items = append(s.items, Diagnostic{Level: level, Pos: pos, Pass: s.Pass, Message: msg})
	if level == LevelWarning {
		logger.LogWarning(s.Pass, pos.File, pos.Line, msg)
	} else {
		logger.LogError(s.Pass, pos.File, pos.Line, msg)
	}
}

// All returns every diagnostic in report order.
func (s *Sink) All() []Diagnostic {
	return s.items
}

// Errors returns the error-level diagnostics.
func (s *Sink) Errors() []Diagnostic {
	return s.filter(LevelError)
}

// Warnings returns the warning-level diagnostics.
func (s *Sink) Warnings() []Diagnostic {
	return s.filter(LevelWarning)
}

func (s *Sink) filter(level Level) []Diagnostic {
	var out []Diagnostic
	for _, d := range s.items {
		if d.Level == level {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors reports whether any error was reported.
func (s *Sink) HasErrors() bool {
	for _, d := range s.items {
		if d.Level == LevelError {
			return true
		}
	}
	return false
}

// Count returns the number of errors and warnings.
func (s *Sink) Count() (errs, warnings int) {
	for _, d := range s.items {
		if d.Level == LevelError {
			errs++
		} else {
			warnings++
		}
	}
	return errs, warnings
}

// Err joins the reported errors, or returns nil when there are none.
// Warnings are not included.
func (s *Sink) Err() error {
	var errs []error
	for _, d := range s.items {
		if d.Level == LevelError {
			errs = append(errs, d)
		}
	}
	return errors.Join(errs...)
}

// InternalError is a pipeline contract violation.
type InternalError struct {
	Pos     source.Pos
	Pass    string
	Message string
}

func (e *InternalError) Error() string {
	prefix := "internal error"
	if e.Pass != "" {
		prefix += " in " + e.Pass
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, prefix, e.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Fatalf aborts the running pass with an InternalError.
func Fatalf(pass string, pos source.Pos, format string, args ...any) {
	panic(&InternalError{Pos: pos, Pass: pass, Message: fmt.Sprintf(format, args...)})
}

// Recover converts an InternalError panic into *err. Other panics are
// re-raised. Use as "defer diag.Recover(&err)".
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	ie, ok := r.(*InternalError)
	if !ok {
		panic(r)
	}
	*err = ie
}

// IsInternal reports whether err wraps an InternalError.
func IsInternal(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}
