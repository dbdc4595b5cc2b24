// Package frontend turns pyx source text into the tree the passes
// consume.
//
// Design: hand-written lexer and predictive recursive descent parser.
// Syntax errors are collected per statement; the parser resynchronizes
// at the next line so one run reports every broken statement.
package frontend

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/diag"
	"github.com/GriffinCanCode/pyxc/pkg/directives"
	"github.com/GriffinCanCode/pyxc/pkg/logger"
	"github.com/GriffinCanCode/pyxc/pkg/source"
)

// Errors is the list of syntax errors found in one file.
type Errors []diag.Diagnostic

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, d := range e {
		msgs[i] = d.Error()
	}
	return fmt.Sprintf("parse errors: %s", strings.Join(msgs, "; "))
}

// Parse parses src as the module file. The "# cython:" comments that
// precede the first statement are collected into DirectiveComments.
// On syntax errors the returned error is an Errors value.
func Parse(file, src string) (*ast.Module, error) {
	lexer := NewLexer(src)
	tokens := lexer.Tokenize()
	logger.LogLexing(file, len(tokens))

	p := newParser(file, tokens)
	m := p.module()
	m.Name = moduleName(file)
	m.DirectiveComments = p.pragmas(lexer.Comments)

	if len(p.errors) > 0 {
		return nil, p.errors
	}
	logger.LogParsing(file, len(ast.Block(m.Body).Stats))
	return m, nil
}

// pragmas interprets the leading directive comments. Later comments
// override earlier ones.
func (p *Parser) pragmas(comments []Comment) directives.Set {
	set := directives.Set{}
	for _, c := range comments {
		if !c.Leading {
			continue
		}
		found, ok, err := directives.ParsePragma(c.Text)
		if !ok {
			continue
		}
		if err != nil {
			p.errors = append(p.errors, diag.Diagnostic{
				Pos:     source.Pos{File: p.file, Line: c.Line, Col: 1},
				Pass:    "Parse",
				Message: err.Error(),
			})
			continue
		}
		set.Update(found)
	}
	return set
}

func moduleName(file string) string {
	if file == "" {
		return "__main__"
	}
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
