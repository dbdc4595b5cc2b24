// Package source holds source positions shared by the tree, the symbol
// tables and the diagnostics.
package source

import "fmt"

// Pos is a 1-based line/column position in a named file.
type Pos struct {
	File string
	Line int
	Col  int
}

// IsValid reports whether the position points at a real line.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	file := p.File
	if file == "" {
		file = "<string>"
	}
	if !p.IsValid() {
		return file
	}
	return fmt.Sprintf("%s:%d:%d", file, p.Line, p.Col)
}
