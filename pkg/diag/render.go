package diag

import (
	"fmt"
	"strings"
)

// Render formats d as a snippet of src with one line of context on each
// side and a caret under the column.
//
//	example.pyx:3:12: error: Too many buffer options
//
//	   2 | def f():
//	   3 |     cdef object[int, 2, "c", 1] buf
//	     |            ^
func Render(d Diagnostic, src string) string {
	lines := strings.Split(src, "\n")
	line, col := d.Pos.Line, d.Pos.Col
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if line > len(lines) {
		line = len(lines)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %s\n\n", d.Pos, d.Level, d.Message)
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}

// RenderAll renders every diagnostic of the sink against src.
func RenderAll(s *Sink, src string) string {
	var b strings.Builder
	for i, d := range s.All() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(Render(d, src))
	}
	return b.String()
}
