package visitor

import (
	"errors"
	"fmt"
	"slices"

	"github.com/GriffinCanCode/pyxc/pkg/ast"
)

// Inspect walks the tree rooted at n in pre-order without changing it.
// When f returns false the children of that node are skipped.
func Inspect(n ast.Node, f func(ast.Node) bool) {
	if isNil(n) || !f(n) {
		return
	}
	w := &walker{pass: "Inspect"}
	w.inspect = func(_ string, c ast.Node) { Inspect(c, f) }
	walk(w, n)
}

// Children returns the direct children of n in shape order.
func Children(n ast.Node) []ast.Node {
	var out []ast.Node
	w := &walker{pass: "Children"}
	w.inspect = func(_ string, c ast.Node) { out = append(out, c) }
	walk(w, n)
	return out
}

// Count returns the number of nodes in the tree rooted at n.
func Count(n ast.Node) int {
	count := 0
	Inspect(n, func(ast.Node) bool {
		count++
		return true
	})
	return count
}

// ShapeError describes a node whose children do not match its shape.
type ShapeError struct {
	Node    ast.Node
	Message string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: malformed %s: %s", e.Node.Position(), e.Node.Kind(), e.Message)
}

// CheckShape verifies that every node of the tree has exactly the child
// attributes its kind declares and that no required child is missing.
func CheckShape(root ast.Node) error {
	var errs []error
	var check func(n ast.Node)
	check = func(n ast.Node) {
		w := &walker{pass: "CheckShape"}
		var kids []ast.Node
		w.inspect = func(_ string, c ast.Node) { kids = append(kids, c) }
		walk(w, n)

		var want []string
		for _, a := range ast.ShapeOf(n.Kind()) {
			want = append(want, a.Name)
		}
		if !slices.Equal(w.attrs, want) {
			errs = append(errs, &ShapeError{Node: n, Message: fmt.Sprintf("children %v, declared %v", w.attrs, want)})
		}
		for _, m := range w.missing {
			errs = append(errs, &ShapeError{Node: n, Message: "missing required " + m})
		}
		for _, c := range kids {
			check(c)
		}
	}
	if !isNil(root) {
		check(root)
	}
	return errors.Join(errs...)
}
