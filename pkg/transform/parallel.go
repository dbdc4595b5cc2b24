package transform

import (
	"github.com/GriffinCanCode/pyxc/pkg/ast"
	"github.com/GriffinCanCode/pyxc/pkg/diag"
	"github.com/GriffinCanCode/pyxc/pkg/visitor"
)

// An exprList is the targets of one (possibly cascaded) assignment
// followed by its right-hand side.
type exprList []ast.Expr

func (l exprList) rhs() ast.Expr       { return l[len(l)-1] }
func (l exprList) targets() []ast.Expr { return l[:len(l)-1] }

func isSequence(e ast.Expr) bool {
	_, ok := e.(*ast.Sequence)
	return ok
}

func isStarred(e ast.Expr) bool {
	_, ok := e.(*ast.Starred)
	return ok
}

// flattenAssignment splits an assignment between sequence constructors
// into assignments between their elements. The elements are assigned in
// parallel; right-hand subexpressions used more than once are evaluated
// into temps first.
func flattenAssignment(c *Context, n ast.Node, exprs exprList) visitor.Result {
	sequences := 0
	for _, e := range exprs {
		if isSequence(e) {
			sequences++
		}
	}
	if sequences < 2 {
		return visitor.Keep(n)
	}

	var lists []exprList
	flattenParallel(c, exprs, &lists)
	temps := eliminateRhsDuplicates(c, lists)

	stats := make([]ast.Stmt, 0, len(lists))
	for _, l := range lists {
		rhs := l.rhs()
		if len(l) == 2 {
			stats = append(stats, ast.NewAssign(rhs.Position(), l[0], rhs))
			continue
		}
		stats = append(stats, &ast.CascadedAssignment{
			Base:    ast.At(rhs.Position()),
			LhsList: append([]ast.Expr{}, l.targets()...),
			Rhs:     rhs,
		})
	}

	var assign ast.Stmt
	if len(stats) == 1 {
		assign = stats[0]
	} else {
		assign = &ast.ParallelAssignment{Base: ast.At(stats[0].Position()), Stats: stats}
	}
	if len(temps) == 0 {
		return visitor.Replace(assign)
	}
	out := make([]ast.Node, 0, len(temps)+1)
	for _, t := range temps {
		out = append(out, t)
	}
	return visitor.Splice(append(out, assign)...)
}

// flattenParallel matches the sequence targets of exprs against a
// sequence right-hand side element by element, recursively, and appends
// the resulting assignments to out. Targets that cannot be matched are
// reported and assigned as a whole.
func flattenParallel(c *Context, exprs exprList, out *[]exprList) {
	rhs, ok := exprs.rhs().(*ast.Sequence)
	anySeq := false
	for _, t := range exprs.targets() {
		anySeq = anySeq || isSequence(t)
	}
	if !ok || !anySeq {
		*out = append(*out, exprs)
		return
	}

	rhsSize := len(rhs.Args)
	lhsTargets := make([][]ast.Expr, rhsSize)
	var starredAssigns []exprList
	var complete []ast.Expr

	for _, t := range exprs.targets() {
		lhs, isSeq := t.(*ast.Sequence)
		if !isSeq {
			if isStarred(t) {
				c.Sink.Errorf(t.Position(), "starred assignment target must be in a list or tuple")
			}
			complete = append(complete, t)
			continue
		}
		lhsSize := len(lhs.Args)
		starred := 0
		for _, a := range lhs.Args {
			if isStarred(a) {
				starred++
			}
		}
		switch {
		case starred > 1:
			c.Sink.Errorf(lhs.Position(), "more than 1 starred expression in assignment")
			*out = append(*out, exprList{lhs, rhs})
		case lhsSize-starred > rhsSize:
			plural := "s"
			if rhsSize == 1 {
				plural = ""
			}
			c.Sink.Errorf(lhs.Position(), "need more than %d value%s to unpack", rhsSize, plural)
			*out = append(*out, exprList{lhs, rhs})
		case starred == 1:
			starredAssigns = append(starredAssigns, mapStarredAssignment(lhsTargets, lhs.Args, rhs.Args))
		case lhsSize < rhsSize:
			c.Sink.Errorf(lhs.Position(), "too many values to unpack (expected %d, got %d)", lhsSize, rhsSize)
			*out = append(*out, exprList{lhs, rhs})
		default:
			for i, a := range lhs.Args {
				lhsTargets[i] = append(lhsTargets[i], a)
			}
		}
	}

	if len(complete) > 0 {
		*out = append(*out, append(exprList(complete), rhs))
	}
	for i, cascade := range lhsTargets {
		if len(cascade) > 0 {
			flattenParallel(c, append(exprList(cascade), rhs.Args[i]), out)
		}
	}
	for _, cascade := range starredAssigns {
		if isSequence(cascade[0]) {
			flattenParallel(c, cascade, out)
		} else {
			*out = append(*out, cascade)
		}
	}
}

// mapStarredAssignment adds the fixed targets left and right of the
// starred one to lhsTargets and returns the assignment of the remaining
// values, as a list, to the starred target.
func mapStarredAssignment(lhsTargets [][]ast.Expr, lhsArgs, rhsArgs []ast.Expr) exprList {
	star := -1
	for i, a := range lhsArgs {
		if isStarred(a) {
			star = i
			break
		}
		lhsTargets[i] = append(lhsTargets[i], a)
	}
	if star < 0 {
		diag.Fatalf("PostParse", lhsArgs[0].Position(), "no starred arg found when splitting starred assignment")
	}
	remaining := len(lhsArgs) - star - 1
	if remaining > 0 {
		rhsTail := len(lhsTargets) - remaining
		lhsTail := len(lhsArgs) - remaining
		for i := 0; i < remaining; i++ {
			lhsTargets[rhsTail+i] = append(lhsTargets[rhsTail+i], lhsArgs[lhsTail+i])
		}
	}

	target := lhsArgs[star].(*ast.Starred).Target
	values := append([]ast.Expr{}, rhsArgs[star:len(rhsArgs)-remaining]...)
	pos := target.Position()
	if len(values) > 0 {
		pos = values[0].Position()
	}
	return exprList{target, &ast.Sequence{Base: ast.At(pos), List: true, Args: values}}
}

// eliminateRhsDuplicates replaces right-hand subexpressions that occur
// more than once (by identity) with temps and returns the temp
// assignments, contained expressions before their containers.
func eliminateRhsDuplicates(c *Context, lists []exprList) []ast.Stmt {
	seen := map[ast.Expr]bool{}
	temps := map[ast.Expr]*ast.Name{}
	var dups []ast.Expr

	var find func(e ast.Expr)
	find = func(e ast.Expr) {
		if ast.IsLiteral(e) {
			return
		}
		if _, ok := e.(*ast.Name); ok {
			return
		}
		if seen[e] {
			if temps[e] == nil {
				temps[e] = ast.NewName(e.Position(), c.Namer.Fresh("parallel"))
				dups = append(dups, e)
			}
			return
		}
		seen[e] = true
		if seq, ok := e.(*ast.Sequence); ok {
			for _, a := range seq.Args {
				find(a)
			}
		}
	}
	for _, l := range lists {
		find(l.rhs())
	}
	if len(dups) == 0 {
		return nil
	}
	sortContained(dups)

	var subst func(e ast.Expr) ast.Expr
	subst = func(e ast.Expr) ast.Expr {
		if t, ok := temps[e]; ok {
			return ast.NewName(t.Position(), t.Name)
		}
		if seq, ok := e.(*ast.Sequence); ok {
			for i, a := range seq.Args {
				seq.Args[i] = subst(a)
			}
		}
		return e
	}
	for _, d := range dups {
		if seq, ok := d.(*ast.Sequence); ok {
			for i, a := range seq.Args {
				seq.Args[i] = subst(a)
			}
		}
	}
	for _, l := range lists {
		l[len(l)-1] = subst(l.rhs())
	}

	stats := make([]ast.Stmt, len(dups))
	for i, d := range dups {
		t := temps[d]
		stats[i] = ast.NewAssign(d.Position(), t, d)
	}
	return stats
}

// sortContained orders items so that every item comes after the items it
// contains, keeping the original order otherwise.
func sortContained(items []ast.Expr) {
	var contains func(seq []ast.Expr, x ast.Expr) bool
	contains = func(seq []ast.Expr, x ast.Expr) bool {
		for _, item := range seq {
			if item == x {
				return true
			}
			if s, ok := item.(*ast.Sequence); ok && contains(s.Args, x) {
				return true
			}
		}
		return false
	}
	lower := func(a, b ast.Expr) bool {
		s, ok := b.(*ast.Sequence)
		return ok && contains(s.Args, a)
	}
	for pos := range items {
		item := items[pos]
		newPos := pos
		for i := pos - 1; i >= 0; i-- {
			if lower(item, items[i]) {
				newPos = i
			}
		}
		if newPos != pos {
			copy(items[newPos+1:pos+1], items[newPos:pos])
			items[newPos] = item
		}
	}
}
