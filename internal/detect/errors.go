package detect

import (
	"go/ast"
	"go/token"
)

// HasBroadRecover reports whether a defer statement installs a handler that
// intercepts every panic: its function calls recover and never re-panics.
// A handler that re-raises with panic is treated as selective and does not
// match.
func HasBroadRecover(node ast.Node, _ *Scope) bool {
	deferred, ok := node.(*ast.DeferStmt)
	if !ok {
		return false
	}
	lit, ok := deferred.Call.Fun.(*ast.FuncLit)
	if !ok {
		return false
	}

	recovers, repanics := false, false
	ast.Inspect(lit.Body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		if ident, ok := call.Fun.(*ast.Ident); ok {
			switch ident.Name {
			case "recover":
				recovers = true
			case "panic":
				repanics = true
			}
		}
		return true
	})
	return recovers && !repanics
}

// SwallowsError reports whether an error is dropped on the floor: either an
// error branch with an empty body, or an error value assigned to the blank
// identifier.
func SwallowsError(node ast.Node, _ *Scope) bool {
	switch stmt := node.(type) {
	case *ast.IfStmt:
		return isEmptyErrCheck(stmt)
	case *ast.AssignStmt:
		return isBlankErrAssign(stmt)
	}
	return false
}

// isEmptyErrCheck matches `if err != nil {}`.
func isEmptyErrCheck(stmt *ast.IfStmt) bool {
	if stmt.Body == nil || len(stmt.Body.List) > 0 {
		return false
	}
	bin, ok := stmt.Cond.(*ast.BinaryExpr)
	if !ok || bin.Op != token.NEQ {
		return false
	}
	return isErrNilComparison(stmt.Cond)
}

// isBlankErrAssign matches `_ = err`.
func isBlankErrAssign(stmt *ast.AssignStmt) bool {
	if len(stmt.Lhs) != 1 || len(stmt.Rhs) != 1 {
		return false
	}
	lhs, ok := stmt.Lhs[0].(*ast.Ident)
	if !ok || lhs.Name != "_" {
		return false
	}
	return isErrIdent(stmt.Rhs[0])
}

// HasErrorWrapper reports whether the node sits inside a function that
// checks errors anywhere in its body.
//
// Context-only: this detector classifies surroundings for other signals and
// must never trigger a warning on its own.
func HasErrorWrapper(_ ast.Node, scope *Scope) bool {
	if scope == nil || scope.Func == nil {
		return false
	}
	body := funcBody(scope.Func)
	if body == nil {
		return false
	}

	found := false
	ast.Inspect(body, func(n ast.Node) bool {
		if stmt, ok := n.(*ast.IfStmt); ok && isErrNilComparison(stmt.Cond) {
			found = true
			return false
		}
		return true
	})
	return found
}

func isErrNilComparison(cond ast.Expr) bool {
	bin, ok := cond.(*ast.BinaryExpr)
	if !ok {
		return false
	}
	if bin.Op != token.NEQ && bin.Op != token.EQL {
		return false
	}
	return (isErrIdent(bin.X) && isNilIdent(bin.Y)) || (isErrIdent(bin.Y) && isNilIdent(bin.X))
}
