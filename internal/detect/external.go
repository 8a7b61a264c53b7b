package detect

import "go/ast"

// HasTimeoutParameter reports whether a call passes an argument that bounds
// its duration: an identifier or selector mentioning a timeout or deadline,
// or a context built with WithTimeout/WithDeadline inline.
//
// Dynamic cases the walk cannot see (a context carrying a deadline from a
// caller, a client configured elsewhere) return false.
func HasTimeoutParameter(node ast.Node, _ *Scope) bool {
	call, ok := node.(*ast.CallExpr)
	if !ok {
		return false
	}

	for _, arg := range call.Args {
		found := false
		ast.Inspect(arg, func(n ast.Node) bool {
			switch e := n.(type) {
			case *ast.Ident:
				if identContains(e, "timeout", "deadline") {
					found = true
					return false
				}
			case *ast.SelectorExpr:
				if identContains(e, "timeout", "deadline") {
					found = true
					return false
				}
			case *ast.CallExpr:
				if sel, ok := e.Fun.(*ast.SelectorExpr); ok {
					if sel.Sel.Name == "WithTimeout" || sel.Sel.Name == "WithDeadline" {
						found = true
						return false
					}
				}
			}
			return true
		})
		if found {
			return true
		}
	}
	return false
}
