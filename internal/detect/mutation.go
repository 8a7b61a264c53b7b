package detect

import (
	"go/ast"
	"go/token"
)

// MutatesParameter reports whether a function reassigns one of its own
// parameters. The receiver is excluded. Mutation through pointers or element
// writes (p.Field = x, s[i] = x) is deliberately not counted: only a direct
// reassignment of the parameter name.
func MutatesParameter(node ast.Node, _ *Scope) bool {
	body := funcBody(node)
	if body == nil {
		return false
	}
	params := paramNames(node)
	if len(params) == 0 {
		return false
	}

	return assignsToAny(body, params)
}

// WritesGlobalState reports whether a function assigns to a package-level
// variable declared in the same file. Conservative: a parameter or local of
// the same name wins, and writes through methods or other packages are not
// seen.
func WritesGlobalState(node ast.Node, scope *Scope) bool {
	body := funcBody(node)
	if body == nil || scope == nil || len(scope.PackageVars) == 0 {
		return false
	}

	params := paramNames(node)
	locals := localNames(body)

	found := false
	ast.Inspect(body, func(n ast.Node) bool {
		assign, ok := n.(*ast.AssignStmt)
		if !ok || assign.Tok == token.DEFINE {
			return true
		}
		for _, lhs := range assign.Lhs {
			ident, ok := lhs.(*ast.Ident)
			if !ok {
				continue
			}
			if scope.PackageVars[ident.Name] && !params[ident.Name] && !locals[ident.Name] {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// assignsToAny reports whether the block assigns to any of the given names,
// through =, compound assignment, ++ or --. Short declarations rebind a new
// name and do not count.
func assignsToAny(body *ast.BlockStmt, names map[string]bool) bool {
	found := false
	ast.Inspect(body, func(n ast.Node) bool {
		switch stmt := n.(type) {
		case *ast.AssignStmt:
			if stmt.Tok == token.DEFINE {
				return true
			}
			for _, lhs := range stmt.Lhs {
				if ident, ok := lhs.(*ast.Ident); ok && names[ident.Name] {
					found = true
					return false
				}
			}
		case *ast.IncDecStmt:
			if ident, ok := stmt.X.(*ast.Ident); ok && names[ident.Name] {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// localNames collects names bound inside the block by short declarations and
// var statements.
func localNames(body *ast.BlockStmt) map[string]bool {
	locals := make(map[string]bool)
	ast.Inspect(body, func(n ast.Node) bool {
		switch stmt := n.(type) {
		case *ast.AssignStmt:
			if stmt.Tok == token.DEFINE {
				for _, lhs := range stmt.Lhs {
					if ident, ok := lhs.(*ast.Ident); ok && ident.Name != "_" {
						locals[ident.Name] = true
					}
				}
			}
		case *ast.DeclStmt:
			if gen, ok := stmt.Decl.(*ast.GenDecl); ok {
				for _, spec := range gen.Specs {
					if vs, ok := spec.(*ast.ValueSpec); ok {
						for _, name := range vs.Names {
							if name.Name != "_" {
								locals[name.Name] = true
							}
						}
					}
				}
			}
		}
		return true
	})
	return locals
}
