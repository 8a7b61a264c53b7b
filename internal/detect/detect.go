// Package detect holds the boolean pattern detectors. A detector is a pure
// predicate over one AST node plus a small amount of enclosing scope: "does
// this pattern exist here?" Detectors are stateless, carry no thresholds or
// severity, and make no epistemic judgments — when a case is ambiguous they
// answer false and leave filtering to the statistical layer. Imperfect
// detection is acceptable by contract.
package detect

import (
	"go/ast"
	"strings"
)

// Kind separates detectors that may be scored from detectors that only
// classify or gate other signals.
type Kind int

const (
	// KindViolation marks a detector whose observation is itself the signal.
	KindViolation Kind = iota
	// KindContextOnly marks a detector used for classification only; it must
	// never independently produce a warning.
	KindContextOnly
)

// Scope is the minimal context a detector sees. Intentionally small:
// detectors decide locally.
type Scope struct {
	// Func is the nearest enclosing *ast.FuncDecl or *ast.FuncLit, nil when
	// the node sits at package level.
	Func ast.Node
	// ParentFunc is the function enclosing Func, nil when Func is not nested.
	ParentFunc ast.Node
	// InMethod is true when the node sits inside a method body, or is itself
	// a method declaration.
	InMethod bool
	// PackageVars holds the names of package-level variables declared in the
	// node's file.
	PackageVars map[string]bool
	// Imports holds the import paths of the node's file.
	Imports []string
}

// InFunction reports whether the node sits inside a function body.
func (s *Scope) InFunction() bool { return s.Func != nil }

// Func is a detector predicate.
type Func func(node ast.Node, scope *Scope) bool

// Detector is a named predicate with its scoring eligibility.
type Detector struct {
	Name   string
	Kind   Kind
	Detect Func
}

// Registry returns every detector in a fixed order. The names are stable
// identifiers: they key the operation table, the violation set and the
// explanation sentences.
func Registry() []Detector {
	return []Detector{
		{Name: "has_timeout_parameter", Kind: KindViolation, Detect: HasTimeoutParameter},
		{Name: "mutates_parameter", Kind: KindViolation, Detect: MutatesParameter},
		{Name: "writes_global_state", Kind: KindViolation, Detect: WritesGlobalState},
		{Name: "has_broad_exception", Kind: KindViolation, Detect: HasBroadRecover},
		{Name: "swallows_exception", Kind: KindViolation, Detect: SwallowsError},
		{Name: "has_error_wrapper", Kind: KindContextOnly, Detect: HasErrorWrapper},
	}
}

// funcBody returns the body of a FuncDecl or FuncLit, nil otherwise.
func funcBody(node ast.Node) *ast.BlockStmt {
	switch fn := node.(type) {
	case *ast.FuncDecl:
		return fn.Body
	case *ast.FuncLit:
		return fn.Body
	}
	return nil
}

// paramNames collects the parameter names of a function node, excluding the
// receiver: reassigning the receiver is idiomatic and is not a mutation
// signal, the same way the original detectors excluded self.
func paramNames(node ast.Node) map[string]bool {
	var fields *ast.FieldList
	switch fn := node.(type) {
	case *ast.FuncDecl:
		fields = fn.Type.Params
	case *ast.FuncLit:
		fields = fn.Type.Params
	default:
		return nil
	}
	if fields == nil {
		return nil
	}

	names := make(map[string]bool)
	for _, field := range fields.List {
		for _, name := range field.Names {
			if name.Name != "_" {
				names[name.Name] = true
			}
		}
	}
	return names
}

func identContains(expr ast.Expr, substrings ...string) bool {
	name := ""
	switch e := expr.(type) {
	case *ast.Ident:
		name = e.Name
	case *ast.SelectorExpr:
		name = e.Sel.Name
	default:
		return false
	}
	lower := strings.ToLower(name)
	for _, sub := range substrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

// isErrIdent reports whether the expression is an identifier that names an
// error by convention (err, parseErr, ...).
func isErrIdent(expr ast.Expr) bool {
	ident, ok := expr.(*ast.Ident)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(ident.Name), "err")
}

func isNilIdent(expr ast.Expr) bool {
	ident, ok := expr.(*ast.Ident)
	return ok && ident.Name == "nil"
}
