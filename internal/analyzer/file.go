package analyzer

import (
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"time"

	"github.com/driftwatch/driftwatch/internal/detect"
	"github.com/driftwatch/driftwatch/internal/frequency"
	"github.com/driftwatch/driftwatch/internal/gitlog"
	"github.com/driftwatch/driftwatch/internal/pattern"
)

// analyzeFile runs every detector over every node of one file. Files that do
// not parse are skipped: malformed source is the parser's problem, not a
// finding. Every observation is recorded into the observed accumulator and,
// where the table has enough history for the bucket, scored.
func (a *Analyzer) analyzeFile(absFile, repoRoot string, commits []gitlog.Commit, table, observed *frequency.Table, now time.Time) []frequency.SurpriseScore {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, absFile, nil, parser.SkipObjectResolution)
	if err != nil {
		if a.logger != nil {
			a.logger.WithError(err).WithField("file", absFile).Debug("skipping unparsable file")
		}
		return nil
	}

	relPath, err := filepath.Rel(repoRoot, absFile)
	if err != nil {
		relPath = absFile
	}
	relPath = filepath.ToSlash(relPath)

	pkgVars := packageVarNames(file)
	imports := importPaths(file)

	// Stability depends only on the file's history, so it is computed once
	// and shared by every bucket in this file.
	stability := a.classifier.DetermineStability(relPath, commits, now)

	var scores []frequency.SurpriseScore
	var stack []ast.Node

	ast.Inspect(file, func(n ast.Node) bool {
		if n == nil {
			stack = stack[:len(stack)-1]
			return true
		}

		scope, shape := buildScope(n, stack, pkgVars, imports)
		location := pattern.DetermineLocation(shape)

		for _, det := range a.detectors {
			seen := det.Detect(n, scope)
			bucket := pattern.Context{
				Location:  location,
				Operation: a.classifier.OperationFor(det.Name),
				Stability: stability,
			}

			observed.Record(det.Name, bucket, seen)

			if score, ok := frequency.ComputeSurprise(det.Name, bucket, seen, table); ok {
				scores = append(scores, score)
			}
		}

		stack = append(stack, n)
		return true
	})

	return scores
}

func isFuncNode(n ast.Node) bool {
	switch n.(type) {
	case *ast.FuncDecl, *ast.FuncLit:
		return true
	}
	return false
}

// buildScope derives the enclosing-scope view for one node from its ancestor
// chain. The enclosing function is the nearest strict ancestor; a function
// declaration's own location is therefore judged by what surrounds it, and a
// method declaration at package level classifies as a method through the
// receiver alone.
func buildScope(n ast.Node, ancestors []ast.Node, pkgVars map[string]bool, imports []string) (*detect.Scope, pattern.ScopeShape) {
	var funcs []ast.Node
	for _, anc := range ancestors {
		if isFuncNode(anc) {
			funcs = append(funcs, anc)
		}
	}

	var enclosing, parent ast.Node
	if len(funcs) > 0 {
		enclosing = funcs[len(funcs)-1]
	}
	if len(funcs) > 1 {
		parent = funcs[len(funcs)-2]
	}

	inMethod := false
	for _, fn := range funcs {
		if decl, ok := fn.(*ast.FuncDecl); ok && decl.Recv != nil {
			inMethod = true
			break
		}
	}
	if decl, ok := n.(*ast.FuncDecl); ok && decl.Recv != nil {
		inMethod = true
	}

	scope := &detect.Scope{
		Func:        enclosing,
		ParentFunc:  parent,
		InMethod:    inMethod,
		PackageVars: pkgVars,
		Imports:     imports,
	}
	shape := pattern.ScopeShape{
		InFunction: enclosing != nil,
		InMethod:   inMethod,
		Nested:     enclosing != nil && parent != nil,
	}
	return scope, shape
}

func packageVarNames(file *ast.File) map[string]bool {
	names := make(map[string]bool)
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.VAR {
			continue
		}
		for _, spec := range gen.Specs {
			if vs, ok := spec.(*ast.ValueSpec); ok {
				for _, name := range vs.Names {
					if name.Name != "_" {
						names[name.Name] = true
					}
				}
			}
		}
	}
	return names
}

func importPaths(file *ast.File) []string {
	paths := make([]string, 0, len(file.Imports))
	for _, imp := range file.Imports {
		if imp.Path != nil {
			paths = append(paths, imp.Path.Value)
		}
	}
	return paths
}
