// Package enumvalidator reports string literals assigned to enum-typed
// fields. Enum values must come from their declared constants so a typo
// cannot reach the store or the index.
package enumvalidator

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

var enumTypes = map[string]bool{
	"Status":         true,
	"Severity":       true,
	"AuditAction":    true,
	"AuditLevel":     true,
	"ApprovalStatus": true,
	"Dimension":      true,
	"Phase":          true,
	"ChangeKind":     true,
}

var Analyzer = &analysis.Analyzer{
	Name:     "enumvalidator",
	Doc:      "reports string literals assigned to enum-typed fields",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.AssignStmt)(nil),
		(*ast.CompositeLit)(nil),
	}

	insp.Preorder(nodeFilter, func(n ast.Node) {
		switch node := n.(type) {
		case *ast.AssignStmt:
			if len(node.Lhs) != len(node.Rhs) {
				return
			}
			for i, lhs := range node.Lhs {
				sel, ok := lhs.(*ast.SelectorExpr)
				if !ok || !isStringLiteral(node.Rhs[i]) {
					continue
				}
				if isEnum(pass.TypesInfo.TypeOf(sel)) {
					pass.Reportf(node.Rhs[i].Pos(), "enum field %s assigned string literal", sel.Sel.Name)
				}
			}
		case *ast.CompositeLit:
			for _, elt := range node.Elts {
				kv, ok := elt.(*ast.KeyValueExpr)
				if !ok || !isStringLiteral(kv.Value) {
					continue
				}
				key, ok := kv.Key.(*ast.Ident)
				if !ok {
					continue
				}
				if isEnum(pass.TypesInfo.TypeOf(kv.Value)) {
					pass.Reportf(kv.Value.Pos(), "enum field %s assigned string literal", key.Name)
				}
			}
		}
	})

	return nil, nil
}

func isStringLiteral(expr ast.Expr) bool {
	lit, ok := ast.Unparen(expr).(*ast.BasicLit)
	return ok && lit.Kind == token.STRING
}

func isEnum(t types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}
	basic, ok := named.Underlying().(*types.Basic)
	if !ok || basic.Kind() != types.String {
		return false
	}
	return enumTypes[named.Obj().Name()]
}
