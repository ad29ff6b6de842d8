package builder

import (
	"github.com/kraklabs/scriptpatch/pkg/ast"
	"github.com/kraklabs/scriptpatch/pkg/lex"
	"github.com/kraklabs/scriptpatch/pkg/patcherrors"
	"github.com/kraklabs/scriptpatch/pkg/strcache"
)

// BuildScr builds the scr dialect: zero or more imports, zero or more
// exports, exactly one `sub Name() { ... }` scope containing function
// calls and use statements.
func BuildScr(cache *strcache.Cache, src string, st *lex.State, isDiff bool) ([]*ast.Node, error) {
	imports, exports, err := collectImportsExports(cache, src, st, isDiff)
	if err != nil {
		return nil, err
	}

	if peekKeyword(src, st) != "sub" {
		return nil, patcherrors.At(patcherrors.Syntax, st.Line, "expected a single root 'sub' scope")
	}
	root, err := parseSubScope(cache, src, st, isDiff)
	if err != nil {
		return nil, err
	}
	if err := ast.ValidateInvariants(root, true); err != nil {
		return nil, err
	}
	for _, child := range root.Children {
		if err := validateSubtree(child); err != nil {
			return nil, err
		}
	}

	lex.SkipWhitespace(src, st)
	if !lex.AtEnd(src, st) {
		return nil, patcherrors.At(patcherrors.Syntax, st.Line, "unexpected content after the sub scope")
	}

	nodes := make([]*ast.Node, 0, len(imports)+len(exports)+1)
	nodes = append(nodes, imports...)
	nodes = append(nodes, exports...)
	nodes = append(nodes, root)
	return nodes, nil
}
