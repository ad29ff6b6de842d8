package builder

import (
	"github.com/kraklabs/scriptpatch/pkg/ast"
	"github.com/kraklabs/scriptpatch/pkg/lex"
	"github.com/kraklabs/scriptpatch/pkg/patcherrors"
	"github.com/kraklabs/scriptpatch/pkg/strcache"
)

// BuildLoot builds the loot dialect: imports, exports, then one or more
// top-level `sub Name(params) { ... }` declarations.
func BuildLoot(cache *strcache.Cache, src string, st *lex.State, isDiff bool) ([]*ast.Node, error) {
	imports, exports, err := collectImportsExports(cache, src, st, isDiff)
	if err != nil {
		return nil, err
	}

	var subs []*ast.Node
	for peekKeyword(src, st) == "sub" {
		decl, err := parseSubDeclaration(cache, src, st, isDiff)
		if err != nil {
			return nil, err
		}
		if isDiff && isElidableNoop(decl) {
			lex.SkipWhitespace(src, st)
			continue
		}
		if err := ast.ValidateInvariants(decl, false); err != nil {
			return nil, err
		}
		for _, child := range decl.Children {
			if err := validateSubtree(child); err != nil {
				return nil, err
			}
		}
		subs = append(subs, decl)
		lex.SkipWhitespace(src, st)
	}
	if len(subs) == 0 {
		return nil, patcherrors.At(patcherrors.Syntax, st.Line, "loot files require at least one 'sub' declaration")
	}

	lex.SkipWhitespace(src, st)
	if !lex.AtEnd(src, st) {
		return nil, patcherrors.At(patcherrors.Syntax, st.Line, "unexpected content after sub declarations")
	}

	nodes := make([]*ast.Node, 0, len(imports)+len(exports)+len(subs))
	nodes = append(nodes, imports...)
	nodes = append(nodes, exports...)
	nodes = append(nodes, subs...)
	return nodes, nil
}
