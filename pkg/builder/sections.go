package builder

import (
	"github.com/kraklabs/scriptpatch/pkg/ast"
	"github.com/kraklabs/scriptpatch/pkg/lex"
	"github.com/kraklabs/scriptpatch/pkg/strcache"
)

// collectWhile repeatedly parses constructs while the next keyword
// matches kw, dropping elidable diff no-ops and validating each survivor.
func collectWhile(cache *strcache.Cache, src string, st *lex.State, isDiff bool, kw string) ([]*ast.Node, error) {
	var nodes []*ast.Node
	lex.SkipWhitespace(src, st)
	for peekKeyword(src, st) == kw {
		n, err := parseConstruct(cache, src, st, isDiff)
		if err != nil {
			return nil, err
		}
		if !(isDiff && isElidableNoop(n)) {
			if err := ast.ValidateInvariants(n, false); err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		}
		lex.SkipWhitespace(src, st)
	}
	return nodes, nil
}

// collectImportsExports parses the leading zero-or-more imports then
// zero-or-more exports common to the scr and loot dialects.
func collectImportsExports(cache *strcache.Cache, src string, st *lex.State, isDiff bool) (imports, exports []*ast.Node, err error) {
	imports, err = collectWhile(cache, src, st, isDiff, "import")
	if err != nil {
		return nil, nil, err
	}
	exports, err = collectWhile(cache, src, st, isDiff, "export")
	if err != nil {
		return nil, nil, err
	}
	return imports, exports, nil
}

// validateSubtree recursively validates edit-flag invariants over n and
// its descendants.
func validateSubtree(n *ast.Node) error {
	if err := ast.ValidateInvariants(n, false); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := validateSubtree(c); err != nil {
			return err
		}
	}
	return nil
}
