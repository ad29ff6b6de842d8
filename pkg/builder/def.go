package builder

import (
	"github.com/kraklabs/scriptpatch/pkg/ast"
	"github.com/kraklabs/scriptpatch/pkg/lex"
	"github.com/kraklabs/scriptpatch/pkg/patcherrors"
	"github.com/kraklabs/scriptpatch/pkg/strcache"
)

// BuildDef builds the def dialect: zero or more exports, nothing else.
func BuildDef(cache *strcache.Cache, src string, st *lex.State, isDiff bool) ([]*ast.Node, error) {
	exports, err := collectWhile(cache, src, st, isDiff, "export")
	if err != nil {
		return nil, err
	}
	lex.SkipWhitespace(src, st)
	if !lex.AtEnd(src, st) {
		return nil, patcherrors.At(patcherrors.Syntax, st.Line, "def files may only contain exports")
	}
	return exports, nil
}
