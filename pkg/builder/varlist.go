package builder

import (
	"fmt"

	"github.com/kraklabs/scriptpatch/pkg/ast"
	"github.com/kraklabs/scriptpatch/pkg/lex"
	"github.com/kraklabs/scriptpatch/pkg/patcherrors"
	"github.com/kraklabs/scriptpatch/pkg/strcache"
)

// BuildVarlist builds the varlist dialect: zero or more !include(...)
// and Var*(...) lines, in any order, with no nesting.
func BuildVarlist(cache *strcache.Cache, src string, st *lex.State, isDiff bool) ([]*ast.Node, error) {
	var nodes []*ast.Node
	lex.SkipWhitespace(src, st)
	for {
		kw := peekKeyword(src, st)
		if kw != "!include" && !isVarKeyword(kw) {
			break
		}
		n, err := parseConstruct(cache, src, st, isDiff)
		if err != nil {
			return nil, err
		}
		if isDiff && isElidableNoop(n) {
			lex.SkipWhitespace(src, st)
			continue
		}
		if err := ast.ValidateInvariants(n, false); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
		lex.SkipWhitespace(src, st)
	}
	if !lex.AtEnd(src, st) {
		return nil, patcherrors.At(patcherrors.Syntax, st.Line,
			fmt.Sprintf("expected !include(...) or Var*(...), found %q", string(lex.Peek(src, st))))
	}
	return nodes, nil
}

func isVarKeyword(kw string) bool {
	if len(kw) < 3 {
		return false
	}
	return kw[:3] == "Var"
}
