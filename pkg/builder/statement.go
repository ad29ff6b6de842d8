// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package builder implements the dialect-specific tree builders (scr,
// def, loot, varlist) that turn preprocessed source text into the flat,
// ordered sequence of ast.Node the merger operates on.
package builder

import (
	"strings"

	"github.com/kraklabs/scriptpatch/pkg/ast"
	"github.com/kraklabs/scriptpatch/pkg/lex"
	"github.com/kraklabs/scriptpatch/pkg/patcherrors"
	"github.com/kraklabs/scriptpatch/pkg/sigparse"
	"github.com/kraklabs/scriptpatch/pkg/strcache"
)

// peekKeyword reports which construct starts at the cursor without
// consuming anything.
func peekKeyword(src string, st *lex.State) string {
	if lex.Peek(src, st) == '!' {
		return "!include"
	}
	snap := st.Snapshot()
	id, ok := lex.ReadIdentifier(src, st)
	st.Restore(snap)
	if !ok {
		return ""
	}
	return id
}

// parseConstruct recognises and canonicalises whichever construct starts
// at the cursor (import/export/use/!include/Var*/function call), builds
// its node, and — for diff input — consumes any trailing `[tag]`
// attributes and rename/redefine payload. It then consumes either a
// nested `{ ... }` child block (Function/SubScope/SubDeclaration only)
// or a terminating `;`.
func parseConstruct(cache *strcache.Cache, src string, st *lex.State, isDiff bool) (*ast.Node, error) {
	startLine := st.Line
	kw := peekKeyword(src, st)

	var kind ast.Flag
	var canon string
	var err error

	switch {
	case kw == "import":
		kind = ast.Import
		canon, err = sigparse.ParseImport(src, st)
	case kw == "export":
		kind = ast.Export
		canon, err = sigparse.ParseExport(src, st)
	case kw == "use":
		kind = ast.Use
		canon, err = sigparse.ParseUse(src, st)
	case kw == "!include":
		kind = ast.Include
		canon, err = sigparse.ParseInclude(src, st)
	case strings.HasPrefix(kw, "Var"):
		kind = ast.Vardecl
		canon, err = sigparse.ParseVarDecl(src, st)
	case kw == "":
		return nil, patcherrors.At(patcherrors.Syntax, st.Line, "expected a statement")
	default:
		kind = ast.Function
		canon, err = sigparse.ParseFunctionCall(src, st)
	}
	if err != nil {
		return nil, err
	}
	return buildNode(cache, src, st, isDiff, kind, canon, startLine)
}

// buildNode finishes building a node once its kind and canonical
// signature are known: it interns the signature, consumes diff-only
// attributes and rename/redefine payloads, and then consumes either a
// nested child block or a terminator.
func buildNode(cache *strcache.Cache, src string, st *lex.State, isDiff bool, kind ast.Flag, canon string, startLine int) (*ast.Node, error) {
	compareSig := canon
	if kind == ast.Export {
		compareSig = sigparse.ExportCompareSig(canon)
	}

	node := ast.NewNode(cache, kind, canon, compareSig, startLine)

	if isDiff {
		flags, err := parseAttributes(src, st)
		if err != nil {
			return nil, err
		}
		node.Flags |= flags

		if flags.Any(ast.Rename) {
			payload, err := parseRenamePayload(kind, src, st)
			if err != nil {
				return nil, err
			}
			node.NewSigID = cache.FindOrAdd(payload)
		}
		if flags.Any(ast.Redefine) {
			switch kind {
			case ast.Export:
				value, err := sigparse.ParseExportRedefineValue(src, st, sigparse.ExportTypeOf(canon))
				if err != nil {
					return nil, err
				}
				node.NewSigID = cache.FindOrAdd(value)
			case ast.Vardecl:
				// A variable redefine supplies a whole new declaration
				// (same grammar as the original), not just a bare value.
				value, err := sigparse.ParseVarDecl(src, st)
				if err != nil {
					return nil, err
				}
				node.NewSigID = cache.FindOrAdd(value)
			}
		}
		if node.Flags.Edits() == 0 {
			node.Flags |= ast.Noop
		}
	}

	lex.SkipWhitespace(src, st)

	wantsBlockFromRedefine := isDiff && node.Flags.Any(ast.Redefine) &&
		kind != ast.Export && ast.CanHaveChildren(kind)
	hasOpenBrace := ast.CanHaveChildren(kind) && lex.Peek(src, st) == '{'

	switch {
	case hasOpenBrace || wantsBlockFromRedefine:
		children, err := parseBlock(cache, src, st, isDiff)
		if err != nil {
			return nil, err
		}
		node.Children = children
	default:
		lex.SkipByte(src, st, ';')
	}
	lex.SkipWhitespace(src, st)
	return node, nil
}

// parseSubScope builds the scr dialect's single root `sub Name() { ... }`
// scope node, reusing buildNode's attribute/children handling so a diff
// root can still carry [redefine] (replacement body) or be a plain noop.
func parseSubScope(cache *strcache.Cache, src string, st *lex.State, isDiff bool) (*ast.Node, error) {
	startLine := st.Line
	canon, err := sigparse.ParseSubScope(src, st)
	if err != nil {
		return nil, err
	}
	return buildNode(cache, src, st, isDiff, ast.SubScope, canon, startLine)
}

// parseSubDeclaration builds one of the loot dialect's top-level
// `sub Name(params) { ... }` declarations.
func parseSubDeclaration(cache *strcache.Cache, src string, st *lex.State, isDiff bool) (*ast.Node, error) {
	startLine := st.Line
	canon, err := sigparse.ParseSubDecl(src, st)
	if err != nil {
		return nil, err
	}
	return buildNode(cache, src, st, isDiff, ast.SubDeclaration, canon, startLine)
}

// parseRenamePayload parses a second signature of the same grammar as
// kind, used as the Rename attribute's replacement signature.
func parseRenamePayload(kind ast.Flag, src string, st *lex.State) (string, error) {
	switch kind {
	case ast.Import:
		return sigparse.ParseImport(src, st)
	case ast.Use:
		return sigparse.ParseUse(src, st)
	case ast.Include:
		return sigparse.ParseInclude(src, st)
	case ast.Vardecl:
		return sigparse.ParseVarDecl(src, st)
	case ast.Function:
		return sigparse.ParseFunctionCall(src, st)
	default:
		return "", patcherrors.At(patcherrors.Syntax, st.Line, "rename is not valid on this kind")
	}
}

// parseBlock consumes a `{ ... }` block of nested Use/Function
// statements (the only kinds the grammar allows to nest).
func parseBlock(cache *strcache.Cache, src string, st *lex.State, isDiff bool) ([]*ast.Node, error) {
	if !lex.SkipByte(src, st, '{') {
		return nil, patcherrors.At(patcherrors.Syntax, st.Line, "expected '{'")
	}
	lex.SkipWhitespace(src, st)
	var children []*ast.Node
	for {
		if lex.Peek(src, st) == '}' {
			lex.SkipByte(src, st, '}')
			return children, nil
		}
		if lex.AtEnd(src, st) {
			return nil, patcherrors.At(patcherrors.Syntax, st.Line, "unterminated block, expected '}'")
		}
		child, err := parseConstruct(cache, src, st, isDiff)
		if err != nil {
			return nil, err
		}
		if child.Flags.Kind()&(ast.Use|ast.Function) == 0 {
			return nil, patcherrors.At(patcherrors.Syntax, child.SourceLine,
				"only function calls and use statements may appear inside a block")
		}
		if isDiff && isElidableNoop(child) {
			lex.SkipWhitespace(src, st)
			continue
		}
		children = append(children, child)
		lex.SkipWhitespace(src, st)
	}
}

// isElidableNoop reports whether a diff node is a pure no-op with no
// children and should be dropped per spec.md §4.4 ("Diff nodes whose
// only edit flags are Noop ... and which have no children are
// discarded").
func isElidableNoop(n *ast.Node) bool {
	if len(n.Children) > 0 {
		return false
	}
	if n.Flags.Only(ast.Noop) {
		return true
	}
	if n.Flags.Kind() == ast.Import && n.Flags.Only(ast.Noop|ast.Redefine) {
		return true
	}
	return false
}
