// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package builder

import (
	"strings"

	"github.com/kraklabs/scriptpatch/pkg/ast"
	"github.com/kraklabs/scriptpatch/pkg/lex"
	"github.com/kraklabs/scriptpatch/pkg/patcherrors"
	"github.com/kraklabs/scriptpatch/pkg/strcache"
)

// SplitDiffHeader separates a diff file's first line (the declared
// target path) from the remainder of the source, which starts at line 2.
func SplitDiffHeader(raw string) (targetPath string, body string) {
	nl := strings.IndexByte(raw, '\n')
	if nl < 0 {
		return strings.TrimSpace(raw), ""
	}
	return strings.TrimSpace(raw[:nl]), raw[nl+1:]
}

// BuildDiff preprocesses and builds a diff file of the given dialect.
// raw is the WHOLE diff file including its header line; the dialect
// itself is deduced by the caller from that header (see ast.DeduceFileType)
// and passed in here.
func BuildDiff(cache *strcache.Cache, dialect ast.FileType, raw string) ([]*ast.Node, error) {
	_, body := SplitDiffHeader(raw)
	clean := lex.Preprocess(body)
	if err := validateBalance(clean); err != nil {
		return nil, err
	}
	st := lex.NewStateAtLine(2)
	return dispatch(cache, dialect, clean, st, true)
}

// BuildTarget preprocesses and builds a target file of the given
// dialect. raw's first line IS the first content line (no header).
func BuildTarget(cache *strcache.Cache, dialect ast.FileType, raw string) ([]*ast.Node, error) {
	clean := lex.Preprocess(raw)
	if err := validateBalance(clean); err != nil {
		return nil, err
	}
	st := lex.NewState()
	return dispatch(cache, dialect, clean, st, false)
}

func validateBalance(clean string) error {
	if err := lex.ValidateBraces(clean); err != nil {
		return patcherrors.Wrap(patcherrors.Syntax, 0, "brace mismatch", err)
	}
	if err := lex.ValidateParens(clean); err != nil {
		return patcherrors.Wrap(patcherrors.Syntax, 0, "paren mismatch", err)
	}
	return nil
}

func dispatch(cache *strcache.Cache, dialect ast.FileType, clean string, st *lex.State, isDiff bool) ([]*ast.Node, error) {
	switch dialect {
	case ast.Scr:
		return BuildScr(cache, clean, st, isDiff)
	case ast.Def:
		return BuildDef(cache, clean, st, isDiff)
	case ast.Loot:
		return BuildLoot(cache, clean, st, isDiff)
	case ast.Varlist:
		return BuildVarlist(cache, clean, st, isDiff)
	default:
		return nil, patcherrors.New(patcherrors.Syntax, "cannot build: unknown dialect")
	}
}
