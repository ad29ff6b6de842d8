// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package builder

import (
	"fmt"
	"strings"

	"github.com/kraklabs/scriptpatch/pkg/ast"
	"github.com/kraklabs/scriptpatch/pkg/lex"
	"github.com/kraklabs/scriptpatch/pkg/patcherrors"
)

var attrTags = map[string]ast.Flag{
	"noop":     ast.Noop,
	"insert":   ast.Insert,
	"rename":   ast.Rename,
	"redefine": ast.Redefine,
	"delete":   ast.Delete,
}

// parseAttributes reads a contiguous (whitespace-tolerant) run of
// `[tag]` attributes on a diff node, case-insensitively mapping each to
// its edit flag. An unrecognised tag is a hard parse error.
func parseAttributes(src string, st *lex.State) (ast.Flag, error) {
	var flags ast.Flag
	for {
		lex.SkipSpaces(src, st)
		if lex.Peek(src, st) != '[' {
			return flags, nil
		}
		lex.SkipByte(src, st, '[')
		tag, ok := lex.ReadIdentifier(src, st)
		if !ok {
			return 0, patcherrors.At(patcherrors.Syntax, st.Line, "expected attribute tag inside '['")
		}
		if !lex.SkipByte(src, st, ']') {
			return 0, patcherrors.At(patcherrors.Syntax, st.Line, "expected ']' closing attribute")
		}
		flag, known := attrTags[strings.ToLower(tag)]
		if !known {
			return 0, patcherrors.At(patcherrors.Syntax, st.Line, fmt.Sprintf("unknown attribute tag %q", tag))
		}
		flags |= flag
	}
}
