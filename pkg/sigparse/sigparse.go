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

// Package sigparse canonicalises the textual form of every construct the
// grammar recognises — function calls, use statements, sub declarations,
// includes, variable declarations, exports and imports — into the single
// normalized string that becomes a node's interned signature.
//
// Canonicalisation is total: a routine either fully validates its input
// and returns a normalized form, or fails with a descriptive error. Every
// routine is idempotent — feeding its own output back in yields the same
// output — which is what lets the merger treat a canonical signature as a
// stable identity key. Failures are always a *patcherrors.PatchError (per
// spec.md §7, almost always Syntax — the one Semantic exception is the
// VarVecN element-count check in ParseVarDecl) so callers can branch on
// Kind without caring which construct produced the failure.
package sigparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kraklabs/scriptpatch/pkg/lex"
	"github.com/kraklabs/scriptpatch/pkg/patcherrors"
)

func syntaxErr(st *lex.State, format string, args ...any) error {
	return patcherrors.At(patcherrors.Syntax, st.Line, fmt.Sprintf(format, args...))
}

func wrapSyntaxErr(st *lex.State, err error, format string, args ...any) error {
	return patcherrors.Wrap(patcherrors.Syntax, st.Line, fmt.Sprintf(format, args...), err)
}

// ParseFunctionCall canonicalises `Name(args…)` starting at the cursor,
// which must be positioned on the first character of Name. It leaves the
// cursor just past the closing ')'.
func ParseFunctionCall(src string, st *lex.State) (string, error) {
	name, ok := lex.ReadIdentifier(src, st)
	if !ok {
		return "", syntaxErr(st, "expected identifier")
	}
	args, err := parseArgList(src, st)
	if err != nil {
		return "", wrapSyntaxErr(st, err, "%s(...)", name)
	}
	return name + "(" + strings.Join(args, ",") + ")", nil
}

// parseArgList parses the parenthesised, comma-separated argument list of
// a function-shaped construct. A bare "()" is legal and yields no args;
// "empty positional arguments" refers to a comma-separated *hole*
// (e.g. "f(1,,2)"), which parseOneArg rejects.
func parseArgList(src string, st *lex.State) ([]string, error) {
	if !lex.SkipByte(src, st, '(') {
		return nil, syntaxErr(st, "expected '('")
	}
	lex.SkipSpaces(src, st)
	var out []string
	if lex.Peek(src, st) == ')' {
		lex.SkipByte(src, st, ')')
		return out, nil
	}
	for {
		lex.SkipSpaces(src, st)
		arg, err := parseOneArg(src, st)
		if err != nil {
			return nil, err
		}
		out = append(out, arg)
		lex.SkipSpaces(src, st)
		if lex.SkipByte(src, st, ',') {
			continue
		}
		if lex.SkipByte(src, st, ')') {
			return out, nil
		}
		return nil, syntaxErr(st, "expected ',' or ')'")
	}
}

func parseOneArg(src string, st *lex.State) (string, error) {
	switch {
	case lex.Peek(src, st) == '"':
		s, ok, err := lex.ReadString(src, st)
		if err != nil {
			return "", wrapSyntaxErr(st, err, "malformed string argument")
		}
		if !ok {
			return "", syntaxErr(st, "malformed string argument")
		}
		return `"` + s + `"`, nil
	case lex.Peek(src, st) == '[':
		return parseArrayArg(src, st)
	default:
		return parseExprArg(src, st)
	}
}

// parseExprArg parses an identifier/int/float optionally followed by
// repeated `[+-]` operators and another identifier/int/float, with no
// spaces retained in the canonical rendering.
func parseExprArg(src string, st *lex.State) (string, error) {
	var b strings.Builder
	tok, err := readScalarToken(src, st)
	if err != nil {
		return "", err
	}
	b.WriteString(tok)
	for {
		lex.SkipSpaces(src, st)
		snap := st.Snapshot()
		if lex.Peek(src, st) != '+' && lex.Peek(src, st) != '-' {
			st.Restore(snap)
			break
		}
		op := src[st.Index]
		lex.SkipByte(src, st, op)
		lex.SkipSpaces(src, st)
		next, err := readScalarToken(src, st)
		if err != nil {
			st.Restore(snap)
			break
		}
		b.WriteByte(op)
		b.WriteString(next)
	}
	if b.Len() == 0 {
		return "", syntaxErr(st, "empty positional argument")
	}
	return b.String(), nil
}

func readScalarToken(src string, st *lex.State) (string, error) {
	if f, ok := lex.ReadFloat(src, st); ok {
		return f, nil
	}
	if i, ok := lex.ReadInt(src, st); ok {
		return i, nil
	}
	if id, ok := lex.ReadIdentifier(src, st); ok {
		return id, nil
	}
	return "", syntaxErr(st, "expected identifier, int or float")
}

// parseArrayArg parses `[e1,e2,...]` where all elements must be valid
// floats, or all must be valid ints — mixing is rejected. An empty array
// ("[]") is rejected (empty args inside an array are rejected).
func parseArrayArg(src string, st *lex.State) (string, error) {
	if !lex.SkipByte(src, st, '[') {
		return "", syntaxErr(st, "expected '['")
	}
	var elems []string
	allFloat, allInt := true, true
	for {
		lex.SkipSpaces(src, st)
		if f, ok := lex.ReadFloat(src, st); ok {
			elems = append(elems, f)
			allInt = false
		} else if i, ok := lex.ReadInt(src, st); ok {
			elems = append(elems, i)
			allFloat = false
		} else {
			return "", syntaxErr(st, "array element must be int or float")
		}
		lex.SkipSpaces(src, st)
		if lex.SkipByte(src, st, ',') {
			continue
		}
		if lex.SkipByte(src, st, ']') {
			break
		}
		return "", syntaxErr(st, "expected ',' or ']'")
	}
	if len(elems) == 0 {
		return "", syntaxErr(st, "empty array")
	}
	if !allFloat && !allInt {
		return "", syntaxErr(st, "array elements must all be int or all be float")
	}
	return "[" + strings.Join(elems, ",") + "]", nil
}

// ParseUse canonicalises `use Name ( )`, where the cursor starts on the
// 'u' of "use". Whitespace inside the parens is the only thing tolerated.
func ParseUse(src string, st *lex.State) (string, error) {
	if !lex.SkipLiteral(src, st, "use") {
		return "", syntaxErr(st, "expected 'use'")
	}
	lex.SkipSpaces(src, st)
	name, ok := lex.ReadIdentifier(src, st)
	if !ok {
		return "", syntaxErr(st, "expected identifier after 'use'")
	}
	lex.SkipSpaces(src, st)
	if !lex.SkipByte(src, st, '(') {
		return "", syntaxErr(st, "expected '(' in use statement")
	}
	lex.SkipSpaces(src, st)
	if !lex.SkipByte(src, st, ')') {
		return "", syntaxErr(st, "use(...) may only contain spaces")
	}
	return "use " + name + "()", nil
}

// ParseSubDecl canonicalises `sub Name(params)` for the loot dialect's
// top-level sub declarations. Each param is `int X = K` or `float X = F`.
// An empty parameter list ("sub Name()") is accepted for diffs and
// targets alike; this function does not check which one it is reading.
// See DESIGN.md for how the merger resolves matching when a diff omits
// the params of a typed target sub.
func ParseSubDecl(src string, st *lex.State) (string, error) {
	if !lex.SkipLiteral(src, st, "sub") {
		return "", syntaxErr(st, "expected 'sub'")
	}
	lex.SkipSpaces(src, st)
	name, ok := lex.ReadIdentifier(src, st)
	if !ok {
		return "", syntaxErr(st, "expected sub name")
	}
	lex.SkipSpaces(src, st)
	if !lex.SkipByte(src, st, '(') {
		return "", syntaxErr(st, "expected '(' after sub name")
	}
	lex.SkipSpaces(src, st)
	var params []string
	if lex.Peek(src, st) == ')' {
		lex.SkipByte(src, st, ')')
		return "sub " + name + "()", nil
	}
	for {
		lex.SkipSpaces(src, st)
		p, err := parseSubParam(src, st)
		if err != nil {
			return "", err
		}
		params = append(params, p)
		lex.SkipSpaces(src, st)
		if lex.SkipByte(src, st, ',') {
			continue
		}
		if lex.SkipByte(src, st, ')') {
			break
		}
		return "", syntaxErr(st, "expected ',' or ')' in sub params")
	}
	return "sub " + name + "(" + strings.Join(params, ", ") + ")", nil
}

func parseSubParam(src string, st *lex.State) (string, error) {
	typeName, ok := lex.ReadIdentifier(src, st)
	if !ok {
		return "", syntaxErr(st, "expected param type")
	}
	if typeName != "int" && typeName != "float" {
		return "", syntaxErr(st, "param type must be int or float, got %q", typeName)
	}
	lex.SkipSpaces(src, st)
	paramName, ok := lex.ReadIdentifier(src, st)
	if !ok {
		return "", syntaxErr(st, "expected param name")
	}
	lex.SkipSpaces(src, st)
	if !lex.SkipByte(src, st, '=') {
		return "", syntaxErr(st, "sub params require a default value")
	}
	lex.SkipSpaces(src, st)
	var value string
	if typeName == "int" {
		v, ok := lex.ReadInt(src, st)
		if !ok {
			return "", syntaxErr(st, "expected int default for %s", paramName)
		}
		value = v
	} else {
		v, ok := lex.ReadFloat(src, st)
		if !ok {
			return "", syntaxErr(st, "expected float default for %s", paramName)
		}
		value = v
	}
	return typeName + " " + paramName + " = " + value, nil
}

// ParseSubScope canonicalises the scr dialect's single root
// `sub Name()` — parameterless by construction.
func ParseSubScope(src string, st *lex.State) (string, error) {
	if !lex.SkipLiteral(src, st, "sub") {
		return "", syntaxErr(st, "expected 'sub'")
	}
	lex.SkipSpaces(src, st)
	name, ok := lex.ReadIdentifier(src, st)
	if !ok {
		return "", syntaxErr(st, "expected sub name")
	}
	lex.SkipSpaces(src, st)
	if !lex.SkipByte(src, st, '(') {
		return "", syntaxErr(st, "expected '(' after sub name")
	}
	lex.SkipSpaces(src, st)
	if !lex.SkipByte(src, st, ')') {
		return "", syntaxErr(st, "scr sub scope takes no parameters")
	}
	return "sub " + name + "()", nil
}

// ParseInclude canonicalises `!include ( "p" )`.
func ParseInclude(src string, st *lex.State) (string, error) {
	if !lex.SkipLiteral(src, st, "!include") {
		return "", syntaxErr(st, "expected '!include'")
	}
	lex.SkipSpaces(src, st)
	if !lex.SkipByte(src, st, '(') {
		return "", syntaxErr(st, "expected '(' after !include")
	}
	lex.SkipSpaces(src, st)
	path, ok, err := lex.ReadString(src, st)
	if err != nil {
		return "", wrapSyntaxErr(st, err, "malformed !include path")
	}
	if !ok {
		return "", syntaxErr(st, "expected string path in !include")
	}
	lex.SkipSpaces(src, st)
	if !lex.SkipByte(src, st, ')') {
		return "", syntaxErr(st, "expected ')' closing !include")
	}
	return `!include("` + path + `")`, nil
}

// scalarVarKinds enumerates the non-vector Var* declaration names.
var scalarVarKinds = map[string]bool{"VarInt": true, "VarFloat": true, "VarString": true}

// ParseVarDecl canonicalises VarInt/VarFloat/VarString/VarVecN
// declarations, where the cursor starts on the 'V' of the Var* name. N
// must be a decimal >= 1 and, for VarVecN, the number of array elements
// must equal N exactly (a Semantic error per spec.md §7 — every other
// failure in this function is a malformed-signature Syntax error).
func ParseVarDecl(src string, st *lex.State) (string, error) {
	name, ok := lex.ReadIdentifier(src, st)
	if !ok {
		return "", syntaxErr(st, "expected Var* identifier")
	}

	vecLen := 0
	kind := name
	if strings.HasPrefix(name, "VarVec") {
		nStr := strings.TrimPrefix(name, "VarVec")
		n, err := strconv.Atoi(nStr)
		if err != nil || n < 1 {
			return "", syntaxErr(st, "%q is not a valid VarVecN name", name)
		}
		vecLen = n
		kind = "VarVec"
	} else if !scalarVarKinds[name] {
		return "", syntaxErr(st, "unknown variable declaration kind %q", name)
	}

	args, err := parseArgList(src, st)
	if err != nil {
		return "", wrapSyntaxErr(st, err, "%s(...)", name)
	}
	if len(args) != 2 {
		return "", syntaxErr(st, "%s expects exactly 2 arguments", name)
	}
	varName := args[0]
	if !strings.HasPrefix(varName, `"`) {
		return "", syntaxErr(st, "%s name must be a string literal", name)
	}

	switch kind {
	case "VarInt":
		if !isIntLiteral(args[1]) {
			return "", syntaxErr(st, "VarInt value must be an int")
		}
	case "VarFloat":
		if !isFloatLiteral(args[1]) && !isIntLiteral(args[1]) {
			return "", syntaxErr(st, "VarFloat value must be a float or int")
		}
	case "VarString":
		if !strings.HasPrefix(args[1], `"`) {
			return "", syntaxErr(st, "VarString value must be a string literal")
		}
	case "VarVec":
		elems, err := splitArrayElems(args[1])
		if err != nil {
			return "", wrapSyntaxErr(st, err, "%s(...)", name)
		}
		if len(elems) != vecLen {
			return "", patcherrors.At(patcherrors.Semantic, st.Line,
				fmt.Sprintf("%s expects %d elements, got %d", name, vecLen, len(elems)))
		}
	}

	return name + "(" + args[0] + "," + args[1] + ")", nil
}

func isIntLiteral(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func isFloatLiteral(s string) bool {
	return strings.Contains(s, ".")
}

func splitArrayElems(arrayArg string) ([]string, error) {
	if !strings.HasPrefix(arrayArg, "[") || !strings.HasSuffix(arrayArg, "]") {
		return nil, fmt.Errorf("expected array literal")
	}
	inner := arrayArg[1 : len(arrayArg)-1]
	if inner == "" {
		return nil, nil
	}
	return strings.Split(inner, ","), nil
}

// exportTypes enumerates the value types an export may declare.
var exportTypes = map[string]bool{"int": true, "float": true, "string": true}

// ParseExport canonicalises `export <type> Name = <value>`. For int,
// the value may be a pipe-joined sequence of ints and/or identifiers.
// When a `[tag]` attribute directly follows Name (the diff form
// `export int N[redefine] 7`), the value is omitted and the result is
// `export <type> Name`.
func ParseExport(src string, st *lex.State) (string, error) {
	if !lex.SkipLiteral(src, st, "export") {
		return "", syntaxErr(st, "expected 'export'")
	}
	lex.SkipSpaces(src, st)
	typeName, ok := lex.ReadIdentifier(src, st)
	if !ok || !exportTypes[typeName] {
		return "", syntaxErr(st, "export type must be int, float or string")
	}
	lex.SkipSpaces(src, st)
	name, ok := lex.ReadIdentifier(src, st)
	if !ok {
		return "", syntaxErr(st, "expected export name")
	}
	lex.SkipSpaces(src, st)
	if lex.Peek(src, st) == '[' {
		return "export " + typeName + " " + name, nil
	}
	if !lex.SkipByte(src, st, '=') {
		return "", syntaxErr(st, "expected '=' in export")
	}
	lex.SkipSpaces(src, st)
	value, err := parseExportValue(src, st, typeName)
	if err != nil {
		return "", err
	}
	return "export " + typeName + " " + name + " = " + value, nil
}

func parseExportValue(src string, st *lex.State, typeName string) (string, error) {
	switch typeName {
	case "string":
		s, ok, err := lex.ReadString(src, st)
		if err != nil {
			return "", wrapSyntaxErr(st, err, "malformed export string value")
		}
		if !ok {
			return "", syntaxErr(st, "export string value must be quoted")
		}
		return `"` + s + `"`, nil
	case "float":
		if f, ok := lex.ReadFloat(src, st); ok {
			return f, nil
		}
		if id, ok := lex.ReadIdentifier(src, st); ok {
			return id, nil
		}
		return "", syntaxErr(st, "expected float literal or identifier")
	case "int":
		var parts []string
		for {
			if i, ok := lex.ReadInt(src, st); ok {
				parts = append(parts, i)
			} else if id, ok := lex.ReadIdentifier(src, st); ok {
				parts = append(parts, id)
			} else {
				return "", syntaxErr(st, "expected int literal or identifier")
			}
			lex.SkipSpaces(src, st)
			if !lex.SkipByte(src, st, '|') {
				break
			}
			lex.SkipSpaces(src, st)
		}
		return strings.Join(parts, "|"), nil
	default:
		return "", syntaxErr(st, "unreachable export type %q", typeName)
	}
}

// ParseImport canonicalises `import "path"`.
func ParseImport(src string, st *lex.State) (string, error) {
	if !lex.SkipLiteral(src, st, "import") {
		return "", syntaxErr(st, "expected 'import'")
	}
	lex.SkipSpaces(src, st)
	path, ok, err := lex.ReadString(src, st)
	if err != nil {
		return "", wrapSyntaxErr(st, err, "malformed import path")
	}
	if !ok {
		return "", syntaxErr(st, "expected quoted import path")
	}
	return `import "` + path + `"`, nil
}

// ExportCompareSig strips the value off a canonical export signature
// ("export <type> Name = <value>") to get the name+type identity used
// for diff/target matching.
func ExportCompareSig(canonical string) string {
	if eq := strings.Index(canonical, " = "); eq >= 0 {
		return canonical[:eq]
	}
	return canonical
}

// ParseExportRedefineValue parses a bare replacement value for an
// `export <typeName>` redefine payload — the same value grammar
// ParseExport uses after the '=', without the "export <type> Name ="
// prefix (a redefine attribute supplies only the new value).
func ParseExportRedefineValue(src string, st *lex.State, typeName string) (string, error) {
	return parseExportValue(src, st, typeName)
}

// ExportTypeOf extracts "<type>" from a canonical "export <type> Name"
// (or full "export <type> Name = value") signature.
func ExportTypeOf(canonical string) string {
	rest := strings.TrimPrefix(canonical, "export ")
	if sp := strings.IndexByte(rest, ' '); sp >= 0 {
		return rest[:sp]
	}
	return rest
}

// SubDeclBaseName extracts "Name" from a "sub Name(...)" canonical
// signature, used by the merger's name-only fallback match for
// parameter-omitting diff sub declarations (see DESIGN.md).
func SubDeclBaseName(canonical string) string {
	rest := strings.TrimPrefix(canonical, "sub ")
	if paren := strings.IndexByte(rest, '('); paren >= 0 {
		return rest[:paren]
	}
	return rest
}
