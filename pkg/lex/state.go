// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package lex provides the character classifiers and low-level readers
// shared by every dialect builder (scr, def, loot, varlist).
package lex

// State is the shared traversal cursor: a byte offset into the source
// plus the 1-based line number of that offset. All scanners take a
// source string and a *State and advance it in place.
type State struct {
	Index int
	Line  int
}

// NewState returns a cursor positioned at the start of line 1.
func NewState() *State {
	return &State{Index: 0, Line: 1}
}

// NewStateAtLine returns a cursor positioned at index 0 but reporting the
// given starting line number — used when a builder has already skipped
// past earlier lines (e.g. a diff's header line) that it isn't re-lexing.
func NewStateAtLine(line int) *State {
	return &State{Index: 0, Line: line}
}

// Snapshot returns a copy that can be restored via Restore if a tentative
// read fails partway through.
func (s *State) Snapshot() State {
	return *s
}

// Restore resets the cursor to a previously captured Snapshot.
func (s *State) Restore(snap State) {
	*s = snap
}

func isWordStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isWordChar(b byte) bool {
	return isWordStart(b) || isDigit(b)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r'
}

func isNewline(b byte) bool {
	return b == '\n'
}

// advance moves the cursor past src[st.Index], bumping Line on a newline.
func advance(src string, st *State) {
	if isNewline(src[st.Index]) {
		st.Line++
	}
	st.Index++
}

// SkipSpaces advances over runs of space/tab/carriage-return (not
// newlines — newline-sensitivity is left to callers that care).
func SkipSpaces(src string, st *State) {
	for st.Index < len(src) && isSpace(src[st.Index]) {
		advance(src, st)
	}
}

// SkipWhitespace advances over spaces and newlines alike.
func SkipWhitespace(src string, st *State) {
	for st.Index < len(src) && (isSpace(src[st.Index]) || isNewline(src[st.Index])) {
		advance(src, st)
	}
}

// AtEnd reports whether the cursor has consumed the whole source.
func AtEnd(src string, st *State) bool {
	return st.Index >= len(src)
}

// Peek returns the byte at the cursor, or 0 if at end.
func Peek(src string, st *State) byte {
	if AtEnd(src, st) {
		return 0
	}
	return src[st.Index]
}

// SkipByte advances past a single expected byte, returning false and
// leaving the state unchanged if the next byte doesn't match.
func SkipByte(src string, st *State, b byte) bool {
	if AtEnd(src, st) || src[st.Index] != b {
		return false
	}
	advance(src, st)
	return true
}

// SkipLiteral advances past an exact literal, returning false and leaving
// the state unchanged if it doesn't match at the cursor.
func SkipLiteral(src string, st *State, lit string) bool {
	if st.Index+len(lit) > len(src) || src[st.Index:st.Index+len(lit)] != lit {
		return false
	}
	for i := 0; i < len(lit); i++ {
		advance(src, st)
	}
	return true
}
