package lex

import "strings"

// StripComments removes /* ... */ blocks (truncating at an unterminated
// block comment that reaches EOF) and // ... line comments (stopping
// before, not consuming, the terminating newline).
func StripComments(src string) string {
	var out strings.Builder
	out.Grow(len(src))

	i := 0
	for i < len(src) {
		if i+1 < len(src) && src[i] == '/' && src[i+1] == '*' {
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				break // unterminated block comment: truncate at it
			}
			i = i + 2 + end + 2
			continue
		}
		if i+1 < len(src) && src[i] == '/' && src[i+1] == '/' {
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				i = len(src)
				continue
			}
			i += end // stop at, don't consume, the newline
			continue
		}
		out.WriteByte(src[i])
		i++
	}
	return out.String()
}

// NormalizeTabs replaces every tab byte with a single space, matching the
// target/diff normalization the builders assume has already happened.
func NormalizeTabs(src string) string {
	return strings.ReplaceAll(src, "\t", " ")
}

// Preprocess applies the standard pipeline (strip comments, then
// normalize tabs) a builder expects its input to have already been put
// through.
func Preprocess(src string) string {
	return NormalizeTabs(StripComments(src))
}
