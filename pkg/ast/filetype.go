package ast

import (
	"fmt"
	"path"
	"strings"
)

// FileType is the dialect a diff/target file is written in.
type FileType int

const (
	Invalid FileType = iota
	Scr
	Def
	Loot
	Varlist
)

func (t FileType) String() string {
	switch t {
	case Scr:
		return "scr"
	case Def:
		return "def"
	case Loot:
		return "loot"
	case Varlist:
		return "varlist"
	default:
		return "invalid"
	}
}

// DeduceFileType inspects the last path segment of a diff's declared
// target path and picks a dialect: scr/def/loot by extension, or
// varlist when the basename case-insensitively equals "varlist.scr".
func DeduceFileType(targetPath string) (FileType, error) {
	base := path.Base(strings.TrimSpace(targetPath))
	if strings.EqualFold(base, "varlist.scr") {
		return Varlist, nil
	}
	ext := strings.TrimPrefix(path.Ext(base), ".")
	switch strings.ToLower(ext) {
	case "scr":
		return Scr, nil
	case "def":
		return Def, nil
	case "loot":
		return Loot, nil
	default:
		return Invalid, fmt.Errorf("unknown file extension for target path %q", targetPath)
	}
}
