// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package uiout renders the CLI's diagnostic and progress output,
// gating color on both an explicit --no-color flag and the terminal's
// actual TTY-ness.
package uiout

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Color handles used directly by callers that want a single styled
// Printf/Println, mirroring the palette a CLI built around fatih/color
// typically exposes (one *color.Color per semantic role).
var (
	Green  = color.New(color.FgGreen)
	Yellow = color.New(color.FgYellow)
	Red    = color.New(color.FgRed)
	Cyan   = color.New(color.FgCyan)
	Dim    = color.New(color.Faint)
)

// InitColors enables or disables color globally. Pass the --no-color
// flag's value; it's OR'd with "is stdout actually a terminal" so piped
// output and NO_COLOR-style environments never get escape codes.
func InitColors(noColor bool) {
	color.NoColor = noColor || !isatty.IsTerminal(os.Stdout.Fd())
}

// Header prints a prominent section title.
func Header(title string) {
	_, _ = Cyan.Printf("== %s ==\n", title)
}

// SubHeader prints a secondary section title.
func SubHeader(title string) {
	_, _ = Dim.Printf("-- %s --\n", title)
}

// Label formats a field label for a "Label: value" line.
func Label(text string) string {
	return Dim.Sprint(text)
}

// DimText renders text in the dim/faint style inline.
func DimText(text string) string {
	return Dim.Sprint(text)
}

// CountText renders an integer count, highlighted when non-zero.
func CountText(n int) string {
	if n == 0 {
		return Dim.Sprint("0")
	}
	return Green.Sprint(n)
}

// Info prints an informational line.
func Info(msg string) {
	fmt.Printf("%s %s\n", Cyan.Sprint("info:"), msg)
}

// Infof prints a formatted informational line.
func Infof(format string, args ...interface{}) {
	Info(fmt.Sprintf(format, args...))
}

// Successf prints a formatted success line.
func Successf(format string, args ...interface{}) {
	_, _ = Green.Printf("✓ "+format+"\n", args...)
}

// Warningf prints a formatted warning line to stderr.
func Warningf(format string, args ...interface{}) {
	_, _ = Yellow.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

// Errorf prints a formatted error line to stderr.
func Errorf(format string, args ...interface{}) {
	_, _ = Red.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
