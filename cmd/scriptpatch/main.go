// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main implements the scriptpatch CLI for applying diff files
// to scripts packaged inside .pak archives.
//
// Usage:
//
//	scriptpatch init                 Create .scriptpatch/project.yaml configuration
//	scriptpatch apply                Apply every diff in the configured diffs dir
//	scriptpatch validate             Parse every diff without writing archives
//	scriptpatch watch                Watch the diffs dir and apply new diffs as they land
//	scriptpatch serve                Start an HTTP server exposing /metrics
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/scriptpatch/internal/uiout"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags holds the global CLI flags that apply to every subcommand.
type GlobalFlags struct {
	JSON    bool
	NoColor bool
	Verbose int
	Quiet   bool
}

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		configPath  = flag.StringP("config", "c", "", "Path to .scriptpatch/project.yaml (default: auto-detect)")
		jsonOutput  = flag.Bool("json", false, "Output in JSON format (for applicable commands)")
		noColor     = flag.Bool("no-color", false, "Disable color output")
		verbose     = flag.CountP("verbose", "v", "Increase verbosity (-v for info, -vv for debug)")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress non-essential output (progress, info messages)")
	)

	flag.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `scriptpatch - apply diff files to archived scripts

Usage:
  scriptpatch <command> [options]

Commands:
  init       Create .scriptpatch/project.yaml configuration
  apply      Apply every diff in the configured diffs dir to the archive
  validate   Parse and merge every diff without writing archives
  watch      Watch the diffs dir and apply new diffs as they land
  serve      Start an HTTP server exposing Prometheus metrics

Global Options:
  --json           Output in JSON format (for applicable commands)
  --no-color       Disable color output (respects NO_COLOR env var)
  -v, --verbose    Increase verbosity (-v for info, -vv for debug)
  -q, --quiet      Suppress non-essential output
  -c, --config     Path to .scriptpatch/project.yaml
  -V, --version    Show version and exit

For detailed command help: scriptpatch <command> --help
`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("scriptpatch version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	if os.Getenv("NO_COLOR") != "" {
		*noColor = true
	}
	if *jsonOutput {
		*quiet = true
	}

	globals := GlobalFlags{
		JSON:    *jsonOutput,
		NoColor: *noColor,
		Verbose: *verbose,
		Quiet:   *quiet,
	}
	uiout.InitColors(globals.NoColor)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	var code int
	switch command {
	case "init":
		code = runInit(cmdArgs, *configPath, globals)
	case "apply":
		code = runApply(cmdArgs, *configPath, globals)
	case "validate":
		code = runValidate(cmdArgs, *configPath, globals)
	case "watch":
		code = runWatch(cmdArgs, *configPath, globals)
	case "serve":
		code = runServe(cmdArgs, *configPath, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		code = 1
	}
	os.Exit(code)
}
