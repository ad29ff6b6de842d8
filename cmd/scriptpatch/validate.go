// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/scriptpatch/internal/uiout"
	"github.com/kraklabs/scriptpatch/pkg/archive"
	"github.com/kraklabs/scriptpatch/pkg/metrics"
	"github.com/kraklabs/scriptpatch/pkg/parser"
	"github.com/kraklabs/scriptpatch/pkg/serialize"
	"github.com/prometheus/client_golang/prometheus"
)

// runValidate parses and merges every diff in the configured diffs dir
// against the configured archive, but never writes anything back —
// useful for checking a batch of diffs in CI before an apply.
func runValidate(args []string, configPath string, globals GlobalFlags) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	archivePath := fs.String("archive", "", "Path to the .pak archive (overrides project config)")
	diffsDir := fs.String("diffs", "", "Directory of diff files to validate (overrides project config)")
	diffPreview := fs.Bool("diff-preview", false, "Print the merged result tree with inserted/changed nodes colorized")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := loadConfigOrDefault(configPath)
	if err != nil {
		uiout.Errorf("%v", err)
		return 1
	}
	if *archivePath != "" {
		cfg.Archive.Path = *archivePath
	}
	if *diffsDir != "" {
		cfg.Archive.DiffsDir = *diffsDir
	}

	logger := newLogger(cfg, globals)
	reg := metrics.NewRegistry(prometheus.NewRegistry())

	diffFiles, err := loadDiffFiles(cfg.Archive.DiffsDir)
	if err != nil {
		uiout.Errorf("%v", err)
		return 1
	}
	if !globals.Quiet {
		uiout.Header(fmt.Sprintf("validating %d diffs against %s", len(diffFiles), cfg.Archive.Path))
	}

	fm := archive.New([]string{cfg.Archive.Path})
	results, _, _ := runDiffs(diffFiles, fm, false, logger, reg, globals)

	_, failed := reportResults(results)
	if failed > 0 {
		return 1
	}

	if *diffPreview {
		previewDiffs(diffFiles, fm)
	}

	if !globals.Quiet {
		uiout.Successf("all %d diffs parse and merge cleanly", len(diffFiles))
	}
	return 0
}

// previewDiffs re-runs every diff through its own parser instance and
// prints the merged result tree with inserted/changed nodes colorized,
// for a human to review before running apply. A diff that fails here
// was already reported as a failure above, so preview errors are
// silently skipped rather than reported twice.
func previewDiffs(diffFiles []string, fm archive.FileManager) {
	for _, path := range diffFiles {
		raw, err := os.ReadFile(path) //nolint:gosec // path comes from the configured diffs dir
		if err != nil {
			continue
		}
		p := parser.New(nil)
		if err := p.SetDiff(string(raw)); err != nil {
			continue
		}
		targetText, err := fm.ReadTarget(p.GetTargetPath())
		if err != nil {
			continue
		}
		if err := p.SetTarget(targetText); err != nil {
			continue
		}
		result, target, cache, err := p.MergeTree()
		if err != nil {
			continue
		}
		uiout.SubHeader(path)
		for _, line := range serialize.TreePreview(result, target, cache) {
			printPreviewLine(line)
		}
	}
}

func printPreviewLine(line serialize.PreviewLine) {
	switch line.Status {
	case serialize.New:
		_, _ = uiout.Green.Println(line.Text)
	case serialize.Changed:
		_, _ = uiout.Cyan.Println(line.Text)
	default:
		fmt.Println(line.Text)
	}
}
