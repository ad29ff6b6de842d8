// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/scriptpatch/internal/uiout"
	"github.com/kraklabs/scriptpatch/pkg/archive"
	"github.com/kraklabs/scriptpatch/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// runApply applies every diff under the configured diffs dir to the
// configured archive, committing patched text back into it.
func runApply(args []string, configPath string, globals GlobalFlags) int {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	archivePath := fs.String("archive", "", "Path to the .pak archive (overrides project config)")
	diffsDir := fs.String("diffs", "", "Directory of diff files to apply (overrides project config)")
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
		uiout.Header(fmt.Sprintf("applying %d diffs to %s", len(diffFiles), cfg.Archive.Path))
	}

	fm := archive.New([]string{cfg.Archive.Path})
	results, report, commitErr := runDiffs(diffFiles, fm, true, logger, reg, globals)

	applied, failed := reportResults(results)
	if !globals.Quiet && report != nil {
		for archivePath, paths := range report.Written {
			uiout.Infof("%s: wrote %d entries", archivePath, len(paths))
		}
	}
	if commitErr != nil {
		uiout.Errorf("commit: %v", commitErr)
		return 1
	}
	if failed > 0 {
		return 1
	}
	if !globals.Quiet {
		uiout.Successf("applied %d diffs", applied)
	}
	return 0
}
