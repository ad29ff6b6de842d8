// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/kraklabs/scriptpatch/internal/config"
	"github.com/kraklabs/scriptpatch/internal/uiout"
	"github.com/kraklabs/scriptpatch/pkg/archive"
	"github.com/kraklabs/scriptpatch/pkg/ast"
	"github.com/kraklabs/scriptpatch/pkg/metrics"
	"github.com/kraklabs/scriptpatch/pkg/parser"
	"github.com/kraklabs/scriptpatch/pkg/patcherrors"
	"github.com/schollz/progressbar/v3"
)

// diffResult is the outcome of running one diff file through the parser.
type diffResult struct {
	DiffFile   string
	TargetPath string
	Output     string
	Err        error
}

// loadDiffFiles lists the regular files directly under dir, in lexical
// order, mirroring scripts/varlist.scr's "applied in filename order"
// convention used by modders.
func loadDiffFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading diffs dir %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// runDiffs parses every file in diffFiles against its declared target
// (read through fm), merges it, and, when commit is true, collects the
// patched text for a single archive.Commit call at the end. When commit
// is false (validate), archives are only read, never written.
func runDiffs(
	diffFiles []string,
	fm archive.FileManager,
	commit bool,
	logger *slog.Logger,
	reg *metrics.Registry,
	globals GlobalFlags,
) ([]diffResult, *archive.CommitReport, error) {
	p := parser.New(logger)
	var results []diffResult
	var writes []archive.Write

	var bar *progressbar.ProgressBar
	if !globals.Quiet {
		bar = progressbar.Default(int64(len(diffFiles)), "applying diffs")
	}

	for _, path := range diffFiles {
		raw, err := os.ReadFile(path) //nolint:gosec // path comes from the configured diffs dir
		if err != nil {
			results = append(results, diffResult{DiffFile: path, Err: err})
			continue
		}

		result := runOneDiff(p, fm, string(raw), reg)
		result.DiffFile = path
		results = append(results, result)

		if result.Err == nil && commit {
			writes = append(writes, archive.Write{TargetPath: result.TargetPath, Text: result.Output})
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if !commit || len(writes) == 0 {
		return results, nil, nil
	}

	report, err := fm.Commit(writes)
	if err != nil {
		reg.CommitFailures.Inc()
	}
	return results, report, err
}

func runOneDiff(p *parser.Parser, fm archive.FileManager, diffText string, reg *metrics.Registry) diffResult {
	if err := p.SetDiff(diffText); err != nil {
		if reg != nil {
			reg.MergeErrors.WithLabelValues(errKind(err)).Inc()
		}
		return diffResult{Err: err}
	}
	targetPath := p.GetTargetPath()

	targetText, err := fm.ReadTarget(targetPath)
	if err != nil {
		return diffResult{TargetPath: targetPath, Err: err}
	}
	if err := p.SetTarget(targetText); err != nil {
		if reg != nil {
			reg.MergeErrors.WithLabelValues(errKind(err)).Inc()
		}
		return diffResult{TargetPath: targetPath, Err: err}
	}

	out, err := p.Parse()
	if err != nil {
		if reg != nil {
			reg.MergeErrors.WithLabelValues(errKind(err)).Inc()
		}
		return diffResult{TargetPath: targetPath, Err: err}
	}
	if reg != nil {
		dialect, _ := ast.DeduceFileType(targetPath)
		reg.DiffsApplied.WithLabelValues(dialect.String()).Inc()
	}
	return diffResult{TargetPath: targetPath, Output: out}
}

// errKind extracts a coarse label for the merge-error counter. A
// non-PatchError (e.g. a plain I/O failure reading the diffs dir) is
// labelled "unknown".
func errKind(err error) string {
	pe, ok := err.(*patcherrors.PatchError)
	if !ok {
		return "unknown"
	}
	return pe.Kind.String()
}

func reportResults(results []diffResult) (applied, failed int) {
	for _, r := range results {
		if r.Err != nil {
			failed++
			uiout.Errorf("%s: %v", r.DiffFile, r.Err)
			continue
		}
		applied++
		uiout.Successf("%s -> %s", r.DiffFile, r.TargetPath)
	}
	return applied, failed
}

func loadConfigOrDefault(configPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w (run 'scriptpatch init' first)", err)
	}
	return cfg, nil
}
