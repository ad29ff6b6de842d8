// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kraklabs/scriptpatch/internal/uiout"
	"github.com/kraklabs/scriptpatch/pkg/archive"
	"github.com/kraklabs/scriptpatch/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

const watchDebounce = 1 * time.Second

// runWatch watches the configured diffs dir and re-applies the full
// diff set, debounced, whenever a file is created or written there.
func runWatch(args []string, configPath string, globals GlobalFlags) int {
	cfg, err := loadConfigOrDefault(configPath)
	if err != nil {
		uiout.Errorf("%v", err)
		return 1
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		uiout.Errorf("starting watcher: %v", err)
		return 1
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(cfg.Archive.DiffsDir); err != nil {
		uiout.Errorf("watching %s: %v", cfg.Archive.DiffsDir, err)
		return 1
	}

	logger := newLogger(cfg, globals)
	reg := metrics.NewRegistry(prometheus.NewRegistry())
	fm := archive.New([]string{cfg.Archive.Path})

	apply := func() {
		diffFiles, err := loadDiffFiles(cfg.Archive.DiffsDir)
		if err != nil {
			uiout.Errorf("%v", err)
			return
		}
		results, report, commitErr := runDiffs(diffFiles, fm, true, logger, reg, globals)
		applied, failed := reportResults(results)
		if report != nil {
			for archivePath, paths := range report.Written {
				uiout.Infof("%s: wrote %d entries", archivePath, len(paths))
			}
		}
		if commitErr != nil {
			uiout.Errorf("commit: %v", commitErr)
			return
		}
		uiout.Infof("watch: applied %d diffs, %d failed", applied, failed)
	}

	uiout.Header("watching " + cfg.Archive.DiffsDir)
	apply()

	var debounceTimer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return 0
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.NewTimer(watchDebounce)
			timerCh = debounceTimer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return 0
			}
			uiout.Warningf("watcher: %v", err)
		case <-timerCh:
			timerCh = nil
			apply()
		}
	}
}
