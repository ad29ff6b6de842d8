// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/scriptpatch/internal/config"
	"github.com/kraklabs/scriptpatch/internal/uiout"
)

// runInit creates .scriptpatch/project.yaml with sensible defaults,
// refusing to overwrite an existing one unless --force is given.
func runInit(args []string, configPathFlag string, globals GlobalFlags) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	force := fs.Bool("force", false, "Overwrite an existing configuration")
	projectID := fs.String("project-id", "", "Project identifier (default: directory name)")
	archivePath := fs.String("archive", "game.pak", "Path to the .pak archive to patch")
	diffsDir := fs.String("diffs", "diffs", "Directory of diff files to apply")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	dir, err := os.Getwd()
	if err != nil {
		uiout.Errorf("getwd: %v", err)
		return 1
	}
	cfgPath := configPathFlag
	if cfgPath == "" {
		cfgPath = config.ConfigPath(dir)
	}

	if _, err := os.Stat(cfgPath); err == nil && !*force {
		uiout.Errorf("%s already exists (use --force to overwrite)", cfgPath)
		return 1
	}

	id := *projectID
	if id == "" {
		id = filepath.Base(dir)
	}

	cfg := config.DefaultConfig(id)
	cfg.Archive.Path = *archivePath
	cfg.Archive.DiffsDir = *diffsDir

	if err := config.SaveConfig(cfg, cfgPath); err != nil {
		uiout.Errorf("%v", err)
		return 1
	}

	if !globals.Quiet {
		uiout.Successf("created %s", cfgPath)
		uiout.Infof("edit %s to point at your archive and diffs directory, then run 'scriptpatch apply'", cfgPath)
	}
	return 0
}
