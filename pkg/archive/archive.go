// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package archive implements the FileManager collaborator: locating a
// diff's target text inside an ordered list of .pak (zip) archives and
// writing patched text back into whichever archive already held the
// entry. It is deliberately the only package in this module that
// touches a filesystem archive format — the parser never sees a zip
// handle, only strings.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/scriptpatch/pkg/patcherrors"
)

// FileManager resolves target text from, and commits patched text back
// into, an ordered list of archives. Implementations are expected to be
// internally thread-safe; the parser core treats a FileManager as a
// synchronous blackbox collaborator.
type FileManager interface {
	// ReadTarget returns the text of the first archive entry whose name
	// case-insensitively equals targetPath. IOError if no archive in
	// the manager's list contains a matching entry.
	ReadTarget(targetPath string) (string, error)

	// Commit writes each (target_path, patched_text) pair into the
	// first archive that already contains that entry, case-insensitive,
	// replacing the existing entry in place. It creates no new entries.
	// Commit always returns a CommitReport describing what succeeded,
	// even when the returned error is non-nil.
	Commit(writes []Write) (*CommitReport, error)
}

// Write is one (target_path, patched_text) pair to commit.
type Write struct {
	TargetPath string
	Text       string
}

// CommitReport lists, per archive path, which target paths were
// successfully rewritten. A commit that fails partway still returns the
// entries it managed to write before the failure.
type CommitReport struct {
	Written map[string][]string // archive path -> target paths written
}

func newCommitReport() *CommitReport {
	return &CommitReport{Written: make(map[string][]string)}
}

func (r *CommitReport) record(archivePath, targetPath string) {
	r.Written[archivePath] = append(r.Written[archivePath], targetPath)
}

// PakManager is a FileManager backed by an ordered list of .pak (zip)
// archives on disk, searched in the order given to New.
type PakManager struct {
	paths []string
}

// New builds a PakManager over paths, searched in order: the first
// archive that contains a case-insensitive match wins, for both reads
// and commits.
func New(paths []string) *PakManager {
	cp := make([]string, len(paths))
	copy(cp, paths)
	return &PakManager{paths: cp}
}

// ReadTarget implements FileManager.
func (m *PakManager) ReadTarget(targetPath string) (string, error) {
	for _, archivePath := range m.paths {
		text, found, err := readEntry(archivePath, targetPath)
		if err != nil {
			return "", err
		}
		if found {
			return text, nil
		}
	}
	return "", patcherrors.New(patcherrors.IO,
		fmt.Sprintf("no archive among %d contains an entry named %q", len(m.paths), targetPath))
}

func readEntry(archivePath, targetPath string) (text string, found bool, err error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", false, patcherrors.Wrap(patcherrors.IO, 0,
			fmt.Sprintf("opening archive %q", archivePath), err)
	}
	defer func() { _ = r.Close() }()

	f := findEntry(r.File, targetPath)
	if f == nil {
		return "", false, nil
	}

	rc, err := f.Open()
	if err != nil {
		return "", false, patcherrors.Wrap(patcherrors.IO, 0,
			fmt.Sprintf("reading entry %q from %q", f.Name, archivePath), err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", false, patcherrors.Wrap(patcherrors.IO, 0,
			fmt.Sprintf("reading entry %q from %q", f.Name, archivePath), err)
	}
	return string(data), true, nil
}

func findEntry(files []*zip.File, targetPath string) *zip.File {
	for _, f := range files {
		if strings.EqualFold(f.Name, targetPath) {
			return f
		}
	}
	return nil
}

// Commit implements FileManager. Each write lands in the first archive
// (in manager order) that already contains a case-insensitively
// matching entry; an archive is rewritten at most once per Commit call
// even if several writes target it. A write with no matching archive
// anywhere does not stop the others: every write that has an owning
// archive is still committed, and Commit then returns an IOError naming
// the unmatched paths. An error opening or rewriting an archive stops
// the commit at that archive; archives already rewritten stay on disk
// and are recorded in the returned report — Commit never rolls back
// prior archives on a later failure.
func (m *PakManager) Commit(writes []Write) (*CommitReport, error) {
	report := newCommitReport()

	remaining := make([]Write, len(writes))
	copy(remaining, writes)

	for _, archivePath := range m.paths {
		if len(remaining) == 0 {
			break
		}
		claimed, rest, err := splitByArchive(archivePath, remaining)
		if err != nil {
			return report, err
		}
		if len(claimed) == 0 {
			continue
		}
		if err := rewriteArchive(archivePath, claimed); err != nil {
			return report, err
		}
		for _, w := range claimed {
			report.record(archivePath, w.TargetPath)
		}
		remaining = rest
	}

	if len(remaining) > 0 {
		names := make([]string, len(remaining))
		for i, w := range remaining {
			names[i] = w.TargetPath
		}
		return report, patcherrors.New(patcherrors.IO,
			fmt.Sprintf("no archive contains an entry for: %s", strings.Join(names, ", ")))
	}
	return report, nil
}

// splitByArchive partitions writes into those whose target path exists
// as an entry in archivePath and those that don't.
func splitByArchive(archivePath string, writes []Write) (claimed, rest []Write, err error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, nil, patcherrors.Wrap(patcherrors.IO, 0,
			fmt.Sprintf("opening archive %q", archivePath), err)
	}
	defer func() { _ = r.Close() }()

	for _, w := range writes {
		if findEntry(r.File, w.TargetPath) != nil {
			claimed = append(claimed, w)
		} else {
			rest = append(rest, w)
		}
	}
	return claimed, rest, nil
}

// rewriteArchive replaces the given entries in archivePath. zip has no
// in-place entry update, so the whole archive is copied into a sibling
// temp file (every original entry preserved byte-for-byte except the
// ones being replaced) and the temp file is renamed over the original
// once fully written. The temp file is always removed on any exit path
// that doesn't end in a successful rename, and both zip handles are
// always closed regardless of outcome.
func rewriteArchive(archivePath string, writes []Write) (err error) {
	byName := make(map[string]string, len(writes))
	for _, w := range writes {
		byName[strings.ToLower(w.TargetPath)] = w.Text
	}

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return patcherrors.Wrap(patcherrors.IO, 0,
			fmt.Sprintf("opening archive %q", archivePath), err)
	}
	defer func() { _ = r.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(archivePath), ".scriptpatch-*.pak")
	if err != nil {
		return patcherrors.Wrap(patcherrors.IO, 0, "creating temp archive", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	w := zip.NewWriter(tmp)
	writeErr := copyArchiveWithReplacements(w, r.File, byName)
	closeErr := w.Close()
	syncErr := tmp.Close()

	if writeErr != nil {
		return patcherrors.Wrap(patcherrors.IO, 0,
			fmt.Sprintf("rewriting archive %q", archivePath), writeErr)
	}
	if closeErr != nil {
		return patcherrors.Wrap(patcherrors.IO, 0,
			fmt.Sprintf("finalising rewritten archive %q", archivePath), closeErr)
	}
	if syncErr != nil {
		return patcherrors.Wrap(patcherrors.IO, 0,
			fmt.Sprintf("flushing rewritten archive %q", archivePath), syncErr)
	}

	if err := os.Rename(tmpPath, archivePath); err != nil {
		return patcherrors.Wrap(patcherrors.IO, 0,
			fmt.Sprintf("committing rewritten archive %q", archivePath), err)
	}
	return nil
}

func copyArchiveWithReplacements(w *zip.Writer, files []*zip.File, byName map[string]string) error {
	for _, f := range files {
		if replacement, ok := byName[strings.ToLower(f.Name)]; ok {
			out, err := w.Create(f.Name)
			if err != nil {
				return err
			}
			if _, err := io.WriteString(out, replacement); err != nil {
				return err
			}
			continue
		}

		if err := copyEntryVerbatim(w, f); err != nil {
			return err
		}
	}
	return nil
}

func copyEntryVerbatim(w *zip.Writer, f *zip.File) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	out, err := w.CreateHeader(&f.FileHeader)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, src)
	return err
}
