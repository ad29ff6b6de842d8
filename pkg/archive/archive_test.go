package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePak(t *testing.T, dir, name string, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	w := zip.NewWriter(f)
	for entryName, body := range entries {
		out, err := w.Create(entryName)
		require.NoError(t, err)
		_, err = out.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func readPakEntry(t *testing.T, path, entryName string) string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	for _, f := range r.File {
		if f.Name == entryName {
			rc, err := f.Open()
			require.NoError(t, err)
			defer func() { _ = rc.Close() }()
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(data)
		}
	}
	t.Fatalf("entry %q not found in %q", entryName, path)
	return ""
}

func TestReadTarget_FindsEntryInFirstArchiveThatHasIt(t *testing.T) {
	dir := t.TempDir()
	a := writePak(t, dir, "a.pak", map[string]string{"scripts/Foo.scr": "sub Main() {}\n"})
	b := writePak(t, dir, "b.pak", map[string]string{"scripts/Bar.scr": "sub Other() {}\n"})

	m := New([]string{a, b})
	text, err := m.ReadTarget("scripts/Bar.scr")
	require.NoError(t, err)
	assert.Equal(t, "sub Other() {}\n", text)
}

func TestReadTarget_IsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	a := writePak(t, dir, "a.pak", map[string]string{"Scripts/Foo.SCR": "x"})

	m := New([]string{a})
	text, err := m.ReadTarget("scripts/foo.scr")
	require.NoError(t, err)
	assert.Equal(t, "x", text)
}

func TestReadTarget_MissingEverywhereIsIOError(t *testing.T) {
	dir := t.TempDir()
	a := writePak(t, dir, "a.pak", map[string]string{"scripts/Foo.scr": "x"})

	m := New([]string{a})
	_, err := m.ReadTarget("scripts/Ghost.scr")
	require.Error(t, err)
}

func TestCommit_ReplacesEntryInOwningArchiveOnly(t *testing.T) {
	dir := t.TempDir()
	a := writePak(t, dir, "a.pak", map[string]string{
		"scripts/Foo.scr": "old foo",
		"scripts/Baz.scr": "untouched",
	})
	b := writePak(t, dir, "b.pak", map[string]string{"scripts/Bar.scr": "old bar"})

	m := New([]string{a, b})
	report, err := m.Commit([]Write{
		{TargetPath: "scripts/Foo.scr", Text: "new foo"},
		{TargetPath: "scripts/Bar.scr", Text: "new bar"},
	})
	require.NoError(t, err)

	assert.Equal(t, "new foo", readPakEntry(t, a, "scripts/Foo.scr"))
	assert.Equal(t, "untouched", readPakEntry(t, a, "scripts/Baz.scr"))
	assert.Equal(t, "new bar", readPakEntry(t, b, "scripts/Bar.scr"))

	assert.ElementsMatch(t, []string{"scripts/Foo.scr"}, report.Written[a])
	assert.ElementsMatch(t, []string{"scripts/Bar.scr"}, report.Written[b])
}

func TestCommit_CreatesNoNewEntries(t *testing.T) {
	dir := t.TempDir()
	a := writePak(t, dir, "a.pak", map[string]string{"scripts/Foo.scr": "old"})

	m := New([]string{a})
	_, err := m.Commit([]Write{{TargetPath: "scripts/Ghost.scr", Text: "new"}})
	require.Error(t, err, "a target path absent from every archive must not be created")
}

func TestCommit_PartialFailureReportsWhatSucceeded(t *testing.T) {
	dir := t.TempDir()
	a := writePak(t, dir, "a.pak", map[string]string{"scripts/Foo.scr": "old foo"})

	m := New([]string{a})
	report, err := m.Commit([]Write{
		{TargetPath: "scripts/Foo.scr", Text: "new foo"},
		{TargetPath: "scripts/Ghost.scr", Text: "new ghost"},
	})
	require.Error(t, err)
	assert.Equal(t, "new foo", readPakEntry(t, a, "scripts/Foo.scr"),
		"the write that did find its archive must still land on disk")
	assert.ElementsMatch(t, []string{"scripts/Foo.scr"}, report.Written[a])
}

func TestCommit_LeavesNoTempFilesBehind(t *testing.T) {
	dir := t.TempDir()
	a := writePak(t, dir, "a.pak", map[string]string{"scripts/Foo.scr": "old"})

	m := New([]string{a})
	_, err := m.Commit([]Write{{TargetPath: "scripts/Foo.scr", Text: "new"}})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.Equal(t, "a.pak", e.Name(), "no stray temp archive should remain in the directory")
	}
}
