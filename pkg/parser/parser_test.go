package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Insert_EndToEnd(t *testing.T) {
	p := New(nil)
	require.NoError(t, p.SetDiff("scripts/foo/bar.scr\nsub Main() { g(2)[insert]; }\n"))
	assert.Equal(t, "scripts/foo/bar.scr", p.GetTargetPath())
	require.NoError(t, p.SetTarget("sub Main() {\n\tf(1);\n}\n"))

	out, err := p.Parse()
	require.NoError(t, err)
	assert.Equal(t, "sub Main() {\n\tg(2);\n\tf(1);\n}", out)
}

func TestParser_EmptyDiffRoundTrips(t *testing.T) {
	p := New(nil)
	require.NoError(t, p.SetDiff("scripts/foo/bar.def\n"))
	require.NoError(t, p.SetTarget("export int N = 5;\n"))

	out, err := p.Parse()
	require.NoError(t, err)
	assert.Equal(t, "export int N = 5;", out)
}

func TestParser_SetDiffResetsEverything(t *testing.T) {
	p := New(nil)
	require.NoError(t, p.SetDiff("scripts/foo/bar.def\n"))
	require.NoError(t, p.SetTarget("export int N = 5;\n"))

	require.NoError(t, p.SetDiff("scripts/foo/baz.def\n"))
	assert.Equal(t, "scripts/foo/baz.def", p.GetTargetPath())

	_, err := p.Parse()
	require.Error(t, err, "target from the previous diff must not survive a new SetDiff")
}

func TestParser_ParseBeforeSetTargetErrors(t *testing.T) {
	p := New(nil)
	require.NoError(t, p.SetDiff("scripts/foo/bar.def\n"))
	_, err := p.Parse()
	require.Error(t, err)
}

func TestParser_SetTargetBeforeSetDiffErrors(t *testing.T) {
	p := New(nil)
	err := p.SetTarget("export int N = 5;\n")
	require.Error(t, err)
}

func TestParser_MergeTree_ExposesResultAndTargetForPreview(t *testing.T) {
	p := New(nil)
	require.NoError(t, p.SetDiff("scripts/foo/bar.scr\nsub Main() { g(2)[insert]; }\n"))
	require.NoError(t, p.SetTarget("sub Main() {\n\tf(1);\n}\n"))

	result, target, cache, err := p.MergeTree()
	require.NoError(t, err)
	require.Len(t, target, 1)
	require.Len(t, result, 1)
	require.Len(t, result[0].Children, 2)
	assert.Equal(t, "g(2)", cache.FindValue(result[0].Children[0].SigID))
}

func TestParser_Reset_AllowsFreshDiff(t *testing.T) {
	p := New(nil)
	require.NoError(t, p.SetDiff("scripts/foo/bar.def\n"))
	p.Reset()
	assert.Equal(t, "", p.GetTargetPath())
	require.NoError(t, p.SetDiff("scripts/foo/bar.def\n"))
}
