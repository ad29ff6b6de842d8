package builder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/scriptpatch/pkg/ast"
	"github.com/kraklabs/scriptpatch/pkg/patcherrors"
	"github.com/kraklabs/scriptpatch/pkg/strcache"
)

func TestBuildTarget_Scr_Basic(t *testing.T) {
	cache := strcache.New()
	src := `import "a"
export int N = 5
sub Main() {
	f(1);
	use Helper();
}
`
	nodes, err := BuildTarget(cache, ast.Scr, src)
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, ast.Import, nodes[0].Flags.Kind())
	assert.Equal(t, ast.Export, nodes[1].Flags.Kind())
	assert.Equal(t, ast.SubScope, nodes[2].Flags.Kind())
	require.Len(t, nodes[2].Children, 2)
	assert.Equal(t, ast.Function, nodes[2].Children[0].Flags.Kind())
	assert.Equal(t, ast.Use, nodes[2].Children[1].Flags.Kind())
}

func TestBuildTarget_Scr_NestedFunctionBlock(t *testing.T) {
	cache := strcache.New()
	src := `sub Main() {
	outer(1) {
		inner(2);
	}
}
`
	nodes, err := BuildTarget(cache, ast.Scr, src)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	outer := nodes[0].Children[0]
	assert.Equal(t, ast.Function, outer.Flags.Kind())
	require.Len(t, outer.Children, 1)
	assert.Equal(t, ast.Function, outer.Children[0].Flags.Kind())
}

func TestBuildDiff_Scr_InsertAndAttributes(t *testing.T) {
	cache := strcache.New()
	src := "scripts/foo/bar.scr\nsub Main() { g(2)[insert]; }\n"
	nodes, err := BuildDiff(cache, ast.Scr, src)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	g := nodes[0].Children[0]
	assert.True(t, g.Flags.Any(ast.Insert))
	assert.Equal(t, 2, g.SourceLine)
}

func TestBuildDiff_NoopOnlyIsElided(t *testing.T) {
	cache := strcache.New()
	src := "scripts/foo/bar.scr\nsub Main() { f(1)[noop]; g(2)[delete]; }\n"
	nodes, err := BuildDiff(cache, ast.Scr, src)
	require.NoError(t, err)
	require.Len(t, nodes[0].Children, 1, "the noop-only f(1) should have been elided")
	assert.Equal(t, "g(2)", cache.FindValue(nodes[0].Children[0].SigID))
}

func TestBuildDiff_ImplicitNoop(t *testing.T) {
	cache := strcache.New()
	src := "scripts/foo/bar.scr\nsub Main() { f(1); }\n"
	nodes, err := BuildDiff(cache, ast.Scr, src)
	require.NoError(t, err)
	require.Empty(t, nodes[0].Children, "a bare statement with no tags is an implicit noop and gets elided")
}

func TestBuildDiff_Rename(t *testing.T) {
	cache := strcache.New()
	src := "scripts/foo/bar.scr\nsub Main() { f(1)[rename] f(2); }\n"
	nodes, err := BuildDiff(cache, ast.Scr, src)
	require.NoError(t, err)
	n := nodes[0].Children[0]
	assert.True(t, n.Flags.Any(ast.Rename))
	assert.Equal(t, "f(2)", cache.FindValue(n.NewSigID))
}

func TestBuildDiff_ExportRedefine(t *testing.T) {
	cache := strcache.New()
	src := "scripts/foo/bar.def\nexport int N[redefine] 7;\n"
	nodes, err := BuildDiff(cache, ast.Def, src)
	require.NoError(t, err)
	n := nodes[0]
	assert.True(t, n.Flags.Any(ast.Redefine))
	assert.Equal(t, "7", cache.FindValue(n.NewSigID))
}

func TestBuildTarget_Loot_MultipleSubs(t *testing.T) {
	cache := strcache.New()
	src := `sub A(int X = 1) {
	f(1);
}
sub B(float Y = 2.0) {
	g(2);
}
`
	nodes, err := BuildTarget(cache, ast.Loot, src)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, ast.SubDeclaration, nodes[0].Flags.Kind())
	assert.Equal(t, ast.SubDeclaration, nodes[1].Flags.Kind())
}

func TestBuildDiff_Loot_SubDeclToleratesEmptyParams(t *testing.T) {
	cache := strcache.New()
	src := "scripts/foo/bar.loot\nsub A() { f(1)[insert]; }\n"
	nodes, err := BuildDiff(cache, ast.Loot, src)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "sub A()", cache.FindValue(nodes[0].SigID))
}

func TestBuildTarget_Varlist(t *testing.T) {
	cache := strcache.New()
	src := `!include("a/b.scr")
VarInt("n", 1)
VarFloat("f", 1.5)
`
	nodes, err := BuildTarget(cache, ast.Varlist, src)
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, ast.Include, nodes[0].Flags.Kind())
	assert.Equal(t, ast.Vardecl, nodes[1].Flags.Kind())
}

func TestBuildTarget_Varlist_VecLengthMismatchFails(t *testing.T) {
	cache := strcache.New()
	src := `VarVec3("v", [1.0, 2.0])` + "\n"
	_, err := BuildTarget(cache, ast.Varlist, src)
	require.Error(t, err)
}

func TestBuildDiff_UnknownAttributeFails(t *testing.T) {
	cache := strcache.New()
	src := "scripts/foo/bar.scr\nsub Main() { f(1)[bogus]; }\n"
	_, err := BuildDiff(cache, ast.Scr, src)
	require.Error(t, err)

	var pe *patcherrors.PatchError
	require.True(t, errors.As(err, &pe), "every builder-originated failure must be a typed PatchError")
	assert.Equal(t, patcherrors.Syntax, pe.Kind)
}

func TestBuildTarget_Varlist_VecLengthMismatchIsSemanticError(t *testing.T) {
	cache := strcache.New()
	src := `VarVec3("v", [1.0, 2.0])` + "\n"
	_, err := BuildTarget(cache, ast.Varlist, src)
	require.Error(t, err)

	var pe *patcherrors.PatchError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, patcherrors.Semantic, pe.Kind)
}

func TestBuildDiff_AttributeTagsCaseInsensitive(t *testing.T) {
	cache := strcache.New()
	src := "scripts/foo/bar.scr\nsub Main() { f(1)[DELETE]; }\n"
	nodes, err := BuildDiff(cache, ast.Scr, src)
	require.NoError(t, err)
	assert.True(t, nodes[0].Children[0].Flags.Any(ast.Delete))
}

func TestBuildDef_RejectsNonExport(t *testing.T) {
	cache := strcache.New()
	_, err := BuildTarget(cache, ast.Def, "f(1);\n")
	require.Error(t, err)
}

func TestSplitDiffHeader(t *testing.T) {
	path, body := SplitDiffHeader("scripts/a/b.scr\nsub Main() {}\n")
	assert.Equal(t, "scripts/a/b.scr", path)
	assert.Equal(t, "sub Main() {}\n", body)
}
