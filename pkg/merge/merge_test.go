package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/scriptpatch/pkg/ast"
	"github.com/kraklabs/scriptpatch/pkg/strcache"
)

func sig(c *strcache.Cache, n *ast.Node) string { return c.FindValue(n.SigID) }

func TestScr_UnmentionedImportSurvives(t *testing.T) {
	c := strcache.New()
	imp := ast.NewNode(c, ast.Import, `import "a"`, `import "a"`, 1)
	root := ast.NewNode(c, ast.SubScope, "sub Main()", "sub Main()", 2)
	target := []*ast.Node{imp, root}

	diffRoot := ast.NewNode(c, ast.SubScope, "sub Main()", "sub Main()", 1)
	diffRoot.Flags |= ast.Noop
	diff := []*ast.Node{diffRoot}

	out, err := Scr(c, target, diff, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, ast.Import, out[0].Flags.Kind())
}

func TestMergeNode_RenameReplacesSigKeepsIdentity(t *testing.T) {
	c := strcache.New()
	t1 := ast.NewNode(c, ast.Function, "f(1)", "f(1)", 1)
	d1 := ast.NewNode(c, ast.Function, "f(1)", "f(1)", 1)
	d1.Flags |= ast.Rename
	d1.NewSigID = c.FindOrAdd("f(2)")

	out, err := mergeNode(c, t1, d1, nil)
	require.NoError(t, err)
	assert.Equal(t, "f(2)", sig(c, out))
	assert.Equal(t, t1.CompareSigID, out.CompareSigID)
}

func TestMergeNode_ExportRedefineReplacesValue(t *testing.T) {
	c := strcache.New()
	t1 := ast.NewNode(c, ast.Export, "export int N = 5", "export int N", 1)
	d1 := ast.NewNode(c, ast.Export, "export int N", "export int N", 1)
	d1.Flags |= ast.Redefine
	d1.NewSigID = c.FindOrAdd("7")

	out, err := mergeNode(c, t1, d1, nil)
	require.NoError(t, err)
	assert.Equal(t, "export int N = 7", sig(c, out))
}

func TestMergeSequence_DeleteDropsNode(t *testing.T) {
	c := strcache.New()
	t1 := ast.NewNode(c, ast.Function, "f(1)", "f(1)", 1)
	t2 := ast.NewNode(c, ast.Function, "g(2)", "g(2)", 2)
	d1 := ast.NewNode(c, ast.Function, "f(1)", "f(1)", 1)
	d1.Flags |= ast.Delete

	out, err := mergeSequence(c, []*ast.Node{t1, t2}, []*ast.Node{d1}, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "g(2)", sig(c, out[0]))
}

func TestMergeSequence_InsertAddsNewNode(t *testing.T) {
	c := strcache.New()
	t1 := ast.NewNode(c, ast.Function, "f(1)", "f(1)", 1)
	d1 := ast.NewNode(c, ast.Function, "h(3)", "h(3)", 2)
	d1.Flags |= ast.Insert

	out, err := mergeSequence(c, []*ast.Node{t1}, []*ast.Node{d1}, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
}

func TestMergeSequence_DeleteMissDegradesToWarningNotError(t *testing.T) {
	c := strcache.New()
	t1 := ast.NewNode(c, ast.Function, "f(1)", "f(1)", 1)
	d1 := ast.NewNode(c, ast.Function, "ghost(9)", "ghost(9)", 2)
	d1.Flags |= ast.Delete

	out, err := mergeSequence(c, []*ast.Node{t1}, []*ast.Node{d1}, nil)
	require.NoError(t, err)
	require.Len(t, out, 1, "the unmatched delete is dropped with a warning, target is otherwise unchanged")
	assert.Equal(t, "f(1)", sig(c, out[0]))
}

func TestMergeSequence_UnmatchedNonInsertIsError(t *testing.T) {
	c := strcache.New()
	t1 := ast.NewNode(c, ast.Function, "f(1)", "f(1)", 1)
	d1 := ast.NewNode(c, ast.Function, "h(3)", "h(3)", 2)
	d1.Flags |= ast.Noop

	_, err := mergeSequence(c, []*ast.Node{t1}, []*ast.Node{d1}, nil)
	require.Error(t, err)
}

func TestMergeSequence_DoubleMatchIsError(t *testing.T) {
	c := strcache.New()
	t1 := ast.NewNode(c, ast.Function, "f(1)", "f(1)", 1)
	d1 := ast.NewNode(c, ast.Function, "f(1)", "f(1)", 1)
	d1.Flags |= ast.Noop
	d2 := ast.NewNode(c, ast.Function, "f(1)", "f(1)", 2)
	d2.Flags |= ast.Noop

	_, err := mergeSequence(c, []*ast.Node{t1}, []*ast.Node{d1, d2}, nil)
	require.Error(t, err)
}

func TestLoot_SubDeclarationMatchesByNameWhenParamsOmitted(t *testing.T) {
	c := strcache.New()
	targetSub := ast.NewNode(c, ast.SubDeclaration, "sub A(int X = 1)", "sub A(int X = 1)", 1)
	inner := ast.NewNode(c, ast.Function, "f(1)", "f(1)", 2)
	targetSub.Children = []*ast.Node{inner}
	target := []*ast.Node{targetSub}

	diffSub := ast.NewNode(c, ast.SubDeclaration, "sub A()", "sub A()", 1)
	insertedFn := ast.NewNode(c, ast.Function, "g(2)", "g(2)", 2)
	insertedFn.Flags |= ast.Insert
	diffSub.Children = []*ast.Node{insertedFn}

	out, err := Loot(c, target, []*ast.Node{diffSub}, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0].Children, 2)
}

func TestMergeNode_BodyRedefineReplacesChildrenWholesale(t *testing.T) {
	c := strcache.New()
	oldChild := ast.NewNode(c, ast.Function, "old(1)", "old(1)", 2)
	t1 := ast.NewNode(c, ast.SubDeclaration, "sub A()", "sub A()", 1)
	t1.Children = []*ast.Node{oldChild}

	newChild := ast.NewNode(c, ast.Function, "new(1)", "new(1)", 2)
	d1 := ast.NewNode(c, ast.SubDeclaration, "sub A()", "sub A()", 1)
	d1.Flags |= ast.Redefine
	d1.Children = []*ast.Node{newChild}

	out, err := mergeNode(c, t1, d1, nil)
	require.NoError(t, err)
	require.Len(t, out.Children, 1)
	assert.Equal(t, "new(1)", sig(c, out.Children[0]))
}
