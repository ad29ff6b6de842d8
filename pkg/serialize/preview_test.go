package serialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/scriptpatch/pkg/ast"
	"github.com/kraklabs/scriptpatch/pkg/strcache"
)

func TestTreePreview_InsertedNodeIsNew(t *testing.T) {
	c := strcache.New()
	target := []*ast.Node{ast.NewNode(c, ast.Function, "f(1)", "f(1)", 1)}
	inserted := ast.NewNode(c, ast.Function, "g(2)", "g(2)", 2)
	result := []*ast.Node{target[0], inserted}

	lines := TreePreview(result, target, c)
	require.Len(t, lines, 2)
	assert.Equal(t, Unchanged, lines[0].Status)
	assert.Equal(t, New, lines[1].Status)
}

func TestTreePreview_RenamedNodeIsChanged(t *testing.T) {
	c := strcache.New()
	target := []*ast.Node{ast.NewNode(c, ast.Function, "f(1)", "f(1)", 1)}
	renamed := ast.NewNode(c, ast.Function, "f(1)", "f(1)", 1)
	renamed.SigID = c.FindOrAdd("f(2)")
	result := []*ast.Node{renamed}

	lines := TreePreview(result, target, c)
	require.Len(t, lines, 1)
	assert.Equal(t, Changed, lines[0].Status)
	assert.Equal(t, "f(2);", lines[0].Text)
}

func TestTreePreview_NestedChildIsComparedAgainstMatchingParent(t *testing.T) {
	c := strcache.New()
	oldChild := ast.NewNode(c, ast.Function, "f(1)", "f(1)", 2)
	targetSub := ast.NewNode(c, ast.SubDeclaration, "sub A()", "sub A()", 1)
	targetSub.Children = []*ast.Node{oldChild}

	newChild := ast.NewNode(c, ast.Function, "f(1)", "f(1)", 2)
	newChild.SigID = c.FindOrAdd("f(9)")
	resultSub := ast.NewNode(c, ast.SubDeclaration, "sub A()", "sub A()", 1)
	resultSub.Children = []*ast.Node{newChild}

	lines := TreePreview([]*ast.Node{resultSub}, []*ast.Node{targetSub}, c)
	require.Len(t, lines, 3)
	assert.Equal(t, Unchanged, lines[0].Status, "the sub header itself is unchanged")
	assert.Equal(t, Changed, lines[1].Status, "the renamed child is changed")
}
