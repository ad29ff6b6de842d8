package ast

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/scriptpatch/pkg/patcherrors"
	"github.com/kraklabs/scriptpatch/pkg/strcache"
)

func TestNewNode_CompareAndOrderStartEqual(t *testing.T) {
	c := strcache.New()
	n := NewNode(c, Function, "f(1)", "f(1)", 3)
	assert.Equal(t, n.CompareSigID, n.OrderSigID)
	assert.Equal(t, strcache.NullID, n.NewSigID)
	assert.Equal(t, 3, n.SourceLine)
}

func TestFlag_Predicates(t *testing.T) {
	f := Insert | Function
	assert.True(t, f.Any(Insert))
	assert.True(t, f.All(Insert|Function))
	assert.True(t, f.Only(Insert))
	assert.False(t, f.Only(Insert|Rename))
	assert.Equal(t, Function, f.Kind())
}

func TestValidateInvariants_ImportCannotDelete(t *testing.T) {
	c := strcache.New()
	n := NewNode(c, Import, `import "a"`, `import "a"`, 1)
	n.Flags |= Delete
	require.Error(t, ValidateInvariants(n, false))
}

func TestValidateInvariants_InsertAndDeleteExclusive(t *testing.T) {
	c := strcache.New()
	n := NewNode(c, Function, "f()", "f()", 1)
	n.Flags |= Insert | Delete
	require.Error(t, ValidateInvariants(n, false))
}

func TestValidateInvariants_RootSubScopeCannotInsert(t *testing.T) {
	c := strcache.New()
	n := NewNode(c, SubScope, "sub Main()", "sub Main()", 1)
	n.Flags |= Insert
	require.Error(t, ValidateInvariants(n, true))
}

func TestValidateInvariants_ReturnsTypedSemanticError(t *testing.T) {
	c := strcache.New()
	n := NewNode(c, Import, `import "a"`, `import "a"`, 7)
	n.Flags |= Delete

	err := ValidateInvariants(n, false)
	require.Error(t, err)
	var pe *patcherrors.PatchError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, patcherrors.Semantic, pe.Kind)
	assert.Equal(t, 7, pe.Line)
}

func TestDeduceFileType(t *testing.T) {
	cases := map[string]FileType{
		"scripts/foo/bar.scr": Scr,
		"scripts/foo/bar.def": Def,
		"scripts/foo/bar.loot": Loot,
		"scripts/foo/Varlist.scr": Varlist,
		"varlist.scr": Varlist,
	}
	for in, want := range cases {
		got, err := DeduceFileType(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}

	_, err := DeduceFileType("scripts/foo/bar.txt")
	require.Error(t, err)
}
