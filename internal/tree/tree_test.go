package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/docket/pkg/types"
)

func TestSetGetDelete(t *testing.T) {
	root := map[string]any{}
	root = Set(root, []string{"cases", "c1"}, map[string]any{"title": "Foo"})
	root = Set(root, []string{"cases", "c2"}, map[string]any{"title": "Bar"})

	v, ok := Get(root, []string{"cases", "c1", "title"})
	require.True(t, ok)
	assert.Equal(t, "Foo", v)

	Delete(root, []string{"cases", "c1"})
	_, ok = Get(root, []string{"cases", "c1"})
	assert.False(t, ok)
	_, ok = Get(root, []string{"cases", "c2"})
	assert.True(t, ok)

	Delete(root, []string{"cases", "c2"})
	_, ok = Get(root, []string{"cases"})
	assert.False(t, ok, "empty parents are pruned")
}

func TestSetNilDeletes(t *testing.T) {
	root := Set(map[string]any{}, []string{"a", "b"}, "x")
	root = Set(root, []string{"a", "b"}, nil)
	assert.Empty(t, root)
}

func TestSetReplacesScalarParent(t *testing.T) {
	root := Set(map[string]any{}, []string{"a"}, "scalar")
	root = Set(root, []string{"a", "b"}, 1.0)
	v, ok := Get(root, []string{"a", "b"})
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
}

func TestDeleteAbsentIsNoop(t *testing.T) {
	root := Set(map[string]any{}, []string{"a", "b"}, "x")
	Delete(root, []string{"a", "zz", "q"})
	Delete(root, []string{"missing"})
	_, ok := Get(root, []string{"a", "b"})
	assert.True(t, ok)
}

func TestChildrenOrdered(t *testing.T) {
	root := map[string]any{}
	for _, k := range []string{"c", "a", "b"} {
		root = Set(root, []string{"col", k}, k)
	}
	kids := Children(root, []string{"col"})
	require.Len(t, kids, 3)
	assert.Equal(t, []types.Child{{Key: "a", Value: "a"}, {Key: "b", Value: "b"}, {Key: "c", Value: "c"}}, kids)
	assert.Empty(t, Children(root, []string{"nope"}))
}

func TestCloneIsDeep(t *testing.T) {
	orig := map[string]any{"n": map[string]any{"x": []any{1.0}}}
	c := Clone(orig).(map[string]any)
	c["n"].(map[string]any)["x"].([]any)[0] = 2.0
	assert.Equal(t, 1.0, orig["n"].(map[string]any)["x"].([]any)[0])
}

func TestValidatePath(t *testing.T) {
	assert.NoError(t, ValidatePath([]string{"cases", "k"}))
	assert.NoError(t, ValidatePath(nil))
	assert.ErrorIs(t, ValidatePath([]string{"cases", ""}), types.ErrInvalidPath)
	assert.ErrorIs(t, ValidatePath([]string{"a/b"}), types.ErrInvalidPath)
}
