package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBagAccumulatesInOrder(t *testing.T) {
	var b Bag
	require.False(t, b.HasErrors())

	b.Add("a.uya", 1, 2, "first %s", "problem")
	b.Add("a.uya", 3, 0, "second problem")

	require.True(t, b.HasErrors())
	assert.Equal(t, 2, b.Len())

	strs := b.Strings()
	assert.Equal(t, "a.uya:1:2: first problem", strs[0])
	assert.Equal(t, "a.uya:3: second problem", strs[1])
}

func TestBagMerge(t *testing.T) {
	var a, b Bag
	a.Add("x.uya", 1, 1, "a1")
	b.Add("x.uya", 2, 1, "b1")

	a.Merge(&b)
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, "x.uya:2:1: b1", a.All()[1].String())
}

func TestBagMergeNil(t *testing.T) {
	var a Bag
	a.Add("x.uya", 1, 1, "a1")
	a.Merge(nil)
	assert.Equal(t, 1, a.Len())
}
