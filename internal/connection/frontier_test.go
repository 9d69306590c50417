package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontier_FIFOAndReconstruction(t *testing.T) {
	f := newFrontier(1)
	root, ok := f.pop()
	require.True(t, ok)
	assert.Empty(t, f.connection(root))

	f.push(2, root)
	f.push(3, root)

	first, _ := f.pop()
	f.push(4, first)
	second, _ := f.pop()
	third, _ := f.pop()

	assert.Equal(t, Connection{2}, f.connection(first))
	assert.Equal(t, Connection{3}, f.connection(second))
	assert.Equal(t, Connection{2, 4}, f.connection(third))

	_, ok = f.pop()
	assert.False(t, ok)
	assert.Len(t, f.entries, 4)
}

func TestFrontier_DepthNeverDecreases(t *testing.T) {
	f := newFrontier(0)
	last := 0
	for i := 0; i < 50; i++ {
		idx, ok := f.pop()
		require.True(t, ok)
		depth := f.entries[idx].depth
		assert.GreaterOrEqual(t, depth, last)
		last = depth
		f.push(f.id(idx)*2+1, idx)
		f.push(f.id(idx)*2+2, idx)
	}
}
