package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveAndExhaustion(t *testing.T) {
	a := New(16)
	require.NoError(t, a.Reserve(8))
	assert.Equal(t, 8, a.Used())
	require.NoError(t, a.Reserve(8))
	assert.Equal(t, 0, a.Remaining())

	err := a.Reserve(1)
	require.Error(t, err)
	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 8, exhausted.Requested) // aligned up from 1
	assert.Equal(t, 0, exhausted.Remaining)
}

func TestUnboundedArenaNeverExhausts(t *testing.T) {
	a := New(0)
	for i := 0; i < 1000; i++ {
		require.NoError(t, a.Reserve(64))
	}
	assert.Equal(t, -1, a.Remaining())
}

func TestResetReturnsToEmptyWithoutZeroing(t *testing.T) {
	a := New(64)
	require.NoError(t, a.Reserve(64))
	assert.Equal(t, 0, a.Remaining())

	a.Reset()
	assert.Equal(t, 0, a.Used())
	assert.Equal(t, 64, a.Remaining())
}

func TestAlignmentRoundsUpToEight(t *testing.T) {
	a := New(0)
	require.NoError(t, a.Reserve(1))
	assert.Equal(t, 8, a.Used())
	require.NoError(t, a.Reserve(9))
	assert.Equal(t, 24, a.Used())
}

type node struct {
	Name string
}

func TestPoolAllocatesStableHandles(t *testing.T) {
	a := New(0)
	p := NewPool[node](a, 8)

	n1, err := p.New(8)
	require.NoError(t, err)
	n1.Name = "first"

	n2, err := p.New(8)
	require.NoError(t, err)
	n2.Name = "second"

	assert.Equal(t, 2, p.Len())
	assert.Equal(t, "first", n1.Name)
	assert.Equal(t, "second", n2.Name)
}

func TestPoolPropagatesExhaustion(t *testing.T) {
	a := New(8)
	p := NewPool[node](a, 8)

	_, err := p.New(8)
	require.NoError(t, err)

	_, err = p.New(8)
	require.Error(t, err)
}
