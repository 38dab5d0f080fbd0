package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocAlignment(t *testing.T) {
	a := New(Cap4K)
	b, err := a.Alloc(10, 8)
	require.NoError(t, err)
	require.Len(t, b, 10)
}

func TestAllocMonotonicUsedAndPeak(t *testing.T) {
	a := New(64)
	_, err := a.Alloc(16, 1)
	require.NoError(t, err)
	assert.Equal(t, 16, a.Used())
	assert.Equal(t, 16, a.Peak())

	_, err = a.Alloc(16, 1)
	require.NoError(t, err)
	assert.Equal(t, 32, a.Used())
	assert.Equal(t, 32, a.Peak())
}

func TestResetZeroesUsedButKeepsPeak(t *testing.T) {
	a := New(64)
	_, err := a.Alloc(40, 1)
	require.NoError(t, err)
	a.Reset()
	assert.Equal(t, 0, a.Used())
	assert.Equal(t, 40, a.Peak())
}

func TestOverflowDetectedWithoutWraparound(t *testing.T) {
	a := New(16)
	_, err := a.Alloc(17, 1)
	require.Error(t, err)

	_, err = a.Alloc(16, 1)
	require.NoError(t, err)
	_, err = a.Alloc(1, 1)
	require.Error(t, err)
}

func TestAlignmentPadding(t *testing.T) {
	a := New(64)
	_, err := a.Alloc(1, 1) // offset now 1
	require.NoError(t, err)
	b, err := a.Alloc(8, 8) // must pad to offset 8
	require.NoError(t, err)
	require.Len(t, b, 8)
	assert.Equal(t, 16, a.Used())
}
