package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathAllowlistSandboxModeRejectsEscape(t *testing.T) {
	dir := t.TempDir()
	a, err := NewPathAllowlist(true, dir)
	require.NoError(t, err)

	ok, err := a.Check(filepath.Join(dir, "file.txt"))
	require.NoError(t, err)
	assert.NotEmpty(t, ok)

	_, err = a.Check("/etc/passwd")
	assert.Error(t, err)
}

func TestPathAllowlistAllowsNotYetExistingWriteTarget(t *testing.T) {
	dir := t.TempDir()
	a, err := NewPathAllowlist(true, dir)
	require.NoError(t, err)

	target := filepath.Join(dir, "does-not-exist-yet.txt")
	_, err = os.Stat(target)
	require.True(t, os.IsNotExist(err))

	resolved, err := a.Check(target)
	require.NoError(t, err)
	assert.Equal(t, "does-not-exist-yet.txt", filepath.Base(resolved))
}

func TestValidKVKey(t *testing.T) {
	cases := map[string]bool{
		"simple_key":     true,
		"a.b-c_9":        true,
		"":                false,
		"has/slash":      false,
		"has..dots":      false,
		"spaces bad":     false,
	}
	for key, want := range cases {
		assert.Equal(t, want, ValidKVKey(key), "key=%q", key)
	}
}

func TestTokenBucketExhaustsAndRefills(t *testing.T) {
	tick := int64(0)
	now := func() int64 { return tick }
	b := NewTokenBucket(2, now)

	assert.True(t, b.Allow())
	assert.True(t, b.Allow())
	assert.False(t, b.Allow())

	tick += int64(30 * 1e9) // 30s later, refills at rate/sec
	assert.True(t, b.Allow())
}

func TestSecondRingLimitsPerSecond(t *testing.T) {
	tick := int64(100)
	now := func() int64 { return tick }
	r := NewSecondRing(3, now)

	assert.True(t, r.Allow())
	assert.True(t, r.Allow())
	assert.True(t, r.Allow())
	assert.False(t, r.Allow())

	tick++
	assert.True(t, r.Allow())
}

func TestEstopLatch(t *testing.T) {
	var e Estop
	assert.False(t, e.Active())
	e.Trip()
	assert.True(t, e.Active())
	e.Reset()
	assert.False(t, e.Active())
}
