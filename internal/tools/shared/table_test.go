package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSharedTable(t *testing.T) *Table {
	t.Helper()
	kv, err := NewKVStore(t.TempDir())
	require.NoError(t, err)
	return New(kv, nil)
}

func TestSharedTableHandlesLocalNames(t *testing.T) {
	tbl := newTestSharedTable(t)
	for _, name := range []string{"time", "kv_get", "kv_set", "web_search", "session_save", "ota_check"} {
		assert.True(t, tbl.Handles(name), name)
	}
	assert.False(t, tbl.Handles("bash"))
}

func TestSharedTableKvRoundTrip(t *testing.T) {
	tbl := newTestSharedTable(t)
	out, isErr := tbl.Execute(context.Background(), "kv_set", `{"key":"room","value":"kitchen"}`)
	require.False(t, isErr, out)

	out, isErr = tbl.Execute(context.Background(), "kv_get", `{"key":"room"}`)
	require.False(t, isErr, out)
	assert.Equal(t, "kitchen", out)
}

func TestSharedTableBridgeDelegatedWithoutBridgeReportsUnavailable(t *testing.T) {
	tbl := newTestSharedTable(t)
	out, isErr := tbl.Execute(context.Background(), "web_search", `{"query":"go modules"}`)
	assert.True(t, isErr)
	assert.Contains(t, out, "no bridge attached")
}

func TestSharedTableTimeReturnsRFC3339(t *testing.T) {
	tbl := newTestSharedTable(t)
	out, isErr := tbl.Execute(context.Background(), "time", `{}`)
	require.False(t, isErr, out)
	assert.Contains(t, out, "T")
}
