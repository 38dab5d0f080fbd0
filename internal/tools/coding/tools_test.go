package coding

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhardwajRahul/krillclaw/internal/tools/policy"
)

func newTestTable(t *testing.T) (*Table, string) {
	t.Helper()
	dir := t.TempDir()
	allow, err := policy.NewPathAllowlist(true, dir)
	require.NoError(t, err)
	return New(allow, true), dir
}

func TestWriteThenReadFile(t *testing.T) {
	tbl, dir := newTestTable(t)
	path := filepath.Join(dir, "hello.txt")

	out, isErr := tbl.Execute(context.Background(), "write_file", `{"path":"`+path+`","content":"hi there"}`)
	require.False(t, isErr, out)

	out, isErr = tbl.Execute(context.Background(), "read_file", `{"path":"`+path+`"}`)
	require.False(t, isErr, out)
	assert.Equal(t, "hi there", out)
}

func TestEditFileRequiresUniqueMatch(t *testing.T) {
	tbl, dir := newTestTable(t)
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("aaa bbb aaa"), 0o644))

	out, isErr := tbl.Execute(context.Background(), "edit_file", `{"path":"`+path+`","old_string":"aaa","new_string":"zzz"}`)
	assert.True(t, isErr)
	assert.Contains(t, out, "exactly one match")

	require.NoError(t, os.WriteFile(path, []byte("aaa bbb ccc"), 0o644))
	out, isErr = tbl.Execute(context.Background(), "edit_file", `{"path":"`+path+`","old_string":"aaa","new_string":"zzz"}`)
	require.False(t, isErr, out)
	content, _ := os.ReadFile(path)
	assert.Equal(t, "zzz bbb ccc", string(content))
}

func TestReadFileRejectsPathOutsideSandbox(t *testing.T) {
	tbl, _ := newTestTable(t)
	_, isErr := tbl.Execute(context.Background(), "read_file", `{"path":"/etc/passwd"}`)
	assert.True(t, isErr)
}

func TestSearchFindsSubstring(t *testing.T) {
	tbl, dir := newTestTable(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("contains NEEDLE here"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("nothing"), 0o644))

	out, isErr := tbl.Execute(context.Background(), "search", `{"root":"`+dir+`","query":"NEEDLE"}`)
	require.False(t, isErr, out)
	assert.Contains(t, out, "a.txt")
	assert.NotContains(t, out, "b.txt")
}

func TestListFilesGlobSuffix(t *testing.T) {
	tbl, dir := newTestTable(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.go"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.txt"), []byte(""), 0o644))

	out, isErr := tbl.Execute(context.Background(), "list_files", `{"root":"`+dir+`","glob":"*.go"}`)
	require.False(t, isErr, out)
	assert.Contains(t, out, "one.go")
	assert.NotContains(t, out, "two.txt")
}

func TestBashCombinesStdoutAndExitCode(t *testing.T) {
	tbl, _ := newTestTable(t)
	out, isErr := tbl.Execute(context.Background(), "bash", `{"command":"echo hi"}`)
	require.False(t, isErr, out)
	assert.Contains(t, out, "hi")

	out, isErr = tbl.Execute(context.Background(), "bash", `{"command":"exit 1"}`)
	assert.True(t, isErr)
}
