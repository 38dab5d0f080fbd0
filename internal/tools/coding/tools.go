// Package coding implements the coding tool profile of §4.5: bash,
// file read/write/edit, recursive search and listing, and patch
// application. The file and search/list tools are gated by a path
// allowlist; bash and apply_patch do not check paths against it.
package coding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/bhardwajRahul/krillclaw/internal/jsonkit"
	"github.com/bhardwajRahul/krillclaw/internal/metrics"
	"github.com/bhardwajRahul/krillclaw/internal/tools/policy"
	"github.com/bhardwajRahul/krillclaw/pkg/contracts"
)

const (
	maxReadBytes    = 64 * 1024
	maxPatchBytes   = 64 * 1024
	maxSearchDepth  = 10
	maxSearchMatch  = 100
	maxListDepth    = 10
	maxListFiles    = 200
)

// Table is the coding profile's tool executor.
type Table struct {
	allowlist *policy.PathAllowlist
	sandbox   bool
}

// New builds the coding tool table. sandboxMode additionally runs bash
// with a cleared PATH; bash's working directory is not changed.
func New(allowlist *policy.PathAllowlist, sandboxMode bool) *Table {
	return &Table{allowlist: allowlist, sandbox: sandboxMode}
}

// Definitions returns the tool schemas advertised to the model.
func (t *Table) Definitions() []contracts.ToolDefinition {
	return []contracts.ToolDefinition{
		{Name: "bash", Description: "Run a shell command and return combined stdout/stderr.", InputSchema: `{"type":"object","properties":{"command":{"type":"string"}},"required":["command"]}`},
		{Name: "read_file", Description: "Read a file's contents, up to 64 KiB.", InputSchema: `{"type":"object","properties":{"path":{"type":"string"}},"required":["path"]}`},
		{Name: "write_file", Description: "Create or overwrite a file, creating parent directories as needed.", InputSchema: `{"type":"object","properties":{"path":{"type":"string"},"content":{"type":"string"}},"required":["path","content"]}`},
		{Name: "edit_file", Description: "Replace exactly one occurrence of old_string with new_string in a file.", InputSchema: `{"type":"object","properties":{"path":{"type":"string"},"old_string":{"type":"string"},"new_string":{"type":"string"}},"required":["path","old_string","new_string"]}`},
		{Name: "search", Description: "Recursively grep for a substring under a directory.", InputSchema: `{"type":"object","properties":{"root":{"type":"string"},"query":{"type":"string"}},"required":["root","query"]}`},
		{Name: "list_files", Description: "Recursively list files under a directory, with optional glob.", InputSchema: `{"type":"object","properties":{"root":{"type":"string"},"glob":{"type":"string"}},"required":["root"]}`},
		{Name: "apply_patch", Description: "Apply a unified diff via patch -p0.", InputSchema: `{"type":"object","properties":{"diff":{"type":"string"}},"required":["diff"]}`},
	}
}

// checkPath resolves path through the allowlist, recording a policy-
// violation metric labeled by tool when it falls outside every root.
func (t *Table) checkPath(tool, path string) (string, error) {
	resolved, err := t.allowlist.Check(path)
	if err != nil {
		var denied *policy.PathDeniedError
		if errors.As(err, &denied) {
			metrics.ToolPolicyViolations.WithLabelValues(tool, "path_denied").Inc()
		}
		return "", err
	}
	return resolved, nil
}

// Execute dispatches name against inputRaw.
func (t *Table) Execute(ctx context.Context, name, inputRaw string) (string, bool) {
	data := []byte(inputRaw)
	switch name {
	case "bash":
		return t.bash(ctx, data)
	case "read_file":
		return t.readFile(data)
	case "write_file":
		return t.writeFile(data)
	case "edit_file":
		return t.editFile(data)
	case "search":
		return t.search(data)
	case "list_files":
		return t.listFiles(data)
	case "apply_patch":
		return t.applyPatch(ctx, data)
	default:
		return fmt.Sprintf("unknown coding tool: %s", name), true
	}
}

func (t *Table) bash(ctx context.Context, data []byte) (string, bool) {
	command, ok := jsonkit.ExtractString(data, "command")
	if !ok {
		return "bash: missing command", true
	}
	command = jsonkit.Unescape(command)

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	if t.sandbox {
		cmd.Env = []string{"PATH="}
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.String(), err != nil
}

func (t *Table) readFile(data []byte) (string, bool) {
	path, ok := jsonkit.ExtractString(data, "path")
	if !ok {
		return "read_file: missing path", true
	}
	resolved, err := t.checkPath("read_file", jsonkit.Unescape(path))
	if err != nil {
		return err.Error(), true
	}
	f, err := os.Open(resolved)
	if err != nil {
		return err.Error(), true
	}
	defer f.Close()

	buf := make([]byte, maxReadBytes)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return err.Error(), true
	}
	return string(buf[:n]), false
}

func (t *Table) writeFile(data []byte) (string, bool) {
	path, ok := jsonkit.ExtractString(data, "path")
	if !ok {
		return "write_file: missing path", true
	}
	content, ok := jsonkit.ExtractString(data, "content")
	if !ok {
		return "write_file: missing content", true
	}
	resolved, err := t.checkPath("write_file", jsonkit.Unescape(path))
	if err != nil {
		return err.Error(), true
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return err.Error(), true
	}
	if err := os.WriteFile(resolved, []byte(jsonkit.Unescape(content)), 0o644); err != nil {
		return err.Error(), true
	}
	return "ok", false
}

func (t *Table) editFile(data []byte) (string, bool) {
	path, _ := jsonkit.ExtractString(data, "path")
	oldStr, _ := jsonkit.ExtractString(data, "old_string")
	newStr, _ := jsonkit.ExtractString(data, "new_string")
	oldStr = jsonkit.Unescape(oldStr)
	newStr = jsonkit.Unescape(newStr)

	resolved, err := t.checkPath("edit_file", jsonkit.Unescape(path))
	if err != nil {
		return err.Error(), true
	}
	content, err := os.ReadFile(resolved)
	if err != nil {
		return err.Error(), true
	}
	body := string(content)
	count := strings.Count(body, oldStr)
	if count != 1 {
		return fmt.Sprintf("edit_file: expected exactly one match, found %d", count), true
	}
	updated := strings.Replace(body, oldStr, newStr, 1)
	if err := os.WriteFile(resolved, []byte(updated), 0o644); err != nil {
		return err.Error(), true
	}
	return "ok", false
}

func (t *Table) search(data []byte) (string, bool) {
	root, _ := jsonkit.ExtractString(data, "root")
	query, _ := jsonkit.ExtractString(data, "query")
	query = jsonkit.Unescape(query)

	resolved, err := t.checkPath("search", jsonkit.Unescape(root))
	if err != nil {
		return err.Error(), true
	}

	var matches []string
	walkErr := walkBounded(resolved, maxSearchDepth, func(path string, depth int) error {
		if len(matches) >= maxSearchMatch {
			return errStop
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		head := content
		if len(head) > 512 {
			head = head[:512]
		}
		if bytes.IndexByte(head, 0) >= 0 {
			return nil
		}
		if bytes.Contains(content, []byte(query)) {
			matches = append(matches, path)
		}
		return nil
	})
	if walkErr != nil && walkErr != errStop {
		return walkErr.Error(), true
	}
	return strings.Join(matches, "\n"), false
}

func (t *Table) listFiles(data []byte) (string, bool) {
	root, _ := jsonkit.ExtractString(data, "root")
	glob, _ := jsonkit.ExtractString(data, "glob")
	glob = jsonkit.Unescape(glob)

	resolved, err := t.checkPath("list_files", jsonkit.Unescape(root))
	if err != nil {
		return err.Error(), true
	}

	var files []string
	walkErr := walkBounded(resolved, maxListDepth, func(path string, depth int) error {
		if len(files) >= maxListFiles {
			return errStop
		}
		if glob != "" && !matchesGlob(filepath.Base(path), glob) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if walkErr != nil && walkErr != errStop {
		return walkErr.Error(), true
	}
	return strings.Join(files, "\n"), false
}

func (t *Table) applyPatch(ctx context.Context, data []byte) (string, bool) {
	diff, ok := jsonkit.ExtractString(data, "diff")
	if !ok {
		return "apply_patch: missing diff", true
	}
	diff = jsonkit.Unescape(diff)
	if len(diff) > maxPatchBytes {
		return "apply_patch: diff exceeds size limit", true
	}

	tmpPath := filepath.Join(os.TempDir(), fmt.Sprintf("krillclaw-patch-%d.diff", time.Now().UnixNano()))
	if err := os.WriteFile(tmpPath, []byte(diff), 0o600); err != nil {
		return err.Error(), true
	}
	defer os.Remove(tmpPath)

	cmd := exec.CommandContext(ctx, "patch", "-p0", "-i", tmpPath)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.String(), err != nil
}

var errStop = fmt.Errorf("search/list: result cap reached")

// walkBounded walks root up to maxDepth directories deep, skipping
// dot-entries and common build directories, invoking fn for each
// regular file.
func walkBounded(root string, maxDepth int, fn func(path string, depth int) error) error {
	return walkDir(root, 0, maxDepth, fn)
}

func walkDir(dir string, depth, maxDepth int, fn func(string, int) error) error {
	if depth > maxDepth {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor" || name == "target" {
			continue
		}
		full := filepath.Join(dir, name)
		if e.IsDir() {
			if err := walkDir(full, depth+1, maxDepth, fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(full, depth); err != nil {
			return err
		}
	}
	return nil
}

// matchesGlob supports only a single leading or trailing '*' wildcard,
// per §4.5's "optional leading- or trailing-* glob".
func matchesGlob(name, glob string) bool {
	switch {
	case strings.HasPrefix(glob, "*"):
		return strings.HasSuffix(name, glob[1:])
	case strings.HasSuffix(glob, "*"):
		return strings.HasPrefix(name, glob[:len(glob)-1])
	default:
		return name == glob
	}
}
