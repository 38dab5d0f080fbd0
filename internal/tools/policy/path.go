// Package policy implements the pre-dispatch guards of §4.5: path
// allowlisting, rate limiting, the KV key grammar, and the robotics
// estop latch. None of it is provider- or profile-specific; each tool
// table wires the pieces it needs.
package policy

import (
	"os"
	"path/filepath"
	"strings"
)

// PathAllowlist canonicalises a candidate path and checks it resolves
// under one of a fixed set of roots. In sandbox mode there is exactly
// one root; otherwise the process's working directory and the host
// temp directory are both permitted.
type PathAllowlist struct {
	roots []string
}

// NewPathAllowlist builds an allowlist from sandboxMode/allowedRoot per
// SPEC_FULL.md §3.1: sandbox mode restricts to the single configured
// root; otherwise the process cwd and os.TempDir() are both allowed.
func NewPathAllowlist(sandboxMode bool, allowedRoot string) (*PathAllowlist, error) {
	if sandboxMode {
		root, err := canonicalExisting(allowedRoot)
		if err != nil {
			return nil, err
		}
		return &PathAllowlist{roots: []string{root}}, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cwdReal, err := canonicalExisting(cwd)
	if err != nil {
		return nil, err
	}
	tmpReal, err := canonicalExisting(os.TempDir())
	if err != nil {
		return nil, err
	}
	return &PathAllowlist{roots: []string{cwdReal, tmpReal}}, nil
}

// Check canonicalises path and reports whether it resolves under one of
// the allowlist's roots. If path does not yet exist (the write case),
// its parent directory is canonicalised and the basename rejoined
// before the check, so a not-yet-created file under an allowed
// directory is still permitted.
func (a *PathAllowlist) Check(path string) (string, error) {
	resolved, err := canonicalMaybeMissing(path)
	if err != nil {
		return "", err
	}
	for _, root := range a.roots {
		if resolved == root || strings.HasPrefix(resolved, root+string(filepath.Separator)) {
			return resolved, nil
		}
	}
	return "", &PathDeniedError{Path: path}
}

// PathDeniedError reports a path outside every allowed root.
type PathDeniedError struct {
	Path string
}

func (e *PathDeniedError) Error() string {
	return "path not under an allowed root: " + e.Path
}

func canonicalExisting(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

func canonicalMaybeMissing(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	parent, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		return "", err
	}
	return filepath.Join(parent, filepath.Base(abs)), nil
}
