// Package shared implements the tools every profile consults before its
// own table: time, a file-backed key-value store, and the bridge-
// delegated fall-through (web_search, session_*, ota_*) that forwards
// to the external bridge sidecar.
package shared

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bhardwajRahul/krillclaw/internal/tools/policy"
)

// KVStore persists string values as individual files under dir, one
// file per key. Keys are validated against policy.ValidKVKey before any
// filesystem access.
type KVStore struct {
	dir string
}

// NewKVStore builds a store rooted at dir, creating it if necessary.
func NewKVStore(dir string) (*KVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &KVStore{dir: dir}, nil
}

// Get returns the stored value for key, or ("", false) if unset.
func (s *KVStore) Get(key string) (string, bool, error) {
	if !policy.ValidKVKey(key) {
		return "", false, fmt.Errorf("invalid kv key: %q", key)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// Set stores value under key, overwriting any existing value.
func (s *KVStore) Set(key, value string) error {
	if !policy.ValidKVKey(key) {
		return fmt.Errorf("invalid kv key: %q", key)
	}
	return os.WriteFile(filepath.Join(s.dir, key), []byte(value), 0o644)
}
