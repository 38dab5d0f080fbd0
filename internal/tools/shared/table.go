package shared

import (
	"context"

	"github.com/bhardwajRahul/krillclaw/internal/jsonkit"
	"github.com/bhardwajRahul/krillclaw/pkg/contracts"
)

// bridgeDelegated lists the tool names §4.5 names explicitly as
// bridge-delegated: advertised locally so the model can call them, but
// always forwarded rather than executed in-process.
var bridgeDelegated = []contracts.ToolDefinition{
	{Name: "web_search", Description: "Search the web and return a summary of results.", InputSchema: `{"type":"object","properties":{"query":{"type":"string"}},"required":["query"]}`},
	{Name: "session_save", Description: "Persist a named value for the remainder of the bridge's session.", InputSchema: `{"type":"object","properties":{"key":{"type":"string"},"value":{"type":"string"}},"required":["key","value"]}`},
	{Name: "session_load", Description: "Load a previously saved session value.", InputSchema: `{"type":"object","properties":{"key":{"type":"string"}},"required":["key"]}`},
	{Name: "ota_check", Description: "Check the bridge for a pending firmware/software update.", InputSchema: `{"type":"object","properties":{}}`},
	{Name: "ota_apply", Description: "Apply a previously checked update.", InputSchema: `{"type":"object","properties":{}}`},
}

// Table is the shared tool table every profile consults before its own:
// time, the key-value store, and the bridge-delegated names. bridge may
// be nil, in which case bridge-delegated calls report unavailable
// rather than panicking — an embedded build with no sidecar attached.
type Table struct {
	kv     *KVStore
	bridge *BridgeCaller
}

// New builds the shared table over a key-value store and an optional
// bridge caller.
func New(kv *KVStore, bridge *BridgeCaller) *Table {
	return &Table{kv: kv, bridge: bridge}
}

// Definitions returns the locally-handled tools plus the
// bridge-delegated names.
func (t *Table) Definitions() []contracts.ToolDefinition {
	defs := []contracts.ToolDefinition{
		{Name: "time", Description: "Return the current time in RFC3339.", InputSchema: `{"type":"object","properties":{}}`},
		{Name: "kv_get", Description: "Read a value from the shared key-value store.", InputSchema: `{"type":"object","properties":{"key":{"type":"string"}},"required":["key"]}`},
		{Name: "kv_set", Description: "Write a value to the shared key-value store.", InputSchema: `{"type":"object","properties":{"key":{"type":"string"},"value":{"type":"string"}},"required":["key","value"]}`},
	}
	return append(defs, bridgeDelegated...)
}

// Handles reports whether name belongs to this table, without executing
// it — the dispatcher uses this to decide precedence over the profile
// table.
func (t *Table) Handles(name string) bool {
	switch name {
	case "time", "kv_get", "kv_set":
		return true
	}
	for _, d := range bridgeDelegated {
		if d.Name == name {
			return true
		}
	}
	return false
}

// Execute dispatches name, which must satisfy Handles.
func (t *Table) Execute(ctx context.Context, name, inputRaw string) (string, bool) {
	switch name {
	case "time":
		return Now(), false
	case "kv_get":
		return t.kvGet(inputRaw)
	case "kv_set":
		return t.kvSet(inputRaw)
	default:
		return t.callBridge(ctx, name, inputRaw)
	}
}

func (t *Table) kvGet(inputRaw string) (string, bool) {
	key, _ := jsonkit.ExtractString([]byte(inputRaw), "key")
	val, found, err := t.kv.Get(key)
	if err != nil {
		return err.Error(), true
	}
	if !found {
		return "", true
	}
	return val, false
}

func (t *Table) kvSet(inputRaw string) (string, bool) {
	key, _ := jsonkit.ExtractString([]byte(inputRaw), "key")
	value, _ := jsonkit.ExtractString([]byte(inputRaw), "value")
	if err := t.kv.Set(key, jsonkit.Unescape(value)); err != nil {
		return err.Error(), true
	}
	return "ok", false
}

func (t *Table) callBridge(ctx context.Context, name, inputRaw string) (string, bool) {
	if t.bridge == nil {
		return "no bridge attached for " + name, true
	}
	return t.bridge.Call(ctx, name, inputRaw)
}
