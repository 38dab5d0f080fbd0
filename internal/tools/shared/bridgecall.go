package shared

import (
	"context"

	"github.com/bhardwajRahul/krillclaw/internal/bridge"
	"github.com/bhardwajRahul/krillclaw/internal/jsonkit"
	"github.com/bhardwajRahul/krillclaw/pkg/contracts"
)

// BridgeCaller forwards a tool call to the external bridge sidecar over
// an already-open transport (Ble/Serial — the bridge is out of scope
// for this module beyond its envelope shapes) and rate-limits calls
// through a caller-supplied token bucket.
type BridgeCaller struct {
	transport contracts.Transport
	allow     func() bool
}

// NewBridgeCaller wires a transport and a rate limiter's Allow method.
func NewBridgeCaller(transport contracts.Transport, allow func() bool) *BridgeCaller {
	return &BridgeCaller{transport: transport, allow: allow}
}

// Call encodes name/inputRaw as a ToolEnvelope, sends it, and decodes
// the bridge's ToolEnvelope-shaped reply's "input" field as the result
// body. Returns is_error=true if the rate limit is exceeded or the
// round trip fails.
func (b *BridgeCaller) Call(ctx context.Context, name, inputRaw string) (output string, isError bool) {
	if b.allow != nil && !b.allow() {
		return "rate limit exceeded for bridge-delegated tools", true
	}

	req := bridge.EncodeToolEnvelope(bridge.ToolEnvelope{Name: name, Input: inputRaw})
	data, err := b.transport.Send(ctx, req)
	if err != nil {
		return "bridge call failed: " + err.Error(), true
	}

	result, ok := bridge.DecodeToolEnvelope(data)
	if !ok {
		return "bridge returned a malformed envelope", true
	}
	if errVal, ok := jsonkit.ExtractBool([]byte(result.Input), "is_error"); ok && errVal {
		output, _ := jsonkit.ExtractString([]byte(result.Input), "output")
		return output, true
	}
	return result.Input, false
}
