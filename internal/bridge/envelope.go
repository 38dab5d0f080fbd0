// Package bridge defines only the RPC envelope shapes exchanged with the
// out-of-process sidecar that performs BLE scanning, MQTT, and hardware
// I/O (§4.3, §6). The bridge's own behaviour is out of scope for this
// module (§1) — it is an external collaborator behind these shapes.
package bridge

import "github.com/bhardwajRahul/krillclaw/internal/jsonkit"

// EnvelopeType discriminates the two envelope shapes carried over
// BLE/serial.
type EnvelopeType string

const (
	EnvelopeAPI  EnvelopeType = "api"
	EnvelopeTool EnvelopeType = "tool"
)

// APIEnvelope wraps a provider request/response for non-HTTP carriers:
// {"type":"api","provider":...,"body":<raw>}.
type APIEnvelope struct {
	Provider string
	Body     string // raw JSON body, copied through unescaped
}

// ToolEnvelope wraps a bridge-delegated tool call:
// {"type":"tool","name":...,"input":<raw>}.
type ToolEnvelope struct {
	Name  string
	Input string // raw JSON input, copied through unescaped
}

// EncodeAPIEnvelope writes the RPC envelope bytes for an API call.
func EncodeAPIEnvelope(e APIEnvelope) []byte {
	w := jsonkit.NewWriter(len(e.Body) + 64)
	w.Byte('{')
	w.Str("type").Byte(':').Str(string(EnvelopeAPI)).Byte(',')
	w.Str("provider").Byte(':').Str(e.Provider).Byte(',')
	w.Str("body").Byte(':').RawString(e.Body)
	w.Byte('}')
	return w.Bytes()
}

// EncodeToolEnvelope writes the RPC envelope bytes for a tool call.
func EncodeToolEnvelope(e ToolEnvelope) []byte {
	w := jsonkit.NewWriter(len(e.Input) + 64)
	w.Byte('{')
	w.Str("type").Byte(':').Str(string(EnvelopeTool)).Byte(',')
	w.Str("name").Byte(':').Str(e.Name).Byte(',')
	w.Str("input").Byte(':').RawString(e.Input)
	w.Byte('}')
	return w.Bytes()
}

// DecodeEnvelopeType extracts the "type" discriminator from a raw
// envelope so the caller can dispatch to the right decode path.
func DecodeEnvelopeType(raw []byte) (EnvelopeType, bool) {
	s, ok := jsonkit.ExtractString(raw, "type")
	if !ok {
		return "", false
	}
	return EnvelopeType(s), true
}

// DecodeAPIEnvelope parses an API envelope's fields from raw bytes.
func DecodeAPIEnvelope(raw []byte) (APIEnvelope, bool) {
	provider, ok := jsonkit.ExtractString(raw, "provider")
	if !ok {
		return APIEnvelope{}, false
	}
	body, ok := jsonkit.ExtractRaw(raw, "body")
	if !ok {
		if s, sok := jsonkit.ExtractString(raw, "body"); sok {
			body = s
		} else {
			return APIEnvelope{}, false
		}
	}
	return APIEnvelope{Provider: provider, Body: body}, true
}

// DecodeToolEnvelope parses a tool envelope's fields from raw bytes.
func DecodeToolEnvelope(raw []byte) (ToolEnvelope, bool) {
	name, ok := jsonkit.ExtractString(raw, "name")
	if !ok {
		return ToolEnvelope{}, false
	}
	input, ok := jsonkit.ExtractRaw(raw, "input")
	if !ok {
		input = "{}"
	}
	return ToolEnvelope{Name: name, Input: input}, true
}
