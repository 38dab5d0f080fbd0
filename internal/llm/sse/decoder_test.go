package sse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhardwajRahul/krillclaw/pkg/types"
)

func TestTextRoundTrip(t *testing.T) {
	stream := strings.Join([]string{
		`event: message_start`,
		`data: {"type":"message_start","message":{"id":"m","usage":{"input_tokens":5}}}`,
		``,
		`event: content_block_start`,
		`data: {"type":"content_block_start","index":0,"content_block":{"type":"text"}}`,
		``,
		`event: content_block_delta`,
		`data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"hi"}}`,
		``,
		`event: content_block_stop`,
		`data: {"type":"content_block_stop","index":0}`,
		``,
		`event: message_delta`,
		`data: {"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":1}}`,
		``,
		`event: message_stop`,
		`data: {"type":"message_stop"}`,
		``,
	}, "\n")

	var deltas []string
	d := NewDecoder(func(frag string) { deltas = append(deltas, frag) })
	resp, err := d.Decode(strings.NewReader(stream))
	require.NoError(t, err)

	require.Len(t, resp.Blocks, 1)
	assert.Equal(t, types.BlockText, resp.Blocks[0].Kind)
	assert.Equal(t, "hi", resp.Blocks[0].Text)
	assert.Equal(t, types.StopEndTurn, resp.StopReason)
	assert.Equal(t, 5, resp.InputTokens)
	assert.Equal(t, 1, resp.OutputTokens)
	assert.Equal(t, "hi", strings.Join(deltas, ""))
}

func TestToolUseRoundTrip(t *testing.T) {
	stream := strings.Join([]string{
		`event: message_start`,
		`data: {"type":"message_start","message":{"id":"m","usage":{"input_tokens":3}}}`,
		``,
		`event: content_block_start`,
		`data: {"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"toolu_x","name":"bash"}}`,
		``,
		`event: content_block_delta`,
		`data: {"type":"content_block_delta","delta":{"type":"input_json_delta","partial_json":"{\"command"}}`,
		``,
		`event: content_block_delta`,
		`data: {"type":"content_block_delta","delta":{"type":"input_json_delta","partial_json":"\":\"ls\""}}`,
		``,
		`event: content_block_delta`,
		`data: {"type":"content_block_delta","delta":{"type":"input_json_delta","partial_json":"}"}}`,
		``,
		`event: content_block_stop`,
		`data: {"type":"content_block_stop","index":0}`,
		``,
		`event: message_delta`,
		`data: {"type":"message_delta","delta":{"stop_reason":"tool_use"},"usage":{"output_tokens":2}}`,
		``,
		`event: message_stop`,
		`data: {"type":"message_stop"}`,
		``,
	}, "\n")

	d := NewDecoder(nil)
	resp, err := d.Decode(strings.NewReader(stream))
	require.NoError(t, err)

	require.Len(t, resp.Blocks, 1)
	b := resp.Blocks[0]
	assert.Equal(t, types.BlockToolUse, b.Kind)
	assert.Equal(t, "bash", b.ToolName)
	assert.Equal(t, "toolu_x", b.ToolUseID)
	assert.Equal(t, `{"command":"ls"}`, b.InputRaw)
	assert.Equal(t, types.StopToolUse, resp.StopReason)
}

func TestEmptyToolInputDefaultsToEmptyObject(t *testing.T) {
	stream := strings.Join([]string{
		`event: content_block_start`,
		`data: {"type":"content_block_start","index":0,"content_block":{"type":"tool_use","id":"t1","name":"noop"}}`,
		``,
		`event: content_block_stop`,
		`data: {"type":"content_block_stop","index":0}`,
		``,
		`event: message_stop`,
		`data: {"type":"message_stop"}`,
		``,
	}, "\n")

	d := NewDecoder(nil)
	resp, err := d.Decode(strings.NewReader(stream))
	require.NoError(t, err)
	require.Len(t, resp.Blocks, 1)
	assert.Equal(t, "{}", resp.Blocks[0].InputRaw)
}
