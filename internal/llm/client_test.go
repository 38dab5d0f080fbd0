package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhardwajRahul/krillclaw/pkg/contracts"
	"github.com/bhardwajRahul/krillclaw/pkg/types"
)

// fakeTransport returns a fixed Send response and/or a fixed stream body
// on Write/Read, so the client can be exercised without a real socket.
type fakeTransport struct {
	sendBody   []byte
	sendErr    error
	streamBody string
	readPos    int
	lastSent   []byte
}

func (f *fakeTransport) Send(ctx context.Context, body []byte) ([]byte, error) {
	f.lastSent = body
	return f.sendBody, f.sendErr
}

func (f *fakeTransport) Write(ctx context.Context, body []byte) error {
	f.lastSent = body
	return nil
}

func (f *fakeTransport) Read(ctx context.Context, buf []byte) (int, error) {
	remaining := f.streamBody[f.readPos:]
	if remaining == "" {
		return 0, nil
	}
	n := copy(buf, remaining)
	f.readPos += n
	return n, nil
}

func (f *fakeTransport) Close() error { return nil }

func newTestClient(t *testing.T, provider types.Provider, tr *fakeTransport) *Client {
	t.Helper()
	cfg := types.DefaultConfig()
	cfg.Provider = provider
	c := New(cfg, nil)
	c.WithTransport(func(headers map[string]string) contracts.Transport { return tr })
	return c
}

func TestSendClaudeFullResponse(t *testing.T) {
	tr := &fakeTransport{sendBody: []byte(
		`{"id":"m1","stop_reason":"end_turn","usage":{"input_tokens":4,"output_tokens":2},` +
			`"content":[{"type":"text","text":"hello"}]}`)}
	c := newTestClient(t, types.ProviderClaude, tr)

	conv := types.NewMessage(types.RoleUser, types.NewTextBlock("hi"))
	resp, err := c.Send(context.Background(), types.Conversation{Messages: []types.Message{conv}})
	require.NoError(t, err)
	require.Len(t, resp.Blocks, 1)
	assert.Equal(t, "hello", resp.Blocks[0].Text)
	assert.Equal(t, types.StopEndTurn, resp.StopReason)
	assert.Contains(t, string(tr.lastSent), `"model"`)
}

func TestSendStreamingClaudeInvokesDeltas(t *testing.T) {
	stream := strings.Join([]string{
		`event: content_block_start`,
		`data: {"type":"content_block_start","index":0,"content_block":{"type":"text"}}`,
		``,
		`event: content_block_delta`,
		`data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"yo"}}`,
		``,
		`event: content_block_stop`,
		`data: {"type":"content_block_stop","index":0}`,
		``,
		`event: message_stop`,
		`data: {"type":"message_stop"}`,
		``,
	}, "\n")
	tr := &fakeTransport{streamBody: stream}
	c := newTestClient(t, types.ProviderClaude, tr)

	var got []string
	resp, err := c.SendStreaming(context.Background(), types.Conversation{}, func(s string) {
		got = append(got, s)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"yo"}, got)
	assert.Equal(t, "yo", resp.Blocks[0].Text)
}

func TestSendStreamingOllamaSynthesizesSingleDelta(t *testing.T) {
	tr := &fakeTransport{sendBody: []byte(
		`{"id":"o1","choices":[{"finish_reason":"stop","message":{"content":"done"}}]}`)}
	c := newTestClient(t, types.ProviderOllama, tr)

	var got []string
	resp, err := c.SendStreaming(context.Background(), types.Conversation{}, func(s string) {
		got = append(got, s)
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "done", got[0])
	assert.Equal(t, types.StopEndTurn, resp.StopReason)
	assert.NotContains(t, string(tr.lastSent), `"stream":true`)
}

func TestSendOpenAIToolCallResponse(t *testing.T) {
	tr := &fakeTransport{sendBody: []byte(
		`{"id":"c1","choices":[{"finish_reason":"tool_calls","message":{"content":"",` +
			`"tool_calls":[{"id":"call_1","function":{"name":"bash","arguments":"{\"cmd\":\"ls\"}"}}]}}]}`)}
	c := newTestClient(t, types.ProviderOpenAIStyle, tr)

	resp, err := c.Send(context.Background(), types.Conversation{})
	require.NoError(t, err)
	require.Len(t, resp.Blocks, 1)
	assert.Equal(t, types.BlockToolUse, resp.Blocks[0].Kind)
	assert.Equal(t, "bash", resp.Blocks[0].ToolName)
	assert.Equal(t, types.StopToolUse, resp.StopReason)
}
