package contextwindow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhardwajRahul/krillclaw/pkg/types"
)

func bigText(n int) string {
	return strings.Repeat("x", n)
}

func TestBudgetSubtractsOverhead(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.MaxContextTokens = 1000
	cfg.MaxTokens = 200
	cfg.SystemPrompt = bigText(400) // 100 tokens
	tools := []types.ToolDef{{InputSchema: bigText(200)}} // 50 tokens
	assert.Equal(t, 1000-200-150, Budget(cfg, tools))
}

func TestBudgetFloorsAtZero(t *testing.T) {
	cfg := types.Config{MaxContextTokens: 10, MaxTokens: 500}
	assert.Equal(t, 0, Budget(cfg, nil))
}

func TestTruncateNoOpUnderBudget(t *testing.T) {
	conv := &types.Conversation{Messages: []types.Message{
		types.NewMessage(types.RoleUser, types.NewTextBlock("hi")),
	}}
	dropped := Truncate(conv, 10_000)
	assert.Equal(t, 0, dropped)
	require.Len(t, conv.Messages, 1)
}

func TestTruncateDropsToollessAssistantMessagesFirst(t *testing.T) {
	msgs := []types.Message{
		types.NewMessage(types.RoleUser, types.NewTextBlock(bigText(40))),
	}
	// middle filler: an assistant message with no tool-use, large enough
	// to blow the budget, surrounded by enough messages to exceed the
	// protected last-four window.
	msgs = append(msgs, types.NewMessage(types.RoleAssistant, types.NewTextBlock(bigText(4000))))
	for i := 0; i < 6; i++ {
		msgs = append(msgs, types.NewMessage(types.RoleUser, types.NewTextBlock("pad")))
		msgs = append(msgs, types.NewMessage(types.RoleAssistant, types.NewTextBlock("pad")))
	}
	conv := &types.Conversation{Messages: msgs}

	budget := conv.TotalTokens() - 100 // force truncation
	dropped := Truncate(conv, budget)

	assert.Greater(t, dropped, 0)
	assert.LessOrEqual(t, conv.TotalTokens(), budget)
	// the big toolless assistant message (index 1) should be gone.
	for _, m := range conv.Messages {
		for _, b := range m.Blocks {
			assert.NotEqual(t, bigText(4000), b.Text)
		}
	}
}

func TestTruncateMarksFirstAndPreservesLastFour(t *testing.T) {
	var msgs []types.Message
	for i := 0; i < 20; i++ {
		msgs = append(msgs, types.NewMessage(types.RoleUser, types.NewTextBlock(bigText(40))))
	}
	conv := &types.Conversation{Messages: msgs}
	lastFour := append([]types.Message{}, conv.Messages[len(conv.Messages)-4:]...)

	Truncate(conv, 5)

	require.GreaterOrEqual(t, len(conv.Messages), 5)
	// Still over budget after dropping 15 messages, so the first message
	// is replaced by the truncation marker.
	assert.Equal(t, "[15 earlier messages truncated to fit the context window]", conv.Messages[0].Blocks[0].Text)
	tail := conv.Messages[len(conv.Messages)-4:]
	for i := range lastFour {
		assert.Equal(t, lastFour[i].TokenEstimate, tail[i].TokenEstimate)
	}
}

func TestTruncateIsIdempotent(t *testing.T) {
	var msgs []types.Message
	for i := 0; i < 20; i++ {
		msgs = append(msgs, types.NewMessage(types.RoleUser, types.NewTextBlock(bigText(40))))
	}
	conv := &types.Conversation{Messages: msgs}
	Truncate(conv, 5)
	firstPass := append([]types.Message{}, conv.Messages...)
	Truncate(conv, 5)
	assert.Equal(t, len(firstPass), len(conv.Messages))
}
