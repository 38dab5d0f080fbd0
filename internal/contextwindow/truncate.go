// Package contextwindow implements the budget estimate and the three-
// pass truncation algorithm of §4.6: given a conversation and a token
// budget, prune until the conversation's estimated size is at or under
// budget. The passes never drop the first message or the last four; if
// the conversation is still over budget after messages were dropped, the
// first message is replaced by a truncation marker.
package contextwindow

import (
	"fmt"

	"github.com/bhardwajRahul/krillclaw/pkg/types"
)

// Budget computes the token allowance available for conversation history:
// the context window minus the per-response cap minus the estimated cost
// of the system prompt and the tool schemas sent on every request.
func Budget(cfg types.Config, tools []types.ToolDef) int {
	overhead := types.EstimateTextTokens(cfg.SystemPrompt)
	for _, t := range tools {
		overhead += types.EstimateTextTokens(t.InputSchema)
	}
	b := cfg.MaxContextTokens - cfg.MaxTokens - overhead
	if b < 0 {
		b = 0
	}
	return b
}

// Truncate prunes conv in place under budget, running the three ordered
// passes of §4.6 until the conversation's total estimated tokens are at
// or under budget or no further pass can make progress. It returns the
// number of messages dropped, for the caller's truncation-counter
// metric.
//
// Truncation is idempotent: calling Truncate again on an already-
// truncated conversation that is still within budget is a no-op.
func Truncate(conv *types.Conversation, budget int) int {
	if conv.TotalTokens() <= budget {
		return 0
	}
	before := len(conv.Messages)

	conv.Messages = dropPass(conv.Messages, func(m types.Message) bool {
		return m.Role == types.RoleAssistant && !m.HasToolUse()
	})
	if conv.TotalTokens() <= budget {
		return before - len(conv.Messages)
	}

	conv.Messages = dropPass(conv.Messages, func(m types.Message) bool {
		return m.Role == types.RoleUser && !m.HasToolResult()
	})
	if conv.TotalTokens() <= budget {
		return before - len(conv.Messages)
	}

	conv.Messages = dropEarlySuccessive(conv.Messages, budget)
	dropped := before - len(conv.Messages)
	if dropped > 0 && total(conv.Messages) > budget && len(conv.Messages) > 0 {
		applyMarker(conv, dropped)
	}
	return dropped
}

// dropPass unconditionally removes every message matching shouldDrop,
// except the first message and the last four.
func dropPass(msgs []types.Message, shouldDrop func(types.Message) bool) []types.Message {
	if len(msgs) == 0 {
		return msgs
	}
	protectedTail := tailStart(len(msgs))

	out := make([]types.Message, 0, len(msgs))
	out = append(out, msgs[0])
	for i := 1; i < len(msgs); i++ {
		if i < protectedTail && shouldDrop(msgs[i]) {
			continue
		}
		out = append(out, msgs[i])
	}
	return out
}

// dropEarlySuccessive removes the earliest non-protected messages, one
// at a time, until the conversation fits budget or only the first
// message and the protected tail remain.
func dropEarlySuccessive(msgs []types.Message, budget int) []types.Message {
	for total(msgs) > budget {
		protectedTail := tailStart(len(msgs))
		if protectedTail <= 1 {
			break
		}
		msgs = append(msgs[:1], msgs[2:]...)
	}
	return msgs
}

// tailStart returns the index of the first protected tail message (the
// last four), or 1 if n is small enough that everything is protected.
func tailStart(n int) int {
	t := n - 4
	if t < 1 {
		t = 1
	}
	return t
}

func total(msgs []types.Message) int {
	sum := 0
	for _, m := range msgs {
		sum += m.TokenEstimate
	}
	return sum
}

// applyMarker replaces the first message with a short synthetic note
// recording how many messages were dropped, per §4.6's final fallback.
func applyMarker(conv *types.Conversation, dropped int) {
	if len(conv.Messages) == 0 {
		return
	}
	text := fmt.Sprintf("[%d earlier messages truncated to fit the context window]", dropped)
	conv.Messages[0] = types.NewMessage(types.RoleUser, types.NewTextBlock(text))
}
