// Package anthropic implements the Claude Messages API wire dialect of
// §4.4: POST /v1/messages, auth via x-api-key + anthropic-version,
// top-level system prompt and tools, {role, content:[blocks]} messages.
package anthropic

import (
	"github.com/bhardwajRahul/krillclaw/internal/jsonkit"
	"github.com/bhardwajRahul/krillclaw/pkg/types"
)

const apiVersion = "2023-06-01"

// Headers returns the request headers for a Claude Messages API call.
func Headers(apiKey string) map[string]string {
	return map[string]string{
		"content-type":      "application/json",
		"x-api-key":         apiKey,
		"anthropic-version": apiVersion,
	}
}

// BuildBody assembles the Messages API request body for conv under cfg,
// exposing tools. The streaming flag is rendered as-is; the caller
// decides whether to hit the streaming or full-response path.
func BuildBody(conv types.Conversation, cfg types.Config, tools []types.ToolDef, streaming bool) []byte {
	w := jsonkit.NewWriter(4096)
	w.Byte('{')
	w.Str("model").Byte(':').Str(cfg.Model).Byte(',')
	w.Str("max_tokens").Byte(':').Int(cfg.MaxTokens).Byte(',')
	w.Str("stream").Byte(':').Bool(streaming).Byte(',')
	if cfg.SystemPrompt != "" {
		w.Str("system").Byte(':').Str(cfg.SystemPrompt).Byte(',')
	}
	if len(tools) > 0 {
		w.Str("tools").Byte(':').Byte('[')
		for i, t := range tools {
			if i > 0 {
				w.Byte(',')
			}
			writeToolDef(w, t)
		}
		w.Byte(']').Byte(',')
	}
	w.Str("messages").Byte(':').Byte('[')
	writeMessages(w, conv)
	w.Byte(']')
	w.Byte('}')
	return w.Bytes()
}

func writeToolDef(w *jsonkit.Writer, t types.ToolDef) {
	w.Byte('{')
	w.Str("name").Byte(':').Str(t.Name).Byte(',')
	w.Str("description").Byte(':').Str(t.Description).Byte(',')
	w.Str("input_schema").Byte(':').RawString(t.InputSchema)
	w.Byte('}')
}

func writeMessages(w *jsonkit.Writer, conv types.Conversation) {
	for i, m := range conv.Messages {
		if i > 0 {
			w.Byte(',')
		}
		w.Byte('{')
		w.Str("role").Byte(':').Str(string(m.Role)).Byte(',')
		w.Str("content").Byte(':').Byte('[')
		for j, b := range m.Blocks {
			if j > 0 {
				w.Byte(',')
			}
			writeBlock(w, b)
		}
		w.Byte(']')
		w.Byte('}')
	}
}

func writeBlock(w *jsonkit.Writer, b types.ContentBlock) {
	switch b.Kind {
	case types.BlockText:
		w.Byte('{')
		w.Str("type").Byte(':').Str("text").Byte(',')
		w.Str("text").Byte(':').Str(b.Text)
		w.Byte('}')
	case types.BlockToolUse:
		w.Byte('{')
		w.Str("type").Byte(':').Str("tool_use").Byte(',')
		w.Str("id").Byte(':').Str(b.ToolUseID).Byte(',')
		w.Str("name").Byte(':').Str(b.ToolName).Byte(',')
		w.Str("input").Byte(':').RawString(b.InputRaw)
		w.Byte('}')
	case types.BlockToolResult:
		w.Byte('{')
		w.Str("type").Byte(':').Str("tool_result").Byte(',')
		w.Str("tool_use_id").Byte(':').Str(b.ToolUseRefID).Byte(',')
		w.Str("content").Byte(':').Str(b.ResultBody).Byte(',')
		w.Str("is_error").Byte(':').Bool(b.IsError)
		w.Byte('}')
	}
}
