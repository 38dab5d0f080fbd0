// Package openai implements the OpenAI-compatible Chat Completions wire
// dialect of §4.4: POST /v1/chat/completions, Bearer auth, function-tool
// shape, tool_calls on assistant messages, role:"tool" result messages.
// Ollama reuses this exact body shape over a different path and with
// streaming always forced off.
package openai

import (
	"github.com/bhardwajRahul/krillclaw/internal/jsonkit"
	"github.com/bhardwajRahul/krillclaw/pkg/types"
)

// Headers returns the request headers for an OpenAI-compatible call.
// Ollama passes an empty apiKey, producing no Authorization header.
func Headers(apiKey string) map[string]string {
	h := map[string]string{"content-type": "application/json"}
	if apiKey != "" {
		h["Authorization"] = "Bearer " + apiKey
	}
	return h
}

// BuildBody assembles the Chat Completions request body for conv under
// cfg. streaming is forced false by the Ollama caller per spec.
func BuildBody(conv types.Conversation, cfg types.Config, tools []types.ToolDef, streaming bool) []byte {
	w := jsonkit.NewWriter(4096)
	w.Byte('{')
	w.Str("model").Byte(':').Str(cfg.Model).Byte(',')
	w.Str("max_tokens").Byte(':').Int(cfg.MaxTokens).Byte(',')
	w.Str("stream").Byte(':').Bool(streaming).Byte(',')
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
	writeMessages(w, conv, cfg.SystemPrompt)
	w.Byte(']')
	w.Byte('}')
	return w.Bytes()
}

func writeToolDef(w *jsonkit.Writer, t types.ToolDef) {
	w.Byte('{')
	w.Str("type").Byte(':').Str("function").Byte(',')
	w.Str("function").Byte(':').Byte('{')
	w.Str("name").Byte(':').Str(t.Name).Byte(',')
	w.Str("description").Byte(':').Str(t.Description).Byte(',')
	w.Str("parameters").Byte(':').RawString(t.InputSchema)
	w.Byte('}')
	w.Byte('}')
}

// writeMessages renders the conversation into OpenAI's flattened shape:
// the system prompt becomes a leading message; an assistant message's
// tool-use blocks become one assistant message with a tool_calls array;
// a user message's tool-result blocks each become a separate
// role:"tool" message (§4.4: "one additional message per result").
func writeMessages(w *jsonkit.Writer, conv types.Conversation, systemPrompt string) {
	first := true
	emit := func(write func(*jsonkit.Writer)) {
		if !first {
			w.Byte(',')
		}
		first = false
		write(w)
	}

	if systemPrompt != "" {
		emit(func(w *jsonkit.Writer) {
			w.Byte('{')
			w.Str("role").Byte(':').Str("system").Byte(',')
			w.Str("content").Byte(':').Str(systemPrompt)
			w.Byte('}')
		})
	}

	for _, m := range conv.Messages {
		switch m.Role {
		case types.RoleAssistant:
			emit(func(w *jsonkit.Writer) { writeAssistantMessage(w, m) })
		case types.RoleUser:
			text, results := splitUserMessage(m)
			if text != "" || len(results) == 0 {
				emit(func(w *jsonkit.Writer) {
					w.Byte('{')
					w.Str("role").Byte(':').Str("user").Byte(',')
					w.Str("content").Byte(':').Str(text)
					w.Byte('}')
				})
			}
			for _, r := range results {
				rr := r
				emit(func(w *jsonkit.Writer) { writeToolResultMessage(w, rr) })
			}
		default:
			emit(func(w *jsonkit.Writer) {
				w.Byte('{')
				w.Str("role").Byte(':').Str(string(m.Role)).Byte(',')
				w.Str("content").Byte(':').Str(concatText(m))
				w.Byte('}')
			})
		}
	}
}

func writeAssistantMessage(w *jsonkit.Writer, m types.Message) {
	text := concatText(m)
	toolUses := m.ToolUseBlocks()

	w.Byte('{')
	w.Str("role").Byte(':').Str("assistant").Byte(',')
	w.Str("content").Byte(':').Str(text)
	if len(toolUses) > 0 {
		w.Byte(',')
		w.Str("tool_calls").Byte(':').Byte('[')
		for i, b := range toolUses {
			if i > 0 {
				w.Byte(',')
			}
			w.Byte('{')
			w.Str("id").Byte(':').Str(b.ToolUseID).Byte(',')
			w.Str("type").Byte(':').Str("function").Byte(',')
			w.Str("function").Byte(':').Byte('{')
			w.Str("name").Byte(':').Str(b.ToolName).Byte(',')
			w.Str("arguments").Byte(':').Str(b.InputRaw)
			w.Byte('}')
			w.Byte('}')
		}
		w.Byte(']')
	}
	w.Byte('}')
}

func writeToolResultMessage(w *jsonkit.Writer, b types.ContentBlock) {
	w.Byte('{')
	w.Str("role").Byte(':').Str("tool").Byte(',')
	w.Str("tool_call_id").Byte(':').Str(b.ToolUseRefID).Byte(',')
	w.Str("content").Byte(':').Str(b.ResultBody)
	w.Byte('}')
}

func concatText(m types.Message) string {
	var out string
	for _, b := range m.Blocks {
		if b.Kind == types.BlockText {
			out += b.Text
		}
	}
	return out
}

func splitUserMessage(m types.Message) (text string, results []types.ContentBlock) {
	for _, b := range m.Blocks {
		switch b.Kind {
		case types.BlockText:
			text += b.Text
		case types.BlockToolResult:
			results = append(results, b)
		}
	}
	return text, results
}
