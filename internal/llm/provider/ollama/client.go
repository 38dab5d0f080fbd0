// Package ollama implements the Ollama Chat wire dialect of §4.4: POST
// /api/chat, no auth, same body shape as OpenAI-style. Streaming is
// disabled unconditionally per spec.md's resolution of the open question
// ("the Ollama streaming path is disabled in the source with a comment
// about format differences; this spec declares Ollama non-streaming as
// the contract") — send_streaming on this provider performs one
// non-streaming call and synthesizes a single on-delta invocation with
// the full text, rather than speaking a genuine streaming wire format.
package ollama

import (
	"github.com/bhardwajRahul/krillclaw/internal/llm/provider/openai"
	"github.com/bhardwajRahul/krillclaw/pkg/types"
)

// DefaultBaseURL is the local Ollama endpoint; it has the same value as
// types.ProviderOllama.DefaultBaseURL(), which the client uses when
// cfg.BaseURL is unset.
const DefaultBaseURL = "http://localhost:11434"

// Headers returns the request headers for an Ollama call — no auth header.
func Headers() map[string]string {
	return openai.Headers("")
}

// BuildBody assembles the /api/chat request body. streaming is always
// rendered false, regardless of cfg.Streaming, per the contract above.
func BuildBody(conv types.Conversation, cfg types.Config, tools []types.ToolDef) []byte {
	return openai.BuildBody(conv, cfg, tools, false)
}

// ParseFull parses a non-streaming /api/chat response (OpenAI-shaped).
func ParseFull(data []byte) (types.ApiResponse, error) {
	return openai.ParseFull(data)
}
