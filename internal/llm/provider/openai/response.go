package openai

import (
	"github.com/bhardwajRahul/krillclaw/internal/jsonkit"
	"github.com/bhardwajRahul/krillclaw/pkg/types"
)

// ParseFull parses a single (non-streaming) Chat Completions response.
func ParseFull(data []byte) (types.ApiResponse, error) {
	id, _ := jsonkit.ExtractString(data, "id")

	usage, _ := jsonkit.ExtractRaw(data, "usage")
	inTok, _ := jsonkit.ExtractInt([]byte(usage), "prompt_tokens")
	outTok, _ := jsonkit.ExtractInt([]byte(usage), "completion_tokens")

	choicesRaw, ok := jsonkit.ExtractRaw(data, "choices")
	if !ok {
		return types.ApiResponse{}, types.NewError(types.ErrInvalidResponse, "openai: missing choices array")
	}
	choices := jsonkit.ArrayElements(choicesRaw)
	if len(choices) == 0 {
		return types.ApiResponse{}, types.NewError(types.ErrInvalidResponse, "openai: empty choices array")
	}
	first := []byte(choices[0])

	finishReason, _ := jsonkit.ExtractString(first, "finish_reason")
	message, ok := jsonkit.ExtractRaw(first, "message")
	if !ok {
		return types.ApiResponse{}, types.NewError(types.ErrInvalidResponse, "openai: missing message object")
	}
	mb := []byte(message)

	var blocks []types.ContentBlock
	if content, ok := jsonkit.ExtractString(mb, "content"); ok && content != "" {
		blocks = append(blocks, types.NewTextBlock(jsonkit.Unescape(content)))
	}
	if toolCallsRaw, ok := jsonkit.ExtractRaw(mb, "tool_calls"); ok {
		for _, tc := range jsonkit.ArrayElements(toolCallsRaw) {
			tb := []byte(tc)
			id, _ := jsonkit.ExtractString(tb, "id")
			fn, ok := jsonkit.ExtractRaw(tb, "function")
			if !ok {
				continue
			}
			fb := []byte(fn)
			name, _ := jsonkit.ExtractString(fb, "name")
			args, ok := jsonkit.ExtractString(fb, "arguments")
			if !ok {
				args = "{}"
			} else {
				args = jsonkit.Unescape(args)
			}
			blocks = append(blocks, types.NewToolUseBlock(id, name, args))
		}
	}

	return types.ApiResponse{
		ID:           id,
		StopReason:   mapFinishReason(finishReason),
		Blocks:       blocks,
		InputTokens:  int(inTok),
		OutputTokens: int(outTok),
	}, nil
}

func mapFinishReason(s string) types.StopReason {
	switch s {
	case "stop":
		return types.StopEndTurn
	case "tool_calls":
		return types.StopToolUse
	case "length":
		return types.StopMaxTokens
	default:
		return types.StopUnknown
	}
}
