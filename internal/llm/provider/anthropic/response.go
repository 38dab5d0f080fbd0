package anthropic

import (
	"github.com/bhardwajRahul/krillclaw/internal/jsonkit"
	"github.com/bhardwajRahul/krillclaw/pkg/types"
)

// ParseFull parses a single (non-streaming) Messages API JSON response.
func ParseFull(data []byte) (types.ApiResponse, error) {
	id, _ := jsonkit.ExtractString(data, "id")

	usage, _ := jsonkit.ExtractRaw(data, "usage")
	inTok, _ := jsonkit.ExtractInt([]byte(usage), "input_tokens")
	outTok, _ := jsonkit.ExtractInt([]byte(usage), "output_tokens")

	stopReasonStr, _ := jsonkit.ExtractString(data, "stop_reason")

	contentRaw, ok := jsonkit.ExtractRaw(data, "content")
	if !ok {
		return types.ApiResponse{}, types.NewError(types.ErrInvalidResponse, "anthropic: missing content array")
	}

	var blocks []types.ContentBlock
	for _, elem := range jsonkit.ArrayElements(contentRaw) {
		eb := []byte(elem)
		kind, _ := jsonkit.ExtractString(eb, "type")
		switch kind {
		case "text":
			text, _ := jsonkit.ExtractString(eb, "text")
			blocks = append(blocks, types.NewTextBlock(jsonkit.Unescape(text)))
		case "tool_use":
			id, _ := jsonkit.ExtractString(eb, "id")
			name, _ := jsonkit.ExtractString(eb, "name")
			input, ok := jsonkit.ExtractRaw(eb, "input")
			if !ok {
				input = "{}"
			}
			blocks = append(blocks, types.NewToolUseBlock(id, name, input))
		}
	}

	return types.ApiResponse{
		ID:           id,
		StopReason:   mapStopReason(stopReasonStr),
		Blocks:       blocks,
		InputTokens:  int(inTok),
		OutputTokens: int(outTok),
	}, nil
}

func mapStopReason(s string) types.StopReason {
	switch s {
	case "end_turn":
		return types.StopEndTurn
	case "tool_use":
		return types.StopToolUse
	case "max_tokens":
		return types.StopMaxTokens
	default:
		return types.StopUnknown
	}
}
