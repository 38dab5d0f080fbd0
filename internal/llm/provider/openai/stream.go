package openai

import (
	"bufio"
	"io"
	"strings"

	"github.com/bhardwajRahul/krillclaw/internal/jsonkit"
	"github.com/bhardwajRahul/krillclaw/pkg/types"
)

// toolCallAccum mirrors the teacher's tcAccumulator: OpenAI streams tool
// calls as incremental deltas keyed by array index, not id, so arguments
// must be concatenated per index until the stream ends.
type toolCallAccum struct {
	id   string
	name string
	args strings.Builder
}

// DecodeStream reads an OpenAI-style `data: {...}` SSE stream (terminated
// by a literal `data: [DONE]` line, not a named event) and accumulates it
// into the common ApiResponse shape, invoking onTextDelta for each
// content fragment observed.
func DecodeStream(r io.Reader, onTextDelta func(string)) (types.ApiResponse, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var textAccum strings.Builder
	calls := map[int]*toolCallAccum{}
	order := []int{}
	finishReason := ""
	id := ""

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " ")
		if payload == "[DONE]" {
			break
		}
		data := []byte(payload)

		if msgID, ok := jsonkit.ExtractString(data, "id"); ok && id == "" {
			id = msgID
		}

		choicesRaw, ok := jsonkit.ExtractRaw(data, "choices")
		if !ok {
			continue
		}
		choices := jsonkit.ArrayElements(choicesRaw)
		if len(choices) == 0 {
			continue
		}
		choice := []byte(choices[0])
		if fr, ok := jsonkit.ExtractString(choice, "finish_reason"); ok && fr != "" {
			finishReason = fr
		}
		delta, ok := jsonkit.ExtractRaw(choice, "delta")
		if !ok {
			continue
		}
		db := []byte(delta)
		if content, ok := jsonkit.ExtractString(db, "content"); ok {
			frag := jsonkit.Unescape(content)
			textAccum.WriteString(frag)
			if onTextDelta != nil {
				onTextDelta(frag)
			}
		}
		if tcRaw, ok := jsonkit.ExtractRaw(db, "tool_calls"); ok {
			for _, tc := range jsonkit.ArrayElements(tcRaw) {
				tb := []byte(tc)
				idx := 0
				if n, ok := jsonkit.ExtractInt(tb, "index"); ok {
					idx = int(n)
				}
				acc, exists := calls[idx]
				if !exists {
					acc = &toolCallAccum{}
					calls[idx] = acc
					order = append(order, idx)
				}
				if tcID, ok := jsonkit.ExtractString(tb, "id"); ok && tcID != "" {
					acc.id = tcID
				}
				if fn, ok := jsonkit.ExtractRaw(tb, "function"); ok {
					fb := []byte(fn)
					if name, ok := jsonkit.ExtractString(fb, "name"); ok && name != "" {
						acc.name = name
					}
					if args, ok := jsonkit.ExtractString(fb, "arguments"); ok {
						acc.args.WriteString(jsonkit.Unescape(args))
					}
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return types.ApiResponse{}, types.WrapError(types.ErrParseError, "openai: stream read failed", err)
	}

	var blocks []types.ContentBlock
	if textAccum.Len() > 0 {
		blocks = append(blocks, types.NewTextBlock(textAccum.String()))
	}
	for _, idx := range order {
		acc := calls[idx]
		blocks = append(blocks, types.NewToolUseBlock(acc.id, acc.name, acc.args.String()))
	}

	return types.ApiResponse{
		ID:         id,
		StopReason: mapFinishReason(finishReason),
		Blocks:     blocks,
	}, nil
}
