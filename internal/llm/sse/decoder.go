// Package sse implements the incremental server-sent-event decoder of
// §4.4: a byte/line-driven state machine over the Anthropic event set
// (message_start, content_block_start, content_block_delta,
// content_block_stop, message_delta, message_stop, ping, error) that
// accumulates into the common content-block model.
//
// Every string the decoder retains past one event (tool id/name, text,
// tool-input fragments) is captured via a Go string conversion at the
// moment it is read out of the scanner's line buffer — which copies —
// rather than any slice aliasing the scanner's reused buffer. This is
// the decoder's one load-bearing invariant: the source's own comments
// call this out explicitly after a use-after-free fix (§9).
package sse

import (
	"bufio"
	"io"
	"strings"

	"github.com/bhardwajRahul/krillclaw/internal/jsonkit"
	"github.com/bhardwajRahul/krillclaw/pkg/types"
)

type activeBlock int

const (
	activeNone activeBlock = iota
	activeText
	activeToolUse
)

// Decoder drives the state machine. Construct one per streamed request;
// it is not reusable across requests.
type Decoder struct {
	OnTextDelta func(fragment string)

	messageID    string
	inputTokens  int
	outputTokens int
	stopReason   types.StopReason
	blocks       []types.ContentBlock

	currentEvent string
	blockIndex   int
	active       activeBlock
	textAccum    strings.Builder
	toolInput    strings.Builder
	toolID       string
	toolName     string
}

// NewDecoder constructs a Decoder; onTextDelta may be nil when the
// caller needs only the assembled response. Non-streaming responses are
// not decoded here: client.go parses them with the provider's ParseFull.
func NewDecoder(onTextDelta func(string)) *Decoder {
	return &Decoder{OnTextDelta: onTextDelta, stopReason: types.StopUnknown}
}

// Decode reads an SSE stream from r to completion (message_stop) and
// returns the accumulated ApiResponse.
func (d *Decoder) Decode(r io.Reader) (types.ApiResponse, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		done, err := d.feedLine(line)
		if err != nil {
			return types.ApiResponse{}, err
		}
		if done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return types.ApiResponse{}, types.WrapError(types.ErrParseError, "sse: stream read failed", err)
	}
	return types.ApiResponse{
		ID:           d.messageID,
		StopReason:   d.stopReason,
		Blocks:       d.blocks,
		InputTokens:  d.inputTokens,
		OutputTokens: d.outputTokens,
	}, nil
}

// feedLine processes one line of SSE framing. It returns done=true once
// message_stop has been observed.
func (d *Decoder) feedLine(line string) (done bool, err error) {
	switch {
	case strings.HasPrefix(line, "event:"):
		d.currentEvent = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		return false, nil
	case strings.HasPrefix(line, "data:"):
		data := strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " ")
		return d.handleEvent(d.currentEvent, []byte(data))
	default:
		return false, nil // blank lines and comments carry no state transition here
	}
}

func (d *Decoder) handleEvent(event string, data []byte) (done bool, err error) {
	switch event {
	case "message_start":
		if id, ok := jsonkit.ExtractString(data, "id"); ok {
			d.messageID = id
		}
		if n, ok := jsonkit.ExtractInt(data, "input_tokens"); ok {
			d.inputTokens = int(n)
		}
	case "content_block_start":
		d.onContentBlockStart(data)
	case "content_block_delta":
		d.onContentBlockDelta(data)
	case "content_block_stop":
		d.flushActiveBlock()
	case "message_delta":
		d.onMessageDelta(data)
	case "message_stop":
		return true, nil
	case "ping":
		// no state transition
	case "error":
		return false, types.NewError(types.ErrParseError, "sse: upstream error event: "+string(data))
	}
	return false, nil
}

func (d *Decoder) onContentBlockStart(data []byte) {
	if idx, ok := jsonkit.ExtractInt(data, "index"); ok {
		d.blockIndex = int(idx)
	}
	block, ok := jsonkit.ExtractRaw(data, "content_block")
	if !ok {
		return
	}
	blockType, _ := jsonkit.ExtractString([]byte(block), "type")

	if blockType == "tool_use" {
		d.flushActiveBlock() // flush any in-progress text block first
		d.active = activeToolUse
		if id, ok := jsonkit.ExtractString([]byte(block), "id"); ok {
			d.toolID = id
		}
		if name, ok := jsonkit.ExtractString([]byte(block), "name"); ok {
			d.toolName = name
		}
		d.toolInput.Reset()
		return
	}
	d.active = activeText
	d.textAccum.Reset()
}

func (d *Decoder) onContentBlockDelta(data []byte) {
	delta, ok := jsonkit.ExtractRaw(data, "delta")
	if !ok {
		return
	}
	deltaType, _ := jsonkit.ExtractString([]byte(delta), "type")
	switch deltaType {
	case "text_delta":
		if text, ok := jsonkit.ExtractString([]byte(delta), "text"); ok {
			fragment := jsonkit.Unescape(text)
			d.textAccum.WriteString(fragment)
			if d.OnTextDelta != nil {
				d.OnTextDelta(fragment)
			}
		}
	case "input_json_delta":
		if pj, ok := jsonkit.ExtractString([]byte(delta), "partial_json"); ok {
			d.toolInput.WriteString(jsonkit.Unescape(pj))
		}
	}
}

func (d *Decoder) onMessageDelta(data []byte) {
	if delta, ok := jsonkit.ExtractRaw(data, "delta"); ok {
		if sr, ok := jsonkit.ExtractString([]byte(delta), "stop_reason"); ok {
			d.stopReason = parseStopReason(sr)
		}
	}
	if usage, ok := jsonkit.ExtractRaw(data, "usage"); ok {
		if n, ok := jsonkit.ExtractInt([]byte(usage), "output_tokens"); ok {
			d.outputTokens = int(n)
		}
	}
}

func (d *Decoder) flushActiveBlock() {
	switch d.active {
	case activeText:
		if d.textAccum.Len() > 0 {
			d.blocks = append(d.blocks, types.NewTextBlock(d.textAccum.String()))
		}
		d.textAccum.Reset()
	case activeToolUse:
		inputRaw := d.toolInput.String()
		if inputRaw == "" {
			inputRaw = "{}"
		}
		d.blocks = append(d.blocks, types.NewToolUseBlock(d.toolID, d.toolName, inputRaw))
		d.toolInput.Reset()
		d.toolID = ""
		d.toolName = ""
	}
	d.active = activeNone
}

func parseStopReason(s string) types.StopReason {
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
