// Package agent implements the ReAct loop of §4.7: a bounded
// think-act-observe cycle that drives an LLM client against a tool
// executor, appending tool results back into the conversation as a
// single user message per iteration, and breaking out of repeated
// identical tool calls via an 8-slot FNV-1a signature ring.
package agent

import (
	"context"
	"time"

	"github.com/bhardwajRahul/krillclaw/internal/contextwindow"
	"github.com/bhardwajRahul/krillclaw/internal/logging"
	"github.com/bhardwajRahul/krillclaw/internal/metrics"
	"github.com/bhardwajRahul/krillclaw/pkg/contracts"
	"github.com/bhardwajRahul/krillclaw/pkg/types"
)

// maxIterations is the loop's absolute ceiling, independent of
// config.max_turns; whichever bound is smaller wins.
const maxIterations = 10

// repeatedCallBody is the synthetic tool-result body substituted for a
// call that matches a prior call at least repeatThreshold times,
// instead of dispatching the tool again.
const repeatedCallBody = "repeated identical tool call — try a different approach"

// modelCaller is the subset of llm.Client the loop depends on, kept
// narrow so the loop can be tested without a real transport.
type modelCaller interface {
	Send(ctx context.Context, conv types.Conversation) (types.ApiResponse, error)
	SendStreaming(ctx context.Context, conv types.Conversation, onTextDelta func(string)) (types.ApiResponse, error)
}

// outcome classifies why one iteration's model call ended, per the
// Classify(response) branches of §4.7's state diagram.
type outcome int

const (
	outcomeDone outcome = iota
	outcomeMaxTokens
	outcomeNeedsObservation
)

func classify(resp types.ApiResponse) outcome {
	if hasToolUse(resp) {
		return outcomeNeedsObservation
	}
	if resp.StopReason == types.StopMaxTokens {
		return outcomeMaxTokens
	}
	return outcomeDone
}

func hasToolUse(resp types.ApiResponse) bool {
	for _, b := range resp.Blocks {
		if b.Kind == types.BlockToolUse {
			return true
		}
	}
	return false
}

// Result is the outcome of one Run call: the final assistant text (if
// any), why the loop ended, and how many iterations it took.
type Result struct {
	Text       string
	StopReason types.StopReason
	Iterations int
	Warning    string // set when the loop hit its iteration ceiling or a model call failed
}

// Loop drives the think-act-observe cycle against one model and one
// tool executor, over one mutable conversation.
type Loop struct {
	client   modelCaller
	executor contracts.ToolExecutor
	cfg      types.Config
	tools    []types.ToolDef

	onTextDelta func(string)
	onToolCall  func(name string)
	audit       *logging.AuditLogger
}

// WithAudit attaches an audit logger; the loop records a LogTruncation
// entry, tagged with the correlation id carried on Run's context,
// whenever a context-window truncation pass actually drops a message.
func (l *Loop) WithAudit(a *logging.AuditLogger) *Loop {
	l.audit = a
	return l
}

// New constructs a Loop. onTextDelta (may be nil) receives streamed text
// fragments; onToolCall (may be nil) is invoked once per dispatched or
// suppressed tool call, for audit logging.
func New(client modelCaller, executor contracts.ToolExecutor, cfg types.Config, tools []types.ToolDef, onTextDelta func(string), onToolCall func(string)) *Loop {
	return &Loop{client: client, executor: executor, cfg: cfg, tools: tools, onTextDelta: onTextDelta, onToolCall: onToolCall}
}

// Run executes the loop over conv (which it appends prompt to and
// mutates as it runs) until Done, MaxTokens, or the iteration ceiling.
func (l *Loop) Run(ctx context.Context, conv *types.Conversation, prompt string) Result {
	start := time.Now()
	defer func() {
		metrics.LoopDuration.WithLabelValues(string(l.cfg.ToolProfile)).Observe(time.Since(start).Seconds())
	}()

	conv.Append(types.NewMessage(types.RoleUser, types.NewTextBlock(prompt)))

	ring := &signatureRing{}
	ceiling := maxIterations
	if l.cfg.MaxTurns > 0 && l.cfg.MaxTurns < ceiling {
		ceiling = l.cfg.MaxTurns
	}

	budget := contextwindow.Budget(l.cfg, l.tools)

	for iter := 1; iter <= ceiling; iter++ {
		if dropped := contextwindow.Truncate(conv, budget); dropped > 0 {
			metrics.ContextTruncations.Inc()
			metrics.ContextMessagesDropped.Add(float64(dropped))
			if l.audit != nil {
				l.audit.LogTruncation(logging.CorrelationIDFromContext(ctx), dropped)
			}
		}

		resp, err := l.callModel(ctx, *conv)
		if err != nil {
			metrics.LoopIterations.WithLabelValues(string(types.StopUnknown)).Inc()
			return Result{StopReason: types.StopUnknown, Iterations: iter, Warning: err.Error()}
		}

		switch classify(resp) {
		case outcomeDone:
			text := firstText(resp)
			conv.Append(types.NewMessage(types.RoleAssistant, resp.Blocks...))
			metrics.LoopIterations.WithLabelValues(string(resp.StopReason)).Inc()
			return Result{Text: text, StopReason: resp.StopReason, Iterations: iter}

		case outcomeMaxTokens:
			text := firstText(resp)
			conv.Append(types.NewMessage(types.RoleAssistant, resp.Blocks...))
			metrics.LoopIterations.WithLabelValues(string(types.StopMaxTokens)).Inc()
			return Result{Text: text, StopReason: types.StopMaxTokens, Iterations: iter}

		case outcomeNeedsObservation:
			conv.Append(types.NewMessage(types.RoleAssistant, resp.Blocks...))
			results := l.executeToolUses(ctx, resp.Blocks, ring)
			conv.Append(types.NewMessage(types.RoleUser, results...))
			metrics.LoopIterations.WithLabelValues(string(types.StopToolUse)).Inc()
		}
	}

	metrics.LoopIterations.WithLabelValues("max_iterations").Inc()
	return Result{
		StopReason: types.StopUnknown,
		Iterations: ceiling,
		Warning:    "reached iteration ceiling without a terminal response",
	}
}

func (l *Loop) callModel(ctx context.Context, conv types.Conversation) (types.ApiResponse, error) {
	if l.cfg.Streaming && l.onTextDelta != nil {
		return l.client.SendStreaming(ctx, conv, l.onTextDelta)
	}
	return l.client.Send(ctx, conv)
}

// executeToolUses runs every tool-use block in resp in emission order,
// substituting the repeated-call message instead of dispatching when
// the ring has already seen the same (name, input) pair twice.
func (l *Loop) executeToolUses(ctx context.Context, blocks []types.ContentBlock, ring *signatureRing) []types.ContentBlock {
	var results []types.ContentBlock
	for _, b := range blocks {
		if b.Kind != types.BlockToolUse {
			continue
		}
		if l.onToolCall != nil {
			l.onToolCall(b.ToolName)
		}

		sig := newSignature(b.ToolName, b.InputRaw)
		if ring.isRepeat(sig) {
			metrics.RepeatedCallsSuppressed.Inc()
			results = append(results, types.NewToolResultBlock(b.ToolUseID, repeatedCallBody, true))
			continue
		}

		start := time.Now()
		output, isError := l.executor.Execute(ctx, b.ToolName, b.InputRaw)
		metrics.ToolDuration.WithLabelValues(b.ToolName).Observe(time.Since(start).Seconds())
		status := "ok"
		if isError {
			status = "error"
		}
		metrics.ToolCalls.WithLabelValues(b.ToolName, status).Inc()
		results = append(results, types.NewToolResultBlock(b.ToolUseID, output, isError))
	}
	return results
}

func firstText(resp types.ApiResponse) string {
	var out string
	for _, b := range resp.Blocks {
		if b.Kind == types.BlockText {
			out += b.Text
		}
	}
	return out
}
