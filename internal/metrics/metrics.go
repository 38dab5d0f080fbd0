// Package metrics exposes the runtime's prometheus collectors:
// loop iterations, tool dispatch outcomes, LLM request latency/tokens,
// and context-window truncation events.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoopIterations counts ReAct loop turns by how they ended.
	LoopIterations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krillclaw_loop_iterations_total",
			Help: "Total number of ReAct loop iterations, by stop reason",
		},
		[]string{"stop_reason"}, // end_turn/max_tokens/max_iterations/tool_use
	)

	LoopDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "krillclaw_loop_run_duration_seconds",
			Help:    "Wall-clock duration of one Loop.Run call",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~1min
		},
		[]string{"profile"},
	)

	RepeatedCallsSuppressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "krillclaw_repeated_calls_suppressed_total",
			Help: "Total number of tool calls suppressed by the signature ring's repeat detector",
		},
	)

	// LLMRequestsTotal counts provider round trips by outcome.
	LLMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krillclaw_llm_requests_total",
			Help: "Total number of LLM API requests",
		},
		[]string{"provider", "model", "status"},
	)

	LLMTokensUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krillclaw_llm_tokens_total",
			Help: "Total number of LLM tokens consumed",
		},
		[]string{"provider", "model", "type"}, // type: input/output
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "krillclaw_llm_request_duration_seconds",
			Help:    "LLM request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"provider", "model"},
	)

	// ToolCalls counts dispatcher outcomes by tool name.
	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krillclaw_tool_calls_total",
			Help: "Total number of tool calls, by tool and outcome",
		},
		[]string{"tool", "status"}, // status: ok/error
	)

	ToolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "krillclaw_tool_duration_seconds",
			Help:    "Tool execution duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"tool"},
	)

	ToolPolicyViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krillclaw_tool_policy_violations_total",
			Help: "Total number of tool calls rejected by a policy check",
		},
		[]string{"tool", "reason"}, // reason: path_denied/rate_limited/estop/bounds
	)

	// ContextTruncations counts context-window truncation passes.
	ContextTruncations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "krillclaw_context_truncations_total",
			Help: "Total number of context-window truncation passes that dropped at least one message",
		},
	)

	ContextMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "krillclaw_context_messages_dropped_total",
			Help: "Total number of messages dropped across all truncation passes",
		},
	)

	// SchedulerRuns counts scheduler-driven agent invocations.
	SchedulerRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "krillclaw_scheduler_runs_total",
			Help: "Total number of agent runs triggered by the scheduler",
		},
	)

	SchedulerHeartbeats = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "krillclaw_scheduler_heartbeats_total",
			Help: "Total number of scheduler heartbeat ticks",
		},
	)
)
