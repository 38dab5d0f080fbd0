// Package contracts holds the narrow interfaces that let the ReAct loop,
// the LLM client, and the tool dispatcher be built and tested
// independently of concrete transport/allocator/tool implementations —
// the "vtable transports" and "arena vs general allocator" abstractions
// of the design notes.
package contracts

import "context"

// Transport is the capability set §4.3 polymorphs over: {send, write,
// read, close}. A given implementation need not support every method
// meaningfully — Ble/Serial support all four; a one-shot Http send may
// implement Write/Read as no-ops backed by a single buffered exchange.
type Transport interface {
	// Send performs a one-shot request/response exchange.
	Send(ctx context.Context, body []byte) ([]byte, error)

	// Write emits bytes on the streaming path (HTTP/SSE).
	Write(ctx context.Context, body []byte) error

	// Read fills buf and returns the number of bytes read.
	Read(ctx context.Context, buf []byte) (int, error)

	// Close idempotently releases the transport.
	Close() error
}

// Allocator abstracts a bump allocator so that callers needn't depend on
// a concrete arena implementation; Free is a permitted no-op.
type Allocator interface {
	Alloc(length, align int) ([]byte, error)
	Free([]byte)
	Reset()
	Used() int
	Peak() int
}

// ToolExecutor maps one tool-use block to a result. Implementations are
// the per-profile dispatch tables of §4.5.
type ToolExecutor interface {
	Definitions() []ToolDefinition
	Execute(ctx context.Context, name, inputRaw string) (output string, isError bool)
}

// ToolDefinition mirrors types.ToolDef without importing pkg/types, to
// keep this package dependency-free for easy mocking in tests.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema string
}

// Clock abstracts time for deterministic scheduler/rate-limiter tests.
type Clock interface {
	Now() int64 // unix seconds
}
