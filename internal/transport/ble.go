package transport

import (
	"context"
	"io"

	"github.com/bhardwajRahul/krillclaw/pkg/types"
)

// BLE implements contracts.Transport over an already-connected GATT
// characteristic pipe (opened by the out-of-process bridge — BLE
// scanning and connection setup are out of scope, §1). Each outbound
// chunk is wrapped in a 2-byte length-prefix frame; the chunk itself
// carries the [chunk_index, total_chunks] MTU header of §4.3.
//
// Only the single-frame case (a request/response small enough to fit in
// one MTU chunk) is supported end-to-end. Multi-chunk reassembly is an
// acknowledged gap (§9 open questions) — Send returns an error rather
// than guessing a reassembly contract when a peer sends total_chunks > 1.
type BLE struct {
	pipe io.ReadWriteCloser
	co   *closeOnce
}

// NewBLE wraps an already-open GATT read/write pipe.
func NewBLE(pipe io.ReadWriteCloser) *BLE {
	return &BLE{pipe: pipe, co: &closeOnce{closer: pipe}}
}

// Send chunks and writes body, then reads and reassembles the response.
func (b *BLE) Send(ctx context.Context, body []byte) ([]byte, error) {
	if err := b.Write(ctx, body); err != nil {
		return nil, err
	}
	chunk, err := ReadFrame(b.pipe, MaxReassembledFrame)
	if err != nil {
		return nil, err
	}
	return ReassembleBLE([][]byte{chunk})
}

// Write chunks body to the BLE MTU and frames each chunk onto the pipe.
// Only a single-chunk payload is actually deliverable by this transport
// (see the type doc); larger payloads fail fast rather than silently
// truncating.
func (b *BLE) Write(ctx context.Context, body []byte) error {
	chunks := ChunkBLE(body)
	if len(chunks) > 1 {
		return types.NewError(types.ErrInvalidResponse, "ble: payload exceeds single-chunk MTU, multi-chunk send is unsupported")
	}
	return WriteFrame(b.pipe, chunks[0])
}

// Read reads one length-prefixed BLE chunk, stripping its 2-byte MTU
// header, into buf.
func (b *BLE) Read(ctx context.Context, buf []byte) (int, error) {
	chunk, err := ReadFrame(b.pipe, MaxReassembledFrame)
	if err != nil {
		return 0, err
	}
	payload, err := ReassembleBLE([][]byte{chunk})
	if err != nil {
		return 0, err
	}
	if len(payload) > len(buf) {
		return 0, types.NewError(types.ErrInvalidResponse, "ble: response larger than read buffer")
	}
	return copy(buf, payload), nil
}

func (b *BLE) Close() error {
	return b.co.Close()
}
