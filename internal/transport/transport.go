// Package transport implements the polymorphic byte-pipe abstraction of
// §4.3: a capability set {send, write, read, close} with Http, Ble, and
// Serial variants. Non-HTTP carriers frame every message as a 2-byte
// big-endian length prefix followed by the payload; BLE additionally
// chunks payloads over the link MTU.
//
// Ownership: a transport is owned by the LLM client for the duration of
// one request (§4.4's Design Notes, "vtable transports").
package transport

import (
	"io"
)

// MaxReassembledFrame bounds how large a single reassembled frame may be
// before ReadFrame refuses it, matching §5's "bounded by an internal
// buffer" contract for non-HTTP carriers.
const MaxReassembledFrame = 256 * 1024

// BLEMTUPayload is the assumed BLE 5.x payload MTU (§4.3 / Glossary).
const BLEMTUPayload = 244

// closeOnce makes Close idempotent for transports backed by an
// io.Closer, matching §4.3's "close() — idempotent release" contract.
type closeOnce struct {
	closer io.Closer
	closed bool
}

func (c *closeOnce) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
