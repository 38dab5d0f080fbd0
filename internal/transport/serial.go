package transport

import (
	"context"
	"io"
)

// Serial implements contracts.Transport over an already-opened serial
// port handle (device-specific line discipline/baud configuration is out
// of scope, §1 — the caller opens `serial_port` at `serial_baud` before
// constructing this type). Messages are length-prefixed; no MTU chunking
// applies since serial has no link-layer MTU the way BLE does.
type Serial struct {
	port io.ReadWriteCloser
	co   *closeOnce
}

// NewSerial wraps an already-open serial port handle.
func NewSerial(port io.ReadWriteCloser) *Serial {
	return &Serial{port: port, co: &closeOnce{closer: port}}
}

// Send writes one length-prefixed frame and reads one back.
func (s *Serial) Send(ctx context.Context, body []byte) ([]byte, error) {
	if err := s.Write(ctx, body); err != nil {
		return nil, err
	}
	return ReadFrame(s.port, MaxReassembledFrame)
}

// Write frames body and writes it to the port.
func (s *Serial) Write(ctx context.Context, body []byte) error {
	return WriteFrame(s.port, body)
}

// Read reads one length-prefixed frame into buf.
func (s *Serial) Read(ctx context.Context, buf []byte) (int, error) {
	frame, err := ReadFrame(s.port, MaxReassembledFrame)
	if err != nil {
		return 0, err
	}
	return copy(buf, frame), nil
}

func (s *Serial) Close() error {
	return s.co.Close()
}
