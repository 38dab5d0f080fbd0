package transport

import (
	"encoding/binary"
	"io"

	"github.com/bhardwajRahul/krillclaw/pkg/types"
)

// WriteFrame writes a 2-byte big-endian length prefix followed by
// payload to w, for non-HTTP carriers (§4.3).
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > 0xFFFF {
		return types.NewError(types.ErrHTTPError, "transport: payload exceeds 16-bit frame length")
	}
	var hdr [2]byte
	binary.BigEndian.PutUint16(hdr[:], uint16(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return types.WrapError(types.ErrConnectionRefused, "transport: frame header write failed", err)
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err := w.Write(payload); err != nil {
		return types.WrapError(types.ErrConnectionRefused, "transport: frame payload write failed", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame from r. It rejects frames
// larger than maxSize before allocating a buffer for them.
func ReadFrame(r io.Reader, maxSize int) ([]byte, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, types.WrapError(types.ErrConnectionRefused, "transport: frame header read failed", err)
	}
	n := int(binary.BigEndian.Uint16(hdr[:]))
	if n > maxSize {
		return nil, types.NewError(types.ErrInvalidResponse, "transport: frame exceeds maximum reassembly size")
	}
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, types.WrapError(types.ErrConnectionRefused, "transport: frame payload read failed", err)
	}
	return buf, nil
}

// ChunkBLE splits payload into BLE-MTU-sized chunks, each preceded by a
// 2-byte header [chunk_index, total_chunks]. Both header fields are
// single bytes, so at most 255 chunks are representable — adequate for
// the single-frame-response contract this runtime supports (§4.3 open
// question: multi-chunk reassembly beyond that is undefined).
func ChunkBLE(payload []byte) [][]byte {
	if len(payload) == 0 {
		return [][]byte{{0, 1}}
	}
	total := (len(payload) + BLEMTUPayload - 1) / BLEMTUPayload
	chunks := make([][]byte, 0, total)
	for i := 0; i < total; i++ {
		start := i * BLEMTUPayload
		end := start + BLEMTUPayload
		if end > len(payload) {
			end = len(payload)
		}
		chunk := make([]byte, 0, 2+end-start)
		chunk = append(chunk, byte(i), byte(total))
		chunk = append(chunk, payload[start:end]...)
		chunks = append(chunks, chunk)
	}
	return chunks
}

// ReassembleBLE reassembles chunks produced by ChunkBLE. Only the
// single-frame case (total_chunks == 1) is supported; anything larger
// is an acknowledged gap (§4.3, §9 open questions) and returns an error
// rather than guessing a reassembly order.
func ReassembleBLE(chunks [][]byte) ([]byte, error) {
	if len(chunks) == 0 {
		return nil, types.NewError(types.ErrInvalidResponse, "transport: no BLE chunks to reassemble")
	}
	first := chunks[0]
	if len(first) < 2 {
		return nil, types.NewError(types.ErrInvalidResponse, "transport: malformed BLE chunk header")
	}
	total := int(first[1])
	if total > 1 {
		return nil, types.NewError(types.ErrInvalidResponse, "transport: multi-chunk BLE reassembly is unsupported")
	}
	return append([]byte(nil), first[2:]...), nil
}
