package jsonkit

import "github.com/bhardwajRahul/krillclaw/pkg/contracts"

// Writer assembles a JSON body into a growable buffer. When constructed
// with an Allocator it routes growth through that arena rather than the
// Go heap — the embedded profile's way of keeping request-body assembly
// inside a fixed footprint. Writer is not safe for concurrent use.
type Writer struct {
	buf   []byte
	alloc contracts.Allocator
}

// NewWriter returns a heap-backed Writer with the given starting capacity.
func NewWriter(capacityHint int) *Writer {
	return &Writer{buf: make([]byte, 0, capacityHint)}
}

// NewArenaWriter returns a Writer whose growth is satisfied from alloc.
func NewArenaWriter(alloc contracts.Allocator, capacityHint int) *Writer {
	w := &Writer{alloc: alloc}
	if capacityHint > 0 {
		if b, err := alloc.Alloc(capacityHint, 1); err == nil {
			w.buf = b[:0]
		}
	}
	return w
}

// Raw appends bytes unescaped — used for JSON fragments that are already
// well-formed (tool input_raw, embedded schemas).
func (w *Writer) Raw(b []byte) *Writer {
	w.grow(len(b))
	w.buf = append(w.buf, b...)
	return w
}

// RawString appends a string unescaped.
func (w *Writer) RawString(s string) *Writer {
	return w.Raw([]byte(s))
}

// Str appends s as a quoted, escaped JSON string.
func (w *Writer) Str(s string) *Writer {
	w.grow(len(s) + 2)
	w.buf = append(w.buf, '"')
	w.buf = EscapeInto(w.buf, s)
	w.buf = append(w.buf, '"')
	return w
}

// Byte appends a single raw byte (structural punctuation: `{`, `}`, `,`, `:`, …).
func (w *Writer) Byte(b byte) *Writer {
	w.grow(1)
	w.buf = append(w.buf, b)
	return w
}

// Int appends a decimal integer unescaped.
func (w *Writer) Int(n int) *Writer {
	return w.RawString(itoa(n))
}

// Bool appends a boolean literal unescaped.
func (w *Writer) Bool(b bool) *Writer {
	if b {
		return w.RawString("true")
	}
	return w.RawString("false")
}

// Bytes returns the assembled buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// String returns the assembled buffer as a string.
func (w *Writer) String() string { return string(w.buf) }

// grow ensures at least extra bytes of spare capacity, pulling a fresh
// block from the arena (and copying forward) when one is configured.
func (w *Writer) grow(extra int) {
	if w.alloc == nil {
		return // append() handles heap growth
	}
	if cap(w.buf)-len(w.buf) >= extra {
		return
	}
	newCap := cap(w.buf)*2 + extra
	nb, err := w.alloc.Alloc(newCap, 1)
	if err != nil {
		return // fall back to append() growth on exhaustion
	}
	nb = nb[:0]
	nb = append(nb, w.buf...)
	w.buf = nb
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
