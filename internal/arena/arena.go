// Package arena implements the bump allocator of §4.1: a monotonically
// growing allocator over a fixed-size buffer, resettable between driver
// invocations, with no per-allocation free. It exists so that the same
// agent core can run without a general-purpose heap on embedded targets.
package arena

import "github.com/bhardwajRahul/krillclaw/pkg/types"

// Preset capacities matching spec.md's target classes.
const (
	Cap4K   = 4 * 1024
	Cap16K  = 16 * 1024
	Cap32K  = 32 * 1024
	Cap128K = 128 * 1024
	Cap256K = 256 * 1024
)

// Arena is a bump allocator backed by a statically-sized buffer.
// It is not safe for concurrent use — §5 assigns one arena per driver.
type Arena struct {
	buf    []byte
	offset int
	peak   int
}

// New allocates a backing buffer of the given capacity.
func New(capacity int) *Arena {
	return &Arena{buf: make([]byte, capacity)}
}

// Alloc returns a length-len slice of the backing buffer whose starting
// offset within that buffer is a multiple of align (align must be a
// power of two).
// It fails with ErrOutOfMemory if the allocation would overflow the
// arena, without risking integer wraparound.
func (a *Arena) Alloc(length, align int) ([]byte, error) {
	if align <= 0 {
		align = 1
	}
	alignedOffset := alignUp(a.offset, align)

	capacity := len(a.buf)
	if length > capacity || alignedOffset > capacity-length {
		return nil, types.NewError(types.ErrOutOfMemory, "arena: allocation exceeds capacity")
	}

	start := alignedOffset
	end := start + length
	a.offset = end
	if a.offset > a.peak {
		a.peak = a.offset
	}
	return a.buf[start:end:end], nil
}

// Free is a no-op: the arena supports only bulk reset, never individual frees.
func (a *Arena) Free([]byte) {}

// Reset sets the offset back to zero. The high-water mark (Peak) is
// preserved across resets so callers can size future arenas correctly.
func (a *Arena) Reset() {
	a.offset = 0
}

// Used returns the number of bytes currently allocated, in O(1).
func (a *Arena) Used() int { return a.offset }

// Peak returns the high-water mark of bytes ever allocated since
// construction (it is never reset by Reset).
func (a *Arena) Peak() int { return a.peak }

// Capacity returns the size of the backing buffer.
func (a *Arena) Capacity() int { return len(a.buf) }

func alignUp(offset, align int) int {
	rem := offset % align
	if rem == 0 {
		return offset
	}
	return offset + (align - rem)
}
