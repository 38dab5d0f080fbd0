package agent

import "hash/fnv"

// ringSize is the number of recent tool-call signatures retained.
const ringSize = 8

// repeatThreshold is the number of prior matches (not counting the
// current call) that marks a call as looping.
const repeatThreshold = 2

// signature is the 128-bit repeat-call fingerprint of §4.7: the FNV-1a
// hash of the tool name paired with the FNV-1a hash of its raw JSON
// input.
type signature struct {
	nameHash  uint64
	inputHash uint64
}

func newSignature(name, inputRaw string) signature {
	return signature{nameHash: fnv1a(name), inputHash: fnv1a(inputRaw)}
}

func fnv1a(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// signatureRing is the 8-slot ring buffer of recent tool-call
// signatures used to detect the model repeating an identical call.
type signatureRing struct {
	slots [ringSize]signature
	count int // number of valid slots filled so far
	idx   int // next slot to write
}

// countMatches returns how many of the currently filled slots equal sig,
// evaluated before sig is inserted.
func (r *signatureRing) countMatches(sig signature) int {
	n := 0
	for i := 0; i < r.count; i++ {
		if r.slots[i] == sig {
			n++
		}
	}
	return n
}

// insert records sig at the next ring position, overwriting the oldest.
func (r *signatureRing) insert(sig signature) {
	r.slots[r.idx] = sig
	r.idx = (r.idx + 1) % ringSize
	if r.count < ringSize {
		r.count++
	}
}

// isRepeat reports whether sig has already appeared at least
// repeatThreshold times in the ring, then records it regardless.
func (r *signatureRing) isRepeat(sig signature) bool {
	matches := r.countMatches(sig)
	r.insert(sig)
	return matches >= repeatThreshold
}
