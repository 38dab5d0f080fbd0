package transport

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("hello world")
	require.NoError(t, WriteFrame(&buf, payload))

	got, err := ReadFrame(&buf, MaxReassembledFrame)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReadFrameRejectsOversized(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, make([]byte, 1000)))

	_, err := ReadFrame(&buf, 10)
	require.Error(t, err)
}

func TestChunkBLESingleChunk(t *testing.T) {
	payload := []byte("short payload")
	chunks := ChunkBLE(payload)
	require.Len(t, chunks, 1)
	assert.Equal(t, byte(0), chunks[0][0])
	assert.Equal(t, byte(1), chunks[0][1])

	got, err := ReassembleBLE(chunks)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestChunkBLEMultiChunkUnsupportedOnReassemble(t *testing.T) {
	payload := make([]byte, BLEMTUPayload*2+10)
	chunks := ChunkBLE(payload)
	require.Len(t, chunks, 3)

	_, err := ReassembleBLE(chunks)
	require.Error(t, err)
}
