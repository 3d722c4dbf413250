package chunker

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Small block size so tests don't allocate multi-megabyte buffers
const testBlockSize = 1000

func pattern(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i % 251)
	}
	return buf
}

func TestSplit_Empty(t *testing.T) {
	c := New(testBlockSize)
	assert.Nil(t, c.Split(nil))
	assert.Nil(t, c.Split([]byte{}))
}

func TestSplit_BelowBlockSize(t *testing.T) {
	c := New(testBlockSize)
	chunks := c.Split(pattern(testBlockSize - 1))
	require.Len(t, chunks, 1)
	assert.Len(t, chunks[0], testBlockSize-1)
}

func TestSplit_ExactlyBlockSize(t *testing.T) {
	c := New(testBlockSize)
	chunks := c.Split(pattern(testBlockSize))
	require.Len(t, chunks, 1)
	assert.Len(t, chunks[0], testBlockSize)
}

func TestSplit_OneByteOver(t *testing.T) {
	c := New(testBlockSize)
	chunks := c.Split(pattern(testBlockSize + 1))
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], testBlockSize)
	assert.Len(t, chunks[1], 1)
}

func TestSplit_ChunkCountFormula(t *testing.T) {
	c := New(testBlockSize)

	// ceil(n / blockSize) chunks, all full-length except the last
	sizes := []int{1, 500, 999, 1000, 1001, 1999, 2000, 2001, 3000, 5000}
	for _, n := range sizes {
		chunks := c.Split(pattern(n))
		want := (n + testBlockSize - 1) / testBlockSize
		require.Len(t, chunks, want, "size %d", n)

		for i, chunk := range chunks {
			if i < len(chunks)-1 {
				assert.Len(t, chunk, testBlockSize, "size %d chunk %d", n, i)
			} else {
				assert.NotEmpty(t, chunk, "size %d last chunk", n)
				assert.LessOrEqual(t, len(chunk), testBlockSize)
			}
		}
	}
}

func TestRoundTrip(t *testing.T) {
	c := New(testBlockSize)

	// Below, at, and above block boundaries up to 5x
	for _, n := range []int{0, 1, testBlockSize - 1, testBlockSize, testBlockSize + 1, 3 * testBlockSize, 5 * testBlockSize} {
		buf := pattern(n)
		out := c.Reassemble(c.Split(buf))
		if !bytes.Equal(buf, out) {
			t.Fatalf("round trip mismatch at size %d: got %d bytes", n, len(out))
		}
	}
}

func TestReassemble_PreservesSuppliedOrder(t *testing.T) {
	c := New(testBlockSize)
	out := c.Reassemble([][]byte{[]byte("hello "), []byte("world")})
	assert.Equal(t, []byte("hello world"), out)
}

func TestNew_DefaultsOnInvalidBlockSize(t *testing.T) {
	assert.Equal(t, DefaultBlockSize, New(0).BlockSize())
	assert.Equal(t, DefaultBlockSize, New(-5).BlockSize())
	assert.Equal(t, 42, New(42).BlockSize())
}
