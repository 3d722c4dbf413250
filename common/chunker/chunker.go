// Package chunker splits oversized payloads into fixed-size slices for a
// backing store with a per-row byte ceiling, and reassembles them on read.
//
// The chunker is shape-agnostic: it only ever sees canonical []byte buffers.
// Normalizing whatever representation the row store hands back is the
// storage adapter's job, never the chunker's.
package chunker

// DefaultBlockSize is the maximum byte length of one stored chunk row,
// chosen under the backing store's per-row ceiling with headroom for
// encoding and protocol overhead.
const DefaultBlockSize = 1_800_000

// Chunker is a stateless splitter/reassembler with a fixed block size.
type Chunker struct {
	blockSize int
}

// New creates a chunker. A non-positive blockSize falls back to
// DefaultBlockSize.
func New(blockSize int) *Chunker {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Chunker{blockSize: blockSize}
}

// BlockSize returns the configured maximum chunk length.
func (c *Chunker) BlockSize() int {
	return c.blockSize
}

// Split slices buf into ordered chunks of at most blockSize bytes. Every
// chunk except the last is exactly blockSize long; the last holds the
// remainder (1..blockSize). Zero-length input produces no chunks — callers
// must treat empty binaries as "no payload", not as one empty chunk.
//
// The returned slices alias buf; callers that outlive buf must copy.
func (c *Chunker) Split(buf []byte) [][]byte {
	if len(buf) == 0 {
		return nil
	}

	chunks := make([][]byte, 0, (len(buf)+c.blockSize-1)/c.blockSize)
	for off := 0; off < len(buf); off += c.blockSize {
		end := off + c.blockSize
		if end > len(buf) {
			end = len(buf)
		}
		chunks = append(chunks, buf[off:end])
	}
	return chunks
}

// Reassemble concatenates chunks in the order supplied. Ordering is the
// caller's contract — chunks must already be sorted by index. The caller is
// also responsible for comparing the result's length against the record's
// stored size.
func (c *Chunker) Reassemble(chunks [][]byte) []byte {
	total := 0
	for _, chunk := range chunks {
		total += len(chunk)
	}
	if total == 0 {
		return nil
	}

	buf := make([]byte, 0, total)
	for _, chunk := range chunks {
		buf = append(buf, chunk...)
	}
	return buf
}
