package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytes_DeterministicAndHexEncoded(t *testing.T) {
	d1 := Bytes([]byte("hello"))
	d2 := Bytes([]byte("hello"))

	assert.Equal(t, d1, d2)
	assert.Len(t, d1, Size*2) // hex doubles the byte length
	assert.Regexp(t, "^[0-9a-f]+$", d1)
}

func TestBytes_DistinctInputsDistinctDigests(t *testing.T) {
	assert.NotEqual(t, Bytes([]byte("hello")), Bytes([]byte("hellp")))
	assert.NotEqual(t, Bytes([]byte("hello")), Bytes([]byte("hello ")))
}

func TestText_MatchesByteEncoding(t *testing.T) {
	assert.Equal(t, Bytes([]byte("héllo")), Text("héllo"))
}

func TestBytes_EmptyPayload(t *testing.T) {
	// Zero-length payloads still get a stable digest
	assert.Equal(t, Bytes(nil), Bytes([]byte{}))
	assert.Len(t, Bytes(nil), Size*2)
}
