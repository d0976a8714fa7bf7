package loader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-glb/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeContainerRoundTrip(t *testing.T) {
	json := []byte(`{"asset":{"version":"2.0"}}`)
	bin := []byte{1, 2, 3}

	blob := EncodeContainer(json, bin)
	assert.Zero(t, len(blob)%4)

	c, err := DecodeContainer(blob)
	require.NoError(t, err)
	assert.Equal(t, uint32(GLBVersion), c.Version)
	assert.Equal(t, uint32(len(blob)), c.Length)
	assert.Equal(t, json, bytes.TrimRight(c.JSON, " "))
	assert.Equal(t, []byte{1, 2, 3, 0}, c.Binary)
	assert.Equal(t, blob[c.BinaryOffset:c.BinaryOffset+4], c.Binary)
}

func TestDecodeReencodeContainerRoundTrip(t *testing.T) {
	blob := EncodeContainer([]byte(`{"asset":{"version":"2.0"},"x":"ü"}`), []byte{1, 2, 3, 4, 5})

	c, err := DecodeContainer(blob)
	require.NoError(t, err)
	again := EncodeContainer(c.JSON, c.Binary)
	assert.Equal(t, blob, again)

	c2, err := DecodeContainer(again)
	require.NoError(t, err)
	assert.Equal(t, c.JSON, c2.JSON)
	assert.Equal(t, c.Binary, c2.Binary)
}

func TestDecodeContainerWithoutBinaryChunk(t *testing.T) {
	c, err := DecodeContainer(EncodeContainer([]byte(`{}`), nil))
	require.NoError(t, err)
	assert.Nil(t, c.Binary)
	assert.Equal(t, []byte(`{}  `), c.JSON)
}

// validBlob is 40 bytes: header [0,12), JSON chunk header [12,20), JSON [20,28),
// BIN chunk header [28,36), BIN [36,40).
func validBlob() []byte {
	return EncodeContainer([]byte(`{"a":1}`), []byte{9, 9, 9, 9})
}

func TestDecodeContainerChecks(t *testing.T) {
	put := func(b []byte, at int, v uint32) []byte {
		binary.LittleEndian.PutUint32(b[at:], v)
		return b
	}

	tests := []struct {
		name  string
		blob  func() []byte
		check string
	}{
		{"short header", func() []byte { return validBlob()[:19] }, "container.header"},
		{"bad magic", func() []byte { return put(validBlob(), 0, 0x12345678) }, "container.magic"},
		{"magic checked before version", func() []byte { return put(put(validBlob(), 0, 0), 4, 1) }, "container.magic"},
		{"bad version", func() []byte { return put(validBlob(), 4, 1) }, "container.version"},
		{"version checked before length", func() []byte { return put(put(validBlob(), 4, 3), 8, 1000) }, "container.version"},
		{"first chunk not JSON", func() []byte { return put(validBlob(), 16, ChunkTypeBIN) }, "container.json_chunk_type"},
		{"JSON chunk past end", func() []byte { return put(validBlob(), 12, 100) }, "container.json_chunk_length"},
		{"JSON not UTF-8", func() []byte { b := validBlob(); b[21] = 0xff; return b }, "container.json_utf8"},
		{"second chunk not BIN", func() []byte { return put(validBlob(), 32, ChunkTypeJSON) }, "container.bin_chunk_type"},
		{"BIN chunk past end", func() []byte { return put(validBlob(), 28, 8) }, "container.bin_chunk_length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeContainer(tt.blob())
			var formatErr *common.FormatError
			require.True(t, errors.As(err, &formatErr), "got %v", err)
			assert.Equal(t, tt.check, formatErr.Check)
			assert.Equal(t, common.NoIndex, formatErr.Index)
		})
	}
}

func TestDecodeContainerIgnoresTrailingBytes(t *testing.T) {
	blob := append(validBlob(), 0xAA, 0xBB)
	c, err := DecodeContainer(blob)
	require.NoError(t, err)
	assert.Equal(t, uint32(40), c.Length)
	assert.Equal(t, []byte{9, 9, 9, 9}, c.Binary)
}

func TestDecodeContainerDeclaredLengthIsInformational(t *testing.T) {
	for _, declared := range []uint32{0, 19, 36, 44, 1 << 31} {
		blob := validBlob()
		binary.LittleEndian.PutUint32(blob[8:], declared)

		c, err := DecodeContainer(blob)
		require.NoError(t, err, "declared length %d", declared)
		assert.Equal(t, declared, c.Length)
		assert.Equal(t, []byte(`{"a":1} `), c.JSON)
		assert.Equal(t, []byte{9, 9, 9, 9}, c.Binary)
		assert.Equal(t, 36, c.BinaryOffset)
	}
}
