package loader

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"

	"github.com/Carmen-Shannon/oxy-glb/common"
)

// GLB layout constants.
const (
	GLBMagic   = 0x46546C67 // "glTF"
	GLBVersion = 2

	ChunkTypeJSON = 0x4E4F534A // "JSON"
	ChunkTypeBIN  = 0x004E4942 // "BIN\0"

	glbHeaderSize      = 12
	glbChunkHeaderSize = 8
)

// Container is a decoded GLB blob. JSON and Binary are sub-slices of the decoded input.
type Container struct {
	Version uint32

	// Length is the total length declared in the header. It is reported, never used as a bound.
	Length uint32

	// JSON is the JSON chunk payload, including any trailing space padding.
	JSON []byte

	// Binary is the BIN chunk payload, or nil when the blob has no BIN chunk.
	Binary []byte

	// BinaryOffset is the position of Binary inside the decoded input.
	BinaryOffset int
}

// DecodeContainer validates and splits a GLB blob. Magic, version and the JSON chunk type are checked
// in that order against the fixed 20-byte header before any length field is trusted.
//
// Parameters:
//   - data: the complete GLB blob
//
// Returns:
//   - *Container: the container, sharing memory with data
//   - error: a FormatError naming the first failed check
func DecodeContainer(data []byte) (*Container, error) {
	if len(data) < glbHeaderSize+glbChunkHeaderSize {
		return nil, common.NewFormatError("container.header", common.NoIndex, "blob of %d bytes is shorter than the 20-byte header", len(data))
	}

	le := binary.LittleEndian
	if magic := le.Uint32(data[0:]); magic != GLBMagic {
		return nil, common.NewFormatError("container.magic", common.NoIndex, "magic 0x%08X, want 0x%08X", magic, GLBMagic)
	}
	version := le.Uint32(data[4:])
	if version != GLBVersion {
		return nil, common.NewFormatError("container.version", common.NoIndex, "version %d, want %d", version, GLBVersion)
	}
	if chunkType := le.Uint32(data[16:]); chunkType != ChunkTypeJSON {
		return nil, common.NewFormatError("container.json_chunk_type", common.NoIndex, "first chunk type 0x%08X, want JSON", chunkType)
	}

	// the declared total length is informational; chunks are bounded by the blob itself
	length := le.Uint32(data[8:])

	jsonLen := uint64(le.Uint32(data[12:]))
	jsonEnd := uint64(glbHeaderSize+glbChunkHeaderSize) + jsonLen
	if jsonEnd > uint64(len(data)) {
		return nil, common.NewFormatError("container.json_chunk_length", common.NoIndex, "JSON chunk of %d bytes exceeds blob", jsonLen)
	}
	jsonData := data[glbHeaderSize+glbChunkHeaderSize : jsonEnd]
	if !utf8.Valid(jsonData) {
		return nil, common.NewFormatError("container.json_utf8", common.NoIndex, "JSON chunk is not valid UTF-8")
	}

	c := &Container{Version: version, Length: length, JSON: jsonData}

	rest := data[jsonEnd:]
	if len(rest) < glbChunkHeaderSize {
		return c, nil
	}
	if chunkType := le.Uint32(rest[4:]); chunkType != ChunkTypeBIN {
		return nil, common.NewFormatError("container.bin_chunk_type", common.NoIndex, "second chunk type 0x%08X, want BIN", chunkType)
	}
	binLen := uint64(le.Uint32(rest[0:]))
	if binLen > uint64(len(rest)-glbChunkHeaderSize) {
		return nil, common.NewFormatError("container.bin_chunk_length", common.NoIndex,
			"BIN chunk of %d bytes exceeds the %d bytes left", binLen, len(rest)-glbChunkHeaderSize)
	}
	c.BinaryOffset = int(jsonEnd) + glbChunkHeaderSize
	c.Binary = data[c.BinaryOffset : uint64(c.BinaryOffset)+binLen]
	return c, nil
}

// EncodeContainer assembles a GLB blob. JSON is padded with spaces and bin with zeros to a multiple
// of 4 bytes. The BIN chunk is omitted when bin is empty.
//
// Parameters:
//   - json: the JSON chunk payload
//   - bin: the BIN chunk payload
//
// Returns:
//   - []byte: the GLB blob
func EncodeContainer(json, bin []byte) []byte {
	jsonLen := common.AlignTo(len(json), 4)
	binLen := common.AlignTo(len(bin), 4)

	total := glbHeaderSize + glbChunkHeaderSize + jsonLen
	if binLen > 0 {
		total += glbChunkHeaderSize + binLen
	}

	var buf bytes.Buffer
	buf.Grow(total)
	le := binary.LittleEndian
	_ = binary.Write(&buf, le, [3]uint32{GLBMagic, GLBVersion, uint32(total)})

	_ = binary.Write(&buf, le, [2]uint32{uint32(jsonLen), ChunkTypeJSON})
	buf.Write(json)
	buf.Write(bytes.Repeat([]byte{' '}, jsonLen-len(json)))

	if binLen > 0 {
		_ = binary.Write(&buf, le, [2]uint32{uint32(binLen), ChunkTypeBIN})
		buf.Write(bin)
		buf.Write(make([]byte, binLen-len(bin)))
	}
	return buf.Bytes()
}
