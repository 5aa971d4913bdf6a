package vocab

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Minimal hand-rolled protobuf wire-format encoders, mirroring the subset
// ParseSentencePieceModelProto reads: a ModelProto with repeated field 1
// (SentencePiece piece messages), each with field 1 (piece string) and
// field 2 (fixed32 score).

func testVarint(v uint64) []byte {
	var out []byte
	for v >= 0x80 {
		out = append(out, byte(v)&0x7f|0x80)
		v >>= 7
	}
	return append(out, byte(v))
}

func testTag(fieldNum, wireType int) []byte {
	return testVarint(uint64(fieldNum)<<3 | uint64(wireType))
}

func testEncodePieceMessage(piece string, score float32) []byte {
	var buf []byte
	buf = append(buf, testTag(1, 2)...)
	buf = append(buf, testVarint(uint64(len(piece)))...)
	buf = append(buf, []byte(piece)...)
	buf = append(buf, testTag(2, 5)...)
	b4 := make([]byte, 4)
	binary.LittleEndian.PutUint32(b4, math.Float32bits(score))
	buf = append(buf, b4...)
	return buf
}

func testEncodeModelProto(pieces []SentencePieceProtoPiece) []byte {
	var buf []byte
	for _, p := range pieces {
		msg := testEncodePieceMessage(p.Piece, p.Score)
		buf = append(buf, testTag(1, 2)...)
		buf = append(buf, testVarint(uint64(len(msg)))...)
		buf = append(buf, msg...)
	}
	return buf
}

func TestParseSentencePieceModelProto(t *testing.T) {
	want := []SentencePieceProtoPiece{
		{Piece: "<unk>", Score: 0},
		{Piece: "▁hello", Score: -1.5},
		{Piece: "world", Score: -2.25},
	}
	content := testEncodeModelProto(want)
	got, err := ParseSentencePieceModelProto(content)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseSentencePieceModelProtoSkipsUnknownFields(t *testing.T) {
	want := []SentencePieceProtoPiece{{Piece: "▁foo", Score: -0.5}}
	content := testEncodeModelProto(want)
	// prepend an unrelated top-level varint field (e.g. trainer_spec-ish
	// scalar) that ParseSentencePieceModelProto must skip, not choke on.
	prefix := append(testTag(9, 0), testVarint(42)...)
	got, err := ParseSentencePieceModelProto(append(prefix, content...))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseSentencePieceModelProtoTruncated(t *testing.T) {
	_, err := ParseSentencePieceModelProto([]byte{0x0a, 0x05, 'a', 'b'})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVocabParsing)
}

func TestParseSentencePieceModelProtoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spm.model")
	want := []SentencePieceProtoPiece{{Piece: "<unk>", Score: 0}, {Piece: "▁a", Score: -1}}
	require.NoError(t, os.WriteFile(path, testEncodeModelProto(want), 0o644))
	got, err := ParseSentencePieceModelProtoFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseSentencePieceModelProtoFileMissing(t *testing.T) {
	_, err := ParseSentencePieceModelProtoFile(filepath.Join(t.TempDir(), "missing.model"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFileNotFound)
}
