package vocab

import (
	"encoding/binary"
	"math"
	"os"

	"github.com/pkg/errors"
)

// SentencePieceProtoPiece is one entry of a SentencePiece ModelProto's
// `pieces` repeated field: a piece string and its unigram log-probability
// score. Reading the full ModelProto schema (normalizer specs, trainer
// specs, self-test data, ...) is out of this module's scope (spec.md §1);
// only the shape tokenization actually needs is read.
type SentencePieceProtoPiece struct {
	Piece string
	Score float32
}

// ParseSentencePieceModelProto reads the `pieces` field (field number 1) of
// a serialized SentencePiece ModelProto, in order; the id of each piece is
// its position in that order. Each SentencePiece piece message nests
// `piece` as field 1 (string) and `score` as field 2 (float). This is a
// minimal, hand-rolled protobuf wire-format reader rather than a full
// generated binding: see DESIGN.md for why google.golang.org/protobuf's
// generated-code runtime does not fit here (no protoc is available in this
// build) and why hand-decoding this small, stable subset of the wire format
// is the pragmatic substitute.
func ParseSentencePieceModelProto(content []byte) ([]SentencePieceProtoPiece, error) {
	var pieces []SentencePieceProtoPiece
	buf := content
	for len(buf) > 0 {
		fieldNum, wireType, n, err := readTag(buf)
		if err != nil {
			return nil, errors.Wrapf(ErrVocabParsing, "sentencepiece proto: %v", err)
		}
		buf = buf[n:]
		switch {
		case fieldNum == 1 && wireType == 2:
			// pieces: repeated SentencePiece piece = 1
			msg, n, err := readLengthDelimited(buf)
			if err != nil {
				return nil, errors.Wrapf(ErrVocabParsing, "sentencepiece proto: %v", err)
			}
			buf = buf[n:]
			piece, err := parseSentencePieceMessage(msg)
			if err != nil {
				return nil, err
			}
			pieces = append(pieces, piece)
		default:
			skipped, err := skipField(buf, wireType)
			if err != nil {
				return nil, errors.Wrapf(ErrVocabParsing, "sentencepiece proto: %v", err)
			}
			buf = buf[skipped:]
		}
	}
	return pieces, nil
}

// ParseSentencePieceModelProtoFile reads and parses a SentencePiece model
// file from path.
func ParseSentencePieceModelProtoFile(path string) ([]SentencePieceProtoPiece, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrFileNotFound, "%q: %v", path, err)
	}
	return ParseSentencePieceModelProto(content)
}

func parseSentencePieceMessage(buf []byte) (SentencePieceProtoPiece, error) {
	var piece SentencePieceProtoPiece
	for len(buf) > 0 {
		fieldNum, wireType, n, err := readTag(buf)
		if err != nil {
			return piece, errors.Wrapf(ErrVocabParsing, "sentencepiece proto piece: %v", err)
		}
		buf = buf[n:]
		switch {
		case fieldNum == 1 && wireType == 2: // piece string
			s, n, err := readLengthDelimited(buf)
			if err != nil {
				return piece, errors.Wrapf(ErrVocabParsing, "sentencepiece proto piece: %v", err)
			}
			buf = buf[n:]
			piece.Piece = string(s)
		case fieldNum == 2 && wireType == 5: // score: fixed32 float
			if len(buf) < 4 {
				return piece, errors.Wrapf(ErrVocabParsing, "sentencepiece proto piece: truncated score")
			}
			bits := binary.LittleEndian.Uint32(buf[:4])
			piece.Score = math.Float32frombits(bits)
			buf = buf[4:]
		default:
			skipped, err := skipField(buf, wireType)
			if err != nil {
				return piece, errors.Wrapf(ErrVocabParsing, "sentencepiece proto piece: %v", err)
			}
			buf = buf[skipped:]
		}
	}
	return piece, nil
}

// readTag reads a protobuf field tag (varint) and splits it into field
// number and wire type, returning the number of bytes consumed.
func readTag(buf []byte) (fieldNum int, wireType int, n int, err error) {
	v, n, err := readVarint(buf)
	if err != nil {
		return 0, 0, 0, err
	}
	return int(v >> 3), int(v & 0x7), n, nil
}

func readVarint(buf []byte) (uint64, int, error) {
	var result uint64
	var shift uint
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, i + 1, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, 0, errors.New("varint too long")
		}
	}
	return 0, 0, errors.New("truncated varint")
}

func readLengthDelimited(buf []byte) ([]byte, int, error) {
	length, n, err := readVarint(buf)
	if err != nil {
		return nil, 0, err
	}
	end := n + int(length)
	if end > len(buf) {
		return nil, 0, errors.New("truncated length-delimited field")
	}
	return buf[n:end], end, nil
}

func skipField(buf []byte, wireType int) (int, error) {
	switch wireType {
	case 0: // varint
		_, n, err := readVarint(buf)
		return n, err
	case 1: // fixed64
		if len(buf) < 8 {
			return 0, errors.New("truncated fixed64 field")
		}
		return 8, nil
	case 2: // length-delimited
		length, n, err := readVarint(buf)
		if err != nil {
			return 0, err
		}
		end := n + int(length)
		if end > len(buf) {
			return 0, errors.New("truncated length-delimited field")
		}
		return end, nil
	case 5: // fixed32
		if len(buf) < 4 {
			return 0, errors.New("truncated fixed32 field")
		}
		return 4, nil
	default:
		return 0, errors.Errorf("unsupported wire type %d", wireType)
	}
}
