package lexer

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names an input text encoding.
type Encoding string

const (
	// EncodingAuto accepts UTF-8 and falls back to Windows-1252 on invalid input.
	EncodingAuto   Encoding = "auto"
	EncodingUTF8   Encoding = "utf-8"
	EncodingLatin1 Encoding = "latin-1"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// ParseEncoding normalizes a user supplied encoding name.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return EncodingAuto, nil
	case "utf-8", "utf8":
		return EncodingUTF8, nil
	case "latin-1", "latin1", "iso-8859-1", "windows-1252", "cp1252":
		return EncodingLatin1, nil
	default:
		return "", &EncodingError{Encoding: Encoding(name), Offset: -1, Reason: "unknown encoding"}
	}
}

// Decode converts raw file bytes to text. Byte order marks always win over
// the requested encoding.
func Decode(data []byte, enc Encoding) (string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return decodeUTF8(data[len(bomUTF8):], EncodingUTF8)
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		return decodeUTF16(data)
	}

	switch enc {
	case EncodingAuto, "":
		if utf8.Valid(data) {
			return string(data), nil
		}
		out, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return "", &EncodingError{Encoding: EncodingAuto, Offset: -1, Reason: err.Error()}
		}
		return string(out), nil
	case EncodingUTF8:
		return decodeUTF8(data, EncodingUTF8)
	case EncodingLatin1:
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return "", &EncodingError{Encoding: enc, Offset: -1, Reason: err.Error()}
		}
		return string(out), nil
	default:
		return "", &EncodingError{Encoding: enc, Offset: -1, Reason: "unknown encoding"}
	}
}

func decodeUTF8(data []byte, enc Encoding) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	off := 0
	for off < len(data) {
		r, size := utf8.DecodeRune(data[off:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		off += size
	}
	return "", &EncodingError{Encoding: enc, Offset: off, Reason: "invalid UTF-8 sequence"}
}

func decodeUTF16(data []byte) (string, error) {
	if len(data)%2 != 0 {
		return "", &EncodingError{Encoding: "utf-16", Offset: len(data) - 1, Reason: "odd number of bytes"}
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
	out, err := dec.Bytes(data)
	if err != nil {
		return "", &EncodingError{Encoding: "utf-16", Offset: -1, Reason: err.Error()}
	}
	return string(out), nil
}
