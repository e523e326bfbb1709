package lexer

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedTag is the sentinel wrapped by MalformedTagError.
	ErrMalformedTag = errors.New("malformed tag")
	// ErrEncoding is the sentinel wrapped by EncodingError.
	ErrEncoding = errors.New("encoding error")
)

// MalformedTagError is returned when a tag-like line cannot be split into a
// name and key="value" attributes.
type MalformedTagError struct {
	Line   int
	Text   string
	Reason string
}

func (e *MalformedTagError) Error() string {
	return fmt.Sprintf("line %d: malformed tag %q: %s", e.Line, e.Text, e.Reason)
}

// Is makes errors.Is(err, ErrMalformedTag) work.
func (e *MalformedTagError) Is(target error) bool {
	return target == ErrMalformedTag
}

// EncodingError is returned when input bytes cannot be decoded.
type EncodingError struct {
	Encoding Encoding
	Offset   int // byte offset of the first bad byte, -1 when not applicable
	Reason   string
}

func (e *EncodingError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("cannot decode input as %s at byte %d: %s", e.Encoding, e.Offset, e.Reason)
	}
	return fmt.Sprintf("cannot decode input as %s: %s", e.Encoding, e.Reason)
}

// Is makes errors.Is(err, ErrEncoding) work.
func (e *EncodingError) Is(target error) bool {
	return target == ErrEncoding
}
