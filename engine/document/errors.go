package document

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnbalancedTag is the sentinel wrapped by UnbalancedTagError.
	ErrUnbalancedTag = errors.New("unbalanced tag")
	// ErrUnexpectedEOF is the sentinel wrapped by UnexpectedEOFError.
	ErrUnexpectedEOF = errors.New("unexpected end of file")
)

// UnbalancedTagError is returned when a close tag does not match the
// innermost open tag.
type UnbalancedTagError struct {
	Expected string // empty when no tag was open
	Found    string
	Line     int
}

func (e *UnbalancedTagError) Error() string {
	if e.Expected == "" {
		return fmt.Sprintf("line %d: closing tag </%s> has no matching open tag", e.Line, e.Found)
	}
	return fmt.Sprintf("line %d: expected </%s>, found </%s>", e.Line, e.Expected, e.Found)
}

// Is makes errors.Is(err, ErrUnbalancedTag) work.
func (e *UnbalancedTagError) Is(target error) bool {
	return target == ErrUnbalancedTag
}

// UnexpectedEOFError is returned when tags are still open at end of input.
type UnexpectedEOFError struct {
	Open []string // outermost first
	Line int      // line of the innermost unclosed tag
}

func (e *UnexpectedEOFError) Error() string {
	return fmt.Sprintf("end of file with unclosed tags <%s> (innermost opened on line %d)",
		strings.Join(e.Open, "> <"), e.Line)
}

// Is makes errors.Is(err, ErrUnexpectedEOF) work.
func (e *UnexpectedEOFError) Is(target error) bool {
	return target == ErrUnexpectedEOF
}
