package args

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/anmitsu/go-shlex"
)

// Splitter turns a command's raw argument text into tokens.
type Splitter interface {
	Split(text string) ([]string, error)
}

// SplitterFunc adapts a plain function to Splitter.
type SplitterFunc func(text string) ([]string, error)

// Split calls f.
func (f SplitterFunc) Split(text string) ([]string, error) { return f(text) }

// Whitespace splits on runs of whitespace and knows nothing about quotes.
var Whitespace Splitter = SplitterFunc(func(text string) ([]string, error) {
	return strings.Fields(text), nil
})

// Shell splits like a POSIX shell: quotes group words and are removed,
// backslash escapes the next character.
var Shell Splitter = SplitterFunc(func(text string) ([]string, error) {
	tokens, err := shlex.Split(text, true)
	if err != nil {
		return nil, fmt.Errorf("shell split: %w", err)
	}
	return tokens, nil
})

// ObjectName splits on whitespace but keeps Unreal object references such
// as WillowGame.Foo'GD_Some.Path With Spaces' in one token, single quotes
// included. Double quoted segments group words and lose their quotes.
var ObjectName Splitter = SplitterFunc(splitObjectNames)

func splitObjectNames(text string) ([]string, error) {
	var (
		tokens  []string
		cur     strings.Builder
		started bool
		quote   rune
	)
	flush := func() {
		if started {
			tokens = append(tokens, cur.String())
			cur.Reset()
			started = false
		}
	}

	for _, r := range text {
		switch {
		case quote != 0:
			if r == quote {
				if quote == '\'' {
					cur.WriteRune(r)
				}
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '\'':
			quote = r
			started = true
			cur.WriteRune(r)
		case r == '"':
			quote = r
			started = true
		case unicode.IsSpace(r):
			flush()
		default:
			started = true
			cur.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	flush()
	return tokens, nil
}
