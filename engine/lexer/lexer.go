// Package lexer turns decoded mod-file text into a stream of tagged lines.
// It knows the tag syntax but nothing about which tags nest where.
package lexer

import (
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Kind classifies a token.
type Kind int

const (
	OpenTag Kind = iota
	CloseTag
	SelfClosingTag
	CodeLine
	CommentLine
)

var kindNames = map[Kind]string{
	OpenTag:        "open-tag",
	CloseTag:       "close-tag",
	SelfClosingTag: "self-closing-tag",
	CodeLine:       "code",
	CommentLine:    "comment",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Attr is a single key="value" pair. Values are entity-decoded.
type Attr struct {
	Key   string
	Value string
}

// Attrs keeps attributes in source order.
type Attrs []Attr

// Get returns the value for key, matched case-insensitively.
func (a Attrs) Get(key string) (string, bool) {
	for _, at := range a {
		if strings.EqualFold(at.Key, key) {
			return at.Value, true
		}
	}
	return "", false
}

// Has reports whether key is present.
func (a Attrs) Has(key string) bool {
	_, ok := a.Get(key)
	return ok
}

// Token is one classified source line.
//
// For CommentLine, Name is "comment" when the line was a <comment> element
// and empty when it was a '#' line. For SelfClosingTag, Text holds the body
// of a one-line element such as <code>...</code>.
type Token struct {
	Kind  Kind
	Name  string
	Attrs Attrs
	Text  string
	Line  int
}

// Lexer yields tokens one line at a time.
type Lexer struct {
	src  string
	pos  int
	line int
}

// New creates a lexer over already-decoded text.
func New(src string) *Lexer {
	return &Lexer{src: src}
}

// Next returns the next token, or io.EOF once input is exhausted.
// Blank lines and XML declarations produce no token.
func (l *Lexer) Next() (Token, error) {
	for l.pos < len(l.src) {
		raw := l.readLine()
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		if isDeclaration(text) {
			continue
		}
		if strings.HasPrefix(text, "#") {
			return Token{Kind: CommentLine, Text: text[1:], Line: l.line}, nil
		}
		if looksLikeTag(text) {
			return parseTag(text, l.line)
		}
		return Token{Kind: CodeLine, Text: text, Line: l.line}, nil
	}
	return Token{}, io.EOF
}

// All drains the lexer.
func (l *Lexer) All() ([]Token, error) {
	var toks []Token
	for {
		tok, err := l.Next()
		if err == io.EOF {
			return toks, nil
		}
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
	}
}

func (l *Lexer) readLine() string {
	l.line++
	rest := l.src[l.pos:]
	idx := strings.IndexByte(rest, '\n')
	if idx < 0 {
		l.pos = len(l.src)
		return strings.TrimSuffix(rest, "\r")
	}
	l.pos += idx + 1
	return strings.TrimSuffix(rest[:idx], "\r")
}

func isDeclaration(text string) bool {
	if strings.HasPrefix(text, "<?") && strings.HasSuffix(text, "?>") {
		return true
	}
	return strings.HasPrefix(text, "<!--") && strings.HasSuffix(text, "-->")
}

// looksLikeTag reports whether a line should be parsed as markup. Command
// lines never begin with '<' followed by a letter or '/'.
func looksLikeTag(text string) bool {
	if len(text) < 2 || text[0] != '<' {
		return false
	}
	c := rune(text[1])
	return c == '/' || unicode.IsLetter(c)
}

func parseTag(text string, line int) (Token, error) {
	fail := func(reason string) (Token, error) {
		return Token{}, &MalformedTagError{Line: line, Text: text, Reason: reason}
	}

	if strings.HasPrefix(text, "</") {
		name, rest := scanName(text[2:])
		if name == "" {
			return fail("missing tag name")
		}
		if strings.TrimSpace(rest) != ">" {
			return fail("unexpected text in closing tag")
		}
		return Token{Kind: CloseTag, Name: name, Line: line}, nil
	}

	name, rest := scanName(text[1:])
	if name == "" {
		return fail("missing tag name")
	}

	attrs, rest, selfClosing, err := scanAttrs(rest)
	if err != "" {
		return fail(err)
	}

	if selfClosing {
		if strings.TrimSpace(rest) != "" {
			return fail("text after self-closing tag")
		}
		if strings.EqualFold(name, "comment") {
			return Token{Kind: CommentLine, Name: "comment", Line: line}, nil
		}
		return Token{Kind: SelfClosingTag, Name: name, Attrs: attrs, Line: line}, nil
	}

	if rest == "" {
		return Token{Kind: OpenTag, Name: name, Attrs: attrs, Line: line}, nil
	}

	// One-line element: <name ...>body</name>
	idx := strings.LastIndex(rest, "</")
	if idx < 0 {
		return fail("element body without closing tag")
	}
	closeName, tail := scanName(rest[idx+2:])
	if !strings.EqualFold(closeName, name) || strings.TrimSpace(tail) != ">" {
		return fail(fmt.Sprintf("element <%s> closed by %q", name, rest[idx:]))
	}
	body := unescape(rest[:idx])

	if strings.EqualFold(name, "comment") {
		return Token{Kind: CommentLine, Name: "comment", Text: body, Line: line}, nil
	}
	return Token{Kind: SelfClosingTag, Name: name, Attrs: attrs, Text: body, Line: line}, nil
}

// scanName reads a tag or attribute name.
func scanName(s string) (string, string) {
	i := 0
	for i < len(s) {
		c := s[i]
		if c == ' ' || c == '\t' || c == '=' || c == '>' || c == '/' || c == '"' || c == '\'' {
			break
		}
		i++
	}
	return s[:i], s[i:]
}

// scanAttrs consumes attributes up to and including the closing '>' or '/>'.
// Quoted values may contain '>' and the other quote character.
func scanAttrs(s string) (Attrs, string, bool, string) {
	var attrs Attrs
	for {
		s = strings.TrimLeft(s, " \t")
		switch {
		case s == "":
			return nil, "", false, "unterminated tag"
		case strings.HasPrefix(s, "/>"):
			return attrs, s[2:], true, ""
		case s[0] == '>':
			return attrs, s[1:], false, ""
		}

		key, rest := scanName(s)
		if key == "" {
			return nil, "", false, fmt.Sprintf("unexpected %q in attribute list", s[0])
		}
		rest = strings.TrimLeft(rest, " \t")
		if !strings.HasPrefix(rest, "=") {
			return nil, "", false, fmt.Sprintf("attribute %q has no value", key)
		}
		rest = strings.TrimLeft(rest[1:], " \t")
		if rest == "" || (rest[0] != '"' && rest[0] != '\'') {
			return nil, "", false, fmt.Sprintf("attribute %q value is not quoted", key)
		}
		quote := rest[0]
		end := strings.IndexByte(rest[1:], quote)
		if end < 0 {
			return nil, "", false, fmt.Sprintf("attribute %q value is not terminated", key)
		}
		attrs = append(attrs, Attr{Key: key, Value: unescape(rest[1 : end+1])})
		s = rest[end+2:]
	}
}

var entities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

func unescape(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return entities.Replace(s)
}
