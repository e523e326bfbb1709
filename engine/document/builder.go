package document

import (
	"io"
	"strconv"
	"strings"

	"github.com/nathoo/cmdext/engine/lexer"
	"github.com/nathoo/cmdext/types"
)

// TokenSource yields tokens until io.EOF.
type TokenSource interface {
	Next() (lexer.Token, error)
}

// Options controls how ambiguous lines are classified.
type Options struct {
	// Known reports whether a name is a command the interpreter can run
	// beyond the host's own. BLCMM stores such lines as comments, so a
	// <comment> element whose first word is known becomes a custom Command.
	Known func(name string) bool
	// Profile is treated as current when the file declares none.
	Profile string
}

type frameKind int

const (
	frameTransparent frameKind = iota
	frameBLCMM
	frameHead
	frameBody
	frameCategory
	frameHotfix
)

type frame struct {
	name     string
	kind     frameKind
	line     int
	category *Category
	hotfix   *Hotfix
}

type builder struct {
	opts  Options
	doc   *Document
	stack []frame
	done  bool // </BLCMM> seen; the rest is the game's own flattened copy
}

// Parse tokenizes and builds src in one pass.
func Parse(src string, opts Options) (*Document, error) {
	return Build(lexer.New(src), opts)
}

// Build consumes tokens and returns the document tree. It makes a single
// linear pass with an explicit stack of open tags.
func Build(src TokenSource, opts Options) (*Document, error) {
	b := &builder{
		opts: opts,
		doc: &Document{
			Format:  types.FormatPlain,
			Profile: opts.Profile,
			Root:    &Category{Line: 0},
		},
	}

	for !b.done {
		tok, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := b.consume(tok); err != nil {
			return nil, err
		}
	}

	if len(b.stack) > 0 {
		open := make([]string, len(b.stack))
		for i, f := range b.stack {
			open[i] = f.name
		}
		return nil, &UnexpectedEOFError{Open: open, Line: b.stack[len(b.stack)-1].line}
	}
	return b.doc, nil
}

func (b *builder) consume(tok lexer.Token) error {
	switch tok.Kind {
	case lexer.OpenTag:
		return b.open(tok)
	case lexer.CloseTag:
		return b.close(tok)
	case lexer.SelfClosingTag:
		return b.leaf(tok)
	case lexer.CodeLine:
		b.appendCommand(&Command{Text: tok.Text, Enabled: true, Line: tok.Line})
		return nil
	case lexer.CommentLine:
		b.comment(tok)
		return nil
	default:
		panic("document: unknown token kind " + tok.Kind.String())
	}
}

func (b *builder) open(tok lexer.Token) error {
	f := frame{name: tok.Name, line: tok.Line}

	switch strings.ToLower(tok.Name) {
	case "blcmm":
		f.kind = frameBLCMM
		b.doc.Format = types.FormatBLCMM
	case "head":
		f.kind = frameHead
	case "body":
		f.kind = frameBody
	case "category":
		f.kind = frameCategory
		name, _ := tok.Attrs.Get("name")
		f.category = &Category{Name: name, Line: tok.Line}
	case "hotfix":
		h, err := newHotfix(tok)
		if err != nil {
			return err
		}
		f.kind = frameHotfix
		f.hotfix = h
	default:
		f.kind = frameTransparent
	}

	b.stack = append(b.stack, f)
	return nil
}

func (b *builder) close(tok lexer.Token) error {
	if len(b.stack) == 0 {
		return &UnbalancedTagError{Found: tok.Name, Line: tok.Line}
	}
	top := b.stack[len(b.stack)-1]
	if !strings.EqualFold(top.name, tok.Name) {
		return &UnbalancedTagError{Expected: top.name, Found: tok.Name, Line: tok.Line}
	}
	b.stack = b.stack[:len(b.stack)-1]

	switch top.kind {
	case frameCategory:
		b.appendNode(top.category)
	case frameHotfix:
		b.appendNode(top.hotfix)
	case frameBLCMM:
		b.done = true
	}
	return nil
}

func (b *builder) leaf(tok lexer.Token) error {
	switch strings.ToLower(tok.Name) {
	case "code":
		profiles, _ := tok.Attrs.Get("profiles")
		b.appendCommand(&Command{
			Text:    strings.TrimSpace(tok.Text),
			Enabled: b.profileEnabled(profiles),
			Line:    tok.Line,
		})
	case "type":
		name, _ := tok.Attrs.Get("name")
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case string(types.GameBL2):
			b.doc.Game = types.GameBL2
		case string(types.GameTPS):
			b.doc.Game = types.GameTPS
		}
	case "profile":
		name, _ := tok.Attrs.Get("name")
		if cur, _ := tok.Attrs.Get("current"); strings.EqualFold(cur, "true") {
			b.doc.Profile = name
		}
	case "hotfixes":
		if v, ok := tok.Attrs.Get("service"); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil || n < 0 {
				return &lexer.MalformedTagError{Line: tok.Line, Text: "<" + tok.Name + ">", Reason: "service must be a non-negative integer"}
			}
			b.doc.ServiceIndex = &n
		}
	case "category":
		name, _ := tok.Attrs.Get("name")
		b.appendNode(&Category{Name: name, Line: tok.Line})
	case "hotfix":
		h, err := newHotfix(tok)
		if err != nil {
			return err
		}
		b.appendNode(h)
	}
	return nil
}

func (b *builder) comment(tok lexer.Token) {
	if b.doc.Format == types.FormatBLCMM && !b.inBody() {
		return
	}
	if tok.Name != "" {
		if name, _ := SplitLine(tok.Text); name != "" && b.known(name) {
			b.appendCommand(&Command{Text: strings.TrimSpace(tok.Text), Custom: true, Line: tok.Line})
			return
		}
	}
	b.appendNode(&Comment{Text: tok.Text, Line: tok.Line})
}

func (b *builder) known(name string) bool {
	if strings.EqualFold(name, types.ControlCommand) {
		return true
	}
	return b.opts.Known != nil && b.opts.Known(name)
}

func (b *builder) inBody() bool {
	for _, f := range b.stack {
		if f.kind == frameBody {
			return true
		}
	}
	return false
}

// profileEnabled decides the host format's own enabled flag for a <code>
// line from its comma separated profiles attribute.
func (b *builder) profileEnabled(profiles string) bool {
	profiles = strings.TrimSpace(profiles)
	if profiles == "" {
		return false
	}
	if b.doc.Profile == "" {
		return true
	}
	for _, p := range strings.Split(profiles, ",") {
		if strings.TrimSpace(p) == b.doc.Profile {
			return true
		}
	}
	return false
}

func (b *builder) appendCommand(c *Command) {
	if c.Text == "" {
		return
	}
	for i := len(b.stack) - 1; i >= 0; i-- {
		if h := b.stack[i].hotfix; h != nil {
			h.Children = append(h.Children, c)
			return
		}
		if b.stack[i].category != nil {
			break
		}
	}
	b.appendNode(c)
}

// appendNode attaches n to the innermost open category or hotfix. Unknown
// container tags are transparent.
func (b *builder) appendNode(n Node) {
	for i := len(b.stack) - 1; i >= 0; i-- {
		f := b.stack[i]
		if f.category != nil {
			f.category.Children = append(f.category.Children, n)
			return
		}
		if f.hotfix != nil {
			if _, ok := n.(*Comment); ok {
				f.hotfix.Children = append(f.hotfix.Children, n)
				return
			}
		}
	}
	b.doc.Root.Children = append(b.doc.Root.Children, n)
}

func newHotfix(tok lexer.Token) (*Hotfix, error) {
	fail := func(reason string) (*Hotfix, error) {
		return nil, &lexer.MalformedTagError{Line: tok.Line, Text: "<" + tok.Name + ">", Reason: reason}
	}

	name, ok := tok.Attrs.Get("name")
	if !ok {
		return fail("hotfix requires a name attribute")
	}
	level, hasLevel := tok.Attrs.Get("level")
	pkg, hasPackage := tok.Attrs.Get("package")

	switch {
	case hasLevel && hasPackage:
		return fail("hotfix takes exactly one of level or package")
	case hasLevel:
		return &Hotfix{Name: name, Scope: types.ScopeLevel, Target: level, Line: tok.Line}, nil
	case hasPackage:
		return &Hotfix{Name: name, Scope: types.ScopePackage, Target: pkg, Line: tok.Line}, nil
	default:
		return fail("hotfix requires a level or package attribute")
	}
}
