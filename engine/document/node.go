// Package document builds the node tree of a mod file from lexer tokens.
package document

import (
	"strings"

	"github.com/nathoo/cmdext/types"
)

// Node is one of *Category, *Hotfix, *Comment or *Command. The set is
// closed: only this package implements it.
type Node interface {
	node()
}

// Category is a named, ordered group of nodes. The document root is an
// unnamed Category.
type Category struct {
	Name     string
	Children []Node
	Line     int
}

// Hotfix is a scoped block whose commands are applied through the hotfix
// service rather than the console.
type Hotfix struct {
	Name     string
	Scope    types.HotfixScope
	Target   string
	Children []Node // *Command and *Comment only
	Line     int
}

// Comment is an opaque text line kept for metadata extraction.
type Comment struct {
	Text string
	Line int
}

// Command is a raw command line. Custom commands have no enabled flag of
// their own; the strategy evaluator derives one for them.
type Command struct {
	Text    string
	Enabled bool
	Custom  bool
	Line    int
}

func (*Category) node() {}
func (*Hotfix) node()   {}
func (*Comment) node()  {}
func (*Command) node()  {}

// Split returns the command name and the remaining argument text.
func (c *Command) Split() (name, args string) {
	return SplitLine(c.Text)
}

// SplitLine separates the first whitespace-delimited word from the rest.
func SplitLine(line string) (name, args string) {
	line = strings.TrimSpace(line)
	idx := strings.IndexAny(line, " \t")
	if idx < 0 {
		return line, ""
	}
	return line[:idx], strings.TrimSpace(line[idx+1:])
}

// Document is the root of a parsed file.
type Document struct {
	Format       types.Format
	Game         types.Game
	ServiceIndex *int   // declared by <hotfixes service="N"/>
	Profile      string // current BLCMM profile, empty when none applies
	Root         *Category
}

// Walk visits every node in document order, depth first. Returning false
// from fn skips the children of that node.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	switch v := n.(type) {
	case *Category:
		for _, c := range v.Children {
			Walk(c, fn)
		}
	case *Hotfix:
		for _, c := range v.Children {
			Walk(c, fn)
		}
	case *Comment, *Command:
	default:
		panic("document: unknown node type")
	}
}
