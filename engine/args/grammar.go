// Package args parses the argument text of a registered command against its
// declared grammar.
package args

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// ErrGrammar is the sentinel for every argument parse failure.
var ErrGrammar = errors.New("invalid arguments")

// GrammarParseError reports arguments that do not fit a command's grammar.
// Usage is the rendered help for the command.
type GrammarParseError struct {
	Command string
	Reason  string
	Usage   string
}

func (e *GrammarParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Command, e.Reason)
}

// Is reports whether target is ErrGrammar.
func (e *GrammarParseError) Is(target error) bool {
	return target == ErrGrammar
}

// Arg is one positional argument.
type Arg struct {
	Name     string
	Optional bool
	// Variadic collects every remaining token. Only the last Arg may set it.
	Variadic bool
}

// Grammar declares what a command accepts.
type Grammar struct {
	Use   string
	Short string
	Args  []Arg
	// Flags declares options. With no Flags, tokens starting with '-' are
	// ordinary positional values.
	Flags func(fs *pflag.FlagSet)
}

// Validate checks that the positional layout is unambiguous.
func (g Grammar) Validate() error {
	optional := false
	for i, a := range g.Args {
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("argument %d has no name", i)
		}
		if a.Variadic && i != len(g.Args)-1 {
			return fmt.Errorf("variadic argument %q must be last", a.Name)
		}
		if !a.Optional && !a.Variadic && optional {
			return fmt.Errorf("required argument %q follows an optional one", a.Name)
		}
		if a.Optional {
			optional = true
		}
	}
	return nil
}

func (g Grammar) flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(g.Use, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if g.Flags != nil {
		g.Flags(fs)
	}
	return fs
}

// Parse matches tokens against the grammar.
func (g Grammar) Parse(tokens []string) (*Values, error) {
	fs := g.flagSet()
	positional := tokens
	if g.Flags != nil {
		if err := fs.Parse(tokens); err != nil {
			if errors.Is(err, pflag.ErrHelp) {
				return nil, g.fail("help requested")
			}
			return nil, g.fail(err.Error())
		}
		positional = fs.Args()
	}

	v := &Values{named: map[string]string{}, Flags: fs}
	i := 0
	for _, a := range g.Args {
		if a.Variadic {
			if i >= len(positional) && !a.Optional {
				return nil, g.fail(fmt.Sprintf("missing argument <%s>", a.Name))
			}
			if i < len(positional) {
				v.rest = append(v.rest, positional[i:]...)
			}
			i = len(positional)
			break
		}
		if i >= len(positional) {
			if a.Optional {
				break
			}
			return nil, g.fail(fmt.Sprintf("missing argument <%s>", a.Name))
		}
		v.named[a.Name] = positional[i]
		i++
	}
	if i < len(positional) {
		return nil, g.fail(fmt.Sprintf("unexpected argument %q", positional[i]))
	}
	return v, nil
}

func (g Grammar) fail(reason string) *GrammarParseError {
	return &GrammarParseError{Command: g.Use, Reason: reason, Usage: g.Usage()}
}

// Usage renders the help text shown after a grammar failure.
func (g Grammar) Usage() string {
	var b strings.Builder
	b.WriteString("usage: ")
	b.WriteString(g.Use)

	fs := g.flagSet()
	if fs.HasFlags() {
		b.WriteString(" [flags]")
	}
	for _, a := range g.Args {
		b.WriteByte(' ')
		switch {
		case a.Variadic && a.Optional:
			fmt.Fprintf(&b, "[%s...]", a.Name)
		case a.Variadic:
			fmt.Fprintf(&b, "<%s>...", a.Name)
		case a.Optional:
			fmt.Fprintf(&b, "[%s]", a.Name)
		default:
			fmt.Fprintf(&b, "<%s>", a.Name)
		}
	}
	if g.Short != "" {
		b.WriteString("\n\n")
		b.WriteString(g.Short)
	}
	if fs.HasFlags() {
		b.WriteString("\n\nflags:\n")
		b.WriteString(strings.TrimRight(fs.FlagUsages(), "\n"))
	}
	return b.String()
}

// Values holds parsed arguments.
type Values struct {
	named map[string]string
	rest  []string
	// Flags is never nil; it is empty when the grammar declares none.
	Flags *pflag.FlagSet
}

// Get returns a named positional argument, or "" when an optional one was
// not supplied.
func (v *Values) Get(name string) string {
	return v.named[name]
}

// Has reports whether a named positional argument was supplied.
func (v *Values) Has(name string) bool {
	_, ok := v.named[name]
	return ok
}

// Rest returns the tokens collected by the variadic argument.
func (v *Values) Rest() []string {
	return v.rest
}
