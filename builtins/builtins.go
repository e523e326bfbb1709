// Package builtins is the static list of commands the interpreter ships
// with. Each forwards to a Game, which does the actual work inside the
// running game.
package builtins

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/nathoo/cmdext/engine/args"
	"github.com/nathoo/cmdext/engine/registry"
)

// Game is the running game as the built-in commands see it.
type Game interface {
	Clone(source, name string) error
	CloneBP(source, name string) error
	KeepAlive(object string) error
	LoadPackage(pkg, object string) error
	SuppressNextChat(message string) error
	SetEarly(object, attribute, value string) error
	RegenBalance() error
}

// Spec describes one built-in command.
type Spec struct {
	Name     string
	Grammar  args.Grammar
	Splitter args.Splitter
	Run      func(g Game, v *args.Values) error
}

// Specs is the full built-in set, in registration order.
var Specs = []Spec{
	{
		Name:     "Clone",
		Grammar:  args.Grammar{Short: "Create a copy of an object.", Args: []args.Arg{{Name: "source"}, {Name: "name"}}},
		Splitter: args.ObjectName,
		Run: func(g Game, v *args.Values) error {
			return g.Clone(v.Get("source"), v.Get("name"))
		},
	},
	{
		Name:     "CloneBP",
		Grammar:  args.Grammar{Short: "Create a copy of a blueprint object.", Args: []args.Arg{{Name: "source"}, {Name: "name"}}},
		Splitter: args.ObjectName,
		Run: func(g Game, v *args.Values) error {
			return g.CloneBP(v.Get("source"), v.Get("name"))
		},
	},
	{
		Name:     "KeepAlive",
		Grammar:  args.Grammar{Short: "Stop an object from being garbage collected.", Args: []args.Arg{{Name: "object"}}},
		Splitter: args.ObjectName,
		Run: func(g Game, v *args.Values) error {
			return g.KeepAlive(v.Get("object"))
		},
	},
	{
		Name: "LoadPackage",
		Grammar: args.Grammar{
			Short: "Load a package and keep its objects alive.",
			Args:  []args.Arg{{Name: "package"}},
			Flags: func(fs *pflag.FlagSet) {
				fs.String("object", "", "only keep this object alive")
			},
		},
		Splitter: args.Shell,
		Run: func(g Game, v *args.Values) error {
			obj, err := v.Flags.GetString("object")
			if err != nil {
				return err
			}
			return g.LoadPackage(v.Get("package"), obj)
		},
	},
	{
		Name:     "SuppressNextChat",
		Grammar:  args.Grammar{Short: "Hide the next chat message matching text.", Args: []args.Arg{{Name: "message", Variadic: true}}},
		Splitter: args.Shell,
		Run: func(g Game, v *args.Values) error {
			return g.SuppressNextChat(strings.Join(v.Rest(), " "))
		},
	},
	{
		Name: "SetEarly",
		Grammar: args.Grammar{
			Short: "Set an attribute before the game's own set commands run.",
			Args:  []args.Arg{{Name: "object"}, {Name: "attribute"}, {Name: "value", Variadic: true, Optional: true}},
		},
		Splitter: args.ObjectName,
		Run: func(g Game, v *args.Values) error {
			return g.SetEarly(v.Get("object"), v.Get("attribute"), strings.Join(v.Rest(), " "))
		},
	},
	{
		Name:    "RegenBalance",
		Grammar: args.Grammar{Short: "Recalculate item balance after edits."},
		Run: func(g Game, _ *args.Values) error {
			return g.RegenBalance()
		},
	},
}

// Register adds every built-in to reg. On failure the ones already added
// are removed again.
func Register(reg *registry.Registry, g Game) ([]registry.Handle, error) {
	handles := make([]registry.Handle, 0, len(Specs))
	for _, s := range Specs {
		run := s.Run
		h, err := reg.Register(s.Name, s.Grammar, s.Splitter, func(v *args.Values) error {
			return run(g, v)
		})
		if err != nil {
			Unregister(reg, handles)
			return nil, fmt.Errorf("registering built-in %s: %w", s.Name, err)
		}
		handles = append(handles, h)
	}
	return handles, nil
}

// Unregister removes handles from reg.
func Unregister(reg *registry.Registry, handles []registry.Handle) {
	for _, h := range handles {
		_ = reg.Deregister(h)
	}
}
