// Package strategy decides which custom commands in a document are live and
// flattens the document into dispatchable tuples.
//
// Regular commands carry the host format's own enabled flag and keep it.
// Custom commands have none; each derives one from the regular commands in
// its category according to the category's active EnableStrategy:
//
//	Force  always enabled
//	All    every regular command in the category is enabled (true when there are none)
//	Any    at least one regular command in the category is enabled (false when there are none)
//	Next   the next regular command after it is enabled (false when there is none)
//
// The active strategy starts as Any in every category and is changed by a
// CE_EnableOn control command for the commands that follow it.
package strategy

import (
	"fmt"
	"strings"

	"github.com/nathoo/cmdext/engine/document"
	"github.com/nathoo/cmdext/types"
)

var names = map[types.EnableStrategy]string{
	types.StrategyAny:   "Any",
	types.StrategyAll:   "All",
	types.StrategyForce: "Force",
	types.StrategyNext:  "Next",
}

// Parse reads a strategy name, case-insensitively.
func Parse(s string) (types.EnableStrategy, bool) {
	for st, name := range names {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return st, true
		}
	}
	return types.StrategyAny, false
}

// Name returns the canonical spelling of s.
func Name(s types.EnableStrategy) string {
	if n, ok := names[s]; ok {
		return n
	}
	return fmt.Sprintf("EnableStrategy(%d)", int(s))
}

// Result is the flattened, evaluated document.
type Result struct {
	Commands []types.Command
	Hotfixes []types.Hotfix
	Warnings []string
}

// Evaluate walks every category independently and returns all commands in
// document order with their enabled state decided.
func Evaluate(doc *document.Document) Result {
	var r Result
	evalCategory(doc.Root, &r)
	return r
}

// entry is the per-child bookkeeping for one category.
type entry struct {
	cmd      *document.Command
	name     string
	args     string
	control  bool
	strategy types.EnableStrategy
	enabled  bool
}

func evalCategory(cat *document.Category, r *Result) {
	entries := make([]entry, len(cat.Children))

	// Pass 1: resolve control commands and gather the regular flags.
	active := types.StrategyAny
	allEnabled, anyEnabled := true, false
	for i, child := range cat.Children {
		cmd, ok := child.(*document.Command)
		if !ok {
			continue
		}
		e := &entries[i]
		e.cmd = cmd
		e.name, e.args = cmd.Split()

		if strings.EqualFold(e.name, types.ControlCommand) {
			e.control = true
			st, ok := parseControlArgs(e.args)
			if !ok {
				r.Warnings = append(r.Warnings, fmt.Sprintf(
					"line %d: %s expects one of All, Any, Force, Next; got %q", cmd.Line, types.ControlCommand, e.args))
				continue
			}
			active = st
			continue
		}

		if cmd.Custom {
			e.strategy = active
			continue
		}
		allEnabled = allEnabled && cmd.Enabled
		anyEnabled = anyEnabled || cmd.Enabled
	}

	// Pass 2: walk backwards so Next sees the following regular flag.
	nextEnabled := false
	for i := len(entries) - 1; i >= 0; i-- {
		e := &entries[i]
		if e.cmd == nil || e.control {
			continue
		}
		if !e.cmd.Custom {
			e.enabled = e.cmd.Enabled
			nextEnabled = e.cmd.Enabled
			continue
		}
		switch e.strategy {
		case types.StrategyForce:
			e.enabled = true
		case types.StrategyAll:
			e.enabled = allEnabled
		case types.StrategyAny:
			e.enabled = anyEnabled
		case types.StrategyNext:
			e.enabled = nextEnabled
		}
	}

	// Emit in document order, descending into nested scopes as they appear.
	for i, child := range cat.Children {
		switch v := child.(type) {
		case *document.Command:
			e := entries[i]
			if e.control {
				continue
			}
			r.Commands = append(r.Commands, types.Command{
				Name:    e.name,
				Args:    e.args,
				Enabled: e.enabled,
				Line:    v.Line,
			})
		case *document.Category:
			evalCategory(v, r)
		case *document.Hotfix:
			collectHotfix(v, r)
		case *document.Comment:
		default:
			panic("strategy: unknown node type")
		}
	}
}

func parseControlArgs(args string) (types.EnableStrategy, bool) {
	fields := strings.Fields(args)
	if len(fields) != 1 {
		return types.StrategyAny, false
	}
	return Parse(fields[0])
}

func collectHotfix(h *document.Hotfix, r *Result) {
	for _, child := range h.Children {
		cmd, ok := child.(*document.Command)
		if !ok {
			continue
		}
		if cmd.Custom {
			r.Warnings = append(r.Warnings, fmt.Sprintf(
				"line %d: command %q inside hotfix %q ignored", cmd.Line, cmd.Text, h.Name))
			continue
		}
		r.Hotfixes = append(r.Hotfixes, types.Hotfix{
			Name:    h.Name,
			Scope:   h.Scope,
			Target:  h.Target,
			Command: cmd.Text,
			Enabled: cmd.Enabled,
			Line:    cmd.Line,
		})
	}
}
