// Package engine wires the parse pipeline to the command registry and runs
// mod files and console lines against a host game.
package engine

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/nathoo/cmdext/engine/args"
	"github.com/nathoo/cmdext/engine/document"
	"github.com/nathoo/cmdext/engine/hotfix"
	"github.com/nathoo/cmdext/engine/lexer"
	"github.com/nathoo/cmdext/engine/registry"
	"github.com/nathoo/cmdext/engine/script"
	"github.com/nathoo/cmdext/loader"
	"github.com/nathoo/cmdext/types"
)

// DefaultMaxExecDepth bounds exec chains such as a file that includes itself.
const DefaultMaxExecDepth = 32

// Host is the game the interpreter runs inside. Native receives every line
// the interpreter does not handle itself.
type Host interface {
	Native(line string)
}

// HostFunc adapts a function to Host.
type HostFunc func(line string)

// Native calls f.
func (f HostFunc) Native(line string) { f(line) }

// Options configures an Engine.
type Options struct {
	GameRoot     string
	ScriptRoot   string
	MaxExecDepth int
	Encoding     lexer.Encoding
	Profile      string
	ServiceIndex int
}

// Engine is the dispatcher. It is not safe for concurrent use.
type Engine struct {
	Registry *registry.Registry
	Host     Host
	Logger   *log.Logger

	opts   Options
	script *script.Namespace
	depth  int
}

// New creates an engine. A nil logger discards output.
func New(reg *registry.Registry, host Host, logger *log.Logger, opts Options) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.MaxExecDepth <= 0 {
		opts.MaxExecDepth = DefaultMaxExecDepth
	}
	if opts.ScriptRoot == "" {
		opts.ScriptRoot = opts.GameRoot
	}
	if opts.ServiceIndex <= 0 {
		opts.ServiceIndex = hotfix.DefaultServiceIndex
	}
	if host == nil {
		host = HostFunc(func(string) {})
	}
	return &Engine{Registry: reg, Host: host, Logger: logger, opts: opts}
}

// Close releases the script namespace.
func (e *Engine) Close() {
	if e.script != nil {
		e.script.Close()
		e.script = nil
	}
}

// GameRoot is the directory exec resolves relative paths against.
func (e *Engine) GameRoot() string { return e.opts.GameRoot }

// Known reports whether name is dispatched by the interpreter.
func (e *Engine) Known(name string) bool {
	switch strings.ToLower(name) {
	case "exec", "py", "pyexec":
		return true
	}
	return e.Registry.Has(name)
}

// Parse runs the parse pipeline against the live registry.
func (e *Engine) Parse(data []byte) (types.ParseResult, error) {
	return Parse(data, ParseOptions{Known: e.Known, Encoding: e.opts.Encoding, Profile: e.opts.Profile})
}

// Execute dispatches one console line.
func (e *Engine) Execute(line string) types.Outcome {
	name, rest := document.SplitLine(line)
	if name == "" {
		return types.Handled
	}
	return e.dispatch(name, rest)
}

// Dispatch runs one parsed tuple. Disabled tuples are skipped.
func (e *Engine) Dispatch(cmd types.Command) types.Outcome {
	if !cmd.Enabled {
		e.Logger.Debug("skip", "line", cmd.Line, "command", cmd.Name)
		return types.Handled
	}
	e.Logger.Debug("dispatch", "line", cmd.Line, "command", cmd.Name)
	return e.dispatch(cmd.Name, cmd.Args)
}

// RunFile parses path and dispatches its commands. The returned error is
// a read or parse failure; per-command failures are logged instead.
func (e *Engine) RunFile(path string) error {
	data, err := loader.ReadFile(path)
	if err != nil {
		return err
	}
	return e.RunBytes(path, data)
}

// RunBytes is RunFile for data already in memory.
func (e *Engine) RunBytes(name string, data []byte) error {
	res, err := e.Parse(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	for _, w := range res.Warnings {
		e.Logger.Warn(w, "file", name)
	}

	for _, cmd := range res.Commands {
		if e.Dispatch(cmd) == types.NotRecognized {
			e.Host.Native(joinLine(cmd.Name, cmd.Args))
		}
	}

	if len(res.Hotfixes) > 0 {
		index := e.opts.ServiceIndex
		if res.Metadata.ServiceIndex != nil {
			index = *res.Metadata.ServiceIndex
		}
		lines, warnings := hotfix.Encode(res.Hotfixes, index)
		for _, w := range warnings {
			e.Logger.Warn(w, "file", name)
		}
		for _, l := range lines {
			e.Host.Native(l)
		}
	}
	return nil
}

func (e *Engine) dispatch(name, rest string) types.Outcome {
	switch strings.ToLower(name) {
	case "exec":
		return e.exec(rest)
	case "py":
		return e.py(rest)
	case "pyexec":
		return e.pyexec(rest)
	case "set":
		return types.NotRecognized
	case strings.ToLower(types.ControlCommand):
		e.fail(fmt.Errorf("%s only applies inside a mod file", types.ControlCommand))
		return types.HandledWithError
	}

	cmd, ok := e.Registry.Lookup(name)
	if !ok {
		return types.NotRecognized
	}
	return e.invoke(cmd, rest)
}

func (e *Engine) invoke(cmd *registry.Command, rest string) types.Outcome {
	end := e.Registry.Begin()
	defer end()

	tokens, err := cmd.Splitter.Split(rest)
	if err != nil {
		err = &args.GrammarParseError{Command: cmd.Name, Reason: err.Error(), Usage: cmd.Grammar.Usage()}
	}
	var values *args.Values
	if err == nil {
		values, err = cmd.Grammar.Parse(tokens)
	}
	if err != nil {
		e.fail(err)
		var gpe *args.GrammarParseError
		if errors.As(err, &gpe) {
			e.Logger.Print(gpe.Usage)
		}
		return types.HandledWithError
	}

	if err := call(cmd, values); err != nil {
		e.Logger.Errorf("error: %+v", err)
		return types.HandledWithError
	}
	return types.Handled
}

// call runs the callback, turning both returned errors and panics into a
// CallbackError with a stack.
func call(cmd *registry.Command, values *args.Values) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CallbackError{Command: cmd.Name, Err: errors.Errorf("panic: %v", r)}
		}
	}()
	if cerr := cmd.Callback(values); cerr != nil {
		return &CallbackError{Command: cmd.Name, Err: errors.WithStack(cerr)}
	}
	return nil
}

func (e *Engine) exec(target string) types.Outcome {
	path, err := loader.Resolve(e.opts.GameRoot, target)
	if err != nil {
		e.fail(fmt.Errorf("exec: %w", err))
		return types.HandledWithError
	}
	if e.depth >= e.opts.MaxExecDepth {
		e.fail(&ExecDepthError{Path: path, Limit: e.opts.MaxExecDepth})
		return types.HandledWithError
	}

	e.depth++
	defer func() { e.depth-- }()

	if err := e.RunFile(path); err != nil {
		e.fail(fmt.Errorf("exec: %w", err))
		return types.HandledWithError
	}
	return types.Handled
}

func (e *Engine) namespace() *script.Namespace {
	if e.script == nil {
		e.script = script.New(script.Options{
			Console: func(line string) bool {
				out := e.Execute(line)
				if out == types.NotRecognized {
					e.Host.Native(line)
				}
				return out != types.HandledWithError
			},
			Log:  func(msg string) { e.Logger.Info(msg) },
			Root: e.opts.ScriptRoot,
		})
	}
	return e.script
}

func (e *Engine) py(code string) types.Outcome {
	if strings.TrimSpace(code) == "" {
		return types.Handled
	}
	if err := e.namespace().Exec("py", code); err != nil {
		e.failScript(err)
		return types.HandledWithError
	}
	return types.Handled
}

func (e *Engine) pyexec(target string) types.Outcome {
	path, err := loader.Resolve("", target)
	if err != nil {
		e.fail(fmt.Errorf("pyexec: %w", err))
		return types.HandledWithError
	}
	if err := e.namespace().ExecFile(path); err != nil {
		e.failScript(err)
		return types.HandledWithError
	}
	return types.Handled
}

func (e *Engine) fail(err error) {
	e.Logger.Errorf("error: %v", err)
}

func (e *Engine) failScript(err error) {
	var se *script.ScriptError
	if errors.As(err, &se) && se.Traceback != "" {
		e.Logger.Errorf("error: %v\n%s", err, se.Traceback)
		return
	}
	e.fail(err)
}

func joinLine(name, rest string) string {
	if rest == "" {
		return name
	}
	return name + " " + rest
}
