// Package script is the persistent namespace behind the py and pyexec
// commands. Scripts are Lua, run in a sandboxed VM whose globals survive
// from one call to the next.
package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// ErrScript is the sentinel for every script failure.
var ErrScript = errors.New("script failed")

// ScriptError carries the failing chunk name and the interpreter trace.
type ScriptError struct {
	Source    string
	Message   string
	Traceback string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

// Is reports whether target is ErrScript.
func (e *ScriptError) Is(target error) bool {
	return target == ErrScript
}

// Options wires the namespace to its host.
type Options struct {
	// Console backs the console(line) global and reports whether the
	// line was handled.
	Console func(line string) bool
	// Log backs log(msg) and print(...).
	Log func(msg string)
	// Root resolves relative ExecFile paths.
	Root string
}

// Namespace owns one Lua VM.
type Namespace struct {
	L    *lua.LState
	opts Options
}

// New creates a sandboxed namespace.
func New(opts Options) *Namespace {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)

	n := &Namespace{L: L, opts: opts}
	n.registerAPI()
	return n
}

// Close releases the VM.
func (n *Namespace) Close() {
	n.L.Close()
}

// Exec runs code as a chunk named source.
func (n *Namespace) Exec(source, code string) error {
	fn, err := n.L.Load(strings.NewReader(code), source)
	if err != nil {
		return toScriptError(source, err)
	}
	n.L.Push(fn)
	if err := n.L.PCall(0, lua.MultRet, nil); err != nil {
		return toScriptError(source, err)
	}
	n.L.SetTop(0)
	return nil
}

// ExecFile runs a script file, relative paths resolved against Root.
func (n *Namespace) ExecFile(path string) error {
	if !filepath.IsAbs(path) && n.opts.Root != "" {
		path = filepath.Join(n.opts.Root, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading script %s: %w", path, err)
	}
	return n.Exec(filepath.Base(path), string(data))
}

// Global returns a global as a Go string, for inspection.
func (n *Namespace) Global(name string) string {
	v := n.L.GetGlobal(name)
	if v == lua.LNil {
		return ""
	}
	return v.String()
}

func toScriptError(source string, err error) error {
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) {
		msg := err.Error()
		if apiErr.Object != nil {
			msg = apiErr.Object.String()
		}
		return &ScriptError{Source: source, Message: msg, Traceback: apiErr.StackTrace}
	}
	return &ScriptError{Source: source, Message: err.Error()}
}

func (n *Namespace) registerAPI() {
	// console("Clone A B") re-enters the interpreter.
	n.L.SetGlobal("console", n.L.NewFunction(func(L *lua.LState) int {
		line := L.CheckString(1)
		handled := false
		if n.opts.Console != nil {
			handled = n.opts.Console(line)
		}
		L.Push(lua.LBool(handled))
		return 1
	}))

	logFn := n.L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		if n.opts.Log != nil {
			n.opts.Log(strings.Join(parts, " "))
		}
		return 0
	})
	n.L.SetGlobal("log", logFn)
	n.L.SetGlobal("print", logFn)
}

func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox strips globals that reach outside the VM.
func sandbox(L *lua.LState) {
	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage", "module", "require",
	} {
		L.SetGlobal(name, lua.LNil)
	}
}
