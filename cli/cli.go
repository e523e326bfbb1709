// Package cli provides the plain line-oriented console: it reads commands,
// dispatches them through the engine and handles / meta-commands.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nathoo/cmdext/engine"
	"github.com/nathoo/cmdext/engine/report"
	"github.com/nathoo/cmdext/loader"
	"github.com/nathoo/cmdext/types"
)

// CLI drives an engine from a line reader.
type CLI struct {
	Engine    *engine.Engine
	In        io.Reader
	Out       io.Writer
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)
	Prompt    string
}

// New creates a CLI on stdin and stdout.
func New(eng *engine.Engine) *CLI {
	return &CLI{
		Engine: eng,
		In:     os.Stdin,
		Out:    os.Stdout,
		Prompt: "> ",
	}
}

// Run loops until /quit or end of input.
func (c *CLI) Run() {
	scanner := bufio.NewScanner(c.In)
	for {
		c.print(c.Prompt)
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" || strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return
			}
			continue
		}
		c.execute(input)
	}
}

// execute dispatches one line and forwards it to the host when the
// interpreter does not know it.
func (c *CLI) execute(line string) types.Outcome {
	out := c.Engine.Execute(line)
	if out == types.NotRecognized {
		c.Engine.Host.Native(line)
	}
	if c.Trace {
		c.printSystem(fmt.Sprintf("trace: %s -> %s", line, OutcomeName(out)))
	}
	return out
}

// handleMeta dispatches meta-commands. Returns true if the console should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	rest := parts[1:]

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/help":
		c.cmdHelp()

	case "/commands":
		c.cmdCommands()

	case "/inspect":
		c.cmdInspect(rest)

	case "/run":
		c.cmdRun(rest)

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.Engine.Logger.SetLevel(log.DebugLevel)
			c.printSystem("Trace output enabled.")
		} else {
			c.Engine.Logger.SetLevel(log.InfoLevel)
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdHelp() {
	help := []string{
		"Console:",
		"  /commands                    List registered commands",
		"  /inspect <file> [json|yaml]  Show how a mod file parses",
		"  /run <file>                  Run a mod file",
		"  /trace                       Toggle dispatch tracing",
		"  /help                        Show this help",
		"  /quit                        Exit",
		"",
		"Interpreter commands:",
		"  exec <file>                  Run a mod file relative to the game root",
		"  py <code>                    Run a script line",
		"  pyexec <file>                Run a script file",
		"  <Command> [args]             Any registered command; see /commands",
		"",
		"Everything else is passed to the game.",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdCommands() {
	names := c.Engine.Registry.Names()
	if len(names) == 0 {
		c.printSystem("No commands registered.")
		return
	}
	for _, name := range names {
		cmd, _ := c.Engine.Registry.Lookup(name)
		c.printLine(cmd.Grammar.Usage())
		c.printLine("")
	}
}

func (c *CLI) cmdInspect(argv []string) {
	if len(argv) == 0 {
		c.printSystem("Usage: /inspect <file> [json|yaml]")
		return
	}
	format := "yaml"
	if len(argv) > 1 {
		format = argv[1]
	}

	data, err := loader.ReadFile(argv[0])
	if err != nil {
		c.printSystem(fmt.Sprintf("Inspect failed: %v", err))
		return
	}
	res, err := c.Engine.Parse(data)
	if err != nil {
		c.printSystem(fmt.Sprintf("Inspect failed: %v", err))
		return
	}
	out, err := report.Render(report.New(argv[0], res), format)
	if err != nil {
		c.printSystem(fmt.Sprintf("Inspect failed: %v", err))
		return
	}
	c.print(string(out))
}

func (c *CLI) cmdRun(argv []string) {
	if len(argv) == 0 {
		c.printSystem("Usage: /run <file>")
		return
	}
	if err := c.Engine.RunFile(strings.Join(argv, " ")); err != nil {
		c.printSystem(fmt.Sprintf("Run failed: %v", err))
	}
}

// OutcomeName renders a dispatch outcome for display.
func OutcomeName(o types.Outcome) string {
	switch o {
	case types.Handled:
		return "handled"
	case types.NotRecognized:
		return "not recognized"
	case types.HandledWithError:
		return "handled with error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
