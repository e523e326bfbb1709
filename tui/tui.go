package tui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/nathoo/cmdext/cli"
	"github.com/nathoo/cmdext/engine"
	"github.com/nathoo/cmdext/engine/report"
	"github.com/nathoo/cmdext/loader"
	"github.com/nathoo/cmdext/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed console input
	isSystem bool // true for meta-command output
}

// Model is the Bubble Tea model for the console.
type Model struct {
	engine *engine.Engine
	logs   *bytes.Buffer // engine log output, drained after every line

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
}

// outputMsg carries output into the Update loop.
type outputMsg struct {
	input    string
	lines    []string
	isSystem bool
}

// New creates a console model. The engine's logger is redirected into the
// console so errors and warnings land in the scrollback.
func New(eng *engine.Engine) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 1024
	ti.PromptStyle = styleInputPrompt

	logs := &bytes.Buffer{}
	eng.Logger.SetOutput(logs)

	return Model{
		engine:  eng,
		logs:    logs,
		input:   ti,
		history: NewHistory(100),
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine) error {
	m := New(eng)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init starts the cursor blinking and prints the banner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg {
		return outputMsg{
			lines:    []string{"cmdext console. Type /help for commands."},
			isSystem: true,
		}
	})
}

// Update handles messages (key presses, window resize, output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // status bar + input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case outputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	return m, inputCmd
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(outputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	out := m.engine.Execute(input)
	if out == types.NotRecognized {
		m.engine.Host.Native(input)
	}
	output := m.drainLogs()
	if m.trace {
		output = append(output, fmt.Sprintf("[trace] %s -> %s", input, cli.OutcomeName(out)))
	}
	m = m.appendOutput(outputMsg{input: input, lines: output})
	return m, nil
}

// drainLogs returns and clears whatever the engine logged since last call.
func (m Model) drainLogs() []string {
	text := strings.TrimRight(m.logs.String(), "\n")
	m.logs.Reset()
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// appendOutput adds lines to the scrollback and refreshes the viewport.
func (m Model) appendOutput(msg outputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: msg.input, isInput: true})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	m.rawLines = append(m.rawLines, rawLine{})
	m.refreshViewport()
	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	styled := make([]string, 0, len(m.rawLines))
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)
		switch {
		case rl.isInput:
			styled = append(styled, styledInput(wrapped))
		case rl.isSystem:
			styled = append(styled, styleSystem.Render(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within width, breaking at spaces. Existing
// newlines are kept and indentation of each line survives the wrap.
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = wrapLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func wrapLine(line string, width int) string {
	if len(line) <= width {
		return line
	}
	indent := line[:len(line)-len(strings.TrimLeft(line, " "))]

	var b strings.Builder
	b.WriteString(indent)
	lineLen := len(indent)
	for i, word := range strings.Fields(line) {
		switch {
		case i == 0:
		case lineLen+1+len(word) > width:
			b.WriteString("\n")
			b.WriteString(indent)
			lineLen = len(indent)
		default:
			b.WriteString(" ")
			lineLen++
		}
		b.WriteString(word)
		lineLen += len(word)
	}
	return b.String()
}

// View renders the full layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	rest := parts[1:]

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/help":
		return cmdHelp(), false

	case "/commands":
		return m.cmdCommands(), false

	case "/inspect":
		return m.cmdInspect(rest), false

	case "/run":
		return m.cmdRun(rest), false

	case "/history":
		return m.history.Entries(), false

	case "/clear":
		m.rawLines = nil
		return nil, false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			m.engine.Logger.SetLevel(log.DebugLevel)
			return []string{"Trace output enabled."}, false
		}
		m.engine.Logger.SetLevel(log.InfoLevel)
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func cmdHelp() []string {
	return []string{
		"Console:",
		"  /commands                    List registered commands",
		"  /inspect <file> [json|yaml]  Show how a mod file parses",
		"  /run <file>                  Run a mod file",
		"  /history                     Show submitted lines",
		"  /clear                       Clear the scrollback",
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
		"Navigation: PgUp/PgDn to scroll, Up/Down for history",
	}
}

func (m *Model) cmdCommands() []string {
	names := m.engine.Registry.Names()
	if len(names) == 0 {
		return []string{"No commands registered."}
	}
	var out []string
	for _, name := range names {
		cmd, _ := m.engine.Registry.Lookup(name)
		out = append(out, strings.Split(cmd.Grammar.Usage(), "\n")...)
		out = append(out, "")
	}
	return out
}

func (m *Model) cmdInspect(argv []string) []string {
	if len(argv) == 0 {
		return []string{"Usage: /inspect <file> [json|yaml]"}
	}
	format := "yaml"
	if len(argv) > 1 {
		format = argv[1]
	}

	data, err := loader.ReadFile(argv[0])
	if err != nil {
		return []string{fmt.Sprintf("Inspect failed: %v", err)}
	}
	res, err := m.engine.Parse(data)
	if err != nil {
		return []string{fmt.Sprintf("Inspect failed: %v", err)}
	}
	out, err := report.Render(report.New(argv[0], res), format)
	if err != nil {
		return []string{fmt.Sprintf("Inspect failed: %v", err)}
	}
	return strings.Split(strings.TrimRight(string(out), "\n"), "\n")
}

func (m *Model) cmdRun(argv []string) []string {
	if len(argv) == 0 {
		return []string{"Usage: /run <file>"}
	}
	path := strings.Join(argv, " ")
	err := m.engine.RunFile(path)
	out := m.drainLogs()
	if err != nil {
		return append(out, fmt.Sprintf("Run failed: %v", err))
	}
	return append(out, fmt.Sprintf("Ran %s.", path))
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled, since
// those keys walk the input history.
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
