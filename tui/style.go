package tui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleOutput = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleWarn = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleInput = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindOutput lineKind = iota
	kindSystem
	kindWarn
	kindError
	kindTrace
)

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// classifyLine determines what kind of output line this is. Log lines are
// recognized by their level field; a timestamp may take up to two fields
// before it.
func classifyLine(line string) lineKind {
	line = ansiEscape.ReplaceAllString(line, "")
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	}

	fields := strings.Fields(line)
	for i := 0; i < len(fields) && i < 3; i++ {
		switch fields[i] {
		case "ERRO", "FATA":
			return kindError
		case "WARN":
			return kindWarn
		case "DEBU":
			return kindTrace
		case "INFO":
			return kindOutput
		}
	}
	return kindOutput
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindSystem:
		return styleSystem.Render(line)
	case kindWarn:
		return styleWarn.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleOutput.Render(line)
	}
}

// styledInput renders the echoed console input with a "> " prefix.
func styledInput(input string) string {
	return styleInput.Render("> " + input)
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
