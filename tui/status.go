package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width inverted status line showing the
// registered command count, the game root and whether tracing is on.
func (m Model) renderStatusBar() string {
	count := len(m.engine.Registry.Names())
	noun := "commands"
	if count == 1 {
		noun = "command"
	}
	left := fmt.Sprintf(" cmdext | %d %s", count, noun)

	right := " "
	if m.trace {
		right = "TRACE "
	}

	// Show the game root only when it fits.
	if root := m.engine.GameRoot(); root != "" {
		candidate := left + " | " + root
		if lipgloss.Width(candidate)+lipgloss.Width(right)+2 < m.width {
			left = candidate
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
