// Package tui provides a Bubble Tea console for the command interpreter.
package tui

// History keeps submitted console lines, newest last. A line appears at
// most once: submitting it again moves it to the newest position, so
// repeated commands stay one Up press away.
type History struct {
	entries []string
	max     int
	back    int // steps back from fresh input; 0 means not navigating
}

// NewHistory creates a history holding at most max lines.
func NewHistory(max int) *History {
	return &History{entries: make([]string, 0, max), max: max}
}

// Push records line as the newest entry and leaves navigation mode.
func (h *History) Push(line string) {
	h.back = 0
	for i, e := range h.entries {
		if e == line {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			break
		}
	}
	h.entries = append(h.entries, line)
	if over := len(h.entries) - h.max; over > 0 {
		h.entries = h.entries[over:]
	}
}

// Prev steps one entry older, stopping at the oldest. ok is false when the
// history is empty.
func (h *History) Prev() (line string, ok bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.back < len(h.entries) {
		h.back++
	}
	return h.at(), true
}

// Next steps one entry newer. ok is false once navigation is back at
// fresh input.
func (h *History) Next() (line string, ok bool) {
	if h.back == 0 {
		return "", false
	}
	h.back--
	if h.back == 0 {
		return "", false
	}
	return h.at(), true
}

// ResetCursor leaves navigation mode.
func (h *History) ResetCursor() {
	h.back = 0
}

// Entries returns a copy of the recorded lines, oldest first.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) at() string {
	return h.entries[len(h.entries)-h.back]
}
