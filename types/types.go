// Package types defines the shared data structures for the cmdext interpreter.
// This package contains only type definitions: no logic, no methods.
package types

// Command is one dispatchable line produced by parsing a mod file.
type Command struct {
	Name    string `json:"name" yaml:"name"` // command name as written (case preserved)
	Args    string `json:"args" yaml:"args"` // raw argument text, not yet tokenized
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Line    int    `json:"line" yaml:"line"` // 1-based source line
}

// EnableStrategy decides whether a custom command inside a category is live.
type EnableStrategy int

const (
	StrategyAny EnableStrategy = iota
	StrategyAll
	StrategyForce
	StrategyNext
)

// Game is the target game declared by a document header.
type Game string

const (
	GameUnknown Game = ""
	GameBL2     Game = "BL2"
	GameTPS     Game = "TPS"
)

// Format identifies which of the two supported file layouts a document uses.
type Format int

const (
	FormatPlain Format = iota
	FormatBLCMM
)

// HotfixScope is the scoping attribute of a hotfix block.
type HotfixScope string

const (
	ScopeLevel   HotfixScope = "level"
	ScopePackage HotfixScope = "package"
)

// Hotfix is a single command inside a hotfix block.
type Hotfix struct {
	Name    string      `json:"name" yaml:"name"`
	Scope   HotfixScope `json:"scope" yaml:"scope"`
	Target  string      `json:"target" yaml:"target"`   // level or package name; "None" for level-less patches
	Command string      `json:"command" yaml:"command"` // raw set/set_cmp line
	Enabled bool        `json:"enabled" yaml:"enabled"`
	Line    int         `json:"line" yaml:"line"`
}

// Metadata is the record extracted from a document's comments and header.
type Metadata struct {
	Tags             map[string][]string // @tag -> values, in document order
	Description      string              // explicit @description or synthesized from untagged lines
	Title            string
	Game             Game
	ServiceIndex     *int // nil when no hotfix service index is declared
	RequiresHotfixes bool
}

// ParseResult is the only artifact the dispatcher consumes.
type ParseResult struct {
	Format   Format
	Commands []Command
	Hotfixes []Hotfix
	Metadata Metadata
	Warnings []string
}

// Outcome is the tri-state result of dispatching a single line.
type Outcome int

const (
	Handled Outcome = iota
	NotRecognized
	HandledWithError
)

// ControlCommand is the reserved command that switches a category's
// EnableStrategy for the commands after it.
const ControlCommand = "CE_EnableOn"
