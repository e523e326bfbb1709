// Package report renders a ParseResult as JSON or YAML for inspection.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nathoo/cmdext/engine/metadata"
	"github.com/nathoo/cmdext/types"
)

// Report is the serializable view of a ParseResult.
type Report struct {
	Source   string          `json:"source" yaml:"source"`
	Format   string          `json:"format" yaml:"format"`
	Metadata Metadata        `json:"metadata" yaml:"metadata"`
	Commands []types.Command `json:"commands" yaml:"commands"`
	Hotfixes []types.Hotfix  `json:"hotfixes" yaml:"hotfixes"`
	Warnings []string        `json:"warnings" yaml:"warnings"`
}

// Metadata mirrors types.Metadata with stable field names.
type Metadata struct {
	Title            string              `json:"title,omitempty" yaml:"title,omitempty"`
	Authors          []string            `json:"authors,omitempty" yaml:"authors,omitempty"`
	Version          string              `json:"version,omitempty" yaml:"version,omitempty"`
	Description      string              `json:"description,omitempty" yaml:"description,omitempty"`
	Game             string              `json:"game,omitempty" yaml:"game,omitempty"`
	ServiceIndex     *int                `json:"service_index,omitempty" yaml:"service_index,omitempty"`
	RequiresHotfixes bool                `json:"requires_hotfixes" yaml:"requires_hotfixes"`
	TMLPriority      *int                `json:"tml_priority,omitempty" yaml:"tml_priority,omitempty"`
	TMLIgnoreMe      bool                `json:"tml_ignore_me,omitempty" yaml:"tml_ignore_me,omitempty"`
	Tags             map[string][]string `json:"tags" yaml:"tags"`
}

// New builds the report for result parsed from source.
func New(source string, r types.ParseResult) *Report {
	rep := &Report{
		Source:   source,
		Format:   FormatName(r.Format),
		Commands: r.Commands,
		Hotfixes: r.Hotfixes,
		Warnings: r.Warnings,
		Metadata: Metadata{
			Title:            r.Metadata.Title,
			Authors:          metadata.Authors(r.Metadata),
			Version:          metadata.Version(r.Metadata),
			TMLIgnoreMe:      metadata.TMLIgnoreMe(r.Metadata),
			Description:      r.Metadata.Description,
			Game:             string(r.Metadata.Game),
			ServiceIndex:     r.Metadata.ServiceIndex,
			RequiresHotfixes: r.Metadata.RequiresHotfixes,
			Tags:             r.Metadata.Tags,
		},
	}
	if n, ok := metadata.TMLPriority(r.Metadata); ok {
		rep.Metadata.TMLPriority = &n
	}
	normalize(rep)
	return rep
}

// FormatName returns "blcmm" or "plain".
func FormatName(f types.Format) string {
	if f == types.FormatBLCMM {
		return "blcmm"
	}
	return "plain"
}

// Render serializes rep. format is "json" or "yaml".
func Render(rep *Report, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return json.MarshalIndent(rep, "", "  ")
	case "yaml", "yml":
		return yaml.Marshal(rep)
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// normalize keeps collections non-nil so empty ones render as [] and {}.
func normalize(rep *Report) {
	if rep.Commands == nil {
		rep.Commands = []types.Command{}
	}
	if rep.Hotfixes == nil {
		rep.Hotfixes = []types.Hotfix{}
	}
	if rep.Warnings == nil {
		rep.Warnings = []string{}
	}
	if rep.Metadata.Tags == nil {
		rep.Metadata.Tags = map[string][]string{}
	}
}
