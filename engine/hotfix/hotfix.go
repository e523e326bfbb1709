// Package hotfix encodes parsed hotfix blocks into the two native set
// commands the game reads from its Spark service configuration.
package hotfix

import (
	"fmt"
	"strings"

	"github.com/nathoo/cmdext/types"
)

// DefaultServiceIndex is the slot Borderlands 2 and TPS read hotfixes from.
const DefaultServiceIndex = 6

const (
	prefixLevel    = "SparkLevelPatchEntry-"
	prefixOnDemand = "SparkOnDemandPatchEntry-"
	prefixGlobal   = "SparkPatchEntry-"
)

// Entry is one key/value pair of the service configuration.
type Entry struct {
	Key   string
	Value string
}

// Entries converts enabled hotfix commands into service entries. Commands
// that are neither set nor set_cmp are skipped with a warning.
func Entries(hfs []types.Hotfix) ([]Entry, []string) {
	counts := map[string]int{}
	for _, h := range hfs {
		if h.Enabled {
			counts[h.Name]++
		}
	}

	var (
		entries  []Entry
		warnings []string
		seen     = map[string]int{}
	)
	for _, h := range hfs {
		if !h.Enabled {
			continue
		}
		body, err := value(h.Command)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("line %d: hotfix %q: %v", h.Line, h.Name, err))
			continue
		}

		var prefix, v string
		switch {
		case h.Scope == types.ScopePackage:
			prefix, v = prefixOnDemand, h.Target+","+body
		case strings.EqualFold(h.Target, "None") || h.Target == "":
			prefix, v = prefixGlobal, body
		default:
			prefix, v = prefixLevel, h.Target+","+body
		}

		key := prefix + h.Name
		if counts[h.Name] > 1 {
			seen[h.Name]++
			key = fmt.Sprintf("%s%d", key, seen[h.Name])
		}
		entries = append(entries, Entry{Key: key, Value: v})
	}
	return entries, warnings
}

// value renders "object,attribute,from,to" from a set or set_cmp command.
func value(cmd string) (string, error) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return "", fmt.Errorf("empty command")
	}
	switch strings.ToLower(fields[0]) {
	case "set":
		if len(fields) < 3 {
			return "", fmt.Errorf("set needs an object and an attribute")
		}
		return strings.Join([]string{fields[1], fields[2], "", rest(cmd, 3)}, ","), nil
	case "set_cmp":
		if len(fields) < 4 {
			return "", fmt.Errorf("set_cmp needs an object, an attribute and a current value")
		}
		return strings.Join([]string{fields[1], fields[2], fields[3], rest(cmd, 4)}, ","), nil
	default:
		return "", fmt.Errorf("unsupported hotfix command %q", fields[0])
	}
}

// rest returns cmd after its first n words, inner spacing preserved.
func rest(cmd string, n int) string {
	s := strings.TrimSpace(cmd)
	for i := 0; i < n && s != ""; i++ {
		end := strings.IndexAny(s, " \t")
		if end < 0 {
			return ""
		}
		s = strings.TrimLeft(s[end:], " \t")
	}
	return strings.TrimSpace(s)
}

// Lines renders entries as the Keys and Values set commands for the given
// service index. No entries yields no lines.
func Lines(entries []Entry, index int) []string {
	if len(entries) == 0 {
		return nil
	}
	keys := make([]string, len(entries))
	values := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = `"` + e.Key + `"`
		values[i] = `"` + e.Value + `"`
	}
	target := fmt.Sprintf("set Transient.SparkServiceConfiguration_%d", index)
	return []string{
		fmt.Sprintf("%s Keys (%s)", target, strings.Join(keys, ",")),
		fmt.Sprintf("%s Values (%s)", target, strings.Join(values, ",")),
	}
}

// Encode is Entries followed by Lines.
func Encode(hfs []types.Hotfix, index int) ([]string, []string) {
	entries, warnings := Entries(hfs)
	return Lines(entries, index), warnings
}
