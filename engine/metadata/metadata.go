// Package metadata recovers the descriptive record of a mod from its
// comments and header.
package metadata

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nathoo/cmdext/engine/document"
	"github.com/nathoo/cmdext/types"
)

// Well-known tags.
const (
	TagTitle       = "title"
	TagAuthor      = "author"
	TagMainAuthor  = "main-author"
	TagVersion     = "version"
	TagDescription = "description"
	TagTMLPriority = "tml-priority"
	TagTMLIgnoreMe = "tml-ignore-me"
)

var reServiceSet = regexp.MustCompile(`(?i)^set\s+Transient\.SparkServiceConfiguration_(\d+)\b`)

// Extract builds the metadata record for doc.
func Extract(doc *document.Document) types.Metadata {
	md := types.Metadata{
		Tags:         map[string][]string{},
		Game:         doc.Game,
		ServiceIndex: doc.ServiceIndex,
	}

	var untagged []string
	document.Walk(doc.Root, func(n document.Node) bool {
		switch v := n.(type) {
		case *document.Comment:
			if tag, value, ok := parseTag(v.Text); ok {
				md.Tags[tag] = append(md.Tags[tag], value)
			} else {
				untagged = append(untagged, v.Text)
			}
		case *document.Hotfix:
			md.RequiresHotfixes = true
		case *document.Command:
			if m := reServiceSet.FindStringSubmatch(v.Text); m != nil {
				md.RequiresHotfixes = true
				if md.ServiceIndex == nil {
					if n, err := strconv.Atoi(m[1]); err == nil {
						md.ServiceIndex = &n
					}
				}
			}
		}
		return true
	})

	if desc, ok := md.Tags[TagDescription]; ok {
		md.Description = JoinParagraphs(desc)
	} else {
		md.Description = JoinParagraphs(untagged)
	}

	if titles := md.Tags[TagTitle]; len(titles) > 0 {
		md.Title = titles[0]
	} else if doc.Format == types.FormatBLCMM {
		for _, n := range doc.Root.Children {
			if c, ok := n.(*document.Category); ok {
				md.Title = c.Name
				break
			}
		}
	}

	return md
}

// parseTag splits "@tag value" into its lower-cased tag and trimmed value.
func parseTag(line string) (tag, value string, ok bool) {
	line = strings.TrimSpace(line)
	if len(line) < 2 || line[0] != '@' {
		return "", "", false
	}
	end := strings.IndexAny(line, " \t")
	if end < 0 {
		return strings.ToLower(line[1:]), "", true
	}
	return strings.ToLower(line[1:end]), strings.TrimSpace(line[end+1:]), true
}

// JoinParagraphs joins lines the way markdown renders them: consecutive
// non-blank lines become one space separated paragraph and blank lines
// separate paragraphs.
func JoinParagraphs(lines []string) string {
	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
	}
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			flush()
			continue
		}
		current = append(current, l)
	}
	flush()
	return strings.Join(paragraphs, "\n\n")
}

// First returns the first value of tag.
func First(md types.Metadata, tag string) (string, bool) {
	vals := md.Tags[tag]
	if len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// Authors lists @main-author values before @author values.
func Authors(md types.Metadata) []string {
	var out []string
	out = append(out, md.Tags[TagMainAuthor]...)
	out = append(out, md.Tags[TagAuthor]...)
	return out
}

// Version returns the first @version value.
func Version(md types.Metadata) string {
	v, _ := First(md, TagVersion)
	return v
}

// TMLPriority parses @tml-priority.
func TMLPriority(md types.Metadata) (int, bool) {
	v, ok := First(md, TagTMLPriority)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// TMLIgnoreMe reports whether @tml-ignore-me is present.
func TMLIgnoreMe(md types.Metadata) bool {
	_, ok := md.Tags[TagTMLIgnoreMe]
	return ok
}
