package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/cmdext/engine/document"
	"github.com/nathoo/cmdext/types"
)

func parse(t *testing.T, src string) *document.Document {
	t.Helper()
	doc, err := document.Parse(src, document.Options{})
	require.NoError(t, err)
	return doc
}

func TestExtract_Tags(t *testing.T) {
	doc := parse(t, `# @title Better Guns
# @author alice
# @main-author bob
# @author carol
# @version 1.2
# @TML-Priority 5
# @tml-ignore-me
set A B C
`)
	md := Extract(doc)

	assert.Equal(t, "Better Guns", md.Title)
	assert.Equal(t, []string{"alice", "carol"}, md.Tags[TagAuthor])
	assert.Equal(t, []string{"bob", "alice", "carol"}, Authors(md))
	assert.Equal(t, "1.2", Version(md))

	prio, ok := TMLPriority(md)
	assert.True(t, ok)
	assert.Equal(t, 5, prio)
	assert.True(t, TMLIgnoreMe(md))
	assert.Equal(t, "", md.Description)
	assert.Nil(t, md.ServiceIndex)
	assert.False(t, md.RequiresHotfixes)
}

func TestExtract_SynthesizedDescription(t *testing.T) {
	doc := parse(t, `# Makes every gun
#   shoot rainbows.
#
#
# Requires nothing.
# @author alice
set A B C
`)
	md := Extract(doc)
	assert.Equal(t, "Makes every gun shoot rainbows.\n\nRequires nothing.", md.Description)
}

func TestExtract_ExplicitDescriptionWins(t *testing.T) {
	doc := parse(t, "# free text\n# @description first\n# @description second\n")
	md := Extract(doc)
	assert.Equal(t, "first second", md.Description)
}

func TestExtract_BLCMMHeader(t *testing.T) {
	doc := parse(t, `<BLCMM v="1">
<head>
<type name="tps" offline="true"/>
</head>
<body>
<category name="Moon Mod">
<hotfix name="x" level="None">
<code profiles="default">set A B C</code>
</hotfix>
</category>
</body>
</BLCMM>`)
	md := Extract(doc)

	assert.Equal(t, types.GameTPS, md.Game)
	assert.Equal(t, "Moon Mod", md.Title)
	assert.True(t, md.RequiresHotfixes)
	assert.Nil(t, md.ServiceIndex)
}

func TestExtract_ServiceIndexFromSetCommand(t *testing.T) {
	doc := parse(t, `set Transient.SparkServiceConfiguration_6 Keys ("SparkPatchEntry-A")
set Transient.SparkServiceConfiguration_2 Values (",GD_A,B,,1")
`)
	md := Extract(doc)
	require.NotNil(t, md.ServiceIndex)
	assert.Equal(t, 6, *md.ServiceIndex)
	assert.True(t, md.RequiresHotfixes)
}

func TestJoinParagraphs(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"empty", nil, ""},
		{"only blanks", []string{"", "  "}, ""},
		{"single paragraph", []string{"a", " b "}, "a b"},
		{"leading and trailing blanks", []string{"", "a", "", "", "b", ""}, "a\n\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinParagraphs(tt.lines))
		})
	}
}
