package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/cmdext/types"
)

func sample() types.ParseResult {
	idx := 6
	return types.ParseResult{
		Format: types.FormatBLCMM,
		Commands: []types.Command{
			{Name: "set", Args: "GD_A Damage 5", Enabled: true, Line: 3},
			{Name: "Clone", Args: "GD_A GD_B", Enabled: false, Line: 4},
		},
		Hotfixes: []types.Hotfix{
			{Name: "Buff", Scope: types.ScopeLevel, Target: "None", Command: "set GD_D Damage 9", Enabled: true, Line: 9},
		},
		Metadata: types.Metadata{
			Tags: map[string][]string{
				"author":        {"alice", "bob"},
				"main-author":   {"carol"},
				"version":       {"v1.2"},
				"tml-priority":  {"5"},
				"tml-ignore-me": {""},
			},
			Title:            "My Mod",
			Game:             types.GameBL2,
			ServiceIndex:     &idx,
			RequiresHotfixes: true,
		},
		Warnings: []string{"line 2: something"},
	}
}

func TestRender_JSON(t *testing.T) {
	out, err := Render(New("mod.blcm", sample()), "json")
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, `"format": "blcmm"`)
	assert.Contains(t, s, `"service_index": 6`)
	assert.Contains(t, s, `"name": "Clone"`)
	assert.Contains(t, s, `"scope": "level"`)
}

func TestRender_YAML(t *testing.T) {
	out, err := Render(New("mod.blcm", sample()), "YAML")
	require.NoError(t, err)
	assert.Contains(t, string(out), "title: My Mod")
	assert.Contains(t, string(out), "- alice")
}

func TestRender_UnknownFormat(t *testing.T) {
	_, err := Render(New("x", types.ParseResult{}), "xml")
	assert.Error(t, err)
}

func TestNew_EmptyCollections(t *testing.T) {
	rep := New("empty.txt", types.ParseResult{})
	out, err := Render(rep, "json")
	require.NoError(t, err)

	s := string(out)
	assert.Equal(t, "plain", rep.Format)
	assert.True(t, strings.Contains(s, `"commands": []`))
	assert.True(t, strings.Contains(s, `"tags": {}`))
}

func TestNew_MetadataAccessors(t *testing.T) {
	rep := New("mod.blcm", sample())
	assert.Equal(t, []string{"carol", "alice", "bob"}, rep.Metadata.Authors)
	assert.Equal(t, "v1.2", rep.Metadata.Version)
	require.NotNil(t, rep.Metadata.TMLPriority)
	assert.Equal(t, 5, *rep.Metadata.TMLPriority)
	assert.True(t, rep.Metadata.TMLIgnoreMe)

	out, err := Render(rep, "yaml")
	require.NoError(t, err)
	assert.Contains(t, string(out), "version: v1.2")
	assert.Contains(t, string(out), "tml_priority: 5")
	assert.Contains(t, string(out), "tml_ignore_me: true")

	bare := New("plain.txt", types.ParseResult{})
	assert.Nil(t, bare.Metadata.TMLPriority)
	assert.Empty(t, bare.Metadata.Authors)
}
