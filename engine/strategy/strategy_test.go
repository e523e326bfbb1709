package strategy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/cmdext/engine/document"
	"github.com/nathoo/cmdext/types"
)

// mod wraps body lines in a minimal BLCMM file with one category.
func mod(lines ...string) string {
	return "<BLCMM v=\"1\">\n<body>\n<category name=\"m\">\n" +
		strings.Join(lines, "\n") +
		"\n</category>\n</body>\n</BLCMM>\n"
}

const (
	on     = `<code profiles="default">set A B on</code>`
	off    = `<code profiles="">set A B off</code>`
	custom = `<comment>Clone X Y</comment>`
)

func control(arg string) string {
	return "<comment>CE_EnableOn " + arg + "</comment>"
}

func evaluate(t *testing.T, src string) Result {
	t.Helper()
	doc, err := document.Parse(src, document.Options{
		Known: func(name string) bool { return strings.EqualFold(name, "Clone") },
	})
	require.NoError(t, err)
	return Evaluate(doc)
}

// customFlags returns the enabled flag of every Clone tuple in order.
func customFlags(r Result) []bool {
	var out []bool
	for _, c := range r.Commands {
		if c.Name == "Clone" {
			out = append(out, c.Enabled)
		}
	}
	return out
}

func TestEvaluate_Strategies(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []bool
	}{
		{"default any with one enabled", mod(off, custom, on), []bool{true}},
		{"default any with none enabled", mod(off, custom, off), []bool{false}},
		{"any without regular siblings", mod(custom), []bool{false}},
		{"all with one disabled", mod(control("All"), on, custom, off), []bool{false}},
		{"all with every one enabled", mod(control("All"), on, custom, on), []bool{true}},
		{"all without regular siblings", mod(control("All"), custom), []bool{true}},
		{"force", mod(control("Force"), off, custom), []bool{true}},
		{"force without siblings", mod(control("Force"), custom), []bool{true}},
		{"next enabled", mod(control("Next"), custom, on), []bool{true}},
		{"next disabled", mod(control("Next"), custom, off, on), []bool{false}},
		{"next on last command", mod(control("Next"), on, custom), []bool{false}},
		{"next skips custom siblings", mod(control("Next"), custom, custom, on), []bool{true, true}},
		{"strategy applies to what follows", mod(off, custom, control("Force"), custom), []bool{false, true}},
		{"case insensitive argument", mod(control("fOrCe"), custom), []bool{true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := evaluate(t, tt.src)
			assert.Equal(t, tt.want, customFlags(r))
			assert.Empty(t, r.Warnings)
		})
	}
}

func TestEvaluate_RegularCommandsKeepTheirFlag(t *testing.T) {
	r := evaluate(t, mod(control("Force"), on, off, custom))
	require.Len(t, r.Commands, 3)
	assert.True(t, r.Commands[0].Enabled)
	assert.False(t, r.Commands[1].Enabled)
	assert.True(t, r.Commands[2].Enabled)
}

func TestEvaluate_ControlCommandNotEmitted(t *testing.T) {
	r := evaluate(t, mod(control("Next"), custom, on))
	for _, c := range r.Commands {
		assert.NotEqual(t, types.ControlCommand, c.Name)
	}
	assert.Len(t, r.Commands, 2)
}

func TestEvaluate_InvalidControlArgument(t *testing.T) {
	tests := []string{"Sometimes", "", "All Any"}
	for _, arg := range tests {
		t.Run(arg, func(t *testing.T) {
			// The bad line is dropped and the previous strategy stays active.
			r := evaluate(t, mod(control("Force"), control(arg), custom))
			require.Len(t, r.Warnings, 1)
			assert.Contains(t, r.Warnings[0], types.ControlCommand)
			assert.Equal(t, []bool{true}, customFlags(r))
		})
	}
}

func TestEvaluate_CategoriesAreIndependent(t *testing.T) {
	src := `<BLCMM v="1">
<body>
<category name="outer">
<comment>CE_EnableOn Force</comment>
<code profiles="">set A B 1</code>
<category name="inner">
<comment>Clone X Y</comment>
<code profiles="">set A B 2</code>
</category>
<comment>Clone Z W</comment>
</category>
</body>
</BLCMM>`
	r := evaluate(t, src)

	// Output is flattened in document order.
	var lines []string
	for _, c := range r.Commands {
		lines = append(lines, c.Name+" "+c.Args)
	}
	assert.Equal(t, []string{"set A B 1", "Clone X Y", "set A B 2", "Clone Z W"}, lines)

	// The inner category starts from Any again; the outer keeps Force.
	assert.Equal(t, []bool{false, true}, customFlags(r))
}

func TestEvaluate_Hotfixes(t *testing.T) {
	src := `<BLCMM v="1">
<body>
<category name="m">
<hotfix name="Fast" level="Glacial_P">
<code profiles="default">set GD_A Speed 2</code>
<code profiles="">set GD_A Speed 3</code>
</hotfix>
<comment>Clone X Y</comment>
</category>
</body>
</BLCMM>`
	r := evaluate(t, src)

	require.Len(t, r.Hotfixes, 2)
	assert.Equal(t, types.Hotfix{
		Name: "Fast", Scope: types.ScopeLevel, Target: "Glacial_P",
		Command: "set GD_A Speed 2", Enabled: true, Line: 5,
	}, r.Hotfixes[0])
	assert.False(t, r.Hotfixes[1].Enabled)

	// Hotfix children are not siblings of the category's commands.
	assert.Equal(t, []bool{false}, customFlags(r))
}

func TestEvaluate_PlainFile(t *testing.T) {
	r := evaluate(t, "set A B C\nClone X Y\n# comment\n")
	require.Len(t, r.Commands, 2)
	for _, c := range r.Commands {
		assert.True(t, c.Enabled)
	}
	assert.Equal(t, types.Command{Name: "Clone", Args: "X Y", Enabled: true, Line: 2}, r.Commands[1])
}

func TestEvaluate_Idempotent(t *testing.T) {
	doc, err := document.Parse(mod(control("Next"), custom, on, control("All"), custom, off), document.Options{
		Known: func(name string) bool { return name == "Clone" },
	})
	require.NoError(t, err)

	first := Evaluate(doc)
	second := Evaluate(doc)
	assert.Equal(t, first, second)
}

func TestParseAndName(t *testing.T) {
	for _, s := range []types.EnableStrategy{types.StrategyAny, types.StrategyAll, types.StrategyForce, types.StrategyNext} {
		got, ok := Parse(Name(s))
		require.True(t, ok)
		assert.Equal(t, s, got)
	}
	_, ok := Parse("never")
	assert.False(t, ok)
	assert.Equal(t, "EnableStrategy(42)", Name(types.EnableStrategy(42)))
}
