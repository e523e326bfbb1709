package args

import (
	"errors"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitters(t *testing.T) {
	tests := []struct {
		name     string
		splitter Splitter
		in       string
		want     []string
	}{
		{"whitespace", Whitespace, "  a\tb  c ", []string{"a", "b", "c"}},
		{"whitespace ignores quotes", Whitespace, `"a b"`, []string{`"a`, `b"`}},
		{"shell quotes", Shell, `pkg "two words" 'x y'`, []string{"pkg", "two words", "x y"}},
		{"shell escape", Shell, `a\ b c`, []string{"a b", "c"}},
		{"object reference kept whole", ObjectName,
			`WillowGame.Foo'GD_Some.Path With Spaces' NewName`,
			[]string{"WillowGame.Foo'GD_Some.Path With Spaces'", "NewName"}},
		{"object double quotes stripped", ObjectName, `"GD_A B" C`, []string{"GD_A B", "C"}},
		{"object plain", ObjectName, "GD_A.B  GD_C", []string{"GD_A.B", "GD_C"}},
		{"object empty quotes", ObjectName, `"" x`, []string{"", "x"}},
		{"object empty", ObjectName, "   ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.splitter.Split(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitterErrors(t *testing.T) {
	_, err := ObjectName.Split(`Foo'GD_A.B`)
	assert.Error(t, err)

	_, err = ObjectName.Split(`"GD_A`)
	assert.Error(t, err)
}

func cloneGrammar() Grammar {
	return Grammar{
		Use:   "Clone",
		Short: "Copy an object under a new name.",
		Args:  []Arg{{Name: "source"}, {Name: "name"}},
	}
}

func TestGrammar_Parse(t *testing.T) {
	v, err := cloneGrammar().Parse([]string{"GD_A", "GD_B"})
	require.NoError(t, err)
	assert.Equal(t, "GD_A", v.Get("source"))
	assert.Equal(t, "GD_B", v.Get("name"))
	assert.NotNil(t, v.Flags)
}

func TestGrammar_ParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		reason string
	}{
		{"missing", []string{"GD_A"}, "missing argument <name>"},
		{"extra", []string{"a", "b", "c"}, `unexpected argument "c"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cloneGrammar().Parse(tt.tokens)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrGrammar))

			var gpe *GrammarParseError
			require.True(t, errors.As(err, &gpe))
			assert.Equal(t, "Clone", gpe.Command)
			assert.Equal(t, tt.reason, gpe.Reason)
			assert.Contains(t, gpe.Usage, "usage: Clone <source> <name>")
		})
	}
}

func TestGrammar_NoFlagsKeepsDashes(t *testing.T) {
	g := Grammar{Use: "SetEarly", Args: []Arg{{Name: "object"}, {Name: "attribute"}, {Name: "value", Variadic: true}}}
	v, err := g.Parse([]string{"GD_A", "Damage", "-5", "--x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"-5", "--x"}, v.Rest())
}

func TestGrammar_Flags(t *testing.T) {
	g := Grammar{
		Use:  "LoadPackage",
		Args: []Arg{{Name: "package"}},
		Flags: func(fs *pflag.FlagSet) {
			fs.String("object", "", "object to keep alive after loading")
		},
	}

	v, err := g.Parse([]string{"--object", "GD_X", "Pkg"})
	require.NoError(t, err)
	assert.Equal(t, "Pkg", v.Get("package"))
	obj, err := v.Flags.GetString("object")
	require.NoError(t, err)
	assert.Equal(t, "GD_X", obj)

	_, err = g.Parse([]string{"--nope", "Pkg"})
	assert.True(t, errors.Is(err, ErrGrammar))

	usage := g.Usage()
	assert.Contains(t, usage, "usage: LoadPackage [flags] <package>")
	assert.Contains(t, usage, "--object")
}

func TestGrammar_OptionalAndVariadic(t *testing.T) {
	g := Grammar{Use: "x", Args: []Arg{{Name: "a"}, {Name: "b", Optional: true}, {Name: "rest", Variadic: true, Optional: true}}}

	v, err := g.Parse([]string{"1"})
	require.NoError(t, err)
	assert.Equal(t, "1", v.Get("a"))
	assert.False(t, v.Has("b"))
	assert.Empty(t, v.Rest())

	v, err = g.Parse([]string{"1", "2", "3", "4"})
	require.NoError(t, err)
	assert.Equal(t, "2", v.Get("b"))
	assert.Equal(t, []string{"3", "4"}, v.Rest())

	assert.Equal(t, "usage: x <a> [b] [rest...]", g.Usage())
}

func TestGrammar_RequiredVariadic(t *testing.T) {
	g := Grammar{Use: "SuppressNextChat", Args: []Arg{{Name: "message", Variadic: true}}}
	_, err := g.Parse(nil)
	assert.True(t, errors.Is(err, ErrGrammar))
	assert.Equal(t, "usage: SuppressNextChat <message>...", g.Usage())
}

func TestGrammar_Validate(t *testing.T) {
	tests := []struct {
		name string
		args []Arg
		ok   bool
	}{
		{"empty", nil, true},
		{"required then optional", []Arg{{Name: "a"}, {Name: "b", Optional: true}}, true},
		{"optional then required", []Arg{{Name: "a", Optional: true}, {Name: "b"}}, false},
		{"variadic not last", []Arg{{Name: "a", Variadic: true}, {Name: "b"}}, false},
		{"unnamed", []Arg{{Name: " "}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Grammar{Use: "x", Args: tt.args}.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
