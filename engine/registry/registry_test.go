package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/cmdext/engine/args"
)

func noop(*args.Values) error { return nil }

func TestRegister_Lookup(t *testing.T) {
	r := New()
	h, err := r.Register("Clone", args.Grammar{Args: []args.Arg{{Name: "src"}}}, nil, noop)
	require.NoError(t, err)
	assert.Equal(t, "Clone", h.Name())

	for _, name := range []string{"Clone", "clone", "CLONE", " clone "} {
		c, ok := r.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, "Clone", c.Name)
		assert.Equal(t, "Clone", c.Grammar.Use)
		assert.NotNil(t, c.Splitter)
	}
	assert.True(t, r.Has("cLoNe"))
	assert.False(t, r.Has("Other"))
}

func TestRegister_Duplicate(t *testing.T) {
	r := New()
	_, err := r.Register("Clone", args.Grammar{}, nil, noop)
	require.NoError(t, err)

	_, err = r.Register("CLONE", args.Grammar{}, nil, noop)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateName))

	var dup *DuplicateNameError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "CLONE", dup.Name)
}

func TestRegister_Reserved(t *testing.T) {
	r := New()
	for _, name := range []string{"exec", "EXEC", "Exec", "set", "py", "PyExec", "ce_enableon"} {
		_, err := r.Register(name, args.Grammar{}, nil, noop)
		assert.True(t, errors.Is(err, ErrReservedName), name)
		assert.True(t, errors.Is(r.DeregisterName(name), ErrReservedName), name)
	}
	assert.Empty(t, r.Names())
}

func TestRegister_Invalid(t *testing.T) {
	r := New()
	tests := []struct {
		name string
		cmd  string
		g    args.Grammar
		cb   Callback
		want error
	}{
		{"empty name", "", args.Grammar{}, noop, ErrInvalidName},
		{"blank name", "   ", args.Grammar{}, noop, ErrInvalidName},
		{"name with space", "two words", args.Grammar{}, noop, ErrInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Register(tt.cmd, tt.g, nil, tt.cb)
			assert.True(t, errors.Is(err, tt.want))
		})
	}

	_, err := r.Register("x", args.Grammar{}, nil, nil)
	assert.Error(t, err)

	_, err = r.Register("y", args.Grammar{Args: []args.Arg{{Name: "a", Variadic: true}, {Name: "b"}}}, nil, noop)
	assert.Error(t, err)
	assert.Empty(t, r.Names())
}

func TestDeregister(t *testing.T) {
	r := New()
	h, err := r.Register("KeepAlive", args.Grammar{}, nil, noop)
	require.NoError(t, err)

	require.NoError(t, r.Deregister(h))
	assert.False(t, r.Has("KeepAlive"))

	// Removing again and removing unknown names are both safe.
	require.NoError(t, r.Deregister(h))
	require.NoError(t, r.DeregisterName("nothing"))
	require.NoError(t, r.Deregister(Handle{}))
}

func TestDeregister_StaleHandle(t *testing.T) {
	r := New()
	old, err := r.Register("KeepAlive", args.Grammar{}, nil, noop)
	require.NoError(t, err)
	require.NoError(t, r.DeregisterName("keepalive"))

	_, err = r.Register("KeepAlive", args.Grammar{}, nil, noop)
	require.NoError(t, err)

	require.NoError(t, r.Deregister(old))
	assert.True(t, r.Has("KeepAlive"), "stale handle must not remove the new registration")
}

func TestBegin_RejectsMutation(t *testing.T) {
	r := New()
	h, err := r.Register("A", args.Grammar{}, nil, noop)
	require.NoError(t, err)

	end := r.Begin()
	inner := r.Begin()

	_, err = r.Register("B", args.Grammar{}, nil, noop)
	assert.True(t, errors.Is(err, ErrMutationDuringDispatch))
	assert.True(t, errors.Is(r.Deregister(h), ErrMutationDuringDispatch))
	assert.True(t, errors.Is(r.DeregisterName("A"), ErrMutationDuringDispatch))

	inner()
	inner()
	_, err = r.Register("B", args.Grammar{}, nil, noop)
	assert.True(t, errors.Is(err, ErrMutationDuringDispatch), "outer pass still running")

	end()
	_, err = r.Register("B", args.Grammar{}, nil, noop)
	assert.NoError(t, err)
}

func TestNames_Sorted(t *testing.T) {
	r := New()
	for _, n := range []string{"b", "C", "a"} {
		_, err := r.Register(n, args.Grammar{}, nil, noop)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"a", "b", "C"}, r.Names())
}
