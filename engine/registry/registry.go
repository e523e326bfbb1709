// Package registry maps command names to their grammar, splitter and
// callback. Names are matched case-insensitively.
//
// A Registry is not safe for concurrent use. Mutation is expected only at
// component enable/disable boundaries, never from inside a dispatched
// callback; the dispatcher enforces the latter through Begin.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/nathoo/cmdext/engine/args"
	"github.com/nathoo/cmdext/types"
)

// Reserved names can never be registered or deregistered.
var Reserved = []string{"exec", "set", "py", "pyexec", types.ControlCommand}

var (
	ErrDuplicateName          = errors.New("command already registered")
	ErrReservedName           = errors.New("command name is reserved")
	ErrInvalidName            = errors.New("invalid command name")
	ErrMutationDuringDispatch = errors.New("registry changed during dispatch")
)

// DuplicateNameError is returned when registering a name already present.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("command %q already registered", e.Name)
}

// Is reports whether target is ErrDuplicateName.
func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}

// ReservedNameError is returned for any attempt to claim or remove a
// reserved name.
type ReservedNameError struct {
	Name string
}

func (e *ReservedNameError) Error() string {
	return fmt.Sprintf("command name %q is reserved", e.Name)
}

// Is reports whether target is ErrReservedName.
func (e *ReservedNameError) Is(target error) bool {
	return target == ErrReservedName
}

// Callback runs a command with its parsed arguments.
type Callback func(v *args.Values) error

// Command is one registered entry.
type Command struct {
	Name     string
	Grammar  args.Grammar
	Splitter args.Splitter
	Callback Callback
	handle   Handle
}

// Handle identifies one registration. A handle kept after its command was
// removed and registered again no longer matches.
type Handle struct {
	name string
	id   uuid.UUID
}

// Name returns the registered spelling.
func (h Handle) Name() string { return h.name }

// Registry holds the live command set.
type Registry struct {
	cmds   map[string]*Command
	active int
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{cmds: map[string]*Command{}}
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// IsReserved reports whether name is one of the reserved names.
func IsReserved(name string) bool {
	for _, r := range Reserved {
		if strings.EqualFold(strings.TrimSpace(name), r) {
			return true
		}
	}
	return false
}

// Register adds a command. A nil splitter means Whitespace; an empty
// grammar Use defaults to name.
func (r *Registry) Register(name string, g args.Grammar, s args.Splitter, cb Callback) (Handle, error) {
	if r.active > 0 {
		return Handle{}, ErrMutationDuringDispatch
	}
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, " \t") {
		return Handle{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if IsReserved(name) {
		return Handle{}, &ReservedNameError{Name: name}
	}
	if _, ok := r.cmds[key(name)]; ok {
		return Handle{}, &DuplicateNameError{Name: name}
	}
	if cb == nil {
		return Handle{}, fmt.Errorf("register %s: nil callback", name)
	}
	if g.Use == "" {
		g.Use = name
	}
	if err := g.Validate(); err != nil {
		return Handle{}, fmt.Errorf("register %s: %w", name, err)
	}
	if s == nil {
		s = args.Whitespace
	}

	h := Handle{name: name, id: uuid.New()}
	r.cmds[key(name)] = &Command{Name: name, Grammar: g, Splitter: s, Callback: cb, handle: h}
	return h, nil
}

// Deregister removes the registration h refers to. A stale or zero handle
// is a no-op.
func (r *Registry) Deregister(h Handle) error {
	if r.active > 0 {
		return ErrMutationDuringDispatch
	}
	if IsReserved(h.name) {
		return &ReservedNameError{Name: h.name}
	}
	if c, ok := r.cmds[key(h.name)]; ok && c.handle.id == h.id {
		delete(r.cmds, key(h.name))
	}
	return nil
}

// DeregisterName removes name whatever handle registered it. Unknown names
// are a no-op.
func (r *Registry) DeregisterName(name string) error {
	if r.active > 0 {
		return ErrMutationDuringDispatch
	}
	if IsReserved(name) {
		return &ReservedNameError{Name: name}
	}
	delete(r.cmds, key(name))
	return nil
}

// Lookup finds a command by name.
func (r *Registry) Lookup(name string) (*Command, bool) {
	c, ok := r.cmds[key(name)]
	return c, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.cmds[key(name)]
	return ok
}

// Names lists registered names, sorted case-insensitively.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.cmds))
	for _, c := range r.cmds {
		names = append(names, c.Name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

// Begin marks a dispatch pass as running until the returned func is
// called. Passes nest.
func (r *Registry) Begin() (end func()) {
	r.active++
	done := false
	return func() {
		if !done {
			done = true
			r.active--
		}
	}
}
