// Package clasp parses command-line flags against an explicit schema.
//
// Callers describe a flag struct as an ordered stream of field descriptors
// built with NewFlag, NewPositional, NewSub, and NewGroup. Compiling that
// stream produces a schema tree: nested groups are flattened into their
// parents, lookup tables are sorted for binary search, and the resulting
// schema parses argv in a single pass. Help text is rendered on demand for
// any node in the tree.
package clasp

import "fmt"

// Count is the number of times a flag or positional may appear.
type Count uint8

const (
	// Optional is the default: at most once.
	Optional Count = iota
	// Required flags must appear exactly once.
	Required
	// Repeated flags may appear any number of times.
	Repeated
)

// Visibility controls whether an entry appears in help output.
//
// Merging two visibilities takes the more severe one, so a Public flag
// inside a Hidden group renders as Hidden.
type Visibility uint8

const (
	// Public entries are shown in --help.
	Public Visibility = iota
	// Hidden entries only appear in --help-hidden.
	Hidden
	// Invisible entries are parsed but never shown.
	Invisible
	// Delete entries are neither parsed nor shown. Useful for disabling
	// flags with build tags.
	Delete
)

func mergeVis(a, b Visibility) Visibility {
	if b > a {
		return b
	}
	return a
}

func visible(v Visibility, hidden bool) bool {
	return v == Public || (hidden && v == Hidden)
}

// Value parses one raw command-line token into a typed destination. It is
// the per-type plugin interface; Set is invoked once per occurrence.
type Value interface {
	Set(raw string) error
}

// Query describes how the parser should treat a value type. It is
// consulted once per field at schema-build time.
type Query struct {
	// WantsArg reports whether the flag consumes an argument token.
	// Bool-like types set this to false; Set is then called with an
	// empty string, or with an explicit =value if one was attached.
	WantsArg bool

	// DefaultCount is the count used when the field does not declare
	// one. Slice types default to Repeated.
	DefaultCount Count
}

// Binding connects a field descriptor to the storage it fills in. The
// factory receives the caller's output struct at parse time and returns
// the Value that writes the field.
type Binding struct {
	query Query
	value func(out any) Value
}

// NewBinding builds a Binding for a user-defined value type.
func NewBinding(q Query, value func(out any) Value) Binding {
	return Binding{query: q, value: value}
}

// Access adapts a typed field accessor into the form NewSub and NewGroup
// registration expects, so that a child schema's bindings can be re-rooted
// through the parent struct.
func Access[P, C any](field func(*P) *C) func(any) any {
	return func(p any) any { return field(p.(*P)) }
}

// App is optional program metadata rendered in the usage footer.
type App struct {
	Name          string // falls back to the exe name if empty
	Authors       string
	About         string // shown under the Usage: line of the root node
	Version       string
	URL           string
	CopyrightYear int // only shown if Authors is nonempty
	License       string
}

// ConfigError reports a mistake in the schema definition itself: a
// malformed or reserved name, duplicate keys after flattening, bad
// positional ordering. These are programmer errors, so schema building
// panics with one rather than returning it.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string {
	return e.msg
}

func configFatalf(format string, args ...any) {
	panic(&ConfigError{msg: "clasp: " + fmt.Sprintf(format, args...)})
}
