package clasp

import (
	"reflect"
	"sync"
	"unicode"
)

// Schema is the compiled description of one flag struct: its flags,
// positionals, subcommands and groups, plus the sorted lookup tables
// built by flattening. A Schema is immutable once compiled and safe for
// concurrent use.
type Schema struct {
	app    App
	flags  []flagRec
	subs   []subRec
	groups []groupRec
	args   []posRec

	// Sorted by key after flattening; resolved by binary search.
	sortedFlags []entry
	sortedSubs  []entry

	// Back-pointers, used only to reconstruct ancestry in usage output.
	parent        *Schema
	parentSubName string
	parentSub     *SubSpec
	parentGroup   *GroupSpec

	// Required flags by identity, checked at end of parse.
	required map[*FlagSpec]string

	finalized bool
}

type nameVis struct {
	name string
	vis  Visibility
}

type flagRec struct {
	names     []nameVis // letter first when present, then long name, then aliases
	hasLetter bool
	arg       string
	count     *Count
	help      string
	bind      Binding
	tag       *FlagSpec // identity; shared by flattened copies
}

func (f *flagRec) getCount() Count {
	if f.count != nil {
		return *f.count
	}
	return f.bind.query.DefaultCount
}

// longName returns the primary non-letter name.
func (f *flagRec) longName() string {
	if f.hasLetter {
		return f.names[1].name
	}
	return f.names[0].name
}

type subRec struct {
	names []nameVis
	tag   *SubSpec
	child *Schema
}

type groupRec struct {
	names     []nameVis // letter first when present; empty for pure flatten groups
	hasLetter bool
	tag       *GroupSpec
	child     *Schema
}

type posRec struct {
	name  string
	count *Count
	help  string
	bind  Binding
}

func (p *posRec) getCount() Count {
	if p.count != nil {
		return *p.count
	}
	return p.bind.query.DefaultCount
}

type magicKind uint8

const (
	magicNone magicKind = iota
	magicHelp
	magicHelpHidden
)

// entry is one element of a sorted lookup table.
type entry struct {
	key      string // does not include the leading dashes
	idx      int
	isGroup  bool
	isLetter bool
	isAlias  bool
	isCopy   bool
	vis      Visibility
	magic    magicKind
}

// SetApp attaches program metadata to the root schema.
func (s *Schema) SetApp(app App) *Schema {
	s.app = app
	return s
}

// Build constructs and compiles a schema. The build function registers
// every field descriptor; Build then flattens groups and sorts the
// lookup tables. Schema definition mistakes panic with *ConfigError.
func Build(build func(*Schema)) *Schema {
	s := &Schema{}
	build(s)
	s.finalize()
	return s
}

var (
	schemaMu sync.Mutex
	schemas  = map[reflect.Type]*Schema{}
)

// For returns the compiled schema for flag-struct type T, building it on
// first use. The result is memoized for the lifetime of the process and
// first use is safe from concurrent goroutines.
func For[T any](build func(*Schema)) *Schema {
	key := reflect.TypeFor[T]()

	schemaMu.Lock()
	defer schemaMu.Unlock()
	if s, ok := schemas[key]; ok {
		return s
	}
	s := Build(build)
	schemas[key] = s
	return s
}

// FlagSpec describes a single flag. Construct with NewFlag, configure
// with the fluent setters, then Register it on a schema.
type FlagSpec struct {
	name    string
	letter  rune
	vis     Visibility
	arg     string
	count   *Count
	help    string
	aliases []nameVis
	bind    Binding
	bound   bool
}

// NewFlag starts a flag named name, addressed as --name. Internal
// underscores and dashes are interchangeable on the command line.
func NewFlag(name string) *FlagSpec {
	return &FlagSpec{name: name}
}

// SetLetter gives the flag a single-rune short name, addressed as -x and
// composable into clusters like -xvz.
func (f *FlagSpec) SetLetter(r rune) *FlagSpec {
	f.letter = r
	return f
}

func (f *FlagSpec) SetVis(v Visibility) *FlagSpec {
	f.vis = v
	return f
}

// SetArg names the flag's argument in help output, e.g. "INT".
func (f *FlagSpec) SetArg(arg string) *FlagSpec {
	f.arg = arg
	return f
}

func (f *FlagSpec) SetCount(c Count) *FlagSpec {
	f.count = &c
	return f
}

func (f *FlagSpec) SetHelp(help string) *FlagSpec {
	f.help = help
	return f
}

// AddAlias adds an extra long name with the flag's own visibility.
func (f *FlagSpec) AddAlias(name string) *FlagSpec {
	f.aliases = append(f.aliases, nameVis{name: name, vis: f.vis})
	return f
}

// AddAliasVis adds an extra long name with its own visibility.
func (f *FlagSpec) AddAliasVis(name string, vis Visibility) *FlagSpec {
	f.aliases = append(f.aliases, nameVis{name: name, vis: vis})
	return f
}

// Bind attaches the storage binding. Every flag must be bound.
func (f *FlagSpec) Bind(b Binding) *FlagSpec {
	f.bind = b
	f.bound = true
	return f
}

// Register appends the flag to s. Descriptors are consumed in
// registration order.
func (f *FlagSpec) Register(s *Schema) {
	if !f.bound {
		configFatalf("flag %q has no binding", f.name)
	}
	var names []nameVis
	if f.letter != 0 {
		checkLetter(f.letter, "flag", f.name)
		names = append(names, nameVis{name: string(f.letter), vis: f.vis})
	}
	names = append(names, nameVis{name: f.name, vis: f.vis})
	names = append(names, f.aliases...)

	s.flags = append(s.flags, flagRec{
		names:     names,
		hasLetter: f.letter != 0,
		arg:       f.arg,
		count:     f.count,
		help:      f.help,
		bind:      f.bind,
		tag:       f,
	})
}

// PositionalSpec describes one positional argument.
type PositionalSpec struct {
	name  string
	count *Count
	help  string
	bind  Binding
	bound bool
}

// NewPositional starts a positional argument. The name only appears in
// help output; pass "" to fall back to ARG1, ARG2, ...
func NewPositional(name string) *PositionalSpec {
	return &PositionalSpec{name: name}
}

func (p *PositionalSpec) SetCount(c Count) *PositionalSpec {
	p.count = &c
	return p
}

func (p *PositionalSpec) SetHelp(help string) *PositionalSpec {
	p.help = help
	return p
}

func (p *PositionalSpec) Bind(b Binding) *PositionalSpec {
	p.bind = b
	p.bound = true
	return p
}

func (p *PositionalSpec) Register(s *Schema) {
	if !p.bound {
		configFatalf("positional %q has no binding", p.name)
	}
	s.args = append(s.args, posRec{
		name:  p.name,
		count: p.count,
		help:  p.help,
		bind:  p.bind,
	})
}

// SubSpec describes a subcommand. Once its name is seen on the command
// line, parsing switches to the child schema and does not return.
type SubSpec struct {
	name    string
	vis     Visibility
	help    string
	about   string
	aliases []nameVis
}

func NewSub(name string) *SubSpec {
	return &SubSpec{name: name}
}

func (c *SubSpec) SetVis(v Visibility) *SubSpec {
	c.vis = v
	return c
}

func (c *SubSpec) SetHelp(help string) *SubSpec {
	c.help = help
	return c
}

// SetAbout sets the longer text shown by `sub --help`. Falls back to the
// help text when empty.
func (c *SubSpec) SetAbout(about string) *SubSpec {
	c.about = about
	return c
}

func (c *SubSpec) AddAlias(name string) *SubSpec {
	c.aliases = append(c.aliases, nameVis{name: name, vis: c.vis})
	return c
}

// Register builds the subcommand's child schema with build and appends
// it to s. access navigates from the parent's storage to the field
// holding the child's storage; every binding registered by build is
// re-rooted through it.
func (c *SubSpec) Register(s *Schema, build func(*Schema), access func(any) any) {
	child := &Schema{}
	build(child)
	child.rebind(access)
	child.parent = s
	child.parentSub = c
	child.parentSubName = c.name

	names := append([]nameVis{{name: c.name, vis: c.vis}}, c.aliases...)
	s.subs = append(s.subs, subRec{names: names, tag: c, child: child})
}

// GroupSpec describes a flag group: a nested schema whose contents are
// flattened into the parent. With a name, members become --name.member;
// with a letter X, members become -Xmember; with neither, members are
// merged into the parent namespace as-is.
type GroupSpec struct {
	name   string
	letter rune
	vis    Visibility
	help   string
}

func NewGroup(name string) *GroupSpec {
	return &GroupSpec{name: name}
}

func (g *GroupSpec) SetLetter(r rune) *GroupSpec {
	g.letter = r
	return g
}

// SetVis sets the group's visibility, which merges into every member.
func (g *GroupSpec) SetVis(v Visibility) *GroupSpec {
	g.vis = v
	return g
}

func (g *GroupSpec) SetHelp(help string) *GroupSpec {
	g.help = help
	return g
}

// Register builds the group's child schema and appends the group record
// to s. The record only drives the flattening pass; it does not survive
// into the runtime tree as a parse target.
func (g *GroupSpec) Register(s *Schema, build func(*Schema), access func(any) any) {
	child := &Schema{}
	build(child)
	child.rebind(access)
	child.parent = s
	child.parentGroup = g

	var names []nameVis
	if g.letter != 0 {
		checkLetter(g.letter, "group", g.name)
		names = append(names, nameVis{name: string(g.letter), vis: g.vis})
	}
	if g.name != "" || g.letter == 0 {
		// An empty name on a letterless group marks a pure flatten group;
		// the flattening pass keys off it.
		names = append(names, nameVis{name: g.name, vis: g.vis})
	}
	s.groups = append(s.groups, groupRec{
		names:     names,
		hasLetter: g.letter != 0,
		tag:       g,
		child:     child,
	})
}

// rebind re-roots every binding in the tree through access, so that
// parse callbacks always receive the root storage.
func (s *Schema) rebind(access func(any) any) {
	for i := range s.flags {
		s.flags[i].bind = s.flags[i].bind.rerooted(access)
	}
	for i := range s.args {
		s.args[i].bind = s.args[i].bind.rerooted(access)
	}
	for i := range s.subs {
		s.subs[i].child.rebind(access)
	}
	for i := range s.groups {
		s.groups[i].child.rebind(access)
	}
}

func (b Binding) rerooted(access func(any) any) Binding {
	inner := b.value
	b.value = func(out any) Value { return inner(access(out)) }
	return b
}

func reservedRune(r rune) bool {
	return r < 0x20 || r == 0x7f || unicode.IsSpace(r) ||
		r == '#' || r == '=' || r == '.'
}

func checkLetter(r rune, role, name string) {
	if r == '-' || r == '_' || reservedRune(r) {
		configFatalf("%s %q has a reserved letter %q", role, name, r)
	}
}

// normalize validates a long name and canonicalizes underscores to
// dashes. Called once per non-Delete name while building the lookup
// tables.
func normalize(name, field string) string {
	if name == "" {
		configFatalf("field %q has an empty name", field)
	}
	if name[0] == '-' || name[0] == '_' ||
		name[len(name)-1] == '-' || name[len(name)-1] == '_' {
		configFatalf("field %q: name %q may not start or end with '-' or '_'", field, name)
	}
	for _, r := range name {
		if reservedRune(r) {
			configFatalf("field %q: name %q contains reserved runes", field, name)
		}
	}
	out := []byte(name)
	for i := range out {
		if out[i] == '_' {
			out[i] = '-'
		}
	}
	return string(out)
}

func checkReservedWord(name, field string) {
	switch name {
	case "help", "help-hidden", "version":
		configFatalf("field %q: name %q is reserved and may not be used", field, name)
	}
}
