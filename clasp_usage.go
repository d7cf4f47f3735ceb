package clasp

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// usageWidth is the column where a flag's help text starts, minus the
// two spaces that follow the dotted leader.
const usageWidth = 28

// Usage renders the help text for this node. The hidden form also shows
// Hidden entries and undocumented flags. exe should already be a
// basename; Parse trims it before rendering help.
func (s *Schema) Usage(exe string, hidden bool) string {
	var out strings.Builder

	indent := func(n int) {
		for i := 0; i < n; i++ {
			out.WriteByte(' ')
		}
	}

	// The dotted leader: spaces at both ends, then dots on alternating
	// columns chosen so the last dot lands two columns before the help.
	indentDots := func(n int) {
		for i := 0; i < n; i++ {
			if i == 0 || i == n-1 || i%2 != n%2 {
				out.WriteByte(' ')
			} else {
				out.WriteByte('.')
			}
		}
	}

	// This may be a subcommand or group node; trace all the way up.
	var parents []string
	node := s
	for node.parent != nil {
		switch {
		case node.parentSub != nil:
			parents = append(parents, node.parentSubName)
		case node.parentGroup.letter != 0:
			parents = append(parents, "-"+string(node.parentGroup.letter))
		case node.parentGroup.name != "":
			parents = append(parents, "--"+node.parentGroup.name)
		}
		node = node.parent
	}
	app := &node.app // node is now the root

	out.WriteString("Usage: ")
	out.WriteString(exe)
	for i := len(parents) - 1; i >= 0; i-- {
		out.WriteByte(' ')
		out.WriteString(parents[i])
	}

	// Flags and subcommands on the Usage: line come from the nearest
	// enclosing non-group node, since groups share their parent's.
	cmd := s
	for cmd.parentGroup != nil {
		cmd = cmd.parent
	}

	if s.parentGroup != nil {
		out.WriteString(" [SUBOPTION]")
	}

	needsDash := true
	for i := range cmd.sortedFlags {
		e := &cmd.sortedFlags[i]
		if !e.isLetter || e.isCopy || !visible(e.vis, hidden) {
			continue
		}
		if needsDash {
			needsDash = false
			out.WriteString(" -")
		}
		out.WriteString(e.key)
	}

	if len(cmd.sortedFlags) > 0 {
		out.WriteString(" [OPTIONS]")
	}

	first := true
	for i := range cmd.sortedSubs {
		e := &cmd.sortedSubs[i]
		if e.isAlias {
			continue
		}
		if first {
			first = false
			out.WriteString(" [")
		} else {
			out.WriteByte('|')
		}
		out.WriteString(e.key)
	}
	if !first {
		out.WriteByte(']')
	}

	for i := range cmd.args {
		p := &cmd.args[i]
		name := p.name
		if name == "" {
			name = argN(i)
		}
		switch p.getCount() {
		case Optional:
			fmt.Fprintf(&out, " [%s]", name)
		case Required:
			fmt.Fprintf(&out, " <%s>", name)
		case Repeated:
			fmt.Fprintf(&out, " [%s]...", name)
		}
	}
	out.WriteByte('\n')

	// The description paragraph under the Usage: line.
	var about string
	switch {
	case s.parentSub != nil:
		about = s.parentSub.about
		if about == "" {
			about = s.parentSub.help
		}
	case s.parentGroup != nil:
		about = s.parentGroup.help
	default:
		about = app.About
	}
	if about != "" {
		out.WriteString(about)
		out.WriteString("\n\n")
	}

	first = true
	for i := range s.sortedSubs {
		e := &s.sortedSubs[i]
		if !visible(e.vis, hidden) || e.isAlias {
			continue
		}
		if first {
			first = false
			out.WriteString("# Subcommands\n")
		}

		indent(6)
		out.WriteString(e.key)
		extra := usageWidth - utf8.RuneCountInString(e.key) - 6
		if extra >= 0 {
			indentDots(extra + 2)
		} else {
			out.WriteByte('\n')
			indent(usageWidth + 2)
		}

		for li, line := range strings.Split(s.subs[e.idx].tag.help, "\n") {
			if li > 0 {
				indent(usageWidth + 2)
			}
			out.WriteString(line)
			out.WriteByte('\n')
		}
	}
	if !first {
		out.WriteByte('\n')
	}

	out.WriteString("# Flags\n")

	printFlag := func(e *entry) {
		var names []nameVis
		var help, arg string
		var hasLetter bool

		if e.isGroup {
			g := &s.groups[e.idx]
			names = g.names
			help = g.tag.help
			arg = "FLAG"
			hasLetter = g.hasLetter
		} else {
			f := &s.flags[e.idx]
			names = f.names
			help = f.help
			hasLetter = f.hasLetter
			if f.bind.query.WantsArg {
				arg = f.arg
				if arg == "" {
					arg = "ARG"
				}
			}
		}

		if !visible(e.vis, hidden) {
			return
		}
		if help == "" {
			help = "<undocumented>"
		}

		start := out.Len()
		out.WriteString("  ")
		if hasLetter && !e.isCopy && visible(names[0].vis, hidden) {
			fmt.Fprintf(&out, "-%s, ", names[0].name)
		} else {
			indent(4)
		}

		// Chop off everything past the last `.` to make the prefix.
		prefix := e.key[:len(e.key)-len(e.key[strings.LastIndexByte(e.key, '.')+1:])]

		long := names[btoi(hasLetter):]
		helps := strings.Split(help, "\n")
		nextHelp := func() (string, bool) {
			if len(helps) == 0 {
				return "", false
			}
			h := helps[0]
			helps = helps[1:]
			return h, true
		}

		firstName := true
		for ni, nv := range long {
			if !visible(nv.vis, hidden) {
				continue
			}

			isFirst := firstName
			firstName = false
			if !isFirst {
				start = out.Len()
				indent(6)
			}

			needsComma := false
			for _, rest := range long[ni+1:] {
				needsComma = needsComma || visible(rest.vis, hidden)
			}

			fmt.Fprintf(&out, "--%s%s", prefix, nv.name)
			if arg != "" {
				out.WriteByte(' ')
				out.WriteString(arg)
			}
			if needsComma {
				out.WriteByte(',')
			}

			line, hasLine := nextHelp()

			extra := usageWidth - (out.Len() - start)
			if extra >= 0 {
				if isFirst {
					indentDots(extra + 2)
				} else {
					indent(extra + 2)
				}
				out.WriteString(line)
			} else if hasLine {
				out.WriteByte('\n')
				indent(usageWidth + 2)
				out.WriteString(line)
			}
			out.WriteByte('\n')
		}
		for _, line := range helps {
			indent(usageWidth + 2)
			out.WriteString(line)
			out.WriteByte('\n')
		}
	}

	// Ordinary flags first, alphabetized by letter where one exists.
	for i := range s.sortedFlags {
		e := &s.sortedFlags[i]
		if e.isAlias || e.magic != magicNone || e.isGroup || e.isCopy {
			continue
		}

		f := &s.flags[e.idx]

		// Undocumented flags are implicitly hidden.
		if f.help == "" && !hidden {
			continue
		}
		if f.hasLetter && !e.isLetter {
			continue
		}
		printFlag(e)
	}

	// Then the groups and their members, alphabetized by name.
	first = true
	for i := range s.sortedFlags {
		e := &s.sortedFlags[i]
		if e.isAlias || e.magic != magicNone || !(e.isGroup || e.isCopy) {
			continue
		}

		hasLetter := false
		if e.isGroup {
			hasLetter = s.groups[e.idx].hasLetter
		}
		if (hasLetter || !e.isGroup) && e.isLetter {
			continue
		}

		if first {
			first = false
			out.WriteByte('\n')
		}
		printFlag(e)
	}

	out.WriteByte('\n')
	start := out.Len()
	out.WriteString("  -h, --help")
	indentDots(usageWidth - (out.Len() - start) + 2)
	out.WriteString("show usage and exit\n")

	if hidden {
		start = out.Len()
		out.WriteString("      --help-hidden")
		indentDots(usageWidth - (out.Len() - start) + 2)
		out.WriteString("show extended usage and exit\n")
	}

	if app.URL != "" || app.Version != "" {
		out.WriteByte('\n')
		if app.Version != "" {
			name := app.Name
			if name == "" {
				name = exe
			}
			fmt.Fprintf(&out, "Version: %s v%s\n", name, app.Version)
		}
		if app.URL != "" {
			fmt.Fprintf(&out, "Website: <%s>\n", app.URL)
		}
	}

	if app.Authors != "" {
		out.WriteString("\n(c) ")
		if app.CopyrightYear != 0 {
			fmt.Fprintf(&out, "%d ", app.CopyrightYear)
		}
		out.WriteString(app.Authors)
		if app.License != "" {
			fmt.Fprintf(&out, ", licensed %s\n", app.License)
		} else {
			out.WriteString(", all rights reserved\n")
		}
	}

	return out.String()
}

func argN(i int) string {
	return fmt.Sprintf("ARG%d", i+1)
}
