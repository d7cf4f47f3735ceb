package clasp

import (
	"fmt"
	"os"
	"strings"
)

// Dump creates a comprehensive dump of the compiled schema: every
// record, the flattened lookup tables, and the ambient environment.
// Meant for debugging schema definitions, not for end users.
func (s *Schema) Dump() string {
	initializeColorFromEnv()
	return s.dumpWithDepth(0)
}

func (s *Schema) dumpWithDepth(depth int) string {
	var sb strings.Builder
	indent := strings.Repeat("  ", depth)

	if depth == 0 {
		sb.WriteString(GreenBoldS("Clasp Schema Dump") + "\n")
		sb.WriteString(strings.Repeat("=", 50) + "\n\n")
		sb.WriteString(s.generateAppSection())
	} else {
		name := s.parentSubName
		if s.parentGroup != nil {
			name = s.parentGroup.name
			if name == "" && s.parentGroup.letter != 0 {
				name = "-" + string(s.parentGroup.letter)
			}
		}
		sb.WriteString(fmt.Sprintf("%s%s (%s)\n", indent, GreenBoldS("Child Schema Dump"), BoldS(name)))
		sb.WriteString(fmt.Sprintf("%s%s\n\n", indent, strings.Repeat("-", 30)))
	}

	sb.WriteString(s.generateRecordsSection(depth))
	sb.WriteString(s.generateLookupSection(depth))
	if depth == 0 {
		sb.WriteString(s.generateEnvironmentSection())
	}

	if len(s.subs) > 0 || len(s.groups) > 0 {
		if depth == 0 {
			sb.WriteString("\n" + GreenBoldS("Child Schema Details:") + "\n")
			sb.WriteString(strings.Repeat("=", 50) + "\n\n")
		}
		for i := range s.subs {
			sb.WriteString(s.subs[i].child.dumpWithDepth(depth + 1))
		}
		for i := range s.groups {
			sb.WriteString(s.groups[i].child.dumpWithDepth(depth + 1))
		}
	}

	return sb.String()
}

func (s *Schema) generateAppSection() string {
	var sb strings.Builder
	sb.WriteString(GreenBoldS("App Information:") + "\n")

	writeOpt := func(label, value string) {
		if value != "" {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", label, BoldS(value)))
		} else {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", label, CyanS("<not set>")))
		}
	}
	writeOpt("Name", s.app.Name)
	writeOpt("Version", s.app.Version)
	writeOpt("Authors", s.app.Authors)
	writeOpt("URL", s.app.URL)
	sb.WriteString("\n")

	return sb.String()
}

func (s *Schema) generateRecordsSection(depth int) string {
	var sb strings.Builder
	indent := strings.Repeat("  ", depth)

	sb.WriteString(fmt.Sprintf("%s%s\n", indent, GreenBoldS("Records:")))

	if len(s.flags) > 0 {
		sb.WriteString(fmt.Sprintf("%s  Flags (in order):\n", indent))
		for i := range s.flags {
			f := &s.flags[i]
			sb.WriteString(fmt.Sprintf("%s    %s\n", indent, describeFlag(f)))
		}
	}
	if len(s.args) > 0 {
		sb.WriteString(fmt.Sprintf("%s  Positionals (in order):\n", indent))
		for i := range s.args {
			p := &s.args[i]
			name := p.name
			if name == "" {
				name = argN(i)
			}
			sb.WriteString(fmt.Sprintf("%s    %s count:%s\n", indent,
				BoldS(name), countName(p.getCount())))
		}
	}
	if len(s.subs) > 0 {
		sb.WriteString(fmt.Sprintf("%s  Subcommands:\n", indent))
		for i := range s.subs {
			c := &s.subs[i]
			names := make([]string, len(c.names))
			for j, nv := range c.names {
				names[j] = nv.name
			}
			sb.WriteString(fmt.Sprintf("%s    %s\n", indent, BoldS(strings.Join(names, ", "))))
		}
	}
	sb.WriteString("\n")

	return sb.String()
}

func describeFlag(f *flagRec) string {
	var names []string
	for _, nv := range f.names {
		n := nv.name
		if len(n) == 1 {
			n = "-" + n
		} else {
			n = "--" + n
		}
		if nv.vis != Public {
			n += fmt.Sprintf("(%s)", visName(nv.vis))
		}
		names = append(names, n)
	}
	out := BoldS(strings.Join(names, ", "))
	if f.bind.query.WantsArg {
		arg := f.arg
		if arg == "" {
			arg = "ARG"
		}
		out += " arg:" + arg
	}
	out += " count:" + countName(f.getCount())
	if f.help == "" {
		out += " " + CyanS("<undocumented>")
	}
	return out
}

func (s *Schema) generateLookupSection(depth int) string {
	var sb strings.Builder
	indent := strings.Repeat("  ", depth)

	sb.WriteString(fmt.Sprintf("%s%s\n", indent, GreenBoldS("Lookup Table:")))
	for i := range s.sortedFlags {
		e := &s.sortedFlags[i]
		var marks []string
		if e.isGroup {
			marks = append(marks, "group")
		}
		if e.isLetter {
			marks = append(marks, "letter")
		}
		if e.isAlias {
			marks = append(marks, "alias")
		}
		if e.isCopy {
			marks = append(marks, "copy")
		}
		if e.magic != magicNone {
			marks = append(marks, "magic")
		}
		line := fmt.Sprintf("%s  %s vis:%s", indent, BoldS(e.key), visName(e.vis))
		if len(marks) > 0 {
			line += " [" + strings.Join(marks, ",") + "]"
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func (s *Schema) generateEnvironmentSection() string {
	var sb strings.Builder
	sb.WriteString(GreenBoldS("Environment:") + "\n")

	claspColor := os.Getenv("CLASP_COLOR")
	if claspColor != "" {
		sb.WriteString(fmt.Sprintf("  CLASP_COLOR: %s\n", BoldS(claspColor)))
	} else {
		sb.WriteString(fmt.Sprintf("  CLASP_COLOR: %s\n", CyanS("not set")))
	}

	return sb.String()
}

func countName(c Count) string {
	switch c {
	case Required:
		return "required"
	case Repeated:
		return "repeated"
	default:
		return "optional"
	}
}

func visName(v Visibility) string {
	switch v {
	case Hidden:
		return "hidden"
	case Invisible:
		return "invisible"
	case Delete:
		return "delete"
	default:
		return "public"
	}
}
