package clasp

import (
	"fmt"
	"strings"
)

// Error is the outcome of a failed or short-circuited Parse. Fatal
// errors are genuine command-line mistakes; non-fatal ones carry usage
// text requested with --help and friends.
type Error struct {
	Message string
	Fatal   bool
}

func (e *Error) Error() string {
	return e.Message
}

// PrintAndExit routes the error the way a main function wants it: usage
// text goes to stdout with exit code 0, fatal errors go to stderr in red
// with exit code 128. Output and exit pass through the swappable seams.
func (e *Error) PrintAndExit() {
	if !e.Fatal {
		fmt.Fprint(stdoutWriter, e.Message)
		osExit(0)
		return
	}
	initializeColorFromEnv()
	fmt.Fprintln(stderrWriter, RedS("%s", e.Message))
	osExit(128)
}

// parseContext is the state threaded through one Parse call.
type parseContext struct {
	exe  string
	root *Schema
	sub  *Schema // the active subcommand node
	cur  *Schema // sub, or a group we descended into for this token
	out  any

	nextPositional int
	token          string // the flag being parsed, for error messages
}

func fatalf(exe, format string, args ...any) *Error {
	return &Error{
		Message: exe + ": fatal: " + fmt.Sprintf(format, args...),
		Fatal:   true,
	}
}

func (ctx *parseContext) interpretMagic(e *entry) *Error {
	switch e.magic {
	case magicHelp:
		return &Error{Message: ctx.cur.Usage(ctx.exe, false)}
	case magicHelpHidden:
		return &Error{Message: ctx.cur.Usage(ctx.exe, true)}
	}
	return nil
}

func (ctx *parseContext) setFlag(f *flagRec, raw string) *Error {
	if err := f.bind.value(ctx.out).Set(raw); err != nil {
		return fatalf(ctx.exe, "could not parse argument for %s: %v", ctx.token, err)
	}
	return nil
}

func (ctx *parseContext) setPositional(p *posRec, raw string) *Error {
	if err := p.bind.value(ctx.out).Set(raw); err != nil {
		return fatalf(ctx.exe, "could not parse argument: %v", err)
	}
	return nil
}

// ParseOrExit parses argv (including the leading executable path) into
// out and handles any error via PrintAndExit.
func (s *Schema) ParseOrExit(out any, argv []string) {
	var exe string
	var rest []string
	if len(argv) > 0 {
		exe, rest = argv[0], argv[1:]
	}
	if err := s.Parse(out, exe, rest); err != nil {
		err.PrintAndExit()
	}
}

// Parse walks argv and fills in out, which must be the pointer type the
// schema's bindings were built against. argv does not include the
// executable path; exe is only used in messages, trimmed to a basename.
//
// A non-nil result is either a fatal parse error or, when the command
// line asked for help, the usage text with Fatal unset.
func (s *Schema) Parse(out any, exe string, argv []string) *Error {
	if i := strings.LastIndexByte(exe, '/'); i >= 0 {
		exe = exe[i+1:]
	}
	ctx := &parseContext{exe: exe, root: s, sub: s, cur: s, out: out}

	doneWithFlags := false

	// Flag identities we have already consumed, for duplicate and
	// missing-flag errors.
	seen := make(map[*FlagSpec]bool)

	i := 0
	nextTok := func() (string, bool) {
		if i >= len(argv) {
			return "", false
		}
		t := argv[i]
		i++
		return t, true
	}

argvLoop:
	for {
		next, ok := nextTok()
		if !ok {
			break
		}
		ctx.cur = ctx.sub

		if !doneWithFlags {
			isFlag := strings.HasPrefix(next, "-")
			isLetter := !strings.HasPrefix(next, "--")

			if next == "--" {
				doneWithFlags = true
				continue
			}

			// Split off an = argument before peeling dashes, so --a==b
			// yields the value "=b".
			flag := next
			var arg string
			var hasArg bool
			if f, a, ok := strings.Cut(flag, "="); ok {
				flag, arg, hasArg = f, a, true
			}

			token := flag
			if isFlag && isLetter {
				flag = flag[1:]
			} else if isFlag {
				flag = flag[2:]
			}
			// Keys are stored with dashes; both spellings resolve.
			if isFlag {
				flag = strings.ReplaceAll(flag, "_", "-")
			}

			// pushGroup descends into a group for the rest of this token.
			// When the group's letter or name stands alone, the sub-flag
			// comes from the next argv element, e.g. -X eks=5.
			pushGroup := func(idx int, updateArg bool) *Error {
				if updateArg {
					if hasArg {
						return fatalf(ctx.exe, "unexpected argument after %s", token)
					}
					nextArg, ok := nextTok()
					if !ok {
						return fatalf(ctx.exe, "expected sub-flag after %s", token)
					}
					flag = nextArg
					arg, hasArg = "", false
					if f, a, ok := strings.Cut(flag, "="); ok {
						flag, arg, hasArg = f, a, true
					}
					flag = strings.ReplaceAll(flag, "_", "-")
				}
				ctx.cur = ctx.cur.groups[idx].child
				return nil
			}

			if isFlag && isLetter {
				// This may be a run of short flags, like -xvzf file, or a
				// short flag group, like -Copt-level. Peel off one rune at
				// a time until we are no longer seeing no-argument flags.
				runes := []rune(flag)
				for ri, r := range runes {
					rest := string(runes[ri+1:])

					e := ctx.cur.findFlag(string(r))
					if e == nil || !e.isLetter {
						break
					}
					if e.isGroup {
						// Only consume the next argv element if no runes
						// remain to parse the sub-flag from.
						update := rest == ""
						if err := pushGroup(e.idx, update); err != nil {
							return err
						}
						if !update {
							flag = rest
						}
						continue
					}
					if e.magic != magicNone {
						return ctx.interpretMagic(e)
					}

					f := &ctx.cur.flags[e.idx]
					if f.bind.query.WantsArg {
						break
					}
					tok := "-" + string(r)
					ctx.token = tok

					if seen[f.tag] && f.getCount() != Repeated {
						return fatalf(ctx.exe, "flag %s appeared more than once", tok)
					}
					seen[f.tag] = true

					// A no-argument flag can still get an argument by =,
					// as in -xvz=true; it goes to the last flag of the run.
					if rest == "" {
						if err := ctx.setFlag(f, arg); err != nil {
							return err
						}
						continue argvLoop
					}
					if err := ctx.setFlag(f, ""); err != nil {
						return err
					}
					flag = rest
				}

				// A lone "-" is an empty cluster; it and any =value
				// attached to it are consumed without effect.
				if flag == "" {
					continue
				}
			}

			ctx.token = next
			for isFlag { // Loops to handle nested group descent.
				e := ctx.cur.findFlag(flag)
				if e == nil {
					return &Error{
						Message: fmt.Sprintf(
							"%[1]s: fatal: unknown flag %[2]q\n"+
								"%[1]s: you can use `--` if you meant to pass this as a positional argument",
							ctx.exe, token),
						Fatal: true,
					}
				}

				if e.isGroup {
					if err := pushGroup(e.idx, true); err != nil {
						return err
					}
					continue
				}
				if e.magic != magicNone {
					// Magic copies first descend into their group, so the
					// right node's usage is rendered.
					if e.idx != -1 {
						ctx.cur = ctx.cur.groups[e.idx].child
					}
					return ctx.interpretMagic(e)
				}

				f := &ctx.cur.flags[e.idx]

				dash := "--"
				if isLetter {
					dash = "-"
				}
				tok := dash + flag
				ctx.token = tok

				if seen[f.tag] && f.getCount() != Repeated {
					return fatalf(ctx.exe, "flag %s appeared more than once", tok)
				}
				seen[f.tag] = true

				if !hasArg && f.bind.query.WantsArg {
					a, ok := nextTok()
					if !ok {
						return fatalf(ctx.exe, "expected argument after %s", token)
					}
					arg, hasArg = a, true
				}

				if err := ctx.setFlag(f, arg); err != nil {
					return err
				}
				continue argvLoop
			}
		}

		// Look for a relevant subcommand. The switch is permanent: flags
		// after this point resolve against the subcommand's node.
		if e := ctx.cur.findSub(next); e != nil {
			ctx.sub = ctx.cur.subs[e.idx].child
			continue
		}

		// If not, this is definitely a positional.
		if ctx.nextPositional < len(ctx.cur.args) {
			p := &ctx.cur.args[ctx.nextPositional]
			if err := ctx.setPositional(p, next); err != nil {
				return err
			}
			if p.getCount() != Repeated {
				ctx.nextPositional++
			}
			continue
		}

		return fatalf(ctx.exe, "unexpected extra argument %q", next)
	}

	// Required flags are enforced for the active subcommand and every
	// node above it.
	for node := ctx.sub; node != nil; node = node.parent {
		for tag, name := range node.required {
			if !seen[tag] {
				return fatalf(ctx.exe, "missing flag --%s", name)
			}
		}
	}

	return nil
}
