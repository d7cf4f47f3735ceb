package clasp

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func expectUsage(t *testing.T, args []string, want string) {
	t.Helper()
	var got toy
	err := toySchema().Parse(&got, "cli_test", args)
	if !assert.NotNil(t, err, "args: %q", args) {
		return
	}
	if !assert.False(t, err.Fatal, "args: %q: %s", args, err.Message) {
		return
	}
	if diff := cmp.Diff(want, err.Message); diff != "" {
		t.Errorf("usage mismatch for args %q (-want +got):\n%s", args, diff)
	}
}

const toyUsage = `Usage: cli_test -Xabcdfhxyz [OPTIONS] [sub|sub2|sub3] [ARG1] [ARG2]...
this is a test binary for playing with all of
the parser's features

# Subcommands
      sub . . . . . . . . . . a subcommand
      sub2  . . . . . . . . . identical in all ways to 'sub'
                              except for this help
      sub3  . . . . . . . . . identical in all ways to 'sub'
                              except for this help

# Flags
  -a, --flag1 . . . . . . . . this is a flag
                              newline
      --a-flag-with-a-freakishly-long-name INT
                              like, freakishly long man
  -b, --flag2 . . . . . . . . this is a flag
                              newline
      --bar INT . . . . . . . repeated integer
      --baz ARG . . . . . . . another integer
  -c, --flag3,  . . . . . . . this is a flag
      --flag3-alias           newline
  -d, --flag4 . . . . . . . . this is a flag
                              newline
  -f, --foo INT . . . . . . . an integer
  -x, --eks INT . . . . . . . a group integer
  -y, --why INT . . . . . . . another group integer
  -z, --zed INT . . . . . . . a third group integer

  -X, --subgroup FLAG . . . . extra options behind the -X flag

  -h, --help  . . . . . . . . show usage and exit

Version: toy v1.0.0
Website: <https://clasp.dev>

(c) 2024 clasp authors, licensed Apache-2.0
`

const toyUsageHidden = `Usage: cli_test -Xabcdfhxyz [OPTIONS] [sub|sub2|sub3] [ARG1] [ARG2]...
this is a test binary for playing with all of
the parser's features

# Subcommands
      sub . . . . . . . . . . a subcommand
      sub2  . . . . . . . . . identical in all ways to 'sub'
                              except for this help
      sub3  . . . . . . . . . identical in all ways to 'sub'
                              except for this help

# Flags
  -a, --flag1 . . . . . . . . this is a flag
                              newline
      --a-flag-with-a-freakishly-long-name INT
                              like, freakishly long man
      --addr ARG, . . . . . . your address
      --my-address ARG` + `        ` + `
  -b, --flag2 . . . . . . . . this is a flag
                              newline
      --bar INT . . . . . . . repeated integer
      --baz ARG . . . . . . . another integer
  -c, --flag3,  . . . . . . . this is a flag
      --flag3-alias,          newline
      --flag3-alias2` + `          ` + `
  -d, --flag4 . . . . . . . . this is a flag
                              newline
  -f, --foo INT . . . . . . . an integer
      --name ARG, . . . . . . your name
      --my-name ARG` + `           ` + `
      --undocumented ARG  . . <undocumented>
  -x, --eks INT . . . . . . . a group integer
  -y, --why INT . . . . . . . another group integer
  -z, --zed INT . . . . . . . a third group integer

  -X, --subgroup FLAG . . . . extra options behind the -X flag
      --subgroup.a-flag-with-a-freakishly-long-name INT
                              like, freakishly long man
      --subgroup.eks INT  . . a group integer
      --subgroup.why INT  . . another group integer
      --subgroup.zed INT  . . a third group integer

  -h, --help  . . . . . . . . show usage and exit
      --help-hidden . . . . . show extended usage and exit

Version: toy v1.0.0
Website: <https://clasp.dev>

(c) 2024 clasp authors, licensed Apache-2.0
`

const toyGroupUsage = `Usage: cli_test -X [SUBOPTION] -Xabcdfhxyz [OPTIONS] [sub|sub2|sub3] [ARG1] [ARG2]...
extra options behind the -X flag

# Flags
      --a-flag-with-a-freakishly-long-name INT
                              like, freakishly long man
  -x, --eks INT . . . . . . . a group integer
  -y, --why INT . . . . . . . another group integer
  -z, --zed INT . . . . . . . a third group integer

  -h, --help  . . . . . . . . show usage and exit

Version: toy v1.0.0
Website: <https://clasp.dev>

(c) 2024 clasp authors, licensed Apache-2.0
`

const toyGroupUsageHidden = `Usage: cli_test -X [SUBOPTION] -Xabcdfhxyz [OPTIONS] [sub|sub2|sub3] [ARG1] [ARG2]...
extra options behind the -X flag

# Flags
      --a-flag-with-a-freakishly-long-name INT
                              like, freakishly long man
  -x, --eks INT . . . . . . . a group integer
  -y, --why INT . . . . . . . another group integer
  -z, --zed INT . . . . . . . a third group integer

  -h, --help  . . . . . . . . show usage and exit
      --help-hidden . . . . . show extended usage and exit

Version: toy v1.0.0
Website: <https://clasp.dev>

(c) 2024 clasp authors, licensed Apache-2.0
`

const toySubUsage = `Usage: cli_test sub -hs [OPTIONS] [ARG1]
longer help for the subcommand
with multiple lines

# Flags
  -s, --sub-flag INT  . . . . a subcommand argument

  -h, --help  . . . . . . . . show usage and exit

Version: toy v1.0.0
Website: <https://clasp.dev>

(c) 2024 clasp authors, licensed Apache-2.0
`

const toySubUsageHidden = `Usage: cli_test sub -hs [OPTIONS] [ARG1]
longer help for the subcommand
with multiple lines

# Flags
  -s, --sub-flag INT  . . . . a subcommand argument

  -h, --help  . . . . . . . . show usage and exit
      --help-hidden . . . . . show extended usage and exit

Version: toy v1.0.0
Website: <https://clasp.dev>

(c) 2024 clasp authors, licensed Apache-2.0
`

func TestRootUsage(t *testing.T) {
	expectUsage(t, []string{"--help"}, toyUsage)
	expectUsage(t, []string{"-h"}, toyUsage)
	expectUsage(t, []string{"-ah"}, toyUsage)
	expectUsage(t, []string{"--help-hidden"}, toyUsageHidden)
}

func TestGroupUsage(t *testing.T) {
	expectUsage(t, []string{"-X", "h"}, toyGroupUsage)
	expectUsage(t, []string{"-Xh"}, toyGroupUsage)
	expectUsage(t, []string{"--subgroup", "h"}, toyGroupUsage)
	expectUsage(t, []string{"--subgroup.h"}, toyGroupUsage)

	expectUsage(t, []string{"-X", "help"}, toyGroupUsage)
	expectUsage(t, []string{"-Xhelp"}, toyGroupUsage)
	expectUsage(t, []string{"--subgroup", "help"}, toyGroupUsage)
	expectUsage(t, []string{"--subgroup.help"}, toyGroupUsage)

	expectUsage(t, []string{"-X", "help-hidden"}, toyGroupUsageHidden)
	// -Xh is a prefix of -Xhelp-hidden, so cluster peeling finds the
	// plain help first. A known corner case.
	expectUsage(t, []string{"-Xhelp-hidden"}, toyGroupUsage)
	expectUsage(t, []string{"--subgroup", "help-hidden"}, toyGroupUsageHidden)
	expectUsage(t, []string{"--subgroup.help-hidden"}, toyGroupUsageHidden)
}

func TestSubUsage(t *testing.T) {
	expectUsage(t, []string{"sub", "--help"}, toySubUsage)
	expectUsage(t, []string{"sub", "-h"}, toySubUsage)
	expectUsage(t, []string{"sub", "--help-hidden"}, toySubUsageHidden)
}
