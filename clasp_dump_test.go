package clasp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDump(t *testing.T) {
	t.Setenv("CLASP_COLOR", "never")

	dump := toySchema().Dump()

	assert.Contains(t, dump, "Clasp Schema Dump")
	assert.Contains(t, dump, "App Information:")
	assert.Contains(t, dump, "Name: toy")
	assert.Contains(t, dump, "Version: 1.0.0")

	// Records, including the ones inlined from the flattened group.
	assert.Contains(t, dump, "-f, --foo arg:INT count:repeated")
	assert.Contains(t, dump, "--name(hidden), --my-name(hidden)")
	assert.Contains(t, dump, "--undocumented arg:ARG count:optional <undocumented>")

	// Lookup table entries carry their flattening markers.
	assert.Contains(t, dump, "subgroup.eks vis:hidden [copy]")
	assert.Contains(t, dump, "subgroup.x vis:hidden [letter,copy]")
	assert.Contains(t, dump, "help vis:public [magic]")

	// Child schemas are dumped recursively.
	assert.Contains(t, dump, "Child Schema Dump")
	assert.Contains(t, dump, "--sub-flag arg:INT count:optional")
	assert.Contains(t, dump, "CLASP_COLOR: never")
}

func TestDumpEnvironmentNotSet(t *testing.T) {
	t.Setenv("CLASP_COLOR", "")

	dump := Build(func(s *Schema) {
		NewFlag("solo").SetHelp("only flag").Bind(bindA()).Register(s)
	}).Dump()

	assert.Contains(t, dump, "CLASP_COLOR:")
	assert.Contains(t, dump, "not set")
	assert.Contains(t, dump, "--solo arg:ARG count:optional")
}
