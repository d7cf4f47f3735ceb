package clasp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pair struct {
	A, B int
	S    string
}

func bindA() Binding { return Int(func(p *pair) *int { return &p.A }) }
func bindB() Binding { return Int(func(p *pair) *int { return &p.B }) }
func bindS() Binding { return String(func(p *pair) *string { return &p.S }) }

func TestDuplicateFlagName(t *testing.T) {
	assert.PanicsWithError(t, "clasp: detected duplicate flag: --same", func() {
		Build(func(s *Schema) {
			NewFlag("same").Bind(bindA()).Register(s)
			NewFlag("same").Bind(bindB()).Register(s)
		})
	})
}

func TestDuplicateFlagLetter(t *testing.T) {
	assert.PanicsWithError(t, "clasp: detected duplicate flag: -q", func() {
		Build(func(s *Schema) {
			NewFlag("quick").SetLetter('q').Bind(bindA()).Register(s)
			NewFlag("quiet").SetLetter('q').Bind(bindB()).Register(s)
		})
	})
}

func TestDuplicateViaAlias(t *testing.T) {
	assert.Panics(t, func() {
		Build(func(s *Schema) {
			NewFlag("one").AddAlias("two").Bind(bindA()).Register(s)
			NewFlag("two").Bind(bindB()).Register(s)
		})
	})
}

func TestDuplicateSubcommand(t *testing.T) {
	assert.PanicsWithError(t, "clasp: detected duplicate subcommand: go", func() {
		Build(func(s *Schema) {
			NewSub("go").Register(s, func(*Schema) {}, func(p any) any { return p })
			NewSub("go").Register(s, func(*Schema) {}, func(p any) any { return p })
		})
	})
}

func TestReservedNames(t *testing.T) {
	for _, name := range []string{"help", "help-hidden", "help_hidden", "version"} {
		assert.Panics(t, func() {
			Build(func(s *Schema) {
				NewFlag(name).Bind(bindA()).Register(s)
			})
		}, "name %q", name)
	}
}

func TestReservedSubcommandNames(t *testing.T) {
	for _, name := range []string{"help", "help-hidden", "help_hidden", "version"} {
		assert.Panics(t, func() {
			Build(func(s *Schema) {
				NewSub(name).Register(s, func(*Schema) {}, func(p any) any { return p })
			})
		}, "name %q", name)
		assert.Panics(t, func() {
			Build(func(s *Schema) {
				NewSub("ok").AddAlias(name).Register(s, func(*Schema) {}, func(p any) any { return p })
			})
		}, "alias %q", name)
	}
}

func TestMalformedNames(t *testing.T) {
	for _, name := range []string{"", "-leading", "trailing-", "_leading", "has space", "has.dot", "has=eq", "has#hash"} {
		assert.Panics(t, func() {
			Build(func(s *Schema) {
				NewFlag(name).Bind(bindA()).Register(s)
			})
		}, "name %q", name)
	}
}

func TestUnderscoreCanonicalization(t *testing.T) {
	schema := Build(func(s *Schema) {
		NewFlag("snake_case").Bind(bindA()).Register(s)
	})

	var got pair
	assert.Nil(t, schema.Parse(&got, "t", []string{"--snake-case", "1"}))
	assert.Equal(t, 1, got.A)

	got = pair{}
	assert.Nil(t, schema.Parse(&got, "t", []string{"--snake_case", "2"}))
	assert.Equal(t, 2, got.A)

	// Group access canonicalizes too, both in the dotted form and in the
	// sub-flag pulled from the next argv element.
	type wrapped struct {
		Grp pair
	}
	grouped := Build(func(s *Schema) {
		NewGroup("grp").
			SetHelp("grouped").
			Register(s, func(s *Schema) {
				NewFlag("snake_case").Bind(bindA()).Register(s)
			}, Access(func(w *wrapped) *pair { return &w.Grp }))
	})

	var w wrapped
	assert.Nil(t, grouped.Parse(&w, "t", []string{"--grp.snake_case", "3"}))
	assert.Equal(t, 3, w.Grp.A)

	w = wrapped{}
	assert.Nil(t, grouped.Parse(&w, "t", []string{"--grp", "snake_case=4"}))
	assert.Equal(t, 4, w.Grp.A)
}

func TestPositionalOrdering(t *testing.T) {
	assert.Panics(t, func() {
		Build(func(s *Schema) {
			NewPositional("opt").Bind(bindS()).Register(s)
			NewPositional("req").SetCount(Required).Bind(bindS()).Register(s)
		})
	})

	assert.Panics(t, func() {
		Build(func(s *Schema) {
			NewPositional("many").SetCount(Repeated).Bind(bindS()).Register(s)
			NewPositional("one").Bind(bindS()).Register(s)
		})
	})

	assert.NotPanics(t, func() {
		Build(func(s *Schema) {
			NewPositional("req").SetCount(Required).Bind(bindS()).Register(s)
			NewPositional("opt").Bind(bindS()).Register(s)
			NewPositional("many").SetCount(Repeated).Bind(bindS()).Register(s)
		})
	})
}

func TestGroupVisibilityMerge(t *testing.T) {
	type hidden struct {
		Inner pair
	}
	schema := Build(func(s *Schema) {
		NewGroup("extras").
			SetVis(Hidden).
			SetHelp("hidden extras").
			Register(s, func(s *Schema) {
				NewFlag("inner").
					SetHelp("a public flag in a hidden group").
					Bind(Int(func(p *pair) *int { return &p.A })).
					Register(s)
			}, Access(func(h *hidden) *pair { return &h.Inner }))
	})

	// Still parseable under its dotted name.
	var got hidden
	assert.Nil(t, schema.Parse(&got, "t", []string{"--extras.inner", "9"}))
	assert.Equal(t, 9, got.Inner.A)

	// The merged visibility keeps the copy out of plain help.
	plain := schema.Usage("t", false)
	assert.NotContains(t, plain, "--extras.inner")
	withHidden := schema.Usage("t", true)
	assert.Contains(t, withHidden, "--extras.inner")
}

func TestDeleteVisibility(t *testing.T) {
	schema := Build(func(s *Schema) {
		NewFlag("gone").SetVis(Delete).Bind(bindA()).Register(s)
		NewFlag("kept").Bind(bindB()).Register(s)
	})

	var got pair
	err := schema.Parse(&got, "t", []string{"--gone", "1"})
	if assert.NotNil(t, err) {
		assert.True(t, err.Fatal)
		assert.True(t, strings.HasPrefix(err.Message, "t: fatal: unknown flag"))
	}
	assert.Nil(t, schema.Parse(&got, "t", []string{"--kept", "2"}))
	assert.Equal(t, 2, got.B)
}

func TestForMemoizes(t *testing.T) {
	type memo struct{ A int }
	build := func(s *Schema) {
		NewFlag("a").Bind(Int(func(m *memo) *int { return &m.A })).Register(s)
	}
	first := For[memo](build)
	second := For[memo](build)
	assert.Same(t, first, second)
}
