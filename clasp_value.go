package clasp

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Built-in Value implementations and their Binding constructors. Each
// constructor pairs the type's Query with an accessor into the caller's
// flag struct, e.g.
//
//	NewFlag("foo").Bind(clasp.Int(func(t *Toy) *int { return &t.Foo }))

func bindValue[P any, V Value](q Query, field func(*P) V) Binding {
	return Binding{
		query: q,
		value: func(out any) Value { return field(out.(*P)) },
	}
}

// Bool binds a bool field. Bool flags take no argument token; an explicit
// =value is still accepted, so --verbose and --verbose=no both work.
func Bool[P any](field func(*P) *bool) Binding {
	return bindValue(Query{WantsArg: false, DefaultCount: Optional},
		func(p *P) Value { return (*boolValue)(field(p)) })
}

// Int binds an int field. Accepts 0x, 0o, and 0b prefixes.
func Int[P any](field func(*P) *int) Binding {
	return bindValue(Query{WantsArg: true, DefaultCount: Optional},
		func(p *P) Value { return (*intValue)(field(p)) })
}

// Int64 binds an int64 field.
func Int64[P any](field func(*P) *int64) Binding {
	return bindValue(Query{WantsArg: true, DefaultCount: Optional},
		func(p *P) Value { return (*int64Value)(field(p)) })
}

// Float64 binds a float64 field.
func Float64[P any](field func(*P) *float64) Binding {
	return bindValue(Query{WantsArg: true, DefaultCount: Optional},
		func(p *P) Value { return (*float64Value)(field(p)) })
}

// String binds a string field.
func String[P any](field func(*P) *string) Binding {
	return bindValue(Query{WantsArg: true, DefaultCount: Optional},
		func(p *P) Value { return (*stringValue)(field(p)) })
}

// Rune binds a rune field; the argument must be exactly one rune.
func Rune[P any](field func(*P) *rune) Binding {
	return bindValue(Query{WantsArg: true, DefaultCount: Optional},
		func(p *P) Value { return (*runeValue)(field(p)) })
}

// Ints binds an []int field, appending once per occurrence. Slice
// bindings default to Repeated.
func Ints[P any](field func(*P) *[]int) Binding {
	return bindValue(Query{WantsArg: true, DefaultCount: Repeated},
		func(p *P) Value { return (*intsValue)(field(p)) })
}

// Strings binds a []string field, appending once per occurrence.
func Strings[P any](field func(*P) *[]string) Binding {
	return bindValue(Query{WantsArg: true, DefaultCount: Repeated},
		func(p *P) Value { return (*stringsValue)(field(p)) })
}

// Custom binds a field whose type implements Value itself.
func Custom[P any](q Query, field func(*P) Value) Binding {
	return bindValue(q, field)
}

type boolValue bool

var boolTrue = []string{"true", "t", "yes", "y", "on"}
var boolFalse = []string{"false", "f", "no", "n", "off"}

func contains(set []string, s string) bool {
	for _, x := range set {
		if x == s {
			return true
		}
	}
	return false
}

func (v *boolValue) Set(raw string) error {
	if raw != "" && raw[0] >= '0' && raw[0] <= '9' {
		if i, err := strconv.ParseUint(raw, 0, 8); err == nil && i <= 1 {
			*v = i == 1
			return nil
		}
	}
	switch {
	case raw == "" || contains(boolTrue, raw):
		*v = true
	case contains(boolFalse, raw):
		*v = false
	default:
		return fmt.Errorf("invalid bool: %q", raw)
	}
	return nil
}

type intValue int

func (v *intValue) Set(raw string) error {
	i, err := strconv.ParseInt(raw, 0, strconv.IntSize)
	if err != nil {
		return fmt.Errorf("invalid integer: %q", raw)
	}
	*v = intValue(i)
	return nil
}

type int64Value int64

func (v *int64Value) Set(raw string) error {
	i, err := strconv.ParseInt(raw, 0, 64)
	if err != nil {
		return fmt.Errorf("invalid integer: %q", raw)
	}
	*v = int64Value(i)
	return nil
}

type float64Value float64

func (v *float64Value) Set(raw string) error {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid float: %q", raw)
	}
	*v = float64Value(f)
	return nil
}

type stringValue string

func (v *stringValue) Set(raw string) error {
	*v = stringValue(raw)
	return nil
}

type runeValue rune

func (v *runeValue) Set(raw string) error {
	r, size := utf8.DecodeRuneInString(raw)
	if size == 0 || r == utf8.RuneError || size != len(raw) {
		return fmt.Errorf("invalid rune: %q", raw)
	}
	*v = runeValue(r)
	return nil
}

type intsValue []int

func (v *intsValue) Set(raw string) error {
	var i intValue
	if err := i.Set(raw); err != nil {
		return err
	}
	*v = append(*v, int(i))
	return nil
}

type stringsValue []string

func (v *stringsValue) Set(raw string) error {
	*v = append(*v, raw)
	return nil
}
