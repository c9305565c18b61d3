// Package form holds the funnel-side contract: schema validation of flat field records
// and the multi-step wizard that gates advancement on it.
package form

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

type Kind int

const (
	KindText Kind = iota
	KindEmail
	KindEnum
	KindPhone
)

const defaultMinDigits = 7

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@.]+(\.[^\s@.]+)+$`)

type Rule struct {
	Required  bool
	MinLength int
	MaxLength int
	Kind      Kind
	// Allowed is the enum value set for KindEnum fields.
	Allowed []string
	// MinDigits applies to KindPhone; zero means defaultMinDigits.
	MinDigits int
}

type Field struct {
	Name  string
	Label string
	Rule  Rule
}

// Schema is an ordered set of field rules. Declaration order decides which
// error is reported first.
type Schema []Field

// Record is a candidate field bag; a missing key is an undefined field.
type Record map[string]string

type Result struct {
	Valid  bool
	Values Record
	Errors map[string]string
}

// Field returns the rule for name and whether the schema declares it.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Slice returns the sub-schema holding the named fields, in the schema's own order.
func (s Schema) Slice(names ...string) Schema {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	out := make(Schema, 0, len(names))
	for _, f := range s {
		if want[f.Name] {
			out = append(out, f)
		}
	}
	return out
}

// Validate checks record against schema. Values are trimmed before any check and the
// trimmed form is what ends up in Result.Values; email values are also lowercased.
func Validate(schema Schema, record Record) Result {
	res := Result{
		Values: Record{},
		Errors: map[string]string{},
	}

	for _, f := range schema {
		raw, ok := record[f.Name]
		value := strings.TrimSpace(raw)
		if f.Rule.Kind == KindEmail {
			value = strings.ToLower(value)
		}

		if msg := check(f, value); msg != "" {
			res.Errors[f.Name] = msg
			continue
		}
		if ok && value != "" {
			res.Values[f.Name] = value
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}

func check(f Field, value string) string {
	r := f.Rule
	label := f.Label
	if label == "" {
		label = f.Name
	}

	if value == "" {
		if r.Required {
			return label + " is required"
		}
		return ""
	}

	n := utf8.RuneCountInString(value)
	if r.MinLength > 0 && n < r.MinLength {
		return fmt.Sprintf("%s must have at least %d characters", label, r.MinLength)
	}
	if r.MaxLength > 0 && n > r.MaxLength {
		return fmt.Sprintf("%s must not exceed %d characters", label, r.MaxLength)
	}

	switch r.Kind {
	case KindEmail:
		if !emailPattern.MatchString(value) {
			return "Please enter a valid email address"
		}
	case KindEnum:
		if !contains(r.Allowed, value) {
			return "Please select a valid " + strings.ToLower(label)
		}
	case KindPhone:
		min := r.MinDigits
		if min <= 0 {
			min = defaultMinDigits
		}
		if countDigits(value) < min {
			return "Please enter a valid phone number"
		}
	}
	return ""
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
