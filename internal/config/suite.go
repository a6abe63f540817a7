// Package config loads declarative assertion suites from YAML. A suite names
// assertions, each with a match block (which spans to count) and an expect
// list (the criteria to verify). The loader drives the public staged builder,
// so a suite cannot produce an assertion the builder itself would not allow.
package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	spanassert "github.com/aretw0/spanassert"
)

// File is the root of a suite document.
type File struct {
	Assertions []AssertionSpec `yaml:"assertions"`
}

// AssertionSpec declares one assertion.
type AssertionSpec struct {
	Name   string           `yaml:"name"`
	Match  MatchSpec        `yaml:"match"`
	Expect []map[string]any `yaml:"expect"`
}

// MatchSpec declares the matcher criteria. At least one of name or target is
// required; the builder has no matcherless stage to finalize from.
type MatchSpec struct {
	Name   string   `yaml:"name"`
	Target string   `yaml:"target"`
	Parent string   `yaml:"parent"`
	Fields []string `yaml:"fields"`
}

// expectation is the typed form of one expect entry. Exactly one field may be
// set per entry; the loosely-typed YAML maps are coerced through mapstructure.
type expectation struct {
	WasCreated *bool `mapstructure:"was_created"`
	WasEntered *bool `mapstructure:"was_entered"`
	WasExited  *bool `mapstructure:"was_exited"`
	WasClosed  *bool `mapstructure:"was_closed"`

	NotCreated *bool `mapstructure:"not_created"`
	NotEntered *bool `mapstructure:"not_entered"`
	NotExited  *bool `mapstructure:"not_exited"`
	NotClosed  *bool `mapstructure:"not_closed"`

	CreatedExactly *uint64 `mapstructure:"created_exactly"`
	EnteredExactly *uint64 `mapstructure:"entered_exactly"`
	ExitedExactly  *uint64 `mapstructure:"exited_exactly"`
	ClosedExactly  *uint64 `mapstructure:"closed_exactly"`

	CreatedAtLeast *uint64 `mapstructure:"created_at_least"`
	EnteredAtLeast *uint64 `mapstructure:"entered_at_least"`
	ExitedAtLeast  *uint64 `mapstructure:"exited_at_least"`
	ClosedAtLeast  *uint64 `mapstructure:"closed_at_least"`
}

// NamedAssertion pairs a finalized assertion with the name it carries in the
// suite file.
type NamedAssertion struct {
	Name      string
	Assertion *spanassert.Assertion
}

// Close releases every assertion in the slice.
func Close(assertions []NamedAssertion) {
	for _, na := range assertions {
		na.Assertion.Close()
	}
}

// Load reads a suite file and registers every assertion it declares.
func Load(path string, registry *spanassert.Registry) ([]NamedAssertion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite: %w", err)
	}
	return Parse(data, registry)
}

// Parse decodes a suite document and registers every assertion it declares.
// All validation failures are collected into a single AggregateError; nothing
// is registered unless the whole suite is valid.
func Parse(data []byte, registry *spanassert.Registry) ([]NamedAssertion, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode suite: %w", err)
	}
	if len(file.Assertions) == 0 {
		return nil, &AggregateError{Errors: []error{
			&ValidationError{Assertion: "-", Reason: "suite declares no assertions"},
		}}
	}

	var errs []error
	for i, spec := range file.Assertions {
		errs = append(errs, validate(i, spec)...)
	}
	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}

	assertions := make([]NamedAssertion, 0, len(file.Assertions))
	for _, spec := range file.Assertions {
		assertion := build(registry, spec)
		assertions = append(assertions, NamedAssertion{Name: spec.Name, Assertion: assertion})
	}
	return assertions, nil
}

func specLabel(i int, spec AssertionSpec) string {
	if spec.Name != "" {
		return spec.Name
	}
	return fmt.Sprintf("#%d", i+1)
}

func validate(i int, spec AssertionSpec) []error {
	label := specLabel(i, spec)
	var errs []error

	if spec.Match.Name == "" && spec.Match.Target == "" {
		errs = append(errs, &ValidationError{
			Assertion: label,
			Reason:    "match requires a span name or target",
		})
	}
	if len(spec.Expect) == 0 {
		errs = append(errs, &ValidationError{
			Assertion: label,
			Reason:    "expect requires at least one criterion",
		})
	}
	for j, raw := range spec.Expect {
		if _, err := decodeExpectation(raw); err != nil {
			errs = append(errs, &ValidationError{
				Assertion: label,
				Reason:    fmt.Sprintf("expect entry %d: %s", j+1, err),
			})
		}
	}
	return errs
}

func decodeExpectation(raw map[string]any) (expectation, error) {
	var exp expectation
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &exp,
		ErrorUnused: true,
	})
	if err != nil {
		return exp, err
	}
	if err := decoder.Decode(raw); err != nil {
		return exp, fmt.Errorf("unknown or malformed criterion: %v", err)
	}

	set := 0
	for _, flag := range []*bool{
		exp.WasCreated, exp.WasEntered, exp.WasExited, exp.WasClosed,
		exp.NotCreated, exp.NotEntered, exp.NotExited, exp.NotClosed,
	} {
		if flag != nil {
			if !*flag {
				return exp, fmt.Errorf("boolean criteria must be true; use the not_* form to negate")
			}
			set++
		}
	}
	for _, n := range []*uint64{
		exp.CreatedExactly, exp.EnteredExactly, exp.ExitedExactly, exp.ClosedExactly,
		exp.CreatedAtLeast, exp.EnteredAtLeast, exp.ExitedAtLeast, exp.ClosedAtLeast,
	} {
		if n != nil {
			set++
		}
	}
	if set != 1 {
		return exp, fmt.Errorf("exactly one criterion per entry, got %d", set)
	}
	return exp, nil
}

// build assembles one assertion through the staged builder. The declaration
// has already been validated, so every stage transition below is legal.
func build(registry *spanassert.Registry, spec AssertionSpec) *spanassert.Assertion {
	var mb *spanassert.MatcherBuilder
	if spec.Match.Name != "" {
		mb = registry.Build().WithName(spec.Match.Name)
		if spec.Match.Target != "" {
			mb = mb.WithTarget(spec.Match.Target)
		}
	} else {
		mb = registry.Build().WithTarget(spec.Match.Target)
	}
	if spec.Match.Parent != "" {
		mb = mb.WithParentName(spec.Match.Parent)
	}
	for _, field := range spec.Match.Fields {
		mb = mb.WithSpanField(field)
	}

	var cb *spanassert.ConstrainedBuilder
	for _, raw := range spec.Expect {
		exp, _ := decodeExpectation(raw)
		cb = apply(mb, exp)
	}
	return cb.Finalize()
}

func apply(mb *spanassert.MatcherBuilder, exp expectation) *spanassert.ConstrainedBuilder {
	switch {
	case exp.WasCreated != nil:
		return mb.WasCreated()
	case exp.WasEntered != nil:
		return mb.WasEntered()
	case exp.WasExited != nil:
		return mb.WasExited()
	case exp.WasClosed != nil:
		return mb.WasClosed()
	case exp.NotCreated != nil:
		return mb.WasNotCreated()
	case exp.NotEntered != nil:
		return mb.WasNotEntered()
	case exp.NotExited != nil:
		return mb.WasNotExited()
	case exp.NotClosed != nil:
		return mb.WasNotClosed()
	case exp.CreatedExactly != nil:
		return mb.WasCreatedExactly(*exp.CreatedExactly)
	case exp.EnteredExactly != nil:
		return mb.WasEnteredExactly(*exp.EnteredExactly)
	case exp.ExitedExactly != nil:
		return mb.WasExitedExactly(*exp.ExitedExactly)
	case exp.ClosedExactly != nil:
		return mb.WasClosedExactly(*exp.ClosedExactly)
	case exp.CreatedAtLeast != nil:
		return mb.WasCreatedAtLeast(*exp.CreatedAtLeast)
	case exp.EnteredAtLeast != nil:
		return mb.WasEnteredAtLeast(*exp.EnteredAtLeast)
	case exp.ExitedAtLeast != nil:
		return mb.WasExitedAtLeast(*exp.ExitedAtLeast)
	case exp.ClosedAtLeast != nil:
		return mb.WasClosedAtLeast(*exp.ClosedAtLeast)
	}
	// Unreachable after validation.
	panic("config: expectation with no criterion")
}
