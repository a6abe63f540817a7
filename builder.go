package spanassert

import (
	"github.com/aretw0/spanassert/internal/registry"
	"github.com/aretw0/spanassert/pkg/spans"
)

// builderCore carries the accumulating matcher and criteria across the three
// builder stages. The stage types share one core, so chaining never copies.
type builderCore struct {
	state    *registry.Registry
	matcher  *registry.Matcher
	criteria []criterion
}

func (c *builderCore) add(t spans.Transition, op compareOp, n uint64) {
	c.criteria = append(c.criteria, criterion{transition: t, op: op, n: n})
}

// Builder is the initial assertion builder stage: no matcher yet. Setting a
// span name or target moves to the MatcherBuilder stage, where behavioral
// criteria become available. Finalize does not exist at this stage, so an
// assertion without a matcher cannot be constructed.
type Builder struct {
	core *builderCore
}

// WithName matches spans with the given name.
func (b *Builder) WithName(name string) *MatcherBuilder {
	b.core.matcher.SetName(name)
	return &MatcherBuilder{core: b.core}
}

// WithTarget matches spans with the given target.
func (b *Builder) WithTarget(target string) *MatcherBuilder {
	b.core.matcher.SetTarget(target)
	return &MatcherBuilder{core: b.core}
}

// MatcherBuilder is the second builder stage: a matcher is present but no
// criteria have been added. All matcher setters stay available and are
// additive, meaning a span must satisfy every one of them to match. Adding any
// behavioral criterion moves to the ConstrainedBuilder stage, which is the
// only stage exposing Finalize.
type MatcherBuilder struct {
	core *builderCore
}

// WithName matches spans with the given name. Calling it again replaces the
// previously required name.
func (b *MatcherBuilder) WithName(name string) *MatcherBuilder {
	b.core.matcher.SetName(name)
	return b
}

// WithTarget matches spans with the given target. Calling it again replaces
// the previously required target.
func (b *MatcherBuilder) WithTarget(target string) *MatcherBuilder {
	b.core.matcher.SetTarget(target)
	return b
}

// WithParentName matches spans with an ancestor of the given name anywhere in
// their lineage.
func (b *MatcherBuilder) WithParentName(name string) *MatcherBuilder {
	b.core.matcher.SetParentName(name)
	return b
}

// WithSpanField matches spans carrying a field with the given name. Unlike the
// other setters this one accumulates: each call adds another required field.
func (b *MatcherBuilder) WithSpanField(field string) *MatcherBuilder {
	b.core.matcher.AddFieldExists(field)
	return b
}

func (b *MatcherBuilder) constrained() *ConstrainedBuilder {
	return &ConstrainedBuilder{MatcherBuilder: b}
}

// WasCreated requires a matching span to have been created at least once.
func (b *MatcherBuilder) WasCreated() *ConstrainedBuilder {
	b.core.add(spans.TransitionCreated, opNonZero, 0)
	return b.constrained()
}

// WasEntered requires a matching span to have been entered at least once.
func (b *MatcherBuilder) WasEntered() *ConstrainedBuilder {
	b.core.add(spans.TransitionEntered, opNonZero, 0)
	return b.constrained()
}

// WasExited requires a matching span to have been exited at least once.
func (b *MatcherBuilder) WasExited() *ConstrainedBuilder {
	b.core.add(spans.TransitionExited, opNonZero, 0)
	return b.constrained()
}

// WasClosed requires a matching span to have been closed at least once.
func (b *MatcherBuilder) WasClosed() *ConstrainedBuilder {
	b.core.add(spans.TransitionClosed, opNonZero, 0)
	return b.constrained()
}

// WasNotCreated requires that no matching span was ever created.
func (b *MatcherBuilder) WasNotCreated() *ConstrainedBuilder {
	b.core.add(spans.TransitionCreated, opZero, 0)
	return b.constrained()
}

// WasNotEntered requires that no matching span was ever entered.
func (b *MatcherBuilder) WasNotEntered() *ConstrainedBuilder {
	b.core.add(spans.TransitionEntered, opZero, 0)
	return b.constrained()
}

// WasNotExited requires that no matching span was ever exited.
func (b *MatcherBuilder) WasNotExited() *ConstrainedBuilder {
	b.core.add(spans.TransitionExited, opZero, 0)
	return b.constrained()
}

// WasNotClosed requires that no matching span was ever closed.
func (b *MatcherBuilder) WasNotClosed() *ConstrainedBuilder {
	b.core.add(spans.TransitionClosed, opZero, 0)
	return b.constrained()
}

// WasCreatedExactly requires matching spans to have been created exactly n times.
func (b *MatcherBuilder) WasCreatedExactly(n uint64) *ConstrainedBuilder {
	b.core.add(spans.TransitionCreated, opExactly, n)
	return b.constrained()
}

// WasEnteredExactly requires matching spans to have been entered exactly n times.
func (b *MatcherBuilder) WasEnteredExactly(n uint64) *ConstrainedBuilder {
	b.core.add(spans.TransitionEntered, opExactly, n)
	return b.constrained()
}

// WasExitedExactly requires matching spans to have been exited exactly n times.
func (b *MatcherBuilder) WasExitedExactly(n uint64) *ConstrainedBuilder {
	b.core.add(spans.TransitionExited, opExactly, n)
	return b.constrained()
}

// WasClosedExactly requires matching spans to have been closed exactly n times.
func (b *MatcherBuilder) WasClosedExactly(n uint64) *ConstrainedBuilder {
	b.core.add(spans.TransitionClosed, opExactly, n)
	return b.constrained()
}

// WasCreatedAtLeast requires matching spans to have been created at least n
// times. Unlike the exact form this stays satisfied as counts grow, which
// makes it the safe choice inside polling loops.
func (b *MatcherBuilder) WasCreatedAtLeast(n uint64) *ConstrainedBuilder {
	b.core.add(spans.TransitionCreated, opAtLeast, n)
	return b.constrained()
}

// WasEnteredAtLeast requires matching spans to have been entered at least n times.
func (b *MatcherBuilder) WasEnteredAtLeast(n uint64) *ConstrainedBuilder {
	b.core.add(spans.TransitionEntered, opAtLeast, n)
	return b.constrained()
}

// WasExitedAtLeast requires matching spans to have been exited at least n times.
func (b *MatcherBuilder) WasExitedAtLeast(n uint64) *ConstrainedBuilder {
	b.core.add(spans.TransitionExited, opAtLeast, n)
	return b.constrained()
}

// WasClosedAtLeast requires matching spans to have been closed at least n times.
func (b *MatcherBuilder) WasClosedAtLeast(n uint64) *ConstrainedBuilder {
	b.core.add(spans.TransitionClosed, opAtLeast, n)
	return b.constrained()
}

// ConstrainedBuilder is the final builder stage: a matcher and at least one
// criterion are present. It inherits every criterion method from
// MatcherBuilder, keeps the matcher setters available, and adds Finalize.
type ConstrainedBuilder struct {
	*MatcherBuilder
}

// WithName matches spans with the given name. Calling it again replaces the
// previously required name.
func (b *ConstrainedBuilder) WithName(name string) *ConstrainedBuilder {
	b.core.matcher.SetName(name)
	return b
}

// WithTarget matches spans with the given target. Calling it again replaces
// the previously required target.
func (b *ConstrainedBuilder) WithTarget(target string) *ConstrainedBuilder {
	b.core.matcher.SetTarget(target)
	return b
}

// WithParentName matches spans with an ancestor of the given name anywhere in
// their lineage.
func (b *ConstrainedBuilder) WithParentName(name string) *ConstrainedBuilder {
	b.core.matcher.SetParentName(name)
	return b
}

// WithSpanField matches spans carrying a field with the given name. Each call
// adds another required field.
func (b *ConstrainedBuilder) WithSpanField(field string) *ConstrainedBuilder {
	b.core.matcher.AddFieldExists(field)
	return b
}

// Finalize registers the matcher with the registry and returns the live
// assertion handle. If a structurally equal matcher was finalized before, the
// handle shares that entry's counters. The caller owns the handle and should
// Close it when done so the registry can release the entry.
func (b *ConstrainedBuilder) Finalize() *Assertion {
	matcher := b.core.matcher
	return &Assertion{
		state:    b.core.state,
		matcher:  matcher,
		entry:    b.core.state.CreateEntry(matcher),
		criteria: b.core.criteria,
	}
}
