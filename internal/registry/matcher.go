package registry

import (
	"fmt"
	"strings"

	"github.com/aretw0/spanassert/pkg/spans"
)

// Matcher is a structural predicate over spans. Each configured criterion is
// conjunctive: a span matches only if every set criterion holds. A matcher
// with no criteria matches every span.
//
// Matchers are built incrementally by the assertion builder and must not be
// mutated once handed to the registry.
type Matcher struct {
	name       string
	hasName    bool
	target     string
	hasTarget  bool
	parentName string
	hasParent  bool
	fields     []string
}

// SetName requires an exact span name. Calling it again replaces the name.
func (m *Matcher) SetName(name string) {
	m.name = name
	m.hasName = true
}

// SetTarget requires an exact span target. Calling it again replaces the target.
func (m *Matcher) SetTarget(target string) {
	m.target = target
	m.hasTarget = true
}

// SetParentName requires some ancestor in the span's lineage to carry the
// given name. Calling it again replaces the required name.
func (m *Matcher) SetParentName(name string) {
	m.parentName = name
	m.hasParent = true
}

// AddFieldExists requires a field with the given name to be present.
func (m *Matcher) AddFieldExists(name string) {
	m.fields = append(m.fields, name)
}

// Matches reports whether the span satisfies every configured criterion.
func (m *Matcher) Matches(s spans.Span) bool {
	if m.hasName && s.Name() != m.name {
		return false
	}

	if m.hasTarget && s.Target() != m.target {
		return false
	}

	if m.hasParent {
		found := false
		for parent := s.Parent(); parent != nil; parent = parent.Parent() {
			if parent.Name() == m.parentName {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	for _, field := range m.fields {
		if !s.HasField(field) {
			return false
		}
	}

	return true
}

// Key returns a canonical encoding of the matcher's structure. Two matchers
// built with identical criteria produce identical keys, which is what the
// registry dedups on. The field list keeps insertion order.
func (m *Matcher) Key() string {
	var b strings.Builder
	if m.hasName {
		fmt.Fprintf(&b, "name=%q;", m.name)
	}
	if m.hasTarget {
		fmt.Fprintf(&b, "target=%q;", m.target)
	}
	if m.hasParent {
		fmt.Fprintf(&b, "parent=%q;", m.parentName)
	}
	for _, field := range m.fields {
		fmt.Fprintf(&b, "field=%q;", field)
	}
	return b.String()
}

// String renders the matcher for reports and metric labels.
func (m *Matcher) String() string {
	var parts []string
	if m.hasName {
		parts = append(parts, fmt.Sprintf("name=%q", m.name))
	}
	if m.hasTarget {
		parts = append(parts, fmt.Sprintf("target=%q", m.target))
	}
	if m.hasParent {
		parts = append(parts, fmt.Sprintf("parent=%q", m.parentName))
	}
	if len(m.fields) > 0 {
		parts = append(parts, fmt.Sprintf("fields=[%s]", strings.Join(m.fields, ",")))
	}
	if len(parts) == 0 {
		return "any span"
	}
	return strings.Join(parts, " ")
}
