package spanassert

import (
	"sync"

	"github.com/aretw0/spanassert/internal/registry"
)

// TB is the subset of testing.TB that Assert needs. Using an interface keeps
// the library out of the testing package's import graph and lets callers pass
// their own failure sink.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// Assertion is a finalized, live set of criteria bound to one matcher's
// counters. It is created only through ConstrainedBuilder.Finalize.
//
// Assertions sharing a structurally equal matcher observe the same counts.
type Assertion struct {
	state     *registry.Registry
	matcher   *registry.Matcher
	entry     *registry.EntryState
	criteria  []criterion
	closeOnce sync.Once
}

// Evaluate checks every criterion against the current counts and returns a
// *CriterionError for the first one not met, or nil when all pass. It never
// mutates the counters, so it is safe to call repeatedly and concurrently
// with event dispatch.
func (a *Assertion) Evaluate() error {
	for _, c := range a.criteria {
		actual := a.entry.Num(c.transition)
		if !c.met(actual) {
			return &CriterionError{
				Matcher:   a.matcher.String(),
				Criterion: c.String(),
				Expected:  c.expected(),
				Actual:    actual,
			}
		}
	}
	return nil
}

// TryAssert reports whether every criterion is currently met. It is the
// non-fatal variant of Assert, intended for polling loops; retry and timeout
// policy belong to the caller.
func (a *Assertion) TryAssert() bool {
	return a.Evaluate() == nil
}

// Assert fails the test fatally on the first unmet criterion, reporting the
// criterion along with the expected and observed counts. It returns normally
// when every criterion is met.
func (a *Assertion) Assert(t TB) {
	t.Helper()
	if err := a.Evaluate(); err != nil {
		t.Fatalf("%v", err)
	}
}

// Matcher returns a description of the matcher this assertion is bound to.
func (a *Assertion) Matcher() string {
	return a.matcher.String()
}

// Close releases this assertion's reference on its registry entry. Once the
// last assertion for a matcher is closed the entry is dropped, and a later
// build for the same matcher starts counting from zero. Close is idempotent
// and never fails; the error return exists for io.Closer-style defers.
func (a *Assertion) Close() error {
	a.closeOnce.Do(func() {
		a.state.RemoveEntry(a.matcher)
	})
	return nil
}
