package spanassert

import (
	"fmt"

	"github.com/aretw0/spanassert/pkg/spans"
)

type compareOp int

const (
	opNonZero compareOp = iota
	opZero
	opExactly
	opAtLeast
)

// criterion is one pass/fail check over a single lifecycle counter.
type criterion struct {
	transition spans.Transition
	op         compareOp
	n          uint64
}

func (c criterion) met(actual uint64) bool {
	switch c.op {
	case opNonZero:
		return actual != 0
	case opZero:
		return actual == 0
	case opExactly:
		return actual == c.n
	case opAtLeast:
		return actual >= c.n
	}
	return false
}

// expected renders the comparison side of the criterion, e.g. "== 2".
func (c criterion) expected() string {
	switch c.op {
	case opNonZero:
		return "!= 0"
	case opZero:
		return "== 0"
	case opExactly:
		return fmt.Sprintf("== %d", c.n)
	case opAtLeast:
		return fmt.Sprintf(">= %d", c.n)
	}
	return "?"
}

func (c criterion) String() string {
	return fmt.Sprintf("%s count %s", c.transition, c.expected())
}

// CriterionError reports the first assertion criterion that was not met,
// carrying the expected comparison and the observed count.
type CriterionError struct {
	Matcher   string
	Criterion string
	Expected  string
	Actual    uint64
}

func (e *CriterionError) Error() string {
	return fmt.Sprintf("span assertion %s: criterion %q not met: expected %s, got %d",
		e.Matcher, e.Criterion, e.Expected, e.Actual)
}
