package tui_test

import (
	"errors"
	"testing"

	"github.com/aretw0/spanassert/internal/presentation/tui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() []tui.Result {
	return []tui.Result{
		{Name: "checkout-lifecycle", Matcher: `name="checkout"`},
		{Name: "no-refunds", Matcher: `name="refund"`, Err: errors.New("expected == 0, got 2")},
	}
}

func TestSummary(t *testing.T) {
	passed, failed := tui.Summary(sampleResults())
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, failed)
}

func TestReport(t *testing.T) {
	out := tui.Report(sampleResults())

	assert.Contains(t, out, "checkout-lifecycle")
	assert.Contains(t, out, "no-refunds")
	assert.Contains(t, out, "expected == 0, got 2")
	assert.Contains(t, out, "1 passed")
	assert.Contains(t, out, "1 failed")
}

func TestReport_AllPassedOmitsFailureCount(t *testing.T) {
	out := tui.Report([]tui.Result{{Name: "only", Matcher: "any span"}})
	assert.Contains(t, out, "1 passed")
	assert.NotContains(t, out, "failed")
}

func TestMarkdownReport(t *testing.T) {
	out, err := tui.MarkdownReport(sampleResults())
	require.NoError(t, err)

	assert.Contains(t, out, "checkout-lifecycle")
	assert.Contains(t, out, "no-refunds")
}
