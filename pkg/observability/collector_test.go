package observability_test

import (
	"strings"
	"testing"

	spanassert "github.com/aretw0/spanassert"
	"github.com/aretw0/spanassert/pkg/observability"
	"github.com/aretw0/spanassert/pkg/spans"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector_Collect(t *testing.T) {
	registry := spanassert.New()

	a := registry.Build().WithName("checkout").WasCreated().Finalize()
	defer a.Close()

	span := spans.NewRecord("checkout")
	registry.OnSpanCreated(span)
	registry.OnSpanCreated(span)
	registry.OnSpanClosed(span)

	collector := observability.NewCollector(registry)

	expected := `
# HELP spanassert_spans_closed_total Number of closed transitions observed per matcher.
# TYPE spanassert_spans_closed_total counter
spanassert_spans_closed_total{matcher="name=\"checkout\""} 1
# HELP spanassert_spans_created_total Number of created transitions observed per matcher.
# TYPE spanassert_spans_created_total counter
spanassert_spans_created_total{matcher="name=\"checkout\""} 2
`
	err := testutil.CollectAndCompare(collector, strings.NewReader(expected),
		"spanassert_spans_created_total", "spanassert_spans_closed_total")
	require.NoError(t, err)
}

func TestCollector_EmptyRegistry(t *testing.T) {
	collector := observability.NewCollector(spanassert.New())
	require.Zero(t, testutil.CollectAndCount(collector))
}

func TestCollector_Lintable(t *testing.T) {
	registry := spanassert.New()
	a := registry.Build().WithName("checkout").WasCreated().Finalize()
	defer a.Close()

	problems, err := testutil.CollectAndLint(observability.NewCollector(registry))
	require.NoError(t, err)
	require.Empty(t, problems)
}
