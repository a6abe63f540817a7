package spanassert_test

import (
	"testing"

	spanassert "github.com/aretw0/spanassert"
	"github.com/aretw0/spanassert/pkg/spans"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_MatcherRefinementAfterCriteria(t *testing.T) {
	registry := spanassert.New()

	// Matcher setters stay available in the constrained stage.
	a := registry.Build().
		WithName("checkout").
		WasCreated().
		WithTarget("shop/payment").
		WithParentName("request").
		WithSpanField("amount").
		Finalize()
	defer a.Close()

	root := spans.NewRecord("request")
	match := spans.NewRecord("checkout",
		spans.WithTarget("shop/payment"),
		spans.WithFields("amount"),
		spans.WithParent(root),
	)
	nearMiss := spans.NewRecord("checkout",
		spans.WithTarget("shop/payment"),
		spans.WithParent(root),
	)

	registry.OnSpanCreated(nearMiss)
	assert.False(t, a.TryAssert(), "span without the amount field must not count")

	registry.OnSpanCreated(match)
	assert.True(t, a.TryAssert())
}

func TestBuilder_CriteriaAccumulate(t *testing.T) {
	registry := spanassert.New()

	a := registry.Build().
		WithName("checkout").
		WasCreated().
		WasEntered().
		WasNotClosed().
		Finalize()
	defer a.Close()

	span := spans.NewRecord("checkout")
	registry.OnSpanCreated(span)
	assert.False(t, a.TryAssert(), "entered criterion still unmet")

	registry.OnSpanEntered(span)
	assert.True(t, a.TryAssert())

	registry.OnSpanClosed(span)
	assert.False(t, a.TryAssert(), "closed breaks the negative criterion")
}

func TestBuilder_TargetOnlyMatcher(t *testing.T) {
	registry := spanassert.New()

	a := registry.Build().
		WithTarget("shop/payment").
		WasCreatedExactly(2).
		Finalize()
	defer a.Close()

	registry.OnSpanCreated(spans.NewRecord("checkout", spans.WithTarget("shop/payment")))
	registry.OnSpanCreated(spans.NewRecord("refund", spans.WithTarget("shop/payment")))
	registry.OnSpanCreated(spans.NewRecord("checkout", spans.WithTarget("shop/cart")))

	assert.True(t, a.TryAssert(), "target matcher counts every span under the target")
}

func TestBuilder_FieldOrderDistinguishesMatchers(t *testing.T) {
	registry := spanassert.New()

	ab := registry.Build().WithName("checkout").
		WithSpanField("a").WithSpanField("b").
		WasCreated().Finalize()
	defer ab.Close()

	ba := registry.Build().WithName("checkout").
		WithSpanField("b").WithSpanField("a").
		WasCreated().Finalize()
	defer ba.Close()

	assert.Equal(t, 2, registry.Len(), "field insertion order is part of the matcher structure")
}

func TestAssertion_EvaluateReportsExpectedAndActual(t *testing.T) {
	registry := spanassert.New()

	a := registry.Build().
		WithName("checkout").
		WasCreatedExactly(2).
		Finalize()
	defer a.Close()

	registry.OnSpanCreated(spans.NewRecord("checkout"))

	err := a.Evaluate()
	require.Error(t, err)

	var cerr *spanassert.CriterionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, `name="checkout"`, cerr.Matcher)
	assert.Equal(t, "created count == 2", cerr.Criterion)
	assert.Equal(t, "== 2", cerr.Expected)
	assert.Equal(t, uint64(1), cerr.Actual)
	assert.Contains(t, err.Error(), "expected == 2, got 1")
}

func TestAssertion_MatcherDescription(t *testing.T) {
	registry := spanassert.New()

	a := registry.Build().
		WithName("checkout").
		WithTarget("shop").
		WasCreated().
		Finalize()
	defer a.Close()

	assert.Equal(t, `name="checkout" target="shop"`, a.Matcher())
}
