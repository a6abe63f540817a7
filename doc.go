/*
Package spanassert lets test code declare expectations about span lifecycle
events (created, entered, exited, closed) emitted by an application under test,
and verify them after the fact.

It is a harness, not a tracer: an external event source feeds read-only span
views through the registry hooks, the registry accumulates per-matcher counts,
and finalized assertions check those counts against their criteria.

# Usage

Create a shared registry, wire it to the event source, and build assertions
through the staged builder. The builder only exposes Finalize once a matcher
and at least one criterion are present, so a half-built assertion cannot be
evaluated.

	registry := spanassert.New()

	assertion := registry.Build().
		WithName("checkout").
		WithTarget("shop/payment").
		WasCreatedExactly(2).
		WasClosed().
		Finalize()
	defer assertion.Close()

	// ... exercise the application; the event source invokes
	// registry.OnSpanCreated / OnSpanEntered / OnSpanExited / OnSpanClosed ...

	assertion.Assert(t) // fatal on the first unmet criterion

TryAssert is the non-fatal variant, safe to call in a polling loop:

	require.Eventually(t, assertion.TryAssert, time.Second, 10*time.Millisecond)

# Event sources

Anything that can produce spans.Span views works as a source. The repository
ships three adapters: a JSONL event-log replayer (internal/adapters/replay,
also behind the spanassert CLI), a Redis bridge for processes under test that
run out-of-process (internal/adapters/redis), and an OpenTelemetry span
processor (internal/adapters/otelspan).
*/
package spanassert
