/*
Package spans defines the read-only view of an instrumentation span that the
assertion registry consumes, along with the lifecycle transitions it tracks.

The harness never produces spans itself. Whatever framework instruments the
application under test (an OpenTelemetry SDK, a replayed event log, a Redis
bridge from another process) adapts its records to the Span interface and feeds
them through the registry hooks.
*/
package spans
