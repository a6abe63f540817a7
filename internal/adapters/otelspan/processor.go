// Package otelspan feeds OpenTelemetry SDK spans into an assertion registry.
//
// OpenTelemetry spans have no enter/exit notion, so only created and closed
// transitions are emitted: OnStart maps to created, OnEnd to closed. The
// span's instrumentation scope name stands in as the target, and attribute
// keys present at start time become the span's field set.
package otelspan

import (
	"context"
	"sync"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	spanassert "github.com/aretw0/spanassert"
	"github.com/aretw0/spanassert/pkg/spans"
)

// Processor is a sdktrace.SpanProcessor that mirrors span starts and ends
// into the assertion registry. Register it on a TracerProvider with
// sdktrace.WithSpanProcessor.
type Processor struct {
	registry *spanassert.Registry

	mu   sync.Mutex
	live map[trace.SpanID]*spans.Record
}

var _ sdktrace.SpanProcessor = (*Processor)(nil)

// NewProcessor creates a processor dispatching into the given registry.
func NewProcessor(registry *spanassert.Registry) *Processor {
	return &Processor{
		registry: registry,
		live:     make(map[trace.SpanID]*spans.Record),
	}
}

// OnStart implements sdktrace.SpanProcessor.
func (p *Processor) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	opts := []spans.RecordOption{
		spans.WithTarget(s.InstrumentationScope().Name),
	}
	for _, kv := range s.Attributes() {
		opts = append(opts, spans.WithFields(string(kv.Key)))
	}

	p.mu.Lock()
	if parentID := s.Parent().SpanID(); parentID.IsValid() {
		if parentRecord, ok := p.live[parentID]; ok {
			opts = append(opts, spans.WithParent(parentRecord))
		}
	}
	record := spans.NewRecord(s.Name(), opts...)
	p.live[s.SpanContext().SpanID()] = record
	p.mu.Unlock()

	p.registry.OnSpanCreated(record)
}

// OnEnd implements sdktrace.SpanProcessor.
func (p *Processor) OnEnd(s sdktrace.ReadOnlySpan) {
	id := s.SpanContext().SpanID()

	p.mu.Lock()
	record, ok := p.live[id]
	delete(p.live, id)
	p.mu.Unlock()

	if !ok {
		// Ended span that started before this processor was registered.
		return
	}
	p.registry.OnSpanClosed(record)
}

// Shutdown implements sdktrace.SpanProcessor.
func (p *Processor) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.live = make(map[trace.SpanID]*spans.Record)
	p.mu.Unlock()
	return nil
}

// ForceFlush implements sdktrace.SpanProcessor. Dispatch is synchronous, so
// there is nothing to flush.
func (p *Processor) ForceFlush(ctx context.Context) error {
	return nil
}
