// Package replay feeds recorded span lifecycle events into an assertion
// registry. Events arrive as JSON lines, one lifecycle transition per line;
// the replayer rebuilds ancestor chains from span IDs so parent-name matchers
// keep working against recorded logs.
package replay

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	spanassert "github.com/aretw0/spanassert"
	"github.com/aretw0/spanassert/internal/logging"
	"github.com/aretw0/spanassert/pkg/spans"
)

// ErrUnknownSpan is returned when a transition references a span ID that was
// never created or was already closed.
var ErrUnknownSpan = errors.New("unknown span id")

// Event is one line of a span lifecycle log. Only created events carry the
// span's identity; the other transitions reference it by ID.
type Event struct {
	Type     spans.Transition `json:"type"`
	ID       string           `json:"id"`
	Name     string           `json:"name,omitempty"`
	Target   string           `json:"target,omitempty"`
	Fields   []string         `json:"fields,omitempty"`
	ParentID string           `json:"parent_id,omitempty"`
}

// Replayer applies recorded events to a registry, tracking live spans by ID
// so later transitions and child spans can resolve their records.
type Replayer struct {
	registry *spanassert.Registry
	live     map[string]*spans.Record
	logger   *slog.Logger
}

// Option configures the Replayer.
type Option func(*Replayer)

// WithLogger configures a logger for skipped or malformed events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Replayer) {
		r.logger = logger
	}
}

// New creates a replayer that dispatches into the given registry.
func New(registry *spanassert.Registry, opts ...Option) *Replayer {
	r := &Replayer{
		registry: registry,
		live:     make(map[string]*spans.Record),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Apply dispatches a single event. A created event with an unknown parent is
// treated as a root span (the parent may predate the recording); any other
// transition for an unknown ID is an error.
func (r *Replayer) Apply(ev Event) error {
	if !ev.Type.Valid() {
		return fmt.Errorf("event %q: unknown transition type %q", ev.ID, ev.Type)
	}
	if ev.ID == "" {
		return fmt.Errorf("%s event without span id", ev.Type)
	}

	if ev.Type == spans.TransitionCreated {
		opts := []spans.RecordOption{
			spans.WithTarget(ev.Target),
			spans.WithFields(ev.Fields...),
		}
		if ev.ParentID != "" {
			if parent, ok := r.live[ev.ParentID]; ok {
				opts = append(opts, spans.WithParent(parent))
			} else {
				r.logger.Warn("parent span not in log, treating as root",
					"id", ev.ID, "parent_id", ev.ParentID)
			}
		}
		record := spans.NewRecord(ev.Name, opts...)
		r.live[ev.ID] = record
		r.registry.OnSpanCreated(record)
		return nil
	}

	record, ok := r.live[ev.ID]
	if !ok {
		return fmt.Errorf("%s event %q: %w", ev.Type, ev.ID, ErrUnknownSpan)
	}
	r.registry.Dispatch(record, ev.Type)
	if ev.Type == spans.TransitionClosed {
		delete(r.live, ev.ID)
	}
	return nil
}

// Run reads JSON lines from rd until EOF or context cancellation, applying
// each event in order. Blank lines are skipped; a malformed line aborts the
// replay with the line number.
func (r *Replayer) Run(ctx context.Context, rd io.Reader) error {
	scanner := bufio.NewScanner(rd)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			return fmt.Errorf("line %d: decode event: %w", line, err)
		}
		if err := r.Apply(ev); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		r.logger.Debug("event applied", "line", line, "type", ev.Type, "id", ev.ID)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read event log: %w", err)
	}
	return nil
}

// Live returns the number of spans created but not yet closed.
func (r *Replayer) Live() int {
	return len(r.live)
}
