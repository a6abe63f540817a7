package spanassert

import (
	"github.com/aretw0/spanassert/internal/registry"
	"github.com/aretw0/spanassert/pkg/spans"
)

// Registry creates assertions and routes span lifecycle events to them. It is
// a small value wrapping shared state: copy it freely between test setup and
// the event-source wiring, all copies observe the same entries.
type Registry struct {
	state *registry.Registry
}

// New creates an empty assertion registry.
func New() *Registry {
	return &Registry{state: registry.New()}
}

// Build starts a new assertion. The returned builder must be given a matcher
// constraint before any behavioral criteria, and at least one behavioral
// criterion before it can be finalized; the stage types enforce that order.
func (r *Registry) Build() *Builder {
	return &Builder{core: &builderCore{
		state:   r.state,
		matcher: &registry.Matcher{},
	}}
}

// OnSpanCreated routes a created transition to every matching assertion.
func (r *Registry) OnSpanCreated(s spans.Span) {
	r.state.Dispatch(s, spans.TransitionCreated)
}

// OnSpanEntered routes an entered transition to every matching assertion.
func (r *Registry) OnSpanEntered(s spans.Span) {
	r.state.Dispatch(s, spans.TransitionEntered)
}

// OnSpanExited routes an exited transition to every matching assertion.
func (r *Registry) OnSpanExited(s spans.Span) {
	r.state.Dispatch(s, spans.TransitionExited)
}

// OnSpanClosed routes a closed transition to every matching assertion.
func (r *Registry) OnSpanClosed(s spans.Span) {
	r.state.Dispatch(s, spans.TransitionClosed)
}

// Dispatch routes an arbitrary transition. Unknown transitions are ignored.
func (r *Registry) Dispatch(s spans.Span, t spans.Transition) {
	if !t.Valid() {
		return
	}
	r.state.Dispatch(s, t)
}

// Len returns the number of distinct matchers currently registered.
func (r *Registry) Len() int {
	return r.state.Len()
}

// EntrySnapshot is a point-in-time view of one matcher's accumulated counts.
type EntrySnapshot struct {
	Matcher string `json:"matcher"`
	Created uint64 `json:"created"`
	Entered uint64 `json:"entered"`
	Exited  uint64 `json:"exited"`
	Closed  uint64 `json:"closed"`
}

// Snapshot captures the current counts of every registered matcher, sorted by
// matcher description. It is read-only and safe to call while events are being
// dispatched.
func (r *Registry) Snapshot() []EntrySnapshot {
	internal := r.state.Snapshot()
	snaps := make([]EntrySnapshot, len(internal))
	for i, s := range internal {
		snaps[i] = EntrySnapshot{
			Matcher: s.Matcher,
			Created: s.Created,
			Entered: s.Entered,
			Exited:  s.Exited,
			Closed:  s.Closed,
		}
	}
	return snaps
}
