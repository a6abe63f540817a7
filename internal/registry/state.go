package registry

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/aretw0/spanassert/pkg/spans"
)

// EntryState accumulates the lifecycle counts observed for one matcher. The
// counters are independent, monotonically non-decreasing, and safe under any
// number of concurrent writers and readers.
type EntryState struct {
	created atomic.Uint64
	entered atomic.Uint64
	exited  atomic.Uint64
	closed  atomic.Uint64
}

// TrackCreated records one created transition.
func (e *EntryState) TrackCreated() { e.created.Add(1) }

// TrackEntered records one entered transition.
func (e *EntryState) TrackEntered() { e.entered.Add(1) }

// TrackExited records one exited transition.
func (e *EntryState) TrackExited() { e.exited.Add(1) }

// TrackClosed records one closed transition.
func (e *EntryState) TrackClosed() { e.closed.Add(1) }

// NumCreated returns the number of created transitions observed so far.
func (e *EntryState) NumCreated() uint64 { return e.created.Load() }

// NumEntered returns the number of entered transitions observed so far.
func (e *EntryState) NumEntered() uint64 { return e.entered.Load() }

// NumExited returns the number of exited transitions observed so far.
func (e *EntryState) NumExited() uint64 { return e.exited.Load() }

// NumClosed returns the number of closed transitions observed so far.
func (e *EntryState) NumClosed() uint64 { return e.closed.Load() }

// Track records one occurrence of the given transition.
func (e *EntryState) Track(t spans.Transition) {
	switch t {
	case spans.TransitionCreated:
		e.TrackCreated()
	case spans.TransitionEntered:
		e.TrackEntered()
	case spans.TransitionExited:
		e.TrackExited()
	case spans.TransitionClosed:
		e.TrackClosed()
	}
}

// Num returns the current count for the given transition.
func (e *EntryState) Num(t spans.Transition) uint64 {
	switch t {
	case spans.TransitionCreated:
		return e.NumCreated()
	case spans.TransitionEntered:
		return e.NumEntered()
	case spans.TransitionExited:
		return e.NumExited()
	case spans.TransitionClosed:
		return e.NumClosed()
	}
	return 0
}

// entry pairs a matcher with its counters and the number of live handles that
// still reference it. The refs guard keeps RemoveEntry from tearing down an
// entry another assertion for the same matcher still owns.
type entry struct {
	matcher *Matcher
	state   *EntryState
	refs    int
}

// Registry owns the mapping from distinct matchers to their counters.
//
// The map is the only lock-guarded resource; counters are lock-free and are
// never touched while the map lock is held during dispatch.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// CreateEntry returns the counters for the given matcher, creating a fresh
// zeroed entry if no structurally equal matcher is registered yet. Every call
// takes one reference on the entry; RemoveEntry releases it.
func (r *Registry) CreateEntry(m *Matcher) *EntryState {
	key := m.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		e = &entry{matcher: m, state: &EntryState{}}
		r.entries[key] = e
	}
	e.refs++
	return e.state
}

// RemoveEntry releases one reference on the entry for a structurally equal
// matcher, deleting the mapping once no handle references it. Removing an
// unknown matcher is a no-op. Counters already held by handles keep working;
// only a later CreateEntry for the same matcher starts from zero.
func (r *Registry) RemoveEntry(m *Matcher) {
	key := m.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(r.entries, key)
	}
}

// Dispatch routes one lifecycle transition to every entry whose matcher
// accepts the span. The map lock is held only long enough to snapshot the
// entries; matching walks ancestor chains outside it.
func (r *Registry) Dispatch(s spans.Span, t spans.Transition) {
	r.mu.Lock()
	candidates := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		candidates = append(candidates, e)
	}
	r.mu.Unlock()

	for _, e := range candidates {
		if e.matcher.Matches(s) {
			e.state.Track(t)
		}
	}
}

// Len returns the number of distinct matchers currently registered.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// EntrySnapshot is a point-in-time view of one entry's counts.
type EntrySnapshot struct {
	Matcher string `json:"matcher"`
	Created uint64 `json:"created"`
	Entered uint64 `json:"entered"`
	Exited  uint64 `json:"exited"`
	Closed  uint64 `json:"closed"`
}

// Snapshot captures the current counts of every registered entry, sorted by
// matcher description for stable output.
func (r *Registry) Snapshot() []EntrySnapshot {
	r.mu.Lock()
	candidates := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		candidates = append(candidates, e)
	}
	r.mu.Unlock()

	snaps := make([]EntrySnapshot, 0, len(candidates))
	for _, e := range candidates {
		snaps = append(snaps, EntrySnapshot{
			Matcher: e.matcher.String(),
			Created: e.state.NumCreated(),
			Entered: e.state.NumEntered(),
			Exited:  e.state.NumExited(),
			Closed:  e.state.NumClosed(),
		})
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Matcher < snaps[j].Matcher })
	return snaps
}
