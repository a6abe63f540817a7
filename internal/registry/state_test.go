package registry_test

import (
	"sync"
	"testing"

	"github.com/aretw0/spanassert/internal/registry"
	"github.com/aretw0/spanassert/pkg/spans"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedMatcher(name string) *registry.Matcher {
	m := &registry.Matcher{}
	m.SetName(name)
	return m
}

func TestEntryState_TrackAndNum(t *testing.T) {
	e := &registry.EntryState{}

	e.TrackCreated()
	e.TrackCreated()
	e.TrackEntered()
	e.TrackExited()
	e.TrackClosed()

	assert.Equal(t, uint64(2), e.NumCreated())
	assert.Equal(t, uint64(1), e.NumEntered())
	assert.Equal(t, uint64(1), e.NumExited())
	assert.Equal(t, uint64(1), e.NumClosed())

	for _, tr := range spans.Transitions {
		e.Track(tr)
	}
	assert.Equal(t, uint64(3), e.Num(spans.TransitionCreated))
	assert.Equal(t, uint64(2), e.Num(spans.TransitionEntered))
	assert.Equal(t, uint64(2), e.Num(spans.TransitionExited))
	assert.Equal(t, uint64(2), e.Num(spans.TransitionClosed))
}

func TestEntryState_ConcurrentIncrements(t *testing.T) {
	const workers = 16
	const perWorker = 1000

	e := &registry.EntryState{}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				e.TrackCreated()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(workers*perWorker), e.NumCreated())
}

func TestRegistry_CreateEntryDedup(t *testing.T) {
	r := registry.New()

	first := r.CreateEntry(namedMatcher("checkout"))
	second := r.CreateEntry(namedMatcher("checkout"))

	require.Same(t, first, second, "structurally equal matchers share counters")
	assert.Equal(t, 1, r.Len())

	other := r.CreateEntry(namedMatcher("refund"))
	require.NotSame(t, first, other)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_ConcurrentCreateEntry(t *testing.T) {
	const workers = 16

	r := registry.New()

	states := make([]*registry.EntryState, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			states[i] = r.CreateEntry(namedMatcher("checkout"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, r.Len(), "no duplicate entries under contention")
	for i := 1; i < workers; i++ {
		require.Same(t, states[0], states[i])
	}
}

func TestRegistry_DispatchHitsEveryMatch(t *testing.T) {
	r := registry.New()

	byName := r.CreateEntry(namedMatcher("checkout"))

	byTarget := &registry.Matcher{}
	byTarget.SetTarget("shop/payment")
	byTargetState := r.CreateEntry(byTarget)

	unrelated := r.CreateEntry(namedMatcher("refund"))

	span := spans.NewRecord("checkout", spans.WithTarget("shop/payment"))
	r.Dispatch(span, spans.TransitionCreated)
	r.Dispatch(span, spans.TransitionEntered)

	assert.Equal(t, uint64(1), byName.NumCreated())
	assert.Equal(t, uint64(1), byName.NumEntered())
	assert.Equal(t, uint64(1), byTargetState.NumCreated())
	assert.Equal(t, uint64(1), byTargetState.NumEntered())
	assert.Zero(t, unrelated.NumCreated(), "non-matching entry untouched")
	assert.Zero(t, unrelated.NumEntered())
}

func TestRegistry_ConcurrentDispatch(t *testing.T) {
	const workers = 8
	const perWorker = 500

	r := registry.New()
	state := r.CreateEntry(namedMatcher("checkout"))
	span := spans.NewRecord("checkout")

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				r.Dispatch(span, spans.TransitionCreated)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(workers*perWorker), state.NumCreated())
}

func TestRegistry_RemoveEntry(t *testing.T) {
	r := registry.New()

	state := r.CreateEntry(namedMatcher("checkout"))
	r.Dispatch(spans.NewRecord("checkout"), spans.TransitionCreated)
	require.Equal(t, uint64(1), state.NumCreated())

	r.RemoveEntry(namedMatcher("checkout"))
	assert.Equal(t, 0, r.Len())

	// The held state keeps working after removal.
	assert.Equal(t, uint64(1), state.NumCreated())

	// A rebuild for the same matcher starts from zero.
	fresh := r.CreateEntry(namedMatcher("checkout"))
	require.NotSame(t, state, fresh)
	assert.Zero(t, fresh.NumCreated())

	// Removing an unknown matcher is a no-op.
	r.RemoveEntry(namedMatcher("never-registered"))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_RemoveEntryRespectsReferences(t *testing.T) {
	r := registry.New()

	first := r.CreateEntry(namedMatcher("checkout"))
	second := r.CreateEntry(namedMatcher("checkout"))
	require.Same(t, first, second)

	// One of two handles released: entry survives.
	r.RemoveEntry(namedMatcher("checkout"))
	assert.Equal(t, 1, r.Len())
	require.Same(t, first, r.CreateEntry(namedMatcher("checkout")))
	r.RemoveEntry(namedMatcher("checkout"))

	// Last reference released: entry goes away.
	r.RemoveEntry(namedMatcher("checkout"))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_Snapshot(t *testing.T) {
	r := registry.New()

	r.CreateEntry(namedMatcher("checkout"))
	r.CreateEntry(namedMatcher("refund"))

	r.Dispatch(spans.NewRecord("checkout"), spans.TransitionCreated)
	r.Dispatch(spans.NewRecord("checkout"), spans.TransitionClosed)

	got := r.Snapshot()
	want := []registry.EntrySnapshot{
		{Matcher: `name="checkout"`, Created: 1, Closed: 1},
		{Matcher: `name="refund"`},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}
