package replay_test

import (
	"context"
	"strings"
	"testing"

	spanassert "github.com/aretw0/spanassert"
	"github.com/aretw0/spanassert/internal/adapters/replay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayer_Run(t *testing.T) {
	registry := spanassert.New()

	checkout := registry.Build().
		WithName("checkout").
		WithParentName("request").
		WasCreated().
		WasEnteredExactly(1).
		WasClosedExactly(1).
		Finalize()
	defer checkout.Close()

	log := strings.Join([]string{
		`{"type":"created","id":"s1","name":"request","target":"http"}`,
		`{"type":"entered","id":"s1"}`,
		`{"type":"created","id":"s2","name":"checkout","target":"shop/payment","fields":["amount"],"parent_id":"s1"}`,
		`{"type":"entered","id":"s2"}`,
		`{"type":"exited","id":"s2"}`,
		`{"type":"closed","id":"s2"}`,
		``,
		`{"type":"closed","id":"s1"}`,
	}, "\n")

	r := replay.New(registry)
	require.NoError(t, r.Run(context.Background(), strings.NewReader(log)))

	assert.True(t, checkout.TryAssert())
	assert.Equal(t, 0, r.Live(), "all spans closed")
}

func TestReplayer_UnknownParentBecomesRoot(t *testing.T) {
	registry := spanassert.New()

	orphan := registry.Build().
		WithName("checkout").
		WithParentName("request").
		WasNotCreated().
		Finalize()
	defer orphan.Close()

	r := replay.New(registry)
	require.NoError(t, r.Apply(replay.Event{
		Type: "created", ID: "s9", Name: "checkout", ParentID: "missing",
	}))

	assert.True(t, orphan.TryAssert(), "orphan span has no ancestor named request")
}

func TestReplayer_Errors(t *testing.T) {
	r := replay.New(spanassert.New())

	err := r.Apply(replay.Event{Type: "entered", ID: "never-created"})
	require.ErrorIs(t, err, replay.ErrUnknownSpan)

	err = r.Apply(replay.Event{Type: "opened", ID: "s1"})
	require.ErrorContains(t, err, "unknown transition type")

	err = r.Apply(replay.Event{Type: "created"})
	require.ErrorContains(t, err, "without span id")

	err = r.Run(context.Background(), strings.NewReader("not json"))
	require.ErrorContains(t, err, "line 1")
}

func TestReplayer_ClosedSpanNoLongerDispatchable(t *testing.T) {
	registry := spanassert.New()
	r := replay.New(registry)

	require.NoError(t, r.Apply(replay.Event{Type: "created", ID: "s1", Name: "checkout"}))
	require.NoError(t, r.Apply(replay.Event{Type: "closed", ID: "s1"}))

	err := r.Apply(replay.Event{Type: "entered", ID: "s1"})
	assert.ErrorIs(t, err, replay.ErrUnknownSpan)
}

func TestReplayer_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := replay.New(spanassert.New())
	err := r.Run(ctx, strings.NewReader(`{"type":"created","id":"s1","name":"x"}`))
	assert.ErrorIs(t, err, context.Canceled)
}
