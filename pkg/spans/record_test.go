package spans_test

import (
	"testing"

	"github.com/aretw0/spanassert/pkg/spans"
	"github.com/stretchr/testify/assert"
)

func TestRecord_Defaults(t *testing.T) {
	rec := spans.NewRecord("checkout")

	assert.Equal(t, "checkout", rec.Name())
	assert.Empty(t, rec.Target())
	assert.False(t, rec.HasField("amount"))
	assert.Nil(t, rec.Parent())
}

func TestRecord_Options(t *testing.T) {
	root := spans.NewRecord("request", spans.WithTarget("http"))
	rec := spans.NewRecord("checkout",
		spans.WithTarget("shop/payment"),
		spans.WithFields("amount", "currency"),
		spans.WithParent(root),
	)

	assert.Equal(t, "shop/payment", rec.Target())
	assert.True(t, rec.HasField("amount"))
	assert.True(t, rec.HasField("currency"))
	assert.False(t, rec.HasField("user"))

	parent := rec.Parent()
	if assert.NotNil(t, parent) {
		assert.Equal(t, "request", parent.Name())
		assert.Nil(t, parent.Parent())
	}
}

// Parent must be a plain nil interface at the root, not a typed nil pointer.
func TestRecord_RootParentIsNilInterface(t *testing.T) {
	rec := spans.NewRecord("root")
	if rec.Parent() != nil {
		t.Fatalf("expected nil parent, got %#v", rec.Parent())
	}
}
