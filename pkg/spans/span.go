package spans

// Transition identifies one of the four lifecycle moments of a span.
type Transition string

const (
	TransitionCreated Transition = "created"
	TransitionEntered Transition = "entered"
	TransitionExited  Transition = "exited"
	TransitionClosed  Transition = "closed"
)

// Transitions lists all lifecycle transitions in their natural order.
var Transitions = []Transition{
	TransitionCreated,
	TransitionEntered,
	TransitionExited,
	TransitionClosed,
}

// Valid reports whether t is one of the four known transitions.
func (t Transition) Valid() bool {
	switch t {
	case TransitionCreated, TransitionEntered, TransitionExited, TransitionClosed:
		return true
	}
	return false
}

// Span is the read-only view of one instrumentation record.
//
// Implementations must be safe for concurrent reads; the registry may inspect
// a span from the dispatching goroutine while test code asserts from another.
type Span interface {
	// Name returns the span's name.
	Name() string

	// Target returns the span's target (the module or category that declared
	// it, in tracing parlance).
	Target() string

	// HasField reports whether a field with the given name is present on the
	// span. Only presence is observable, never the value.
	HasField(name string) bool

	// Parent returns the immediate ancestor span, or nil at the root.
	Parent() Span
}
