package spans

// Record is a concrete Span backed by plain values. Adapters that reconstruct
// spans from serialized events (the replayer, the Redis bridge) build Records,
// and tests use them as hand-rolled fixtures.
type Record struct {
	name   string
	target string
	fields map[string]struct{}
	parent *Record
}

// RecordOption configures a Record at construction time.
type RecordOption func(*Record)

// WithTarget sets the record's target.
func WithTarget(target string) RecordOption {
	return func(r *Record) {
		r.target = target
	}
}

// WithFields declares the field names present on the record.
func WithFields(names ...string) RecordOption {
	return func(r *Record) {
		for _, name := range names {
			r.fields[name] = struct{}{}
		}
	}
}

// WithParent links the record under an existing parent record.
func WithParent(parent *Record) RecordOption {
	return func(r *Record) {
		r.parent = parent
	}
}

// NewRecord creates an immutable span record with the given name.
func NewRecord(name string, opts ...RecordOption) *Record {
	r := &Record{
		name:   name,
		fields: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the record's name.
func (r *Record) Name() string { return r.name }

// Target returns the record's target.
func (r *Record) Target() string { return r.target }

// HasField reports whether the named field is present.
func (r *Record) HasField(name string) bool {
	_, ok := r.fields[name]
	return ok
}

// Parent returns the parent span, or nil at the root.
func (r *Record) Parent() Span {
	if r.parent == nil {
		return nil
	}
	return r.parent
}
