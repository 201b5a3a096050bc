package sufsort

import "errors"

// Error kinds returned from orchestrator entry points. All are typed
// sentinels suitable for errors.Is; contextual detail (failing bucket
// index and size, recommended minimum budget) is attached via
// fmt.Errorf's %w wrapping at the call site.
var (
	// ErrInputFormat is a malformed input record, propagated from a
	// reader; it only ever surfaces at ingest.
	ErrInputFormat = errors.New("sufsort: malformed input record")

	// ErrMemoryBudget is a single bucket or sub-block exceeding the
	// configured device budget at the maximum bucketing width.
	ErrMemoryBudget = errors.New("sufsort: bucket exceeds device memory budget")

	// ErrBufferOverflow is a fixed-capacity scratch structure exceeded
	// by a correct but adversarial input; always a tuning bug, and
	// fatal.
	ErrBufferOverflow = errors.New("sufsort: scratch structure capacity exceeded")

	// ErrConstructionLimit is a DCS recursion depth exceeded during
	// sampled suffix-sort construction.
	ErrConstructionLimit = errors.New("sufsort: DCS construction exceeded recursion depth limit")

	// ErrCancelled is cooperative cancellation observed at a stage
	// boundary.
	ErrCancelled = errors.New("sufsort: cancelled")

	// ErrSink is the underlying output stream failing to accept
	// bytes.
	ErrSink = errors.New("sufsort: sink rejected output")
)
