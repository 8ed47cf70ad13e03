package statement

import (
	"sync"
)

// SequenceTracker hands out monotonically increasing sequence numbers per
// key (a factory/date-range scope) so that overlapping reconciliation
// requests resolve last-issued-wins. A response tagged with a stale sequence
// is discarded on arrival rather than cancelled in flight: the engine holds
// no external resources, so ignoring a stale result is free.
type SequenceTracker struct {
	mu   sync.Mutex
	seqs map[string]uint64
}

// NewSequenceTracker creates an empty tracker.
func NewSequenceTracker() *SequenceTracker {
	return &SequenceTracker{seqs: make(map[string]uint64)}
}

// Begin issues the next sequence number for the key, superseding any
// in-flight request with the same key.
func (t *SequenceTracker) Begin(key string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seqs[key]++
	return t.seqs[key]
}

// IsCurrent reports whether seq is still the most recent sequence issued for
// the key. A result carrying a stale sequence must be ignored by the caller.
func (t *SequenceTracker) IsCurrent(key string, seq uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seqs[key] == seq
}
