package quotes

import "sync/atomic"

// Sequence hands out the ids of jittered quote views.
// It lives for the process only and is never persisted.
type Sequence struct {
	last atomic.Uint64
}

// NewSequence creates a sequence whose first Next returns start+1.
func NewSequence(start uint64) *Sequence {
	s := &Sequence{}
	s.last.Store(start)
	return s
}

// Next returns the next id. Safe for concurrent use; ids are unique and gapless.
func (s *Sequence) Next() uint64 {
	return s.last.Add(1)
}

// Current returns the last issued id, 0 before the first call.
func (s *Sequence) Current() uint64 {
	return s.last.Load()
}
