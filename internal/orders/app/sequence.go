package app

import (
	"fmt"
	"sync/atomic"
	"time"
)

// EpochSequence issues order numbers of the form
// ORD-{epochMillis}-{sequence}. All numbers of one Batch share a
// creation timestamp; the sequence is a process-wide atomic counter,
// so concurrent checkouts cannot collide within a process.
type EpochSequence struct {
	counter atomic.Uint64
	now     func() time.Time
}

// NewEpochSequence returns the default ports.NumberSequence.
func NewEpochSequence() *EpochSequence {
	return &EpochSequence{now: time.Now}
}

func (s *EpochSequence) Batch(n int) []string {
	ts := s.now().UnixMilli()
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("ORD-%d-%d", ts, s.counter.Add(1))
	}
	return out
}
