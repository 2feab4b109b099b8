package testutil

import (
	"sync"
	"time"
)

// RecordingSleeper records requested pauses instead of sleeping.
//
// Inject its Sleep method into the sync driver to keep paginated tests fast
// while still asserting on the inter-page delay.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type RecordingSleeper struct {
	mu    sync.Mutex
	calls []time.Duration
}

// Sleep records d and returns immediately.
func (s *RecordingSleeper) Sleep(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, d)
}

// Calls returns a copy of the recorded durations in call order.
func (s *RecordingSleeper) Calls() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.calls...)
}

// Reset clears the recorded calls.
func (s *RecordingSleeper) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}
