package cartstore

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// SyncFailure records one failed background persistence attempt. The
// in-memory cart is not rolled back; the failure sits in the log until the
// caller inspects it or the next full Load reconciles state.
type SyncFailure struct {
	Op        string
	ProductID uuid.UUID
	Time      time.Time
	Err       error
}

// SyncLog is the observable journal of persistence failures. Safe for
// concurrent use.
type SyncLog struct {
	mu      sync.Mutex
	entries []SyncFailure
}

func (l *SyncLog) record(op string, productID uuid.UUID, err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	l.entries = append(l.entries, SyncFailure{
		Op:        op,
		ProductID: productID,
		Time:      time.Now().UTC(),
		Err:       err,
	})
	l.mu.Unlock()
}

// Entries returns a copy of the recorded failures in order of occurrence.
func (l *SyncLog) Entries() []SyncFailure {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]SyncFailure, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded failures.
func (l *SyncLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Err combines every recorded failure into a single error, or nil when the
// log is empty.
func (l *SyncLog) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var combined error
	for _, entry := range l.entries {
		combined = multierr.Append(combined, entry.Err)
	}
	return combined
}

// Reset drops all recorded failures.
func (l *SyncLog) Reset() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}
