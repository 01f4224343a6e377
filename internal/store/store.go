// Package store holds the dashboard's per-job state: the running flag, the summary counters and
// the ordered console log. Each job kind gets its own Store; a Set groups the stores that belong
// to one dashboard session.
package store

import (
	"sync"

	"github.com/target/grailed-admin/internal/domain/job"
)

// Snapshot is an immutable view of a job's state. Logs must not be modified by readers.
type Snapshot struct {
	Status  job.Status
	Logs    []job.LogEvent
	Version uint64
}

// Store owns the state of one job. All mutations derive a new Snapshot from the previous one
// and swap it in under the lock. Once closed, every mutation is ignored.
type Store struct {
	kind     job.Kind
	notifier job.Notifier

	mu     sync.RWMutex
	snap   Snapshot
	closed bool
}

// New returns a Store for kind in its initial, stopped state. notifier may be nil.
func New(kind job.Kind, notifier job.Notifier) *Store {
	return &Store{
		kind:     kind,
		notifier: notifier,
		snap:     Snapshot{Status: job.NewStatus(kind)},
	}
}

// Kind returns the job kind this store tracks.
func (s *Store) Kind() job.Kind { return s.kind }

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Active reports whether the job is currently believed to be running.
func (s *Store) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Status.Active
}

// Update applies fn to the current snapshot and publishes the result. It reports false when the
// store is closed and nothing was applied.
func (s *Store) Update(fn func(Snapshot) Snapshot) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	next := fn(s.snap)
	next.Version = s.snap.Version + 1
	s.snap = next
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.Broadcast(s.kind)
	}
	return true
}

// Append adds events to the end of the log. The backing array is shared with earlier snapshots;
// this is safe because the log only grows past their length or is replaced wholesale.
func (s *Store) Append(events ...job.LogEvent) bool {
	if len(events) == 0 {
		return false
	}
	return s.Update(func(prev Snapshot) Snapshot {
		next := prev
		next.Logs = append(prev.Logs, events...)
		return next
	})
}

// SetActive sets the running flag, optionally appending events in the same transition.
func (s *Store) SetActive(active bool, events ...job.LogEvent) bool {
	return s.Update(func(prev Snapshot) Snapshot {
		next := prev
		next.Status.Active = active
		if len(events) > 0 {
			next.Logs = append(prev.Logs, events...)
		}
		return next
	})
}

// Deactivate flips the running flag to false and reports whether it was previously true.
// The check and the flip happen atomically so concurrent callers cannot both observe true.
func (s *Store) Deactivate() bool {
	var was bool
	s.Update(func(prev Snapshot) Snapshot {
		was = prev.Status.Active
		next := prev
		next.Status.Active = false
		return next
	})
	return was
}

// ApplyCheckpoint replaces the summary fields carried by cp.
func (s *Store) ApplyCheckpoint(cp job.Checkpoint) bool {
	return s.Update(func(prev Snapshot) Snapshot {
		next := prev
		next.Status.Summary = prev.Status.Summary.Apply(cp)
		return next
	})
}

// MergeReport overlays the fields reported by a status call and appends the accompanying events.
func (s *Store) MergeReport(r job.StatusReport, events ...job.LogEvent) bool {
	return s.Update(func(prev Snapshot) Snapshot {
		next := prev
		next.Status.Summary = prev.Status.Summary.Merge(r)
		if len(events) > 0 {
			next.Logs = append(prev.Logs, events...)
		}
		return next
	})
}

// ClearLogs empties the log buffer and leaves the status untouched.
func (s *Store) ClearLogs() bool {
	return s.Update(func(prev Snapshot) Snapshot {
		next := prev
		next.Logs = nil
		return next
	})
}

// Reset returns the store to its initial state.
func (s *Store) Reset() bool {
	return s.Update(func(Snapshot) Snapshot {
		return Snapshot{Status: job.NewStatus(s.kind)}
	})
}

// Subscribe registers for change signals. The channel is closed by the returned func.
func (s *Store) Subscribe() (func(), <-chan struct{}) {
	if s.notifier == nil {
		ch := make(chan struct{})
		close(ch)
		return func() {}, ch
	}
	return s.notifier.Subscribe(s.kind)
}

// Close stops the store from accepting mutations. It is idempotent.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Closed reports whether Close has been called.
func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
