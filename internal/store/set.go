package store

import (
	"github.com/target/grailed-admin/internal/domain/job"
)

// Set groups one Store per job kind together with the notifier they share.
type Set struct {
	notifier *job.ChangeNotifier
	stores   map[job.Kind]*Store
}

// NewSet builds a store for every job kind.
func NewSet() *Set {
	n := job.NewChangeNotifier()
	set := &Set{notifier: n, stores: make(map[job.Kind]*Store, len(job.Kinds()))}
	for _, k := range job.Kinds() {
		set.stores[k] = New(k, n)
	}
	return set
}

// Get returns the store for kind, or nil for an unknown kind.
func (s *Set) Get(kind job.Kind) *Store {
	return s.stores[kind]
}

// Close closes every store and releases all subscribers.
func (s *Set) Close() {
	for _, st := range s.stores {
		st.Close()
	}
	s.notifier.StopAll()
}
