package registry

import (
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/attachkeeper/internal/client/models"
)

// Snapshot is an immutable view of the batch.
type Snapshot struct {
	// Generation identifies the batch; it changes on every Replace.
	Generation uint64
	// Version increases on every published change, across batches.
	Version     uint64
	Attachments []models.Attachment
}

// Get returns the attachment at index.
func (s *Snapshot) Get(index int) (models.Attachment, bool) {
	if s == nil || index < 0 || index >= len(s.Attachments) {
		return models.Attachment{}, false
	}
	return s.Attachments[index], true
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Attachments)
}

func (s *Snapshot) clone() *Snapshot {
	next := &Snapshot{Generation: s.Generation, Version: s.Version + 1}
	next.Attachments = make([]models.Attachment, len(s.Attachments))
	copy(next.Attachments, s.Attachments)
	return next
}

// Observer is called with every published snapshot. Observers may be called
// concurrently and out of order; use Snapshot.Version to discard stale ones.
type Observer func(*Snapshot)

type Option func(*Registry)

func WithObserver(o Observer) Option {
	return func(r *Registry) { r.observers = append(r.observers, o) }
}

type Registry struct {
	current   atomic.Pointer[Snapshot]
	nextGen   atomic.Uint64
	observers []Observer

	// replaceMu only serialises Replace calls against each other.
	replaceMu sync.Mutex
}

func New(opts ...Option) *Registry {
	r := &Registry{}
	for _, o := range opts {
		o(r)
	}
	r.current.Store(&Snapshot{})
	return r
}

// Current returns the latest published snapshot.
func (r *Registry) Current() *Snapshot {
	return r.current.Load()
}

// Replace discards the current batch and registers files in input order with
// indices 0..n-1.
func (r *Registry) Replace(files []models.File) *Snapshot {
	r.replaceMu.Lock()
	defer r.replaceMu.Unlock()

	next := &Snapshot{Generation: r.nextGen.Add(1)}
	next.Attachments = make([]models.Attachment, len(files))
	for i, f := range files {
		next.Attachments[i] = models.NewAttachment(i, f)
	}

	for {
		old := r.current.Load()
		next.Version = old.Version + 1
		if r.current.CompareAndSwap(old, next) {
			r.publish(next)
			return next
		}
	}
}

// Update applies fn to a copy of the attachment at index in batch gen and
// publishes the result. fn returns false to abort without publishing. Update
// returns the applied attachment, or false when fn aborted, gen is stale, or
// index is out of range. fn may run more than once under contention, so it
// must not have side effects.
func (r *Registry) Update(gen uint64, index int, fn func(a *models.Attachment) bool) (models.Attachment, bool) {
	for {
		old := r.current.Load()
		if old.Generation != gen || index < 0 || index >= len(old.Attachments) {
			return models.Attachment{}, false
		}

		next := old.clone()
		if !fn(&next.Attachments[index]) {
			return models.Attachment{}, false
		}

		if r.current.CompareAndSwap(old, next) {
			r.publish(next)
			return next.Attachments[index], true
		}
	}
}

func (r *Registry) publish(s *Snapshot) {
	for _, o := range r.observers {
		o(s)
	}
}

// AllStored reports whether every attachment in s is stored remotely. An
// empty batch is never complete.
func AllStored(s *Snapshot) bool {
	if s.Len() == 0 {
		return false
	}
	for _, a := range s.Attachments {
		if !a.StoredRemotely {
			return false
		}
	}
	return true
}
