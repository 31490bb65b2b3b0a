package attachments

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/attachkeeper/internal/common"
	"github.com/google/uuid"
)

// InMemoryRepository keeps attachments in process memory.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items []Attachment
	byKey map[string]int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byKey: make(map[string]int)}
}

func (r *InMemoryRepository) Create(ctx context.Context, a Attachment) (Attachment, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i, ok := r.byKey[a.ObjectKey]; ok {
		existing := r.items[i]
		if existing.CustomerRef != a.CustomerRef {
			return Attachment{}, false, common.ErrorAlreadyExists
		}
		return existing, false, nil
	}

	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()
	r.byKey[a.ObjectKey] = len(r.items)
	r.items = append(r.items, a)
	return a, true, nil
}

func (r *InMemoryRepository) ListByCustomer(ctx context.Context, customerRef string) ([]Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Attachment{}
	for _, a := range r.items {
		if a.CustomerRef == customerRef {
			out = append(out, a)
		}
	}
	return out, nil
}
