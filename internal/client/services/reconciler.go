package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/attachkeeper/internal/client/client"
	"github.com/dmitrijs2005/attachkeeper/internal/client/models"
	"github.com/dmitrijs2005/attachkeeper/internal/client/registry"
	"github.com/dmitrijs2005/attachkeeper/internal/logging"
)

// Reconciler records stored objects against the owning customer. Calls are
// fire-and-forget: a failure is logged and noted on the attachment, but the
// attachment stays stored and teardown is not held back.
type Reconciler struct {
	client      client.Client
	customerRef string
	registry    *registry.Registry
	logger      logging.Logger
	wg          sync.WaitGroup
}

func NewReconciler(c client.Client, customerRef string, reg *registry.Registry, logger logging.Logger) *Reconciler {
	return &Reconciler{client: c, customerRef: customerRef, registry: reg, logger: logger}
}

// Persist starts recording a in the background and returns immediately.
// The call outlives cancellation of ctx.
func (r *Reconciler) Persist(ctx context.Context, generation uint64, a models.Attachment) {
	ctx = context.WithoutCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		log := r.logger.With("batch", generation, "attachment_index", a.Index)

		err := r.client.CreateAttachment(ctx, r.customerRef, a.File.Name, a.ObjectKey)
		if err != nil {
			log.Warn(ctx, "attachment stored but not recorded", "object_key", a.ObjectKey, "error", err)
		} else {
			log.Debug(ctx, "attachment recorded", "object_key", a.ObjectKey)
		}

		r.registry.Update(generation, a.Index, func(x *models.Attachment) bool {
			if x.ObjectKey != a.ObjectKey {
				return false
			}
			x.Reconciled = err == nil
			if err != nil {
				x.LastError = err.Error()
			}
			return true
		})
	}()
}

// Wait blocks until every started Persist call has finished.
func (r *Reconciler) Wait() {
	r.wg.Wait()
}
