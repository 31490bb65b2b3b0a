package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/attachkeeper/internal/client/client"
	"github.com/dmitrijs2005/attachkeeper/internal/client/models"
	"github.com/dmitrijs2005/attachkeeper/internal/client/preprocess"
	"github.com/dmitrijs2005/attachkeeper/internal/client/registry"
	"github.com/dmitrijs2005/attachkeeper/internal/logging"
)

// Preprocessor prepares dropped files; deliver is called once per index.
type Preprocessor interface {
	Run(ctx context.Context, files []models.File, deliver func(index int, r preprocess.Result))
}

// ObjectStore transfers a file using a presigned credential.
type ObjectStore interface {
	Upload(ctx context.Context, f models.File, cred models.Credential) error
}

// batch tracks the preprocessing of one AddAttachments call. ready[i] is
// closed once the payload of attachment i is final.
type batch struct {
	generation uint64
	ready      []chan struct{}
}

// UploadService drives every attachment of the current batch through
// credential request, object store upload and reconciliation. Each
// attachment runs in its own goroutine; failures are contained to it.
type UploadService struct {
	client       client.Client
	store        ObjectStore
	preprocessor Preprocessor
	registry     *registry.Registry
	reconciler   *Reconciler
	logger       logging.Logger
	teardown     func()
	observers    []registry.Observer

	batch     atomic.Pointer[batch]
	pipelines sync.WaitGroup

	destroyOnce sync.Once
	done        chan struct{}
}

type Option func(*UploadService)

func WithPreprocessor(p Preprocessor) Option {
	return func(s *UploadService) { s.preprocessor = p }
}

func WithLogger(l logging.Logger) Option {
	return func(s *UploadService) { s.logger = l }
}

// WithTeardown sets the callback fired once, either on Destroy or when every
// attachment is stored.
func WithTeardown(fn func()) Option {
	return func(s *UploadService) { s.teardown = fn }
}

// WithObserver receives every registry snapshot, e.g. to redraw a table.
func WithObserver(o registry.Observer) Option {
	return func(s *UploadService) { s.observers = append(s.observers, o) }
}

func NewUploadService(c client.Client, store ObjectStore, customerRef string, opts ...Option) *UploadService {
	s := &UploadService{
		client: c,
		store:  store,
		logger: logging.Nop(),
		done:   make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}

	regOpts := make([]registry.Option, 0, len(s.observers))
	for _, o := range s.observers {
		regOpts = append(regOpts, registry.WithObserver(o))
	}
	s.registry = registry.New(regOpts...)
	s.reconciler = NewReconciler(c, customerRef, s.registry, s.logger)
	return s
}

// AddAttachments replaces the current batch with files, in input order, and
// starts preprocessing them in the background.
func (s *UploadService) AddAttachments(ctx context.Context, files []models.File) *registry.Snapshot {
	snap := s.registry.Replace(files)

	b := &batch{generation: snap.Generation, ready: make([]chan struct{}, len(files))}
	for i := range b.ready {
		b.ready[i] = make(chan struct{})
	}
	s.batch.Store(b)

	s.logger.Info(ctx, "attachments added", "batch", b.generation, "count", len(files))

	if s.preprocessor == nil {
		for _, ch := range b.ready {
			close(ch)
		}
		return snap
	}

	s.pipelines.Add(1)
	go func() {
		defer s.pipelines.Done()
		s.preprocessor.Run(ctx, files, func(index int, r preprocess.Result) {
			defer close(b.ready[index])
			if !r.Resized {
				return
			}
			_, ok := s.registry.Update(b.generation, index, func(a *models.Attachment) bool {
				if a.Resized || a.Attempts > 0 {
					return false
				}
				a.File = r.File
				a.Resized = true
				return true
			})
			if ok {
				s.logger.Debug(ctx, "attachment resized", "batch", b.generation, "attachment_index", index, "size", r.File.Size())
			}
		})
	}()

	return snap
}

// UploadAttachments starts a pipeline for every attachment that is neither
// in progress nor stored and returns how many were started. Attachments are
// marked in progress before this returns, so repeated calls never start a
// second pipeline for the same attachment.
func (s *UploadService) UploadAttachments(ctx context.Context) int {
	if s.Destroyed() {
		return 0
	}

	b := s.batch.Load()
	if b == nil {
		return 0
	}

	launched := 0
	for _, a := range s.registry.Current().Attachments {
		if !a.Eligible() {
			continue
		}
		_, ok := s.registry.Update(b.generation, a.Index, func(x *models.Attachment) bool {
			if !x.Eligible() {
				return false
			}
			x.UploadInProgress = true
			x.LastError = ""
			return true
		})
		if !ok {
			continue
		}

		launched++
		s.pipelines.Add(1)
		go s.run(ctx, b, a.Index)
	}
	return launched
}

func (s *UploadService) run(ctx context.Context, b *batch, index int) {
	defer s.pipelines.Done()

	gen := b.generation
	log := s.logger.With("batch", gen, "attachment_index", index)

	select {
	case <-b.ready[index]:
	case <-ctx.Done():
		s.fail(ctx, log, gen, index, "preprocess", ctx.Err())
		return
	}
	if err := ctx.Err(); err != nil {
		s.fail(ctx, log, gen, index, "preprocess", err)
		return
	}

	a, ok := s.registry.Update(gen, index, func(x *models.Attachment) bool {
		x.Attempts++
		return true
	})
	if !ok {
		log.Debug(ctx, "attachment dropped before upload", "error", ErrBatchReplaced)
		return
	}

	cred, err := s.client.GetSignedURL(ctx)
	if err != nil {
		s.fail(ctx, log, gen, index, "credential", err)
		return
	}

	key, ok := cred.ObjectKey()
	if !ok {
		s.fail(ctx, log, gen, index, "credential", ErrMissingObjectKey)
		return
	}

	if err := s.store.Upload(ctx, a.File, *cred); err != nil {
		s.fail(ctx, log, gen, index, "upload", err)
		return
	}

	// The key comes from the credential, never from the store's reply.
	stored, ok := s.registry.Update(gen, index, func(x *models.Attachment) bool {
		x.ObjectKey = key
		x.StoredRemotely = true
		x.UploadInProgress = false
		x.LastError = ""
		return true
	})
	if !ok {
		log.Warn(ctx, "upload finished after its batch was dropped", "object_key", key, "error", ErrBatchReplaced)
		return
	}
	log.Info(ctx, "attachment stored", "object_key", key, "file", stored.File.Name)

	s.reconciler.Persist(ctx, gen, stored)
	s.destroyIfAllStored(ctx, gen)
}

func (s *UploadService) fail(ctx context.Context, log logging.Logger, gen uint64, index int, step string, err error) {
	err = fmt.Errorf("%s: %w", step, err)
	s.registry.Update(gen, index, func(x *models.Attachment) bool {
		x.UploadInProgress = false
		x.LastError = err.Error()
		return true
	})
	log.Warn(ctx, "attachment upload failed", "step", step, "error", err)
}

func (s *UploadService) destroyIfAllStored(ctx context.Context, gen uint64) {
	snap := s.registry.Current()
	if snap.Generation != gen || !registry.AllStored(snap) {
		return
	}
	s.logger.Info(ctx, "all attachments stored", "batch", gen, "count", snap.Len())
	s.Destroy()
}

// Destroy fires the teardown callback. Only the first call has an effect.
// In-flight pipelines are not cancelled.
func (s *UploadService) Destroy() {
	s.destroyOnce.Do(func() {
		close(s.done)
		if s.teardown != nil {
			s.teardown()
		}
	})
}

// Done is closed once the service has been torn down.
func (s *UploadService) Done() <-chan struct{} {
	return s.done
}

func (s *UploadService) Destroyed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Snapshot returns the current batch.
func (s *UploadService) Snapshot() *registry.Snapshot {
	return s.registry.Current()
}

// Wait blocks until preprocessing, every started pipeline and every
// reconciliation call have finished. It must not run concurrently with
// AddAttachments or UploadAttachments.
func (s *UploadService) Wait() {
	s.pipelines.Wait()
	s.reconciler.Wait()
}
