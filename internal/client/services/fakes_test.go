package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/attachkeeper/internal/client/models"
	"github.com/dmitrijs2005/attachkeeper/internal/client/preprocess"
)

var errBoom = errors.New("boom")

// fakeClient hands out credentials with keys "key-1", "key-2", ... unless
// signErr is set. gate, when not nil, blocks GetSignedURL until closed.
type fakeClient struct {
	signCalls atomic.Int32
	signErr   error
	gate      chan struct{}
	noKey     bool

	mu        sync.Mutex
	created   []createdAttachment
	createErr error
}

type createdAttachment struct {
	customerRef, filename, objectKey string
}

func (f *fakeClient) GetSignedURL(ctx context.Context) (*models.Credential, error) {
	n := f.signCalls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.signErr != nil {
		return nil, f.signErr
	}
	fields := map[string]string{"policy": "p", "x-amz-signature": "s"}
	if !f.noKey {
		fields["key"] = fmt.Sprintf("key-%d", n)
	}
	return &models.Credential{SignedURL: "http://store.invalid/bucket", URLFields: fields}, nil
}

func (f *fakeClient) CreateAttachment(ctx context.Context, customerRef, filename, objectKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, createdAttachment{customerRef, filename, objectKey})
	return f.createErr
}

func (f *fakeClient) Created() []createdAttachment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]createdAttachment(nil), f.created...)
}

// fakeStore fails uploads for file names listed in failNames.
type fakeStore struct {
	mu        sync.Mutex
	uploads   map[string]models.File
	failNames map[string]bool
	creds     []models.Credential
}

func newFakeStore(failNames ...string) *fakeStore {
	s := &fakeStore{uploads: map[string]models.File{}, failNames: map[string]bool{}}
	for _, n := range failNames {
		s.failNames[n] = true
	}
	return s
}

func (s *fakeStore) Upload(ctx context.Context, f models.File, cred models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = append(s.creds, cred)
	if s.failNames[f.Name] {
		return errBoom
	}
	s.uploads[f.Name] = f
	return nil
}

func (s *fakeStore) Uploaded(name string) (models.File, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.uploads[name]
	return f, ok
}

func (s *fakeStore) SetFail(name string, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNames[name] = fail
}

// gatedPreprocessor holds every delivery until release is closed and then
// replaces each payload with "resized:<name>".
type gatedPreprocessor struct {
	release chan struct{}
}

func (p *gatedPreprocessor) Run(ctx context.Context, files []models.File, deliver func(int, preprocess.Result)) {
	<-p.release
	for i, f := range files {
		f.Data = []byte("resized:" + f.Name)
		deliver(i, preprocess.Result{File: f, Resized: true})
	}
}

type teardownCounter struct {
	n atomic.Int32
}

func (c *teardownCounter) fire() { c.n.Add(1) }

func (c *teardownCounter) count() int32 { return c.n.Load() }
