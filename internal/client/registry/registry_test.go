package registry

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/attachkeeper/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func files(n int) []models.File {
	out := make([]models.File, n)
	for i := range out {
		out[i] = models.File{Name: fmt.Sprintf("f%d.txt", i), ContentType: "text/plain", Data: []byte{byte(i)}}
	}
	return out
}

func TestReplace_AssignsIndicesInInputOrder(t *testing.T) {
	for _, n := range []int{0, 1, 5, 32} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			r := New()
			s := r.Replace(files(n))
			require.Equal(t, n, s.Len())
			for i, a := range s.Attachments {
				assert.Equal(t, i, a.Index)
				assert.Equal(t, fmt.Sprintf("f%d.txt", i), a.File.Name)
				assert.Equal(t, models.StatusQueued, a.Status())
				assert.Empty(t, a.ObjectKey)
			}
		})
	}
}

func TestReplace_NewGenerationEveryBatch(t *testing.T) {
	r := New()
	a := r.Replace(files(2))
	b := r.Replace(files(1))
	assert.NotEqual(t, a.Generation, b.Generation)
	assert.Greater(t, b.Version, a.Version)
	assert.Equal(t, 1, r.Current().Len())
}

func TestUpdate_CopyOnWrite(t *testing.T) {
	r := New()
	before := r.Replace(files(2))

	got, ok := r.Update(before.Generation, 1, func(a *models.Attachment) bool {
		a.UploadInProgress = true
		return true
	})
	require.True(t, ok)
	assert.True(t, got.UploadInProgress)

	assert.False(t, before.Attachments[1].UploadInProgress, "published snapshot must not change")
	assert.True(t, r.Current().Attachments[1].UploadInProgress)
	assert.Greater(t, r.Current().Version, before.Version)
}

func TestUpdate_RejectsStaleGenerationAndBadIndex(t *testing.T) {
	r := New()
	old := r.Replace(files(2))
	r.Replace(files(2))

	called := false
	_, ok := r.Update(old.Generation, 0, func(*models.Attachment) bool { called = true; return true })
	assert.False(t, ok)
	assert.False(t, called)

	gen := r.Current().Generation
	_, ok = r.Update(gen, 2, func(*models.Attachment) bool { return true })
	assert.False(t, ok)
	_, ok = r.Update(gen, -1, func(*models.Attachment) bool { return true })
	assert.False(t, ok)
}

func TestUpdate_AbortDoesNotPublish(t *testing.T) {
	var published atomic.Int32
	r := New(WithObserver(func(*Snapshot) { published.Add(1) }))
	s := r.Replace(files(1))
	require.Equal(t, int32(1), published.Load())

	_, ok := r.Update(s.Generation, 0, func(*models.Attachment) bool { return false })
	assert.False(t, ok)
	assert.Equal(t, int32(1), published.Load())
	assert.Same(t, s, r.Current())
}

func TestUpdate_ConcurrentWritersOnDifferentIndices(t *testing.T) {
	r := New()
	const n = 64
	s := r.Replace(files(n))

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for step := 0; step < 10; step++ {
				r.Update(s.Generation, i, func(a *models.Attachment) bool {
					a.Attempts++
					return true
				})
			}
		}(i)
	}
	wg.Wait()

	for _, a := range r.Current().Attachments {
		assert.Equal(t, 10, a.Attempts, "attachment %d lost an update", a.Index)
	}
}

func TestUpdate_OnlyOneClaimWins(t *testing.T) {
	r := New()
	s := r.Replace(files(1))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := r.Update(s.Generation, 0, func(a *models.Attachment) bool {
				if !a.Eligible() {
					return false
				}
				a.UploadInProgress = true
				return true
			})
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestAllStored(t *testing.T) {
	assert.False(t, AllStored(&Snapshot{}))
	assert.False(t, AllStored(nil))
	assert.False(t, AllStored(&Snapshot{Attachments: []models.Attachment{{StoredRemotely: true}, {}}}))
	assert.True(t, AllStored(&Snapshot{Attachments: []models.Attachment{{StoredRemotely: true}, {StoredRemotely: true}}}))
}
