package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/dmitrijs2005/attachkeeper/internal/client/client"
	"github.com/dmitrijs2005/attachkeeper/internal/client/config"
	"github.com/dmitrijs2005/attachkeeper/internal/client/objectstore"
	"github.com/dmitrijs2005/attachkeeper/internal/client/preprocess"
	"github.com/dmitrijs2005/attachkeeper/internal/client/registry"
	"github.com/dmitrijs2005/attachkeeper/internal/client/services"
	"github.com/dmitrijs2005/attachkeeper/internal/logging"
)

var (
	ErrNoFiles      = errors.New("no files given")
	ErrNoCustomer   = errors.New("customer URN is required")
	ErrNotAllStored = errors.New("not every attachment was uploaded")
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	out     io.Writer
	service *services.UploadService

	lastStored atomic.Int64
}

func NewApp(c *config.Config, logger logging.Logger, out io.Writer) (*App, error) {
	if c.CustomerURN == "" {
		return nil, ErrNoCustomer
	}

	apiClient, err := client.NewHTTPClient(c.BackendURL, client.WithTimeout(c.RequestTimeout))
	if err != nil {
		return nil, err
	}

	app := &App{config: c, logger: logger, out: out}

	pre := preprocess.New(
		preprocess.WithMaxDimension(c.MaxImageDimension),
		preprocess.WithConcurrency(c.PreprocessConcurrency),
		preprocess.WithLogger(logger),
	)

	app.service = services.NewUploadService(
		apiClient,
		objectstore.NewUploader(&http.Client{}),
		client.URNToRef(c.CustomerURN),
		services.WithPreprocessor(pre),
		services.WithLogger(logger),
		services.WithObserver(app.progress),
		services.WithTeardown(func() { logger.Info(context.Background(), "upload complete, closing") }),
	)

	return app, nil
}

// Run uploads the configured files. It returns ErrNotAllStored when some
// attachments are still not stored after the last round.
func (a *App) Run(ctx context.Context) error {
	if len(a.config.Files) == 0 {
		return ErrNoFiles
	}

	files, err := ReadFiles(a.config.Files)
	if err != nil {
		return err
	}

	a.service.AddAttachments(ctx, files)

	for round := 0; round <= a.config.MaxRetries; round++ {
		if ctx.Err() != nil || a.service.Destroyed() {
			break
		}
		n := a.service.UploadAttachments(ctx)
		if n == 0 {
			break
		}
		a.logger.Debug(ctx, "upload round started", "round", round, "attachments", n)
		a.service.Wait()
	}
	a.service.Wait()

	snap := a.service.Snapshot()
	if err := PrintTable(a.out, snap); err != nil {
		return err
	}

	if !registry.AllStored(snap) {
		return fmt.Errorf("%w: %d of %d stored", ErrNotAllStored, countStored(snap), snap.Len())
	}
	return nil
}

func (a *App) progress(s *registry.Snapshot) {
	stored := int64(countStored(s))
	if a.lastStored.Swap(stored) != stored {
		a.logger.Info(context.Background(), "upload progress", "stored", stored, "total", s.Len())
	}
}

func countStored(s *registry.Snapshot) int {
	n := 0
	for _, a := range s.Attachments {
		if a.StoredRemotely {
			n++
		}
	}
	return n
}
