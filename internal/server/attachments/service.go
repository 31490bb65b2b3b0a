package attachments

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/dmitrijs2005/attachkeeper/internal/common"
	"github.com/dmitrijs2005/attachkeeper/internal/logging"
)

const (
	maxFilenameLen  = 255
	maxObjectKeyLen = 1024
)

type Service struct {
	repo   Repository
	logger logging.Logger
}

func NewService(repo Repository, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{repo: repo, logger: logger}
}

// Create validates and records an uploaded object for a customer. Repeating
// a call with the same object key is not an error.
func (s *Service) Create(ctx context.Context, customerRef, filename, objectKey string) (Attachment, bool, error) {
	customerRef = strings.TrimSpace(customerRef)
	filename = path.Base(strings.TrimSpace(filename))
	objectKey = strings.TrimSpace(objectKey)

	switch {
	case customerRef == "":
		return Attachment{}, false, fmt.Errorf("%w: customer reference is required", common.ErrorValidation)
	case filename == "" || filename == "." || filename == "/":
		return Attachment{}, false, fmt.Errorf("%w: filename is required", common.ErrorValidation)
	case len(filename) > maxFilenameLen:
		return Attachment{}, false, fmt.Errorf("%w: filename is too long", common.ErrorValidation)
	case objectKey == "":
		return Attachment{}, false, fmt.Errorf("%w: s3_key is required", common.ErrorValidation)
	case len(objectKey) > maxObjectKeyLen:
		return Attachment{}, false, fmt.Errorf("%w: s3_key is too long", common.ErrorValidation)
	}

	a, created, err := s.repo.Create(ctx, Attachment{
		CustomerRef: customerRef,
		Filename:    filename,
		ObjectKey:   objectKey,
	})
	if err != nil {
		return Attachment{}, false, err
	}

	if created {
		s.logger.Info(ctx, "attachment recorded", "customer_ref", customerRef, "object_key", objectKey, "id", a.ID)
	} else {
		s.logger.Debug(ctx, "attachment already recorded", "customer_ref", customerRef, "object_key", objectKey)
	}
	return a, created, nil
}

func (s *Service) List(ctx context.Context, customerRef string) ([]Attachment, error) {
	customerRef = strings.TrimSpace(customerRef)
	if customerRef == "" {
		return nil, fmt.Errorf("%w: customer reference is required", common.ErrorValidation)
	}
	return s.repo.ListByCustomer(ctx, customerRef)
}
