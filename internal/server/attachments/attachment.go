// Package attachments records which uploaded objects belong to which
// customer. Records are append-only; the same object key is accepted once.
package attachments

import (
	"context"
	"time"
)

type Attachment struct {
	ID          string    `json:"id"`
	CustomerRef string    `json:"customer_ref"`
	Filename    string    `json:"filename"`
	ObjectKey   string    `json:"s3_key"`
	CreatedAt   time.Time `json:"created_at"`
}

// Repository persists attachment records.
//
// Create stores a, filling ID and CreatedAt. If a record with the same
// object key already exists for the same customer it is returned with
// created=false; for another customer common.ErrorAlreadyExists is returned.
type Repository interface {
	Create(ctx context.Context, a Attachment) (stored Attachment, created bool, err error)
	ListByCustomer(ctx context.Context, customerRef string) ([]Attachment, error)
}
