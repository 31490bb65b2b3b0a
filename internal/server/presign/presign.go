// Package presign issues short-lived presigned POST credentials that let a
// client upload one object straight to an S3-compatible store.
package presign

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	KeyField   = "key"
	ACLField   = "x-amz-acl"
	PublicRead = "public-read"
)

// Credential is the wire form returned by the signed upload URL endpoint.
type Credential struct {
	SignedURL string            `json:"signed_url"`
	URLFields map[string]string `json:"url_fields"`
}

type Presigner interface {
	PresignPost(ctx context.Context) (*Credential, error)
}

// now is a seam for tests.
var now = time.Now

// GetRandomStorageKey returns a fresh object key under attachments/Y/M/D/.
func GetRandomStorageKey() string {
	d := now()
	return fmt.Sprintf("attachments/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}
