package client

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/attachkeeper/internal/client/models"
)

// UploadTypeAttachment is the only upload type this client requests.
const UploadTypeAttachment = "Attachment"

type Client interface {
	// GetSignedURL requests a one-time upload credential. The credential is
	// not bound to any particular file.
	GetSignedURL(ctx context.Context) (*models.Credential, error)
	// CreateAttachment records objectKey as an attachment of the customer.
	CreateAttachment(ctx context.Context, customerRef, filename, objectKey string) error
}

// URNToRef returns the last colon-separated segment of urn, e.g.
// "urn:banco:customer:CTEE8SXO" -> "CTEE8SXO". Strings without a colon are
// returned unchanged.
func URNToRef(urn string) string {
	if i := strings.LastIndex(urn, ":"); i >= 0 {
		return urn[i+1:]
	}
	return urn
}
