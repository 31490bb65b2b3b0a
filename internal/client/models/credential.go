package models

// ObjectKeyField is the form field carrying the server-chosen storage key.
const ObjectKeyField = "key"

// Credential is a one-time presigned POST destination.
type Credential struct {
	SignedURL string            `json:"signed_url"`
	URLFields map[string]string `json:"url_fields"`
}

// ObjectKey returns the storage key chosen by the backend.
func (c Credential) ObjectKey() (string, bool) {
	k, ok := c.URLFields[ObjectKeyField]
	return k, ok && k != ""
}
