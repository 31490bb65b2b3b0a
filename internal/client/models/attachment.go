package models

// Status is the lifecycle state of one attachment.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusInProgress Status = "in_progress"
	StatusFailed     Status = "failed"
	StatusStored     Status = "stored"
)

// Attachment is one entry of the registry. Values are copied on every
// registry mutation; never keep a pointer into a published snapshot.
type Attachment struct {
	File  File
	Index int

	// ObjectKey is empty until the object store accepted the upload.
	ObjectKey        string
	StoredRemotely   bool
	UploadInProgress bool

	// Resized is set when the preprocessor swapped the payload.
	Resized bool
	// Attempts counts credential requests issued for this attachment.
	Attempts int
	// Reconciled is set once the backend recorded the object key.
	Reconciled bool
	LastError  string
}

func NewAttachment(index int, f File) Attachment {
	return Attachment{File: f, Index: index}
}

func (a Attachment) Status() Status {
	switch {
	case a.UploadInProgress:
		return StatusInProgress
	case a.StoredRemotely:
		return StatusStored
	case a.Attempts > 0:
		return StatusFailed
	default:
		return StatusQueued
	}
}

// Eligible reports whether an upload pipeline may be started for a.
func (a Attachment) Eligible() bool {
	return !a.UploadInProgress && !a.StoredRemotely
}
