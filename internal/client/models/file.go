package models

import (
	"strings"

	"github.com/dustin/go-humanize"
)

// File is an in-memory file payload picked by the user.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f File) Size() int64 {
	return int64(len(f.Data))
}

// HumanSize renders the size in SI units for status tables, e.g. "1.2 MB".
func (f File) HumanSize() string {
	return humanize.Bytes(uint64(f.Size()))
}

// IsImage reports whether the declared MIME type names an image.
func (f File) IsImage() bool {
	return strings.Contains(f.ContentType, "image")
}
