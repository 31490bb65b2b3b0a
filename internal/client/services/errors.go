package services

import "errors"

var (
	ErrMissingObjectKey = errors.New("credential has no object key")
	ErrBatchReplaced    = errors.New("batch replaced")
)
