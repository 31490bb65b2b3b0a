package client

import "errors"

var (
	ErrUnavailable       = errors.New("backend unavailable")
	ErrUnexpectedStatus  = errors.New("unexpected response status")
	ErrInvalidCredential = errors.New("invalid upload credential")
	ErrInvalidResponse   = errors.New("invalid response body")
)
