// Package client talks to the attachments backend over HTTP+JSON.
//
// # Overview
//
// The package provides:
//  1. The Client contract used by the upload pipeline: GetSignedURL obtains
//     a one-time presigned POST credential, CreateAttachment records an
//     uploaded object against a customer.
//  2. HTTPClient, the net/http implementation.
//  3. URNToRef, which turns a customer URN into the reference used in
//     backend paths.
//
// # Error Handling
//
// Failures are reported with sentinel errors that callers match with
// errors.Is: ErrUnavailable for transport failures, ErrUnexpectedStatus for
// non-2xx replies and ErrInvalidCredential for unusable credentials.
//
// HTTPClient is safe for concurrent use.
package client
