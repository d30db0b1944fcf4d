// Package common defines shared constants and sentinel errors used across
// the sync client. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Transport-level errors (upload / submit calls).
	ErrorServerStatus = errors.New("unexpected server status")
	ErrorNoUploadURL  = errors.New("upload response has no url")

	// Media errors.
	ErrorMissingLocalURI = errors.New("missing local file uri")
)
