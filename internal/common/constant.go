package common

const (
	// AuthHeaderName is the HTTP header carrying the bearer token.
	AuthHeaderName = "Authorization"

	// UploadFieldName is the multipart form field the backend expects
	// for single-file uploads.
	UploadFieldName = "file"
)
