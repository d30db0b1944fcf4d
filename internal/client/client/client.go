package client

import (
	"context"
	"time"

	"github.com/okhotnikov/surveysync/internal/client/models"
)

// Client is the backend API surface the sync subsystem depends on.
type Client interface {
	Close() error

	// Ping checks that the backend is reachable. Any HTTP response counts
	// as reachable; only transport failures are errors.
	Ping(ctx context.Context) error

	// UploadFile uploads one device-local media file and returns its
	// absolute remote URL.
	UploadFile(ctx context.Context, localURI string, kind models.MediaKind) (string, error)

	// SubmitAnswers posts a completed answer payload for the survey.
	SubmitAnswers(ctx context.Context, surveyID int64, payload *models.SubmissionPayload) (*SubmitResult, error)
}

// TokenProvider supplies the bearer token attached to every request. Token
// issuance and refresh belong to the auth layer, outside this subsystem.
type TokenProvider func(ctx context.Context) (string, error)

// SubmitResult is the backend's answer-submission confirmation.
type SubmitResult struct {
	Message      string    `json:"message"`
	SubmissionID int64     `json:"submission_id"`
	SubmittedAt  time.Time `json:"submitted_at"`
	Inserted     int       `json:"inserted"`
}

// UploadResult is the backend's single-file upload confirmation.
type UploadResult struct {
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}
