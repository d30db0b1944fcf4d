package queuestore

import (
	"context"

	"github.com/okhotnikov/surveysync/internal/client/models"
)

// Repository is durable CRUD over the offline queue aggregate. All mutating
// operations are full read-modify-write cycles over the persisted queue,
// serialized by the implementation so overlapping callers cannot lose
// updates.
type Repository interface {
	// LoadQueue returns the persisted queue. An absent or unparseable
	// record yields an empty queue, never an error: failing to load would
	// strand all queued work.
	LoadQueue(ctx context.Context) (*models.Queue, error)

	// SaveQueue overwrites the entire persisted queue atomically.
	SaveQueue(ctx context.Context, q *models.Queue) error

	// EnqueueMedia appends a media item. Idempotent by ID.
	EnqueueMedia(ctx context.Context, item models.MediaItem) error

	// ReplaceMedia merges patch fields into the matching item.
	// No-op when the ID is not found.
	ReplaceMedia(ctx context.Context, id string, patch models.MediaPatch) error

	// RemoveMedia deletes a media item by ID. Idempotent.
	RemoveMedia(ctx context.Context, id string) error

	// EnqueueSubmission appends a submission. Idempotent by ID.
	EnqueueSubmission(ctx context.Context, sub models.QueuedSubmission) error

	// UpdateSubmission merges patch fields into the matching submission.
	// No-op when the ID is not found.
	UpdateSubmission(ctx context.Context, id string, patch models.SubmissionPatch) error

	// RemoveSubmission deletes a submission by ID. Idempotent.
	RemoveSubmission(ctx context.Context, id string) error

	// PendingCounts reports how many submissions and still-unuploaded
	// media items are queued, for host status logging.
	PendingCounts(ctx context.Context) (submissions, media int, err error)

	// CorruptLoads reports how many times a persisted queue failed to
	// parse and was replaced by an empty one.
	CorruptLoads() int64
}
