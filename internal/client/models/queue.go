package models

import "github.com/google/uuid"

// MediaKind classifies a captured media file.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindAudio MediaKind = "audio"
	MediaKindVideo MediaKind = "video"
)

// MediaItem is one captured local file awaiting upload, plus its eventual
// remote URL. LocalURI is immutable once set and acts as the join key used
// to patch submissions. LocalURI values are not guaranteed unique: several
// submissions may reference the same captured file.
type MediaItem struct {
	// ID is an opaque unique identifier, stable for the item's lifetime.
	ID string `json:"id"`

	// SurveyID and QuestionID record where the capture happened. They are
	// informational; the sync engine joins on LocalURI only.
	SurveyID   int64 `json:"surveyId,omitempty"`
	QuestionID int64 `json:"questionId,omitempty"`

	// Kind drives filename and MIME inference at upload time.
	Kind MediaKind `json:"kind"`

	// LocalURI is the device-local file reference.
	LocalURI string `json:"localUri"`

	// RemoteURL is empty until the upload succeeds. Once set the item is
	// resolved and is never re-uploaded.
	RemoteURL string `json:"remoteUrl,omitempty"`
}

// Resolved reports whether the item has been uploaded.
func (m *MediaItem) Resolved() bool {
	return m.RemoteURL != ""
}

// MediaPatch carries fields to merge into an existing MediaItem.
// Nil fields are left untouched.
type MediaPatch struct {
	RemoteURL *string
}

// QueuedSubmission is one survey-answer payload awaiting transmission,
// possibly referencing not-yet-uploaded media.
type QueuedSubmission struct {
	// ID is a client-assigned identifier, distinct from any server-side
	// submission id.
	ID string `json:"id"`

	// SurveyID is the target survey.
	SurveyID int64 `json:"surveyId"`

	// Payload is the full answer body as the backend expects it, except
	// that media-bearing fields may still hold local URIs.
	Payload *SubmissionPayload `json:"payloadWithLocalUris"`
}

// SubmissionPatch carries fields to merge into a QueuedSubmission.
type SubmissionPatch struct {
	SurveyID *int64
	Payload  *SubmissionPayload
}

// Queue is the durable aggregate of pending media and submissions.
// It is the sole persistent state of the sync subsystem.
type Queue struct {
	Submissions []QueuedSubmission `json:"submissions"`
	Media       []MediaItem        `json:"media"`
}

// NewQueue returns an empty queue with non-nil collections.
func NewQueue() *Queue {
	return &Queue{Submissions: []QueuedSubmission{}, Media: []MediaItem{}}
}

// FindMediaByLocalURI returns the first queued media item with the given
// local URI, or nil.
func (q *Queue) FindMediaByLocalURI(uri string) *MediaItem {
	for i := range q.Media {
		if q.Media[i].LocalURI == uri {
			return &q.Media[i]
		}
	}
	return nil
}

// NewID returns a fresh client-side identifier for callers that do not
// supply their own.
func NewID() string {
	return uuid.NewString()
}
