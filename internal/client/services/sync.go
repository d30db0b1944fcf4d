package services

import (
	"context"
	"fmt"

	"github.com/okhotnikov/surveysync/internal/client/client"
	"github.com/okhotnikov/surveysync/internal/client/connectivity"
	"github.com/okhotnikov/surveysync/internal/client/models"
	"github.com/okhotnikov/surveysync/internal/client/repositories/queuestore"
	"github.com/okhotnikov/surveysync/internal/logging"
)

// SyncService drains the offline queue. One RunSync call is a single pass:
// it makes as much forward progress as current connectivity allows and
// returns without retrying internally.
type SyncService interface {
	RunSync(ctx context.Context) error

	// CollectMedia removes uploaded media items that no queued submission
	// references anymore. Kept out of RunSync so a drain pass never
	// deletes an item another not-yet-enqueued submission might share.
	CollectMedia(ctx context.Context) error
}

type syncService struct {
	api    client.Client
	queue  queuestore.Repository
	online connectivity.Checker
	log    logging.Logger
}

func NewSyncService(api client.Client, queue queuestore.Repository, online connectivity.Checker, log logging.Logger) SyncService {
	return &syncService{api: api, queue: queue, online: online, log: log}
}

// RunSync uploads pending media, rewrites submissions whose media all
// resolved, posts them, and dequeues on confirmed success. Per-item
// failures are logged and left queued for the next pass; they never abort
// the pass. Offline is a no-op. Only store failures are returned as errors.
func (s *syncService) RunSync(ctx context.Context) error {
	if !s.online.IsOnline(ctx) {
		s.log.Debug(ctx, "skipping sync, offline")
		return nil
	}

	q, err := s.queue.LoadQueue(ctx)
	if err != nil {
		return fmt.Errorf("error loading queue: %w", err)
	}

	// Upload every media item that has no remote URL yet. Results are kept
	// in a transient map for this pass and persisted onto the item so later
	// passes do not re-upload.
	urls := make(map[string]string, len(q.Media))
	for _, m := range q.Media {
		if m.Resolved() {
			urls[m.LocalURI] = m.RemoteURL
			continue
		}

		url, err := s.api.UploadFile(ctx, m.LocalURI, m.Kind)
		if err != nil {
			s.log.Warn(ctx, "media upload failed, will retry",
				"id", m.ID, "localUri", m.LocalURI, "error", err)
			continue
		}

		urls[m.LocalURI] = url
		if err := s.queue.ReplaceMedia(ctx, m.ID, models.MediaPatch{RemoteURL: &url}); err != nil {
			return fmt.Errorf("error recording remote url: %w", err)
		}
	}

	// Reload to observe remote URLs persisted above alongside anything the
	// UI enqueued while uploads were running.
	q, err = s.queue.LoadQueue(ctx)
	if err != nil {
		return fmt.Errorf("error reloading queue: %w", err)
	}

	for _, sub := range q.Submissions {
		resolved, ok := s.resolveRefs(sub.Payload, urls, q)
		if !ok {
			s.log.Debug(ctx, "submission deferred, media still pending", "id", sub.ID)
			continue
		}

		res, err := s.api.SubmitAnswers(ctx, sub.SurveyID, sub.Payload.Rewrite(resolved))
		if err != nil {
			s.log.Warn(ctx, "submission sync failed, will retry", "id", sub.ID, "error", err)
			continue
		}
		s.log.Info(ctx, "submission synced",
			"id", sub.ID, "surveyId", sub.SurveyID, "submissionId", res.SubmissionID)

		if err := s.queue.RemoveSubmission(ctx, sub.ID); err != nil {
			return fmt.Errorf("error removing submission: %w", err)
		}
	}

	return nil
}

// resolveRefs maps every local URI referenced by the payload to a remote
// URL, from this pass's uploads or from media resolved in earlier passes.
// ok is false when any reference is still unresolved: the submission must
// wait, it is never partially submitted.
func (s *syncService) resolveRefs(p *models.SubmissionPayload, urls map[string]string, q *models.Queue) (map[string]string, bool) {
	refs := p.LocalRefs()
	resolved := make(map[string]string, len(refs))
	for _, uri := range refs {
		if u, ok := urls[uri]; ok {
			resolved[uri] = u
			continue
		}
		if m := q.FindMediaByLocalURI(uri); m != nil && m.Resolved() {
			resolved[uri] = m.RemoteURL
			continue
		}
		return nil, false
	}
	return resolved, true
}

// CollectMedia reference-counts media by scanning the payloads still in the
// queue. Only uploaded items are eligible: an unresolved item may belong to
// a submission still on its way from the UI.
func (s *syncService) CollectMedia(ctx context.Context) error {
	q, err := s.queue.LoadQueue(ctx)
	if err != nil {
		return fmt.Errorf("error loading queue: %w", err)
	}

	referenced := make(map[string]struct{})
	for _, sub := range q.Submissions {
		for _, uri := range sub.Payload.LocalRefs() {
			referenced[uri] = struct{}{}
		}
	}

	for _, m := range q.Media {
		if !m.Resolved() {
			continue
		}
		if _, ok := referenced[m.LocalURI]; ok {
			continue
		}
		if err := s.queue.RemoveMedia(ctx, m.ID); err != nil {
			return fmt.Errorf("error removing media: %w", err)
		}
		s.log.Debug(ctx, "collected uploaded media", "id", m.ID, "localUri", m.LocalURI)
	}
	return nil
}
