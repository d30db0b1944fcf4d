package queuestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/okhotnikov/surveysync/internal/client/models"
	"github.com/okhotnikov/surveysync/internal/dbx"
	"github.com/okhotnikov/surveysync/internal/logging"
)

const (
	// queueName is the fixed key of the single persisted queue record.
	queueName = "offline_queue"

	// schemaVersion is bumped whenever the persisted Queue shape changes.
	schemaVersion = 1
)

type SQLiteRepository struct {
	db  *sql.DB
	log logging.Logger

	// mu serializes read-modify-write cycles so an enqueue racing a sync
	// pass cannot lose updates.
	mu sync.Mutex

	corruptLoads atomic.Int64
}

func NewSQLiteRepository(db *sql.DB, log logging.Logger) *SQLiteRepository {
	return &SQLiteRepository{db: db, log: log}
}

func (r *SQLiteRepository) LoadQueue(ctx context.Context) (*models.Queue, error) {
	return r.loadQueue(ctx, r.db)
}

func (r *SQLiteRepository) loadQueue(ctx context.Context, db dbx.DBTX) (*models.Queue, error) {
	query := `SELECT payload FROM queue_state WHERE name = ?`
	row := db.QueryRowContext(ctx, query, queueName)

	var payload []byte
	err := row.Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NewQueue(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load queue: %w", err)
	}

	q := models.NewQueue()
	if err := json.Unmarshal(payload, q); err != nil {
		// Corrupt state is treated as empty: losing the record is better
		// than stranding all queued work behind a load error.
		r.corruptLoads.Add(1)
		r.log.Error(ctx, "persisted queue is corrupt, starting empty", "error", err)
		return models.NewQueue(), nil
	}
	if q.Submissions == nil {
		q.Submissions = []models.QueuedSubmission{}
	}
	if q.Media == nil {
		q.Media = []models.MediaItem{}
	}
	return q, nil
}

func (r *SQLiteRepository) SaveQueue(ctx context.Context, q *models.Queue) error {
	return r.saveQueue(ctx, r.db, q)
}

func (r *SQLiteRepository) saveQueue(ctx context.Context, db dbx.DBTX, q *models.Queue) error {
	payload, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal queue: %w", err)
	}

	query := `INSERT INTO queue_state (name, schema_version, payload, updated_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(name) DO UPDATE SET schema_version = excluded.schema_version,
				payload = excluded.payload,
				updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(ctx, query, queueName, schemaVersion, payload); err != nil {
		return fmt.Errorf("failed to save queue: %w", err)
	}
	return nil
}

// mutate runs one load-mutate-save cycle inside a transaction, under the
// in-process mutex.
func (r *SQLiteRepository) mutate(ctx context.Context, fn func(q *models.Queue)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		q, err := r.loadQueue(ctx, tx)
		if err != nil {
			return err
		}
		fn(q)
		return r.saveQueue(ctx, tx, q)
	})
}

func (r *SQLiteRepository) EnqueueMedia(ctx context.Context, item models.MediaItem) error {
	return r.mutate(ctx, func(q *models.Queue) {
		for i := range q.Media {
			if q.Media[i].ID == item.ID {
				return
			}
		}
		q.Media = append(q.Media, item)
	})
}

func (r *SQLiteRepository) ReplaceMedia(ctx context.Context, id string, patch models.MediaPatch) error {
	return r.mutate(ctx, func(q *models.Queue) {
		for i := range q.Media {
			if q.Media[i].ID != id {
				continue
			}
			if patch.RemoteURL != nil {
				q.Media[i].RemoteURL = *patch.RemoteURL
			}
			return
		}
	})
}

func (r *SQLiteRepository) RemoveMedia(ctx context.Context, id string) error {
	return r.mutate(ctx, func(q *models.Queue) {
		kept := q.Media[:0]
		for _, m := range q.Media {
			if m.ID != id {
				kept = append(kept, m)
			}
		}
		q.Media = kept
	})
}

func (r *SQLiteRepository) EnqueueSubmission(ctx context.Context, sub models.QueuedSubmission) error {
	return r.mutate(ctx, func(q *models.Queue) {
		for i := range q.Submissions {
			if q.Submissions[i].ID == sub.ID {
				return
			}
		}
		q.Submissions = append(q.Submissions, sub)
	})
}

func (r *SQLiteRepository) UpdateSubmission(ctx context.Context, id string, patch models.SubmissionPatch) error {
	return r.mutate(ctx, func(q *models.Queue) {
		for i := range q.Submissions {
			if q.Submissions[i].ID != id {
				continue
			}
			if patch.SurveyID != nil {
				q.Submissions[i].SurveyID = *patch.SurveyID
			}
			if patch.Payload != nil {
				q.Submissions[i].Payload = patch.Payload
			}
			return
		}
	})
}

func (r *SQLiteRepository) RemoveSubmission(ctx context.Context, id string) error {
	return r.mutate(ctx, func(q *models.Queue) {
		kept := q.Submissions[:0]
		for _, s := range q.Submissions {
			if s.ID != id {
				kept = append(kept, s)
			}
		}
		q.Submissions = kept
	})
}

func (r *SQLiteRepository) PendingCounts(ctx context.Context) (submissions, media int, err error) {
	q, err := r.loadQueue(ctx, r.db)
	if err != nil {
		return 0, 0, err
	}
	for _, m := range q.Media {
		if !m.Resolved() {
			media++
		}
	}
	return len(q.Submissions), media, nil
}

func (r *SQLiteRepository) CorruptLoads() int64 {
	return r.corruptLoads.Load()
}
