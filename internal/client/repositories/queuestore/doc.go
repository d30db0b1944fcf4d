// Package queuestore provides the durable persistence layer for the offline
// submission queue.
//
// # Overview
//
// The package defines a Repository interface for loading, saving, and
// mutating the queue aggregate (pending media uploads plus pending survey
// submissions). A SQLite-backed implementation (SQLiteRepository) stores the
// whole queue as one versioned JSON record under a fixed name, so every
// mutation is a load-entire/mutate/save-entire cycle. Cycles run inside a
// transaction and under an in-process mutex, so a UI enqueue racing a sync
// pass cannot lose updates.
//
// Key Types
//
//   - type Repository        — contract used by the sync engine and the UI
//   - type SQLiteRepository  — SQLite implementation over *sql.DB
//
// Typical Usage
//
//	repo := queuestore.NewSQLiteRepository(db, log)
//	_ = repo.EnqueueMedia(ctx, item)
//	_ = repo.EnqueueSubmission(ctx, sub)
//	q, _ := repo.LoadQueue(ctx)
//
// See also: internal/client/models.Queue for field semantics.
package queuestore
