package services

import (
	"context"
	"sync"

	"github.com/okhotnikov/surveysync/internal/client/connectivity"
	"github.com/okhotnikov/surveysync/internal/logging"
)

// SyncTrigger binds the sync engine to connectivity events and app startup,
// so draining happens without user action. Every invocation is shielded: a
// failing or panicking sync pass must never take the host application down.
type SyncTrigger struct {
	engine  SyncService
	monitor *connectivity.Monitor
	log     logging.Logger

	mu    sync.Mutex
	unsub func()
	wg    sync.WaitGroup
}

func NewSyncTrigger(engine SyncService, monitor *connectivity.Monitor, log logging.Logger) *SyncTrigger {
	return &SyncTrigger{engine: engine, monitor: monitor, log: log}
}

// Start subscribes to connectivity transitions and fires one immediate
// drain for anything queued while the process was down. Repeated calls are
// no-ops until Stop.
func (t *SyncTrigger) Start(ctx context.Context) {
	t.mu.Lock()
	if t.unsub != nil {
		t.mu.Unlock()
		return
	}
	t.unsub = t.monitor.Subscribe(func(online bool) {
		if online {
			t.launch(ctx)
		}
	})
	t.mu.Unlock()

	t.launch(ctx)
}

// Stop unsubscribes and waits for in-flight passes to finish.
func (t *SyncTrigger) Stop() {
	t.mu.Lock()
	unsub := t.unsub
	t.unsub = nil
	t.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	t.wg.Wait()
}

func (t *SyncTrigger) launch(ctx context.Context) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.run(ctx)
	}()
}

func (t *SyncTrigger) run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error(ctx, "sync pass panicked", "panic", r)
		}
	}()

	if err := t.engine.RunSync(ctx); err != nil {
		// Swallowed: the next transition or app start retries naturally.
		t.log.Warn(ctx, "sync pass failed", "error", err)
		return
	}

	if err := t.engine.CollectMedia(ctx); err != nil {
		t.log.Warn(ctx, "media collection failed", "error", err)
	}
}
