package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okhotnikov/surveysync/internal/client/connectivity"
	"github.com/okhotnikov/surveysync/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedEngine struct {
	mu          sync.Mutex
	runErr      error
	collectErr  error
	runPanic    bool
	runCalls    int
	collectCall int
}

func (e *scriptedEngine) RunSync(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runCalls++
	if e.runPanic {
		panic("boom")
	}
	return e.runErr
}

func (e *scriptedEngine) CollectMedia(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.collectCall++
	return e.collectErr
}

func (e *scriptedEngine) counts() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runCalls, e.collectCall
}

type flakyProber struct {
	err atomic.Value // error or nil marker
}

func (p *flakyProber) set(err error) {
	p.err.Store(&err)
}

func (p *flakyProber) Probe(ctx context.Context) error {
	return *p.err.Load().(*error)
}

func newFlakyProber(err error) *flakyProber {
	p := &flakyProber{}
	p.err.Store(&err)
	return p
}

func TestTrigger_RunsAtStart(t *testing.T) {
	engine := &scriptedEngine{}
	monitor := connectivity.NewMonitor(newFlakyProber(nil), time.Minute, testLogger())

	tr := NewSyncTrigger(engine, monitor, testLogger())
	tr.Start(context.Background())
	tr.Stop()

	runs, collects := engine.counts()
	assert.Equal(t, 1, runs, "start fires one immediate drain")
	assert.Equal(t, 1, collects)
}

func TestTrigger_RunsOnReconnect(t *testing.T) {
	engine := &scriptedEngine{}
	prober := newFlakyProber(errors.New("offline"))
	monitor := connectivity.NewMonitor(prober, 5*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitor.Start(ctx)
	defer monitor.Stop()

	tr := NewSyncTrigger(engine, monitor, testLogger())
	tr.Start(ctx)

	prober.set(nil)
	assert.Eventually(t, func() bool {
		runs, _ := engine.counts()
		return runs >= 2 // startup pass plus the reconnect pass
	}, time.Second, 5*time.Millisecond)

	tr.Stop()
}

func TestTrigger_StartIdempotent(t *testing.T) {
	engine := &scriptedEngine{}
	monitor := connectivity.NewMonitor(newFlakyProber(nil), time.Minute, testLogger())

	tr := NewSyncTrigger(engine, monitor, testLogger())
	ctx := context.Background()
	tr.Start(ctx)
	tr.Start(ctx) // no second subscription, no extra drain
	tr.Stop()

	runs, _ := engine.counts()
	assert.Equal(t, 1, runs)
}

func TestTrigger_SwallowsEngineFailure(t *testing.T) {
	engine := &scriptedEngine{runErr: errors.New("store unavailable")}
	monitor := connectivity.NewMonitor(newFlakyProber(nil), time.Minute, testLogger())

	tr := NewSyncTrigger(engine, monitor, testLogger())
	tr.Start(context.Background())
	tr.Stop()

	runs, collects := engine.counts()
	assert.Equal(t, 1, runs)
	assert.Zero(t, collects, "collection is skipped when the drain fails")
}

func TestTrigger_StartPostsQueuedSubmissionOnce(t *testing.T) {
	store := setupStore(t)
	api := newFakeAPI()
	api.submitDelay = 100 * time.Millisecond
	ctx := context.Background()

	require.NoError(t, store.EnqueueSubmission(ctx, models.QueuedSubmission{
		ID: "100", SurveyID: 7,
		Payload: &models.SubmissionPayload{Answers: []models.Answer{{QuestionID: 1, CustomAnswer: "yes"}}},
	}))

	// Real engine through a real monitor: the engine's own IsOnline call
	// during the startup pass must not trigger a second overlapping pass.
	monitor := connectivity.NewMonitor(newFlakyProber(nil), time.Minute, testLogger())
	engine := NewSyncService(api, store, monitor, testLogger())

	tr := NewSyncTrigger(engine, monitor, testLogger())
	tr.Start(ctx)
	tr.Stop()

	require.Len(t, api.submitCalls, 1, "queued submission must be posted exactly once")

	q, err := store.LoadQueue(ctx)
	require.NoError(t, err)
	assert.Empty(t, q.Submissions)
}

func TestTrigger_SurvivesPanic(t *testing.T) {
	engine := &scriptedEngine{runPanic: true}
	monitor := connectivity.NewMonitor(newFlakyProber(nil), time.Minute, testLogger())

	tr := NewSyncTrigger(engine, monitor, testLogger())
	tr.Start(context.Background())
	tr.Stop() // must return, not crash the process

	runs, _ := engine.counts()
	assert.Equal(t, 1, runs)
}
