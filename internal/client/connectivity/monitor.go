// Package connectivity watches device network reachability and notifies
// subscribers on online/offline transitions. "Online" means the backend
// answered a probe: that covers both link state and internet reachability
// in one round trip.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/okhotnikov/surveysync/internal/logging"
)

// Prober performs one reachability check.
type Prober interface {
	Probe(ctx context.Context) error
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context) error

func (f ProberFunc) Probe(ctx context.Context) error { return f(ctx) }

// Checker is the read-only view the sync engine needs.
type Checker interface {
	IsOnline(ctx context.Context) bool
}

const probeTimeout = 3 * time.Second

// Monitor polls a Prober and emits transition events to subscribers.
// It owns the detection mechanism; consumers only see boolean state plus a
// subscribe/unsubscribe contract.
type Monitor struct {
	prober   Prober
	interval time.Duration
	log      logging.Logger

	mu      sync.Mutex
	online  bool
	known   bool
	subs    map[int]func(online bool)
	nextSub int
	stopCh  chan struct{}
	running bool

	wg sync.WaitGroup
}

func NewMonitor(prober Prober, interval time.Duration, log logging.Logger) *Monitor {
	return &Monitor{
		prober:   prober,
		interval: interval,
		log:      log,
		subs:     make(map[int]func(online bool)),
	}
}

// IsOnline performs a live probe and updates the cached state (notifying
// subscribers on a transition).
func (m *Monitor) IsOnline(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	online := m.prober.Probe(ctx) == nil
	m.setOnline(ctx, online)
	return online
}

// Subscribe registers fn to be called with the new state on every
// transition. The returned function removes the subscription; calling it
// more than once is safe.
func (m *Monitor) Subscribe(fn func(online bool)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.subs, id)
		})
	}
}

// Start launches the background watcher. Repeated calls are no-ops until
// Stop.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	stopCh := m.stopCh
	m.mu.Unlock()

	m.wg.Add(1)
	go m.watch(ctx, stopCh)
}

// Stop halts the watcher and waits for it to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	m.mu.Unlock()

	m.wg.Wait()
}

func (m *Monitor) watch(ctx context.Context, stopCh chan struct{}) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
			online := m.prober.Probe(probeCtx) == nil
			cancel()

			m.setOnline(ctx, online)

		case <-stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) setOnline(ctx context.Context, online bool) {
	m.mu.Lock()
	// The first observation only establishes the baseline. Notifying on it
	// would double-fire startup work: whoever subscribes at startup already
	// runs once explicitly.
	changed := m.known && m.online != online
	m.known = true
	m.online = online

	var subs []func(bool)
	if changed {
		subs = make([]func(bool), 0, len(m.subs))
		for _, fn := range m.subs {
			subs = append(subs, fn)
		}
	}
	m.mu.Unlock()

	if !changed {
		return
	}

	m.log.Info(ctx, "connectivity changed", "online", online)
	for _, fn := range subs {
		fn(online)
	}
}
