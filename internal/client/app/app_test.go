package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/okhotnikov/surveysync/internal/client/config"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ServerBaseURL = serverURL
	cfg.DatabasePath = filepath.Join(t.TempDir(), "queue.db")
	cfg.OnlineCheckInterval = time.Minute
	return cfg
}

func TestNewApp_InitializesAndCloses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a, err := NewApp(testConfig(t, srv.URL))
	require.NoError(t, err)
	require.NoError(t, a.Close())
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a, err := NewApp(testConfig(t, srv.URL))
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
