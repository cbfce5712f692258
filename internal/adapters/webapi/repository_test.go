package webapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

func TestRepository_Stats(t *testing.T) {
	t.Run("Counters from the health body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, healthEndpoint, r.URL.Path)
			_, _ = w.Write([]byte(`{"Sessions":2,"Rollouts":512}`))
		}))
		defer srv.Close()

		stats, err := New(srv.URL, zap.NewNop()).Stats(context.Background())

		require.NoError(t, err)
		assert.Equal(t, domain.HubStats{Sessions: 2, Rollouts: 512}, stats)
	})

	t.Run("Unexpected status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := New(srv.URL, zap.NewNop()).Stats(context.Background())

		require.ErrorIs(t, err, errServerUnhealthy)
	})

	t.Run("Broken body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"Sessions":`))
		}))
		defer srv.Close()

		_, err := New(srv.URL, zap.NewNop()).Stats(context.Background())

		require.Error(t, err)
	})
}

func TestRepository_WaitReady(t *testing.T) {
	t.Run("Retries until the server answers", func(t *testing.T) {
		// Given: a server failing its first two health checks
		calls := atomic.NewInt64(0)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Inc() <= 2 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`{"Sessions":1,"Rollouts":7}`))
		}))
		defer srv.Close()

		// When
		stats, err := New(srv.URL, zap.NewNop()).WaitReady(context.Background(), time.Millisecond)

		// Then
		require.NoError(t, err)
		assert.Equal(t, domain.HubStats{Sessions: 1, Rollouts: 7}, stats)
		assert.EqualValues(t, 3, calls.Load())
	})

	t.Run("Gives up with the context", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := New(srv.URL, zap.NewNop()).WaitReady(ctx, time.Millisecond)

		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
