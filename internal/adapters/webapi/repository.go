package webapi

import (
	"context"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	clientTimeout  = 5 * time.Second
	healthEndpoint = "/health"
)

var errServerUnhealthy = errors.New("server is unhealthy")

// repository talks to the HTTP side of a game server.
type repository struct {
	baseURL string
	cli     *http.Client
	logger  *zap.Logger
}

func New(baseURL string, logger *zap.Logger) repository {
	return repository{
		baseURL: baseURL,
		cli:     &http.Client{Timeout: clientTimeout},
		logger:  logger,
	}
}

// Stats fetches the session and rollout counters of the server.
func (r repository) Stats(ctx context.Context) (domain.HubStats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+healthEndpoint, nil)
	if err != nil {
		return domain.HubStats{}, errors.WithMessage(err, "new health request")
	}
	resp, err := r.cli.Do(req)
	if err != nil {
		return domain.HubStats{}, errors.WithMessagef(err, "get '%s'", r.baseURL)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return domain.HubStats{}, errors.WithMessagef(errServerUnhealthy, "status '%s'", resp.Status)
	}
	var body domain.HealthCheckResponse
	if err := jsoniter.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.HubStats{}, errors.WithMessage(err, "decode health response")
	}
	return domain.HubStats{Sessions: body.Sessions, Rollouts: body.Rollouts}, nil
}

// WaitReady polls Stats every interval until the server answers or ctx
// is done.
func (r repository) WaitReady(ctx context.Context, interval time.Duration) (domain.HubStats, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		stats, err := r.Stats(ctx)
		if err == nil {
			return stats, nil
		}
		r.logger.Debug("server is not ready", zap.String("url", r.baseURL), zap.Error(err))
		select {
		case <-ctx.Done():
			return domain.HubStats{}, errors.WithMessagef(ctx.Err(), "wait for server: %s", err)
		case <-ticker.C:
		}
	}
}
