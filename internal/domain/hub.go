package domain

import (
	"context"
)

type HubStats struct {
	Sessions int
	Rollouts int64
}

type HubUseCase interface {
	Handle(ctx context.Context, client Client) error
	Stats() HubStats
}

type HealthCheckResponse struct {
	Sessions int
	Rollouts int64
}
