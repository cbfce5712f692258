package hub

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

var errSessionBusy = errors.New("session is served by another connection")

const (
	defaultSessionTTL    = 30 * time.Minute
	defaultCleanupPeriod = time.Minute
)

type Option func(u *useCase)

func WithSessionTTL(ttl time.Duration) Option {
	return func(u *useCase) {
		u.sessionTTL = ttl
	}
}

func WithCleanupPeriod(period time.Duration) Option {
	return func(u *useCase) {
		if period > 0 {
			u.cleanupPeriod = period
		}
	}
}

// WithSeed makes the engine streams of new sessions reproducible.
func WithSeed(seed int64) Option {
	return func(u *useCase) {
		u.rng = rand.New(rand.NewSource(seed))
	}
}

type useCase struct {
	game          domain.GameUseCase
	newEngine     domain.EngineFactory
	clock         domain.Clock
	rollouts      *atomic.Int64
	rng           *rand.Rand
	sessions      map[string]*domain.Session
	sessionTTL    time.Duration
	cleanupPeriod time.Duration
	mu            *sync.RWMutex
	logger        *zap.Logger
}

func New(game domain.GameUseCase, newEngine domain.EngineFactory, clock domain.Clock,
	rollouts *atomic.Int64, logger *zap.Logger, opts ...Option) *useCase {
	u := &useCase{
		game:          game,
		newEngine:     newEngine,
		clock:         clock,
		rollouts:      rollouts,
		rng:           rand.New(rand.NewSource(clock.Now().UnixNano())),
		sessions:      make(map[string]*domain.Session),
		sessionTTL:    defaultSessionTTL,
		cleanupPeriod: defaultCleanupPeriod,
		mu:            &sync.RWMutex{},
		logger:        logger,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Handle serves a connection. A client presenting the id of a detached
// session continues it; anyone else gets a new session.
func (u *useCase) Handle(ctx context.Context, client domain.Client) error {
	session, err := u.resume(client.Uuid())
	if err != nil {
		if client.Uuid() != "" {
			u.logger.Info("starting a new session", zap.Error(err))
		}
		session = u.create()
	}
	defer session.Detach()
	if err := u.game.Play(ctx, client, session); err != nil {
		return errors.WithMessagef(err, "play session '%s'", session.ID)
	}
	return nil
}

func (u *useCase) Stats() domain.HubStats {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return domain.HubStats{
		Sessions: len(u.sessions),
		Rollouts: u.rollouts.Load(),
	}
}

// Run removes finished and idle sessions every cleanup period until ctx
// is done.
func (u *useCase) Run(ctx context.Context) error {
	ticker := time.NewTicker(u.cleanupPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if removed := u.removeStale(u.clock.Now()); removed > 0 {
				u.logger.Info("removed stale sessions", zap.Int("count", removed))
			}
		}
	}
}

func (u *useCase) resume(id string) (*domain.Session, error) {
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	session, ok := u.sessions[id]
	if !ok {
		return nil, errors.WithMessagef(domain.ErrSessionNotFound, "id '%s'", id)
	}
	if !session.Attach() {
		return nil, errors.WithMessagef(errSessionBusy, "id '%s'", id)
	}
	u.logger.Info("resumed session", zap.String("session", id))
	return session, nil
}

func (u *useCase) create() *domain.Session {
	u.mu.Lock()
	defer u.mu.Unlock()
	id := uuid.NewString()
	engine := u.newEngine(rand.New(rand.NewSource(u.rng.Int63())))
	session := domain.NewSession(id, engine, u.clock.Now())
	session.Attach()
	u.sessions[id] = session
	u.logger.Info("created session", zap.String("session", id), zap.Int("sessions", len(u.sessions)))
	return session
}

func (u *useCase) removeStale(now time.Time) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	removed := 0
	for id, session := range u.sessions {
		if session.Attached() {
			continue
		}
		idle := u.sessionTTL > 0 && now.Sub(session.TouchedAt()) >= u.sessionTTL
		if session.Finished() || idle {
			delete(u.sessions, id)
			removed++
		}
	}
	return removed
}
