package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/domain"
	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "scores:"

type cache struct {
	client *goredis.Client
	ttl    time.Duration
}

// Connect opens a client and checks the server answers.
func Connect(ctx context.Context, addr string) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr: addr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.WithMessagef(err, "ping redis at '%s'", addr)
	}
	return client, nil
}

// New returns a score cache shared through redis. Each position is a hash
// of "row,col" fields accumulated with HINCRBY.
func New(client *goredis.Client, ttl time.Duration) *cache {
	return &cache{
		client: client,
		ttl:    ttl,
	}
}

func (c *cache) Load(ctx context.Context, key string) (map[domain.Coord]int, error) {
	fields, err := c.client.HGetAll(ctx, keyPrefix+key).Result()
	if err != nil {
		return nil, errors.WithMessage(err, "hgetall scores")
	}
	scores := make(map[domain.Coord]int, len(fields))
	for field, value := range fields {
		move, err := domain.ParseCoord(field)
		if err != nil {
			return nil, errors.WithMessagef(err, "parse field '%s'", field)
		}
		score, err := strconv.Atoi(value)
		if err != nil {
			return nil, errors.WithMessagef(err, "parse score of '%s'", field)
		}
		scores[move] = score
	}
	return scores, nil
}

func (c *cache) Add(ctx context.Context, key string, scores map[domain.Coord]int) (map[domain.Coord]int, error) {
	redisKey := keyPrefix + key
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for move, score := range scores {
			pipe.HIncrBy(ctx, redisKey, move.String(), int64(score))
		}
		if c.ttl > 0 {
			pipe.Expire(ctx, redisKey, c.ttl)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WithMessage(err, "increment scores")
	}
	return c.Load(ctx, key)
}
