package redis

import (
	"testing"
	"time"

	"github.com/kiryu-dev/ultimate-tic-tac-toe/internal/domain"
	"github.com/kiryu-dev/ultimate-tic-tac-toe/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_Add(t *testing.T) {
	ctx, st := suite.New(t)

	c := New(st.Storage, time.Minute)
	a, b := domain.Coord{Row: 2, Col: 7}, domain.Coord{Row: 8, Col: 0}

	// Given: a stored evaluation
	_, err := c.Add(ctx, "pos", map[domain.Coord]int{a: 4, b: -2})
	require.NoError(t, err)

	// When: another evaluation of the same position is added
	total, err := c.Add(ctx, "pos", map[domain.Coord]int{a: 1, b: -3})

	// Then: redis holds the sums
	require.NoError(t, err)
	assert.Equal(t, map[domain.Coord]int{a: 5, b: -5}, total)

	ttl, err := st.Storage.TTL(ctx, keyPrefix+"pos").Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
}

func TestCache_Load(t *testing.T) {
	t.Run("Missing key is empty", func(t *testing.T) {
		ctx, st := suite.New(t)

		scores, err := New(st.Storage, 0).Load(ctx, "missing")

		require.NoError(t, err)
		assert.Empty(t, scores)
	})

	t.Run("Foreign fields are reported", func(t *testing.T) {
		ctx, st := suite.New(t)
		require.NoError(t, st.Storage.HSet(ctx, keyPrefix+"bad", "center", "1").Err())

		_, err := New(st.Storage, 0).Load(ctx, "bad")

		require.Error(t, err)
	})
}
