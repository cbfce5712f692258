package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStepping(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewStepping(start, 10*time.Millisecond)

	assert.Equal(t, start, c.Now())
	assert.Equal(t, start.Add(10*time.Millisecond), c.Now())
	assert.Equal(t, start.Add(20*time.Millisecond), c.Now())
	assert.EqualValues(t, 3, c.Calls())
}

func TestStepping_Concurrent(t *testing.T) {
	c := NewStepping(time.Time{}, time.Second)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Now()
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 800, c.Calls())
}

func TestSystem(t *testing.T) {
	before := time.Now()
	now := System().Now()
	assert.False(t, now.Before(before))
}
