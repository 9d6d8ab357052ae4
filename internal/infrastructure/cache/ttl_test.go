package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/price-catalog/internal/infrastructure/cache"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTTL_ExpiraPorEdad(t *testing.T) {
	clk := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := cache.NewTTL[string, int](5*time.Minute, clk.Now)

	c.Set("all::500:0", 42)
	v, ok := c.Get("all::500:0")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	clk.Advance(4*time.Minute + 59*time.Second)
	_, ok = c.Get("all::500:0")
	assert.True(t, ok)

	clk.Advance(time.Second)
	_, ok = c.Get("all::500:0")
	assert.False(t, ok, "a los 5 minutos ya no vale")
	assert.Equal(t, 0, c.Len())
}

func TestTTL_SetRenuevaEdad(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	c := cache.NewTTL[string, string](time.Minute, clk.Now)

	c.Set("k", "a")
	clk.Advance(50 * time.Second)
	c.Set("k", "b")
	clk.Advance(50 * time.Second)
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestTTL_PurgeYEvict(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	c := cache.NewTTL[string, int](time.Minute, clk.Now)

	c.Set("a", 1)
	clk.Advance(2 * time.Minute)
	c.Set("b", 2)
	assert.Equal(t, 1, c.EvictExpired())
	assert.Equal(t, 1, c.Len())

	c.Purge()
	_, ok := c.Get("b")
	assert.False(t, ok)
}
