package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLSetGet(t *testing.T) {
	c := NewTTL[string, int](time.Minute)
	defer c.Close()

	c.Set("a", 1, 0)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestTTLExpiry(t *testing.T) {
	c := NewTTL[string, int](time.Minute)
	defer c.Close()

	c.Set("short", 7, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	_, ok := c.Get("short")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestTTLDelete(t *testing.T) {
	c := NewTTL[string, string](time.Minute)
	defer c.Close()

	c.Set("k", "v", 0)
	c.Delete("k")
	_, ok := c.Get("k")
	assert.False(t, ok)
}
