package file

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkCache_AddGetRemove(t *testing.T) {
	c := NewLinkCache(10, time.Minute)
	rec := &Record{ID: 7, PublicID: "p1", DisplayName: "a.txt"}

	_, ok := c.Get("p1")
	assert.False(t, ok)

	c.Add(rec)
	got, ok := c.Get("p1")
	require.True(t, ok)
	assert.Equal(t, int64(7), got.ID)

	got.DisplayName = "mutated"
	again, _ := c.Get("p1")
	assert.Equal(t, "a.txt", again.DisplayName, "cache hands out copies")

	c.Remove("p1")
	_, ok = c.Get("p1")
	assert.False(t, ok)
}

func TestLinkCache_Expires(t *testing.T) {
	c := NewLinkCache(10, 20*time.Millisecond)
	c.Add(&Record{PublicID: "p1"})
	assert.Eventually(t, func() bool {
		_, ok := c.Get("p1")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestLinkCache_Disabled(t *testing.T) {
	c := NewLinkCache(0, time.Minute)
	c.Add(&Record{PublicID: "p1"})
	_, ok := c.Get("p1")
	assert.False(t, ok)

	var nilCache *LinkCache
	nilCache.Add(&Record{PublicID: "p1"})
	nilCache.Remove("p1")
	_, ok = nilCache.Get("p1")
	assert.False(t, ok)
}
