package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCache_ReadWrite(t *testing.T) {
	c := NewRenderCache(t.TempDir(), time.Minute)

	_, ok := c.Read("my-entry")
	assert.False(t, ok)

	require.NoError(t, c.Write("my-entry", "<p>hello</p>"))

	html, ok := c.Read("my-entry")
	require.True(t, ok)
	assert.Equal(t, "<p>hello</p>", html)
}

func TestRenderCache_TTL(t *testing.T) {
	c := NewRenderCache(t.TempDir(), time.Nanosecond)

	require.NoError(t, c.Write("my-entry", "<p>hello</p>"))
	time.Sleep(time.Millisecond)

	_, ok := c.Read("my-entry")
	assert.False(t, ok)
}

func TestRenderCache_Clear(t *testing.T) {
	c := NewRenderCache(t.TempDir(), time.Minute)

	require.NoError(t, c.Write("my-entry", "<p>hello</p>"))
	require.NoError(t, c.Clear("my-entry"))

	_, ok := c.Read("my-entry")
	assert.False(t, ok)

	// clearing an absent slug is fine
	assert.NoError(t, c.Clear("my-entry"))
}

func TestRenderCache_DistinctSlugs(t *testing.T) {
	c := NewRenderCache(t.TempDir(), time.Minute)

	require.NoError(t, c.Write("first", "<p>one</p>"))
	require.NoError(t, c.Write("second", "<p>two</p>"))

	html, ok := c.Read("first")
	require.True(t, ok)
	assert.Equal(t, "<p>one</p>", html)
}
