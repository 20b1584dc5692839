// Package cache is a file-backed cache for goldmark-rendered entry
// bodies, so repeated detail reads don't re-render markdown.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
)

type RenderCache struct {
	dir string
	ttl time.Duration
}

func NewRenderCache(dir string, ttl time.Duration) *RenderCache {
	return &RenderCache{dir: dir, ttl: ttl}
}

// path keys cache files by slug plus an xxHash of the slug, so slugs
// that collide after filesystem normalization still get distinct files.
func (c *RenderCache) path(slug string) string {
	hash := xxhash.Sum64String(slug)
	return filepath.Join(c.dir, fmt.Sprintf("%s_%016x.html", slug, hash))
}

// Read returns the cached rendering for slug if present and fresh.
func (c *RenderCache) Read(slug string) (string, bool) {
	cachePath := c.path(slug)

	info, err := os.Stat(cachePath)
	if err != nil {
		return "", false
	}
	if time.Since(info.ModTime()) > c.ttl {
		return "", false
	}

	content, err := os.ReadFile(cachePath)
	if err != nil {
		return "", false
	}
	return string(content), true
}

// Write stores the rendering for slug.
func (c *RenderCache) Write(slug, html string) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(c.path(slug), []byte(html), 0644)
}

// Clear drops the cached rendering for slug. Clearing an absent entry
// is a no-op.
func (c *RenderCache) Clear(slug string) error {
	err := os.Remove(c.path(slug))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
