package config

import (
	"os"
	"strconv"
	"time"
)

// Config collects every tunable the modules need. Values come from the
// environment (main loads .env via godotenv first); each flag documents
// its effect so nothing hides behind a global.
type Config struct {
	Addr          string // listen address, default ":8080"
	DatabasePath  string // sqlite file, default "data/inkwell.db"
	SessionSecret string // required, cookie session encryption key

	MediaDir     string // filesystem root for stored media, default "media"
	MediaBaseURL string // public URL prefix for stored media, default "/media"

	// PageSize is the page length for public listings (recency,
	// category, tag, search). CategoryPageSize applies to the
	// category administration listing only.
	PageSize         int // default 12
	CategoryPageSize int // default 30

	// CategoriesInDetail makes the detail payload carry the full
	// category list, for presentation layers that render a category
	// sidebar next to an entry.
	CategoriesInDetail bool // default true

	// EmptyFirstPageURL reproduces the legacy search pager behavior of
	// rendering "next"/"previous" links that point at page 1 as an
	// empty string instead of an explicit page=1 URL. Off by default;
	// enable only when a client depends on the old shape.
	EmptyFirstPageURL bool // default false

	// RenderCacheTTL bounds how long a rendered entry body may be
	// served from the file cache before it is re-rendered.
	RenderCacheTTL time.Duration // default 5m
}

func FromEnv() Config {
	return Config{
		Addr:               envOr("ADDR", ":8080"),
		DatabasePath:       envOr("DATABASE_PATH", "data/inkwell.db"),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		MediaDir:           envOr("MEDIA_DIR", "media"),
		MediaBaseURL:       envOr("MEDIA_BASE_URL", "/media"),
		PageSize:           envInt("PAGE_SIZE", 12),
		CategoryPageSize:   envInt("CATEGORY_PAGE_SIZE", 30),
		CategoriesInDetail: envBool("CATEGORIES_IN_DETAIL", true),
		EmptyFirstPageURL:  envBool("EMPTY_FIRST_PAGE_URL", false),
		RenderCacheTTL:     envDuration("RENDER_CACHE_TTL", 5*time.Minute),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
