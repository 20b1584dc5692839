package main

import (
	"log"
	"path/filepath"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"inkwell/blog"
	"inkwell/cache"
	"inkwell/common"
	"inkwell/config"
	"inkwell/dashboard"
	"inkwell/database"
	"inkwell/search"
	"inkwell/storage"
	"inkwell/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}
	cfg := config.FromEnv()

	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET environment variable not set")
	}

	db := common.ConnectDb(cfg.DatabasePath)
	if db == nil {
		log.Fatal("Failed to connect to database")
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	index, err := search.NewIndex(db)
	if err != nil {
		log.Fatal("Failed to initialize search index:", err)
	}

	entryStore := store.NewEntryStore(db, index)
	media := storage.NewFileStorage(cfg.MediaDir, cfg.MediaBaseURL)
	rcache := cache.NewRenderCache(filepath.Join(cfg.MediaDir, ".render-cache"), cfg.RenderCacheTTL)

	router := gin.Default()

	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   false,
	})
	router.Use(sessions.Sessions("inkwell-session", sessionStore))

	// stored media is served straight from disk
	router.Static(cfg.MediaBaseURL, cfg.MediaDir)

	blogModule := blog.NewBlogModule(cfg, entryStore, index, rcache)
	blogModule.RegisterRoutes(router)

	dashboardModule := dashboard.NewDashboardModule(cfg, entryStore, media, rcache)
	dashboardModule.RegisterRoutes(router)

	log.Printf("Starting server on %s...", cfg.Addr)
	if err := router.Run(cfg.Addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
