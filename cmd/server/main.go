package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront-builder/internal/auth"
	"storefront-builder/internal/config"
	"storefront-builder/internal/db"
	"storefront-builder/internal/defaults"
	"storefront-builder/internal/editor"
	"storefront-builder/internal/logging"
	"storefront-builder/internal/metrics"
	"storefront-builder/internal/middleware"
	"storefront-builder/internal/page"
	"storefront-builder/internal/render"
	"storefront-builder/internal/version"
	"storefront-builder/internal/worker"
	"storefront-builder/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := &config.AppConfig

	log := logging.New(cfg.Environment, cfg.LogLevel)
	for _, w := range cfg.Warnings {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	appDb, err := db.ConnectDb(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("error connecting to db")
	}
	defer db.CloseDb(appDb, log)

	// Migrate database schema
	if err := db.Migrate(appDb, log); err != nil {
		log.WithError(err).Fatal("migration failed")
	}

	// Default blocks, reloaded when the file changes
	defaultBlocks, err := defaults.Load(cfg.DefaultsFile, log)
	if err != nil {
		log.WithError(err).Fatal("load defaults")
	}
	go func() {
		if err := defaultBlocks.Watch(ctx); err != nil {
			log.WithError(err).Warn("defaults file is not watched")
		}
	}()

	// Seed the home page from the defaults
	if err := db.SeedData(ctx, appDb, defaultBlocks, log); err != nil {
		log.WithError(err).Warn("seed failed")
	}

	// Initialize Redis
	redisClient := redis.InitRedis(ctx, cfg.RedisAddress, log)
	cache := redis.NewCache(redisClient, cfg.CacheTTL)

	pool := worker.NewWorkerPool(cfg.WorkerPoolSize, log)
	defer pool.Shutdown()

	renderer := render.NewDefaultRegistry(log)

	// Initialize repository
	pageRepo := page.NewRepository(appDb)
	versionRepo := version.NewRepository(appDb)
	// Initialize service
	pageService := page.NewService(pageRepo, cache, defaultBlocks, pool, cfg.TemplateSlugs, log)
	versionService := version.NewService(versionRepo, pageService, cache, cfg.VersionListLimit, log)
	sessions := editor.NewManager(pageService, versionService, log,
		editor.WithHistoryLimit(cfg.HistoryLimit),
		editor.WithSessionTTL(cfg.SessionTTL),
	)
	if err := sessions.StartSweeper("@every 1m"); err != nil {
		log.WithError(err).Fatal("start session sweeper")
	}
	defer sessions.StopSweeper()
	// Initialize handler
	pageHandler := page.NewHandler(pageService, renderer, log)
	versionHandler := version.NewHandler(versionService)
	editorHandler := editor.NewHandler(sessions)

	authMiddleware := &middleware.Auth{
		Verifier:       auth.NewVerifier(cfg.JWTSecret),
		InternalSecret: cfg.InternalSecret,
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery(), metrics.Middleware(), middleware.ErrorHandler(log))

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}

	if cfg.Environment == "development" {
		// Allow all origins in development
		corsConfig.AllowAllOrigins = true
	} else {
		// Restrict origins in production
		corsConfig.AllowOrigins = []string{cfg.FrontendAddress}
	}
	router.Use(cors.New(corsConfig))

	// Storefront routes
	router.GET("/", pageHandler.RenderHome)
	router.GET("/p/:slug", pageHandler.RenderPage)
	router.GET("/api/pages/:slug", pageHandler.ShowPage)

	// Admin routes
	admin := router.Group("/admin", authMiddleware.AuthMiddleWare())
	admin.GET("/pages", pageHandler.List)
	admin.POST("/pages", pageHandler.Create)
	admin.GET("/pages/:id", pageHandler.Show)
	admin.PUT("/pages/:id/content", pageHandler.PublishContent)
	admin.GET("/pages/:id/versions", versionHandler.List)
	admin.POST("/pages/:id/versions", versionHandler.Create)
	admin.POST("/pages/:id/versions/:versionId/restore", versionHandler.Restore)
	admin.GET("/pages/:id/versions/:versionId/compare", versionHandler.Compare)

	admin.POST("/editor/sessions", editorHandler.Open)
	admin.GET("/editor/sessions/:id", editorHandler.Show)
	admin.DELETE("/editor/sessions/:id", editorHandler.Close)
	admin.PUT("/editor/sessions/:id/blocks", editorHandler.SetBlocks)
	admin.POST("/editor/sessions/:id/undo", editorHandler.Undo)
	admin.POST("/editor/sessions/:id/redo", editorHandler.Redo)
	admin.POST("/editor/sessions/:id/reload", editorHandler.Reload)
	admin.POST("/editor/sessions/:id/publish", editorHandler.Publish)
	admin.POST("/editor/sessions/:id/versions", editorHandler.SaveVersion)
	admin.POST("/editor/sessions/:id/versions/:versionId/restore", editorHandler.RestoreVersion)

	// internal use routes
	router.GET("/metrics", authMiddleware.InternalAuthMiddleware(), gin.WrapH(metrics.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := appDb.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "cache": redisClient != nil})
	})

	// Server configuration
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router.Handler(),
	}

	// Start server
	go func() {
		log.WithField("port", cfg.ServerPort).Info("Server listening")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Server failed to start")
			stop()
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown error")
	}
	pool.Shutdown() // drain cache writes before the client goes away
	if redisClient != nil {
		_ = redisClient.Close()
	}

	log.Info("Server shutdown complete")
}
