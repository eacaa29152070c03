//	@title			Dropshare API
//	@version		1.0
//	@description	Upload a file, get a link, share it. Anyone holding the link can download.
//
//	@host		localhost:8080
//	@BasePath	/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/dropshare/service/internal/auth"
	"github.com/dropshare/service/internal/config"
	"github.com/dropshare/service/internal/db"
	"github.com/dropshare/service/internal/file"
	"github.com/dropshare/service/internal/logger"
	appMiddleware "github.com/dropshare/service/internal/middleware"
	"github.com/dropshare/service/internal/response"
	"github.com/dropshare/service/internal/storage"
	"github.com/dropshare/service/internal/user"

	_ "github.com/dropshare/service/docs/swagger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.IsProduction(), cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, log)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL, log); err != nil {
		log.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	blobs, err := newStorage(ctx, cfg)
	if err != nil {
		log.Error("object storage init failed", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	log.Info("object storage ready", "driver", cfg.StorageDriver, "bucket", cfg.StorageBucket)

	// Wire dependencies: repository → service → handler
	userRepo := user.NewRepository(pool)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc, log)

	authRepo := auth.NewRepository(pool)
	authSvc := auth.NewService(authRepo, userSvc, cfg.JWTSecret, cfg.JWTTTL)
	authHandler := auth.NewHandler(authSvc, log)

	fileRepo := file.NewRepository(pool)
	linkCache := file.NewLinkCache(cfg.LinkCacheSize, cfg.LinkCacheTTL)
	registry := file.NewRegistry(fileRepo, blobs, linkCache, cfg.PublicBaseURL, cfg.MaxUploadBytes, log)
	resolver := file.NewResolver(fileRepo, blobs, linkCache, log)
	fileHandler := file.NewHandler(registry, resolver, cfg.MaxUploadBytes, log)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(log))
	r.Use(appMiddleware.Metrics)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition", "Content-Length"},
		MaxAge:         300,
	}))

	// Health check: liveness plus a database ping
	readiness := db.NewReadinessChecker(pool)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := readiness.CheckReady(r.Context()); err != nil {
			log.Warn("health check failed", "error", err)
			response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI: available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Shareable links resolve here: {PUBLIC_BASE_URL}/d/{publicID}
	r.Get("/d/{publicID}", fileHandler.Download)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Post("/logout", authHandler.Logout)
		})

		// Public link info
		r.Get("/links/{publicID}", fileHandler.Describe)

		// Protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))

			r.Get("/users/me", userHandler.GetMe)

			r.Route("/files", func(r chi.Router) {
				r.Post("/", fileHandler.Upload)
				r.Get("/", fileHandler.List)
				r.Delete("/{publicID}", fileHandler.Delete)
			})
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
		// Uploads and downloads stream whole files, so body timeouts are generous.
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "port", cfg.Port, "env", cfg.AppEnv)
		log.Info("swagger UI available", "url", fmt.Sprintf("http://localhost:%s/swagger/", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down gracefully")
	case err := <-errCh:
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// newStorage builds the content store selected by STORAGE_DRIVER.
func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMinio:
		return storage.NewMinioStorage(ctx,
			cfg.StorageEndpoint,
			cfg.StorageAccessKey,
			cfg.StorageSecretKey,
			cfg.StorageBucket,
			cfg.StorageUseSSL,
		)
	case config.StorageDriverS3:
		return storage.NewS3Storage(ctx, storage.S3Config{
			Region:    cfg.StorageRegion,
			Bucket:    cfg.StorageBucket,
			AccessKey: cfg.StorageAccessKey,
			SecretKey: cfg.StorageSecretKey,
			Endpoint:  cfg.StorageEndpoint,
		})
	case config.StorageDriverMemory:
		slog.Warn("using in-memory object storage; files are lost on restart")
		return storage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
