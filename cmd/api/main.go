//	@title			Car Cosmetics API
//	@version		1.0
//	@description	Read-only catalog of vehicles and their cosmetic sets.
//
//	@host		localhost:5000
//	@BasePath	/

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-logr/logr"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/carcosmetics/service/internal/admin"
	"github.com/carcosmetics/service/internal/catalog"
	"github.com/carcosmetics/service/internal/config"
	"github.com/carcosmetics/service/internal/db"
	"github.com/carcosmetics/service/internal/logging"
	"github.com/carcosmetics/service/internal/metrics"
	appMiddleware "github.com/carcosmetics/service/internal/middleware"
	"github.com/carcosmetics/service/internal/response"
	"github.com/carcosmetics/service/internal/storage"
	"github.com/carcosmetics/service/internal/upload"

	_ "github.com/carcosmetics/service/docs/swagger"
)

func main() {
	cfg, envLoaded := config.Load()

	log, err := logging.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	if !envLoaded {
		log.Info("no .env file found, reading from environment")
	}

	if err := run(cfg, log); err != nil {
		log.Error(err, "server failed")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logr.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := context.Background()

	repo, closeRepo, err := openRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("object storage init failed: %w", err)
	}

	// Wire dependencies: repository → service → handler
	m := metrics.New()
	catalogSvc := catalog.NewService(repo)
	catalogHandler := catalog.NewHandler(catalogSvc, log.WithName("api"))

	uploader := upload.NewService(store, log.WithName("upload"), m)
	flow := admin.NewFlow(catalogSvc, uploader, log.WithName("admin"))
	adminHandler, err := admin.NewHandler(flow, catalogSvc, cfg.AdminTheme, cfg.AdminMaxBodyBytes, log.WithName("admin"))
	if err != nil {
		return fmt.Errorf("admin init failed: %w", err)
	}

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(log.WithName("http"), m))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "not found")
	})

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", m.Handler())

	// Swagger UI, available at http://localhost:5000/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	catalogHandler.Routes(r)
	r.Mount("/admin", adminHandler.Routes())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.AppEnv)
		log.Info("admin UI available", "url", "http://localhost:"+cfg.Port+"/admin/")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-quit:
	}
	log.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// openRepository connects the catalog backend named by the DATABASE_URL scheme.
func openRepository(ctx context.Context, cfg *config.Config, log logr.Logger) (catalog.Repository, func(), error) {
	kind, err := cfg.DatabaseKind()
	if err != nil {
		return nil, nil, err
	}

	switch kind {
	case config.DatabasePostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, fmt.Errorf("database connection failed: %w", err)
		}
		if err := db.Migrate(cfg.DatabaseURL, log); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("database migration failed: %w", err)
		}
		return catalog.NewPostgresRepository(pool), pool.Close, nil

	case config.DatabaseMongo:
		client, database, err := db.ConnectMongo(ctx, cfg.DatabaseURL, cfg.DatabaseName, log)
		if err != nil {
			return nil, nil, fmt.Errorf("database connection failed: %w", err)
		}
		disconnect := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error(err, "disconnect mongo")
			}
		}
		repo := catalog.NewMongoRepository(database)
		if err := repo.EnsureIndexes(ctx); err != nil {
			disconnect()
			return nil, nil, fmt.Errorf("create mongo indexes: %w", err)
		}
		return repo, disconnect, nil

	default:
		log.Info("using in-memory catalog; data is lost on restart")
		return catalog.NewMemoryRepository(), func() {}, nil
	}
}

// openStorage builds the object storage backend selected by STORAGE_DRIVER.
func openStorage(ctx context.Context, cfg *config.Config, log logr.Logger) (storage.Storage, error) {
	if cfg.StorageDriver == config.StorageMinio {
		return storage.NewMinioStorage(ctx, storage.MinioConfig{
			Endpoint:   cfg.StorageEndpoint,
			AccessKey:  cfg.StorageAccessKey,
			SecretKey:  cfg.StorageSecretKey,
			Bucket:     cfg.StorageBucket,
			Region:     cfg.StorageRegion,
			UseSSL:     cfg.StorageUseSSL,
			PublicBase: cfg.StoragePublicBase,
		}, log.WithName("minio"))
	}
	return storage.NewS3Storage(ctx, storage.S3Config{
		Endpoint:        cfg.StorageEndpoint,
		Bucket:          cfg.StorageBucket,
		Region:          cfg.StorageRegion,
		AccessKeyID:     cfg.StorageAccessKey,
		SecretAccessKey: cfg.StorageSecretKey,
		PublicBase:      cfg.StoragePublicBase,
		PublicRead:      cfg.StoragePublicRead,
		UsePathStyle:    cfg.StorageEndpoint != "",
	})
}
