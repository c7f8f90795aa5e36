//	@title			LumaPix API
//	@version		1.0
//	@description	Backend for LumaPix — self-hosted photo hosting with gated image access.
//
//	@host		localhost:8080
//	@BasePath	/api
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"log"
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

	"github.com/lumapix/service/internal/access"
	"github.com/lumapix/service/internal/artifact"
	"github.com/lumapix/service/internal/auth"
	"github.com/lumapix/service/internal/config"
	"github.com/lumapix/service/internal/db"
	appMiddleware "github.com/lumapix/service/internal/middleware"
	"github.com/lumapix/service/internal/photo"
	"github.com/lumapix/service/internal/storage"
	"github.com/lumapix/service/internal/user"

	_ "github.com/lumapix/service/docs/swagger"
)

func main() {
	cfg := config.Load()

	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	store, err := storage.NewMinioStore(
		cfg.StorageEndpoint,
		cfg.StorageAccessKey,
		cfg.StorageSecretKey,
		cfg.StorageBucket,
		cfg.StoragePublicBase,
		cfg.StorageUseSSL,
	)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	// Wire dependencies: repository → service → handler
	userRepo := user.NewRepository(pool)
	userSvc := user.NewService(userRepo)

	authSvc := auth.NewService(userSvc, cfg)
	authHandler := auth.NewHandler(authSvc, userSvc)

	coordinator := artifact.NewCoordinator(store, cfg.AllowedExtensions, cfg.ThumbnailMaxWidth, cfg.ThumbnailMaxHeight)
	issuer := access.NewIssuer(store, cfg.SignedURLTTL)

	photoRepo := photo.NewPostgresRepository(pool)
	photoSvc := photo.NewService(photoRepo, coordinator, issuer, cfg.SharedAccessSecret)
	photoHandler := photo.NewHandler(photoSvc, cfg.MaxUploadBytes)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := userSvc.EnsureDefaultAdmin(ctx, "admin", "admin@example.com", "password"); err != nil {
		log.Fatalf("default admin seeding failed: %v", err)
	}
	cancel()

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", appMiddleware.SharedSecretHeader},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Group(func(r chi.Router) {
				r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))
				r.Post("/logout", authHandler.Logout)
				r.Get("/verify", authHandler.Verify)
			})
		})

		r.Route("/photos", func(r chi.Router) {
			// Image access is gated per photo, not per route: owners,
			// shared-secret viewers and public visitors all enter here.
			r.With(appMiddleware.OptionalAuth(cfg.JWTSecret)).Get("/{id}/image", photoHandler.Image)

			r.Group(func(r chi.Router) {
				r.Use(appMiddleware.RequireAuth(cfg.JWTSecret))
				r.Get("/", photoHandler.List)
				r.Post("/upload", photoHandler.Upload)
				r.Get("/{id}", photoHandler.Get)
				r.Put("/{id}", photoHandler.Update)
				r.Delete("/{id}", photoHandler.Delete)
			})
		})

		r.With(appMiddleware.RequireAuth(cfg.JWTSecret)).Get("/dashboard/stats", photoHandler.Stats)

		r.Route("/public/photos", func(r chi.Router) {
			r.Get("/", photoHandler.PublicList)
			r.Get("/{id}", photoHandler.PublicGet)
			r.With(appMiddleware.OptionalAuth(cfg.JWTSecret)).Get("/{id}/image", photoHandler.Image)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s)", cfg.Port, cfg.AppEnv)
		log.Printf("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}
