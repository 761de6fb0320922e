//	@title			Portfolio API
//	@version		1.0
//	@description	Backend for a personal portfolio: categories, projects and the contact form.
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token, required on writes when REQUIRE_AUTH is set. Format: **Bearer {token}**

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
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/portfolio/service/internal/category"
	"github.com/portfolio/service/internal/config"
	"github.com/portfolio/service/internal/contact"
	"github.com/portfolio/service/internal/db"
	"github.com/portfolio/service/internal/logging"
	appMiddleware "github.com/portfolio/service/internal/middleware"
	"github.com/portfolio/service/internal/project"
	"github.com/portfolio/service/internal/storage"

	_ "github.com/portfolio/service/docs/swagger"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.AppEnv, cfg.LogLevel)

	if cfg.IsProduction() && cfg.RequireAuth && cfg.JWTSecret == config.DefaultJWTSecret {
		log.Fatal().Msg("JWT_SECRET must be set in production")
	}

	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	files, filesHandler, err := newStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("object storage init failed")
	}
	files = storage.WithTimeout(files, cfg.StorageTimeout)

	// Wire dependencies: repository → service → handler
	categorySvc := category.NewService(category.NewRepository(pool))
	categoryHandler := category.NewHandler(categorySvc)

	projectSvc := project.NewService(project.NewRepository(pool), files, logging.Component("project"))
	projectHandler := project.NewHandler(projectSvc)

	contactSvc := contact.NewService(newMailer(cfg), cfg.ContactRecipient)
	contactHandler := contact.NewHandler(contactSvc)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(logging.Component("http")))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := pool.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"database unavailable"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	if filesHandler != nil {
		r.Handle("/storage/*", http.StripPrefix("/storage", filesHandler))
	}

	r.Group(func(r chi.Router) {
		if cfg.RequireAuth {
			r.Use(appMiddleware.WritesOnly(appMiddleware.RequireAuth(cfg.JWTSecret)))
		}
		r.Route("/category", categoryHandler.Routes)
		r.Route("/projects", projectHandler.Routes)
	})
	r.Route("/contact", contactHandler.Routes)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Str("storage", cfg.StorageDriver).Msg("server listening")
		log.Info().Msgf("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-quit
	log.Info().Msg("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server stopped")
}

// newStorage builds the configured object store. The returned handler, when
// non-nil, serves stored objects under /storage.
func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, http.Handler, error) {
	switch cfg.StorageDriver {
	case "local":
		s, err := storage.NewLocalStorage(cfg.StorageLocalRoot, cfg.StoragePublicBase)
		if err != nil {
			return nil, nil, err
		}
		return s, http.FileServer(http.Dir(s.Root())), nil
	case "memory":
		s := storage.NewMemoryStorage(cfg.StoragePublicBase, project.MaxImageSize)
		return s, s, nil
	case "s3", "minio":
		s, err := storage.NewMinioStorage(ctx, storage.MinioConfig{
			Endpoint:   cfg.StorageEndpoint,
			AccessKey:  cfg.StorageAccessKey,
			SecretKey:  cfg.StorageSecretKey,
			Bucket:     cfg.StorageBucket,
			PublicBase: cfg.StoragePublicBase,
			UseSSL:     cfg.StorageUseSSL,
		})
		return s, nil, err
	case "supabase":
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			return nil, nil, errors.New("SUPABASE_URL and SUPABASE_KEY are required")
		}
		return storage.NewSupabaseStorage(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket, nil), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func newMailer(cfg *config.Config) contact.Mailer {
	logger := logging.Component("mail")
	if cfg.MailDriver == "resend" {
		if cfg.ResendAPIKey == "" || cfg.MailFrom == "" {
			log.Fatal().Msg("RESEND_API_KEY and MAIL_FROM are required for the resend mail driver")
		}
		return contact.NewResendMailer("", cfg.ResendAPIKey, cfg.MailFrom, nil, logger)
	}
	return contact.NewLogMailer(logger)
}
