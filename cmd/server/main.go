package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/emdneves/admin-panel/pkg/dynamiccontent/api"
	"github.com/emdneves/admin-panel/pkg/dynamiccontent/config"
)

type envConfig struct {
	Port        string `env:"ADMIN_PORT" env-default:"3000"`
	Environment string `env:"ADMIN_ENVIRONMENT" env-default:"development"`
	JWTSecret   string `env:"ADMIN_JWT_SECRET" env-default:""`

	BackendType  string `env:"ADMIN_BACKEND_TYPE" env-default:"memory"`
	BackendPath  string `env:"ADMIN_BACKEND_PATH" env-default:""`
	BackendURL   string `env:"ADMIN_BACKEND_URL" env-default:""`
	BackendToken string `env:"ADMIN_BACKEND_TOKEN" env-default:""`

	StorageType string `env:"ADMIN_STORAGE_TYPE" env-default:"fs"`
	StorageDir  string `env:"ADMIN_STORAGE_DIR" env-default:"./data/media"`
	StorageURL  string `env:"ADMIN_STORAGE_URL" env-default:"/media"`
	S3Bucket    string `env:"ADMIN_S3_BUCKET" env-default:""`
	S3Region    string `env:"ADMIN_S3_REGION" env-default:""`
	S3Endpoint  string `env:"ADMIN_S3_ENDPOINT" env-default:""`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	var env envConfig
	if err := cleanenv.ReadEnv(&env); err != nil {
		logger.Error("failed to read environment", "err", err)
		os.Exit(1)
	}

	cfg, err := config.Load(
		config.WithPort(env.Port),
		config.WithEnvironment(env.Environment),
		config.WithJWTSecret(env.JWTSecret),
		config.WithBackend(config.BackendConfig{
			Type:  env.BackendType,
			Path:  env.BackendPath,
			URL:   env.BackendURL,
			Token: env.BackendToken,
		}),
		config.WithStorage(config.StorageConfig{
			Type:      env.StorageType,
			BaseDir:   env.StorageDir,
			URLPrefix: env.StorageURL,
			Bucket:    env.S3Bucket,
			Region:    env.S3Region,
			Endpoint:  env.S3Endpoint,
		}),
	)
	if err != nil {
		logger.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	remote, err := cfg.BuildRemote(ctx)
	if err != nil {
		logger.Error("failed to build backend", "err", err)
		os.Exit(1)
	}

	mediaStore, err := cfg.BuildMediaStore()
	if err != nil {
		logger.Error("failed to build media storage", "err", err)
		os.Exit(1)
	}

	var auth *jwtauth.JWTAuth
	if cfg.JWTSecret != "" {
		auth = jwtauth.New("HS256", []byte(cfg.JWTSecret), nil)
	} else {
		logger.Warn("JWT secret not set, mutating endpoints are unauthenticated")
	}

	handler := api.NewHandler(remote, mediaStore, auth, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	if cfg.Environment == "development" {
		r.Use(corsAllowAll)
	}
	r.Mount("/", handler.Routes())

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	go func() {
		logger.Info("content server starting",
			"port", cfg.Port,
			"env", cfg.Environment,
			"backend", cfg.Backend.Type,
			"storage", cfg.Storage.Type)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "err", err)
		os.Exit(1)
	}
	logger.Info("server exited")
}

func corsAllowAll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
