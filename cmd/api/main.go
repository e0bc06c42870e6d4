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

	"github.com/joho/godotenv"

	"github.com/library-access-api/internal/config"
	jwtinfra "github.com/library-access-api/internal/infrastructure/jwt"
	"github.com/library-access-api/internal/infrastructure/smtp"
	"github.com/library-access-api/internal/infrastructure/store"
	transporthttp "github.com/library-access-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}

	cfg := config.Load()
	if cfg.AppEnv == "production" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	stores, err := store.Open(context.Background(), cfg)
	if err != nil {
		slog.Error("open store", "backend", cfg.StoreBackend, "err", err)
		os.Exit(1)
	}
	defer stores.Close()

	// JWT provider is optional: without keys no bearer is issued and the
	// deletion routes reject every call.
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		slog.Warn("JWT provider not available", "err", err)
	}

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		OTPRepo:     stores.OTPs,
		AccountRepo: stores.Accounts,
		Mailer:      smtp.NewMailer(cfg),
		JWTProvider: jwtProvider,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "backend", stores.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "err", err)
		return
	}
	slog.Info("server stopped")
}
