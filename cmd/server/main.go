// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-lifexia/internal/config"
	"github.com/iyunix/go-lifexia/internal/handlers"
	"github.com/iyunix/go-lifexia/internal/middleware"
)

func corsMiddleware(allowedOrigin string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: invalid configuration: %v", err)
	}

	app, cleanup, err := InitializeApplication(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize application: %v", err)
	}
	defer cleanup()

	logger := app.Logger
	router := app.Routes.Router(handlers.RouteMiddleware{
		Global: []mux.MiddlewareFunc{
			corsMiddleware(cfg.AllowedOrigin),
			middleware.RecoverPanic(logger),
			middleware.Logging(logger),
		},
		API:      []mux.MiddlewareFunc{middleware.OptionalJWT([]byte(cfg.JWTSecretKey), logger)},
		Query:    []mux.MiddlewareFunc{middleware.RateLimit(app.Limiter, "chat", logger)},
		User:     []mux.MiddlewareFunc{middleware.RequireUser(logger)},
		Operator: []mux.MiddlewareFunc{middleware.RequireOperator(cfg.OperatorUserIDs, logger)},
	})

	// --- Server Configuration ---
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.LLMTimeout + time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	logger.Info("LIFEXIA medication assistant starting",
		"port", cfg.ServerPort,
		"env", cfg.Environment,
		"conversation_store", cfg.ConversationStore,
		"index_provider", cfg.IndexProvider,
		"whatsapp", cfg.WhatsAppAccessToken != "",
		"operators", len(cfg.OperatorUserIDs),
	)

	// --- Start Server in Goroutine ---
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server startup failed", "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		return
	}
	logger.Info("server stopped")
}
