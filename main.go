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
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"memory-match-server/config"
	"memory-match-server/loghandler"
	"memory-match-server/picsum"
	"memory-match-server/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stdout, cfg.SlogLevel())))

	if envErr != nil {
		slog.Info("no .env file found; using environment variables", "tag", "main")
	}
	slog.Info("configuration loaded", "tag", "main",
		"card_width", cfg.CardWidth,
		"card_height", cfg.CardHeight,
		"reveal_duration_ms", cfg.RevealDurationMS,
		"default_card_count", cfg.DefaultCardCount,
		"image_base_url", cfg.ImageBaseURL,
		"http_port", cfg.HTTPPort,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub(cfg, picsum.NewClient(cfg))
	go hub.Run(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           newRouter(hub),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("memory match server listening", "tag", "main", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "tag", "main", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down", "tag", "main")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "tag", "main", "err", err)
	}
}

// newRouter mounts the websocket endpoint and a health check.
func newRouter(hub *ws.Hub) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	r.Get("/ws", hub.ServeWS)

	return r
}
