// Package api serves the client-facing REST endpoints: current price, price
// history, signal history and settings.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bitcoin-watcher-go/internal/store"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Server is the HTTP API server.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewServer wires the router and handlers.
func NewServer(port int, h *Handler, logger *zap.Logger) *Server {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "OK")
	})
	r.Get("/currentPrice", h.CurrentPrice)
	r.Get("/priceHistory", h.PriceHistory)
	r.Get("/signalHistory", h.SignalHistory)
	r.Get("/settings", h.GetSettings)
	r.Post("/settings", h.UpdateSettings)

	return &Server{
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		logger: logger.Named("api"),
	}
}

// Start runs the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		s.logger.Info("API server listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server")
	return s.srv.Shutdown(ctx)
}

// Handler holds the store dependencies for the API endpoints.
type Handler struct {
	logger        *zap.Logger
	prices        *store.PriceStore
	signals       *store.SignalStore
	notifications *store.NotificationStore
	settings      *store.SettingsStore
}

// NewHandler creates a Handler.
func NewHandler(
	logger *zap.Logger,
	prices *store.PriceStore,
	signals *store.SignalStore,
	notifications *store.NotificationStore,
	settings *store.SettingsStore,
) *Handler {
	return &Handler{
		logger:        logger.Named("api"),
		prices:        prices,
		signals:       signals,
		notifications: notifications,
		settings:      settings,
	}
}
