// Package metrics exposes Prometheus counters for the watcher process.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics holds all Prometheus metrics for the watcher. A nil *Metrics is
// valid and turns every increment into a no-op, which keeps tests quiet.
type Metrics struct {
	CyclesTotal       prometheus.Counter
	SignalsTotal      *prometheus.CounterVec
	TransitionsTotal  prometheus.Counter
	NotificationsSent prometheus.Counter
	TradesExecuted    prometheus.Counter
	TradesFailed      prometheus.Counter
	PriceSamples      prometheus.Counter
}

// NewMetrics registers and returns all watcher metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watcher_cycles_total",
			Help: "Total analysis cycles run",
		}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "watcher_signals_total",
			Help: "Total signals classified (by type)",
		}, []string{"type"}),
		TransitionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watcher_signal_transitions_total",
			Help: "Total signal transitions detected",
		}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watcher_notifications_sent_total",
			Help: "Total push notifications dispatched",
		}),
		TradesExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watcher_trades_executed_total",
			Help: "Total orders placed successfully",
		}),
		TradesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watcher_trades_failed_total",
			Help: "Total trade attempts that failed",
		}),
		PriceSamples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "watcher_price_samples_total",
			Help: "Total price samples stored",
		}),
	}

	prometheus.MustRegister(
		m.CyclesTotal,
		m.SignalsTotal,
		m.TransitionsTotal,
		m.NotificationsSent,
		m.TradesExecuted,
		m.TradesFailed,
		m.PriceSamples,
	)

	return m
}

// IncCycle increments the cycle counter.
func (m *Metrics) IncCycle() {
	if m != nil {
		m.CyclesTotal.Inc()
	}
}

// IncSignal increments the signal counter for the given type.
func (m *Metrics) IncSignal(signalType string) {
	if m != nil {
		m.SignalsTotal.WithLabelValues(signalType).Inc()
	}
}

// IncTransition increments the transition counter.
func (m *Metrics) IncTransition() {
	if m != nil {
		m.TransitionsTotal.Inc()
	}
}

// IncNotification increments the notifications-sent counter.
func (m *Metrics) IncNotification() {
	if m != nil {
		m.NotificationsSent.Inc()
	}
}

// IncTradeExecuted increments the executed-trade counter.
func (m *Metrics) IncTradeExecuted() {
	if m != nil {
		m.TradesExecuted.Inc()
	}
}

// IncTradeFailed increments the failed-trade counter.
func (m *Metrics) IncTradeFailed() {
	if m != nil {
		m.TradesFailed.Inc()
	}
}

// IncPriceSample increments the stored-price counter.
func (m *Metrics) IncPriceSample() {
	if m != nil {
		m.PriceSamples.Inc()
	}
}

// Server exposes /metrics for the watcher process.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewServer creates the metrics HTTP server.
func NewServer(addr string, logger *zap.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		srv:    &http.Server{Addr: addr, Handler: mux},
		logger: logger.Named("metrics"),
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		s.logger.Info("Metrics server listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
