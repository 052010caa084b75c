package promclient

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spooky-finn/go-okx-orderbook/infrastructure/logger"
)

// Metrics groups the collectors of the stream client and the maintainer.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	FramesForwarded prometheus.Counter
	UpdatesApplied  prometheus.Counter
	UpdateErrors    prometheus.Counter
	Resyncs         prometheus.Counter
	BookLevels      *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FramesForwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "okx_stream_frames_forwarded_total",
			Help: "text frames forwarded from the okx websocket",
		}),
		UpdatesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "okx_orderbook_updates_applied_total",
			Help: "order book deltas applied to the local book",
		}),
		UpdateErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "okx_orderbook_update_errors_total",
			Help: "order book deltas that failed to apply",
		}),
		Resyncs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "okx_orderbook_resyncs_total",
			Help: "times the local book was dropped and re-snapshotted",
		}),
		BookLevels: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "okx_orderbook_levels",
			Help: "price levels currently held per book side",
		}, []string{"symbol", "side"}),
	}

	reg.MustRegister(m.FramesForwarded, m.UpdatesApplied, m.UpdateErrors, m.Resyncs, m.BookLevels)
	return m
}

func (m *Metrics) FrameForwarded() {
	if m == nil {
		return
	}
	m.FramesForwarded.Inc()
}

func (m *Metrics) UpdateApplied() {
	if m == nil {
		return
	}
	m.UpdatesApplied.Inc()
}

func (m *Metrics) UpdateFailed() {
	if m == nil {
		return
	}
	m.UpdateErrors.Inc()
}

func (m *Metrics) Resynced() {
	if m == nil {
		return
	}
	m.Resyncs.Inc()
}

func (m *Metrics) SetBookLevels(symbol string, asks, bids int) {
	if m == nil {
		return
	}
	m.BookLevels.WithLabelValues(symbol, "ask").Set(float64(asks))
	m.BookLevels.WithLabelValues(symbol, "bid").Set(float64(bids))
}

// NewRegistry returns a registry with the Go runtime collector installed.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	return reg
}

// StartPromClientServer serves /metrics on addr until ctx is done.
func StartPromClientServer(ctx context.Context, addr string, reg *prometheus.Registry) error {
	log := logger.For("promclient")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("prometheus server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
