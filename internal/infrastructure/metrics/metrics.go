package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/estateledger/internal/domain"
	"github.com/iho/estateledger/internal/usecase"
)

const namespace = "estateledger"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Event metrics
	EventsCreated  *prometheus.CounterVec
	EventsArchived *prometheus.CounterVec
	PartialWrites  *prometheus.CounterVec

	// Ledger metrics
	LedgerBuilds   *prometheus.CounterVec
	LedgerEntries  *prometheus.HistogramVec
	LedgerDuration *prometheus.HistogramVec

	// Store metrics
	StoreOperations *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge
}

// New creates the metrics and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		EventsCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_created_total",
				Help:      "Total number of events created by type",
			},
			[]string{"type"},
		),
		EventsArchived: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_archived_total",
				Help:      "Total number of events archived by type and whether a balance was reversed",
			},
			[]string{"type", "reversed"},
		),
		PartialWrites: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "partial_writes_total",
				Help:      "Multi-document writes that failed and could not be compensated",
			},
			[]string{"operation"},
		),

		LedgerBuilds: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_builds_total",
				Help:      "Total number of ledgers reconstructed by party kind",
			},
			[]string{"kind"},
		),
		LedgerEntries: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ledger_entries",
				Help:      "Number of entries in reconstructed ledgers",
				Buckets:   []float64{0, 10, 50, 100, 500, 1000, 5000},
			},
			[]string{"kind"},
		),
		LedgerDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ledger_build_duration_seconds",
				Help:      "Duration of ledger reconstruction",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),

		StoreOperations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Document store operations by operation and result",
			},
			[]string{"operation", "result"},
		),
		StoreDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Document store operation duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),
	}
}

// EventCreated implements usecase.MetricsRecorder.
func (m *Metrics) EventCreated(kind domain.DocType) {
	m.EventsCreated.WithLabelValues(string(kind)).Inc()
}

// EventArchived implements usecase.MetricsRecorder.
func (m *Metrics) EventArchived(kind domain.DocType, reversed bool) {
	m.EventsArchived.WithLabelValues(string(kind), strconv.FormatBool(reversed)).Inc()
}

// PartialWrite implements usecase.MetricsRecorder.
func (m *Metrics) PartialWrite(operation string) {
	m.PartialWrites.WithLabelValues(operation).Inc()
}

// LedgerBuilt implements usecase.MetricsRecorder.
func (m *Metrics) LedgerBuilt(kind domain.PartyKind, entries int, took time.Duration) {
	m.LedgerBuilds.WithLabelValues(string(kind)).Inc()
	m.LedgerEntries.WithLabelValues(string(kind)).Observe(float64(entries))
	m.LedgerDuration.WithLabelValues(string(kind)).Observe(took.Seconds())
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, took time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(took.Seconds())
}

// RequestStarted increments the in-flight gauge and returns a func that
// decrements it.
func (m *Metrics) RequestStarted() func() {
	m.HTTPInFlight.Inc()
	return m.HTTPInFlight.Dec
}

// InstrumentStore wraps a DocumentStore so every call is counted and timed.
func (m *Metrics) InstrumentStore(store usecase.DocumentStore) usecase.DocumentStore {
	return &instrumentedStore{next: store, m: m}
}

type instrumentedStore struct {
	next usecase.DocumentStore
	m    *Metrics
}

func (s *instrumentedStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	defer s.observe("get", time.Now())
	doc, err := s.next.Get(ctx, id)
	s.result("get", err)
	return doc, err
}

func (s *instrumentedStore) Put(ctx context.Context, doc *domain.Document) (string, error) {
	defer s.observe("put", time.Now())
	rev, err := s.next.Put(ctx, doc)
	s.result("put", err)
	return rev, err
}

func (s *instrumentedStore) Find(ctx context.Context, q domain.Query) ([]*domain.Document, error) {
	defer s.observe("find", time.Now())
	docs, err := s.next.Find(ctx, q)
	s.result("find", err)
	return docs, err
}

func (s *instrumentedStore) observe(op string, start time.Time) {
	s.m.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (s *instrumentedStore) result(op string, err error) {
	s.m.StoreOperations.WithLabelValues(op, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
