package observability

import (
	"strconv"
	"time"

	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records diagnostics as Prometheus metrics.
type Metrics struct {
	internalErrors  *prometheus.CounterVec
	zeroStates      *prometheus.CounterVec
	tokensCompleted *prometheus.CounterVec
	pageContents    *prometheus.HistogramVec
	refreshes       prometheus.Counter
	spinnersStarted prometheus.Counter
	spinnerDuration *prometheus.HistogramVec
	tokenFailures   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		internalErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedstream_internal_errors_total",
			Help: "Structural errors found while flattening the feed",
		}, []string{"kind"}),
		zeroStates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedstream_zero_states_total",
			Help: "Zero states shown, by reason",
		}, []string{"reason"}),
		tokensCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedstream_tokens_completed_total",
			Help: "Pagination tokens that resolved to a page",
		}, []string{"synthetic"}),
		pageContents: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "feedstream_page_contents",
			Help:    "Content children per resolved page",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		}, []string{"source"}),
		refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedstream_zero_state_refreshes_total",
			Help: "Zero state refreshes that completed",
		}),
		spinnersStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedstream_spinners_started_total",
			Help: "Continuation spinners shown",
		}),
		spinnerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "feedstream_spinner_duration_seconds",
			Help: "How long continuation spinners were visible",
		}, []string{"outcome"}),
		tokenFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedstream_token_failures_total",
			Help: "Pagination tokens that failed to complete",
		}, []string{"synthetic"}),
	}
	reg.MustRegister(
		m.internalErrors,
		m.zeroStates,
		m.tokensCompleted,
		m.pageContents,
		m.refreshes,
		m.spinnersStarted,
		m.spinnerDuration,
		m.tokenFailures,
	)
	return m
}

func (m *Metrics) OnInternalError(kind domain.InternalError) {
	m.internalErrors.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) OnZeroStateShown(reason domain.ZeroStateReason) {
	m.zeroStates.WithLabelValues(reason.String()).Inc()
}

func (m *Metrics) OnTokenCompleted(wasSynthetic bool, contentCount, tokenCount int) {
	m.tokensCompleted.WithLabelValues(strconv.FormatBool(wasSynthetic)).Inc()
	m.pageContents.WithLabelValues("token").Observe(float64(contentCount))
}

func (m *Metrics) OnZeroStateRefreshCompleted(contentCount, tokenCount int) {
	m.refreshes.Inc()
	m.pageContents.WithLabelValues("refresh").Observe(float64(contentCount))
}

func (m *Metrics) OnSpinnerStarted() {
	m.spinnersStarted.Inc()
}

func (m *Metrics) OnSpinnerFinished(elapsed time.Duration) {
	m.spinnerDuration.WithLabelValues("completed").Observe(elapsed.Seconds())
}

func (m *Metrics) OnSpinnerDestroyedWithoutCompleting(elapsed time.Duration) {
	m.spinnerDuration.WithLabelValues("abandoned").Observe(elapsed.Seconds())
}

func (m *Metrics) OnTokenFailedToComplete(wasSynthetic bool, failureCount int) {
	m.tokenFailures.WithLabelValues(strconv.FormatBool(wasSynthetic)).Inc()
}

// InternalErrors exposes the internal error counter.
func (m *Metrics) InternalErrors() *prometheus.CounterVec { return m.internalErrors }

// ZeroStates exposes the zero state counter.
func (m *Metrics) ZeroStates() *prometheus.CounterVec { return m.zeroStates }
