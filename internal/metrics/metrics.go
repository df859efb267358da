// Package metrics exposes prometheus collectors for the tracker's render
// driver, memoized selectors and store actions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tally"

// Action outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeNoop    = "noop"
	OutcomeError   = "error"
)

// Collectors groups the tracker metrics. A nil *Collectors is valid and
// records nothing.
type Collectors struct {
	RendersTotal          prometheus.Counter
	MemoComputationsTotal *prometheus.CounterVec
	ActionsTotal          *prometheus.CounterVec
	ExpensesGauge         prometheus.Gauge
	FetchDuration         prometheus.Histogram
}

// New registers the collectors with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Collectors {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collectors{
		RendersTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Total number of render passes",
		}),
		MemoComputationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memo_computations_total",
			Help:      "Selector recomputations caused by stale dependencies",
		}, []string{"selector"}),
		ActionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Store actions by name and outcome",
		}, []string{"action", "outcome"}),
		ExpensesGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "expenses",
			Help:      "Number of expenses in the working collection",
		}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of the initial expense fetch",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (c *Collectors) Render() {
	if c == nil {
		return
	}
	c.RendersTotal.Inc()
}

func (c *Collectors) Computed(selector string) {
	if c == nil {
		return
	}
	c.MemoComputationsTotal.WithLabelValues(selector).Inc()
}

func (c *Collectors) Action(action, outcome string) {
	if c == nil {
		return
	}
	c.ActionsTotal.WithLabelValues(action, outcome).Inc()
}

func (c *Collectors) SetExpenses(n int) {
	if c == nil {
		return
	}
	c.ExpensesGauge.Set(float64(n))
}

func (c *Collectors) ObserveFetch(d time.Duration) {
	if c == nil {
		return
	}
	c.FetchDuration.Observe(d.Seconds())
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
