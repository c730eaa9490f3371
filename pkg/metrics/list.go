package metrics

import "github.com/prometheus/client_golang/prometheus"

// ListMetrics counts list-view refreshes and the ones dropped by ticketing.
type ListMetrics struct {
	fetches    *prometheus.CounterVec
	superseded *prometheus.CounterVec
	stale      *prometheus.CounterVec
}

func NewListMetrics(reg prometheus.Registerer) *ListMetrics {
	if reg == nil {
		return &ListMetrics{}
	}
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "list_view_fetches_total",
		Help: "List view fetches sent to the backend.",
	}, []string{"view"})
	superseded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "list_view_superseded_total",
		Help: "List view updates abandoned during debounce because a newer one arrived.",
	}, []string{"view"})
	stale := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "list_view_stale_results_total",
		Help: "List view results discarded because a newer request was issued while fetching.",
	}, []string{"view"})
	reg.MustRegister(fetches, superseded, stale)
	return &ListMetrics{fetches: fetches, superseded: superseded, stale: stale}
}

func (l *ListMetrics) IncFetch(view string) {
	if l == nil || l.fetches == nil {
		return
	}
	l.fetches.WithLabelValues(normalizeLabel(view)).Inc()
}

func (l *ListMetrics) IncSuperseded(view string) {
	if l == nil || l.superseded == nil {
		return
	}
	l.superseded.WithLabelValues(normalizeLabel(view)).Inc()
}

func (l *ListMetrics) IncStale(view string) {
	if l == nil || l.stale == nil {
		return
	}
	l.stale.WithLabelValues(normalizeLabel(view)).Inc()
}
