package query

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the cache's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	hits          prometheus.Counter
	staleHits     prometheus.Counter
	misses        prometheus.Counter
	fetches       *prometheus.CounterVec
	invalidations prometheus.Counter
	inFlight      prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on registerer when it
// is not nil.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "iot_dashboard_query_cache_hits_total",
			Help: "Reads answered from a fresh cache entry.",
		}),
		staleHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "iot_dashboard_query_cache_stale_hits_total",
			Help: "Reads answered from a stale entry while it revalidates.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "iot_dashboard_query_cache_misses_total",
			Help: "Reads that had to wait for a fetch.",
		}),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iot_dashboard_query_fetches_total",
				Help: "Completed fetches by result.",
			},
			[]string{"result"},
		),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "iot_dashboard_query_invalidations_total",
			Help: "Entries marked invalid by mutations.",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "iot_dashboard_query_in_flight",
			Help: "Fetches currently running.",
		}),
	}

	if registerer != nil {
		registerer.MustRegister(
			metrics.hits,
			metrics.staleHits,
			metrics.misses,
			metrics.fetches,
			metrics.invalidations,
			metrics.inFlight,
		)
	}

	return metrics
}

func (metrics *Metrics) hit() {
	if metrics != nil {
		metrics.hits.Inc()
	}
}

func (metrics *Metrics) staleHit() {
	if metrics != nil {
		metrics.staleHits.Inc()
	}
}

func (metrics *Metrics) miss() {
	if metrics != nil {
		metrics.misses.Inc()
	}
}

func (metrics *Metrics) fetched(result string) {
	if metrics != nil {
		metrics.fetches.WithLabelValues(result).Inc()
	}
}

func (metrics *Metrics) invalidated(n int) {
	if metrics != nil {
		metrics.invalidations.Add(float64(n))
	}
}

func (metrics *Metrics) flightStarted() {
	if metrics != nil {
		metrics.inFlight.Inc()
	}
}

func (metrics *Metrics) flightDone() {
	if metrics != nil {
		metrics.inFlight.Dec()
	}
}
