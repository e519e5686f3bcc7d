package collector

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ErrMetricsNotInitialized = errors.New("MetricsCollector not initialized")

var (
	once sync.Once
	mc   *MetricsCollector
)

type SourceMetrics struct {
	LookupStatus string
	SourceName   string
}

type MetricsCollector struct {
	mu            sync.Mutex
	sourceMetrics map[string]*SourceMetrics

	lookupCount        *prometheus.CounterVec
	lookupSuccessCount *prometheus.CounterVec
	lookupFailedCount  *prometheus.CounterVec
	lookupDuration     *prometheus.GaugeVec
	hostnamesFetched   *prometheus.CounterVec
	subdomainsAccepted *prometheus.CounterVec
	cacheHits          *prometheus.CounterVec
	newHostnames       *prometheus.CounterVec
}

func GetMetricsCollector() (*MetricsCollector, error) {
	if mc == nil {
		return nil, ErrMetricsNotInitialized
	}
	return mc, nil
}

// NewMetricsCollector registers the Prometheus metrics once and returns the shared collector.
func NewMetricsCollector(sourceNames []string) *MetricsCollector {
	once.Do(func() {
		_mc := &MetricsCollector{
			sourceMetrics: make(map[string]*SourceMetrics),

			lookupCount: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "crtsubs_lookups_total",
				Help: "Total number of domain lookups started by source.",
			}, []string{"source"}),

			lookupSuccessCount: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "crtsubs_lookups_success_total",
				Help: "Total number of domain lookups that fetched and parsed successfully.",
			}, []string{"source"}),

			lookupFailedCount: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "crtsubs_lookups_failed_total",
				Help: "Total number of domain lookups whose fetch or parse failed.",
			}, []string{"source"}),

			lookupDuration: promauto.NewGaugeVec(prometheus.GaugeOpts{
				Name: "crtsubs_lookup_duration_seconds",
				Help: "Duration of the most recent lookup in seconds.",
			}, []string{"source"}),

			hostnamesFetched: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "crtsubs_hostnames_fetched_total",
				Help: "Unique raw hostnames extracted from certificate records.",
			}, []string{"source"}),

			subdomainsAccepted: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "crtsubs_subdomains_accepted_total",
				Help: "Hostnames that passed subdomain validation.",
			}, []string{"source"}),

			cacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "crtsubs_response_cache_hits_total",
				Help: "Lookups answered from the response cache.",
			}, []string{"source"}),

			newHostnames: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "crtsubs_watch_new_hostnames_total",
				Help: "Hostnames recorded for the first time by watch runs.",
			}, []string{"source"}),
		}
		for _, name := range sourceNames {
			_mc.sourceMetrics[name] = &SourceMetrics{SourceName: name, LookupStatus: "idle"}
		}

		mc = _mc
	})

	return mc
}

func (mc *MetricsCollector) getSourceMetrics(source string) *SourceMetrics {
	if _, exists := mc.sourceMetrics[source]; !exists {
		mc.sourceMetrics[source] = &SourceMetrics{SourceName: source, LookupStatus: "idle"}
	}
	return mc.sourceMetrics[source]
}

func (mc *MetricsCollector) setStatus(source, status string) {
	mc.mu.Lock()
	mc.getSourceMetrics(source).LookupStatus = status
	mc.mu.Unlock()
}

func (mc *MetricsCollector) SetLookupRunning(source string) {
	mc.setStatus(source, "running")
	mc.lookupCount.With(prometheus.Labels{"source": source}).Inc()
}

func (mc *MetricsCollector) SetLookupSuccess(source string, duration time.Duration) {
	mc.setStatus(source, "success")
	mc.lookupSuccessCount.With(prometheus.Labels{"source": source}).Inc()
	mc.lookupDuration.With(prometheus.Labels{"source": source}).Set(duration.Seconds())
}

// SetLookupFailed records a failed lookup. The error itself only goes to the logs.
func (mc *MetricsCollector) SetLookupFailed(source string, err error, duration time.Duration) {
	mc.setStatus(source, "failed")
	mc.lookupFailedCount.With(prometheus.Labels{"source": source}).Inc()
	mc.lookupDuration.With(prometheus.Labels{"source": source}).Set(duration.Seconds())
}

func (mc *MetricsCollector) IncrementHostnamesFetched(source string, count int) {
	mc.hostnamesFetched.With(prometheus.Labels{"source": source}).Add(float64(count))
}

func (mc *MetricsCollector) IncrementSubdomainsAccepted(source string, count int) {
	mc.subdomainsAccepted.With(prometheus.Labels{"source": source}).Add(float64(count))
}

func (mc *MetricsCollector) IncrementCacheHits(source string) {
	mc.cacheHits.With(prometheus.Labels{"source": source}).Inc()
}

func (mc *MetricsCollector) IncrementNewHostnames(source string, count int) {
	mc.newHostnames.With(prometheus.Labels{"source": source}).Add(float64(count))
}

// GetAllSourceMetrics returns a snapshot of the per-source status.
func (mc *MetricsCollector) GetAllSourceMetrics() map[string]*SourceMetrics {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	metricsCopy := make(map[string]*SourceMetrics, len(mc.sourceMetrics))
	for name, metrics := range mc.sourceMetrics {
		metricsCopy[name] = &SourceMetrics{
			SourceName:   name,
			LookupStatus: metrics.LookupStatus,
		}
	}
	return metricsCopy
}

func (sm *SourceMetrics) String() string {
	return fmt.Sprintf(`Source: %s, Status: %s (Detailed metrics in Prometheus)`, sm.SourceName, sm.LookupStatus)
}
