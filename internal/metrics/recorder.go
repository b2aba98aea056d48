package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes the latest aggregates and request counts as Prometheus metrics.
type Recorder struct {
	// mu keeps the replace of one resource's series atomic
	mu sync.Mutex

	utilization *prometheus.GaugeVec
	usage       *prometheus.GaugeVec
	capacity    *prometheus.GaugeVec
	requests    *prometheus.CounterVec
}

// NewRecorder registers the collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		utilization: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cluster_rag_agent_utilization_percent",
			Help: "Latest utilization percentage per resource and subject (\"_cluster\" for the total)",
		}, []string{"resource", "subject"}),
		usage: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cluster_rag_agent_usage",
			Help: "Latest usage per resource and subject in base units (cores, bytes)",
		}, []string{"resource", "subject"}),
		capacity: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cluster_rag_agent_capacity",
			Help: "Latest capacity per resource and subject in base units (cores, bytes)",
		}, []string{"resource", "subject"}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cluster_rag_agent_requests_total",
			Help: "Requests served per front end, operation and outcome",
		}, []string{"frontend", "operation", "outcome"}),
	}
}

// ClusterSubject labels the cluster-wide series.
const ClusterSubject = "_cluster"

// RecordAggregate publishes an aggregate for resource ("cpu" or "memory"),
// replacing every series previously recorded for that resource.
// A nil Recorder is a no-op.
func (r *Recorder) RecordAggregate(resource string, result *Result) {
	if r == nil || result == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stale := prometheus.Labels{"resource": resource}
	r.usage.DeletePartialMatch(stale)
	r.capacity.DeletePartialMatch(stale)
	r.utilization.DeletePartialMatch(stale)

	r.set(resource, ClusterSubject, result.TotalUsage, result.TotalCapacity, result.UtilizationPercent)
	for _, s := range result.Subjects {
		r.set(resource, s.Name, s.Usage, s.Capacity, s.UtilizationPercent)
	}
}

// RecordRequest counts one served request.
func (r *Recorder) RecordRequest(frontend, operation, outcome string) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(frontend, operation, outcome).Inc()
}

func (r *Recorder) set(resource, subject string, usage, capacity, util float64) {
	r.usage.WithLabelValues(resource, subject).Set(usage)
	r.capacity.WithLabelValues(resource, subject).Set(capacity)
	r.utilization.WithLabelValues(resource, subject).Set(util)
}
