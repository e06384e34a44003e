package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "count_jobs_in_queue",
	Help: "Number of jobs in queue",
})

var dispatcherSignalCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "dispatcher_signal_count",
	Help: "How often the dispatcher has signaled to start worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active workers",
})

var retrievalFallbacks = promauto.NewCounter(prometheus.CounterOpts{
	Name: "rag_retrieval_fallback_total",
	Help: "Searches answered by lexical ranking instead of embeddings",
})

var generationFallbacks = promauto.NewCounter(prometheus.CounterOpts{
	Name: "rag_generation_fallback_total",
	Help: "Answers built from the template because the model failed",
})

var ingestRejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rag_ingest_rejected_total",
	Help: "Rejected document ingests labelled by reason",
}, []string{"reason"})

var modelLoads = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rag_model_load_total",
	Help: "Generation model load attempts labelled by outcome",
}, []string{"outcome"})

var modelState = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "rag_model_state",
	Help: "Generation model state: 0 unloaded, 1 loading, 2 ready",
})

// HttpStatusRecorder keeps the status code written by the wrapped handler.
type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming handlers working behind the recorder.
func (r *HttpStatusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *HttpStatusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func IncrementJobsInQueue() {
	countJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	countJobsInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignalCount.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}
func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func RetrievalFallback() {
	retrievalFallbacks.Inc()
}

func GenerationFallback() {
	generationFallbacks.Inc()
}

func IngestRejected(reason string) {
	ingestRejections.WithLabelValues(reason).Inc()
}

func ModelLoad(outcome string) {
	modelLoads.WithLabelValues(outcome).Inc()
}

func SetModelState(state int) {
	modelState.Set(float64(state))
}

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "process_request_duration_seconds",
	Help:    "Total time spent processing a job.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30, 60, 120},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 30, 60},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureJobMetrics(label string, timeElapsed time.Duration) {
	requestDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
