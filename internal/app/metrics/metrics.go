package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "cidash"

	routeLabel  = "route"
	methodLabel = "method"
	codeLabel   = "code"
	statusLabel = "status"
)

// NewRegistry creates the registry that the collectors are registered in, used for DI.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	return reg
}

// Collector keeps the application metrics.
type Collector struct {
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	builds      *prometheus.CounterVec
	simulations prometheus.Counter
	deployments prometheus.Counter
	webhookPush *prometheus.CounterVec
}

// NewCollector creates the collectors and registers them.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "the number of handled API requests",
		}, []string{routeLabel, methodLabel, codeLabel}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "the latency of API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{routeLabel, methodLabel}),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "build_status_updates_total",
			Help:      "the number of build status updates by the new status",
		}, []string{statusLabel}),
		simulations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulated_builds_total",
			Help:      "the number of builds completed by the simulator",
		}),
		deployments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deployments_total",
			Help:      "the number of created deployments",
		}),
		webhookPush: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_deliveries_total",
			Help:      "the number of webhook deliveries by event",
		}, []string{"event"}),
	}
	reg.MustRegister(c.requests, c.latency, c.builds, c.simulations, c.deployments, c.webhookPush)
	return c
}

// ObserveRequest counts the handled request.
func (c *Collector) ObserveRequest(route, method string, code int, took time.Duration) {
	c.requests.With(prometheus.Labels{routeLabel: route, methodLabel: method, codeLabel: strconv.Itoa(code)}).Inc()
	c.latency.With(prometheus.Labels{routeLabel: route, methodLabel: method}).Observe(took.Seconds())
}

// BuildStatus counts the build status update.
func (c *Collector) BuildStatus(status string) {
	c.builds.With(prometheus.Labels{statusLabel: status}).Inc()
}

// Simulation counts the simulated build.
func (c *Collector) Simulation() {
	c.simulations.Inc()
}

// Deployment counts the created deployment.
func (c *Collector) Deployment() {
	c.deployments.Inc()
}

// Webhook counts the webhook delivery.
func (c *Collector) Webhook(event string) {
	c.webhookPush.With(prometheus.Labels{"event": event}).Inc()
}
