package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveRequest("/api/builds/:id", "GET", 200, 10*time.Millisecond)
	c.ObserveRequest("/api/builds/:id", "GET", 200, 20*time.Millisecond)
	c.ObserveRequest("/api/builds/:id", "GET", 404, time.Millisecond)
	c.BuildStatus("success")
	c.Simulation()
	c.Deployment()
	c.Deployment()
	c.Webhook("push")

	assert.Equal(t, float64(2), testutil.ToFloat64(c.requests.WithLabelValues("/api/builds/:id", "GET", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.requests.WithLabelValues("/api/builds/:id", "GET", "404")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.builds.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.simulations))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.deployments))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.webhookPush.WithLabelValues("push")))
}
