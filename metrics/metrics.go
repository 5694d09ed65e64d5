// Package metrics provides an opk.Statter backed by prometheus, so a
// long-lived process embedding the pipeline can expose its counters.
package metrics

import (
	"strings"
	"sync"
	"time"

	opk "github.com/iomega/opk"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements opk.Statter on a private prometheus registry.
// Collectors are created on first use of each stat name.
type Collector struct {
	reg *prometheus.Registry

	mu       sync.Mutex
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	timings  map[string]prometheus.Histogram
}

var _ opk.Statter = (*Collector)(nil)

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		reg:      prometheus.NewRegistry(),
		counters: make(map[string]prometheus.Counter),
		gauges:   make(map[string]prometheus.Gauge),
		timings:  make(map[string]prometheus.Histogram),
	}
}

// Registry exposes the underlying registry for exposition handlers.
func (c *Collector) Registry() *prometheus.Registry {
	return c.reg
}

// Count implements opk.Statter.
func (c *Collector) Count(name string, value int64, rate float64, tags ...string) {
	c.counter(name).Add(float64(value))
}

// Gauge implements opk.Statter.
func (c *Collector) Gauge(name string, value float64, rate float64, tags ...string) {
	c.gauge(name).Set(value)
}

// Timing implements opk.Statter.
func (c *Collector) Timing(name string, value time.Duration, rate float64, tags ...string) {
	c.timing(name).Observe(value.Seconds())
}

func (c *Collector) counter(name string) prometheus.Counter {
	c.mu.Lock()
	defer c.mu.Unlock()
	ctr, ok := c.counters[name]
	if !ok {
		ctr = prometheus.NewCounter(prometheus.CounterOpts{Name: promName(name) + "_total"})
		c.reg.MustRegister(ctr)
		c.counters[name] = ctr
	}
	return ctr
}

func (c *Collector) gauge(name string) prometheus.Gauge {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.gauges[name]
	if !ok {
		g = prometheus.NewGauge(prometheus.GaugeOpts{Name: promName(name)})
		c.reg.MustRegister(g)
		c.gauges[name] = g
	}
	return g
}

func (c *Collector) timing(name string) prometheus.Histogram {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.timings[name]
	if !ok {
		h = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    promName(name) + "_seconds",
			Buckets: prometheus.DefBuckets,
		})
		c.reg.MustRegister(h)
		c.timings[name] = h
	}
	return h
}

func promName(name string) string {
	r := strings.NewReplacer(".", "_", "-", "_")
	return "opk_" + r.Replace(name)
}
