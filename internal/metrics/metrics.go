// Package metrics collects Prometheus telemetry for content events and
// nodectl commands. nodectl runs to completion, so the collected values are
// written as a node_exporter textfile instead of being scraped.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns a private registry with the store's collectors.
type Collector struct {
	registry *prometheus.Registry

	events         *prometheus.CounterVec
	eventFailures  *prometheus.CounterVec
	commands       *prometheus.CounterVec
	commandLatency *prometheus.HistogramVec
}

func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "nodestore"
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.events = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "dispatched_total",
			Help:      "Content events handed to the dispatcher, by type",
		},
		[]string{"type"},
	)
	c.eventFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "failed_total",
			Help:      "Content events the dispatcher rejected, by type",
		},
		[]string{"type"},
	)
	c.commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "command",
			Name:      "runs_total",
			Help:      "nodectl command runs, by command and result",
		},
		[]string{"command", "result"},
	)
	c.commandLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "command",
			Name:      "duration_seconds",
			Help:      "nodectl command duration",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	c.registry.MustRegister(c.events, c.eventFailures, c.commands, c.commandLatency)
	return c
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) RecordEvent(eventType string, err error) {
	c.events.WithLabelValues(eventType).Inc()
	if err != nil {
		c.eventFailures.WithLabelValues(eventType).Inc()
	}
}

func (c *Collector) RecordCommand(command string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.commands.WithLabelValues(command, result).Inc()
	c.commandLatency.WithLabelValues(command).Observe(d.Seconds())
}

// WriteTextfile atomically writes every collected metric to path in the
// text exposition format.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
