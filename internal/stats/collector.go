// Package stats counts lifetime activity and exports it to Prometheus and
// the admin endpoint.
package stats

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dkeye/Strangers/internal/core"
	"github.com/dkeye/Strangers/internal/domain"
)

// Collector implements core.EventSink.
type Collector struct {
	started time.Time

	visitors    atomic.Int64
	connections atomic.Int64
	messages    atomic.Int64

	visits   prometheus.Counter
	connects *prometheus.CounterVec
	online   *prometheus.GaugeVec
	received prometheus.Counter
	pairings *prometheus.CounterVec
}

// NewCollector registers its metrics on reg. A nil reg keeps the metrics
// unregistered.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		started: time.Now(),
		visits: f.NewCounter(prometheus.CounterOpts{
			Name: "strangers_visits_total",
			Help: "Page loads by visitors without a session cookie",
		}),
		connects: f.NewCounterVec(prometheus.CounterOpts{
			Name: "strangers_connections_total",
			Help: "WebSocket sessions opened",
		}, []string{"mode"}),
		online: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "strangers_online_sessions",
			Help: "Currently registered sessions",
		}, []string{"mode"}),
		received: f.NewCounter(prometheus.CounterOpts{
			Name: "strangers_messages_total",
			Help: "Chat messages received from participants",
		}),
		pairings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "strangers_pairings_total",
			Help: "Partners assigned, by partner kind",
		}, []string{"kind"}),
	}
}

var _ core.EventSink = (*Collector)(nil)

func (c *Collector) Visited() {
	c.visitors.Add(1)
	c.visits.Inc()
}

func (c *Collector) Connected(mode domain.Mode) {
	c.connections.Add(1)
	c.connects.WithLabelValues(string(mode)).Inc()
	c.online.WithLabelValues(string(mode)).Inc()
}

func (c *Collector) Disconnected(mode domain.Mode) {
	c.online.WithLabelValues(string(mode)).Dec()
}

func (c *Collector) MessageReceived() {
	c.messages.Add(1)
	c.received.Inc()
}

func (c *Collector) Paired(kind core.PairKind) {
	c.pairings.WithLabelValues(string(kind)).Inc()
}

// Lifetime holds counters since process start.
type Lifetime struct {
	TotalVisitors    int64 `json:"total_visitors"`
	TotalConnections int64 `json:"total_connections"`
	TotalMessages    int64 `json:"total_messages"`
	UptimeSeconds    int64 `json:"uptime_seconds"`
}

func (c *Collector) Lifetime() Lifetime {
	return Lifetime{
		TotalVisitors:    c.visitors.Load(),
		TotalConnections: c.connections.Load(),
		TotalMessages:    c.messages.Load(),
		UptimeSeconds:    int64(time.Since(c.started).Seconds()),
	}
}
