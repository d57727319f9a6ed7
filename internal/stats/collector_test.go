package stats_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Strangers/internal/app"
	"github.com/dkeye/Strangers/internal/core"
	"github.com/dkeye/Strangers/internal/domain"
	"github.com/dkeye/Strangers/internal/stats"
)

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := stats.NewCollector(reg)

	c.Visited()
	c.Visited()
	c.Connected(domain.ModeText)
	c.Connected(domain.ModeVideo)
	c.Disconnected(domain.ModeVideo)
	c.MessageReceived()
	c.Paired(core.PairSimulated)

	lt := c.Lifetime()
	assert.EqualValues(t, 2, lt.TotalVisitors)
	assert.EqualValues(t, 2, lt.TotalConnections)
	assert.EqualValues(t, 1, lt.TotalMessages)
	assert.GreaterOrEqual(t, lt.UptimeSeconds, int64(0))

	families, err := reg.Gather()
	require.NoError(t, err)
	got := map[string]int{}
	for _, f := range families {
		got[f.GetName()] = len(f.GetMetric())
	}
	assert.Equal(t, 1, got["strangers_visits_total"])
	assert.Equal(t, 2, got["strangers_connections_total"])
	assert.Equal(t, 2, got["strangers_online_sessions"])
	assert.Equal(t, 1, got["strangers_pairings_total"])
}

func TestReportShape(t *testing.T) {
	c := stats.NewCollector(nil)
	c.Connected(domain.ModeText)

	r := c.Report(app.Snapshot{Total: 3, TextMode: 2, VideoMode: 1, Waiting: 1, WithHuman: 2, TextQueue: 1})
	assert.Equal(t, stats.Online{Total: 3, TextMode: 2, VideoMode: 1, WaitingForPartner: 1, ChattingWithRealUser: 2}, r.Online)
	assert.Equal(t, stats.Queues{TextQueue: 1}, r.Queues)
	assert.EqualValues(t, 1, r.Lifetime.TotalConnections)
	assert.NotNil(t, r.Users)
}
