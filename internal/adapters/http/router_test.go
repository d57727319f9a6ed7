package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	router "github.com/dkeye/Strangers/internal/adapters/http"
	"github.com/dkeye/Strangers/internal/app"
	"github.com/dkeye/Strangers/internal/app/orch"
	"github.com/dkeye/Strangers/internal/config"
	"github.com/dkeye/Strangers/internal/core"
	"github.com/dkeye/Strangers/internal/domain"
	"github.com/dkeye/Strangers/internal/stats"
)

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }

func (nopConn) Close() {}

type fixture struct {
	engine *gin.Engine
	orch   *orch.Orchestrator
	stats  *stats.Collector
}

func newFixture(t *testing.T, adminKey string) fixture {
	t.Helper()
	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<html></html>"), 0o600))

	cfg := &config.Config{
		Mode:            "test",
		StaticPath:      static,
		ReadLimit:       32768,
		PingPeriod:      time.Minute,
		SendBuffer:      8,
		Secret:          "test-secret",
		AdminKey:        adminKey,
		ConnectLimit:    10,
		ConnectInterval: time.Minute,
	}
	reg := prometheus.NewRegistry()
	collector := stats.NewCollector(reg)
	o := orch.New(app.NewRegistry(), nil, app.SimplePolicy{}, collector)
	t.Cleanup(o.Shutdown)

	engine := router.SetupRouter(context.Background(), cfg, router.Deps{
		Orch:       o,
		Stats:      collector,
		Gatherer:   reg,
		ICEServers: []webrtc.ICEServer{{URLs: []string{"stun:stun.example.org:3478"}}},
	})
	return fixture{engine: engine, orch: o, stats: collector}
}

func (f fixture) get(path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestOnlineCount(t *testing.T) {
	f := newFixture(t, "")
	u, _ := domain.NewUser("alice")
	f.orch.Connect(nopConn{}, u, domain.ModeVideo)

	w := f.get("/api/online-count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1}`, w.Body.String())
}

func TestAdminStatsDisabledWithoutKey(t *testing.T) {
	f := newFixture(t, "")
	w := f.get("/api/admin/stats", http.Header{"X-Admin-Key": {""}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminStatsRequiresKey(t *testing.T) {
	f := newFixture(t, "s3cret")
	assert.Equal(t, http.StatusUnauthorized, f.get("/api/admin/stats", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, f.get("/api/admin/stats", http.Header{"X-Admin-Key": {"wrong"}}).Code)
}

func TestAdminStatsReport(t *testing.T) {
	f := newFixture(t, "s3cret")
	alice, _ := domain.NewUser("alice")
	bob, _ := domain.NewUser("bob")
	carol, _ := domain.NewUser("carol")
	f.orch.Connect(nopConn{}, alice, domain.ModeVideo)
	f.orch.Connect(nopConn{}, bob, domain.ModeVideo)
	f.orch.Connect(nopConn{}, carol, domain.ModeText)

	w := f.get("/api/admin/stats", http.Header{"X-Admin-Key": {"s3cret"}})
	require.Equal(t, http.StatusOK, w.Code)

	var report stats.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, stats.Online{
		Total:                3,
		TextMode:             1,
		VideoMode:            2,
		WaitingForPartner:    1,
		ChattingWithRealUser: 2,
	}, report.Online)
	assert.Equal(t, stats.Queues{TextQueue: 1}, report.Queues)
	assert.EqualValues(t, 3, report.Lifetime.TotalConnections)
	assert.Len(t, report.Users, 3)
}

func TestICEServers(t *testing.T) {
	f := newFixture(t, "")
	w := f.get("/api/ice-servers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ice_servers":[{"urls":["stun:stun.example.org:3478"]}]}`, w.Body.String())
}

func TestIndexCountsVisitorOnce(t *testing.T) {
	f := newFixture(t, "")

	first := f.get("/", nil)
	require.Equal(t, http.StatusOK, first.Code)
	cookies := first.Result().Cookies()
	require.NotEmpty(t, cookies)

	header := http.Header{}
	for _, c := range cookies {
		header.Add("Cookie", c.String())
	}
	require.Equal(t, http.StatusOK, f.get("/", header).Code)

	assert.EqualValues(t, 1, f.stats.Lifetime().TotalVisitors)
}

func TestMetricsExposed(t *testing.T) {
	f := newFixture(t, "")
	u, _ := domain.NewUser("alice")
	f.orch.Connect(nopConn{}, u, domain.ModeText)

	w := f.get("/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `strangers_connections_total{mode="text"} 1`)
}

func TestWebSocketRejectsBadParams(t *testing.T) {
	f := newFixture(t, "")
	assert.Equal(t, http.StatusBadRequest, f.get("/ws/alice/audio", nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.get("/ws/"+strings.Repeat("x", 37)+"/text", nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.get("/ws/%20%20/text", nil).Code)
}

func TestWebSocketConnects(t *testing.T) {
	f := newFixture(t, "")
	srv := httptest.NewServer(f.engine)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/alice/video"
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()
	_ = resp.Body.Close()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type   string `json:"type"`
		UserID string `json:"user_id"`
	}
	require.NoError(t, ws.ReadJSON(&msg))
	assert.Equal(t, "connected", msg.Type)
	assert.NotEmpty(t, msg.UserID)
	assert.Equal(t, 1, f.orch.Registry.Len())
}
