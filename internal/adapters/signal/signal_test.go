package signal_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Strangers/internal/adapters/signal"
	"github.com/dkeye/Strangers/internal/app"
	"github.com/dkeye/Strangers/internal/app/orch"
	"github.com/dkeye/Strangers/internal/domain"
	"github.com/dkeye/Strangers/internal/protocol"
)

type inbound struct {
	Type            protocol.Type `json:"type"`
	UserID          string        `json:"user_id"`
	PartnerNickname string        `json:"partner_nickname"`
	Initiator       bool          `json:"initiator"`
	Nickname        string        `json:"nickname"`
	Message         string        `json:"message"`
}

func newServer(t *testing.T, limiter *signal.ConnectRateLimiter) (*httptest.Server, *orch.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	o := orch.New(app.NewRegistry(), nil, app.SimplePolicy{}, nil)
	ctl := signal.NewSignalWSController(o, limiter, signal.DefaultOptions())

	r := gin.New()
	r.GET("/ws/:nickname/:mode", func(c *gin.Context) {
		c.Set("client_token", "visitor")
		user, err := domain.NewUser(c.Param("nickname"))
		if err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		mode, err := domain.ParseMode(c.Param("mode"))
		if err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		ctl.HandleSignal(context.Background(), c, user, mode)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		o.Shutdown()
	})
	return srv, o
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func next(t *testing.T, ws *websocket.Conn) inbound {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	var msg inbound
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestVideoPairOverWebSocket(t *testing.T) {
	srv, _ := newServer(t, nil)

	a := dial(t, srv, "/ws/alice/video")
	connected := next(t, a)
	assert.Equal(t, protocol.TypeConnected, connected.Type)
	assert.NotEmpty(t, connected.UserID)

	b := dial(t, srv, "/ws/bob/video")
	assert.Equal(t, protocol.TypeConnected, next(t, b).Type)

	assert.Equal(t, inbound{Type: protocol.TypePartnerFound, PartnerNickname: "bob"}, next(t, a))
	assert.Equal(t, inbound{Type: protocol.TypePartnerFound, PartnerNickname: "alice", Initiator: true}, next(t, b))

	require.NoError(t, b.WriteMessage(websocket.TextMessage, []byte(`{"type":"chat_message","message":"hi"}`)))
	assert.Equal(t, inbound{Type: protocol.TypeChatMessage, Nickname: "bob", Message: "hi"}, next(t, a))

	require.NoError(t, b.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	assert.Equal(t, protocol.TypePong, next(t, b).Type)

	require.NoError(t, b.Close())
	assert.Equal(t, protocol.TypePartnerDisconnected, next(t, a).Type)
}

func TestSessionRemovedWhenSocketCloses(t *testing.T) {
	srv, o := newServer(t, nil)

	a := dial(t, srv, "/ws/alice/video")
	next(t, a)
	require.Equal(t, 1, o.Registry.Len())

	require.NoError(t, a.Close())
	require.Eventually(t, func() bool { return o.Registry.Len() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestConnectRateLimited(t *testing.T) {
	srv, _ := newServer(t, signal.NewConnectRateLimiter(1, time.Minute))
	dial(t, srv, "/ws/alice/video")

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/alice/video"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
