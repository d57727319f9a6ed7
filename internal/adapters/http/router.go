package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Strangers/internal/adapters/rtc"
	"github.com/dkeye/Strangers/internal/adapters/signal"
	"github.com/dkeye/Strangers/internal/app/orch"
	"github.com/dkeye/Strangers/internal/config"
	"github.com/dkeye/Strangers/internal/domain"
	"github.com/dkeye/Strangers/internal/stats"
)

const visitedKey = "visited"

// Deps are the collaborators the router exposes over HTTP.
type Deps struct {
	Orch       *orch.Orchestrator
	Stats      *stats.Collector
	Gatherer   prometheus.Gatherer
	ICEServers []webrtc.ICEServer
}

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

type wsParams struct {
	Nickname string `uri:"nickname" binding:"required"`
	Mode     string `uri:"mode" binding:"required,oneof=text video"`
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("StrangersSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		countVisit(c, deps.Stats)
		c.File(cfg.StaticPath + "/index.html")
	})

	opts := signal.Options{ReadLimit: cfg.ReadLimit, PingPeriod: cfg.PingPeriod, SendBuffer: cfg.SendBuffer}
	limiter := signal.NewConnectRateLimiter(cfg.ConnectLimit, cfg.ConnectInterval)
	ctrl := signal.NewSignalWSController(deps.Orch, limiter, opts)

	r.GET("/ws/:nickname/:mode", func(c *gin.Context) {
		var p wsParams
		if err := c.ShouldBindUri(&p); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		user, err := domain.NewUser(p.Nickname)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		mode, err := domain.ParseMode(p.Mode)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Debug().Str("module", "adapters.http").Str("client", c.GetString("client_token")).Msg("ws endpoint hit")
		ctrl.HandleSignal(ctx, c, user, mode)
	})

	api := r.Group("/api")
	api.GET("/online-count", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"count": deps.Orch.Registry.Len()})
	})
	api.GET("/ice-servers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ice_servers": rtc.ClientServers(deps.ICEServers)})
	})
	api.GET("/admin/stats", adminStats(cfg.AdminKey, deps))

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")
	return r
}

// countVisit counts a visitor once per cookie session.
func countVisit(c *gin.Context, collector *stats.Collector) {
	s := sessions.Default(c)
	if s.Get(visitedKey) != nil {
		return
	}
	s.Set(visitedKey, true)
	if err := s.Save(); err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("save visitor session")
		return
	}
	if collector != nil {
		collector.Visited()
	}
}
