package routes

import (
	"net/http"

	"guesser/config"
	"guesser/controllers"
	"guesser/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type Deps struct {
	Config        *config.Config
	Log           zerolog.Logger
	Conversations controllers.Conversations
	Gatherer      prometheus.Gatherer
	// Limiter overrides the limiter built from Config.RateLimit.
	Limiter *middlewares.FixedWindowLimiter
}

func SetupRouter(d Deps) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(d.Config.TrustedProxies); err != nil {
		return nil, err
	}

	cc := controllers.NewConversationController(d.Conversations, d.Log)

	r.Use(cc.Recovery())
	r.Use(middlewares.Logger(d.Log))
	// preflight requests have no route, so CORS must be engine-wide
	r.Use(middlewares.CORS(d.Config.CORS.AllowedOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok\n")
	})
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/")
	if d.Config.RateLimit.Enabled {
		limiter := d.Limiter
		if limiter == nil {
			limiter = middlewares.NewFixedWindowLimiter(d.Config.RateLimit.Max, d.Config.RateLimit.Window)
		}
		api.Use(middlewares.RateLimit(limiter, d.Config.RateLimit.Message, middlewares.ForwardedClientIP(d.Config.ProxyHops)))
	}

	api.POST("/continue-conversation", cc.ContinueConversation)

	return r, nil
}
