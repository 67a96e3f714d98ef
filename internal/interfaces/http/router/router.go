// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"story-weaver-api/internal/config"
	"story-weaver-api/internal/interfaces/http/handler"
	"story-weaver-api/internal/interfaces/http/middleware"
)

// Handlers 路由依赖的处理器，Archive 为 nil 表示未启用归档
type Handlers struct {
	Session *handler.SessionHandler
	Archive *handler.ArchiveHandler
	Health  *handler.HealthHandler
	Limiter middleware.RateLimiter
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers
}

// New 创建新的路由器
func New(cfg *config.Config, handlers Handlers) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		cfg:      cfg,
		handlers: handlers,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.SessionScope())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics(r.metricsPath()))
	}

	r.engine.Use(middleware.AccessLog("/health", "/live", "/ready", r.metricsPath()))
}

func (r *Router) metricsPath() string {
	if r.cfg.Observability.Metrics.Path != "" {
		return r.cfg.Observability.Metrics.Path
	}
	return "/metrics"
}

// defaultAPIKey 默认 provider 的服务端凭证
func (r *Router) defaultAPIKey() string {
	return r.cfg.LLM.Providers[r.cfg.LLM.DefaultProvider].APIKey
}

func (r *Router) setupRoutes() {
	if h := r.handlers.Health; h != nil {
		r.engine.GET("/health", h.Health)
		r.engine.GET("/ready", h.Ready)
		r.engine.GET("/live", h.Live)
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.metricsPath(), gin.WrapH(promhttp.Handler()))
	}

	v1 := r.engine.Group("/v1")
	v1.Use(middleware.LLMAPIKey(r.defaultAPIKey()))

	v1.GET("/styles/voices", handler.ListVoices)

	limit := middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:  r.cfg.Security.RateLimit.Enabled,
		Requests: r.cfg.Security.RateLimit.Requests,
		Window:   r.cfg.Security.RateLimit.Window,
	}, r.handlers.Limiter)

	if sh := r.handlers.Session; sh != nil {
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", sh.CreateSession)
			sessions.GET("/:id", sh.GetSession)
			sessions.DELETE("/:id", sh.ResetSession)

			// 触发模型调用的接口
			sessions.POST("/:id/messages", limit, sh.SendMessage)
			sessions.PUT("/:id/details", limit, sh.UpdateDetails)
			sessions.PUT("/:id/voice", limit, sh.ChangeVoice)
			sessions.POST("/:id/author", limit, sh.EmulateAuthor)
			sessions.POST("/:id/characters", limit, sh.AddCharacter)
			sessions.POST("/:id/compile", limit, sh.CompileStory)

			if ah := r.handlers.Archive; ah != nil {
				sessions.GET("/:id/archives", ah.ListSessionArchives)
			}
		}
	}

	if ah := r.handlers.Archive; ah != nil {
		v1.GET("/archives/:id", ah.GetArchive)
	}
}
