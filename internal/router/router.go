package router

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/gtd-inbox/config"
	_ "github.com/d60-Lab/gtd-inbox/docs"
	"github.com/d60-Lab/gtd-inbox/internal/api/handler"
	"github.com/d60-Lab/gtd-inbox/internal/api/middleware"
	"github.com/d60-Lab/gtd-inbox/pkg/response"
	"github.com/d60-Lab/gtd-inbox/pkg/validator"
)

// Setup 注册中间件和路由
func Setup(cfg *config.Config, h *handler.Handler) (*gin.Engine, error) {
	gin.SetMode(cfg.Server.Mode)
	if err := validator.Register(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
	// Recovery 放在最内层，panic 的 500 仍经过访问日志、链路和压缩
	r.Use(compress(), middleware.Recovery())

	r.NoRoute(func(c *gin.Context) { response.NotFound(c, "route not found") })

	r.GET("/healthz", h.Health)
	if cfg.Server.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	{
		inbox := v1.Group("/inbox")
		inbox.GET("", h.ListInbox)
		inbox.GET("/:id", h.GetInbox)
		inbox.POST("", h.CreateInbox)
		inbox.PUT("/:id", h.UpdateInbox)
		inbox.DELETE("/:id", h.DeleteInbox)
	}

	return r, nil
}

// compress DELETE 和 HEAD 的响应没有正文，不做 gzip
func compress() gin.HandlerFunc {
	gz := gzip.Gzip(gzip.DefaultCompression)
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodDelete, http.MethodHead:
			c.Next()
		default:
			gz(c)
		}
	}
}
