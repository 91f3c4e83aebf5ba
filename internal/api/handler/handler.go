package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gtd-inbox/internal/service"
	"github.com/d60-Lab/gtd-inbox/pkg/response"
)

// Pinger 健康检查依赖
type Pinger func(ctx context.Context) error

// Handler 聚合各业务 handler 依赖的服务
type Handler struct {
	inboxService service.InboxService
	ping         Pinger
}

func NewHandler(inboxService service.InboxService, ping Pinger) *Handler {
	return &Handler{inboxService: inboxService, ping: ping}
}

// Health 健康检查
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /healthz [get]
func (h *Handler) Health(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			response.ServiceUnavailable(c, err)
			return
		}
	}
	response.Success(c, gin.H{"status": "ok"})
}
