package handler

import (
	"github.com/gin-gonic/gin"

	"yuva-vikas/backend/internal/dto"
	"yuva-vikas/backend/internal/service"
	"yuva-vikas/backend/pkg/response"
)

// CarryForwardHandler 期末结转模块 HTTP 处理器
type CarryForwardHandler struct {
	carrySvc service.CarryForwardService
}

// NewCarryForwardHandler 创建 CarryForwardHandler
func NewCarryForwardHandler(carrySvc service.CarryForwardService) *CarryForwardHandler {
	return &CarryForwardHandler{carrySvc: carrySvc}
}

// GetQueue 期末扫描并返回结转待办队列
// GET /api/v1/carry-forward/queue
// 扫描本身会完结 pending==0 的过期目标，因此也要求操作员标识
func (h *CarryForwardHandler) GetQueue(c *gin.Context) {
	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}

	queue, err := h.carrySvc.ListQueue(c.Request.Context(), operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, queue)
}

// Resolve 批量结转决议
// POST /api/v1/carry-forward/resolve
func (h *CarryForwardHandler) Resolve(c *gin.Context) {
	var req dto.ResolveCarryForwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}

	result, err := h.carrySvc.Resolve(c.Request.Context(), &req, operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}
