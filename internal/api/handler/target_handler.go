package handler

import (
	"github.com/gin-gonic/gin"

	"yuva-vikas/backend/internal/dto"
	"yuva-vikas/backend/internal/service"
	"yuva-vikas/backend/pkg/response"
)

// TargetHandler 目标模块 HTTP 处理器
type TargetHandler struct {
	targetSvc service.TargetService
}

// NewTargetHandler 创建 TargetHandler
func NewTargetHandler(targetSvc service.TargetService) *TargetHandler {
	return &TargetHandler{targetSvc: targetSvc}
}

// CreateTarget 分配新目标
// POST /api/v1/targets
func (h *TargetHandler) CreateTarget(c *gin.Context) {
	var req dto.CreateTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}

	target, err := h.targetSvc.Create(c.Request.Context(), &req, operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, target)
}

// GetTarget 查询目标详情
// GET /api/v1/targets/:id
func (h *TargetHandler) GetTarget(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "目标ID不能为空")
		return
	}

	target, err := h.targetSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, target)
}

// ListTargets 查询目标列表
// GET /api/v1/targets
func (h *TargetHandler) ListTargets(c *gin.Context) {
	var req dto.TargetListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	targets, total, err := h.targetSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OKPage(c, targets, total, req.GetPage(), req.GetPageSize())
}

// RecordProgress 登记目标进度
// POST /api/v1/targets/:id/progress
func (h *TargetHandler) RecordProgress(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "目标ID不能为空")
		return
	}

	var req dto.RecordProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}

	target, err := h.targetSvc.RecordProgress(c.Request.Context(), id, req.Delta, operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, target)
}
