package handler

import (
	"github.com/gin-gonic/gin"

	"yuva-vikas/backend/internal/dto"
	"yuva-vikas/backend/internal/service"
	"yuva-vikas/backend/pkg/response"
)

// ReassignmentHandler 转派模块 HTTP 处理器
type ReassignmentHandler struct {
	reassignSvc service.ReassignmentService
}

// NewReassignmentHandler 创建 ReassignmentHandler
func NewReassignmentHandler(reassignSvc service.ReassignmentService) *ReassignmentHandler {
	return &ReassignmentHandler{reassignSvc: reassignSvc}
}

// Reassign 单目标转派
// POST /api/v1/reassignments
func (h *ReassignmentHandler) Reassign(c *gin.Context) {
	var req dto.ReassignTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}

	result, err := h.reassignSvc.Reassign(c.Request.Context(), &req, operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}

// ListTargetRecords 源目标的转派历史
// GET /api/v1/targets/:id/reassignments
func (h *ReassignmentHandler) ListTargetRecords(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "目标ID不能为空")
		return
	}

	records, err := h.reassignSvc.ListByTarget(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, records)
}

// ListEmployeeRecords 员工作为转出人或接收人的转派记录
// GET /api/v1/employees/:id/reassignments
func (h *ReassignmentHandler) ListEmployeeRecords(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "员工ID不能为空")
		return
	}

	records, err := h.reassignSvc.ListByEmployee(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, records)
}

// GetDepartureProposal 离职转派提案
// GET /api/v1/employees/:id/departure-proposal
func (h *ReassignmentHandler) GetDepartureProposal(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "员工ID不能为空")
		return
	}

	proposal, err := h.reassignSvc.ProposeDeparture(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, proposal)
}

// HandleDeparture 离职批量转派
// POST /api/v1/employees/:id/departure-reassignments
func (h *ReassignmentHandler) HandleDeparture(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "员工ID不能为空")
		return
	}

	var req dto.HandleDepartureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}

	result, err := h.reassignSvc.HandleDeparture(c.Request.Context(), id, &req, operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, result)
}
