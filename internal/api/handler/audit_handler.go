package handler

import (
	"github.com/gin-gonic/gin"

	"yuva-vikas/backend/internal/dto"
	"yuva-vikas/backend/internal/service"
	"yuva-vikas/backend/pkg/response"
)

// AuditHandler 审计流水模块 HTTP 处理器
type AuditHandler struct {
	auditSvc service.AuditService
}

// NewAuditHandler 创建 AuditHandler
func NewAuditHandler(auditSvc service.AuditService) *AuditHandler {
	return &AuditHandler{auditSvc: auditSvc}
}

// QueryAudit 查询审计流水
// GET /api/v1/audit
func (h *AuditHandler) QueryAudit(c *gin.Context) {
	var req dto.AuditQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	entries, total, err := h.auditSvc.Query(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OKPage(c, entries, total, req.GetPage(), req.GetPageSize())
}
