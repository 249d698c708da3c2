package handler

import (
	"github.com/gin-gonic/gin"

	"yuva-vikas/backend/internal/service"
	pkgerrors "yuva-vikas/backend/pkg/errors"
	"yuva-vikas/backend/pkg/response"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Employee     *EmployeeHandler
	Target       *TargetHandler
	CarryForward *CarryForwardHandler
	Reassignment *ReassignmentHandler
	Audit        *AuditHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Employee:     NewEmployeeHandler(svc.Employee),
		Target:       NewTargetHandler(svc.Target),
		CarryForward: NewCarryForwardHandler(svc.CarryForward),
		Reassignment: NewReassignmentHandler(svc.Reassignment),
		Audit:        NewAuditHandler(svc.Audit),
	}
}

// handleServiceError 按业务错误类别统一映射 HTTP 状态码
// Service 层的哨兵错误带中文文案，直接透传给调用方
func handleServiceError(c *gin.Context, err error) {
	switch pkgerrors.KindOf(err) {
	case pkgerrors.KindNotFound:
		response.NotFound(c, 20001, err.Error())
	case pkgerrors.KindInvalidArgument:
		response.BadRequest(c, 20002, err.Error())
	case pkgerrors.KindInvalidState:
		response.Conflict(c, 20003, err.Error())
	case pkgerrors.KindIncompleteMapping:
		response.UnprocessableEntity(c, 20004, err.Error())
	case pkgerrors.KindPolicyViolation:
		response.UnprocessableEntity(c, 20005, err.Error())
	default:
		response.InternalError(c)
	}
}
