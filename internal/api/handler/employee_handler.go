package handler

import (
	"github.com/gin-gonic/gin"

	"yuva-vikas/backend/internal/dto"
	"yuva-vikas/backend/internal/service"
	"yuva-vikas/backend/pkg/response"
)

// EmployeeHandler 员工目录模块 HTTP 处理器
type EmployeeHandler struct {
	employeeSvc service.EmployeeService
}

// NewEmployeeHandler 创建 EmployeeHandler
func NewEmployeeHandler(employeeSvc service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeSvc: employeeSvc}
}

// CreateEmployee 录入员工
// POST /api/v1/employees
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req dto.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}

	emp, err := h.employeeSvc.Create(c.Request.Context(), &req, operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, emp)
}

// GetEmployee 查询员工详情
// GET /api/v1/employees/:id
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "员工ID不能为空")
		return
	}

	emp, err := h.employeeSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, emp)
}

// ListEmployees 查询员工列表
// GET /api/v1/employees
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	var req dto.EmployeeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	emps, total, err := h.employeeSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OKPage(c, emps, total, req.GetPage(), req.GetPageSize())
}

// UpdateEmployee 更新员工信息
// PUT /api/v1/employees/:id
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "员工ID不能为空")
		return
	}

	var req dto.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}

	emp, err := h.employeeSvc.Update(c.Request.Context(), id, &req, operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, emp)
}

// DepartEmployee 员工离职
// PUT /api/v1/employees/:id/depart
func (h *EmployeeHandler) DepartEmployee(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "员工ID不能为空")
		return
	}

	var req dto.DepartEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	operatorID, ok := MustGetOperatorID(c)
	if !ok {
		return
	}

	emp, err := h.employeeSvc.Depart(c.Request.Context(), id, &req, operatorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.OK(c, emp)
}
