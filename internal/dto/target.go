package dto

// ── 目标模块 DTO ──

// CreateTargetRequest 分配目标请求
type CreateTargetRequest struct {
	Type        string `json:"type"         binding:"required"`
	AssignedTo  string `json:"assigned_to"  binding:"required,uuid"`
	Value       int    `json:"value"        binding:"min=0"`
	PeriodStart string `json:"period_start" binding:"required,datetime=2006-01-02"`
	PeriodEnd   string `json:"period_end"   binding:"required,datetime=2006-01-02"`
}

// RecordProgressRequest 登记目标进度请求
type RecordProgressRequest struct {
	// Delta 本次新增完成量；负数由 Service 层拒绝并返回 InvalidArgument
	Delta int `json:"delta"`
}

// TargetListRequest 目标列表查询参数
type TargetListRequest struct {
	Type        string `form:"type"`
	Role        string `form:"role"`
	Status      string `form:"status"`
	EmployeeID  string `form:"employee_id"  binding:"omitempty,uuid"`
	Name        string `form:"name"         binding:"omitempty,max=100"`
	PeriodStart string `form:"period_start" binding:"omitempty,datetime=2006-01-02"`
	PeriodEnd   string `form:"period_end"   binding:"omitempty,datetime=2006-01-02"`
	PaginationRequest
}

// TargetResponse 目标响应（含派生字段）
type TargetResponse struct {
	ID               string  `json:"id"`
	Type             string  `json:"type"`
	AssignedTo       string  `json:"assigned_to"`
	AssignedToName   string  `json:"assigned_to_name"`
	AssignedToRole   string  `json:"assigned_to_role"`
	Value            int     `json:"value"`
	Achieved         int     `json:"achieved"`
	Pending          int     `json:"pending"`
	Progress         int     `json:"progress"`
	PeriodStart      string  `json:"period_start"`
	PeriodEnd        string  `json:"period_end"`
	Status           string  `json:"status"`
	AssignedBy       string  `json:"assigned_by"`
	CarriedFromID    *string `json:"carried_from_id,omitempty"`
	ReassignedFromID *string `json:"reassigned_from_id,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}
