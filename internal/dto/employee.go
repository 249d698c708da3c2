package dto

// ── 员工目录模块 DTO ──

// CreateEmployeeRequest 录入员工请求（目录协作方调用）
type CreateEmployeeRequest struct {
	Name      string  `json:"name"       binding:"required,min=2,max=100"`
	Role      string  `json:"role"       binding:"required"`
	ManagerID *string `json:"manager_id" binding:"omitempty,uuid"`
	State     string  `json:"state"      binding:"omitempty,max=50"`
}

// UpdateEmployeeRequest 更新员工信息请求
type UpdateEmployeeRequest struct {
	Name      *string `json:"name"       binding:"omitempty,min=2,max=100"`
	Role      *string `json:"role"`
	ManagerID *string `json:"manager_id" binding:"omitempty,uuid"`
	State     *string `json:"state"      binding:"omitempty,max=50"`
}

// DepartEmployeeRequest 员工离职请求
type DepartEmployeeRequest struct {
	// DepartureDate 离职日期（RFC3339 日期，如 2026-08-31），缺省为当天
	DepartureDate string `json:"departure_date" binding:"omitempty,datetime=2006-01-02"`
}

// EmployeeListRequest 员工列表查询参数
type EmployeeListRequest struct {
	Role            string `form:"role"`
	State           string `form:"state"`
	Name            string `form:"name"             binding:"omitempty,max=100"`
	IncludeDeparted bool   `form:"include_departed"`
	PaginationRequest
}

// EmployeeResponse 员工信息响应
type EmployeeResponse struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Role                string  `json:"role"`
	ManagerID           *string `json:"manager_id,omitempty"`
	ManagerName         string  `json:"manager_name,omitempty"`
	State               string  `json:"state"`
	Status              string  `json:"status"`
	DepartureDate       *string `json:"departure_date,omitempty"`
	PendingTargetsCount int64   `json:"pending_targets_count"`
	CreatedAt           string  `json:"created_at"`
}
