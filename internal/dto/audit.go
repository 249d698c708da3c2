package dto

// ── 审计模块 DTO ──

// AuditQueryRequest 审计流水查询参数
type AuditQueryRequest struct {
	Name       string `form:"name"        binding:"omitempty,max=100"`
	TargetType string `form:"target_type"`
	EventType  string `form:"event_type"`
	Status     string `form:"status"`
	From       string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To         string `form:"to"   binding:"omitempty,datetime=2006-01-02"`
	PaginationRequest
}

// AuditEntryResponse 审计流水条目响应
// 字段为事件时刻的冗余快照，渲染无需回查员工/目标表
type AuditEntryResponse struct {
	ID           string  `json:"id"`
	EventType    string  `json:"event_type"`
	TargetID     *string `json:"target_id,omitempty"`
	TargetType   string  `json:"target_type,omitempty"`
	EmployeeID   *string `json:"employee_id,omitempty"`
	EmployeeName string  `json:"employee_name,omitempty"`
	EmployeeRole string  `json:"employee_role,omitempty"`
	Amount       int     `json:"amount"`
	Action       string  `json:"action,omitempty"`
	Status       string  `json:"status,omitempty"`
	Detail       string  `json:"detail,omitempty"`
	RecordedBy   *string `json:"recorded_by,omitempty"`
	RecordedAt   string  `json:"recorded_at"`
}
