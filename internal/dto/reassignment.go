package dto

// ── 转派模块 DTO ──

// ReassignTargetRequest 单目标转派请求
type ReassignTargetRequest struct {
	TargetID       string `json:"target_id"        binding:"required,uuid"`
	FromEmployeeID string `json:"from_employee_id" binding:"required,uuid"`
	ToEmployeeID   string `json:"to_employee_id"   binding:"required,uuid"`
	Amount         int    `json:"amount"           binding:"required"`
	Reason         string `json:"reason"           binding:"required,min=2,max=500"`
}

// ReassignTargetResponse 单目标转派响应
type ReassignTargetResponse struct {
	Original *TargetResponse             `json:"original"`
	Created  *TargetResponse             `json:"created"`
	Audit    *ReassignmentRecordResponse `json:"audit"`
}

// ReassignmentRecordResponse 转派审计记录响应
type ReassignmentRecordResponse struct {
	ID               string `json:"id"`
	TargetID         string `json:"target_id"`
	FromEmployeeID   string `json:"from_employee_id"`
	FromEmployeeName string `json:"from_employee_name"`
	ToEmployeeID     string `json:"to_employee_id"`
	ToEmployeeName   string `json:"to_employee_name"`
	ToEmployeeRole   string `json:"to_employee_role"`
	Amount           int    `json:"amount"`
	Reason           string `json:"reason"`
	ReassignedBy     string `json:"reassigned_by"`
	ReassignedAt     string `json:"reassigned_at"`
}

// ── 离职批量转派 DTO ──

// DepartureMapping 离职转派映射条目
type DepartureMapping struct {
	TargetID      string `json:"target_id"       binding:"required,uuid"`
	NewEmployeeID string `json:"new_employee_id" binding:"required,uuid"`
}

// HandleDepartureRequest 离职批量转派请求
// 必须覆盖离职员工名下全部 active 目标，否则整批拒绝
type HandleDepartureRequest struct {
	Reassignments []DepartureMapping `json:"reassignments" binding:"required,min=1,dive"`
}

// HandleDepartureResponse 离职批量转派响应
type HandleDepartureResponse struct {
	Results []TargetResponse `json:"results"`
}

// DepartureProposalItem 离职转派提案条目（默认转给直属经理，仅为建议）
type DepartureProposalItem struct {
	TargetID       string `json:"target_id"`
	TargetType     string `json:"target_type"`
	Pending        int    `json:"pending"`
	ProposedToID   string `json:"proposed_to_id"`
	ProposedToName string `json:"proposed_to_name"`
	ProposedToRole string `json:"proposed_to_role"`
	FallbackUsed   bool   `json:"fallback_used"`
}

// DepartureProposalResponse 离职转派提案响应
type DepartureProposalResponse struct {
	EmployeeID string                  `json:"employee_id"`
	Items      []DepartureProposalItem `json:"items"`
}
