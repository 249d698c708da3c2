package dto

// ── 结转模块 DTO ──

// CarryForwardItemResponse 结转待办队列条目（派生数据，不单独持久化）
type CarryForwardItemResponse struct {
	TargetID        string `json:"target_id"`
	TargetType      string `json:"target_type"`
	EmployeeID      string `json:"employee_id"`
	EmployeeName    string `json:"employee_name"`
	FromPeriodStart string `json:"from_period_start"`
	FromPeriodEnd   string `json:"from_period_end"`
	ToPeriodStart   string `json:"to_period_start"`
	ToPeriodEnd     string `json:"to_period_end"`
	OriginalValue   int    `json:"original_value"`
	Achieved        int    `json:"achieved"`
	Pending         int    `json:"pending"`
	CanCarryForward bool   `json:"can_carry_forward"`
	// ProposedAction 默认动作：可结转类型为 add_to_next，否则为 void
	ProposedAction string `json:"proposed_action"`
}

// CarryForwardQueueResponse 结转队列响应
type CarryForwardQueueResponse struct {
	Items []CarryForwardItemResponse `json:"items"`
	// AutoCompleted 本次扫描中 pending==0 直接完结的目标数
	AutoCompleted int `json:"auto_completed"`
}

// RedistributionShare 转派权重分片
type RedistributionShare struct {
	ToEmployeeID string `json:"to_employee_id" binding:"required,uuid"`
	// Weight 整数权重；按 weight/Σweight 最大余数法分配，合计恰好等于 pending
	Weight int `json:"weight" binding:"required,min=1"`
}

// ResolveCarryForwardItem 单条结转决议
type ResolveCarryForwardItem struct {
	TargetID string `json:"target_id" binding:"required,uuid"`
	Action   string `json:"action"    binding:"required"`
	// Redistribution 仅 action=redistribute 时必填
	Redistribution []RedistributionShare `json:"redistribution" binding:"omitempty,dive"`
}

// ResolveCarryForwardRequest 批量结转决议请求
type ResolveCarryForwardRequest struct {
	Items []ResolveCarryForwardItem `json:"items" binding:"dive"`
}

// ResolveCarryForwardResponse 批量结转决议响应
type ResolveCarryForwardResponse struct {
	Resolved int `json:"resolved"`
}
