package model

import "time"

// ── 审计事件类型 ──

const (
	AuditEventTargetCreated        = "target_created"
	AuditEventProgressRecorded     = "progress_recorded"
	AuditEventCarryForwardResolved = "carry_forward_resolved"
	AuditEventTargetReassigned     = "target_reassigned"
	AuditEventEmployeeDeparture    = "employee_departure"
)

// AuditEntry 审计流水表 — 对应 audit_entries（追加写，从不修改或删除）
// 目标创建、进度登记、结转结算、转派、离职处理合并为一条时间线
// 员工姓名/角色等字段为事件时刻的冗余快照，渲染时无需回查
// 员工表或目标表（上游记录可能已变更）
type AuditEntry struct {
	EntryID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"entry_id"`
	EventType    string     `gorm:"type:varchar(30);not null"                      json:"event_type"`
	TargetID     *string    `gorm:"type:uuid"                                      json:"target_id,omitempty"`
	TargetType   TargetType `gorm:"type:varchar(30)"                               json:"target_type,omitempty"`
	EmployeeID   *string    `gorm:"type:uuid"                                      json:"employee_id,omitempty"`
	EmployeeName string     `gorm:"type:varchar(100);not null;default:''"          json:"employee_name"`
	EmployeeRole string     `gorm:"type:varchar(30);not null;default:''"           json:"employee_role"`
	Amount       int        `gorm:"not null;default:0"                             json:"amount"`
	Action       string     `gorm:"type:varchar(30);not null;default:''"           json:"action"`
	Status       string     `gorm:"type:varchar(30);not null;default:''"           json:"status"`
	Detail       string     `gorm:"type:varchar(500);not null;default:''"          json:"detail"`
	RecordedBy   *string    `gorm:"type:uuid"                                      json:"recorded_by,omitempty"`
	RecordedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"recorded_at"`
}

// TableName 指定表名
func (AuditEntry) TableName() string { return "audit_entries" }
