package model

import "time"

// ReassignmentRecord 转派审计记录表 — 对应 reassignment_records
// 一次成功转派恰好生成一条，落库后不可变
// 双方姓名与接收方角色为转派时刻的冗余快照
type ReassignmentRecord struct {
	ReassignmentID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"reassignment_id"`
	TargetID         string    `gorm:"type:uuid;not null;index"                       json:"target_id"`
	FromEmployeeID   string    `gorm:"type:uuid;not null"                             json:"from_employee_id"`
	FromEmployeeName string    `gorm:"type:varchar(100);not null"                     json:"from_employee_name"`
	ToEmployeeID     string    `gorm:"type:uuid;not null"                             json:"to_employee_id"`
	ToEmployeeName   string    `gorm:"type:varchar(100);not null"                     json:"to_employee_name"`
	ToEmployeeRole   string    `gorm:"type:varchar(30);not null"                      json:"to_employee_role"`
	Amount           int       `gorm:"not null"                                       json:"amount"`
	Reason           string    `gorm:"type:varchar(500);not null"                     json:"reason"`
	ReassignedBy     string    `gorm:"type:uuid;not null"                             json:"reassigned_by"`
	ReassignedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"reassigned_at"`
}

// TableName 指定表名
func (ReassignmentRecord) TableName() string { return "reassignment_records" }
