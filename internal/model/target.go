package model

import "time"

// ── 目标状态机 ──
//
// active → completed        期末 pending == 0 自动完成
// active → carried_forward  结转处理器 add_to_next / redistribute（仅可结转类型）
// active → void             结转处理器 void，或不可结转类型期末 pending > 0 记为流失
// active → reassigned       转派引擎；原目标终止，按转派量为接收人新建 active 目标
// completed / carried_forward / reassigned / void 均为终态

const (
	TargetStatusActive         = "active"
	TargetStatusCompleted      = "completed"
	TargetStatusCarriedForward = "carried_forward"
	TargetStatusReassigned     = "reassigned"
	TargetStatusVoid           = "void"
)

// Target 目标分配记录表 — 对应 targets
// 永久历史记录：只发生状态迁移，从不删除
// assigned_to_name / assigned_to_role 为分配时刻的冗余快照，
// 员工记录后续变更不回写，保证历史可读
type Target struct {
	TargetID         string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"target_id"`
	Type             TargetType `gorm:"type:varchar(30);not null"                      json:"type"`
	AssignedTo       string     `gorm:"type:uuid;not null"                             json:"assigned_to"`
	AssignedToName   string     `gorm:"type:varchar(100);not null"                     json:"assigned_to_name"`
	AssignedToRole   string     `gorm:"type:varchar(30);not null"                      json:"assigned_to_role"`
	Value            int        `gorm:"not null"                                       json:"value"`
	Achieved         int        `gorm:"not null;default:0"                             json:"achieved"`
	PeriodStart      time.Time  `gorm:"type:date;not null"                             json:"period_start"`
	PeriodEnd        time.Time  `gorm:"type:date;not null"                             json:"period_end"`
	Status           string     `gorm:"type:varchar(20);not null;default:'active'"     json:"status"`
	AssignedBy       string     `gorm:"type:uuid;not null"                             json:"assigned_by"`
	CarriedFromID    *string    `gorm:"type:uuid"                                      json:"carried_from_id,omitempty"`
	ReassignedFromID *string    `gorm:"type:uuid"                                      json:"reassigned_from_id,omitempty"`
	VersionedModel

	// 关联
	Assignee *Employee `gorm:"foreignKey:AssignedTo;references:EmployeeID" json:"assignee,omitempty"`
}

// TableName 指定表名
func (Target) TableName() string { return "targets" }

// Pending 未完成量：超额完成时封顶为 0
func (t *Target) Pending() int {
	if t.Achieved >= t.Value {
		return 0
	}
	return t.Value - t.Achieved
}

// Progress 完成百分比（封顶 100；value 为 0 视为已完成）
func (t *Target) Progress() int {
	if t.Value <= 0 {
		return 100
	}
	p := t.Achieved * 100 / t.Value
	if p > 100 {
		return 100
	}
	return p
}

// IsExpired 周期是否已结束
func (t *Target) IsExpired(now time.Time) bool {
	return t.PeriodEnd.Before(now)
}

// NextPeriod 计算下一周期窗口：与当前周期等长、紧接其后
func (t *Target) NextPeriod() (start, end time.Time) {
	length := t.PeriodEnd.Sub(t.PeriodStart)
	return t.PeriodEnd, t.PeriodEnd.Add(length)
}
