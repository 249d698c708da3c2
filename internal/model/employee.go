package model

import "time"

// ── 员工角色层级 ──

const (
	RoleNationalHead   = "national_head"
	RoleStateHead      = "state_head"
	RoleClusterManager = "cluster_manager"
	RoleManager        = "manager"
	RoleMobiliser      = "mobiliser"
)

// ValidRoles 角色层级合法值（自上而下）
var ValidRoles = []string{
	RoleNationalHead, RoleStateHead, RoleClusterManager, RoleManager, RoleMobiliser,
}

// IsValidRole 是否为合法角色
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// ── 员工状态 ──

const (
	EmployeeStatusActive   = "active"
	EmployeeStatusDeparted = "departed"
)

// Employee 员工目录表 — 对应 employees
// 目录协作方（花名册/入职流程）负责写入；目标引擎对该表只读
type Employee struct {
	EmployeeID    string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"employee_id"`
	Name          string     `gorm:"type:varchar(100);not null"                     json:"name"`
	Role          string     `gorm:"type:varchar(30);not null"                      json:"role"`
	ManagerID     *string    `gorm:"type:uuid"                                      json:"manager_id,omitempty"`
	State         string     `gorm:"type:varchar(50);not null;default:''"           json:"state"`
	Status        string     `gorm:"type:varchar(20);not null;default:'active'"     json:"status"` // active | departed
	DepartureDate *time.Time `gorm:"type:date"                                      json:"departure_date,omitempty"`
	VersionedModel

	// 关联
	Manager *Employee `gorm:"foreignKey:ManagerID;references:EmployeeID" json:"manager,omitempty"`
}

// TableName 指定表名
func (Employee) TableName() string { return "employees" }

// IsActive 员工是否在职
func (e *Employee) IsActive() bool { return e.Status == EmployeeStatusActive }
