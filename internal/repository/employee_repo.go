package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"yuva-vikas/backend/internal/model"
	pkgerrors "yuva-vikas/backend/pkg/errors"
)

// EmployeeFilter 员工目录查询条件
type EmployeeFilter struct {
	Role            string
	State           string
	NameContains    string
	IncludeDeparted bool
}

// EmployeeRepository 员工目录数据访问接口
// 目标引擎各 Service 只使用读方法；写方法仅供目录模块调用
type EmployeeRepository interface {
	Create(ctx context.Context, emp *model.Employee) error
	GetByID(ctx context.Context, id string) (*model.Employee, error)
	Update(ctx context.Context, emp *model.Employee) error
	List(ctx context.Context, filter EmployeeFilter, offset, limit int) ([]model.Employee, int64, error)
	// MarkDeparted 在职→离职状态迁移（带乐观锁）
	MarkDeparted(ctx context.Context, id string, date time.Time, version int, updatedBy string) error
	// FirstActiveExcluding 任取一名在职员工（排除指定 ID），用于离职转派兜底提案
	FirstActiveExcluding(ctx context.Context, excludeID string) (*model.Employee, error)
	// CountActiveTargets 批量统计各员工名下 active 目标数
	CountActiveTargets(ctx context.Context, employeeIDs []string) (map[string]int64, error)
}

// employeeRepo EmployeeRepository 的 GORM 实现
type employeeRepo struct {
	db *gorm.DB
}

// NewEmployeeRepo 创建 EmployeeRepository 实例
func NewEmployeeRepo(db *gorm.DB) EmployeeRepository {
	return &employeeRepo{db: db}
}

func (r *employeeRepo) Create(ctx context.Context, emp *model.Employee) error {
	return r.db.WithContext(ctx).Create(emp).Error
}

func (r *employeeRepo) GetByID(ctx context.Context, id string) (*model.Employee, error) {
	var emp model.Employee
	err := r.db.WithContext(ctx).
		Preload("Manager").
		Where("employee_id = ?", id).
		First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepo) Update(ctx context.Context, emp *model.Employee) error {
	return r.db.WithContext(ctx).Save(emp).Error
}

func (r *employeeRepo) List(ctx context.Context, filter EmployeeFilter, offset, limit int) ([]model.Employee, int64, error) {
	var emps []model.Employee
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Employee{})

	if !filter.IncludeDeparted {
		db = db.Where("status = ?", model.EmployeeStatusActive)
	}
	if filter.Role != "" {
		db = db.Where("role = ?", filter.Role)
	}
	if filter.State != "" {
		db = db.Where("state = ?", filter.State)
	}
	if filter.NameContains != "" {
		db = db.Where("name ILIKE ?", "%"+filter.NameContains+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&emps).Error; err != nil {
		return nil, 0, err
	}

	return emps, total, nil
}

func (r *employeeRepo) MarkDeparted(ctx context.Context, id string, date time.Time, version int, updatedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Employee{}).
		Where("employee_id = ? AND status = ? AND version = ?", id, model.EmployeeStatusActive, version).
		Updates(map[string]interface{}{
			"status":         model.EmployeeStatusDeparted,
			"departure_date": date,
			"updated_by":     updatedBy,
			"version":        gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *employeeRepo) FirstActiveExcluding(ctx context.Context, excludeID string) (*model.Employee, error) {
	var emp model.Employee
	err := r.db.WithContext(ctx).
		Where("status = ? AND employee_id <> ?", model.EmployeeStatusActive, excludeID).
		Order("created_at ASC").
		First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepo) CountActiveTargets(ctx context.Context, employeeIDs []string) (map[string]int64, error) {
	if len(employeeIDs) == 0 {
		return map[string]int64{}, nil
	}

	type row struct {
		AssignedTo string
		Cnt        int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.Target{}).
		Select("assigned_to, COUNT(*) AS cnt").
		Where("assigned_to IN ? AND status = ?", employeeIDs, model.TargetStatusActive).
		Group("assigned_to").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]int64, len(rows))
	for _, r := range rows {
		result[r.AssignedTo] = r.Cnt
	}
	return result, nil
}
