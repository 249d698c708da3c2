package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"yuva-vikas/backend/internal/model"
	pkgerrors "yuva-vikas/backend/pkg/errors"
)

// TargetFilter 目标列表查询条件
type TargetFilter struct {
	Type         model.TargetType
	Role         string
	Status       string
	EmployeeID   string
	NameContains string
	// PeriodStart / PeriodEnd 非零时按周期窗口重叠过滤
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// TargetRepository 目标数据访问接口
type TargetRepository interface {
	Create(ctx context.Context, target *model.Target) error
	GetByID(ctx context.Context, id string) (*model.Target, error)
	List(ctx context.Context, filter TargetFilter, offset, limit int) ([]model.Target, int64, error)
	// ListActiveByEmployee 员工名下全部 active 目标
	ListActiveByEmployee(ctx context.Context, employeeID string) ([]model.Target, error)
	// ListExpiredActive 周期已结束但仍为 active 的目标（期末扫描输入）
	ListExpiredActive(ctx context.Context, asOf time.Time) ([]model.Target, error)
	// TransitionStatus active → newStatus 条件更新（带乐观锁）
	// 状态已被并发操作改变或版本不符时返回 ErrOptimisticLock，零行不落库
	TransitionStatus(ctx context.Context, id, newStatus string, version int, updatedBy string) error
	// IncrementAchieved 登记进度 achieved += delta（带乐观锁，仅限 active）
	IncrementAchieved(ctx context.Context, id string, delta, version int, updatedBy string) error
}

// targetRepo TargetRepository 的 GORM 实现
type targetRepo struct {
	db *gorm.DB
}

// NewTargetRepo 创建 TargetRepository 实例
func NewTargetRepo(db *gorm.DB) TargetRepository {
	return &targetRepo{db: db}
}

func (r *targetRepo) Create(ctx context.Context, target *model.Target) error {
	return r.db.WithContext(ctx).Create(target).Error
}

func (r *targetRepo) GetByID(ctx context.Context, id string) (*model.Target, error) {
	var target model.Target
	err := r.db.WithContext(ctx).
		Where("target_id = ?", id).
		First(&target).Error
	if err != nil {
		return nil, err
	}
	return &target, nil
}

func (r *targetRepo) List(ctx context.Context, filter TargetFilter, offset, limit int) ([]model.Target, int64, error) {
	var targets []model.Target
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Target{})

	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		db = db.Where("type = ?", filter.Type)
	}
	if filter.Role != "" {
		db = db.Where("assigned_to_role = ?", filter.Role)
	}
	if filter.EmployeeID != "" {
		db = db.Where("assigned_to = ?", filter.EmployeeID)
	}
	if filter.NameContains != "" {
		db = db.Where("assigned_to_name ILIKE ?", "%"+filter.NameContains+"%")
	}
	if !filter.PeriodStart.IsZero() {
		db = db.Where("period_end > ?", filter.PeriodStart)
	}
	if !filter.PeriodEnd.IsZero() {
		db = db.Where("period_start < ?", filter.PeriodEnd)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&targets).Error; err != nil {
		return nil, 0, err
	}

	return targets, total, nil
}

func (r *targetRepo) ListActiveByEmployee(ctx context.Context, employeeID string) ([]model.Target, error) {
	var targets []model.Target
	err := r.db.WithContext(ctx).
		Where("assigned_to = ? AND status = ?", employeeID, model.TargetStatusActive).
		Order("created_at ASC").
		Find(&targets).Error
	if err != nil {
		return nil, err
	}
	return targets, nil
}

func (r *targetRepo) ListExpiredActive(ctx context.Context, asOf time.Time) ([]model.Target, error) {
	var targets []model.Target
	err := r.db.WithContext(ctx).
		Where("status = ? AND period_end < ?", model.TargetStatusActive, asOf).
		Order("period_end ASC, created_at ASC").
		Find(&targets).Error
	if err != nil {
		return nil, err
	}
	return targets, nil
}

func (r *targetRepo) TransitionStatus(ctx context.Context, id, newStatus string, version int, updatedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Target{}).
		Where("target_id = ? AND status = ? AND version = ?", id, model.TargetStatusActive, version).
		Updates(map[string]interface{}{
			"status":     newStatus,
			"updated_by": updatedBy,
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *targetRepo) IncrementAchieved(ctx context.Context, id string, delta, version int, updatedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Target{}).
		Where("target_id = ? AND status = ? AND version = ?", id, model.TargetStatusActive, version).
		Updates(map[string]interface{}{
			"achieved":   gorm.Expr("achieved + ?", delta),
			"updated_by": updatedBy,
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}
