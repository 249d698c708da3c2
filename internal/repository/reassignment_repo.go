package repository

import (
	"context"

	"gorm.io/gorm"

	"yuva-vikas/backend/internal/model"
)

// ReassignmentRepository 转派审计记录数据访问接口（只增不改）
type ReassignmentRepository interface {
	Create(ctx context.Context, record *model.ReassignmentRecord) error
	// ListByTargetID 按源目标查询转派记录
	// 单目标转派每源恰好一条；结转重分配每接收人各一条
	ListByTargetID(ctx context.Context, targetID string) ([]model.ReassignmentRecord, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]model.ReassignmentRecord, error)
}

// reassignmentRepo ReassignmentRepository 的 GORM 实现
type reassignmentRepo struct {
	db *gorm.DB
}

// NewReassignmentRepo 创建 ReassignmentRepository 实例
func NewReassignmentRepo(db *gorm.DB) ReassignmentRepository {
	return &reassignmentRepo{db: db}
}

func (r *reassignmentRepo) Create(ctx context.Context, record *model.ReassignmentRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *reassignmentRepo) ListByTargetID(ctx context.Context, targetID string) ([]model.ReassignmentRecord, error) {
	var records []model.ReassignmentRecord
	err := r.db.WithContext(ctx).
		Where("target_id = ?", targetID).
		Order("reassigned_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *reassignmentRepo) ListByEmployee(ctx context.Context, employeeID string) ([]model.ReassignmentRecord, error) {
	var records []model.ReassignmentRecord
	err := r.db.WithContext(ctx).
		Where("from_employee_id = ? OR to_employee_id = ?", employeeID, employeeID).
		Order("reassigned_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
