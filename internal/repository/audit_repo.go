package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"yuva-vikas/backend/internal/model"
)

// AuditFilter 审计流水查询条件
type AuditFilter struct {
	EmployeeNameContains string
	TargetType           model.TargetType
	EventType            string
	Status               string
	// From / To 非零时按 recorded_at 区间过滤（From 闭、To 开）
	From time.Time
	To   time.Time
}

// AuditRepository 审计流水数据访问接口（追加写，从不修改或删除）
type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditEntry) error
	Query(ctx context.Context, filter AuditFilter, offset, limit int) ([]model.AuditEntry, int64, error)
}

// auditRepo AuditRepository 的 GORM 实现
type auditRepo struct {
	db *gorm.DB
}

// NewAuditRepo 创建 AuditRepository 实例
func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) Create(ctx context.Context, entry *model.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepo) Query(ctx context.Context, filter AuditFilter, offset, limit int) ([]model.AuditEntry, int64, error) {
	var entries []model.AuditEntry
	var total int64

	db := r.db.WithContext(ctx).Model(&model.AuditEntry{})

	if filter.EmployeeNameContains != "" {
		db = db.Where("employee_name ILIKE ?", "%"+filter.EmployeeNameContains+"%")
	}
	if filter.TargetType != "" {
		db = db.Where("target_type = ?", filter.TargetType)
	}
	if filter.EventType != "" {
		db = db.Where("event_type = ?", filter.EventType)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		db = db.Where("recorded_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		db = db.Where("recorded_at < ?", filter.To)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("recorded_at DESC").
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
