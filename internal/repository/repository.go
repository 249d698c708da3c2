package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Employee     EmployeeRepository
	Target       TargetRepository
	Reassignment ReassignmentRepository
	Audit        AuditRepository

	// Atomic 事务执行器：回调中拿到的 Repository 全部绑定到同一事务
	// 转派、结转、离职批处理等跨表写操作必须走这里
	Atomic AtomicRunner
}

// AtomicRunner 事务边界抽象，便于 Service 层用假实现做单元测试
type AtomicRunner interface {
	Run(ctx context.Context, fn func(r *Repository) error) error
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	r := bindRepository(db)
	r.Atomic = &gormAtomicRunner{db: db}
	return r
}

// bindRepository 将各 Repository 绑定到指定连接（普通连接或事务均可）
func bindRepository(db *gorm.DB) *Repository {
	return &Repository{
		Employee:     NewEmployeeRepo(db),
		Target:       NewTargetRepo(db),
		Reassignment: NewReassignmentRepo(db),
		Audit:        NewAuditRepo(db),
	}
}

// gormAtomicRunner AtomicRunner 的 GORM 实现
type gormAtomicRunner struct {
	db *gorm.DB
}

func (a *gormAtomicRunner) Run(ctx context.Context, fn func(r *Repository) error) error {
	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := bindRepository(tx)
		txRepo.Atomic = &nestedAtomicRunner{repo: txRepo}
		return fn(txRepo)
	})
}

// nestedAtomicRunner 事务内再次调用 Atomic 时复用当前事务，不再开新事务
type nestedAtomicRunner struct {
	repo *Repository
}

func (a *nestedAtomicRunner) Run(_ context.Context, fn func(r *Repository) error) error {
	return fn(a.repo)
}
