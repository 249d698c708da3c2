package service

import (
	"go.uber.org/zap"

	"yuva-vikas/backend/config"
	"yuva-vikas/backend/internal/repository"
	"yuva-vikas/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Employee     EmployeeService
	Target       TargetService
	CarryForward CarryForwardService
	Reassignment ReassignmentService
	Audit        AuditService
}

// NewService 创建 Service 聚合
// rdb 允许为 nil：结转互斥锁与限流降级，正确性由数据库乐观锁兜底
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		Employee:     NewEmployeeService(repo, logger),
		Target:       NewTargetService(repo, logger),
		CarryForward: NewCarryForwardService(cfg, repo, rdb, logger),
		Reassignment: NewReassignmentService(repo, logger),
		Audit:        NewAuditService(repo, logger),
	}
}
