package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"yuva-vikas/backend/internal/dto"
	"yuva-vikas/backend/internal/model"
	"yuva-vikas/backend/internal/repository"
	pkgerrors "yuva-vikas/backend/pkg/errors"
)

// ── 目标模块业务错误 ──

var (
	ErrTargetNotFound    = pkgerrors.Mark(pkgerrors.KindNotFound, errors.New("目标不存在"))
	ErrInvalidTargetType = pkgerrors.Mark(pkgerrors.KindInvalidArgument, errors.New("非法的目标类型"))
	ErrInvalidPeriod     = pkgerrors.Mark(pkgerrors.KindInvalidArgument, errors.New("周期结束日期必须晚于开始日期"))
	ErrNegativeDelta     = pkgerrors.Mark(pkgerrors.KindInvalidArgument, errors.New("进度增量不能为负数"))
	ErrAssigneeNotActive = pkgerrors.Mark(pkgerrors.KindInvalidArgument, errors.New("目标承接人不存在或已离职"))
	ErrTargetNotActive   = pkgerrors.Mark(pkgerrors.KindInvalidState, errors.New("目标非 active 状态，不可执行此操作"))
	// ErrTargetConflict 并发修改冲突：另一操作已抢先迁移该目标
	ErrTargetConflict = pkgerrors.Mark(pkgerrors.KindInvalidState, errors.New("目标已被并发操作修改，请刷新后重试"))
)

// TargetService 目标业务接口
type TargetService interface {
	// Create 分配新目标（目标分配工作流入口）
	Create(ctx context.Context, req *dto.CreateTargetRequest, operatorID string) (*dto.TargetResponse, error)
	// GetByID 查询目标详情（含派生字段）
	GetByID(ctx context.Context, id string) (*dto.TargetResponse, error)
	// List 按条件查询目标列表（缺省只返回 active）
	List(ctx context.Context, req *dto.TargetListRequest) ([]dto.TargetResponse, int64, error)
	// RecordProgress 登记进度：achieved += delta（仅限 active，delta ≥ 0）
	RecordProgress(ctx context.Context, targetID string, delta int, operatorID string) (*dto.TargetResponse, error)
}

type targetService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTargetService 创建 TargetService 实例
func NewTargetService(repo *repository.Repository, logger *zap.Logger) TargetService {
	return &targetService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *targetService) Create(ctx context.Context, req *dto.CreateTargetRequest, operatorID string) (*dto.TargetResponse, error) {
	targetType := model.TargetType(req.Type)
	if !targetType.IsValid() {
		return nil, ErrInvalidTargetType
	}

	periodStart, err := time.Parse(dateLayout, req.PeriodStart)
	if err != nil {
		return nil, ErrInvalidPeriod
	}
	periodEnd, err := time.Parse(dateLayout, req.PeriodEnd)
	if err != nil {
		return nil, ErrInvalidPeriod
	}
	if !periodEnd.After(periodStart) {
		return nil, ErrInvalidPeriod
	}

	assignee, err := s.repo.Employee.GetByID(ctx, req.AssignedTo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssigneeNotActive
		}
		s.logger.Error("查询承接人失败", zap.String("employee_id", req.AssignedTo), zap.Error(err))
		return nil, err
	}
	if !assignee.IsActive() {
		return nil, ErrAssigneeNotActive
	}

	// 承接人姓名/角色取分配时刻快照
	target := &model.Target{
		Type:           targetType,
		AssignedTo:     assignee.EmployeeID,
		AssignedToName: assignee.Name,
		AssignedToRole: assignee.Role,
		Value:          req.Value,
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		Status:         model.TargetStatusActive,
		AssignedBy:     operatorID,
	}
	target.CreatedBy = &operatorID
	target.UpdatedBy = &operatorID

	err = s.repo.Atomic.Run(ctx, func(r *repository.Repository) error {
		if err := r.Target.Create(ctx, target); err != nil {
			return err
		}
		return r.Audit.Create(ctx, &model.AuditEntry{
			EventType:    model.AuditEventTargetCreated,
			TargetID:     &target.TargetID,
			TargetType:   target.Type,
			EmployeeID:   &assignee.EmployeeID,
			EmployeeName: assignee.Name,
			EmployeeRole: assignee.Role,
			Amount:       target.Value,
			Status:       model.TargetStatusActive,
			Detail:       "分配新目标",
			RecordedBy:   &operatorID,
		})
	})
	if err != nil {
		s.logger.Error("创建目标失败", zap.Error(err))
		return nil, err
	}

	return toTargetResponse(target), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *targetService) GetByID(ctx context.Context, id string) (*dto.TargetResponse, error) {
	target, err := s.repo.Target.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTargetNotFound
		}
		s.logger.Error("查询目标失败", zap.String("target_id", id), zap.Error(err))
		return nil, err
	}
	return toTargetResponse(target), nil
}

// ────────────────────── List ──────────────────────

func (s *targetService) List(ctx context.Context, req *dto.TargetListRequest) ([]dto.TargetResponse, int64, error) {
	filter := repository.TargetFilter{
		Type:         model.TargetType(req.Type),
		Role:         req.Role,
		Status:       req.Status,
		EmployeeID:   req.EmployeeID,
		NameContains: req.Name,
	}
	// 缺省只看进行中的目标
	if filter.Status == "" {
		filter.Status = model.TargetStatusActive
	}
	if req.PeriodStart != "" {
		t, err := time.Parse(dateLayout, req.PeriodStart)
		if err != nil {
			return nil, 0, ErrInvalidPeriod
		}
		filter.PeriodStart = t
	}
	if req.PeriodEnd != "" {
		t, err := time.Parse(dateLayout, req.PeriodEnd)
		if err != nil {
			return nil, 0, ErrInvalidPeriod
		}
		filter.PeriodEnd = t
	}

	targets, total, err := s.repo.Target.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询目标列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.TargetResponse, 0, len(targets))
	for i := range targets {
		result = append(result, *toTargetResponse(&targets[i]))
	}
	return result, total, nil
}

// ────────────────────── RecordProgress ──────────────────────

func (s *targetService) RecordProgress(ctx context.Context, targetID string, delta int, operatorID string) (*dto.TargetResponse, error) {
	if delta < 0 {
		return nil, ErrNegativeDelta
	}

	target, err := s.repo.Target.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTargetNotFound
		}
		s.logger.Error("查询目标失败", zap.String("target_id", targetID), zap.Error(err))
		return nil, err
	}
	if target.Status != model.TargetStatusActive {
		return nil, ErrTargetNotActive
	}

	err = s.repo.Atomic.Run(ctx, func(r *repository.Repository) error {
		if err := r.Target.IncrementAchieved(ctx, targetID, delta, target.Version, operatorID); err != nil {
			return err
		}
		return r.Audit.Create(ctx, &model.AuditEntry{
			EventType:    model.AuditEventProgressRecorded,
			TargetID:     &target.TargetID,
			TargetType:   target.Type,
			EmployeeID:   &target.AssignedTo,
			EmployeeName: target.AssignedToName,
			EmployeeRole: target.AssignedToRole,
			Amount:       delta,
			Status:       model.TargetStatusActive,
			Detail:       "登记目标进度",
			RecordedBy:   &operatorID,
		})
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrTargetConflict
		}
		s.logger.Error("登记进度失败", zap.String("target_id", targetID), zap.Error(err))
		return nil, err
	}

	updated, err := s.repo.Target.GetByID(ctx, targetID)
	if err != nil {
		s.logger.Error("回查目标失败", zap.String("target_id", targetID), zap.Error(err))
		return nil, err
	}
	return toTargetResponse(updated), nil
}
