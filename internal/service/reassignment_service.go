package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"yuva-vikas/backend/internal/dto"
	"yuva-vikas/backend/internal/model"
	"yuva-vikas/backend/internal/repository"
	pkgerrors "yuva-vikas/backend/pkg/errors"
)

// ── 转派模块业务错误 ──

var (
	ErrEmployeeNotFound     = pkgerrors.Mark(pkgerrors.KindNotFound, errors.New("员工不存在"))
	ErrInvalidAmount        = pkgerrors.Mark(pkgerrors.KindInvalidArgument, errors.New("转派数量必须大于 0"))
	ErrAmountExceedsPending = pkgerrors.Mark(pkgerrors.KindInvalidArgument, errors.New("转派数量不能超过未完成量"))
	ErrSelfReassignment     = pkgerrors.Mark(pkgerrors.KindInvalidArgument, errors.New("不能转派给原承接人自己"))
	ErrReasonRequired       = pkgerrors.Mark(pkgerrors.KindInvalidArgument, errors.New("转派理由不能为空"))
	ErrRecipientNotActive   = pkgerrors.Mark(pkgerrors.KindInvalidArgument, errors.New("接收人不存在或已离职"))
	ErrEmployeeNotDeparted  = pkgerrors.Mark(pkgerrors.KindInvalidState, errors.New("员工尚未离职，不可执行离职批量转派"))
	ErrIncompleteMapping    = pkgerrors.Mark(pkgerrors.KindIncompleteMapping, errors.New("转派映射未覆盖离职员工的全部进行中目标"))
	ErrUnknownMappingTarget = pkgerrors.Mark(pkgerrors.KindInvalidArgument, errors.New("转派映射包含不属于该员工的目标"))
	ErrDuplicateMapping     = pkgerrors.Mark(pkgerrors.KindInvalidArgument, errors.New("转派映射存在重复目标"))
	ErrNoEligibleRecipient  = pkgerrors.Mark(pkgerrors.KindInvalidState, errors.New("无可用的在职员工可承接目标"))
)

// ReassignmentService 转派业务接口
type ReassignmentService interface {
	// Reassign 单目标转派：原目标终止为 reassigned，按转派量为接收人新建 active 目标
	// 未完成量守恒：源 pending 减少 amount，新目标 value = amount
	Reassign(ctx context.Context, req *dto.ReassignTargetRequest, operatorID string) (*dto.ReassignTargetResponse, error)
	// ProposeDeparture 离职转派提案：默认全部转给直属经理，经理缺失或已离职时兜底任
	// 一在职员工；仅为建议，操作员确认前可覆盖
	ProposeDeparture(ctx context.Context, employeeID string) (*dto.DepartureProposalResponse, error)
	// HandleDeparture 离职批量转派：映射必须覆盖全部 active 目标，整批要么全部
	// 完成要么全部不生效
	HandleDeparture(ctx context.Context, employeeID string, req *dto.HandleDepartureRequest, operatorID string) (*dto.HandleDepartureResponse, error)
	// ListByTarget 源目标的转派历史：单目标转派每源恰好一条，结转重分配每接收人各一条
	ListByTarget(ctx context.Context, targetID string) ([]dto.ReassignmentRecordResponse, error)
	// ListByEmployee 员工作为转出人或接收人的全部转派记录
	ListByEmployee(ctx context.Context, employeeID string) ([]dto.ReassignmentRecordResponse, error)
}

type reassignmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReassignmentService 创建 ReassignmentService 实例
func NewReassignmentService(repo *repository.Repository, logger *zap.Logger) ReassignmentService {
	return &reassignmentService{repo: repo, logger: logger}
}

// ────────────────────── Reassign ──────────────────────

func (s *reassignmentService) Reassign(ctx context.Context, req *dto.ReassignTargetRequest, operatorID string) (*dto.ReassignTargetResponse, error) {
	target, err := s.repo.Target.GetByID(ctx, req.TargetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTargetNotFound
		}
		s.logger.Error("查询目标失败", zap.String("target_id", req.TargetID), zap.Error(err))
		return nil, err
	}
	// 目标不属于声明的转出人时按不存在处理，避免泄露归属信息
	if target.AssignedTo != req.FromEmployeeID {
		return nil, ErrTargetNotFound
	}
	if target.Status != model.TargetStatusActive {
		return nil, ErrTargetNotActive
	}

	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.Amount > target.Pending() {
		return nil, ErrAmountExceedsPending
	}
	if req.ToEmployeeID == req.FromEmployeeID {
		return nil, ErrSelfReassignment
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, ErrReasonRequired
	}

	recipient, err := s.repo.Employee.GetByID(ctx, req.ToEmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipientNotActive
		}
		s.logger.Error("查询接收人失败", zap.String("employee_id", req.ToEmployeeID), zap.Error(err))
		return nil, err
	}
	if !recipient.IsActive() {
		return nil, ErrRecipientNotActive
	}

	var created *model.Target
	var record *model.ReassignmentRecord
	err = s.repo.Atomic.Run(ctx, func(r *repository.Repository) error {
		created, record, err = reassignInTx(ctx, r, target, recipient, req.Amount, req.Reason, operatorID)
		return err
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			// 并发转派竞争：另一次操作已抢先迁移状态，本次不得二次生效
			return nil, ErrTargetConflict
		}
		s.logger.Error("转派目标失败", zap.String("target_id", req.TargetID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("目标转派完成",
		zap.String("target_id", target.TargetID),
		zap.String("from", target.AssignedTo),
		zap.String("to", recipient.EmployeeID),
		zap.Int("amount", req.Amount),
	)

	target.Status = model.TargetStatusReassigned
	return &dto.ReassignTargetResponse{
		Original: toTargetResponse(target),
		Created:  toTargetResponse(created),
		Audit:    toReassignmentRecordResponse(record),
	}, nil
}

// reassignInTx 在事务内执行一次转派：源目标迁移 + 新目标创建 + 转派记录 + 审计
// 事务由调用方提供；离职批处理在同一事务内循环调用以保证整批原子性
func reassignInTx(
	ctx context.Context,
	r *repository.Repository,
	source *model.Target,
	recipient *model.Employee,
	amount int,
	reason string,
	operatorID string,
) (*model.Target, *model.ReassignmentRecord, error) {
	if err := r.Target.TransitionStatus(ctx, source.TargetID, model.TargetStatusReassigned, source.Version, operatorID); err != nil {
		return nil, nil, err
	}

	// 接收人姓名/角色取转派时刻快照
	created := &model.Target{
		Type:             source.Type,
		AssignedTo:       recipient.EmployeeID,
		AssignedToName:   recipient.Name,
		AssignedToRole:   recipient.Role,
		Value:            amount,
		Achieved:         0,
		PeriodStart:      source.PeriodStart,
		PeriodEnd:        source.PeriodEnd,
		Status:           model.TargetStatusActive,
		AssignedBy:       operatorID,
		ReassignedFromID: &source.TargetID,
	}
	created.CreatedBy = &operatorID
	created.UpdatedBy = &operatorID
	if err := r.Target.Create(ctx, created); err != nil {
		return nil, nil, err
	}

	record := &model.ReassignmentRecord{
		TargetID:         source.TargetID,
		FromEmployeeID:   source.AssignedTo,
		FromEmployeeName: source.AssignedToName,
		ToEmployeeID:     recipient.EmployeeID,
		ToEmployeeName:   recipient.Name,
		ToEmployeeRole:   recipient.Role,
		Amount:           amount,
		Reason:           reason,
		ReassignedBy:     operatorID,
	}
	if err := r.Reassignment.Create(ctx, record); err != nil {
		return nil, nil, err
	}

	entry := &model.AuditEntry{
		EventType:    model.AuditEventTargetReassigned,
		TargetID:     &source.TargetID,
		TargetType:   source.Type,
		EmployeeID:   &source.AssignedTo,
		EmployeeName: source.AssignedToName,
		EmployeeRole: source.AssignedToRole,
		Amount:       amount,
		Action:       "reassign",
		Status:       model.TargetStatusReassigned,
		Detail:       fmt.Sprintf("由 %s 转派给 %s：%s", source.AssignedToName, recipient.Name, reason),
		RecordedBy:   &operatorID,
	}
	if err := r.Audit.Create(ctx, entry); err != nil {
		return nil, nil, err
	}

	return created, record, nil
}

// ────────────────────── 转派历史查询 ──────────────────────

func (s *reassignmentService) ListByTarget(ctx context.Context, targetID string) ([]dto.ReassignmentRecordResponse, error) {
	if _, err := s.repo.Target.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTargetNotFound
		}
		s.logger.Error("查询目标失败", zap.String("target_id", targetID), zap.Error(err))
		return nil, err
	}

	records, err := s.repo.Reassignment.ListByTargetID(ctx, targetID)
	if err != nil {
		s.logger.Error("查询转派记录失败", zap.String("target_id", targetID), zap.Error(err))
		return nil, err
	}
	return toReassignmentRecordResponses(records), nil
}

func (s *reassignmentService) ListByEmployee(ctx context.Context, employeeID string) ([]dto.ReassignmentRecordResponse, error) {
	if _, err := s.repo.Employee.GetByID(ctx, employeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	records, err := s.repo.Reassignment.ListByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("查询转派记录失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	return toReassignmentRecordResponses(records), nil
}

func toReassignmentRecordResponses(records []model.ReassignmentRecord) []dto.ReassignmentRecordResponse {
	resp := make([]dto.ReassignmentRecordResponse, 0, len(records))
	for i := range records {
		resp = append(resp, *toReassignmentRecordResponse(&records[i]))
	}
	return resp
}

// ────────────────────── ProposeDeparture ──────────────────────

func (s *reassignmentService) ProposeDeparture(ctx context.Context, employeeID string) (*dto.DepartureProposalResponse, error) {
	emp, err := s.repo.Employee.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	targets, err := s.repo.Target.ListActiveByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("查询员工目标失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	resp := &dto.DepartureProposalResponse{
		EmployeeID: employeeID,
		Items:      make([]dto.DepartureProposalItem, 0, len(targets)),
	}
	if len(targets) == 0 {
		return resp, nil
	}

	// 默认承接人：直属经理；经理缺失或已离职时兜底任一在职员工
	var recipient *model.Employee
	fallbackUsed := false
	if emp.ManagerID != nil {
		mgr, err := s.repo.Employee.GetByID(ctx, *emp.ManagerID)
		if err == nil && mgr.IsActive() {
			recipient = mgr
		}
	}
	if recipient == nil {
		fallback, err := s.repo.Employee.FirstActiveExcluding(ctx, employeeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNoEligibleRecipient
			}
			s.logger.Error("查询兜底承接人失败", zap.Error(err))
			return nil, err
		}
		recipient = fallback
		fallbackUsed = true
	}

	for i := range targets {
		t := &targets[i]
		resp.Items = append(resp.Items, dto.DepartureProposalItem{
			TargetID:       t.TargetID,
			TargetType:     string(t.Type),
			Pending:        t.Pending(),
			ProposedToID:   recipient.EmployeeID,
			ProposedToName: recipient.Name,
			ProposedToRole: recipient.Role,
			FallbackUsed:   fallbackUsed,
		})
	}
	return resp, nil
}

// ────────────────────── HandleDeparture ──────────────────────

func (s *reassignmentService) HandleDeparture(ctx context.Context, employeeID string, req *dto.HandleDepartureRequest, operatorID string) (*dto.HandleDepartureResponse, error) {
	emp, err := s.repo.Employee.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	// 目录协作方先完成在职→离职迁移，引擎只处理离职后的目标归属
	if emp.Status != model.EmployeeStatusDeparted {
		return nil, ErrEmployeeNotDeparted
	}

	targets, err := s.repo.Target.ListActiveByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("查询员工目标失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	// ── 映射校验：任何一条缺失则整批拒绝，未发生任何写入 ──
	mapping := make(map[string]string, len(req.Reassignments))
	for _, m := range req.Reassignments {
		if _, dup := mapping[m.TargetID]; dup {
			return nil, ErrDuplicateMapping
		}
		mapping[m.TargetID] = m.NewEmployeeID
	}
	known := make(map[string]bool, len(targets))
	for i := range targets {
		known[targets[i].TargetID] = true
	}
	for targetID := range mapping {
		if !known[targetID] {
			return nil, ErrUnknownMappingTarget
		}
	}
	for i := range targets {
		if _, ok := mapping[targets[i].TargetID]; !ok {
			return nil, ErrIncompleteMapping
		}
	}

	// ── 接收人校验（去重后逐一确认在职） ──
	recipients := make(map[string]*model.Employee)
	for _, newID := range mapping {
		if newID == employeeID {
			return nil, ErrSelfReassignment
		}
		if _, ok := recipients[newID]; ok {
			continue
		}
		recipient, err := s.repo.Employee.GetByID(ctx, newID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrRecipientNotActive
			}
			s.logger.Error("查询接收人失败", zap.String("employee_id", newID), zap.Error(err))
			return nil, err
		}
		if !recipient.IsActive() {
			return nil, ErrRecipientNotActive
		}
		recipients[newID] = recipient
	}

	reason := fmt.Sprintf("员工 %s 离职，目标批量转派", emp.Name)

	// ── 整批单事务：任一目标失败则全部回滚 ──
	created := make([]*model.Target, 0, len(targets))
	err = s.repo.Atomic.Run(ctx, func(r *repository.Repository) error {
		for i := range targets {
			t := &targets[i]
			recipient := recipients[mapping[t.TargetID]]
			// 离职转派总是全量转移未完成量
			newTarget, _, err := reassignInTx(ctx, r, t, recipient, t.Pending(), reason, operatorID)
			if err != nil {
				return err
			}
			created = append(created, newTarget)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrTargetConflict
		}
		s.logger.Error("离职批量转派失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("离职批量转派完成",
		zap.String("employee_id", employeeID),
		zap.Int("targets", len(created)),
	)

	resp := &dto.HandleDepartureResponse{Results: make([]dto.TargetResponse, 0, len(created))}
	for _, t := range created {
		resp.Results = append(resp.Results, *toTargetResponse(t))
	}
	return resp, nil
}
