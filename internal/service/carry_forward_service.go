package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"yuva-vikas/backend/config"
	"yuva-vikas/backend/internal/dto"
	"yuva-vikas/backend/internal/model"
	"yuva-vikas/backend/internal/repository"
	pkgerrors "yuva-vikas/backend/pkg/errors"
	"yuva-vikas/backend/pkg/redis"
)

// ── 结转模块业务错误 ──

var (
	ErrResolverBusy           = pkgerrors.Mark(pkgerrors.KindInvalidState, errors.New("结转处理正在进行中，请稍后重试"))
	ErrInvalidAction          = pkgerrors.Mark(pkgerrors.KindInvalidArgument, errors.New("无效的结转动作"))
	ErrCarryForwardNotAllowed = pkgerrors.Mark(pkgerrors.KindPolicyViolation, errors.New("该目标类型不可结转，只能作废"))
	ErrRedistributionRequired = pkgerrors.Mark(pkgerrors.KindInvalidArgument, errors.New("redistribute 动作必须提供权重分片"))
	ErrDuplicateShare         = pkgerrors.Mark(pkgerrors.KindInvalidArgument, errors.New("权重分片存在重复接收人"))
	ErrTargetNotExpired       = pkgerrors.Mark(pkgerrors.KindInvalidState, errors.New("目标周期尚未结束，不可结转"))
)

// CarryForwardService 期末结转业务接口
//
// 期末规则：
//   - pending == 0 的过期目标直接完结（completed）
//   - pending > 0 且类型可结转的进入待办队列，由操作员选择
//     add_to_next / redistribute / void
//   - pending > 0 且类型不可结转的只能作废，未完成量记为流失
type CarryForwardService interface {
	// ListQueue 期末扫描：先完结 pending==0 的过期目标，再返回剩余待办
	ListQueue(ctx context.Context, operatorID string) (*dto.CarryForwardQueueResponse, error)
	// Resolve 批量结转决议：整批单事务，任一条失败则全部回滚；
	// 多实例间通过 Redis 互斥锁串行化
	Resolve(ctx context.Context, req *dto.ResolveCarryForwardRequest, operatorID string) (*dto.ResolveCarryForwardResponse, error)
}

type carryForwardService struct {
	cfg    *config.Config
	repo   *repository.Repository
	rdb    *redis.Client
	logger *zap.Logger
}

// NewCarryForwardService 创建 CarryForwardService 实例
// rdb 为 nil 时跳过互斥锁，正确性由目标行乐观锁兜底
func NewCarryForwardService(cfg *config.Config, repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) CarryForwardService {
	return &carryForwardService{cfg: cfg, repo: repo, rdb: rdb, logger: logger}
}

// ────────────────────── ListQueue ──────────────────────

func (s *carryForwardService) ListQueue(ctx context.Context, operatorID string) (*dto.CarryForwardQueueResponse, error) {
	now := time.Now()
	expired, err := s.repo.Target.ListExpiredActive(ctx, now)
	if err != nil {
		s.logger.Error("期末扫描失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.CarryForwardQueueResponse{Items: make([]dto.CarryForwardItemResponse, 0, len(expired))}

	for i := range expired {
		t := &expired[i]

		// pending == 0 直接完结，不进入待办队列
		if t.Pending() == 0 {
			err := s.repo.Atomic.Run(ctx, func(r *repository.Repository) error {
				return s.complete(ctx, r, t, operatorID)
			})
			if err != nil {
				if errors.Is(err, pkgerrors.ErrOptimisticLock) {
					// 另一实例已处理，扫描幂等
					continue
				}
				s.logger.Error("自动完结失败", zap.String("target_id", t.TargetID), zap.Error(err))
				return nil, err
			}
			resp.AutoCompleted++
			continue
		}

		eligible := t.Type.CanCarryForward()
		proposed := string(model.ActionVoid)
		if eligible {
			proposed = string(model.ActionAddToNext)
		}
		nextStart, nextEnd := t.NextPeriod()
		resp.Items = append(resp.Items, dto.CarryForwardItemResponse{
			TargetID:        t.TargetID,
			TargetType:      string(t.Type),
			EmployeeID:      t.AssignedTo,
			EmployeeName:    t.AssignedToName,
			FromPeriodStart: t.PeriodStart.Format(dateLayout),
			FromPeriodEnd:   t.PeriodEnd.Format(dateLayout),
			ToPeriodStart:   nextStart.Format(dateLayout),
			ToPeriodEnd:     nextEnd.Format(dateLayout),
			OriginalValue:   t.Value,
			Achieved:        t.Achieved,
			Pending:         t.Pending(),
			CanCarryForward: eligible,
			ProposedAction:  proposed,
		})
	}

	return resp, nil
}

// complete 过期且 pending==0 的目标完结迁移 + 审计；事务由调用方提供
func (s *carryForwardService) complete(ctx context.Context, r *repository.Repository, t *model.Target, operatorID string) error {
	if err := r.Target.TransitionStatus(ctx, t.TargetID, model.TargetStatusCompleted, t.Version, operatorID); err != nil {
		return err
	}
	return r.Audit.Create(ctx, &model.AuditEntry{
		EventType:    model.AuditEventCarryForwardResolved,
		TargetID:     &t.TargetID,
		TargetType:   t.Type,
		EmployeeID:   &t.AssignedTo,
		EmployeeName: t.AssignedToName,
		EmployeeRole: t.AssignedToRole,
		Amount:       t.Achieved,
		Action:       "complete",
		Status:       model.TargetStatusCompleted,
		Detail:       "期末扫描：目标已全额完成",
		RecordedBy:   &operatorID,
	})
}

// ────────────────────── Resolve ──────────────────────

func (s *carryForwardService) Resolve(ctx context.Context, req *dto.ResolveCarryForwardRequest, operatorID string) (*dto.ResolveCarryForwardResponse, error) {
	if len(req.Items) == 0 {
		return &dto.ResolveCarryForwardResponse{Resolved: 0}, nil
	}

	// 动作合法性先行校验，坏请求不进事务
	for i := range req.Items {
		if !model.CarryForwardAction(req.Items[i].Action).IsValid() {
			return nil, ErrInvalidAction
		}
	}

	if s.rdb != nil {
		token, ok, err := s.rdb.AcquireResolverLock(ctx, s.cfg.Engine.ResolverLockTTL)
		if err != nil {
			// Redis 故障降级为无锁执行，乐观锁兜底并发正确性
			s.logger.Warn("获取结转互斥锁失败，降级为无锁执行", zap.Error(err))
		} else if !ok {
			return nil, ErrResolverBusy
		} else {
			defer func() {
				if err := s.rdb.ReleaseResolverLock(context.WithoutCancel(ctx), token); err != nil {
					s.logger.Warn("释放结转互斥锁失败", zap.Error(err))
				}
			}()
		}
	}

	// 整批单事务：任一条失败则全部回滚，不留下半批已结转的中间态
	now := time.Now()
	resolved := 0
	err := s.repo.Atomic.Run(ctx, func(r *repository.Repository) error {
		for i := range req.Items {
			if err := s.resolveOne(ctx, r, &req.Items[i], now, operatorID); err != nil {
				return err
			}
			resolved++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("结转决议完成", zap.Int("resolved", resolved))
	return &dto.ResolveCarryForwardResponse{Resolved: resolved}, nil
}

// resolveOne 在批事务内处理单条决议
func (s *carryForwardService) resolveOne(ctx context.Context, r *repository.Repository, item *dto.ResolveCarryForwardItem, now time.Time, operatorID string) error {
	action := model.CarryForwardAction(item.Action)

	target, err := r.Target.GetByID(ctx, item.TargetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTargetNotFound
		}
		return err
	}
	if target.Status != model.TargetStatusActive {
		return ErrTargetNotActive
	}
	if !target.IsExpired(now) {
		return ErrTargetNotExpired
	}

	// 已全额完成的目标无论请求什么动作都只会完结
	if target.Pending() == 0 {
		if err := s.complete(ctx, r, target, operatorID); err != nil && !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return err
		}
		return nil
	}

	// 结转资格在结算时刻按类型判定，不可结转类型只能作废
	if !target.Type.CanCarryForward() && action != model.ActionVoid {
		return ErrCarryForwardNotAllowed
	}

	switch action {
	case model.ActionAddToNext:
		err = s.addToNext(ctx, r, target, operatorID)
	case model.ActionRedistribute:
		err = s.redistribute(ctx, r, target, item.Redistribution, operatorID)
	case model.ActionVoid:
		err = s.void(ctx, r, target, operatorID)
	}
	if err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return ErrTargetConflict
		}
		return err
	}
	return nil
}

// addToNext 未完成量顺延：源目标迁移为 carried_forward，
// 按 pending 在下一周期为同一员工新建 active 目标
func (s *carryForwardService) addToNext(ctx context.Context, r *repository.Repository, target *model.Target, operatorID string) error {
	pending := target.Pending()
	nextStart, nextEnd := target.NextPeriod()

	if err := r.Target.TransitionStatus(ctx, target.TargetID, model.TargetStatusCarriedForward, target.Version, operatorID); err != nil {
		return err
	}

	next := &model.Target{
		Type:           target.Type,
		AssignedTo:     target.AssignedTo,
		AssignedToName: target.AssignedToName,
		AssignedToRole: target.AssignedToRole,
		Value:          pending,
		Achieved:       0,
		PeriodStart:    nextStart,
		PeriodEnd:      nextEnd,
		Status:         model.TargetStatusActive,
		AssignedBy:     operatorID,
		CarriedFromID:  &target.TargetID,
	}
	next.CreatedBy = &operatorID
	next.UpdatedBy = &operatorID
	if err := r.Target.Create(ctx, next); err != nil {
		return err
	}

	return r.Audit.Create(ctx, &model.AuditEntry{
		EventType:    model.AuditEventCarryForwardResolved,
		TargetID:     &target.TargetID,
		TargetType:   target.Type,
		EmployeeID:   &target.AssignedTo,
		EmployeeName: target.AssignedToName,
		EmployeeRole: target.AssignedToRole,
		Amount:       pending,
		Action:       string(model.ActionAddToNext),
		Status:       model.TargetStatusCarriedForward,
		Detail:       fmt.Sprintf("未完成量 %d 顺延至 %s ~ %s", pending, nextStart.Format(dateLayout), nextEnd.Format(dateLayout)),
		RecordedBy:   &operatorID,
	})
}

// redistribute 未完成量按权重拆分给若干接收人，各自在下一周期获得新目标
// 拆分采用最大余数法，份额合计恰好等于 pending，不多发也不漏发
func (s *carryForwardService) redistribute(ctx context.Context, r *repository.Repository, target *model.Target, shares []dto.RedistributionShare, operatorID string) error {
	if len(shares) == 0 {
		return ErrRedistributionRequired
	}

	recipients := make([]*model.Employee, 0, len(shares))
	weights := make([]int, 0, len(shares))
	seen := make(map[string]bool, len(shares))
	for _, sh := range shares {
		if sh.Weight <= 0 {
			return ErrRedistributionRequired
		}
		if seen[sh.ToEmployeeID] {
			return ErrDuplicateShare
		}
		seen[sh.ToEmployeeID] = true

		emp, err := r.Employee.GetByID(ctx, sh.ToEmployeeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipientNotActive
			}
			return err
		}
		if !emp.IsActive() {
			return ErrRecipientNotActive
		}
		recipients = append(recipients, emp)
		weights = append(weights, sh.Weight)
	}

	pending := target.Pending()
	amounts := largestRemainderSplit(pending, weights)
	nextStart, nextEnd := target.NextPeriod()
	reason := fmt.Sprintf("期末结转：%s 的未完成量按权重重新分配", target.AssignedToName)

	if err := r.Target.TransitionStatus(ctx, target.TargetID, model.TargetStatusCarriedForward, target.Version, operatorID); err != nil {
		return err
	}

	for i, recipient := range recipients {
		// 权重过小分得 0 的接收人不建目标
		if amounts[i] == 0 {
			continue
		}
		next := &model.Target{
			Type:           target.Type,
			AssignedTo:     recipient.EmployeeID,
			AssignedToName: recipient.Name,
			AssignedToRole: recipient.Role,
			Value:          amounts[i],
			Achieved:       0,
			PeriodStart:    nextStart,
			PeriodEnd:      nextEnd,
			Status:         model.TargetStatusActive,
			AssignedBy:     operatorID,
			CarriedFromID:  &target.TargetID,
		}
		next.CreatedBy = &operatorID
		next.UpdatedBy = &operatorID
		if err := r.Target.Create(ctx, next); err != nil {
			return err
		}

		record := &model.ReassignmentRecord{
			TargetID:         target.TargetID,
			FromEmployeeID:   target.AssignedTo,
			FromEmployeeName: target.AssignedToName,
			ToEmployeeID:     recipient.EmployeeID,
			ToEmployeeName:   recipient.Name,
			ToEmployeeRole:   recipient.Role,
			Amount:           amounts[i],
			Reason:           reason,
			ReassignedBy:     operatorID,
		}
		if err := r.Reassignment.Create(ctx, record); err != nil {
			return err
		}
	}

	return r.Audit.Create(ctx, &model.AuditEntry{
		EventType:    model.AuditEventCarryForwardResolved,
		TargetID:     &target.TargetID,
		TargetType:   target.Type,
		EmployeeID:   &target.AssignedTo,
		EmployeeName: target.AssignedToName,
		EmployeeRole: target.AssignedToRole,
		Amount:       pending,
		Action:       string(model.ActionRedistribute),
		Status:       model.TargetStatusCarriedForward,
		Detail:       fmt.Sprintf("未完成量 %d 拆分给 %d 名接收人", pending, len(recipients)),
		RecordedBy:   &operatorID,
	})
}

// void 作废：未完成量记为流失，不产生后续目标
func (s *carryForwardService) void(ctx context.Context, r *repository.Repository, target *model.Target, operatorID string) error {
	pending := target.Pending()
	if err := r.Target.TransitionStatus(ctx, target.TargetID, model.TargetStatusVoid, target.Version, operatorID); err != nil {
		return err
	}
	return r.Audit.Create(ctx, &model.AuditEntry{
		EventType:    model.AuditEventCarryForwardResolved,
		TargetID:     &target.TargetID,
		TargetType:   target.Type,
		EmployeeID:   &target.AssignedTo,
		EmployeeName: target.AssignedToName,
		EmployeeRole: target.AssignedToRole,
		Amount:       pending,
		Action:       string(model.ActionVoid),
		Status:       model.TargetStatusVoid,
		Detail:       fmt.Sprintf("目标作废，未完成量 %d 记为流失", pending),
		RecordedBy:   &operatorID,
	})
}

// largestRemainderSplit 最大余数法整数拆分
// 按 weights[i]/Σweights 的比例把 total 拆成整数份额，合计恰好等于 total
// 余数从大到小依次补 1，余数相同按下标先后
func largestRemainderSplit(total int, weights []int) []int {
	sum := 0
	for _, w := range weights {
		sum += w
	}
	amounts := make([]int, len(weights))
	if sum <= 0 || total <= 0 {
		return amounts
	}

	type rem struct {
		idx int
		rem int
	}
	remainders := make([]rem, 0, len(weights))
	allocated := 0
	for i, w := range weights {
		amounts[i] = total * w / sum
		allocated += amounts[i]
		remainders = append(remainders, rem{idx: i, rem: total * w % sum})
	}

	// 简单插入排序：份额数通常很小
	for i := 1; i < len(remainders); i++ {
		for j := i; j > 0 && remainders[j].rem > remainders[j-1].rem; j-- {
			remainders[j], remainders[j-1] = remainders[j-1], remainders[j]
		}
	}

	for i := 0; allocated < total; i++ {
		amounts[remainders[i%len(remainders)].idx]++
		allocated++
	}
	return amounts
}
