package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"yuva-vikas/backend/config"
	"yuva-vikas/backend/internal/dto"
	"yuva-vikas/backend/internal/model"
	"yuva-vikas/backend/internal/repository"
)

// ── 测试辅助 ──

func setupTestCarryForwardService() (CarryForwardService, *repository.Repository, *mockEmployeeRepo, *mockTargetRepo, *mockReassignmentRepo, *mockAuditRepo) {
	repo, empRepo, targetRepo, reassignRepo, auditRepo := newMockRepository()
	seedEmployee(empRepo, "emp-001", "王芳", model.RoleMobiliser, model.EmployeeStatusActive)
	seedEmployee(empRepo, "emp-002", "刘强", model.RoleMobiliser, model.EmployeeStatusActive)
	seedEmployee(empRepo, "emp-003", "赵敏", model.RoleMobiliser, model.EmployeeStatusActive)
	cfg := &config.Config{
		Engine: config.EngineConfig{ResolverLockTTL: 2 * time.Minute, RateLimit: 120},
	}
	// rdb 为 nil：单元测试不依赖 Redis，互斥由乐观锁兜底
	svc := NewCarryForwardService(cfg, repo, nil, zap.NewNop())
	return svc, repo, empRepo, targetRepo, reassignRepo, auditRepo
}

// seedExpiredTarget 构造一个周期已结束的目标
func seedExpiredTarget(targetRepo *mockTargetRepo, id string, targetType model.TargetType, value, achieved int) *model.Target {
	t := &model.Target{
		TargetID:       id,
		Type:           targetType,
		AssignedTo:     "emp-001",
		AssignedToName: "王芳",
		AssignedToRole: model.RoleMobiliser,
		Value:          value,
		Achieved:       achieved,
		PeriodStart:    time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Status:         model.TargetStatusActive,
		AssignedBy:     "op-001",
	}
	targetRepo.targets[id] = t
	targetRepo.order = append(targetRepo.order, id)
	return t
}

// ── ListQueue 测试 ──

func TestCarryForwardService_ListQueue_AutoCompletesFullyAchieved(t *testing.T) {
	svc, _, _, targetRepo, _, auditRepo := setupTestCarryForwardService()
	seedExpiredTarget(targetRepo, "tgt-done", model.TargetTypeMobilisation, 100, 100)
	seedExpiredTarget(targetRepo, "tgt-open", model.TargetTypeMobilisation, 100, 60)

	resp, err := svc.ListQueue(context.Background(), "op-001")
	if err != nil {
		t.Fatalf("ListQueue 应成功: %v", err)
	}
	if resp.AutoCompleted != 1 {
		t.Errorf("期望自动完结 1 个，实际=%d", resp.AutoCompleted)
	}
	if targetRepo.targets["tgt-done"].Status != model.TargetStatusCompleted {
		t.Errorf("全额完成的过期目标应完结，实际=%s", targetRepo.targets["tgt-done"].Status)
	}
	if len(resp.Items) != 1 || resp.Items[0].TargetID != "tgt-open" {
		t.Fatalf("待办队列应只含 tgt-open，实际=%+v", resp.Items)
	}
	if auditRepo.countByEvent(model.AuditEventCarryForwardResolved) != 1 {
		t.Error("自动完结应写入一条 carry_forward_resolved 流水")
	}

	// 再次扫描：已完结目标不应重复处理
	resp2, err := svc.ListQueue(context.Background(), "op-001")
	if err != nil {
		t.Fatalf("二次扫描应成功: %v", err)
	}
	if resp2.AutoCompleted != 0 {
		t.Errorf("二次扫描不应再完结目标，实际=%d", resp2.AutoCompleted)
	}
}

func TestCarryForwardService_ListQueue_EligibilityAndProposedAction(t *testing.T) {
	svc, _, _, targetRepo, _, _ := setupTestCarryForwardService()
	// migration（含）之前可结转，enrolment（含）之后只能作废
	seedExpiredTarget(targetRepo, "tgt-mob", model.TargetTypeMobilisation, 100, 40)
	seedExpiredTarget(targetRepo, "tgt-plc", model.TargetTypePlacement, 20, 5)

	resp, err := svc.ListQueue(context.Background(), "op-001")
	if err != nil {
		t.Fatalf("ListQueue 应成功: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("期望 2 条待办，实际=%d", len(resp.Items))
	}
	byID := make(map[string]dto.CarryForwardItemResponse)
	for _, item := range resp.Items {
		byID[item.TargetID] = item
	}
	if !byID["tgt-mob"].CanCarryForward || byID["tgt-mob"].ProposedAction != "add_to_next" {
		t.Errorf("动员类应可结转且默认 add_to_next: %+v", byID["tgt-mob"])
	}
	if byID["tgt-plc"].CanCarryForward || byID["tgt-plc"].ProposedAction != "void" {
		t.Errorf("就业类应不可结转且默认 void: %+v", byID["tgt-plc"])
	}
	if byID["tgt-mob"].Pending != 60 {
		t.Errorf("期望Pending=60，实际=%d", byID["tgt-mob"].Pending)
	}
	// 下一周期窗口与当前周期等长且紧接其后
	if byID["tgt-mob"].ToPeriodStart != "2026-08-01" || byID["tgt-mob"].ToPeriodEnd != "2026-09-01" {
		t.Errorf("下一周期窗口不符: %s ~ %s", byID["tgt-mob"].ToPeriodStart, byID["tgt-mob"].ToPeriodEnd)
	}
}

func TestCarryForwardService_ListQueue_SkipsUnexpired(t *testing.T) {
	svc, _, _, targetRepo, _, _ := setupTestCarryForwardService()
	future := seedExpiredTarget(targetRepo, "tgt-001", model.TargetTypeMobilisation, 100, 40)
	future.PeriodEnd = time.Now().AddDate(0, 1, 0)

	resp, err := svc.ListQueue(context.Background(), "op-001")
	if err != nil {
		t.Fatalf("ListQueue 应成功: %v", err)
	}
	if len(resp.Items) != 0 || resp.AutoCompleted != 0 {
		t.Errorf("周期未结束的目标不应进入期末处理: %+v", resp)
	}
}

// ── Resolve: add_to_next ──

func TestCarryForwardService_Resolve_AddToNext(t *testing.T) {
	svc, _, _, targetRepo, _, auditRepo := setupTestCarryForwardService()
	seedExpiredTarget(targetRepo, "tgt-001", model.TargetTypeMobilisation, 100, 60)

	req := &dto.ResolveCarryForwardRequest{
		Items: []dto.ResolveCarryForwardItem{{TargetID: "tgt-001", Action: "add_to_next"}},
	}

	resp, err := svc.Resolve(context.Background(), req, "op-001")
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if resp.Resolved != 1 {
		t.Errorf("期望Resolved=1，实际=%d", resp.Resolved)
	}
	if targetRepo.targets["tgt-001"].Status != model.TargetStatusCarriedForward {
		t.Errorf("源目标应为 carried_forward，实际=%s", targetRepo.targets["tgt-001"].Status)
	}

	// 新目标：value = pending，同一员工，下一周期，链回源目标
	var next *model.Target
	for _, id := range targetRepo.order {
		if id != "tgt-001" {
			next = targetRepo.targets[id]
		}
	}
	if next == nil {
		t.Fatal("应创建下一周期目标")
	}
	if next.Value != 40 || next.Achieved != 0 {
		t.Errorf("期望新目标Value=40 Achieved=0，实际=%d/%d", next.Value, next.Achieved)
	}
	if next.AssignedTo != "emp-001" {
		t.Errorf("顺延目标应归属同一员工，实际=%s", next.AssignedTo)
	}
	if !next.PeriodStart.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)) ||
		!next.PeriodEnd.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("下一周期窗口不符: %v ~ %v", next.PeriodStart, next.PeriodEnd)
	}
	if next.CarriedFromID == nil || *next.CarriedFromID != "tgt-001" {
		t.Error("新目标应携带 carried_from_id 链回源目标")
	}
	if auditRepo.countByEvent(model.AuditEventCarryForwardResolved) != 1 {
		t.Error("结转应写入一条 carry_forward_resolved 流水")
	}
}

// ── Resolve: redistribute ──

func TestCarryForwardService_Resolve_Redistribute_ConservesPending(t *testing.T) {
	svc, _, _, targetRepo, reassignRepo, _ := setupTestCarryForwardService()
	seedExpiredTarget(targetRepo, "tgt-001", model.TargetTypeMobilisation, 100, 0)

	// 100 按 1:1:1 拆分：最大余数法得 34/33/33
	req := &dto.ResolveCarryForwardRequest{
		Items: []dto.ResolveCarryForwardItem{{
			TargetID: "tgt-001",
			Action:   "redistribute",
			Redistribution: []dto.RedistributionShare{
				{ToEmployeeID: "emp-001", Weight: 1},
				{ToEmployeeID: "emp-002", Weight: 1},
				{ToEmployeeID: "emp-003", Weight: 1},
			},
		}},
	}

	if _, err := svc.Resolve(context.Background(), req, "op-001"); err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if targetRepo.targets["tgt-001"].Status != model.TargetStatusCarriedForward {
		t.Errorf("源目标应为 carried_forward，实际=%s", targetRepo.targets["tgt-001"].Status)
	}

	total := 0
	count := 0
	for _, id := range targetRepo.order {
		tgt := targetRepo.targets[id]
		if tgt.CarriedFromID != nil && *tgt.CarriedFromID == "tgt-001" {
			total += tgt.Value
			count++
		}
	}
	if count != 3 {
		t.Errorf("期望 3 个新目标，实际=%d", count)
	}
	if total != 100 {
		t.Errorf("份额合计必须等于 pending=100，实际=%d", total)
	}

	records, _ := reassignRepo.ListByTargetID(context.Background(), "tgt-001")
	if len(records) != 3 {
		t.Errorf("每个接收人应各有一条转派记录，实际=%d", len(records))
	}
}

func TestCarryForwardService_Resolve_Redistribute_MissingShares(t *testing.T) {
	svc, _, _, targetRepo, _, _ := setupTestCarryForwardService()
	seedExpiredTarget(targetRepo, "tgt-001", model.TargetTypeMobilisation, 100, 0)

	req := &dto.ResolveCarryForwardRequest{
		Items: []dto.ResolveCarryForwardItem{{TargetID: "tgt-001", Action: "redistribute"}},
	}

	_, err := svc.Resolve(context.Background(), req, "op-001")
	if !errors.Is(err, ErrRedistributionRequired) {
		t.Errorf("期望 ErrRedistributionRequired，实际: %v", err)
	}
}

// ── Resolve: void 与结转资格 ──

func TestCarryForwardService_Resolve_Void(t *testing.T) {
	svc, _, _, targetRepo, _, auditRepo := setupTestCarryForwardService()
	seedExpiredTarget(targetRepo, "tgt-001", model.TargetTypePlacement, 20, 5)

	req := &dto.ResolveCarryForwardRequest{
		Items: []dto.ResolveCarryForwardItem{{TargetID: "tgt-001", Action: "void"}},
	}

	if _, err := svc.Resolve(context.Background(), req, "op-001"); err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if targetRepo.targets["tgt-001"].Status != model.TargetStatusVoid {
		t.Errorf("目标应作废，实际=%s", targetRepo.targets["tgt-001"].Status)
	}
	// 作废不产生任何后续目标
	if len(targetRepo.order) != 1 {
		t.Errorf("void 不应创建新目标，实际目标数=%d", len(targetRepo.order))
	}
	if auditRepo.countByEvent(model.AuditEventCarryForwardResolved) != 1 {
		t.Error("作废应写入一条 carry_forward_resolved 流水")
	}
}

func TestCarryForwardService_Resolve_IneligibleTypeRejectsCarry(t *testing.T) {
	svc, _, _, targetRepo, _, _ := setupTestCarryForwardService()
	// enrolment 不可结转
	seedExpiredTarget(targetRepo, "tgt-001", model.TargetTypeEnrolment, 50, 10)

	for _, action := range []string{"add_to_next", "redistribute"} {
		req := &dto.ResolveCarryForwardRequest{
			Items: []dto.ResolveCarryForwardItem{{
				TargetID: "tgt-001",
				Action:   action,
				Redistribution: []dto.RedistributionShare{
					{ToEmployeeID: "emp-002", Weight: 1},
				},
			}},
		}
		_, err := svc.Resolve(context.Background(), req, "op-001")
		if !errors.Is(err, ErrCarryForwardNotAllowed) {
			t.Errorf("动作 %s 期望 ErrCarryForwardNotAllowed，实际: %v", action, err)
		}
	}
	// 不可结转类型的目标绝不进入 carried_forward 状态
	if targetRepo.targets["tgt-001"].Status != model.TargetStatusActive {
		t.Errorf("被拒绝的结转不得改变状态，实际=%s", targetRepo.targets["tgt-001"].Status)
	}
}

// 整批原子性：第二条被拒绝时，第一条已执行的结转必须随整批回滚
func TestCarryForwardService_Resolve_BatchFailureRollsBackEarlierItems(t *testing.T) {
	svc, _, _, targetRepo, _, auditRepo := setupTestCarryForwardService()
	seedExpiredTarget(targetRepo, "tgt-ok", model.TargetTypeMobilisation, 100, 60)
	// enrolment 不可结转，第二条必然被拒绝
	seedExpiredTarget(targetRepo, "tgt-bad", model.TargetTypeEnrolment, 50, 10)

	req := &dto.ResolveCarryForwardRequest{
		Items: []dto.ResolveCarryForwardItem{
			{TargetID: "tgt-ok", Action: "add_to_next"},
			{TargetID: "tgt-bad", Action: "add_to_next"},
		},
	}

	_, err := svc.Resolve(context.Background(), req, "op-001")
	if !errors.Is(err, ErrCarryForwardNotAllowed) {
		t.Fatalf("期望 ErrCarryForwardNotAllowed，实际: %v", err)
	}

	// 第一条不得停留在 carried_forward：整批失败即全部回滚
	if targetRepo.targets["tgt-ok"].Status != model.TargetStatusActive {
		t.Errorf("批量失败后第一条应回滚为 active，实际=%s", targetRepo.targets["tgt-ok"].Status)
	}
	if targetRepo.targets["tgt-bad"].Status != model.TargetStatusActive {
		t.Errorf("被拒绝的第二条应保持 active，实际=%s", targetRepo.targets["tgt-bad"].Status)
	}
	if len(targetRepo.order) != 2 {
		t.Errorf("回滚后不应残留新建目标，实际目标数=%d", len(targetRepo.order))
	}
	if auditRepo.countByEvent(model.AuditEventCarryForwardResolved) != 0 {
		t.Errorf("回滚后不应残留结转流水，实际=%d", auditRepo.countByEvent(model.AuditEventCarryForwardResolved))
	}
}

// ── Resolve: 边界 ──

func TestCarryForwardService_Resolve_EmptyItems(t *testing.T) {
	svc, _, _, _, _, _ := setupTestCarryForwardService()

	resp, err := svc.Resolve(context.Background(), &dto.ResolveCarryForwardRequest{}, "op-001")
	if err != nil {
		t.Fatalf("空请求应成功: %v", err)
	}
	if resp.Resolved != 0 {
		t.Errorf("期望Resolved=0，实际=%d", resp.Resolved)
	}
}

func TestCarryForwardService_Resolve_InvalidAction(t *testing.T) {
	svc, _, _, targetRepo, _, _ := setupTestCarryForwardService()
	seedExpiredTarget(targetRepo, "tgt-001", model.TargetTypeMobilisation, 100, 0)

	req := &dto.ResolveCarryForwardRequest{
		Items: []dto.ResolveCarryForwardItem{{TargetID: "tgt-001", Action: "discard"}},
	}

	_, err := svc.Resolve(context.Background(), req, "op-001")
	if !errors.Is(err, ErrInvalidAction) {
		t.Errorf("期望 ErrInvalidAction，实际: %v", err)
	}
}

func TestCarryForwardService_Resolve_NotExpired(t *testing.T) {
	svc, _, _, targetRepo, _, _ := setupTestCarryForwardService()
	future := seedExpiredTarget(targetRepo, "tgt-001", model.TargetTypeMobilisation, 100, 0)
	future.PeriodEnd = time.Now().AddDate(0, 1, 0)

	req := &dto.ResolveCarryForwardRequest{
		Items: []dto.ResolveCarryForwardItem{{TargetID: "tgt-001", Action: "add_to_next"}},
	}

	_, err := svc.Resolve(context.Background(), req, "op-001")
	if !errors.Is(err, ErrTargetNotExpired) {
		t.Errorf("期望 ErrTargetNotExpired，实际: %v", err)
	}
}

func TestCarryForwardService_Resolve_FullyAchievedCompletesRegardlessOfAction(t *testing.T) {
	svc, _, _, targetRepo, _, _ := setupTestCarryForwardService()
	seedExpiredTarget(targetRepo, "tgt-001", model.TargetTypeMobilisation, 100, 100)

	req := &dto.ResolveCarryForwardRequest{
		Items: []dto.ResolveCarryForwardItem{{TargetID: "tgt-001", Action: "void"}},
	}

	resp, err := svc.Resolve(context.Background(), req, "op-001")
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if resp.Resolved != 1 {
		t.Errorf("期望Resolved=1，实际=%d", resp.Resolved)
	}
	if targetRepo.targets["tgt-001"].Status != model.TargetStatusCompleted {
		t.Errorf("pending==0 的目标无论动作都应完结，实际=%s", targetRepo.targets["tgt-001"].Status)
	}
}

// ── largestRemainderSplit ──

func TestLargestRemainderSplit(t *testing.T) {
	cases := []struct {
		name    string
		total   int
		weights []int
		want    []int
	}{
		{"整除", 100, []int{1, 1}, []int{50, 50}},
		{"余数补给大余者", 100, []int{1, 1, 1}, []int{34, 33, 33}},
		{"权重悬殊", 10, []int{9, 1}, []int{9, 1}},
		{"小计量大权重", 2, []int{5, 3, 2}, []int{1, 1, 0}},
		{"单接收人", 7, []int{3}, []int{7}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := largestRemainderSplit(tc.total, tc.weights)
			sum := 0
			for i, v := range got {
				sum += v
				if v != tc.want[i] {
					t.Errorf("份额[%d]期望%d，实际%d（全部=%v）", i, tc.want[i], v, got)
				}
			}
			if sum != tc.total {
				t.Errorf("份额合计必须等于 %d，实际=%d", tc.total, sum)
			}
		})
	}
}
