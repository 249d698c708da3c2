package service

import (
	"time"

	"yuva-vikas/backend/internal/dto"
	"yuva-vikas/backend/internal/model"
)

// ── 模型 → 响应 DTO 转换（各 Service 共用） ──

const dateLayout = "2006-01-02"

func toTargetResponse(t *model.Target) *dto.TargetResponse {
	return &dto.TargetResponse{
		ID:               t.TargetID,
		Type:             string(t.Type),
		AssignedTo:       t.AssignedTo,
		AssignedToName:   t.AssignedToName,
		AssignedToRole:   t.AssignedToRole,
		Value:            t.Value,
		Achieved:         t.Achieved,
		Pending:          t.Pending(),
		Progress:         t.Progress(),
		PeriodStart:      t.PeriodStart.Format(dateLayout),
		PeriodEnd:        t.PeriodEnd.Format(dateLayout),
		Status:           t.Status,
		AssignedBy:       t.AssignedBy,
		CarriedFromID:    t.CarriedFromID,
		ReassignedFromID: t.ReassignedFromID,
		CreatedAt:        t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        t.UpdatedAt.Format(time.RFC3339),
	}
}

func toEmployeeResponse(e *model.Employee, pendingTargets int64) *dto.EmployeeResponse {
	resp := &dto.EmployeeResponse{
		ID:                  e.EmployeeID,
		Name:                e.Name,
		Role:                e.Role,
		ManagerID:           e.ManagerID,
		State:               e.State,
		Status:              e.Status,
		PendingTargetsCount: pendingTargets,
		CreatedAt:           e.CreatedAt.Format(time.RFC3339),
	}
	if e.Manager != nil {
		resp.ManagerName = e.Manager.Name
	}
	if e.DepartureDate != nil {
		d := e.DepartureDate.Format(dateLayout)
		resp.DepartureDate = &d
	}
	return resp
}

func toReassignmentRecordResponse(r *model.ReassignmentRecord) *dto.ReassignmentRecordResponse {
	return &dto.ReassignmentRecordResponse{
		ID:               r.ReassignmentID,
		TargetID:         r.TargetID,
		FromEmployeeID:   r.FromEmployeeID,
		FromEmployeeName: r.FromEmployeeName,
		ToEmployeeID:     r.ToEmployeeID,
		ToEmployeeName:   r.ToEmployeeName,
		ToEmployeeRole:   r.ToEmployeeRole,
		Amount:           r.Amount,
		Reason:           r.Reason,
		ReassignedBy:     r.ReassignedBy,
		ReassignedAt:     r.ReassignedAt.Format(time.RFC3339),
	}
}

func toAuditEntryResponse(e *model.AuditEntry) dto.AuditEntryResponse {
	return dto.AuditEntryResponse{
		ID:           e.EntryID,
		EventType:    e.EventType,
		TargetID:     e.TargetID,
		TargetType:   string(e.TargetType),
		EmployeeID:   e.EmployeeID,
		EmployeeName: e.EmployeeName,
		EmployeeRole: e.EmployeeRole,
		Amount:       e.Amount,
		Action:       e.Action,
		Status:       e.Status,
		Detail:       e.Detail,
		RecordedBy:   e.RecordedBy,
		RecordedAt:   e.RecordedAt.Format(time.RFC3339),
	}
}
