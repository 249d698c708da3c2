package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"yuva-vikas/backend/internal/dto"
	"yuva-vikas/backend/internal/model"
	"yuva-vikas/backend/internal/repository"
	pkgerrors "yuva-vikas/backend/pkg/errors"
)

var ErrInvalidDateRange = pkgerrors.Mark(pkgerrors.KindInvalidArgument, errors.New("日期格式错误，应为 YYYY-MM-DD"))

// AuditService 审计流水查询接口
// 流水只增不改，这里只提供过滤查询
type AuditService interface {
	Query(ctx context.Context, req *dto.AuditQueryRequest) ([]dto.AuditEntryResponse, int64, error)
}

type auditService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAuditService 创建 AuditService 实例
func NewAuditService(repo *repository.Repository, logger *zap.Logger) AuditService {
	return &auditService{repo: repo, logger: logger}
}

func (s *auditService) Query(ctx context.Context, req *dto.AuditQueryRequest) ([]dto.AuditEntryResponse, int64, error) {
	filter := repository.AuditFilter{
		EmployeeNameContains: req.Name,
		TargetType:           model.TargetType(req.TargetType),
		EventType:            req.EventType,
		Status:               req.Status,
	}
	// from 闭区间；to 解析为次日零点作开区间，使 to 当天的流水也被包含
	if req.From != "" {
		from, err := time.Parse(dateLayout, req.From)
		if err != nil {
			return nil, 0, ErrInvalidDateRange
		}
		filter.From = from
	}
	if req.To != "" {
		to, err := time.Parse(dateLayout, req.To)
		if err != nil {
			return nil, 0, ErrInvalidDateRange
		}
		filter.To = to.AddDate(0, 0, 1)
	}

	entries, total, err := s.repo.Audit.Query(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询审计流水失败", zap.Error(err))
		return nil, 0, err
	}

	resps := make([]dto.AuditEntryResponse, 0, len(entries))
	for i := range entries {
		resps = append(resps, toAuditEntryResponse(&entries[i]))
	}
	return resps, total, nil
}
