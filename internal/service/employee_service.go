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

// ── 员工目录业务错误 ──

var (
	ErrInvalidRole             = pkgerrors.Mark(pkgerrors.KindInvalidArgument, errors.New("无效的员工角色"))
	ErrManagerNotFound         = pkgerrors.Mark(pkgerrors.KindInvalidArgument, errors.New("直属经理不存在"))
	ErrEmployeeAlreadyDeparted = pkgerrors.Mark(pkgerrors.KindInvalidState, errors.New("员工已离职"))
	ErrInvalidDepartureDate    = pkgerrors.Mark(pkgerrors.KindInvalidArgument, errors.New("离职日期格式错误，应为 YYYY-MM-DD"))
)

// EmployeeService 员工目录业务接口
// 目录本体由花名册协作方维护，这里提供引擎侧需要的查询和离职迁移入口
type EmployeeService interface {
	Create(ctx context.Context, req *dto.CreateEmployeeRequest, operatorID string) (*dto.EmployeeResponse, error)
	Update(ctx context.Context, employeeID string, req *dto.UpdateEmployeeRequest, operatorID string) (*dto.EmployeeResponse, error)
	GetByID(ctx context.Context, employeeID string) (*dto.EmployeeResponse, error)
	List(ctx context.Context, req *dto.EmployeeListRequest) ([]dto.EmployeeResponse, int64, error)
	// Depart 在职→离职迁移；离职后名下 active 目标需通过离职批量转派处理
	Depart(ctx context.Context, employeeID string, req *dto.DepartEmployeeRequest, operatorID string) (*dto.EmployeeResponse, error)
}

type employeeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEmployeeService 创建 EmployeeService 实例
func NewEmployeeService(repo *repository.Repository, logger *zap.Logger) EmployeeService {
	return &employeeService{repo: repo, logger: logger}
}

func (s *employeeService) Create(ctx context.Context, req *dto.CreateEmployeeRequest, operatorID string) (*dto.EmployeeResponse, error) {
	if !model.IsValidRole(req.Role) {
		return nil, ErrInvalidRole
	}
	if req.ManagerID != nil {
		if _, err := s.repo.Employee.GetByID(ctx, *req.ManagerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrManagerNotFound
			}
			s.logger.Error("查询直属经理失败", zap.String("manager_id", *req.ManagerID), zap.Error(err))
			return nil, err
		}
	}

	emp := &model.Employee{
		Name:      req.Name,
		Role:      req.Role,
		ManagerID: req.ManagerID,
		State:     req.State,
		Status:    model.EmployeeStatusActive,
	}
	emp.CreatedBy = &operatorID
	emp.UpdatedBy = &operatorID
	if err := s.repo.Employee.Create(ctx, emp); err != nil {
		s.logger.Error("创建员工失败", zap.String("name", req.Name), zap.Error(err))
		return nil, err
	}

	s.logger.Info("员工已创建", zap.String("employee_id", emp.EmployeeID), zap.String("role", emp.Role))
	return toEmployeeResponse(emp, 0), nil
}

func (s *employeeService) Update(ctx context.Context, employeeID string, req *dto.UpdateEmployeeRequest, operatorID string) (*dto.EmployeeResponse, error) {
	emp, err := s.repo.Employee.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		emp.Name = *req.Name
	}
	if req.Role != nil {
		if !model.IsValidRole(*req.Role) {
			return nil, ErrInvalidRole
		}
		emp.Role = *req.Role
	}
	if req.ManagerID != nil {
		if _, err := s.repo.Employee.GetByID(ctx, *req.ManagerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrManagerNotFound
			}
			return nil, err
		}
		emp.ManagerID = req.ManagerID
	}
	if req.State != nil {
		emp.State = *req.State
	}
	emp.UpdatedBy = &operatorID

	if err := s.repo.Employee.Update(ctx, emp); err != nil {
		s.logger.Error("更新员工失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	count, err := s.pendingTargets(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return toEmployeeResponse(emp, count), nil
}

func (s *employeeService) GetByID(ctx context.Context, employeeID string) (*dto.EmployeeResponse, error) {
	emp, err := s.repo.Employee.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	count, err := s.pendingTargets(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return toEmployeeResponse(emp, count), nil
}

func (s *employeeService) List(ctx context.Context, req *dto.EmployeeListRequest) ([]dto.EmployeeResponse, int64, error) {
	filter := repository.EmployeeFilter{
		Role:            req.Role,
		State:           req.State,
		NameContains:    req.Name,
		IncludeDeparted: req.IncludeDeparted,
	}
	emps, total, err := s.repo.Employee.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询员工列表失败", zap.Error(err))
		return nil, 0, err
	}

	ids := make([]string, 0, len(emps))
	for i := range emps {
		ids = append(ids, emps[i].EmployeeID)
	}
	counts, err := s.repo.Employee.CountActiveTargets(ctx, ids)
	if err != nil {
		s.logger.Error("统计进行中目标失败", zap.Error(err))
		return nil, 0, err
	}

	resps := make([]dto.EmployeeResponse, 0, len(emps))
	for i := range emps {
		resps = append(resps, *toEmployeeResponse(&emps[i], counts[emps[i].EmployeeID]))
	}
	return resps, total, nil
}

func (s *employeeService) Depart(ctx context.Context, employeeID string, req *dto.DepartEmployeeRequest, operatorID string) (*dto.EmployeeResponse, error) {
	emp, err := s.repo.Employee.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		s.logger.Error("查询员工失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	if emp.Status == model.EmployeeStatusDeparted {
		return nil, ErrEmployeeAlreadyDeparted
	}

	departureDate := time.Now()
	if req.DepartureDate != "" {
		d, err := time.Parse(dateLayout, req.DepartureDate)
		if err != nil {
			return nil, ErrInvalidDepartureDate
		}
		departureDate = d
	}

	err = s.repo.Atomic.Run(ctx, func(r *repository.Repository) error {
		if err := r.Employee.MarkDeparted(ctx, employeeID, departureDate, emp.Version, operatorID); err != nil {
			return err
		}
		entry := &model.AuditEntry{
			EventType:    model.AuditEventEmployeeDeparture,
			EmployeeID:   &emp.EmployeeID,
			EmployeeName: emp.Name,
			EmployeeRole: emp.Role,
			Action:       "depart",
			Status:       model.EmployeeStatusDeparted,
			Detail:       "员工离职，离职日期 " + departureDate.Format(dateLayout),
			RecordedBy:   &operatorID,
		}
		return r.Audit.Create(ctx, entry)
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrEmployeeAlreadyDeparted
		}
		s.logger.Error("标记离职失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("员工已离职", zap.String("employee_id", employeeID))

	emp.Status = model.EmployeeStatusDeparted
	emp.DepartureDate = &departureDate
	count, err := s.pendingTargets(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return toEmployeeResponse(emp, count), nil
}

// pendingTargets 查询单个员工进行中目标数
func (s *employeeService) pendingTargets(ctx context.Context, employeeID string) (int64, error) {
	counts, err := s.repo.Employee.CountActiveTargets(ctx, []string{employeeID})
	if err != nil {
		s.logger.Error("统计进行中目标失败", zap.String("employee_id", employeeID), zap.Error(err))
		return 0, err
	}
	return counts[employeeID], nil
}
