// Package employee 提供员工与角色管理服务
package employee

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/crypto"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/repository"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/auth"
)

// Service 员工管理服务
type Service struct {
	db       *gorm.DB
	empRepo  *repository.EmployeeRepository
	roleRepo *repository.RoleRepository
	logRepo  *repository.OperationLogRepository
	hasher   *crypto.Hasher
}

// NewService 创建员工管理服务
func NewService(db *gorm.DB, hasher *crypto.Hasher) *Service {
	return &Service{
		db:       db,
		empRepo:  repository.NewEmployeeRepository(db),
		roleRepo: repository.NewRoleRepository(db),
		logRepo:  repository.NewOperationLogRepository(db),
		hasher:   hasher,
	}
}

// CreateRequest 创建员工请求，未提供密码时等待员工用同一邮箱注册后自动绑定
type CreateRequest struct {
	Email     string  `json:"email" binding:"required,email,max=120"`
	FirstName string  `json:"first_name" binding:"required,max=80"`
	LastName  string  `json:"last_name" binding:"max=80"`
	Phone     *string `json:"phone" binding:"omitempty,max=30"`
	Role      string  `json:"role" binding:"required,oneof=Admin Recepcionista Limpieza Mantenimiento"`
	Password  string  `json:"password" binding:"omitempty,min=8,max=72"`
}

// UpdateRequest 更新员工请求
type UpdateRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=80"`
	LastName  *string `json:"last_name" binding:"omitempty,max=80"`
	Phone     *string `json:"phone" binding:"omitempty,max=30"`
	Role      *string `json:"role" binding:"omitempty,oneof=Admin Recepcionista Limpieza Mantenimiento"`
	IsActive  *bool   `json:"is_active"`
}

// ListRequest 员工列表查询
type ListRequest struct {
	Role     string `form:"role"`
	IsActive *bool  `form:"is_active"`
	Keyword  string `form:"keyword"`
}

// Create 创建员工
func (s *Service) Create(ctx context.Context, adminID int64, req *CreateRequest, ip string) (*auth.EmployeeInfo, error) {
	role, err := s.role(ctx, req.Role)
	if err != nil {
		return nil, err
	}

	e := &models.Employee{
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     req.Phone,
		RoleID:    role.ID,
		IsActive:  true,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewEmployeeRepository(tx).Create(ctx, e); err != nil {
			return err
		}
		if req.Password != "" {
			if err := auth.CreateAccount(ctx, tx, s.hasher, e, req.Password); err != nil {
				return err
			}
		}
		return writeLog(ctx, tx, adminID, "create", e.ID, nil, models.JSON{
			"email": e.Email, "role": role.Name,
		}, ip)
	})
	if err != nil {
		return nil, errors.FromDB(err)
	}
	e.Role = role
	return auth.ToEmployeeInfo(e), nil
}

// Update 更新员工，管理员不能停用或降级自己
func (s *Service) Update(ctx context.Context, adminID, id int64, req *UpdateRequest, ip string) (*auth.EmployeeInfo, error) {
	e, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	before := models.JSON{"role": e.RoleName(), "is_active": e.IsActive}
	fields := map[string]interface{}{}
	if req.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Role != nil && *req.Role != e.RoleName() {
		if id == adminID {
			return nil, errors.ErrInvalidParams.WithMessage("No puede cambiar su propio rol")
		}
		role, err := s.role(ctx, *req.Role)
		if err != nil {
			return nil, err
		}
		fields["role_id"] = role.ID
	}
	if req.IsActive != nil && *req.IsActive != e.IsActive {
		if id == adminID && !*req.IsActive {
			return nil, errors.ErrInvalidParams.WithMessage("No puede desactivar su propia cuenta")
		}
		fields["is_active"] = *req.IsActive
	}
	if len(fields) == 0 {
		return auth.ToEmployeeInfo(e), nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewEmployeeRepository(tx).UpdateFields(ctx, id, fields); err != nil {
			return err
		}
		return writeLog(ctx, tx, adminID, "update", id, before, models.ToJSON(fields), ip)
	})
	if err != nil {
		return nil, errors.FromDB(err)
	}

	e, err = s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return auth.ToEmployeeInfo(e), nil
}

// Get 获取员工
func (s *Service) Get(ctx context.Context, id int64) (*auth.EmployeeInfo, error) {
	e, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return auth.ToEmployeeInfo(e), nil
}

// List 分页查询员工
func (s *Service) List(ctx context.Context, req *ListRequest, offset, limit int) ([]*auth.EmployeeInfo, int64, error) {
	filter := repository.OperationLogFilter{
		EmployeeID: utils.SafeInt64(req.EmployeeID),
		Module:     req.Module,
		Action:     req.Action,
		TargetType: req.TargetType,
		TargetID:   utils.SafeInt64(req.TargetID),
		From:       req.From,
		To:         req.To,
	}
	list, total, err := s.logRepo.List(ctx, filter, offset, limit)
	if err != nil {
		if errors.IsCanceled(err) {
			return []*models.OperationLog{}, 0, nil
		}
		return nil, 0, errors.FromDB(err)
	}
	return list, total, nil
}

func (s *Service) get(ctx context.Context, id int64) (*models.Employee, error) {
	e, err := s.empRepo.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrEmployeeNotFound
		}
		return nil, errors.FromDB(err)
	}
	return e, nil
}

func (s *Service) role(ctx context.Context, name string) (*models.Role, error) {
	role, err := s.roleRepo.GetByName(ctx, name)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrRoleNotFound
		}
		return nil, errors.FromDB(err)
	}
	return role, nil
}

func writeLog(ctx context.Context, tx *gorm.DB, adminID int64, action string, targetID int64, before, after models.JSON, ip string) error {
	targetType := "employee"
	return repository.NewOperationLogRepository(tx).Create(ctx, &models.OperationLog{
		EmployeeID: adminID,
		Module:     "employee",
		Action:     action,
		TargetType: &targetType,
		TargetID:   &targetID,
		BeforeData: before,
		AfterData:  after,
		IP:         ip,
	})
}
