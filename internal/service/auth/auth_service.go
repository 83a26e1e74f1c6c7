// Package auth 提供员工登录、注册与会话服务
package auth

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/crypto"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/jwt"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/repository"
)

// Service 员工认证服务
type Service struct {
	db          *gorm.DB
	accountRepo *repository.AuthAccountRepository
	empRepo     *repository.EmployeeRepository
	jwtManager  *jwt.Manager
	hasher      *crypto.Hasher
	allowSignup bool
}

// NewService 创建认证服务
func NewService(db *gorm.DB, jwtManager *jwt.Manager, hasher *crypto.Hasher, allowSignup bool) *Service {
	return &Service{
		db:          db,
		accountRepo: repository.NewAuthAccountRepository(db),
		empRepo:     repository.NewEmployeeRepository(db),
		jwtManager:  jwtManager,
		hasher:      hasher,
		allowSignup: allowSignup,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	IP       string `json:"-"`
}

// RegisterRequest 管理员自助注册请求
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=120"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	FirstName string `json:"first_name" binding:"required,max=80"`
	LastName  string `json:"last_name" binding:"max=80"`
	IP        string `json:"-"`
}

// EmployeeInfo 员工信息（不含敏感字段）
type EmployeeInfo struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	FullName  string  `json:"full_name"`
	Phone     *string `json:"phone,omitempty"`
	Role      string  `json:"role"`
	IsActive  bool    `json:"is_active"`
}

// ToEmployeeInfo 转换为员工信息
func ToEmployeeInfo(e *models.Employee) *EmployeeInfo {
	return &EmployeeInfo{
		ID:        e.ID,
		Email:     e.Email,
		FirstName: e.FirstName,
		LastName:  e.LastName,
		FullName:  e.FullName(),
		Phone:     e.Phone,
		Role:      e.RoleName(),
		IsActive:  e.IsActive,
	}
}

// LoginResponse 登录响应
type LoginResponse struct {
	Employee  *EmployeeInfo  `json:"employee"`
	TokenPair *jwt.TokenPair `json:"token"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login 员工登录
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	// 1. 账号与密码
	account, err := s.accountRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrPasswordError
		}
		return nil, errors.FromDB(err)
	}
	if !s.hasher.Verify(req.Password, account.PasswordHash) {
		return nil, errors.ErrPasswordError
	}

	// 2. 员工档案，缺失时同步创建
	var employee *models.Employee
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		employee, err = syncEmployee(ctx, tx, account, "", "")
		return err
	})
	if err != nil {
		return nil, errors.FromDB(err)
	}
	if !employee.IsActive {
		return nil, errors.ErrAccountDisabled
	}

	// 3. 令牌
	tokenPair, err := s.jwtManager.GenerateTokenPair(employee.ID, account.AuthID, employee.RoleName())
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}

	if err := s.accountRepo.UpdateLastLogin(ctx, account.ID, req.IP); err != nil {
		logger.Warn("update last login failed", logger.EmployeeID(employee.ID), logger.Err(err))
	}
	logger.Info("employee logged in", logger.EmployeeID(employee.ID), logger.IP(req.IP))

	return &LoginResponse{Employee: ToEmployeeInfo(employee), TokenPair: tokenPair}, nil
}

// RegisterAdmin 管理员自助注册，需在配置中开启
func (s *Service) RegisterAdmin(ctx context.Context, req *RegisterRequest) (*LoginResponse, error) {
	if !s.allowSignup {
		return nil, errors.ErrRegistrationClose
	}
	email := normalizeEmail(req.Email)
	exists, err := s.accountRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, errors.FromDB(err)
	}
	if exists {
		return nil, errors.ErrEmailExists
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, errors.ErrInvalidParams.WithMessage("Contraseña inválida")
	}

	account := &models.AuthAccount{
		AuthID:       uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	}
	var employee *models.Employee
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewAuthAccountRepository(tx).Create(ctx, account); err != nil {
			return err
		}
		var err error
		employee, err = syncEmployee(ctx, tx, account, strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName))
		return err
	})
	if err != nil {
		if stderrors.Is(err, errors.ErrAlreadyExists) {
			return nil, errors.ErrEmailExists
		}
		return nil, errors.FromDB(err)
	}

	tokenPair, err := s.jwtManager.GenerateTokenPair(employee.ID, account.AuthID, employee.RoleName())
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}
	logger.Info("admin registered", logger.EmployeeID(employee.ID), logger.IP(req.IP))
	return &LoginResponse{Employee: ToEmployeeInfo(employee), TokenPair: tokenPair}, nil
}

// syncEmployee 为登录账号找到员工档案：已绑定的直接返回；
// 同邮箱的未绑定档案会被绑定；都没有时创建管理员档案
func syncEmployee(ctx context.Context, tx *gorm.DB, account *models.AuthAccount, firstName, lastName string) (*models.Employee, error) {
	empRepo := repository.NewEmployeeRepository(tx)

	e, err := empRepo.GetByAuthID(ctx, account.AuthID)
	if err == nil {
		return e, nil
	}
	if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 1. 管理员预先创建的档案
	e, err = empRepo.GetUnlinkedByEmail(ctx, account.Email)
	if err == nil {
		authID := account.AuthID
		if err := empRepo.UpdateFields(ctx, e.ID, map[string]interface{}{"auth_id": authID}); err != nil {
			return nil, err
		}
		e.AuthID = &authID
		return e, nil
	}
	if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 2. 首次登录引导为管理员
	role, err := repository.NewRoleRepository(tx).GetByName(ctx, models.RoleAdmin)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrRoleNotFound
		}
		return nil, err
	}
	if firstName == "" {
		firstName = strings.SplitN(account.Email, "@", 2)[0]
	}
	authID := account.AuthID
	e = &models.Employee{
		AuthID:    &authID,
		Email:     account.Email,
		FirstName: firstName,
		LastName:  lastName,
		RoleID:    role.ID,
		IsActive:  true,
		Role:      role,
	}
	if err := empRepo.Create(ctx, e); err != nil {
		return nil, err
	}
	logger.Info("admin employee provisioned on first login", logger.EmployeeID(e.ID))
	return e, nil
}

// RefreshRequest 刷新令牌请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh 使用刷新令牌换取新令牌，角色以当前档案为准
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := s.jwtManager.ParseRefreshToken(refreshToken)
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.ErrTokenRefreshFail
	}

	employee, err := s.empRepo.GetByID(ctx, claims.EmployeeID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrAccountNotFound
		}
		return nil, errors.FromDB(err)
	}
	if !employee.IsActive {
		return nil, errors.ErrAccountDisabled
	}

	tokenPair, err := s.jwtManager.GenerateTokenPair(employee.ID, claims.AuthID, employee.RoleName())
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}
	return tokenPair, nil
}

// Profile 当前员工信息
func (s *Service) Profile(ctx context.Context, employeeID int64) (*EmployeeInfo, error) {
	employee, err := s.empRepo.GetByID(ctx, employeeID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrEmployeeNotFound
		}
		return nil, errors.FromDB(err)
	}
	return ToEmployeeInfo(employee), nil
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// ChangePassword 修改密码
func (s *Service) ChangePassword(ctx context.Context, employeeID int64, req *ChangePasswordRequest) error {
	employee, err := s.empRepo.GetByID(ctx, employeeID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrEmployeeNotFound
		}
		return errors.FromDB(err)
	}
	if employee.AuthID == nil {
		return errors.ErrAccountNotFound
	}

	account, err := s.accountRepo.GetByAuthID(ctx, *employee.AuthID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrAccountNotFound
		}
		return errors.FromDB(err)
	}
	if !s.hasher.Verify(req.OldPassword, account.PasswordHash) {
		return errors.ErrPasswordError.WithMessage("La contraseña actual es incorrecta")
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return errors.ErrInvalidParams.WithMessage("Contraseña inválida")
	}
	if err := s.accountRepo.UpdatePassword(ctx, account.ID, hash); err != nil {
		return errors.FromDB(err)
	}
	return nil
}

// CreateAccount 为员工创建登录账号并绑定，供员工管理使用
func CreateAccount(ctx context.Context, tx *gorm.DB, hasher *crypto.Hasher, employee *models.Employee, password string) error {
	email := normalizeEmail(employee.Email)
	exists, err := repository.NewAuthAccountRepository(tx).ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return errors.ErrEmailExists
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return errors.ErrInvalidParams.WithMessage("Contraseña inválida")
	}

	account := &models.AuthAccount{AuthID: uuid.NewString(), Email: email, PasswordHash: hash}
	if err := repository.NewAuthAccountRepository(tx).Create(ctx, account); err != nil {
		return err
	}
	employee.AuthID = &account.AuthID
	return repository.NewEmployeeRepository(tx).UpdateFields(ctx, employee.ID, map[string]interface{}{
		"auth_id": account.AuthID,
	})
}
