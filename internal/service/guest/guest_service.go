// Package guest 提供客人档案服务
package guest

import (
	"context"
	stderrors "errors"
	"strings"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/repository"
)

// Input 客人资料，证件号为唯一键
type Input struct {
	DocType     string  `json:"doc_type" binding:"omitempty,oneof=CC CE TI PA NIT PEP"`
	DocNumber   string  `json:"doc_number" binding:"required,min=3,max=30"`
	FirstName   string  `json:"first_name" binding:"required,max=80"`
	LastName    string  `json:"last_name" binding:"max=80"`
	Phone       *string `json:"phone" binding:"omitempty,max=30"`
	Email       *string `json:"email" binding:"omitempty,email,max=120"`
	Address     *string `json:"address" binding:"omitempty,max=255"`
	City        *string `json:"city" binding:"omitempty,max=80"`
	Department  *string `json:"department" binding:"omitempty,max=80"`
	Nationality *string `json:"nationality" binding:"omitempty,max=60"`
}

// normalize 去除证件号空白
func (in *Input) normalize() {
	in.DocNumber = strings.TrimSpace(in.DocNumber)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if in.DocType == "" {
		in.DocType = "CC"
	}
}

// apply 将可变字段写入档案
func (in *Input) apply(g *models.Guest) {
	g.DocType = in.DocType
	g.DocNumber = in.DocNumber
	g.FirstName = in.FirstName
	g.LastName = in.LastName
	if in.Phone != nil {
		g.Phone = in.Phone
	}
	if in.Email != nil {
		g.Email = in.Email
	}
	if in.Address != nil {
		g.Address = in.Address
	}
	if in.City != nil {
		g.City = in.City
	}
	if in.Department != nil {
		g.Department = in.Department
	}
	if in.Nationality != nil {
		g.Nationality = in.Nationality
	}
}

// Upsert 按证件号新建或更新客人，可在外部事务中调用
func Upsert(ctx context.Context, tx *gorm.DB, in Input) (*models.Guest, error) {
	in.normalize()
	if in.DocNumber == "" || in.FirstName == "" {
		return nil, errors.ErrInvalidParams.WithMessage("Documento y nombre del huésped son obligatorios")
	}

	repo := repository.NewGuestRepository(tx)
	g, err := repo.GetByDocNumber(ctx, in.DocNumber)
	if err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if g == nil {
		g = &models.Guest{}
		in.apply(g)
		if err := repo.Create(ctx, g); err != nil {
			return nil, err
		}
		return g, nil
	}

	in.apply(g)
	if err := repo.Update(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Service 客人服务
type Service struct {
	db   *gorm.DB
	repo *repository.GuestRepository
}

// NewService 创建客人服务
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, repo: repository.NewGuestRepository(db)}
}

// Upsert 新建或更新客人
func (s *Service) Upsert(ctx context.Context, in *Input) (*models.Guest, error) {
	g, err := Upsert(ctx, s.db.WithContext(ctx), *in)
	if err != nil {
		return nil, errors.FromDB(err)
	}
	return g, nil
}

// Get 根据 ID 获取客人
func (s *Service) Get(ctx context.Context, id int64) (*models.Guest, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrGuestNotFound
		}
		return nil, errors.FromDB(err)
	}
	return g, nil
}

// GetByDocument 根据证件号查找客人（前台自动填充）
func (s *Service) GetByDocument(ctx context.Context, docNumber string) (*models.Guest, error) {
	g, err := s.repo.GetByDocNumber(ctx, strings.TrimSpace(docNumber))
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrGuestNotFound
		}
		return nil, errors.FromDB(err)
	}
	return g, nil
}

// List 分页查询客人
func (s *Service) List(ctx context.Context, keyword string, offset, limit int) ([]*models.Guest, int64, error) {
	list, total, err := s.repo.List(ctx, strings.TrimSpace(keyword), offset, limit)
	if err != nil {
		if errors.IsCanceled(err) {
			return []*models.Guest{}, 0, nil
		}
		return nil, 0, errors.FromDB(err)
	}
	return list, total, nil
}

// Update 更新客人资料，证件号变更时不得与他人重复
func (s *Service) Update(ctx context.Context, id int64, in *Input) (*models.Guest, error) {
	g, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.normalize()
	if in.DocNumber != g.DocNumber {
		other, err := s.repo.GetByDocNumber(ctx, in.DocNumber)
		if err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.FromDB(err)
		}
		if other != nil && other.ID != g.ID {
			return nil, errors.ErrGuestDocumentExists
		}
	}

	in.apply(g)
	if err := s.repo.Update(ctx, g); err != nil {
		return nil, errors.FromDB(err)
	}
	return g, nil
}
