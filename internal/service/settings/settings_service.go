// Package settings 提供酒店全局设置服务
package settings

import (
	"context"
	stderrors "errors"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/cache"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/repository"
)

// 退房后允许设置的房态
var checkoutStatuses = []string{models.RoomStatusCleaning, models.RoomStatusAvailable}

// Service 设置服务
type Service struct {
	db        *gorm.DB
	repo      *repository.SettingRepository
	opLogRepo *repository.OperationLogRepository
	cache     *cache.Cache
	ttl       time.Duration
}

// NewService 创建设置服务
func NewService(db *gorm.DB, c *cache.Cache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		db:        db,
		repo:      repository.NewSettingRepository(db),
		opLogRepo: repository.NewOperationLogRepository(db),
		cache:     c,
		ttl:       ttl,
	}
}

// Defaults 由业务配置生成初始设置行
func Defaults(cfg *config.BusinessConfig) models.Setting {
	return models.Setting{
		HotelName:          cfg.HotelName,
		Currency:           cfg.Currency,
		IVAPercentage:      decimal.NewFromFloat(cfg.IVAPercentage),
		MattressPrice:      decimal.NewFromFloat(cfg.MattressPrice),
		FallbackRateHotel:  decimal.NewFromFloat(cfg.FallbackRateHotel),
		FallbackRateOther:  decimal.NewFromFloat(cfg.FallbackRateOther),
		CheckoutRoomStatus: cfg.CheckoutRoomStatus,
	}
}

func cacheKey() string {
	return cache.BuildKey(cache.KeyPrefixSettings)
}

// Get 获取设置，优先读缓存
func (s *Service) Get(ctx context.Context) (*models.Setting, error) {
	var cached models.Setting
	err := s.cache.GetJSON(ctx, cacheKey(), &cached)
	if err == nil {
		metrics.GetMetrics().RecordCacheHit("settings")
		return &cached, nil
	}
	if !stderrors.Is(err, cache.ErrMiss) {
		logger.Warn("settings cache read failed", logger.Err(err))
	}
	metrics.GetMetrics().RecordCacheMiss("settings")

	setting, err := s.repo.Get(ctx)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrSettingsInvalid.WithMessage("La configuración del hotel no ha sido inicializada")
		}
		return nil, errors.FromDB(err)
	}

	if err := s.cache.SetJSON(ctx, cacheKey(), setting, s.ttl); err != nil {
		logger.Warn("settings cache write failed", logger.Err(err))
	}
	return setting, nil
}

// UpdateRequest 更新设置请求，空字段保持不变
type UpdateRequest struct {
	HotelName          *string          `json:"hotel_name" binding:"omitempty,min=1,max=120"`
	TaxID              *string          `json:"tax_id" binding:"omitempty,max=30"`
	Address            *string          `json:"address" binding:"omitempty,max=255"`
	Phone              *string          `json:"phone" binding:"omitempty,max=30"`
	Currency           *string          `json:"currency" binding:"omitempty,len=3"`
	IVAPercentage      *decimal.Decimal `json:"iva_percentage"`
	MattressPrice      *decimal.Decimal `json:"mattress_price"`
	FallbackRateHotel  *decimal.Decimal `json:"fallback_rate_hotel"`
	FallbackRateOther  *decimal.Decimal `json:"fallback_rate_other"`
	CheckoutRoomStatus *string          `json:"checkout_room_status"`
}

// validate 校验金额与房态取值
func (r *UpdateRequest) validate() error {
	hundred := decimal.NewFromInt(100)
	if r.IVAPercentage != nil && (r.IVAPercentage.IsNegative() || r.IVAPercentage.GreaterThan(hundred)) {
		return errors.ErrSettingsInvalid.WithMessage("El IVA debe estar entre 0 y 100")
	}
	for _, v := range []*decimal.Decimal{r.MattressPrice, r.FallbackRateHotel, r.FallbackRateOther} {
		if v != nil && v.IsNegative() {
			return errors.ErrSettingsInvalid.WithMessage("Los valores no pueden ser negativos")
		}
	}
	if r.CheckoutRoomStatus != nil && !slices.Contains(checkoutStatuses, *r.CheckoutRoomStatus) {
		return errors.ErrSettingsInvalid.WithMessage("El estado tras el check-out debe ser Limpieza o Disponible")
	}
	return nil
}

// Update 更新设置（仅管理员），写操作日志并清除缓存
func (s *Service) Update(ctx context.Context, adminID int64, req *UpdateRequest) (*models.Setting, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	current, err := s.repo.Get(ctx)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrSettingsInvalid
		}
		return nil, errors.FromDB(err)
	}
	before := models.ToJSON(current)

	if req.HotelName != nil {
		current.HotelName = *req.HotelName
	}
	if req.TaxID != nil {
		current.TaxID = utils.NilIfEmpty(*req.TaxID)
	}
	if req.Address != nil {
		current.Address = utils.NilIfEmpty(*req.Address)
	}
	if req.Phone != nil {
		current.Phone = utils.NilIfEmpty(*req.Phone)
	}
	if req.Currency != nil {
		current.Currency = *req.Currency
	}
	if req.IVAPercentage != nil {
		current.IVAPercentage = *req.IVAPercentage
	}
	if req.MattressPrice != nil {
		current.MattressPrice = *req.MattressPrice
	}
	if req.FallbackRateHotel != nil {
		current.FallbackRateHotel = *req.FallbackRateHotel
	}
	if req.FallbackRateOther != nil {
		current.FallbackRateOther = *req.FallbackRateOther
	}
	if req.CheckoutRoomStatus != nil {
		current.CheckoutRoomStatus = *req.CheckoutRoomStatus
	}
	current.UpdatedBy = &adminID

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.NewSettingRepository(tx).Save(ctx, current); err != nil {
			return err
		}
		targetType := "settings"
		targetID := int64(models.SettingsRowID)
		return repository.NewOperationLogRepository(tx).Create(ctx, &models.OperationLog{
			EmployeeID: adminID,
			Module:     "settings",
			Action:     "update",
			TargetType: &targetType,
			TargetID:   &targetID,
			BeforeData: before,
			AfterData:  models.ToJSON(current),
			IP:         "-",
		})
	})
	if err != nil {
		return nil, errors.FromDB(err)
	}

	if err := s.cache.Delete(ctx, cacheKey()); err != nil {
		logger.Warn("settings cache invalidation failed", logger.Err(err))
	}
	logger.Info("settings updated", logger.EmployeeID(adminID))
	return current, nil
}

// History 设置的修改记录，含修改前后的值
func (s *Service) History(ctx context.Context) ([]*models.OperationLog, error) {
	logs, err := s.opLogRepo.ListByTarget(ctx, "settings", models.SettingsRowID)
	if err != nil {
		return nil, errors.FromDB(err)
	}
	return logs, nil
}
