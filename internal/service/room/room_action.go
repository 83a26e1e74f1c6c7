package room

import (
	"context"
	stderrors "errors"
	"slices"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/repository"
)

// ActionRequest 房间操作请求（清洁、维修及其结束）
type ActionRequest struct {
	Action      string `json:"action" binding:"required"`
	EmployeeID  int64  `json:"employee_id" binding:"required"`
	Observation string `json:"observation" binding:"required,max=1000"`
	// Status 仅 CAMBIO-ESTADO 使用
	Status string `json:"status"`
}

// actionRule 操作对应的目标房态与允许的起始房态
type actionRule struct {
	status   string
	fromOnly []string
}

var actionRules = map[string]actionRule{
	models.ActionCleaning:        {status: models.RoomStatusCleaning, fromOnly: []string{models.RoomStatusAvailable}},
	models.ActionMaintenance:     {status: models.RoomStatusMaintenance, fromOnly: []string{models.RoomStatusAvailable, models.RoomStatusCleaning}},
	models.ActionCleaningDone:    {status: models.RoomStatusAvailable, fromOnly: []string{models.RoomStatusCleaning}},
	models.ActionMaintenanceDone: {status: models.RoomStatusAvailable, fromOnly: []string{models.RoomStatusMaintenance}},
}

// 手动变更允许的房态
var manualStatuses = []string{models.RoomStatusAvailable, models.RoomStatusCleaning, models.RoomStatusMaintenance}

// ApplyAction 对房间执行清洁或维修操作。
// 需指定负责员工与说明；房间有进行中的入住时拒绝
func (s *Service) ApplyAction(ctx context.Context, roomID int64, req *ActionRequest) (*models.RoomHistory, error) {
	if strings.TrimSpace(req.Observation) == "" {
		return nil, errors.ErrInvalidParams.WithMessage("La observación es obligatoria")
	}

	// 1. 解析操作
	var rule actionRule
	if req.Action == models.ActionStatusChange {
		if !slices.Contains(manualStatuses, req.Status) {
			return nil, errors.ErrInvalidRoomAction.WithMessage("Estado no permitido para cambio manual")
		}
		rule = actionRule{status: req.Status}
	} else {
		var ok bool
		rule, ok = actionRules[req.Action]
		if !ok {
			return nil, errors.ErrInvalidRoomAction
		}
	}

	// 2. 负责员工
	emp, err := s.empRepo.GetByID(ctx, req.EmployeeID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrEmployeeNotFound
		}
		return nil, errors.FromDB(err)
	}
	if !emp.IsActive {
		return nil, errors.ErrAccountDisabled
	}

	var history *models.RoomHistory
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := repository.NewRoomRepository(tx).GetByID(ctx, roomID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.ErrRoomNotFound
			}
			return err
		}
		if !room.IsActive {
			return errors.ErrRoomInactive
		}

		// 3. 有入住时不允许操作
		occupied, err := repository.NewStayRepository(tx).HasActiveOnRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if occupied {
			return errors.ErrRoomOccupied
		}

		// 4. 起始房态校验
		if len(rule.fromOnly) > 0 {
			current, err := repository.NewRoomStatusRepository(tx).GetByID(ctx, room.StatusID)
			if err != nil {
				return err
			}
			if !slices.Contains(rule.fromOnly, current.Name) {
				return errors.ErrInvalidRoomAction.WithMessage("La habitación está en estado " + current.Name)
			}
		}

		history, err = ChangeStatus(ctx, tx, Change{
			Target:      Target{RoomID: &roomID},
			Status:      rule.status,
			Action:      req.Action,
			EmployeeID:  &emp.ID,
			Observation: req.Observation,
		})
		return err
	})
	if err != nil {
		return nil, errors.FromDB(err)
	}

	logger.Info("room action applied",
		logger.RoomID(roomID),
		logger.Action(req.Action),
		logger.EmployeeID(emp.ID),
	)
	return history, nil
}

// HistoryRequest 房态日志查询
type HistoryRequest struct {
	RoomID              *int64
	AccommodationTypeID *int64
	StayID              *int64
	Action              string
	From                *time.Time
	To                  *time.Time
}

// Filter 转为仓储过滤条件
func (r *HistoryRequest) Filter() repository.HistoryFilter {
	return repository.HistoryFilter{
		RoomID:              r.RoomID,
		AccommodationTypeID: r.AccommodationTypeID,
		StayID:              r.StayID,
		Action:              r.Action,
		From:                r.From,
		To:                  r.To,
	}
}

// History 分页获取房态日志
func (s *Service) History(ctx context.Context, req *HistoryRequest, offset, limit int) ([]*models.RoomHistory, int64, error) {
	list, total, err := s.historyRepo.List(ctx, req.Filter(), offset, limit)
	if err != nil {
		if errors.IsCanceled(err) {
			return []*models.RoomHistory{}, 0, nil
		}
		return nil, 0, errors.FromDB(err)
	}
	return list, total, nil
}
