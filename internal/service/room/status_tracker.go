// Package room 提供房间、住宿类型与房态管理服务
package room

import (
	"context"
	stderrors "errors"
	"slices"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/repository"
)

// Target 房态变更对象，房间与整套住宿二选一
type Target struct {
	RoomID              *int64
	AccommodationTypeID *int64
}

// Change 一次房态变更
type Change struct {
	Target      Target
	Status      string // 目标房态名称，为空时只记录日志
	Action      string
	EmployeeID  *int64
	StayID      *int64
	Observation string
	// OnlyFrom 非空时仅在当前房态属于其中时才更新房态，日志照常写入
	OnlyFrom []string
}

// ChangeStatus 在事务内变更房态：读取当前房态、带版本号更新、
// 追加房态日志并写入出站事件。并发修改导致版本不一致时返回 ErrRoomStatusConflict
func ChangeStatus(ctx context.Context, tx *gorm.DB, c Change) (*models.RoomHistory, error) {
	statusRepo := repository.NewRoomStatusRepository(tx)

	// 1. 当前房态与版本
	var (
		currentID int64
		version   int64
		label     string
		payload   = models.JSON{}
	)
	switch {
	case c.Target.RoomID != nil:
		r, err := repository.NewRoomRepository(tx).GetByID(ctx, *c.Target.RoomID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.ErrRoomNotFound
			}
			return nil, err
		}
		currentID, version, label = r.StatusID, r.Version, r.Number
		payload["room_id"] = r.ID
		payload["number"] = r.Number
	case c.Target.AccommodationTypeID != nil:
		t, err := repository.NewAccommodationTypeRepository(tx).GetByID(ctx, *c.Target.AccommodationTypeID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.ErrAccommodationTypeNotFound
			}
			return nil, err
		}
		currentID, version, label = t.StatusID, t.Version, t.Name
		payload["accommodation_type_id"] = t.ID
		payload["name"] = t.Name
	default:
		return nil, errors.ErrStayTargetRequired
	}

	current, err := statusRepo.GetByID(ctx, currentID)
	if err != nil {
		return nil, err
	}

	// 2. 目标房态，为空时沿用当前房态
	next := current
	if c.Status != "" {
		next, err = statusRepo.GetByName(ctx, c.Status)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.ErrRoomStatusNotFound
			}
			return nil, err
		}
	}

	// 3. 更新房态
	newStatusID := currentID
	apply := len(c.OnlyFrom) == 0 || slices.Contains(c.OnlyFrom, current.Name)
	if apply && currentID != next.ID {
		now := time.Now()
		var ok bool
		if c.Target.RoomID != nil {
			ok, err = repository.NewRoomRepository(tx).UpdateStatusVersioned(ctx, *c.Target.RoomID, version, next.ID, now)
		} else {
			ok, err = repository.NewAccommodationTypeRepository(tx).UpdateStatusVersioned(ctx, *c.Target.AccommodationTypeID, version, next.ID, now)
		}
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.ErrRoomStatusConflict
		}
		newStatusID = next.ID

		// 4. 出站事件
		payload["label"] = label
		payload["previous_status"] = current.Name
		payload["status"] = next.Name
		payload["color"] = next.Color
		payload["action"] = c.Action
		payload["changed_at"] = now.Format(time.RFC3339)
		aggregate, aggregateID := "room", utils.SafeInt64(c.Target.RoomID)
		if c.Target.RoomID == nil {
			aggregate, aggregateID = "accommodation_type", *c.Target.AccommodationTypeID
		}
		if err := repository.NewOutboxRepository(tx).Create(ctx, &models.OutboxEvent{
			Topic:       models.TopicRoomStatusChanged,
			Aggregate:   aggregate,
			AggregateID: aggregateID,
			Payload:     payload,
		}); err != nil {
			return nil, err
		}
		metrics.GetMetrics().RecordRoomStatus(next.Name)
	}

	// 5. 房态日志
	h := &models.RoomHistory{
		RoomID:              c.Target.RoomID,
		AccommodationTypeID: c.Target.AccommodationTypeID,
		PreviousStatusID:    &currentID,
		NewStatusID:         newStatusID,
		Action:              c.Action,
		EmployeeID:          c.EmployeeID,
		StayID:              c.StayID,
		Observation:         c.Observation,
	}
	if err := repository.NewRoomHistoryRepository(tx).Create(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}
