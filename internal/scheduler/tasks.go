package scheduler

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/repository"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/notify"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/report"
)

// 默认任务周期
const (
	DefaultOutboxSpec        = "@every 30s"
	DefaultReportArchiveSpec = "0 2 * * *"
	DefaultStaleCleaningSpec = "0 * * * *"
	DefaultAuditPurgeSpec    = "30 3 * * *"
	occupancySpec            = "@every 1m"
)

// TaskHandler 任务处理器
type TaskHandler struct {
	roomRepo   *repository.RoomRepository
	statusRepo *repository.RoomStatusRepository
	logRepo    *repository.OperationLogRepository
	dispatcher *notify.Dispatcher
	reports    *report.Service
	staleAfter time.Duration
	loc        *time.Location
	now        func() time.Time
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(
	db *gorm.DB,
	dispatcher *notify.Dispatcher,
	reports *report.Service,
	staleAfter time.Duration,
	loc *time.Location,
) *TaskHandler {
	if staleAfter <= 0 {
		staleAfter = 4 * time.Hour
	}
	if loc == nil {
		loc = time.Local
	}
	return &TaskHandler{
		roomRepo:   repository.NewRoomRepository(db),
		statusRepo: repository.NewRoomStatusRepository(db),
		logRepo:    repository.NewOperationLogRepository(db),
		dispatcher: dispatcher,
		reports:    reports,
		staleAfter: staleAfter,
		loc:        loc,
		now:        time.Now,
	}
}

// DispatchOutbox 投递到期的出站事件
func (h *TaskHandler) DispatchOutbox(ctx context.Context) error {
	_, err := h.dispatcher.DispatchPending(ctx)
	return err
}

// ArchivePayments 归档前一天的收款流水
func (h *TaskHandler) ArchivePayments(ctx context.Context) error {
	yesterday := utils.DateOnly(h.now().In(h.loc)).AddDate(0, 0, -1)
	_, err := h.reports.ArchiveDailyPayments(ctx, yesterday)
	return err
}

// StaleCleaningRooms 处于清洁状态超过阈值的房间
func (h *TaskHandler) StaleCleaningRooms(ctx context.Context) ([]*models.Room, error) {
	cleaning, err := h.statusRepo.GetByName(ctx, models.RoomStatusCleaning)
	if err != nil {
		return nil, err
	}
	return h.roomRepo.ListInStatusSince(ctx, cleaning.ID, h.now().Add(-h.staleAfter))
}

// ReportStaleCleaning 记录长时间未清洁完成的房间
func (h *TaskHandler) ReportStaleCleaning(ctx context.Context) error {
	rooms, err := h.StaleCleaningRooms(ctx)
	if err != nil {
		return err
	}
	now := h.now()
	for _, r := range rooms {
		logger.Warn("房间清洁超时",
			logger.Module("housekeeping"),
			logger.RoomID(r.ID),
			logger.String("number", r.Number),
			logger.Time("since", r.StatusDate),
			logger.Duration("elapsed", now.Sub(r.StatusDate).Round(time.Minute)),
		)
	}
	return nil
}

// RefreshOccupancy 刷新在住房间数指标
func (h *TaskHandler) RefreshOccupancy(ctx context.Context) error {
	counts, err := h.roomRepo.CountByStatus(ctx)
	if err != nil {
		return err
	}
	metrics.GetMetrics().SetOccupiedRooms(float64(counts[models.RoomStatusOccupied]))
	return nil
}

// PurgeOperationLogs 清理超过保留期的操作日志
func (h *TaskHandler) PurgeOperationLogs(ctx context.Context, retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	before := h.now().AddDate(0, 0, -retentionDays)
	n, err := h.logRepo.DeleteBefore(ctx, before)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info("operation logs purged", logger.Module("audit"), logger.Int64("deleted", n), logger.Time("before", before))
	}
	return nil
}

// SetupTasks 注册所有任务
func SetupTasks(s *Scheduler, h *TaskHandler, cfg *config.SchedulerConfig) error {
	spec := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}

	if err := s.AddTask("DispatchOutbox", spec(cfg.OutboxSpec, DefaultOutboxSpec), h.DispatchOutbox); err != nil {
		return err
	}
	if h.reports != nil && h.reports.ArchiveEnabled() {
		if err := s.AddTask("ArchivePayments", spec(cfg.ReportArchiveSpec, DefaultReportArchiveSpec), h.ArchivePayments); err != nil {
			return err
		}
	}
	if err := s.AddTask("ReportStaleCleaning", spec(cfg.StaleCleaningSpec, DefaultStaleCleaningSpec), h.ReportStaleCleaning); err != nil {
		return err
	}
	if cfg.AuditRetentionDays > 0 {
		days := cfg.AuditRetentionDays
		purge := func(ctx context.Context) error { return h.PurgeOperationLogs(ctx, days) }
		if err := s.AddTask("PurgeOperationLogs", spec(cfg.AuditPurgeSpec, DefaultAuditPurgeSpec), purge); err != nil {
			return err
		}
	}
	return s.AddTask("RefreshOccupancy", occupancySpec, h.RefreshOccupancy)
}
