package report

import (
	"bytes"
	"context"
	"time"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk-backend/pkg/oss"
)

// ArchiveEnabled 是否配置了对象存储
func (s *Service) ArchiveEnabled() bool {
	return s.store != nil
}

// ArchiveDailyPayments 将某天的收款流水上传到对象存储，返回对象地址
func (s *Service) ArchiveDailyPayments(ctx context.Context, day time.Time) (string, error) {
	if s.store == nil {
		return "", nil
	}
	start := time.Now()
	day = utils.DateOnly(day)
	date := utils.FormatDate(day)

	var buf bytes.Buffer
	count, err := s.ExportPayments(ctx, &buf, &PaymentExportRequest{Range: Range{From: date, To: date}})
	if err != nil {
		return "", err
	}

	key := oss.ReportKey("payments", day)
	url, err := s.store.Put(ctx, key, "text/csv; charset=utf-8", &buf)
	if err != nil {
		return "", errors.ErrExternalService.WithError(err)
	}

	logger.Info("已归档收款流水",
		logger.Module("report"),
		logger.String("day", date),
		logger.Int("rows", count),
		logger.String("url", url),
		logger.Since(start),
	)
	return url, nil
}
