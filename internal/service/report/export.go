package report

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/repository"
)

// utf8BOM 让表格软件按 UTF-8 打开
const utf8BOM = "\xEF\xBB\xBF"

const csvTimeLayout = "2006-01-02 15:04"

// PaymentColumns 收款导出列
var PaymentColumns = []string{
	"id", "fecha", "orden", "huesped", "documento", "habitacion",
	"metodo", "tipo", "monto", "observacion", "empleado",
}

// HistoryColumns 房态日志导出列
var HistoryColumns = []string{
	"id", "fecha", "habitacion", "alojamiento", "estado_anterior",
	"estado_nuevo", "accion", "estadia", "empleado", "observacion",
}

// PaymentExportRequest 收款导出条件
type PaymentExportRequest struct {
	Range
	PaymentMethodID *int64 `form:"payment_method_id"`
	PaymentType     string `form:"payment_type"`
	EmployeeID      *int64 `form:"employee_id"`
}

// HistoryExportRequest 房态日志导出条件
type HistoryExportRequest struct {
	Range
	RoomID              *int64 `form:"room_id"`
	AccommodationTypeID *int64 `form:"accommodation_type_id"`
	Action              string `form:"action"`
}

// ExportPayments 按条件导出收款流水
func (s *Service) ExportPayments(ctx context.Context, w io.Writer, req *PaymentExportRequest) (int, error) {
	from, to, err := req.parse()
	if err != nil {
		return 0, err
	}
	paidFrom, paidTo := s.instants(from, to)
	payments, err := s.paymentRepo.FindAll(ctx, repository.PaymentFilter{
		PaymentMethodID: req.PaymentMethodID,
		EmployeeID:      req.EmployeeID,
		PaymentType:     req.PaymentType,
		From:            &paidFrom,
		To:              &paidTo,
	})
	if err != nil {
		return 0, errors.FromDB(err)
	}
	return len(payments), s.writePayments(w, payments)
}

func (s *Service) writePayments(w io.Writer, payments []*models.Payment) error {
	cw, err := newCSVWriter(w, PaymentColumns)
	if err != nil {
		return err
	}
	for _, p := range payments {
		row := []string{
			strconv.FormatInt(p.ID, 10),
			p.PaidAt.In(s.loc).Format(csvTimeLayout),
			"", "", "", "",
			"",
			p.PaymentType,
			p.Amount.StringFixed(2),
			p.Observation,
			"",
		}
		if p.Stay != nil {
			row[2] = utils.FormatOrderNumber(p.Stay.OrderNumber)
			if p.Stay.Guest != nil {
				row[3] = p.Stay.Guest.FullName()
				row[4] = p.Stay.Guest.DocNumber
			}
			if p.Stay.Room != nil {
				row[5] = p.Stay.Room.Number
			}
		}
		if p.PaymentMethod != nil {
			row[6] = p.PaymentMethod.Name
		}
		if p.Employee != nil {
			row[10] = p.Employee.FullName()
		}
		if err := cw.Write(row); err != nil {
			return errors.ErrExportFailed.WithError(err)
		}
	}
	return flush(cw)
}

// ExportHistory 按条件导出房态日志
func (s *Service) ExportHistory(ctx context.Context, w io.Writer, req *HistoryExportRequest) (int, error) {
	from, to, err := req.parse()
	if err != nil {
		return 0, err
	}
	createdFrom, createdTo := s.instants(from, to)
	rows, err := s.historyRepo.FindAll(ctx, repository.HistoryFilter{
		RoomID:              req.RoomID,
		AccommodationTypeID: req.AccommodationTypeID,
		Action:              req.Action,
		From:                &createdFrom,
		To:                  &createdTo,
	})
	if err != nil {
		return 0, errors.FromDB(err)
	}

	cw, err := newCSVWriter(w, HistoryColumns)
	if err != nil {
		return 0, err
	}
	for _, h := range rows {
		row := []string{
			strconv.FormatInt(h.ID, 10),
			h.CreatedAt.In(s.loc).Format(csvTimeLayout),
			"", "", "", "",
			h.Action,
			"",
			"",
			h.Observation,
		}
		if h.Room != nil {
			row[2] = h.Room.Number
		}
		if h.AccommodationType != nil {
			row[3] = h.AccommodationType.Name
		}
		if h.PreviousStatus != nil {
			row[4] = h.PreviousStatus.Name
		}
		if h.NewStatus != nil {
			row[5] = h.NewStatus.Name
		}
		if h.StayID != nil {
			row[7] = strconv.FormatInt(*h.StayID, 10)
		}
		if h.Employee != nil {
			row[8] = h.Employee.FullName()
		}
		if err := cw.Write(row); err != nil {
			return 0, errors.ErrExportFailed.WithError(err)
		}
	}
	return len(rows), flush(cw)
}

func newCSVWriter(w io.Writer, header []string) (*csv.Writer, error) {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return nil, errors.ErrExportFailed.WithError(err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return nil, errors.ErrExportFailed.WithError(err)
	}
	return cw, nil
}

func flush(cw *csv.Writer) error {
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.ErrExportFailed.WithError(err)
	}
	return nil
}
