package report

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"

	"github.com/go-pdf/fpdf"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

// Receipt 住宿凭证
type Receipt struct {
	FileName string
	Content  []byte
}

// Receipt 生成住宿的 PDF 凭证
func (s *Service) Receipt(ctx context.Context, stayID int64) (*Receipt, error) {
	setting, err := s.settingsSvc.Get(ctx)
	if err != nil {
		return nil, err
	}
	stay, err := s.stayRepo.GetByIDWithDetails(ctx, stayID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrStayNotFound
		}
		return nil, errors.FromDB(err)
	}

	png, err := s.qr.StayPNG(setting.HotelName, stay.OrderNumber, stay.ID)
	if err != nil {
		return nil, errors.ErrExportFailed.WithError(err)
	}

	var buf bytes.Buffer
	if err := renderReceipt(&buf, setting, stay, png); err != nil {
		return nil, errors.ErrExportFailed.WithError(err)
	}
	return &Receipt{
		FileName: fmt.Sprintf("comprobante-%06d.pdf", stay.OrderNumber),
		Content:  buf.Bytes(),
	}, nil
}

// QRCode 住宿二维码 PNG，内容与凭证上的一致
func (s *Service) QRCode(ctx context.Context, stayID int64) ([]byte, error) {
	setting, err := s.settingsSvc.Get(ctx)
	if err != nil {
		return nil, err
	}
	stay, err := s.stayRepo.GetByID(ctx, stayID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrStayNotFound
		}
		return nil, errors.FromDB(err)
	}

	png, err := s.qr.StayPNG(setting.HotelName, stay.OrderNumber, stay.ID)
	if err != nil {
		return nil, errors.ErrExportFailed.WithError(err)
	}
	return png, nil
}

// renderReceipt 半张 A4 的住宿凭证
func renderReceipt(buf *bytes.Buffer, setting *models.Setting, stay *models.Stay, qrPNG []byte) error {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 148, Ht: 210},
	})
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// 抬头
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr(setting.HotelName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	if setting.TaxID != nil {
		pdf.CellFormat(contentW, 4, tr("NIT "+*setting.TaxID), "", 1, "C", false, 0, "")
	}
	if setting.Address != nil {
		pdf.CellFormat(contentW, 4, tr(*setting.Address), "", 1, "C", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, tr("Comprobante de estadía "+utils.FormatOrderNumber(stay.OrderNumber)), "", 1, "C", false, 0, "")
	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(2)

	// 住宿信息
	labelW := contentW * 0.35
	valueW := contentW - labelW
	line := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(labelW, 5, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(valueW, 5, tr(value), "", 1, "L", false, 0, "")
	}
	if stay.Guest != nil {
		line("Huésped:", stay.Guest.FullName())
		line("Documento:", stay.Guest.DocType+" "+stay.Guest.DocNumber)
	}
	line("Alojamiento:", accommodationLabel(stay))
	line("Entrada:", utils.FormatDate(stay.CheckInDate))
	line("Salida:", utils.FormatDate(stay.CheckOutDate))
	line("Noches:", fmt.Sprintf("%d", stay.Nights))
	line("Personas:", fmt.Sprintf("%d", stay.PersonCount))
	if stay.MattressCount > 0 {
		line("Colchones:", fmt.Sprintf("%d", stay.MattressCount))
	}
	line("Estado:", stay.Status)
	pdf.Ln(2)

	// 收款明细
	col1 := contentW * 0.25
	col2 := contentW * 0.30
	col3 := contentW * 0.20
	col4 := contentW * 0.25
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(col1, 5, "Fecha", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Tipo", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 5, tr("Método"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 5, "Monto", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	for _, p := range stay.Payments {
		method := ""
		if p.PaymentMethod != nil {
			method = p.PaymentMethod.Name
		}
		pdf.CellFormat(col1, 5, p.PaidAt.Format("02/01/2006"), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, p.PaymentType, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, tr(method), "", 0, "L", false, 0, "")
		pdf.CellFormat(col4, 5, utils.FormatMoney(p.Amount), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(2)

	// 合计
	total := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(contentW-col4, 5, tr(label), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, value, "", 1, "R", false, 0, "")
	}
	if stay.IVAAmount.IsPositive() {
		total(fmt.Sprintf("IVA (%s%%):", stay.IVAPercentage.String()), utils.FormatMoney(stay.IVAAmount), false)
	}
	total("Total:", utils.FormatMoney(stay.TotalPrice), true)
	total("Pagado:", utils.FormatMoney(stay.PaidAmount), false)
	total("Saldo:", utils.FormatMoney(stay.PendingBalance()), false)

	// 二维码
	pdf.Ln(4)
	pdf.RegisterImageOptionsReader("qr", fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	qrSize := 30.0
	pdf.ImageOptions("qr", (pageW-qrSize)/2, pdf.GetY(), qrSize, qrSize, true, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("Gracias por su visita"), "", 1, "C", false, 0, "")

	return pdf.Output(buf)
}

func accommodationLabel(stay *models.Stay) string {
	switch {
	case stay.Room != nil && stay.Room.AccommodationType != nil:
		return fmt.Sprintf("Habitación %s (%s)", stay.Room.Number, stay.Room.AccommodationType.Name)
	case stay.Room != nil:
		return "Habitación " + stay.Room.Number
	case stay.AccommodationType != nil:
		return stay.AccommodationType.Name
	default:
		return "-"
	}
}
