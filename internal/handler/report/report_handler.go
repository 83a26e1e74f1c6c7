// Package report 提供经营汇总与 CSV 导出 HTTP Handler
package report

import (
	"bytes"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/handler"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/middleware"
	reportService "github.com/dumeirei/hotel-frontdesk-backend/internal/service/report"
)

// Handler 报表处理器
type Handler struct {
	reportService *reportService.Service
}

// NewHandler 创建报表处理器
func NewHandler(svc *reportService.Service) *Handler {
	return &Handler{reportService: svc}
}

// Summary 经营汇总
// @Summary 经营汇总
// @Tags 报表
// @Produce json
// @Security Bearer
// @Param from query string true "开始日期"
// @Param to query string true "结束日期（含）"
// @Success 200 {object} response.Response{data=reportService.Summary}
// @Router /api/v1/reports/summary [get]
func (h *Handler) Summary(c *gin.Context) {
	var req reportService.Range
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Indique from y to")
		return
	}

	summary, err := h.reportService.Summary(c.Request.Context(), &req)
	handler.MustSucceed(c, err, summary)
}

// ExportPayments 导出收款 CSV
// @Summary 导出收款 CSV
// @Tags 报表
// @Produce text/csv
// @Security Bearer
// @Param from query string true "开始日期"
// @Param to query string true "结束日期（含）"
// @Param payment_method_id query int false "支付方式"
// @Param payment_type query string false "收款类型"
// @Param employee_id query int false "收款员工"
// @Success 200 {file} binary
// @Router /api/v1/reports/payments.csv [get]
func (h *Handler) ExportPayments(c *gin.Context) {
	var req reportService.PaymentExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Parámetros inválidos")
		return
	}

	var buf bytes.Buffer
	rows, err := h.reportService.ExportPayments(c.Request.Context(), &buf, &req)
	if handler.HandleError(c, err) {
		return
	}
	h.download(c, "pagos", req.Range, rows, buf.Bytes())
}

// ExportHistory 导出房态日志 CSV
// @Summary 导出房态日志 CSV
// @Tags 报表
// @Produce text/csv
// @Security Bearer
// @Param from query string true "开始日期"
// @Param to query string true "结束日期（含）"
// @Param room_id query int false "房间"
// @Param accommodation_type_id query int false "住宿类型"
// @Param action query string false "操作"
// @Success 200 {file} binary
// @Router /api/v1/reports/history.csv [get]
func (h *Handler) ExportHistory(c *gin.Context) {
	var req reportService.HistoryExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Parámetros inválidos")
		return
	}

	var buf bytes.Buffer
	rows, err := h.reportService.ExportHistory(c.Request.Context(), &buf, &req)
	if handler.HandleError(c, err) {
		return
	}
	h.download(c, "historial", req.Range, rows, buf.Bytes())
}

func (h *Handler) download(c *gin.Context, kind string, r reportService.Range, rows int, body []byte) {
	logger.Info("report exported",
		logger.Module("report"),
		logger.String("kind", kind),
		logger.Int("rows", rows),
		logger.EmployeeID(middleware.GetEmployeeID(c)),
	)
	response.Attachment(c, fmt.Sprintf("%s-%s-%s.csv", kind, r.From, r.To), response.ContentTypeCSV, body)
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports", middleware.RequireAdmin())
	{
		reports.GET("/summary", h.Summary)
		reports.GET("/payments.csv", h.ExportPayments)
		reports.GET("/history.csv", h.ExportHistory)
	}
}
