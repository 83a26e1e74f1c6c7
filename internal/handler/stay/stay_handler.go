// Package stay 提供住宿（预订、入住、收款、退房、取消）及可用性、报价的 HTTP Handler
package stay

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/handler"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/qrcode"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/middleware"
	availabilityService "github.com/dumeirei/hotel-frontdesk-backend/internal/service/availability"
	paymentService "github.com/dumeirei/hotel-frontdesk-backend/internal/service/payment"
	pricingService "github.com/dumeirei/hotel-frontdesk-backend/internal/service/pricing"
	reportService "github.com/dumeirei/hotel-frontdesk-backend/internal/service/report"
	stayService "github.com/dumeirei/hotel-frontdesk-backend/internal/service/stay"
)

// Handler 住宿处理器
type Handler struct {
	stayService         *stayService.Service
	paymentService      *paymentService.Service
	availabilityService *availabilityService.Service
	pricingService      *pricingService.Service
	reportService       *reportService.Service
}

// NewHandler 创建住宿处理器
func NewHandler(
	staySvc *stayService.Service,
	paymentSvc *paymentService.Service,
	availabilitySvc *availabilityService.Service,
	pricingSvc *pricingService.Service,
	reportSvc *reportService.Service,
) *Handler {
	return &Handler{
		stayService:         staySvc,
		paymentService:      paymentSvc,
		availabilityService: availabilitySvc,
		pricingService:      pricingSvc,
		reportService:       reportSvc,
	}
}

// actor 当前操作员工
func actor(c *gin.Context) (stayService.Actor, bool) {
	employeeID, ok := handler.RequireEmployeeID(c)
	if !ok {
		return stayService.Actor{}, false
	}
	return stayService.Actor{EmployeeID: employeeID, Role: middleware.GetRole(c)}, true
}

// List 住宿列表
// @Summary 住宿列表
// @Tags 住宿
// @Produce json
// @Security Bearer
// @Param status query string false "状态 Reserved/Active/Completed/Cancelled"
// @Param room_id query int false "房间"
// @Param accommodation_type_id query int false "住宿类型"
// @Param guest_id query int false "客人"
// @Param only_active query bool false "仅有效"
// @Param from query string false "开始日期"
// @Param to query string false "结束日期"
// @Param keyword query string false "客人姓名或证件号"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/stays [get]
func (h *Handler) List(c *gin.Context) {
	var req stayService.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Parámetros inválidos")
		return
	}
	p := handler.BindPagination(c)

	list, total, err := h.stayService.List(c.Request.Context(), &req, p.GetOffset(), p.GetLimit())
	handler.MustSucceedPage(c, err, list, total, p)
}

// Get 住宿详情
// @Summary 住宿详情
// @Tags 住宿
// @Produce json
// @Security Bearer
// @Param id path int true "住宿ID"
// @Success 200 {object} response.Response{data=models.Stay}
// @Router /api/v1/stays/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParseID(c, "estadía")
	if !ok {
		return
	}

	stay, err := h.stayService.Get(c.Request.Context(), id)
	handler.MustSucceed(c, err, stay)
}

// GetByOrderNumber 按订单号查询
// @Summary 按订单号查询住宿
// @Tags 住宿
// @Produce json
// @Security Bearer
// @Param number path int true "订单号"
// @Success 200 {object} response.Response{data=models.Stay}
// @Router /api/v1/stays/order/{number} [get]
func (h *Handler) GetByOrderNumber(c *gin.Context) {
	number, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil || number <= 0 {
		response.BadRequest(c, "Número de orden inválido")
		return
	}

	stay, err := h.stayService.GetByOrderNumber(c.Request.Context(), number)
	handler.MustSucceed(c, err, stay)
}

// Scan 按凭证二维码内容查询住宿
// @Summary 扫码查询住宿
// @Tags 住宿
// @Produce json
// @Security Bearer
// @Param code query string true "二维码内容"
// @Success 200 {object} response.Response{data=models.Stay}
// @Router /api/v1/stays/scan [get]
func (h *Handler) Scan(c *gin.Context) {
	orderNumber, stayID, err := qrcode.ParseStayContent(c.Query("code"))
	if err != nil {
		response.BadRequest(c, "Código QR inválido")
		return
	}

	stay, err := h.stayService.GetByOrderNumber(c.Request.Context(), orderNumber)
	if err == nil && stay.ID != stayID {
		err = errors.ErrStayNotFound
	}
	handler.MustSucceed(c, err, stay)
}

// CreateReservation 新建预订
// @Summary 新建预订
// @Tags 住宿
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body stayService.CreateRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Stay}
// @Router /api/v1/stays/reservations [post]
func (h *Handler) CreateReservation(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req stayService.CreateRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	stay, err := h.stayService.CreateReservation(c.Request.Context(), &req, a)
	handler.MustSucceed(c, err, stay)
}

// CheckInDirect 直接入住
// @Summary 直接入住
// @Tags 住宿
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body stayService.CreateRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Stay}
// @Router /api/v1/stays/check-in [post]
func (h *Handler) CheckInDirect(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req stayService.CreateRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	stay, err := h.stayService.CheckInDirect(c.Request.Context(), &req, a)
	handler.MustSucceed(c, err, stay)
}

// CheckInReservation 预订转入住
// @Summary 预订转入住
// @Tags 住宿
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "住宿ID"
// @Param request body stayService.CheckInRequest false "请求参数"
// @Success 200 {object} response.Response{data=models.Stay}
// @Router /api/v1/stays/{id}/check-in [post]
func (h *Handler) CheckInReservation(c *gin.Context) {
	a, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req stayService.CheckInRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	stay, err := h.stayService.CheckInReservation(c.Request.Context(), id, &req, a)
	handler.MustSucceed(c, err, stay)
}

// RegisterPayment 登记收款
// @Summary 登记收款
// @Tags 住宿
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "住宿ID"
// @Param request body stayService.PaymentInput true "请求参数"
// @Success 200 {object} response.Response{data=stayService.PaymentResult}
// @Router /api/v1/stays/{id}/payments [post]
func (h *Handler) RegisterPayment(c *gin.Context) {
	a, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req stayService.PaymentInput
	if !handler.BindJSON(c, &req) {
		return
	}

	result, err := h.stayService.RegisterPayment(c.Request.Context(), id, &req, a)
	handler.MustSucceed(c, err, result)
}

// ListPayments 住宿收款流水
// @Summary 住宿收款流水
// @Tags 住宿
// @Produce json
// @Security Bearer
// @Param id path int true "住宿ID"
// @Success 200 {object} response.Response{data=[]models.Payment}
// @Router /api/v1/stays/{id}/payments [get]
func (h *Handler) ListPayments(c *gin.Context) {
	id, ok := handler.ParseID(c, "estadía")
	if !ok {
		return
	}

	payments, err := h.paymentService.ListByStay(c.Request.Context(), id)
	handler.MustSucceed(c, err, payments)
}

// CheckOut 退房
// @Summary 退房
// @Tags 住宿
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "住宿ID"
// @Param request body stayService.CheckOutRequest false "请求参数"
// @Success 200 {object} response.Response{data=models.Stay}
// @Router /api/v1/stays/{id}/check-out [post]
func (h *Handler) CheckOut(c *gin.Context) {
	a, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req stayService.CheckOutRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	stay, err := h.stayService.CheckOut(c.Request.Context(), id, &req, a)
	handler.MustSucceed(c, err, stay)
}

// Cancel 取消预订
// @Summary 取消预订
// @Tags 住宿
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "住宿ID"
// @Param request body stayService.CancelRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Stay}
// @Router /api/v1/stays/{id}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	a, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req stayService.CancelRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	stay, err := h.stayService.Cancel(c.Request.Context(), id, &req, a)
	handler.MustSucceed(c, err, stay)
}

// ApplyPriceOverride 管理员改价
// @Summary 管理员改价
// @Tags 住宿
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "住宿ID"
// @Param request body stayService.PriceOverrideRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.PriceOverride}
// @Router /api/v1/stays/{id}/price-override [post]
func (h *Handler) ApplyPriceOverride(c *gin.Context) {
	a, id, ok := h.actorAndID(c)
	if !ok {
		return
	}
	var req stayService.PriceOverrideRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	override, err := h.stayService.ApplyPriceOverride(c.Request.Context(), id, &req, a, c.ClientIP())
	handler.MustSucceed(c, err, override)
}

// PriceOverrides 改价记录
// @Summary 改价记录
// @Tags 住宿
// @Produce json
// @Security Bearer
// @Param id path int true "住宿ID"
// @Success 200 {object} response.Response{data=[]models.PriceOverride}
// @Router /api/v1/stays/{id}/price-overrides [get]
func (h *Handler) PriceOverrides(c *gin.Context) {
	id, ok := handler.ParseID(c, "estadía")
	if !ok {
		return
	}

	list, err := h.stayService.PriceOverrides(c.Request.Context(), id)
	handler.MustSucceed(c, err, list)
}

// Receipt 下载 PDF 凭证
// @Summary 下载住宿凭证
// @Tags 住宿
// @Produce application/pdf
// @Security Bearer
// @Param id path int true "住宿ID"
// @Success 200 {file} binary
// @Router /api/v1/stays/{id}/receipt [get]
func (h *Handler) Receipt(c *gin.Context) {
	id, ok := handler.ParseID(c, "estadía")
	if !ok {
		return
	}

	receipt, err := h.reportService.Receipt(c.Request.Context(), id)
	if handler.HandleError(c, err) {
		return
	}
	response.Attachment(c, receipt.FileName, response.ContentTypePDF, receipt.Content)
}

// QRCode 住宿二维码
// @Summary 住宿二维码
// @Tags 住宿
// @Produce image/png
// @Security Bearer
// @Param id path int true "住宿ID"
// @Success 200 {file} binary
// @Router /api/v1/stays/{id}/qrcode [get]
func (h *Handler) QRCode(c *gin.Context) {
	id, ok := handler.ParseID(c, "estadía")
	if !ok {
		return
	}

	png, err := h.reportService.QRCode(c.Request.Context(), id)
	if handler.HandleError(c, err) {
		return
	}
	response.Inline(c, response.ContentTypePNG, png)
}

// Availability 可用性检查
// @Summary 可用性检查
// @Tags 日历
// @Produce json
// @Security Bearer
// @Param room_id query int false "房间"
// @Param accommodation_type_id query int false "住宿类型"
// @Param check_in query string true "入住日期"
// @Param check_out query string true "退房日期"
// @Param exclude_stay_id query int false "排除的住宿"
// @Success 200 {object} response.Response{data=availabilityService.Result}
// @Router /api/v1/availability [get]
func (h *Handler) Availability(c *gin.Context) {
	var target availabilityService.Target
	var ok bool
	if target.RoomID, ok = handler.ParseQueryID(c, "room_id", "habitación"); !ok {
		return
	}
	if target.AccommodationTypeID, ok = handler.ParseQueryID(c, "accommodation_type_id", "alojamiento"); !ok {
		return
	}
	exclude, ok := handler.ParseQueryID(c, "exclude_stay_id", "estadía")
	if !ok {
		return
	}
	checkIn, checkOut, ok := handler.ParseRequiredQueryDateRange(c, "check_in", "check_out")
	if !ok {
		return
	}
	var excludeID int64
	if exclude != nil {
		excludeID = *exclude
	}

	result, err := h.availabilityService.Check(c.Request.Context(), target, checkIn, checkOut, excludeID)
	handler.MustSucceed(c, err, result)
}

// Quote 报价
// @Summary 报价
// @Tags 日历
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body pricingService.QuoteRequest true "请求参数"
// @Success 200 {object} response.Response{data=pricingService.Quote}
// @Router /api/v1/pricing/quote [post]
func (h *Handler) Quote(c *gin.Context) {
	var req pricingService.QuoteRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	quote, err := h.pricingService.Quote(c.Request.Context(), &req)
	handler.MustSucceed(c, err, quote)
}

func (h *Handler) actorAndID(c *gin.Context) (stayService.Actor, int64, bool) {
	a, ok := actor(c)
	if !ok {
		return a, 0, false
	}
	id, ok := handler.ParseID(c, "estadía")
	return a, id, ok
}

// bindOptionalJSON 请求体可以为空
func bindOptionalJSON(c *gin.Context, req interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return handler.BindJSON(c, req)
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	desk := r.Group("", middleware.RequireFrontDesk())
	{
		desk.GET("/availability", h.Availability)
		desk.POST("/pricing/quote", h.Quote)

		desk.GET("/stays", h.List)
		desk.GET("/stays/order/:number", h.GetByOrderNumber)
		desk.GET("/stays/scan", h.Scan)
		desk.GET("/stays/:id", h.Get)
		desk.POST("/stays/reservations", h.CreateReservation)
		desk.POST("/stays/check-in", h.CheckInDirect)
		desk.POST("/stays/:id/check-in", h.CheckInReservation)
		desk.POST("/stays/:id/payments", h.RegisterPayment)
		desk.GET("/stays/:id/payments", h.ListPayments)
		desk.POST("/stays/:id/check-out", h.CheckOut)
		desk.POST("/stays/:id/cancel", h.Cancel)
		desk.GET("/stays/:id/price-overrides", h.PriceOverrides)
		desk.GET("/stays/:id/receipt", h.Receipt)
		desk.GET("/stays/:id/qrcode", h.QRCode)
	}

	r.POST("/stays/:id/price-override", middleware.RequireAdmin(), h.ApplyPriceOverride)
}
