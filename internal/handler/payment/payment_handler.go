// Package payment 提供收款流水查询与更正的 HTTP Handler
package payment

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/handler"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/middleware"
	paymentService "github.com/dumeirei/hotel-frontdesk-backend/internal/service/payment"
)

// Handler 收款处理器
type Handler struct {
	paymentService *paymentService.Service
}

// NewHandler 创建收款处理器
func NewHandler(svc *paymentService.Service) *Handler {
	return &Handler{paymentService: svc}
}

// List 收款流水
// @Summary 收款流水
// @Tags 收款
// @Produce json
// @Security Bearer
// @Param from query string false "开始日期"
// @Param to query string false "结束日期（含）"
// @Param payment_method_id query int false "支付方式"
// @Param employee_id query int false "收款员工"
// @Param payment_type query string false "收款类型"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/payments [get]
func (h *Handler) List(c *gin.Context) {
	var req paymentService.ListRequest
	var ok bool
	if req.From, ok = handler.ParseQueryDate(c, "from"); !ok {
		return
	}
	if req.To, ok = handler.ParseQueryDate(c, "to"); !ok {
		return
	}
	if req.To != nil {
		end := req.To.AddDate(0, 0, 1)
		req.To = &end
	}
	if req.PaymentMethodID, ok = handler.ParseQueryID(c, "payment_method_id", "método de pago"); !ok {
		return
	}
	if req.EmployeeID, ok = handler.ParseQueryID(c, "employee_id", "empleado"); !ok {
		return
	}
	req.PaymentType = c.Query("payment_type")
	p := handler.BindPagination(c)

	list, total, err := h.paymentService.List(c.Request.Context(), &req, p.GetOffset(), p.GetLimit())
	handler.MustSucceedPage(c, err, list, total, p)
}

// Correct 管理员更正收款
// @Summary 更正收款
// @Tags 收款
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "收款ID"
// @Param request body paymentService.CorrectRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Payment}
// @Router /api/v1/payments/{id} [put]
func (h *Handler) Correct(c *gin.Context) {
	adminID, id, ok := handler.RequireEmployeeAndParseID(c, "pago")
	if !ok {
		return
	}
	var req paymentService.CorrectRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	payment, err := h.paymentService.Correct(c.Request.Context(), adminID, id, &req, c.ClientIP())
	handler.MustSucceed(c, err, payment)
}

// Methods 支付方式
// @Summary 支付方式
// @Tags 收款
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=[]models.PaymentMethod}
// @Router /api/v1/payment-methods [get]
func (h *Handler) Methods(c *gin.Context) {
	methods, err := h.paymentService.Methods(c.Request.Context())
	handler.MustSucceed(c, err, methods)
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/payments", middleware.RequireFrontDesk(), h.List)
	r.GET("/payment-methods", middleware.RequireFrontDesk(), h.Methods)
	r.PUT("/payments/:id", middleware.RequireAdmin(), h.Correct)
}
