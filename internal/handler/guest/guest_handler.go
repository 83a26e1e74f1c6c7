// Package guest 提供客人档案 HTTP Handler
package guest

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/handler"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/middleware"
	guestService "github.com/dumeirei/hotel-frontdesk-backend/internal/service/guest"
)

// Handler 客人处理器
type Handler struct {
	guestService *guestService.Service
}

// NewHandler 创建客人处理器
func NewHandler(svc *guestService.Service) *Handler {
	return &Handler{guestService: svc}
}

// List 客人列表
// @Summary 客人列表
// @Tags 客人
// @Produce json
// @Security Bearer
// @Param keyword query string false "姓名或证件号"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/guests [get]
func (h *Handler) List(c *gin.Context) {
	p := handler.BindPagination(c)

	list, total, err := h.guestService.List(c.Request.Context(), c.Query("keyword"), p.GetOffset(), p.GetLimit())
	handler.MustSucceedPage(c, err, list, total, p)
}

// Lookup 按证件号查找，用于表单自动填充
// @Summary 按证件号查找客人
// @Tags 客人
// @Produce json
// @Security Bearer
// @Param doc_number query string true "证件号"
// @Success 200 {object} response.Response{data=models.Guest}
// @Router /api/v1/guests/lookup [get]
func (h *Handler) Lookup(c *gin.Context) {
	doc := c.Query("doc_number")
	if doc == "" {
		response.BadRequest(c, "Indique el número de documento")
		return
	}

	g, err := h.guestService.GetByDocument(c.Request.Context(), doc)
	handler.MustSucceed(c, err, g)
}

// Save 新建客人，证件号已存在时更新
// @Summary 保存客人
// @Tags 客人
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body guestService.Input true "请求参数"
// @Success 200 {object} response.Response{data=models.Guest}
// @Router /api/v1/guests [post]
func (h *Handler) Save(c *gin.Context) {
	var req guestService.Input
	if !handler.BindJSON(c, &req) {
		return
	}

	g, err := h.guestService.Upsert(c.Request.Context(), &req)
	handler.MustSucceed(c, err, g)
}

// Update 更新客人
// @Summary 更新客人
// @Tags 客人
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "客人ID"
// @Param request body guestService.Input true "请求参数"
// @Success 200 {object} response.Response{data=models.Guest}
// @Router /api/v1/guests/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParseID(c, "huésped")
	if !ok {
		return
	}
	var req guestService.Input
	if !handler.BindJSON(c, &req) {
		return
	}

	g, err := h.guestService.Update(c.Request.Context(), id, &req)
	handler.MustSucceed(c, err, g)
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	guests := r.Group("/guests", middleware.RequireFrontDesk())
	{
		guests.GET("", h.List)
		guests.GET("/lookup", h.Lookup)
		guests.POST("", h.Save)
		guests.PUT("/:id", h.Update)
	}
}
