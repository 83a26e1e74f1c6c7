// Package settings 提供酒店设置 HTTP Handler
package settings

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/handler"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/middleware"
	settingsService "github.com/dumeirei/hotel-frontdesk-backend/internal/service/settings"
)

// Handler 设置处理器
type Handler struct {
	settingsService *settingsService.Service
}

// NewHandler 创建设置处理器
func NewHandler(svc *settingsService.Service) *Handler {
	return &Handler{settingsService: svc}
}

// Get 获取设置
// @Summary 获取酒店设置
// @Tags 设置
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=models.Setting}
// @Router /api/v1/settings [get]
func (h *Handler) Get(c *gin.Context) {
	setting, err := h.settingsService.Get(c.Request.Context())
	handler.MustSucceed(c, err, setting)
}

// Update 更新设置
// @Summary 更新酒店设置
// @Tags 设置
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body settingsService.UpdateRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Setting}
// @Router /api/v1/settings [put]
func (h *Handler) Update(c *gin.Context) {
	adminID, ok := handler.RequireEmployeeID(c)
	if !ok {
		return
	}
	var req settingsService.UpdateRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	setting, err := h.settingsService.Update(c.Request.Context(), adminID, &req)
	handler.MustSucceed(c, err, setting)
}

// History 设置修改记录
// @Summary 酒店设置修改记录
// @Tags 设置
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=[]models.OperationLog}
// @Router /api/v1/settings/history [get]
func (h *Handler) History(c *gin.Context) {
	logs, err := h.settingsService.History(c.Request.Context())
	handler.MustSucceed(c, err, logs)
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/settings", middleware.RequireAnyStaff(), h.Get)
	r.PUT("/settings", middleware.RequireAdmin(), h.Update)
	r.GET("/settings/history", middleware.RequireAdmin(), h.History)
}
