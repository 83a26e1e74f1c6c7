// Package geo 提供省市目录 HTTP Handler
package geo

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/handler"
	geoService "github.com/dumeirei/hotel-frontdesk-backend/internal/service/geo"
)

// Handler 地理目录处理器
type Handler struct {
	geoService *geoService.Service
}

// NewHandler 创建地理目录处理器
func NewHandler(svc *geoService.Service) *Handler {
	return &Handler{geoService: svc}
}

// Departments 省份及城市
// @Summary 省份及城市
// @Tags 地理
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=[]geoService.Department}
// @Router /api/v1/geography [get]
func (h *Handler) Departments(c *gin.Context) {
	list, err := h.geoService.Departments(c.Request.Context())
	handler.MustSucceed(c, err, list)
}

// Cities 省份下的城市
// @Summary 省份下的城市
// @Tags 地理
// @Produce json
// @Security Bearer
// @Param department path string true "省份"
// @Success 200 {object} response.Response{data=[]string}
// @Router /api/v1/geography/{department} [get]
func (h *Handler) Cities(c *gin.Context) {
	cities, err := h.geoService.Cities(c.Request.Context(), c.Param("department"))
	handler.MustSucceed(c, err, cities)
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/geography", h.Departments)
	r.GET("/geography/:department", h.Cities)
}
