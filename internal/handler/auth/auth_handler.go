// Package auth 提供员工认证相关的 HTTP Handler
package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/handler"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/response"
	authService "github.com/dumeirei/hotel-frontdesk-backend/internal/service/auth"
)

// Handler 认证处理器
type Handler struct {
	authService *authService.Service
}

// NewHandler 创建认证处理器
func NewHandler(authSvc *authService.Service) *Handler {
	return &Handler{authService: authSvc}
}

// Login 邮箱密码登录
// @Summary 员工登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body authService.LoginRequest true "请求参数"
// @Success 200 {object} response.Response{data=authService.LoginResponse}
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req authService.LoginRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	req.IP = c.ClientIP()

	result, err := h.authService.Login(c.Request.Context(), &req)
	handler.MustSucceed(c, err, result)
}

// Register 管理员自助注册
// @Summary 管理员注册
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body authService.RegisterRequest true "请求参数"
// @Success 200 {object} response.Response{data=authService.LoginResponse}
// @Router /api/v1/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req authService.RegisterRequest
	if !handler.BindJSON(c, &req) {
		return
	}
	req.IP = c.ClientIP()

	result, err := h.authService.RegisterAdmin(c.Request.Context(), &req)
	handler.MustSucceed(c, err, result)
}

// Refresh 刷新令牌
// @Summary 刷新令牌
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body authService.RefreshRequest true "请求参数"
// @Success 200 {object} response.Response
// @Router /api/v1/auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var req authService.RefreshRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	handler.MustSucceed(c, err, pair)
}

// Profile 当前员工信息
// @Summary 当前员工信息
// @Tags 认证
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=authService.EmployeeInfo}
// @Router /api/v1/auth/profile [get]
func (h *Handler) Profile(c *gin.Context) {
	employeeID, ok := handler.RequireEmployeeID(c)
	if !ok {
		return
	}

	info, err := h.authService.Profile(c.Request.Context(), employeeID)
	handler.MustSucceed(c, err, info)
}

// ChangePassword 修改密码
// @Summary 修改密码
// @Tags 认证
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body authService.ChangePasswordRequest true "请求参数"
// @Success 200 {object} response.Response
// @Router /api/v1/auth/password [put]
func (h *Handler) ChangePassword(c *gin.Context) {
	employeeID, ok := handler.RequireEmployeeID(c)
	if !ok {
		return
	}

	var req authService.ChangePasswordRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	if handler.HandleError(c, h.authService.ChangePassword(c.Request.Context(), employeeID, &req)) {
		return
	}
	response.SuccessWithMessage(c, "Contraseña actualizada", nil)
}

// RegisterRoutes 注册公开路由，limiter 作用于登录和注册
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, limiter ...gin.HandlerFunc) {
	limited := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		chain := make([]gin.HandlerFunc, 0, len(limiter)+1)
		return append(append(chain, limiter...), fn)
	}

	auth := r.Group("/auth")
	{
		auth.POST("/login", limited(h.Login)...)
		auth.POST("/register", limited(h.Register)...)
		auth.POST("/refresh", h.Refresh)
	}
}

// RegisterProtectedRoutes 注册需要登录的路由
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.GET("/profile", h.Profile)
		auth.PUT("/password", h.ChangePassword)
	}
}
