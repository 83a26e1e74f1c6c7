// Package employee 提供员工管理 HTTP Handler（仅管理员）
package employee

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/handler"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/middleware"
	employeeService "github.com/dumeirei/hotel-frontdesk-backend/internal/service/employee"
)

// Handler 员工管理处理器
type Handler struct {
	employeeService *employeeService.Service
}

// NewHandler 创建员工管理处理器
func NewHandler(svc *employeeService.Service) *Handler {
	return &Handler{employeeService: svc}
}

// List 员工列表
// @Summary 员工列表
// @Tags 员工
// @Produce json
// @Security Bearer
// @Param role query string false "角色"
// @Param is_active query bool false "是否在职"
// @Param keyword query string false "姓名或邮箱"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/employees [get]
func (h *Handler) List(c *gin.Context) {
	var req employeeService.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Parámetros inválidos")
		return
	}
	p := handler.BindPagination(c)

	list, total, err := h.employeeService.List(c.Request.Context(), &req, p.GetOffset(), p.GetLimit())
	handler.MustSucceedPage(c, err, list, total, p)
}

// Get 员工详情
// @Summary 员工详情
// @Tags 员工
// @Produce json
// @Security Bearer
// @Param id path int true "员工ID"
// @Success 200 {object} response.Response{data=authService.EmployeeInfo}
// @Router /api/v1/employees/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParseID(c, "empleado")
	if !ok {
		return
	}

	info, err := h.employeeService.Get(c.Request.Context(), id)
	handler.MustSucceed(c, err, info)
}

// Create 创建员工
// @Summary 创建员工
// @Tags 员工
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body employeeService.CreateRequest true "请求参数"
// @Success 200 {object} response.Response{data=authService.EmployeeInfo}
// @Router /api/v1/employees [post]
func (h *Handler) Create(c *gin.Context) {
	adminID, ok := handler.RequireEmployeeID(c)
	if !ok {
		return
	}

	var req employeeService.CreateRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	info, err := h.employeeService.Create(c.Request.Context(), adminID, &req, c.ClientIP())
	handler.MustSucceed(c, err, info)
}

// Update 更新员工
// @Summary 更新员工
// @Tags 员工
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "员工ID"
// @Param request body employeeService.UpdateRequest true "请求参数"
// @Success 200 {object} response.Response{data=authService.EmployeeInfo}
// @Router /api/v1/employees/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	adminID, id, ok := handler.RequireEmployeeAndParseID(c, "empleado")
	if !ok {
		return
	}

	var req employeeService.UpdateRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	info, err := h.employeeService.Update(c.Request.Context(), adminID, id, &req, c.ClientIP())
	handler.MustSucceed(c, err, info)
}

// Roles 角色列表
// @Summary 角色列表
// @Tags 员工
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=[]models.Role}
// @Router /api/v1/roles [get]
func (h *Handler) Roles(c *gin.Context) {
	roles, err := h.employeeService.Roles(c.Request.Context())
	handler.MustSucceed(c, err, roles)
}

// OperationLogs 操作日志
// @Summary 操作日志
// @Tags 员工
// @Produce json
// @Security Bearer
// @Param employee_id query int false "员工"
// @Param module query string false "模块"
// @Param action query string false "操作"
// @Param target_type query string false "目标类型"
// @Param target_id query int false "目标ID"
// @Param from query string false "开始日期"
// @Param to query string false "结束日期（含）"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/operation-logs [get]
func (h *Handler) OperationLogs(c *gin.Context) {
	var req employeeService.AuditRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Parámetros inválidos")
		return
	}
	var ok bool
	if req.From, ok = handler.ParseQueryDate(c, "from"); !ok {
		return
	}
	if req.To, ok = handler.ParseQueryDate(c, "to"); !ok {
		return
	}
	if req.To != nil {
		// to 为闭区间日期，转为次日零点
		end := req.To.AddDate(0, 0, 1)
		req.To = &end
	}
	p := handler.BindPagination(c)

	list, total, err := h.employeeService.OperationLogs(c.Request.Context(), &req, p.GetOffset(), p.GetLimit())
	handler.MustSucceedPage(c, err, list, total, p)
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("", middleware.RequireAdmin())
	{
		admin.GET("/employees", h.List)
		admin.GET("/employees/:id", h.Get)
		admin.POST("/employees", h.Create)
		admin.PUT("/employees/:id", h.Update)
		admin.GET("/roles", h.Roles)
		admin.GET("/operation-logs", h.OperationLogs)
	}
}
