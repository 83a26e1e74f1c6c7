// Package room 提供房间、住宿类型、房态日志与房态日历的 HTTP Handler
package room

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/handler"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/middleware"
	roomService "github.com/dumeirei/hotel-frontdesk-backend/internal/service/room"
)

// Handler 房间处理器
type Handler struct {
	roomService *roomService.Service
}

// NewHandler 创建房间处理器
func NewHandler(svc *roomService.Service) *Handler {
	return &Handler{roomService: svc}
}

// ListRooms 房间列表
// @Summary 房间列表
// @Tags 房间
// @Produce json
// @Security Bearer
// @Param accommodation_type_id query int false "住宿类型"
// @Param status_id query int false "房态"
// @Param is_active query bool false "是否启用"
// @Param keyword query string false "房号"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/rooms [get]
func (h *Handler) ListRooms(c *gin.Context) {
	p := handler.BindPagination(c)

	filters := make(map[string]interface{})
	typeID, ok := handler.ParseQueryID(c, "accommodation_type_id", "alojamiento")
	if !ok {
		return
	}
	if typeID != nil {
		filters["accommodation_type_id"] = *typeID
	}
	statusID, ok := handler.ParseQueryID(c, "status_id", "estado")
	if !ok {
		return
	}
	if statusID != nil {
		filters["status_id"] = *statusID
	}
	if v := c.Query("is_active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(c, "Valor inválido para is_active")
			return
		}
		filters["is_active"] = active
	}
	if keyword := c.Query("keyword"); keyword != "" {
		filters["keyword"] = keyword
	}

	rooms, total, err := h.roomService.ListRooms(c.Request.Context(), p.GetOffset(), p.GetLimit(), filters)
	handler.MustSucceedPage(c, err, rooms, total, p)
}

// GetRoom 房间详情
// @Summary 房间详情
// @Tags 房间
// @Produce json
// @Security Bearer
// @Param id path int true "房间ID"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/v1/rooms/{id} [get]
func (h *Handler) GetRoom(c *gin.Context) {
	id, ok := handler.ParseID(c, "habitación")
	if !ok {
		return
	}

	room, err := h.roomService.GetRoom(c.Request.Context(), id)
	handler.MustSucceed(c, err, room)
}

// CreateRoom 创建房间
// @Summary 创建房间
// @Tags 房间
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body roomService.CreateRoomRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/v1/rooms [post]
func (h *Handler) CreateRoom(c *gin.Context) {
	var req roomService.CreateRoomRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	room, err := h.roomService.CreateRoom(c.Request.Context(), &req)
	handler.MustSucceed(c, err, room)
}

// UpdateRoom 更新房间
// @Summary 更新房间
// @Tags 房间
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "房间ID"
// @Param request body roomService.UpdateRoomRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/v1/rooms/{id} [put]
func (h *Handler) UpdateRoom(c *gin.Context) {
	id, ok := handler.ParseID(c, "habitación")
	if !ok {
		return
	}
	var req roomService.UpdateRoomRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	room, err := h.roomService.UpdateRoom(c.Request.Context(), id, &req)
	handler.MustSucceed(c, err, room)
}

// ReplaceRates 替换房间分档价格
// @Summary 替换分档价格
// @Tags 房间
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "房间ID"
// @Param request body []roomService.RateInput true "分档价格"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/v1/rooms/{id}/rates [put]
func (h *Handler) ReplaceRates(c *gin.Context) {
	id, ok := handler.ParseID(c, "habitación")
	if !ok {
		return
	}
	var rates []roomService.RateInput
	if !handler.BindJSON(c, &rates) {
		return
	}

	room, err := h.roomService.ReplaceRates(c.Request.Context(), id, rates)
	handler.MustSucceed(c, err, room)
}

// DeactivateRoom 停用房间
// @Summary 停用房间
// @Tags 房间
// @Produce json
// @Security Bearer
// @Param id path int true "房间ID"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/v1/rooms/{id}/deactivate [put]
func (h *Handler) DeactivateRoom(c *gin.Context) {
	id, ok := handler.ParseID(c, "habitación")
	if !ok {
		return
	}

	room, err := h.roomService.DeactivateRoom(c.Request.Context(), id)
	handler.MustSucceed(c, err, room)
}

// ApplyAction 房间操作（清洁、维修及手动变更）
// @Summary 房间操作
// @Tags 房间
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "房间ID"
// @Param request body roomService.ActionRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.RoomHistory}
// @Router /api/v1/rooms/{id}/actions [post]
func (h *Handler) ApplyAction(c *gin.Context) {
	id, ok := handler.ParseID(c, "habitación")
	if !ok {
		return
	}
	var req roomService.ActionRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	history, err := h.roomService.ApplyAction(c.Request.Context(), id, &req)
	handler.MustSucceed(c, err, history)
}

// RoomHistory 房间房态日志
// @Summary 房间房态日志
// @Tags 房间
// @Produce json
// @Security Bearer
// @Param id path int true "房间ID"
// @Param action query string false "操作"
// @Param from query string false "开始日期"
// @Param to query string false "结束日期"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/rooms/{id}/history [get]
func (h *Handler) RoomHistory(c *gin.Context) {
	id, ok := handler.ParseID(c, "habitación")
	if !ok {
		return
	}
	h.history(c, &roomService.HistoryRequest{RoomID: &id})
}

// ListStatuses 房态目录
// @Summary 房态目录
// @Tags 房间
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=[]models.RoomStatus}
// @Router /api/v1/room-statuses [get]
func (h *Handler) ListStatuses(c *gin.Context) {
	statuses, err := h.roomService.ListStatuses(c.Request.Context())
	handler.MustSucceed(c, err, statuses)
}

// ListTypes 住宿类型列表
// @Summary 住宿类型列表
// @Tags 住宿类型
// @Produce json
// @Security Bearer
// @Param only_active query bool false "仅启用"
// @Success 200 {object} response.Response{data=[]models.AccommodationType}
// @Router /api/v1/accommodation-types [get]
func (h *Handler) ListTypes(c *gin.Context) {
	onlyActive := c.Query("only_active") == "true"

	types, err := h.roomService.ListTypes(c.Request.Context(), onlyActive)
	handler.MustSucceed(c, err, types)
}

// CreateType 创建住宿类型
// @Summary 创建住宿类型
// @Tags 住宿类型
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body roomService.CreateTypeRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.AccommodationType}
// @Router /api/v1/accommodation-types [post]
func (h *Handler) CreateType(c *gin.Context) {
	var req roomService.CreateTypeRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	at, err := h.roomService.CreateType(c.Request.Context(), &req)
	handler.MustSucceed(c, err, at)
}

// UpdateType 更新住宿类型
// @Summary 更新住宿类型
// @Tags 住宿类型
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "住宿类型ID"
// @Param request body roomService.UpdateTypeRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.AccommodationType}
// @Router /api/v1/accommodation-types/{id} [put]
func (h *Handler) UpdateType(c *gin.Context) {
	id, ok := handler.ParseID(c, "alojamiento")
	if !ok {
		return
	}
	var req roomService.UpdateTypeRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	at, err := h.roomService.UpdateType(c.Request.Context(), id, &req)
	handler.MustSucceed(c, err, at)
}

// TypeHistory 整租住宿的房态日志
// @Summary 住宿类型房态日志
// @Tags 住宿类型
// @Produce json
// @Security Bearer
// @Param id path int true "住宿类型ID"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/accommodation-types/{id}/history [get]
func (h *Handler) TypeHistory(c *gin.Context) {
	id, ok := handler.ParseID(c, "alojamiento")
	if !ok {
		return
	}
	h.history(c, &roomService.HistoryRequest{AccommodationTypeID: &id})
}

// Calendar 房态日历
// @Summary 房态日历
// @Tags 日历
// @Produce json
// @Security Bearer
// @Param from query string true "开始日期 YYYY-MM-DD"
// @Param to query string true "结束日期（不含）"
// @Success 200 {object} response.Response{data=roomService.Calendar}
// @Router /api/v1/calendar [get]
func (h *Handler) Calendar(c *gin.Context) {
	from, to, ok := handler.ParseRequiredQueryDateRange(c, "from", "to")
	if !ok {
		return
	}

	cal, err := h.roomService.Calendar(c.Request.Context(), from, to)
	handler.MustSucceed(c, err, cal)
}

func (h *Handler) history(c *gin.Context, req *roomService.HistoryRequest) {
	var ok bool
	if req.StayID, ok = handler.ParseQueryID(c, "stay_id", "estadía"); !ok {
		return
	}
	if req.From, ok = handler.ParseQueryDate(c, "from"); !ok {
		return
	}
	if req.To, ok = handler.ParseQueryDate(c, "to"); !ok {
		return
	}
	req.Action = c.Query("action")
	p := handler.BindPagination(c)

	list, total, err := h.roomService.History(c.Request.Context(), req, p.GetOffset(), p.GetLimit())
	handler.MustSucceedPage(c, err, list, total, p)
}

// RegisterRoutes 注册路由。查询和房间操作对所有员工开放，维护类接口仅管理员
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	staff := r.Group("", middleware.RequireAnyStaff())
	{
		staff.GET("/rooms", h.ListRooms)
		staff.GET("/rooms/:id", h.GetRoom)
		staff.POST("/rooms/:id/actions", h.ApplyAction)
		staff.GET("/rooms/:id/history", h.RoomHistory)
		staff.GET("/room-statuses", h.ListStatuses)
		staff.GET("/accommodation-types", h.ListTypes)
		staff.GET("/accommodation-types/:id/history", h.TypeHistory)
		staff.GET("/calendar", h.Calendar)
	}

	admin := r.Group("", middleware.RequireAdmin())
	{
		admin.POST("/rooms", h.CreateRoom)
		admin.PUT("/rooms/:id", h.UpdateRoom)
		admin.PUT("/rooms/:id/rates", h.ReplaceRates)
		admin.PUT("/rooms/:id/deactivate", h.DeactivateRoom)
		admin.POST("/accommodation-types", h.CreateType)
		admin.PUT("/accommodation-types/:id", h.UpdateType)
	}
}
