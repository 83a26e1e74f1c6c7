package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

// RequireRoles 只放行令牌角色在 roles 中的员工，必须挂在 EmployeeAuth 之后
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := slices.Clone(roles)

	return func(c *gin.Context) {
		role := GetRole(c)
		switch {
		case role == "":
			response.Unauthorized(c, "Inicie sesión")
		case !slices.Contains(allowed, role):
			logger.Warn("role denied",
				logger.EmployeeID(GetEmployeeID(c)),
				logger.String("role", role),
				logger.Path(c.FullPath()),
			)
			response.Forbidden(c, "")
		default:
			c.Next()
			return
		}
		c.Abort()
	}
}

// RequireAdmin 价格调整、员工、配置和报表
func RequireAdmin() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin)
}

// RequireFrontDesk 住宿流程和客人档案
func RequireFrontDesk() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin, models.RoleReceptionist)
}

// RequireAnyStaff 房态动作，保洁和维修也可操作
func RequireAnyStaff() gin.HandlerFunc {
	return RequireRoles(models.RoleNames...)
}
