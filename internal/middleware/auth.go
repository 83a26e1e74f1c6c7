// Package middleware 提供 HTTP 中间件
package middleware

import (
	stderrors "errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/jwt"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/response"
)

// 上下文键
const (
	ContextKeyEmployeeID = "employee_id"
	ContextKeyAuthID     = "auth_id"
	ContextKeyRole       = "role"
	ContextKeyClaims     = "claims"
)

// EmployeeAuth 员工认证中间件，会话声明放入 gin 上下文
func EmployeeAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, "Inicie sesión")
			c.Abort()
			return
		}

		claims, err := jwtManager.ParseAccessToken(token)
		if err != nil {
			if stderrors.Is(err, jwt.ErrTokenExpired) {
				response.Unauthorized(c, "La sesión expiró, inicie sesión de nuevo")
			} else {
				response.Unauthorized(c, "Token inválido")
			}
			c.Abort()
			return
		}

		SetClaims(c, claims)
		c.Next()
	}
}

// SetClaims 写入会话声明
func SetClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set(ContextKeyEmployeeID, claims.EmployeeID)
	c.Set(ContextKeyAuthID, claims.AuthID)
	c.Set(ContextKeyRole, claims.Role)
	c.Set(ContextKeyClaims, claims)
}

// extractToken 从请求中提取令牌
func extractToken(c *gin.Context) string {
	// 优先从 Authorization 头获取
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	// 下载类接口（CSV/PDF）允许通过查询参数携带
	return c.Query("token")
}

// GetEmployeeID 从上下文获取员工 ID
func GetEmployeeID(c *gin.Context) int64 {
	if v, exists := c.Get(ContextKeyEmployeeID); exists {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// GetRole 从上下文获取角色
func GetRole(c *gin.Context) string {
	if v, exists := c.Get(ContextKeyRole); exists {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

// GetClaims 从上下文获取完整的 Claims
func GetClaims(c *gin.Context) *jwt.Claims {
	if v, exists := c.Get(ContextKeyClaims); exists {
		if claims, ok := v.(*jwt.Claims); ok {
			return claims
		}
	}
	return nil
}
