package handler

import (
	"github.com/gin-gonic/gin"

	"yuva-vikas/backend/pkg/response"
)

// MustGetOperatorID 从 Gin 上下文中安全提取 operator_id。
// 如果操作员中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetOperatorID(c *gin.Context) (string, bool) {
	v, exists := c.Get("operator_id")
	if !exists {
		response.Unauthorized(c, 10002, "缺少操作员标识")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "缺少操作员标识")
		return "", false
	}
	return s, true
}
