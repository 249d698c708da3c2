package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"yuva-vikas/backend/pkg/response"
)

// OperatorHeader 操作员标识请求头
// 身份认证由上游网关完成，这里只要求网关透传操作员 ID 供审计落账
const OperatorHeader = "X-Operator-ID"

// RequireOperator 操作员标识中间件
// 所有写操作必须携带合法的操作员 UUID，否则拒绝
func RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		operatorID := c.GetHeader(OperatorHeader)
		if operatorID == "" {
			response.Unauthorized(c, 10002, "缺少操作员标识头 X-Operator-ID")
			c.Abort()
			return
		}
		if _, err := uuid.Parse(operatorID); err != nil {
			response.Unauthorized(c, 10002, "操作员标识必须为合法 UUID")
			c.Abort()
			return
		}

		c.Set("operator_id", operatorID)
		c.Next()
	}
}
