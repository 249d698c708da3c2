package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"yuva-vikas/backend/config"
	"yuva-vikas/backend/internal/api/handler"
	"yuva-vikas/backend/internal/api/middleware"
	"yuva-vikas/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// 写操作限流：每 IP 每分钟 cfg.Engine.RateLimit 次
	writeLimit := middleware.RateLimit(rdb, cfg.Engine.RateLimit, time.Minute)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 只读路由无需操作员标识
		v1.GET("/targets", h.Target.ListTargets)
		v1.GET("/targets/:id", h.Target.GetTarget)
		v1.GET("/targets/:id/reassignments", h.Reassignment.ListTargetRecords)
		v1.GET("/employees", h.Employee.ListEmployees)
		v1.GET("/employees/:id", h.Employee.GetEmployee)
		v1.GET("/employees/:id/reassignments", h.Reassignment.ListEmployeeRecords)
		v1.GET("/employees/:id/departure-proposal", h.Reassignment.GetDepartureProposal)
		v1.GET("/audit", h.Audit.QueryAudit)

		// 写路由与期末扫描要求操作员标识（网关透传 X-Operator-ID）
		op := v1.Group("")
		op.Use(middleware.RequireOperator())
		{
			// 目标模块
			op.POST("/targets", writeLimit, h.Target.CreateTarget)
			op.POST("/targets/:id/progress", writeLimit, h.Target.RecordProgress)

			// 期末结转模块（扫描会完结 pending==0 的过期目标）
			op.GET("/carry-forward/queue", h.CarryForward.GetQueue)
			op.POST("/carry-forward/resolve", writeLimit, h.CarryForward.Resolve)

			// 转派模块
			op.POST("/reassignments", writeLimit, h.Reassignment.Reassign)
			op.POST("/employees/:id/departure-reassignments", writeLimit, h.Reassignment.HandleDeparture)

			// 员工目录模块
			op.POST("/employees", writeLimit, h.Employee.CreateEmployee)
			op.PUT("/employees/:id", writeLimit, h.Employee.UpdateEmployee)
			op.PUT("/employees/:id/depart", writeLimit, h.Employee.DepartEmployee)
		}
	}

	return r
}
