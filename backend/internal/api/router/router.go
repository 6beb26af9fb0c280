package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/raghava-0650/Attendeese/backend/config"
	"github.com/raghava-0650/Attendeese/backend/internal/api/handler"
	"github.com/raghava-0650/Attendeese/backend/internal/api/middleware"
	"github.com/raghava-0650/Attendeese/backend/pkg/identity"
	"github.com/raghava-0650/Attendeese/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时不限流
func Setup(cfg *config.Config, h *handler.Handler, verifier identity.Verifier, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.Auth(verifier))
	v1.Use(middleware.RateLimit(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window, logger))
	{
		// 科目模块
		subjects := v1.Group("/subjects")
		{
			subjects.POST("", h.Subject.CreateSubject)
			subjects.GET("", h.Subject.ListSubjects)
			subjects.GET("/summary", h.Subject.GetSummary)
			subjects.GET("/:id", h.Subject.GetSubject)
			subjects.PATCH("/:id", h.Subject.UpdateSubject)
			subjects.DELETE("/:id", h.Subject.DeleteSubject)
			subjects.POST("/:id/attendance", h.Subject.RecordAttendance)
		}

		// 周课表模块
		timetable := v1.Group("/timetable")
		{
			timetable.GET("", h.Timetable.GetTimetable)
			timetable.PUT("", h.Timetable.ReplaceTimetable)
			timetable.POST("", h.Timetable.ReplaceTimetable)
			timetable.POST("/days/:day/subjects", h.Timetable.AddDaySubject)
			timetable.DELETE("/days/:day/subjects", h.Timetable.RemoveDaySubject)
			timetable.GET("/reconcile", h.Timetable.GetReconcileReport)
			timetable.POST("/reconcile", h.Timetable.PruneOrphans)
		}

		// 导出模块
		export := v1.Group("/export")
		{
			export.GET("/attendance", h.Export.ExportAttendance)
		}
	}

	return r
}
