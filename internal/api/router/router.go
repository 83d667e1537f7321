package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/config"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/api/handler"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/api/middleware"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/model"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/jwt"
)

// Options 路由可选依赖；nil 字段表示对应能力降级
type Options struct {
	// Blacklist Token 黑名单（Redis 不可用时为 nil）
	Blacklist middleware.TokenChecker
	// Limiter 上传限流器（Redis 不可用时为 nil）
	Limiter middleware.RateLimiter
	// UploadDir 本地存储目录，非空时以 /uploads 提供静态访问
	UploadDir string
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, opts Options, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes, cfg.Storage.MaxUploadBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── 本地录音文件 ──
	if opts.UploadDir != "" {
		r.Static(cfg.Storage.PublicBaseURL, opts.UploadDir)
	}

	parentOnly := middleware.RoleAuth(model.RoleParent)
	staffOnly := middleware.RoleAuth(model.RoleTeacher, model.RoleAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/parents/register", h.Auth.RegisterParent)
			auth.POST("/parents/login", h.Auth.LoginParent)
			auth.POST("/teachers/register", h.Auth.RegisterTeacher)
			auth.POST("/teachers/login", h.Auth.LoginTeacher)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, opts.Blacklist))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// 孩子模块（家长）
			children := authorized.Group("/children", parentOnly)
			{
				children.POST("", h.Child.CreateChild)
				children.GET("", h.Child.ListChildren)
				children.GET("/:id/homework", h.Child.GetAssignedHomework)
			}

			// 师生关系
			authorized.POST("/teachers/students", parentOnly, h.Student.RequestTeacher)
			students := authorized.Group("/students", staffOnly)
			{
				students.GET("", h.Student.ListStudents)
				students.GET("/pending", h.Student.ListPending)
				students.POST("/approve", h.Student.ApproveStudent)
				students.GET("/:id/progress", h.Metrics.StudentProgress)
			}

			// 作业模块
			homework := authorized.Group("/homework")
			{
				homework.POST("", staffOnly, h.Homework.CreateHomework)
				homework.GET("", staffOnly, h.Homework.ListHomework)
				homework.GET("/:id", h.Homework.GetHomework)
				homework.PUT("/:id", staffOnly, h.Homework.UpdateHomework)
				homework.DELETE("/:id", staffOnly, h.Homework.DeleteHomework)

				// 提交流程（家长）
				homework.GET("/:id/start", parentOnly, h.Homework.StartHomework)
				homework.POST("/:id/word/:wordId/upload",
					parentOnly,
					middleware.RateLimit(opts.Limiter, cfg.Feature.UploadRateLimit, cfg.Feature.UploadRateWindow),
					h.Submission.UploadRecording,
				)
				homework.POST("/:id/submit", parentOnly, h.Submission.SubmitHomework)

				// 提交查看与统计（教师看全部，家长看自己的）
				homework.GET("/:id/submissions", h.Submission.ListSubmissions)
				homework.GET("/:id/metrics", h.Metrics.HomeworkMetrics)
				homework.GET("/:id/export", staffOnly, h.Export.ExportHomework)
			}

			// 评分模块
			submission := authorized.Group("/submission")
			{
				submission.POST("/:id/feedback", staffOnly, h.Feedback.ProvideFeedback)
				submission.GET("/:id/feedback", h.Feedback.ListFeedback)
			}
		}
	}

	return r
}
