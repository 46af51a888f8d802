package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trainer-lms/config"
	"trainer-lms/internal/api/handler"
	"trainer-lms/internal/api/middleware"
	"trainer-lms/pkg/jwt"
	"trainer-lms/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时注销检查与登录限流自动降级
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	if cfg.Server.Mode == gin.DebugMode {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// 避免把 nil 的 *redis.Client 装进接口
	var (
		blacklist middleware.TokenChecker
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login",
			middleware.RateLimit(limiter, cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window),
			h.Auth.Login,
		)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 课程模块（细粒度权限在 Service 层校验）
			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Course.ListCourses)
				courses.POST("", middleware.RoleAuth("admin", "trainer"), h.Course.CreateCourse)
				courses.GET("/:id", h.Course.GetCourse)
				courses.PUT("/:id", middleware.RoleAuth("admin", "trainer"), h.Course.UpdateCourse)
				courses.POST("/:id/publish", middleware.RoleAuth("admin", "trainer"), h.Course.PublishCourse)
				courses.POST("/:id/duplicate", middleware.RoleAuth("admin", "trainer"), h.Course.DuplicateCourse)

				courses.GET("/:id/units", h.Unit.ListUnits)

				courses.GET("/:id/sequence", h.Sequence.ListRules)
				courses.PUT("/:id/sequence", middleware.RoleAuth("admin", "trainer"), h.Sequence.ReplaceRules)
				courses.GET("/:id/availability", h.Sequence.Availability)

				courses.POST("/:id/assign", middleware.RoleAuth("admin", "trainer"), h.Enrollment.Assign)
				courses.GET("/:id/enrollments", middleware.RoleAuth("admin", "trainer", "manager"), h.Enrollment.ListByCourse)
				courses.GET("/:id/assignable-learners", middleware.RoleAuth("admin", "trainer"), h.Enrollment.AssignableLearners)
				courses.GET("/:id/enrollment-stats", middleware.RoleAuth("admin", "trainer", "manager"), h.Enrollment.Stats)

				courses.GET("/:id/leaderboard", h.Progress.Leaderboard)

				courses.GET("/:id/report", middleware.RoleAuth("admin", "trainer", "manager"), h.Report.CourseReport)
				courses.GET("/:id/report/export", middleware.RoleAuth("admin", "trainer", "manager"), h.Report.ExportCourseReport)
			}

			// 单元模块
			units := authorized.Group("/units")
			{
				units.POST("", middleware.RoleAuth("admin", "trainer"), h.Unit.CreateUnit)
				units.GET("/:id", h.Unit.GetUnit)
				units.PUT("/:id", middleware.RoleAuth("admin", "trainer"), h.Unit.UpdateUnit)
				units.DELETE("/:id", middleware.RoleAuth("admin", "trainer"), h.Unit.DeleteUnit)
				units.PUT("/:id/content", middleware.RoleAuth("admin", "trainer"), h.Unit.SaveContent)
				units.PUT("/:id/quiz", middleware.RoleAuth("admin", "trainer"), h.Unit.SaveQuiz)
				units.POST("/:id/quiz/questions", middleware.RoleAuth("admin", "trainer"), h.Unit.AddQuestions)

				units.POST("/:id/progress", h.Progress.RecordProgress)
				units.POST("/:id/quiz/attempts", h.Progress.SubmitQuiz)
				units.POST("/:id/submissions", h.Progress.SubmitAssignment)
			}

			authorized.PUT("/submissions/:id/grade", middleware.RoleAuth("admin", "trainer"), h.Progress.GradeSubmission)

			// 选课模块
			enrollments := authorized.Group("/enrollments")
			{
				enrollments.GET("/me", h.Enrollment.ListMine)
				enrollments.GET("/:id/progress", h.Progress.EnrollmentProgress)
				enrollments.POST("/bulk", middleware.RoleAuth("admin", "trainer"), h.Enrollment.BulkEnroll)
			}

			// 团队模块
			teams := authorized.Group("/teams")
			{
				teams.GET("", h.Team.ListTeams)
				teams.POST("", middleware.RoleAuth("admin", "trainer", "manager"), h.Team.CreateTeam)
				teams.GET("/:id/members", h.Team.ListMembers)
				teams.POST("/:id/members", middleware.RoleAuth("admin", "trainer", "manager"), h.Team.AddMembers)
			}
		}
	}

	return r
}
