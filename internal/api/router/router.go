package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/viniuy/didasko-final-sub002/config"
	"github.com/viniuy/didasko-final-sub002/internal/api/handler"
	"github.com/viniuy/didasko-final-sub002/internal/api/middleware"
	"github.com/viniuy/didasko-final-sub002/internal/model"
	"github.com/viniuy/didasko-final-sub002/pkg/jwt"
	"github.com/viniuy/didasko-final-sub002/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 与 db 均可为 nil（测试或降级运行）
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(int64(cfg.Server.BodyLimitMB) << 20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "ok", "redis": rdb != nil}
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": false})
				return
			}
			status["database"] = true
		}
		c.JSON(http.StatusOK, status)
	})

	can := middleware.RequireCapability
	ownCourse, ownQuiz, ownConfig := h.Access.Course(), h.Access.Quiz(), h.Access.Config()

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login",
			middleware.RateLimit(rdb, cfg.Server.LoginLimit, cfg.Server.LoginWindowDuration(), logger),
			h.Auth.Login)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 账号管理
			users := authorized.Group("/users", can(model.CapUserManage))
			{
				users.POST("", h.User.CreateUser)
				users.GET("", h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
				users.PUT("/:id", h.User.UpdateUser)
				users.POST("/:id/reset-password", h.User.ResetPassword)
			}

			// 学生
			students := authorized.Group("/students")
			{
				students.GET("", can(model.CapCourseRead), h.Student.ListStudents)
				students.GET("/:id", can(model.CapCourseRead), h.Student.GetStudent)
				students.POST("", can(model.CapStudentManage), h.Student.CreateStudent)
				students.POST("/import", can(model.CapStudentManage), h.Student.ImportStudents)
				students.PUT("/:id", can(model.CapStudentManage), h.Student.UpdateStudent)
				students.DELETE("/:id", can(model.CapStudentManage), h.Student.DeleteStudent)
			}

			// 课程与选课
			courses := authorized.Group("/courses")
			{
				courses.GET("", can(model.CapCourseRead), h.Course.ListCourses)
				courses.GET("/slug/:slug", can(model.CapCourseRead), h.Course.GetCourseBySlug)
				courses.GET("/:id", can(model.CapCourseRead), ownCourse, h.Course.GetCourse)
				courses.POST("", can(model.CapCourseManage), h.Course.CreateCourse)
				courses.PUT("/:id", can(model.CapCourseManage), ownCourse, h.Course.UpdateCourse)
				courses.PUT("/:id/archive", can(model.CapCourseManage), ownCourse, h.Course.ArchiveCourse)
				courses.POST("/:id/schedules/import", can(model.CapCourseManage), ownCourse, h.Course.ImportSchedules)

				courses.GET("/:id/students", can(model.CapCourseRead), ownCourse, h.Course.ListStudents)
				courses.POST("/:id/students", can(model.CapStudentManage), ownCourse, h.Course.Enroll)
				courses.DELETE("/:id/students/:studentId", can(model.CapStudentManage), ownCourse, h.Course.Unenroll)

				// 分组
				courses.GET("/:id/groups", can(model.CapCourseRead), ownCourse, h.Group.ListGroups)
				courses.GET("/:id/groups/:groupId", can(model.CapCourseRead), ownCourse, h.Group.GetGroup)
				courses.POST("/:id/groups", can(model.CapStudentManage), ownCourse, h.Group.CreateGroup)
				courses.DELETE("/:id/groups/:groupId", can(model.CapStudentManage), ownCourse, h.Group.DeleteGroup)
				courses.POST("/:id/groups/:groupId/members", can(model.CapStudentManage), ownCourse, h.Group.AddMembers)
				courses.DELETE("/:id/groups/:groupId/members/:studentId", can(model.CapStudentManage), ownCourse, h.Group.RemoveMember)

				// 考勤
				courses.GET("/:id/attendance", can(model.CapAttendanceRead), ownCourse, h.Attendance.StatusOnDate)
				courses.GET("/:id/attendance/latest-date", can(model.CapAttendanceRead), ownCourse, h.Attendance.MostRecentDate)
				courses.GET("/:id/attendance/stats", can(model.CapAttendanceRead), ownCourse, h.Attendance.Stats)
				courses.GET("/:id/attendance/students", can(model.CapAttendanceRead), ownCourse, h.Attendance.StudentStatuses)
				courses.GET("/:id/attendance/students/:studentId/summary", can(model.CapAttendanceRead), ownCourse, h.Attendance.RangeSummary)
				courses.PUT("/:id/attendance", can(model.CapAttendanceWrite), ownCourse, h.Attendance.Record)
				courses.PUT("/:id/attendance/batch", can(model.CapAttendanceWrite), ownCourse, h.Attendance.RecordBatch)
				courses.POST("/:id/attendance/clear", can(model.CapAttendanceWrite), ownCourse, h.Attendance.Clear)

				// 评分方案
				courses.GET("/:id/grade-configs", can(model.CapGradeRead), ownCourse, h.GradeConfig.ListConfigs)
				courses.GET("/:id/grade-configs/current", can(model.CapGradeRead), ownCourse, h.GradeConfig.CurrentConfig)
				courses.POST("/:id/grade-configs", can(model.CapGradeConfigure), ownCourse, h.GradeConfig.CreateConfig)

				// 分项成绩与汇总
				courses.GET("/:id/scores/:studentId", can(model.CapGradeRead), ownCourse, h.Grade.LatestScore)
				courses.PUT("/:id/scores", can(model.CapGradeWrite), ownCourse, h.Grade.UpsertComponent)
				courses.PUT("/:id/scores/batch", can(model.CapGradeWrite), ownCourse, h.Grade.UpsertComponents)
				courses.GET("/:id/grades", can(model.CapGradeRead), ownCourse, h.Grade.CourseGrades)
				courses.GET("/:id/grades/:studentId", can(model.CapGradeRead), ownCourse, h.Grade.StudentGrade)
				courses.GET("/:id/rubric", can(model.CapGradeRead), ownCourse, h.Grade.CourseRubric)
				courses.GET("/:id/rubric/:studentId", can(model.CapGradeRead), ownCourse, h.Grade.StudentRubric)
				courses.PUT("/:id/rubric", can(model.CapGradeWrite), ownCourse, h.Grade.RecordRubricGrade)

				// 测验
				courses.GET("/:id/quizzes", can(model.CapGradeRead), ownCourse, h.Quiz.ListQuizzes)
				courses.POST("/:id/quizzes", can(model.CapQuizManage), ownCourse, h.Quiz.CreateQuiz)

				// 导出
				courses.GET("/:id/export/grades", can(model.CapReportExport), ownCourse, h.Export.ExportGrades)
				courses.GET("/:id/export/attendance", can(model.CapReportExport), ownCourse, h.Export.ExportAttendance)
			}

			gradeConfigs := authorized.Group("/grade-configs")
			{
				gradeConfigs.GET("/:configId", can(model.CapGradeRead), ownConfig, h.GradeConfig.GetConfig)
				gradeConfigs.PUT("/:configId", can(model.CapGradeConfigure), ownConfig, h.GradeConfig.UpdateConfig)
			}

			quizzes := authorized.Group("/quizzes")
			{
				quizzes.GET("/:quizId", can(model.CapGradeRead), ownQuiz, h.Quiz.GetQuiz)
				quizzes.PUT("/:quizId", can(model.CapQuizManage), ownQuiz, h.Quiz.UpdateQuiz)
				quizzes.DELETE("/:quizId", can(model.CapQuizManage), ownQuiz, h.Quiz.DeleteQuiz)
				quizzes.GET("/:quizId/scores", can(model.CapGradeRead), ownQuiz, h.Quiz.ListScores)
				quizzes.PUT("/:quizId/scores", can(model.CapQuizManage), ownQuiz, h.Quiz.SaveScores)
				quizzes.GET("/:quizId/eligibility", can(model.CapGradeRead), ownQuiz, h.Quiz.Eligibility)
			}
		}
	}

	return r
}
