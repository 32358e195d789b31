package service

import (
	"go.uber.org/zap"

	"github.com/viniuy/didasko-final-sub002/config"
	"github.com/viniuy/didasko-final-sub002/internal/repository"
	"github.com/viniuy/didasko-final-sub002/pkg/jwt"
	"github.com/viniuy/didasko-final-sub002/pkg/logger"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth        AuthService
	User        UserService
	Student     StudentService
	Course      CourseService
	Group       GroupService
	Attendance  AttendanceService
	GradeConfig GradeConfigService
	GradeScore  GradeScoreService
	Grading     GradingService
	Quiz        QuizService
	Export      ExportService
	Access      CourseAccessService
}

// NewService 创建 Service 聚合
// blacklist 可为 nil（未配置 Redis 时登出退化为无操作）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	log *zap.Logger,
) *Service {
	gradeConfig := NewGradeConfigService(repo, &cfg.Grading, logger.Module(log, "grade_config"))
	grading := NewGradingService(repo, gradeConfig, &cfg.Grading, logger.Module(log, "grading"))
	attendance := NewAttendanceService(repo, logger.Module(log, "attendance"))

	return &Service{
		Auth:        NewAuthService(cfg, repo, jwtMgr, blacklist, logger.Module(log, "auth")),
		User:        NewUserService(repo, logger.Module(log, "user")),
		Student:     NewStudentService(repo, logger.Module(log, "student")),
		Course:      NewCourseService(repo, logger.Module(log, "course")),
		Group:       NewGroupService(repo, logger.Module(log, "group")),
		Attendance:  attendance,
		GradeConfig: gradeConfig,
		GradeScore:  NewGradeScoreService(repo, gradeConfig, logger.Module(log, "grade_score")),
		Grading:     grading,
		Quiz:        NewQuizService(repo, logger.Module(log, "quiz")),
		Export:      NewExportService(repo, grading, logger.Module(log, "export")),
		Access:      NewCourseAccessService(repo, logger.Module(log, "access")),
	}
}
