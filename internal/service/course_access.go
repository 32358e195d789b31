package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/viniuy/didasko-final-sub002/internal/model"
	"github.com/viniuy/didasko-final-sub002/internal/repository"
)

var ErrCourseForbidden = errors.New("无权操作该课程")

// CourseAccessService 课程归属校验：教师只能操作自己任教的课程，
// 其余角色的范围由能力表决定
type CourseAccessService interface {
	CheckCourse(ctx context.Context, courseID, userID, role string) error
	CheckQuiz(ctx context.Context, quizID, userID, role string) error
	CheckConfig(ctx context.Context, configID, userID, role string) error
}

type courseAccessService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseAccessService 创建 CourseAccessService 实例
func NewCourseAccessService(repo *repository.Repository, logger *zap.Logger) CourseAccessService {
	return &courseAccessService{repo: repo, logger: logger}
}

func (s *courseAccessService) CheckCourse(ctx context.Context, courseID, userID, role string) error {
	if role != model.RoleFaculty {
		return nil
	}
	course, err := loadCourse(ctx, s.repo, s.logger, courseID)
	if err != nil {
		return err
	}
	return s.owns(course, userID)
}

func (s *courseAccessService) CheckQuiz(ctx context.Context, quizID, userID, role string) error {
	if role != model.RoleFaculty {
		return nil
	}
	quiz, err := s.repo.Quiz.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuizNotFound
		}
		s.logger.Error("查询测验失败", zap.String("quiz_id", quizID), zap.Error(err))
		return err
	}
	return s.CheckCourse(ctx, quiz.CourseID, userID, role)
}

func (s *courseAccessService) CheckConfig(ctx context.Context, configID, userID, role string) error {
	if role != model.RoleFaculty {
		return nil
	}
	cfg, err := s.repo.GradeConfig.GetByID(ctx, configID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGradeConfigNotFound
		}
		s.logger.Error("查询评分方案失败", zap.String("config_id", configID), zap.Error(err))
		return err
	}
	return s.CheckCourse(ctx, cfg.CourseID, userID, role)
}

func (s *courseAccessService) owns(course *model.Course, userID string) error {
	if course.FacultyID == nil || *course.FacultyID != userID {
		s.logger.Warn("教师越权访问课程",
			zap.String("course_id", course.CourseID), zap.String("user_id", userID))
		return ErrCourseForbidden
	}
	return nil
}
