package service

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/viniuy/didasko-final-sub002/internal/dto"
	"github.com/viniuy/didasko-final-sub002/internal/model"
	"github.com/viniuy/didasko-final-sub002/internal/repository"
	pkgerrors "github.com/viniuy/didasko-final-sub002/pkg/errors"
	"github.com/viniuy/didasko-final-sub002/pkg/slug"
)

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound    = errors.New("课程不存在")
	ErrCourseSlugExists  = errors.New("相同课程代码与班级的课程已存在")
	ErrCourseInactive    = errors.New("课程已归档")
	ErrFacultyNotFound   = errors.New("任课教师不存在")
	ErrScheduleInvalid   = errors.New("上课时间无效，结束时间必须晚于开始时间")
	ErrAlreadyEnrolled   = errors.New("学生已选该课程")
	ErrNotEnrolled       = errors.New("学生未选该课程")
	ErrDuplicateStudents = errors.New("学生列表中存在重复项")
)

// CourseService 课程与选课业务接口
type CourseService interface {
	Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CourseResponse, error)
	GetBySlug(ctx context.Context, slug string) (*dto.CourseResponse, error)
	List(ctx context.Context, req *dto.CourseListRequest, facultyID string) ([]dto.CourseResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID string) (*dto.CourseResponse, error)
	Archive(ctx context.Context, id string, callerID string) error
	// ImportSchedules 以日历文件中的每周时段整体替换课程上课时间
	ImportSchedules(ctx context.Context, id string, calendar io.Reader, match string, callerID string) (*dto.CourseResponse, error)

	Enroll(ctx context.Context, courseID string, req *dto.EnrollRequest) error
	Unenroll(ctx context.Context, courseID, studentID string) error
	ListStudents(ctx context.Context, courseID string) ([]dto.StudentResponse, error)
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	schedules, err := buildSchedules(req.Schedules)
	if err != nil {
		return nil, err
	}

	courseSlug := slug.Make(req.Code, req.Section)
	if _, err := s.repo.Course.GetBySlug(ctx, courseSlug); err == nil {
		return nil, ErrCourseSlugExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询课程 slug 失败", zap.String("slug", courseSlug), zap.Error(err))
		return nil, err
	}

	course := &model.Course{
		Code:      req.Code,
		Title:     req.Title,
		Section:   req.Section,
		Slug:      courseSlug,
		Semester:  req.Semester,
		Room:      req.Room,
		Status:    model.CourseStatusActive,
		Schedules: schedules,
	}
	if req.FacultyID != "" {
		if err := s.checkFaculty(ctx, req.FacultyID); err != nil {
			return nil, err
		}
		course.FacultyID = &req.FacultyID
	}
	course.Audit(callerID)

	if err := s.repo.Course.Create(ctx, course); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrCourseSlugExists
		}
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}

	return toCourseResponse(course), nil
}

// ────────────────────── Get ──────────────────────

func (s *courseService) GetByID(ctx context.Context, id string) (*dto.CourseResponse, error) {
	course, err := loadCourse(ctx, s.repo, s.logger, id)
	if err != nil {
		return nil, err
	}
	return toCourseResponse(course), nil
}

func (s *courseService) GetBySlug(ctx context.Context, courseSlug string) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetBySlug(ctx, courseSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("slug", courseSlug), zap.Error(err))
		return nil, err
	}
	return toCourseResponse(course), nil
}

// ────────────────────── List ──────────────────────

// List facultyID 非空时只返回该教师的课程
func (s *courseService) List(ctx context.Context, req *dto.CourseListRequest, facultyID string) ([]dto.CourseResponse, int64, error) {
	filter := repository.CourseFilter{
		Status:    req.Status,
		Semester:  req.Semester,
		FacultyID: facultyID,
	}
	courses, total, err := s.repo.Course.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, *toCourseResponse(&courses[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *courseService) Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	course, err := loadCourse(ctx, s.repo, s.logger, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Room != nil {
		course.Room = *req.Room
	}
	if req.Status != nil {
		course.Status = *req.Status
	}
	if req.FacultyID != nil {
		if err := s.checkFaculty(ctx, *req.FacultyID); err != nil {
			return nil, err
		}
		course.FacultyID = req.FacultyID
	}
	course.AuditUpdate(callerID)

	if err := s.repo.Course.Update(ctx, course); err != nil {
		s.logger.Error("更新课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Schedules != nil {
		schedules, err := buildSchedules(*req.Schedules)
		if err != nil {
			return nil, err
		}
		for i := range schedules {
			schedules[i].CourseID = id
		}
		if err := s.repo.Course.ReplaceSchedules(ctx, id, schedules); err != nil {
			s.logger.Error("更新上课时间失败", zap.String("id", id), zap.Error(err))
			return nil, err
		}
		course.Schedules = schedules
	}

	return toCourseResponse(course), nil
}

// ────────────────────── ImportSchedules ──────────────────────

func (s *courseService) ImportSchedules(ctx context.Context, id string, calendar io.Reader, match string, callerID string) (*dto.CourseResponse, error) {
	course, err := loadCourse(ctx, s.repo, s.logger, id)
	if err != nil {
		return nil, err
	}

	schedules, err := ParseScheduleICS(calendar, match)
	if err != nil {
		return nil, err
	}
	for i := range schedules {
		schedules[i].CourseID = id
	}

	if err := s.repo.Course.ReplaceSchedules(ctx, id, schedules); err != nil {
		s.logger.Error("导入上课时间失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("已从日历导入上课时间",
		zap.String("course_id", id),
		zap.Int("slots", len(schedules)),
		zap.String("operator", callerID),
	)
	course.Schedules = schedules
	return toCourseResponse(course), nil
}

// ────────────────────── Archive ──────────────────────

func (s *courseService) Archive(ctx context.Context, id string, callerID string) error {
	course, err := loadCourse(ctx, s.repo, s.logger, id)
	if err != nil {
		return err
	}
	if course.Status == model.CourseStatusInactive {
		return nil
	}

	course.Status = model.CourseStatusInactive
	course.AuditUpdate(callerID)
	if err := s.repo.Course.Update(ctx, course); err != nil {
		s.logger.Error("归档课程失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Enroll ──────────────────────

func (s *courseService) Enroll(ctx context.Context, courseID string, req *dto.EnrollRequest) error {
	if _, err := loadActiveCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(req.StudentIDs))
	for _, id := range req.StudentIDs {
		if _, dup := seen[id]; dup {
			return ErrDuplicateStudents
		}
		seen[id] = struct{}{}
	}

	students, err := s.repo.Student.ListByIDs(ctx, req.StudentIDs)
	if err != nil {
		s.logger.Error("查询学生失败", zap.Error(err))
		return err
	}
	if len(students) != len(req.StudentIDs) {
		return ErrStudentNotFound
	}

	// 显式预检查：任一学生已选课则整体拒绝
	existing, err := s.repo.Enrollment.FilterEnrolled(ctx, courseID, req.StudentIDs)
	if err != nil {
		s.logger.Error("查询选课关系失败", zap.String("course_id", courseID), zap.Error(err))
		return err
	}
	if len(existing) > 0 {
		return ErrAlreadyEnrolled
	}

	now := time.Now().UTC()
	enrollments := make([]model.Enrollment, 0, len(req.StudentIDs))
	for _, id := range req.StudentIDs {
		enrollments = append(enrollments, model.Enrollment{CourseID: courseID, StudentID: id, EnrolledAt: now})
	}

	if err := s.repo.Enrollment.BatchCreate(ctx, enrollments); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return ErrAlreadyEnrolled
		}
		s.logger.Error("写入选课关系失败", zap.String("course_id", courseID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Unenroll ──────────────────────

func (s *courseService) Unenroll(ctx context.Context, courseID, studentID string) error {
	if _, err := loadActiveCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return err
	}
	if err := s.repo.Enrollment.Delete(ctx, courseID, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotEnrolled
		}
		s.logger.Error("退选失败", zap.String("course_id", courseID), zap.String("student_id", studentID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ListStudents ──────────────────────

func (s *courseService) ListStudents(ctx context.Context, courseID string) ([]dto.StudentResponse, error) {
	if _, err := loadCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return nil, err
	}
	students, err := s.repo.Enrollment.ListStudents(ctx, courseID)
	if err != nil {
		s.logger.Error("查询选课学生失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, *toStudentResponse(&students[i]))
	}
	return result, nil
}

// ── 内部辅助方法 ──

func (s *courseService) checkFaculty(ctx context.Context, userID string) error {
	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFacultyNotFound
		}
		s.logger.Error("查询教师失败", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

// loadActiveCourse 同 loadCourse，已归档课程返回 ErrCourseInactive（写操作使用）
func loadActiveCourse(ctx context.Context, repo *repository.Repository, logger *zap.Logger, courseID string) (*model.Course, error) {
	course, err := loadCourse(ctx, repo, logger, courseID)
	if err != nil {
		return nil, err
	}
	if course.Status == model.CourseStatusInactive {
		return nil, ErrCourseInactive
	}
	return course, nil
}

// loadCourse 按 ID 加载课程，不存在时返回 ErrCourseNotFound（各业务模块共用）
func loadCourse(ctx context.Context, repo *repository.Repository, logger *zap.Logger, courseID string) (*model.Course, error) {
	course, err := repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		logger.Error("查询课程失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	return course, nil
}

func buildSchedules(reqs []dto.ScheduleRequest) ([]model.CourseSchedule, error) {
	schedules := make([]model.CourseSchedule, 0, len(reqs))
	for _, r := range reqs {
		start, err := time.Parse("15:04", r.StartTime)
		if err != nil {
			return nil, ErrScheduleInvalid
		}
		end, err := time.Parse("15:04", r.EndTime)
		if err != nil {
			return nil, ErrScheduleInvalid
		}
		if !end.After(start) {
			return nil, ErrScheduleInvalid
		}
		schedules = append(schedules, model.CourseSchedule{
			DayOfWeek: r.DayOfWeek,
			StartTime: r.StartTime,
			EndTime:   r.EndTime,
		})
	}
	return schedules, nil
}

func toCourseResponse(c *model.Course) *dto.CourseResponse {
	resp := &dto.CourseResponse{
		ID:        c.CourseID,
		Code:      c.Code,
		Title:     c.Title,
		Section:   c.Section,
		Slug:      c.Slug,
		Semester:  c.Semester,
		Room:      c.Room,
		Status:    c.Status,
		Schedules: make([]dto.ScheduleResponse, 0, len(c.Schedules)),
		CreatedAt: c.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if c.FacultyID != nil {
		resp.FacultyID = *c.FacultyID
	}
	for _, sch := range c.Schedules {
		resp.Schedules = append(resp.Schedules, dto.ScheduleResponse{
			DayOfWeek: sch.DayOfWeek,
			StartTime: trimSeconds(sch.StartTime),
			EndTime:   trimSeconds(sch.EndTime),
		})
	}
	return resp
}

// trimSeconds PostgreSQL time 列读回为 "08:00:00"，统一输出 "08:00"
func trimSeconds(t string) string {
	if len(t) == len("15:04:05") {
		return t[:5]
	}
	return t
}
