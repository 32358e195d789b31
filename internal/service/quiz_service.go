package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/viniuy/didasko-final-sub002/internal/dto"
	"github.com/viniuy/didasko-final-sub002/internal/model"
	"github.com/viniuy/didasko-final-sub002/internal/repository"
	"github.com/viniuy/didasko-final-sub002/pkg/dateutil"
)

// ── 测验模块业务错误 ──

var (
	ErrQuizNotFound       = errors.New("测验不存在")
	ErrQuizDateInvalid    = errors.New("日期格式无效，应为 YYYY-MM-DD")
	ErrQuizRangeInvalid   = errors.New("考勤统计区间结束日期不能早于开始日期")
	ErrQuizMaxScore       = errors.New("满分必须大于 0")
	ErrQuizMaxBelowScores = errors.New("满分不能低于已录入的成绩")
	ErrQuizPassingRate    = errors.New("及格率必须在 0-100 之间")
	ErrQuizBatchInvalid   = errors.New("测验成绩校验失败，未写入任何数据")
)

// BatchValidationError 批量保存预校验失败，携带逐行原因
type BatchValidationError struct {
	Issues []string
}

func (e *BatchValidationError) Error() string {
	return ErrQuizBatchInvalid.Error() + ": " + strings.Join(e.Issues, "; ")
}

func (e *BatchValidationError) Unwrap() error { return ErrQuizBatchInvalid }

// QuizService 测验业务接口
type QuizService interface {
	Create(ctx context.Context, courseID string, req *dto.CreateQuizRequest, callerID string) (*dto.QuizResponse, error)
	Get(ctx context.Context, quizID string) (*dto.QuizResponse, error)
	List(ctx context.Context, courseID string) ([]dto.QuizResponse, error)
	Update(ctx context.Context, quizID string, req *dto.UpdateQuizRequest, callerID string) (*dto.QuizResponse, error)
	Delete(ctx context.Context, quizID string) error

	// SaveAll 全量预校验后单事务写入，任一行不合法则整体拒绝
	SaveAll(ctx context.Context, quizID string, req *dto.SaveQuizScoresRequest, callerID string) (*dto.SaveQuizScoresResponse, error)
	ListScores(ctx context.Context, quizID string) ([]dto.QuizScoreResponse, error)
	// Eligibility 考勤统计区间内有到课或迟到记录的学生可获得加分
	Eligibility(ctx context.Context, quizID string) ([]dto.QuizEligibilityResponse, error)
}

type quizService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewQuizService 创建 QuizService 实例
func NewQuizService(repo *repository.Repository, logger *zap.Logger) QuizService {
	return &quizService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *quizService) Create(ctx context.Context, courseID string, req *dto.CreateQuizRequest, callerID string) (*dto.QuizResponse, error) {
	quiz := &model.Quiz{
		CourseID:    courseID,
		Name:        req.Name,
		MaxScore:    req.MaxScore,
		PassingRate: req.PassingRate,
	}
	var err error
	if quiz.QuizDate, err = dateutil.Parse(req.QuizDate); err != nil {
		return nil, ErrQuizDateInvalid
	}
	if quiz.AttendanceRangeStart, err = dateutil.Parse(req.AttendanceRangeStart); err != nil {
		return nil, ErrQuizDateInvalid
	}
	if quiz.AttendanceRangeEnd, err = dateutil.Parse(req.AttendanceRangeEnd); err != nil {
		return nil, ErrQuizDateInvalid
	}
	if err := validateQuiz(quiz); err != nil {
		return nil, err
	}
	if _, err := loadActiveCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return nil, err
	}
	quiz.Audit(callerID)

	if err := s.repo.Quiz.Create(ctx, quiz); err != nil {
		s.logger.Error("创建测验失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	return toQuizResponse(quiz), nil
}

// ────────────────────── Get / List ──────────────────────

func (s *quizService) Get(ctx context.Context, quizID string) (*dto.QuizResponse, error) {
	quiz, err := s.load(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return toQuizResponse(quiz), nil
}

func (s *quizService) List(ctx context.Context, courseID string) ([]dto.QuizResponse, error) {
	if _, err := loadCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return nil, err
	}
	quizzes, err := s.repo.Quiz.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("查询测验列表失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.QuizResponse, 0, len(quizzes))
	for i := range quizzes {
		result = append(result, *toQuizResponse(&quizzes[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *quizService) Update(ctx context.Context, quizID string, req *dto.UpdateQuizRequest, callerID string) (*dto.QuizResponse, error) {
	quiz, err := s.loadWritable(ctx, quizID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		quiz.Name = *req.Name
	}
	dates := []struct {
		src *string
		dst *time.Time
	}{
		{req.QuizDate, &quiz.QuizDate},
		{req.AttendanceRangeStart, &quiz.AttendanceRangeStart},
		{req.AttendanceRangeEnd, &quiz.AttendanceRangeEnd},
	}
	for _, d := range dates {
		if d.src == nil {
			continue
		}
		v, err := dateutil.Parse(*d.src)
		if err != nil {
			return nil, ErrQuizDateInvalid
		}
		*d.dst = v
	}
	if req.MaxScore != nil {
		quiz.MaxScore = *req.MaxScore
	}
	if req.PassingRate != nil {
		quiz.PassingRate = *req.PassingRate
	}
	if err := validateQuiz(quiz); err != nil {
		return nil, err
	}
	if req.MaxScore != nil {
		if err := s.checkStoredScores(ctx, quizID, quiz.MaxScore); err != nil {
			return nil, err
		}
	}
	quiz.AuditUpdate(callerID)

	if err := s.repo.Quiz.Update(ctx, quiz); err != nil {
		s.logger.Error("更新测验失败", zap.String("quiz_id", quizID), zap.Error(err))
		return nil, err
	}
	return toQuizResponse(quiz), nil
}

// ────────────────────── Delete ──────────────────────

func (s *quizService) Delete(ctx context.Context, quizID string) error {
	if _, err := s.loadWritable(ctx, quizID); err != nil {
		return err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.QuizScore.DeleteByQuiz(ctx, quizID); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("删除测验成绩失败", zap.String("quiz_id", quizID), zap.Error(err))
		return err
	}
	if err := txRepo.Quiz.Delete(ctx, quizID); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("删除测验失败", zap.String("quiz_id", quizID), zap.Error(err))
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}
	return nil
}

// ────────────────────── SaveAll ──────────────────────

func (s *quizService) SaveAll(ctx context.Context, quizID string, req *dto.SaveQuizScoresRequest, callerID string) (*dto.SaveQuizScoresResponse, error) {
	quiz, err := s.loadWritable(ctx, quizID)
	if err != nil {
		return nil, err
	}

	// 第一阶段：逐行预校验（不接触数据库写操作）
	var issues []string
	seen := make(map[string]int, len(req.Scores))
	ids := make([]string, 0, len(req.Scores))
	for i, e := range req.Scores {
		row := i + 1
		if e.StudentID == "" {
			issues = append(issues, fmt.Sprintf("第 %d 行缺少 student_id", row))
		} else if first, dup := seen[e.StudentID]; dup {
			issues = append(issues, fmt.Sprintf("第 %d 行学生与第 %d 行重复", row, first))
		} else {
			seen[e.StudentID] = row
			ids = append(ids, e.StudentID)
		}
		if e.Score == nil {
			issues = append(issues, fmt.Sprintf("第 %d 行缺少 score", row))
		} else if *e.Score < 0 || *e.Score > quiz.MaxScore {
			issues = append(issues, fmt.Sprintf("第 %d 行 score 超出 0-%.2f", row, quiz.MaxScore))
		}
		if e.Attendance == "" {
			issues = append(issues, fmt.Sprintf("第 %d 行缺少 attendance", row))
		} else if !model.ValidQuizAttendance(model.AttendanceStatus(e.Attendance)) {
			issues = append(issues, fmt.Sprintf("第 %d 行 attendance 无效: %s", row, e.Attendance))
		}
		if e.PlusPoints < 0 {
			issues = append(issues, fmt.Sprintf("第 %d 行 plus_points 不能为负", row))
		}
		if e.TotalGrade == nil {
			issues = append(issues, fmt.Sprintf("第 %d 行缺少 total_grade", row))
		} else if *e.TotalGrade < 0 {
			issues = append(issues, fmt.Sprintf("第 %d 行 total_grade 不能为负", row))
		}
	}

	if len(ids) > 0 {
		enrolled, err := s.repo.Enrollment.FilterEnrolled(ctx, quiz.CourseID, ids)
		if err != nil {
			s.logger.Error("查询选课关系失败", zap.String("course_id", quiz.CourseID), zap.Error(err))
			return nil, err
		}
		set := make(map[string]struct{}, len(enrolled))
		for _, id := range enrolled {
			set[id] = struct{}{}
		}
		for _, id := range ids {
			if _, ok := set[id]; !ok {
				issues = append(issues, fmt.Sprintf("第 %d 行学生未选该课程", seen[id]))
			}
		}
	}

	if len(issues) > 0 {
		return nil, &BatchValidationError{Issues: issues}
	}

	// 第二阶段：单事务逐行 upsert
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)
	for i, e := range req.Scores {
		score := &model.QuizScore{
			QuizID:     quizID,
			StudentID:  e.StudentID,
			Score:      *e.Score,
			Attendance: model.AttendanceStatus(e.Attendance),
			PlusPoints: e.PlusPoints,
			TotalGrade: *e.TotalGrade,
		}
		score.Audit(callerID)

		if err := txRepo.QuizScore.Upsert(ctx, score); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("保存测验成绩失败，事务回滚",
				zap.String("quiz_id", quizID), zap.Int("row", i+1), zap.Error(err))
			return nil, fmt.Errorf("第 %d 行写入失败，已回滚全部成绩: %w", i+1, err)
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	return &dto.SaveQuizScoresResponse{QuizID: quizID, Saved: len(req.Scores)}, nil
}

// ────────────────────── ListScores ──────────────────────

func (s *quizService) ListScores(ctx context.Context, quizID string) ([]dto.QuizScoreResponse, error) {
	quiz, err := s.load(ctx, quizID)
	if err != nil {
		return nil, err
	}
	scores, err := s.repo.QuizScore.ListByQuiz(ctx, quizID)
	if err != nil {
		s.logger.Error("查询测验成绩失败", zap.String("quiz_id", quizID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.QuizScoreResponse, 0, len(scores))
	for _, sc := range scores {
		result = append(result, dto.QuizScoreResponse{
			StudentID:  sc.StudentID,
			Score:      round2(sc.Score),
			Attendance: string(sc.Attendance),
			PlusPoints: round2(sc.PlusPoints),
			TotalGrade: round2(sc.TotalGrade),
			Remarks:    remarks(sc.TotalGrade, quiz.PassingRate),
		})
	}
	return result, nil
}

// ────────────────────── Eligibility ──────────────────────

func (s *quizService) Eligibility(ctx context.Context, quizID string) ([]dto.QuizEligibilityResponse, error) {
	quiz, err := s.load(ctx, quizID)
	if err != nil {
		return nil, err
	}
	students, err := s.repo.Enrollment.ListStudents(ctx, quiz.CourseID)
	if err != nil {
		s.logger.Error("查询选课学生失败", zap.String("course_id", quiz.CourseID), zap.Error(err))
		return nil, err
	}
	records, err := s.repo.Attendance.ListRange(ctx, quiz.CourseID, "",
		dateutil.Day(quiz.AttendanceRangeStart), dateutil.Day(quiz.AttendanceRangeEnd))
	if err != nil {
		s.logger.Error("查询区间考勤失败", zap.String("quiz_id", quizID), zap.Error(err))
		return nil, err
	}

	byStudent := make(map[string][]model.AttendanceRecord)
	for _, r := range records {
		byStudent[r.StudentID] = append(byStudent[r.StudentID], r)
	}

	result := make([]dto.QuizEligibilityResponse, 0, len(students))
	for i := range students {
		st := &students[i]
		t := tallyAttendance(byStudent[st.StudentID])
		result = append(result, dto.QuizEligibilityResponse{
			StudentID:     st.StudentID,
			StudentNumber: st.StudentNumber,
			Name:          st.FullName(),
			Present:       t.Present,
			Late:          t.Late,
			Absent:        t.Absent,
			Excused:       t.Excused,
			Eligible:      t.Attended() > 0,
		})
	}
	return result, nil
}

// ── 内部辅助方法 ──

func (s *quizService) load(ctx context.Context, quizID string) (*model.Quiz, error) {
	quiz, err := s.repo.Quiz.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		s.logger.Error("查询测验失败", zap.String("quiz_id", quizID), zap.Error(err))
		return nil, err
	}
	return quiz, nil
}

// checkStoredScores 已录入成绩不得超过新的满分
func (s *quizService) checkStoredScores(ctx context.Context, quizID string, maxScore float64) error {
	scores, err := s.repo.QuizScore.ListByQuiz(ctx, quizID)
	if err != nil {
		s.logger.Error("查询测验成绩失败", zap.String("quiz_id", quizID), zap.Error(err))
		return err
	}
	for _, sc := range scores {
		if sc.Score > maxScore {
			return ErrQuizMaxBelowScores
		}
	}
	return nil
}

// loadWritable 加载测验并要求所属课程未归档
func (s *quizService) loadWritable(ctx context.Context, quizID string) (*model.Quiz, error) {
	quiz, err := s.load(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if _, err := loadActiveCourse(ctx, s.repo, s.logger, quiz.CourseID); err != nil {
		return nil, err
	}
	return quiz, nil
}

func validateQuiz(q *model.Quiz) error {
	if q.AttendanceRangeEnd.Before(q.AttendanceRangeStart) {
		return ErrQuizRangeInvalid
	}
	if q.MaxScore <= 0 {
		return ErrQuizMaxScore
	}
	if q.PassingRate < 0 || q.PassingRate > 100 {
		return ErrQuizPassingRate
	}
	return nil
}

func toQuizResponse(q *model.Quiz) *dto.QuizResponse {
	return &dto.QuizResponse{
		ID:                   q.QuizID,
		CourseID:             q.CourseID,
		Name:                 q.Name,
		QuizDate:             dateutil.Format(q.QuizDate),
		AttendanceRangeStart: dateutil.Format(q.AttendanceRangeStart),
		AttendanceRangeEnd:   dateutil.Format(q.AttendanceRangeEnd),
		MaxScore:             q.MaxScore,
		PassingRate:          q.PassingRate,
		CreatedAt:            q.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
