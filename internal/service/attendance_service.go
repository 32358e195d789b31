package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/viniuy/didasko-final-sub002/internal/dto"
	"github.com/viniuy/didasko-final-sub002/internal/model"
	"github.com/viniuy/didasko-final-sub002/internal/repository"
	"github.com/viniuy/didasko-final-sub002/pkg/dateutil"
)

// ── 考勤模块业务错误 ──

var (
	ErrAttendanceStatusInvalid = errors.New("考勤状态无效")
	ErrAttendanceDateInvalid   = errors.New("日期格式无效，应为 YYYY-MM-DD")
	ErrAttendanceRangeInvalid  = errors.New("结束日期不能早于开始日期")
	ErrAttendanceIDsEmpty      = errors.New("待删除的考勤记录列表不能为空")
	ErrAttendanceStudentEmpty  = errors.New("学生 ID 不能为空")
)

// AttendanceService 考勤业务接口
type AttendanceService interface {
	Record(ctx context.Context, courseID string, req *dto.RecordAttendanceRequest, callerID string) (*dto.AttendanceRecordResponse, error)
	RecordBatch(ctx context.Context, courseID string, req *dto.RecordAttendanceBatchRequest, callerID string) (int, error)
	Clear(ctx context.Context, courseID string, ids []string) (int64, error)
	MostRecentDate(ctx context.Context, courseID string) (*time.Time, error)
	StatusOnDate(ctx context.Context, courseID, date string) (map[string]model.AttendanceStatus, error)
	// Stats date 为空时取最近考勤日；未登记的学生计为缺勤
	Stats(ctx context.Context, courseID, date string) (*dto.AttendanceStatsResponse, error)
	// StudentStatuses 未登记的学生展示为 NOT_SET
	StudentStatuses(ctx context.Context, courseID, date string) ([]dto.StudentStatusResponse, error)
	RangeSummary(ctx context.Context, courseID, studentID, from, to string) (*dto.RangeSummaryResponse, error)
}

type attendanceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, logger: logger}
}

// ────────────────────── Record ──────────────────────

func (s *attendanceService) Record(ctx context.Context, courseID string, req *dto.RecordAttendanceRequest, callerID string) (*dto.AttendanceRecordResponse, error) {
	if req.StudentID == "" {
		return nil, ErrAttendanceStudentEmpty
	}
	status := model.AttendanceStatus(req.Status)
	if !status.Valid() {
		return nil, ErrAttendanceStatusInvalid
	}
	day, err := dateutil.Parse(req.Date)
	if err != nil {
		return nil, ErrAttendanceDateInvalid
	}
	if _, err := loadActiveCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return nil, err
	}
	if err := s.ensureEnrolled(ctx, courseID, []string{req.StudentID}); err != nil {
		return nil, err
	}

	records := []model.AttendanceRecord{{
		StudentID: req.StudentID,
		CourseID:  courseID,
		Date:      day,
		Status:    status,
	}}
	records[0].Audit(callerID)

	if err := s.repo.Attendance.Upsert(ctx, records); err != nil {
		s.logger.Error("登记考勤失败",
			zap.String("course_id", courseID), zap.String("student_id", req.StudentID), zap.Error(err))
		return nil, err
	}

	return &dto.AttendanceRecordResponse{
		ID:        records[0].AttendanceID,
		StudentID: req.StudentID,
		CourseID:  courseID,
		Date:      dateutil.Format(day),
		Status:    string(status),
	}, nil
}

// ────────────────────── RecordBatch ──────────────────────

// RecordBatch 同一天批量登记；单条 INSERT ... ON CONFLICT 语句写入，全部成功或全部失败
func (s *attendanceService) RecordBatch(ctx context.Context, courseID string, req *dto.RecordAttendanceBatchRequest, callerID string) (int, error) {
	day, err := dateutil.Parse(req.Date)
	if err != nil {
		return 0, ErrAttendanceDateInvalid
	}

	// 同一学生出现多次时以最后一条为准
	latest := make(map[string]model.AttendanceStatus, len(req.Records))
	order := make([]string, 0, len(req.Records))
	for _, e := range req.Records {
		if e.StudentID == "" {
			return 0, ErrAttendanceStudentEmpty
		}
		status := model.AttendanceStatus(e.Status)
		if !status.Valid() {
			return 0, ErrAttendanceStatusInvalid
		}
		if _, seen := latest[e.StudentID]; !seen {
			order = append(order, e.StudentID)
		}
		latest[e.StudentID] = status
	}

	if _, err := loadActiveCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return 0, err
	}
	if err := s.ensureEnrolled(ctx, courseID, order); err != nil {
		return 0, err
	}

	records := make([]model.AttendanceRecord, 0, len(order))
	for _, id := range order {
		r := model.AttendanceRecord{StudentID: id, CourseID: courseID, Date: day, Status: latest[id]}
		r.Audit(callerID)
		records = append(records, r)
	}

	if err := s.repo.Attendance.Upsert(ctx, records); err != nil {
		s.logger.Error("批量登记考勤失败",
			zap.String("course_id", courseID), zap.Int("count", len(records)), zap.Error(err))
		return 0, err
	}
	return len(records), nil
}

// ────────────────────── Clear ──────────────────────

func (s *attendanceService) Clear(ctx context.Context, courseID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrAttendanceIDsEmpty
	}
	if _, err := loadActiveCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return 0, err
	}
	n, err := s.repo.Attendance.DeleteByIDs(ctx, courseID, ids)
	if err != nil {
		s.logger.Error("删除考勤失败", zap.String("course_id", courseID), zap.Error(err))
		return 0, err
	}
	return n, nil
}

// ────────────────────── MostRecentDate ──────────────────────

func (s *attendanceService) MostRecentDate(ctx context.Context, courseID string) (*time.Time, error) {
	if _, err := loadCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return nil, err
	}
	d, err := s.repo.Attendance.MaxDate(ctx, courseID)
	if err != nil {
		s.logger.Error("查询最近考勤日期失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	return d, nil
}

// ────────────────────── StatusOnDate ──────────────────────

func (s *attendanceService) StatusOnDate(ctx context.Context, courseID, date string) (map[string]model.AttendanceStatus, error) {
	day, err := dateutil.Parse(date)
	if err != nil {
		return nil, ErrAttendanceDateInvalid
	}
	if _, err := loadCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return nil, err
	}
	records, err := s.repo.Attendance.ListByDate(ctx, courseID, day)
	if err != nil {
		s.logger.Error("查询考勤失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	result := make(map[string]model.AttendanceStatus, len(records))
	for _, r := range records {
		result[r.StudentID] = r.Status
	}
	return result, nil
}

// ────────────────────── Stats ──────────────────────

func (s *attendanceService) Stats(ctx context.Context, courseID, date string) (*dto.AttendanceStatsResponse, error) {
	day, err := s.resolveDay(ctx, courseID, date)
	if err != nil {
		return nil, err
	}

	students, err := s.repo.Enrollment.ListStudents(ctx, courseID)
	if err != nil {
		s.logger.Error("查询选课学生失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	byStudent := map[string]model.AttendanceStatus{}
	if day != nil {
		records, err := s.repo.Attendance.ListByDate(ctx, courseID, *day)
		if err != nil {
			s.logger.Error("查询考勤失败", zap.String("course_id", courseID), zap.Error(err))
			return nil, err
		}
		for _, r := range records {
			byStudent[r.StudentID] = r.Status
		}
	}

	resp := &dto.AttendanceStatsResponse{CourseID: courseID, Total: len(students)}
	if day != nil {
		resp.Date = dateutil.Format(*day)
	}
	for _, st := range students {
		switch byStudent[st.StudentID] {
		case model.AttendancePresent:
			resp.Present++
		case model.AttendanceLate:
			resp.Late++
		case model.AttendanceExcused:
			resp.Excused++
		default:
			// 显式 ABSENT 与未登记均计为缺勤
			resp.Absent++
		}
	}
	resp.AttendanceRate = round2(attendanceRate(resp.Present, resp.Late, resp.Total))
	return resp, nil
}

// ────────────────────── StudentStatuses ──────────────────────

func (s *attendanceService) StudentStatuses(ctx context.Context, courseID, date string) ([]dto.StudentStatusResponse, error) {
	day, err := s.resolveDay(ctx, courseID, date)
	if err != nil {
		return nil, err
	}

	students, err := s.repo.Enrollment.ListStudents(ctx, courseID)
	if err != nil {
		s.logger.Error("查询选课学生失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	byStudent := map[string]model.AttendanceRecord{}
	if day != nil {
		records, err := s.repo.Attendance.ListByDate(ctx, courseID, *day)
		if err != nil {
			s.logger.Error("查询考勤失败", zap.String("course_id", courseID), zap.Error(err))
			return nil, err
		}
		for _, r := range records {
			byStudent[r.StudentID] = r
		}
	}

	result := make([]dto.StudentStatusResponse, 0, len(students))
	for i := range students {
		st := &students[i]
		item := dto.StudentStatusResponse{
			StudentID:     st.StudentID,
			StudentNumber: st.StudentNumber,
			Name:          st.FullName(),
			Status:        string(model.AttendanceNotSet),
		}
		if r, ok := byStudent[st.StudentID]; ok {
			item.Status = string(r.Status)
			item.RecordID = r.AttendanceID
		}
		result = append(result, item)
	}
	return result, nil
}

// ────────────────────── RangeSummary ──────────────────────

func (s *attendanceService) RangeSummary(ctx context.Context, courseID, studentID, from, to string) (*dto.RangeSummaryResponse, error) {
	fromDay, err := dateutil.Parse(from)
	if err != nil {
		return nil, ErrAttendanceDateInvalid
	}
	toDay, err := dateutil.Parse(to)
	if err != nil {
		return nil, ErrAttendanceDateInvalid
	}
	if toDay.Before(fromDay) {
		return nil, ErrAttendanceRangeInvalid
	}
	if _, err := loadCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return nil, err
	}

	records, err := s.repo.Attendance.ListRange(ctx, courseID, studentID, fromDay, toDay)
	if err != nil {
		s.logger.Error("查询区间考勤失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	t := tallyAttendance(records)
	return &dto.RangeSummaryResponse{
		StudentID: studentID,
		From:      dateutil.Format(fromDay),
		To:        dateutil.Format(toDay),
		Present:   t.Present,
		Late:      t.Late,
		Absent:    t.Absent,
		Excused:   t.Excused,
		Total:     t.Total(),
	}, nil
}

// ── 内部辅助方法 ──

// resolveDay date 为空时回退到最近考勤日；课程无任何考勤记录时返回 nil
func (s *attendanceService) resolveDay(ctx context.Context, courseID, date string) (*time.Time, error) {
	if date != "" {
		day, err := dateutil.Parse(date)
		if err != nil {
			return nil, ErrAttendanceDateInvalid
		}
		if _, err := loadCourse(ctx, s.repo, s.logger, courseID); err != nil {
			return nil, err
		}
		return &day, nil
	}
	return s.MostRecentDate(ctx, courseID)
}

func (s *attendanceService) ensureEnrolled(ctx context.Context, courseID string, studentIDs []string) error {
	enrolled, err := s.repo.Enrollment.FilterEnrolled(ctx, courseID, studentIDs)
	if err != nil {
		s.logger.Error("查询选课关系失败", zap.String("course_id", courseID), zap.Error(err))
		return err
	}
	if len(enrolled) != len(studentIDs) {
		return ErrNotEnrolled
	}
	return nil
}

// attendanceTally 按状态计数
type attendanceTally struct {
	Present, Late, Absent, Excused int
}

// Total 已登记的记录数
func (t attendanceTally) Total() int {
	return t.Present + t.Late + t.Absent + t.Excused
}

// Attended 到课（含迟到）次数
func (t attendanceTally) Attended() int {
	return t.Present + t.Late
}

func tallyAttendance(records []model.AttendanceRecord) attendanceTally {
	var t attendanceTally
	for _, r := range records {
		switch r.Status {
		case model.AttendancePresent:
			t.Present++
		case model.AttendanceLate:
			t.Late++
		case model.AttendanceAbsent:
			t.Absent++
		case model.AttendanceExcused:
			t.Excused++
		}
	}
	return t
}

// attendanceRate 出勤率 = (到课 + 迟到) / 总人数 × 100，无学生时为 0
func attendanceRate(present, late, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(present+late) / float64(total) * 100
}
