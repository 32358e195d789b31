package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/viniuy/didasko-final-sub002/internal/model"
	"github.com/viniuy/didasko-final-sub002/internal/repository"
	"github.com/viniuy/didasko-final-sub002/pkg/dateutil"
)

// ── 导出模块业务错误 ──

var (
	ErrExportRangeInvalid = errors.New("导出日期区间无效")
	ErrExportRangeTooLong = errors.New("导出日期区间不能超过 366 天")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// maxExportDays 考勤矩阵最多列数
const maxExportDays = 366

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置响应头后写入 Response
type ExportService interface {
	// ExportGrades 当前评分方案下的课程成绩表
	ExportGrades(ctx context.Context, courseID string) (*bytes.Buffer, string, error)
	// ExportAttendance 学生 × 日期 的考勤矩阵，未记录的日期留 "-"
	ExportAttendance(ctx context.Context, courseID, from, to string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo    *repository.Repository
	grading GradingService
	logger  *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, grading GradingService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, grading: grading, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportGrades — 导出成绩表
// ═══════════════════════════════════════════════════════════
//
// 表头：学号 | 姓名 | Reporting | Recitation | Quiz | 总评 | 结果

func (s *exportService) ExportGrades(ctx context.Context, courseID string) (*bytes.Buffer, string, error) {
	course, err := loadCourse(ctx, s.repo, s.logger, courseID)
	if err != nil {
		return nil, "", err
	}
	grades, err := s.grading.ComputeCourse(ctx, courseID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "成绩"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"学号", "姓名", "Reporting", "Recitation", "Quiz", "总评", "结果"}
	writeTitle(f, sheetName, courseLabel(course)+" 成绩表", len(headers))
	writeHeader(f, sheetName, headers)
	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 28)
	f.SetColWidth(sheetName, "C", "G", 12)

	row := 3
	for _, g := range grades {
		f.SetCellValue(sheetName, cell("A", row), g.StudentNumber)
		f.SetCellValue(sheetName, cell("B", row), g.Name)
		f.SetCellValue(sheetName, cell("C", row), g.ReportingScore)
		f.SetCellValue(sheetName, cell("D", row), g.RecitationScore)
		f.SetCellValue(sheetName, cell("E", row), g.QuizScore)
		f.SetCellValue(sheetName, cell("F", row), g.TotalGrade)
		f.SetCellValue(sheetName, cell("G", row), g.Remarks)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, fmt.Sprintf("成绩表_%s.xlsx", course.Slug), nil
}

// ═══════════════════════════════════════════════════════════
// ExportAttendance — 导出考勤矩阵
// ═══════════════════════════════════════════════════════════
//
// 表头：学号 | 姓名 | 日期1 | 日期2 | ... | 出勤率

func (s *exportService) ExportAttendance(ctx context.Context, courseID, from, to string) (*bytes.Buffer, string, error) {
	start, err := dateutil.Parse(from)
	if err != nil {
		return nil, "", ErrExportRangeInvalid
	}
	end, err := dateutil.Parse(to)
	if err != nil || end.Before(start) {
		return nil, "", ErrExportRangeInvalid
	}
	days := dateutil.Range(start, end)
	if len(days) > maxExportDays {
		return nil, "", ErrExportRangeTooLong
	}

	course, err := loadCourse(ctx, s.repo, s.logger, courseID)
	if err != nil {
		return nil, "", err
	}
	students, err := s.repo.Enrollment.ListStudents(ctx, courseID)
	if err != nil {
		s.logger.Error("查询选课学生失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, "", err
	}
	records, err := s.repo.Attendance.ListRange(ctx, courseID, "", start, end)
	if err != nil {
		s.logger.Error("查询区间考勤失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, "", err
	}

	// "studentID:date" → 状态；有任意记录的日期即为上课日
	index := make(map[string]model.AttendanceStatus, len(records))
	byStudent := make(map[string][]model.AttendanceRecord)
	sessions := make(map[string]struct{})
	for _, r := range records {
		index[r.StudentID+":"+dateutil.Format(r.Date)] = r.Status
		byStudent[r.StudentID] = append(byStudent[r.StudentID], r)
		sessions[dateutil.Format(r.Date)] = struct{}{}
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "考勤"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := make([]string, 0, len(days)+3)
	headers = append(headers, "学号", "姓名")
	for _, d := range days {
		headers = append(headers, dateutil.Format(d))
	}
	headers = append(headers, "出勤率(%)")

	writeTitle(f, sheetName, fmt.Sprintf("%s 考勤表 %s ~ %s", courseLabel(course), from, to), len(headers))
	writeHeader(f, sheetName, headers)
	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 28)
	if len(days) > 0 {
		f.SetColWidth(sheetName, colName(2), colName(1+len(days)), 12)
	}

	row := 3
	for i := range students {
		st := &students[i]
		f.SetCellValue(sheetName, cell("A", row), st.StudentNumber)
		f.SetCellValue(sheetName, cell("B", row), st.FullName())
		for j, d := range days {
			text := "-"
			if status, ok := index[st.StudentID+":"+dateutil.Format(d)]; ok {
				text = string(status)
			}
			f.SetCellValue(sheetName, cell(colName(2+j), row), text)
		}
		// 上课日缺记录按缺勤计入分母
		t := tallyAttendance(byStudent[st.StudentID])
		f.SetCellValue(sheetName, cell(colName(2+len(days)), row), round2(attendanceRate(t.Present, t.Late, len(sessions))))
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, fmt.Sprintf("考勤表_%s_%s_%s.xlsx", course.Slug, from, to), nil
}

// ── 辅助函数 ──

func courseLabel(c *model.Course) string {
	return fmt.Sprintf("%s %s (%s)", c.Code, c.Title, c.Section)
}

func writeTitle(f *excelize.File, sheet, title string, cols int) {
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 13},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	f.SetCellValue(sheet, "A1", title)
	f.MergeCell(sheet, "A1", cell(colName(cols-1), 1))
	f.SetCellStyle(sheet, "A1", "A1", style)
}

func writeHeader(f *excelize.File, sheet string, headers []string) {
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheet, "A2", cell(colName(len(headers)-1), 2), style)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
