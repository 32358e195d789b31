package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/viniuy/didasko-final-sub002/internal/dto"
	"github.com/viniuy/didasko-final-sub002/internal/model"
	"github.com/viniuy/didasko-final-sub002/internal/repository"
	pkgerrors "github.com/viniuy/didasko-final-sub002/pkg/errors"
)

// ── 学生模块业务错误 ──

var (
	ErrStudentNotFound     = errors.New("学生不存在")
	ErrStudentNumberExists = errors.New("学号已存在")
	ErrStudentHasRecords   = errors.New("学生存在考勤或成绩记录，不能删除")
)

// StudentService 学生业务接口
type StudentService interface {
	Create(ctx context.Context, req *dto.CreateStudentRequest, callerID string) (*dto.StudentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.StudentResponse, error)
	List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateStudentRequest, callerID string) (*dto.StudentResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	ParseImportFile(reader io.Reader) ([]ImportStudentRow, error)
	ImportStudents(ctx context.Context, rows []ImportStudentRow, callerID string) (*dto.ImportStudentResponse, error)
}

// ImportStudentRow Excel 导入解析后的单行数据
type ImportStudentRow struct {
	Row           int
	StudentNumber string
	FirstName     string
	MiddleName    string
	LastName      string
}

type studentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *studentService) Create(ctx context.Context, req *dto.CreateStudentRequest, callerID string) (*dto.StudentResponse, error) {
	if _, err := s.repo.Student.GetByNumber(ctx, req.StudentNumber); err == nil {
		return nil, ErrStudentNumberExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询学号失败", zap.Error(err))
		return nil, err
	}

	student := &model.Student{
		StudentNumber: strings.TrimSpace(req.StudentNumber),
		FirstName:     strings.TrimSpace(req.FirstName),
		MiddleName:    strings.TrimSpace(req.MiddleName),
		LastName:      strings.TrimSpace(req.LastName),
		ImageURL:      req.ImageURL,
	}
	student.Audit(callerID)

	if err := s.repo.Student.Create(ctx, student); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, ErrStudentNumberExists
		}
		s.logger.Error("创建学生失败", zap.Error(err))
		return nil, err
	}

	return toStudentResponse(student), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *studentService) GetByID(ctx context.Context, id string) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toStudentResponse(student), nil
}

// ────────────────────── List ──────────────────────

func (s *studentService) List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error) {
	students, total, err := s.repo.Student.List(ctx, strings.TrimSpace(req.Keyword), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询学生列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, *toStudentResponse(&students[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *studentService) Update(ctx context.Context, id string, req *dto.UpdateStudentRequest, callerID string) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.FirstName != nil {
		student.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.MiddleName != nil {
		student.MiddleName = strings.TrimSpace(*req.MiddleName)
	}
	if req.LastName != nil {
		student.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.ImageURL != nil {
		student.ImageURL = *req.ImageURL
	}
	student.AuditUpdate(callerID)

	if err := s.repo.Student.Update(ctx, student); err != nil {
		s.logger.Error("更新学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toStudentResponse(student), nil
}

// ────────────────────── Delete ──────────────────────

func (s *studentService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Student.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("id", id), zap.Error(err))
		return err
	}

	referenced, err := s.repo.Student.HasRecords(ctx, id)
	if err != nil {
		s.logger.Error("检查学生引用失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if referenced {
		return ErrStudentHasRecords
	}

	if err := s.repo.Student.Delete(ctx, id); err != nil {
		s.logger.Error("删除学生失败", zap.String("id", id), zap.String("caller", callerID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ParseImportFile ──────────────────────

const maxImportRows = 1000

var (
	ErrImportNoData      = errors.New("Excel文件无数据行（第一行为表头）")
	ErrImportTooManyRows = fmt.Errorf("数据行数超过上限 %d 行", maxImportRows)
	ErrImportBadHeader   = errors.New("Excel表头缺少必要列（学号/名/姓）")
	ErrImportBadFile     = errors.New("无法解析Excel文件")
)

// ParseImportFile 解析学生名册 Excel，返回解析后的行数据
func (s *studentService) ParseImportFile(reader io.Reader) ([]ImportStudentRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取工作表失败: %v", ErrImportBadFile, err)
	}

	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	// 解析表头（支持灵活列序）
	colIndex := parseHeaderIndex(excelRows[0])
	if colIndex["student_number"] < 0 || colIndex["first_name"] < 0 || colIndex["last_name"] < 0 {
		return nil, ErrImportBadHeader
	}

	cell := func(row []string, key string) string {
		idx := colIndex[key]
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var rows []ImportStudentRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := ImportStudentRow{
			Row:           i + 1,
			StudentNumber: cell(row, "student_number"),
			FirstName:     cell(row, "first_name"),
			MiddleName:    cell(row, "middle_name"),
			LastName:      cell(row, "last_name"),
		}

		// 跳过全空行
		if item.StudentNumber == "" && item.FirstName == "" && item.LastName == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}

	return rows, nil
}

// parseHeaderIndex 解析 Excel 表头，返回列名 -> 列索引映射
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"student_number": -1,
		"first_name":     -1,
		"middle_name":    -1,
		"last_name":      -1,
	}
	for i, h := range header {
		lower := strings.ToLower(strings.TrimSpace(h))
		switch lower {
		case "学号", "student_number", "student no", "student number":
			idx["student_number"] = i
		case "名", "first_name", "first name":
			idx["first_name"] = i
		case "中间名", "middle_name", "middle name":
			idx["middle_name"] = i
		case "姓", "last_name", "last name":
			idx["last_name"] = i
		}
	}
	return idx
}

// ────────────────────── ImportStudents ──────────────────────

func (s *studentService) ImportStudents(ctx context.Context, rows []ImportStudentRow, callerID string) (*dto.ImportStudentResponse, error) {
	resp := &dto.ImportStudentResponse{Total: len(rows)}

	// 第一阶段：数据预校验（不接触数据库写操作）
	var validRows []ImportStudentRow
	seen := make(map[string]int, len(rows))

	for _, row := range rows {
		if row.StudentNumber == "" || row.FirstName == "" || row.LastName == "" {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportStudentError{
				Row: row.Row, Reason: "必填字段为空",
			})
			continue
		}

		if first, dup := seen[row.StudentNumber]; dup {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportStudentError{
				Row: row.Row, Reason: fmt.Sprintf("学号与第 %d 行重复: %s", first, row.StudentNumber),
			})
			continue
		}
		seen[row.StudentNumber] = row.Row

		if _, err := s.repo.Student.GetByNumber(ctx, row.StudentNumber); err == nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportStudentError{
				Row: row.Row, Reason: fmt.Sprintf("学号已存在: %s", row.StudentNumber),
			})
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询学号失败", zap.Error(err))
			return nil, err
		}

		validRows = append(validRows, row)
	}

	// 第二阶段：在事务中批量创建所有通过校验的学生
	if len(validRows) > 0 {
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

		for _, row := range validRows {
			student := &model.Student{
				StudentNumber: row.StudentNumber,
				FirstName:     row.FirstName,
				MiddleName:    row.MiddleName,
				LastName:      row.LastName,
			}
			student.Audit(callerID)

			if err := txRepo.Student.Create(ctx, student); err != nil {
				// 事务中任一写入失败则全部回滚
				if tx != nil {
					tx.Rollback()
				}
				s.logger.Error("导入学生写入失败，事务回滚",
					zap.Int("row", row.Row), zap.Error(err))
				return nil, fmt.Errorf("第 %d 行写入数据库失败，已回滚全部导入: %w", row.Row, err)
			}
			resp.Success++
		}

		if tx != nil {
			if err := tx.Commit().Error; err != nil {
				s.logger.Error("提交事务失败", zap.Error(err))
				return nil, err
			}
		}
	}

	return resp, nil
}

// ── 内部辅助方法 ──

func toStudentResponse(s *model.Student) *dto.StudentResponse {
	return &dto.StudentResponse{
		ID:            s.StudentID,
		StudentNumber: s.StudentNumber,
		FirstName:     s.FirstName,
		MiddleName:    s.MiddleName,
		LastName:      s.LastName,
		FullName:      s.FullName(),
		ImageURL:      s.ImageURL,
		CreatedAt:     s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func toStudentBrief(s *model.Student) dto.StudentBrief {
	return dto.StudentBrief{
		ID:            s.StudentID,
		StudentNumber: s.StudentNumber,
		Name:          s.FullName(),
	}
}
