package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/viniuy/didasko-final-sub002/internal/dto"
)

func setupStudentService() (StudentService, *mockRepos) {
	m, repo := newMockRepos()
	return NewStudentService(repo, zap.NewNop()), m
}

// buildRosterFile 生成名册 Excel，首行为表头
func buildRosterFile(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		for j, v := range row {
			name, _ := excelize.CoordinatesToCellName(j+1, i+1)
			f.SetCellValue("Sheet1", name, v)
		}
	}
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		t.Fatalf("生成测试 Excel 失败: %v", err)
	}
	return buf
}

func TestStudentService_Create(t *testing.T) {
	svc, _ := setupStudentService()

	got, err := svc.Create(context.Background(), &dto.CreateStudentRequest{
		StudentNumber: " 2024-0001 ", FirstName: "Ana", MiddleName: "Luz", LastName: "Cruz",
	}, "u1")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if got.StudentNumber != "2024-0001" {
		t.Errorf("学号应去除首尾空格，实际 %q", got.StudentNumber)
	}
	if got.FullName != "Cruz, Ana L." {
		t.Errorf("期望 FullName=Cruz, Ana L.，实际 %s", got.FullName)
	}
}

func TestStudentService_Create_Duplicate(t *testing.T) {
	svc, _ := setupStudentService()
	ctx := context.Background()
	req := &dto.CreateStudentRequest{StudentNumber: "2024-0001", FirstName: "Ana", LastName: "Cruz"}
	svc.Create(ctx, req, "")

	if _, err := svc.Create(ctx, req, ""); !errors.Is(err, ErrStudentNumberExists) {
		t.Errorf("期望 ErrStudentNumberExists，实际: %v", err)
	}
}

func TestStudentService_Delete_HasRecords(t *testing.T) {
	svc, m := setupStudentService()
	ctx := context.Background()
	s, _ := svc.Create(ctx, &dto.CreateStudentRequest{StudentNumber: "2024-0001", FirstName: "Ana", LastName: "Cruz"}, "")
	m.student.withRecords[s.ID] = true

	if err := svc.Delete(ctx, s.ID, ""); !errors.Is(err, ErrStudentHasRecords) {
		t.Errorf("期望 ErrStudentHasRecords，实际: %v", err)
	}

	delete(m.student.withRecords, s.ID)
	if err := svc.Delete(ctx, s.ID, ""); err != nil {
		t.Errorf("无引用时 Delete 应成功: %v", err)
	}
	if _, err := svc.GetByID(ctx, s.ID); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("删除后期望 ErrStudentNotFound，实际: %v", err)
	}
}

func TestStudentService_List_Keyword(t *testing.T) {
	svc, _ := setupStudentService()
	ctx := context.Background()
	svc.Create(ctx, &dto.CreateStudentRequest{StudentNumber: "2024-0001", FirstName: "Ana", LastName: "Cruz"}, "")
	svc.Create(ctx, &dto.CreateStudentRequest{StudentNumber: "2024-0002", FirstName: "Ben", LastName: "Reyes"}, "")

	list, total, err := svc.List(ctx, &dto.StudentListRequest{Keyword: "reyes"})
	if err != nil || total != 1 || list[0].LastName != "Reyes" {
		t.Errorf("关键字过滤不符: total=%d err=%v", total, err)
	}
}

// ── 导入 ──

func TestStudentService_ParseImportFile(t *testing.T) {
	svc, _ := setupStudentService()
	buf := buildRosterFile(t, [][]string{
		{"姓", "名", "学号"},
		{"Cruz", "Ana", "2024-0001"},
		{"", "", ""},
		{"Reyes", "Ben", "2024-0002"},
	})

	rows, err := svc.ParseImportFile(buf)
	if err != nil {
		t.Fatalf("ParseImportFile 应成功: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("空行应跳过，期望 2 行，实际 %d", len(rows))
	}
	if rows[1].Row != 4 || rows[1].StudentNumber != "2024-0002" || rows[1].LastName != "Reyes" {
		t.Errorf("列序解析不符: %+v", rows[1])
	}
}

func TestStudentService_ParseImportFile_Errors(t *testing.T) {
	svc, _ := setupStudentService()

	if _, err := svc.ParseImportFile(strings.NewReader("not an xlsx")); !errors.Is(err, ErrImportBadFile) {
		t.Errorf("非 Excel 期望 ErrImportBadFile，实际: %v", err)
	}
	if _, err := svc.ParseImportFile(buildRosterFile(t, [][]string{{"学号", "名", "姓"}})); !errors.Is(err, ErrImportNoData) {
		t.Errorf("只有表头期望 ErrImportNoData，实际: %v", err)
	}
	if _, err := svc.ParseImportFile(buildRosterFile(t, [][]string{{"学号", "名"}, {"1", "A"}})); !errors.Is(err, ErrImportBadHeader) {
		t.Errorf("缺列期望 ErrImportBadHeader，实际: %v", err)
	}
}

func TestStudentService_ImportStudents(t *testing.T) {
	svc, m := setupStudentService()
	ctx := context.Background()
	svc.Create(ctx, &dto.CreateStudentRequest{StudentNumber: "2024-0001", FirstName: "Ana", LastName: "Cruz"}, "")

	resp, err := svc.ImportStudents(ctx, []ImportStudentRow{
		{Row: 2, StudentNumber: "2024-0001", FirstName: "Ana", LastName: "Cruz"}, // 已存在
		{Row: 3, StudentNumber: "2024-0002", FirstName: "Ben", LastName: "Reyes"},
		{Row: 4, StudentNumber: "2024-0002", FirstName: "Ben", LastName: "Dup"}, // 文件内重复
		{Row: 5, StudentNumber: "2024-0003", FirstName: "", LastName: "Santos"}, // 缺名
		{Row: 6, StudentNumber: "2024-0004", FirstName: "Dan", LastName: "Lim"},
	}, "u1")
	if err != nil {
		t.Fatalf("ImportStudents 应成功: %v", err)
	}
	if resp.Total != 5 || resp.Success != 2 || resp.Failed != 3 {
		t.Errorf("导入统计不符: %+v", resp)
	}
	if len(m.student.students) != 3 {
		t.Errorf("期望库中 3 名学生，实际 %d", len(m.student.students))
	}
}
