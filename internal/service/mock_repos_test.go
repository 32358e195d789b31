package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/viniuy/didasko-final-sub002/internal/model"
	"github.com/viniuy/didasko-final-sub002/internal/repository"
	pkgerrors "github.com/viniuy/didasko-final-sub002/pkg/errors"
)

// ── 测试仓储聚合 ──

type mockRepos struct {
	user        *mockUserRepo
	student     *mockStudentRepo
	course      *mockCourseRepo
	enrollment  *mockEnrollmentRepo
	group       *mockGroupRepo
	attendance  *mockAttendanceRepo
	gradeConfig *mockGradeConfigRepo
	gradeScore  *mockGradeScoreRepo
	quiz        *mockQuizRepo
	quizScore   *mockQuizScoreRepo
	rubric      *mockRubricRepo
}

func newMockRepos() (*mockRepos, *repository.Repository) {
	m := &mockRepos{
		user:        newMockUserRepo(),
		student:     newMockStudentRepo(),
		course:      newMockCourseRepo(),
		group:       newMockGroupRepo(),
		attendance:  newMockAttendanceRepo(),
		gradeConfig: newMockGradeConfigRepo(),
		gradeScore:  newMockGradeScoreRepo(),
		quiz:        newMockQuizRepo(),
		quizScore:   newMockQuizScoreRepo(),
		rubric:      newMockRubricRepo(),
	}
	m.enrollment = newMockEnrollmentRepo(m.student)
	repo := &repository.Repository{
		User:        m.user,
		Student:     m.student,
		Course:      m.course,
		Enrollment:  m.enrollment,
		Group:       m.group,
		Attendance:  m.attendance,
		GradeConfig: m.gradeConfig,
		GradeScore:  m.gradeScore,
		Quiz:        m.quiz,
		QuizScore:   m.quizScore,
		Rubric:      m.rubric,
	}
	return m, repo
}

// seedCourse 写入一门 ACTIVE 课程并选入给定学生
func (m *mockRepos) seedCourse(courseID string, students ...*model.Student) {
	m.course.courses[courseID] = &model.Course{
		CourseID: courseID,
		Code:     "IT101",
		Title:    "Programming",
		Section:  "A",
		Slug:     "it101-a-" + courseID,
		Semester: "1st",
		Status:   model.CourseStatusActive,
	}
	for _, st := range students {
		m.student.students[st.StudentID] = st
		m.enrollment.enroll(courseID, st.StudentID)
	}
}

func newStudent(id, number, first, last string) *model.Student {
	return &model.Student{StudentID: id, StudentNumber: number, FirstName: first, LastName: last}
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return pkgerrors.ErrDuplicateKey
		}
	}
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, role string, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if role != "" && u.Role != role {
			continue
		}
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Email < result[j].Email })
	return paginate(result, offset, limit), int64(len(result)), nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[string]*model.Student
	// withRecords 存在考勤/成绩引用的学生
	withRecords map[string]bool
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{
		students:    make(map[string]*model.Student),
		withRecords: make(map[string]bool),
	}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	for _, s := range m.students {
		if s.StudentNumber == student.StudentNumber {
			return pkgerrors.ErrDuplicateKey
		}
	}
	if student.StudentID == "" {
		student.StudentID = "stu-" + student.StudentNumber
	}
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByNumber(_ context.Context, number string) (*model.Student, error) {
	for _, s := range m.students {
		if s.StudentNumber == number {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) ListByIDs(_ context.Context, ids []string) ([]model.Student, error) {
	var result []model.Student
	for _, id := range ids {
		if s, ok := m.students[id]; ok {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) List(_ context.Context, search string, offset, limit int) ([]model.Student, int64, error) {
	var result []model.Student
	for _, s := range m.students {
		if search != "" &&
			!strings.Contains(s.StudentNumber, search) &&
			!strings.Contains(strings.ToLower(s.FirstName+" "+s.LastName), strings.ToLower(search)) {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StudentNumber < result[j].StudentNumber })
	return paginate(result, offset, limit), int64(len(result)), nil
}

func (m *mockStudentRepo) HasRecords(_ context.Context, id string) (bool, error) {
	return m.withRecords[id], nil
}

func (m *mockStudentRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.students[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.students, id)
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course)}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	for _, c := range m.courses {
		if c.Slug == course.Slug {
			return pkgerrors.ErrDuplicateKey
		}
	}
	if course.CourseID == "" {
		course.CourseID = "course-" + course.Slug
	}
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) GetBySlug(_ context.Context, slug string) (*model.Course, error) {
	for _, c := range m.courses {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) List(_ context.Context, filter repository.CourseFilter, offset, limit int) ([]model.Course, int64, error) {
	var result []model.Course
	for _, c := range m.courses {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Semester != "" && c.Semester != filter.Semester {
			continue
		}
		if filter.FacultyID != "" && (c.FacultyID == nil || *c.FacultyID != filter.FacultyID) {
			continue
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Slug < result[j].Slug })
	return paginate(result, offset, limit), int64(len(result)), nil
}

func (m *mockCourseRepo) ReplaceSchedules(_ context.Context, courseID string, schedules []model.CourseSchedule) error {
	c, ok := m.courses[courseID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Schedules = schedules
	return nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct {
	students *mockStudentRepo
	// courseID → studentID → 选课顺序
	pairs map[string]map[string]int
	seq   int
}

func newMockEnrollmentRepo(students *mockStudentRepo) *mockEnrollmentRepo {
	return &mockEnrollmentRepo{students: students, pairs: make(map[string]map[string]int)}
}

func (m *mockEnrollmentRepo) enroll(courseID, studentID string) {
	if m.pairs[courseID] == nil {
		m.pairs[courseID] = make(map[string]int)
	}
	m.seq++
	m.pairs[courseID][studentID] = m.seq
}

func (m *mockEnrollmentRepo) BatchCreate(_ context.Context, enrollments []model.Enrollment) error {
	for _, e := range enrollments {
		if _, ok := m.pairs[e.CourseID][e.StudentID]; ok {
			return pkgerrors.ErrDuplicateKey
		}
	}
	for _, e := range enrollments {
		m.enroll(e.CourseID, e.StudentID)
	}
	return nil
}

func (m *mockEnrollmentRepo) Delete(_ context.Context, courseID, studentID string) error {
	if _, ok := m.pairs[courseID][studentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.pairs[courseID], studentID)
	return nil
}

func (m *mockEnrollmentRepo) IsEnrolled(_ context.Context, courseID, studentID string) (bool, error) {
	_, ok := m.pairs[courseID][studentID]
	return ok, nil
}

func (m *mockEnrollmentRepo) FilterEnrolled(_ context.Context, courseID string, studentIDs []string) ([]string, error) {
	var result []string
	seen := make(map[string]bool)
	for _, id := range studentIDs {
		if _, ok := m.pairs[courseID][id]; ok && !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	return result, nil
}

func (m *mockEnrollmentRepo) ListStudents(_ context.Context, courseID string) ([]model.Student, error) {
	var result []model.Student
	for id := range m.pairs[courseID] {
		if s, ok := m.students.students[id]; ok {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LastName < result[j].LastName })
	return result, nil
}

// ── Mock GroupRepository ──

type mockGroupRepo struct {
	groups map[string]*model.Group
	// beforeCreate 模拟预检查之后、写入之前的并发写入
	beforeCreate func()
}

func newMockGroupRepo() *mockGroupRepo {
	return &mockGroupRepo{groups: make(map[string]*model.Group)}
}

func (m *mockGroupRepo) Create(_ context.Context, group *model.Group) error {
	if m.beforeCreate != nil {
		m.beforeCreate()
	}
	// 与数据库唯一约束一致：(course_id, name)、(course_id, number)、成员主键
	for _, g := range m.groups {
		if g.CourseID == group.CourseID && (g.Name == group.Name || g.Number == group.Number) {
			return pkgerrors.ErrDuplicateKey
		}
	}
	seen := make(map[string]bool, len(group.Members))
	for _, mem := range group.Members {
		if seen[mem.StudentID] {
			return pkgerrors.ErrDuplicateKey
		}
		seen[mem.StudentID] = true
	}
	if group.GroupID == "" {
		group.GroupID = fmt.Sprintf("group-%s-%d", group.CourseID, group.Number)
	}
	for i := range group.Members {
		group.Members[i].GroupID = group.GroupID
	}
	m.groups[group.GroupID] = group
	return nil
}

func (m *mockGroupRepo) GetByID(_ context.Context, id string) (*model.Group, error) {
	if g, ok := m.groups[id]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) ListByCourse(_ context.Context, courseID string) ([]model.Group, error) {
	var result []model.Group
	for _, g := range m.groups {
		if g.CourseID == courseID {
			result = append(result, *g)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Number < result[j].Number })
	return result, nil
}

func (m *mockGroupRepo) ExistsByName(_ context.Context, courseID, name string) (bool, error) {
	for _, g := range m.groups {
		if g.CourseID == courseID && g.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockGroupRepo) ExistsByNumber(_ context.Context, courseID string, number int) (bool, error) {
	for _, g := range m.groups {
		if g.CourseID == courseID && g.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockGroupRepo) AddMembers(_ context.Context, members []model.GroupMember) error {
	for _, mem := range members {
		g, ok := m.groups[mem.GroupID]
		if !ok {
			return gorm.ErrRecordNotFound
		}
		g.Members = append(g.Members, mem)
	}
	return nil
}

func (m *mockGroupRepo) RemoveMember(_ context.Context, groupID, studentID string) error {
	g, ok := m.groups[groupID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i, mem := range g.Members {
		if mem.StudentID == studentID {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.groups[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.groups, id)
	return nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	// "student|course|date" → 记录
	records map[string]*model.AttendanceRecord
	seq     int
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[string]*model.AttendanceRecord)}
}

func attendanceKey(studentID, courseID string, date time.Time) string {
	return studentID + "|" + courseID + "|" + date.UTC().Format("2006-01-02")
}

func (m *mockAttendanceRepo) Upsert(_ context.Context, records []model.AttendanceRecord) error {
	for i := range records {
		r := &records[i]
		key := attendanceKey(r.StudentID, r.CourseID, r.Date)
		if existing, ok := m.records[key]; ok {
			existing.Status = r.Status
			existing.UpdatedBy = r.UpdatedBy
			r.AttendanceID = existing.AttendanceID
			continue
		}
		m.seq++
		r.AttendanceID = fmt.Sprintf("att-%d", m.seq)
		cp := *r
		m.records[key] = &cp
	}
	return nil
}

func (m *mockAttendanceRepo) DeleteByIDs(_ context.Context, courseID string, ids []string) (int64, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var n int64
	for key, r := range m.records {
		if r.CourseID == courseID && want[r.AttendanceID] {
			delete(m.records, key)
			n++
		}
	}
	return n, nil
}

func (m *mockAttendanceRepo) MaxDate(_ context.Context, courseID string) (*time.Time, error) {
	var max *time.Time
	for _, r := range m.records {
		if r.CourseID != courseID {
			continue
		}
		if max == nil || r.Date.After(*max) {
			d := r.Date
			max = &d
		}
	}
	return max, nil
}

func (m *mockAttendanceRepo) ListByDate(_ context.Context, courseID string, date time.Time) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.CourseID == courseID && r.Date.Equal(date) {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockAttendanceRepo) ListRange(_ context.Context, courseID, studentID string, from, to time.Time) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.CourseID != courseID || (studentID != "" && r.StudentID != studentID) {
			continue
		}
		if r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

// ── Mock GradeConfigRepository ──

type mockGradeConfigRepo struct {
	configs map[string]*model.GradeConfiguration
}

func newMockGradeConfigRepo() *mockGradeConfigRepo {
	return &mockGradeConfigRepo{configs: make(map[string]*model.GradeConfiguration)}
}

func (m *mockGradeConfigRepo) Create(_ context.Context, cfg *model.GradeConfiguration) error {
	if _, ok := m.configs[cfg.ConfigID]; ok {
		return pkgerrors.ErrDuplicateKey
	}
	cp := *cfg
	m.configs[cfg.ConfigID] = &cp
	return nil
}

func (m *mockGradeConfigRepo) GetByID(_ context.Context, id string) (*model.GradeConfiguration, error) {
	if c, ok := m.configs[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGradeConfigRepo) latest(courseID string, keep func(*model.GradeConfiguration) bool) (*model.GradeConfiguration, error) {
	var best *model.GradeConfiguration
	for _, c := range m.configs {
		if c.CourseID != courseID || c.SupersededAt != nil || !keep(c) {
			continue
		}
		if best == nil || c.CreatedAt.After(best.CreatedAt) {
			best = c
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *best
	return &cp, nil
}

func (m *mockGradeConfigRepo) Latest(_ context.Context, courseID string) (*model.GradeConfiguration, error) {
	return m.latest(courseID, func(*model.GradeConfiguration) bool { return true })
}

func (m *mockGradeConfigRepo) LatestCovering(_ context.Context, courseID string, day time.Time) (*model.GradeConfiguration, error) {
	return m.latest(courseID, func(c *model.GradeConfiguration) bool {
		return c.Covers(day)
	})
}

func (m *mockGradeConfigRepo) ListByCourse(_ context.Context, courseID string) ([]model.GradeConfiguration, error) {
	var result []model.GradeConfiguration
	for _, c := range m.configs {
		if c.CourseID == courseID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockGradeConfigRepo) MarkSuperseded(_ context.Context, id string, at time.Time) error {
	c, ok := m.configs[id]
	if !ok || c.SupersededAt != nil {
		return gorm.ErrRecordNotFound
	}
	c.SupersededAt = &at
	return nil
}

// ── Mock GradeScoreRepository ──

type mockGradeScoreRepo struct {
	scores []*model.GradeScore
	clock  time.Time
}

func newMockGradeScoreRepo() *mockGradeScoreRepo {
	return &mockGradeScoreRepo{clock: time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *mockGradeScoreRepo) Create(_ context.Context, score *model.GradeScore) error {
	m.clock = m.clock.Add(time.Second)
	score.GradeScoreID = fmt.Sprintf("score-%d", len(m.scores)+1)
	if score.CreatedAt.IsZero() {
		score.CreatedAt = m.clock
	}
	cp := *score
	m.scores = append(m.scores, &cp)
	return nil
}

func (m *mockGradeScoreRepo) Latest(_ context.Context, courseID, studentID string, from, to *time.Time) (*model.GradeScore, error) {
	var best *model.GradeScore
	for _, s := range m.scores {
		if s.CourseID != courseID || s.StudentID != studentID {
			continue
		}
		if from != nil && s.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && !s.CreatedAt.Before(*to) {
			continue
		}
		if best == nil || s.CreatedAt.After(best.CreatedAt) {
			best = s
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *best
	return &cp, nil
}

func (m *mockGradeScoreRepo) GetForConfig(_ context.Context, courseID, studentID, configID string) (*model.GradeScore, error) {
	var best *model.GradeScore
	for _, s := range m.scores {
		if s.CourseID == courseID && s.StudentID == studentID && s.ConfigID == configID {
			if best == nil || s.CreatedAt.After(best.CreatedAt) {
				best = s
			}
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *best
	return &cp, nil
}

func (m *mockGradeScoreRepo) UpdateComponent(_ context.Context, id, field string, value float64) error {
	for _, s := range m.scores {
		if s.GradeScoreID == id {
			s.SetComponent(field, value)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockGradeScoreRepo) LatestByCourse(ctx context.Context, courseID string) ([]model.GradeScore, error) {
	students := make(map[string]bool)
	for _, s := range m.scores {
		if s.CourseID == courseID {
			students[s.StudentID] = true
		}
	}
	var result []model.GradeScore
	for id := range students {
		s, _ := m.Latest(ctx, courseID, id, nil, nil)
		result = append(result, *s)
	}
	return result, nil
}

// ── Mock QuizRepository ──

type mockQuizRepo struct {
	quizzes map[string]*model.Quiz
}

func newMockQuizRepo() *mockQuizRepo {
	return &mockQuizRepo{quizzes: make(map[string]*model.Quiz)}
}

func (m *mockQuizRepo) Create(_ context.Context, quiz *model.Quiz) error {
	if quiz.QuizID == "" {
		quiz.QuizID = fmt.Sprintf("quiz-%d", len(m.quizzes)+1)
	}
	m.quizzes[quiz.QuizID] = quiz
	return nil
}

func (m *mockQuizRepo) GetByID(_ context.Context, id string) (*model.Quiz, error) {
	if q, ok := m.quizzes[id]; ok {
		cp := *q
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockQuizRepo) ListByCourse(_ context.Context, courseID string) ([]model.Quiz, error) {
	var result []model.Quiz
	for _, q := range m.quizzes {
		if q.CourseID == courseID {
			result = append(result, *q)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].QuizDate.Before(result[j].QuizDate) })
	return result, nil
}

func (m *mockQuizRepo) Update(_ context.Context, quiz *model.Quiz) error {
	m.quizzes[quiz.QuizID] = quiz
	return nil
}

func (m *mockQuizRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.quizzes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.quizzes, id)
	return nil
}

// ── Mock QuizScoreRepository ──

type mockQuizScoreRepo struct {
	// "quiz|student" → 成绩
	scores  map[string]*model.QuizScore
	upserts int
}

func newMockQuizScoreRepo() *mockQuizScoreRepo {
	return &mockQuizScoreRepo{scores: make(map[string]*model.QuizScore)}
}

func (m *mockQuizScoreRepo) Upsert(_ context.Context, score *model.QuizScore) error {
	m.upserts++
	cp := *score
	m.scores[score.QuizID+"|"+score.StudentID] = &cp
	return nil
}

func (m *mockQuizScoreRepo) ListByQuiz(_ context.Context, quizID string) ([]model.QuizScore, error) {
	var result []model.QuizScore
	for _, s := range m.scores {
		if s.QuizID == quizID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StudentID < result[j].StudentID })
	return result, nil
}

func (m *mockQuizScoreRepo) DeleteByQuiz(_ context.Context, quizID string) error {
	for key, s := range m.scores {
		if s.QuizID == quizID {
			delete(m.scores, key)
		}
	}
	return nil
}

// ── Mock RubricRepository ──

type mockRubricRepo struct {
	items  map[string]*model.GradeItem
	grades map[string]*model.Grade
}

func newMockRubricRepo() *mockRubricRepo {
	return &mockRubricRepo{
		items:  make(map[string]*model.GradeItem),
		grades: make(map[string]*model.Grade),
	}
}

func (m *mockRubricRepo) EnsureItem(_ context.Context, courseID, itemType string) (*model.GradeItem, error) {
	id := courseID + "-" + itemType
	if it, ok := m.items[id]; ok {
		return it, nil
	}
	it := &model.GradeItem{GradeItemID: id, CourseID: courseID, Type: itemType, Weight: 50}
	m.items[id] = it
	return it, nil
}

func (m *mockRubricRepo) ListItems(_ context.Context, courseID string) ([]model.GradeItem, error) {
	var result []model.GradeItem
	for _, it := range m.items {
		if it.CourseID == courseID {
			result = append(result, *it)
		}
	}
	return result, nil
}

func (m *mockRubricRepo) UpsertGrade(_ context.Context, grade *model.Grade) error {
	cp := *grade
	m.grades[grade.StudentID+"|"+grade.GradeItemID] = &cp
	return nil
}

func (m *mockRubricRepo) ListGrades(_ context.Context, courseID string) ([]model.Grade, error) {
	var result []model.Grade
	for _, g := range m.grades {
		if it, ok := m.items[g.GradeItemID]; ok && it.CourseID == courseID {
			result = append(result, *g)
		}
	}
	return result, nil
}

// ── 辅助函数 ──

func paginate[T any](list []T, offset, limit int) []T {
	if offset >= len(list) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(list) {
		end = len(list)
	}
	return list[offset:end]
}
