package handler

import "github.com/viniuy/didasko-final-sub002/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	User        *UserHandler
	Student     *StudentHandler
	Course      *CourseHandler
	Group       *GroupHandler
	Attendance  *AttendanceHandler
	GradeConfig *GradeConfigHandler
	Grade       *GradeHandler
	Quiz        *QuizHandler
	Export      *ExportHandler
	Access      *AccessHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		User:        NewUserHandler(svc.User),
		Student:     NewStudentHandler(svc.Student),
		Course:      NewCourseHandler(svc.Course),
		Group:       NewGroupHandler(svc.Group),
		Attendance:  NewAttendanceHandler(svc.Attendance),
		GradeConfig: NewGradeConfigHandler(svc.GradeConfig),
		Grade:       NewGradeHandler(svc.GradeScore, svc.Grading),
		Quiz:        NewQuizHandler(svc.Quiz),
		Export:      NewExportHandler(svc.Export),
		Access:      NewAccessHandler(svc.Access),
	}
}
