package model

import "sort"

// ── 角色 ──

const (
	RoleAdmin        = "ADMIN"
	RoleAcademicHead = "ACADEMIC_HEAD"
	RoleFaculty      = "FACULTY"
)

// Capability 权限能力标识
type Capability string

const (
	CapCourseManage    Capability = "course:manage"
	CapCourseRead      Capability = "course:read"
	CapAttendanceWrite Capability = "attendance:write"
	CapAttendanceRead  Capability = "attendance:read"
	CapGradeConfigure  Capability = "grade:configure"
	CapGradeWrite      Capability = "grade:write"
	CapGradeRead       Capability = "grade:read"
	CapQuizManage      Capability = "quiz:manage"
	CapStudentManage   Capability = "student:manage"
	CapUserManage      Capability = "user:manage"
	CapReportExport    Capability = "report:export"
)

// RolePermission 角色 → 能力集合
type RolePermission struct {
	Role         string
	Capabilities map[Capability]struct{}
}

func newRolePermission(role string, caps ...Capability) RolePermission {
	set := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return RolePermission{Role: role, Capabilities: set}
}

// PermissionTable 权限表，由访问控制中间件统一求值，路由中不写死角色
var PermissionTable = map[string]RolePermission{
	RoleAdmin: newRolePermission(RoleAdmin,
		CapCourseManage, CapCourseRead,
		CapAttendanceRead,
		CapGradeRead,
		CapStudentManage, CapUserManage,
		CapReportExport,
	),
	RoleAcademicHead: newRolePermission(RoleAcademicHead,
		CapCourseManage, CapCourseRead,
		CapAttendanceWrite, CapAttendanceRead,
		CapGradeConfigure, CapGradeWrite, CapGradeRead,
		CapQuizManage, CapStudentManage,
		CapReportExport,
	),
	RoleFaculty: newRolePermission(RoleFaculty,
		CapCourseRead,
		CapAttendanceWrite, CapAttendanceRead,
		CapGradeConfigure, CapGradeWrite, CapGradeRead,
		CapQuizManage, CapStudentManage,
		CapReportExport,
	),
}

// Can 判断角色是否拥有指定能力；未知角色一律拒绝
func Can(role string, capability Capability) bool {
	perm, ok := PermissionTable[role]
	if !ok {
		return false
	}
	_, ok = perm.Capabilities[capability]
	return ok
}

// ValidRole 判断角色是否合法
func ValidRole(role string) bool {
	_, ok := PermissionTable[role]
	return ok
}

// CapabilitiesOf 角色拥有的能力列表（有序）
func CapabilitiesOf(role string) []string {
	perm, ok := PermissionTable[role]
	if !ok {
		return []string{}
	}
	caps := make([]string, 0, len(perm.Capabilities))
	for c := range perm.Capabilities {
		caps = append(caps, string(c))
	}
	sort.Strings(caps)
	return caps
}
