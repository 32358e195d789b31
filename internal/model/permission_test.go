package model

import (
	"sort"
	"testing"
)

func TestCan(t *testing.T) {
	tests := []struct {
		role string
		cap  Capability
		want bool
	}{
		{RoleAdmin, CapUserManage, true},
		{RoleAdmin, CapAttendanceWrite, false},
		{RoleAdmin, CapGradeConfigure, false},
		{RoleAcademicHead, CapCourseManage, true},
		{RoleAcademicHead, CapUserManage, false},
		{RoleFaculty, CapQuizManage, true},
		{RoleFaculty, CapCourseManage, false},
		{"", CapCourseRead, false},
		{"STUDENT", CapCourseRead, false},
	}

	for _, tt := range tests {
		if got := Can(tt.role, tt.cap); got != tt.want {
			t.Errorf("Can(%q, %q) = %v，期望 %v", tt.role, tt.cap, got, tt.want)
		}
	}
}

func TestCapabilitiesOf(t *testing.T) {
	caps := CapabilitiesOf(RoleFaculty)
	if !sort.StringsAreSorted(caps) {
		t.Errorf("能力列表应有序: %v", caps)
	}
	if len(caps) != len(PermissionTable[RoleFaculty].Capabilities) {
		t.Errorf("能力数量不一致: %d", len(caps))
	}

	if got := CapabilitiesOf("UNKNOWN"); got == nil || len(got) != 0 {
		t.Errorf("未知角色应返回空切片，实际 %v", got)
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []string{RoleAdmin, RoleAcademicHead, RoleFaculty} {
		if !ValidRole(r) {
			t.Errorf("%s 应为合法角色", r)
		}
	}
	if ValidRole("admin") {
		t.Error("角色区分大小写")
	}
}
