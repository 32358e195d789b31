package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/viniuy/didasko-final-sub002/config"
	"github.com/viniuy/didasko-final-sub002/internal/model"
	"github.com/viniuy/didasko-final-sub002/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWT() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "middleware-test-secret-2026",
		AccessTokenTTL: time.Hour,
		Issuer:         "didasko",
	})
}

// withRole 模拟 JWTAuth 已注入角色
func withRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if role != "" {
			c.Set("role", role)
		}
		c.Next()
	}
}

func okHandler(c *gin.Context) { c.Status(http.StatusOK) }

func TestRequireCapability(t *testing.T) {
	tests := []struct {
		name string
		role string
		cap  model.Capability
		want int
	}{
		{"教师录入考勤", model.RoleFaculty, model.CapAttendanceWrite, http.StatusOK},
		{"教师不可管理课程", model.RoleFaculty, model.CapCourseManage, http.StatusForbidden},
		{"管理员不可录入成绩", model.RoleAdmin, model.CapGradeWrite, http.StatusForbidden},
		{"教务主任配置评分", model.RoleAcademicHead, model.CapGradeConfigure, http.StatusOK},
		{"未知角色", "GUEST", model.CapCourseRead, http.StatusForbidden},
		{"未认证", "", model.CapCourseRead, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/x", withRole(tt.role), RequireCapability(tt.cap), okHandler)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/x", nil)
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("期望 %d，实际 %d", tt.want, w.Code)
			}
		})
	}
}

func TestJWTAuth(t *testing.T) {
	mgr := newTestJWT()
	token, err := mgr.GenerateAccessToken("user-1", model.RoleFaculty, "Ana Cruz")
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"有效 Token", "Bearer " + token, http.StatusOK},
		{"缺少认证头", "", http.StatusUnauthorized},
		{"格式错误", "Token " + token, http.StatusUnauthorized},
		{"伪造 Token", "Bearer not.a.token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser, gotRole string
			r := gin.New()
			r.GET("/x", JWTAuth(mgr, nil, zap.NewNop()), func(c *gin.Context) {
				gotUser = c.GetString("user_id")
				gotRole = c.GetString("role")
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("期望 %d，实际 %d", tt.want, w.Code)
			}
			if tt.want == http.StatusOK && (gotUser != "user-1" || gotRole != model.RoleFaculty) {
				t.Errorf("上下文注入错误: user=%q role=%q", gotUser, gotRole)
			}
		})
	}
}
