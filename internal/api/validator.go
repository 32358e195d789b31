package api

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/viniuy/didasko-final-sub002/internal/model"
	"github.com/viniuy/didasko-final-sub002/pkg/dateutil"
)

// RegisterValidators 在 gin 的校验引擎上注册自定义标签
//   - isodate：YYYY-MM-DD
//   - attendance_status：PRESENT / LATE / ABSENT / EXCUSED（NOT_SET 不可写入）
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("gin 校验引擎类型异常: %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("isodate", isoDate); err != nil {
		return fmt.Errorf("注册 isodate 失败: %w", err)
	}
	if err := v.RegisterValidation("attendance_status", attendanceStatus); err != nil {
		return fmt.Errorf("注册 attendance_status 失败: %w", err)
	}
	return nil
}

func isoDate(fl validator.FieldLevel) bool {
	_, err := dateutil.Parse(fl.Field().String())
	return err == nil
}

func attendanceStatus(fl validator.FieldLevel) bool {
	return model.AttendanceStatus(fl.Field().String()).Valid()
}
