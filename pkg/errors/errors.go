package errors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicateKey 唯一约束冲突（仓储层兜底映射，业务层仍需显式预检查）
var ErrDuplicateKey = errors.New("记录已存在")

// PostgreSQL 错误码
const (
	pgUniqueViolation = "23505"
	pgInvalidText     = "22P02" // invalid_text_representation，如非法 UUID 字面量
)

// IsUniqueViolation 判断错误是否为 PostgreSQL 唯一约束冲突
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return errors.Is(err, ErrDuplicateKey)
}

// MapDuplicate 将唯一约束冲突统一转换为 ErrDuplicateKey，其余错误原样返回
func MapDuplicate(err error) error {
	if err == nil {
		return nil
	}
	if IsUniqueViolation(err) {
		return ErrDuplicateKey
	}
	return err
}

// IsInvalidText 判断错误是否为 PostgreSQL 非法文本表示（路径参数不是合法 UUID 等）
func IsInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgInvalidText
	}
	return false
}

// MapInvalidID 按 ID 查询时，非法 ID 与不存在的 ID 同样视为 gorm.ErrRecordNotFound
func MapInvalidID(err error) error {
	if IsInvalidText(err) {
		return gorm.ErrRecordNotFound
	}
	return err
}
