package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel 通用审计字段（业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:uuid"                          json:"updated_by,omitempty"`
}

// SoftDeleteModel 支持软删除的审计字段
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"    json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:uuid" json:"deleted_by,omitempty"`
}

// Audit 新建记录时填充创建人与更新人
func (b *BaseModel) Audit(callerID string) {
	if callerID == "" {
		return
	}
	b.CreatedBy = &callerID
	b.UpdatedBy = &callerID
}

// AuditUpdate 修改已有记录时只填充更新人，创建人保持原值
func (b *BaseModel) AuditUpdate(callerID string) {
	if callerID == "" {
		return
	}
	b.UpdatedBy = &callerID
}
