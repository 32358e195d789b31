package model

import "testing"

func TestBaseModel_Audit(t *testing.T) {
	var b BaseModel
	b.Audit("")
	if b.CreatedBy != nil || b.UpdatedBy != nil {
		t.Fatal("空操作人不应写入审计字段")
	}

	b.Audit("u1")
	if b.CreatedBy == nil || *b.CreatedBy != "u1" || b.UpdatedBy == nil || *b.UpdatedBy != "u1" {
		t.Fatalf("新建时创建人与更新人均应为 u1，实际 %v / %v", b.CreatedBy, b.UpdatedBy)
	}

	b.AuditUpdate("u2")
	if *b.CreatedBy != "u1" {
		t.Errorf("更新不应改变创建人，实际 %s", *b.CreatedBy)
	}
	if *b.UpdatedBy != "u2" {
		t.Errorf("更新人应为 u2，实际 %s", *b.UpdatedBy)
	}

	// 历史数据创建人为空时，更新也不应补写
	var legacy BaseModel
	legacy.AuditUpdate("u3")
	if legacy.CreatedBy != nil {
		t.Errorf("更新不应补写创建人，实际 %s", *legacy.CreatedBy)
	}
}
