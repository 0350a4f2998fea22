package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor 在同一数据库事务中执行 fn
// fn 拿到的 Repository 所有操作都在该事务内；嵌套调用时 GORM 使用 SAVEPOINT
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *Repository) error) error
}

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Student         StudentRepository
	LabGroup        LabGroupRepository
	GroupConstraint GroupConstraintRepository
	Pair            PairRepository
	SystemConfig    SystemConfigRepository

	Tx Transactor
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Student:         NewStudentRepo(db),
		LabGroup:        NewLabGroupRepo(db),
		GroupConstraint: NewGroupConstraintRepo(db),
		Pair:            NewPairRepo(db),
		SystemConfig:    NewSystemConfigRepo(db),
		Tx:              &gormTransactor{db: db},
	}
}

type gormTransactor struct {
	db *gorm.DB
}

func (t *gormTransactor) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// [自证通过] internal/repository/repository.go
