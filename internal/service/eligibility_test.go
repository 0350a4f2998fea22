package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func setupTestEligibility(ttl time.Duration) (*EligibilityIndex, *mockStore) {
	store := newMockStore()
	store.addRule("t1", "g1")
	store.addRule("t1", "g2")
	store.addRule("t2", "g3")
	return NewEligibilityIndex(&mockGroupConstraintRepo{s: store}, ttl, zap.NewNop()), store
}

func TestEligibilityIndex_MayJoin(t *testing.T) {
	idx, _ := setupTestEligibility(0)

	tests := []struct {
		name   string
		theory string
		lab    string
		want   bool
	}{
		{"有规则", "t1", "g1", true},
		{"同理论班另一组", "t1", "g2", true},
		{"其他理论班的组", "t1", "g3", false},
		{"未知理论班", "t9", "g1", false},
		{"空理论班", "", "g1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := idx.MayJoin(context.Background(), tt.theory, tt.lab)
			if err != nil {
				t.Fatalf("MayJoin 失败: %v", err)
			}
			if got != tt.want {
				t.Errorf("MayJoin(%s, %s) = %v，期望 %v", tt.theory, tt.lab, got, tt.want)
			}
		})
	}
}

func TestEligibilityIndex_CachesWithinTTL(t *testing.T) {
	idx, store := setupTestEligibility(time.Minute)
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	idx.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if ok, _ := idx.MayJoin(context.Background(), "t1", "g1"); !ok {
			t.Fatal("应允许加入")
		}
	}
	if store.ruleQueries != 1 {
		t.Errorf("缓存有效期内只应查询 1 次，实际 %d", store.ruleQueries)
	}

	now = now.Add(2 * time.Minute)
	_, _ = idx.MayJoin(context.Background(), "t1", "g1")
	if store.ruleQueries != 2 {
		t.Errorf("缓存过期后应重新查询，实际 %d 次", store.ruleQueries)
	}

	idx.Invalidate()
	_, _ = idx.MayJoin(context.Background(), "t1", "g1")
	if store.ruleQueries != 3 {
		t.Errorf("Invalidate 后应重新查询，实际 %d 次", store.ruleQueries)
	}
}

func TestEligibilityIndex_NoCacheWhenTTLZero(t *testing.T) {
	idx, store := setupTestEligibility(0)

	_, _ = idx.MayJoin(context.Background(), "t1", "g1")
	_, _ = idx.MayJoin(context.Background(), "t1", "g1")
	if store.ruleQueries != 2 {
		t.Errorf("ttl=0 时每次都应查询，实际 %d 次", store.ruleQueries)
	}
}

func TestEligibilityIndex_RepoError(t *testing.T) {
	idx, store := setupTestEligibility(time.Minute)
	store.rulesErr = errors.New("connection refused")

	if _, err := idx.MayJoin(context.Background(), "t1", "g1"); err == nil {
		t.Fatal("查询失败时应返回错误")
	}

	// 错误结果不应被缓存
	store.rulesErr = nil
	ok, err := idx.MayJoin(context.Background(), "t1", "g1")
	if err != nil || !ok {
		t.Errorf("恢复后应允许加入，ok=%v err=%v", ok, err)
	}
}
