package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"labassign/internal/dto"
	"labassign/internal/model"
	"labassign/internal/repository"
	"labassign/pkg/metrics"
)

// PairService 结对业务接口
//
// 结对状态机：
//   - 无记录 → requester 发起 → 未确认（Created）
//   - 未确认 A→B，B 发起 B→A → 原记录确认（Validated），不新增记录
//   - 已确认任一方解除 → 软解除（validated=false，记录保留，记录发起人）
//   - 未确认任一方解除 → 删除记录
type PairService interface {
	RequestPair(ctx context.Context, requesterID string, req *dto.CreatePairRequest) (*dto.PairActionResponse, error)
	BreakPair(ctx context.Context, actorID, pairID string) (*dto.PairActionResponse, error)
	// FindPair 返回学生发起的申请，否则返回其作为对方的已确认结对；都没有时返回 nil
	FindPair(ctx context.Context, studentID string) (*dto.PairResponse, error)
	// ListCandidates 列出可结对的同学（不在任何已确认结对中）
	ListCandidates(ctx context.Context, studentID string, page *dto.PaginationRequest) ([]dto.StudentBriefResponse, int64, error)
}

type pairService struct {
	repo    *repository.Repository
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewPairService 创建 PairService 实例
func NewPairService(repo *repository.Repository, m *metrics.Metrics, logger *zap.Logger) PairService {
	return &pairService{repo: repo, metrics: m, logger: logger}
}

// ════════════════════════════════════════════════════════════
// RequestPair
// ════════════════════════════════════════════════════════════

func (s *pairService) RequestPair(ctx context.Context, requesterID string, req *dto.CreatePairRequest) (*dto.PairActionResponse, error) {
	targetID := req.TargetID
	if requesterID == targetID {
		s.metrics.ObservePair("request", string(OutcomeSelfPair))
		return nil, ErrSelfPair
	}

	var (
		outcome Outcome
		result  *model.Pair
	)

	err := s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		// 按 ID 顺序锁定双方，同一对学生上的申请、确认、解除串行执行
		locked, err := tx.Student.LockByIDs(ctx, []string{requesterID, targetID})
		if err != nil {
			return err
		}
		if len(locked) != 2 {
			return ErrStudentNotFound
		}

		// 1. 发起人已向他人发起申请，或已与他人确认结对
		own, err := tx.Pair.ListInvolving(ctx, requesterID)
		if err != nil {
			return err
		}
		for i := range own {
			p := &own[i]
			if p.RequesterID == requesterID && p.TargetID != targetID {
				return ErrAlreadyPaired
			}
			if p.TargetID == requesterID && p.Validated && p.RequesterID != targetID {
				return ErrAlreadyPaired
			}
		}

		// 2. 对方涉及的全部申请
		peers, err := tx.Pair.ListInvolving(ctx, targetID)
		if err != nil {
			return err
		}

		if len(peers) == 0 {
			pair := &model.Pair{
				RequesterID: requesterID,
				TargetID:    targetID,
			}
			if err := tx.Pair.Create(ctx, pair); err != nil {
				return err
			}
			outcome, result = OutcomeCreated, pair
			return nil
		}

		// 对方已向发起人申请：确认原记录
		for i := range peers {
			p := &peers[i]
			if p.RequesterID == targetID && p.TargetID == requesterID {
				p.Validated = true
				p.BreakRequestedBy = nil
				if err := tx.Pair.UpdateState(ctx, p); err != nil {
					return err
				}
				outcome, result = OutcomeValidated, p
				return nil
			}
		}

		// 重复提交同一申请
		for i := range peers {
			p := &peers[i]
			if p.RequesterID == requesterID && p.TargetID == targetID {
				outcome, result = OutcomeCreated, p
				return nil
			}
		}

		return ErrTargetUnavailable
	})
	if err != nil {
		s.metrics.ObservePair("request", string(OutcomeOf(err)))
		if OutcomeOf(err) == OutcomeError {
			s.logger.Error("结对申请失败",
				zap.String("requester_id", requesterID),
				zap.String("target_id", targetID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.metrics.ObservePair("request", string(outcome))
	s.logger.Info("结对申请",
		zap.String("requester_id", requesterID),
		zap.String("target_id", targetID),
		zap.String("outcome", string(outcome)),
	)

	return &dto.PairActionResponse{
		Outcome: string(outcome),
		Pair:    toPairResponse(result, nil),
	}, nil
}

// ════════════════════════════════════════════════════════════
// BreakPair
// ════════════════════════════════════════════════════════════

func (s *pairService) BreakPair(ctx context.Context, actorID, pairID string) (*dto.PairActionResponse, error) {
	var (
		result    *model.Pair
		dissolved bool
	)

	err := s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		pair, err := tx.Pair.GetByID(ctx, pairID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPairNotFound
			}
			return err
		}
		if !pair.Involves(actorID) {
			return ErrNotPairMember
		}

		if _, err := tx.Student.LockByIDs(ctx, []string{pair.RequesterID, pair.TargetID}); err != nil {
			return err
		}
		// 加锁后重新读取，期间可能已被对方解除
		pair, err = tx.Pair.GetByID(ctx, pairID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPairNotFound
			}
			return err
		}

		// 已软解除：保留记录，重复解除不做修改
		if pair.BreakRequestedBy != nil {
			result = pair
			return nil
		}

		if pair.Validated {
			pair.Validated = false
			pair.BreakRequestedBy = &actorID
			if err := tx.Pair.UpdateState(ctx, pair); err != nil {
				return err
			}
			result = pair
			return nil
		}

		if err := tx.Pair.Delete(ctx, pair.PairID); err != nil {
			return err
		}
		dissolved = true
		return nil
	})
	if err != nil {
		s.metrics.ObservePair("break", string(OutcomeOf(err)))
		if OutcomeOf(err) == OutcomeError {
			s.logger.Error("解除结对失败",
				zap.String("actor_id", actorID),
				zap.String("pair_id", pairID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.metrics.ObservePair("break", string(OutcomeBroken))
	s.logger.Info("解除结对",
		zap.String("actor_id", actorID),
		zap.String("pair_id", pairID),
		zap.Bool("dissolved", dissolved),
	)

	return &dto.PairActionResponse{
		Outcome:   string(OutcomeBroken),
		Pair:      toPairResponse(result, nil),
		Dissolved: dissolved,
	}, nil
}

// ════════════════════════════════════════════════════════════
// FindPair
// ════════════════════════════════════════════════════════════

func (s *pairService) FindPair(ctx context.Context, studentID string) (*dto.PairResponse, error) {
	pair, err := findPair(ctx, s.repo, studentID)
	if err != nil {
		s.logger.Error("查询结对失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	if pair == nil {
		return nil, nil
	}

	partner, err := s.repo.Student.GetByID(ctx, pair.PartnerOf(studentID))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询搭档信息失败", zap.String("pair_id", pair.PairID), zap.Error(err))
		return nil, err
	}

	return toPairResponse(pair, partner), nil
}

// findPair 结对查询的核心逻辑，供 Service 之间在同一事务内复用
func findPair(ctx context.Context, repo *repository.Repository, studentID string) (*model.Pair, error) {
	pair, err := repo.Pair.GetByRequester(ctx, studentID)
	if err == nil {
		return pair, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pair, err = repo.Pair.GetValidatedByTarget(ctx, studentID)
	if err == nil {
		return pair, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

// validatedPartnerID 返回学生已确认搭档的 ID，没有时返回空串
func validatedPartnerID(ctx context.Context, repo *repository.Repository, studentID string) (string, error) {
	pair, err := findPair(ctx, repo, studentID)
	if err != nil {
		return "", err
	}
	if pair == nil || !pair.Validated {
		return "", nil
	}
	return pair.PartnerOf(studentID), nil
}

// ════════════════════════════════════════════════════════════
// ListCandidates
// ════════════════════════════════════════════════════════════

func (s *pairService) ListCandidates(ctx context.Context, studentID string, page *dto.PaginationRequest) ([]dto.StudentBriefResponse, int64, error) {
	students, total, err := s.repo.Student.ListUnpaired(ctx, studentID, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询可结对学生失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.StudentBriefResponse, 0, len(students))
	for i := range students {
		list = append(list, toStudentBrief(&students[i]))
	}
	return list, total, nil
}

// ── 转换辅助 ──

func toPairResponse(p *model.Pair, partner *model.Student) *dto.PairResponse {
	if p == nil {
		return nil
	}
	resp := &dto.PairResponse{
		ID:               p.PairID,
		RequesterID:      p.RequesterID,
		TargetID:         p.TargetID,
		Validated:        p.Validated,
		BreakRequestedBy: p.BreakRequestedBy,
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
	}
	if partner != nil {
		brief := toStudentBrief(partner)
		resp.Partner = &brief
	}
	return resp
}

func toStudentBrief(s *model.Student) dto.StudentBriefResponse {
	resp := dto.StudentBriefResponse{
		ID:         s.StudentID,
		Name:       s.FullName(),
		Email:      s.Email,
		LabGroupID: s.LabGroupID,
	}
	if s.TheoryGroup != nil {
		resp.TheoryGroup = s.TheoryGroup.GroupName
	}
	return resp
}

// [自证通过] internal/service/pair_service.go
