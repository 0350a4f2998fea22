package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"labassign/internal/model"
	"labassign/internal/repository"
	pkgerrors "labassign/pkg/errors"
)

// ── 内存数据仓 ──
//
// 所有 mock Repository 共享同一个 mockStore。
// 事务：最外层串行执行（txMu），开始时快照，fn 返回错误时整体恢复；
// 嵌套事务只做快照 / 恢复，对应 GORM 的 SAVEPOINT。

type mockStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	theoryGroups map[string]*model.TheoryGroup
	labGroups    map[string]*model.LabGroup
	students     map[string]*model.Student
	pairs        map[string]*model.Pair
	rules        []model.GroupConstraint
	cfg          *model.SystemConfig

	seq      int
	baseTime time.Time

	// 故障注入
	incrementHook func(groupID string) error
	rulesErr      error

	// 观测
	lockLog      [][]string
	groupLockLog [][]string
	lockKinds    []string
	ruleQueries  int
}

func newMockStore() *mockStore {
	return &mockStore{
		theoryGroups: make(map[string]*model.TheoryGroup),
		labGroups:    make(map[string]*model.LabGroup),
		students:     make(map[string]*model.Student),
		pairs:        make(map[string]*model.Pair),
		cfg:          &model.SystemConfig{Singleton: true},
		baseTime:     time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (s *mockStore) repository(nested bool) *repository.Repository {
	return &repository.Repository{
		Student:         &mockStudentRepo{s: s},
		LabGroup:        &mockLabGroupRepo{s: s},
		GroupConstraint: &mockGroupConstraintRepo{s: s},
		Pair:            &mockPairRepo{s: s},
		SystemConfig:    &mockSystemConfigRepo{s: s},
		Tx:              &mockTransactor{s: s, nested: nested},
	}
}

type mockSnapshot struct {
	labGroups map[string]*model.LabGroup
	students  map[string]*model.Student
	pairs     map[string]*model.Pair
	cfg       *model.SystemConfig
}

func (s *mockStore) snapshot() mockSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := mockSnapshot{
		labGroups: make(map[string]*model.LabGroup, len(s.labGroups)),
		students:  make(map[string]*model.Student, len(s.students)),
		pairs:     make(map[string]*model.Pair, len(s.pairs)),
	}
	for k, v := range s.labGroups {
		snap.labGroups[k] = copyLabGroup(v)
	}
	for k, v := range s.students {
		snap.students[k] = copyStudent(v)
	}
	for k, v := range s.pairs {
		snap.pairs[k] = copyPair(v)
	}
	if s.cfg != nil {
		c := *s.cfg
		snap.cfg = &c
	}
	return snap
}

func (s *mockStore) restore(snap mockSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labGroups = snap.labGroups
	s.students = snap.students
	s.pairs = snap.pairs
	s.cfg = snap.cfg
}

func (s *mockStore) nextID(prefix string) (string, time.Time) {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq), s.baseTime.Add(time.Duration(s.seq) * time.Second)
}

func copyStudent(st *model.Student) *model.Student {
	c := *st
	if st.LabGroupID != nil {
		v := *st.LabGroupID
		c.LabGroupID = &v
	}
	if st.TheoryGroupID != nil {
		v := *st.TheoryGroupID
		c.TheoryGroupID = &v
	}
	c.TheoryGroup = nil
	c.LabGroup = nil
	return &c
}

func copyLabGroup(g *model.LabGroup) *model.LabGroup {
	c := *g
	return &c
}

func copyPair(p *model.Pair) *model.Pair {
	c := *p
	if p.BreakRequestedBy != nil {
		v := *p.BreakRequestedBy
		c.BreakRequestedBy = &v
	}
	return &c
}

// ── Mock Transactor ──

type mockTransactor struct {
	s      *mockStore
	nested bool
}

func (t *mockTransactor) Transaction(_ context.Context, fn func(tx *repository.Repository) error) error {
	if !t.nested {
		t.s.txMu.Lock()
		defer t.s.txMu.Unlock()
	}

	snap := t.s.snapshot()
	if err := fn(t.s.repository(true)); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	s *mockStore
}

func (m *mockStudentRepo) withTheoryGroup(st *model.Student) *model.Student {
	c := copyStudent(st)
	if c.TheoryGroupID != nil {
		if tg, ok := m.s.theoryGroups[*c.TheoryGroupID]; ok {
			tgc := *tg
			c.TheoryGroup = &tgc
		}
	}
	return c
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if st, ok := m.s.students[id]; ok {
		return m.withTheoryGroup(st), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) LockByIDs(_ context.Context, ids []string) ([]model.Student, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	m.s.lockLog = append(m.s.lockLog, sorted)
	m.s.lockKinds = append(m.s.lockKinds, "student")

	var result []model.Student
	seen := make(map[string]bool)
	for _, id := range sorted {
		if seen[id] {
			continue
		}
		seen[id] = true
		if st, ok := m.s.students[id]; ok {
			result = append(result, *copyStudent(st))
		}
	}
	return result, nil
}

func (m *mockStudentRepo) SetLabGroup(_ context.Context, id string, labGroupID, expected *string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	st, ok := m.s.students[id]
	if !ok {
		return pkgerrors.ErrAssignmentConflict
	}
	switch {
	case expected == nil && st.LabGroupID != nil:
		return pkgerrors.ErrAssignmentConflict
	case expected != nil && (st.LabGroupID == nil || *st.LabGroupID != *expected):
		return pkgerrors.ErrAssignmentConflict
	}

	if labGroupID == nil {
		st.LabGroupID = nil
	} else {
		v := *labGroupID
		st.LabGroupID = &v
	}
	return nil
}

func (m *mockStudentRepo) ListByLabGroup(_ context.Context, labGroupID string) ([]model.Student, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	var result []model.Student
	for _, st := range m.s.students {
		if st.InLabGroup(labGroupID) {
			result = append(result, *m.withTheoryGroup(st))
		}
	}
	sortStudents(result)
	return result, nil
}

func (m *mockStudentRepo) ListUnpaired(_ context.Context, excludeID string, offset, limit int) ([]model.Student, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	paired := make(map[string]bool)
	for _, p := range m.s.pairs {
		if p.Validated {
			paired[p.RequesterID] = true
			paired[p.TargetID] = true
		}
	}

	var all []model.Student
	for id, st := range m.s.students {
		if id == excludeID || paired[id] {
			continue
		}
		all = append(all, *m.withTheoryGroup(st))
	}
	sortStudents(all)

	total := int64(len(all))
	if offset >= len(all) {
		return []model.Student{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func sortStudents(list []model.Student) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].LastName != list[j].LastName {
			return list[i].LastName < list[j].LastName
		}
		if list[i].FirstName != list[j].FirstName {
			return list[i].FirstName < list[j].FirstName
		}
		return list[i].StudentID < list[j].StudentID
	})
}

// ── Mock LabGroupRepository ──

type mockLabGroupRepo struct {
	s *mockStore
}

func (m *mockLabGroupRepo) GetByID(_ context.Context, id string) (*model.LabGroup, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if g, ok := m.s.labGroups[id]; ok {
		return copyLabGroup(g), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLabGroupRepo) GetByName(_ context.Context, name string) (*model.LabGroup, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, g := range m.s.labGroups {
		if g.GroupName == name {
			return copyLabGroup(g), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLabGroupRepo) List(_ context.Context) ([]model.LabGroup, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	var result []model.LabGroup
	for _, g := range m.s.labGroups {
		result = append(result, *copyLabGroup(g))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].GroupName < result[j].GroupName })
	return result, nil
}

func (m *mockLabGroupRepo) LockByIDs(_ context.Context, ids []string) ([]model.LabGroup, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	m.s.groupLockLog = append(m.s.groupLockLog, sorted)
	m.s.lockKinds = append(m.s.lockKinds, "group")

	var result []model.LabGroup
	for _, id := range sorted {
		if g, ok := m.s.labGroups[id]; ok {
			result = append(result, *copyLabGroup(g))
		}
	}
	return result, nil
}

func (m *mockLabGroupRepo) IncrementCounter(_ context.Context, id string) error {
	if m.s.incrementHook != nil {
		if err := m.s.incrementHook(id); err != nil {
			return err
		}
	}

	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	g, ok := m.s.labGroups[id]
	if !ok || g.Counter >= g.MaxNumberStudents {
		return pkgerrors.ErrGroupFull
	}
	g.Counter++
	return nil
}

func (m *mockLabGroupRepo) DecrementCounter(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	g, ok := m.s.labGroups[id]
	if !ok || g.Counter <= 0 {
		return pkgerrors.ErrAssignmentConflict
	}
	g.Counter--
	return nil
}

// ── Mock GroupConstraintRepository ──

type mockGroupConstraintRepo struct {
	s *mockStore
}

func (m *mockGroupConstraintRepo) ListLabGroupIDs(_ context.Context, theoryGroupID string) ([]string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	m.s.ruleQueries++
	if m.s.rulesErr != nil {
		return nil, m.s.rulesErr
	}

	var ids []string
	for _, r := range m.s.rules {
		if r.TheoryGroupID == theoryGroupID {
			ids = append(ids, r.LabGroupID)
		}
	}
	return ids, nil
}

// ── Mock PairRepository ──

type mockPairRepo struct {
	s *mockStore
}

func (m *mockPairRepo) GetByID(_ context.Context, id string) (*model.Pair, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if p, ok := m.s.pairs[id]; ok {
		return copyPair(p), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPairRepo) GetByRequester(_ context.Context, requesterID string) (*model.Pair, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, p := range m.s.pairs {
		if p.RequesterID == requesterID {
			return copyPair(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPairRepo) GetValidatedByTarget(_ context.Context, targetID string) (*model.Pair, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, p := range m.sorted() {
		if p.TargetID == targetID && p.Validated {
			return copyPair(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPairRepo) ListInvolving(_ context.Context, studentID string) ([]model.Pair, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	var result []model.Pair
	for _, p := range m.sorted() {
		if p.Involves(studentID) {
			result = append(result, *copyPair(p))
		}
	}
	return result, nil
}

func (m *mockPairRepo) ListValidated(_ context.Context) ([]model.Pair, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	var result []model.Pair
	for _, p := range m.sorted() {
		if p.Validated {
			result = append(result, *copyPair(p))
		}
	}
	return result, nil
}

func (m *mockPairRepo) Create(_ context.Context, pair *model.Pair) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	// requester_id 唯一约束
	for _, p := range m.s.pairs {
		if p.RequesterID == pair.RequesterID {
			return fmt.Errorf("duplicate key value violates unique constraint \"pairs_requester_id_key\"")
		}
	}
	if pair.PairID == "" {
		pair.PairID, pair.CreatedAt = m.s.nextID("pair")
	}
	m.s.pairs[pair.PairID] = copyPair(pair)
	return nil
}

func (m *mockPairRepo) UpdateState(_ context.Context, pair *model.Pair) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	p, ok := m.s.pairs[pair.PairID]
	if !ok {
		return nil
	}
	p.Validated = pair.Validated
	p.BreakRequestedBy = nil
	if pair.BreakRequestedBy != nil {
		v := *pair.BreakRequestedBy
		p.BreakRequestedBy = &v
	}
	return nil
}

func (m *mockPairRepo) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.pairs, id)
	return nil
}

// sorted 按创建时间升序返回全部结对，调用方需持有 mu
func (m *mockPairRepo) sorted() []*model.Pair {
	list := make([]*model.Pair, 0, len(m.s.pairs))
	for _, p := range m.s.pairs {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list
}

// ── Mock SystemConfigRepository ──

type mockSystemConfigRepo struct {
	s *mockStore
}

func (m *mockSystemConfigRepo) Get(_ context.Context) (*model.SystemConfig, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.cfg == nil {
		return nil, gorm.ErrRecordNotFound
	}
	c := *m.s.cfg
	return &c, nil
}

func (m *mockSystemConfigRepo) Update(_ context.Context, cfg *model.SystemConfig) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c := *cfg
	m.s.cfg = &c
	return nil
}

// ── 测试数据构造 ──

func (s *mockStore) addTheoryGroup(id string) {
	s.theoryGroups[id] = &model.TheoryGroup{TheoryGroupID: id, GroupName: "T-" + id}
}

func (s *mockStore) addLabGroup(id string, capacity int) {
	s.labGroups[id] = &model.LabGroup{
		LabGroupID:        id,
		GroupName:         "G-" + id,
		MaxNumberStudents: capacity,
		Teacher:           &model.Teacher{FirstName: "Ana", LastName: "Ruiz"},
	}
}

func (s *mockStore) addRule(theoryGroupID, labGroupID string) {
	s.rules = append(s.rules, model.GroupConstraint{
		GroupConstraintID: theoryGroupID + "->" + labGroupID,
		TheoryGroupID:     theoryGroupID,
		LabGroupID:        labGroupID,
	})
}

// addStudent 创建学生；theoryGroupID 为空表示未分理论班
func (s *mockStore) addStudent(id, theoryGroupID string) {
	st := &model.Student{
		StudentID: id,
		FirstName: id,
		LastName:  "Test",
		Email:     id + "@uam.es",
	}
	if theoryGroupID != "" {
		v := theoryGroupID
		st.TheoryGroupID = &v
	}
	s.students[id] = st
}

// place 直接把学生放入实验组并同步 counter
func (s *mockStore) place(studentID, labGroupID string) {
	v := labGroupID
	s.students[studentID].LabGroupID = &v
	s.labGroups[labGroupID].Counter++
}

// addPair 直接写入一条结对记录
func (s *mockStore) addPair(requesterID, targetID string, validated bool) *model.Pair {
	p := &model.Pair{RequesterID: requesterID, TargetID: targetID, Validated: validated}
	p.PairID, p.CreatedAt = s.nextID("pair")
	s.pairs[p.PairID] = p
	return p
}

func (s *mockStore) labGroupOf(studentID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.students[studentID]
	if st == nil || st.LabGroupID == nil {
		return ""
	}
	return *st.LabGroupID
}

func (s *mockStore) counterOf(labGroupID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.labGroups[labGroupID].Counter
}

func (s *mockStore) pairCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pairs)
}

// ledgerViolations 校验 0 <= counter <= max 且 counter 等于组内学生数
func (s *mockStore) ledgerViolations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	occupancy := make(map[string]int)
	for _, st := range s.students {
		if st.LabGroupID != nil {
			occupancy[*st.LabGroupID]++
		}
	}

	var violations []string
	for id, g := range s.labGroups {
		if g.Counter < 0 || g.Counter > g.MaxNumberStudents {
			violations = append(violations, fmt.Sprintf("%s: counter=%d 超出 [0,%d]", id, g.Counter, g.MaxNumberStudents))
		}
		if g.Counter != occupancy[id] {
			violations = append(violations, fmt.Sprintf("%s: counter=%d 但实际人数=%d", id, g.Counter, occupancy[id]))
		}
	}
	return violations
}

// validatedPairViolations 校验每个学生最多参与一条已确认结对，且已确认双方同组
func (s *mockStore) validatedPairViolations(requireSameGroup bool) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := make(map[string]int)
	var violations []string
	for _, p := range s.pairs {
		if !p.Validated {
			continue
		}
		count[p.RequesterID]++
		count[p.TargetID]++
		if requireSameGroup {
			a, b := s.students[p.RequesterID], s.students[p.TargetID]
			same := (a.LabGroupID == nil && b.LabGroupID == nil) ||
				(a.LabGroupID != nil && b.LabGroupID != nil && *a.LabGroupID == *b.LabGroupID)
			if !same {
				violations = append(violations, fmt.Sprintf("结对 %s 双方不在同一组", p.PairID))
			}
		}
	}
	for id, n := range count {
		if n > 1 {
			violations = append(violations, fmt.Sprintf("%s 参与了 %d 条已确认结对", id, n))
		}
	}
	return violations
}
