package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/config"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/model"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/repository"
	pkgerrors "github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/errors"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/storage"
)

// ── Mock ParentRepository ──

type mockParentRepo struct {
	parents map[string]*model.Parent
}

func newMockParentRepo() *mockParentRepo {
	return &mockParentRepo{parents: make(map[string]*model.Parent)}
}

func (m *mockParentRepo) Create(_ context.Context, p *model.Parent) error {
	for _, existing := range m.parents {
		if existing.Username == p.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	if p.ParentID == "" {
		p.ParentID = uuid.NewString()
	}
	m.parents[p.ParentID] = p
	return nil
}

func (m *mockParentRepo) GetByID(_ context.Context, id string) (*model.Parent, error) {
	if p, ok := m.parents[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockParentRepo) GetByUsername(_ context.Context, username string) (*model.Parent, error) {
	for _, p := range m.parents {
		if p.Username == username {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock TeacherRepository ──

type mockTeacherRepo struct {
	teachers map[string]*model.Teacher
}

func newMockTeacherRepo() *mockTeacherRepo {
	return &mockTeacherRepo{teachers: make(map[string]*model.Teacher)}
}

func (m *mockTeacherRepo) Create(_ context.Context, t *model.Teacher) error {
	for _, existing := range m.teachers {
		if existing.Email == t.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if t.TeacherID == "" {
		t.TeacherID = uuid.NewString()
	}
	m.teachers[t.TeacherID] = t
	return nil
}

func (m *mockTeacherRepo) GetByID(_ context.Context, id string) (*model.Teacher, error) {
	if t, ok := m.teachers[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) GetByEmail(_ context.Context, email string) (*model.Teacher, error) {
	for _, t := range m.teachers {
		if t.Email == email {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock ChildRepository ──

type mockChildRepo struct {
	children map[string]*model.Child
}

func newMockChildRepo() *mockChildRepo {
	return &mockChildRepo{children: make(map[string]*model.Child)}
}

func (m *mockChildRepo) Create(_ context.Context, c *model.Child) error {
	if c.ChildID == "" {
		c.ChildID = uuid.NewString()
	}
	m.children[c.ChildID] = c
	return nil
}

func (m *mockChildRepo) GetByID(_ context.Context, id string) (*model.Child, error) {
	if c, ok := m.children[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockChildRepo) ListByParent(_ context.Context, parentID string) ([]model.Child, error) {
	var result []model.Child
	for _, c := range m.children {
		if c.ParentID == parentID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockChildRepo) ListByIDs(_ context.Context, ids []string) ([]model.Child, error) {
	var result []model.Child
	for _, id := range ids {
		if c, ok := m.children[id]; ok {
			result = append(result, *c)
		}
	}
	return result, nil
}

// ── Mock TeacherStudentRepository ──

type mockTeacherStudentRepo struct {
	rels     map[string]*model.TeacherStudent // key: teacher|child
	children *mockChildRepo
}

func newMockTeacherStudentRepo(children *mockChildRepo) *mockTeacherStudentRepo {
	return &mockTeacherStudentRepo{rels: make(map[string]*model.TeacherStudent), children: children}
}

func relKey(teacherID, childID string) string { return teacherID + "|" + childID }

func (m *mockTeacherStudentRepo) Get(_ context.Context, teacherID, childID string) (*model.TeacherStudent, error) {
	if r, ok := m.rels[relKey(teacherID, childID)]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherStudentRepo) GetForUpdate(ctx context.Context, teacherID, childID string) (*model.TeacherStudent, error) {
	return m.Get(ctx, teacherID, childID)
}

func (m *mockTeacherStudentRepo) Create(_ context.Context, rel *model.TeacherStudent) error {
	key := relKey(rel.TeacherID, rel.ChildID)
	if _, ok := m.rels[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	cp := *rel
	m.rels[key] = &cp
	return nil
}

func (m *mockTeacherStudentRepo) Update(_ context.Context, rel *model.TeacherStudent) error {
	cp := *rel
	m.rels[relKey(rel.TeacherID, rel.ChildID)] = &cp
	return nil
}

func (m *mockTeacherStudentRepo) ListChildren(_ context.Context, teacherID, status string) ([]model.Child, error) {
	var result []model.Child
	for _, r := range m.rels {
		if r.TeacherID != teacherID || r.Status != status {
			continue
		}
		if c, ok := m.children.children[r.ChildID]; ok {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockTeacherStudentRepo) ListTeachers(_ context.Context, childID, status string) ([]model.Teacher, error) {
	var result []model.Teacher
	for _, r := range m.rels {
		if r.ChildID == childID && r.Status == status {
			result = append(result, model.Teacher{TeacherID: r.TeacherID})
		}
	}
	return result, nil
}

// ── Mock HomeworkRepository ──

type mockHomeworkRepo struct {
	homeworks map[string]*model.Homework
}

func newMockHomeworkRepo() *mockHomeworkRepo {
	return &mockHomeworkRepo{homeworks: make(map[string]*model.Homework)}
}

func (m *mockHomeworkRepo) Create(_ context.Context, hw *model.Homework) error {
	if hw.HomeworkID == "" {
		hw.HomeworkID = uuid.NewString()
	}
	for i := range hw.Words {
		if hw.Words[i].WordID == "" {
			hw.Words[i].WordID = uuid.NewString()
		}
		hw.Words[i].HomeworkID = hw.HomeworkID
	}
	for i := range hw.Assignees {
		hw.Assignees[i].HomeworkID = hw.HomeworkID
	}
	hw.CreatedAt = time.Now()
	hw.UpdatedAt = hw.CreatedAt
	cp := *hw
	m.homeworks[hw.HomeworkID] = &cp
	return nil
}

func (m *mockHomeworkRepo) GetByID(_ context.Context, id string) (*model.Homework, error) {
	if hw, ok := m.homeworks[id]; ok {
		cp := *hw
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockHomeworkRepo) Update(_ context.Context, hw *model.Homework) error {
	stored, ok := m.homeworks[hw.HomeworkID]
	if !ok || stored.Version != hw.Version {
		return pkgerrors.ErrOptimisticLock
	}
	for i := range hw.Words {
		if hw.Words[i].WordID == "" {
			hw.Words[i].WordID = uuid.NewString()
		}
	}
	hw.Version++
	cp := *hw
	m.homeworks[hw.HomeworkID] = &cp
	return nil
}

func (m *mockHomeworkRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.homeworks, id)
	return nil
}

func (m *mockHomeworkRepo) ListByTeacher(_ context.Context, teacherID string) ([]model.Homework, error) {
	var result []model.Homework
	for _, hw := range m.homeworks {
		if hw.TeacherID == teacherID {
			result = append(result, *hw)
		}
	}
	return result, nil
}

func (m *mockHomeworkRepo) ListAssignedTo(_ context.Context, childID string) ([]model.Homework, error) {
	var result []model.Homework
	for _, hw := range m.homeworks {
		if hw.IsAssignedTo(childID) {
			result = append(result, *hw)
		}
	}
	return result, nil
}

func (m *mockHomeworkRepo) CountAssignedTo(ctx context.Context, childID string) (int64, error) {
	list, _ := m.ListAssignedTo(ctx, childID)
	return int64(len(list)), nil
}

// ── Mock SubmissionRepository ──

type mockSubmissionRepo struct {
	mu         sync.Mutex
	subs       map[string]*model.Submission
	recordings map[string][]model.Recording // key: submission_id
	appendErr  error
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{
		subs:       make(map[string]*model.Submission),
		recordings: make(map[string][]model.Recording),
	}
}

func (m *mockSubmissionRepo) Create(_ context.Context, sub *model.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.HomeworkID == sub.HomeworkID && s.StudentID == sub.StudentID && s.ParentID == sub.ParentID {
			return gorm.ErrDuplicatedKey
		}
	}
	if sub.SubmissionID == "" {
		sub.SubmissionID = uuid.NewString()
	}
	cp := *sub
	cp.Recordings = nil
	m.subs[sub.SubmissionID] = &cp
	return nil
}

// snapshot 返回附带录音的副本，调用方需持有锁
func (m *mockSubmissionRepo) snapshot(s *model.Submission) *model.Submission {
	cp := *s
	recs := append([]model.Recording(nil), m.recordings[s.SubmissionID]...)
	sort.Slice(recs, func(i, j int) bool { return recs[i].Position < recs[j].Position })
	cp.Recordings = recs
	return &cp
}

func (m *mockSubmissionRepo) GetByID(_ context.Context, id string) (*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.subs[id]; ok {
		return m.snapshot(s), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) GetByKeyForUpdate(_ context.Context, homeworkID, studentID, parentID string) (*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.HomeworkID == homeworkID && s.StudentID == studentID && s.ParentID == parentID {
			return m.snapshot(s), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) GetForUpdate(ctx context.Context, id string) (*model.Submission, error) {
	return m.GetByID(ctx, id)
}

func (m *mockSubmissionRepo) Update(_ context.Context, sub *model.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[sub.SubmissionID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *sub
	cp.Recordings = nil
	m.subs[sub.SubmissionID] = &cp
	return nil
}

func (m *mockSubmissionRepo) ListByHomework(_ context.Context, homeworkID, parentID string) ([]model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Submission
	for _, s := range m.subs {
		if s.HomeworkID != homeworkID {
			continue
		}
		if parentID != "" && s.ParentID != parentID {
			continue
		}
		result = append(result, *m.snapshot(s))
	}
	return result, nil
}

func (m *mockSubmissionRepo) ListByStudent(_ context.Context, studentID string) ([]model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Submission
	for _, s := range m.subs {
		if s.StudentID == studentID {
			result = append(result, *m.snapshot(s))
		}
	}
	return result, nil
}

func (m *mockSubmissionRepo) AppendRecording(_ context.Context, rec *model.Recording) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	if rec.RecordingID == "" {
		rec.RecordingID = uuid.NewString()
	}
	rec.CreatedAt = time.Now()
	m.recordings[rec.SubmissionID] = append(m.recordings[rec.SubmissionID], *rec)
	return nil
}

func (m *mockSubmissionRepo) CountRecordings(_ context.Context, submissionID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.recordings[submissionID])), nil
}

// ── Mock FeedbackRepository ──

type mockFeedbackRepo struct {
	items []model.SubmissionFeedback
}

func newMockFeedbackRepo() *mockFeedbackRepo {
	return &mockFeedbackRepo{}
}

func (m *mockFeedbackRepo) Create(_ context.Context, fb *model.SubmissionFeedback) error {
	if fb.FeedbackID == "" {
		fb.FeedbackID = uuid.NewString()
	}
	// 保证同一测试内多条评语的时间严格递增
	fb.CreatedAt = time.Now().Add(time.Duration(len(m.items)) * time.Millisecond)
	m.items = append(m.items, *fb)
	return nil
}

func (m *mockFeedbackRepo) ListBySubmission(_ context.Context, submissionID string) ([]model.SubmissionFeedback, error) {
	var result []model.SubmissionFeedback
	for _, fb := range m.items {
		if fb.SubmissionID == submissionID {
			result = append(result, fb)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// ── Fake Storage / Scorer / Blacklist ──

type fakeStorage struct {
	objects map[string][]byte
	deleted []string
	saveErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Save(_ context.Context, key string, r io.Reader, _ string) (*storage.Object, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	f.objects[key] = buf.Bytes()
	return &storage.Object{Key: key, URL: "/uploads/" + key}, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type fixedScorer struct {
	score int
}

func (s fixedScorer) Score(context.Context, string) int { return s.score }

type fakeBlacklist struct {
	tokens map[string]time.Duration
}

func (f *fakeBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if f.tokens == nil {
		f.tokens = make(map[string]time.Duration)
	}
	f.tokens[jti] = ttl
	return nil
}

var errMockDB = errors.New("mock db failure")

// ── 测试环境组装 ──

type testEnv struct {
	repo        *repository.Repository
	parents     *mockParentRepo
	teachers    *mockTeacherRepo
	children    *mockChildRepo
	relations   *mockTeacherStudentRepo
	homeworks   *mockHomeworkRepo
	submissions *mockSubmissionRepo
	feedbacks   *mockFeedbackRepo
	store       *fakeStorage
	logger      *zap.Logger
}

func newTestEnv() *testEnv {
	children := newMockChildRepo()
	env := &testEnv{
		parents:     newMockParentRepo(),
		teachers:    newMockTeacherRepo(),
		children:    children,
		relations:   newMockTeacherStudentRepo(children),
		homeworks:   newMockHomeworkRepo(),
		submissions: newMockSubmissionRepo(),
		feedbacks:   newMockFeedbackRepo(),
		store:       newFakeStorage(),
		logger:      zap.NewNop(),
	}
	env.repo = &repository.Repository{
		Parent:         env.parents,
		Teacher:        env.teachers,
		Child:          env.children,
		TeacherStudent: env.relations,
		Homework:       env.homeworks,
		Submission:     env.submissions,
		Feedback:       env.feedbacks,
	}
	return env
}

func (e *testEnv) policy(feature config.FeatureConfig) Policy {
	return NewPolicy(e.repo, feature)
}

func (e *testEnv) addParent(name string) *model.Parent {
	p := &model.Parent{Name: name, Username: name}
	_ = e.parents.Create(context.Background(), p)
	return p
}

func (e *testEnv) addTeacher(name, role string) *model.Teacher {
	t := &model.Teacher{Name: name, Email: name + "@school.hk", Role: role}
	_ = e.teachers.Create(context.Background(), t)
	return t
}

func (e *testEnv) addChild(parentID, name string) *model.Child {
	c := &model.Child{ParentID: parentID, Name: name, Level: model.LevelK2, School: "Sunshine Kindergarten"}
	_ = e.children.Create(context.Background(), c)
	return c
}

func (e *testEnv) addHomework(teacherID string, assignees ...string) *model.Homework {
	hw := &model.Homework{
		Title:     "Animals",
		TeacherID: teacherID,
		DueDate:   time.Now().Add(7 * 24 * time.Hour),
		Words: []model.HomeworkWord{
			{Position: 1, Word: "cat", Example: "The cat sleeps."},
			{Position: 2, Word: "dog", Example: "The dog runs."},
			{Position: 3, Word: "bird", Example: "The bird sings."},
		},
		Assignees: toAssignees(assignees),
	}
	hw.Version = 1
	_ = e.homeworks.Create(context.Background(), hw)
	return hw
}

func (e *testEnv) approve(teacherID, childID string) {
	now := time.Now()
	_ = e.relations.Create(context.Background(), &model.TeacherStudent{
		TeacherID:   teacherID,
		ChildID:     childID,
		Status:      model.RelationApproved,
		RequestedBy: teacherID,
		RequestedAt: now,
		ApprovedAt:  &now,
	})
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
