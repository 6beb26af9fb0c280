package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/raghava-0650/Attendeese/backend/internal/model"
	"github.com/raghava-0650/Attendeese/backend/internal/repository"
)

// ── Mock SubjectRepository ──

type mockSubjectRepo struct {
	mu       sync.Mutex
	subjects map[string]*model.Subject
	err      error // 非 nil 时所有方法返回该错误，模拟存储故障
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{subjects: make(map[string]*model.Subject)}
}

func (m *mockSubjectRepo) Create(_ context.Context, subject *model.Subject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	subject.CreatedAt = time.Now()
	subject.UpdatedAt = subject.CreatedAt
	s := *subject
	m.subjects[s.ID] = &s
	return nil
}

func (m *mockSubjectRepo) ListByOwner(_ context.Context, ownerID string, filter repository.SubjectFilter) ([]model.Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var result []model.Subject
	for _, s := range m.subjects {
		if s.OwnerID != ownerID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(filter.Search)) {
			continue
		}
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockSubjectRepo) GetByID(_ context.Context, ownerID, id string) (*model.Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if s, ok := m.subjects[id]; ok && s.OwnerID == ownerID {
		out := *s
		return &out, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubjectRepo) Update(_ context.Context, ownerID, id string, patch repository.SubjectPatch) (*model.Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.subjects[id]
	if !ok || s.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	if patch.AttendedCount != nil {
		s.AttendedCount = *patch.AttendedCount
	}
	if patch.AbsentCount != nil {
		s.AbsentCount = *patch.AbsentCount
	}
	if patch.Note != nil {
		s.Note = *patch.Note
	}
	out := *s
	return &out, nil
}

func (m *mockSubjectRepo) Delete(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	s, ok := m.subjects[id]
	if !ok || s.OwnerID != ownerID {
		return gorm.ErrRecordNotFound
	}
	delete(m.subjects, id)
	return nil
}

func (m *mockSubjectRepo) AdjustCounts(_ context.Context, ownerID, id string, dAttended, dAbsent int) (*model.Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.subjects[id]
	if !ok || s.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	if s.AttendedCount+dAttended < 0 || s.AbsentCount+dAbsent < 0 {
		return nil, repository.ErrCounterUnderflow
	}
	if s.AttendedCount+dAttended > model.MaxCount || s.AbsentCount+dAbsent > model.MaxCount {
		return nil, repository.ErrCounterOverflow
	}
	s.AttendedCount += dAttended
	s.AbsentCount += dAbsent
	out := *s
	return &out, nil
}

// ── Mock TimetableRepository ──

type mockTimetableRepo struct {
	mu         sync.Mutex
	timetables map[string]*model.WeeklyTimetable
	err        error
	getCalls   int
}

func newMockTimetableRepo() *mockTimetableRepo {
	return &mockTimetableRepo{timetables: make(map[string]*model.WeeklyTimetable)}
}

func (m *mockTimetableRepo) Get(_ context.Context, ownerID string) (*model.WeeklyTimetable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.err != nil {
		return nil, m.err
	}
	t, ok := m.timetables[ownerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := *t
	out.SetDays(t.DayMap())
	return &out, nil
}

func (m *mockTimetableRepo) Replace(_ context.Context, ownerID string, days model.WeekDays) (*model.WeeklyTimetable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	t, ok := m.timetables[ownerID]
	if !ok {
		t = &model.WeeklyTimetable{OwnerID: ownerID}
		m.timetables[ownerID] = t
	}
	t.SetDays(days)
	t.Version++
	out := *t
	return &out, nil
}

func (m *mockTimetableRepo) Mutate(_ context.Context, ownerID string, fn repository.MutateFunc) (*model.WeeklyTimetable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	t, ok := m.timetables[ownerID]
	if !ok {
		t = model.EmptyTimetable(ownerID)
	}
	next, changed, err := fn(t.DayMap())
	if err != nil {
		return nil, err
	}
	if changed {
		if !ok {
			m.timetables[ownerID] = t
		}
		t.SetDays(next)
		t.Version++
	}
	out := *t
	return &out, nil
}

func (m *mockTimetableRepo) ListOwnerIDs(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	ids := make([]string, 0, len(m.timetables))
	for id := range m.timetables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ── Mock TimetableCache ──

type mockCacheEntry struct {
	version int
	data    []byte
}

type mockTimetableCache struct {
	mu      sync.Mutex
	entries map[string]mockCacheEntry
	err     error
	setErr  error
	deletes int
}

func newMockTimetableCache() *mockTimetableCache {
	return &mockTimetableCache{entries: make(map[string]mockCacheEntry)}
}

func (c *mockTimetableCache) GetTimetable(_ context.Context, ownerID string) (int, []byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, nil, false, c.err
	}
	e, ok := c.entries[ownerID]
	return e.version, e.data, ok, nil
}

func (c *mockTimetableCache) SetTimetable(_ context.Context, ownerID string, version int, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.setErr != nil {
		return c.setErr
	}
	if cur, ok := c.entries[ownerID]; ok && cur.version >= version {
		return nil
	}
	c.entries[ownerID] = mockCacheEntry{version: version, data: data}
	return nil
}

func (c *mockTimetableCache) DeleteTimetable(_ context.Context, ownerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes++
	if c.err != nil {
		return c.err
	}
	delete(c.entries, ownerID)
	return nil
}

// ── 测试辅助 ──

type testRepos struct {
	subject   *mockSubjectRepo
	timetable *mockTimetableRepo
}

func newTestRepository() (*repository.Repository, testRepos) {
	m := testRepos{
		subject:   newMockSubjectRepo(),
		timetable: newMockTimetableRepo(),
	}
	return &repository.Repository{Subject: m.subject, Timetable: m.timetable}, m
}
