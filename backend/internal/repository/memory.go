package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/raghava-0650/Attendeese/backend/internal/model"
)

// ═══════════════════════════════════════════════════════════
// 进程内存储（db.driver=memory）
//
// 与 PostgreSQL 实现的可观察语义一致：按 owner 隔离、计数原子增量、
// 课表修改串行化。进程退出即丢失，仅用于开发与演示。
// ═══════════════════════════════════════════════════════════

type subjectTable struct {
	mutex sync.RWMutex
	table map[string]*model.Subject
}

type timetableTable struct {
	mutex sync.RWMutex
	table map[string]*model.WeeklyTimetable
}

// NewMemoryRepository 创建基于内存的 Repository 聚合
func NewMemoryRepository() *Repository {
	return &Repository{
		Subject:   &memorySubjectRepo{db: &subjectTable{table: make(map[string]*model.Subject)}},
		Timetable: &memoryTimetableRepo{db: &timetableTable{table: make(map[string]*model.WeeklyTimetable)}},
	}
}

// ── 科目 ──

type memorySubjectRepo struct {
	db *subjectTable
}

func (r *memorySubjectRepo) Create(_ context.Context, subject *model.Subject) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	now := time.Now().UTC()
	subject.CreatedAt = now
	subject.UpdatedAt = now
	s := *subject
	r.db.table[s.ID] = &s
	return nil
}

func (r *memorySubjectRepo) ListByOwner(_ context.Context, ownerID string, filter SubjectFilter) ([]model.Subject, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	subjects := make([]model.Subject, 0)
	for _, s := range r.db.table {
		if s.OwnerID != ownerID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(s.Name), search) {
			continue
		}
		subjects = append(subjects, *s)
	}

	sortSubjects(subjects, filter.Sort)
	return subjects, nil
}

func (r *memorySubjectRepo) GetByID(_ context.Context, ownerID, id string) (*model.Subject, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	s, ok := r.db.table[id]
	if !ok || s.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	out := *s
	return &out, nil
}

func (r *memorySubjectRepo) Update(_ context.Context, ownerID, id string, patch SubjectPatch) (*model.Subject, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	s, ok := r.db.table[id]
	if !ok || s.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	if !patch.IsEmpty() {
		if patch.AttendedCount != nil {
			s.AttendedCount = *patch.AttendedCount
		}
		if patch.AbsentCount != nil {
			s.AbsentCount = *patch.AbsentCount
		}
		if patch.Note != nil {
			s.Note = *patch.Note
		}
		s.UpdatedAt = time.Now().UTC()
	}
	out := *s
	return &out, nil
}

func (r *memorySubjectRepo) Delete(_ context.Context, ownerID, id string) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	s, ok := r.db.table[id]
	if !ok || s.OwnerID != ownerID {
		return gorm.ErrRecordNotFound
	}
	delete(r.db.table, id)
	return nil
}

func (r *memorySubjectRepo) AdjustCounts(_ context.Context, ownerID, id string, dAttended, dAbsent int) (*model.Subject, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	s, ok := r.db.table[id]
	if !ok || s.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	attended, absent := s.AttendedCount+dAttended, s.AbsentCount+dAbsent
	if attended < 0 || absent < 0 {
		return nil, ErrCounterUnderflow
	}
	if attended > model.MaxCount || absent > model.MaxCount {
		return nil, ErrCounterOverflow
	}
	s.AttendedCount += dAttended
	s.AbsentCount += dAbsent
	s.UpdatedAt = time.Now().UTC()
	out := *s
	return &out, nil
}

func attendanceRatio(s model.Subject) float64 {
	total := s.TotalClasses()
	if total == 0 {
		return 0
	}
	return float64(s.AttendedCount) / float64(total)
}

// sortSubjects 与 SQL 实现相同的排序规则，末位按创建时间与 id 保证稳定
func sortSubjects(subjects []model.Subject, by string) {
	sort.SliceStable(subjects, func(i, j int) bool {
		a, b := subjects[i], subjects[j]
		switch by {
		case SortNameAsc, SortNameDesc:
			an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
			if an != bn {
				if by == SortNameAsc {
					return an < bn
				}
				return an > bn
			}
		case SortAttendanceAsc, SortAttendanceDesc:
			ar, br := attendanceRatio(a), attendanceRatio(b)
			if ar != br {
				if by == SortAttendanceAsc {
					return ar < br
				}
				return ar > br
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// ── 课表 ──

type memoryTimetableRepo struct {
	db *timetableTable
}

func cloneTimetable(t *model.WeeklyTimetable) *model.WeeklyTimetable {
	out := *t
	out.SetDays(t.DayMap())
	return &out
}

func (r *memoryTimetableRepo) Get(_ context.Context, ownerID string) (*model.WeeklyTimetable, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	t, ok := r.db.table[ownerID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cloneTimetable(t), nil
}

func (r *memoryTimetableRepo) Replace(_ context.Context, ownerID string, days model.WeekDays) (*model.WeeklyTimetable, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	now := time.Now().UTC()
	t, ok := r.db.table[ownerID]
	if !ok {
		t = &model.WeeklyTimetable{OwnerID: ownerID}
		t.CreatedAt = now
		r.db.table[ownerID] = t
	}
	t.SetDays(days)
	t.Version++
	t.UpdatedAt = now
	return cloneTimetable(t), nil
}

func (r *memoryTimetableRepo) Mutate(_ context.Context, ownerID string, fn MutateFunc) (*model.WeeklyTimetable, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	t, ok := r.db.table[ownerID]
	if !ok {
		t = model.EmptyTimetable(ownerID)
	}

	next, changed, err := fn(t.DayMap())
	if err != nil {
		return nil, err
	}
	if !changed {
		return cloneTimetable(t), nil
	}

	now := time.Now().UTC()
	if !ok {
		t.CreatedAt = now
		r.db.table[ownerID] = t
	}
	t.SetDays(next)
	t.Version++
	t.UpdatedAt = now
	return cloneTimetable(t), nil
}

func (r *memoryTimetableRepo) ListOwnerIDs(_ context.Context) ([]string, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	ids := make([]string, 0, len(r.db.table))
	for id := range r.db.table {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
