package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/raghava-0650/Attendeese/backend/internal/dto"
	"github.com/raghava-0650/Attendeese/backend/internal/model"
	"github.com/raghava-0650/Attendeese/backend/internal/repository"
	pkgerrors "github.com/raghava-0650/Attendeese/backend/pkg/errors"
	"github.com/raghava-0650/Attendeese/backend/pkg/logger"
)

// ── 周课表模块业务错误 ──

var (
	ErrTimetableInvalidDay      = pkgerrors.Validation("未知的星期名称，仅支持 Monday 至 Saturday")
	ErrTimetableSubjectRequired = pkgerrors.Validation("科目名称不能为空")
	ErrTimetableInvalidDays     = pkgerrors.Validation("days 必须是星期 → 科目名称数组的对象")
)

// TimetableCache 课表读缓存
// 写入携带版本号，实现方只接受比已缓存版本更新的数据
type TimetableCache interface {
	GetTimetable(ctx context.Context, ownerID string) (version int, data []byte, ok bool, err error)
	SetTimetable(ctx context.Context, ownerID string, version int, data []byte, ttl time.Duration) error
	DeleteTimetable(ctx context.Context, ownerID string) error
}

// ── TimetableService 接口 ──────────────────────────────────
//
// 每个用户至多一份周课表，首次写入时创建，不提供删除。
// 课表按科目名称引用科目：删除或改名后可能残留无主条目，由 Reconcile 检查与清理。
// ─────────────────────────────────────────────────────────────

// TimetableService 周课表业务接口
type TimetableService interface {
	// Get 读取课表，尚未创建时返回六天均为空的课表
	Get(ctx context.Context, ownerID string) (*dto.TimetableResponse, error)
	// Replace 整表覆盖，缺失的星期视为空
	Replace(ctx context.Context, ownerID string, days map[string][]string) (*dto.TimetableResponse, error)
	// AddSubjectToDay 在指定星期末尾追加科目（允许重复）
	AddSubjectToDay(ctx context.Context, ownerID, day, subject string) (*dto.TimetableResponse, error)
	// RemoveSubjectFromDay 移除指定星期中第一个同名科目，不存在时不做修改
	RemoveSubjectFromDay(ctx context.Context, ownerID, day, subject string) (*dto.TimetableResponse, error)
	// SubjectsForDate 某日的课程，周日或无课表时为空
	SubjectsForDate(ctx context.Context, ownerID string, date time.Time) (*dto.DaySubjectsResponse, error)
	// Reconcile 找出没有对应科目的课表条目，prune 为 true 时一并移除
	Reconcile(ctx context.Context, ownerID string, prune bool) (*dto.ReconcileResponse, error)
	// ListOwners 所有已创建课表的用户
	ListOwners(ctx context.Context) ([]string, error)
}

type timetableService struct {
	repo     *repository.Repository
	cache    TimetableCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewTimetableService 创建 TimetableService 实例
// cache 为 nil 时直接读库
func NewTimetableService(repo *repository.Repository, cache TimetableCache, cacheTTL time.Duration, logger *zap.Logger) TimetableService {
	return &timetableService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// ────────────────────── Get ──────────────────────

func (s *timetableService) Get(ctx context.Context, ownerID string) (*dto.TimetableResponse, error) {
	if version, days, ok := s.cacheGet(ctx, ownerID); ok {
		return toTimetableResponse(ownerID, days, version), nil
	}

	t, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if t.Version > 0 {
		s.cachePut(ctx, t)
	}
	return toTimetableResponse(ownerID, t.DayMap(), t.Version), nil
}

// load 读库，不存在时返回未持久化的空课表
func (s *timetableService) load(ctx context.Context, ownerID string) (*model.WeeklyTimetable, error) {
	t, err := s.repo.Timetable.Get(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.EmptyTimetable(ownerID), nil
		}
		s.log(ctx).Error("查询课表失败", zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}
	return t, nil
}

// ────────────────────── Replace ──────────────────────

func (s *timetableService) Replace(ctx context.Context, ownerID string, days map[string][]string) (*dto.TimetableResponse, error) {
	if days == nil {
		return nil, ErrTimetableInvalidDays
	}

	clean := make(model.WeekDays, len(days))
	for day, subjects := range days {
		if !model.IsWeekday(day) {
			return nil, ErrTimetableInvalidDay
		}
		list := make([]string, 0, len(subjects))
		for _, name := range subjects {
			name = strings.TrimSpace(name)
			if name == "" {
				return nil, ErrTimetableSubjectRequired
			}
			list = append(list, name)
		}
		clean[day] = list
	}

	t, err := s.repo.Timetable.Replace(ctx, ownerID, clean)
	if err != nil {
		s.log(ctx).Error("覆盖课表失败", zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	if t.Version > 0 {
		s.cachePut(ctx, t)
	}
	return toTimetableResponse(ownerID, t.DayMap(), t.Version), nil
}

// ────────────────────── Day entries ──────────────────────

func (s *timetableService) AddSubjectToDay(ctx context.Context, ownerID, day, subject string) (*dto.TimetableResponse, error) {
	if !model.IsWeekday(day) {
		return nil, ErrTimetableInvalidDay
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, ErrTimetableSubjectRequired
	}

	return s.mutate(ctx, ownerID, func(days model.WeekDays) (model.WeekDays, bool, error) {
		days[day] = append(days[day], subject)
		return days, true, nil
	})
}

func (s *timetableService) RemoveSubjectFromDay(ctx context.Context, ownerID, day, subject string) (*dto.TimetableResponse, error) {
	if !model.IsWeekday(day) {
		return nil, ErrTimetableInvalidDay
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, ErrTimetableSubjectRequired
	}

	return s.mutate(ctx, ownerID, func(days model.WeekDays) (model.WeekDays, bool, error) {
		list := days[day]
		for i, name := range list {
			if name == subject {
				days[day] = append(list[:i:i], list[i+1:]...)
				return days, true, nil
			}
		}
		return days, false, nil
	})
}

func (s *timetableService) mutate(ctx context.Context, ownerID string, fn repository.MutateFunc) (*dto.TimetableResponse, error) {
	t, err := s.repo.Timetable.Mutate(ctx, ownerID, fn)
	if err != nil {
		var kindErr *pkgerrors.Error
		if errors.As(err, &kindErr) {
			return nil, err
		}
		s.log(ctx).Error("修改课表失败", zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	s.cachePut(ctx, t)
	return toTimetableResponse(ownerID, t.DayMap(), t.Version), nil
}

// ────────────────────── SubjectsForDate ──────────────────────

func (s *timetableService) SubjectsForDate(ctx context.Context, ownerID string, date time.Time) (*dto.DaySubjectsResponse, error) {
	if _, ok := model.WeekdayOf(date); !ok {
		return ScheduleFor(nil, date), nil
	}

	tt, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return ScheduleFor(tt, date), nil
}

// ScheduleFor 从已读取的课表中取出某日的课程
// tt 为 nil 或 date 为周日时返回空列表
func ScheduleFor(tt *dto.TimetableResponse, date time.Time) *dto.DaySubjectsResponse {
	resp := &dto.DaySubjectsResponse{
		Date:     date.Format("2006-01-02"),
		Subjects: []string{},
	}

	weekday, ok := model.WeekdayOf(date)
	if !ok {
		return resp
	}
	resp.Weekday = weekday
	if tt != nil && tt.Days[weekday] != nil {
		resp.Subjects = tt.Days[weekday]
	}
	return resp
}

// ────────────────────── Reconcile ──────────────────────

func (s *timetableService) Reconcile(ctx context.Context, ownerID string, prune bool) (*dto.ReconcileResponse, error) {
	subjects, err := s.repo.Subject.ListByOwner(ctx, ownerID, repository.SubjectFilter{})
	if err != nil {
		s.log(ctx).Error("查询科目失败", zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}
	known := make(map[string]bool, len(subjects))
	for _, sub := range subjects {
		known[sub.Name] = true
	}

	t, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	orphans := findOrphans(t.DayMap(), known)
	resp := &dto.ReconcileResponse{Orphans: orphans}
	if !prune || len(orphans) == 0 {
		return resp, nil
	}

	// 行锁内重新计算，避免覆盖并发写入
	var pruned []dto.OrphanEntry
	tt, err := s.mutate(ctx, ownerID, func(days model.WeekDays) (model.WeekDays, bool, error) {
		pruned = findOrphans(days, known)
		if len(pruned) == 0 {
			return days, false, nil
		}
		for _, day := range model.Weekdays {
			kept := make([]string, 0, len(days[day]))
			for _, name := range days[day] {
				if known[name] {
					kept = append(kept, name)
				}
			}
			days[day] = kept
		}
		return days, true, nil
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).Info("已清理无主课表条目", zap.Int("count", len(pruned)))
	resp.Orphans = pruned
	resp.Pruned = true
	resp.Timetable = tt
	return resp, nil
}

func findOrphans(days model.WeekDays, known map[string]bool) []dto.OrphanEntry {
	orphans := []dto.OrphanEntry{}
	for _, day := range model.Weekdays {
		for _, name := range days[day] {
			if !known[name] {
				orphans = append(orphans, dto.OrphanEntry{Day: day, Subject: name})
			}
		}
	}
	return orphans
}

func (s *timetableService) ListOwners(ctx context.Context) ([]string, error) {
	ids, err := s.repo.Timetable.ListOwnerIDs(ctx)
	if err != nil {
		s.log(ctx).Error("查询课表用户失败", zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}
	return ids, nil
}

// ── 缓存 ──
//
// 缓存故障只记录日志，不影响读写结果。

func (s *timetableService) cacheGet(ctx context.Context, ownerID string) (int, model.WeekDays, bool) {
	if s.cache == nil {
		return 0, nil, false
	}
	version, data, ok, err := s.cache.GetTimetable(ctx, ownerID)
	if err != nil {
		s.log(ctx).Warn("读取课表缓存失败", zap.Error(err))
		return 0, nil, false
	}
	if !ok {
		return 0, nil, false
	}
	var days model.WeekDays
	if err := json.Unmarshal(data, &days); err != nil {
		s.log(ctx).Warn("课表缓存数据损坏", zap.Error(err))
		return 0, nil, false
	}
	return version, days.Normalize(), true
}

func (s *timetableService) cachePut(ctx context.Context, t *model.WeeklyTimetable) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(t.DayMap())
	if err != nil {
		return
	}
	if err := s.cache.SetTimetable(ctx, t.OwnerID, t.Version, data, s.cacheTTL); err != nil {
		s.log(ctx).Warn("写入课表缓存失败", zap.Error(err))
		// 旧版本仍在缓存中，删除后由下次读取回源
		if err := s.cache.DeleteTimetable(ctx, t.OwnerID); err != nil {
			s.log(ctx).Warn("删除过期课表缓存失败", zap.String("owner_id", t.OwnerID), zap.Error(err))
		}
	}
}

func (s *timetableService) log(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, s.logger)
}

func toTimetableResponse(ownerID string, days model.WeekDays, version int) *dto.TimetableResponse {
	return &dto.TimetableResponse{
		OwnerID: ownerID,
		Days:    days.Normalize(),
		Version: version,
	}
}
