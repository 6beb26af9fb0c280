package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/raghava-0650/Attendeese/backend/internal/dto"
	"github.com/raghava-0650/Attendeese/backend/internal/model"
	"github.com/raghava-0650/Attendeese/backend/internal/repository"
	pkgerrors "github.com/raghava-0650/Attendeese/backend/pkg/errors"
	"github.com/raghava-0650/Attendeese/backend/pkg/logger"
)

// ── 科目模块业务错误 ──

var (
	ErrSubjectNotFound        = pkgerrors.NotFound("科目不存在")
	ErrSubjectNameRequired    = pkgerrors.Validation("科目名称不能为空")
	ErrSubjectNameTooLong     = pkgerrors.Validation("科目名称不能超过 200 个字符")
	ErrSubjectNegativeCount   = pkgerrors.Validation("出勤/缺勤次数不能为负数")
	ErrSubjectCountTooLarge   = pkgerrors.Validation("出勤/缺勤次数超出上限")
	ErrSubjectInvalidDuration = pkgerrors.Validation("课时时长必须大于 0 且不超过 24 小时")
	ErrSubjectInvalidAction   = pkgerrors.Validation("未知的出勤操作")
	ErrSubjectInvalidSort     = pkgerrors.Validation("未知的排序方式")
	ErrSubjectCountUnderflow  = pkgerrors.Logic("次数已为 0，无法撤销")
	ErrSubjectCountOverflow   = pkgerrors.Logic("次数已达上限，无法继续增加")
)

const maxSubjectNameLen = 200

// 出勤快捷操作
const (
	ActionPresent     = "present"
	ActionUndoPresent = "undoPresent"
	ActionAbsent      = "absent"
	ActionUndoAbsent  = "undoAbsent"
)

// actionDeltas 快捷操作 → (出勤增量, 缺勤增量)
var actionDeltas = map[string][2]int{
	ActionPresent:     {1, 0},
	ActionUndoPresent: {-1, 0},
	ActionAbsent:      {0, 1},
	ActionUndoAbsent:  {0, -1},
}

// IsAttendanceAction 是否为可识别的快捷操作
func IsAttendanceAction(action string) bool {
	_, ok := actionDeltas[action]
	return ok
}

// SubjectService 科目业务接口
// 所有操作都以 ownerID 隔离，其他用户的科目一律视为不存在
type SubjectService interface {
	Create(ctx context.Context, ownerID string, req *dto.CreateSubjectRequest) (*dto.SubjectResponse, error)
	List(ctx context.Context, ownerID string, req *dto.SubjectListRequest) ([]dto.SubjectResponse, error)
	GetByID(ctx context.Context, ownerID, id string) (*dto.SubjectResponse, error)
	Update(ctx context.Context, ownerID, id string, req *dto.UpdateSubjectRequest) (*dto.SubjectResponse, error)
	Delete(ctx context.Context, ownerID, id string) error
	// AdjustAttendance 原子增量修改计数，任一计数将变为负数时整体拒绝
	AdjustAttendance(ctx context.Context, ownerID, id string, dAttended, dAbsent int) (*dto.SubjectResponse, error)
	// ApplyAction 快捷操作 present / undoPresent / absent / undoAbsent
	ApplyAction(ctx context.Context, ownerID, id, action string) (*dto.SubjectResponse, error)
	Summary(ctx context.Context, ownerID string) (*dto.AttendanceSummaryResponse, error)
}

type subjectService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSubjectService 创建 SubjectService 实例
func NewSubjectService(repo *repository.Repository, logger *zap.Logger) SubjectService {
	return &subjectService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *subjectService) Create(ctx context.Context, ownerID string, req *dto.CreateSubjectRequest) (*dto.SubjectResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrSubjectNameRequired
	}
	if utf8.RuneCountInString(name) > maxSubjectNameLen {
		return nil, ErrSubjectNameTooLong
	}

	subject := &model.Subject{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		Name:         name,
		HourDuration: model.DefaultHourDuration,
	}
	if req.Attended != nil {
		subject.AttendedCount = *req.Attended
	}
	if req.Absent != nil {
		subject.AbsentCount = *req.Absent
	}
	if subject.AttendedCount < 0 || subject.AbsentCount < 0 {
		return nil, ErrSubjectNegativeCount
	}
	if subject.AttendedCount > model.MaxCount || subject.AbsentCount > model.MaxCount {
		return nil, ErrSubjectCountTooLarge
	}
	if req.HourDuration != nil {
		h := *req.HourDuration
		if math.IsNaN(h) || h <= 0 || h > model.MaxHourDuration {
			return nil, ErrSubjectInvalidDuration
		}
		subject.HourDuration = *req.HourDuration
	}
	if req.Note != nil {
		subject.Note = strings.TrimSpace(*req.Note)
	}

	if err := s.repo.Subject.Create(ctx, subject); err != nil {
		s.log(ctx).Error("创建科目失败", zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	s.log(ctx).Info("科目已创建", zap.String("subject_id", subject.ID))
	return toSubjectResponse(subject), nil
}

// ────────────────────── List ──────────────────────

func (s *subjectService) List(ctx context.Context, ownerID string, req *dto.SubjectListRequest) ([]dto.SubjectResponse, error) {
	filter := repository.SubjectFilter{}
	if req != nil {
		switch req.Sort {
		case "", repository.SortNameAsc, repository.SortNameDesc,
			repository.SortAttendanceAsc, repository.SortAttendanceDesc:
		default:
			return nil, ErrSubjectInvalidSort
		}
		filter.Search = req.Search
		filter.Sort = req.Sort
	}

	subjects, err := s.repo.Subject.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		s.log(ctx).Error("列出科目失败", zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	result := make([]dto.SubjectResponse, 0, len(subjects))
	for i := range subjects {
		result = append(result, *toSubjectResponse(&subjects[i]))
	}
	return result, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *subjectService) GetByID(ctx context.Context, ownerID, id string) (*dto.SubjectResponse, error) {
	if !isSubjectID(id) {
		return nil, ErrSubjectNotFound
	}

	subject, err := s.repo.Subject.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, s.mapRepoError(ctx, "查询科目失败", id, err)
	}
	return toSubjectResponse(subject), nil
}

// ────────────────────── Update ──────────────────────

func (s *subjectService) Update(ctx context.Context, ownerID, id string, req *dto.UpdateSubjectRequest) (*dto.SubjectResponse, error) {
	if !isSubjectID(id) {
		return nil, ErrSubjectNotFound
	}

	patch := repository.SubjectPatch{
		AttendedCount: req.AttendedCount,
		AbsentCount:   req.AbsentCount,
	}
	if (patch.AttendedCount != nil && *patch.AttendedCount < 0) ||
		(patch.AbsentCount != nil && *patch.AbsentCount < 0) {
		return nil, ErrSubjectNegativeCount
	}
	if (patch.AttendedCount != nil && *patch.AttendedCount > model.MaxCount) ||
		(patch.AbsentCount != nil && *patch.AbsentCount > model.MaxCount) {
		return nil, ErrSubjectCountTooLarge
	}
	if req.Note != nil {
		note := strings.TrimSpace(*req.Note)
		patch.Note = &note
	}

	subject, err := s.repo.Subject.Update(ctx, ownerID, id, patch)
	if err != nil {
		return nil, s.mapRepoError(ctx, "更新科目失败", id, err)
	}
	return toSubjectResponse(subject), nil
}

// ────────────────────── Delete ──────────────────────

// Delete 删除科目，课表中的同名条目不受影响（见 TimetableService.Reconcile）
func (s *subjectService) Delete(ctx context.Context, ownerID, id string) error {
	if !isSubjectID(id) {
		return ErrSubjectNotFound
	}

	if err := s.repo.Subject.Delete(ctx, ownerID, id); err != nil {
		return s.mapRepoError(ctx, "删除科目失败", id, err)
	}

	s.log(ctx).Info("科目已删除", zap.String("subject_id", id))
	return nil
}

// ────────────────────── Attendance ──────────────────────

func (s *subjectService) AdjustAttendance(ctx context.Context, ownerID, id string, dAttended, dAbsent int) (*dto.SubjectResponse, error) {
	if !isSubjectID(id) {
		return nil, ErrSubjectNotFound
	}

	subject, err := s.repo.Subject.AdjustCounts(ctx, ownerID, id, dAttended, dAbsent)
	if err != nil {
		if errors.Is(err, repository.ErrCounterUnderflow) {
			return nil, ErrSubjectCountUnderflow
		}
		if errors.Is(err, repository.ErrCounterOverflow) {
			return nil, ErrSubjectCountOverflow
		}
		return nil, s.mapRepoError(ctx, "修改出勤计数失败", id, err)
	}
	return toSubjectResponse(subject), nil
}

func (s *subjectService) ApplyAction(ctx context.Context, ownerID, id, action string) (*dto.SubjectResponse, error) {
	delta, ok := actionDeltas[action]
	if !ok {
		return nil, ErrSubjectInvalidAction
	}
	return s.AdjustAttendance(ctx, ownerID, id, delta[0], delta[1])
}

// ────────────────────── Summary ──────────────────────

func (s *subjectService) Summary(ctx context.Context, ownerID string) (*dto.AttendanceSummaryResponse, error) {
	subjects, err := s.repo.Subject.ListByOwner(ctx, ownerID, repository.SubjectFilter{})
	if err != nil {
		s.log(ctx).Error("统计出勤失败", zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	attended, total := HourTotals(subjects)
	pct := AggregatePercentage(subjects)
	return &dto.AttendanceSummaryResponse{
		SubjectCount:        len(subjects),
		AttendedHours:       attended,
		TotalHours:          total,
		AggregatePercentage: pct,
		Status:              Status(pct),
	}, nil
}

// ── 辅助函数 ──

func (s *subjectService) log(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, s.logger)
}

// mapRepoError 记录不存在 → ErrSubjectNotFound，其余视为存储故障
func (s *subjectService) mapRepoError(ctx context.Context, msg, id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSubjectNotFound
	}
	s.log(ctx).Error(msg, zap.String("subject_id", id), zap.Error(err))
	return pkgerrors.Storage(err)
}

// isSubjectID 非 UUID 的 id 不可能存在
func isSubjectID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func toSubjectResponse(s *model.Subject) *dto.SubjectResponse {
	pct := Percentage(*s)
	return &dto.SubjectResponse{
		ID:                   s.ID,
		OwnerID:              s.OwnerID,
		Name:                 s.Name,
		AttendedCount:        s.AttendedCount,
		AbsentCount:          s.AbsentCount,
		HourDuration:         s.HourDuration,
		Note:                 s.Note,
		TotalClasses:         s.TotalClasses(),
		AttendancePercentage: pct,
		Status:               Status(pct),
		CreatedAt:            s.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:            s.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
