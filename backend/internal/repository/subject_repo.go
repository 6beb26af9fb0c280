package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/raghava-0650/Attendeese/backend/internal/model"
)

var (
	// ErrCounterUnderflow 增量会使出勤/缺勤计数变为负数，未做任何修改
	ErrCounterUnderflow = errors.New("计数不能小于 0")
	// ErrCounterOverflow 增量会使计数超过 model.MaxCount，未做任何修改
	ErrCounterOverflow = errors.New("计数超出上限")
)

// 科目列表排序方式
const (
	SortNameAsc        = "nameAsc"
	SortNameDesc       = "nameDesc"
	SortAttendanceAsc  = "attendanceAsc"
	SortAttendanceDesc = "attendanceDesc"
)

// SubjectFilter 科目列表筛选条件
type SubjectFilter struct {
	Search string // 名称子串，不区分大小写
	Sort   string
}

// SubjectPatch 科目字段覆盖写入，nil 表示不修改
type SubjectPatch struct {
	AttendedCount *int
	AbsentCount   *int
	Note          *string
}

// IsEmpty 是否没有任何待修改字段
func (p SubjectPatch) IsEmpty() bool {
	return p.AttendedCount == nil && p.AbsentCount == nil && p.Note == nil
}

// SubjectRepository 科目数据访问接口
// 所有方法均按 ownerID 隔离，查不到时返回 gorm.ErrRecordNotFound
type SubjectRepository interface {
	Create(ctx context.Context, subject *model.Subject) error
	ListByOwner(ctx context.Context, ownerID string, filter SubjectFilter) ([]model.Subject, error)
	GetByID(ctx context.Context, ownerID, id string) (*model.Subject, error)
	Update(ctx context.Context, ownerID, id string, patch SubjectPatch) (*model.Subject, error)
	Delete(ctx context.Context, ownerID, id string) error
	AdjustCounts(ctx context.Context, ownerID, id string, dAttended, dAbsent int) (*model.Subject, error)
}

type subjectRepo struct {
	db *gorm.DB
}

// NewSubjectRepo 创建 SubjectRepository 实例
func NewSubjectRepo(db *gorm.DB) SubjectRepository {
	return &subjectRepo{db: db}
}

func (r *subjectRepo) Create(ctx context.Context, subject *model.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

const attendanceRatioExpr = "CASE WHEN attended_count + absent_count = 0 THEN 0 " +
	"ELSE attended_count::float8 / (attended_count + absent_count) END"

func (r *subjectRepo) ListByOwner(ctx context.Context, ownerID string, filter SubjectFilter) ([]model.Subject, error) {
	query := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)

	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("name ILIKE ?", "%"+escapeLike(search)+"%")
	}

	switch filter.Sort {
	case SortNameAsc:
		query = query.Order("LOWER(name) ASC")
	case SortNameDesc:
		query = query.Order("LOWER(name) DESC")
	case SortAttendanceAsc:
		query = query.Order(attendanceRatioExpr + " ASC")
	case SortAttendanceDesc:
		query = query.Order(attendanceRatioExpr + " DESC")
	}

	var subjects []model.Subject
	err := query.Order("created_at ASC").Order("id ASC").Find(&subjects).Error
	return subjects, err
}

func (r *subjectRepo) GetByID(ctx context.Context, ownerID, id string) (*model.Subject, error) {
	var subject model.Subject
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepo) Update(ctx context.Context, ownerID, id string, patch SubjectPatch) (*model.Subject, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, ownerID, id)
	}

	updates := map[string]interface{}{"updated_at": gorm.Expr("NOW()")}
	if patch.AttendedCount != nil {
		updates["attended_count"] = *patch.AttendedCount
	}
	if patch.AbsentCount != nil {
		updates["absent_count"] = *patch.AbsentCount
	}
	if patch.Note != nil {
		updates["note"] = *patch.Note
	}

	var subject model.Subject
	res := r.db.WithContext(ctx).
		Model(&subject).
		Clauses(clause.Returning{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &subject, nil
}

func (r *subjectRepo) Delete(ctx context.Context, ownerID, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.Subject{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AdjustCounts 单条 UPDATE 完成增量，WHERE 中的 >= 0 条件保证计数不会变为负数
func (r *subjectRepo) AdjustCounts(ctx context.Context, ownerID, id string, dAttended, dAbsent int) (*model.Subject, error) {
	var subject model.Subject
	res := r.db.WithContext(ctx).
		Model(&subject).
		Clauses(clause.Returning{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Where("attended_count::bigint + ? BETWEEN 0 AND ? AND absent_count::bigint + ? BETWEEN 0 AND ?",
			dAttended, model.MaxCount, dAbsent, model.MaxCount).
		Updates(map[string]interface{}{
			"attended_count": gorm.Expr("attended_count + ?", dAttended),
			"absent_count":   gorm.Expr("absent_count + ?", dAbsent),
			"updated_at":     gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// 区分记录不存在与计数越界
		current, err := r.GetByID(ctx, ownerID, id)
		if err != nil {
			return nil, err
		}
		return nil, counterBoundError(current, dAttended, dAbsent)
	}
	return &subject, nil
}

// counterBoundError 判断增量越过的是下界还是上界
func counterBoundError(s *model.Subject, dAttended, dAbsent int) error {
	if s.AttendedCount+dAttended < 0 || s.AbsentCount+dAbsent < 0 {
		return ErrCounterUnderflow
	}
	return ErrCounterOverflow
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
