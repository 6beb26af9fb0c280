package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/raghava-0650/Attendeese/backend/internal/model"
)

// MutateFunc 在行锁内修改课表内容
// 返回 changed=false 时不写回，版本号不变
type MutateFunc func(days model.WeekDays) (next model.WeekDays, changed bool, err error)

// TimetableRepository 周课表数据访问接口
// 每个用户一行，首次写入时创建；同一用户的修改串行执行
type TimetableRepository interface {
	Get(ctx context.Context, ownerID string) (*model.WeeklyTimetable, error)
	Replace(ctx context.Context, ownerID string, days model.WeekDays) (*model.WeeklyTimetable, error)
	Mutate(ctx context.Context, ownerID string, fn MutateFunc) (*model.WeeklyTimetable, error)
	ListOwnerIDs(ctx context.Context) ([]string, error)
}

type timetableRepo struct {
	db *gorm.DB
}

// NewTimetableRepo 创建 TimetableRepository 实例
func NewTimetableRepo(db *gorm.DB) TimetableRepository {
	return &timetableRepo{db: db}
}

func (r *timetableRepo) Get(ctx context.Context, ownerID string) (*model.WeeklyTimetable, error) {
	var t model.WeeklyTimetable
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Replace 单条 INSERT … ON CONFLICT DO UPDATE 完成整表覆盖
func (r *timetableRepo) Replace(ctx context.Context, ownerID string, days model.WeekDays) (*model.WeeklyTimetable, error) {
	t := &model.WeeklyTimetable{OwnerID: ownerID, Version: 1}
	t.SetDays(days)

	err := r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "owner_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"days":       gorm.Expr("excluded.days"),
					"version":    gorm.Expr("weekly_timetables.version + 1"),
					"updated_at": gorm.Expr("NOW()"),
				}),
			},
			clause.Returning{},
		).
		Create(t).Error
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Mutate 事务内 SELECT … FOR UPDATE 加锁后修改
// 行不存在时对空课表执行 fn，仅在有改动时插入（版本号 1）；无改动不落库，返回版本号 0 的空课表
func (r *timetableRepo) Mutate(ctx context.Context, ownerID string, fn MutateFunc) (*model.WeeklyTimetable, error) {
	var t model.WeeklyTimetable
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := lockTimetable(tx, ownerID, &t)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			created, err := insertFromEmpty(tx, ownerID, fn)
			if err != nil {
				return err
			}
			if created != nil {
				t = *created
				return nil
			}
			// 并发插入已抢先，改为在已有行上修改
			err = lockTimetable(tx, ownerID, &t)
		}
		if err != nil {
			return err
		}

		next, changed, err := fn(t.DayMap())
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		t.SetDays(next)
		t.Version++
		return tx.Save(&t).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func lockTimetable(tx *gorm.DB, ownerID string, t *model.WeeklyTimetable) error {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("owner_id = ?", ownerID).
		First(t).Error
}

// insertFromEmpty 在空课表上执行 fn
// 无改动时返回未持久化的空课表；唯一键冲突（并发插入）时返回 nil
func insertFromEmpty(tx *gorm.DB, ownerID string, fn MutateFunc) (*model.WeeklyTimetable, error) {
	seed := model.EmptyTimetable(ownerID)
	next, changed, err := fn(seed.DayMap())
	if err != nil {
		return nil, err
	}
	if !changed {
		return seed, nil
	}

	seed.SetDays(next)
	seed.Version = 1
	res := tx.Clauses(
		clause.OnConflict{Columns: []clause.Column{{Name: "owner_id"}}, DoNothing: true},
		clause.Returning{},
	).Create(seed)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return seed, nil
}

func (r *timetableRepo) ListOwnerIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.WeeklyTimetable{}).
		Order("owner_id ASC").
		Pluck("owner_id", &ids).Error
	return ids, err
}
