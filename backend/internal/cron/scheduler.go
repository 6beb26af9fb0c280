package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/raghava-0650/Attendeese/backend/internal/service"
)

// reconcileTimeout 单次巡检的最长耗时
const reconcileTimeout = 5 * time.Minute

// Scheduler 定时任务调度器
type Scheduler struct {
	c            *cron.Cron
	timetableSvc service.TimetableService
	logger       *zap.Logger
}

// NewScheduler 创建调度器并注册课表巡检任务
// spec 为 cron 表达式或 @daily 这类描述符
func NewScheduler(spec string, timetableSvc service.TimetableService, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		c:            cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger))),
		timetableSvc: timetableSvc,
		logger:       logger.Named("cron"),
	}
	if _, err := s.c.AddFunc(spec, s.ReportOrphans); err != nil {
		return nil, err
	}
	return s, nil
}

// Start 启动调度（非阻塞）
func (s *Scheduler) Start() {
	s.c.Start()
	s.logger.Info("定时任务已启动")
}

// Stop 停止调度并等待正在运行的任务结束
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.c.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("等待定时任务结束超时")
	}
}

// ReportOrphans 逐个用户检查课表中没有对应科目的条目，只报告不清理
func (s *Scheduler) ReportOrphans() {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	owners, err := s.timetableSvc.ListOwners(ctx)
	if err != nil {
		s.logger.Error("课表巡检失败: 无法列出用户", zap.Error(err))
		return
	}

	total := 0
	for _, owner := range owners {
		if ctx.Err() != nil {
			s.logger.Warn("课表巡检超时，提前结束", zap.Int("checked", total))
			return
		}
		report, err := s.timetableSvc.Reconcile(ctx, owner, false)
		if err != nil {
			s.logger.Error("课表巡检失败", zap.String("owner_id", owner), zap.Error(err))
			continue
		}
		if n := len(report.Orphans); n > 0 {
			s.logger.Warn("发现无主课表条目", zap.String("owner_id", owner), zap.Int("count", n))
		}
		total++
	}

	s.logger.Info("课表巡检完成", zap.Int("owners", total))
}
