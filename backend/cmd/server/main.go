package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/raghava-0650/Attendeese/backend/config"
	"github.com/raghava-0650/Attendeese/backend/internal/api/handler"
	"github.com/raghava-0650/Attendeese/backend/internal/api/router"
	"github.com/raghava-0650/Attendeese/backend/internal/cron"
	"github.com/raghava-0650/Attendeese/backend/internal/repository"
	"github.com/raghava-0650/Attendeese/backend/internal/service"
	"github.com/raghava-0650/Attendeese/backend/pkg/database"
	"github.com/raghava-0650/Attendeese/backend/pkg/identity"
	applogger "github.com/raghava-0650/Attendeese/backend/pkg/logger"
	"github.com/raghava-0650/Attendeese/backend/pkg/redis"
)

func main() {
	// 0. 加载 .env（不存在时忽略）
	_ = godotenv.Load()

	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("ATTENDESE_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("auth_provider", cfg.Auth.Provider),
	)

	if err := handler.RegisterValidators(); err != nil {
		logger.Fatal("注册校验规则失败", zap.Error(err))
	}

	// 3. 存储层
	var (
		db   *gorm.DB
		repo *repository.Repository
	)
	if cfg.Database.Driver == "memory" {
		logger.Warn("使用内存存储，进程退出后数据丢失")
		repo = repository.NewMemoryRepository()
	} else {
		db, err = database.NewDB(&cfg.Database, cfg.Log.Level, logger)
		if err != nil {
			logger.Fatal("数据库连接失败", zap.Error(err))
		}
		logger.Info("数据库连接成功")

		// 3.1 执行数据库迁移
		sqlDB, err := db.DB()
		if err != nil {
			logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
		}
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			logger.Fatal("数据库迁移失败", zap.Error(err))
		}
		repo = repository.NewRepository(db)
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var (
		rdb   *redis.Client
		cache service.TimetableCache
	)
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，课表缓存与限流将不可用", zap.Error(err))
			rdb = nil
		} else {
			cache = rdb
		}
	}

	// 5. 身份校验
	verifier, err := identity.NewVerifier(&cfg.Auth)
	if err != nil {
		logger.Fatal("初始化身份校验失败", zap.Error(err))
	}

	// 6. 依赖注入: Repository → Service → Handler
	svc := service.NewService(cfg, repo, cache, logger)
	h := handler.NewHandler(svc)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, verifier, rdb, logger)

	// 8. 定时任务
	var scheduler *cron.Scheduler
	if cfg.Cron.Enabled {
		scheduler, err = cron.NewScheduler(cfg.Cron.ReconcileSpec, svc.Timetable, logger)
		if err != nil {
			logger.Fatal("定时任务配置无效", zap.Error(err))
		}
		scheduler.Start()
	}

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if scheduler != nil {
		scheduler.Stop(ctx)
	}

	// 关闭数据库连接
	if db != nil {
		if closeDB, _ := db.DB(); closeDB != nil {
			closeDB.Close()
		}
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
