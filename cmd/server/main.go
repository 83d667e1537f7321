package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/SanghaLM/Code-to-Give-Team10-sub000/config"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/api/handler"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/api/router"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/api/validation"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/model"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/repository"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/internal/service"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/database"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/jwt"
	applogger "github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/logger"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/redis"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/storage"
	"github.com/SanghaLM/Code-to-Give-Team10-sub000/pkg/tracing"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("HW_CONFIG"))
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
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	ctx := context.Background()

	// 3. 链路追踪（未启用时为空操作）
	shutdownTracing, err := tracing.Init(ctx, &cfg.Tracing, logger)
	if err != nil {
		logger.Fatal("链路追踪初始化失败", zap.Error(err))
	}

	// 4. 连接数据库并迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	if err := database.Migrate(db, cfg.Database.Driver, logger, model.All()...); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 5. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与上传限流将不可用", zap.Error(err))
		rdb = nil
	}

	// 6. 录音存储
	store, err := storage.New(ctx, &cfg.Storage)
	if err != nil {
		logger.Fatal("录音存储初始化失败", zap.Error(err))
	}

	// 7. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 8. 依赖注入: Repository → Service → Handler
	// rdb 为 nil 时必须传入 nil 接口，避免接口持有 nil 指针
	var (
		blacklist service.TokenBlacklist
		opts      router.Options
	)
	if rdb != nil {
		blacklist = rdb
		opts.Blacklist = rdb
		opts.Limiter = rdb
	}
	if local, ok := store.(*storage.Local); ok {
		opts.UploadDir = local.BasePath()
	}

	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, blacklist, store, logger)
	h := handler.NewHandler(cfg, svc)

	// 9. 注册自定义校验规则并初始化路由
	if err := validation.Register(); err != nil {
		logger.Fatal("注册校验规则失败", zap.Error(err))
	}
	engine := router.Setup(cfg, h, jwtMgr, opts, logger)

	// 10. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 11. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("链路追踪关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}

	// 关闭云存储客户端
	if closer, ok := store.(io.Closer); ok {
		closer.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
