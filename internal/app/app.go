package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/omeyang/sigflow/pkg/config/xconf"
	"github.com/omeyang/sigflow/pkg/lifecycle/xrun"
	"github.com/omeyang/sigflow/pkg/observability/xlog"
	"github.com/omeyang/sigflow/pkg/observability/xmetric"
	"github.com/omeyang/sigflow/pkg/observability/xobserve"
	"github.com/omeyang/sigflow/pkg/observability/xquery"
	"github.com/omeyang/sigflow/pkg/observability/xrotate"
	"github.com/omeyang/sigflow/pkg/storage/xsink"
)

// App 是组装完成的 sigflow 服务实例。
type App struct {
	cfg    *Config
	source xconf.Config

	logger     xlog.LoggerWithLevel
	logCleanup func() error
	sink       xsink.Sink
	recorder   xobserve.Recorder
	registry   *xmetric.Registry
	server     *http.Server

	closeOnce sync.Once
	closeErr  error
}

// New 按配置组装服务的全部组件。
//
// 组装顺序：日志 → 信号存储（连接 + 就绪等待 + 建表）→ 记录器 →
// 指标注册表 → 查询服务 → HTTP 服务器。存储不可达时返回错误，
// 进程应以非零退出码终止。
//
// source 是可热加载的配置源，可为 nil（纯默认配置启动）。
func New(ctx context.Context, cfg *Config, source xconf.Config) (*App, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, logCleanup, err := buildLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("app: build logger: %w", err)
	}
	// 进程级默认日志指向同一实例，库内部诊断日志与服务日志合流
	xlog.SetDefault(logger)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: cfg.ClickHouse.Addr,
		Auth: clickhouse.Auth{
			Database: cfg.ClickHouse.Database,
			Username: cfg.ClickHouse.Username,
			Password: cfg.ClickHouse.Password,
		},
		DialTimeout: cfg.ClickHouse.DialTimeout,
	})
	if err != nil {
		_ = logCleanup()
		return nil, fmt.Errorf("app: open clickhouse: %w", err)
	}

	sink, err := xsink.New(conn)
	if err != nil {
		_ = conn.Close()
		_ = logCleanup()
		return nil, err
	}

	if err := sink.WaitReady(ctx); err != nil {
		_ = sink.Close()
		_ = logCleanup()
		return nil, fmt.Errorf("app: clickhouse not ready: %w", err)
	}
	if err := xsink.EnsureTables(ctx, sink); err != nil {
		_ = sink.Close()
		_ = logCleanup()
		return nil, fmt.Errorf("app: ensure tables: %w", err)
	}

	recOpts := []xobserve.RecorderOption{
		xobserve.WithQueueSize(cfg.Recorder.QueueSize),
		xobserve.WithWriteTimeout(cfg.Recorder.WriteTimeout),
		xobserve.WithBreakerThreshold(cfg.Recorder.BreakerThreshold),
		xobserve.WithBreakerCooldown(cfg.Recorder.BreakerCooldown),
		xobserve.WithRecorderLogger(logger),
	}
	if cfg.Recorder.Sync {
		recOpts = append(recOpts, xobserve.WithSync())
	}
	recorder, err := xobserve.NewRecorder(sink, recOpts...)
	if err != nil {
		_ = sink.Close()
		_ = logCleanup()
		return nil, err
	}

	registry := xmetric.New()

	querySvc, err := xquery.NewService(sink)
	if err != nil {
		_ = recorder.Close()
		_ = sink.Close()
		_ = logCleanup()
		return nil, err
	}

	router := newRouter(recorder, registry, querySvc, logger, cfg.Service.Name)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		source:     source,
		logger:     logger,
		logCleanup: logCleanup,
		sink:       sink,
		recorder:   recorder,
		registry:   registry,
		server:     server,
	}, nil
}

// buildLogger 按配置构建进程日志。
func buildLogger(cfg LogConfig) (xlog.LoggerWithLevel, func() error, error) {
	builder := xlog.New().
		SetLevelString(cfg.Level).
		SetFormat(cfg.Format)

	if cfg.File != "" {
		var opts []xrotate.Option
		if cfg.MaxSizeMB > 0 {
			opts = append(opts, xrotate.WithMaxSize(cfg.MaxSizeMB))
		}
		if cfg.MaxBackups > 0 {
			opts = append(opts, xrotate.WithMaxBackups(cfg.MaxBackups))
		}
		if cfg.MaxAgeDays > 0 {
			opts = append(opts, xrotate.WithMaxAge(cfg.MaxAgeDays))
		}
		builder.SetRotation(cfg.File, opts...)
	}

	return builder.Build()
}

// Run 运行服务直到收到终止信号或组件出错。
//
// 信号退出视为正常终止（返回 nil），组件错误原样返回。
// Run 返回前按依赖逆序释放资源：记录器先于存储关闭，
// 保证队列中的记录完成写入。
func (a *App) Run(ctx context.Context) error {
	defer func() { _ = a.Close() }()

	services := []func(ctx context.Context) error{
		xrun.HTTPServer(a.server, a.cfg.Server.ShutdownTimeout),
	}

	if a.source != nil && a.source.Path() != "" {
		watcher, err := xconf.Watch(a.source, a.onConfigReload)
		if err != nil {
			return fmt.Errorf("app: watch config: %w", err)
		}
		services = append(services, func(ctx context.Context) error {
			watcher.StartAsync()
			<-ctx.Done()
			_ = watcher.Stop()
			return ctx.Err()
		})
	}

	a.logger.Info(ctx, "server starting",
		slog.String("service", a.cfg.Service.Name),
		slog.String("addr", a.cfg.Server.Addr),
	)

	err := xrun.RunWithOptions(ctx,
		[]xrun.Option{
			xrun.WithName(a.cfg.Service.Name),
			xrun.WithLogger(a.logger),
		},
		services...,
	)
	if errors.Is(err, xrun.ErrSignal) {
		a.logger.Info(context.Background(), "server stopped on signal", xlog.Err(err))
		return nil
	}
	return err
}

// onConfigReload 处理配置文件热加载。
//
// 设计决策: 仅日志级别支持热加载。监听地址、存储连接等其余
// 配置变更涉及组件重建，需要重启进程才能生效。
func (a *App) onConfigReload(c xconf.Config, err error) {
	ctx := context.Background()
	if err != nil {
		a.logger.Warn(ctx, "config reload failed", xlog.Err(err))
		return
	}

	var lc LogConfig
	if err := c.Unmarshal("log", &lc); err != nil {
		a.logger.Warn(ctx, "config reload: parse log section failed", xlog.Err(err))
		return
	}

	level, err := xlog.ParseLevel(lc.Level)
	if err != nil {
		a.logger.Warn(ctx, "config reload: invalid log level",
			slog.String("level", lc.Level))
		return
	}
	if a.logger.GetLevel() != level {
		a.logger.SetLevel(level)
		a.logger.Info(ctx, "log level updated", slog.String("level", level.String()))
	}
}

// Close 释放服务资源。多次调用安全，返回首次关闭的结果。
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		var errs []error
		// 记录器先关闭：排空队列后存储才能安全断开
		if err := a.recorder.Close(); err != nil && !errors.Is(err, xobserve.ErrRecorderClosed) {
			errs = append(errs, err)
		}
		if err := a.sink.Close(); err != nil && !errors.Is(err, xsink.ErrClosed) {
			errs = append(errs, err)
		}
		if err := a.logCleanup(); err != nil {
			errs = append(errs, err)
		}
		a.closeErr = errors.Join(errs...)
	})
	return a.closeErr
}
