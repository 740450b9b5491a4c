package xsink

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// =============================================================================
// 接口定义
// =============================================================================

// Sink 定义信号存储客户端接口。
//
// 并发安全：所有方法可被多个请求 goroutine 同时调用。
// 行级写入是原子单元，不同请求的并发插入不会在单行内交错。
type Sink interface {
	// Client 返回底层 ClickHouse 连接。
	// 可用于执行任意未包装的操作。关闭后仍可调用，
	// 但底层连接操作会返回驱动层错误。
	Client() driver.Conn

	// Exec 执行 DDL 语句（建表等）。
	// 关闭后调用返回 ErrClosed。
	Exec(ctx context.Context, statement string) error

	// Insert 将 rows 批量插入 table。
	// rows 中的元素须为带 ch 标签的结构体（或其指针），
	// 通过 AppendStruct 追加。整批原子：要么全部成功，要么全部失败。
	// 关闭后调用返回 ErrClosed。
	Insert(ctx context.Context, table string, rows []any) error

	// Select 执行参数化查询并将结果扫描到 dest（结构体切片指针）。
	// 参数通过占位符绑定，杜绝拼接注入。
	// 关闭后调用返回 ErrClosed。
	Select(ctx context.Context, dest any, query string, args ...any) error

	// Health 执行健康检查（Ping）。
	// 关闭后调用返回 ErrClosed。
	Health(ctx context.Context) error

	// WaitReady 等待存储可达，按选项配置的次数与退避间隔重试 Ping。
	// 用于进程启动阶段；ctx 取消时立即返回。
	WaitReady(ctx context.Context) error

	// Stats 返回统计信息（写入/查询/健康检查计数与连接池状态）。
	Stats() Stats

	// Close 关闭连接。多次调用安全，第二次及后续调用返回 ErrClosed。
	Close() error
}

// =============================================================================
// 选项模式
// =============================================================================

// Options 包含 Sink 的配置选项。
type Options struct {
	// HealthTimeout 健康检查超时时间。
	// 如果为 0，使用 context 自身的超时。
	HealthTimeout time.Duration

	// ReadyAttempts WaitReady 的最大重试次数。
	ReadyAttempts uint

	// ReadyBackoff WaitReady 的初始退避间隔（指数增长）。
	ReadyBackoff time.Duration
}

// Option 是用于配置 Options 的函数类型。
type Option func(*Options)

// 默认值常量。
const (
	// DefaultHealthTimeout 默认健康检查超时。
	DefaultHealthTimeout = 5 * time.Second

	// DefaultReadyAttempts 默认启动重试次数。
	DefaultReadyAttempts = 5

	// DefaultReadyBackoff 默认启动重试初始退避。
	DefaultReadyBackoff = 500 * time.Millisecond
)

// defaultOptions 返回默认选项。
func defaultOptions() *Options {
	return &Options{
		HealthTimeout: DefaultHealthTimeout,
		ReadyAttempts: DefaultReadyAttempts,
		ReadyBackoff:  DefaultReadyBackoff,
	}
}

// WithHealthTimeout 设置健康检查超时时间。
func WithHealthTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		if timeout > 0 {
			o.HealthTimeout = timeout
		}
	}
}

// WithReadyAttempts 设置 WaitReady 最大重试次数。
func WithReadyAttempts(n uint) Option {
	return func(o *Options) {
		if n > 0 {
			o.ReadyAttempts = n
		}
	}
}

// WithReadyBackoff 设置 WaitReady 初始退避间隔。
func WithReadyBackoff(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.ReadyBackoff = d
		}
	}
}

// =============================================================================
// 工厂函数
// =============================================================================

// New 创建信号存储客户端。
// client 是已创建的 ClickHouse 连接，opts 是可选配置。
func New(client driver.Conn, opts ...Option) (Sink, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	return &clickhouseSink{
		conn:    client,
		options: options,
	}, nil
}
