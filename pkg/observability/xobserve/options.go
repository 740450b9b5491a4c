package xobserve

import (
	"time"

	"github.com/omeyang/sigflow/pkg/observability/xlog"
)

// =============================================================================
// Recorder 选项
// =============================================================================

// RecorderOptions 包含记录器的配置选项。
type RecorderOptions struct {
	// Async 是否异步写入。
	// true 时写入经过后台单 worker FIFO 队列，请求不等待写入完成；
	// false 时在调用方 goroutine 内同步写入（错误同样不向上传播）。
	Async bool

	// QueueSize 异步队列容量。队列满时新记录被丢弃并记录诊断日志。
	QueueSize int

	// WriteTimeout 单次存储写入的超时时间。
	WriteTimeout time.Duration

	// BreakerThreshold 熔断阈值：连续写入失败达到该次数后熔断。
	// 为 0 时禁用熔断器。
	BreakerThreshold uint32

	// BreakerCooldown 熔断后冷却时长，之后进入半开试探。
	BreakerCooldown time.Duration

	// Logger 进程级诊断日志。写入失败、队列丢弃都经由此处，
	// 从不进入请求路径。
	Logger xlog.Logger
}

// RecorderOption 是用于配置 RecorderOptions 的函数类型。
type RecorderOption func(*RecorderOptions)

// 默认值常量。
const (
	// DefaultQueueSize 默认异步队列容量。
	DefaultQueueSize = 1024

	// DefaultWriteTimeout 默认单次写入超时。
	DefaultWriteTimeout = 5 * time.Second

	// DefaultBreakerThreshold 默认熔断阈值（连续失败次数）。
	DefaultBreakerThreshold = 5

	// DefaultBreakerCooldown 默认熔断冷却时长。
	DefaultBreakerCooldown = 30 * time.Second
)

// defaultRecorderOptions 返回默认选项。
func defaultRecorderOptions() *RecorderOptions {
	return &RecorderOptions{
		Async:            true,
		QueueSize:        DefaultQueueSize,
		WriteTimeout:     DefaultWriteTimeout,
		BreakerThreshold: DefaultBreakerThreshold,
		BreakerCooldown:  DefaultBreakerCooldown,
		Logger:           xlog.Default(),
	}
}

// WithSync 设置同步写入模式。
func WithSync() RecorderOption {
	return func(o *RecorderOptions) {
		o.Async = false
	}
}

// WithQueueSize 设置异步队列容量。
func WithQueueSize(n int) RecorderOption {
	return func(o *RecorderOptions) {
		if n > 0 {
			o.QueueSize = n
		}
	}
}

// WithWriteTimeout 设置单次存储写入超时。
func WithWriteTimeout(d time.Duration) RecorderOption {
	return func(o *RecorderOptions) {
		if d > 0 {
			o.WriteTimeout = d
		}
	}
}

// WithBreakerThreshold 设置熔断阈值。设置为 0 禁用熔断器。
func WithBreakerThreshold(n uint32) RecorderOption {
	return func(o *RecorderOptions) {
		o.BreakerThreshold = n
	}
}

// WithBreakerCooldown 设置熔断冷却时长。
func WithBreakerCooldown(d time.Duration) RecorderOption {
	return func(o *RecorderOptions) {
		if d > 0 {
			o.BreakerCooldown = d
		}
	}
}

// WithRecorderLogger 设置进程级诊断日志。
func WithRecorderLogger(l xlog.Logger) RecorderOption {
	return func(o *RecorderOptions) {
		if l != nil {
			o.Logger = l
		}
	}
}

// =============================================================================
// Middleware 选项
// =============================================================================

// MiddlewareOptions 包含拦截器的配置选项。
type MiddlewareOptions struct {
	// ServiceName 写入日志/Span 记录的服务名，部署期固定。
	ServiceName string
}

// MiddlewareOption 是用于配置 MiddlewareOptions 的函数类型。
type MiddlewareOption func(*MiddlewareOptions)

// DefaultServiceName 默认服务名。
const DefaultServiceName = "sigflow"

func defaultMiddlewareOptions() *MiddlewareOptions {
	return &MiddlewareOptions{
		ServiceName: DefaultServiceName,
	}
}

// WithServiceName 设置服务名。空字符串被忽略（保持默认值）。
func WithServiceName(name string) MiddlewareOption {
	return func(o *MiddlewareOptions) {
		if name != "" {
			o.ServiceName = name
		}
	}
}
