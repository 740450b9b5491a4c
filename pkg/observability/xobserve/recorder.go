package xobserve

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/sony/gobreaker/v2"

	"github.com/omeyang/sigflow/pkg/observability/xsignal"
	"github.com/omeyang/sigflow/pkg/storage/xsink"
)

// =============================================================================
// 接口定义
// =============================================================================

// Recorder 定义信号记录器接口：拦截器的扇出写入端。
//
// 所有方法都是 fire-and-forget 的：写入失败不向调用方返回，
// 只进入进程级诊断日志。可被多个请求 goroutine 并发调用。
type Recorder interface {
	// Log 记录一条日志信号。
	Log(ctx context.Context, rec xsignal.LogRecord)

	// Metric 记录一条指标信号。
	Metric(ctx context.Context, rec xsignal.MetricRecord)

	// Trace 记录一条链路信号。
	Trace(ctx context.Context, rec xsignal.TraceRecord)

	// Close 关闭记录器。异步模式下等待队列排空。
	// 多次调用安全，第二次及后续调用返回 ErrRecorderClosed。
	Close() error
}

// NopRecorder 空实现，丢弃所有记录。用于测试或禁用观测的场景。
type NopRecorder struct{}

// Log 实现 Recorder 接口。
func (NopRecorder) Log(context.Context, xsignal.LogRecord) {}

// Metric 实现 Recorder 接口。
func (NopRecorder) Metric(context.Context, xsignal.MetricRecord) {}

// Trace 实现 Recorder 接口。
func (NopRecorder) Trace(context.Context, xsignal.TraceRecord) {}

// Close 实现 Recorder 接口。
func (NopRecorder) Close() error { return nil }

// =============================================================================
// sinkRecorder 实现
// =============================================================================

// writeJob 单条信号写入任务。
type writeJob struct {
	table string
	row   any
}

// sinkRecorder 将信号写入 xsink.Sink 的 Recorder 实现。
//
// 异步模式：单 worker 消费 FIFO 队列。入队顺序即写入顺序，
// 因此同一请求内先入队的开始日志必然先于完成/失败日志写入。
// 跨请求之间没有顺序保证。
type sinkRecorder struct {
	sink xsink.Sink
	opts *RecorderOptions

	// breaker 写入路径熔断器，存储持续不可达时快速失败。
	// 为 nil 时直接写入。
	breaker *gobreaker.CircuitBreaker[any]

	jobs    chan writeJob
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

// NewRecorder 创建写入 sink 的信号记录器。
//
// 默认异步模式（队列容量 DefaultQueueSize、熔断阈值
// DefaultBreakerThreshold）。WithSync 切换为同步写入。
func NewRecorder(sink xsink.Sink, opts ...RecorderOption) (Recorder, error) {
	if sink == nil {
		return nil, ErrNilSink
	}

	options := defaultRecorderOptions()
	for _, opt := range opts {
		opt(options)
	}

	r := &sinkRecorder{
		sink: sink,
		opts: options,
	}

	if options.BreakerThreshold > 0 {
		r.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
			Name:    "xobserve-writes",
			Timeout: options.BreakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= options.BreakerThreshold
			},
		})
	}

	if options.Async {
		r.jobs = make(chan writeJob, options.QueueSize)
		r.wg.Add(1)
		go r.worker()
	}

	return r, nil
}

// Log 实现 Recorder 接口。
func (r *sinkRecorder) Log(ctx context.Context, rec xsignal.LogRecord) {
	r.record(ctx, xsignal.TableLogs, rec)
}

// Metric 实现 Recorder 接口。
func (r *sinkRecorder) Metric(ctx context.Context, rec xsignal.MetricRecord) {
	r.record(ctx, xsignal.TableMetrics, rec)
}

// Trace 实现 Recorder 接口。
func (r *sinkRecorder) Trace(ctx context.Context, rec xsignal.TraceRecord) {
	r.record(ctx, xsignal.TableTraces, rec)
}

// record 分发单条记录：异步入队或同步写入。
//
// 设计决策: 写入使用与请求 context 脱钩的 context
// （context.WithoutCancel + 写入超时）。请求中途取消时，
// 终态日志仍应尽力写入，而不是随请求一起被取消。
func (r *sinkRecorder) record(ctx context.Context, table string, row any) {
	if !r.opts.Async {
		r.write(context.WithoutCancel(ctx), table, row)
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.dropped.Add(1)
		return
	}

	select {
	case r.jobs <- writeJob{table: table, row: row}:
	default:
		// 队列满：丢弃而非阻塞请求路径
		r.dropped.Add(1)
		r.opts.Logger.Warn(context.WithoutCancel(ctx), "xobserve: write queue full, dropping signal",
			slog.String("table", table))
	}
}

// worker 异步写入循环。单 goroutine 消费保证 FIFO 顺序。
func (r *sinkRecorder) worker() {
	defer r.wg.Done()
	for job := range r.jobs {
		r.write(context.Background(), job.table, job.row)
	}
}

// write 执行一次存储写入，失败只记诊断日志。
func (r *sinkRecorder) write(ctx context.Context, table string, row any) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.WriteTimeout)
	defer cancel()

	insert := func() error { return r.sink.Insert(ctx, table, []any{row}) }

	var err error
	if r.breaker != nil {
		_, err = r.breaker.Execute(func() (any, error) { return nil, insert() })
	} else {
		err = insert()
	}
	if err != nil {
		r.opts.Logger.Error(ctx, "xobserve: signal write failed",
			slog.String("table", table),
			slog.Any("error", err))
	}
}

// Dropped 返回因队列满或关闭而丢弃的记录数。
func (r *sinkRecorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close 关闭记录器，异步模式下等待队列排空。
func (r *sinkRecorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRecorderClosed
	}
	r.closed = true
	if r.jobs != nil {
		close(r.jobs)
	}
	r.mu.Unlock()

	r.wg.Wait()
	return nil
}
