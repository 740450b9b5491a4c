package xobserve

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/omeyang/sigflow/pkg/context/xcorr"
	"github.com/omeyang/sigflow/pkg/observability/xmetric"
	"github.com/omeyang/sigflow/pkg/observability/xsignal"
)

// HeaderTraceID 携带关联标识的响应头。
const HeaderTraceID = "X-Trace-ID"

// Middleware 返回请求观测拦截器。
//
// 每个入站请求：分配关联标识、写入开始日志；下游正常返回后写入
// 两条指标记录、一条根 Span 与完成日志，并更新进程内注册表 reg；
// 下游 panic 时写入 ERROR 日志后原样重新抛出。
//
// rec 为 nil 时 panic（组装期错误，启动即暴露）。reg 为 nil 时
// 跳过进程内指标，仅写信号存储。
func Middleware(rec Recorder, reg *xmetric.Registry, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	if rec == nil {
		panic("xobserve: nil recorder")
	}

	options := defaultMiddlewareOptions()
	for _, opt := range opts {
		opt(options)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, err := xcorr.Ensure(r.Context())
			if err != nil {
				// Ensure 只在 ctx 为 nil 时出错，http.Server 保证非 nil
				next.ServeHTTP(w, r)
				return
			}
			traceID := xcorr.FromContext(ctx)
			r = r.WithContext(ctx)

			start := time.Now()
			method := r.Method
			path := r.URL.Path

			rec.Log(ctx, xsignal.LogRecord{
				Timestamp: time.Now(),
				TraceID:   traceID,
				Level:     string(xsignal.LevelInfo),
				Message:   fmt.Sprintf("Starting request: %s %s", method, path),
				Service:   options.ServiceName,
				Extra:     xsignal.KV{"method": method, "path": path}.Text(),
			})

			// 响应头必须在首次写入响应体之前设置
			w.Header().Set(HeaderTraceID, traceID)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				if rv := recover(); rv != nil {
					duration := time.Since(start)
					rec.Log(ctx, xsignal.LogRecord{
						Timestamp: time.Now(),
						TraceID:   traceID,
						Level:     string(xsignal.LevelError),
						Message:   fmt.Sprintf("Request failed: %v", rv),
						Service:   options.ServiceName,
						Extra: xsignal.KV{
							"error":    fmt.Sprint(rv),
							"duration": duration.Seconds(),
						}.Text(),
					})
					// 只观测不处置：交还给外层的 panic 处理
					panic(rv)
				}
			}()

			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			status := ww.Status()
			if status == 0 {
				// handler 未显式写入时 net/http 默认 200
				status = http.StatusOK
			}

			labels := xsignal.KV{
				"method":   method,
				"endpoint": path,
				"status":   status,
			}.Text()

			now := time.Now()
			rec.Metric(ctx, xsignal.MetricRecord{
				Timestamp:  now,
				TraceID:    traceID,
				MetricName: xmetric.MetricRequestsTotal,
				Value:      1,
				Labels:     labels,
			})
			rec.Metric(ctx, xsignal.MetricRecord{
				Timestamp:  now,
				TraceID:    traceID,
				MetricName: xmetric.MetricRequestDuration,
				Value:      duration.Seconds(),
				Labels:     labels,
			})

			rec.Trace(ctx, xsignal.TraceRecord{
				Timestamp:     now,
				TraceID:       traceID,
				SpanID:        uuid.NewString(),
				ParentSpanID:  "",
				OperationName: fmt.Sprintf("%s %s", method, path),
				DurationMS:    float64(duration) / float64(time.Millisecond),
				ServiceName:   options.ServiceName,
				Tags:          labels,
			})

			rec.Log(ctx, xsignal.LogRecord{
				Timestamp: time.Now(),
				TraceID:   traceID,
				Level:     string(xsignal.LevelInfo),
				Message:   fmt.Sprintf("Request completed: %d", status),
				Service:   options.ServiceName,
				Extra: xsignal.KV{
					"method":      method,
					"path":        path,
					"status_code": status,
					"duration":    duration.Seconds(),
				}.Text(),
			})

			if reg != nil {
				reg.IncRequests(method, path, status)
				reg.ObserveDuration(duration.Seconds())
			}
		})
	}
}
