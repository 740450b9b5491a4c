package xmetric

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 指标名常量。ClickHouse 指标记录与 Prometheus 序列共用同一命名。
const (
	// MetricRequestsTotal HTTP 请求计数序列名。
	MetricRequestsTotal = "http_requests_total"

	// MetricRequestDuration HTTP 请求耗时序列名（秒）。
	MetricRequestDuration = "http_request_duration_seconds"
)

// Registry 进程内指标注册表。
//
// 独立 prometheus.Registry 实例（不使用全局 DefaultRegisterer），
// 显式构造、依赖注入，进程启动时创建一次、各请求共享。
// 序列更新由 prometheus 客户端保证原子性，可被并发调用。
type Registry struct {
	reg *prometheus.Registry

	// requests 请求计数器，按 method/endpoint/status 区分序列。
	requests *prometheus.CounterVec

	// duration 请求耗时直方图（不带标签，与写入信号存储的
	// 耗时记录共用序列名）。
	duration prometheus.Histogram
}

// New 创建指标注册表并注册 HTTP 序列。
//
// 注册表创建后 /metrics 即可拉取两个序列族（零值基线计数序列与
// 零样本直方图），不依赖任何请求先到达。
func New() *Registry {
	reg := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricRequestsTotal,
			Help: "Total HTTP Requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	duration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    MetricRequestDuration,
			Help:    "HTTP Request Duration",
			Buckets: prometheus.DefBuckets,
		},
	)

	reg.MustRegister(requests, duration)

	// 预置零值基线序列。无子序列的 CounterVec 在 Gather 时整族缺失，
	// 基线保证计数族从进程启动即出现在 /metrics
	requests.WithLabelValues(http.MethodGet, "/", strconv.Itoa(http.StatusOK))

	return &Registry{
		reg:      reg,
		requests: requests,
		duration: duration,
	}
}

// IncRequests 原子递增一次请求计数。
func (r *Registry) IncRequests(method, endpoint string, status int) {
	r.requests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
}

// ObserveDuration 记录一次请求耗时（秒）。
func (r *Registry) ObserveDuration(seconds float64) {
	r.duration.Observe(seconds)
}

// Handler 返回 Prometheus 文本格式的拉取端点 handler。
//
// 响应体为 exposition 文本格式，Content-Type 由 promhttp 设置。
// 快照读取与并发更新安全。
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer 返回底层 Gatherer，用于测试或自定义暴露方式。
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
