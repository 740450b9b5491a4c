package xsignal

import "time"

// =============================================================================
// 表名常量
// =============================================================================

// 信号表名。三张表共享 trace_id 关联键。
const (
	// TableLogs 日志表。
	TableLogs = "logs"

	// TableMetrics 指标表。
	TableMetrics = "metrics"

	// TableTraces 链路表。
	TableTraces = "traces"
)

// =============================================================================
// 日志级别
// =============================================================================

// Level 日志记录级别。
type Level string

// 日志级别常量。
const (
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

// =============================================================================
// 记录类型
// =============================================================================

// LogRecord 请求生命周期日志记录。
//
// ch 标签对应 ClickHouse 列名（AppendStruct / Select 依赖），
// json 标签对应关联查询接口的响应字段。
type LogRecord struct {
	// Timestamp 记录时间，毫秒精度（DateTime64(3)）。
	Timestamp time.Time `ch:"timestamp" json:"timestamp"`

	// TraceID 关联标识，每个请求全局唯一。
	TraceID string `ch:"trace_id" json:"trace_id"`

	// Level 日志级别（INFO/ERROR）。
	Level string `ch:"level" json:"level"`

	// Message 日志正文。
	Message string `ch:"message" json:"message"`

	// Service 服务名，部署期固定。
	Service string `ch:"service" json:"service"`

	// Extra 扩展字段，KV 序列化后的不透明文本。
	Extra string `ch:"extra_fields" json:"extra_fields"`
}

// MetricRecord 量化指标记录。
type MetricRecord struct {
	Timestamp time.Time `ch:"timestamp" json:"timestamp"`
	TraceID   string    `ch:"trace_id" json:"trace_id"`

	// MetricName 指标名，如 http_requests_total。
	MetricName string `ch:"metric_name" json:"metric_name"`

	// Value 指标值。计数类记录为 1，耗时类记录为秒数。
	Value float64 `ch:"value" json:"value"`

	// Labels 标签集，KV 序列化后的不透明文本。
	Labels string `ch:"labels" json:"labels"`
}

// TraceRecord 链路 Span 记录。
type TraceRecord struct {
	Timestamp time.Time `ch:"timestamp" json:"timestamp"`
	TraceID   string    `ch:"trace_id" json:"trace_id"`

	// SpanID 每个 Span 唯一。
	SpanID string `ch:"span_id" json:"span_id"`

	// ParentSpanID 父 Span 标识，空字符串表示根 Span。
	ParentSpanID string `ch:"parent_span_id" json:"parent_span_id"`

	// OperationName 操作名，如 "GET /users/42"。
	OperationName string `ch:"operation_name" json:"operation_name"`

	// DurationMS Span 耗时（毫秒），非负。
	DurationMS float64 `ch:"duration_ms" json:"duration_ms"`

	// ServiceName 服务名。
	ServiceName string `ch:"service_name" json:"service_name"`

	// Tags 标签集，KV 序列化后的不透明文本。
	Tags string `ch:"tags" json:"tags"`
}
