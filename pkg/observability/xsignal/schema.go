package xsignal

// =============================================================================
// 表结构 DDL
// =============================================================================

// DDLLogs 日志表建表语句。
// 按 (timestamp, trace_id, level) 排序，支持高效的关联标识扫描。
const DDLLogs = `
CREATE TABLE IF NOT EXISTS logs (
    timestamp DateTime64(3),
    trace_id String,
    level String,
    message String,
    service String,
    extra_fields String
) ENGINE = MergeTree()
ORDER BY (timestamp, trace_id, level)
`

// DDLMetrics 指标表建表语句。
const DDLMetrics = `
CREATE TABLE IF NOT EXISTS metrics (
    timestamp DateTime64(3),
    trace_id String,
    metric_name String,
    value Float64,
    labels String
) ENGINE = MergeTree()
ORDER BY (timestamp, trace_id, metric_name)
`

// DDLTraces 链路表建表语句。
const DDLTraces = `
CREATE TABLE IF NOT EXISTS traces (
    timestamp DateTime64(3),
    trace_id String,
    span_id String,
    parent_span_id String,
    operation_name String,
    duration_ms Float64,
    service_name String,
    tags String
) ENGINE = MergeTree()
ORDER BY (timestamp, trace_id, span_id)
`

// TableDDL 返回表名到建表语句的映射。
// 每次调用返回新的 map，调用者可安全修改。
func TableDDL() map[string]string {
	return map[string]string{
		TableLogs:    DDLLogs,
		TableMetrics: DDLMetrics,
		TableTraces:  DDLTraces,
	}
}
