// Package xsignal 定义请求观测的三类信号记录模型。
//
// # 数据模型
//
// 三类记录（日志、指标、链路）共享同一个 trace_id（关联标识）和时间戳：
//   - LogRecord：请求生命周期日志（开始、完成、失败）
//   - MetricRecord：量化指标（请求计数、耗时）
//   - TraceRecord：链路 Span（根 Span 的 parent_span_id 为空）
//
// trace_id 是三张表之间唯一的关联键，没有外键约束，
// 正确性完全依赖拦截器在单个请求生命周期内使用同一个标识。
//
// # 扩展字段
//
// Extra/Labels/Tags 采用 KV 序列化为不透明文本的设计（schema-less），
// 新增字段不需要表结构迁移。不要将其规范化为类型化列。
//
// # 表结构
//
// 三张表均为 MergeTree 追加写入，按 (timestamp, trace_id, <二级键>) 排序，
// 使 trace_id 精确扫描和时间窗口扫描高效。记录写入后不可变，
// 数据保留策略是外部关注点。
package xsignal
