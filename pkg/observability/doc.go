// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xsignal: 观测信号数据模型（日志/指标/Span 三表）
//   - xobserve: HTTP 请求观测拦截器与信号记录器
//   - xmetric: 进程内 Prometheus 指标注册表与拉取端点
//   - xquery: 按关联标识聚合三类信号的查询服务
//   - xlog: 结构化日志，基于 log/slog 扩展
//   - xrotate: 日志文件轮转
//
// 设计原则：
//   - 三类信号只通过 trace_id 关联，不引入其他耦合
//   - 观测写入永不影响请求结果，失败只记诊断日志
//   - 自动从 context 中提取关联标识注入日志
package observability
