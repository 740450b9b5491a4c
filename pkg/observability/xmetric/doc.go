// Package xmetric 提供进程内指标注册表与 Prometheus 拉取端点。
//
// 注册表持有两组 HTTP 序列：
//   - http_requests_total{method,endpoint,status} 计数器
//   - http_request_duration_seconds 直方图
//
// 所有更新按序列原子生效；Handler() 返回的快照在某一瞬间一致，
// 与进行中的更新并发安全（非全局事务冻结）。
//
// 服务启动后、任何请求到达前，/metrics 即返回已注册的序列名
// （零个或多个样本），内容类型为 Prometheus 文本格式。
package xmetric
