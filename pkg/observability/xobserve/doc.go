// Package xobserve 提供请求观测拦截器：为每个入站 HTTP 请求分配
// 关联标识，记录生命周期日志、量化指标与链路 Span，并写入信号存储。
//
// # 状态机
//
// 每个请求经历 STARTED → COMPLETED 或 STARTED → FAILED：
//   - 请求入口：分配关联标识、记录开始时间、写入一条开始日志
//   - 下游 handler 正常返回：写入两条指标记录（计数、耗时）、
//     一条根 Span 记录、一条完成日志，并更新进程内指标注册表
//   - 下游 handler panic：写入一条 ERROR 日志（含失败描述与耗时）
//     后原样重新抛出——拦截器只观测，从不吞掉或改写失败
//
// 失败路径只写 ERROR 日志、不写指标与 Span。这是有意保留的行为
// （失败不计入延迟直方图），如需失败计数请在上层补充。
//
// # 写入隔离
//
// 信号写入相对请求自身的成败是 fire-and-forget 的：写入失败不会
// 改变客户端看到的响应，只会进入进程级诊断日志。异步模式下写入
// 经过单 worker FIFO 队列（保证同一请求的开始日志先于完成/失败
// 日志入队）并由熔断器保护——存储持续不可达时快速丢弃而非积压。
// 队列满时丢弃并记录诊断日志，观测永远不能成为请求失败的原因。
//
// # 使用方式
//
//	rec, _ := xobserve.NewRecorder(sink)
//	defer rec.Close()
//
//	r := chi.NewRouter()
//	r.Use(xobserve.Middleware(rec, registry,
//	    xobserve.WithServiceName("example-app"),
//	))
package xobserve
