// Package xcorr 提供关联标识（correlation id）的生成与 context 传播。
//
// 关联标识在请求入口分配一次，之后不再变更，是日志、指标、链路
// 三类信号记录之间唯一的关联键。
//
// # 使用方式
//
//	ctx, err := xcorr.Ensure(ctx) // 入口：有则沿用，无则生成
//	id := xcorr.FromContext(ctx)  // 下游：读取当前请求的关联标识
//
// 标识格式为 UUID v4（128-bit 随机数的文本表示），
// 在进程生命周期内以压倒性概率唯一。
package xcorr
