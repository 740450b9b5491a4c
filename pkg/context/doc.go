// Package context 提供上下文与关联标识管理相关的子包。
//
// 子包列表：
//   - xcorr: 请求关联标识（trace_id）的生成、注入与提取
//
// 设计原则：
//   - 关联标识通过 context.Context 传递，不使用全局变量
//   - 由拦截器自动注入/提取，减少业务代码侵入
package context
