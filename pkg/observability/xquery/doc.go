// Package xquery 提供按关联标识的信号关联查询。
//
// 三张信号表只通过 trace_id 关联，查询端并行读取
// logs/metrics/traces 并聚合为一个响应。这是唯一的读路径：
// 写入端（xobserve）从不读取，读取端从不写入。
package xquery
