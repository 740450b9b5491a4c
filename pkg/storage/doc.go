// Package storage 提供数据存储相关的子包。
//
// 子包列表：
//   - xsink: ClickHouse 信号存储客户端封装
//
// 设计原则：
//   - 提供统一的接口抽象，便于测试替换底层驱动
//   - 参数化查询，杜绝拼接注入
//   - 启动期重试等待，运行期熔断保护由上层记录器承担
package storage
