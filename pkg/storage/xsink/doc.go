// Package xsink 提供信号存储（ClickHouse）的客户端包装器。
//
// # 设计理念
//
// xsink 不包装底层客户端的所有 API，而是只提供观测信号写入/读取
// 所需的最小能力：
//   - Exec()：执行 DDL（建表）
//   - Insert()：按表批量插入记录（行级原子，整批要么成功要么失败）
//   - Select()：参数化查询并扫描到类型化切片
//   - Health() / Stats()：健康检查与统计
//   - Client()：暴露底层 driver.Conn，执行未包装的操作
//
// # 启动引导
//
// EnsureTables 创建三张信号表（CREATE TABLE IF NOT EXISTS），幂等，
// 每次进程启动都应调用。建表失败对启动是致命的——没有信号存储，
// 服务无法运行。WaitReady 在启动阶段用退避重试等待存储可达。
//
// # 快速开始
//
//	conn, err := clickhouse.Open(&clickhouse.Options{
//	    Addr: []string{"localhost:9000"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sink, err := xsink.New(conn)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sink.Close()
//
//	if err := sink.WaitReady(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if err := xsink.EnsureTables(ctx, sink); err != nil {
//	    log.Fatal(err)
//	}
package xsink
