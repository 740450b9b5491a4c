package xsink

import (
	"context"
	"fmt"

	"github.com/omeyang/sigflow/pkg/observability/xsignal"
)

// EnsureTables 创建三张信号表（不存在时）。
//
// 幂等：DDL 均为 CREATE TABLE IF NOT EXISTS，重复调用不改变表结构、
// 不产生错误，每次进程启动都应调用。
//
// 任一建表失败立即返回错误。此错误对启动是致命的——
// 没有信号存储，观测层无法工作，调用方应终止启动。
// 重试策略不在此层：存储不可达时先用 WaitReady 等待。
func EnsureTables(ctx context.Context, s Sink) error {
	// 固定顺序建表，保证失败信息可复现
	tables := []string{xsignal.TableLogs, xsignal.TableMetrics, xsignal.TableTraces}
	ddl := xsignal.TableDDL()

	for _, table := range tables {
		if err := s.Exec(ctx, ddl[table]); err != nil {
			return fmt.Errorf("xsink: create table %s failed: %w", table, err)
		}
	}
	return nil
}
