package xsink

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/avast/retry-go/v5"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// =============================================================================
// clickhouseSink 实现
// =============================================================================

// clickhouseSink 实现 Sink 接口。
type clickhouseSink struct {
	conn    driver.Conn
	options *Options

	// closed 标记客户端是否已关闭，防止重复关闭。
	closed atomic.Bool

	// 统计计数器
	insertCount  atomic.Int64
	insertErrors atomic.Int64
	queryCount   atomic.Int64
	queryErrors  atomic.Int64
	pingCount    atomic.Int64
	pingErrors   atomic.Int64
}

// Client 返回底层 ClickHouse 连接。
//
// 设计决策: Client() 不检查 closed 状态。clickhouse-go driver.Conn 在关闭后
// 操作会返回明确错误，无需在此层重复检查。
func (s *clickhouseSink) Client() driver.Conn {
	return s.conn
}

// Exec 执行 DDL 语句。
func (s *clickhouseSink) Exec(ctx context.Context, statement string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if strings.TrimSpace(statement) == "" {
		return ErrEmptyStatement
	}

	s.queryCount.Add(1)
	if err := s.conn.Exec(ctx, statement); err != nil {
		s.queryErrors.Add(1)
		return fmt.Errorf("exec failed: %w", err)
	}
	return nil
}

// tableNamePattern 用于校验表名的合法性。
// 支持格式：table_name、database.table_name。
// 仅允许字母、数字、下划线和点号，防止 SQL 注入。
var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)

// validateTableName 校验表名是否合法。
func validateTableName(table string) error {
	if table == "" {
		return ErrEmptyTable
	}
	if !tableNamePattern.MatchString(table) {
		return ErrInvalidTableName
	}
	return nil
}

// Insert 批量插入记录。
//
// 设计决策: fmt.Sprintf 拼接表名是安全的，因为 table 在入口处
// 已通过 validateTableName 的严格正则校验，仅允许合法标识符字符。
func (s *clickhouseSink) Insert(ctx context.Context, table string, rows []any) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := validateTableName(table); err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrEmptyRows
	}

	s.insertCount.Add(1)

	batch, err := s.conn.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO %s", table))
	if err != nil {
		s.insertErrors.Add(1)
		return fmt.Errorf("prepare batch failed: %w", err)
	}

	for i, row := range rows {
		if err := batch.AppendStruct(row); err != nil {
			s.insertErrors.Add(1)
			abortBatch(batch, &err)
			return fmt.Errorf("append row %d failed: %w", i, err)
		}
	}

	// 设计决策: context 取消后中止批次而非发送部分数据。
	// 调用方重试时，发送部分数据可能导致重复写入。
	if ctx.Err() != nil {
		err := fmt.Errorf("context canceled before send: %w", ctx.Err())
		s.insertErrors.Add(1)
		abortBatch(batch, &err)
		return err
	}

	if err := batch.Send(); err != nil {
		s.insertErrors.Add(1)
		return fmt.Errorf("send batch failed: %w", err)
	}
	return nil
}

// abortBatch 中止批次并把中止错误并入原错误。
func abortBatch(batch driver.Batch, err *error) {
	if abortErr := batch.Abort(); abortErr != nil {
		*err = errors.Join(*err, fmt.Errorf("abort batch failed: %w", abortErr))
	}
}

// Select 执行参数化查询并扫描到 dest。
func (s *clickhouseSink) Select(ctx context.Context, dest any, query string, args ...any) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if dest == nil {
		return ErrNilDest
	}
	if strings.TrimSpace(query) == "" {
		return ErrEmptyStatement
	}

	s.queryCount.Add(1)
	if err := s.conn.Select(ctx, dest, query, args...); err != nil {
		s.queryErrors.Add(1)
		return fmt.Errorf("select failed: %w", err)
	}
	return nil
}

// Health 执行健康检查。
func (s *clickhouseSink) Health(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}

	s.pingCount.Add(1)

	if s.options.HealthTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.options.HealthTimeout)
		defer cancel()
	}

	if err := s.conn.Ping(ctx); err != nil {
		s.pingErrors.Add(1)
		return err
	}
	return nil
}

// WaitReady 等待存储可达。
//
// 按 ReadyAttempts/ReadyBackoff 指数退避重试 Ping。
// ctx 取消时立即返回 ctx 的错误。
func (s *clickhouseSink) WaitReady(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}

	err := retry.New(
		retry.Attempts(s.options.ReadyAttempts),
		retry.Delay(s.options.ReadyBackoff),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	).Do(func() error { return s.Health(ctx) })
	if err != nil {
		return fmt.Errorf("xsink: store not ready: %w", err)
	}
	return nil
}

// Stats 返回统计信息。
func (s *clickhouseSink) Stats() Stats {
	st := Stats{
		InsertCount:  s.insertCount.Load(),
		InsertErrors: s.insertErrors.Load(),
		QueryCount:   s.queryCount.Load(),
		QueryErrors:  s.queryErrors.Load(),
		PingCount:    s.pingCount.Load(),
		PingErrors:   s.pingErrors.Load(),
	}
	if s.conn != nil {
		ds := s.conn.Stats()
		st.Pool = PoolStats{
			Open:  ds.Open,
			Idle:  ds.Idle,
			InUse: ds.Open - ds.Idle,
		}
	}
	return st
}

// Close 关闭连接。
func (s *clickhouseSink) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
