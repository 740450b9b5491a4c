package xsink

import (
	"context"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2/lib/column"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/ClickHouse/clickhouse-go/v2/lib/proto"
)

// =============================================================================
// Mock 实现 - 用于单元测试
// =============================================================================

// mockConn 实现 driver.Conn 接口。
type mockConn struct {
	mu sync.Mutex

	pingErr   error
	pingCount int
	// failPings 前 N 次 Ping 返回 pingErr，之后成功。
	// 为 0 且 pingErr 非 nil 时始终失败。
	failPings int

	execErr        error
	execStatements []string

	selectFunc func(ctx context.Context, dest any, query string, args ...any) error

	prepareBatchErr error
	batchAppendErr  error
	batchSendErr    error
	batches         []*mockBatch

	closeErr error
	closed   bool
	stats    driver.Stats
}

func newMockConn() *mockConn {
	return &mockConn{}
}

func (m *mockConn) Contributors() []string { return []string{"test"} }

func (m *mockConn) ServerVersion() (*proto.ServerHandshake, error) {
	return &proto.ServerHandshake{}, nil
}

func (m *mockConn) Select(ctx context.Context, dest any, query string, args ...any) error {
	if m.selectFunc != nil {
		return m.selectFunc(ctx, dest, query, args...)
	}
	return nil
}

func (m *mockConn) Query(context.Context, string, ...any) (driver.Rows, error) {
	return nil, nil
}

func (m *mockConn) QueryRow(context.Context, string, ...any) driver.Row {
	return nil
}

func (m *mockConn) PrepareBatch(_ context.Context, query string, _ ...driver.PrepareBatchOption) (driver.Batch, error) {
	if m.prepareBatchErr != nil {
		return nil, m.prepareBatchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b := &mockBatch{query: query, appendErr: m.batchAppendErr, sendErr: m.batchSendErr}
	m.batches = append(m.batches, b)
	return b, nil
}

func (m *mockConn) Exec(_ context.Context, statement string, _ ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.execErr != nil {
		return m.execErr
	}
	m.execStatements = append(m.execStatements, statement)
	return nil
}

func (m *mockConn) AsyncInsert(context.Context, string, bool, ...any) error {
	return nil
}

func (m *mockConn) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingCount++
	if m.pingErr == nil {
		return nil
	}
	if m.failPings > 0 && m.pingCount > m.failPings {
		return nil
	}
	return m.pingErr
}

func (m *mockConn) Stats() driver.Stats { return m.stats }

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.closeErr
}

// mockBatch 实现 driver.Batch 接口。
type mockBatch struct {
	query     string
	appendErr error
	sendErr   error
	abortErr  error

	rows    []any
	sent    bool
	aborted bool
}

func (b *mockBatch) Abort() error {
	b.aborted = true
	return b.abortErr
}

func (b *mockBatch) Append(...any) error { return nil }

func (b *mockBatch) AppendStruct(row any) error {
	if b.appendErr != nil {
		return b.appendErr
	}
	b.rows = append(b.rows, row)
	return nil
}

func (b *mockBatch) Column(int) driver.BatchColumn { return nil }

func (b *mockBatch) Flush() error { return nil }

func (b *mockBatch) Send() error {
	if b.sendErr != nil {
		return b.sendErr
	}
	b.sent = true
	return nil
}

func (b *mockBatch) IsSent() bool { return b.sent }

func (b *mockBatch) Rows() int { return len(b.rows) }

func (b *mockBatch) Columns() []column.Interface { return nil }

func (b *mockBatch) Close() error { return nil }
